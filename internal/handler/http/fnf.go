package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/talentum-hr/payops-backend-go/internal/domain/fnf"
	"github.com/talentum-hr/payops-backend-go/internal/handler/http/response"
	fnfservice "github.com/talentum-hr/payops-backend-go/internal/service/fnf"
)

type FnFHandler interface {
	Initiate(w http.ResponseWriter, r *http.Request)
	GetCase(w http.ResponseWriter, r *http.Request)
	ListCases(w http.ResponseWriter, r *http.Request)
	Recalculate(w http.ResponseWriter, r *http.Request)
	AddRecovery(w http.ResponseWriter, r *http.Request)
	Decide(w http.ResponseWriter, r *http.Request)
	Payout(w http.ResponseWriter, r *http.Request)
	Hold(w http.ResponseWriter, r *http.Request)
	Resume(w http.ResponseWriter, r *http.Request)
	Cancel(w http.ResponseWriter, r *http.Request)
}

type FnFHandlerImpl struct {
	cases *fnfservice.Service
}

func NewFnFHandler(cases *fnfservice.Service) FnFHandler {
	return &FnFHandlerImpl{cases: cases}
}

// Initiate handles POST /fnf/cases
func (h *FnFHandlerImpl) Initiate(w http.ResponseWriter, r *http.Request) {
	var req fnf.InitiateCaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	c, err := h.cases.Initiate(r.Context(), req, actorFrom(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Settlement case initiated", fnf.ToCaseResponse(c))
}

// GetCase handles GET /fnf/cases/{id}
func (h *FnFHandlerImpl) GetCase(w http.ResponseWriter, r *http.Request) {
	c, err := h.cases.GetCase(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, fnf.ToCaseResponse(c))
}

// ListCases handles GET /fnf/cases
func (h *FnFHandlerImpl) ListCases(w http.ResponseWriter, r *http.Request) {
	cases, err := h.cases.List(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result := make([]fnf.CaseResponse, 0, len(cases))
	for _, c := range cases {
		result = append(result, fnf.ToCaseResponse(c))
	}
	response.Success(w, result)
}

// Recalculate handles POST /fnf/cases/{id}/calculate
func (h *FnFHandlerImpl) Recalculate(w http.ResponseWriter, r *http.Request) {
	c, err := h.cases.Calculate(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Settlement recalculated", fnf.ToCaseResponse(c))
}

// AddRecovery handles POST /fnf/cases/{id}/recoveries
func (h *FnFHandlerImpl) AddRecovery(w http.ResponseWriter, r *http.Request) {
	var req fnf.AddRecoveryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	c, err := h.cases.AddRecovery(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Recovery item added", fnf.ToCaseResponse(c))
}

// Decide handles POST /fnf/cases/{id}/decision
func (h *FnFHandlerImpl) Decide(w http.ResponseWriter, r *http.Request) {
	var req fnf.DecideCaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	c, err := h.cases.Decide(r.Context(), chi.URLParam(r, "id"), actorFrom(r), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Decision recorded", fnf.ToCaseResponse(c))
}

// Payout handles POST /fnf/cases/{id}/payout
func (h *FnFHandlerImpl) Payout(w http.ResponseWriter, r *http.Request) {
	var req fnf.PayoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	c, err := h.cases.ProcessPayout(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Settlement paid out", fnf.ToCaseResponse(c))
}

// Hold handles POST /fnf/cases/{id}/hold
func (h *FnFHandlerImpl) Hold(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Reason string `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	c, err := h.cases.Hold(r.Context(), chi.URLParam(r, "id"), body.Reason)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Settlement case put on hold", fnf.ToCaseResponse(c))
}

// Resume handles POST /fnf/cases/{id}/resume
func (h *FnFHandlerImpl) Resume(w http.ResponseWriter, r *http.Request) {
	c, err := h.cases.Resume(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Settlement case resumed", fnf.ToCaseResponse(c))
}

// Cancel handles POST /fnf/cases/{id}/cancel
func (h *FnFHandlerImpl) Cancel(w http.ResponseWriter, r *http.Request) {
	c, err := h.cases.CancelCase(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Settlement case cancelled", fnf.ToCaseResponse(c))
}
