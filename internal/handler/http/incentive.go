package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/talentum-hr/payops-backend-go/internal/domain/incentive"
	"github.com/talentum-hr/payops-backend-go/internal/handler/http/response"
	incentiveservice "github.com/talentum-hr/payops-backend-go/internal/service/incentive"
)

type IncentiveHandler interface {
	CreateClaim(w http.ResponseWriter, r *http.Request)
	GetClaim(w http.ResponseWriter, r *http.Request)
	ListClaims(w http.ResponseWriter, r *http.Request)
	DecideClaim(w http.ResponseWriter, r *http.Request)
}

type IncentiveHandlerImpl struct {
	claims *incentiveservice.ClaimService
}

func NewIncentiveHandler(claims *incentiveservice.ClaimService) IncentiveHandler {
	return &IncentiveHandlerImpl{claims: claims}
}

// CreateClaim handles POST /incentives/claims
func (h *IncentiveHandlerImpl) CreateClaim(w http.ResponseWriter, r *http.Request) {
	var req incentive.CreateClaimRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	claim, err := h.claims.CreateClaim(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Incentive claim created", incentive.ToClaimResponse(claim))
}

// GetClaim handles GET /incentives/claims/{id}
func (h *IncentiveHandlerImpl) GetClaim(w http.ResponseWriter, r *http.Request) {
	claim, err := h.claims.GetClaim(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, incentive.ToClaimResponse(claim))
}

// ListClaims handles GET /incentives/claims
func (h *IncentiveHandlerImpl) ListClaims(w http.ResponseWriter, r *http.Request) {
	var filter incentive.ClaimFilter

	if v := r.URL.Query().Get("employee_id"); v != "" {
		filter.EmployeeID = &v
	}
	if v := queryInt(r, "year", 0); v != 0 {
		filter.Year = &v
	}
	if v := queryInt(r, "month", 0); v != 0 {
		filter.Month = &v
	}
	if v := r.URL.Query().Get("status"); v != "" {
		status := incentive.ClaimStatus(v)
		filter.Status = &status
	}
	if v := r.URL.Query().Get("tier"); v != "" {
		tier := incentive.Tier(v)
		filter.Tier = &tier
	}

	claims, err := h.claims.ListClaims(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result := make([]incentive.ClaimResponse, 0, len(claims))
	for _, c := range claims {
		result = append(result, incentive.ToClaimResponse(c))
	}
	response.Success(w, result)
}

// DecideClaim handles POST /incentives/claims/{id}/decision
func (h *IncentiveHandlerImpl) DecideClaim(w http.ResponseWriter, r *http.Request) {
	var req incentive.DecideClaimRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	claim, err := h.claims.Decide(r.Context(), chi.URLParam(r, "id"), actorFrom(r), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Decision recorded", incentive.ToClaimResponse(claim))
}
