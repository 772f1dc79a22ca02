package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/talentum-hr/payops-backend-go/internal/domain/payroll"
	"github.com/talentum-hr/payops-backend-go/internal/handler/http/response"
	payrollservice "github.com/talentum-hr/payops-backend-go/internal/service/payroll"
)

type PayrollHandler interface {
	// Runs
	CreateRun(w http.ResponseWriter, r *http.Request)
	GetRun(w http.ResponseWriter, r *http.Request)
	ProcessRun(w http.ResponseWriter, r *http.Request)
	LockRun(w http.ResponseWriter, r *http.Request)
	PostRun(w http.ResponseWriter, r *http.Request)
	CancelRun(w http.ResponseWriter, r *http.Request)
	GetVariance(w http.ResponseWriter, r *http.Request)
	ListComponents(w http.ResponseWriter, r *http.Request)

	// Overrides
	CreateOverride(w http.ResponseWriter, r *http.Request)
	ListOverrides(w http.ResponseWriter, r *http.Request)
	DecideOverride(w http.ResponseWriter, r *http.Request)
	CancelOverride(w http.ResponseWriter, r *http.Request)
}

type PayrollHandlerImpl struct {
	runs      *payrollservice.RunService
	overrides *payrollservice.OverrideService
}

func NewPayrollHandler(runs *payrollservice.RunService, overrides *payrollservice.OverrideService) PayrollHandler {
	return &PayrollHandlerImpl{
		runs:      runs,
		overrides: overrides,
	}
}

// CreateRun handles POST /payroll/runs
func (h *PayrollHandlerImpl) CreateRun(w http.ResponseWriter, r *http.Request) {
	var req payroll.CreateRunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	run, err := h.runs.CreateRun(r.Context(), req, actorFrom(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Payroll run created", payroll.ToRunResponse(run, payroll.RunTotals{}))
}

// GetRun handles GET /payroll/runs/{id}
func (h *PayrollHandlerImpl) GetRun(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, "id")

	run, err := h.runs.GetByID(r.Context(), runID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	totals, err := h.runs.Totals(r.Context(), runID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, payroll.ToRunResponse(run, totals))
}

// ProcessRun handles POST /payroll/runs/{id}/process. Processing is
// synchronous; a failed attempt leaves the run in PROCESSING with the
// error recorded, and the same call retries it.
func (h *PayrollHandlerImpl) ProcessRun(w http.ResponseWriter, r *http.Request) {
	run, err := h.runs.Process(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	totals, err := h.runs.Totals(r.Context(), run.ID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Payroll run processed", payroll.ToRunResponse(run, totals))
}

// LockRun handles POST /payroll/runs/{id}/lock
func (h *PayrollHandlerImpl) LockRun(w http.ResponseWriter, r *http.Request) {
	run, err := h.runs.Lock(r.Context(), chi.URLParam(r, "id"), actorFrom(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Payroll run locked", payroll.ToRunResponse(run, payroll.RunTotals{}))
}

// PostRun handles POST /payroll/runs/{id}/post
func (h *PayrollHandlerImpl) PostRun(w http.ResponseWriter, r *http.Request) {
	var req payroll.PostRunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	run, err := h.runs.Post(r.Context(), chi.URLParam(r, "id"), actorFrom(r), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Payroll run posted", payroll.ToRunResponse(run, payroll.RunTotals{}))
}

// CancelRun handles POST /payroll/runs/{id}/cancel
func (h *PayrollHandlerImpl) CancelRun(w http.ResponseWriter, r *http.Request) {
	run, err := h.runs.Cancel(r.Context(), chi.URLParam(r, "id"), actorFrom(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Payroll run cancelled", payroll.ToRunResponse(run, payroll.RunTotals{}))
}

// GetVariance handles GET /payroll/runs/{id}/variance
func (h *PayrollHandlerImpl) GetVariance(w http.ResponseWriter, r *http.Request) {
	lines, err := h.runs.Variance(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, lines)
}

// ListComponents handles GET /payroll/runs/{id}/components
func (h *PayrollHandlerImpl) ListComponents(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, "id")

	var (
		components []payroll.PayrollComponent
		err        error
	)
	if employeeID := r.URL.Query().Get("employee_id"); employeeID != "" {
		components, err = h.runs.ListByRunEmployee(r.Context(), runID, employeeID)
	} else {
		components, err = h.runs.ListByRun(r.Context(), runID)
	}
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, components)
}

// CreateOverride handles POST /payroll/overrides
func (h *PayrollHandlerImpl) CreateOverride(w http.ResponseWriter, r *http.Request) {
	var req payroll.CreateOverrideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	override, err := h.overrides.CreateOverride(r.Context(), req, actorFrom(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Override submitted for approval", override)
}

// ListOverrides handles GET /payroll/runs/{id}/overrides
func (h *PayrollHandlerImpl) ListOverrides(w http.ResponseWriter, r *http.Request) {
	overrides, err := h.overrides.ListByRun(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, overrides)
}

// DecideOverride handles POST /payroll/overrides/{id}/decision
func (h *PayrollHandlerImpl) DecideOverride(w http.ResponseWriter, r *http.Request) {
	var req payroll.DecideOverrideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	override, err := h.overrides.DecideOverride(r.Context(), chi.URLParam(r, "id"), actorFrom(r), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Decision recorded", override)
}

// CancelOverride handles POST /payroll/overrides/{id}/cancel
func (h *PayrollHandlerImpl) CancelOverride(w http.ResponseWriter, r *http.Request) {
	override, err := h.overrides.CancelOverride(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Override cancelled", override)
}
