package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth/v5"

	"github.com/talentum-hr/payops-backend-go/internal/domain/leave"
	"github.com/talentum-hr/payops-backend-go/internal/handler/http/response"
	leaveservice "github.com/talentum-hr/payops-backend-go/internal/service/leave"
)

type LeaveHandler interface {
	CreateRequest(w http.ResponseWriter, r *http.Request)
	GetRequest(w http.ResponseWriter, r *http.Request)
	ListEmployeeRequests(w http.ResponseWriter, r *http.Request)
	DecideRequest(w http.ResponseWriter, r *http.Request)
	CancelRequest(w http.ResponseWriter, r *http.Request)

	ListPolicies(w http.ResponseWriter, r *http.Request)
	GetBalance(w http.ResponseWriter, r *http.Request)
	ListLedger(w http.ResponseWriter, r *http.Request)
	RunAccrual(w http.ResponseWriter, r *http.Request)
	CloseYear(w http.ResponseWriter, r *http.Request)
}

type LeaveHandlerImpl struct {
	requests *leaveservice.RequestService
	ledger   *leaveservice.LedgerService
}

func NewLeaveHandler(requests *leaveservice.RequestService, ledger *leaveservice.LedgerService) LeaveHandler {
	return &LeaveHandlerImpl{
		requests: requests,
		ledger:   ledger,
	}
}

// actorFrom pulls the acting user id out of the verified token claims.
func actorFrom(r *http.Request) string {
	_, claims, err := jwtauth.FromContext(r.Context())
	if err != nil {
		return ""
	}
	if userID, ok := claims["user_id"].(string); ok {
		return userID
	}
	return ""
}

// CreateRequest handles POST /leaves/requests
func (h *LeaveHandlerImpl) CreateRequest(w http.ResponseWriter, r *http.Request) {
	var req leave.CreateLeaveRequestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	created, err := h.requests.CreateRequest(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Leave request submitted", created)
}

// GetRequest handles GET /leaves/requests/{id}
func (h *LeaveHandlerImpl) GetRequest(w http.ResponseWriter, r *http.Request) {
	request, err := h.requests.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, request)
}

// ListEmployeeRequests handles GET /leaves/requests?employee_id=...
func (h *LeaveHandlerImpl) ListEmployeeRequests(w http.ResponseWriter, r *http.Request) {
	employeeID := r.URL.Query().Get("employee_id")
	if employeeID == "" {
		response.BadRequest(w, "employee_id query parameter is required", nil)
		return
	}

	requests, err := h.requests.GetByEmployee(r.Context(), employeeID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, requests)
}

// DecideRequest handles POST /leaves/requests/{id}/decision
func (h *LeaveHandlerImpl) DecideRequest(w http.ResponseWriter, r *http.Request) {
	var req leave.DecideLeaveRequestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	request, err := h.requests.Decide(r.Context(), chi.URLParam(r, "id"), actorFrom(r), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Decision recorded", request)
}

// CancelRequest handles POST /leaves/requests/{id}/cancel
func (h *LeaveHandlerImpl) CancelRequest(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Reason string `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	request, err := h.requests.Cancel(r.Context(), chi.URLParam(r, "id"), actorFrom(r), body.Reason)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Leave request cancelled", request)
}

// ListPolicies handles GET /leaves/policies
func (h *LeaveHandlerImpl) ListPolicies(w http.ResponseWriter, r *http.Request) {
	policies, err := h.ledger.ActivePolicies(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result := make([]leave.PolicyResponse, 0, len(policies))
	for _, p := range policies {
		result = append(result, leave.ToPolicyResponse(p))
	}
	response.Success(w, result)
}

// GetBalance handles GET /leaves/balance
func (h *LeaveHandlerImpl) GetBalance(w http.ResponseWriter, r *http.Request) {
	employeeID := r.URL.Query().Get("employee_id")
	policyID := r.URL.Query().Get("policy_id")
	if employeeID == "" || policyID == "" {
		response.BadRequest(w, "employee_id and policy_id query parameters are required", nil)
		return
	}

	now := time.Now()
	year := queryInt(r, "year", now.Year())
	month := queryInt(r, "month", int(now.Month()))

	balance, err := h.ledger.Balance(r.Context(), employeeID, policyID, year, month)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, map[string]string{"balance": balance.String()})
}

// ListLedger handles GET /leaves/ledger
func (h *LeaveHandlerImpl) ListLedger(w http.ResponseWriter, r *http.Request) {
	employeeID := r.URL.Query().Get("employee_id")
	if employeeID == "" {
		response.BadRequest(w, "employee_id query parameter is required", nil)
		return
	}
	year := queryInt(r, "year", time.Now().Year())

	entries, err := h.ledger.GetByEmployeeYear(r.Context(), employeeID, year)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result := make([]leave.LedgerEntryResponse, 0, len(entries))
	for _, e := range entries {
		result = append(result, leave.ToLedgerEntryResponse(e))
	}
	response.Success(w, result)
}

// RunAccrual handles POST /leaves/accruals/run; the batch is idempotent
// so an operator rerun is safe.
func (h *LeaveHandlerImpl) RunAccrual(w http.ResponseWriter, r *http.Request) {
	if err := h.ledger.AccrueCurrentPeriod(r.Context()); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Accrual batch completed", nil)
}

// CloseYear handles POST /leaves/year-close
func (h *LeaveHandlerImpl) CloseYear(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Year int `json:"year"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	if body.Year < 2000 {
		response.BadRequest(w, "A valid year is required", nil)
		return
	}

	results, err := h.ledger.CloseYear(r.Context(), body.Year)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Year close completed", results)
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}
