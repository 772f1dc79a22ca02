package response

import (
	"errors"
	"net/http"

	"github.com/talentum-hr/payops-backend-go/internal/domain/approval"
	"github.com/talentum-hr/payops-backend-go/internal/domain/employee"
	"github.com/talentum-hr/payops-backend-go/internal/domain/fnf"
	"github.com/talentum-hr/payops-backend-go/internal/domain/incentive"
	"github.com/talentum-hr/payops-backend-go/internal/domain/leave"
	"github.com/talentum-hr/payops-backend-go/internal/domain/payroll"
	"github.com/talentum-hr/payops-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	// Typed domain errors carry enough context for the caller to retry.
	var insufficientBalance *leave.InsufficientBalanceError
	if errors.As(err, &insufficientBalance) {
		BadRequest(w, err.Error(), nil)
		return
	}
	var runState *payroll.InvalidStateError
	if errors.As(err, &runState) {
		Conflict(w, err.Error())
		return
	}
	var caseState *fnf.InvalidStateError
	if errors.As(err, &caseState) {
		Conflict(w, err.Error())
		return
	}
	var duplicateRun *payroll.DuplicateRunError
	if errors.As(err, &duplicateRun) {
		Conflict(w, err.Error())
		return
	}

	switch {
	// Employee domain errors
	case errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")
	case errors.Is(err, employee.ErrEmployeeInactive):
		BadRequest(w, "Employee is not active", nil)

	// Leave domain errors
	case errors.Is(err, leave.ErrPolicyNotFound):
		NotFound(w, "Leave policy not found")
	case errors.Is(err, leave.ErrPolicyInactive):
		BadRequest(w, "Leave policy is not active", nil)
	case errors.Is(err, leave.ErrLedgerEntryNotFound):
		NotFound(w, "Leave ledger entry not found")
	case errors.Is(err, leave.ErrLeaveRequestNotFound):
		NotFound(w, "Leave request not found")
	case errors.Is(err, leave.ErrLeaveAlreadyProcessed):
		Conflict(w, "Leave request already processed")
	case errors.Is(err, leave.ErrUsageAlreadyApplied):
		Conflict(w, "Leave usage already applied for this request")
	case errors.Is(err, leave.ErrBlackoutDate):
		BadRequest(w, "Leave dates fall on a blackout date", nil)
	case errors.Is(err, leave.ErrBlackoutOverrideNotAllowed):
		Forbidden(w, "Blackout override not permitted for this policy")
	case errors.Is(err, leave.ErrMedicalCertRequired):
		BadRequest(w, "Medical certificate required for this duration", nil)
	case errors.Is(err, leave.ErrHalfDayNotAllowed):
		BadRequest(w, "Half-day requests not allowed for this policy", nil)
	case errors.Is(err, leave.ErrInvalidDateRange):
		BadRequest(w, "End date must not be before start date", nil)

	// Incentive domain errors
	case errors.Is(err, incentive.ErrClaimNotFound):
		NotFound(w, "Incentive claim not found")
	case errors.Is(err, incentive.ErrClaimAlreadyExists):
		Conflict(w, "Incentive claim already exists for this period")
	case errors.Is(err, incentive.ErrClaimAlreadyProcessed):
		Conflict(w, "Incentive claim already processed")
	case errors.Is(err, incentive.ErrClaimNotApproved):
		BadRequest(w, "Incentive claim is not approved", nil)
	case errors.Is(err, incentive.ErrAmountIncreaseNotAllowed):
		BadRequest(w, "Approved amount may only be adjusted downward", nil)
	case errors.Is(err, incentive.ErrSalesEventNotFound):
		NotFound(w, "Sales event not found")
	case errors.Is(err, incentive.ErrReturnItemNotFound):
		NotFound(w, "Returns/remakes item not found")
	case errors.Is(err, incentive.ErrClawbackAlreadyApplied):
		Conflict(w, "Claw-back already applied for this item")

	// Payroll domain errors
	case errors.Is(err, payroll.ErrRunNotFound):
		NotFound(w, "Payroll run not found")
	case errors.Is(err, payroll.ErrOverrideNotFound):
		NotFound(w, "Payroll override not found")
	case errors.Is(err, payroll.ErrOverrideAlreadyDecided):
		Conflict(w, "Payroll override already decided")
	case errors.Is(err, payroll.ErrOverrideAlreadyApplied):
		Conflict(w, "Payroll override already applied")
	case errors.Is(err, payroll.ErrPendingOverrides):
		Conflict(w, "Payroll run has unresolved pending overrides")
	case errors.Is(err, payroll.ErrRunImmutable):
		Conflict(w, "Payroll components are immutable once the run is locked")
	case errors.Is(err, payroll.ErrComponentNotFound):
		NotFound(w, "Payroll component not found")
	case errors.Is(err, payroll.ErrAttendanceUnavailable):
		writeJSON(w, http.StatusServiceUnavailable, Response{
			Success: false,
			Error: &ErrorDetail{
				Code:    "UPSTREAM_UNAVAILABLE",
				Message: "Attendance import feed unavailable",
			},
		})
	case errors.Is(err, payroll.ErrConcurrentTransition):
		Conflict(w, "Payroll run status changed concurrently")

	// F&F domain errors
	case errors.Is(err, fnf.ErrCaseNotFound):
		NotFound(w, "F&F case not found")
	case errors.Is(err, fnf.ErrCaseAlreadyOpen):
		Conflict(w, "An open F&F case already exists for this employee")
	case errors.Is(err, fnf.ErrNotFullyCalculated):
		Conflict(w, "F&F case components are not fully calculated")
	case errors.Is(err, fnf.ErrConcurrentTransition):
		Conflict(w, "F&F case status changed concurrently")

	// Approval chain errors
	case errors.Is(err, approval.ErrLevelOutOfRange),
		errors.Is(err, approval.ErrLevelNotPending),
		errors.Is(err, approval.ErrChainFinalized):
		Conflict(w, err.Error())

	// Default
	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
