package leave

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/talentum-hr/payops-backend-go/internal/domain/approval"
	"github.com/talentum-hr/payops-backend-go/internal/domain/employee"
	"github.com/talentum-hr/payops-backend-go/internal/domain/leave"
	"github.com/talentum-hr/payops-backend-go/internal/pkg/database"
)

// RequestService drives the leave request lifecycle. Final approval is
// the only path into the ledger debit.
type RequestService struct {
	db       *database.DB
	ledger   *LedgerService
	policies leave.LeavePolicyRepository
	leave.LeaveRequestRepository
	employees employee.EmployeeRepository
}

func NewRequestService(
	db *database.DB,
	ledger *LedgerService,
	policyRepository leave.LeavePolicyRepository,
	requestRepository leave.LeaveRequestRepository,
	employeeRepository employee.EmployeeRepository,
) *RequestService {
	return &RequestService{
		db:                     db,
		ledger:                 ledger,
		policies:               policyRepository,
		LeaveRequestRepository: requestRepository,
		employees:              employeeRepository,
	}
}

func (r *RequestService) CreateRequest(ctx context.Context, req leave.CreateLeaveRequestRequest) (leave.LeaveRequest, error) {
	if err := req.Validate(); err != nil {
		return leave.LeaveRequest{}, err
	}

	emp, err := r.employees.GetByID(ctx, req.EmployeeID)
	if err != nil {
		return leave.LeaveRequest{}, fmt.Errorf("failed to get employee: %w", err)
	}
	if !emp.IsActive() {
		return leave.LeaveRequest{}, employee.ErrEmployeeInactive
	}

	policy, err := r.policies.GetByCode(ctx, req.PolicyCode)
	if err != nil {
		return leave.LeaveRequest{}, fmt.Errorf("failed to get leave policy: %w", err)
	}
	if !policy.IsActive {
		return leave.LeaveRequest{}, leave.ErrPolicyInactive
	}

	startDate, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		return leave.LeaveRequest{}, fmt.Errorf("failed to parse start date: %w", err)
	}
	endDate, err := time.Parse("2006-01-02", req.EndDate)
	if err != nil {
		return leave.LeaveRequest{}, fmt.Errorf("failed to parse end date: %w", err)
	}
	if endDate.Before(startDate) {
		return leave.LeaveRequest{}, leave.ErrInvalidDateRange
	}

	durationType := leave.LeaveDurationEnum(req.DurationType)
	if durationType == "" {
		durationType = leave.LeaveDurationFullDay
	}
	if durationType != leave.LeaveDurationFullDay && !policy.AllowHalfDay {
		return leave.LeaveRequest{}, leave.ErrHalfDayNotAllowed
	}

	if err := r.checkBlackout(ctx, policy, startDate, endDate, req.BlackoutOverride); err != nil {
		return leave.LeaveRequest{}, err
	}

	days := leave.RequestDays(startDate, endDate, durationType)

	if policy.RequiresMedicalCert(days) && req.MedicalCertURL == nil {
		return leave.LeaveRequest{}, leave.ErrMedicalCertRequired
	}

	available, err := r.ledger.Balance(ctx, emp.ID, policy.ID, startDate.Year(), int(startDate.Month()))
	if err != nil {
		return leave.LeaveRequest{}, fmt.Errorf("failed to get leave balance: %w", err)
	}
	if available.LessThan(days) && !policy.AllowNegativeBalance {
		return leave.LeaveRequest{}, &leave.InsufficientBalanceError{
			Available: available,
			Requested: days,
		}
	}

	request := leave.LeaveRequest{
		EmployeeID:         emp.ID,
		LeavePolicyID:      policy.ID,
		StartDate:          startDate,
		EndDate:            endDate,
		DurationType:       durationType,
		Days:               days,
		Reason:             req.Reason,
		MedicalCertURL:     req.MedicalCertURL,
		BlackoutOverrideBy: req.BlackoutOverride,
		Status:             leave.LeaveRequestStatusPending,
		Chain:              approval.NewChain(policy.ApprovalAuthorities...),
		BalanceAvailable:   available,
		BalanceAfter:       available.Sub(days),
		NegativeBalance:    available.Sub(days).IsNegative(),
		SubmittedAt:        time.Now(),
	}

	created, err := r.LeaveRequestRepository.Create(ctx, request)
	if err != nil {
		return leave.LeaveRequest{}, fmt.Errorf("failed to create leave request: %w", err)
	}

	return created, nil
}

// Decide records one approval-chain decision. The ledger debit happens
// exactly once, when the final level approves.
func (r *RequestService) Decide(ctx context.Context, requestID, actor string, req leave.DecideLeaveRequestRequest) (leave.LeaveRequest, error) {
	request, err := r.LeaveRequestRepository.GetByID(ctx, requestID)
	if err != nil {
		return leave.LeaveRequest{}, fmt.Errorf("failed to get leave request: %w", err)
	}

	if request.Status != leave.LeaveRequestStatusPending {
		return leave.LeaveRequest{}, leave.ErrLeaveAlreadyProcessed
	}

	if err := request.Chain.RecordDecision(req.Level, req.Approve, actor, req.Comments); err != nil {
		return leave.LeaveRequest{}, err
	}

	switch {
	case request.Chain.IsRejected():
		request.Status = leave.LeaveRequestStatusRejected
	case request.Chain.IsFullyApproved():
		request.Status = leave.LeaveRequestStatusApproved
	}

	// The debit lands before the approval is persisted: if it fails the
	// request stays pending and the decision can be retried. A duplicate
	// usage error means an earlier attempt already debited, so the
	// approval just needs to be re-persisted.
	if request.Status == leave.LeaveRequestStatusApproved {
		_, err := r.ledger.ApplyUsage(ctx,
			request.EmployeeID, request.LeavePolicyID, request.ID,
			request.StartDate.Year(), int(request.StartDate.Month()),
			request.Days)
		if err != nil && !errors.Is(err, leave.ErrUsageAlreadyApplied) {
			return leave.LeaveRequest{}, fmt.Errorf("failed to apply leave usage: %w", err)
		}
	}

	if err := r.LeaveRequestRepository.Update(ctx, request); err != nil {
		return leave.LeaveRequest{}, fmt.Errorf("failed to update leave request: %w", err)
	}

	return request, nil
}

// Cancel withdraws a pending request or cancels an approved one. An
// approved cancellation re-credits the ledger by recording negative
// usage under a derived request id, keeping the original debit intact.
func (r *RequestService) Cancel(ctx context.Context, requestID, actor, reason string) (leave.LeaveRequest, error) {
	request, err := r.LeaveRequestRepository.GetByID(ctx, requestID)
	if err != nil {
		return leave.LeaveRequest{}, fmt.Errorf("failed to get leave request: %w", err)
	}

	switch request.Status {
	case leave.LeaveRequestStatusPending:
		request.Status = leave.LeaveRequestStatusWithdrawn
	case leave.LeaveRequestStatusApproved:
		request.Status = leave.LeaveRequestStatusCancelled
	default:
		return leave.LeaveRequest{}, leave.ErrLeaveAlreadyProcessed
	}

	now := time.Now()
	request.CancelledBy = &actor
	request.CancelledAt = &now
	request.CancellationReason = &reason

	if err := r.LeaveRequestRepository.Update(ctx, request); err != nil {
		return leave.LeaveRequest{}, fmt.Errorf("failed to update leave request: %w", err)
	}

	if request.Status == leave.LeaveRequestStatusCancelled {
		_, err := r.ledger.ApplyUsage(ctx,
			request.EmployeeID, request.LeavePolicyID, request.ID+":cancel",
			request.StartDate.Year(), int(request.StartDate.Month()),
			request.Days.Neg())
		if err != nil {
			return leave.LeaveRequest{}, fmt.Errorf("failed to reverse leave usage: %w", err)
		}
	}

	return request, nil
}

func (r *RequestService) checkBlackout(ctx context.Context, policy leave.LeavePolicy, startDate, endDate time.Time, overrideBy *string) error {
	blackoutHit := false
	for d := startDate; !d.After(endDate); d = d.AddDate(0, 0, 1) {
		if policy.IsBlackout(d) {
			blackoutHit = true
			break
		}
	}
	if !blackoutHit {
		return nil
	}

	if overrideBy == nil {
		return leave.ErrBlackoutDate
	}
	if policy.BlackoutOverrideRole == nil {
		return leave.ErrBlackoutOverrideNotAllowed
	}

	overrider, err := r.employees.GetByID(ctx, *overrideBy)
	if err != nil {
		return fmt.Errorf("failed to get blackout override actor: %w", err)
	}
	if overrider.Role != *policy.BlackoutOverrideRole {
		return leave.ErrBlackoutOverrideNotAllowed
	}
	return nil
}
