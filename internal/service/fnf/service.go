package fnf

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/talentum-hr/payops-backend-go/internal/domain/approval"
	"github.com/talentum-hr/payops-backend-go/internal/domain/employee"
	"github.com/talentum-hr/payops-backend-go/internal/domain/fnf"
	"github.com/talentum-hr/payops-backend-go/internal/domain/incentive"
	"github.com/talentum-hr/payops-backend-go/internal/domain/leave"
	"github.com/talentum-hr/payops-backend-go/internal/domain/payroll"
	"github.com/talentum-hr/payops-backend-go/internal/pkg/database"
	"github.com/talentum-hr/payops-backend-go/internal/pkg/docgen"
)

// elPolicyCode identifies the encashable earned-leave policy.
const elPolicyCode = "EL"

// LeaveLedger is the slice of the ledger service F&F settlement needs:
// a non-mutating balance read during calculation, and the zeroing
// encashment on actual payout.
type LeaveLedger interface {
	Balance(ctx context.Context, employeeID, policyID string, year, month int) (decimal.Decimal, error)
	EncashAll(ctx context.Context, employeeID, policyID string, year, month int) (decimal.Decimal, error)
}

// StatementGenerator renders the settlement statement artifact.
type StatementGenerator interface {
	SettlementStatement(data docgen.SettlementStatementData) (string, error)
}

// Service drives the settlement case lifecycle: INITIATED → CALCULATING
// → PENDING_APPROVAL → APPROVED → PAID, with ON_HOLD and CANCELLED as
// side exits. Calculation is re-runnable until payout; payout is not.
type Service struct {
	db       *database.DB
	tdsBands []payroll.TDSBand
	fnf.FnFCaseRepository
	employees employee.EmployeeRepository
	policies  leave.LeavePolicyRepository
	ledger    LeaveLedger
	claims    incentive.IncentiveClaimRepository
	docs      StatementGenerator
}

func NewService(
	db *database.DB,
	tdsBands []payroll.TDSBand,
	caseRepository fnf.FnFCaseRepository,
	employeeRepository employee.EmployeeRepository,
	policyRepository leave.LeavePolicyRepository,
	ledger LeaveLedger,
	claimRepository incentive.IncentiveClaimRepository,
	docs StatementGenerator,
) *Service {
	return &Service{
		db:                db,
		tdsBands:          tdsBands,
		FnFCaseRepository: caseRepository,
		employees:         employeeRepository,
		policies:          policyRepository,
		ledger:            ledger,
		claims:            claimRepository,
		docs:              docs,
	}
}

// Initiate snapshots the employee's joining date, notice terms and
// salary, creates the case and immediately runs the first calculation.
func (s *Service) Initiate(ctx context.Context, req fnf.InitiateCaseRequest, initiatedBy string) (fnf.FnFCase, error) {
	if err := req.Validate(); err != nil {
		return fnf.FnFCase{}, err
	}

	emp, err := s.employees.GetByID(ctx, req.EmployeeID)
	if err != nil {
		return fnf.FnFCase{}, fmt.Errorf("failed to get employee: %w", err)
	}

	open, err := s.FnFCaseRepository.HasOpenCase(ctx, req.EmployeeID)
	if err != nil {
		return fnf.FnFCase{}, fmt.Errorf("failed to check open cases: %w", err)
	}
	if open {
		return fnf.FnFCase{}, fnf.ErrCaseAlreadyOpen
	}

	lwd, err := time.Parse("2006-01-02", req.LastWorkingDay)
	if err != nil {
		return fnf.FnFCase{}, fmt.Errorf("failed to parse last working day: %w", err)
	}

	c := fnf.FnFCase{
		EmployeeID:       emp.ID,
		LastWorkingDay:   lwd,
		Reason:           req.Reason,
		DateOfJoining:    emp.DateOfJoining,
		NoticePeriodDays: emp.NoticePeriodDays,
		NoticeGivenDays:  req.NoticeGivenDays,
		BasicSalary:      emp.BasicSalary,
		GrossSalary:      emp.GrossSalary,
		Status:           fnf.CaseStatusInitiated,
		Chain:            approval.NewChain(fnf.AuthorityManager, fnf.AuthorityAccounts, fnf.AuthorityHRHead),
		InitiatedBy:      initiatedBy,
	}

	created, err := s.FnFCaseRepository.Create(ctx, c)
	if err != nil {
		return fnf.FnFCase{}, fmt.Errorf("failed to create F&F case: %w", err)
	}

	return s.Calculate(ctx, created.ID)
}

// Calculate runs (or re-runs) the five settlement blocks and advances
// the case to PENDING_APPROVAL. Recalculation from PENDING_APPROVAL
// pulls the case back through CALCULATING first.
func (s *Service) Calculate(ctx context.Context, caseID string) (fnf.FnFCase, error) {
	c, err := s.FnFCaseRepository.GetByID(ctx, caseID)
	if err != nil {
		return fnf.FnFCase{}, fmt.Errorf("failed to get F&F case: %w", err)
	}

	switch c.Status {
	case fnf.CaseStatusInitiated, fnf.CaseStatusPendingApproval:
		swapped, err := s.FnFCaseRepository.TransitionStatus(ctx, caseID, c.Status, fnf.CaseStatusCalculating)
		if err != nil {
			return fnf.FnFCase{}, fmt.Errorf("failed to transition F&F case: %w", err)
		}
		if !swapped {
			return fnf.FnFCase{}, fnf.ErrConcurrentTransition
		}
		c.Status = fnf.CaseStatusCalculating
	case fnf.CaseStatusCalculating:
		// Resuming a calculation that did not finish.
	default:
		return fnf.FnFCase{}, &fnf.InvalidStateError{
			Op: "calculate", Current: c.Status, Expected: fnf.CaseStatusPendingApproval,
		}
	}

	if err := s.computeBlocks(ctx, &c); err != nil {
		return fnf.FnFCase{}, err
	}
	if !c.AllCalculated() {
		return fnf.FnFCase{}, fnf.ErrNotFullyCalculated
	}

	if err := s.FnFCaseRepository.Update(ctx, c); err != nil {
		return fnf.FnFCase{}, fmt.Errorf("failed to update F&F case: %w", err)
	}

	swapped, err := s.FnFCaseRepository.TransitionStatus(ctx, caseID, fnf.CaseStatusCalculating, fnf.CaseStatusPendingApproval)
	if err != nil {
		return fnf.FnFCase{}, fmt.Errorf("failed to transition F&F case: %w", err)
	}
	if !swapped {
		return fnf.FnFCase{}, fnf.ErrConcurrentTransition
	}
	c.Status = fnf.CaseStatusPendingApproval

	return c, nil
}

func (s *Service) computeBlocks(ctx context.Context, c *fnf.FnFCase) error {
	daysWorked, unpaid := fnf.UnpaidSalaryFor(c.GrossSalary, c.LastWorkingDay)
	c.UnpaidSalary = fnf.UnpaidSalaryBlock{Calculated: true, DaysWorked: daysWorked, Amount: unpaid}

	elBlock := fnf.ELEncashmentBlock{Calculated: true}
	policy, err := s.policies.GetByCode(ctx, elPolicyCode)
	switch {
	case errors.Is(err, leave.ErrPolicyNotFound):
		// No EL policy configured; nothing to encash.
	case err != nil:
		return fmt.Errorf("failed to get EL policy: %w", err)
	default:
		days, err := s.ledger.Balance(ctx, c.EmployeeID, policy.ID, c.LastWorkingDay.Year(), int(c.LastWorkingDay.Month()))
		if err != nil {
			return fmt.Errorf("failed to get EL balance: %w", err)
		}
		elBlock.Days = days
		elBlock.Amount = fnf.ELEncashmentFor(c.BasicSalary, days)
	}
	c.ELEncashment = elBlock

	claims, err := s.claims.ApprovedUnpaidByEmployee(ctx, c.EmployeeID)
	if err != nil {
		return fmt.Errorf("failed to get approved claims: %w", err)
	}
	incentives := fnf.IncentivesBlock{Calculated: true, Amount: decimal.Zero}
	for _, claim := range claims {
		incentives.ClaimIDs = append(incentives.ClaimIDs, claim.ID)
		incentives.Amount = incentives.Amount.Add(claim.EffectiveAmount())
	}
	c.Incentives = incentives

	shortfallDays, shortfallAmount := fnf.NoticeShortfallFor(c.BasicSalary, c.NoticePeriodDays, c.NoticeGivenDays)
	recoveries := fnf.RecoveriesBlock{
		Calculated:            true,
		NoticeShortfallDays:   shortfallDays,
		NoticeShortfallAmount: shortfallAmount,
		Items:                 c.Recoveries.Items,
		Total:                 shortfallAmount,
	}
	for _, item := range recoveries.Items {
		recoveries.Total = recoveries.Total.Add(item.Amount)
	}
	c.Recoveries = recoveries

	totalPayable := c.UnpaidSalary.Amount.Add(c.ELEncashment.Amount).Add(c.Incentives.Amount)
	tds := payroll.TDSFor(totalPayable, s.tdsBands)
	c.Statutory = fnf.StatutoryBlock{
		Calculated: true,
		TDS:        tds,
		PFFinal:    decimal.Zero,
		ESICFinal:  decimal.Zero,
		Total:      tds,
	}

	fnf.ComputeTotals(c)
	return nil
}

// AddRecovery attaches an asset/advance/loan recovery to the case. A
// case already in PENDING_APPROVAL is recalculated so the totals and the
// pending approvals see the new item.
func (s *Service) AddRecovery(ctx context.Context, caseID string, req fnf.AddRecoveryRequest) (fnf.FnFCase, error) {
	if err := req.Validate(); err != nil {
		return fnf.FnFCase{}, err
	}

	c, err := s.FnFCaseRepository.GetByID(ctx, caseID)
	if err != nil {
		return fnf.FnFCase{}, fmt.Errorf("failed to get F&F case: %w", err)
	}

	switch c.Status {
	case fnf.CaseStatusInitiated, fnf.CaseStatusCalculating, fnf.CaseStatusPendingApproval:
	default:
		return fnf.FnFCase{}, &fnf.InvalidStateError{
			Op: "add recovery", Current: c.Status, Expected: fnf.CaseStatusPendingApproval,
		}
	}

	c.Recoveries.Items = append(c.Recoveries.Items, fnf.RecoveryItem{
		Kind:        req.Kind,
		Description: req.Description,
		Amount:      decimal.NewFromFloat(req.Amount),
	})
	if err := s.FnFCaseRepository.Update(ctx, c); err != nil {
		return fnf.FnFCase{}, fmt.Errorf("failed to update F&F case: %w", err)
	}

	if c.Status == fnf.CaseStatusPendingApproval {
		return s.Calculate(ctx, caseID)
	}
	return c, nil
}

// Decide records one chain decision. The case auto-advances to APPROVED
// only when all three authorities have approved; a rejection sends it
// back to CALCULATING with a fresh chain for rework.
func (s *Service) Decide(ctx context.Context, caseID, actor string, req fnf.DecideCaseRequest) (fnf.FnFCase, error) {
	c, err := s.FnFCaseRepository.GetByID(ctx, caseID)
	if err != nil {
		return fnf.FnFCase{}, fmt.Errorf("failed to get F&F case: %w", err)
	}
	if c.Status != fnf.CaseStatusPendingApproval {
		return fnf.FnFCase{}, &fnf.InvalidStateError{
			Op: "decide", Current: c.Status, Expected: fnf.CaseStatusPendingApproval,
		}
	}

	if err := c.Chain.RecordDecision(req.Level, req.Approve, actor, req.Comments); err != nil {
		return fnf.FnFCase{}, err
	}

	switch {
	case c.Chain.IsRejected():
		swapped, err := s.FnFCaseRepository.TransitionStatus(ctx, caseID, fnf.CaseStatusPendingApproval, fnf.CaseStatusCalculating)
		if err != nil {
			return fnf.FnFCase{}, fmt.Errorf("failed to transition F&F case: %w", err)
		}
		if !swapped {
			return fnf.FnFCase{}, fnf.ErrConcurrentTransition
		}
		c.Status = fnf.CaseStatusCalculating
		c.Chain = approval.NewChain(fnf.AuthorityManager, fnf.AuthorityAccounts, fnf.AuthorityHRHead)
	case c.Chain.IsFullyApproved():
		swapped, err := s.FnFCaseRepository.TransitionStatus(ctx, caseID, fnf.CaseStatusPendingApproval, fnf.CaseStatusApproved)
		if err != nil {
			return fnf.FnFCase{}, fmt.Errorf("failed to transition F&F case: %w", err)
		}
		if !swapped {
			return fnf.FnFCase{}, fnf.ErrConcurrentTransition
		}
		c.Status = fnf.CaseStatusApproved
	}

	if err := s.FnFCaseRepository.Update(ctx, c); err != nil {
		return fnf.FnFCase{}, fmt.Errorf("failed to update F&F case: %w", err)
	}
	return c, nil
}

// ProcessPayout settles an approved case: the status CAS makes the
// payout single-shot, then the EL ledger is zeroed, the settled claims
// are marked paid and the exit artifacts are queued.
func (s *Service) ProcessPayout(ctx context.Context, caseID string, req fnf.PayoutRequest) (fnf.FnFCase, error) {
	if err := req.Validate(); err != nil {
		return fnf.FnFCase{}, err
	}

	c, err := s.FnFCaseRepository.GetByID(ctx, caseID)
	if err != nil {
		return fnf.FnFCase{}, fmt.Errorf("failed to get F&F case: %w", err)
	}
	if c.Status != fnf.CaseStatusApproved {
		return fnf.FnFCase{}, &fnf.InvalidStateError{
			Op: "payout", Current: c.Status, Expected: fnf.CaseStatusApproved,
		}
	}

	swapped, err := s.FnFCaseRepository.TransitionStatus(ctx, caseID, fnf.CaseStatusApproved, fnf.CaseStatusPaid)
	if err != nil {
		return fnf.FnFCase{}, fmt.Errorf("failed to transition F&F case: %w", err)
	}
	if !swapped {
		return fnf.FnFCase{}, fnf.ErrConcurrentTransition
	}

	now := time.Now()
	c.Status = fnf.CaseStatusPaid
	c.PaidAt = &now
	c.PayoutRef = &req.PayoutRef

	if c.ELEncashment.Days.IsPositive() {
		if err := s.zeroELLedger(ctx, &c); err != nil {
			slog.Error("Failed to zero EL ledger on payout", "case_id", caseID, "error", err)
		}
	}

	for _, claimID := range c.Incentives.ClaimIDs {
		claim, err := s.claims.GetByID(ctx, claimID)
		if err != nil {
			slog.Error("Failed to get settled claim", "case_id", caseID, "claim_id", claimID, "error", err)
			continue
		}
		claim.Paid = true
		claim.Status = incentive.ClaimStatusPaid
		if err := s.claims.Update(ctx, claim); err != nil {
			slog.Error("Failed to mark settled claim paid", "case_id", caseID, "claim_id", claimID, "error", err)
		}
	}

	if err := s.emitStatement(ctx, &c); err != nil {
		slog.Error("Failed to generate settlement statement", "case_id", caseID, "error", err)
	}
	c.RelievingLetterQueued = true
	c.AccessDisabled = true
	c.Form16PendingUpdate = true

	if err := s.FnFCaseRepository.Update(ctx, c); err != nil {
		return fnf.FnFCase{}, fmt.Errorf("failed to update F&F case: %w", err)
	}
	return c, nil
}

func (s *Service) zeroELLedger(ctx context.Context, c *fnf.FnFCase) error {
	policy, err := s.policies.GetByCode(ctx, elPolicyCode)
	if err != nil {
		return fmt.Errorf("failed to get EL policy: %w", err)
	}
	_, err = s.ledger.EncashAll(ctx, c.EmployeeID, policy.ID, c.LastWorkingDay.Year(), int(c.LastWorkingDay.Month()))
	return err
}

func (s *Service) emitStatement(ctx context.Context, c *fnf.FnFCase) error {
	emp, err := s.employees.GetByID(ctx, c.EmployeeID)
	if err != nil {
		return fmt.Errorf("failed to get employee: %w", err)
	}

	data := docgen.SettlementStatementData{
		CaseID:         c.ID,
		EmployeeCode:   emp.EmployeeCode,
		EmployeeName:   emp.FullName,
		LastWorkingDay: c.LastWorkingDay.Format("2006-01-02"),
		Payables: []docgen.LineItem{
			{Label: "Unpaid Salary", Amount: c.UnpaidSalary.Amount},
			{Label: "EL Encashment", Amount: c.ELEncashment.Amount},
			{Label: "Incentives", Amount: c.Incentives.Amount},
		},
		Receivables: []docgen.LineItem{
			{Label: "Notice Shortfall", Amount: c.Recoveries.NoticeShortfallAmount},
			{Label: "Statutory Deductions", Amount: c.Statutory.Total},
		},
		TotalPayable:  c.TotalPayable,
		TotalRecovery: c.TotalReceivable,
		NetSettlement: c.NetSettlement,
	}
	for _, item := range c.Recoveries.Items {
		data.Receivables = append(data.Receivables, docgen.LineItem{Label: item.Description, Amount: item.Amount})
	}

	if _, err := s.docs.SettlementStatement(data); err != nil {
		return err
	}
	c.StatementGenerated = true
	return nil
}

// Hold parks the case with a reason.
func (s *Service) Hold(ctx context.Context, caseID, reason string) (fnf.FnFCase, error) {
	c, err := s.FnFCaseRepository.GetByID(ctx, caseID)
	if err != nil {
		return fnf.FnFCase{}, fmt.Errorf("failed to get F&F case: %w", err)
	}
	if !c.Status.CanTransitionTo(fnf.CaseStatusOnHold) {
		return fnf.FnFCase{}, &fnf.InvalidStateError{
			Op: "hold", Current: c.Status, Expected: fnf.CaseStatusPendingApproval,
		}
	}

	swapped, err := s.FnFCaseRepository.TransitionStatus(ctx, caseID, c.Status, fnf.CaseStatusOnHold)
	if err != nil {
		return fnf.FnFCase{}, fmt.Errorf("failed to transition F&F case: %w", err)
	}
	if !swapped {
		return fnf.FnFCase{}, fnf.ErrConcurrentTransition
	}

	c.Status = fnf.CaseStatusOnHold
	c.OnHoldReason = &reason
	if err := s.FnFCaseRepository.Update(ctx, c); err != nil {
		return fnf.FnFCase{}, fmt.Errorf("failed to update F&F case: %w", err)
	}
	return c, nil
}

// Resume lifts a hold, returning to PENDING_APPROVAL when the blocks are
// already calculated, CALCULATING otherwise.
func (s *Service) Resume(ctx context.Context, caseID string) (fnf.FnFCase, error) {
	c, err := s.FnFCaseRepository.GetByID(ctx, caseID)
	if err != nil {
		return fnf.FnFCase{}, fmt.Errorf("failed to get F&F case: %w", err)
	}
	if c.Status != fnf.CaseStatusOnHold {
		return fnf.FnFCase{}, &fnf.InvalidStateError{
			Op: "resume", Current: c.Status, Expected: fnf.CaseStatusOnHold,
		}
	}

	next := fnf.CaseStatusCalculating
	if c.AllCalculated() {
		next = fnf.CaseStatusPendingApproval
	}

	swapped, err := s.FnFCaseRepository.TransitionStatus(ctx, caseID, fnf.CaseStatusOnHold, next)
	if err != nil {
		return fnf.FnFCase{}, fmt.Errorf("failed to transition F&F case: %w", err)
	}
	if !swapped {
		return fnf.FnFCase{}, fnf.ErrConcurrentTransition
	}

	c.Status = next
	c.OnHoldReason = nil
	if err := s.FnFCaseRepository.Update(ctx, c); err != nil {
		return fnf.FnFCase{}, fmt.Errorf("failed to update F&F case: %w", err)
	}
	return c, nil
}

// CancelCase abandons a non-terminal case.
func (s *Service) CancelCase(ctx context.Context, caseID string) (fnf.FnFCase, error) {
	c, err := s.FnFCaseRepository.GetByID(ctx, caseID)
	if err != nil {
		return fnf.FnFCase{}, fmt.Errorf("failed to get F&F case: %w", err)
	}
	if !c.Status.CanTransitionTo(fnf.CaseStatusCancelled) {
		return fnf.FnFCase{}, &fnf.InvalidStateError{
			Op: "cancel", Current: c.Status, Expected: fnf.CaseStatusPendingApproval,
		}
	}

	swapped, err := s.FnFCaseRepository.TransitionStatus(ctx, caseID, c.Status, fnf.CaseStatusCancelled)
	if err != nil {
		return fnf.FnFCase{}, fmt.Errorf("failed to transition F&F case: %w", err)
	}
	if !swapped {
		return fnf.FnFCase{}, fnf.ErrConcurrentTransition
	}

	c.Status = fnf.CaseStatusCancelled
	if err := s.FnFCaseRepository.Update(ctx, c); err != nil {
		return fnf.FnFCase{}, fmt.Errorf("failed to update F&F case: %w", err)
	}
	return c, nil
}

// GetCase returns one case by id.
func (s *Service) GetCase(ctx context.Context, caseID string) (fnf.FnFCase, error) {
	c, err := s.FnFCaseRepository.GetByID(ctx, caseID)
	if err != nil {
		return fnf.FnFCase{}, fmt.Errorf("failed to get F&F case: %w", err)
	}
	return c, nil
}
