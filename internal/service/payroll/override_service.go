package payroll

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/talentum-hr/payops-backend-go/internal/domain/approval"
	"github.com/talentum-hr/payops-backend-go/internal/domain/payroll"
	"github.com/talentum-hr/payops-backend-go/internal/pkg/database"
)

// OverrideService handles manual corrections to run components. An
// approved override rewrites the component line with source=OVERRIDE;
// locked and posted runs reject both creation and application.
type OverrideService struct {
	db                 *database.DB
	highValueThreshold decimal.Decimal
	runs               payroll.PayrollRunRepository
	components         payroll.PayrollComponentRepository
	payroll.PayrollOverrideRepository
}

func NewOverrideService(
	db *database.DB,
	highValueThreshold decimal.Decimal,
	runRepository payroll.PayrollRunRepository,
	componentRepository payroll.PayrollComponentRepository,
	overrideRepository payroll.PayrollOverrideRepository,
) *OverrideService {
	return &OverrideService{
		db:                        db,
		highValueThreshold:        highValueThreshold,
		runs:                      runRepository,
		components:                componentRepository,
		PayrollOverrideRepository: overrideRepository,
	}
}

func (s *OverrideService) CreateOverride(ctx context.Context, req payroll.CreateOverrideRequest, requestedBy string) (payroll.PayrollOverride, error) {
	if err := req.Validate(); err != nil {
		return payroll.PayrollOverride{}, err
	}

	run, err := s.runs.GetByID(ctx, req.RunID)
	if err != nil {
		return payroll.PayrollOverride{}, fmt.Errorf("failed to get payroll run: %w", err)
	}
	if run.Status != payroll.RunStatusReview {
		return payroll.PayrollOverride{}, &payroll.InvalidStateError{
			Op: "override", Current: run.Status, Expected: payroll.RunStatusReview,
		}
	}

	code := payroll.ComponentCode(req.ComponentCode)
	component, err := s.components.GetByRunEmployeeCode(ctx, req.RunID, req.EmployeeID, code)
	if err != nil {
		return payroll.PayrollOverride{}, fmt.Errorf("failed to get payroll component: %w", err)
	}

	overrideAmount := decimal.NewFromFloat(req.OverrideAmount)
	difference := overrideAmount.Sub(component.Amount)

	override := payroll.PayrollOverride{
		RunID:          req.RunID,
		EmployeeID:     req.EmployeeID,
		ComponentCode:  code,
		OriginalAmount: component.Amount,
		OverrideAmount: overrideAmount,
		Difference:     difference,
		ReasonCode:     req.ReasonCode,
		IsHighValue:    difference.Abs().GreaterThanOrEqual(s.highValueThreshold),
		Status:         payroll.OverrideStatusPending,
		RequestedBy:    requestedBy,
	}
	if override.IsHighValue {
		override.Chain = approval.NewChain(payroll.AuthorityPayrollAdmin, payroll.AuthorityFinanceHead)
	} else {
		override.Chain = approval.NewChain(payroll.AuthorityPayrollAdmin)
	}

	created, err := s.PayrollOverrideRepository.Create(ctx, override)
	if err != nil {
		return payroll.PayrollOverride{}, fmt.Errorf("failed to create payroll override: %w", err)
	}
	return created, nil
}

// DecideOverride records one chain decision. Full approval applies the
// override to the component in the same call.
func (s *OverrideService) DecideOverride(ctx context.Context, overrideID, actor string, req payroll.DecideOverrideRequest) (payroll.PayrollOverride, error) {
	override, err := s.PayrollOverrideRepository.GetByID(ctx, overrideID)
	if err != nil {
		return payroll.PayrollOverride{}, fmt.Errorf("failed to get payroll override: %w", err)
	}
	if override.Status != payroll.OverrideStatusPending {
		return payroll.PayrollOverride{}, payroll.ErrOverrideAlreadyDecided
	}

	if err := override.Chain.RecordDecision(req.Level, req.Approve, actor, req.Comments); err != nil {
		return payroll.PayrollOverride{}, err
	}

	switch {
	case override.Chain.IsRejected():
		override.Status = payroll.OverrideStatusRejected
	case override.Chain.IsFullyApproved():
		override.Status = payroll.OverrideStatusApproved
		if err := s.apply(ctx, &override); err != nil {
			return payroll.PayrollOverride{}, err
		}
	}

	if err := s.PayrollOverrideRepository.Update(ctx, override); err != nil {
		return payroll.PayrollOverride{}, fmt.Errorf("failed to update payroll override: %w", err)
	}
	return override, nil
}

// CancelOverride withdraws a pending override so the run can lock.
func (s *OverrideService) CancelOverride(ctx context.Context, overrideID string) (payroll.PayrollOverride, error) {
	override, err := s.PayrollOverrideRepository.GetByID(ctx, overrideID)
	if err != nil {
		return payroll.PayrollOverride{}, fmt.Errorf("failed to get payroll override: %w", err)
	}
	if override.Status != payroll.OverrideStatusPending {
		return payroll.PayrollOverride{}, payroll.ErrOverrideAlreadyDecided
	}

	override.Status = payroll.OverrideStatusCancelled
	if err := s.PayrollOverrideRepository.Update(ctx, override); err != nil {
		return payroll.PayrollOverride{}, fmt.Errorf("failed to update payroll override: %w", err)
	}
	return override, nil
}

func (s *OverrideService) apply(ctx context.Context, override *payroll.PayrollOverride) error {
	if override.Applied {
		return payroll.ErrOverrideAlreadyApplied
	}

	run, err := s.runs.GetByID(ctx, override.RunID)
	if err != nil {
		return fmt.Errorf("failed to get payroll run: %w", err)
	}
	if run.Status == payroll.RunStatusLocked || run.Status == payroll.RunStatusPosted {
		return payroll.ErrRunImmutable
	}

	component, err := s.components.GetByRunEmployeeCode(ctx, override.RunID, override.EmployeeID, override.ComponentCode)
	if err != nil {
		return fmt.Errorf("failed to get payroll component: %w", err)
	}

	component.Amount = override.OverrideAmount
	component.Source = payroll.SourceOverride
	component.OverrideID = &override.ID
	if err := s.components.Update(ctx, component); err != nil {
		return fmt.Errorf("failed to update payroll component: %w", err)
	}

	now := time.Now()
	override.Applied = true
	override.AppliedAt = &now
	return nil
}
