package incentive

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/talentum-hr/payops-backend-go/internal/domain/approval"
	"github.com/talentum-hr/payops-backend-go/internal/domain/employee"
	"github.com/talentum-hr/payops-backend-go/internal/domain/incentive"
	"github.com/talentum-hr/payops-backend-go/internal/pkg/database"
)

// ClaimService computes and approves monthly incentive claims. The slab
// amount is fixed at creation; approvers may only adjust downward.
type ClaimService struct {
	db                *database.DB
	disputeWindowDays int
	incentive.IncentiveClaimRepository
	employees employee.EmployeeRepository
}

func NewClaimService(
	db *database.DB,
	disputeWindowDays int,
	claimRepository incentive.IncentiveClaimRepository,
	employeeRepository employee.EmployeeRepository,
) *ClaimService {
	return &ClaimService{
		db:                       db,
		disputeWindowDays:        disputeWindowDays,
		IncentiveClaimRepository: claimRepository,
		employees:                employeeRepository,
	}
}

func (s *ClaimService) CreateClaim(ctx context.Context, req incentive.CreateClaimRequest) (incentive.IncentiveClaim, error) {
	if err := req.Validate(); err != nil {
		return incentive.IncentiveClaim{}, err
	}

	emp, err := s.employees.GetByID(ctx, req.EmployeeID)
	if err != nil {
		return incentive.IncentiveClaim{}, fmt.Errorf("failed to get employee: %w", err)
	}

	_, err = s.IncentiveClaimRepository.GetByEmployeePeriod(ctx, req.EmployeeID, req.Year, req.Month)
	if err == nil {
		return incentive.IncentiveClaim{}, incentive.ErrClaimAlreadyExists
	}
	if !errors.Is(err, incentive.ErrClaimNotFound) {
		return incentive.IncentiveClaim{}, fmt.Errorf("failed to check existing claim: %w", err)
	}

	target := decimal.NewFromFloat(req.TargetSales)
	actual := decimal.NewFromFloat(req.ActualSales)
	achievementPct := incentive.AchievementPercent(actual, target)

	claim := incentive.IncentiveClaim{
		EmployeeID:        req.EmployeeID,
		Year:              req.Year,
		Month:             req.Month,
		TargetSales:       target,
		ActualSales:       actual,
		AchievementPct:    achievementPct,
		EligibilityPassed: emp.IncentiveEligible(),
		Status:            incentive.ClaimStatusPending,
		Chain: approval.NewChain(
			incentive.AuthorityStoreManager,
			incentive.AuthorityAreaManager,
			incentive.AuthorityFinance,
		),
	}

	// A failed gate zeroes the amount but still files the claim so the
	// period has an auditable record.
	if claim.EligibilityPassed {
		if slab, ok := incentive.FindSlab(achievementPct, incentive.DefaultSlabs); ok {
			claim.SlabName = slab.Name
			claim.CalculatedAmount = incentive.SlabAmount(target, actual, slab)
		}
	}
	claim.Tier = incentive.TierFor(claim.CalculatedAmount)

	created, err := s.IncentiveClaimRepository.Create(ctx, claim)
	if err != nil {
		return incentive.IncentiveClaim{}, fmt.Errorf("failed to create incentive claim: %w", err)
	}

	return created, nil
}

// Decide records one approval-chain decision. Amount adjustments are
// allowed on approval only, and only downward from the current effective
// amount. Final approval opens the dispute window.
func (s *ClaimService) Decide(ctx context.Context, claimID, actor string, req incentive.DecideClaimRequest) (incentive.IncentiveClaim, error) {
	claim, err := s.IncentiveClaimRepository.GetByID(ctx, claimID)
	if err != nil {
		return incentive.IncentiveClaim{}, fmt.Errorf("failed to get incentive claim: %w", err)
	}

	if claim.Status != incentive.ClaimStatusPending {
		return incentive.IncentiveClaim{}, incentive.ErrClaimAlreadyProcessed
	}

	if req.Approve && req.Amount != nil {
		amount := decimal.NewFromFloat(*req.Amount)
		if amount.GreaterThan(claim.EffectiveAmount()) {
			return incentive.IncentiveClaim{}, incentive.ErrAmountIncreaseNotAllowed
		}
		claim.ApprovedAmount = &amount
	}

	if err := claim.Chain.RecordDecision(req.Level, req.Approve, actor, req.Comments); err != nil {
		return incentive.IncentiveClaim{}, err
	}

	switch {
	case claim.Chain.IsRejected():
		claim.Status = incentive.ClaimStatusRejected
	case claim.Chain.IsFullyApproved():
		claim.Status = incentive.ClaimStatusApproved
		closesAt := time.Now().AddDate(0, 0, s.disputeWindowDays)
		claim.DisputeWindowClosesAt = &closesAt
	}

	if err := s.IncentiveClaimRepository.Update(ctx, claim); err != nil {
		return incentive.IncentiveClaim{}, fmt.Errorf("failed to update incentive claim: %w", err)
	}

	return claim, nil
}

func (s *ClaimService) GetClaim(ctx context.Context, claimID string) (incentive.IncentiveClaim, error) {
	return s.IncentiveClaimRepository.GetByID(ctx, claimID)
}

func (s *ClaimService) ListClaims(ctx context.Context, filter incentive.ClaimFilter) ([]incentive.IncentiveClaim, error) {
	return s.IncentiveClaimRepository.List(ctx, filter)
}

// CloseExpiredDisputeWindows finalizes claims whose window lapsed.
func (s *ClaimService) CloseExpiredDisputeWindows(ctx context.Context) (int, error) {
	return s.IncentiveClaimRepository.CloseExpiredDisputeWindows(ctx)
}
