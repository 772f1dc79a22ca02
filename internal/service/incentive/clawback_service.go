package incentive

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/talentum-hr/payops-backend-go/internal/domain/employee"
	"github.com/talentum-hr/payops-backend-go/internal/domain/incentive"
	"github.com/talentum-hr/payops-backend-go/internal/pkg/database"
)

// ClawbackService ingests the POS webhook feed and resolves returns and
// remakes into claw-back charges during payroll processing.
type ClawbackService struct {
	db             *database.DB
	poolPenaltyPct decimal.Decimal
	method         incentive.ClawbackMethod
	sales          incentive.SalesEventRepository
	incentive.ReturnsRemakesRepository
	claims    incentive.IncentiveClaimRepository
	employees employee.EmployeeRepository
}

func NewClawbackService(
	db *database.DB,
	poolPenaltyPct float64,
	method incentive.ClawbackMethod,
	salesRepository incentive.SalesEventRepository,
	returnsRepository incentive.ReturnsRemakesRepository,
	claimRepository incentive.IncentiveClaimRepository,
	employeeRepository employee.EmployeeRepository,
) *ClawbackService {
	return &ClawbackService{
		db:                       db,
		poolPenaltyPct:           decimal.NewFromFloat(poolPenaltyPct),
		method:                   method,
		sales:                    salesRepository,
		ReturnsRemakesRepository: returnsRepository,
		claims:                   claimRepository,
		employees:                employeeRepository,
	}
}

// IngestSalesClosed records a sales-closed event. The feed delivers
// at-least-once; redeliveries return created=false and change nothing.
func (s *ClawbackService) IngestSalesClosed(ctx context.Context, payload incentive.SalesClosedPayload) (bool, error) {
	if err := payload.Validate(); err != nil {
		return false, err
	}

	saleDate, err := time.Parse("2006-01-02", payload.SaleDate)
	if err != nil {
		return false, fmt.Errorf("failed to parse sale date: %w", err)
	}

	created, err := s.sales.CreateIfAbsent(ctx, incentive.SalesEvent{
		InvoiceID:  payload.InvoiceID,
		EmployeeID: payload.EmployeeID,
		StoreID:    payload.StoreID,
		Amount:     decimal.NewFromFloat(payload.Amount),
		SaleDate:   saleDate,
		ReceivedAt: time.Now(),
	})
	if err != nil {
		return false, fmt.Errorf("failed to record sales event: %w", err)
	}
	return created, nil
}

// IngestReturn records a returns/remakes event, deduped on (invoice, type).
func (s *ClawbackService) IngestReturn(ctx context.Context, payload incentive.ReturnsRemakesPayload) (bool, error) {
	if err := payload.Validate(); err != nil {
		return false, err
	}

	eventDate, err := time.Parse("2006-01-02", payload.EventDate)
	if err != nil {
		return false, fmt.Errorf("failed to parse event date: %w", err)
	}
	saleDate, err := time.Parse("2006-01-02", payload.OriginalSaleDate)
	if err != nil {
		return false, fmt.Errorf("failed to parse original sale date: %w", err)
	}

	created, err := s.ReturnsRemakesRepository.CreateIfAbsent(ctx, incentive.ReturnsRemakesItem{
		InvoiceID:        payload.InvoiceID,
		EmployeeID:       payload.EmployeeID,
		StoreID:          payload.StoreID,
		Type:             incentive.ReturnType(payload.Type),
		Amount:           decimal.NewFromFloat(payload.Amount),
		EventDate:        eventDate,
		OriginalSaleDate: saleDate,
		Reason:           payload.Reason,
		PolicyWindowDays: payload.PolicyWindowDays,
		PolicyApplicable: payload.PolicyApplicable,
		Exempted:         payload.Exempted,
	})
	if err != nil {
		return false, fmt.Errorf("failed to record returns/remakes item: %w", err)
	}
	return created, nil
}

// ClawbackCharge is one charge to emit into a payroll run.
type ClawbackCharge struct {
	ItemID     string
	EmployeeID string
	Amount     decimal.Decimal
	Method     incentive.ClawbackMethod
}

// ResolveForPeriod walks the unresolved returns/remakes of a period and
// produces the claw-back charges for the given payroll run. Items that
// cannot be matched to an original claim fall back to the pool penalty;
// items that cannot be resolved at all are flagged for reconciliation
// without failing the run.
func (s *ClawbackService) ResolveForPeriod(ctx context.Context, year, month int, runID string) ([]ClawbackCharge, error) {
	items, err := s.ReturnsRemakesRepository.UnresolvedInPeriod(ctx, year, month)
	if err != nil {
		return nil, fmt.Errorf("failed to list unresolved returns/remakes: %w", err)
	}

	var charges []ClawbackCharge
	for _, item := range items {
		if item.ClawbackApplied {
			continue
		}
		if !item.ClawbackApplicable() {
			continue
		}

		itemCharges, reason, err := s.resolveItem(ctx, &item)
		if err != nil {
			return nil, err
		}

		if reason != "" {
			item.UnresolvedReason = &reason
			slog.Warn("Claw-back unresolved",
				"item_id", item.ID,
				"invoice_id", item.InvoiceID,
				"reason", reason)
		} else {
			total := decimal.Zero
			for _, c := range itemCharges {
				total = total.Add(c.Amount)
			}
			item.ClawbackApplied = true
			item.ClawbackAmount = &total
			item.ResolvedInRunID = &runID
			charges = append(charges, itemCharges...)
		}

		if err := s.ReturnsRemakesRepository.Update(ctx, item); err != nil {
			return nil, fmt.Errorf("failed to update returns/remakes item: %w", err)
		}
	}

	return charges, nil
}

func (s *ClawbackService) resolveItem(ctx context.Context, item *incentive.ReturnsRemakesItem) ([]ClawbackCharge, string, error) {
	// A store configured for pooled recovery charges the pool even when
	// the original earner is known.
	if s.method == incentive.ClawbackMethodPoolPenalty {
		return s.poolPenalty(ctx, item, "pool penalty configured")
	}

	sale, err := s.sales.GetByInvoiceID(ctx, item.InvoiceID)
	if errors.Is(err, incentive.ErrSalesEventNotFound) {
		return s.poolPenalty(ctx, item, "original sales event not found")
	}
	if err != nil {
		return nil, "", fmt.Errorf("failed to get sales event: %w", err)
	}

	claim, err := s.claims.GetByEmployeePeriod(ctx,
		sale.EmployeeID, sale.SaleDate.Year(), int(sale.SaleDate.Month()))
	if errors.Is(err, incentive.ErrClaimNotFound) {
		return s.poolPenalty(ctx, item, "no incentive claim for original sale period")
	}
	if err != nil {
		return nil, "", fmt.Errorf("failed to get incentive claim: %w", err)
	}

	if claim.Status != incentive.ClaimStatusApproved && claim.Status != incentive.ClaimStatusPaid {
		return s.poolPenalty(ctx, item, "original claim was never approved")
	}

	amount := incentive.ProportionalClawback(item.Amount, claim.ActualSales, claim.EffectiveAmount())
	if amount.IsZero() {
		return nil, "original claim carries no recoverable amount", nil
	}

	method := incentive.ClawbackMethodProportional
	item.ClawbackMethod = &method
	return []ClawbackCharge{{
		ItemID:     item.ID,
		EmployeeID: sale.EmployeeID,
		Amount:     amount,
		Method:     method,
	}}, "", nil
}

// poolPenalty spreads a flat percentage of the returned amount evenly
// across the store's active employees, remainder to the first.
func (s *ClawbackService) poolPenalty(ctx context.Context, item *incentive.ReturnsRemakesItem, cause string) ([]ClawbackCharge, string, error) {
	staff, err := s.employees.GetActiveByStoreID(ctx, item.StoreID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to get store employees: %w", err)
	}
	if len(staff) == 0 {
		return nil, cause + "; no active store employees for pool penalty", nil
	}

	penalty := item.Amount.Mul(s.poolPenaltyPct).Div(decimal.NewFromInt(100)).Round(2)
	if penalty.IsZero() {
		return nil, cause + "; pool penalty rounds to zero", nil
	}

	n := decimal.NewFromInt(int64(len(staff)))
	share := penalty.Div(n).RoundDown(2)
	remainder := penalty.Sub(share.Mul(n))

	method := incentive.ClawbackMethodPoolPenalty
	item.ClawbackMethod = &method

	charges := make([]ClawbackCharge, 0, len(staff))
	for i, emp := range staff {
		amount := share
		if i == 0 {
			amount = amount.Add(remainder)
		}
		charges = append(charges, ClawbackCharge{
			ItemID:     item.ID,
			EmployeeID: emp.ID,
			Amount:     amount,
			Method:     method,
		})
	}
	return charges, "", nil
}
