package incentive

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/talentum-hr/payops-backend-go/internal/domain/approval"
)

type ClaimStatus string

const (
	ClaimStatusPending  ClaimStatus = "pending"
	ClaimStatusApproved ClaimStatus = "approved"
	ClaimStatusRejected ClaimStatus = "rejected"
	ClaimStatusPaid     ClaimStatus = "paid"
)

// Approval authorities for incentive claims, in chain order.
const (
	AuthorityStoreManager = "store_manager"
	AuthorityAreaManager  = "area_manager"
	AuthorityFinance      = "finance"
)

// IncentiveClaim is keyed by (employee, period). CalculatedAmount comes
// from the slab table; ApprovedAmount may be adjusted downward at each
// approval level and the final posted amount is authoritative.
type IncentiveClaim struct {
	ID         string
	EmployeeID string
	Year       int
	Month      int // 1..12

	TargetSales    decimal.Decimal
	ActualSales    decimal.Decimal
	AchievementPct decimal.Decimal
	SlabName       string

	CalculatedAmount decimal.Decimal
	ApprovedAmount   *decimal.Decimal
	Tier             Tier

	EligibilityPassed bool

	Status ClaimStatus
	Chain  approval.Chain

	// Opens on final approval, fixed duration; claims stay contestable
	// until the deadline.
	DisputeWindowClosesAt *time.Time

	Paid        bool
	PaidInRunID *string

	CreatedAt time.Time
	UpdatedAt time.Time

	// Relationships (for responses)
	EmployeeName *string
}

// EffectiveAmount is the posted amount when approved, else the calculated one.
func (c IncentiveClaim) EffectiveAmount() decimal.Decimal {
	if c.ApprovedAmount != nil {
		return *c.ApprovedAmount
	}
	return c.CalculatedAmount
}

// InDispute reports whether the claim is still contestable.
func (c IncentiveClaim) InDispute(now time.Time) bool {
	return c.DisputeWindowClosesAt != nil && now.Before(*c.DisputeWindowClosesAt)
}

// SalesEvent is an intake record from the sales-closed webhook, keyed by
// invoice. At-least-once delivery is deduped on the invoice id.
type SalesEvent struct {
	ID         string
	InvoiceID  string
	EmployeeID string
	StoreID    string
	Amount     decimal.Decimal
	SaleDate   time.Time
	ReceivedAt time.Time
}

type ReturnType string

const (
	ReturnTypeReturn ReturnType = "RETURN"
	ReturnTypeRemake ReturnType = "REMAKE"
)

type ClawbackMethod string

const (
	ClawbackMethodProportional ClawbackMethod = "PROPORTIONAL"
	ClawbackMethodPoolPenalty  ClawbackMethod = "POOL_PENALTY"
)

// ReturnsRemakesItem is a post-sale event linked to an invoice. The
// claw-back applicability flags are derived from their inputs on every
// read, never stored independently of them.
type ReturnsRemakesItem struct {
	ID               string
	InvoiceID        string
	EmployeeID       string
	StoreID          string
	Type             ReturnType
	Amount           decimal.Decimal
	EventDate        time.Time
	OriginalSaleDate time.Time
	Reason           *string

	PolicyWindowDays int
	PolicyApplicable bool
	Exempted         bool

	ClawbackApplied bool
	ClawbackAmount  *decimal.Decimal
	ClawbackMethod  *ClawbackMethod
	ResolvedInRunID *string
	// Populated when no original claim could be matched; the run completes
	// and a human reconciles.
	UnresolvedReason *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (r ReturnsRemakesItem) DaysSinceSale() int {
	return int(r.EventDate.Sub(r.OriginalSaleDate).Hours() / 24)
}

func (r ReturnsRemakesItem) WithinPolicyWindow() bool {
	days := r.DaysSinceSale()
	return days >= 0 && days <= r.PolicyWindowDays
}

// ClawbackApplicable: within window AND policy applies AND not exempted.
func (r ReturnsRemakesItem) ClawbackApplicable() bool {
	return r.WithinPolicyWindow() && r.PolicyApplicable && !r.Exempted
}
