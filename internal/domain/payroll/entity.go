package payroll

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/talentum-hr/payops-backend-go/internal/domain/approval"
)

// RunStatus enum; the lifecycle is DRAFT → PROCESSING → REVIEW → LOCKED
// → POSTED, with CANCELLED reachable from any pre-POSTED state.
type RunStatus string

const (
	RunStatusDraft      RunStatus = "DRAFT"
	RunStatusProcessing RunStatus = "PROCESSING"
	RunStatusReview     RunStatus = "REVIEW"
	RunStatusLocked     RunStatus = "LOCKED"
	RunStatusPosted     RunStatus = "POSTED"
	RunStatusCancelled  RunStatus = "CANCELLED"
)

var runTransitions = map[RunStatus][]RunStatus{
	RunStatusDraft:      {RunStatusProcessing, RunStatusCancelled},
	RunStatusProcessing: {RunStatusReview, RunStatusCancelled},
	RunStatusReview:     {RunStatusLocked, RunStatusCancelled},
	RunStatusLocked:     {RunStatusPosted, RunStatusCancelled},
	RunStatusPosted:     {},
	RunStatusCancelled:  {},
}

// CanTransitionTo reports whether next is a legal transition from s.
func (s RunStatus) CanTransitionTo(next RunStatus) bool {
	for _, allowed := range runTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// PayrollRun is keyed by (month, year), unique. Aggregate totals are
// recomputed from component rows, never stored as source of truth.
type PayrollRun struct {
	ID     string
	Month  int // 1..12
	Year   int
	Status RunStatus

	// Process sub-step flags; a retried Process call skips completed steps.
	AttendanceImported  bool
	IncentivesGenerated bool
	ClawbacksResolved   bool
	VarianceReported    bool
	ProcessingError     *string

	JVNumber *string
	JVDate   *time.Time

	LockedBy    *string
	LockedAt    *time.Time
	PostedBy    *string
	PostedAt    *time.Time
	CancelledBy *string
	CancelledAt *time.Time

	CreatedBy string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type ComponentType string

const (
	ComponentTypeEarnings   ComponentType = "EARNINGS"
	ComponentTypeDeductions ComponentType = "DEDUCTIONS"
)

type ComponentCode string

const (
	CodeBasic       ComponentCode = "BASIC"
	CodeHRA         ComponentCode = "HRA"
	CodeSpecial     ComponentCode = "SPECIAL"
	CodeIncentive   ComponentCode = "INCENTIVE"
	CodeELEncash    ComponentCode = "EL_ENCASH"
	CodeLWP         ComponentCode = "LWP"
	CodeClawback    ComponentCode = "CLAWBACK"
	CodePoolPenalty ComponentCode = "POOL_PENALTY"
	CodePF          ComponentCode = "PF"
	CodeESIC        ComponentCode = "ESIC"
	CodePT          ComponentCode = "PT"
	CodeTDS         ComponentCode = "TDS"
)

type ComponentSource string

const (
	SourceCalc     ComponentSource = "CALC"
	SourceOverride ComponentSource = "OVERRIDE"
	SourceManual   ComponentSource = "MANUAL"
)

// PayrollComponent is one line per (employee, run, code). Rows become
// immutable once the owning run is LOCKED.
type PayrollComponent struct {
	ID         string
	RunID      string
	EmployeeID string
	Type       ComponentType
	Code       ComponentCode
	Amount     decimal.Decimal
	Source     ComponentSource

	// Traceability to whatever produced the line, when applicable:
	// an override record, an incentive claim, or a returns/remakes item.
	OverrideID  *string
	SourceRefID *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Approval authorities for the override chain. High-value overrides add
// the finance head as a second level.
const (
	AuthorityPayrollAdmin = "payroll_admin"
	AuthorityFinanceHead  = "finance_head"
)

type OverrideStatus string

const (
	OverrideStatusPending   OverrideStatus = "pending"
	OverrideStatusApproved  OverrideStatus = "approved"
	OverrideStatusRejected  OverrideStatus = "rejected"
	OverrideStatusCancelled OverrideStatus = "cancelled"
)

// PayrollOverride proposes a manual correction to one component of one
// employee in one run. A difference at or above the high-value threshold
// forces a second approval level.
type PayrollOverride struct {
	ID            string
	RunID         string
	EmployeeID    string
	ComponentCode ComponentCode

	OriginalAmount decimal.Decimal
	OverrideAmount decimal.Decimal
	Difference     decimal.Decimal // override - original
	ReasonCode     string

	IsHighValue bool
	Status      OverrideStatus
	Chain       approval.Chain

	Applied   bool
	AppliedAt *time.Time

	RequestedBy string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// RunTotals is the aggregate view recomputed from component rows.
type RunTotals struct {
	Gross      decimal.Decimal
	Deductions decimal.Decimal
	Net        decimal.Decimal
	ByCode     map[ComponentCode]decimal.Decimal
	Employees  int
}

// ComputeTotals folds component rows into gross/deduction/net aggregates.
func ComputeTotals(components []PayrollComponent) RunTotals {
	totals := RunTotals{ByCode: make(map[ComponentCode]decimal.Decimal)}
	seen := make(map[string]struct{})

	for _, c := range components {
		if c.Type == ComponentTypeEarnings {
			totals.Gross = totals.Gross.Add(c.Amount)
		} else {
			totals.Deductions = totals.Deductions.Add(c.Amount)
		}
		totals.ByCode[c.Code] = totals.ByCode[c.Code].Add(c.Amount)
		seen[c.EmployeeID] = struct{}{}
	}

	totals.Net = totals.Gross.Sub(totals.Deductions)
	totals.Employees = len(seen)
	return totals
}

// AttendanceFact is one employee's imported attendance summary for the
// run period. The import feed is an external collaborator.
type AttendanceFact struct {
	EmployeeID  string
	WorkingDays int
	PresentDays int
	LWPDays     decimal.Decimal
}

// VarianceLine flags anomalous per-employee net deltas vs the prior run.
type VarianceLine struct {
	EmployeeID string
	PriorNet   decimal.Decimal
	CurrentNet decimal.Decimal
	DeltaPct   decimal.Decimal
	Flagged    bool
}
