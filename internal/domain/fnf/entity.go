package fnf

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/talentum-hr/payops-backend-go/internal/domain/approval"
)

type CaseStatus string

const (
	CaseStatusInitiated       CaseStatus = "INITIATED"
	CaseStatusCalculating     CaseStatus = "CALCULATING"
	CaseStatusPendingApproval CaseStatus = "PENDING_APPROVAL"
	CaseStatusApproved        CaseStatus = "APPROVED"
	CaseStatusPaid            CaseStatus = "PAID"
	CaseStatusCancelled       CaseStatus = "CANCELLED"
	CaseStatusOnHold          CaseStatus = "ON_HOLD"
)

var caseTransitions = map[CaseStatus][]CaseStatus{
	CaseStatusInitiated:       {CaseStatusCalculating, CaseStatusCancelled, CaseStatusOnHold},
	CaseStatusCalculating:     {CaseStatusPendingApproval, CaseStatusCancelled, CaseStatusOnHold},
	CaseStatusPendingApproval: {CaseStatusApproved, CaseStatusCalculating, CaseStatusCancelled, CaseStatusOnHold},
	CaseStatusApproved:        {CaseStatusPaid, CaseStatusCancelled, CaseStatusOnHold},
	CaseStatusOnHold:          {CaseStatusCalculating, CaseStatusPendingApproval, CaseStatusCancelled},
	CaseStatusPaid:            {},
	CaseStatusCancelled:       {},
}

func (s CaseStatus) CanTransitionTo(next CaseStatus) bool {
	for _, allowed := range caseTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Approval authorities for F&F cases, in chain order.
const (
	AuthorityManager  = "manager"
	AuthorityAccounts = "accounts"
	AuthorityHRHead   = "hr_head"
)

// UnpaidSalaryBlock: daily-rate × days worked in the final partial month.
type UnpaidSalaryBlock struct {
	Calculated bool            `json:"calculated"`
	DaysWorked int             `json:"days_worked"`
	Amount     decimal.Decimal `json:"amount"`
}

// ELEncashmentBlock reads the ledger's current-year EL closing without
// mutating it; the ledger is zeroed only on actual payout so the
// calculation stays re-runnable.
type ELEncashmentBlock struct {
	Calculated bool            `json:"calculated"`
	Days       decimal.Decimal `json:"days"`
	Amount     decimal.Decimal `json:"amount"`
}

type IncentivesBlock struct {
	Calculated bool            `json:"calculated"`
	ClaimIDs   []string        `json:"claim_ids,omitempty"`
	Amount     decimal.Decimal `json:"amount"`
}

// RecoveryItem is an externally supplied asset/advance/loan recovery.
type RecoveryItem struct {
	Kind        string          `json:"kind"` // "asset", "advance", "loan"
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
}

type RecoveriesBlock struct {
	Calculated            bool            `json:"calculated"`
	NoticeShortfallDays   int             `json:"notice_shortfall_days"`
	NoticeShortfallAmount decimal.Decimal `json:"notice_shortfall_amount"`
	Items                 []RecoveryItem  `json:"items,omitempty"`
	Total                 decimal.Decimal `json:"total"`
}

// StatutoryBlock is simplified banded TDS on total payable plus final
// PF/ESIC placeholders.
type StatutoryBlock struct {
	Calculated bool            `json:"calculated"`
	TDS        decimal.Decimal `json:"tds"`
	PFFinal    decimal.Decimal `json:"pf_final"`
	ESICFinal  decimal.Decimal `json:"esic_final"`
	Total      decimal.Decimal `json:"total"`
}

// FnFCase is one settlement case per (employee, last-working-day).
type FnFCase struct {
	ID         string
	EmployeeID string

	LastWorkingDay time.Time
	Reason         string

	// Snapshots taken at initiation
	DateOfJoining    time.Time
	NoticePeriodDays int
	NoticeGivenDays  int
	BasicSalary      decimal.Decimal
	GrossSalary      decimal.Decimal

	Status CaseStatus

	UnpaidSalary UnpaidSalaryBlock
	ELEncashment ELEncashmentBlock
	Incentives   IncentivesBlock
	Recoveries   RecoveriesBlock
	Statutory    StatutoryBlock

	// net = payable - receivable; negative means the employee owes the
	// company.
	TotalPayable    decimal.Decimal
	TotalReceivable decimal.Decimal
	NetSettlement   decimal.Decimal

	Chain approval.Chain

	PaidAt    *time.Time
	PayoutRef *string

	// Irreversible payout flags
	StatementGenerated    bool
	RelievingLetterQueued bool
	AccessDisabled        bool
	Form16PendingUpdate   bool

	OnHoldReason *string

	InitiatedBy string
	CreatedAt   time.Time
	UpdatedAt   time.Time

	// Relationships (for responses)
	EmployeeName *string
}

// AllCalculated gates the CALCULATING → PENDING_APPROVAL transition.
func (c FnFCase) AllCalculated() bool {
	return c.UnpaidSalary.Calculated &&
		c.ELEncashment.Calculated &&
		c.Incentives.Calculated &&
		c.Recoveries.Calculated &&
		c.Statutory.Calculated
}
