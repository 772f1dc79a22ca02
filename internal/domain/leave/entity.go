package leave

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/talentum-hr/payops-backend-go/internal/domain/approval"
)

// LeavePolicy entity
type LeavePolicy struct {
	ID          string
	Name        string
	Code        string // "EL", "CL", "SL", "LWP"
	Description *string

	// Accrual Rules
	DaysPerYear     decimal.Decimal
	MonthlyAccrual  bool
	FlatMonthlyRate *decimal.Decimal // overrides DaysPerYear/12 when set

	// Carry-forward Rules
	CarryForwardEnabled bool
	CarryForwardMaxDays decimal.Decimal

	// Year-close Rules
	EncashOnYearClose bool // EL-style year-end encashment

	// Request Rules
	AllowNegativeBalance bool
	AllowHalfDay         bool
	BlackoutDates        []string // "2006-01-02" dates blocked for submission
	BlackoutOverrideRole *string  // role allowed to override a blackout date
	MedicalCertAfterDays *int     // certificate required when days exceed this

	// Approval chain configuration, ordered
	ApprovalAuthorities []string

	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// MonthlyAccrualRate returns the configured flat rate, or days_per_year/12.
func (p LeavePolicy) MonthlyAccrualRate() decimal.Decimal {
	if p.FlatMonthlyRate != nil {
		return *p.FlatMonthlyRate
	}
	return p.DaysPerYear.Div(decimal.NewFromInt(12))
}

// IsBlackout reports whether the date is blocked for submission.
func (p LeavePolicy) IsBlackout(date time.Time) bool {
	d := date.Format("2006-01-02")
	for _, b := range p.BlackoutDates {
		if b == d {
			return true
		}
	}
	return false
}

// RequiresMedicalCert is a function of the policy AND the requested days,
// not the policy alone.
func (p LeavePolicy) RequiresMedicalCert(days decimal.Decimal) bool {
	if p.MedicalCertAfterDays == nil {
		return false
	}
	return days.GreaterThan(decimal.NewFromInt(int64(*p.MedicalCertAfterDays)))
}

type LeaveRequestStatus string

const (
	LeaveRequestStatusDraft     LeaveRequestStatus = "draft"
	LeaveRequestStatusPending   LeaveRequestStatus = "pending"
	LeaveRequestStatusApproved  LeaveRequestStatus = "approved"
	LeaveRequestStatusRejected  LeaveRequestStatus = "rejected"
	LeaveRequestStatusCancelled LeaveRequestStatus = "cancelled"
	LeaveRequestStatusWithdrawn LeaveRequestStatus = "withdrawn"
)

// LeaveDurationEnum maps to leave_duration_enum in DB
type LeaveDurationEnum string

const (
	LeaveDurationFullDay          LeaveDurationEnum = "full_day"
	LeaveDurationHalfDayMorning   LeaveDurationEnum = "half_day_morning"
	LeaveDurationHalfDayAfternoon LeaveDurationEnum = "half_day_afternoon"
)

// LeaveRequest entity
type LeaveRequest struct {
	ID            string
	EmployeeID    string
	LeavePolicyID string

	StartDate time.Time
	EndDate   time.Time

	DurationType LeaveDurationEnum
	Days         decimal.Decimal

	Reason             string
	MedicalCertURL     *string
	BlackoutOverrideBy *string // area-manager actor who overrode a blackout date

	Status LeaveRequestStatus
	Chain  approval.Chain

	// Balance snapshot taken at submission time
	BalanceAvailable decimal.Decimal
	BalanceAfter     decimal.Decimal
	NegativeBalance  bool

	CancelledBy        *string
	CancelledAt        *time.Time
	CancellationReason *string

	SubmittedAt time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time

	// Relationships (for responses)
	PolicyName   *string
	EmployeeName *string
}

// RequestDays computes the inclusive day count of a request, half-day aware:
// a half-day duration subtracts 0.5 from the inclusive count.
func RequestDays(startDate, endDate time.Time, durationType LeaveDurationEnum) decimal.Decimal {
	days := decimal.NewFromInt(int64(endDate.Sub(startDate).Hours()/24) + 1)

	if durationType == LeaveDurationHalfDayMorning || durationType == LeaveDurationHalfDayAfternoon {
		days = days.Sub(decimal.NewFromFloat(0.5))
	}

	return days
}
