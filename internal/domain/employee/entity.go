package employee

import (
	"time"

	"github.com/shopspring/decimal"
)

// Employee is the master-data snapshot the settlement engines consume.
// It is owned by an external collaborator; this module never writes it.
type Employee struct {
	ID               string
	EmployeeCode     string
	FullName         string
	StoreID          string
	Role             string
	DateOfJoining    time.Time
	ResignationDate  *time.Time
	EmploymentStatus EmploymentStatus
	NoticePeriodDays int
	BasicSalary      decimal.Decimal
	GrossSalary      decimal.Decimal
	BankName         string
	BankAccountNo    string
	BankIFSC         string
	PFApplicable     bool
	ESICApplicable   bool
	PAN              *string

	// Incentive eligibility gates
	TrainingComplete   bool
	DisciplineClear    bool
	AttendanceEligible bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

type EmploymentStatus string

const (
	EmploymentStatusActive     EmploymentStatus = "active"
	EmploymentStatusResigned   EmploymentStatus = "resigned"
	EmploymentStatusTerminated EmploymentStatus = "terminated"
)

// IsActive reports whether the employee participates in accrual and
// payroll batches.
func (e Employee) IsActive() bool {
	return e.EmploymentStatus == EmploymentStatusActive
}

// DailyRate30 is the flat thirty-day daily rate used for leave
// encashment, regardless of the actual days in the month.
func (e Employee) DailyRate30() decimal.Decimal {
	return e.BasicSalary.Div(decimal.NewFromInt(30))
}

// IncentiveEligible requires every gate to hold; any false gate zeroes
// the claim amount downstream.
func (e Employee) IncentiveEligible() bool {
	return e.TrainingComplete && e.DisciplineClear && e.AttendanceEligible
}
