package leave

import (
	"context"

	"github.com/shopspring/decimal"
)

type LeavePolicyRepository interface {
	GetByID(ctx context.Context, id string) (LeavePolicy, error)
	GetByCode(ctx context.Context, code string) (LeavePolicy, error)
	GetActive(ctx context.Context) ([]LeavePolicy, error)
}

type LeaveLedgerRepository interface {
	// GetEntry returns ErrLedgerEntryNotFound when the period has no record yet.
	GetEntry(ctx context.Context, employeeID, policyID string, year, month int) (LedgerEntry, error)
	GetByEmployeeYear(ctx context.Context, employeeID string, year int) ([]LedgerEntry, error)
	// EncashedDaysInMonth sums encashed days across policies for the
	// period; payroll pays them out in the following run.
	EncashedDaysInMonth(ctx context.Context, employeeID string, year, month int) (decimal.Decimal, error)
	Create(ctx context.Context, entry LedgerEntry) (LedgerEntry, error)
	Update(ctx context.Context, entry LedgerEntry) error
}

type LeaveRequestRepository interface {
	GetByID(ctx context.Context, id string) (LeaveRequest, error)
	GetByEmployee(ctx context.Context, employeeID string) ([]LeaveRequest, error)
	// ApprovedLWPDays returns total approved loss-of-pay days for the period.
	ApprovedLWPDays(ctx context.Context, employeeID string, year, month int) (float64, error)
	Create(ctx context.Context, request LeaveRequest) (LeaveRequest, error)
	Update(ctx context.Context, request LeaveRequest) error
}
