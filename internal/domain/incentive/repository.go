package incentive

import "context"

type ClaimFilter struct {
	EmployeeID *string
	Year       *int
	Month      *int
	Status     *ClaimStatus
	Tier       *Tier
}

type IncentiveClaimRepository interface {
	GetByID(ctx context.Context, id string) (IncentiveClaim, error)
	// GetByEmployeePeriod returns ErrClaimNotFound when absent.
	GetByEmployeePeriod(ctx context.Context, employeeID string, year, month int) (IncentiveClaim, error)
	List(ctx context.Context, filter ClaimFilter) ([]IncentiveClaim, error)
	// ApprovedUnpaidByEmployee feeds F&F settlement and payroll generation.
	ApprovedUnpaidByEmployee(ctx context.Context, employeeID string) ([]IncentiveClaim, error)
	Create(ctx context.Context, claim IncentiveClaim) (IncentiveClaim, error)
	Update(ctx context.Context, claim IncentiveClaim) error
	// CloseExpiredDisputeWindows marks claims whose window passed; returns count.
	CloseExpiredDisputeWindows(ctx context.Context) (int, error)
}

type SalesEventRepository interface {
	// CreateIfAbsent dedupes on invoice id; created is false for redelivery.
	CreateIfAbsent(ctx context.Context, event SalesEvent) (created bool, err error)
	GetByInvoiceID(ctx context.Context, invoiceID string) (SalesEvent, error)
}

type ReturnsRemakesRepository interface {
	// CreateIfAbsent dedupes on (invoice id, type); created is false for redelivery.
	CreateIfAbsent(ctx context.Context, item ReturnsRemakesItem) (created bool, err error)
	GetByID(ctx context.Context, id string) (ReturnsRemakesItem, error)
	// UnresolvedInPeriod lists items not yet claw-backed whose event date
	// falls in the given period.
	UnresolvedInPeriod(ctx context.Context, year, month int) ([]ReturnsRemakesItem, error)
	Update(ctx context.Context, item ReturnsRemakesItem) error
}
