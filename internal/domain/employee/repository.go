package employee

import "context"

type EmployeeRepository interface {
	GetByID(ctx context.Context, id string) (Employee, error)
	GetActive(ctx context.Context) ([]Employee, error)
	GetActiveByStoreID(ctx context.Context, storeID string) ([]Employee, error)
}
