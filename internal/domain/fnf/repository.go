package fnf

import "context"

type FnFCaseRepository interface {
	GetByID(ctx context.Context, id string) (FnFCase, error)
	// HasOpenCase reports a non-terminal case for the employee.
	HasOpenCase(ctx context.Context, employeeID string) (bool, error)
	List(ctx context.Context) ([]FnFCase, error)
	Create(ctx context.Context, c FnFCase) (FnFCase, error)
	Update(ctx context.Context, c FnFCase) error
	// TransitionStatus is a compare-and-swap on the case status.
	TransitionStatus(ctx context.Context, id string, expected, next CaseStatus) (bool, error)
}
