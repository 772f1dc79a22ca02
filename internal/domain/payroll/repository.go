package payroll

import "context"

type PayrollRunRepository interface {
	GetByID(ctx context.Context, id string) (PayrollRun, error)
	// GetByPeriod returns ErrRunNotFound when no run exists for the period.
	GetByPeriod(ctx context.Context, month, year int) (PayrollRun, error)
	// Create fails with *DuplicateRunError when the period already has a run.
	Create(ctx context.Context, run PayrollRun) (PayrollRun, error)
	// Update persists sub-step flags, processing error and audit fields.
	Update(ctx context.Context, run PayrollRun) error
	// TransitionStatus is a compare-and-swap: it moves the run from
	// expected to next and reports false when the row was not in the
	// expected status (a concurrent caller won).
	TransitionStatus(ctx context.Context, id string, expected, next RunStatus) (bool, error)
}

type PayrollComponentRepository interface {
	ListByRun(ctx context.Context, runID string) ([]PayrollComponent, error)
	ListByRunEmployee(ctx context.Context, runID, employeeID string) ([]PayrollComponent, error)
	GetByRunEmployeeCode(ctx context.Context, runID, employeeID string, code ComponentCode) (PayrollComponent, error)
	CreateBatch(ctx context.Context, components []PayrollComponent) error
	// Update rewrites one line (override application).
	Update(ctx context.Context, component PayrollComponent) error
	// DeleteCalcByRun clears CALC-sourced rows so a retried Process
	// regenerates them without duplicating.
	DeleteCalcByRun(ctx context.Context, runID string) error
}

type PayrollOverrideRepository interface {
	GetByID(ctx context.Context, id string) (PayrollOverride, error)
	ListByRun(ctx context.Context, runID string) ([]PayrollOverride, error)
	CountPendingByRun(ctx context.Context, runID string) (int, error)
	Create(ctx context.Context, override PayrollOverride) (PayrollOverride, error)
	Update(ctx context.Context, override PayrollOverride) error
}

// AttendanceProvider is the external attendance/sales import collaborator.
// Implementations return ErrAttendanceUnavailable when unreachable.
type AttendanceProvider interface {
	MonthlyFacts(ctx context.Context, year, month int) ([]AttendanceFact, error)
}
