package payroll

import (
	"errors"
	"fmt"
)

var (
	ErrRunNotFound            = errors.New("Payroll run not found")
	ErrOverrideNotFound       = errors.New("Payroll override not found")
	ErrOverrideAlreadyDecided = errors.New("Payroll override already decided")
	ErrOverrideAlreadyApplied = errors.New("Payroll override already applied")
	ErrOverrideNotApproved    = errors.New("Payroll override is not approved")
	ErrPendingOverrides       = errors.New("Payroll run has unresolved pending overrides")
	ErrRunImmutable           = errors.New("Payroll components are immutable once the run is locked")
	ErrComponentNotFound      = errors.New("Payroll component not found")
	ErrAttendanceUnavailable  = errors.New("Attendance import feed unavailable")
	ErrConcurrentTransition   = errors.New("Payroll run status changed concurrently")
)

// InvalidStateError reports the current vs expected state so the caller
// can retry correctly (e.g. "payroll run must be LOCKED to post").
type InvalidStateError struct {
	Op       string
	Current  RunStatus
	Expected RunStatus
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("payroll run must be %s to %s, current status %s", e.Expected, e.Op, e.Current)
}

// DuplicateRunError reports the conflicting run id for the period.
type DuplicateRunError struct {
	Month         int
	Year          int
	ExistingRunID string
}

func (e *DuplicateRunError) Error() string {
	return fmt.Sprintf("payroll run already exists for %d/%d (run %s)", e.Month, e.Year, e.ExistingRunID)
}
