package fnf

import (
	"errors"
	"fmt"
)

var (
	ErrCaseNotFound         = errors.New("F&F case not found")
	ErrCaseAlreadyOpen      = errors.New("An open F&F case already exists for this employee")
	ErrNotFullyCalculated   = errors.New("F&F case components are not fully calculated")
	ErrConcurrentTransition = errors.New("F&F case status changed concurrently")
)

// InvalidStateError reports current vs expected status for retry.
type InvalidStateError struct {
	Op       string
	Current  CaseStatus
	Expected CaseStatus
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("F&F case must be %s to %s, current status %s", e.Expected, e.Op, e.Current)
}
