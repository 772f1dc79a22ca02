package leave

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrPolicyNotFound             = errors.New("Leave policy not found")
	ErrPolicyInactive             = errors.New("Leave policy is not active")
	ErrLedgerEntryNotFound        = errors.New("Leave ledger entry not found")
	ErrLeaveRequestNotFound       = errors.New("Leave request not found")
	ErrLeaveAlreadyProcessed      = errors.New("Leave request already processed")
	ErrUsageAlreadyApplied        = errors.New("Leave usage already applied for this request")
	ErrBlackoutDate               = errors.New("Leave dates fall on a blackout date")
	ErrMedicalCertRequired        = errors.New("Medical certificate required for this duration")
	ErrHalfDayNotAllowed          = errors.New("Half-day requests not allowed for this policy")
	ErrInvalidDateRange           = errors.New("End date must not be before start date")
	ErrBlackoutOverrideNotAllowed = errors.New("Blackout override not permitted for this policy")
)

// InsufficientBalanceError reports available vs requested days so the
// caller can retry correctly.
type InsufficientBalanceError struct {
	Available decimal.Decimal
	Requested decimal.Decimal
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient leave balance: %s days available, %s requested",
		e.Available.String(), e.Requested.String())
}
