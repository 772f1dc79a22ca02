package incentive

import "errors"

var (
	ErrClaimNotFound            = errors.New("Incentive claim not found")
	ErrClaimAlreadyExists       = errors.New("Incentive claim already exists for this period")
	ErrClaimAlreadyProcessed    = errors.New("Incentive claim already processed")
	ErrClaimNotApproved         = errors.New("Incentive claim is not approved")
	ErrAmountIncreaseNotAllowed = errors.New("Approved amount may only be adjusted downward")
	ErrSalesEventNotFound       = errors.New("Sales event not found")
	ErrReturnItemNotFound       = errors.New("Returns/remakes item not found")
	ErrClawbackAlreadyApplied   = errors.New("Claw-back already applied for this item")
	ErrClawbackNotApplicable    = errors.New("Claw-back not applicable for this item")
)
