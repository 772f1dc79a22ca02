package fnf

import (
	"time"

	"github.com/talentum-hr/payops-backend-go/internal/pkg/validator"
)

type InitiateCaseRequest struct {
	EmployeeID      string `json:"employee_id"`
	LastWorkingDay  string `json:"last_working_day"`
	Reason          string `json:"reason"`
	NoticeGivenDays int    `json:"notice_given_days"`
}

func (r InitiateCaseRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "Employee ID is required"})
	}
	if _, ok := validator.IsValidDate(r.LastWorkingDay); !ok {
		errs = append(errs, validator.ValidationError{Field: "last_working_day", Message: "Last working day must be YYYY-MM-DD"})
	}
	if validator.IsEmpty(r.Reason) {
		errs = append(errs, validator.ValidationError{Field: "reason", Message: "Reason is required"})
	}
	if r.NoticeGivenDays < 0 {
		errs = append(errs, validator.ValidationError{Field: "notice_given_days", Message: "Notice given days must not be negative"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type AddRecoveryRequest struct {
	Kind        string  `json:"kind"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
}

func (r AddRecoveryRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsInSlice(r.Kind, []string{"asset", "advance", "loan"}) {
		errs = append(errs, validator.ValidationError{Field: "kind", Message: "Kind must be asset, advance or loan"})
	}
	if r.Amount <= 0 {
		errs = append(errs, validator.ValidationError{Field: "amount", Message: "Amount must be positive"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type DecideCaseRequest struct {
	Level    int    `json:"level"`
	Approve  bool   `json:"approve"`
	Comments string `json:"comments,omitempty"`
}

type PayoutRequest struct {
	PayoutRef string `json:"payout_ref"`
}

func (r PayoutRequest) Validate() error {
	if validator.IsEmpty(r.PayoutRef) {
		return validator.ValidationErrors{{Field: "payout_ref", Message: "Payout reference is required"}}
	}
	return nil
}

type CaseResponse struct {
	ID              string  `json:"id"`
	EmployeeID      string  `json:"employee_id"`
	LastWorkingDay  string  `json:"last_working_day"`
	Status          string  `json:"status"`
	UnpaidSalary    string  `json:"unpaid_salary"`
	ELEncashment    string  `json:"el_encashment"`
	Incentives      string  `json:"incentives"`
	Recoveries      string  `json:"recoveries"`
	Statutory       string  `json:"statutory_deductions"`
	TotalPayable    string  `json:"total_payable"`
	TotalReceivable string  `json:"total_receivable"`
	NetSettlement   string  `json:"net_settlement"`
	PaidAt          *string `json:"paid_at,omitempty"`
}

func ToCaseResponse(c FnFCase) CaseResponse {
	resp := CaseResponse{
		ID:              c.ID,
		EmployeeID:      c.EmployeeID,
		LastWorkingDay:  c.LastWorkingDay.Format("2006-01-02"),
		Status:          string(c.Status),
		UnpaidSalary:    c.UnpaidSalary.Amount.String(),
		ELEncashment:    c.ELEncashment.Amount.String(),
		Incentives:      c.Incentives.Amount.String(),
		Recoveries:      c.Recoveries.Total.String(),
		Statutory:       c.Statutory.Total.String(),
		TotalPayable:    c.TotalPayable.String(),
		TotalReceivable: c.TotalReceivable.String(),
		NetSettlement:   c.NetSettlement.String(),
	}
	if c.PaidAt != nil {
		s := c.PaidAt.Format(time.RFC3339)
		resp.PaidAt = &s
	}
	return resp
}
