package incentive

import (
	"time"

	"github.com/talentum-hr/payops-backend-go/internal/pkg/validator"
)

type CreateClaimRequest struct {
	EmployeeID  string  `json:"employee_id"`
	Year        int     `json:"year"`
	Month       int     `json:"month"`
	TargetSales float64 `json:"target_sales"`
	ActualSales float64 `json:"actual_sales"`
}

func (r CreateClaimRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "Employee ID is required"})
	}
	if !validator.IsValidPeriod(r.Month, r.Year) {
		errs = append(errs, validator.ValidationError{Field: "period", Message: "Invalid month/year"})
	}
	if r.TargetSales < 0 {
		errs = append(errs, validator.ValidationError{Field: "target_sales", Message: "Target sales must not be negative"})
	}
	if r.ActualSales < 0 {
		errs = append(errs, validator.ValidationError{Field: "actual_sales", Message: "Actual sales must not be negative"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type DecideClaimRequest struct {
	Level    int      `json:"level"`
	Approve  bool     `json:"approve"`
	Amount   *float64 `json:"amount,omitempty"` // downward adjustment only
	Comments string   `json:"comments,omitempty"`
}

// SalesClosedPayload is the sales-closed webhook body.
type SalesClosedPayload struct {
	InvoiceID  string  `json:"invoice_id"`
	EmployeeID string  `json:"employee_id"`
	StoreID    string  `json:"store_id"`
	Amount     float64 `json:"amount"`
	SaleDate   string  `json:"sale_date"`
}

func (p SalesClosedPayload) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(p.InvoiceID) {
		errs = append(errs, validator.ValidationError{Field: "invoice_id", Message: "Invoice ID is required"})
	}
	if validator.IsEmpty(p.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "Employee ID is required"})
	}
	if p.Amount <= 0 {
		errs = append(errs, validator.ValidationError{Field: "amount", Message: "Amount must be positive"})
	}
	if _, ok := validator.IsValidDate(p.SaleDate); !ok {
		errs = append(errs, validator.ValidationError{Field: "sale_date", Message: "Sale date must be YYYY-MM-DD"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ReturnsRemakesPayload is the returns/remakes webhook body.
type ReturnsRemakesPayload struct {
	InvoiceID        string  `json:"invoice_id"`
	EmployeeID       string  `json:"employee_id"`
	StoreID          string  `json:"store_id"`
	Type             string  `json:"type"`
	Amount           float64 `json:"amount"`
	EventDate        string  `json:"event_date"`
	OriginalSaleDate string  `json:"original_sale_date"`
	Reason           *string `json:"reason,omitempty"`
	PolicyWindowDays int     `json:"policy_window_days"`
	PolicyApplicable bool    `json:"policy_applicable"`
	Exempted         bool    `json:"exempted"`
}

func (p ReturnsRemakesPayload) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(p.InvoiceID) {
		errs = append(errs, validator.ValidationError{Field: "invoice_id", Message: "Invoice ID is required"})
	}
	if validator.IsEmpty(p.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "Employee ID is required"})
	}
	if !validator.IsInSlice(p.Type, []string{string(ReturnTypeReturn), string(ReturnTypeRemake)}) {
		errs = append(errs, validator.ValidationError{Field: "type", Message: "Type must be RETURN or REMAKE"})
	}
	if p.Amount <= 0 {
		errs = append(errs, validator.ValidationError{Field: "amount", Message: "Amount must be positive"})
	}
	if _, ok := validator.IsValidDate(p.EventDate); !ok {
		errs = append(errs, validator.ValidationError{Field: "event_date", Message: "Event date must be YYYY-MM-DD"})
	}
	if _, ok := validator.IsValidDate(p.OriginalSaleDate); !ok {
		errs = append(errs, validator.ValidationError{Field: "original_sale_date", Message: "Original sale date must be YYYY-MM-DD"})
	}
	if p.PolicyWindowDays < 0 {
		errs = append(errs, validator.ValidationError{Field: "policy_window_days", Message: "Policy window days must not be negative"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type ClaimResponse struct {
	ID                    string  `json:"id"`
	EmployeeID            string  `json:"employee_id"`
	Year                  int     `json:"year"`
	Month                 int     `json:"month"`
	TargetSales           string  `json:"target_sales"`
	ActualSales           string  `json:"actual_sales"`
	AchievementPct        string  `json:"achievement_percentage"`
	Slab                  string  `json:"slab"`
	CalculatedAmount      string  `json:"calculated_amount"`
	ApprovedAmount        *string `json:"approved_amount,omitempty"`
	Tier                  string  `json:"tier"`
	Status                string  `json:"status"`
	Paid                  bool    `json:"paid"`
	DisputeWindowClosesAt *string `json:"dispute_window_closes_at,omitempty"`
}

func ToClaimResponse(c IncentiveClaim) ClaimResponse {
	resp := ClaimResponse{
		ID:               c.ID,
		EmployeeID:       c.EmployeeID,
		Year:             c.Year,
		Month:            c.Month,
		TargetSales:      c.TargetSales.String(),
		ActualSales:      c.ActualSales.String(),
		AchievementPct:   c.AchievementPct.String(),
		Slab:             c.SlabName,
		CalculatedAmount: c.CalculatedAmount.String(),
		Tier:             string(c.Tier),
		Status:           string(c.Status),
		Paid:             c.Paid,
	}
	if c.ApprovedAmount != nil {
		s := c.ApprovedAmount.String()
		resp.ApprovedAmount = &s
	}
	if c.DisputeWindowClosesAt != nil {
		s := c.DisputeWindowClosesAt.Format(time.RFC3339)
		resp.DisputeWindowClosesAt = &s
	}
	return resp
}
