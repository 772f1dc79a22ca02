package leave

import (
	"time"

	"github.com/talentum-hr/payops-backend-go/internal/pkg/validator"
)

type CreateLeaveRequestRequest struct {
	EmployeeID       string  `json:"employee_id"`
	PolicyCode       string  `json:"policy_code"`
	StartDate        string  `json:"start_date"`
	EndDate          string  `json:"end_date"`
	DurationType     string  `json:"duration_type"`
	Reason           string  `json:"reason"`
	MedicalCertURL   *string `json:"medical_cert_url,omitempty"`
	BlackoutOverride *string `json:"blackout_override_by,omitempty"`
}

func (r CreateLeaveRequestRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "Employee ID is required"})
	}
	if validator.IsEmpty(r.PolicyCode) {
		errs = append(errs, validator.ValidationError{Field: "policy_code", Message: "Policy code is required"})
	}
	if _, ok := validator.IsValidDate(r.StartDate); !ok {
		errs = append(errs, validator.ValidationError{Field: "start_date", Message: "Start date must be YYYY-MM-DD"})
	}
	if _, ok := validator.IsValidDate(r.EndDate); !ok {
		errs = append(errs, validator.ValidationError{Field: "end_date", Message: "End date must be YYYY-MM-DD"})
	}
	if r.DurationType != "" && !validator.IsInSlice(r.DurationType, []string{
		string(LeaveDurationFullDay), string(LeaveDurationHalfDayMorning), string(LeaveDurationHalfDayAfternoon),
	}) {
		errs = append(errs, validator.ValidationError{Field: "duration_type", Message: "Invalid duration type"})
	}
	if validator.IsEmpty(r.Reason) {
		errs = append(errs, validator.ValidationError{Field: "reason", Message: "Reason is required"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type DecideLeaveRequestRequest struct {
	Level    int    `json:"level"`
	Approve  bool   `json:"approve"`
	Comments string `json:"comments,omitempty"`
}

type PolicyResponse struct {
	ID                   string   `json:"id"`
	Name                 string   `json:"name"`
	Code                 string   `json:"code"`
	Description          *string  `json:"description,omitempty"`
	DaysPerYear          string   `json:"days_per_year"`
	MonthlyAccrual       bool     `json:"monthly_accrual"`
	CarryForwardEnabled  bool     `json:"carry_forward_enabled"`
	CarryForwardMaxDays  string   `json:"carry_forward_max_days"`
	EncashOnYearClose    bool     `json:"encash_on_year_close"`
	AllowNegativeBalance bool     `json:"allow_negative_balance"`
	AllowHalfDay         bool     `json:"allow_half_day"`
	BlackoutDates        []string `json:"blackout_dates,omitempty"`
	MedicalCertAfterDays *int     `json:"medical_cert_after_days,omitempty"`
	ApprovalAuthorities  []string `json:"approval_authorities"`
}

func ToPolicyResponse(p LeavePolicy) PolicyResponse {
	return PolicyResponse{
		ID:                   p.ID,
		Name:                 p.Name,
		Code:                 p.Code,
		Description:          p.Description,
		DaysPerYear:          p.DaysPerYear.String(),
		MonthlyAccrual:       p.MonthlyAccrual,
		CarryForwardEnabled:  p.CarryForwardEnabled,
		CarryForwardMaxDays:  p.CarryForwardMaxDays.String(),
		EncashOnYearClose:    p.EncashOnYearClose,
		AllowNegativeBalance: p.AllowNegativeBalance,
		AllowHalfDay:         p.AllowHalfDay,
		BlackoutDates:        p.BlackoutDates,
		MedicalCertAfterDays: p.MedicalCertAfterDays,
		ApprovalAuthorities:  p.ApprovalAuthorities,
	}
}

type LedgerEntryResponse struct {
	ID              string  `json:"id"`
	EmployeeID      string  `json:"employee_id"`
	PolicyID        string  `json:"policy_id"`
	Year            int     `json:"year"`
	Month           int     `json:"month"`
	Opening         string  `json:"opening"`
	Accrual         string  `json:"accrual"`
	Used            string  `json:"used"`
	Encashed        string  `json:"encashed"`
	CarriedForward  string  `json:"carried_forward"`
	Closing         string  `json:"closing"`
	NegativeBalance string  `json:"negative_balance"`
	AccruedAt       *string `json:"accrued_at,omitempty"`
}

func ToLedgerEntryResponse(e LedgerEntry) LedgerEntryResponse {
	var accruedAt *string
	if e.AccruedAt != nil {
		s := e.AccruedAt.Format(time.RFC3339)
		accruedAt = &s
	}
	return LedgerEntryResponse{
		ID:              e.ID,
		EmployeeID:      e.EmployeeID,
		PolicyID:        e.LeavePolicyID,
		Year:            e.Year,
		Month:           e.Month,
		Opening:         e.Opening.String(),
		Accrual:         e.Accrual.String(),
		Used:            e.Used.String(),
		Encashed:        e.Encashed.String(),
		CarriedForward:  e.CarriedForward.String(),
		Closing:         e.Closing.String(),
		NegativeBalance: e.NegativeBalance.String(),
		AccruedAt:       accruedAt,
	}
}
