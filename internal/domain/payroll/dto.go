package payroll

import (
	"time"

	"github.com/talentum-hr/payops-backend-go/internal/pkg/validator"
)

type CreateRunRequest struct {
	Month int `json:"month"`
	Year  int `json:"year"`
}

func (r CreateRunRequest) Validate() error {
	if !validator.IsValidPeriod(r.Month, r.Year) {
		return validator.ValidationErrors{{Field: "period", Message: "Invalid month/year"}}
	}
	return nil
}

type PostRunRequest struct {
	JVNumber string `json:"jv_number"`
	JVDate   string `json:"jv_date"`
}

func (r PostRunRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.JVNumber) {
		errs = append(errs, validator.ValidationError{Field: "jv_number", Message: "JV number is required"})
	}
	if _, ok := validator.IsValidDate(r.JVDate); !ok {
		errs = append(errs, validator.ValidationError{Field: "jv_date", Message: "JV date must be YYYY-MM-DD"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type CreateOverrideRequest struct {
	RunID          string  `json:"run_id"`
	EmployeeID     string  `json:"employee_id"`
	ComponentCode  string  `json:"component_code"`
	OverrideAmount float64 `json:"override_amount"`
	ReasonCode     string  `json:"reason_code"`
}

func (r CreateOverrideRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.RunID) {
		errs = append(errs, validator.ValidationError{Field: "run_id", Message: "Run ID is required"})
	}
	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "Employee ID is required"})
	}
	if validator.IsEmpty(r.ComponentCode) {
		errs = append(errs, validator.ValidationError{Field: "component_code", Message: "Component code is required"})
	}
	if validator.IsEmpty(r.ReasonCode) {
		errs = append(errs, validator.ValidationError{Field: "reason_code", Message: "Reason code is required"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type DecideOverrideRequest struct {
	Level    int    `json:"level"`
	Approve  bool   `json:"approve"`
	Comments string `json:"comments,omitempty"`
}

type RunResponse struct {
	ID                  string  `json:"id"`
	Month               int     `json:"month"`
	Year                int     `json:"year"`
	Status              string  `json:"status"`
	AttendanceImported  bool    `json:"attendance_imported"`
	IncentivesGenerated bool    `json:"incentives_generated"`
	ClawbacksResolved   bool    `json:"clawbacks_resolved"`
	VarianceReported    bool    `json:"variance_reported"`
	ProcessingError     *string `json:"processing_error,omitempty"`
	JVNumber            *string `json:"jv_number,omitempty"`
	TotalGross          string  `json:"total_gross"`
	TotalDeductions     string  `json:"total_deductions"`
	TotalNet            string  `json:"total_net"`
	Employees           int     `json:"employees"`
	PostedAt            *string `json:"posted_at,omitempty"`
}

func ToRunResponse(run PayrollRun, totals RunTotals) RunResponse {
	resp := RunResponse{
		ID:                  run.ID,
		Month:               run.Month,
		Year:                run.Year,
		Status:              string(run.Status),
		AttendanceImported:  run.AttendanceImported,
		IncentivesGenerated: run.IncentivesGenerated,
		ClawbacksResolved:   run.ClawbacksResolved,
		VarianceReported:    run.VarianceReported,
		ProcessingError:     run.ProcessingError,
		JVNumber:            run.JVNumber,
		TotalGross:          totals.Gross.String(),
		TotalDeductions:     totals.Deductions.String(),
		TotalNet:            totals.Net.String(),
		Employees:           totals.Employees,
	}
	if run.PostedAt != nil {
		s := run.PostedAt.Format(time.RFC3339)
		resp.PostedAt = &s
	}
	return resp
}
