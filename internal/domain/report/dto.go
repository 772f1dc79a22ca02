package report

import (
	"github.com/talentum-hr/payops-backend-go/internal/pkg/validator"
)

type PeriodRequest struct {
	Month int `json:"month"`
	Year  int `json:"year"`
}

func (r PeriodRequest) Validate() error {
	if !validator.IsValidPeriod(r.Month, r.Year) {
		return validator.ValidationErrors{{Field: "period", Message: "Invalid month/year"}}
	}
	return nil
}

type YearRequest struct {
	Year int `json:"year"`
}

func (r YearRequest) Validate() error {
	if !validator.IsValidPeriod(1, r.Year) {
		return validator.ValidationErrors{{Field: "year", Message: "Invalid year"}}
	}
	return nil
}

// ========================================
// PAYROLL COST BY STORE AND ROLE
// ========================================

type CostByStoreRoleRow struct {
	StoreID    string  `json:"store_id"`
	Role       string  `json:"role"`
	Employees  int     `json:"employees"`
	Gross      float64 `json:"gross"`
	Deductions float64 `json:"deductions"`
	Net        float64 `json:"net"`
}

type CostByStoreRoleReport struct {
	PeriodMonth int                  `json:"period_month"`
	PeriodYear  int                  `json:"period_year"`
	GeneratedAt string               `json:"generated_at"`
	TotalNet    float64              `json:"total_net"`
	Rows        []CostByStoreRoleRow `json:"rows"`
}

// ========================================
// INCENTIVE AS PERCENT OF SALES
// ========================================

type IncentiveSalesRow struct {
	StoreID        string  `json:"store_id"`
	TotalSales     float64 `json:"total_sales"`
	TotalIncentive float64 `json:"total_incentive"`
	IncentivePct   float64 `json:"incentive_pct_of_sales"`
}

type IncentiveSalesReport struct {
	PeriodMonth int                 `json:"period_month"`
	PeriodYear  int                 `json:"period_year"`
	GeneratedAt string              `json:"generated_at"`
	Rows        []IncentiveSalesRow `json:"rows"`
}

// ========================================
// CLAW-BACK SUMMARY
// ========================================

type ClawbackSummaryRow struct {
	StoreID         string  `json:"store_id"`
	Items           int     `json:"items"`
	ResolvedItems   int     `json:"resolved_items"`
	UnresolvedItems int     `json:"unresolved_items"`
	TotalClawback   float64 `json:"total_clawback"`
}

type ClawbackSummaryReport struct {
	PeriodMonth int                  `json:"period_month"`
	PeriodYear  int                  `json:"period_year"`
	GeneratedAt string               `json:"generated_at"`
	Rows        []ClawbackSummaryRow `json:"rows"`
}

// ========================================
// LOSS-OF-PAY DAYS
// ========================================

type LWPDaysRow struct {
	EmployeeID   string  `json:"employee_id"`
	EmployeeName string  `json:"employee_name"`
	LWPDays      float64 `json:"lwp_days"`
	Amount       float64 `json:"amount"`
}

type LWPDaysReport struct {
	PeriodMonth int          `json:"period_month"`
	PeriodYear  int          `json:"period_year"`
	GeneratedAt string       `json:"generated_at"`
	Rows        []LWPDaysRow `json:"rows"`
}

// ========================================
// LEAVE UTILIZATION
// ========================================

type LeaveUtilizationRow struct {
	PolicyCode     string  `json:"policy_code"`
	PolicyName     string  `json:"policy_name"`
	TotalAccrued   float64 `json:"total_accrued"`
	TotalUsed      float64 `json:"total_used"`
	UtilizationPct float64 `json:"utilization_pct"`
}

type LeaveUtilizationReport struct {
	Year        int                   `json:"year"`
	GeneratedAt string                `json:"generated_at"`
	Rows        []LeaveUtilizationRow `json:"rows"`
}

// ========================================
// F&F SETTLEMENT STATS
// ========================================

type FnFStatsRow struct {
	Status   string  `json:"status"`
	Cases    int     `json:"cases"`
	TotalNet float64 `json:"total_net"`
}

type FnFStatsReport struct {
	Year        int           `json:"year"`
	GeneratedAt string        `json:"generated_at"`
	TotalCases  int           `json:"total_cases"`
	TotalPaid   float64       `json:"total_paid"`
	Rows        []FnFStatsRow `json:"rows"`
}
