package postgresql

import (
	"context"
	"fmt"

	"github.com/talentum-hr/payops-backend-go/internal/domain/report"
	"github.com/talentum-hr/payops-backend-go/internal/pkg/database"
)

type reportRepositoryImpl struct {
	db *database.DB
}

func NewReportRepository(db *database.DB) report.ReportRepository {
	return &reportRepositoryImpl{db: db}
}

func (r *reportRepositoryImpl) GetCostByStoreRole(ctx context.Context, month, year int) ([]report.CostByStoreRoleRow, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT e.store_id, e.role,
			COUNT(DISTINCT pc.employee_id) AS employees,
			COALESCE(SUM(pc.amount) FILTER (WHERE pc.type = 'EARNINGS'), 0) AS gross,
			COALESCE(SUM(pc.amount) FILTER (WHERE pc.type = 'DEDUCTIONS'), 0) AS deductions,
			COALESCE(SUM(pc.amount) FILTER (WHERE pc.type = 'EARNINGS'), 0)
				- COALESCE(SUM(pc.amount) FILTER (WHERE pc.type = 'DEDUCTIONS'), 0) AS net
		FROM payroll_components pc
		JOIN payroll_runs pr ON pr.id = pc.run_id
		JOIN employees e ON e.id = pc.employee_id
		WHERE pr.month = $1 AND pr.year = $2 AND pr.status <> 'CANCELLED'
		GROUP BY e.store_id, e.role
		ORDER BY e.store_id, e.role
	`

	rows, err := q.Query(ctx, query, month, year)
	if err != nil {
		return nil, fmt.Errorf("failed to query cost by store/role: %w", err)
	}
	defer rows.Close()

	var result []report.CostByStoreRoleRow
	for rows.Next() {
		var row report.CostByStoreRoleRow
		if err := rows.Scan(&row.StoreID, &row.Role, &row.Employees, &row.Gross, &row.Deductions, &row.Net); err != nil {
			return nil, fmt.Errorf("failed to scan cost row: %w", err)
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

func (r *reportRepositoryImpl) GetIncentiveSales(ctx context.Context, month, year int) ([]report.IncentiveSalesRow, error) {
	q := GetQuerier(ctx, r.db)

	// Sales come from the webhook intake, incentives from approved or
	// paid claims of the same period, joined on store.
	query := `
		WITH sales AS (
			SELECT store_id, SUM(amount) AS total_sales
			FROM sales_events
			WHERE EXTRACT(MONTH FROM sale_date) = $1 AND EXTRACT(YEAR FROM sale_date) = $2
			GROUP BY store_id
		),
		incentives AS (
			SELECT e.store_id, SUM(COALESCE(ic.approved_amount, ic.calculated_amount)) AS total_incentive
			FROM incentive_claims ic
			JOIN employees e ON e.id = ic.employee_id
			WHERE ic.month = $1 AND ic.year = $2 AND ic.status IN ('approved', 'paid')
			GROUP BY e.store_id
		)
		SELECT s.store_id,
			s.total_sales,
			COALESCE(i.total_incentive, 0),
			CASE WHEN s.total_sales > 0
				THEN ROUND(COALESCE(i.total_incentive, 0) / s.total_sales * 100, 2)
				ELSE 0
			END AS incentive_pct
		FROM sales s
		LEFT JOIN incentives i ON i.store_id = s.store_id
		ORDER BY s.store_id
	`

	rows, err := q.Query(ctx, query, month, year)
	if err != nil {
		return nil, fmt.Errorf("failed to query incentive vs sales: %w", err)
	}
	defer rows.Close()

	var result []report.IncentiveSalesRow
	for rows.Next() {
		var row report.IncentiveSalesRow
		if err := rows.Scan(&row.StoreID, &row.TotalSales, &row.TotalIncentive, &row.IncentivePct); err != nil {
			return nil, fmt.Errorf("failed to scan incentive/sales row: %w", err)
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

func (r *reportRepositoryImpl) GetClawbackSummary(ctx context.Context, month, year int) ([]report.ClawbackSummaryRow, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT store_id,
			COUNT(*) AS items,
			COUNT(*) FILTER (WHERE clawback_applied) AS resolved_items,
			COUNT(*) FILTER (WHERE NOT clawback_applied) AS unresolved_items,
			COALESCE(SUM(clawback_amount) FILTER (WHERE clawback_applied), 0) AS total_clawback
		FROM returns_remakes_items
		WHERE EXTRACT(MONTH FROM event_date) = $1 AND EXTRACT(YEAR FROM event_date) = $2
		GROUP BY store_id
		ORDER BY store_id
	`

	rows, err := q.Query(ctx, query, month, year)
	if err != nil {
		return nil, fmt.Errorf("failed to query claw-back summary: %w", err)
	}
	defer rows.Close()

	var result []report.ClawbackSummaryRow
	for rows.Next() {
		var row report.ClawbackSummaryRow
		if err := rows.Scan(&row.StoreID, &row.Items, &row.ResolvedItems, &row.UnresolvedItems, &row.TotalClawback); err != nil {
			return nil, fmt.Errorf("failed to scan claw-back row: %w", err)
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

func (r *reportRepositoryImpl) GetLWPDays(ctx context.Context, month, year int) ([]report.LWPDaysRow, error) {
	q := GetQuerier(ctx, r.db)

	// The LWP component amount is the pay actually docked for the period.
	query := `
		SELECT e.id, e.full_name,
			COALESCE(SUM(lr.days), 0) AS lwp_days,
			COALESCE(MAX(pc.amount), 0) AS amount
		FROM employees e
		LEFT JOIN leave_requests lr ON lr.employee_id = e.id
			AND lr.status = 'approved'
			AND lr.leave_policy_id IN (SELECT id FROM leave_policies WHERE code = 'LWP')
			AND EXTRACT(MONTH FROM lr.start_date) = $1
			AND EXTRACT(YEAR FROM lr.start_date) = $2
		LEFT JOIN payroll_components pc ON pc.employee_id = e.id
			AND pc.code = 'LWP'
			AND pc.run_id IN (
				SELECT id FROM payroll_runs
				WHERE month = $1 AND year = $2 AND status <> 'CANCELLED'
			)
		GROUP BY e.id, e.full_name
		HAVING COALESCE(SUM(lr.days), 0) > 0 OR COALESCE(MAX(pc.amount), 0) > 0
		ORDER BY e.full_name
	`

	rows, err := q.Query(ctx, query, month, year)
	if err != nil {
		return nil, fmt.Errorf("failed to query LWP days: %w", err)
	}
	defer rows.Close()

	var result []report.LWPDaysRow
	for rows.Next() {
		var row report.LWPDaysRow
		if err := rows.Scan(&row.EmployeeID, &row.EmployeeName, &row.LWPDays, &row.Amount); err != nil {
			return nil, fmt.Errorf("failed to scan LWP row: %w", err)
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

func (r *reportRepositoryImpl) GetLeaveUtilization(ctx context.Context, year int) ([]report.LeaveUtilizationRow, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT lp.code, lp.name,
			COALESCE(SUM(le.accrual + le.carried_forward), 0) AS total_accrued,
			COALESCE(SUM(le.used), 0) AS total_used,
			CASE WHEN SUM(le.accrual + le.carried_forward) > 0
				THEN ROUND(SUM(le.used) / SUM(le.accrual + le.carried_forward) * 100, 2)
				ELSE 0
			END AS utilization_pct
		FROM leave_policies lp
		LEFT JOIN leave_ledger_entries le ON le.leave_policy_id = lp.id AND le.year = $1
		WHERE lp.is_active
		GROUP BY lp.code, lp.name
		ORDER BY lp.code
	`

	rows, err := q.Query(ctx, query, year)
	if err != nil {
		return nil, fmt.Errorf("failed to query leave utilization: %w", err)
	}
	defer rows.Close()

	var result []report.LeaveUtilizationRow
	for rows.Next() {
		var row report.LeaveUtilizationRow
		if err := rows.Scan(&row.PolicyCode, &row.PolicyName, &row.TotalAccrued, &row.TotalUsed, &row.UtilizationPct); err != nil {
			return nil, fmt.Errorf("failed to scan utilization row: %w", err)
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

func (r *reportRepositoryImpl) GetFnFStats(ctx context.Context, year int) ([]report.FnFStatsRow, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT status, COUNT(*) AS cases, COALESCE(SUM(net_settlement), 0) AS total_net
		FROM fnf_cases
		WHERE EXTRACT(YEAR FROM last_working_day) = $1
		GROUP BY status
		ORDER BY status
	`

	rows, err := q.Query(ctx, query, year)
	if err != nil {
		return nil, fmt.Errorf("failed to query settlement stats: %w", err)
	}
	defer rows.Close()

	var result []report.FnFStatsRow
	for rows.Next() {
		var row report.FnFStatsRow
		if err := rows.Scan(&row.Status, &row.Cases, &row.TotalNet); err != nil {
			return nil, fmt.Errorf("failed to scan settlement stats row: %w", err)
		}
		result = append(result, row)
	}
	return result, rows.Err()
}
