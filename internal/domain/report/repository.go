package report

import "context"

// ReportRepository defines the read-only projections; all aggregation
// happens in SQL over the settlement entities.
type ReportRepository interface {
	GetCostByStoreRole(ctx context.Context, month, year int) ([]CostByStoreRoleRow, error)
	GetIncentiveSales(ctx context.Context, month, year int) ([]IncentiveSalesRow, error)
	GetClawbackSummary(ctx context.Context, month, year int) ([]ClawbackSummaryRow, error)
	GetLWPDays(ctx context.Context, month, year int) ([]LWPDaysRow, error)
	GetLeaveUtilization(ctx context.Context, year int) ([]LeaveUtilizationRow, error)
	GetFnFStats(ctx context.Context, year int) ([]FnFStatsRow, error)
}
