package report

import "context"

// ReportService defines the report generation surface.
type ReportService interface {
	GenerateCostByStoreRoleReport(ctx context.Context, req PeriodRequest) (CostByStoreRoleReport, error)
	GenerateIncentiveSalesReport(ctx context.Context, req PeriodRequest) (IncentiveSalesReport, error)
	GenerateClawbackSummaryReport(ctx context.Context, req PeriodRequest) (ClawbackSummaryReport, error)
	GenerateLWPDaysReport(ctx context.Context, req PeriodRequest) (LWPDaysReport, error)
	GenerateLeaveUtilizationReport(ctx context.Context, req YearRequest) (LeaveUtilizationReport, error)
	GenerateFnFStatsReport(ctx context.Context, req YearRequest) (FnFStatsReport, error)
}
