package report

import (
	"context"
	"fmt"
	"time"

	"github.com/talentum-hr/payops-backend-go/internal/domain/report"
)

// ReportServiceImpl renders read-only projections; it adds nothing to
// the repository rows beyond totals and generation metadata.
type ReportServiceImpl struct {
	reportRepo report.ReportRepository
}

func NewReportService(reportRepo report.ReportRepository) report.ReportService {
	return &ReportServiceImpl{
		reportRepo: reportRepo,
	}
}

func (s *ReportServiceImpl) GenerateCostByStoreRoleReport(ctx context.Context, req report.PeriodRequest) (report.CostByStoreRoleReport, error) {
	if err := req.Validate(); err != nil {
		return report.CostByStoreRoleReport{}, err
	}

	rows, err := s.reportRepo.GetCostByStoreRole(ctx, req.Month, req.Year)
	if err != nil {
		return report.CostByStoreRoleReport{}, fmt.Errorf("failed to get cost data: %w", err)
	}

	var totalNet float64
	for _, row := range rows {
		totalNet += row.Net
	}

	return report.CostByStoreRoleReport{
		PeriodMonth: req.Month,
		PeriodYear:  req.Year,
		GeneratedAt: time.Now().Format(time.RFC3339),
		TotalNet:    totalNet,
		Rows:        rows,
	}, nil
}

func (s *ReportServiceImpl) GenerateIncentiveSalesReport(ctx context.Context, req report.PeriodRequest) (report.IncentiveSalesReport, error) {
	if err := req.Validate(); err != nil {
		return report.IncentiveSalesReport{}, err
	}

	rows, err := s.reportRepo.GetIncentiveSales(ctx, req.Month, req.Year)
	if err != nil {
		return report.IncentiveSalesReport{}, fmt.Errorf("failed to get incentive data: %w", err)
	}

	return report.IncentiveSalesReport{
		PeriodMonth: req.Month,
		PeriodYear:  req.Year,
		GeneratedAt: time.Now().Format(time.RFC3339),
		Rows:        rows,
	}, nil
}

func (s *ReportServiceImpl) GenerateClawbackSummaryReport(ctx context.Context, req report.PeriodRequest) (report.ClawbackSummaryReport, error) {
	if err := req.Validate(); err != nil {
		return report.ClawbackSummaryReport{}, err
	}

	rows, err := s.reportRepo.GetClawbackSummary(ctx, req.Month, req.Year)
	if err != nil {
		return report.ClawbackSummaryReport{}, fmt.Errorf("failed to get claw-back data: %w", err)
	}

	return report.ClawbackSummaryReport{
		PeriodMonth: req.Month,
		PeriodYear:  req.Year,
		GeneratedAt: time.Now().Format(time.RFC3339),
		Rows:        rows,
	}, nil
}

func (s *ReportServiceImpl) GenerateLWPDaysReport(ctx context.Context, req report.PeriodRequest) (report.LWPDaysReport, error) {
	if err := req.Validate(); err != nil {
		return report.LWPDaysReport{}, err
	}

	rows, err := s.reportRepo.GetLWPDays(ctx, req.Month, req.Year)
	if err != nil {
		return report.LWPDaysReport{}, fmt.Errorf("failed to get LWP data: %w", err)
	}

	return report.LWPDaysReport{
		PeriodMonth: req.Month,
		PeriodYear:  req.Year,
		GeneratedAt: time.Now().Format(time.RFC3339),
		Rows:        rows,
	}, nil
}

func (s *ReportServiceImpl) GenerateLeaveUtilizationReport(ctx context.Context, req report.YearRequest) (report.LeaveUtilizationReport, error) {
	if err := req.Validate(); err != nil {
		return report.LeaveUtilizationReport{}, err
	}

	rows, err := s.reportRepo.GetLeaveUtilization(ctx, req.Year)
	if err != nil {
		return report.LeaveUtilizationReport{}, fmt.Errorf("failed to get leave utilization data: %w", err)
	}

	return report.LeaveUtilizationReport{
		Year:        req.Year,
		GeneratedAt: time.Now().Format(time.RFC3339),
		Rows:        rows,
	}, nil
}

func (s *ReportServiceImpl) GenerateFnFStatsReport(ctx context.Context, req report.YearRequest) (report.FnFStatsReport, error) {
	if err := req.Validate(); err != nil {
		return report.FnFStatsReport{}, err
	}

	rows, err := s.reportRepo.GetFnFStats(ctx, req.Year)
	if err != nil {
		return report.FnFStatsReport{}, fmt.Errorf("failed to get F&F data: %w", err)
	}

	totalCases := 0
	var totalPaid float64
	for _, row := range rows {
		totalCases += row.Cases
		if row.Status == "PAID" {
			totalPaid += row.TotalNet
		}
	}

	return report.FnFStatsReport{
		Year:        req.Year,
		GeneratedAt: time.Now().Format(time.RFC3339),
		TotalCases:  totalCases,
		TotalPaid:   totalPaid,
		Rows:        rows,
	}, nil
}
