package http

import (
	"net/http"
	"time"

	"github.com/talentum-hr/payops-backend-go/internal/domain/report"
	"github.com/talentum-hr/payops-backend-go/internal/handler/http/response"
)

type ReportHandler interface {
	GetCostByStoreRole(w http.ResponseWriter, r *http.Request)
	GetIncentiveSales(w http.ResponseWriter, r *http.Request)
	GetClawbackSummary(w http.ResponseWriter, r *http.Request)
	GetLWPDays(w http.ResponseWriter, r *http.Request)
	GetLeaveUtilization(w http.ResponseWriter, r *http.Request)
	GetFnFStats(w http.ResponseWriter, r *http.Request)
}

type reportHandlerImpl struct {
	reportService report.ReportService
}

func NewReportHandler(reportService report.ReportService) ReportHandler {
	return &reportHandlerImpl{
		reportService: reportService,
	}
}

func periodRequest(r *http.Request) report.PeriodRequest {
	now := time.Now()
	return report.PeriodRequest{
		Month: queryInt(r, "month", int(now.Month())),
		Year:  queryInt(r, "year", now.Year()),
	}
}

func yearRequest(r *http.Request) report.YearRequest {
	return report.YearRequest{Year: queryInt(r, "year", time.Now().Year())}
}

// GetCostByStoreRole handles GET /reports/cost-by-store-role
func (h *reportHandlerImpl) GetCostByStoreRole(w http.ResponseWriter, r *http.Request) {
	result, err := h.reportService.GenerateCostByStoreRoleReport(r.Context(), periodRequest(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

// GetIncentiveSales handles GET /reports/incentive-sales
func (h *reportHandlerImpl) GetIncentiveSales(w http.ResponseWriter, r *http.Request) {
	result, err := h.reportService.GenerateIncentiveSalesReport(r.Context(), periodRequest(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

// GetClawbackSummary handles GET /reports/clawback-summary
func (h *reportHandlerImpl) GetClawbackSummary(w http.ResponseWriter, r *http.Request) {
	result, err := h.reportService.GenerateClawbackSummaryReport(r.Context(), periodRequest(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

// GetLWPDays handles GET /reports/lwp-days
func (h *reportHandlerImpl) GetLWPDays(w http.ResponseWriter, r *http.Request) {
	result, err := h.reportService.GenerateLWPDaysReport(r.Context(), periodRequest(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

// GetLeaveUtilization handles GET /reports/leave-utilization
func (h *reportHandlerImpl) GetLeaveUtilization(w http.ResponseWriter, r *http.Request) {
	result, err := h.reportService.GenerateLeaveUtilizationReport(r.Context(), yearRequest(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

// GetFnFStats handles GET /reports/fnf-stats
func (h *reportHandlerImpl) GetFnFStats(w http.ResponseWriter, r *http.Request) {
	result, err := h.reportService.GenerateFnFStatsReport(r.Context(), yearRequest(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}
