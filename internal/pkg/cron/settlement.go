package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// AccrualRunner runs the monthly leave accrual batch.
type AccrualRunner interface {
	AccrueCurrentPeriod(ctx context.Context) error
}

// DisputeWindowCloser finalizes incentive claims whose dispute window
// has lapsed.
type DisputeWindowCloser interface {
	CloseExpiredDisputeWindows(ctx context.Context) (int, error)
}

type SettlementJobs struct {
	accrual AccrualRunner
	dispute DisputeWindowCloser
}

func NewSettlementJobs(accrual AccrualRunner, dispute DisputeWindowCloser) *SettlementJobs {
	return &SettlementJobs{
		accrual: accrual,
		dispute: dispute,
	}
}

func (j *SettlementJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob("monthly_leave_accrual", 1*time.Hour, j.RunMonthlyAccrual)
	scheduler.AddJob("close_dispute_windows", 1*time.Hour, j.CloseDisputeWindows)
}

func (j *SettlementJobs) RunMonthlyAccrual(ctx context.Context) error {
	// Only run on the 1st of the month at midnight (00:00-00:59 UTC).
	// The accrual service is idempotent, so a restart inside that hour
	// does not double-credit.
	now := time.Now().UTC()
	if now.Day() != 1 || now.Hour() != 0 {
		return nil
	}

	slog.Info("Cron: Starting monthly leave accrual job")

	if err := j.accrual.AccrueCurrentPeriod(ctx); err != nil {
		return fmt.Errorf("failed to run monthly accrual: %w", err)
	}

	slog.Info("Cron: Monthly leave accrual completed")
	return nil
}

func (j *SettlementJobs) CloseDisputeWindows(ctx context.Context) error {
	closed, err := j.dispute.CloseExpiredDisputeWindows(ctx)
	if err != nil {
		return fmt.Errorf("failed to close dispute windows: %w", err)
	}

	if closed > 0 {
		slog.Info("Cron: Closed expired dispute windows", "count", closed)
	}
	return nil
}
