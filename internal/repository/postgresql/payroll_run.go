package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/talentum-hr/payops-backend-go/internal/domain/payroll"
	"github.com/talentum-hr/payops-backend-go/internal/pkg/database"
)

type payrollRunRepositoryImpl struct {
	db *database.DB
}

func NewPayrollRunRepository(db *database.DB) payroll.PayrollRunRepository {
	return &payrollRunRepositoryImpl{db: db}
}

const payrollRunColumns = `
	id, month, year, status,
	attendance_imported, incentives_generated, clawbacks_resolved, variance_reported,
	processing_error, jv_number, jv_date,
	locked_by, locked_at, posted_by, posted_at, cancelled_by, cancelled_at,
	created_by, created_at, updated_at`

func scanPayrollRun(row pgx.Row) (payroll.PayrollRun, error) {
	var run payroll.PayrollRun
	err := row.Scan(
		&run.ID,
		&run.Month,
		&run.Year,
		&run.Status,
		&run.AttendanceImported,
		&run.IncentivesGenerated,
		&run.ClawbacksResolved,
		&run.VarianceReported,
		&run.ProcessingError,
		&run.JVNumber,
		&run.JVDate,
		&run.LockedBy,
		&run.LockedAt,
		&run.PostedBy,
		&run.PostedAt,
		&run.CancelledBy,
		&run.CancelledAt,
		&run.CreatedBy,
		&run.CreatedAt,
		&run.UpdatedAt,
	)
	return run, err
}

func (r *payrollRunRepositoryImpl) GetByID(ctx context.Context, id string) (payroll.PayrollRun, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + payrollRunColumns + ` FROM payroll_runs WHERE id = $1`

	run, err := scanPayrollRun(q.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return payroll.PayrollRun{}, payroll.ErrRunNotFound
		}
		return payroll.PayrollRun{}, fmt.Errorf("failed to get payroll run: %w", err)
	}
	return run, nil
}

func (r *payrollRunRepositoryImpl) GetByPeriod(ctx context.Context, month, year int) (payroll.PayrollRun, error) {
	q := GetQuerier(ctx, r.db)

	// A cancelled run frees its period for a fresh one; the latest
	// non-cancelled run is the period's run.
	query := `
		SELECT ` + payrollRunColumns + `
		FROM payroll_runs
		WHERE month = $1 AND year = $2 AND status <> 'CANCELLED'
		ORDER BY created_at DESC
		LIMIT 1
	`

	run, err := scanPayrollRun(q.QueryRow(ctx, query, month, year))
	if err != nil {
		if err == pgx.ErrNoRows {
			return payroll.PayrollRun{}, payroll.ErrRunNotFound
		}
		return payroll.PayrollRun{}, fmt.Errorf("failed to get payroll run: %w", err)
	}
	return run, nil
}

func (r *payrollRunRepositoryImpl) Create(ctx context.Context, run payroll.PayrollRun) (payroll.PayrollRun, error) {
	q := GetQuerier(ctx, r.db)

	// The partial unique index on (month, year) excludes cancelled runs.
	query := `
		INSERT INTO payroll_runs (id, month, year, status, created_by, created_at, updated_at)
		VALUES (uuidv7(), $1, $2, $3, $4, NOW(), NOW())
		RETURNING ` + payrollRunColumns

	created, err := scanPayrollRun(q.QueryRow(ctx, query, run.Month, run.Year, run.Status, run.CreatedBy))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			existing, lookupErr := r.GetByPeriod(ctx, run.Month, run.Year)
			if lookupErr != nil {
				return payroll.PayrollRun{}, fmt.Errorf("failed to resolve duplicate run: %w", lookupErr)
			}
			return payroll.PayrollRun{}, &payroll.DuplicateRunError{
				Month:         run.Month,
				Year:          run.Year,
				ExistingRunID: existing.ID,
			}
		}
		return payroll.PayrollRun{}, fmt.Errorf("failed to create payroll run: %w", err)
	}
	return created, nil
}

func (r *payrollRunRepositoryImpl) Update(ctx context.Context, run payroll.PayrollRun) error {
	q := GetQuerier(ctx, r.db)

	// Status is deliberately absent; it only moves through TransitionStatus.
	query := `
		UPDATE payroll_runs
		SET attendance_imported = $2, incentives_generated = $3,
			clawbacks_resolved = $4, variance_reported = $5,
			processing_error = $6, jv_number = $7, jv_date = $8,
			locked_by = $9, locked_at = $10,
			posted_by = $11, posted_at = $12,
			cancelled_by = $13, cancelled_at = $14,
			updated_at = NOW()
		WHERE id = $1
	`

	tag, err := q.Exec(ctx, query,
		run.ID,
		run.AttendanceImported, run.IncentivesGenerated,
		run.ClawbacksResolved, run.VarianceReported,
		run.ProcessingError, run.JVNumber, run.JVDate,
		run.LockedBy, run.LockedAt,
		run.PostedBy, run.PostedAt,
		run.CancelledBy, run.CancelledAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update payroll run: %w", err)
	}
	if tag.RowsAffected() != 1 {
		return payroll.ErrRunNotFound
	}
	return nil
}

func (r *payrollRunRepositoryImpl) TransitionStatus(ctx context.Context, id string, expected, next payroll.RunStatus) (bool, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE payroll_runs
		SET status = $3, updated_at = NOW()
		WHERE id = $1 AND status = $2
	`

	tag, err := q.Exec(ctx, query, id, expected, next)
	if err != nil {
		return false, fmt.Errorf("failed to transition payroll run: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}
