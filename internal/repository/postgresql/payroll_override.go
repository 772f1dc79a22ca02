package postgresql

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/talentum-hr/payops-backend-go/internal/domain/payroll"
	"github.com/talentum-hr/payops-backend-go/internal/pkg/database"
)

type payrollOverrideRepositoryImpl struct {
	db *database.DB
}

func NewPayrollOverrideRepository(db *database.DB) payroll.PayrollOverrideRepository {
	return &payrollOverrideRepositoryImpl{db: db}
}

const payrollOverrideColumns = `
	id, run_id, employee_id, component_code,
	original_amount, override_amount, difference, reason_code,
	is_high_value, status, chain,
	applied, applied_at, requested_by,
	created_at, updated_at`

func scanPayrollOverride(row pgx.Row) (payroll.PayrollOverride, error) {
	var o payroll.PayrollOverride
	err := row.Scan(
		&o.ID,
		&o.RunID,
		&o.EmployeeID,
		&o.ComponentCode,
		&o.OriginalAmount,
		&o.OverrideAmount,
		&o.Difference,
		&o.ReasonCode,
		&o.IsHighValue,
		&o.Status,
		&o.Chain,
		&o.Applied,
		&o.AppliedAt,
		&o.RequestedBy,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	return o, err
}

func (r *payrollOverrideRepositoryImpl) GetByID(ctx context.Context, id string) (payroll.PayrollOverride, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + payrollOverrideColumns + ` FROM payroll_overrides WHERE id = $1`

	o, err := scanPayrollOverride(q.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return payroll.PayrollOverride{}, payroll.ErrOverrideNotFound
		}
		return payroll.PayrollOverride{}, fmt.Errorf("failed to get payroll override: %w", err)
	}
	return o, nil
}

func (r *payrollOverrideRepositoryImpl) ListByRun(ctx context.Context, runID string) ([]payroll.PayrollOverride, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + payrollOverrideColumns + `
		FROM payroll_overrides
		WHERE run_id = $1
		ORDER BY created_at
	`

	rows, err := q.Query(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payroll overrides: %w", err)
	}
	defer rows.Close()

	var overrides []payroll.PayrollOverride
	for rows.Next() {
		o, err := scanPayrollOverride(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payroll override: %w", err)
		}
		overrides = append(overrides, o)
	}
	return overrides, rows.Err()
}

func (r *payrollOverrideRepositoryImpl) CountPendingByRun(ctx context.Context, runID string) (int, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT COUNT(*) FROM payroll_overrides WHERE run_id = $1 AND status = 'pending'`

	var count int
	if err := q.QueryRow(ctx, query, runID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count pending overrides: %w", err)
	}
	return count, nil
}

func (r *payrollOverrideRepositoryImpl) Create(ctx context.Context, override payroll.PayrollOverride) (payroll.PayrollOverride, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO payroll_overrides (
			id, run_id, employee_id, component_code,
			original_amount, override_amount, difference, reason_code,
			is_high_value, status, chain,
			applied, requested_by, created_at, updated_at
		) VALUES (
			uuidv7(), $1, $2, $3,
			$4, $5, $6, $7,
			$8, $9, $10,
			false, $11, NOW(), NOW()
		)
		RETURNING ` + payrollOverrideColumns

	created, err := scanPayrollOverride(q.QueryRow(ctx, query,
		override.RunID, override.EmployeeID, override.ComponentCode,
		override.OriginalAmount, override.OverrideAmount, override.Difference, override.ReasonCode,
		override.IsHighValue, override.Status, override.Chain,
		override.RequestedBy,
	))
	if err != nil {
		return payroll.PayrollOverride{}, fmt.Errorf("failed to create payroll override: %w", err)
	}
	return created, nil
}

func (r *payrollOverrideRepositoryImpl) Update(ctx context.Context, override payroll.PayrollOverride) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE payroll_overrides
		SET status = $2, chain = $3, applied = $4, applied_at = $5, updated_at = NOW()
		WHERE id = $1
	`

	tag, err := q.Exec(ctx, query,
		override.ID,
		override.Status, override.Chain, override.Applied, override.AppliedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update payroll override: %w", err)
	}
	if tag.RowsAffected() != 1 {
		return payroll.ErrOverrideNotFound
	}
	return nil
}
