package postgresql

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/talentum-hr/payops-backend-go/internal/domain/payroll"
	"github.com/talentum-hr/payops-backend-go/internal/pkg/database"
)

type payrollComponentRepositoryImpl struct {
	db *database.DB
}

func NewPayrollComponentRepository(db *database.DB) payroll.PayrollComponentRepository {
	return &payrollComponentRepositoryImpl{db: db}
}

const payrollComponentColumns = `
	id, run_id, employee_id, type, code, amount, source,
	override_id, source_ref_id, created_at, updated_at`

func scanPayrollComponent(row pgx.Row) (payroll.PayrollComponent, error) {
	var c payroll.PayrollComponent
	err := row.Scan(
		&c.ID,
		&c.RunID,
		&c.EmployeeID,
		&c.Type,
		&c.Code,
		&c.Amount,
		&c.Source,
		&c.OverrideID,
		&c.SourceRefID,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	return c, err
}

func (r *payrollComponentRepositoryImpl) ListByRun(ctx context.Context, runID string) ([]payroll.PayrollComponent, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + payrollComponentColumns + `
		FROM payroll_components
		WHERE run_id = $1
		ORDER BY employee_id, type, code
	`

	rows, err := q.Query(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payroll components: %w", err)
	}
	defer rows.Close()

	return collectComponents(rows)
}

func (r *payrollComponentRepositoryImpl) ListByRunEmployee(ctx context.Context, runID, employeeID string) ([]payroll.PayrollComponent, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + payrollComponentColumns + `
		FROM payroll_components
		WHERE run_id = $1 AND employee_id = $2
		ORDER BY type, code
	`

	rows, err := q.Query(ctx, query, runID, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payroll components: %w", err)
	}
	defer rows.Close()

	return collectComponents(rows)
}

func collectComponents(rows pgx.Rows) ([]payroll.PayrollComponent, error) {
	var components []payroll.PayrollComponent
	for rows.Next() {
		c, err := scanPayrollComponent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payroll component: %w", err)
		}
		components = append(components, c)
	}
	return components, rows.Err()
}

func (r *payrollComponentRepositoryImpl) GetByRunEmployeeCode(ctx context.Context, runID, employeeID string, code payroll.ComponentCode) (payroll.PayrollComponent, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + payrollComponentColumns + `
		FROM payroll_components
		WHERE run_id = $1 AND employee_id = $2 AND code = $3
	`

	c, err := scanPayrollComponent(q.QueryRow(ctx, query, runID, employeeID, code))
	if err != nil {
		if err == pgx.ErrNoRows {
			return payroll.PayrollComponent{}, payroll.ErrComponentNotFound
		}
		return payroll.PayrollComponent{}, fmt.Errorf("failed to get payroll component: %w", err)
	}
	return c, nil
}

func (r *payrollComponentRepositoryImpl) CreateBatch(ctx context.Context, components []payroll.PayrollComponent) error {
	if len(components) == 0 {
		return nil
	}
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO payroll_components (
			id, run_id, employee_id, type, code, amount, source,
			override_id, source_ref_id, created_at, updated_at
		) VALUES (uuidv7(), $1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
	`

	batch := &pgx.Batch{}
	for _, c := range components {
		batch.Queue(query,
			c.RunID, c.EmployeeID, c.Type, c.Code, c.Amount, c.Source,
			c.OverrideID, c.SourceRefID,
		)
	}

	results := q.SendBatch(ctx, batch)
	defer results.Close()

	for range components {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("failed to insert payroll component: %w", err)
		}
	}
	return nil
}

func (r *payrollComponentRepositoryImpl) Update(ctx context.Context, component payroll.PayrollComponent) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE payroll_components
		SET amount = $2, source = $3, override_id = $4, updated_at = NOW()
		WHERE id = $1
	`

	tag, err := q.Exec(ctx, query, component.ID, component.Amount, component.Source, component.OverrideID)
	if err != nil {
		return fmt.Errorf("failed to update payroll component: %w", err)
	}
	if tag.RowsAffected() != 1 {
		return payroll.ErrComponentNotFound
	}
	return nil
}

func (r *payrollComponentRepositoryImpl) DeleteCalcByRun(ctx context.Context, runID string) error {
	q := GetQuerier(ctx, r.db)

	query := `DELETE FROM payroll_components WHERE run_id = $1 AND source = 'CALC'`

	if _, err := q.Exec(ctx, query, runID); err != nil {
		return fmt.Errorf("failed to clear calculated components: %w", err)
	}
	return nil
}
