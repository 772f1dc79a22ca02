package postgresql

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/talentum-hr/payops-backend-go/internal/domain/fnf"
	"github.com/talentum-hr/payops-backend-go/internal/pkg/database"
)

type fnfCaseRepositoryImpl struct {
	db *database.DB
}

func NewFnFCaseRepository(db *database.DB) fnf.FnFCaseRepository {
	return &fnfCaseRepositoryImpl{db: db}
}

// The five calculation blocks live in jsonb columns; pgx maps them to
// and from the block structs.
const fnfCaseColumns = `
	id, employee_id, last_working_day, reason,
	date_of_joining, notice_period_days, notice_given_days, basic_salary, gross_salary,
	status,
	unpaid_salary, el_encashment, incentives, recoveries, statutory,
	total_payable, total_receivable, net_settlement,
	chain, paid_at, payout_ref,
	statement_generated, relieving_letter_queued, access_disabled, form16_pending_update,
	on_hold_reason, initiated_by, created_at, updated_at`

func scanFnFCase(row pgx.Row) (fnf.FnFCase, error) {
	var c fnf.FnFCase
	err := row.Scan(
		&c.ID,
		&c.EmployeeID,
		&c.LastWorkingDay,
		&c.Reason,
		&c.DateOfJoining,
		&c.NoticePeriodDays,
		&c.NoticeGivenDays,
		&c.BasicSalary,
		&c.GrossSalary,
		&c.Status,
		&c.UnpaidSalary,
		&c.ELEncashment,
		&c.Incentives,
		&c.Recoveries,
		&c.Statutory,
		&c.TotalPayable,
		&c.TotalReceivable,
		&c.NetSettlement,
		&c.Chain,
		&c.PaidAt,
		&c.PayoutRef,
		&c.StatementGenerated,
		&c.RelievingLetterQueued,
		&c.AccessDisabled,
		&c.Form16PendingUpdate,
		&c.OnHoldReason,
		&c.InitiatedBy,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	return c, err
}

func (r *fnfCaseRepositoryImpl) GetByID(ctx context.Context, id string) (fnf.FnFCase, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + fnfCaseColumns + ` FROM fnf_cases WHERE id = $1`

	c, err := scanFnFCase(q.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return fnf.FnFCase{}, fnf.ErrCaseNotFound
		}
		return fnf.FnFCase{}, fmt.Errorf("failed to get settlement case: %w", err)
	}
	return c, nil
}

func (r *fnfCaseRepositoryImpl) HasOpenCase(ctx context.Context, employeeID string) (bool, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT EXISTS (
			SELECT 1 FROM fnf_cases
			WHERE employee_id = $1 AND status NOT IN ('PAID', 'CANCELLED')
		)
	`

	var open bool
	if err := q.QueryRow(ctx, query, employeeID).Scan(&open); err != nil {
		return false, fmt.Errorf("failed to check open settlement case: %w", err)
	}
	return open, nil
}

func (r *fnfCaseRepositoryImpl) List(ctx context.Context) ([]fnf.FnFCase, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + fnfCaseColumns + ` FROM fnf_cases ORDER BY created_at DESC`

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list settlement cases: %w", err)
	}
	defer rows.Close()

	var cases []fnf.FnFCase
	for rows.Next() {
		c, err := scanFnFCase(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan settlement case: %w", err)
		}
		cases = append(cases, c)
	}
	return cases, rows.Err()
}

func (r *fnfCaseRepositoryImpl) Create(ctx context.Context, c fnf.FnFCase) (fnf.FnFCase, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO fnf_cases (
			id, employee_id, last_working_day, reason,
			date_of_joining, notice_period_days, notice_given_days, basic_salary, gross_salary,
			status,
			unpaid_salary, el_encashment, incentives, recoveries, statutory,
			total_payable, total_receivable, net_settlement,
			chain, initiated_by, created_at, updated_at
		) VALUES (
			uuidv7(), $1, $2, $3,
			$4, $5, $6, $7, $8,
			$9,
			$10, $11, $12, $13, $14,
			$15, $16, $17,
			$18, $19, NOW(), NOW()
		)
		RETURNING ` + fnfCaseColumns

	created, err := scanFnFCase(q.QueryRow(ctx, query,
		c.EmployeeID, c.LastWorkingDay, c.Reason,
		c.DateOfJoining, c.NoticePeriodDays, c.NoticeGivenDays, c.BasicSalary, c.GrossSalary,
		c.Status,
		c.UnpaidSalary, c.ELEncashment, c.Incentives, c.Recoveries, c.Statutory,
		c.TotalPayable, c.TotalReceivable, c.NetSettlement,
		c.Chain, c.InitiatedBy,
	))
	if err != nil {
		return fnf.FnFCase{}, fmt.Errorf("failed to create settlement case: %w", err)
	}
	return created, nil
}

func (r *fnfCaseRepositoryImpl) Update(ctx context.Context, c fnf.FnFCase) error {
	q := GetQuerier(ctx, r.db)

	// Status is deliberately absent; it only moves through TransitionStatus.
	query := `
		UPDATE fnf_cases
		SET unpaid_salary = $2, el_encashment = $3, incentives = $4, recoveries = $5, statutory = $6,
			total_payable = $7, total_receivable = $8, net_settlement = $9,
			chain = $10, paid_at = $11, payout_ref = $12,
			statement_generated = $13, relieving_letter_queued = $14,
			access_disabled = $15, form16_pending_update = $16,
			on_hold_reason = $17,
			updated_at = NOW()
		WHERE id = $1
	`

	tag, err := q.Exec(ctx, query,
		c.ID,
		c.UnpaidSalary, c.ELEncashment, c.Incentives, c.Recoveries, c.Statutory,
		c.TotalPayable, c.TotalReceivable, c.NetSettlement,
		c.Chain, c.PaidAt, c.PayoutRef,
		c.StatementGenerated, c.RelievingLetterQueued,
		c.AccessDisabled, c.Form16PendingUpdate,
		c.OnHoldReason,
	)
	if err != nil {
		return fmt.Errorf("failed to update settlement case: %w", err)
	}
	if tag.RowsAffected() != 1 {
		return fnf.ErrCaseNotFound
	}
	return nil
}

func (r *fnfCaseRepositoryImpl) TransitionStatus(ctx context.Context, id string, expected, next fnf.CaseStatus) (bool, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE fnf_cases
		SET status = $3, updated_at = NOW()
		WHERE id = $1 AND status = $2
	`

	tag, err := q.Exec(ctx, query, id, expected, next)
	if err != nil {
		return false, fmt.Errorf("failed to transition settlement case: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}
