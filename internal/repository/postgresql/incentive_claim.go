package postgresql

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/talentum-hr/payops-backend-go/internal/domain/incentive"
	"github.com/talentum-hr/payops-backend-go/internal/pkg/database"
)

type incentiveClaimRepositoryImpl struct {
	db *database.DB
}

func NewIncentiveClaimRepository(db *database.DB) incentive.IncentiveClaimRepository {
	return &incentiveClaimRepositoryImpl{db: db}
}

const incentiveClaimColumns = `
	id, employee_id, year, month,
	target_sales, actual_sales, achievement_pct, slab_name,
	calculated_amount, approved_amount, tier,
	eligibility_passed, status, chain,
	dispute_window_closes_at, paid, paid_in_run_id,
	created_at, updated_at`

func scanIncentiveClaim(row pgx.Row) (incentive.IncentiveClaim, error) {
	var c incentive.IncentiveClaim
	err := row.Scan(
		&c.ID,
		&c.EmployeeID,
		&c.Year,
		&c.Month,
		&c.TargetSales,
		&c.ActualSales,
		&c.AchievementPct,
		&c.SlabName,
		&c.CalculatedAmount,
		&c.ApprovedAmount,
		&c.Tier,
		&c.EligibilityPassed,
		&c.Status,
		&c.Chain,
		&c.DisputeWindowClosesAt,
		&c.Paid,
		&c.PaidInRunID,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	return c, err
}

func (r *incentiveClaimRepositoryImpl) GetByID(ctx context.Context, id string) (incentive.IncentiveClaim, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + incentiveClaimColumns + ` FROM incentive_claims WHERE id = $1`

	c, err := scanIncentiveClaim(q.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return incentive.IncentiveClaim{}, incentive.ErrClaimNotFound
		}
		return incentive.IncentiveClaim{}, fmt.Errorf("failed to get incentive claim: %w", err)
	}
	return c, nil
}

func (r *incentiveClaimRepositoryImpl) GetByEmployeePeriod(ctx context.Context, employeeID string, year, month int) (incentive.IncentiveClaim, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + incentiveClaimColumns + `
		FROM incentive_claims
		WHERE employee_id = $1 AND year = $2 AND month = $3
	`

	c, err := scanIncentiveClaim(q.QueryRow(ctx, query, employeeID, year, month))
	if err != nil {
		if err == pgx.ErrNoRows {
			return incentive.IncentiveClaim{}, incentive.ErrClaimNotFound
		}
		return incentive.IncentiveClaim{}, fmt.Errorf("failed to get incentive claim: %w", err)
	}
	return c, nil
}

func (r *incentiveClaimRepositoryImpl) List(ctx context.Context, filter incentive.ClaimFilter) ([]incentive.IncentiveClaim, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + incentiveClaimColumns + ` FROM incentive_claims WHERE 1=1`
	args := []any{}

	if filter.EmployeeID != nil {
		args = append(args, *filter.EmployeeID)
		query += fmt.Sprintf(" AND employee_id = $%d", len(args))
	}
	if filter.Year != nil {
		args = append(args, *filter.Year)
		query += fmt.Sprintf(" AND year = $%d", len(args))
	}
	if filter.Month != nil {
		args = append(args, *filter.Month)
		query += fmt.Sprintf(" AND month = $%d", len(args))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if filter.Tier != nil {
		args = append(args, *filter.Tier)
		query += fmt.Sprintf(" AND tier = $%d", len(args))
	}
	query += " ORDER BY year DESC, month DESC, employee_id"

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list incentive claims: %w", err)
	}
	defer rows.Close()

	var claims []incentive.IncentiveClaim
	for rows.Next() {
		c, err := scanIncentiveClaim(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan incentive claim: %w", err)
		}
		claims = append(claims, c)
	}
	return claims, rows.Err()
}

func (r *incentiveClaimRepositoryImpl) ApprovedUnpaidByEmployee(ctx context.Context, employeeID string) ([]incentive.IncentiveClaim, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + incentiveClaimColumns + `
		FROM incentive_claims
		WHERE employee_id = $1 AND status = 'approved' AND NOT paid
		ORDER BY year, month
	`

	rows, err := q.Query(ctx, query, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list unpaid claims: %w", err)
	}
	defer rows.Close()

	var claims []incentive.IncentiveClaim
	for rows.Next() {
		c, err := scanIncentiveClaim(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan incentive claim: %w", err)
		}
		claims = append(claims, c)
	}
	return claims, rows.Err()
}

func (r *incentiveClaimRepositoryImpl) Create(ctx context.Context, claim incentive.IncentiveClaim) (incentive.IncentiveClaim, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO incentive_claims (
			id, employee_id, year, month,
			target_sales, actual_sales, achievement_pct, slab_name,
			calculated_amount, approved_amount, tier,
			eligibility_passed, status, chain,
			dispute_window_closes_at, paid, paid_in_run_id,
			created_at, updated_at
		) VALUES (
			uuidv7(), $1, $2, $3,
			$4, $5, $6, $7,
			$8, $9, $10,
			$11, $12, $13,
			$14, $15, $16,
			NOW(), NOW()
		)
		RETURNING ` + incentiveClaimColumns

	created, err := scanIncentiveClaim(q.QueryRow(ctx, query,
		claim.EmployeeID, claim.Year, claim.Month,
		claim.TargetSales, claim.ActualSales, claim.AchievementPct, claim.SlabName,
		claim.CalculatedAmount, claim.ApprovedAmount, claim.Tier,
		claim.EligibilityPassed, claim.Status, claim.Chain,
		claim.DisputeWindowClosesAt, claim.Paid, claim.PaidInRunID,
	))
	if err != nil {
		return incentive.IncentiveClaim{}, fmt.Errorf("failed to create incentive claim: %w", err)
	}
	return created, nil
}

func (r *incentiveClaimRepositoryImpl) Update(ctx context.Context, claim incentive.IncentiveClaim) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE incentive_claims
		SET target_sales = $2, actual_sales = $3, achievement_pct = $4, slab_name = $5,
			calculated_amount = $6, approved_amount = $7, tier = $8,
			eligibility_passed = $9, status = $10, chain = $11,
			dispute_window_closes_at = $12, paid = $13, paid_in_run_id = $14,
			updated_at = NOW()
		WHERE id = $1
	`

	tag, err := q.Exec(ctx, query,
		claim.ID,
		claim.TargetSales, claim.ActualSales, claim.AchievementPct, claim.SlabName,
		claim.CalculatedAmount, claim.ApprovedAmount, claim.Tier,
		claim.EligibilityPassed, claim.Status, claim.Chain,
		claim.DisputeWindowClosesAt, claim.Paid, claim.PaidInRunID,
	)
	if err != nil {
		return fmt.Errorf("failed to update incentive claim: %w", err)
	}
	if tag.RowsAffected() != 1 {
		return incentive.ErrClaimNotFound
	}
	return nil
}

func (r *incentiveClaimRepositoryImpl) CloseExpiredDisputeWindows(ctx context.Context) (int, error) {
	q := GetQuerier(ctx, r.db)

	// Clearing the deadline marks the window as closed; payroll treats a
	// NULL deadline on an approved claim as payable.
	query := `
		UPDATE incentive_claims
		SET dispute_window_closes_at = NULL, updated_at = NOW()
		WHERE status = 'approved'
			AND NOT paid
			AND dispute_window_closes_at IS NOT NULL
			AND dispute_window_closes_at <= NOW()
	`

	tag, err := q.Exec(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("failed to close dispute windows: %w", err)
	}
	return int(tag.RowsAffected()), nil
}
