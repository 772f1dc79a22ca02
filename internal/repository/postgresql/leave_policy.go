package postgresql

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/talentum-hr/payops-backend-go/internal/domain/leave"
	"github.com/talentum-hr/payops-backend-go/internal/pkg/database"
)

type leavePolicyRepositoryImpl struct {
	db *database.DB
}

func NewLeavePolicyRepository(db *database.DB) leave.LeavePolicyRepository {
	return &leavePolicyRepositoryImpl{db: db}
}

const leavePolicyColumns = `
	id, name, code, description,
	days_per_year, monthly_accrual, flat_monthly_rate,
	carry_forward_enabled, carry_forward_max_days, encash_on_year_close,
	allow_negative_balance, allow_half_day, blackout_dates, blackout_override_role, medical_cert_after_days,
	approval_authorities, is_active, created_at, updated_at`

func scanLeavePolicy(row pgx.Row) (leave.LeavePolicy, error) {
	var p leave.LeavePolicy
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Code,
		&p.Description,
		&p.DaysPerYear,
		&p.MonthlyAccrual,
		&p.FlatMonthlyRate,
		&p.CarryForwardEnabled,
		&p.CarryForwardMaxDays,
		&p.EncashOnYearClose,
		&p.AllowNegativeBalance,
		&p.AllowHalfDay,
		&p.BlackoutDates,
		&p.BlackoutOverrideRole,
		&p.MedicalCertAfterDays,
		&p.ApprovalAuthorities,
		&p.IsActive,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	return p, err
}

func (r *leavePolicyRepositoryImpl) GetByID(ctx context.Context, id string) (leave.LeavePolicy, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + leavePolicyColumns + ` FROM leave_policies WHERE id = $1`

	p, err := scanLeavePolicy(q.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return leave.LeavePolicy{}, leave.ErrPolicyNotFound
		}
		return leave.LeavePolicy{}, fmt.Errorf("failed to get leave policy: %w", err)
	}
	return p, nil
}

func (r *leavePolicyRepositoryImpl) GetByCode(ctx context.Context, code string) (leave.LeavePolicy, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + leavePolicyColumns + ` FROM leave_policies WHERE code = $1`

	p, err := scanLeavePolicy(q.QueryRow(ctx, query, code))
	if err != nil {
		if err == pgx.ErrNoRows {
			return leave.LeavePolicy{}, leave.ErrPolicyNotFound
		}
		return leave.LeavePolicy{}, fmt.Errorf("failed to get leave policy: %w", err)
	}
	return p, nil
}

func (r *leavePolicyRepositoryImpl) GetActive(ctx context.Context) ([]leave.LeavePolicy, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + leavePolicyColumns + ` FROM leave_policies WHERE is_active ORDER BY code`

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list leave policies: %w", err)
	}
	defer rows.Close()

	var policies []leave.LeavePolicy
	for rows.Next() {
		p, err := scanLeavePolicy(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan leave policy: %w", err)
		}
		policies = append(policies, p)
	}
	return policies, rows.Err()
}
