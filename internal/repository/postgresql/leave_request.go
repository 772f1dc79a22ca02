package postgresql

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/talentum-hr/payops-backend-go/internal/domain/leave"
	"github.com/talentum-hr/payops-backend-go/internal/pkg/database"
)

type leaveRequestRepositoryImpl struct {
	db *database.DB
}

func NewLeaveRequestRepository(db *database.DB) leave.LeaveRequestRepository {
	return &leaveRequestRepositoryImpl{db: db}
}

const leaveRequestColumns = `
	id, employee_id, leave_policy_id,
	start_date, end_date, duration_type, days,
	reason, medical_cert_url, blackout_override_by,
	status, chain,
	balance_available, balance_after, negative_balance,
	cancelled_by, cancelled_at, cancellation_reason,
	submitted_at, created_at, updated_at`

func scanLeaveRequest(row pgx.Row) (leave.LeaveRequest, error) {
	var lr leave.LeaveRequest
	err := row.Scan(
		&lr.ID,
		&lr.EmployeeID,
		&lr.LeavePolicyID,
		&lr.StartDate,
		&lr.EndDate,
		&lr.DurationType,
		&lr.Days,
		&lr.Reason,
		&lr.MedicalCertURL,
		&lr.BlackoutOverrideBy,
		&lr.Status,
		&lr.Chain,
		&lr.BalanceAvailable,
		&lr.BalanceAfter,
		&lr.NegativeBalance,
		&lr.CancelledBy,
		&lr.CancelledAt,
		&lr.CancellationReason,
		&lr.SubmittedAt,
		&lr.CreatedAt,
		&lr.UpdatedAt,
	)
	return lr, err
}

func (r *leaveRequestRepositoryImpl) GetByID(ctx context.Context, id string) (leave.LeaveRequest, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + leaveRequestColumns + ` FROM leave_requests WHERE id = $1`

	lr, err := scanLeaveRequest(q.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return leave.LeaveRequest{}, leave.ErrLeaveRequestNotFound
		}
		return leave.LeaveRequest{}, fmt.Errorf("failed to get leave request: %w", err)
	}
	return lr, nil
}

func (r *leaveRequestRepositoryImpl) GetByEmployee(ctx context.Context, employeeID string) ([]leave.LeaveRequest, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + leaveRequestColumns + `
		FROM leave_requests
		WHERE employee_id = $1
		ORDER BY submitted_at DESC
	`

	rows, err := q.Query(ctx, query, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list leave requests: %w", err)
	}
	defer rows.Close()

	var requests []leave.LeaveRequest
	for rows.Next() {
		lr, err := scanLeaveRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan leave request: %w", err)
		}
		requests = append(requests, lr)
	}
	return requests, rows.Err()
}

func (r *leaveRequestRepositoryImpl) ApprovedLWPDays(ctx context.Context, employeeID string, year, month int) (float64, error) {
	q := GetQuerier(ctx, r.db)

	// Only requests on the unpaid policy count; days outside the period
	// window belong to the neighbouring run.
	query := `
		SELECT COALESCE(SUM(lr.days), 0)
		FROM leave_requests lr
		JOIN leave_policies lp ON lp.id = lr.leave_policy_id
		WHERE lr.employee_id = $1
			AND lr.status = 'approved'
			AND lp.code = 'LWP'
			AND EXTRACT(YEAR FROM lr.start_date) = $2
			AND EXTRACT(MONTH FROM lr.start_date) = $3
	`

	var days float64
	if err := q.QueryRow(ctx, query, employeeID, year, month).Scan(&days); err != nil {
		return 0, fmt.Errorf("failed to sum approved LWP days: %w", err)
	}
	return days, nil
}

func (r *leaveRequestRepositoryImpl) Create(ctx context.Context, request leave.LeaveRequest) (leave.LeaveRequest, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO leave_requests (
			id, employee_id, leave_policy_id,
			start_date, end_date, duration_type, days,
			reason, medical_cert_url, blackout_override_by,
			status, chain,
			balance_available, balance_after, negative_balance,
			submitted_at, created_at, updated_at
		) VALUES (
			uuidv7(), $1, $2,
			$3, $4, $5, $6,
			$7, $8, $9,
			$10, $11,
			$12, $13, $14,
			NOW(), NOW(), NOW()
		)
		RETURNING ` + leaveRequestColumns

	created, err := scanLeaveRequest(q.QueryRow(ctx, query,
		request.EmployeeID, request.LeavePolicyID,
		request.StartDate, request.EndDate, request.DurationType, request.Days,
		request.Reason, request.MedicalCertURL, request.BlackoutOverrideBy,
		request.Status, request.Chain,
		request.BalanceAvailable, request.BalanceAfter, request.NegativeBalance,
	))
	if err != nil {
		return leave.LeaveRequest{}, fmt.Errorf("failed to create leave request: %w", err)
	}
	return created, nil
}

func (r *leaveRequestRepositoryImpl) Update(ctx context.Context, request leave.LeaveRequest) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE leave_requests
		SET status = $2, chain = $3,
			medical_cert_url = $4, blackout_override_by = $5,
			balance_available = $6, balance_after = $7, negative_balance = $8,
			cancelled_by = $9, cancelled_at = $10, cancellation_reason = $11,
			updated_at = NOW()
		WHERE id = $1
	`

	tag, err := q.Exec(ctx, query,
		request.ID,
		request.Status, request.Chain,
		request.MedicalCertURL, request.BlackoutOverrideBy,
		request.BalanceAvailable, request.BalanceAfter, request.NegativeBalance,
		request.CancelledBy, request.CancelledAt, request.CancellationReason,
	)
	if err != nil {
		return fmt.Errorf("failed to update leave request: %w", err)
	}
	if tag.RowsAffected() != 1 {
		return leave.ErrLeaveRequestNotFound
	}
	return nil
}
