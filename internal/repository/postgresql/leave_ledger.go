package postgresql

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/talentum-hr/payops-backend-go/internal/domain/leave"
	"github.com/talentum-hr/payops-backend-go/internal/pkg/database"
)

type leaveLedgerRepositoryImpl struct {
	db *database.DB
}

func NewLeaveLedgerRepository(db *database.DB) leave.LeaveLedgerRepository {
	return &leaveLedgerRepositoryImpl{db: db}
}

const ledgerColumns = `
	id, employee_id, leave_policy_id, year, month,
	opening, accrual, used, encashed, carried_forward,
	closing, negative_balance,
	accrued_at, used_details, created_at, updated_at`

func scanLedgerEntry(row pgx.Row) (leave.LedgerEntry, error) {
	var e leave.LedgerEntry
	err := row.Scan(
		&e.ID,
		&e.EmployeeID,
		&e.LeavePolicyID,
		&e.Year,
		&e.Month,
		&e.Opening,
		&e.Accrual,
		&e.Used,
		&e.Encashed,
		&e.CarriedForward,
		&e.Closing,
		&e.NegativeBalance,
		&e.AccruedAt,
		&e.UsedDetails,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	return e, err
}

func (r *leaveLedgerRepositoryImpl) GetEntry(ctx context.Context, employeeID, policyID string, year, month int) (leave.LedgerEntry, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + ledgerColumns + `
		FROM leave_ledger_entries
		WHERE employee_id = $1 AND leave_policy_id = $2 AND year = $3 AND month = $4
	`

	e, err := scanLedgerEntry(q.QueryRow(ctx, query, employeeID, policyID, year, month))
	if err != nil {
		if err == pgx.ErrNoRows {
			return leave.LedgerEntry{}, leave.ErrLedgerEntryNotFound
		}
		return leave.LedgerEntry{}, fmt.Errorf("failed to get ledger entry: %w", err)
	}
	return e, nil
}

func (r *leaveLedgerRepositoryImpl) GetByEmployeeYear(ctx context.Context, employeeID string, year int) ([]leave.LedgerEntry, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + ledgerColumns + `
		FROM leave_ledger_entries
		WHERE employee_id = $1 AND year = $2
		ORDER BY leave_policy_id, month
	`

	rows, err := q.Query(ctx, query, employeeID, year)
	if err != nil {
		return nil, fmt.Errorf("failed to list ledger entries: %w", err)
	}
	defer rows.Close()

	var entries []leave.LedgerEntry
	for rows.Next() {
		e, err := scanLedgerEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ledger entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *leaveLedgerRepositoryImpl) EncashedDaysInMonth(ctx context.Context, employeeID string, year, month int) (decimal.Decimal, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT COALESCE(SUM(encashed), 0)
		FROM leave_ledger_entries
		WHERE employee_id = $1 AND year = $2 AND month = $3
	`

	var days decimal.Decimal
	if err := q.QueryRow(ctx, query, employeeID, year, month).Scan(&days); err != nil {
		return decimal.Decimal{}, fmt.Errorf("failed to sum encashed days: %w", err)
	}
	return days, nil
}

func (r *leaveLedgerRepositoryImpl) Create(ctx context.Context, entry leave.LedgerEntry) (leave.LedgerEntry, error) {
	q := GetQuerier(ctx, r.db)

	// ON CONFLICT keeps a concurrent year-close seed and an on-demand
	// open from racing into duplicate period rows.
	query := `
		INSERT INTO leave_ledger_entries (
			id, employee_id, leave_policy_id, year, month,
			opening, accrual, used, encashed, carried_forward,
			closing, negative_balance, accrued_at, used_details,
			created_at, updated_at
		) VALUES (
			uuidv7(), $1, $2, $3, $4,
			$5, $6, $7, $8, $9,
			$10, $11, $12, $13,
			NOW(), NOW()
		)
		ON CONFLICT (employee_id, leave_policy_id, year, month) DO UPDATE
			SET updated_at = leave_ledger_entries.updated_at
		RETURNING ` + ledgerColumns

	created, err := scanLedgerEntry(q.QueryRow(ctx, query,
		entry.EmployeeID, entry.LeavePolicyID, entry.Year, entry.Month,
		entry.Opening, entry.Accrual, entry.Used, entry.Encashed, entry.CarriedForward,
		entry.Closing, entry.NegativeBalance, entry.AccruedAt, entry.UsedDetails,
	))
	if err != nil {
		return leave.LedgerEntry{}, fmt.Errorf("failed to create ledger entry: %w", err)
	}
	return created, nil
}

func (r *leaveLedgerRepositoryImpl) Update(ctx context.Context, entry leave.LedgerEntry) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE leave_ledger_entries
		SET opening = $2, accrual = $3, used = $4, encashed = $5, carried_forward = $6,
			closing = $7, negative_balance = $8, accrued_at = $9, used_details = $10,
			updated_at = NOW()
		WHERE id = $1
	`

	tag, err := q.Exec(ctx, query,
		entry.ID,
		entry.Opening, entry.Accrual, entry.Used, entry.Encashed, entry.CarriedForward,
		entry.Closing, entry.NegativeBalance, entry.AccruedAt, entry.UsedDetails,
	)
	if err != nil {
		return fmt.Errorf("failed to update ledger entry: %w", err)
	}
	if tag.RowsAffected() != 1 {
		return leave.ErrLedgerEntryNotFound
	}
	return nil
}
