package postgresql

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/talentum-hr/payops-backend-go/internal/domain/incentive"
	"github.com/talentum-hr/payops-backend-go/internal/pkg/database"
)

type returnsRemakesRepositoryImpl struct {
	db *database.DB
}

func NewReturnsRemakesRepository(db *database.DB) incentive.ReturnsRemakesRepository {
	return &returnsRemakesRepositoryImpl{db: db}
}

const returnsRemakesColumns = `
	id, invoice_id, employee_id, store_id, type, amount,
	event_date, original_sale_date, reason,
	policy_window_days, policy_applicable, exempted,
	clawback_applied, clawback_amount, clawback_method, resolved_in_run_id, unresolved_reason,
	created_at, updated_at`

func scanReturnsRemakesItem(row pgx.Row) (incentive.ReturnsRemakesItem, error) {
	var item incentive.ReturnsRemakesItem
	err := row.Scan(
		&item.ID,
		&item.InvoiceID,
		&item.EmployeeID,
		&item.StoreID,
		&item.Type,
		&item.Amount,
		&item.EventDate,
		&item.OriginalSaleDate,
		&item.Reason,
		&item.PolicyWindowDays,
		&item.PolicyApplicable,
		&item.Exempted,
		&item.ClawbackApplied,
		&item.ClawbackAmount,
		&item.ClawbackMethod,
		&item.ResolvedInRunID,
		&item.UnresolvedReason,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	return item, err
}

func (r *returnsRemakesRepositoryImpl) CreateIfAbsent(ctx context.Context, item incentive.ReturnsRemakesItem) (bool, error) {
	q := GetQuerier(ctx, r.db)

	// An invoice can produce one RETURN and one REMAKE; redelivery of
	// either is dropped on the composite key.
	query := `
		INSERT INTO returns_remakes_items (
			id, invoice_id, employee_id, store_id, type, amount,
			event_date, original_sale_date, reason,
			policy_window_days, policy_applicable, exempted,
			clawback_applied, created_at, updated_at
		) VALUES (
			uuidv7(), $1, $2, $3, $4, $5,
			$6, $7, $8,
			$9, $10, $11,
			false, NOW(), NOW()
		)
		ON CONFLICT (invoice_id, type) DO NOTHING
	`

	tag, err := q.Exec(ctx, query,
		item.InvoiceID, item.EmployeeID, item.StoreID, item.Type, item.Amount,
		item.EventDate, item.OriginalSaleDate, item.Reason,
		item.PolicyWindowDays, item.PolicyApplicable, item.Exempted,
	)
	if err != nil {
		return false, fmt.Errorf("failed to record returns/remakes item: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *returnsRemakesRepositoryImpl) GetByID(ctx context.Context, id string) (incentive.ReturnsRemakesItem, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + returnsRemakesColumns + ` FROM returns_remakes_items WHERE id = $1`

	item, err := scanReturnsRemakesItem(q.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return incentive.ReturnsRemakesItem{}, incentive.ErrReturnItemNotFound
		}
		return incentive.ReturnsRemakesItem{}, fmt.Errorf("failed to get returns/remakes item: %w", err)
	}
	return item, nil
}

func (r *returnsRemakesRepositoryImpl) UnresolvedInPeriod(ctx context.Context, year, month int) ([]incentive.ReturnsRemakesItem, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + returnsRemakesColumns + `
		FROM returns_remakes_items
		WHERE NOT clawback_applied
			AND unresolved_reason IS NULL
			AND EXTRACT(YEAR FROM event_date) = $1
			AND EXTRACT(MONTH FROM event_date) = $2
		ORDER BY event_date, invoice_id
	`

	rows, err := q.Query(ctx, query, year, month)
	if err != nil {
		return nil, fmt.Errorf("failed to list unresolved items: %w", err)
	}
	defer rows.Close()

	var items []incentive.ReturnsRemakesItem
	for rows.Next() {
		item, err := scanReturnsRemakesItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan returns/remakes item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *returnsRemakesRepositoryImpl) Update(ctx context.Context, item incentive.ReturnsRemakesItem) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE returns_remakes_items
		SET exempted = $2,
			clawback_applied = $3, clawback_amount = $4, clawback_method = $5,
			resolved_in_run_id = $6, unresolved_reason = $7,
			updated_at = NOW()
		WHERE id = $1
	`

	tag, err := q.Exec(ctx, query,
		item.ID,
		item.Exempted,
		item.ClawbackApplied, item.ClawbackAmount, item.ClawbackMethod,
		item.ResolvedInRunID, item.UnresolvedReason,
	)
	if err != nil {
		return fmt.Errorf("failed to update returns/remakes item: %w", err)
	}
	if tag.RowsAffected() != 1 {
		return incentive.ErrReturnItemNotFound
	}
	return nil
}
