package postgresql

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/talentum-hr/payops-backend-go/internal/domain/incentive"
	"github.com/talentum-hr/payops-backend-go/internal/pkg/database"
)

type salesEventRepositoryImpl struct {
	db *database.DB
}

func NewSalesEventRepository(db *database.DB) incentive.SalesEventRepository {
	return &salesEventRepositoryImpl{db: db}
}

const salesEventColumns = `
	id, invoice_id, employee_id, store_id, amount, sale_date, received_at`

func scanSalesEvent(row pgx.Row) (incentive.SalesEvent, error) {
	var e incentive.SalesEvent
	err := row.Scan(
		&e.ID,
		&e.InvoiceID,
		&e.EmployeeID,
		&e.StoreID,
		&e.Amount,
		&e.SaleDate,
		&e.ReceivedAt,
	)
	return e, err
}

func (r *salesEventRepositoryImpl) CreateIfAbsent(ctx context.Context, event incentive.SalesEvent) (bool, error) {
	q := GetQuerier(ctx, r.db)

	// Webhook redelivery hits the conflict path and affects zero rows.
	query := `
		INSERT INTO sales_events (id, invoice_id, employee_id, store_id, amount, sale_date, received_at)
		VALUES (uuidv7(), $1, $2, $3, $4, $5, NOW())
		ON CONFLICT (invoice_id) DO NOTHING
	`

	tag, err := q.Exec(ctx, query,
		event.InvoiceID, event.EmployeeID, event.StoreID, event.Amount, event.SaleDate,
	)
	if err != nil {
		return false, fmt.Errorf("failed to record sales event: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *salesEventRepositoryImpl) GetByInvoiceID(ctx context.Context, invoiceID string) (incentive.SalesEvent, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + salesEventColumns + ` FROM sales_events WHERE invoice_id = $1`

	e, err := scanSalesEvent(q.QueryRow(ctx, query, invoiceID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return incentive.SalesEvent{}, incentive.ErrSalesEventNotFound
		}
		return incentive.SalesEvent{}, fmt.Errorf("failed to get sales event: %w", err)
	}
	return e, nil
}
