// Package delivery persists the delivery records produced when a sales order ships.
package delivery

import (
	"context"
	"fmt"

	"github.com/odyssey-erp/backoffice/internal/platform/db"
)

// Repository provides PostgreSQL backed persistence for sales deliveries.
type Repository struct {
	db db.DBTX
}

// NewRepository constructs a repository over a pool or transaction.
func NewRepository(handle db.DBTX) *Repository {
	return &Repository{db: handle}
}

// Create inserts the delivery header and its lines, filling in the generated id.
func (r *Repository) Create(ctx context.Context, d *SalesDelivery) error {
	const query = `
		INSERT INTO sales_deliveries (delivery_number, sales_order_id, status, dispatched_at, delivered_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`
	err := r.db.QueryRow(ctx, query,
		d.DeliveryNumber, d.SalesOrderID, d.Status, d.DispatchedAt, d.DeliveredAt, d.CreatedBy,
	).Scan(&d.ID)
	if err != nil {
		if db.IsUniqueViolation(err) && !isNumberConflict(err) {
			return ErrAlreadyDelivered
		}
		return fmt.Errorf("delivery: insert: %w", err)
	}
	for _, line := range d.Items {
		_, err := r.db.Exec(ctx,
			`INSERT INTO sales_delivery_items (delivery_id, product_id, quantity) VALUES ($1, $2, $3)`,
			d.ID, line.ProductID, line.Quantity)
		if err != nil {
			return fmt.Errorf("delivery: insert item: %w", err)
		}
	}
	return nil
}

// isNumberConflict distinguishes a delivery-number collision, which the transaction
// helper retries, from a second delivery for the same order.
func isNumberConflict(err error) bool {
	return db.ConstraintName(err) == "sales_deliveries_delivery_number_key"
}
