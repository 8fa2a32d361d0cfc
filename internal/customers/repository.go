package customers

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/backoffice/internal/platform/db"
)

// Customer is the subset of the customer record this service reads.
type Customer struct {
	ID               int64           `json:"id"`
	Code             string          `json:"code"`
	Name             string          `json:"name"`
	CurrentBalance   decimal.Decimal `json:"currentBalance"`
	TotalOutstanding decimal.Decimal `json:"totalOutstanding"`
}

// Repository reads and updates customers in PostgreSQL.
type Repository struct {
	db db.DBTX
}

// NewRepository constructs Repository over a pool or transaction.
func NewRepository(handle db.DBTX) *Repository {
	return &Repository{db: handle}
}

// AddToBalance implements Store.
func (r *Repository) AddToBalance(ctx context.Context, customerID int64, delta decimal.Decimal) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE customers
		SET current_balance = current_balance + $2,
			total_outstanding = total_outstanding + $2,
			updated_at = NOW()
		WHERE id = $1`, customerID, delta)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// Get loads a customer, reporting whether it exists.
func (r *Repository) Get(ctx context.Context, id int64) (*Customer, bool, error) {
	var c Customer
	err := r.db.QueryRow(ctx,
		`SELECT id, code, name, current_balance, total_outstanding FROM customers WHERE id = $1`, id,
	).Scan(&c.ID, &c.Code, &c.Name, &c.CurrentBalance, &c.TotalOutstanding)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return &c, true, nil
}
