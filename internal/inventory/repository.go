package inventory

import (
	"context"

	"github.com/odyssey-erp/backoffice/internal/platform/db"
)

// PGStore implements Store on the products table.
type PGStore struct {
	db db.DBTX
}

// NewPGStore constructs PGStore over a transaction handle.
func NewPGStore(handle db.DBTX) *PGStore {
	return &PGStore{db: handle}
}

// OnHand implements Store.
func (s *PGStore) OnHand(ctx context.Context, productIDs []int64) (map[int64]int64, error) {
	rows, err := s.db.Query(ctx, `SELECT id, quantity FROM products WHERE id = ANY($1) ORDER BY id FOR UPDATE`, productIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	result := make(map[int64]int64, len(productIDs))
	for rows.Next() {
		var id, qty int64
		if err := rows.Scan(&id, &qty); err != nil {
			return nil, err
		}
		result[id] = qty
	}
	return result, rows.Err()
}

// Decrement implements Store. The quantity guard keeps the row non-negative even if a
// caller skipped the OnHand check.
func (s *PGStore) Decrement(ctx context.Context, productID, qty int64) error {
	tag, err := s.db.Exec(ctx, `UPDATE products SET quantity = quantity - $2, updated_at = NOW() WHERE id = $1 AND quantity >= $2`, productID, qty)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrInsufficientStock
	}
	return nil
}
