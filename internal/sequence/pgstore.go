package sequence

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/odyssey-erp/backoffice/internal/platform/db"
)

type column struct {
	table  string
	number string
}

var columns = map[Family]column{
	SalesOrder:      {table: "sales_orders", number: "order_number"},
	Delivery:        {table: "sales_deliveries", number: "delivery_number"},
	Invoice:         {table: "invoices", number: "invoice_number"},
	SupplierPayment: {table: "supplier_payments", number: "payment_number"},
}

// PGStore reads family numbers through a pgx handle, normally the active transaction.
type PGStore struct {
	db db.DBTX
}

// NewPGStore constructs a PGStore.
func NewPGStore(handle db.DBTX) *PGStore {
	return &PGStore{db: handle}
}

// LastNumber implements Store.
func (s *PGStore) LastNumber(ctx context.Context, family Family) (string, bool, error) {
	col, err := lookup(family)
	if err != nil {
		return "", false, err
	}
	query := fmt.Sprintf(`SELECT %s FROM %s ORDER BY created_at DESC, id DESC LIMIT 1`, col.number, col.table)
	var number string
	if err := s.db.QueryRow(ctx, query).Scan(&number); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, nil
		}
		return "", false, err
	}
	return number, true, nil
}

// Count implements Store.
func (s *PGStore) Count(ctx context.Context, family Family) (int64, error) {
	col, err := lookup(family)
	if err != nil {
		return 0, err
	}
	var n int64
	if err := s.db.QueryRow(ctx, fmt.Sprintf(`SELECT COUNT(*) FROM %s`, col.table)).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func lookup(family Family) (column, error) {
	col, ok := columns[family]
	if !ok {
		return column{}, fmt.Errorf("sequence: unknown family %q", family)
	}
	return col, nil
}
