package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/odyssey-erp/backoffice/internal/ar"
	"github.com/odyssey-erp/backoffice/internal/customers"
	"github.com/odyssey-erp/backoffice/internal/delivery"
	"github.com/odyssey-erp/backoffice/internal/inventory"
	"github.com/odyssey-erp/backoffice/internal/platform/db"
	"github.com/odyssey-erp/backoffice/internal/sequence"
)

const orderColumns = `id, order_number, status, approval_status, customer_id, quote_id, notes, tax_rate,
	subtotal, tax, total_amount, invoice_id, submitted_at, approved_at, approved_by, delivered_at,
	created_by, created_at, updated_at`

// Pool is the subset of *pgxpool.Pool the repository needs.
type Pool interface {
	db.DBTX
	db.Beginner
}

// PGRepository implements Repository on PostgreSQL. Transactions run at serializable
// isolation and are replayed on serialization failures and number collisions.
type PGRepository struct {
	pool        Pool
	maxAttempts int
}

// NewPGRepository constructs PGRepository.
func NewPGRepository(pool Pool, maxAttempts int) *PGRepository {
	return &PGRepository{pool: pool, maxAttempts: maxAttempts}
}

// WithTx implements Repository.
func (r *PGRepository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithSerializableTx(ctx, r.pool, r.maxAttempts, func(tx pgx.Tx) error {
		return fn(ctx, &txRepo{db: tx})
	})
}

// Get implements Repository.
func (r *PGRepository) Get(ctx context.Context, id int64) (*SalesOrder, error) {
	q := &txRepo{db: r.pool}
	order, err := q.load(ctx, `SELECT `+orderColumns+` FROM sales_orders WHERE id = $1`, id)
	if err != nil {
		return nil, err
	}
	customer, ok, err := q.Customer(ctx, order.CustomerID)
	if err != nil {
		return nil, err
	}
	if ok {
		order.Customer = customer
	}
	return order, nil
}

type txRepo struct {
	db db.DBTX
}

func (t *txRepo) GetForUpdate(ctx context.Context, id int64) (*SalesOrder, error) {
	return t.load(ctx, `SELECT `+orderColumns+` FROM sales_orders WHERE id = $1 FOR UPDATE`, id)
}

func (t *txRepo) load(ctx context.Context, query string, id int64) (*SalesOrder, error) {
	var o SalesOrder
	err := t.db.QueryRow(ctx, query, id).Scan(
		&o.ID, &o.OrderNumber, &o.Status, &o.ApprovalStatus, &o.CustomerID, &o.QuoteID, &o.Notes, &o.TaxRate,
		&o.Subtotal, &o.Tax, &o.TotalAmount, &o.InvoiceID, &o.SubmittedAt, &o.ApprovedAt, &o.ApprovedBy,
		&o.DeliveredAt, &o.CreatedBy, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %d", ErrOrderNotFound, id)
		}
		return nil, err
	}
	rows, err := t.db.Query(ctx, `
		SELECT id, product_id, quantity, unit_price, discount, line_total
		FROM sales_order_items WHERE sales_order_id = $1 ORDER BY line_no`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var it SalesOrderItem
		if err := rows.Scan(&it.ID, &it.ProductID, &it.Quantity, &it.UnitPrice, &it.Discount, &it.LineTotal); err != nil {
			return nil, err
		}
		o.Items = append(o.Items, it)
	}
	return &o, rows.Err()
}

func (t *txRepo) Insert(ctx context.Context, o *SalesOrder) error {
	const query = `
		INSERT INTO sales_orders (order_number, status, approval_status, customer_id, quote_id, notes, tax_rate,
			subtotal, tax, total_amount, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id`
	err := t.db.QueryRow(ctx, query,
		o.OrderNumber, o.Status, o.ApprovalStatus, o.CustomerID, o.QuoteID, o.Notes, o.TaxRate,
		o.Subtotal, o.Tax, o.TotalAmount, o.CreatedBy, o.CreatedAt, o.UpdatedAt,
	).Scan(&o.ID)
	if err != nil {
		return err
	}
	for i := range o.Items {
		it := &o.Items[i]
		err := t.db.QueryRow(ctx, `
			INSERT INTO sales_order_items (sales_order_id, line_no, product_id, quantity, unit_price, discount, line_total)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING id`,
			o.ID, i+1, it.ProductID, it.Quantity, it.UnitPrice, it.Discount, it.LineTotal,
		).Scan(&it.ID)
		if err != nil {
			return err
		}
	}
	return nil
}

// UpdateTransition writes only the columns a transition may change.
func (t *txRepo) UpdateTransition(ctx context.Context, o *SalesOrder) error {
	tag, err := t.db.Exec(ctx, `
		UPDATE sales_orders
		SET status = $2, approval_status = $3, invoice_id = $4, submitted_at = $5, approved_at = $6,
			approved_by = $7, delivered_at = $8, updated_at = $9
		WHERE id = $1`,
		o.ID, o.Status, o.ApprovalStatus, o.InvoiceID, o.SubmittedAt, o.ApprovedAt, o.ApprovedBy, o.DeliveredAt, o.UpdatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %d", ErrOrderNotFound, o.ID)
	}
	return nil
}

func (t *txRepo) MissingProducts(ctx context.Context, ids []int64) ([]int64, error) {
	rows, err := t.db.Query(ctx, `
		SELECT want.id FROM unnest($1::bigint[]) AS want(id)
		LEFT JOIN products p ON p.id = want.id
		WHERE p.id IS NULL`, ids)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[int64])
}

func (t *txRepo) Quote(ctx context.Context, id int64) (QuoteRef, bool, error) {
	var q QuoteRef
	err := t.db.QueryRow(ctx, `SELECT id, customer_id, status FROM quotations WHERE id = $1`, id).
		Scan(&q.ID, &q.CustomerID, &q.Status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return QuoteRef{}, false, nil
		}
		return QuoteRef{}, false, err
	}
	return q, true, nil
}

func (t *txRepo) Customer(ctx context.Context, id int64) (*CustomerSummary, bool, error) {
	c, ok, err := customers.NewRepository(t.db).Get(ctx, id)
	if err != nil || !ok {
		return nil, ok, err
	}
	return &CustomerSummary{ID: c.ID, Code: c.Code, Name: c.Name}, true, nil
}

func (t *txRepo) Sequences() sequence.Store {
	return sequence.NewPGStore(t.db)
}

func (t *txRepo) Stock() inventory.Store {
	return inventory.NewPGStore(t.db)
}

func (t *txRepo) Balances() customers.Store {
	return customers.NewRepository(t.db)
}

func (t *txRepo) CreateDelivery(ctx context.Context, d *delivery.SalesDelivery) error {
	return delivery.NewRepository(t.db).Create(ctx, d)
}

func (t *txRepo) CreateInvoice(ctx context.Context, inv *ar.Invoice) error {
	return ar.NewRepository(t.db).CreateInvoice(ctx, inv)
}
