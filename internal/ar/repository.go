package ar

import (
	"context"
	"fmt"

	"github.com/odyssey-erp/backoffice/internal/platform/db"
)

// Repository persists invoices in PostgreSQL.
type Repository struct {
	db db.DBTX
}

// NewRepository constructs Repository over a pool or transaction.
func NewRepository(handle db.DBTX) *Repository {
	return &Repository{db: handle}
}

// CreateInvoice inserts inv and fills in its id.
func (r *Repository) CreateInvoice(ctx context.Context, inv *Invoice) error {
	if err := inv.Validate(); err != nil {
		return err
	}
	const query = `
		INSERT INTO invoices (invoice_number, customer_id, sales_order_id, subtotal, tax_amount, total_amount,
			paid_amount, balance_amount, status, issue_date, due_date, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id`
	err := r.db.QueryRow(ctx, query,
		inv.InvoiceNumber, inv.CustomerID, inv.SalesOrderID, inv.Subtotal, inv.TaxAmount, inv.TotalAmount,
		inv.PaidAmount, inv.BalanceAmount, inv.Status, inv.IssueDate, inv.DueDate, inv.CreatedBy,
	).Scan(&inv.ID)
	if err != nil {
		return fmt.Errorf("ar: insert invoice: %w", err)
	}
	return nil
}
