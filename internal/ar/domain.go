// Package ar holds customer invoices raised from delivered sales orders.
package ar

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceStatus enumerates invoice statuses.
type InvoiceStatus string

// StatusIssued is the only status this service writes; payments are recorded elsewhere.
const StatusIssued InvoiceStatus = "ISSUED"

// Invoice model. Amounts are copied from the sales order and never recomputed.
type Invoice struct {
	ID            int64           `json:"id"`
	InvoiceNumber string          `json:"invoiceNumber"`
	CustomerID    int64           `json:"customerId"`
	SalesOrderID  int64           `json:"salesOrderId"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	TaxAmount     decimal.Decimal `json:"taxAmount"`
	TotalAmount   decimal.Decimal `json:"totalAmount"`
	PaidAmount    decimal.Decimal `json:"paidAmount"`
	BalanceAmount decimal.Decimal `json:"balanceAmount"`
	Status        InvoiceStatus   `json:"status"`
	IssueDate     time.Time       `json:"issueDate"`
	DueDate       time.Time       `json:"dueDate"`
	CreatedBy     int64           `json:"createdBy"`
}

// IssueInput carries the order figures an invoice is raised from.
type IssueInput struct {
	Number       string
	CustomerID   int64
	SalesOrderID int64
	Subtotal     decimal.Decimal
	Tax          decimal.Decimal
	Total        decimal.Decimal
	IssueDate    time.Time
	ActorID      int64
}

// ErrBalanceMismatch indicates balance != total - paid.
var ErrBalanceMismatch = errors.New("ar: balance must equal total minus paid")

// NewInvoice builds an unpaid invoice. The due date equals the issue date.
func NewInvoice(in IssueInput) Invoice {
	day := in.IssueDate.UTC().Truncate(24 * time.Hour)
	return Invoice{
		InvoiceNumber: in.Number,
		CustomerID:    in.CustomerID,
		SalesOrderID:  in.SalesOrderID,
		Subtotal:      in.Subtotal,
		TaxAmount:     in.Tax,
		TotalAmount:   in.Total,
		PaidAmount:    decimal.Zero,
		BalanceAmount: in.Total,
		Status:        StatusIssued,
		IssueDate:     day,
		DueDate:       day,
		CreatedBy:     in.ActorID,
	}
}

// Validate checks the balance invariant.
func (i Invoice) Validate() error {
	if !i.BalanceAmount.Equal(i.TotalAmount.Sub(i.PaidAmount)) {
		return ErrBalanceMismatch
	}
	return nil
}
