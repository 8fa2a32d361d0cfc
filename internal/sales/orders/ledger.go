package orders

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// LedgerPosting is the payload handed to the financial ledger after an invoice commits.
type LedgerPosting struct {
	InvoiceID     int64           `json:"invoiceId"`
	InvoiceNumber string          `json:"invoiceNumber"`
	SalesOrderID  int64           `json:"salesOrderId"`
	CustomerID    int64           `json:"customerId"`
	Amount        decimal.Decimal `json:"amount"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	Tax           decimal.Decimal `json:"tax"`
	ActorID       int64           `json:"actorId"`
	Description   string          `json:"description"`
	IssueDate     time.Time       `json:"issueDate"`
}

// LedgerPoster records invoices in the general ledger. Calls happen after commit and
// are never retried by the order service.
type LedgerPoster interface {
	PostInvoice(ctx context.Context, posting LedgerPosting) error
}

// OrderCache caches order reads.
type OrderCache interface {
	Fetch(ctx context.Context, id int64, load func(context.Context) (*SalesOrder, error)) (*SalesOrder, error)
	// Refresh replaces the cached snapshot after a committed change.
	Refresh(ctx context.Context, order *SalesOrder)
}

// Observer receives transition telemetry.
type Observer interface {
	ObserveTransition(action, outcome string)
	LedgerPostFailed()
	CustomerBalanceSkipped()
}
