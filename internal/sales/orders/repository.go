package orders

import (
	"context"

	"github.com/odyssey-erp/backoffice/internal/ar"
	"github.com/odyssey-erp/backoffice/internal/customers"
	"github.com/odyssey-erp/backoffice/internal/delivery"
	"github.com/odyssey-erp/backoffice/internal/inventory"
	"github.com/odyssey-erp/backoffice/internal/sequence"
)

// Repository opens transactions and serves reads outside them.
type Repository interface {
	// WithTx runs fn in one atomic transaction. fn may be invoked more than once when the
	// store detects a conflicting concurrent transaction, so it must not leak state between calls.
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	Get(ctx context.Context, id int64) (*SalesOrder, error)
}

// TxRepository exposes every store a transition touches, bound to one transaction.
type TxRepository interface {
	GetForUpdate(ctx context.Context, id int64) (*SalesOrder, error)
	Insert(ctx context.Context, order *SalesOrder) error
	UpdateTransition(ctx context.Context, order *SalesOrder) error

	MissingProducts(ctx context.Context, ids []int64) ([]int64, error)
	Quote(ctx context.Context, id int64) (QuoteRef, bool, error)
	Customer(ctx context.Context, id int64) (*CustomerSummary, bool, error)

	Sequences() sequence.Store
	Stock() inventory.Store
	Balances() customers.Store
	CreateDelivery(ctx context.Context, d *delivery.SalesDelivery) error
	CreateInvoice(ctx context.Context, inv *ar.Invoice) error
}
