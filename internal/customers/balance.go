// Package customers adjusts customer receivable balances.
package customers

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
)

// Store adds a delta to a customer's balances inside the caller's transaction.
type Store interface {
	// AddToBalance increments current_balance and total_outstanding by delta and
	// reports whether the customer row existed.
	AddToBalance(ctx context.Context, customerID int64, delta decimal.Decimal) (bool, error)
}

// Outcome reports what an update did.
type Outcome int

const (
	// Applied means both balances were incremented.
	Applied Outcome = iota + 1
	// Skipped means the customer was missing and nothing changed.
	Skipped
)

func (o Outcome) String() string {
	switch o {
	case Applied:
		return "applied"
	case Skipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// ApplyInvoice adds amount to the customer's balances. A missing customer is not an error.
func ApplyInvoice(ctx context.Context, store Store, customerID int64, amount decimal.Decimal) (Outcome, error) {
	found, err := store.AddToBalance(ctx, customerID, amount)
	if err != nil {
		return 0, fmt.Errorf("customers: add to balance of %d: %w", customerID, err)
	}
	if !found {
		return Skipped, nil
	}
	return Applied, nil
}
