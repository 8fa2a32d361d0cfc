// Package inventory maintains on-hand product quantities.
package inventory

import (
	"context"
	"fmt"
	"sort"
)

// Store reads and decrements product quantities inside the caller's transaction.
type Store interface {
	// OnHand returns current quantities keyed by product id, locking the rows for the
	// remainder of the transaction. Unknown ids are absent from the result.
	OnHand(ctx context.Context, productIDs []int64) (map[int64]int64, error)
	Decrement(ctx context.Context, productID, qty int64) error
}

// Deduct checks every item against stock and only then decrements. Quantities of
// repeated products are summed before the check. Nothing is decremented when any
// product is short.
func Deduct(ctx context.Context, store Store, items []Item) error {
	required, err := aggregate(items)
	if err != nil {
		return err
	}
	ids := make([]int64, 0, len(required))
	for id := range required {
		ids = append(ids, id)
	}
	// Lock in a stable order so concurrent deliveries cannot deadlock on each other.
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	onHand, err := store.OnHand(ctx, ids)
	if err != nil {
		return fmt.Errorf("inventory: read stock: %w", err)
	}
	for _, id := range ids {
		qty, ok := onHand[id]
		if !ok {
			return fmt.Errorf("%w: %d", ErrProductNotFound, id)
		}
		if required[id] > qty {
			return ErrInsufficientStock
		}
	}
	for _, id := range ids {
		if err := store.Decrement(ctx, id, required[id]); err != nil {
			return fmt.Errorf("inventory: decrement product %d: %w", id, err)
		}
	}
	return nil
}

func aggregate(items []Item) (map[int64]int64, error) {
	required := make(map[int64]int64, len(items))
	for _, it := range items {
		if it.Quantity <= 0 {
			return nil, fmt.Errorf("%w: product %d", ErrInvalidQuantity, it.ProductID)
		}
		required[it.ProductID] += it.Quantity
	}
	return required, nil
}
