package inventory

import (
	"fmt"

	"github.com/odyssey-erp/backoffice/internal/shared"
)

// Item is one product quantity leaving stock.
type Item struct {
	ProductID int64
	Quantity  int64
}

var (
	// ErrInsufficientStock indicates requested quantity exceeds on-hand quantity.
	ErrInsufficientStock = fmt.Errorf("inventory: %w", shared.ErrInsufficientStock)
	// ErrProductNotFound indicates a referenced product does not exist.
	ErrProductNotFound = fmt.Errorf("inventory: product %w", shared.ErrNotFound)
	// ErrInvalidQuantity indicates a non-positive quantity.
	ErrInvalidQuantity = fmt.Errorf("inventory: quantity must be greater than zero: %w", shared.ErrValidation)
)
