package orders

import (
	"fmt"

	"github.com/odyssey-erp/backoffice/internal/shared"
)

var (
	// ErrOrderNotFound indicates the sales order does not exist.
	ErrOrderNotFound = fmt.Errorf("orders: sales order %w", shared.ErrNotFound)
	// ErrCustomerNotFound indicates the referenced customer does not exist.
	ErrCustomerNotFound = fmt.Errorf("orders: customer %w", shared.ErrNotFound)
	// ErrProductNotFound indicates a referenced product does not exist.
	ErrProductNotFound = fmt.Errorf("orders: product %w", shared.ErrNotFound)
	// ErrQuoteNotFound indicates the referenced quotation does not exist.
	ErrQuoteNotFound = fmt.Errorf("orders: quotation %w", shared.ErrNotFound)
	// ErrQuoteNotAccepted indicates the quotation is not in ACCEPTED status.
	ErrQuoteNotAccepted = fmt.Errorf("orders: quotation must be accepted: %w", shared.ErrValidation)
	// ErrQuoteCustomerMismatch indicates the quotation belongs to another customer.
	ErrQuoteCustomerMismatch = fmt.Errorf("orders: quotation belongs to a different customer: %w", shared.ErrValidation)
)
