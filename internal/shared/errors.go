package shared

import "errors"

var (
	// ErrValidation indicates malformed or out-of-range input.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrInvalidState indicates an action not permitted from the current status.
	ErrInvalidState = errors.New("invalid state")
	// ErrInsufficientStock indicates a delivery line exceeds the quantity on hand.
	ErrInsufficientStock = errors.New("insufficient stock")
)

// Code is the stable error code exposed to API clients.
type Code string

const (
	CodeValidation        Code = "VALIDATION_ERROR"
	CodeNotFound          Code = "NOT_FOUND"
	CodeInvalidState      Code = "INVALID_STATE"
	CodeInsufficientStock Code = "INSUFFICIENT_STOCK"
	CodeInternal          Code = "INTERNAL_ERROR"
)

// CodeOf classifies err against the taxonomy. Anything unrecognised is internal.
func CodeOf(err error) Code {
	switch {
	case errors.Is(err, ErrValidation):
		return CodeValidation
	case errors.Is(err, ErrNotFound):
		return CodeNotFound
	case errors.Is(err, ErrInvalidState):
		return CodeInvalidState
	case errors.Is(err, ErrInsufficientStock):
		return CodeInsufficientStock
	default:
		return CodeInternal
	}
}
