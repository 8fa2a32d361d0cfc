// Package httpx provides HTTP response utilities.
package httpx

import (
	"errors"
	"net/http"

	"github.com/odyssey-erp/backoffice/internal/shared"
)

// ErrForbidden is returned when the actor lacks a permission.
var ErrForbidden = errors.New("forbidden")

// StatusFor maps a taxonomy code to its HTTP status.
func StatusFor(code shared.Code) int {
	switch code {
	case shared.CodeValidation, shared.CodeInvalidState, shared.CodeInsufficientStock:
		return http.StatusBadRequest
	case shared.CodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// RespondError maps domain errors to HTTP responses using RFC7807.
func RespondError(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrForbidden) {
		Problem(w, http.StatusForbidden, "Forbidden", "", "FORBIDDEN")
		return
	}
	code := shared.CodeOf(err)
	status := StatusFor(code)
	switch code {
	case shared.CodeValidation:
		Problem(w, status, "Validation Failed", err.Error(), string(code))
	case shared.CodeNotFound:
		Problem(w, status, "Not Found", err.Error(), string(code))
	case shared.CodeInvalidState:
		Problem(w, status, "Invalid State", err.Error(), string(code))
	case shared.CodeInsufficientStock:
		Problem(w, status, "Insufficient Stock", err.Error(), string(code))
	default:
		Problem(w, status, "Internal Error", "", string(code))
	}
}
