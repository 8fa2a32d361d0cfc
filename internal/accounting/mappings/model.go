// Package mappings resolves integration keys such as "ar.invoice.revenue" to ledger accounts.
package mappings

import "errors"

// ErrMappingNotFound indicates account mapping missing.
var ErrMappingNotFound = errors.New("accounting: account mapping not found")
