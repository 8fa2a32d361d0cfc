// Package sequence allocates human-readable document numbers such as SO-000123.
//
// The next number is max(last suffix, row count) + 1 read inside the caller's transaction.
// Two transactions reading concurrently can compute the same value, so callers run at
// serializable isolation and every number column carries a unique constraint; the
// transaction helper in platform/db replays the transaction when either trips.
package sequence

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
)

// Family identifies a document numbering family.
type Family string

const (
	SalesOrder      Family = "SO"
	Delivery        Family = "DEL"
	Invoice         Family = "INV"
	SupplierPayment Family = "PAY"
)

const suffixWidth = 6

var trailingDigits = regexp.MustCompile(`(\d+)$`)

// Prefix returns the textual prefix for the family.
func (f Family) Prefix() string {
	return string(f)
}

// Store reads the existing numbers of a family within the active transaction.
type Store interface {
	// LastNumber returns the number of the most recently created record, if any.
	LastNumber(ctx context.Context, family Family) (string, bool, error)
	// Count returns how many records exist in the family.
	Count(ctx context.Context, family Family) (int64, error)
}

// Next returns the next document number for family.
func Next(ctx context.Context, store Store, family Family) (string, error) {
	last, ok, err := store.LastNumber(ctx, family)
	if err != nil {
		return "", fmt.Errorf("sequence: last %s number: %w", family, err)
	}
	var lastSuffix int64
	if ok {
		lastSuffix = Suffix(last)
	}
	count, err := store.Count(ctx, family)
	if err != nil {
		return "", fmt.Errorf("sequence: count %s: %w", family, err)
	}
	return Format(family, max(lastSuffix, count)+1), nil
}

// Format renders n as a zero-padded number in family.
func Format(family Family, n int64) string {
	return fmt.Sprintf("%s-%0*d", family.Prefix(), suffixWidth, n)
}

// Suffix extracts the trailing integer of number. Numbers without trailing digits yield 0.
func Suffix(number string) int64 {
	m := trailingDigits.FindStringSubmatch(number)
	if m == nil {
		return 0
	}
	n, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return 0
	}
	return n
}
