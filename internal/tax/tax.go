// Package tax computes line totals and tax breakdowns using exact decimal arithmetic.
// Amounts are rounded half-up to two places only when a result leaves this package.
package tax

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/backoffice/internal/shared"
)

// Mode selects whether an amount already includes tax.
type Mode string

const (
	Exclusive Mode = "EXCLUSIVE"
	Inclusive Mode = "INCLUSIVE"
)

var (
	// ErrInvalidRate is returned when a tax rate falls outside [0, 100].
	ErrInvalidRate = fmt.Errorf("tax: rate must be within [0, 100]: %w", shared.ErrValidation)
	// ErrInvalidMode is returned for an unknown tax mode.
	ErrInvalidMode = fmt.Errorf("tax: unknown mode: %w", shared.ErrValidation)
	// ErrInvalidAmount is returned for negative amounts or amounts finer than a cent.
	ErrInvalidAmount = fmt.Errorf("tax: invalid amount: %w", shared.ErrValidation)
	// ErrInvalidLine is returned for a malformed order line.
	ErrInvalidLine = fmt.Errorf("tax: invalid line: %w", shared.ErrValidation)
)

const moneyPlaces = 2

var hundred = decimal.NewFromInt(100)

// ParseMode converts raw input into a Mode.
func ParseMode(raw string) (Mode, error) {
	switch Mode(strings.ToUpper(strings.TrimSpace(raw))) {
	case Exclusive:
		return Exclusive, nil
	case Inclusive:
		return Inclusive, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidMode, raw)
	}
}

// Breakdown is the rounded result of applying a tax rate to an amount.
type Breakdown struct {
	TaxableAmount decimal.Decimal
	TaxAmount     decimal.Decimal
	TotalAmount   decimal.Decimal
}

// LineInput describes one priced order line.
type LineInput struct {
	Quantity  int64
	UnitPrice decimal.Decimal
	Discount  decimal.Decimal
}

// OrderTotals carries per-line totals plus the order-level breakdown.
type OrderTotals struct {
	LineTotals []decimal.Decimal
	Subtotal   decimal.Decimal
	Tax        decimal.Decimal
	Total      decimal.Decimal
}

// ValidateRate ensures rate is a percentage within [0, 100].
func ValidateRate(rate decimal.Decimal) error {
	if rate.IsNegative() || rate.GreaterThan(hundred) {
		return fmt.Errorf("%w: got %s", ErrInvalidRate, rate)
	}
	return nil
}

// LineTotal returns unitPrice × quantity − discount.
func LineTotal(line LineInput) (decimal.Decimal, error) {
	if line.Quantity <= 0 {
		return decimal.Zero, fmt.Errorf("%w: quantity must be greater than zero", ErrInvalidLine)
	}
	if err := checkMoney(line.UnitPrice); err != nil {
		return decimal.Zero, fmt.Errorf("%w: unit price %s", ErrInvalidLine, line.UnitPrice)
	}
	if err := checkMoney(line.Discount); err != nil {
		return decimal.Zero, fmt.Errorf("%w: discount %s", ErrInvalidLine, line.Discount)
	}
	gross := line.UnitPrice.Mul(decimal.NewFromInt(line.Quantity))
	if line.Discount.GreaterThan(gross) {
		return decimal.Zero, fmt.Errorf("%w: discount %s exceeds line subtotal %s", ErrInvalidLine, line.Discount, gross)
	}
	return gross.Sub(line.Discount), nil
}

// Compute applies rate to amount according to mode.
func Compute(amount, rate decimal.Decimal, mode Mode) (Breakdown, error) {
	if err := ValidateRate(rate); err != nil {
		return Breakdown{}, err
	}
	if err := checkMoney(amount); err != nil {
		return Breakdown{}, err
	}
	switch mode {
	case Exclusive:
		tax := round(amount.Mul(rate).Div(hundred))
		return Breakdown{
			TaxableAmount: round(amount),
			TaxAmount:     tax,
			TotalAmount:   round(amount).Add(tax),
		}, nil
	case Inclusive:
		// Divide with extra precision so the single rounding below is the only one applied.
		taxable := round(amount.Mul(hundred).DivRound(hundred.Add(rate), 16))
		return Breakdown{
			TaxableAmount: taxable,
			TaxAmount:     round(amount).Sub(taxable),
			TotalAmount:   round(amount),
		}, nil
	default:
		return Breakdown{}, fmt.Errorf("%w: %q", ErrInvalidMode, mode)
	}
}

// ComputeOrder totals lines and applies rate exclusively to their sum.
func ComputeOrder(lines []LineInput, rate decimal.Decimal) (OrderTotals, error) {
	if len(lines) == 0 {
		return OrderTotals{}, fmt.Errorf("%w: order requires at least one line", ErrInvalidLine)
	}
	if err := ValidateRate(rate); err != nil {
		return OrderTotals{}, err
	}
	totals := OrderTotals{LineTotals: make([]decimal.Decimal, 0, len(lines))}
	subtotal := decimal.Zero
	for i, line := range lines {
		lt, err := LineTotal(line)
		if err != nil {
			return OrderTotals{}, fmt.Errorf("line %d: %w", i+1, err)
		}
		subtotal = subtotal.Add(lt)
		totals.LineTotals = append(totals.LineTotals, round(lt))
	}
	breakdown, err := Compute(subtotal, rate, Exclusive)
	if err != nil {
		return OrderTotals{}, err
	}
	totals.Subtotal = breakdown.TaxableAmount
	totals.Tax = breakdown.TaxAmount
	totals.Total = breakdown.TotalAmount
	return totals, nil
}

// checkMoney rejects negative values and values with sub-cent precision.
func checkMoney(d decimal.Decimal) error {
	if d.IsNegative() {
		return fmt.Errorf("%w: %s is negative", ErrInvalidAmount, d)
	}
	if !d.Equal(d.Truncate(moneyPlaces)) {
		return fmt.Errorf("%w: %s has more than %d decimal places", ErrInvalidAmount, d, moneyPlaces)
	}
	return nil
}

// round applies half-up rounding for the non-negative amounts this package handles.
func round(d decimal.Decimal) decimal.Decimal {
	return d.Round(moneyPlaces)
}
