package tax

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/backoffice/internal/shared"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestComputeOrderScenario(t *testing.T) {
	totals, err := ComputeOrder([]LineInput{
		{Quantity: 2, UnitPrice: dec("500")},
		{Quantity: 1, UnitPrice: dec("1000")},
	}, dec("16"))
	require.NoError(t, err)
	require.Len(t, totals.LineTotals, 2)
	assert.Equal(t, "1000.00", totals.LineTotals[0].StringFixed(2))
	assert.Equal(t, "1000.00", totals.LineTotals[1].StringFixed(2))
	assert.Equal(t, "2000.00", totals.Subtotal.StringFixed(2))
	assert.Equal(t, "320.00", totals.Tax.StringFixed(2))
	assert.Equal(t, "2320.00", totals.Total.StringFixed(2))
}

func TestComputeOrderHasNoDriftAcrossManyLines(t *testing.T) {
	lines := make([]LineInput, 0, 300)
	for i := 0; i < 300; i++ {
		lines = append(lines, LineInput{Quantity: 3, UnitPrice: dec("0.33"), Discount: dec("0.01")})
	}
	totals, err := ComputeOrder(lines, dec("7.5"))
	require.NoError(t, err)

	sum := decimal.Zero
	for _, lt := range totals.LineTotals {
		sum = sum.Add(lt)
	}
	assert.True(t, sum.Equal(totals.Subtotal), "subtotal %s vs sum %s", totals.Subtotal, sum)
	assert.True(t, totals.Subtotal.Add(totals.Tax).Equal(totals.Total))
	assert.Equal(t, "294.00", totals.Subtotal.StringFixed(2))
	assert.Equal(t, "22.05", totals.Tax.StringFixed(2))
}

func TestLineTotalValidation(t *testing.T) {
	cases := map[string]LineInput{
		"zero quantity":       {Quantity: 0, UnitPrice: dec("10")},
		"negative quantity":   {Quantity: -1, UnitPrice: dec("10")},
		"negative price":      {Quantity: 1, UnitPrice: dec("-1")},
		"negative discount":   {Quantity: 1, UnitPrice: dec("10"), Discount: dec("-0.01")},
		"discount over gross": {Quantity: 2, UnitPrice: dec("10"), Discount: dec("20.01")},
		"sub-cent price":      {Quantity: 1, UnitPrice: dec("1.005")},
	}
	for name, line := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := LineTotal(line)
			require.ErrorIs(t, err, ErrInvalidLine)
			assert.ErrorIs(t, err, shared.ErrValidation)
		})
	}
}

func TestLineTotalAllowsDiscountEqualToGross(t *testing.T) {
	lt, err := LineTotal(LineInput{Quantity: 2, UnitPrice: dec("10"), Discount: dec("20")})
	require.NoError(t, err)
	assert.True(t, lt.IsZero())
}

func TestComputeRejectsRateOutOfRange(t *testing.T) {
	for _, rate := range []string{"-0.01", "100.01", "250"} {
		_, err := Compute(dec("10"), dec(rate), Exclusive)
		require.ErrorIs(t, err, ErrInvalidRate, rate)
		assert.Equal(t, shared.CodeValidation, shared.CodeOf(err))
	}
	_, err := Compute(dec("10"), dec("100"), Exclusive)
	assert.NoError(t, err)
}

func TestComputeExclusiveRoundsHalfUp(t *testing.T) {
	b, err := Compute(dec("0.25"), dec("2"), Exclusive)
	require.NoError(t, err)
	assert.Equal(t, "0.01", b.TaxAmount.StringFixed(2))
	assert.Equal(t, "0.26", b.TotalAmount.StringFixed(2))
}

func TestComputeInclusive(t *testing.T) {
	b, err := Compute(dec("116"), dec("16"), Inclusive)
	require.NoError(t, err)
	assert.Equal(t, "100.00", b.TaxableAmount.StringFixed(2))
	assert.Equal(t, "16.00", b.TaxAmount.StringFixed(2))
	assert.Equal(t, "116.00", b.TotalAmount.StringFixed(2))

	b, err = Compute(dec("100"), dec("10"), Inclusive)
	require.NoError(t, err)
	assert.Equal(t, "90.91", b.TaxableAmount.StringFixed(2))
	assert.Equal(t, "9.09", b.TaxAmount.StringFixed(2))
}

func TestComputeInclusiveRoundTripsExactly(t *testing.T) {
	amounts := []string{"0.01", "0.99", "1", "10.10", "99.99", "123.45", "1000", "33333.33"}
	rates := []string{"0", "5", "7.5", "12", "16", "19.6", "33.333", "100"}
	for _, a := range amounts {
		for _, r := range rates {
			b, err := Compute(dec(a), dec(r), Inclusive)
			require.NoError(t, err)
			assert.True(t, b.TaxableAmount.Add(b.TaxAmount).Equal(dec(a)), "amount %s rate %s", a, r)
			assert.True(t, b.TotalAmount.Equal(dec(a)))
		}
	}
}

func TestComputeRejectsUnknownMode(t *testing.T) {
	_, err := Compute(dec("1"), dec("1"), Mode("GROSS"))
	assert.ErrorIs(t, err, ErrInvalidMode)
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode(" inclusive ")
	require.NoError(t, err)
	assert.Equal(t, Inclusive, m)
	_, err = ParseMode("net")
	assert.ErrorIs(t, err, shared.ErrValidation)
}
