package customers

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryStore struct {
	balances    map[int64]decimal.Decimal
	outstanding map[int64]decimal.Decimal
	err         error
}

func (m *memoryStore) AddToBalance(_ context.Context, id int64, delta decimal.Decimal) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	if _, ok := m.balances[id]; !ok {
		return false, nil
	}
	m.balances[id] = m.balances[id].Add(delta)
	m.outstanding[id] = m.outstanding[id].Add(delta)
	return true, nil
}

func TestApplyInvoiceIncrementsBothBalances(t *testing.T) {
	store := &memoryStore{
		balances:    map[int64]decimal.Decimal{1: decimal.NewFromInt(100)},
		outstanding: map[int64]decimal.Decimal{1: decimal.NewFromInt(50)},
	}
	outcome, err := ApplyInvoice(context.Background(), store, 1, decimal.RequireFromString("2320.00"))
	require.NoError(t, err)
	assert.Equal(t, Applied, outcome)
	assert.Equal(t, "2420.00", store.balances[1].StringFixed(2))
	assert.Equal(t, "2370.00", store.outstanding[1].StringFixed(2))
}

func TestApplyInvoiceSkipsMissingCustomer(t *testing.T) {
	store := &memoryStore{balances: map[int64]decimal.Decimal{}, outstanding: map[int64]decimal.Decimal{}}
	outcome, err := ApplyInvoice(context.Background(), store, 42, decimal.NewFromInt(10))
	require.NoError(t, err)
	assert.Equal(t, Skipped, outcome)
	assert.Equal(t, "skipped", outcome.String())
}

func TestApplyInvoicePropagatesStoreError(t *testing.T) {
	boom := errors.New("db down")
	_, err := ApplyInvoice(context.Background(), &memoryStore{err: boom}, 1, decimal.NewFromInt(1))
	assert.ErrorIs(t, err, boom)
}
