package money_test

import (
	"testing"

	"github.com/novawallet/novawallet/pkg/money"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFromMinor(t *testing.T) {
	t.Parallel()

	m, err := money.NewFromMinor(1050, "BRL")
	require.NoError(t, err)
	assert.Equal(t, int64(1050), m.Amount())
	assert.Equal(t, "BRL", m.Currency())
}

func TestNewFromMinorDefaultsCurrency(t *testing.T) {
	t.Parallel()

	m, err := money.NewFromMinor(100, "")
	require.NoError(t, err)
	assert.Equal(t, money.DefaultCurrency, m.Currency())
}

func TestNewFromMinorRejectsBadCode(t *testing.T) {
	t.Parallel()

	for _, code := range []string{"brl", "REAIS", "B", "12X"} {
		_, err := money.NewFromMinor(100, code)
		assert.ErrorIs(t, err, money.ErrInvalidCurrencyCode, "code %q", code)
	}
}

func TestAddSubRoundTrip(t *testing.T) {
	t.Parallel()

	a, err := money.NewFromMinor(1000, "BRL")
	require.NoError(t, err)
	b, err := money.NewFromMinor(400, "BRL")
	require.NoError(t, err)

	sum, err := a.Add(b)
	require.NoError(t, err)
	back, err := sum.Sub(b)
	require.NoError(t, err)
	assert.Equal(t, a.Amount(), back.Amount(), "debit then credit of the same amount must round-trip exactly")
}

func TestCurrencyMismatch(t *testing.T) {
	t.Parallel()

	a, _ := money.NewFromMinor(100, "BRL")
	b, _ := money.NewFromMinor(100, "USD")
	_, err := a.Add(b)
	assert.ErrorIs(t, err, money.ErrCurrencyMismatch)
}

func TestString(t *testing.T) {
	t.Parallel()

	m, _ := money.NewFromMinor(123456, "BRL")
	assert.Equal(t, "1234.56 BRL", m.String())

	neg, _ := money.NewFromMinor(-50, "BRL")
	assert.Equal(t, "-0.50 BRL", neg.String())
}
