package types

import (
	"testing"

	ierr "github.com/flexprice/console/internal/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromMajor(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		currency string
		expected int64
	}{
		{"USD_Whole", "100.00", "usd", 10000},
		{"USD_Cents", "12.34", "USD", 1234},
		{"USD_HalfEven_Down", "10.125", "usd", 1012},
		{"USD_HalfEven_Up", "10.135", "usd", 1014},
		{"JPY_NoDecimals", "1000", "jpy", 1000},
		{"JPY_HalfEven", "1000.5", "jpy", 1000},
		{"KWD_ThreeDecimals", "1.234", "kwd", 1234},
		{"Unknown_DefaultsToTwo", "1.5", "xyz", 150},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := FromMajor(decimal.RequireFromString(tt.value), tt.currency)
			assert.Equal(t, tt.expected, m.Amount)
		})
	}
}

func TestMoney_Major(t *testing.T) {
	assert.True(t, NewMoney(1234, "usd").Major().Equal(decimal.RequireFromString("12.34")))
	assert.True(t, NewMoney(1234, "jpy").Major().Equal(decimal.NewFromInt(1234)))
	assert.Equal(t, "12.34 USD", NewMoney(1234, "usd").String())
}

func TestMoney_AddSubtract(t *testing.T) {
	a := NewMoney(1000, "usd")
	b := NewMoney(250, "usd")

	sum, err := a.Add(b)
	require.NoError(t, err)
	assert.Equal(t, int64(1250), sum.Amount)

	diff, err := a.Subtract(b)
	require.NoError(t, err)
	assert.Equal(t, int64(750), diff.Amount)

	t.Run("subtract clamps at zero", func(t *testing.T) {
		diff, err := b.Subtract(a)
		require.NoError(t, err)
		assert.Equal(t, int64(0), diff.Amount)
		assert.Equal(t, "usd", diff.Currency)
	})

	t.Run("currency mismatch", func(t *testing.T) {
		_, err := a.Add(NewMoney(1, "eur"))
		assert.True(t, ierr.Is(err, ierr.ErrCurrencyMismatch))

		_, err = a.Subtract(NewMoney(1, "eur"))
		assert.True(t, ierr.Is(err, ierr.ErrCurrencyMismatch))

		_, err = a.Cmp(NewMoney(1, "eur"))
		assert.True(t, ierr.Is(err, ierr.ErrCurrencyMismatch))
	})
}

func TestMoney_PercentOf(t *testing.T) {
	tests := []struct {
		name     string
		amount   int64
		rate     string
		expected int64
	}{
		{"Twenty_Percent", 10000, "20", 2000},
		{"Fractional_Rate", 1000, "15.5", 155},
		{"HalfEven_Down", 125, "10", 12},
		{"HalfEven_Up", 135, "10", 14},
		{"SubMinor_RoundsToZero", 100, "0.1", 0},
		{"Zero_Rate", 10000, "0", 0},
		{"Full_Rate", 10000, "100", 10000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewMoney(tt.amount, "usd").PercentOf(decimal.RequireFromString(tt.rate))
			assert.Equal(t, tt.expected, got.Amount)
		})
	}
}

func TestMoney_Multiply(t *testing.T) {
	assert.Equal(t, int64(120000), NewMoney(10000, "usd").Multiply(decimal.NewFromInt(12)).Amount)
	assert.Equal(t, int64(250), NewMoney(100, "usd").Multiply(decimal.RequireFromString("2.5")).Amount)
	assert.Equal(t, int64(2), NewMoney(5, "usd").Multiply(decimal.RequireFromString("0.5")).Amount)
}

func TestSumMoney(t *testing.T) {
	total, err := SumMoney("usd", NewMoney(1, "usd"), NewMoney(2, "USD"))
	require.NoError(t, err)
	assert.Equal(t, int64(3), total.Amount)

	_, err = SumMoney("usd", NewMoney(1, "eur"))
	assert.True(t, ierr.Is(err, ierr.ErrCurrencyMismatch))
}

func TestValidateCurrencyCode(t *testing.T) {
	assert.NoError(t, ValidateCurrencyCode("usd"))
	assert.NoError(t, ValidateCurrencyCode("EUR"))
	assert.Error(t, ValidateCurrencyCode("us"))
	assert.Error(t, ValidateCurrencyCode("us1"))
}
