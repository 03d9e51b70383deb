package pricing

import (
	"testing"
	"time"

	"github.com/flexprice/console/internal/domain/discount"
	ierr "github.com/flexprice/console/internal/errors"
	"github.com/flexprice/console/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var asOf = time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

func TestResolve_PercentageDiscount(t *testing.T) {
	result, err := Resolve(ResolveParams{
		BasePrice: usd(10000),
		Discount: &discount.Discount{
			Type:    types.DiscountTypePercentage,
			Value:   decimal.NewFromInt(20),
			Enabled: true,
		},
		AsOf: asOf,
	})
	require.NoError(t, err)
	assert.Equal(t, usd(10000), result.EffectiveBase)
	assert.Equal(t, usd(8000), result.FinalPrice)
	assert.Equal(t, usd(2000), result.DiscountAmount)
}

func TestResolve_CustomPriceOverridesBase(t *testing.T) {
	result, err := Resolve(ResolveParams{
		BasePrice:      usd(10000),
		CustomPrice:    lo.ToPtr(usd(7500)),
		UseCustomPrice: true,
		Discount: &discount.Discount{
			Type:    types.DiscountTypeFixed,
			Value:   decimal.NewFromInt(500),
			Enabled: true,
		},
		AsOf: asOf,
	})
	require.NoError(t, err)
	assert.Equal(t, usd(7500), result.EffectiveBase)
	assert.Equal(t, usd(7000), result.FinalPrice)
	assert.Equal(t, usd(500), result.DiscountAmount)
}

func TestResolve_CustomPriceWithoutFlag(t *testing.T) {
	result, err := Resolve(ResolveParams{
		BasePrice:   usd(10000),
		CustomPrice: lo.ToPtr(usd(0)),
		AsOf:        asOf,
	})
	require.NoError(t, err)
	assert.Equal(t, usd(0), result.FinalPrice)
}

func TestResolve_NoDiscount(t *testing.T) {
	result, err := Resolve(ResolveParams{BasePrice: usd(4200), AsOf: asOf})
	require.NoError(t, err)
	assert.Equal(t, usd(4200), result.FinalPrice)
	assert.Equal(t, usd(0), result.DiscountAmount)
}

func TestResolve_Errors(t *testing.T) {
	tests := []struct {
		name   string
		params ResolveParams
		kind   error
	}{
		{
			name:   "flag on without custom price",
			params: ResolveParams{BasePrice: usd(10000), UseCustomPrice: true},
			kind:   ierr.ErrInvalidCustomPrice,
		},
		{
			name:   "flag on with zero custom price",
			params: ResolveParams{BasePrice: usd(10000), CustomPrice: lo.ToPtr(usd(0)), UseCustomPrice: true},
			kind:   ierr.ErrInvalidCustomPrice,
		},
		{
			name:   "flag on with negative custom price",
			params: ResolveParams{BasePrice: usd(10000), CustomPrice: lo.ToPtr(usd(-1)), UseCustomPrice: true},
			kind:   ierr.ErrInvalidCustomPrice,
		},
		{
			name:   "negative custom price without flag",
			params: ResolveParams{BasePrice: usd(10000), CustomPrice: lo.ToPtr(usd(-1))},
			kind:   ierr.ErrInvalidCustomPrice,
		},
		{
			name:   "custom price in other currency",
			params: ResolveParams{BasePrice: usd(10000), CustomPrice: lo.ToPtr(types.NewMoney(900, "eur")), UseCustomPrice: true},
			kind:   ierr.ErrCurrencyMismatch,
		},
		{
			name: "percentage above 100",
			params: ResolveParams{BasePrice: usd(10000), Discount: &discount.Discount{
				Type: types.DiscountTypePercentage, Value: decimal.NewFromInt(120), Enabled: true,
			}},
			kind: ierr.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.params.AsOf = asOf
			result, err := Resolve(tt.params)
			assert.Nil(t, result)
			assert.True(t, ierr.Is(err, tt.kind), "expected %v, got %v", tt.kind, err)
		})
	}
}

// The final price stays within [0, effectiveBase] for every base and discount.
func TestResolve_FinalPriceBounds(t *testing.T) {
	bases := []int64{0, 1, 99, 10000, 123457, 999999999}
	discounts := []*discount.Discount{
		nil,
		{Type: types.DiscountTypePercentage, Value: decimal.Zero, Enabled: true},
		{Type: types.DiscountTypePercentage, Value: decimal.RequireFromString("33.333"), Enabled: true},
		{Type: types.DiscountTypePercentage, Value: decimal.NewFromInt(100), Enabled: true},
		{Type: types.DiscountTypeFixed, Value: decimal.NewFromInt(1), Enabled: true},
		{Type: types.DiscountTypeFixed, Value: decimal.NewFromInt(1_000_000_000_0), Enabled: true},
		{Type: types.DiscountTypeFixed, Value: decimal.NewFromInt(50), Enabled: false},
	}

	for _, base := range bases {
		for _, d := range discounts {
			result, err := Resolve(ResolveParams{BasePrice: usd(base), Discount: d, AsOf: asOf})
			require.NoError(t, err)
			assert.GreaterOrEqual(t, result.FinalPrice.Amount, int64(0))
			assert.LessOrEqual(t, result.FinalPrice.Amount, result.EffectiveBase.Amount)
			assert.Equal(t, result.EffectiveBase.Amount, result.FinalPrice.Amount+result.DiscountAmount.Amount)
		}
	}
}

// Resolution is a pure function of its inputs.
func TestResolve_Idempotent(t *testing.T) {
	params := ResolveParams{
		BasePrice: usd(9999),
		Discount:  &discount.Discount{Type: types.DiscountTypePercentage, Value: decimal.RequireFromString("12.5"), Enabled: true},
		AsOf:      asOf,
	}
	first, err := Resolve(params)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := Resolve(params)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}
