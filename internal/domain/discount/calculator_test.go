package discount

import (
	"testing"
	"time"

	"github.com/flexprice/console/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

var now = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func percentage(v string) *Discount {
	return &Discount{Type: types.DiscountTypePercentage, Value: decimal.RequireFromString(v), Enabled: true}
}

func fixed(v int64) *Discount {
	return &Discount{Type: types.DiscountTypeFixed, Value: decimal.NewFromInt(v), Enabled: true}
}

func TestApply_Identity(t *testing.T) {
	base := types.NewMoney(10000, "usd")

	disabled := percentage("20")
	disabled.Enabled = false

	notStarted := percentage("20")
	notStarted.ActiveFrom = lo.ToPtr(now.Add(time.Hour))

	ended := percentage("20")
	ended.ActiveUntil = lo.ToPtr(now)

	tests := []struct {
		name     string
		discount *Discount
	}{
		{"absent", nil},
		{"disabled", disabled},
		{"before window", notStarted},
		{"window end is exclusive", ended},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, base, Apply(base, tt.discount, now))
		})
	}
}

func TestApply_WindowStartInclusive(t *testing.T) {
	d := percentage("10")
	d.ActiveFrom = lo.ToPtr(now)
	d.ActiveUntil = lo.ToPtr(now.Add(time.Hour))

	assert.Equal(t, int64(9000), Apply(types.NewMoney(10000, "usd"), d, now).Amount)
}

func TestApply_Percentage(t *testing.T) {
	tests := []struct {
		name     string
		base     int64
		value    string
		expected int64
	}{
		{"Twenty_Percent", 10000, "20", 8000},
		{"Fractional", 1000, "15.5", 845},
		{"Rounding_HalfEven", 125, "10", 113},
		{"Full", 10000, "100", 0},
		{"Zero", 10000, "0", 10000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Apply(types.NewMoney(tt.base, "usd"), percentage(tt.value), now)
			assert.Equal(t, tt.expected, got.Amount)
		})
	}
}

func TestApply_Fixed(t *testing.T) {
	assert.Equal(t, int64(118800), Apply(types.NewMoney(120000, "usd"), fixed(1200), now).Amount)
	assert.Equal(t, int64(0), Apply(types.NewMoney(500, "usd"), fixed(1200), now).Amount, "clamped at zero")
}

func TestApplyMonthlyEquivalent(t *testing.T) {
	monthly := types.NewMoney(10000, "usd")

	t.Run("fixed prorated by twelve", func(t *testing.T) {
		got := ApplyMonthlyEquivalent(monthly, fixed(1200), now, types.FixedDiscountProrationProrateMonthly)
		assert.Equal(t, int64(9900), got.Amount)
	})

	t.Run("fixed share rounds half to even", func(t *testing.T) {
		// 1000/12 = 83.33
		got := ApplyMonthlyEquivalent(monthly, fixed(1000), now, types.FixedDiscountProrationProrateMonthly)
		assert.Equal(t, int64(9917), got.Amount)
	})

	t.Run("full policy", func(t *testing.T) {
		got := ApplyMonthlyEquivalent(monthly, fixed(1200), now, types.FixedDiscountProrationFull)
		assert.Equal(t, int64(8800), got.Amount)
	})

	t.Run("percentage ignores policy", func(t *testing.T) {
		got := ApplyMonthlyEquivalent(monthly, percentage("20"), now, types.FixedDiscountProrationProrateMonthly)
		assert.Equal(t, int64(8000), got.Amount)
	})

	t.Run("inactive", func(t *testing.T) {
		d := fixed(1200)
		d.Enabled = false
		assert.Equal(t, monthly, ApplyMonthlyEquivalent(monthly, d, now, types.FixedDiscountProrationProrateMonthly))
	})
}

func TestDiscount_Validate(t *testing.T) {
	assert.NoError(t, (*Discount)(nil).Validate())
	assert.NoError(t, percentage("100").Validate())
	assert.NoError(t, fixed(99999).Validate())

	assert.Error(t, percentage("100.01").Validate())
	assert.Error(t, percentage("-1").Validate())
	assert.Error(t, (&Discount{Type: "bogus", Value: decimal.Zero}).Validate())

	windowed := percentage("5")
	windowed.ActiveFrom = lo.ToPtr(now)
	windowed.ActiveUntil = lo.ToPtr(now)
	assert.Error(t, windowed.Validate())
}

func TestDiscount_Copy(t *testing.T) {
	d := percentage("5")
	d.ActiveUntil = lo.ToPtr(now)

	c := d.Copy()
	*d.ActiveUntil = now.Add(time.Hour)
	d.Value = decimal.NewFromInt(50)

	assert.Equal(t, now, *c.ActiveUntil)
	assert.True(t, c.Value.Equal(decimal.NewFromInt(5)))
	assert.Nil(t, (*Discount)(nil).Copy())
}
