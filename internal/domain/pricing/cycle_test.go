package pricing

import (
	"testing"

	ierr "github.com/flexprice/console/internal/errors"
	"github.com/flexprice/console/internal/types"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func usd(amount int64) types.Money { return types.NewMoney(amount, "usd") }

func TestYearlyFromMonthly(t *testing.T) {
	assert.Equal(t, usd(120000), YearlyFromMonthly(usd(10000)))
	assert.Equal(t, usd(30000), QuarterlyFromMonthly(usd(10000)))
}

func TestPriceForCycle(t *testing.T) {
	monthly := usd(10000)

	assert.Equal(t, usd(10000), PriceForCycle(monthly, nil, types.BillingCycleMonthly))
	assert.Equal(t, usd(30000), PriceForCycle(monthly, nil, types.BillingCycleQuarterly))
	assert.Equal(t, usd(120000), PriceForCycle(monthly, nil, types.BillingCycleAnnually))
	assert.Equal(t, usd(100000), PriceForCycle(monthly, lo.ToPtr(usd(100000)), types.BillingCycleAnnually))
}

func TestMonthlyEquivalent(t *testing.T) {
	assert.Equal(t, usd(10000), MonthlyEquivalent(usd(10000), types.BillingCycleMonthly))
	assert.Equal(t, usd(10000), MonthlyEquivalent(usd(30000), types.BillingCycleQuarterly))
	assert.Equal(t, usd(8333), MonthlyEquivalent(usd(100000), types.BillingCycleAnnually))
}

func TestSavingsPercent(t *testing.T) {
	tests := []struct {
		name     string
		monthly  int64
		yearly   int64
		expected int
	}{
		{"Explicit_Yearly", 120000, 100000, 17},
		{"No_Savings", 120000, 120000, 0},
		{"Yearly_Above_Monthly_Total", 120000, 126000, 0},
		{"Zero_Monthly_Total", 0, 0, 0},
		{"Half", 1000, 500, 50},
		{"Rounds_Half_Up", 200, 199, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SavingsPercent(usd(tt.monthly), usd(tt.yearly))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
			assert.GreaterOrEqual(t, got, 0)
		})
	}

	t.Run("currency mismatch", func(t *testing.T) {
		_, err := SavingsPercent(usd(1000), types.NewMoney(500, "eur"))
		assert.True(t, ierr.Is(err, ierr.ErrCurrencyMismatch))
	})
}
