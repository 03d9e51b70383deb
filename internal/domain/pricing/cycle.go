package pricing

import (
	"github.com/flexprice/console/internal/types"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// YearlyFromMonthly is the default yearly price when none is set: monthly * 12.
func YearlyFromMonthly(monthly types.Money) types.Money {
	return monthly.Multiply(decimal.NewFromInt(12))
}

// QuarterlyFromMonthly returns monthly * 3.
func QuarterlyFromMonthly(monthly types.Money) types.Money {
	return monthly.Multiply(decimal.NewFromInt(3))
}

// PriceForCycle returns the price charged once per cycle given the canonical
// monthly price and an optional explicit yearly price.
func PriceForCycle(monthly types.Money, yearly *types.Money, cycle types.BillingCycle) types.Money {
	switch cycle {
	case types.BillingCycleQuarterly:
		return QuarterlyFromMonthly(monthly)
	case types.BillingCycleAnnually:
		if yearly != nil {
			return *yearly
		}
		return YearlyFromMonthly(monthly)
	default:
		return monthly
	}
}

// MonthlyEquivalent spreads a per-cycle price over the months of the cycle,
// rounding half to even.
func MonthlyEquivalent(price types.Money, cycle types.BillingCycle) types.Money {
	months := cycle.Months()
	if months <= 1 {
		return price
	}
	return types.NewMoney(
		price.Decimal().Div(decimal.NewFromInt(int64(months))).RoundBank(0).IntPart(),
		price.Currency,
	)
}

// SavingsPercent returns round(100*(monthlyTotal-yearly)/monthlyTotal), never
// negative. A zero monthly total yields 0.
func SavingsPercent(monthlyTotal, yearly types.Money) (int, error) {
	if _, err := monthlyTotal.Cmp(yearly); err != nil {
		return 0, err
	}
	if monthlyTotal.Amount <= 0 || yearly.Amount >= monthlyTotal.Amount {
		return 0, nil
	}

	saved := monthlyTotal.Decimal().Sub(yearly.Decimal())
	percent := saved.Mul(hundred).Div(monthlyTotal.Decimal()).Round(0)
	return int(percent.IntPart()), nil
}

// MonthsInCycle returns how many months one charge of cycle covers.
func MonthsInCycle(cycle types.BillingCycle) int {
	return cycle.Months()
}
