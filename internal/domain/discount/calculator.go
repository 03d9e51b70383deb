package discount

import (
	"time"

	"github.com/flexprice/console/internal/types"
	"github.com/shopspring/decimal"
)

var monthsPerYear = decimal.NewFromInt(12)

// Apply returns base reduced by d at asOf. It is the identity when d is nil,
// disabled or outside its window. The result never goes below zero.
func Apply(base types.Money, d *Discount, asOf time.Time) types.Money {
	if !d.IsActiveAt(asOf) {
		return base
	}

	switch d.Type {
	case types.DiscountTypePercentage:
		return subtract(base, base.PercentOf(d.Value))
	case types.DiscountTypeFixed:
		return subtract(base, fixedAmount(base.Currency, d.Value))
	default:
		return base
	}
}

// ApplyMonthlyEquivalent reduces the monthly-equivalent figure of a price
// whose discount is defined against the yearly price. Under
// FixedDiscountProrationProrateMonthly a fixed discount contributes value/12;
// percentage discounts are unaffected by the policy.
func ApplyMonthlyEquivalent(
	monthlyBase types.Money,
	d *Discount,
	asOf time.Time,
	policy types.FixedDiscountProrationPolicy,
) types.Money {
	if !d.IsActiveAt(asOf) {
		return monthlyBase
	}
	if d.Type != types.DiscountTypeFixed || policy == types.FixedDiscountProrationFull {
		return Apply(monthlyBase, d, asOf)
	}

	monthlyShare := d.Value.Div(monthsPerYear)
	return subtract(monthlyBase, fixedAmount(monthlyBase.Currency, monthlyShare))
}

func fixedAmount(currency string, value decimal.Decimal) types.Money {
	return types.NewMoney(value.RoundBank(0).IntPart(), currency)
}

// subtract cannot fail: both operands share base's currency.
func subtract(base, amount types.Money) types.Money {
	result, _ := base.Subtract(amount)
	return result
}
