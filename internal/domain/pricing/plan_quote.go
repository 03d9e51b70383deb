package pricing

import (
	"time"

	"github.com/flexprice/console/internal/domain/discount"
	"github.com/flexprice/console/internal/domain/plan"
	"github.com/flexprice/console/internal/types"
)

// PlanQuote is the full price sheet of a plan at a point in time.
type PlanQuote struct {
	PlanID    string        `json:"plan_id"`
	Monthly   ResolveResult `json:"monthly"`
	Quarterly ResolveResult `json:"quarterly"`
	Yearly    ResolveResult `json:"yearly"`
	// MonthlyEquivalentFinal is the discounted monthly figure shown next to the
	// yearly price. Fixed discounts are spread over twelve months here when the
	// proration policy is prorate_monthly.
	MonthlyEquivalentFinal types.Money `json:"monthly_equivalent_final"`
	// SavingsPercent compares the yearly price against twelve monthly charges,
	// before discounts.
	SavingsPercent int `json:"savings_percent"`
}

// PlanPriceForCycle is the base price of p charged once per cycle.
func PlanPriceForCycle(p *plan.Plan, cycle types.BillingCycle) types.Money {
	return PriceForCycle(p.MonthlyPrice, p.YearlyPrice, cycle)
}

// EffectiveYearlyPrice returns the explicit yearly price of p or monthly * 12.
func EffectiveYearlyPrice(p *plan.Plan) types.Money {
	return PlanPriceForCycle(p, types.BillingCycleAnnually)
}

// QuotePlan resolves every cycle price of p at asOf.
func QuotePlan(p *plan.Plan, asOf time.Time, policy types.FixedDiscountProrationPolicy) (*PlanQuote, error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}

	quote := &PlanQuote{PlanID: p.ID}
	for _, cycle := range []types.BillingCycle{
		types.BillingCycleMonthly,
		types.BillingCycleQuarterly,
		types.BillingCycleAnnually,
	} {
		result, err := Resolve(ResolveParams{
			BasePrice: PlanPriceForCycle(p, cycle),
			Discount:  p.Discount,
			AsOf:      asOf,
		})
		if err != nil {
			return nil, err
		}

		switch cycle {
		case types.BillingCycleMonthly:
			quote.Monthly = *result
		case types.BillingCycleQuarterly:
			quote.Quarterly = *result
		case types.BillingCycleAnnually:
			quote.Yearly = *result
		}
	}

	quote.MonthlyEquivalentFinal = discount.ApplyMonthlyEquivalent(p.MonthlyPrice, p.Discount, asOf, policy)

	savings, err := SavingsPercent(YearlyFromMonthly(p.MonthlyPrice), EffectiveYearlyPrice(p))
	if err != nil {
		return nil, err
	}
	quote.SavingsPercent = savings

	return quote, nil
}
