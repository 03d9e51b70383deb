package pricing

import (
	"time"

	"github.com/flexprice/console/internal/domain/discount"
	ierr "github.com/flexprice/console/internal/errors"
	"github.com/flexprice/console/internal/types"
)

// ResolveParams is everything the effective price depends on.
type ResolveParams struct {
	BasePrice   types.Money
	CustomPrice *types.Money
	// UseCustomPrice marks CustomPrice as an explicit override. With the flag
	// on, a missing or non-positive custom price is rejected instead of falling
	// back to BasePrice.
	UseCustomPrice bool
	Discount       *discount.Discount
	AsOf           time.Time
}

// ResolveResult is the outcome of a price resolution.
type ResolveResult struct {
	EffectiveBase  types.Money `json:"effective_base"`
	FinalPrice     types.Money `json:"final_price"`
	DiscountAmount types.Money `json:"discount_amount"`
}

// Resolve computes the effective price: the custom price when present,
// otherwise the base price, then reduced by the discount active at AsOf.
// FinalPrice always lies in [0, EffectiveBase].
func Resolve(params ResolveParams) (*ResolveResult, error) {
	if params.UseCustomPrice {
		if params.CustomPrice == nil || !params.CustomPrice.IsPositive() {
			details := map[string]any{}
			if params.CustomPrice != nil {
				details["custom_price"] = params.CustomPrice.Amount
			}
			return nil, ierr.NewError("custom price must be positive when custom pricing is enabled").
				WithHint("Enter a custom price greater than zero or turn off custom pricing").
				WithReportableDetails(details).
				Mark(ierr.ErrInvalidCustomPrice)
		}
	}

	effectiveBase := params.BasePrice
	if params.CustomPrice != nil {
		if !params.CustomPrice.SameCurrency(params.BasePrice) {
			return nil, ierr.NewErrorf("custom price currency %s does not match base price currency %s",
				params.CustomPrice.Currency, params.BasePrice.Currency).
				WithHint("Custom price must use the same currency as the plan price").
				Mark(ierr.ErrCurrencyMismatch)
		}
		if params.CustomPrice.IsNegative() {
			return nil, ierr.NewError("custom price cannot be negative").
				WithHint("Enter a custom price of zero or more").
				Mark(ierr.ErrInvalidCustomPrice)
		}
		effectiveBase = *params.CustomPrice
	}

	if effectiveBase.IsNegative() {
		return nil, ierr.NewError("base price cannot be negative").
			WithHint("Prices must be zero or more").
			Mark(ierr.ErrValidation)
	}

	if err := params.Discount.Validate(); err != nil {
		return nil, err
	}

	finalPrice := discount.Apply(effectiveBase, params.Discount, params.AsOf)
	discountAmount, err := effectiveBase.Subtract(finalPrice)
	if err != nil {
		return nil, err
	}

	return &ResolveResult{
		EffectiveBase:  effectiveBase,
		FinalPrice:     finalPrice,
		DiscountAmount: discountAmount,
	}, nil
}
