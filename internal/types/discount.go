package types

import (
	ierr "github.com/flexprice/console/internal/errors"
	"github.com/samber/lo"
)

// DiscountType represents the type of discount (fixed or percentage)
type DiscountType string

const (
	// DiscountTypeFixed represents a fixed amount discount in minor units
	DiscountTypeFixed DiscountType = "fixed"
	// DiscountTypePercentage represents a percentage-based discount
	DiscountTypePercentage DiscountType = "percentage"
)

func (d DiscountType) Validate() error {
	allowed := []DiscountType{DiscountTypeFixed, DiscountTypePercentage}
	if !lo.Contains(allowed, d) {
		return ierr.NewErrorf("invalid discount type: %s", d).
			WithHint("Discount type must be percentage or fixed").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// FixedDiscountProrationPolicy decides how a fixed discount attached to a
// yearly price shows on the monthly-equivalent figure.
type FixedDiscountProrationPolicy string

const (
	// FixedDiscountProrationProrateMonthly applies value/12 to the monthly view
	// and the full value to the yearly price.
	FixedDiscountProrationProrateMonthly FixedDiscountProrationPolicy = "prorate_monthly"
	// FixedDiscountProrationFull applies the full value to both views.
	FixedDiscountProrationFull FixedDiscountProrationPolicy = "full"
)

func (p FixedDiscountProrationPolicy) Validate() error {
	allowed := []FixedDiscountProrationPolicy{
		FixedDiscountProrationProrateMonthly,
		FixedDiscountProrationFull,
	}
	if !lo.Contains(allowed, p) {
		return ierr.NewErrorf("invalid fixed discount proration policy: %s", p).
			WithHint("Policy must be prorate_monthly or full").
			Mark(ierr.ErrValidation)
	}
	return nil
}
