package dto

import (
	"time"

	"github.com/flexprice/console/internal/domain/pricing"
	ierr "github.com/flexprice/console/internal/errors"
	"github.com/flexprice/console/internal/types"
	"github.com/flexprice/console/internal/validator"
	"github.com/samber/lo"
)

// ResolvePriceRequest asks for the effective price of an ad hoc input, as a
// form does while the user types.
type ResolvePriceRequest struct {
	Currency       string           `json:"currency" validate:"required,len=3"`
	BasePrice      int64            `json:"base_price" validate:"min=0"`
	CustomPrice    *int64           `json:"custom_price,omitempty"`
	UseCustomPrice bool             `json:"use_custom_price"`
	Discount       *DiscountRequest `json:"discount,omitempty"`
	AsOf           *time.Time       `json:"as_of,omitempty"`
}

func (r *ResolvePriceRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	if err := types.ValidateCurrencyCode(r.Currency); err != nil {
		return err
	}
	return r.Discount.Validate()
}

// ToResolveParams converts the request; AsOf defaults to now.
func (r *ResolvePriceRequest) ToResolveParams(now time.Time) pricing.ResolveParams {
	params := pricing.ResolveParams{
		BasePrice:      types.NewMoney(r.BasePrice, r.Currency),
		UseCustomPrice: r.UseCustomPrice,
		Discount:       r.Discount.ToDiscount(),
		AsOf:           lo.FromPtrOr(r.AsOf, now),
	}
	if r.CustomPrice != nil {
		params.CustomPrice = lo.ToPtr(types.NewMoney(*r.CustomPrice, r.Currency))
	}
	return params
}

type ResolvePriceResponse struct {
	*pricing.ResolveResult
	Currency string `json:"currency"`
}

// QuoteRequest names an entity to price at a point in time.
type QuoteRequest struct {
	AsOf *time.Time `json:"as_of,omitempty"`
}

// BillingPeriod is the half-open window [start, end) recurring invoices are
// generated for.
type BillingPeriod struct {
	Start time.Time `json:"start" validate:"required"`
	End   time.Time `json:"end" validate:"required"`
}

func (p *BillingPeriod) Validate() error {
	if err := validator.ValidateRequest(p); err != nil {
		return err
	}
	if !p.Start.Before(p.End) {
		return ierr.NewError("billing period is empty").
			WithHint("Period start must be before period end").
			WithReportableDetails(map[string]any{
				"start": p.Start,
				"end":   p.End,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}
