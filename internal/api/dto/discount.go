package dto

import (
	"time"

	"github.com/flexprice/console/internal/domain/discount"
	"github.com/flexprice/console/internal/types"
	"github.com/flexprice/console/internal/validator"
	"github.com/shopspring/decimal"
)

// DiscountRequest is a discount as submitted by a form. Fixed values are in
// minor units.
type DiscountRequest struct {
	Type        types.DiscountType `json:"type" validate:"required"`
	Value       decimal.Decimal    `json:"value"`
	ActiveFrom  *time.Time         `json:"active_from,omitempty"`
	ActiveUntil *time.Time         `json:"active_until,omitempty"`
	Enabled     *bool              `json:"enabled,omitempty"`
}

func (r *DiscountRequest) Validate() error {
	if r == nil {
		return nil
	}
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	return r.ToDiscount().Validate()
}

// ToDiscount converts the request; Enabled defaults to true.
func (r *DiscountRequest) ToDiscount() *discount.Discount {
	if r == nil {
		return nil
	}
	enabled := true
	if r.Enabled != nil {
		enabled = *r.Enabled
	}
	return &discount.Discount{
		Type:        r.Type,
		Value:       r.Value,
		ActiveFrom:  r.ActiveFrom,
		ActiveUntil: r.ActiveUntil,
		Enabled:     enabled,
	}
}
