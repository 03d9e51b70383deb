package discount

import (
	"time"

	ierr "github.com/flexprice/console/internal/errors"
	"github.com/flexprice/console/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// Discount is a price reduction owned by a plan or a billable service and
// snapshotted by value into every subscription or assignment built from it.
type Discount struct {
	Type types.DiscountType `json:"type"`
	// Value is a percentage in [0,100] for percentage discounts and an amount
	// in minor units for fixed discounts.
	Value decimal.Decimal `json:"value"`
	// ActiveFrom and ActiveUntil bound the half-open window [from, until) the
	// discount applies in. Nil bounds are open.
	ActiveFrom  *time.Time `json:"active_from,omitempty"`
	ActiveUntil *time.Time `json:"active_until,omitempty"`
	Enabled     bool       `json:"enabled"`
}

var maxPercentage = decimal.NewFromInt(100)

func (d *Discount) Validate() error {
	if d == nil {
		return nil
	}

	if err := d.Type.Validate(); err != nil {
		return err
	}

	if d.Value.IsNegative() {
		return ierr.NewError("discount value cannot be negative").
			WithHint("Discount value must be zero or greater").
			WithReportableDetails(map[string]any{
				"value": d.Value.String(),
			}).
			Mark(ierr.ErrValidation)
	}

	if d.Type == types.DiscountTypePercentage && d.Value.GreaterThan(maxPercentage) {
		return ierr.NewError("percentage discount cannot exceed 100").
			WithHint("Percentage discount must be between 0 and 100").
			WithReportableDetails(map[string]any{
				"value": d.Value.String(),
			}).
			Mark(ierr.ErrValidation)
	}

	if d.ActiveFrom != nil && d.ActiveUntil != nil && !d.ActiveFrom.Before(*d.ActiveUntil) {
		return ierr.NewError("discount window is empty").
			WithHint("active_from must be before active_until").
			Mark(ierr.ErrValidation)
	}

	return nil
}

// IsActiveAt reports whether the discount applies at t.
func (d *Discount) IsActiveAt(t time.Time) bool {
	if d == nil || !d.Enabled {
		return false
	}
	if d.ActiveFrom != nil && t.Before(*d.ActiveFrom) {
		return false
	}
	if d.ActiveUntil != nil && !t.Before(*d.ActiveUntil) {
		return false
	}
	return true
}

// Copy returns a deep copy so a snapshot never aliases its source.
func (d *Discount) Copy() *Discount {
	if d == nil {
		return nil
	}
	c := *d
	if d.ActiveFrom != nil {
		c.ActiveFrom = lo.ToPtr(*d.ActiveFrom)
	}
	if d.ActiveUntil != nil {
		c.ActiveUntil = lo.ToPtr(*d.ActiveUntil)
	}
	return &c
}
