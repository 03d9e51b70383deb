package plan

import (
	"context"
	"strings"

	"github.com/flexprice/console/internal/domain/discount"
	ierr "github.com/flexprice/console/internal/errors"
	"github.com/flexprice/console/internal/types"
	"github.com/samber/lo"
)

// Plan is a subscription plan. MonthlyPrice is the canonical price; the
// yearly price is derived from it unless set explicitly (see
// pricing.PlanPriceForCycle).
type Plan struct {
	ID           string             `json:"id"`
	Name         string             `json:"name"`
	Description  string             `json:"description,omitempty"`
	MonthlyPrice types.Money        `json:"monthly_price"`
	YearlyPrice  *types.Money       `json:"yearly_price,omitempty"`
	Features     []string           `json:"features"`
	Discount     *discount.Discount `json:"discount,omitempty"`
	IsActive     bool               `json:"is_active"`
	IsCustom     bool               `json:"is_custom"`
	Metadata     types.Metadata     `json:"metadata,omitempty"`

	types.BaseModel
}

// New builds an active plan with a generated id.
func New(ctx context.Context, name string, monthly types.Money) *Plan {
	return &Plan{
		ID:           types.GenerateUUIDWithPrefix(types.UUID_PREFIX_PLAN),
		Name:         name,
		MonthlyPrice: monthly,
		Features:     []string{},
		IsActive:     true,
		BaseModel:    types.GetDefaultBaseModel(ctx),
	}
}

func (p *Plan) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return ierr.NewError("plan name is required").
			WithHint("Please provide a plan name").
			Mark(ierr.ErrValidation)
	}

	if err := types.ValidateCurrencyCode(p.MonthlyPrice.Currency); err != nil {
		return err
	}

	if p.MonthlyPrice.IsNegative() {
		return ierr.NewError("monthly price cannot be negative").
			WithHint("Monthly price must be zero or more").
			WithReportableDetails(map[string]any{
				"monthly_price": p.MonthlyPrice.Amount,
			}).
			Mark(ierr.ErrValidation)
	}

	if p.YearlyPrice != nil {
		if !p.YearlyPrice.SameCurrency(p.MonthlyPrice) {
			return ierr.NewError("yearly price currency does not match monthly price").
				WithHint("Yearly and monthly prices must use the same currency").
				WithReportableDetails(map[string]any{
					"monthly_currency": p.MonthlyPrice.Currency,
					"yearly_currency":  p.YearlyPrice.Currency,
				}).
				Mark(ierr.ErrCurrencyMismatch)
		}
		if p.YearlyPrice.IsNegative() {
			return ierr.NewError("yearly price cannot be negative").
				WithHint("Yearly price must be zero or more").
				Mark(ierr.ErrValidation)
		}
	}

	if lo.ContainsBy(p.Features, func(f string) bool { return strings.TrimSpace(f) == "" }) {
		return ierr.NewError("plan features cannot be blank").
			WithHint("Remove empty feature entries").
			Mark(ierr.ErrValidation)
	}

	return p.Discount.Validate()
}

// Deactivate soft-deletes the plan. Existing subscriptions keep their
// snapshot; new assignments are refused.
func (p *Plan) Deactivate(ctx context.Context) {
	p.IsActive = false
	p.Touch(ctx)
}

// Snapshot returns the discount and features a subscription copies at
// assignment time, so later plan edits never reach existing clients.
func (p *Plan) Snapshot() (*discount.Discount, []string) {
	return p.Discount.Copy(), append([]string(nil), p.Features...)
}
