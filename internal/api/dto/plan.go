package dto

import (
	"context"

	"github.com/flexprice/console/internal/domain/plan"
	"github.com/flexprice/console/internal/domain/pricing"
	"github.com/flexprice/console/internal/types"
	"github.com/flexprice/console/internal/validator"
	"github.com/samber/lo"
)

type CreatePlanRequest struct {
	Name         string           `json:"name" validate:"required"`
	Description  string           `json:"description"`
	Currency     string           `json:"currency" validate:"required,len=3"`
	MonthlyPrice int64            `json:"monthly_price" validate:"min=0"`
	YearlyPrice  *int64           `json:"yearly_price,omitempty" validate:"omitempty,min=0"`
	Features     []string         `json:"features" validate:"omitempty,dive,required"`
	Discount     *DiscountRequest `json:"discount,omitempty"`
	IsCustom     bool             `json:"is_custom"`
	Metadata     types.Metadata   `json:"metadata,omitempty"`
}

func (r *CreatePlanRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	if err := types.ValidateCurrencyCode(r.Currency); err != nil {
		return err
	}
	return r.Discount.Validate()
}

func (r *CreatePlanRequest) ToPlan(ctx context.Context) *plan.Plan {
	p := plan.New(ctx, r.Name, types.NewMoney(r.MonthlyPrice, r.Currency))
	p.Description = r.Description
	if r.YearlyPrice != nil {
		p.YearlyPrice = lo.ToPtr(types.NewMoney(*r.YearlyPrice, r.Currency))
	}
	if r.Features != nil {
		p.Features = append([]string{}, r.Features...)
	}
	p.Discount = r.Discount.ToDiscount()
	p.IsCustom = r.IsCustom
	p.Metadata = r.Metadata
	return p
}

type UpdatePlanRequest struct {
	Name         *string          `json:"name,omitempty" validate:"omitempty,min=1"`
	Description  *string          `json:"description,omitempty"`
	MonthlyPrice *int64           `json:"monthly_price,omitempty" validate:"omitempty,min=0"`
	YearlyPrice  *int64           `json:"yearly_price,omitempty" validate:"omitempty,min=0"`
	// ClearYearlyPrice falls back to the derived monthly * 12 price.
	ClearYearlyPrice bool             `json:"clear_yearly_price,omitempty"`
	Features         *[]string        `json:"features,omitempty"`
	Discount         *DiscountRequest `json:"discount,omitempty"`
	ClearDiscount    bool             `json:"clear_discount,omitempty"`
	Metadata         types.Metadata   `json:"metadata,omitempty"`
}

func (r *UpdatePlanRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	return r.Discount.Validate()
}

// Apply writes the set fields onto p.
func (r *UpdatePlanRequest) Apply(p *plan.Plan) {
	if r.Name != nil {
		p.Name = *r.Name
	}
	if r.Description != nil {
		p.Description = *r.Description
	}
	if r.MonthlyPrice != nil {
		p.MonthlyPrice = types.NewMoney(*r.MonthlyPrice, p.MonthlyPrice.Currency)
	}
	if r.ClearYearlyPrice {
		p.YearlyPrice = nil
	}
	if r.YearlyPrice != nil {
		p.YearlyPrice = lo.ToPtr(types.NewMoney(*r.YearlyPrice, p.MonthlyPrice.Currency))
	}
	if r.Features != nil {
		p.Features = append([]string{}, (*r.Features)...)
	}
	if r.ClearDiscount {
		p.Discount = nil
	}
	if r.Discount != nil {
		p.Discount = r.Discount.ToDiscount()
	}
	if r.Metadata != nil {
		p.Metadata = r.Metadata
	}
}

type PlanResponse struct {
	*plan.Plan
	EffectiveYearlyPrice types.Money        `json:"effective_yearly_price"`
	Quote                *pricing.PlanQuote `json:"quote,omitempty"`
}

// ListPlansResponse represents the response for listing plans
type ListPlansResponse = types.ListResponse[*PlanResponse]
