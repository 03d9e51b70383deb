package dto

import (
	"time"

	"github.com/flexprice/console/internal/domain/plan"
	"github.com/flexprice/console/internal/domain/pricing"
	"github.com/flexprice/console/internal/domain/subscription"
	"github.com/flexprice/console/internal/types"
	"github.com/flexprice/console/internal/validator"
	"github.com/samber/lo"
)

type AssignSubscriptionRequest struct {
	ClientID       string             `json:"client_id" validate:"required"`
	PlanID         string             `json:"plan_id" validate:"required"`
	BillingCycle   types.BillingCycle `json:"billing_cycle" validate:"required"`
	CustomPrice    *int64             `json:"custom_price,omitempty"`
	UseCustomPrice bool               `json:"use_custom_price"`
	CustomFeatures []string           `json:"custom_features,omitempty" validate:"omitempty,dive,required"`
	StartDate      *time.Time         `json:"start_date,omitempty"`
	ExpiresAt      *time.Time         `json:"expires_at,omitempty"`
	// ByAdmin activates the subscription without an approval step.
	ByAdmin bool `json:"by_admin"`
}

func (r *AssignSubscriptionRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	return r.BillingCycle.Validate()
}

// ToNewParams builds the domain parameters against the loaded plan. The custom
// price is denominated in the plan currency.
func (r *AssignSubscriptionRequest) ToNewParams(p *plan.Plan, now time.Time) subscription.NewParams {
	params := subscription.NewParams{
		ClientID:       r.ClientID,
		Plan:           p,
		BillingCycle:   r.BillingCycle,
		UseCustomPrice: r.UseCustomPrice,
		CustomFeatures: r.CustomFeatures,
		StartDate:      lo.FromPtrOr(r.StartDate, now),
		ExpiresAt:      r.ExpiresAt,
		ByAdmin:        r.ByAdmin,
	}
	if r.CustomPrice != nil {
		params.CustomPrice = lo.ToPtr(types.NewMoney(*r.CustomPrice, p.MonthlyPrice.Currency))
	}
	return params
}

type ChangeSubscriptionRequest struct {
	PlanID           *string             `json:"plan_id,omitempty" validate:"omitempty,min=1"`
	BillingCycle     *types.BillingCycle `json:"billing_cycle,omitempty"`
	CustomPrice      *int64              `json:"custom_price,omitempty"`
	UseCustomPrice   *bool               `json:"use_custom_price,omitempty"`
	ClearCustomPrice bool                `json:"clear_custom_price,omitempty"`
}

func (r *ChangeSubscriptionRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	if r.BillingCycle != nil {
		return r.BillingCycle.Validate()
	}
	return nil
}

// ToChange builds the domain change. target is the loaded plan named by
// PlanID, nil when the plan is unchanged.
func (r *ChangeSubscriptionRequest) ToChange(target *plan.Plan, currency string) subscription.Change {
	change := subscription.Change{
		Plan:             target,
		BillingCycle:     r.BillingCycle,
		UseCustomPrice:   r.UseCustomPrice,
		ClearCustomPrice: r.ClearCustomPrice,
	}
	if target != nil {
		currency = target.MonthlyPrice.Currency
	}
	if r.CustomPrice != nil {
		change.CustomPrice = lo.ToPtr(types.NewMoney(*r.CustomPrice, currency))
	}
	return change
}

type SubscriptionResponse struct {
	*subscription.Subscription
	Features []string               `json:"features"`
	Price    *pricing.ResolveResult `json:"price,omitempty"`
}

type ChangeSubscriptionResponse struct {
	Subscription *SubscriptionResponse     `json:"subscription"`
	Change       *subscription.ChangeResult `json:"change"`
}

// ListSubscriptionsResponse represents the response for listing subscriptions
type ListSubscriptionsResponse = types.ListResponse[*SubscriptionResponse]
