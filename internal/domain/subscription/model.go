package subscription

import (
	"context"
	"strings"
	"time"

	"github.com/flexprice/console/internal/domain/discount"
	"github.com/flexprice/console/internal/domain/lifecycle"
	"github.com/flexprice/console/internal/domain/plan"
	"github.com/flexprice/console/internal/domain/pricing"
	ierr "github.com/flexprice/console/internal/errors"
	"github.com/flexprice/console/internal/types"
	"github.com/samber/lo"
)

// Subscription binds a client to a plan. Discount and CustomFeatures are
// snapshots taken at assignment or change time.
type Subscription struct {
	ID             string             `json:"id"`
	ClientID       string             `json:"client_id"`
	PlanID         string             `json:"plan_id"`
	BillingCycle   types.BillingCycle `json:"billing_cycle"`
	Currency       string             `json:"currency"`
	CustomPrice    *types.Money       `json:"custom_price,omitempty"`
	UseCustomPrice bool               `json:"use_custom_price"`
	Discount       *discount.Discount `json:"discount,omitempty"`
	// CustomFeatures is nil unless the client overrides the plan's features.
	CustomFeatures []string       `json:"custom_features,omitempty"`
	Metadata       types.Metadata `json:"metadata,omitempty"`

	lifecycle.State
	types.BaseModel
}

// NewParams are the inputs of a new subscription.
type NewParams struct {
	ClientID       string
	Plan           *plan.Plan
	BillingCycle   types.BillingCycle
	CustomPrice    *types.Money
	UseCustomPrice bool
	CustomFeatures []string
	StartDate      time.Time
	ExpiresAt      *time.Time
	// ByAdmin creates the subscription active, bypassing approval.
	ByAdmin bool
}

// New validates params and builds a subscription snapshotting the plan.
func New(ctx context.Context, params NewParams) (*Subscription, error) {
	if strings.TrimSpace(params.ClientID) == "" {
		return nil, ierr.NewError("client_id is required").
			WithHint("Please select a client").
			Mark(ierr.ErrValidation)
	}
	if params.Plan == nil {
		return nil, ierr.NewError("plan is required").
			WithHint("Please select a plan").
			Mark(ierr.ErrValidation)
	}
	if !params.Plan.IsActive {
		return nil, ierr.NewError("plan is not active").
			WithHint("Inactive plans cannot be assigned").
			WithReportableDetails(map[string]any{
				"plan_id": params.Plan.ID,
			}).
			Mark(ierr.ErrInvalidOperation)
	}
	if err := params.BillingCycle.Validate(); err != nil {
		return nil, err
	}
	if params.ExpiresAt != nil && !params.ExpiresAt.After(params.StartDate) {
		return nil, ierr.NewError("expiry must be after start date").
			WithHint("Choose an expiry date after the start date").
			Mark(ierr.ErrValidation)
	}

	d, _ := params.Plan.Snapshot()
	s := &Subscription{
		ID:             types.GenerateUUIDWithPrefix(types.UUID_PREFIX_SUBSCRIPTION),
		ClientID:       params.ClientID,
		PlanID:         params.Plan.ID,
		BillingCycle:   params.BillingCycle,
		Currency:       params.Plan.MonthlyPrice.Currency,
		CustomPrice:    copyMoney(params.CustomPrice),
		UseCustomPrice: params.UseCustomPrice,
		Discount:       d,
		State:          lifecycle.NewState(params.StartDate, params.ExpiresAt, params.ByAdmin),
		BaseModel:      types.GetDefaultBaseModel(ctx),
	}
	if params.CustomFeatures != nil {
		s.CustomFeatures = append([]string{}, params.CustomFeatures...)
	}

	// Reject unusable pricing up front.
	if _, err := s.Price(params.Plan, params.StartDate); err != nil {
		return nil, err
	}
	return s, nil
}

// Price resolves the per-cycle charge of the subscription against p at asOf.
func (s *Subscription) Price(p *plan.Plan, asOf time.Time) (*pricing.ResolveResult, error) {
	if p == nil || p.ID != s.PlanID {
		return nil, ierr.NewError("plan does not match subscription").
			WithHint("Price the subscription with its own plan").
			WithReportableDetails(map[string]any{
				"subscription_id": s.ID,
				"plan_id":         s.PlanID,
			}).
			Mark(ierr.ErrInvalidOperation)
	}

	return pricing.Resolve(pricing.ResolveParams{
		BasePrice:      pricing.PlanPriceForCycle(p, s.BillingCycle),
		CustomPrice:    s.CustomPrice,
		UseCustomPrice: s.UseCustomPrice,
		Discount:       s.Discount,
		AsOf:           asOf,
	})
}

// EffectiveFeatures reads through to the plan unless the client overrides them.
func (s *Subscription) EffectiveFeatures(p *plan.Plan) []string {
	if s.CustomFeatures != nil {
		return append([]string{}, s.CustomFeatures...)
	}
	if p == nil {
		return []string{}
	}
	return append([]string{}, p.Features...)
}

// Approve moves a pending subscription to active.
func (s *Subscription) Approve(now time.Time) error {
	return s.MoveTo(types.SubscriptionStatusActive, now)
}

// Reject ends a pending subscription.
func (s *Subscription) Reject(now time.Time) error {
	return s.MoveTo(types.SubscriptionStatusRejected, now)
}

func (s *Subscription) Suspend(now time.Time) error {
	if s.Refresh(now) {
		return expiredError(s.ID)
	}
	return s.MoveTo(types.SubscriptionStatusSuspended, now)
}

func (s *Subscription) Resume(now time.Time) error {
	if s.SubscriptionStatus != types.SubscriptionStatusSuspended {
		return lifecycle.Transition(s.SubscriptionStatus, types.SubscriptionStatusActive)
	}
	return s.MoveTo(types.SubscriptionStatusActive, now)
}

func (s *Subscription) Cancel(now time.Time) error {
	if s.Refresh(now) {
		return expiredError(s.ID)
	}
	return s.MoveTo(types.SubscriptionStatusCancelled, now)
}

// RefreshStatus applies lazy expiry and reports whether the status changed.
func (s *Subscription) RefreshStatus(now time.Time) bool {
	return s.Refresh(now)
}

// IsLive reports whether the subscription occupies the client's single slot.
func (s *Subscription) IsLive() bool {
	return s.State.IsLive()
}

func expiredError(id string) error {
	return ierr.NewError("subscription has expired").
		WithHint("The subscription has ended and can no longer change status").
		WithReportableDetails(map[string]any{
			"subscription_id": id,
		}).
		Mark(ierr.ErrInvalidTransition)
}

func copyMoney(m *types.Money) *types.Money {
	if m == nil {
		return nil
	}
	return lo.ToPtr(*m)
}
