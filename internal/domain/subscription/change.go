package subscription

import (
	"time"

	"github.com/flexprice/console/internal/domain/plan"
	"github.com/flexprice/console/internal/domain/pricing"
	ierr "github.com/flexprice/console/internal/errors"
	"github.com/flexprice/console/internal/types"
)

// Change describes a plan, cycle or custom price change. Nil fields keep
// the current value.
type Change struct {
	// Plan is the target plan; nil keeps the current plan.
	Plan           *plan.Plan
	BillingCycle   *types.BillingCycle
	CustomPrice    *types.Money
	UseCustomPrice *bool
	// ClearCustomPrice drops the custom price and falls back to the plan price.
	ClearCustomPrice bool
}

// ChangeResult reports the pricing before and after a change.
type ChangeResult struct {
	Previous *pricing.ResolveResult `json:"previous"`
	Current  *pricing.ResolveResult `json:"current"`
	// InvoiceRequested tells the caller a new invoice should be issued because
	// a pricing input changed.
	InvoiceRequested bool `json:"invoice_requested"`
}

// ApplyChange re-prices an active subscription. The status is unchanged and,
// on error, so is every other field.
func (s *Subscription) ApplyChange(current *plan.Plan, change Change, now time.Time) (*ChangeResult, error) {
	if s.Refresh(now) {
		return nil, expiredError(s.ID)
	}
	if s.SubscriptionStatus != types.SubscriptionStatusActive {
		return nil, ierr.NewErrorf("cannot change a subscription in status %s", s.SubscriptionStatus).
			WithHint("Only active subscriptions can change plan, cycle or price").
			WithReportableDetails(map[string]any{
				"subscription_id": s.ID,
				"status":          s.SubscriptionStatus,
			}).
			Mark(ierr.ErrInvalidTransition)
	}

	previous, err := s.Price(current, now)
	if err != nil {
		return nil, err
	}

	next, target, err := s.withChange(current, change)
	if err != nil {
		return nil, err
	}

	result, err := next.Price(target, now)
	if err != nil {
		return nil, err
	}

	requested := next.PlanID != s.PlanID ||
		next.BillingCycle != s.BillingCycle ||
		!sameMoney(next.CustomPrice, s.CustomPrice) ||
		next.UseCustomPrice != s.UseCustomPrice

	*s = *next
	return &ChangeResult{
		Previous:         previous,
		Current:          result,
		InvoiceRequested: requested,
	}, nil
}

// ActivateOrChangePlan approves a pending subscription with the change
// applied, or re-prices an active one.
func (s *Subscription) ActivateOrChangePlan(current *plan.Plan, change Change, now time.Time) (*ChangeResult, error) {
	switch s.SubscriptionStatus {
	case types.SubscriptionStatusActive:
		return s.ApplyChange(current, change, now)
	case types.SubscriptionStatusPendingApproval:
		next, target, err := s.withChange(current, change)
		if err != nil {
			return nil, err
		}
		result, err := next.Price(target, now)
		if err != nil {
			return nil, err
		}
		if err := next.MoveTo(types.SubscriptionStatusActive, now); err != nil {
			return nil, err
		}
		*s = *next
		return &ChangeResult{Current: result, InvoiceRequested: true}, nil
	default:
		return nil, ierr.NewErrorf("cannot activate or change a subscription in status %s", s.SubscriptionStatus).
			WithHint("The subscription has ended and can no longer change plan").
			WithReportableDetails(map[string]any{
				"subscription_id": s.ID,
				"status":          s.SubscriptionStatus,
			}).
			Mark(ierr.ErrInvalidTransition)
	}
}

// withChange returns a modified copy of s and the plan it is priced against.
func (s *Subscription) withChange(current *plan.Plan, change Change) (*Subscription, *plan.Plan, error) {
	next := *s
	next.Discount = s.Discount.Copy()
	next.CustomPrice = copyMoney(s.CustomPrice)
	target := current

	if change.Plan != nil && change.Plan.ID != s.PlanID {
		if !change.Plan.IsActive {
			return nil, nil, ierr.NewError("plan is not active").
				WithHint("Inactive plans cannot be assigned").
				WithReportableDetails(map[string]any{
					"plan_id": change.Plan.ID,
				}).
				Mark(ierr.ErrInvalidOperation)
		}
		target = change.Plan
		next.PlanID = target.ID
		next.Currency = target.MonthlyPrice.Currency
		next.Discount, _ = target.Snapshot()
		// Feature overrides were made against the previous plan.
		next.CustomFeatures = nil
	}

	if change.BillingCycle != nil {
		if err := change.BillingCycle.Validate(); err != nil {
			return nil, nil, err
		}
		next.BillingCycle = *change.BillingCycle
	}

	if change.ClearCustomPrice {
		next.CustomPrice = nil
		next.UseCustomPrice = false
	}
	if change.CustomPrice != nil {
		next.CustomPrice = copyMoney(change.CustomPrice)
	}
	if change.UseCustomPrice != nil {
		next.UseCustomPrice = *change.UseCustomPrice
	}

	return &next, target, nil
}

func sameMoney(a, b *types.Money) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
