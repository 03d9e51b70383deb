package subscription

import (
	"context"
	"testing"
	"time"

	"github.com/flexprice/console/internal/domain/discount"
	"github.com/flexprice/console/internal/domain/plan"
	ierr "github.com/flexprice/console/internal/errors"
	"github.com/flexprice/console/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var start = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

func usd(amount int64) types.Money { return types.NewMoney(amount, "usd") }

func newPlan(name string, monthly int64) *plan.Plan {
	p := plan.New(context.Background(), name, usd(monthly))
	p.Features = []string{"api", "reports"}
	return p
}

func newSubscription(t *testing.T, p *plan.Plan, byAdmin bool) *Subscription {
	t.Helper()
	s, err := New(context.Background(), NewParams{
		ClientID:     "client_1",
		Plan:         p,
		BillingCycle: types.BillingCycleMonthly,
		StartDate:    start,
		ByAdmin:      byAdmin,
	})
	require.NoError(t, err)
	return s
}

func TestNew(t *testing.T) {
	p := newPlan("Pro", 10000)
	p.Discount = &discount.Discount{Type: types.DiscountTypePercentage, Value: decimal.NewFromInt(20), Enabled: true}

	s := newSubscription(t, p, false)
	assert.Equal(t, types.SubscriptionStatusPendingApproval, s.SubscriptionStatus)
	assert.Equal(t, "usd", s.Currency)
	require.NotNil(t, s.Discount)

	// Later plan edits do not reach the snapshot.
	p.Discount.Value = decimal.NewFromInt(50)
	assert.True(t, s.Discount.Value.Equal(decimal.NewFromInt(20)))

	admin := newSubscription(t, p, true)
	assert.Equal(t, types.SubscriptionStatusActive, admin.SubscriptionStatus)
}

func TestNew_Errors(t *testing.T) {
	p := newPlan("Pro", 10000)
	inactive := newPlan("Old", 10000)
	inactive.IsActive = false

	tests := []struct {
		name   string
		params NewParams
		check  func(error) bool
	}{
		{
			name:   "missing client",
			params: NewParams{Plan: p, BillingCycle: types.BillingCycleMonthly, StartDate: start},
			check:  ierr.IsValidation,
		},
		{
			name:   "inactive plan",
			params: NewParams{ClientID: "c", Plan: inactive, BillingCycle: types.BillingCycleMonthly, StartDate: start},
			check:  ierr.IsInvalidOperation,
		},
		{
			name:   "bad cycle",
			params: NewParams{ClientID: "c", Plan: p, BillingCycle: "weekly", StartDate: start},
			check:  ierr.IsValidation,
		},
		{
			name: "custom pricing flag without price",
			params: NewParams{
				ClientID: "c", Plan: p, BillingCycle: types.BillingCycleMonthly, StartDate: start,
				UseCustomPrice: true,
			},
			check: func(err error) bool { return ierr.Is(err, ierr.ErrInvalidCustomPrice) },
		},
		{
			name: "expiry before start",
			params: NewParams{
				ClientID: "c", Plan: p, BillingCycle: types.BillingCycleMonthly, StartDate: start,
				ExpiresAt: lo.ToPtr(start.Add(-time.Hour)),
			},
			check: ierr.IsValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := New(context.Background(), tt.params)
			assert.Nil(t, s)
			assert.True(t, tt.check(err), "got %v", err)
		})
	}
}

func TestSubscription_Price(t *testing.T) {
	p := newPlan("Pro", 10000)
	s, err := New(context.Background(), NewParams{
		ClientID:       "client_1",
		Plan:           p,
		BillingCycle:   types.BillingCycleAnnually,
		CustomPrice:    lo.ToPtr(usd(90000)),
		UseCustomPrice: true,
		StartDate:      start,
	})
	require.NoError(t, err)

	result, err := s.Price(p, start)
	require.NoError(t, err)
	assert.Equal(t, usd(90000), result.FinalPrice)

	_, err = s.Price(newPlan("Other", 1), start)
	assert.True(t, ierr.IsInvalidOperation(err))
}

func TestSubscription_EffectiveFeatures(t *testing.T) {
	p := newPlan("Pro", 10000)
	s := newSubscription(t, p, true)
	assert.Equal(t, []string{"api", "reports"}, s.EffectiveFeatures(p))

	p.Features = append(p.Features, "sso")
	assert.Equal(t, []string{"api", "reports", "sso"}, s.EffectiveFeatures(p))

	s.CustomFeatures = []string{"api"}
	assert.Equal(t, []string{"api"}, s.EffectiveFeatures(p))
}

func TestSubscription_Lifecycle(t *testing.T) {
	p := newPlan("Pro", 10000)
	now := start.Add(time.Hour)

	s := newSubscription(t, p, false)
	require.NoError(t, s.Approve(now))
	require.NoError(t, s.Suspend(now))
	assert.Equal(t, types.SubscriptionStatusSuspended, s.SubscriptionStatus)

	assert.True(t, ierr.IsInvalidTransition(s.Cancel(now)))
	require.NoError(t, s.Resume(now))
	require.NoError(t, s.Cancel(now))
	assert.NotNil(t, s.CancelledAt)

	for _, op := range []func(time.Time) error{s.Approve, s.Reject, s.Suspend, s.Resume, s.Cancel} {
		assert.True(t, ierr.IsInvalidTransition(op(now)))
		assert.Equal(t, types.SubscriptionStatusCancelled, s.SubscriptionStatus)
	}

	rejected := newSubscription(t, p, false)
	require.NoError(t, rejected.Reject(now))
	assert.True(t, ierr.IsInvalidTransition(rejected.Approve(now)))
}

func TestSubscription_ResumeRequiresSuspended(t *testing.T) {
	s := newSubscription(t, newPlan("Pro", 10000), true)
	assert.True(t, ierr.IsInvalidTransition(s.Resume(start)))
}

func TestSubscription_LazyExpiry(t *testing.T) {
	p := newPlan("Pro", 10000)
	expires := start.AddDate(0, 1, 0)
	s, err := New(context.Background(), NewParams{
		ClientID:     "client_1",
		Plan:         p,
		BillingCycle: types.BillingCycleMonthly,
		StartDate:    start,
		ExpiresAt:    &expires,
		ByAdmin:      true,
	})
	require.NoError(t, err)

	assert.False(t, s.RefreshStatus(expires))
	assert.Equal(t, types.SubscriptionStatusActive, s.SubscriptionStatus)

	later := expires.Add(time.Second)
	assert.True(t, ierr.IsInvalidTransition(s.Cancel(later)))
	assert.Equal(t, types.SubscriptionStatusExpired, s.SubscriptionStatus)
	assert.False(t, s.IsLive())
}
