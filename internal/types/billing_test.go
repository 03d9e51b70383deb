package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBillingCycle(t *testing.T) {
	assert.NoError(t, BillingCycleMonthly.Validate())
	assert.NoError(t, BillingCycleQuarterly.Validate())
	assert.NoError(t, BillingCycleAnnually.Validate())
	assert.Error(t, BillingCycle("weekly").Validate())

	assert.Equal(t, 1, BillingCycleMonthly.Months())
	assert.Equal(t, 3, BillingCycleQuarterly.Months())
	assert.Equal(t, 12, BillingCycleAnnually.Months())
}

func TestDurationType_BillingCycle(t *testing.T) {
	cycle, ok := DurationTypeQuarterly.BillingCycle()
	assert.True(t, ok)
	assert.Equal(t, BillingCycleQuarterly, cycle)

	_, ok = DurationTypeOneTime.BillingCycle()
	assert.False(t, ok)
	assert.False(t, DurationTypeOneTime.IsRecurring())
	assert.True(t, DurationTypeAnnual.IsRecurring())
	assert.Error(t, DurationType("weekly").Validate())
}

func TestSubscriptionStatus_IsTerminal(t *testing.T) {
	terminal := []SubscriptionStatus{
		SubscriptionStatusCancelled,
		SubscriptionStatusExpired,
		SubscriptionStatusRejected,
	}
	for _, s := range terminal {
		assert.True(t, s.IsTerminal(), s)
	}
	live := []SubscriptionStatus{
		SubscriptionStatusPendingApproval,
		SubscriptionStatusActive,
		SubscriptionStatusSuspended,
	}
	for _, s := range live {
		assert.False(t, s.IsTerminal(), s)
	}
}
