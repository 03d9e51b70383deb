package types

import (
	ierr "github.com/flexprice/console/internal/errors"
	"github.com/samber/lo"
)

// BillingCycle is the recurrence a price is denominated against.
type BillingCycle string

const (
	BillingCycleMonthly   BillingCycle = "monthly"
	BillingCycleQuarterly BillingCycle = "quarterly"
	BillingCycleAnnually  BillingCycle = "annually"
)

func (b BillingCycle) Validate() error {
	allowed := []BillingCycle{
		BillingCycleMonthly,
		BillingCycleQuarterly,
		BillingCycleAnnually,
	}
	if !lo.Contains(allowed, b) {
		return ierr.NewErrorf("invalid billing cycle: %s", b).
			WithHint("Billing cycle must be one of monthly, quarterly or annually").
			WithReportableDetails(map[string]any{
				"allowed": allowed,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// Months returns the number of months one cycle spans.
func (b BillingCycle) Months() int {
	switch b {
	case BillingCycleQuarterly:
		return 3
	case BillingCycleAnnually:
		return 12
	default:
		return 1
	}
}

// DurationType is the recurrence label some invoice forms attach to a line.
// It never scales a line's quantity.
type DurationType string

const (
	DurationTypeOneTime   DurationType = "one_time"
	DurationTypeMonthly   DurationType = "monthly"
	DurationTypeQuarterly DurationType = "quarterly"
	DurationTypeAnnual    DurationType = "annual"
)

func (d DurationType) Validate() error {
	allowed := []DurationType{
		DurationTypeOneTime,
		DurationTypeMonthly,
		DurationTypeQuarterly,
		DurationTypeAnnual,
	}
	if !lo.Contains(allowed, d) {
		return ierr.NewErrorf("invalid duration type: %s", d).
			WithHint("Duration type must be one of one_time, monthly, quarterly or annual").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// IsRecurring reports whether the duration repeats.
func (d DurationType) IsRecurring() bool {
	return d != DurationTypeOneTime
}

// BillingCycle maps a recurring duration to its billing cycle.
func (d DurationType) BillingCycle() (BillingCycle, bool) {
	switch d {
	case DurationTypeMonthly:
		return BillingCycleMonthly, true
	case DurationTypeQuarterly:
		return BillingCycleQuarterly, true
	case DurationTypeAnnual:
		return BillingCycleAnnually, true
	default:
		return "", false
	}
}
