// Package lifecycle holds the status machine shared by subscriptions and
// service assignments.
package lifecycle

import (
	"time"

	ierr "github.com/flexprice/console/internal/errors"
	"github.com/flexprice/console/internal/types"
	"github.com/samber/lo"
)

var transitions = map[types.SubscriptionStatus][]types.SubscriptionStatus{
	types.SubscriptionStatusPendingApproval: {
		types.SubscriptionStatusActive,
		types.SubscriptionStatusRejected,
	},
	types.SubscriptionStatusActive: {
		types.SubscriptionStatusSuspended,
		types.SubscriptionStatusCancelled,
		types.SubscriptionStatusExpired,
	},
	types.SubscriptionStatusSuspended: {
		types.SubscriptionStatusActive,
	},
}

// CanTransition reports whether from -> to is an allowed edge.
func CanTransition(from, to types.SubscriptionStatus) bool {
	return lo.Contains(transitions[from], to)
}

// Transition validates the edge from -> to.
func Transition(from, to types.SubscriptionStatus) error {
	if err := to.Validate(); err != nil {
		return err
	}

	if CanTransition(from, to) {
		return nil
	}

	hint := "This status change is not allowed"
	if from.IsTerminal() {
		hint = "The subscription has ended and can no longer change status"
	}

	return ierr.NewErrorf("invalid status transition from %s to %s", from, to).
		WithHint(hint).
		WithReportableDetails(map[string]any{
			"from": from,
			"to":   to,
		}).
		Mark(ierr.ErrInvalidTransition)
}

// IsExpired reports whether an active entity has passed its expiry.
func IsExpired(status types.SubscriptionStatus, expiresAt *time.Time, now time.Time) bool {
	return status == types.SubscriptionStatusActive && expiresAt != nil && now.After(*expiresAt)
}

// State is the lifecycle part of a subscription or service assignment.
type State struct {
	SubscriptionStatus types.SubscriptionStatus `json:"subscription_status"`
	StartDate          time.Time                `json:"start_date"`
	ExpiresAt          *time.Time               `json:"expires_at,omitempty"`
	ActivatedAt        *time.Time               `json:"activated_at,omitempty"`
	CancelledAt        *time.Time               `json:"cancelled_at,omitempty"`
}

// NewState returns the initial state. Admin-created entities skip approval.
func NewState(startDate time.Time, expiresAt *time.Time, byAdmin bool) State {
	s := State{
		SubscriptionStatus: types.SubscriptionStatusPendingApproval,
		StartDate:          startDate,
		ExpiresAt:          expiresAt,
	}
	if byAdmin {
		s.SubscriptionStatus = types.SubscriptionStatusActive
		s.ActivatedAt = lo.ToPtr(startDate)
	}
	return s
}

// MoveTo applies from -> to or leaves the state unchanged on error.
func (s *State) MoveTo(to types.SubscriptionStatus, now time.Time) error {
	if err := Transition(s.SubscriptionStatus, to); err != nil {
		return err
	}

	switch to {
	case types.SubscriptionStatusActive:
		if s.ActivatedAt == nil {
			s.ActivatedAt = lo.ToPtr(now)
		}
	case types.SubscriptionStatusCancelled:
		s.CancelledAt = lo.ToPtr(now)
	}
	s.SubscriptionStatus = to
	return nil
}

// Refresh evaluates the time-driven active -> expired edge. It returns true
// when the status changed.
func (s *State) Refresh(now time.Time) bool {
	if !IsExpired(s.SubscriptionStatus, s.ExpiresAt, now) {
		return false
	}
	s.SubscriptionStatus = types.SubscriptionStatusExpired
	return true
}

// IsLive reports whether the entity still occupies its slot.
func (s *State) IsLive() bool {
	return !s.SubscriptionStatus.IsTerminal()
}

// IsBillable reports whether the entity is charged at now.
func (s *State) IsBillable(now time.Time) bool {
	return s.SubscriptionStatus == types.SubscriptionStatusActive && !IsExpired(s.SubscriptionStatus, s.ExpiresAt, now)
}
