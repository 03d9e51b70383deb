package types

import (
	ierr "github.com/flexprice/console/internal/errors"
	"github.com/samber/lo"
)

// SubscriptionStatus is the lifecycle status shared by subscriptions and
// service assignments.
type SubscriptionStatus string

const (
	SubscriptionStatusPendingApproval SubscriptionStatus = "pending_approval"
	SubscriptionStatusActive          SubscriptionStatus = "active"
	SubscriptionStatusSuspended       SubscriptionStatus = "suspended"
	SubscriptionStatusCancelled       SubscriptionStatus = "cancelled"
	SubscriptionStatusExpired         SubscriptionStatus = "expired"
	SubscriptionStatusRejected        SubscriptionStatus = "rejected"
)

func (s SubscriptionStatus) Validate() error {
	allowed := []SubscriptionStatus{
		SubscriptionStatusPendingApproval,
		SubscriptionStatusActive,
		SubscriptionStatusSuspended,
		SubscriptionStatusCancelled,
		SubscriptionStatusExpired,
		SubscriptionStatusRejected,
	}
	if !lo.Contains(allowed, s) {
		return ierr.NewErrorf("invalid subscription status: %s", s).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// IsTerminal reports whether no transition leaves s.
func (s SubscriptionStatus) IsTerminal() bool {
	switch s {
	case SubscriptionStatusCancelled, SubscriptionStatusExpired, SubscriptionStatusRejected:
		return true
	}
	return false
}

type InvoiceStatus string

const (
	InvoiceStatusDraft     InvoiceStatus = "draft"
	InvoiceStatusSent      InvoiceStatus = "sent"
	InvoiceStatusPaid      InvoiceStatus = "paid"
	InvoiceStatusOverdue   InvoiceStatus = "overdue"
	InvoiceStatusCancelled InvoiceStatus = "cancelled"
)

func (s InvoiceStatus) Validate() error {
	allowed := []InvoiceStatus{
		InvoiceStatusDraft,
		InvoiceStatusSent,
		InvoiceStatusPaid,
		InvoiceStatusOverdue,
		InvoiceStatusCancelled,
	}
	if !lo.Contains(allowed, s) {
		return ierr.NewErrorf("invalid invoice status: %s", s).
			Mark(ierr.ErrValidation)
	}
	return nil
}

type RequestStatus string

const (
	RequestStatusPending   RequestStatus = "pending"
	RequestStatusApproved  RequestStatus = "approved"
	RequestStatusRejected  RequestStatus = "rejected"
	RequestStatusCancelled RequestStatus = "cancelled"
)

type RequestKind string

const (
	RequestKindService    RequestKind = "service_request"
	RequestKindPlanChange RequestKind = "plan_change_request"
)

func (k RequestKind) Validate() error {
	allowed := []RequestKind{RequestKindService, RequestKindPlanChange}
	if !lo.Contains(allowed, k) {
		return ierr.NewErrorf("invalid request kind: %s", k).
			WithHint("Request kind must be service_request or plan_change_request").
			Mark(ierr.ErrValidation)
	}
	return nil
}
