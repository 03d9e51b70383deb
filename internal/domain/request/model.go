package request

import (
	"context"
	"strings"
	"time"

	ierr "github.com/flexprice/console/internal/errors"
	"github.com/flexprice/console/internal/types"
	"github.com/samber/lo"
)

// RequestedItem is what the client asks for: a plan for plan changes, a
// service for service requests.
type RequestedItem struct {
	PlanID       string              `json:"plan_id,omitempty"`
	ServiceID    string              `json:"service_id,omitempty"`
	BillingCycle *types.BillingCycle `json:"billing_cycle,omitempty"`
	CustomPrice  *types.Money        `json:"custom_price,omitempty"`
	IsRecurring  bool                `json:"is_recurring,omitempty"`
}

// Request is a client-submitted change awaiting an admin decision.
type Request struct {
	ID            string              `json:"id"`
	Kind          types.RequestKind   `json:"kind"`
	ClientID      string              `json:"client_id"`
	Item          RequestedItem       `json:"requested_item"`
	Notes         *string             `json:"notes,omitempty"`
	AdminNotes    *string             `json:"admin_notes,omitempty"`
	RequestStatus types.RequestStatus `json:"request_status"`
	ProcessedBy   *string             `json:"processed_by,omitempty"`
	ProcessedAt   *time.Time          `json:"processed_at,omitempty"`

	types.BaseModel
}

// New builds a pending request.
func New(ctx context.Context, kind types.RequestKind, clientID string, item RequestedItem, notes *string) (*Request, error) {
	r := &Request{
		ID:            types.GenerateUUIDWithPrefix(types.UUID_PREFIX_REQUEST),
		Kind:          kind,
		ClientID:      clientID,
		Item:          item,
		Notes:         notes,
		RequestStatus: types.RequestStatusPending,
		BaseModel:     types.GetDefaultBaseModel(ctx),
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Request) Validate() error {
	if err := r.Kind.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(r.ClientID) == "" {
		return ierr.NewError("client_id is required").
			WithHint("Please select a client").
			Mark(ierr.ErrValidation)
	}

	switch r.Kind {
	case types.RequestKindPlanChange:
		if r.Item.PlanID == "" {
			return ierr.NewError("plan change request needs a plan").
				WithHint("Please select the plan to change to").
				Mark(ierr.ErrValidation)
		}
	case types.RequestKindService:
		if r.Item.ServiceID == "" {
			return ierr.NewError("service request needs a service").
				WithHint("Please select the requested service").
				Mark(ierr.ErrValidation)
		}
	}

	if r.Item.BillingCycle != nil {
		if err := r.Item.BillingCycle.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// IsPending reports whether the request can still be decided.
func (r *Request) IsPending() bool {
	return r.RequestStatus == types.RequestStatusPending
}

// Approve accepts the request. Notes are optional.
func (r *Request) Approve(adminID string, notes *string, now time.Time) error {
	if err := r.requirePending(); err != nil {
		return err
	}
	r.process(types.RequestStatusApproved, adminID, notes, now)
	return nil
}

// Reject declines the request. A non-blank reason is required.
func (r *Request) Reject(adminID string, reason string, now time.Time) error {
	if err := r.requirePending(); err != nil {
		return err
	}
	if strings.TrimSpace(reason) == "" {
		return ierr.NewError("rejection reason is required").
			WithHint("Please explain why the request is rejected").
			WithReportableDetails(map[string]any{
				"request_id": r.ID,
			}).
			Mark(ierr.ErrMissingRejectionReason)
	}
	r.process(types.RequestStatusRejected, adminID, lo.ToPtr(reason), now)
	return nil
}

// Cancel withdraws the request.
func (r *Request) Cancel(actorID string, now time.Time) error {
	if err := r.requirePending(); err != nil {
		return err
	}
	r.process(types.RequestStatusCancelled, actorID, nil, now)
	return nil
}

func (r *Request) process(status types.RequestStatus, actorID string, notes *string, now time.Time) {
	r.RequestStatus = status
	if notes != nil {
		r.AdminNotes = notes
	}
	r.ProcessedBy = lo.ToPtr(actorID)
	r.ProcessedAt = lo.ToPtr(now)
}

func (r *Request) requirePending() error {
	if r.IsPending() {
		return nil
	}
	return ierr.NewErrorf("request %s is already %s", r.ID, r.RequestStatus).
		WithHint("This request has already been processed").
		WithReportableDetails(map[string]any{
			"request_id":   r.ID,
			"status":       r.RequestStatus,
			"processed_by": lo.FromPtr(r.ProcessedBy),
		}).
		Mark(ierr.ErrAlreadyProcessed)
}
