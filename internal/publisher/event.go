package publisher

import (
	"context"
	"time"

	ierr "github.com/flexprice/console/internal/errors"
	"github.com/flexprice/console/internal/types"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type EventType string

const (
	EventSubscriptionCreated   EventType = "subscription.created"
	EventSubscriptionActivated EventType = "subscription.activated"
	EventSubscriptionChanged   EventType = "subscription.changed"
	EventSubscriptionSuspended EventType = "subscription.suspended"
	EventSubscriptionResumed   EventType = "subscription.resumed"
	EventSubscriptionCancelled EventType = "subscription.cancelled"
	EventSubscriptionExpired   EventType = "subscription.expired"
	EventSubscriptionRejected  EventType = "subscription.rejected"

	EventServiceAssignmentCreated EventType = "service_assignment.created"

	EventRequestSubmitted EventType = "request.submitted"
	EventRequestApproved  EventType = "request.approved"
	EventRequestRejected  EventType = "request.rejected"
	EventRequestCancelled EventType = "request.cancelled"

	EventInvoiceCreated   EventType = "invoice.created"
	EventInvoiceSent      EventType = "invoice.sent"
	EventInvoicePaid      EventType = "invoice.paid"
	EventInvoiceOverdue   EventType = "invoice.overdue"
	EventInvoiceCancelled EventType = "invoice.cancelled"
	// EventInvoiceRequested signals that a subscription change needs a new
	// invoice issued by the billing collaborator.
	EventInvoiceRequested EventType = "invoice.requested"
)

// Event is a domain event published on the event bus.
type Event struct {
	ID        string              `json:"id"`
	Type      EventType           `json:"type"`
	EntityID  string              `json:"entity_id"`
	ClientID  string              `json:"client_id,omitempty"`
	UserID    string              `json:"user_id,omitempty"`
	RequestID string              `json:"request_id,omitempty"`
	Timestamp time.Time           `json:"timestamp"`
	Data      jsoniter.RawMessage `json:"data,omitempty"`
}

// NewEvent builds an event carrying data encoded as JSON.
func NewEvent(ctx context.Context, eventType EventType, entityID, clientID string, data interface{}) (*Event, error) {
	event := &Event{
		ID:        types.GenerateUUIDWithPrefix(types.UUID_PREFIX_EVENT),
		Type:      eventType,
		EntityID:  entityID,
		ClientID:  clientID,
		UserID:    types.GetUserID(ctx),
		RequestID: types.GetRequestID(ctx),
		Timestamp: time.Now().UTC(),
	}

	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			return nil, ierr.WithError(err).
				WithHint("Failed to encode event payload").
				WithReportableDetails(map[string]any{
					"event_type": eventType,
					"entity_id":  entityID,
				}).
				Mark(ierr.ErrSystem)
		}
		event.Data = raw
	}
	return event, nil
}

// DecodeEvent parses an event from a message payload.
func DecodeEvent(payload []byte) (*Event, error) {
	var event Event
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to decode event").
			Mark(ierr.ErrValidation)
	}
	return &event, nil
}

// DecodeData parses the event payload into v.
func (e *Event) DecodeData(v interface{}) error {
	if len(e.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(e.Data, v); err != nil {
		return ierr.WithError(err).
			WithHint("Failed to decode event payload").
			Mark(ierr.ErrValidation)
	}
	return nil
}
