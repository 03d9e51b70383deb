package dto

import (
	"context"

	"github.com/flexprice/console/internal/domain/request"
	"github.com/flexprice/console/internal/types"
	"github.com/flexprice/console/internal/validator"
	"github.com/samber/lo"
)

// SubmitRequestRequest is a client asking for a service or a plan change.
// CustomPrice is a proposal in the currency of the requested item.
type SubmitRequestRequest struct {
	Kind         types.RequestKind   `json:"kind" validate:"required"`
	ClientID     string              `json:"client_id" validate:"required"`
	PlanID       string              `json:"plan_id,omitempty"`
	ServiceID    string              `json:"service_id,omitempty"`
	BillingCycle *types.BillingCycle `json:"billing_cycle,omitempty"`
	CustomPrice  *int64              `json:"custom_price,omitempty"`
	Currency     string              `json:"currency,omitempty"`
	IsRecurring  bool                `json:"is_recurring"`
	Notes        *string             `json:"notes,omitempty"`
}

func (r *SubmitRequestRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	return r.Kind.Validate()
}

// ToRequest builds the pending request. A custom price without a currency
// takes defaultCurrency, the currency of the requested item.
func (r *SubmitRequestRequest) ToRequest(ctx context.Context, defaultCurrency string) (*request.Request, error) {
	item := request.RequestedItem{
		PlanID:       r.PlanID,
		ServiceID:    r.ServiceID,
		BillingCycle: r.BillingCycle,
		IsRecurring:  r.IsRecurring,
	}
	if r.CustomPrice != nil {
		currency := r.Currency
		if currency == "" {
			currency = defaultCurrency
		}
		item.CustomPrice = lo.ToPtr(types.NewMoney(*r.CustomPrice, currency))
	}
	return request.New(ctx, r.Kind, r.ClientID, item, r.Notes)
}

type ApproveRequestRequest struct {
	AdminNotes *string `json:"admin_notes,omitempty"`
}

// RejectRequestRequest carries the reason shown to the client. A blank
// reason is refused by the workflow itself.
type RejectRequestRequest struct {
	Reason string `json:"reason"`
}

type RequestResponse struct {
	*request.Request
	Subscription      *SubscriptionResponse      `json:"subscription,omitempty"`
	ServiceAssignment *ServiceAssignmentResponse `json:"service_assignment,omitempty"`
	Change            *ChangeSubscriptionResponse `json:"change,omitempty"`
}

// ListRequestsResponse represents the response for listing requests
type ListRequestsResponse = types.ListResponse[*RequestResponse]
