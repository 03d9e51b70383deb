package dto

import (
	"context"
	"time"

	"github.com/flexprice/console/internal/domain/pricing"
	"github.com/flexprice/console/internal/domain/serviceassignment"
	"github.com/flexprice/console/internal/types"
	"github.com/flexprice/console/internal/validator"
	"github.com/samber/lo"
)

type CreateBillableServiceRequest struct {
	Name        string           `json:"name" validate:"required"`
	Description string           `json:"description"`
	Currency    string           `json:"currency" validate:"required,len=3"`
	Price       int64            `json:"price" validate:"min=0"`
	Discount    *DiscountRequest `json:"discount,omitempty"`
}

func (r *CreateBillableServiceRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	if err := types.ValidateCurrencyCode(r.Currency); err != nil {
		return err
	}
	return r.Discount.Validate()
}

func (r *CreateBillableServiceRequest) ToBillableService(ctx context.Context) *serviceassignment.BillableService {
	svc := serviceassignment.NewBillableService(ctx, r.Name, types.NewMoney(r.Price, r.Currency))
	svc.Description = r.Description
	svc.Discount = r.Discount.ToDiscount()
	return svc
}

type AssignServiceRequest struct {
	ClientID       string             `json:"client_id" validate:"required"`
	ServiceID      string             `json:"service_id" validate:"required"`
	BillingCycle   types.BillingCycle `json:"billing_cycle,omitempty"`
	CustomPrice    *int64             `json:"custom_price,omitempty"`
	UseCustomPrice bool               `json:"use_custom_price"`
	IsRecurring    bool               `json:"is_recurring"`
	StartDate      *time.Time         `json:"start_date,omitempty"`
	EndDate        *time.Time         `json:"end_date,omitempty"`
	Notes          string             `json:"notes,omitempty"`
	ByAdmin        bool               `json:"by_admin"`
}

func (r *AssignServiceRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	if r.BillingCycle != "" {
		return r.BillingCycle.Validate()
	}
	return nil
}

func (r *AssignServiceRequest) ToNewParams(svc *serviceassignment.BillableService, now time.Time) serviceassignment.NewParams {
	params := serviceassignment.NewParams{
		ClientID:       r.ClientID,
		Service:        svc,
		BillingCycle:   r.BillingCycle,
		UseCustomPrice: r.UseCustomPrice,
		IsRecurring:    r.IsRecurring,
		StartDate:      lo.FromPtrOr(r.StartDate, now),
		EndDate:        r.EndDate,
		Notes:          r.Notes,
		ByAdmin:        r.ByAdmin,
	}
	if r.CustomPrice != nil {
		params.CustomPrice = lo.ToPtr(types.NewMoney(*r.CustomPrice, svc.Price.Currency))
	}
	return params
}

type BillableServiceResponse struct {
	*serviceassignment.BillableService
}

type ServiceAssignmentResponse struct {
	*serviceassignment.ServiceAssignment
	Price *pricing.ResolveResult `json:"price,omitempty"`
}
