package serviceassignment

import (
	"context"
	"strings"
	"time"

	"github.com/flexprice/console/internal/domain/discount"
	"github.com/flexprice/console/internal/domain/lifecycle"
	"github.com/flexprice/console/internal/domain/pricing"
	ierr "github.com/flexprice/console/internal/errors"
	"github.com/flexprice/console/internal/types"
	"github.com/samber/lo"
)

// BillableService is a service a client can be assigned. Price is per month
// for recurring assignments and a one-off charge otherwise.
type BillableService struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	Description string             `json:"description,omitempty"`
	Price       types.Money        `json:"price"`
	Discount    *discount.Discount `json:"discount,omitempty"`
	IsActive    bool               `json:"is_active"`

	types.BaseModel
}

// NewBillableService builds an active service.
func NewBillableService(ctx context.Context, name string, price types.Money) *BillableService {
	return &BillableService{
		ID:        types.GenerateUUIDWithPrefix(types.UUID_PREFIX_BILLABLE_SERVICE),
		Name:      name,
		Price:     price,
		IsActive:  true,
		BaseModel: types.GetDefaultBaseModel(ctx),
	}
}

func (s *BillableService) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return ierr.NewError("service name is required").
			WithHint("Please provide a service name").
			Mark(ierr.ErrValidation)
	}
	if err := types.ValidateCurrencyCode(s.Price.Currency); err != nil {
		return err
	}
	if s.Price.IsNegative() {
		return ierr.NewError("service price cannot be negative").
			WithHint("Service price must be zero or more").
			Mark(ierr.ErrValidation)
	}
	return s.Discount.Validate()
}

// ServiceAssignment binds a client to a billable service. A client may hold
// many at once.
type ServiceAssignment struct {
	ID             string             `json:"id"`
	ClientID       string             `json:"client_id"`
	ServiceID      string             `json:"service_id"`
	BillingCycle   types.BillingCycle `json:"billing_cycle"`
	Currency       string             `json:"currency"`
	CustomPrice    *types.Money       `json:"custom_price,omitempty"`
	UseCustomPrice bool               `json:"use_custom_price"`
	Discount       *discount.Discount `json:"discount,omitempty"`
	IsRecurring    bool               `json:"is_recurring"`
	// EndDate closes service delivery; after it the assignment expires like
	// ExpiresAt does.
	EndDate *time.Time `json:"end_date,omitempty"`
	Notes   string     `json:"notes,omitempty"`

	lifecycle.State
	types.BaseModel
}

// NewParams are the inputs of a new assignment.
type NewParams struct {
	ClientID       string
	Service        *BillableService
	BillingCycle   types.BillingCycle
	CustomPrice    *types.Money
	UseCustomPrice bool
	IsRecurring    bool
	StartDate      time.Time
	EndDate        *time.Time
	Notes          string
	ByAdmin        bool
}

// New validates params and snapshots the service discount.
func New(ctx context.Context, params NewParams) (*ServiceAssignment, error) {
	if strings.TrimSpace(params.ClientID) == "" {
		return nil, ierr.NewError("client_id is required").
			WithHint("Please select a client").
			Mark(ierr.ErrValidation)
	}
	if params.Service == nil {
		return nil, ierr.NewError("service is required").
			WithHint("Please select a service").
			Mark(ierr.ErrValidation)
	}
	if !params.Service.IsActive {
		return nil, ierr.NewError("service is not active").
			WithHint("Inactive services cannot be assigned").
			WithReportableDetails(map[string]any{
				"service_id": params.Service.ID,
			}).
			Mark(ierr.ErrInvalidOperation)
	}

	cycle := params.BillingCycle
	if cycle == "" {
		cycle = types.BillingCycleMonthly
	}
	if err := cycle.Validate(); err != nil {
		return nil, err
	}
	if params.EndDate != nil && !params.EndDate.After(params.StartDate) {
		return nil, ierr.NewError("end date must be after start date").
			WithHint("Choose an end date after the start date").
			Mark(ierr.ErrValidation)
	}

	a := &ServiceAssignment{
		ID:             types.GenerateUUIDWithPrefix(types.UUID_PREFIX_SERVICE_ASSIGNMENT),
		ClientID:       params.ClientID,
		ServiceID:      params.Service.ID,
		BillingCycle:   cycle,
		Currency:       params.Service.Price.Currency,
		CustomPrice:    copyMoney(params.CustomPrice),
		UseCustomPrice: params.UseCustomPrice,
		Discount:       params.Service.Discount.Copy(),
		IsRecurring:    params.IsRecurring,
		EndDate:        copyTime(params.EndDate),
		Notes:          params.Notes,
		State:          lifecycle.NewState(params.StartDate, nil, params.ByAdmin),
		BaseModel:      types.GetDefaultBaseModel(ctx),
	}

	if _, err := a.Price(params.Service, params.StartDate); err != nil {
		return nil, err
	}
	return a, nil
}

// BasePrice is the charge before custom price and discount: the monthly
// price scaled to the cycle for recurring assignments, the one-off price
// otherwise.
func (a *ServiceAssignment) BasePrice(svc *BillableService) types.Money {
	if !a.IsRecurring {
		return svc.Price
	}
	return pricing.PriceForCycle(svc.Price, nil, a.BillingCycle)
}

// Price resolves the assignment's charge against svc at asOf.
func (a *ServiceAssignment) Price(svc *BillableService, asOf time.Time) (*pricing.ResolveResult, error) {
	if svc == nil || svc.ID != a.ServiceID {
		return nil, ierr.NewError("service does not match assignment").
			WithHint("Price the assignment with its own service").
			WithReportableDetails(map[string]any{
				"assignment_id": a.ID,
				"service_id":    a.ServiceID,
			}).
			Mark(ierr.ErrInvalidOperation)
	}

	return pricing.Resolve(pricing.ResolveParams{
		BasePrice:      a.BasePrice(svc),
		CustomPrice:    a.CustomPrice,
		UseCustomPrice: a.UseCustomPrice,
		Discount:       a.Discount,
		AsOf:           asOf,
	})
}

// expiry is the earlier of ExpiresAt and EndDate.
func (a *ServiceAssignment) expiry() *time.Time {
	switch {
	case a.ExpiresAt == nil:
		return a.EndDate
	case a.EndDate == nil:
		return a.ExpiresAt
	case a.EndDate.Before(*a.ExpiresAt):
		return a.EndDate
	default:
		return a.ExpiresAt
	}
}

// RefreshStatus applies lazy expiry and reports whether the status changed.
func (a *ServiceAssignment) RefreshStatus(now time.Time) bool {
	if !lifecycle.IsExpired(a.SubscriptionStatus, a.expiry(), now) {
		return false
	}
	a.SubscriptionStatus = types.SubscriptionStatusExpired
	return true
}

func (a *ServiceAssignment) Approve(now time.Time) error {
	return a.MoveTo(types.SubscriptionStatusActive, now)
}

func (a *ServiceAssignment) Reject(now time.Time) error {
	return a.MoveTo(types.SubscriptionStatusRejected, now)
}

func (a *ServiceAssignment) Suspend(now time.Time) error {
	if a.RefreshStatus(now) {
		return expiredError(a.ID)
	}
	return a.MoveTo(types.SubscriptionStatusSuspended, now)
}

func (a *ServiceAssignment) Resume(now time.Time) error {
	if a.SubscriptionStatus != types.SubscriptionStatusSuspended {
		return lifecycle.Transition(a.SubscriptionStatus, types.SubscriptionStatusActive)
	}
	return a.MoveTo(types.SubscriptionStatusActive, now)
}

func (a *ServiceAssignment) Cancel(now time.Time) error {
	if a.RefreshStatus(now) {
		return expiredError(a.ID)
	}
	return a.MoveTo(types.SubscriptionStatusCancelled, now)
}

// IsBillable reports whether a recurring charge is due for the assignment
// at now.
func (a *ServiceAssignment) IsBillable(now time.Time) bool {
	return a.SubscriptionStatus == types.SubscriptionStatusActive &&
		!lifecycle.IsExpired(a.SubscriptionStatus, a.expiry(), now)
}

func expiredError(id string) error {
	return ierr.NewError("service assignment has expired").
		WithHint("The assignment has ended and can no longer change status").
		WithReportableDetails(map[string]any{
			"assignment_id": id,
		}).
		Mark(ierr.ErrInvalidTransition)
}

func copyMoney(m *types.Money) *types.Money {
	if m == nil {
		return nil
	}
	return lo.ToPtr(*m)
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	return lo.ToPtr(*t)
}
