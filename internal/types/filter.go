package types

import (
	ierr "github.com/flexprice/console/internal/errors"
	"github.com/samber/lo"
)

const (
	FILTER_DEFAULT_LIMIT = 50
)

// QueryFilter carries pagination shared by every list filter.
type QueryFilter struct {
	Limit  *int `json:"limit,omitempty" form:"limit" validate:"omitempty,min=1,max=1000"`
	Offset *int `json:"offset,omitempty" form:"offset" validate:"omitempty,min=0"`
}

func NewDefaultQueryFilter() *QueryFilter {
	return &QueryFilter{
		Limit:  lo.ToPtr(FILTER_DEFAULT_LIMIT),
		Offset: lo.ToPtr(0),
	}
}

func NewNoLimitQueryFilter() *QueryFilter {
	return &QueryFilter{Offset: lo.ToPtr(0)}
}

func (f *QueryFilter) Validate() error {
	if f == nil {
		return nil
	}
	if f.Limit != nil && *f.Limit < 1 {
		return ierr.NewError("limit must be positive").
			Mark(ierr.ErrValidation)
	}
	if f.Offset != nil && *f.Offset < 0 {
		return ierr.NewError("offset must be non-negative").
			Mark(ierr.ErrValidation)
	}
	return nil
}

func (f *QueryFilter) GetLimit() int {
	if f == nil || f.Limit == nil {
		return 0
	}
	return *f.Limit
}

func (f *QueryFilter) GetOffset() int {
	if f == nil || f.Offset == nil {
		return 0
	}
	return *f.Offset
}

func (f *QueryFilter) IsUnlimited() bool {
	return f == nil || f.Limit == nil
}

type PlanFilter struct {
	*QueryFilter
	PlanIDs    []string `json:"plan_ids,omitempty"`
	ActiveOnly bool     `json:"active_only,omitempty"`
}

func NewPlanFilter() *PlanFilter {
	return &PlanFilter{QueryFilter: NewDefaultQueryFilter()}
}

type SubscriptionFilter struct {
	*QueryFilter
	ClientID string               `json:"client_id,omitempty"`
	PlanID   string               `json:"plan_id,omitempty"`
	Statuses []SubscriptionStatus `json:"statuses,omitempty"`
}

func NewSubscriptionFilter() *SubscriptionFilter {
	return &SubscriptionFilter{QueryFilter: NewNoLimitQueryFilter()}
}

type ServiceAssignmentFilter struct {
	*QueryFilter
	ClientID      string               `json:"client_id,omitempty"`
	ServiceID     string               `json:"service_id,omitempty"`
	Statuses      []SubscriptionStatus `json:"statuses,omitempty"`
	RecurringOnly bool                 `json:"recurring_only,omitempty"`
}

func NewServiceAssignmentFilter() *ServiceAssignmentFilter {
	return &ServiceAssignmentFilter{QueryFilter: NewNoLimitQueryFilter()}
}

type InvoiceFilter struct {
	*QueryFilter
	ClientID string          `json:"client_id,omitempty"`
	SourceID string          `json:"source_id,omitempty"`
	Statuses []InvoiceStatus `json:"statuses,omitempty"`
}

func NewInvoiceFilter() *InvoiceFilter {
	return &InvoiceFilter{QueryFilter: NewNoLimitQueryFilter()}
}

type RequestFilter struct {
	*QueryFilter
	ClientID string          `json:"client_id,omitempty"`
	Kind     RequestKind     `json:"kind,omitempty"`
	Statuses []RequestStatus `json:"statuses,omitempty"`
}

func NewRequestFilter() *RequestFilter {
	return &RequestFilter{QueryFilter: NewDefaultQueryFilter()}
}
