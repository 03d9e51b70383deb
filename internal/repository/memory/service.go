package memory

import (
	"context"

	"github.com/flexprice/console/internal/domain/serviceassignment"
	ierr "github.com/flexprice/console/internal/errors"
	"github.com/flexprice/console/internal/types"
	"github.com/samber/lo"
)

// BillableServiceStore implements serviceassignment.BillableServiceRepository
type BillableServiceStore struct {
	*Store[*serviceassignment.BillableService]
}

func NewBillableServiceStore() *BillableServiceStore {
	return &BillableServiceStore{
		Store: NewStore[*serviceassignment.BillableService](),
	}
}

func (s *BillableServiceStore) Create(ctx context.Context, svc *serviceassignment.BillableService) error {
	if svc == nil {
		return ierr.NewError("service cannot be nil").
			WithHint("Service cannot be nil").
			Mark(ierr.ErrValidation)
	}
	return s.Store.Create(ctx, svc.ID, copyBillableService(svc))
}

func (s *BillableServiceStore) Get(ctx context.Context, id string) (*serviceassignment.BillableService, error) {
	svc, err := s.Store.Get(ctx, id)
	if err != nil {
		return nil, ierr.NewError("service not found").
			WithHint("Service not found").
			WithReportableDetails(map[string]interface{}{
				"id": id,
			}).
			Mark(ierr.ErrNotFound)
	}
	return copyBillableService(svc), nil
}

func (s *BillableServiceStore) Update(ctx context.Context, svc *serviceassignment.BillableService) error {
	if svc == nil {
		return ierr.NewError("service cannot be nil").
			WithHint("Service cannot be nil").
			Mark(ierr.ErrValidation)
	}
	return s.Store.Update(ctx, svc.ID, copyBillableService(svc))
}

func (s *BillableServiceStore) List(ctx context.Context, filter *types.QueryFilter) ([]*serviceassignment.BillableService, error) {
	if filter == nil {
		filter = types.NewNoLimitQueryFilter()
	}
	services, err := s.Store.List(ctx, filter, nil, func(i, j *serviceassignment.BillableService) bool {
		return i.Name < j.Name
	})
	if err != nil {
		return nil, err
	}
	return lo.Map(services, func(svc *serviceassignment.BillableService, _ int) *serviceassignment.BillableService {
		return copyBillableService(svc)
	}), nil
}

// ServiceAssignmentStore implements serviceassignment.Repository
type ServiceAssignmentStore struct {
	*Store[*serviceassignment.ServiceAssignment]
}

func NewServiceAssignmentStore() *ServiceAssignmentStore {
	return &ServiceAssignmentStore{
		Store: NewStore[*serviceassignment.ServiceAssignment](),
	}
}

func (s *ServiceAssignmentStore) Create(ctx context.Context, a *serviceassignment.ServiceAssignment) error {
	if a == nil {
		return ierr.NewError("service assignment cannot be nil").
			WithHint("Service assignment cannot be nil").
			Mark(ierr.ErrValidation)
	}
	return s.Store.Create(ctx, a.ID, copyServiceAssignment(a))
}

func (s *ServiceAssignmentStore) Get(ctx context.Context, id string) (*serviceassignment.ServiceAssignment, error) {
	a, err := s.Store.Get(ctx, id)
	if err != nil {
		return nil, ierr.NewError("service assignment not found").
			WithHint("Service assignment not found").
			WithReportableDetails(map[string]interface{}{
				"id": id,
			}).
			Mark(ierr.ErrNotFound)
	}
	return copyServiceAssignment(a), nil
}

func (s *ServiceAssignmentStore) Update(ctx context.Context, a *serviceassignment.ServiceAssignment) error {
	if a == nil {
		return ierr.NewError("service assignment cannot be nil").
			WithHint("Service assignment cannot be nil").
			Mark(ierr.ErrValidation)
	}
	return s.Store.Update(ctx, a.ID, copyServiceAssignment(a))
}

func (s *ServiceAssignmentStore) List(ctx context.Context, filter *types.ServiceAssignmentFilter) ([]*serviceassignment.ServiceAssignment, error) {
	if filter == nil {
		filter = types.NewServiceAssignmentFilter()
	}
	assignments, err := s.Store.List(ctx, filter, serviceAssignmentFilterFn, serviceAssignmentSortFn)
	if err != nil {
		return nil, err
	}
	return lo.Map(assignments, func(a *serviceassignment.ServiceAssignment, _ int) *serviceassignment.ServiceAssignment {
		return copyServiceAssignment(a)
	}), nil
}

func (s *ServiceAssignmentStore) Count(ctx context.Context, filter *types.ServiceAssignmentFilter) (int, error) {
	if filter == nil {
		filter = types.NewServiceAssignmentFilter()
	}
	return s.Store.Count(ctx, filter, serviceAssignmentFilterFn)
}

func serviceAssignmentFilterFn(_ context.Context, a *serviceassignment.ServiceAssignment, filter interface{}) bool {
	if a == nil {
		return false
	}
	f, ok := filter.(*types.ServiceAssignmentFilter)
	if !ok {
		return true
	}
	if f.ClientID != "" && a.ClientID != f.ClientID {
		return false
	}
	if f.ServiceID != "" && a.ServiceID != f.ServiceID {
		return false
	}
	if len(f.Statuses) > 0 && !lo.Contains(f.Statuses, a.SubscriptionStatus) {
		return false
	}
	if f.RecurringOnly && !a.IsRecurring {
		return false
	}
	return true
}

func serviceAssignmentSortFn(i, j *serviceassignment.ServiceAssignment) bool {
	if i.CreatedAt.Equal(j.CreatedAt) {
		return i.ID < j.ID
	}
	return i.CreatedAt.After(j.CreatedAt)
}
