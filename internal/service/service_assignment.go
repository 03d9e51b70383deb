package service

import (
	"context"
	"time"

	"github.com/flexprice/console/internal/api/dto"
	"github.com/flexprice/console/internal/domain/serviceassignment"
	ierr "github.com/flexprice/console/internal/errors"
	"github.com/flexprice/console/internal/publisher"
	"github.com/flexprice/console/internal/types"
)

// ServiceAssignmentService manages the billable service catalog and the
// services assigned to clients.
type ServiceAssignmentService interface {
	CreateBillableService(ctx context.Context, req dto.CreateBillableServiceRequest) (*dto.BillableServiceResponse, error)
	GetBillableService(ctx context.Context, id string) (*dto.BillableServiceResponse, error)
	DeactivateBillableService(ctx context.Context, id string) error

	AssignService(ctx context.Context, req dto.AssignServiceRequest) (*dto.ServiceAssignmentResponse, error)
	GetServiceAssignment(ctx context.Context, id string) (*dto.ServiceAssignmentResponse, error)
	ListServiceAssignments(ctx context.Context, filter *types.ServiceAssignmentFilter) ([]*dto.ServiceAssignmentResponse, error)
	SuspendServiceAssignment(ctx context.Context, id string) (*dto.ServiceAssignmentResponse, error)
	ResumeServiceAssignment(ctx context.Context, id string) (*dto.ServiceAssignmentResponse, error)
	CancelServiceAssignment(ctx context.Context, id string) (*dto.ServiceAssignmentResponse, error)
}

type serviceAssignmentService struct {
	ServiceParams
}

func NewServiceAssignmentService(params ServiceParams) ServiceAssignmentService {
	return &serviceAssignmentService{
		ServiceParams: params,
	}
}

func (s *serviceAssignmentService) CreateBillableService(ctx context.Context, req dto.CreateBillableServiceRequest) (*dto.BillableServiceResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	svc := req.ToBillableService(ctx)
	if err := svc.Validate(); err != nil {
		return nil, err
	}
	if err := s.BillableServiceRepo.Create(ctx, svc); err != nil {
		return nil, err
	}
	return &dto.BillableServiceResponse{BillableService: svc}, nil
}

func (s *serviceAssignmentService) GetBillableService(ctx context.Context, id string) (*dto.BillableServiceResponse, error) {
	svc, err := s.BillableServiceRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &dto.BillableServiceResponse{BillableService: svc}, nil
}

func (s *serviceAssignmentService) DeactivateBillableService(ctx context.Context, id string) error {
	svc, err := s.BillableServiceRepo.Get(ctx, id)
	if err != nil {
		return err
	}
	if !svc.IsActive {
		return nil
	}
	svc.IsActive = false
	svc.Touch(ctx)
	return s.BillableServiceRepo.Update(ctx, svc)
}

func (s *serviceAssignmentService) AssignService(ctx context.Context, req dto.AssignServiceRequest) (*dto.ServiceAssignmentResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	svc, err := s.BillableServiceRepo.Get(ctx, req.ServiceID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	a, err := serviceassignment.New(ctx, req.ToNewParams(svc, now))
	if err != nil {
		return nil, err
	}
	if err := s.ServiceAssignmentRepo.Create(ctx, a); err != nil {
		return nil, err
	}

	s.Logger.WithContext(ctx).Infow("service assigned",
		"assignment_id", a.ID,
		"client_id", a.ClientID,
		"service_id", a.ServiceID,
		"status", a.SubscriptionStatus,
	)
	s.publishEvent(ctx, publisher.EventServiceAssignmentCreated, a.ID, a.ClientID, a)

	return toServiceAssignmentResponse(a, svc, now)
}

func (s *serviceAssignmentService) GetServiceAssignment(ctx context.Context, id string) (*dto.ServiceAssignmentResponse, error) {
	now := s.now()
	a, err := s.load(ctx, id, now)
	if err != nil {
		return nil, err
	}
	svc, err := s.BillableServiceRepo.Get(ctx, a.ServiceID)
	if err != nil {
		return nil, err
	}
	return toServiceAssignmentResponse(a, svc, now)
}

func (s *serviceAssignmentService) ListServiceAssignments(ctx context.Context, filter *types.ServiceAssignmentFilter) ([]*dto.ServiceAssignmentResponse, error) {
	if filter == nil {
		filter = types.NewServiceAssignmentFilter()
	}

	assignments, err := s.ServiceAssignmentRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	now := s.now()
	services := make(map[string]*serviceassignment.BillableService)
	items := make([]*dto.ServiceAssignmentResponse, 0, len(assignments))
	for _, a := range assignments {
		if err := s.refresh(ctx, a, now); err != nil {
			return nil, err
		}
		svc, ok := services[a.ServiceID]
		if !ok {
			if svc, err = s.BillableServiceRepo.Get(ctx, a.ServiceID); err != nil {
				return nil, err
			}
			services[a.ServiceID] = svc
		}
		item, err := toServiceAssignmentResponse(a, svc, now)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

func (s *serviceAssignmentService) SuspendServiceAssignment(ctx context.Context, id string) (*dto.ServiceAssignmentResponse, error) {
	return s.transition(ctx, id, func(a *serviceassignment.ServiceAssignment, now time.Time) error {
		return a.Suspend(now)
	})
}

func (s *serviceAssignmentService) ResumeServiceAssignment(ctx context.Context, id string) (*dto.ServiceAssignmentResponse, error) {
	return s.transition(ctx, id, func(a *serviceassignment.ServiceAssignment, now time.Time) error {
		return a.Resume(now)
	})
}

func (s *serviceAssignmentService) CancelServiceAssignment(ctx context.Context, id string) (*dto.ServiceAssignmentResponse, error) {
	return s.transition(ctx, id, func(a *serviceassignment.ServiceAssignment, now time.Time) error {
		return a.Cancel(now)
	})
}

func (s *serviceAssignmentService) transition(
	ctx context.Context,
	id string,
	apply func(a *serviceassignment.ServiceAssignment, now time.Time) error,
) (*dto.ServiceAssignmentResponse, error) {
	now := s.now()
	a, err := s.load(ctx, id, now)
	if err != nil {
		return nil, err
	}

	from := a.SubscriptionStatus
	if err := apply(a, now); err != nil {
		return nil, err
	}
	a.Touch(ctx)
	if err := s.ServiceAssignmentRepo.Update(ctx, a); err != nil {
		return nil, err
	}

	s.Logger.WithContext(ctx).Infow("service assignment status changed",
		"assignment_id", a.ID,
		"from", from,
		"to", a.SubscriptionStatus,
	)

	svc, err := s.BillableServiceRepo.Get(ctx, a.ServiceID)
	if err != nil {
		return nil, err
	}
	return toServiceAssignmentResponse(a, svc, now)
}

func (s *serviceAssignmentService) load(ctx context.Context, id string, now time.Time) (*serviceassignment.ServiceAssignment, error) {
	if id == "" {
		return nil, ierr.NewError("service assignment ID is required").
			WithHint("Please provide a valid service assignment ID").
			Mark(ierr.ErrValidation)
	}
	a, err := s.ServiceAssignmentRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.refresh(ctx, a, now); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *serviceAssignmentService) refresh(ctx context.Context, a *serviceassignment.ServiceAssignment, now time.Time) error {
	if !a.RefreshStatus(now) {
		return nil
	}
	a.Touch(ctx)
	return s.ServiceAssignmentRepo.Update(ctx, a)
}

func toServiceAssignmentResponse(a *serviceassignment.ServiceAssignment, svc *serviceassignment.BillableService, now time.Time) (*dto.ServiceAssignmentResponse, error) {
	price, err := a.Price(svc, now)
	if err != nil {
		return nil, err
	}
	return &dto.ServiceAssignmentResponse{
		ServiceAssignment: a,
		Price:             price,
	}, nil
}
