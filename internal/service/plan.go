package service

import (
	"context"

	"github.com/flexprice/console/internal/api/dto"
	"github.com/flexprice/console/internal/domain/plan"
	"github.com/flexprice/console/internal/domain/pricing"
	ierr "github.com/flexprice/console/internal/errors"
	"github.com/flexprice/console/internal/types"
)

type PlanService interface {
	CreatePlan(ctx context.Context, req dto.CreatePlanRequest) (*dto.PlanResponse, error)
	GetPlan(ctx context.Context, id string) (*dto.PlanResponse, error)
	ListPlans(ctx context.Context, filter *types.PlanFilter) (*dto.ListPlansResponse, error)
	UpdatePlan(ctx context.Context, id string, req dto.UpdatePlanRequest) (*dto.PlanResponse, error)
	DeactivatePlan(ctx context.Context, id string) error
}

type planService struct {
	ServiceParams
}

func NewPlanService(params ServiceParams) PlanService {
	return &planService{
		ServiceParams: params,
	}
}

func (s *planService) CreatePlan(ctx context.Context, req dto.CreatePlanRequest) (*dto.PlanResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	p := req.ToPlan(ctx)
	if err := p.Validate(); err != nil {
		return nil, err
	}

	if err := s.PlanRepo.Create(ctx, p); err != nil {
		return nil, err
	}

	s.Logger.WithContext(ctx).Infow("plan created", "plan_id", p.ID, "name", p.Name)
	return s.toResponse(p)
}

func (s *planService) GetPlan(ctx context.Context, id string) (*dto.PlanResponse, error) {
	if id == "" {
		return nil, ierr.NewError("plan ID is required").
			WithHint("Please provide a valid plan ID").
			Mark(ierr.ErrValidation)
	}

	p, err := s.PlanRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.toResponse(p)
}

func (s *planService) ListPlans(ctx context.Context, filter *types.PlanFilter) (*dto.ListPlansResponse, error) {
	if filter == nil {
		filter = types.NewPlanFilter()
	}
	if filter.QueryFilter == nil {
		filter.QueryFilter = types.NewDefaultQueryFilter()
	}

	if err := filter.Validate(); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Invalid filter parameters").
			Mark(ierr.ErrValidation)
	}

	plans, err := s.PlanRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	count, err := s.PlanRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	response := &dto.ListPlansResponse{
		Items: make([]*dto.PlanResponse, 0, len(plans)),
		Pagination: types.NewPaginationResponse(
			count,
			filter.GetLimit(),
			filter.GetOffset(),
		),
	}
	for _, p := range plans {
		item, err := s.toResponse(p)
		if err != nil {
			return nil, err
		}
		response.Items = append(response.Items, item)
	}
	return response, nil
}

func (s *planService) UpdatePlan(ctx context.Context, id string, req dto.UpdatePlanRequest) (*dto.PlanResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	p, err := s.PlanRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	// Existing subscriptions keep the discount they snapshotted.
	req.Apply(p)
	if err := p.Validate(); err != nil {
		return nil, err
	}
	p.Touch(ctx)

	if err := s.PlanRepo.Update(ctx, p); err != nil {
		return nil, err
	}
	return s.toResponse(p)
}

func (s *planService) DeactivatePlan(ctx context.Context, id string) error {
	p, err := s.PlanRepo.Get(ctx, id)
	if err != nil {
		return err
	}
	if !p.IsActive {
		return nil
	}

	p.Deactivate(ctx)
	if err := s.PlanRepo.Update(ctx, p); err != nil {
		return err
	}

	s.Logger.WithContext(ctx).Infow("plan deactivated", "plan_id", p.ID)
	return nil
}

func (s *planService) toResponse(p *plan.Plan) (*dto.PlanResponse, error) {
	quote, err := pricing.QuotePlan(p, s.now(), s.Config.Pricing.FixedDiscountProration)
	if err != nil {
		return nil, err
	}
	return &dto.PlanResponse{
		Plan:                 p,
		EffectiveYearlyPrice: pricing.EffectiveYearlyPrice(p),
		Quote:                quote,
	}, nil
}
