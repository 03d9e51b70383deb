package memory

import (
	"context"

	"github.com/flexprice/console/internal/domain/plan"
	ierr "github.com/flexprice/console/internal/errors"
	"github.com/flexprice/console/internal/types"
	"github.com/samber/lo"
)

// PlanStore implements plan.Repository
type PlanStore struct {
	*Store[*plan.Plan]
}

func NewPlanStore() *PlanStore {
	return &PlanStore{
		Store: NewStore[*plan.Plan](),
	}
}

func (s *PlanStore) Create(ctx context.Context, p *plan.Plan) error {
	if p == nil {
		return ierr.NewError("plan cannot be nil").
			WithHint("Plan cannot be nil").
			Mark(ierr.ErrValidation)
	}
	return s.Store.Create(ctx, p.ID, copyPlan(p))
}

func (s *PlanStore) Get(ctx context.Context, id string) (*plan.Plan, error) {
	p, err := s.Store.Get(ctx, id)
	if err != nil {
		return nil, ierr.NewError("plan not found").
			WithHint("Plan not found").
			WithReportableDetails(map[string]interface{}{
				"id": id,
			}).
			Mark(ierr.ErrNotFound)
	}
	return copyPlan(p), nil
}

func (s *PlanStore) List(ctx context.Context, filter *types.PlanFilter) ([]*plan.Plan, error) {
	if filter == nil {
		filter = types.NewPlanFilter()
	}
	plans, err := s.Store.List(ctx, filter, planFilterFn, planSortFn)
	if err != nil {
		return nil, err
	}
	return lo.Map(plans, func(p *plan.Plan, _ int) *plan.Plan { return copyPlan(p) }), nil
}

func (s *PlanStore) Count(ctx context.Context, filter *types.PlanFilter) (int, error) {
	if filter == nil {
		filter = types.NewPlanFilter()
	}
	return s.Store.Count(ctx, filter, planFilterFn)
}

func (s *PlanStore) Update(ctx context.Context, p *plan.Plan) error {
	if p == nil {
		return ierr.NewError("plan cannot be nil").
			WithHint("Plan cannot be nil").
			Mark(ierr.ErrValidation)
	}
	return s.Store.Update(ctx, p.ID, copyPlan(p))
}

func planFilterFn(_ context.Context, p *plan.Plan, filter interface{}) bool {
	if p == nil {
		return false
	}
	f, ok := filter.(*types.PlanFilter)
	if !ok {
		return true
	}
	if len(f.PlanIDs) > 0 && !lo.Contains(f.PlanIDs, p.ID) {
		return false
	}
	if f.ActiveOnly && !p.IsActive {
		return false
	}
	return true
}

// planSortFn orders by created_at desc, then id.
func planSortFn(i, j *plan.Plan) bool {
	if i.CreatedAt.Equal(j.CreatedAt) {
		return i.ID < j.ID
	}
	return i.CreatedAt.After(j.CreatedAt)
}
