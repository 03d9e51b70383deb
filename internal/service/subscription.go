package service

import (
	"context"
	"time"

	"github.com/flexprice/console/internal/api/dto"
	"github.com/flexprice/console/internal/domain/plan"
	"github.com/flexprice/console/internal/domain/subscription"
	ierr "github.com/flexprice/console/internal/errors"
	"github.com/flexprice/console/internal/publisher"
	"github.com/flexprice/console/internal/types"
	"github.com/samber/lo"
)

type SubscriptionService interface {
	// AssignSubscription creates a subscription for a client. Admin
	// assignments start active, the rest wait for approval.
	AssignSubscription(ctx context.Context, req dto.AssignSubscriptionRequest) (*dto.SubscriptionResponse, error)
	GetSubscription(ctx context.Context, id string) (*dto.SubscriptionResponse, error)
	ListSubscriptions(ctx context.Context, filter *types.SubscriptionFilter) (*dto.ListSubscriptionsResponse, error)
	ChangeSubscription(ctx context.Context, id string, req dto.ChangeSubscriptionRequest) (*dto.ChangeSubscriptionResponse, error)
	ApproveSubscription(ctx context.Context, id string) (*dto.SubscriptionResponse, error)
	RejectSubscription(ctx context.Context, id string) (*dto.SubscriptionResponse, error)
	SuspendSubscription(ctx context.Context, id string) (*dto.SubscriptionResponse, error)
	ResumeSubscription(ctx context.Context, id string) (*dto.SubscriptionResponse, error)
	CancelSubscription(ctx context.Context, id string) (*dto.SubscriptionResponse, error)
}

type subscriptionService struct {
	ServiceParams
}

func NewSubscriptionService(params ServiceParams) SubscriptionService {
	return &subscriptionService{
		ServiceParams: params,
	}
}

func (s *subscriptionService) AssignSubscription(ctx context.Context, req dto.AssignSubscriptionRequest) (*dto.SubscriptionResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	p, err := s.PlanRepo.Get(ctx, req.PlanID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if err := s.ensureNoLiveSubscription(ctx, req.ClientID, now); err != nil {
		return nil, err
	}

	sub, err := subscription.New(ctx, req.ToNewParams(p, now))
	if err != nil {
		return nil, err
	}

	if err := s.SubscriptionRepo.Create(ctx, sub); err != nil {
		return nil, err
	}

	s.Logger.WithContext(ctx).Infow("subscription assigned",
		"subscription_id", sub.ID,
		"client_id", sub.ClientID,
		"plan_id", sub.PlanID,
		"status", sub.SubscriptionStatus,
	)

	s.publishEvent(ctx, publisher.EventSubscriptionCreated, sub.ID, sub.ClientID, sub)
	if sub.SubscriptionStatus == types.SubscriptionStatusActive {
		s.publishEvent(ctx, publisher.EventSubscriptionActivated, sub.ID, sub.ClientID, sub)
	}
	return s.toResponse(sub, p, now)
}

func (s *subscriptionService) GetSubscription(ctx context.Context, id string) (*dto.SubscriptionResponse, error) {
	if id == "" {
		return nil, ierr.NewError("subscription ID is required").
			WithHint("Please provide a valid subscription ID").
			Mark(ierr.ErrValidation)
	}

	now := s.now()
	sub, err := s.load(ctx, id, now)
	if err != nil {
		return nil, err
	}

	p, err := s.PlanRepo.Get(ctx, sub.PlanID)
	if err != nil {
		return nil, err
	}
	return s.toResponse(sub, p, now)
}

func (s *subscriptionService) ListSubscriptions(ctx context.Context, filter *types.SubscriptionFilter) (*dto.ListSubscriptionsResponse, error) {
	if filter == nil {
		filter = types.NewSubscriptionFilter()
	}
	if filter.QueryFilter == nil {
		filter.QueryFilter = types.NewNoLimitQueryFilter()
	}
	if err := filter.Validate(); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Invalid filter parameters").
			Mark(ierr.ErrValidation)
	}

	subs, err := s.SubscriptionRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	count, err := s.SubscriptionRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	now := s.now()
	plans := make(map[string]*plan.Plan)
	response := &dto.ListSubscriptionsResponse{
		Items:      make([]*dto.SubscriptionResponse, 0, len(subs)),
		Pagination: types.NewPaginationResponse(count, filter.GetLimit(), filter.GetOffset()),
	}
	for _, sub := range subs {
		if err := s.refresh(ctx, sub, now); err != nil {
			return nil, err
		}

		p, ok := plans[sub.PlanID]
		if !ok {
			if p, err = s.PlanRepo.Get(ctx, sub.PlanID); err != nil {
				return nil, err
			}
			plans[sub.PlanID] = p
		}

		item, err := s.toResponse(sub, p, now)
		if err != nil {
			return nil, err
		}
		response.Items = append(response.Items, item)
	}
	return response, nil
}

func (s *subscriptionService) ChangeSubscription(ctx context.Context, id string, req dto.ChangeSubscriptionRequest) (*dto.ChangeSubscriptionResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	now := s.now()
	sub, err := s.load(ctx, id, now)
	if err != nil {
		return nil, err
	}

	current, err := s.PlanRepo.Get(ctx, sub.PlanID)
	if err != nil {
		return nil, err
	}

	var target *plan.Plan
	if req.PlanID != nil {
		if target, err = s.PlanRepo.Get(ctx, *req.PlanID); err != nil {
			return nil, err
		}
	}

	result, err := sub.ApplyChange(current, req.ToChange(target, sub.Currency), now)
	if err != nil {
		return nil, err
	}
	sub.Touch(ctx)

	if err := s.SubscriptionRepo.Update(ctx, sub); err != nil {
		return nil, err
	}
	s.publishChange(ctx, sub, result)

	return s.changeResponse(sub, lo.Ternary(target != nil, target, current), result, now)
}

func (s *subscriptionService) ApproveSubscription(ctx context.Context, id string) (*dto.SubscriptionResponse, error) {
	return s.transition(ctx, id, publisher.EventSubscriptionActivated, func(sub *subscription.Subscription, now time.Time) error {
		return sub.Approve(now)
	})
}

func (s *subscriptionService) RejectSubscription(ctx context.Context, id string) (*dto.SubscriptionResponse, error) {
	return s.transition(ctx, id, publisher.EventSubscriptionRejected, func(sub *subscription.Subscription, now time.Time) error {
		return sub.Reject(now)
	})
}

func (s *subscriptionService) SuspendSubscription(ctx context.Context, id string) (*dto.SubscriptionResponse, error) {
	return s.transition(ctx, id, publisher.EventSubscriptionSuspended, func(sub *subscription.Subscription, now time.Time) error {
		return sub.Suspend(now)
	})
}

func (s *subscriptionService) ResumeSubscription(ctx context.Context, id string) (*dto.SubscriptionResponse, error) {
	return s.transition(ctx, id, publisher.EventSubscriptionResumed, func(sub *subscription.Subscription, now time.Time) error {
		return sub.Resume(now)
	})
}

func (s *subscriptionService) CancelSubscription(ctx context.Context, id string) (*dto.SubscriptionResponse, error) {
	return s.transition(ctx, id, publisher.EventSubscriptionCancelled, func(sub *subscription.Subscription, now time.Time) error {
		return sub.Cancel(now)
	})
}

func (s *subscriptionService) transition(
	ctx context.Context,
	id string,
	eventType publisher.EventType,
	apply func(sub *subscription.Subscription, now time.Time) error,
) (*dto.SubscriptionResponse, error) {
	now := s.now()
	sub, err := s.load(ctx, id, now)
	if err != nil {
		return nil, err
	}

	from := sub.SubscriptionStatus
	if err := apply(sub, now); err != nil {
		return nil, err
	}
	sub.Touch(ctx)

	if err := s.SubscriptionRepo.Update(ctx, sub); err != nil {
		return nil, err
	}

	s.Logger.WithContext(ctx).Infow("subscription status changed",
		"subscription_id", sub.ID,
		"from", from,
		"to", sub.SubscriptionStatus,
	)
	s.publishEvent(ctx, eventType, sub.ID, sub.ClientID, sub)

	p, err := s.PlanRepo.Get(ctx, sub.PlanID)
	if err != nil {
		return nil, err
	}
	return s.toResponse(sub, p, now)
}

// load reads a subscription and persists a lazy expiry.
func (s *subscriptionService) load(ctx context.Context, id string, now time.Time) (*subscription.Subscription, error) {
	sub, err := s.SubscriptionRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.refresh(ctx, sub, now); err != nil {
		return nil, err
	}
	return sub, nil
}

func (s *subscriptionService) refresh(ctx context.Context, sub *subscription.Subscription, now time.Time) error {
	if !sub.RefreshStatus(now) {
		return nil
	}
	sub.Touch(ctx)
	if err := s.SubscriptionRepo.Update(ctx, sub); err != nil {
		return err
	}
	s.publishEvent(ctx, publisher.EventSubscriptionExpired, sub.ID, sub.ClientID, sub)
	return nil
}

// ensureNoLiveSubscription enforces one pending, active or suspended
// subscription per client.
func (s *subscriptionService) ensureNoLiveSubscription(ctx context.Context, clientID string, now time.Time) error {
	live, err := s.liveSubscription(ctx, clientID, now)
	if err != nil {
		return err
	}
	if live != nil {
		return ierr.NewError("client already has a subscription").
			WithHint("Change or cancel the current subscription instead").
			WithReportableDetails(map[string]any{
				"client_id":       clientID,
				"subscription_id": live.ID,
				"status":          live.SubscriptionStatus,
			}).
			Mark(ierr.ErrAlreadyExists)
	}
	return nil
}

// liveSubscription returns the client's non-terminal subscription, or nil.
func (s *subscriptionService) liveSubscription(ctx context.Context, clientID string, now time.Time) (*subscription.Subscription, error) {
	filter := types.NewSubscriptionFilter()
	filter.ClientID = clientID
	filter.Statuses = []types.SubscriptionStatus{
		types.SubscriptionStatusPendingApproval,
		types.SubscriptionStatusActive,
		types.SubscriptionStatusSuspended,
	}

	subs, err := s.SubscriptionRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	for _, sub := range subs {
		if err := s.refresh(ctx, sub, now); err != nil {
			return nil, err
		}
		if sub.IsLive() {
			return sub, nil
		}
	}
	return nil, nil
}

func (s *subscriptionService) publishChange(ctx context.Context, sub *subscription.Subscription, result *subscription.ChangeResult) {
	s.publishEvent(ctx, publisher.EventSubscriptionChanged, sub.ID, sub.ClientID, result)
	if result.InvoiceRequested {
		s.publishEvent(ctx, publisher.EventInvoiceRequested, sub.ID, sub.ClientID, result.Current)
	}
}

func (s *subscriptionService) toResponse(sub *subscription.Subscription, p *plan.Plan, now time.Time) (*dto.SubscriptionResponse, error) {
	price, err := sub.Price(p, now)
	if err != nil {
		return nil, err
	}
	return &dto.SubscriptionResponse{
		Subscription: sub,
		Features:     sub.EffectiveFeatures(p),
		Price:        price,
	}, nil
}

func (s *subscriptionService) changeResponse(sub *subscription.Subscription, p *plan.Plan, result *subscription.ChangeResult, now time.Time) (*dto.ChangeSubscriptionResponse, error) {
	resp, err := s.toResponse(sub, p, now)
	if err != nil {
		return nil, err
	}
	return &dto.ChangeSubscriptionResponse{
		Subscription: resp,
		Change:       result,
	}, nil
}
