package service

import (
	"context"
	"time"

	"github.com/flexprice/console/internal/api/dto"
	"github.com/flexprice/console/internal/domain/plan"
	"github.com/flexprice/console/internal/domain/request"
	"github.com/flexprice/console/internal/domain/serviceassignment"
	"github.com/flexprice/console/internal/domain/subscription"
	ierr "github.com/flexprice/console/internal/errors"
	"github.com/flexprice/console/internal/publisher"
	"github.com/flexprice/console/internal/types"
	"github.com/samber/lo"
)

// RequestService runs the client request approval workflow.
type RequestService interface {
	SubmitRequest(ctx context.Context, req dto.SubmitRequestRequest) (*dto.RequestResponse, error)
	GetRequest(ctx context.Context, id string) (*dto.RequestResponse, error)
	// ListPendingRequests returns the approval queue, oldest first.
	ListPendingRequests(ctx context.Context, filter *types.RequestFilter) (*dto.ListRequestsResponse, error)
	ApproveRequest(ctx context.Context, id string, req dto.ApproveRequestRequest) (*dto.RequestResponse, error)
	RejectRequest(ctx context.Context, id string, req dto.RejectRequestRequest) (*dto.RequestResponse, error)
	CancelRequest(ctx context.Context, id string) (*dto.RequestResponse, error)
}

type requestService struct {
	ServiceParams
}

func NewRequestService(params ServiceParams) RequestService {
	return &requestService{
		ServiceParams: params,
	}
}

func (s *requestService) SubmitRequest(ctx context.Context, req dto.SubmitRequestRequest) (*dto.RequestResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	currency, err := s.requestedItemCurrency(ctx, req)
	if err != nil {
		return nil, err
	}

	r, err := req.ToRequest(ctx, currency)
	if err != nil {
		return nil, err
	}
	if err := s.RequestRepo.Create(ctx, r); err != nil {
		return nil, err
	}

	s.Logger.WithContext(ctx).Infow("request submitted",
		"request_id", r.ID,
		"kind", r.Kind,
		"client_id", r.ClientID,
	)
	s.publishEvent(ctx, publisher.EventRequestSubmitted, r.ID, r.ClientID, r)

	return &dto.RequestResponse{Request: r}, nil
}

func (s *requestService) GetRequest(ctx context.Context, id string) (*dto.RequestResponse, error) {
	if id == "" {
		return nil, ierr.NewError("request ID is required").
			WithHint("Please provide a valid request ID").
			Mark(ierr.ErrValidation)
	}
	r, err := s.RequestRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &dto.RequestResponse{Request: r}, nil
}

func (s *requestService) ListPendingRequests(ctx context.Context, filter *types.RequestFilter) (*dto.ListRequestsResponse, error) {
	if filter == nil {
		filter = types.NewRequestFilter()
	}
	if filter.QueryFilter == nil {
		filter.QueryFilter = types.NewDefaultQueryFilter()
	}
	filter.Statuses = []types.RequestStatus{types.RequestStatusPending}

	if err := filter.Validate(); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Invalid filter parameters").
			Mark(ierr.ErrValidation)
	}

	requests, err := s.RequestRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	count, err := s.RequestRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	return &dto.ListRequestsResponse{
		Items: lo.Map(requests, func(r *request.Request, _ int) *dto.RequestResponse {
			return &dto.RequestResponse{Request: r}
		}),
		Pagination: types.NewPaginationResponse(count, filter.GetLimit(), filter.GetOffset()),
	}, nil
}

// ApproveRequest stamps the request approved and then applies it. The side
// effect is built first, so a request that cannot be applied stays pending.
// The stamp is conditional on the request still being pending, so concurrent
// approvals of one request provision at most once.
func (s *requestService) ApproveRequest(ctx context.Context, id string, req dto.ApproveRequestRequest) (*dto.RequestResponse, error) {
	r, err := s.RequestRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !r.IsPending() {
		// Let the domain report the processed state.
		return nil, r.Approve(types.GetUserID(ctx), req.AdminNotes, s.now())
	}

	now := s.now()
	var (
		effect  *approvalEffect
		errPrep error
	)
	switch r.Kind {
	case types.RequestKindService:
		effect, errPrep = s.prepareServiceAssignment(ctx, r, now)
	case types.RequestKindPlanChange:
		effect, errPrep = s.preparePlanChange(ctx, r, now)
	default:
		errPrep = ierr.NewErrorf("unsupported request kind %s", r.Kind).
			WithHint("The request kind cannot be approved").
			Mark(ierr.ErrValidation)
	}
	if errPrep != nil {
		return nil, errPrep
	}

	pending := *r
	if err := r.Approve(types.GetUserID(ctx), req.AdminNotes, now); err != nil {
		return nil, err
	}
	r.Touch(ctx)
	if err := s.RequestRepo.UpdateIfStatus(ctx, r, types.RequestStatusPending); err != nil {
		return nil, err
	}

	if err := effect.persist(ctx, s); err != nil {
		if rbErr := s.RequestRepo.UpdateIfStatus(ctx, &pending, types.RequestStatusApproved); rbErr != nil {
			s.Logger.WithContext(ctx).Errorw("failed to restore pending request",
				"request_id", r.ID,
				"error", rbErr,
			)
		}
		return nil, err
	}
	effect.publish(ctx, s)

	s.Logger.WithContext(ctx).Infow("request approved",
		"request_id", r.ID,
		"kind", r.Kind,
		"processed_by", lo.FromPtr(r.ProcessedBy),
	)
	s.publishEvent(ctx, publisher.EventRequestApproved, r.ID, r.ClientID, r)

	effect.response.Request = r
	return effect.response, nil
}

func (s *requestService) RejectRequest(ctx context.Context, id string, req dto.RejectRequestRequest) (*dto.RequestResponse, error) {
	return s.decide(ctx, id, publisher.EventRequestRejected, func(r *request.Request, now time.Time) error {
		return r.Reject(types.GetUserID(ctx), req.Reason, now)
	})
}

func (s *requestService) CancelRequest(ctx context.Context, id string) (*dto.RequestResponse, error) {
	return s.decide(ctx, id, publisher.EventRequestCancelled, func(r *request.Request, now time.Time) error {
		return r.Cancel(types.GetUserID(ctx), now)
	})
}

func (s *requestService) decide(
	ctx context.Context,
	id string,
	eventType publisher.EventType,
	apply func(r *request.Request, now time.Time) error,
) (*dto.RequestResponse, error) {
	r, err := s.RequestRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := apply(r, s.now()); err != nil {
		return nil, err
	}
	r.Touch(ctx)
	if err := s.RequestRepo.UpdateIfStatus(ctx, r, types.RequestStatusPending); err != nil {
		return nil, err
	}

	s.Logger.WithContext(ctx).Infow("request processed",
		"request_id", r.ID,
		"status", r.RequestStatus,
	)
	s.publishEvent(ctx, eventType, r.ID, r.ClientID, r)
	return &dto.RequestResponse{Request: r}, nil
}

// requestedItemCurrency checks the requested plan or service exists and
// returns its currency.
func (s *requestService) requestedItemCurrency(ctx context.Context, req dto.SubmitRequestRequest) (string, error) {
	switch req.Kind {
	case types.RequestKindPlanChange:
		if req.PlanID == "" {
			return "", nil
		}
		p, err := s.PlanRepo.Get(ctx, req.PlanID)
		if err != nil {
			return "", err
		}
		return p.MonthlyPrice.Currency, nil
	case types.RequestKindService:
		if req.ServiceID == "" {
			return "", nil
		}
		svc, err := s.BillableServiceRepo.Get(ctx, req.ServiceID)
		if err != nil {
			return "", err
		}
		return svc.Price.Currency, nil
	}
	return "", nil
}

// approvalEffect is the unsaved outcome of approving a request.
type approvalEffect struct {
	assignment *serviceassignment.ServiceAssignment

	subscription *subscription.Subscription
	plan         *plan.Plan
	change       *subscription.ChangeResult
	created      bool

	response *dto.RequestResponse
}

func (s *requestService) prepareServiceAssignment(ctx context.Context, r *request.Request, now time.Time) (*approvalEffect, error) {
	svc, err := s.BillableServiceRepo.Get(ctx, r.Item.ServiceID)
	if err != nil {
		return nil, err
	}

	a, err := serviceassignment.New(ctx, serviceassignment.NewParams{
		ClientID:       r.ClientID,
		Service:        svc,
		BillingCycle:   lo.FromPtr(r.Item.BillingCycle),
		CustomPrice:    r.Item.CustomPrice,
		UseCustomPrice: r.Item.CustomPrice != nil,
		IsRecurring:    r.Item.IsRecurring,
		StartDate:      now,
		Notes:          lo.FromPtr(r.Notes),
		ByAdmin:        true,
	})
	if err != nil {
		return nil, err
	}
	item, err := toServiceAssignmentResponse(a, svc, now)
	if err != nil {
		return nil, err
	}
	return &approvalEffect{
		assignment: a,
		response:   &dto.RequestResponse{ServiceAssignment: item},
	}, nil
}

// preparePlanChange activates or re-prices the client's live subscription,
// or starts a new active one when the client has none.
func (s *requestService) preparePlanChange(ctx context.Context, r *request.Request, now time.Time) (*approvalEffect, error) {
	target, err := s.PlanRepo.Get(ctx, r.Item.PlanID)
	if err != nil {
		return nil, err
	}

	subs := &subscriptionService{ServiceParams: s.ServiceParams}
	live, err := subs.liveSubscription(ctx, r.ClientID, now)
	if err != nil {
		return nil, err
	}

	if live == nil {
		sub, err := subscription.New(ctx, subscription.NewParams{
			ClientID:       r.ClientID,
			Plan:           target,
			BillingCycle:   lo.FromPtrOr(r.Item.BillingCycle, types.BillingCycleMonthly),
			CustomPrice:    r.Item.CustomPrice,
			UseCustomPrice: r.Item.CustomPrice != nil,
			StartDate:      now,
			ByAdmin:        true,
		})
		if err != nil {
			return nil, err
		}
		current, err := sub.Price(target, now)
		if err != nil {
			return nil, err
		}
		return s.subscriptionEffect(&approvalEffect{
			subscription: sub,
			plan:         target,
			change:       &subscription.ChangeResult{Current: current, InvoiceRequested: true},
			created:      true,
		}, now)
	}

	current, err := s.PlanRepo.Get(ctx, live.PlanID)
	if err != nil {
		return nil, err
	}

	change := subscription.Change{
		Plan:         target,
		BillingCycle: r.Item.BillingCycle,
		CustomPrice:  r.Item.CustomPrice,
	}
	if r.Item.CustomPrice != nil {
		change.UseCustomPrice = lo.ToPtr(true)
	}

	result, err := live.ActivateOrChangePlan(current, change, now)
	if err != nil {
		return nil, err
	}
	live.Touch(ctx)
	return s.subscriptionEffect(&approvalEffect{
		subscription: live,
		plan:         target,
		change:       result,
	}, now)
}

func (s *requestService) subscriptionEffect(e *approvalEffect, now time.Time) (*approvalEffect, error) {
	subs := &subscriptionService{ServiceParams: s.ServiceParams}
	change, err := subs.changeResponse(e.subscription, e.plan, e.change, now)
	if err != nil {
		return nil, err
	}
	e.response = &dto.RequestResponse{
		Subscription: change.Subscription,
		Change:       change,
	}
	return e, nil
}

// persist saves the effect. Nothing is published until it succeeds.
func (e *approvalEffect) persist(ctx context.Context, s *requestService) error {
	switch {
	case e.assignment != nil:
		return s.ServiceAssignmentRepo.Create(ctx, e.assignment)
	case e.created:
		return s.SubscriptionRepo.Create(ctx, e.subscription)
	default:
		return s.SubscriptionRepo.Update(ctx, e.subscription)
	}
}

func (e *approvalEffect) publish(ctx context.Context, s *requestService) {
	if a := e.assignment; a != nil {
		s.publishEvent(ctx, publisher.EventServiceAssignmentCreated, a.ID, a.ClientID, a)
		return
	}

	sub := e.subscription
	switch {
	case e.created:
		s.publishEvent(ctx, publisher.EventSubscriptionCreated, sub.ID, sub.ClientID, sub)
		s.publishEvent(ctx, publisher.EventSubscriptionActivated, sub.ID, sub.ClientID, sub)
	case e.change.Previous == nil:
		s.publishEvent(ctx, publisher.EventSubscriptionActivated, sub.ID, sub.ClientID, sub)
	}

	subs := &subscriptionService{ServiceParams: s.ServiceParams}
	subs.publishChange(ctx, sub, e.change)
}
