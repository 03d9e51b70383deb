package service

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/flexprice/console/internal/api/dto"
	"github.com/flexprice/console/internal/domain/plan"
	"github.com/flexprice/console/internal/domain/request"
	"github.com/flexprice/console/internal/domain/serviceassignment"
	ierr "github.com/flexprice/console/internal/errors"
	"github.com/flexprice/console/internal/repository/memory"
	"github.com/flexprice/console/internal/testutil"
	"github.com/flexprice/console/internal/types"
	"github.com/samber/lo"
	"github.com/sourcegraph/conc"
	"github.com/stretchr/testify/suite"
)

// stampFailingRequestStore refuses every conditional update.
type stampFailingRequestStore struct {
	*memory.RequestStore
}

func (s *stampFailingRequestStore) UpdateIfStatus(context.Context, *request.Request, types.RequestStatus) error {
	return ierr.NewError("request store unavailable").
		WithHint("Please retry").
		Mark(ierr.ErrInternal)
}

// createFailingAssignmentStore refuses to create assignments.
type createFailingAssignmentStore struct {
	*memory.ServiceAssignmentStore
}

func (s *createFailingAssignmentStore) Create(context.Context, *serviceassignment.ServiceAssignment) error {
	return ierr.NewError("assignment store unavailable").
		WithHint("Please retry").
		Mark(ierr.ErrInternal)
}

type RequestServiceSuite struct {
	testutil.BaseServiceTestSuite
	service       RequestService
	subscriptions SubscriptionService
	plan          *plan.Plan
	billable      *serviceassignment.BillableService
}

func TestRequestService(t *testing.T) {
	suite.Run(t, new(RequestServiceSuite))
}

func (s *RequestServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	params := newTestServiceParams(&s.BaseServiceTestSuite)
	s.service = NewRequestService(params)
	s.subscriptions = NewSubscriptionService(params)
	s.plan = createTestPlan(&s.BaseServiceTestSuite, "Pro", 10000)
	s.billable = createTestService(&s.BaseServiceTestSuite, "Backups", 2500)
}

func (s *RequestServiceSuite) submitPlanChange(clientID, planID string) *dto.RequestResponse {
	resp, err := s.service.SubmitRequest(s.GetContext(), dto.SubmitRequestRequest{
		Kind:     types.RequestKindPlanChange,
		ClientID: clientID,
		PlanID:   planID,
	})
	s.Require().NoError(err)
	return resp
}

func (s *RequestServiceSuite) TestSubmitRequest() {
	s.Run("service request", func() {
		resp, err := s.service.SubmitRequest(s.GetContext(), dto.SubmitRequestRequest{
			Kind:        types.RequestKindService,
			ClientID:    "client_1",
			ServiceID:   s.billable.ID,
			CustomPrice: lo.ToPtr(int64(2000)),
			IsRecurring: true,
			Notes:       lo.ToPtr("please add backups"),
		})
		s.NoError(err)
		s.Equal(types.RequestStatusPending, resp.RequestStatus)
		s.Equal("usd", resp.Item.CustomPrice.Currency)
		s.Nil(resp.ProcessedAt)
	})

	s.Run("plan change without a plan", func() {
		_, err := s.service.SubmitRequest(s.GetContext(), dto.SubmitRequestRequest{
			Kind:     types.RequestKindPlanChange,
			ClientID: "client_1",
		})
		s.True(ierr.IsValidation(err))
	})

	s.Run("unknown service", func() {
		_, err := s.service.SubmitRequest(s.GetContext(), dto.SubmitRequestRequest{
			Kind:      types.RequestKindService,
			ClientID:  "client_1",
			ServiceID: "missing",
		})
		s.True(ierr.IsNotFound(err))
	})
}

func (s *RequestServiceSuite) TestApproveServiceRequest() {
	submitted, err := s.service.SubmitRequest(s.GetContext(), dto.SubmitRequestRequest{
		Kind:         types.RequestKindService,
		ClientID:     "client_1",
		ServiceID:    s.billable.ID,
		BillingCycle: lo.ToPtr(types.BillingCycleQuarterly),
		IsRecurring:  true,
	})
	s.NoError(err)

	approved, err := s.service.ApproveRequest(s.GetContext(), submitted.ID, dto.ApproveRequestRequest{
		AdminNotes: lo.ToPtr("welcome"),
	})
	s.NoError(err)
	s.Equal(types.RequestStatusApproved, approved.RequestStatus)
	s.Equal("user_test", lo.FromPtr(approved.ProcessedBy))
	s.Equal(s.GetNow(), lo.FromPtr(approved.ProcessedAt))
	s.Equal("welcome", lo.FromPtr(approved.AdminNotes))

	s.Require().NotNil(approved.ServiceAssignment)
	s.Equal(types.SubscriptionStatusActive, approved.ServiceAssignment.SubscriptionStatus)
	s.Equal(int64(7500), approved.ServiceAssignment.Price.FinalPrice.Amount)

	stored, err := s.GetStores().ServiceAssignmentRepo.Get(s.GetContext(), approved.ServiceAssignment.ID)
	s.NoError(err)
	s.Equal("client_1", stored.ClientID)

	_, err = s.service.ApproveRequest(s.GetContext(), submitted.ID, dto.ApproveRequestRequest{})
	s.True(ierr.IsAlreadyProcessed(err))
}

func (s *RequestServiceSuite) TestApprovePlanChangeCreatesSubscription() {
	submitted := s.submitPlanChange("client_1", s.plan.ID)

	approved, err := s.service.ApproveRequest(s.GetContext(), submitted.ID, dto.ApproveRequestRequest{})
	s.NoError(err)
	s.Require().NotNil(approved.Subscription)
	s.Equal(types.SubscriptionStatusActive, approved.Subscription.SubscriptionStatus)
	s.Equal(types.BillingCycleMonthly, approved.Subscription.BillingCycle)
	s.True(approved.Change.Change.InvoiceRequested)
}

func (s *RequestServiceSuite) TestApprovePlanChangeActivatesPending() {
	pending, err := s.subscriptions.AssignSubscription(s.GetContext(), dto.AssignSubscriptionRequest{
		ClientID:     "client_1",
		PlanID:       s.plan.ID,
		BillingCycle: types.BillingCycleMonthly,
	})
	s.NoError(err)

	enterprise := createTestPlan(&s.BaseServiceTestSuite, "Enterprise", 30000)
	submitted := s.submitPlanChange("client_1", enterprise.ID)

	approved, err := s.service.ApproveRequest(s.GetContext(), submitted.ID, dto.ApproveRequestRequest{})
	s.NoError(err)
	s.Equal(pending.ID, approved.Subscription.ID)
	s.Equal(enterprise.ID, approved.Subscription.PlanID)
	s.Equal(types.SubscriptionStatusActive, approved.Subscription.SubscriptionStatus)
	s.Nil(approved.Change.Change.Previous)
	s.Equal(int64(30000), approved.Change.Change.Current.FinalPrice.Amount)
}

func (s *RequestServiceSuite) TestApprovePlanChangeRepricesActive() {
	active, err := s.subscriptions.AssignSubscription(s.GetContext(), dto.AssignSubscriptionRequest{
		ClientID:     "client_1",
		PlanID:       s.plan.ID,
		BillingCycle: types.BillingCycleMonthly,
		ByAdmin:      true,
	})
	s.NoError(err)

	submitted, err := s.service.SubmitRequest(s.GetContext(), dto.SubmitRequestRequest{
		Kind:        types.RequestKindPlanChange,
		ClientID:    "client_1",
		PlanID:      s.plan.ID,
		CustomPrice: lo.ToPtr(int64(8000)),
	})
	s.NoError(err)

	approved, err := s.service.ApproveRequest(s.GetContext(), submitted.ID, dto.ApproveRequestRequest{})
	s.NoError(err)
	s.Equal(active.ID, approved.Subscription.ID)
	s.Equal(int64(10000), approved.Change.Change.Previous.FinalPrice.Amount)
	s.Equal(int64(8000), approved.Change.Change.Current.FinalPrice.Amount)
	s.True(approved.Change.Change.InvoiceRequested)
}

func (s *RequestServiceSuite) TestFailedApprovalLeavesRequestPending() {
	legacy := createTestPlan(&s.BaseServiceTestSuite, "Legacy", 100)
	submitted := s.submitPlanChange("client_1", legacy.ID)

	legacy.Deactivate(s.GetContext())
	s.NoError(s.GetStores().PlanRepo.Update(s.GetContext(), legacy))

	_, err := s.service.ApproveRequest(s.GetContext(), submitted.ID, dto.ApproveRequestRequest{})
	s.True(ierr.IsInvalidOperation(err))

	stored, err := s.GetStores().RequestRepo.Get(s.GetContext(), submitted.ID)
	s.NoError(err)
	s.Equal(types.RequestStatusPending, stored.RequestStatus)
	s.Nil(stored.ProcessedBy)

	subs, err := s.GetStores().SubscriptionRepo.List(s.GetContext(), nil)
	s.NoError(err)
	s.Empty(subs)
}

func (s *RequestServiceSuite) submitServiceRequest(clientID string) *dto.RequestResponse {
	resp, err := s.service.SubmitRequest(s.GetContext(), dto.SubmitRequestRequest{
		Kind:        types.RequestKindService,
		ClientID:    clientID,
		ServiceID:   s.billable.ID,
		IsRecurring: true,
	})
	s.Require().NoError(err)
	return resp
}

func (s *RequestServiceSuite) TestConcurrentApprovalProvisionsOnce() {
	const (
		requests  = 50
		approvers = 8
	)

	for i := 0; i < requests; i++ {
		submitted := s.submitServiceRequest("client_1")

		var (
			wg        conc.WaitGroup
			approved  atomic.Int32
			processed atomic.Int32
		)
		for j := 0; j < approvers; j++ {
			wg.Go(func() {
				_, err := s.service.ApproveRequest(s.GetContext(), submitted.ID, dto.ApproveRequestRequest{})
				switch {
				case err == nil:
					approved.Add(1)
				case ierr.IsAlreadyProcessed(err):
					processed.Add(1)
				}
			})
		}
		wg.Wait()

		s.Equal(int32(1), approved.Load())
		s.Equal(int32(approvers-1), processed.Load())
	}

	count, err := s.GetStores().ServiceAssignmentRepo.Count(s.GetContext(), nil)
	s.NoError(err)
	s.Equal(requests, count)
}

func (s *RequestServiceSuite) TestApprovalStampFailureProvisionsNothing() {
	params := newTestServiceParams(&s.BaseServiceTestSuite)
	params.RequestRepo = &stampFailingRequestStore{RequestStore: s.GetStores().RequestRepo}
	svc := NewRequestService(params)

	submitted := s.submitServiceRequest("client_1")

	_, err := svc.ApproveRequest(s.GetContext(), submitted.ID, dto.ApproveRequestRequest{})
	s.True(ierr.IsInternal(err))

	count, err := s.GetStores().ServiceAssignmentRepo.Count(s.GetContext(), nil)
	s.NoError(err)
	s.Zero(count)

	stored, err := s.GetStores().RequestRepo.Get(s.GetContext(), submitted.ID)
	s.NoError(err)
	s.Equal(types.RequestStatusPending, stored.RequestStatus)
}

func (s *RequestServiceSuite) TestApprovalEffectFailureRestoresPending() {
	params := newTestServiceParams(&s.BaseServiceTestSuite)
	params.ServiceAssignmentRepo = &createFailingAssignmentStore{ServiceAssignmentStore: s.GetStores().ServiceAssignmentRepo}
	svc := NewRequestService(params)

	submitted := s.submitServiceRequest("client_1")

	_, err := svc.ApproveRequest(s.GetContext(), submitted.ID, dto.ApproveRequestRequest{})
	s.True(ierr.IsInternal(err))

	stored, err := s.GetStores().RequestRepo.Get(s.GetContext(), submitted.ID)
	s.NoError(err)
	s.Equal(types.RequestStatusPending, stored.RequestStatus)
	s.Nil(stored.ProcessedBy)
	s.Nil(stored.ProcessedAt)

	// A retry against a healthy store goes through.
	approved, err := s.service.ApproveRequest(s.GetContext(), submitted.ID, dto.ApproveRequestRequest{})
	s.NoError(err)
	s.Equal(types.RequestStatusApproved, approved.RequestStatus)
}

func (s *RequestServiceSuite) TestRejectRequest() {
	submitted := s.submitPlanChange("client_1", s.plan.ID)

	_, err := s.service.RejectRequest(s.GetContext(), submitted.ID, dto.RejectRequestRequest{Reason: "  "})
	s.True(ierr.Is(err, ierr.ErrMissingRejectionReason))

	stored, err := s.GetStores().RequestRepo.Get(s.GetContext(), submitted.ID)
	s.NoError(err)
	s.Equal(types.RequestStatusPending, stored.RequestStatus)

	rejected, err := s.service.RejectRequest(s.GetContext(), submitted.ID, dto.RejectRequestRequest{Reason: "budget"})
	s.NoError(err)
	s.Equal(types.RequestStatusRejected, rejected.RequestStatus)
	s.Equal("budget", lo.FromPtr(rejected.AdminNotes))

	_, err = s.service.CancelRequest(s.GetContext(), submitted.ID)
	s.True(ierr.IsAlreadyProcessed(err))
}

func (s *RequestServiceSuite) TestCancelRequest() {
	submitted := s.submitPlanChange("client_1", s.plan.ID)

	cancelled, err := s.service.CancelRequest(s.GetContext(), submitted.ID)
	s.NoError(err)
	s.Equal(types.RequestStatusCancelled, cancelled.RequestStatus)

	_, err = s.service.ApproveRequest(s.GetContext(), submitted.ID, dto.ApproveRequestRequest{})
	s.True(ierr.IsAlreadyProcessed(err))
}

func (s *RequestServiceSuite) TestListPendingRequests() {
	first := s.submitPlanChange("client_1", s.plan.ID)
	second := s.submitPlanChange("client_2", s.plan.ID)
	third := s.submitPlanChange("client_3", s.plan.ID)

	_, err := s.service.CancelRequest(s.GetContext(), second.ID)
	s.NoError(err)

	resp, err := s.service.ListPendingRequests(s.GetContext(), nil)
	s.NoError(err)
	s.Len(resp.Items, 2)
	s.Equal(2, resp.Pagination.Total)
	s.Equal(first.ID, resp.Items[0].ID)
	s.Equal(third.ID, resp.Items[1].ID)

	got, err := s.service.GetRequest(s.GetContext(), second.ID)
	s.NoError(err)
	s.Equal(types.RequestStatusCancelled, got.RequestStatus)
}
