package cron

import (
	"testing"
	"time"

	"github.com/flexprice/console/internal/api/dto"
	"github.com/flexprice/console/internal/domain/plan"
	ierr "github.com/flexprice/console/internal/errors"
	"github.com/flexprice/console/internal/service"
	"github.com/flexprice/console/internal/testutil"
	"github.com/flexprice/console/internal/types"
	"github.com/samber/lo"
	"github.com/stretchr/testify/suite"
)

type BillingCronSuite struct {
	testutil.BaseServiceTestSuite
	handler       *BillingCronHandler
	subscriptions service.SubscriptionService
	invoices      service.InvoiceService
}

func TestBillingCron(t *testing.T) {
	suite.Run(t, new(BillingCronSuite))
}

func (s *BillingCronSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	params := service.ServiceParams{
		Logger:                s.GetLogger(),
		Config:                s.GetConfig(),
		PlanRepo:              s.GetStores().PlanRepo,
		SubscriptionRepo:      s.GetStores().SubscriptionRepo,
		BillableServiceRepo:   s.GetStores().BillableServiceRepo,
		ServiceAssignmentRepo: s.GetStores().ServiceAssignmentRepo,
		InvoiceRepo:           s.GetStores().InvoiceRepo,
		RequestRepo:           s.GetStores().RequestRepo,
		Cache:                 s.GetCache(),
		EventPublisher:        s.GetPublisher(),
		Now:                   s.GetNow,
	}
	s.subscriptions = service.NewSubscriptionService(params)
	s.invoices = service.NewInvoiceService(params)
	s.handler = NewBillingCronHandler(service.NewRecurringInvoiceService(params), s.invoices, s.GetLogger())
}

func (s *BillingCronSuite) TestGenerateRecurringInvoices() {
	p := plan.New(s.GetContext(), "Pro", types.NewMoney(10000, "usd"))
	s.Require().NoError(s.GetStores().PlanRepo.Create(s.GetContext(), p))

	_, err := s.subscriptions.AssignSubscription(s.GetContext(), dto.AssignSubscriptionRequest{
		ClientID:     "client_1",
		PlanID:       p.ID,
		BillingCycle: types.BillingCycleMonthly,
		StartDate:    lo.ToPtr(time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)),
		ByAdmin:      true,
	})
	s.NoError(err)

	req := dto.GenerateRecurringInvoicesRequest{Period: dto.BillingPeriod{
		Start: time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC),
	}}

	first, err := s.handler.GenerateRecurringInvoices(s.GetContext(), req)
	s.NoError(err)
	s.Equal(1, first.Created)

	second, err := s.handler.GenerateRecurringInvoices(s.GetContext(), req)
	s.NoError(err)
	s.Zero(second.Created)
	s.Equal(1, second.Skipped)

	_, err = s.handler.GenerateRecurringInvoices(s.GetContext(), dto.GenerateRecurringInvoicesRequest{})
	s.True(ierr.IsValidation(err))
}

func (s *BillingCronSuite) TestMarkOverdueInvoices() {
	inv, err := s.invoices.CreateInvoice(s.GetContext(), dto.CreateInvoiceRequest{
		ClientID:  "client_1",
		Currency:  "usd",
		IssueDate: lo.ToPtr(s.GetNow().AddDate(0, -2, 0)),
		DueDate:   lo.ToPtr(s.GetNow().AddDate(0, -1, 0)),
		Lines: []dto.InvoiceLineRequest{{
			Description: "Consulting",
			UnitPrice:   5000,
		}},
	})
	s.NoError(err)
	_, err = s.invoices.SendInvoice(s.GetContext(), inv.ID)
	s.NoError(err)

	result, err := s.handler.MarkOverdueInvoices(s.GetContext())
	s.NoError(err)
	s.Equal(1, result.MarkedOverdue)
}
