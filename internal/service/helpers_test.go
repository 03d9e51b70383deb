package service

import (
	"github.com/flexprice/console/internal/api/dto"
	"github.com/flexprice/console/internal/domain/plan"
	"github.com/flexprice/console/internal/domain/serviceassignment"
	"github.com/flexprice/console/internal/testutil"
	"github.com/flexprice/console/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

func newTestServiceParams(s *testutil.BaseServiceTestSuite) ServiceParams {
	return ServiceParams{
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
}

// createTestPlan stores an active usd plan with the given monthly price.
func createTestPlan(s *testutil.BaseServiceTestSuite, name string, monthly int64) *plan.Plan {
	p := plan.New(s.GetContext(), name, types.NewMoney(monthly, "usd"))
	p.Features = []string{"reports", "support"}
	s.Require().NoError(s.GetStores().PlanRepo.Create(s.GetContext(), p))
	return p
}

func createTestService(s *testutil.BaseServiceTestSuite, name string, price int64) *serviceassignment.BillableService {
	svc := serviceassignment.NewBillableService(s.GetContext(), name, types.NewMoney(price, "usd"))
	s.Require().NoError(s.GetStores().BillableServiceRepo.Create(s.GetContext(), svc))
	return svc
}

func percentageDiscount(pct int64) *dto.DiscountRequest {
	return &dto.DiscountRequest{
		Type:  types.DiscountTypePercentage,
		Value: decimal.NewFromInt(pct),
	}
}

func fixedDiscount(amount int64) *dto.DiscountRequest {
	return &dto.DiscountRequest{
		Type:    types.DiscountTypeFixed,
		Value:   decimal.NewFromInt(amount),
		Enabled: lo.ToPtr(true),
	}
}
