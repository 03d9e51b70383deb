package main

import (
	"context"

	"github.com/flexprice/console/internal/cache"
	"github.com/flexprice/console/internal/config"
	"github.com/flexprice/console/internal/domain/invoice"
	"github.com/flexprice/console/internal/domain/plan"
	"github.com/flexprice/console/internal/domain/request"
	"github.com/flexprice/console/internal/domain/serviceassignment"
	"github.com/flexprice/console/internal/domain/subscription"
	"github.com/flexprice/console/internal/logger"
	"github.com/flexprice/console/internal/publisher"
	"github.com/flexprice/console/internal/repository/memory"
	"github.com/flexprice/console/internal/service"
	"go.uber.org/fx"
)

// Services are the operations the commands run.
type Services struct {
	fx.In

	Plans    service.PlanService
	Pricing  service.PricingService
	Invoices service.InvoiceService
}

func provideConfig() (*config.Configuration, error) {
	cfg, err := config.NewConfig()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func provideLogger(lc fx.Lifecycle, cfg *config.Configuration) (*logger.Logger, error) {
	log, err := logger.NewLogger(cfg)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return log.Close()
		},
	})
	return log, nil
}

func providePublisher(lc fx.Lifecycle, cfg *config.Configuration, log *logger.Logger) publisher.EventPublisher {
	pub := publisher.NewEventPublisher(cfg, log)
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return pub.Close()
		},
	})
	return pub
}

// repositoryModule backs every repository with the in-memory stores. The
// binary keeps no state between runs.
var repositoryModule = fx.Module("repository",
	fx.Provide(
		fx.Annotate(memory.NewPlanStore, fx.As(new(plan.Repository))),
		fx.Annotate(memory.NewSubscriptionStore, fx.As(new(subscription.Repository))),
		fx.Annotate(memory.NewBillableServiceStore, fx.As(new(serviceassignment.BillableServiceRepository))),
		fx.Annotate(memory.NewServiceAssignmentStore, fx.As(new(serviceassignment.Repository))),
		fx.Annotate(memory.NewInvoiceStore, fx.As(new(invoice.Repository))),
		fx.Annotate(memory.NewRequestStore, fx.As(new(request.Repository))),
	),
)

// serviceModule provides the services the commands use. The stateful
// workflows (subscriptions, requests, recurring billing) need a store that
// outlives a run and are not wired here.
var serviceModule = fx.Module("service",
	fx.Provide(
		service.NewServiceParams,
		service.NewPlanService,
		service.NewPricingService,
		service.NewInvoiceService,
	),
)

// newApp wires the application and fills svc.
func newApp(svc *Services) *fx.App {
	return fx.New(
		fx.NopLogger,
		fx.Provide(
			provideConfig,
			provideLogger,
			cache.Initialize,
			providePublisher,
		),
		repositoryModule,
		serviceModule,
		fx.Invoke(func(s Services) { *svc = s }),
	)
}
