// Package service implements the console operations on top of the pricing
// and lifecycle domain.
package service

import (
	"context"
	"time"

	"github.com/flexprice/console/internal/cache"
	"github.com/flexprice/console/internal/config"
	"github.com/flexprice/console/internal/domain/invoice"
	"github.com/flexprice/console/internal/domain/plan"
	"github.com/flexprice/console/internal/domain/request"
	"github.com/flexprice/console/internal/domain/serviceassignment"
	"github.com/flexprice/console/internal/domain/subscription"
	"github.com/flexprice/console/internal/logger"
	"github.com/flexprice/console/internal/publisher"
	"go.uber.org/fx"
)

// ServiceParams holds common dependencies for services
type ServiceParams struct {
	Logger *logger.Logger
	Config *config.Configuration

	// Repositories
	PlanRepo              plan.Repository
	SubscriptionRepo      subscription.Repository
	BillableServiceRepo   serviceassignment.BillableServiceRepository
	ServiceAssignmentRepo serviceassignment.Repository
	InvoiceRepo           invoice.Repository
	RequestRepo           request.Repository

	Cache          cache.Cache
	EventPublisher publisher.EventPublisher

	// Now is the clock of every operation. Defaults to time.Now in UTC.
	Now func() time.Time
}

// ServiceDependencies are the fx inputs of NewServiceParams.
type ServiceDependencies struct {
	fx.In

	Logger                *logger.Logger
	Config                *config.Configuration
	PlanRepo              plan.Repository
	SubscriptionRepo      subscription.Repository
	BillableServiceRepo   serviceassignment.BillableServiceRepository
	ServiceAssignmentRepo serviceassignment.Repository
	InvoiceRepo           invoice.Repository
	RequestRepo           request.Repository
	Cache                 cache.Cache
	EventPublisher        publisher.EventPublisher
}

// NewServiceParams creates a new instance of ServiceParams
func NewServiceParams(deps ServiceDependencies) ServiceParams {
	return ServiceParams{
		Logger:                deps.Logger,
		Config:                deps.Config,
		PlanRepo:              deps.PlanRepo,
		SubscriptionRepo:      deps.SubscriptionRepo,
		BillableServiceRepo:   deps.BillableServiceRepo,
		ServiceAssignmentRepo: deps.ServiceAssignmentRepo,
		InvoiceRepo:           deps.InvoiceRepo,
		RequestRepo:           deps.RequestRepo,
		Cache:                 deps.Cache,
		EventPublisher:        deps.EventPublisher,
	}
}

func (p ServiceParams) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now().UTC()
}

// publishEvent sends a domain event. Failures are logged and never fail the
// operation that produced the event.
func (p ServiceParams) publishEvent(ctx context.Context, eventType publisher.EventType, entityID, clientID string, data interface{}) {
	if p.EventPublisher == nil {
		return
	}

	event, err := publisher.NewEvent(ctx, eventType, entityID, clientID, data)
	if err != nil {
		p.Logger.Errorw("failed to build event",
			"event_type", eventType,
			"entity_id", entityID,
			"error", err,
		)
		return
	}

	if err := p.EventPublisher.Publish(ctx, event); err != nil {
		p.Logger.Errorw("failed to publish event",
			"event_type", eventType,
			"entity_id", entityID,
			"error", err,
		)
	}
}
