package testutil

import (
	"context"
	"time"

	"github.com/flexprice/console/internal/cache"
	"github.com/flexprice/console/internal/config"
	"github.com/flexprice/console/internal/logger"
	"github.com/flexprice/console/internal/publisher"
	"github.com/flexprice/console/internal/repository/memory"
	"github.com/flexprice/console/internal/types"
	"github.com/stretchr/testify/suite"
)

// Stores holds the in-memory repositories of a test.
type Stores struct {
	PlanRepo              *memory.PlanStore
	SubscriptionRepo      *memory.SubscriptionStore
	BillableServiceRepo   *memory.BillableServiceStore
	ServiceAssignmentRepo *memory.ServiceAssignmentStore
	InvoiceRepo           *memory.InvoiceStore
	RequestRepo           *memory.RequestStore
}

// BaseServiceTestSuite provides the common setup of service tests.
type BaseServiceTestSuite struct {
	suite.Suite
	ctx       context.Context
	cancel    context.CancelFunc
	stores    Stores
	logger    *logger.Logger
	config    *config.Configuration
	cache     cache.Cache
	publisher publisher.EventPublisher
	now       time.Time
}

func (s *BaseServiceTestSuite) SetupTest() {
	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.ctx = types.WithUserID(s.ctx, "user_test")
	s.ctx = types.WithRequestID(s.ctx, types.GenerateUUID())

	s.config = config.GetDefaultConfig()
	s.logger = logger.NewNoopLogger()
	s.cache = cache.NewInMemoryCache(s.config)
	s.publisher = publisher.NewEventPublisher(s.config, s.logger)
	s.now = time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)

	s.stores = Stores{
		PlanRepo:              memory.NewPlanStore(),
		SubscriptionRepo:      memory.NewSubscriptionStore(),
		BillableServiceRepo:   memory.NewBillableServiceStore(),
		ServiceAssignmentRepo: memory.NewServiceAssignmentStore(),
		InvoiceRepo:           memory.NewInvoiceStore(),
		RequestRepo:           memory.NewRequestStore(),
	}
}

func (s *BaseServiceTestSuite) TearDownTest() {
	_ = s.publisher.Close()
	s.cancel()
	s.ClearStores()
}

func (s *BaseServiceTestSuite) ClearStores() {
	s.stores.PlanRepo.Clear()
	s.stores.SubscriptionRepo.Clear()
	s.stores.BillableServiceRepo.Clear()
	s.stores.ServiceAssignmentRepo.Clear()
	s.stores.InvoiceRepo.Clear()
	s.stores.RequestRepo.Clear()
}

func (s *BaseServiceTestSuite) GetContext() context.Context { return s.ctx }

func (s *BaseServiceTestSuite) GetStores() Stores { return s.stores }

func (s *BaseServiceTestSuite) GetLogger() *logger.Logger { return s.logger }

func (s *BaseServiceTestSuite) GetConfig() *config.Configuration { return s.config }

func (s *BaseServiceTestSuite) GetCache() cache.Cache { return s.cache }

func (s *BaseServiceTestSuite) GetPublisher() publisher.EventPublisher { return s.publisher }

// GetNow is the fixed clock of the suite.
func (s *BaseServiceTestSuite) GetNow() time.Time { return s.now }
