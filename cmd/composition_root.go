package cmd

import (
	"fulfillment/internal/adapters/in/consumer"
	httpadapter "fulfillment/internal/adapters/in/http"
	"fulfillment/internal/adapters/out/dispatch"
	"fulfillment/internal/adapters/out/msgbus"
	"fulfillment/internal/adapters/out/notify"
	"fulfillment/internal/adapters/out/postgres"
	"fulfillment/internal/adapters/out/postgres/eventrepo"
	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/application/usecases/queries"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/jobs"
	"fulfillment/internal/pkg/keylock"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CompositionRoot wires adapters and use cases together. All shared
// infrastructure (bus, notifier, keyed locks) is created once here; handlers
// are created on demand.
type CompositionRoot struct {
	config     Config
	gormDB     *gorm.DB
	logger     *zap.Logger
	uowFactory *postgres.GormUnitOfWorkFactory
	bus        *msgbus.Bus
	notifier   *notify.Registry
	dispatcher *dispatch.BusDispatcher
	locks      *keylock.KeyedMutex
}

// NewCompositionRoot builds the object graph on top of an open database
// connection.
func NewCompositionRoot(config Config, gormDB *gorm.DB, logger *zap.Logger) *CompositionRoot {
	bus := msgbus.NewBus(config.BusBuffer, logger)
	return &CompositionRoot{
		config:     config,
		gormDB:     gormDB,
		logger:     logger,
		uowFactory: postgres.NewGormUnitOfWorkFactory(gormDB),
		bus:        bus,
		notifier:   notify.NewRegistry(logger),
		dispatcher: dispatch.NewBusDispatcher(
			bus,
			eventrepo.NewGormEventRepository(gormDB),
			dispatch.DefaultRetryPolicy(),
			logger,
		),
		locks: keylock.New(),
	}
}

// Bus exposes the in-process message bus, e.g. for stage service stubs.
func (c *CompositionRoot) Bus() *msgbus.Bus {
	return c.bus
}

// Close releases shared infrastructure.
func (c *CompositionRoot) Close() {
	c.bus.Close()
}

func (c *CompositionRoot) orderUoWFactory() commands.OrderUoWFactory {
	return FuncOrderUoWFactory(func() commands.OrderUoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) CreateCreateOrderCommandHandler() commands.CreateOrderCommandHandler {
	return commands.NewCreateOrderCommandHandler(c.orderUoWFactory(), c.dispatcher, c.notifier)
}

func (c *CompositionRoot) CreateApplyOutcomeCommandHandler() commands.ApplyOutcomeCommandHandler {
	return commands.NewApplyOutcomeCommandHandler(c.orderUoWFactory(), c.dispatcher, c.notifier, c.locks)
}

func (c *CompositionRoot) CreateCancelOrderCommandHandler() commands.CancelOrderCommandHandler {
	return commands.NewCancelOrderCommandHandler(c.orderUoWFactory(), c.notifier, c.locks)
}

func (c *CompositionRoot) CreateGetOrderQueryHandler() queries.GetOrderQueryHandler {
	return queries.NewGetOrderQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetCustomerOrdersQueryHandler() queries.GetCustomerOrdersQueryHandler {
	return queries.NewGetCustomerOrdersQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetOrdersByStatusQueryHandler() queries.GetOrdersByStatusQueryHandler {
	return queries.NewGetOrdersByStatusQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetOrderByCorrelationQueryHandler() queries.GetOrderByCorrelationQueryHandler {
	return queries.NewGetOrderByCorrelationQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetOrderEventsQueryHandler() queries.GetOrderEventsQueryHandler {
	return queries.NewGetOrderEventsQueryHandler(c.gormDB)
}

// CreateOutcomeConsumer wires the stage update topics into the coordinator.
func (c *CompositionRoot) CreateOutcomeConsumer() *consumer.OutcomeConsumer {
	applyHandler := c.CreateApplyOutcomeCommandHandler()
	return consumer.NewOutcomeConsumer(
		c.bus,
		c.bus,
		&applyHandler,
		eventrepo.NewGormEventRepository(c.gormDB),
		dispatch.DefaultRetryPolicy(),
		c.logger,
	)
}

// CreateJobManager wires the background jobs.
func (c *CompositionRoot) CreateJobManager() *jobs.JobManager {
	timeoutJob := jobs.NewStageTimeoutJob(
		c.uowFactory,
		c.bus,
		eventrepo.NewGormEventRepository(c.gormDB),
		c.config.StageSLA,
		c.logger,
	)
	return jobs.NewJobManager(timeoutJob, c.logger)
}

// CreateHTTPServer wires the REST API.
func (c *CompositionRoot) CreateHTTPServer() *httpadapter.Server {
	createHandler := c.CreateCreateOrderCommandHandler()
	cancelHandler := c.CreateCancelOrderCommandHandler()
	return httpadapter.NewServer(
		&createHandler,
		&cancelHandler,
		c.CreateGetOrderQueryHandler(),
		c.CreateGetCustomerOrdersQueryHandler(),
		c.CreateGetOrdersByStatusQueryHandler(),
		c.CreateGetOrderByCorrelationQueryHandler(),
		c.CreateGetOrderEventsQueryHandler(),
		c.notifier,
	)
}

// FuncOrderUoWFactory adapts a closure to commands.OrderUoWFactory.
type FuncOrderUoWFactory func() commands.OrderUoW

func (f FuncOrderUoWFactory) Create() commands.OrderUoW {
	return f()
}

var _ ports.UnitOfWorkFactory = (*postgres.GormUnitOfWorkFactory)(nil)
