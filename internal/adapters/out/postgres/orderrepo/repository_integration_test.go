package orderrepo_test

import (
	"context"
	"testing"
	"time"

	"fulfillment/internal/adapters/out/postgres/orderrepo"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/errs"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	postgresdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// MockAggregateTracker is a mock implementation of aggregateTracker interface.
type MockAggregateTracker struct {
	mock.Mock
}

func (m *MockAggregateTracker) TrackAggregate(id kernel.UUID, aggregate interface{}) {
	m.Called(id, aggregate)
}

// OrderRepositoryIntegrationTestSuite provides integration tests for OrderRepository
// using PostgreSQL containers to verify database persistence behavior.
type OrderRepositoryIntegrationTestSuite struct {
	suite.Suite
	container  *postgres.PostgresContainer
	db         *gorm.DB
	repository *orderrepo.GormOrderRepository
	tracker    *MockAggregateTracker
}

func (suite *OrderRepositoryIntegrationTestSuite) SetupSuite() {
	ctx := context.Background()

	// Start PostgreSQL container
	container, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	suite.Require().NoError(err)
	suite.container = container

	// Get connection string and connect to database
	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	suite.Require().NoError(err)

	db, err := gorm.Open(postgresdriver.Open(connStr), &gorm.Config{})
	suite.Require().NoError(err)
	suite.db = db

	// Auto-migrate the schema
	suite.Require().NoError(db.AutoMigrate(&orderrepo.OrderDTO{}))
}

func (suite *OrderRepositoryIntegrationTestSuite) SetupTest() {
	// Clean the database before each test
	suite.Require().NoError(suite.db.Exec("TRUNCATE TABLE orders").Error)

	// Create fresh repository and tracker for each test
	suite.tracker = new(MockAggregateTracker)
	suite.repository = orderrepo.NewGormOrderRepository(suite.db, suite.tracker)
}

func (suite *OrderRepositoryIntegrationTestSuite) TearDownSuite() {
	if suite.container != nil {
		suite.Require().NoError(suite.container.Terminate(context.Background()))
	}
}

func (suite *OrderRepositoryIntegrationTestSuite) TestAdd_ValidOrder_Success() {
	ctx := context.Background()

	testOrder := suite.createTestOrder()

	suite.tracker.On("TrackAggregate", testOrder.ID(), testOrder).Once()

	err := suite.repository.Add(ctx, testOrder)
	suite.Require().NoError(err)

	suite.assertOrderCount(1)
	suite.tracker.AssertExpectations(suite.T())
}

func (suite *OrderRepositoryIntegrationTestSuite) TestGet_ExistingOrder_ReturnsOrder() {
	ctx := context.Background()

	originalOrder := suite.createTestOrder()
	suite.tracker.On("TrackAggregate", originalOrder.ID(), originalOrder).Once()

	err := suite.repository.Add(ctx, originalOrder)
	suite.Require().NoError(err)

	retrievedOrder, err := suite.repository.Get(ctx, originalOrder.ID())
	suite.Require().NoError(err)

	suite.Equal(originalOrder.ID(), retrievedOrder.ID())
	suite.Equal(originalOrder.CorrelationID(), retrievedOrder.CorrelationID())
	suite.Equal("customer-42", retrievedOrder.CustomerID())
	suite.Equal("221B Baker Street", retrievedOrder.Address().Street())
	suite.InDelta(199.90, retrievedOrder.TotalAmount(), 0.001)
	suite.Equal(order.New, retrievedOrder.Status())
	suite.Equal(1, retrievedOrder.Version())

	suite.tracker.AssertExpectations(suite.T())
}

func (suite *OrderRepositoryIntegrationTestSuite) TestGet_NonExistentOrder_ReturnsNotFoundError() {
	ctx := context.Background()

	nonExistentID := kernel.NewUUID()
	retrievedOrder, err := suite.repository.Get(ctx, nonExistentID)

	suite.Nil(retrievedOrder)
	suite.Require().Error(err)

	var notFoundErr *errs.ObjectNotFoundError
	suite.Require().ErrorAs(err, &notFoundErr)

	suite.tracker.AssertExpectations(suite.T())
}

func (suite *OrderRepositoryIntegrationTestSuite) TestGetByCorrelationID_ExistingOrder_ReturnsOrder() {
	ctx := context.Background()

	originalOrder := suite.createTestOrder()
	suite.tracker.On("TrackAggregate", originalOrder.ID(), originalOrder).Once()
	suite.Require().NoError(suite.repository.Add(ctx, originalOrder))

	retrievedOrder, err := suite.repository.GetByCorrelationID(ctx, originalOrder.CorrelationID())
	suite.Require().NoError(err)
	suite.Equal(originalOrder.ID(), retrievedOrder.ID())

	suite.tracker.AssertExpectations(suite.T())
}

func (suite *OrderRepositoryIntegrationTestSuite) TestGetByCorrelationID_Unknown_ReturnsNotFoundError() {
	ctx := context.Background()

	retrievedOrder, err := suite.repository.GetByCorrelationID(ctx, "no-such-workflow")

	suite.Nil(retrievedOrder)
	var notFoundErr *errs.ObjectNotFoundError
	suite.Require().ErrorAs(err, &notFoundErr)
}

func (suite *OrderRepositoryIntegrationTestSuite) TestUpdate_AdvancesStatusAndBumpsVersion() {
	ctx := context.Background()

	testOrder := suite.createTestOrder()
	suite.tracker.On("TrackAggregate", testOrder.ID(), testOrder).Twice()
	suite.Require().NoError(suite.repository.Add(ctx, testOrder))

	suite.Require().NoError(testOrder.MarkBilled(210.50, time.Now().UTC()))
	suite.Require().NoError(suite.repository.Update(ctx, testOrder))

	retrievedOrder, err := suite.repository.Get(ctx, testOrder.ID())
	suite.Require().NoError(err)
	suite.Equal(order.Billed, retrievedOrder.Status())
	suite.Equal(order.BillingStatusCompleted, retrievedOrder.BillingStatus())
	suite.InDelta(210.50, retrievedOrder.TotalAmount(), 0.001)
	suite.NotNil(retrievedOrder.BilledAt())
	suite.Equal(2, retrievedOrder.Version())

	suite.tracker.AssertExpectations(suite.T())
}

func (suite *OrderRepositoryIntegrationTestSuite) TestUpdate_StaleVersion_ReturnsVersionConflict() {
	ctx := context.Background()

	testOrder := suite.createTestOrder()
	suite.tracker.On("TrackAggregate", testOrder.ID(), mock.Anything)
	suite.Require().NoError(suite.repository.Add(ctx, testOrder))

	// Two readers load the same version of the row.
	first, err := suite.repository.Get(ctx, testOrder.ID())
	suite.Require().NoError(err)
	second, err := suite.repository.Get(ctx, testOrder.ID())
	suite.Require().NoError(err)

	// The first writer wins.
	suite.Require().NoError(first.MarkBilled(0, time.Now().UTC()))
	suite.Require().NoError(suite.repository.Update(ctx, first))

	// The second writer loses the swap.
	suite.Require().NoError(second.MarkBillingPending(time.Now().UTC()))
	err = suite.repository.Update(ctx, second)
	suite.Require().Error(err)
	suite.Require().ErrorIs(err, errs.ErrVersionConflict)

	// The row still carries the first writer's state.
	retrievedOrder, err := suite.repository.Get(ctx, testOrder.ID())
	suite.Require().NoError(err)
	suite.Equal(order.Billed, retrievedOrder.Status())
	suite.Equal(2, retrievedOrder.Version())
}

func (suite *OrderRepositoryIntegrationTestSuite) TestUpdate_NonExistentOrder_ReturnsNotFoundError() {
	ctx := context.Background()

	nonExistentOrder := suite.createTestOrder()

	err := suite.repository.Update(ctx, nonExistentOrder)
	suite.Require().Error(err)

	var notFoundErr *errs.ObjectNotFoundError
	suite.Require().ErrorAs(err, &notFoundErr)

	suite.tracker.AssertExpectations(suite.T())
}

func (suite *OrderRepositoryIntegrationTestSuite) TestUpdate_PersistsRouteAndDriverDetails() {
	ctx := context.Background()

	testOrder := suite.createTestOrder()
	suite.tracker.On("TrackAggregate", testOrder.ID(), mock.Anything)
	suite.Require().NoError(suite.repository.Add(ctx, testOrder))

	now := time.Now().UTC()
	suite.Require().NoError(testOrder.MarkBilled(0, now))
	suite.Require().NoError(testOrder.MarkReady(now))
	suite.Require().NoError(testOrder.MarkRouted([]string{"hub-a", "hub-b", "customer"}, now))
	suite.Require().NoError(testOrder.MarkAssigned("driver-7", "vehicle-3", now))
	suite.Require().NoError(suite.repository.Update(ctx, testOrder))

	retrievedOrder, err := suite.repository.Get(ctx, testOrder.ID())
	suite.Require().NoError(err)
	suite.Equal(order.Assigned, retrievedOrder.Status())
	suite.Equal([]string{"hub-a", "hub-b", "customer"}, retrievedOrder.Waypoints())
	suite.Equal("driver-7", retrievedOrder.DriverID())
	suite.Equal("vehicle-3", retrievedOrder.VehicleID())
	suite.NotNil(retrievedOrder.RoutedAt())
}

func (suite *OrderRepositoryIntegrationTestSuite) TestGetAllByCustomer_ReturnsNewestFirst() {
	ctx := context.Background()

	suite.tracker.On("TrackAggregate", mock.AnythingOfType("kernel.UUID"), mock.Anything)

	older := suite.createTestOrderAt(time.Now().UTC().Add(-time.Hour))
	newer := suite.createTestOrderAt(time.Now().UTC())
	other := suite.createTestOrderForCustomer("customer-99")

	suite.Require().NoError(suite.repository.Add(ctx, older))
	suite.Require().NoError(suite.repository.Add(ctx, newer))
	suite.Require().NoError(suite.repository.Add(ctx, other))

	orders, err := suite.repository.GetAllByCustomer(ctx, "customer-42")
	suite.Require().NoError(err)
	suite.Require().Len(orders, 2)
	suite.Equal(newer.ID(), orders[0].ID())
	suite.Equal(older.ID(), orders[1].ID())
}

func (suite *OrderRepositoryIntegrationTestSuite) TestGetAllInStatus_FiltersByStatus() {
	ctx := context.Background()

	suite.tracker.On("TrackAggregate", mock.AnythingOfType("kernel.UUID"), mock.Anything)

	pending := suite.createTestOrder()
	suite.Require().NoError(pending.MarkBillingPending(time.Now().UTC()))

	billed := suite.createTestOrder()
	suite.Require().NoError(billed.MarkBilled(0, time.Now().UTC()))

	suite.Require().NoError(suite.repository.Add(ctx, pending))
	suite.Require().NoError(suite.repository.Add(ctx, billed))
	suite.Require().NoError(suite.repository.Add(ctx, suite.createTestOrder()))

	orders, err := suite.repository.GetAllInStatus(ctx, order.BillingPending)
	suite.Require().NoError(err)
	suite.Require().Len(orders, 1)
	suite.Equal(pending.ID(), orders[0].ID())

	orders, err = suite.repository.GetAllInStatus(ctx, order.Delivered)
	suite.Require().NoError(err)
	suite.Empty(orders)
}

func (suite *OrderRepositoryIntegrationTestSuite) TestGetStuckSince_SkipsFreshAndTerminalOrders() {
	ctx := context.Background()

	suite.tracker.On("TrackAggregate", mock.AnythingOfType("kernel.UUID"), mock.Anything)

	cutoff := time.Now().UTC().Add(-15 * time.Minute)

	stuck := suite.createTestOrderAt(cutoff.Add(-time.Hour))
	fresh := suite.createTestOrderAt(time.Now().UTC())

	terminal := suite.createTestOrderAt(cutoff.Add(-time.Hour))
	suite.Require().NoError(terminal.MarkBillingFailed(cutoff.Add(-time.Hour)))

	suite.Require().NoError(suite.repository.Add(ctx, stuck))
	suite.Require().NoError(suite.repository.Add(ctx, fresh))
	suite.Require().NoError(suite.repository.Add(ctx, terminal))

	orders, err := suite.repository.GetStuckSince(ctx, cutoff)
	suite.Require().NoError(err)
	suite.Require().Len(orders, 1)
	suite.Equal(stuck.ID(), orders[0].ID())
}

// createTestOrder creates a basic test order with default values.
func (suite *OrderRepositoryIntegrationTestSuite) createTestOrder() *order.Order {
	return suite.createTestOrderForCustomer("customer-42")
}

func (suite *OrderRepositoryIntegrationTestSuite) createTestOrderForCustomer(customerID string) *order.Order {
	addr, err := order.NewAddress("221B Baker Street", "London", "NW1 6XE", "UK")
	suite.Require().NoError(err)
	testOrder, err := order.NewOrder(kernel.NewUUID(), customerID, addr, 199.90, time.Now().UTC())
	suite.Require().NoError(err)
	return testOrder
}

// createTestOrderAt creates a test order created and last touched at the given time.
func (suite *OrderRepositoryIntegrationTestSuite) createTestOrderAt(at time.Time) *order.Order {
	addr, err := order.NewAddress("221B Baker Street", "London", "NW1 6XE", "UK")
	suite.Require().NoError(err)
	testOrder, err := order.NewOrder(kernel.NewUUID(), "customer-42", addr, 199.90, at)
	suite.Require().NoError(err)
	return testOrder
}

// assertOrderCount verifies the number of orders in the database.
func (suite *OrderRepositoryIntegrationTestSuite) assertOrderCount(expected int) {
	var count int64
	err := suite.db.Model(&orderrepo.OrderDTO{}).Count(&count).Error
	suite.Require().NoError(err)
	suite.Equal(int64(expected), count)
}

func TestOrderRepositoryIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(OrderRepositoryIntegrationTestSuite))
}
