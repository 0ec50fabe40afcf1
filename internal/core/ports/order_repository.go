package ports

import (
	"context"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
)

// OrderRepository defines the persistence contract for order aggregates.
// Provides methods for storing, retrieving, and querying order entities.
type OrderRepository interface {
	// Add persists a new order aggregate to storage.
	// The order must be valid and not already exist in the repository.
	Add(ctx context.Context, aggregate *order.Order) error

	// Update persists changes to an existing order aggregate using a
	// compare-and-swap on the aggregate's version. Returns
	// errs.VersionConflictError when the stored version no longer matches;
	// callers re-read and retry.
	Update(ctx context.Context, aggregate *order.Order) error

	// Get retrieves an order aggregate by its unique identifier.
	Get(ctx context.Context, id kernel.UUID) (*order.Order, error)

	// GetByCorrelationID retrieves the order tracked by the given workflow
	// correlation key.
	GetByCorrelationID(ctx context.Context, correlationID string) (*order.Order, error)

	// GetAllByCustomer retrieves all orders belonging to a customer,
	// newest first.
	GetAllByCustomer(ctx context.Context, customerID string) ([]*order.Order, error)

	// GetAllInStatus retrieves all orders currently in the given status.
	GetAllInStatus(ctx context.Context, status order.Status) ([]*order.Order, error)

	// GetStuckSince retrieves non-terminal orders whose last update is at or
	// before the cutoff. Used by the stage timeout watchdog.
	GetStuckSince(ctx context.Context, cutoff time.Time) ([]*order.Order, error)
}
