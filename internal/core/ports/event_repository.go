package ports

import (
	"context"

	"fulfillment/internal/core/domain/model/event"
	"fulfillment/internal/core/domain/model/kernel"
)

// EventRepository defines the persistence contract for the append-only
// per-order audit trail. Events are only ever added and read, never updated
// or deleted.
type EventRepository interface {
	// Append persists a new audit record.
	Append(ctx context.Context, record *event.Event) error

	// GetAllByOrder retrieves the order's full timeline in the order the
	// records were written.
	GetAllByOrder(ctx context.Context, orderID kernel.UUID) ([]*event.Event, error)
}
