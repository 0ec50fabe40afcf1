package queries

import (
	"context"

	"fulfillment/internal/pkg/errs"

	"gorm.io/gorm"
)

// GetOrderByCorrelationQueryHandler retrieves the order behind a workflow
// correlation key.
type GetOrderByCorrelationQueryHandler struct {
	db *gorm.DB
}

// NewGetOrderByCorrelationQueryHandler creates a handler for correlation lookups.
// Requires a GORM database connection for query execution.
func NewGetOrderByCorrelationQueryHandler(db *gorm.DB) GetOrderByCorrelationQueryHandler {
	return GetOrderByCorrelationQueryHandler{db: db}
}

// Handle executes the lookup. Returns errs.ObjectNotFoundError when no order
// carries the given key.
func (h GetOrderByCorrelationQueryHandler) Handle(
	ctx context.Context,
	query GetOrderByCorrelationQuery,
) (OrderResponse, error) {
	if err := query.Validate(); err != nil {
		return OrderResponse{}, err
	}

	orders, err := queryOrders(ctx, h.db, "WHERE correlation_id = ?", query.CorrelationID())
	if err != nil {
		return OrderResponse{}, err
	}
	if len(orders) == 0 {
		return OrderResponse{}, errs.NewObjectNotFoundError("correlationId", query.CorrelationID())
	}

	return orders[0], nil
}
