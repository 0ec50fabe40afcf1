package queries

import (
	"errors"

	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

var ErrGetOrderByCorrelationQueryIsNotConstructed = errors.New(
	"GetOrderByCorrelationQuery must be created via NewGetOrderByCorrelationQuery constructor",
)

// GetOrderByCorrelationQuery retrieves the order tracked by a workflow
// correlation key. Collaborator services and support tooling know orders by
// this key rather than by internal id.
type GetOrderByCorrelationQuery struct {
	correlationID string

	guard guard.ConstructorGuard
}

// NewGetOrderByCorrelationQuery creates a query for the given key.
func NewGetOrderByCorrelationQuery(correlationID string) (GetOrderByCorrelationQuery, error) {
	if correlationID == "" {
		return GetOrderByCorrelationQuery{}, errs.NewValueIsRequiredError("correlationId")
	}

	return GetOrderByCorrelationQuery{
		correlationID: correlationID,
		guard:         guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the query was created through the constructor.
// Returns ErrGetOrderByCorrelationQueryIsNotConstructed if validation fails.
func (q GetOrderByCorrelationQuery) Validate() error {
	return q.guard.Validate(ErrGetOrderByCorrelationQueryIsNotConstructed)
}

// CorrelationID returns the workflow tracking key.
func (q GetOrderByCorrelationQuery) CorrelationID() string {
	return q.correlationID
}
