package ports

import (
	"context"

	"fulfillment/internal/core/domain/model/outcome"
)

// Dispatcher hands next-step requests to stage collaborators. Send blocks
// until the request is accepted by the transport, retried per the
// implementation's policy; exhaustion dead-letters the request and returns
// an error, it is never silently dropped.
type Dispatcher interface {
	Send(ctx context.Context, request outcome.Request) error
}
