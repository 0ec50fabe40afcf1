// Package dispatch publishes stage requests to the message bus with bounded
// retries. Requests that cannot be delivered after all attempts are parked on
// the topic's dead-letter companion, and both the handoff and its failure are
// recorded on the order's audit trail.
package dispatch

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"fulfillment/internal/core/domain/model/event"
	"fulfillment/internal/core/domain/model/outcome"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"

	"go.uber.org/zap"
)

// BusDispatcher implements ports.Dispatcher on top of a message bus publisher.
// Audit records are appended outside any caller transaction: the handoff
// happened on the wire whether or not the caller's transaction commits.
type BusDispatcher struct {
	publisher ports.Publisher
	events    ports.EventRepository
	policy    RetryPolicy
	logger    *zap.Logger
	now       func() time.Time
}

// NewBusDispatcher creates a dispatcher publishing through the given bus.
func NewBusDispatcher(
	publisher ports.Publisher,
	events ports.EventRepository,
	policy RetryPolicy,
	logger *zap.Logger,
) *BusDispatcher {
	return &BusDispatcher{
		publisher: publisher,
		events:    events,
		policy:    policy,
		logger:    logger.With(zap.String("component", "dispatcher")),
		now:       time.Now,
	}
}

// Send publishes the request on its stage's request topic. Delivery is
// retried per the dispatcher's policy; on exhaustion the payload is parked on
// the dead-letter topic and an error is returned so the caller knows the
// handoff never happened.
func (d *BusDispatcher) Send(ctx context.Context, req outcome.Request) error {
	topic := req.Topic()
	if topic == "" {
		return errs.NewValueIsInvalidError("stage")
	}

	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("marshal %s request: %w", req.Stage, err)
	}

	err = d.policy.Do(ctx, func() error {
		return d.publisher.Publish(ctx, topic, body)
	})
	if err != nil {
		d.logger.Error("request delivery exhausted, dead-lettering",
			zap.String("topic", topic),
			zap.String("orderId", req.OrderID.String()),
			zap.Error(err))
		d.deadLetter(ctx, topic, body, req)
		d.record(ctx, req, event.TypeDispatchFailed, event.StatusFailed,
			fmt.Sprintf("%s request retries exhausted: %v", req.Stage, err))
		return fmt.Errorf("dispatch %s request for order %s: %w", req.Stage, req.OrderID.String(), err)
	}

	d.record(ctx, req, sentEventType(req.Stage), event.StatusSuccess,
		fmt.Sprintf("order handed to %s via %s", req.Stage, topic))

	return nil
}

// deadLetter parks the undeliverable payload on the topic's dead-letter
// companion. Best effort: the original failure is already being reported.
func (d *BusDispatcher) deadLetter(ctx context.Context, topic string, body []byte, req outcome.Request) {
	dlq := outcome.DeadLetterTopic(topic)
	if err := d.publisher.Publish(ctx, dlq, body); err != nil {
		d.logger.Error("dead-letter publish failed",
			zap.String("topic", dlq),
			zap.String("orderId", req.OrderID.String()),
			zap.Error(err))
		return
	}
	d.record(ctx, req, event.TypeDeadLettered, event.StatusWarning,
		fmt.Sprintf("%s request parked on %s", req.Stage, dlq))
}

// record appends an audit record for the handoff. Failures are logged, not
// returned: the audit trail must never decide the dispatch outcome.
func (d *BusDispatcher) record(
	ctx context.Context,
	req outcome.Request,
	eventType string,
	status event.EventStatus,
	description string,
) {
	audit, err := event.NewEvent(
		req.OrderID,
		req.CorrelationID,
		eventType,
		event.SourceOrchestrator,
		status,
		description,
		d.now(),
	)
	if err != nil {
		d.logger.Error("failed to build dispatch audit record", zap.Error(err))
		return
	}

	if err := d.events.Append(ctx, audit); err != nil {
		d.logger.Error("failed to append dispatch audit record",
			zap.String("orderId", req.OrderID.String()),
			zap.String("eventType", eventType),
			zap.Error(err))
	}
}

func sentEventType(stage outcome.Stage) string {
	switch stage {
	case outcome.StageWarehouse:
		return event.TypeOrderSentToWarehouse
	case outcome.StageRouting:
		return event.TypeOrderSentToRouting
	default:
		return event.TypeOrderSentToBilling
	}
}
