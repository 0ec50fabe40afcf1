// Package consumer subscribes to the stage services' update topics and feeds
// their outcome reports into the coordinator. One consumer handles all five
// stages; each stage's topic gets its own subscription on the bus.
package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"fulfillment/internal/adapters/out/dispatch"
	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/domain/model/event"
	"fulfillment/internal/core/domain/model/outcome"
	"fulfillment/internal/core/ports"

	"go.uber.org/zap"
)

// stages lists every workflow stage the consumer listens for.
var stages = []outcome.Stage{
	outcome.StageBilling,
	outcome.StageWarehouse,
	outcome.StageRouting,
	outcome.StageDriver,
	outcome.StageDelivery,
}

// Applier applies one stage outcome to its order. Satisfied by
// commands.ApplyOutcomeCommandHandler.
type Applier interface {
	Handle(ctx context.Context, cmd commands.ApplyOutcomeCommand) error
}

// OutcomeConsumer reads stage outcome messages off the bus and applies them
// through the coordinator. Messages whose processing keeps failing are parked
// on the topic's dead-letter companion instead of being retried forever.
type OutcomeConsumer struct {
	subscriber ports.Subscriber
	publisher  ports.Publisher
	handler    Applier
	events     ports.EventRepository
	policy     dispatch.RetryPolicy
	logger     *zap.Logger
	now        func() time.Time

	cancels []func()
}

// NewOutcomeConsumer creates a consumer wired to the given bus and handler.
func NewOutcomeConsumer(
	subscriber ports.Subscriber,
	publisher ports.Publisher,
	handler Applier,
	events ports.EventRepository,
	policy dispatch.RetryPolicy,
	logger *zap.Logger,
) *OutcomeConsumer {
	return &OutcomeConsumer{
		subscriber: subscriber,
		publisher:  publisher,
		handler:    handler,
		events:     events,
		policy:     policy,
		logger:     logger.With(zap.String("component", "outcome_consumer")),
		now:        time.Now,
	}
}

// Start subscribes to every stage's update topic. Returns an error if any
// subscription fails; already established subscriptions are torn down.
func (c *OutcomeConsumer) Start() error {
	for _, stage := range stages {
		stage := stage
		cancel, err := c.subscriber.Subscribe(stage.InboundTopic(), func(ctx context.Context, msg ports.Message) {
			c.consume(ctx, stage, msg)
		})
		if err != nil {
			c.Stop()
			return fmt.Errorf("subscribe to %s: %w", stage.InboundTopic(), err)
		}
		c.cancels = append(c.cancels, cancel)
	}

	c.logger.Info("outcome consumer started", zap.Int("topics", len(stages)))
	return nil
}

// Stop cancels all subscriptions.
func (c *OutcomeConsumer) Stop() {
	for _, cancel := range c.cancels {
		cancel()
	}
	c.cancels = nil
}

// consume processes one message from a stage's update topic. Malformed
// payloads are dropped; processing failures are retried and finally parked
// on the dead-letter topic.
func (c *OutcomeConsumer) consume(ctx context.Context, stage outcome.Stage, msg ports.Message) {
	var out outcome.Outcome
	if err := json.Unmarshal(msg.Body, &out); err != nil {
		c.logger.Warn("dropping malformed outcome message",
			zap.String("topic", msg.Topic),
			zap.Error(err))
		return
	}

	// The topic is authoritative for the stage; the payload's stage field
	// is informational only.
	out.Stage = stage

	cmd, err := commands.NewApplyOutcomeCommand(out)
	if err != nil {
		c.logger.Warn("dropping invalid outcome message",
			zap.String("topic", msg.Topic),
			zap.Error(err))
		c.recordRejected(ctx, stage, out, err)
		return
	}

	err = c.policy.Do(ctx, func() error {
		return c.handler.Handle(ctx, cmd)
	})
	if err != nil {
		c.logger.Error("outcome processing exhausted, dead-lettering",
			zap.String("topic", msg.Topic),
			zap.String("orderId", out.OrderID.String()),
			zap.String("status", out.Status),
			zap.Error(err))
		c.deadLetter(ctx, msg, out, err)
		return
	}

	c.logger.Debug("outcome applied",
		zap.String("topic", msg.Topic),
		zap.String("orderId", out.OrderID.String()),
		zap.String("status", out.Status))
}

// recordRejected writes a WARNING record for a decodable but schema-invalid
// message. Payloads without a usable order id leave only the log line, as
// there is no order to anchor the record to.
func (c *OutcomeConsumer) recordRejected(ctx context.Context, stage outcome.Stage, out outcome.Outcome, cause error) {
	if err := out.OrderID.Validate(); err != nil {
		return
	}

	audit, err := event.NewEvent(
		out.OrderID,
		out.CorrelationID,
		event.TypeOutcomeRejected,
		stage.Source(),
		event.StatusWarning,
		fmt.Sprintf("dropped invalid %s outcome: %v", stage, cause),
		c.now(),
	)
	if err != nil {
		c.logger.Error("failed to build rejection audit record", zap.Error(err))
		return
	}
	if err := c.events.Append(ctx, audit); err != nil {
		c.logger.Error("failed to append rejection audit record",
			zap.String("orderId", out.OrderID.String()),
			zap.Error(err))
	}
}

func (c *OutcomeConsumer) deadLetter(ctx context.Context, msg ports.Message, out outcome.Outcome, cause error) {
	dlq := outcome.DeadLetterTopic(msg.Topic)
	if err := c.publisher.Publish(ctx, dlq, msg.Body); err != nil {
		c.logger.Error("dead-letter publish failed",
			zap.String("topic", dlq),
			zap.Error(err))
		return
	}

	audit, err := event.NewEvent(
		out.OrderID,
		out.CorrelationID,
		event.TypeDeadLettered,
		event.SourceOrchestrator,
		event.StatusFailed,
		fmt.Sprintf("%s outcome parked on %s: %v", out.Stage, dlq, cause),
		c.now(),
	)
	if err != nil {
		c.logger.Error("failed to build dead-letter audit record", zap.Error(err))
		return
	}
	if err := c.events.Append(ctx, audit); err != nil {
		c.logger.Error("failed to append dead-letter audit record",
			zap.String("orderId", out.OrderID.String()),
			zap.Error(err))
	}
}
