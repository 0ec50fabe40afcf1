package commands

import (
	"context"
	"time"

	"fulfillment/internal/core/domain/model/event"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/ports"
)

// appendAudit writes one audit record for the order through the
// transaction-bound event repository. The caller's transaction decides its
// fate: an audit write failure must abort the whole operation.
func appendAudit(
	ctx context.Context,
	events ports.EventRepository,
	ord *order.Order,
	eventType string,
	source event.Source,
	status event.EventStatus,
	description string,
	now time.Time,
) error {
	record, err := event.NewEvent(ord.ID(), ord.CorrelationID(), eventType, source, status, description, now)
	if err != nil {
		return err
	}
	return events.Append(ctx, record)
}

// failOrder force-fails an order in its own transaction: terminal FAILED
// status plus an ORDER_FAILED audit record with the reason. Used when an
// outbound dispatch exhausted its retries and the workflow cannot continue.
// Returns the updated aggregate.
func failOrder(
	ctx context.Context,
	uowFactory OrderUoWFactory,
	ord *order.Order,
	reason string,
	notifier ports.Notifier,
	now time.Time,
) (*order.Order, error) {
	uow := uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return ord, err
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()

	current, err := uow.OrderRepository().Get(ctx, ord.ID())
	if err != nil {
		return ord, err
	}
	if current.Status().IsTerminal() {
		return current, nil
	}
	if err = current.MarkFailed(now); err != nil {
		return current, err
	}
	if err = uow.OrderRepository().Update(ctx, current); err != nil {
		return current, err
	}
	if err = appendAudit(ctx, uow.EventRepository(), current,
		event.TypeOrderFailed, event.SourceOrchestrator, event.StatusFailed, reason, now); err != nil {
		return current, err
	}
	if err = uow.Commit(ctx); err != nil {
		return current, err
	}

	notifier.Publish(ports.StatusUpdate{
		OrderID:       current.ID().String(),
		CorrelationID: current.CorrelationID(),
		Status:        current.Status().String(),
		EventType:     event.TypeOrderFailed,
		Description:   reason,
		OccurredAt:    now,
	})

	return current, nil
}
