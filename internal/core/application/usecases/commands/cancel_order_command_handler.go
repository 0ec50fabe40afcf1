package commands

import (
	"context"
	"time"

	"fulfillment/internal/core/domain/model/event"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/keylock"
)

// CancelOrderCommandHandler handles operator cancellation. Takes the same
// per-order lock as the coordinator so a cancellation and an inbound outcome
// never interleave.
type CancelOrderCommandHandler struct {
	uowFactory OrderUoWFactory
	notifier   ports.Notifier
	locks      *keylock.KeyedMutex
	now        func() time.Time
}

// NewCancelOrderCommandHandler creates a handler for order cancellation.
func NewCancelOrderCommandHandler(
	uowFactory OrderUoWFactory,
	notifier ports.Notifier,
	locks *keylock.KeyedMutex,
) CancelOrderCommandHandler {
	return CancelOrderCommandHandler{
		uowFactory: uowFactory,
		notifier:   notifier,
		locks:      locks,
		now:        time.Now,
	}
}

// Handle cancels the order: terminal CANCELLED status plus an
// ORDER_CANCELLED audit record, committed atomically. Cancelling a terminal
// order returns the transition error from the state machine.
func (h *CancelOrderCommandHandler) Handle(ctx context.Context, cmd CancelOrderCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	unlock := h.locks.Lock(cmd.OrderID().String())
	defer unlock()

	now := h.now()

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	ord, err := uow.OrderRepository().Get(ctx, cmd.OrderID())
	if err != nil {
		return err
	}

	if err = ord.Cancel(now); err != nil {
		return err
	}

	if err = uow.OrderRepository().Update(ctx, ord); err != nil {
		return err
	}

	description := "order cancelled by operator"
	if cmd.Reason() != "" {
		description += ": " + cmd.Reason()
	}

	if err = appendAudit(ctx, uow.EventRepository(), ord,
		event.TypeOrderCancelled, event.SourceOrchestrator, event.StatusSuccess,
		description, now); err != nil {
		return err
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	h.notifier.Publish(ports.StatusUpdate{
		OrderID:       ord.ID().String(),
		CorrelationID: ord.CorrelationID(),
		Status:        ord.Status().String(),
		EventType:     event.TypeOrderCancelled,
		Description:   description,
		OccurredAt:    now,
	})

	return nil
}
