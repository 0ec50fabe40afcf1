package commands

import (
	"context"
	"fmt"
	"time"

	"fulfillment/internal/core/domain/model/event"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/model/outcome"
	"fulfillment/internal/core/ports"
)

// CreateOrderCommandHandler handles the business logic for order intake.
// Persists the order in NEW status together with its ORDER_CREATED audit
// record, then asks the billing collaborator to charge it. Billing's answer
// arrives later on the bus; intake does not wait for it.
type CreateOrderCommandHandler struct {
	uowFactory OrderUoWFactory
	dispatcher ports.Dispatcher
	notifier   ports.Notifier
	now        func() time.Time
}

// NewCreateOrderCommandHandler creates a handler for order intake.
func NewCreateOrderCommandHandler(
	uowFactory OrderUoWFactory,
	dispatcher ports.Dispatcher,
	notifier ports.Notifier,
) CreateOrderCommandHandler {
	return CreateOrderCommandHandler{
		uowFactory: uowFactory,
		dispatcher: dispatcher,
		notifier:   notifier,
		now:        time.Now,
	}
}

// Handle processes the order intake command and returns the created order.
// The order and its first audit record are committed atomically before the
// billing request leaves the process, so a crash between the two leaves a
// NEW order the timeout watchdog will pick up, never a charge without an
// order.
func (h *CreateOrderCommandHandler) Handle(ctx context.Context, cmd CreateOrderCommand) (*order.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	now := h.now()
	ord, err := order.NewOrder(kernel.NewUUID(), cmd.CustomerID(), cmd.Address(), cmd.TotalAmount(), now)
	if err != nil {
		return nil, err
	}

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if err = uow.OrderRepository().Add(ctx, ord); err != nil {
		return nil, err
	}

	if err = appendAudit(ctx, uow.EventRepository(), ord,
		event.TypeOrderCreated, event.SourceOrchestrator, event.StatusSuccess,
		fmt.Sprintf("order accepted for customer %s", ord.CustomerID()), now); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	if err = h.dispatcher.Send(ctx, outcome.NewBillingRequest(ord)); err != nil {
		return failOrder(ctx, h.uowFactory, ord,
			fmt.Sprintf("billing request could not be delivered: %s", err), h.notifier, h.now())
	}

	return ord, nil
}
