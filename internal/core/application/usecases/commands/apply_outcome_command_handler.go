package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fulfillment/internal/core/domain/model/event"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/model/outcome"
	"fulfillment/internal/core/domain/services"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/keylock"
)

// maxApplyAttempts bounds the optimistic-lock retry loop. Two writers per
// order is already rare; three losses in a row means something is wrong and
// the message should go back to the consumer's retry path.
const maxApplyAttempts = 3

// ApplyOutcomeCommandHandler is the saga coordinator: it applies one
// collaborator outcome to one order. Processing per order is serialized two
// ways: a keyed mutex covers writers inside this process, and a versioned
// compare-and-swap on the order row covers writers in other processes. A
// lost swap re-reads and re-decides, because the other writer may have made
// this outcome a duplicate.
type ApplyOutcomeCommandHandler struct {
	uowFactory OrderUoWFactory
	dispatcher ports.Dispatcher
	notifier   ports.Notifier
	locks      *keylock.KeyedMutex
	now        func() time.Time
}

// NewApplyOutcomeCommandHandler creates the coordinator handler.
func NewApplyOutcomeCommandHandler(
	uowFactory OrderUoWFactory,
	dispatcher ports.Dispatcher,
	notifier ports.Notifier,
	locks *keylock.KeyedMutex,
) ApplyOutcomeCommandHandler {
	return ApplyOutcomeCommandHandler{
		uowFactory: uowFactory,
		dispatcher: dispatcher,
		notifier:   notifier,
		locks:      locks,
		now:        time.Now,
	}
}

// Handle applies the outcome. Whatever the verdict, an audit record is
// written: received outcomes are never processed silently. Errors bubble to
// the consumer, whose retry policy decides between redelivery and the dead
// letter queue.
func (h *ApplyOutcomeCommandHandler) Handle(ctx context.Context, cmd ApplyOutcomeCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}
	out := cmd.Outcome()

	unlock := h.locks.Lock(out.OrderID.String())
	defer unlock()

	var err error
	for attempt := 0; attempt < maxApplyAttempts; attempt++ {
		err = h.apply(ctx, out)
		if !errors.Is(err, errs.ErrVersionConflict) {
			return err
		}
	}
	return err
}

func (h *ApplyOutcomeCommandHandler) apply(ctx context.Context, out outcome.Outcome) error {
	now := h.now()

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	ord, err := uow.OrderRepository().Get(ctx, out.OrderID)
	if err != nil {
		return err
	}

	if err = appendAudit(ctx, uow.EventRepository(), ord,
		event.TypeOutcomeReceived, out.Stage.Source(), event.StatusSuccess,
		fmt.Sprintf("%s reported %s", out.Stage, out.Status), now); err != nil {
		return err
	}

	decision := services.Decide(ord.Status(), out)

	if decision.Action == services.ActionApply {
		if err = applyTransition(ord, decision, out, now); err != nil {
			return err
		}
		if err = uow.OrderRepository().Update(ctx, ord); err != nil {
			return err
		}
	}

	if err = appendAudit(ctx, uow.EventRepository(), ord,
		decision.EventType, out.Stage.Source(), decision.EventStatus,
		decision.Description, now); err != nil {
		return err
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	if decision.Notify {
		h.notifier.Publish(ports.StatusUpdate{
			OrderID:       ord.ID().String(),
			CorrelationID: ord.CorrelationID(),
			Status:        ord.Status().String(),
			EventType:     decision.EventType,
			Description:   decision.Description,
			OccurredAt:    now,
		})
	}

	if decision.Action == services.ActionApply && decision.NextStage != "" {
		if err = h.dispatchNext(ctx, ord, decision.NextStage); err != nil {
			// The dispatcher has already parked the request on the dead
			// letter queue and recorded the failure. The order keeps its
			// committed status so an operator can re-drive the handoff.
			return nil
		}
	}

	return nil
}

func (h *ApplyOutcomeCommandHandler) dispatchNext(ctx context.Context, ord *order.Order, stage outcome.Stage) error {
	switch stage {
	case outcome.StageWarehouse:
		return h.dispatcher.Send(ctx, outcome.NewWarehouseRequest(ord))
	case outcome.StageRouting:
		return h.dispatcher.Send(ctx, outcome.NewRoutingRequest(ord))
	default:
		return errs.NewValueIsInvalidError("nextStage")
	}
}

// applyTransition maps the decision's target status onto the aggregate
// method that enforces it, feeding in the payload fields the stage produced.
func applyTransition(ord *order.Order, decision services.Decision, out outcome.Outcome, now time.Time) error {
	switch decision.NextStatus {
	case order.Billed:
		return ord.MarkBilled(out.Payload.BilledAmount, now)
	case order.BillingPending:
		return ord.MarkBillingPending(now)
	case order.BillingFailed:
		return ord.MarkBillingFailed(now)
	case order.Processing:
		return ord.MarkProcessing(now)
	case order.Ready:
		return ord.MarkReady(now)
	case order.WarehouseFailed:
		return ord.MarkWarehouseFailed(now)
	case order.Routing:
		return ord.MarkRouting(now)
	case order.Routed:
		return ord.MarkRouted(out.Payload.Waypoints, now)
	case order.Assigned:
		return ord.MarkAssigned(out.Payload.DriverID, out.Payload.VehicleID, now)
	case order.InTransit:
		return ord.MarkInTransit(now)
	case order.Delivered:
		return ord.MarkDelivered(now)
	case order.Failed:
		return ord.MarkFailed(now)
	default:
		return errs.NewValueIsInvalidError("nextStatus")
	}
}
