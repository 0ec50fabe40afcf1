package services

import (
	"fmt"

	"fulfillment/internal/core/domain/model/event"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/model/outcome"
)

// Action classifies what the coordinator must do with an inbound outcome.
type Action int

const (
	// ActionApply transitions the order and records the decision's event.
	ActionApply Action = iota

	// ActionPending records an in-progress event without completing the
	// stage. NextStatus may still name an in-progress status (e.g.
	// PROCESSING) or keep the order where it is.
	ActionPending

	// ActionDuplicate drops the outcome because the order already moved
	// past the reporting stage. Records a DUPLICATE_IGNORED event.
	ActionDuplicate

	// ActionReject drops the outcome because the order has not reached the
	// reporting stage yet, or is terminal. Records a rejection event.
	ActionReject

	// ActionUnknown drops the outcome because the reported status is not in
	// the stage's schema. Records an UNKNOWN_STATUS event.
	ActionUnknown
)

// Decision is the outcome of evaluating one collaborator report against the
// order's current status. It tells the coordinator what to persist, what to
// audit, whether to dispatch the next-stage request, and whether subscribers
// should hear about it.
type Decision struct {
	Action      Action
	NextStatus  order.Status
	EventType   string
	EventStatus event.EventStatus
	Description string

	// NextStage names the stage to request after a successful apply, or ""
	// when the workflow advances without an orchestrator request.
	NextStage outcome.Stage

	// Notify marks decisions subscribers should see.
	Notify bool
}

// Decide evaluates an inbound outcome against the order's current status and
// returns the action to take. It is a pure function: no I/O, no clock, no
// mutation, which keeps every branch of the workflow table-testable.
func Decide(current order.Status, out outcome.Outcome) Decision {
	if !out.Stage.KnownStatus(out.Status) {
		return Decision{
			Action:      ActionUnknown,
			EventType:   event.TypeUnknownStatus,
			EventStatus: event.StatusWarning,
			Description: fmt.Sprintf("unknown status %q reported by %s stage", out.Status, out.Stage),
		}
	}

	switch out.Stage {
	case outcome.StageBilling:
		return decideBilling(current, out)
	case outcome.StageWarehouse:
		return decideWarehouse(current, out)
	case outcome.StageRouting:
		return decideRouting(current, out)
	case outcome.StageDriver:
		return decideDriver(current, out)
	case outcome.StageDelivery:
		return decideDelivery(current, out)
	}

	return Decision{
		Action:      ActionUnknown,
		EventType:   event.TypeUnknownStatus,
		EventStatus: event.StatusWarning,
		Description: fmt.Sprintf("unknown stage %q", out.Stage),
	}
}

func contains(set []order.Status, s order.Status) bool {
	for _, v := range set {
		if v == s {
			return true
		}
	}
	return false
}

func duplicate(out outcome.Outcome, current order.Status) Decision {
	return Decision{
		Action:      ActionDuplicate,
		EventType:   event.TypeDuplicateIgnored,
		EventStatus: event.StatusWarning,
		Description: fmt.Sprintf("%s reported %s but order is already %s; ignored as duplicate",
			out.Stage, out.Status, current),
	}
}

func reject(out outcome.Outcome, current order.Status) Decision {
	return Decision{
		Action:      ActionReject,
		EventType:   event.TypeOutcomeRejected,
		EventStatus: event.StatusWarning,
		Description: fmt.Sprintf("%s reported %s but order is %s; out of sequence, dropped",
			out.Stage, out.Status, current),
	}
}

func failureDescription(base string, reason string) string {
	if reason == "" {
		return base
	}
	return base + ": " + reason
}

// billingDone covers every status only reachable after billing completed.
func billingDone() []order.Status {
	return []order.Status{
		order.Billed, order.Processing, order.Ready, order.WarehouseFailed,
		order.Routing, order.Routed, order.RouteFailed,
		order.Assigned, order.InTransit, order.Delivered,
	}
}

func decideBilling(current order.Status, out outcome.Outcome) Decision {
	applyFrom := []order.Status{order.New, order.BillingPending}

	switch out.Status {
	case outcome.BillingBilled:
		if contains(applyFrom, current) {
			return Decision{
				Action:      ActionApply,
				NextStatus:  order.Billed,
				EventType:   event.TypeBillingCompleted,
				EventStatus: event.StatusSuccess,
				Description: "billing completed",
				NextStage:   outcome.StageWarehouse,
				Notify:      true,
			}
		}
		if contains(billingDone(), current) {
			return duplicate(out, current)
		}

	case outcome.BillingFailed:
		if contains(applyFrom, current) {
			return Decision{
				Action:      ActionApply,
				NextStatus:  order.BillingFailed,
				EventType:   event.TypeBillingFailed,
				EventStatus: event.StatusFailed,
				Description: failureDescription("billing failed", out.Payload.FailureReason),
				Notify:      true,
			}
		}
		if current == order.BillingFailed {
			return duplicate(out, current)
		}

	case outcome.BillingPending:
		if current == order.New {
			return Decision{
				Action:      ActionApply,
				NextStatus:  order.BillingPending,
				EventType:   event.TypeBillingPending,
				EventStatus: event.StatusPending,
				Description: "billing in progress",
				Notify:      true,
			}
		}
		if current == order.BillingPending || contains(billingDone(), current) {
			return duplicate(out, current)
		}
	}

	return reject(out, current)
}

// warehouseDone covers every status only reachable after the package was
// ready.
func warehouseDone() []order.Status {
	return []order.Status{
		order.Ready, order.Routing, order.Routed, order.RouteFailed,
		order.Assigned, order.InTransit, order.Delivered,
	}
}

func decideWarehouse(current order.Status, out outcome.Outcome) Decision {
	applyFrom := []order.Status{order.Billed, order.Processing}

	switch out.Status {
	case outcome.WarehouseReady:
		if contains(applyFrom, current) {
			return Decision{
				Action:      ActionApply,
				NextStatus:  order.Ready,
				EventType:   event.TypePackageReady,
				EventStatus: event.StatusSuccess,
				Description: "package ready for shipment",
				NextStage:   outcome.StageRouting,
				Notify:      true,
			}
		}
		if contains(warehouseDone(), current) {
			return duplicate(out, current)
		}

	case outcome.WarehouseFailed:
		if contains(applyFrom, current) {
			return Decision{
				Action:      ActionApply,
				NextStatus:  order.WarehouseFailed,
				EventType:   event.TypeWarehouseFailed,
				EventStatus: event.StatusFailed,
				Description: failureDescription("warehouse processing failed", out.Payload.FailureReason),
				Notify:      true,
			}
		}
		if current == order.WarehouseFailed {
			return duplicate(out, current)
		}

	case outcome.WarehouseProcessing:
		if current == order.Billed {
			return Decision{
				Action:      ActionApply,
				NextStatus:  order.Processing,
				EventType:   event.TypeWarehouseProcessing,
				EventStatus: event.StatusPending,
				Description: "warehouse packaging in progress",
				Notify:      true,
			}
		}
		if current == order.Processing || contains(warehouseDone(), current) {
			return duplicate(out, current)
		}
	}

	return reject(out, current)
}

// routingDone covers every status only reachable after a route existed.
func routingDone() []order.Status {
	return []order.Status{order.Routed, order.Assigned, order.InTransit, order.Delivered}
}

func decideRouting(current order.Status, out outcome.Outcome) Decision {
	applyFrom := []order.Status{order.Ready, order.Routing}

	switch out.Status {
	case outcome.RoutingRouted:
		if contains(applyFrom, current) {
			return Decision{
				Action:      ActionApply,
				NextStatus:  order.Routed,
				EventType:   event.TypeRouteCreated,
				EventStatus: event.StatusSuccess,
				Description: "route planned",
				Notify:      true,
			}
		}
		if contains(routingDone(), current) {
			return duplicate(out, current)
		}

	case outcome.RoutingFailed:
		if contains(applyFrom, current) {
			return Decision{
				Action:      ActionApply,
				NextStatus:  order.RouteFailed,
				EventType:   event.TypeRouteFailed,
				EventStatus: event.StatusFailed,
				Description: failureDescription("route planning failed", out.Payload.FailureReason),
				Notify:      true,
			}
		}
		if current == order.RouteFailed {
			return duplicate(out, current)
		}

	case outcome.RoutingRouting:
		if current == order.Ready {
			return Decision{
				Action:      ActionApply,
				NextStatus:  order.Routing,
				EventType:   event.TypeRoutePending,
				EventStatus: event.StatusPending,
				Description: "route planning in progress",
				Notify:      true,
			}
		}
		if current == order.Routing || contains(routingDone(), current) {
			return duplicate(out, current)
		}
	}

	return reject(out, current)
}

// pickupDone covers every status only reachable after the driver picked the
// package up. ASSIGNED deliberately stays out: an assigned order must still
// accept the pickup report.
func pickupDone() []order.Status {
	return []order.Status{order.InTransit, order.Delivered}
}

func decideDriver(current order.Status, out outcome.Outcome) Decision {
	switch out.Status {
	case outcome.DriverAssigned:
		if current == order.Routed {
			return Decision{
				Action:      ActionApply,
				NextStatus:  order.Assigned,
				EventType:   event.TypeDriverAssigned,
				EventStatus: event.StatusSuccess,
				Description: "driver assigned",
				Notify:      true,
			}
		}
		if current == order.Assigned || contains(pickupDone(), current) {
			return duplicate(out, current)
		}

	case outcome.DriverEnRoute:
		if current == order.Assigned {
			return Decision{
				Action:      ActionPending,
				EventType:   event.TypeDriverEnRoute,
				EventStatus: event.StatusPending,
				Description: "driver en route to pickup",
			}
		}
		if contains(pickupDone(), current) {
			return duplicate(out, current)
		}

	case outcome.DriverPickupCompleted:
		if current == order.Assigned {
			return Decision{
				Action:      ActionApply,
				NextStatus:  order.InTransit,
				EventType:   event.TypePackagePickedUp,
				EventStatus: event.StatusSuccess,
				Description: "package picked up",
				Notify:      true,
			}
		}
		if contains(pickupDone(), current) {
			return duplicate(out, current)
		}

	case outcome.DriverFailed:
		if current == order.Routed || current == order.Assigned {
			return Decision{
				Action:      ActionApply,
				NextStatus:  order.Failed,
				EventType:   event.TypeDriverFailed,
				EventStatus: event.StatusFailed,
				Description: failureDescription("driver stage failed", out.Payload.FailureReason),
				Notify:      true,
			}
		}
		if current == order.Failed {
			return duplicate(out, current)
		}
	}

	return reject(out, current)
}

func decideDelivery(current order.Status, out outcome.Outcome) Decision {
	switch out.Status {
	case outcome.DeliveryDelivered:
		if current == order.InTransit || current == order.Assigned {
			return Decision{
				Action:      ActionApply,
				NextStatus:  order.Delivered,
				EventType:   event.TypeOrderDelivered,
				EventStatus: event.StatusSuccess,
				Description: "order delivered",
				Notify:      true,
			}
		}
		if current == order.Delivered {
			return duplicate(out, current)
		}

	case outcome.DeliveryInTransit:
		if current == order.Assigned {
			return Decision{
				Action:      ActionApply,
				NextStatus:  order.InTransit,
				EventType:   event.TypeDeliveryInTransit,
				EventStatus: event.StatusPending,
				Description: "package in transit",
				Notify:      true,
			}
		}
		if current == order.InTransit || current == order.Delivered {
			return duplicate(out, current)
		}

	case outcome.DeliveryAttempted:
		if current == order.InTransit {
			return Decision{
				Action:      ActionPending,
				EventType:   event.TypeDeliveryAttempted,
				EventStatus: event.StatusWarning,
				Description: failureDescription("delivery attempt unsuccessful, will retry", out.Payload.FailureReason),
			}
		}
		if current == order.Delivered {
			return duplicate(out, current)
		}

	case outcome.DeliveryFailed:
		if current == order.InTransit || current == order.Assigned {
			return Decision{
				Action:      ActionApply,
				NextStatus:  order.Failed,
				EventType:   event.TypeDeliveryFailed,
				EventStatus: event.StatusFailed,
				Description: failureDescription("delivery failed", out.Payload.FailureReason),
				Notify:      true,
			}
		}
		if current == order.Failed {
			return duplicate(out, current)
		}
	}

	return reject(out, current)
}
