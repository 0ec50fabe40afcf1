package event

import (
	"errors"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
)

// ErrEventIsNotConstructed is returned when an Event instance was not created
// through NewEvent or RestoreEvent.
var ErrEventIsNotConstructed = errors.New("Event must be created via NewEvent or RestoreEvent")

// Source identifies which participant of the workflow produced an event.
type Source string

const (
	SourceOrchestrator    Source = "ORCHESTRATOR"
	SourceBillingService  Source = "BILLING_SERVICE"
	SourceWarehouse       Source = "WAREHOUSE_SERVICE"
	SourceRoutingService  Source = "ROUTING_SERVICE"
	SourceDriverService   Source = "DRIVER_SERVICE"
	SourceDeliveryService Source = "DELIVERY_SERVICE"
)

// Validate checks that the source is one of the known workflow participants.
func (s Source) Validate() error {
	switch s {
	case SourceOrchestrator, SourceBillingService, SourceWarehouse,
		SourceRoutingService, SourceDriverService, SourceDeliveryService:
		return nil
	}
	return errs.NewValueIsInvalidError("source")
}

// EventStatus classifies an event's outcome in the audit log.
type EventStatus string

const (
	StatusSuccess EventStatus = "SUCCESS"
	StatusFailed  EventStatus = "FAILED"
	StatusPending EventStatus = "PENDING"
	StatusWarning EventStatus = "WARNING"
)

// Validate checks that the status is one of the known classifications.
func (s EventStatus) Validate() error {
	switch s {
	case StatusSuccess, StatusFailed, StatusPending, StatusWarning:
		return nil
	}
	return errs.NewValueIsInvalidError("eventStatus")
}

// Event types recorded by the workflow. They form the vocabulary of the
// per-order audit trail; new types may be appended but existing names are
// part of the stored contract and must not change.
const (
	TypeOrderCreated = "ORDER_CREATED"

	TypeBillingRequested = "BILLING_REQUESTED"
	TypeBillingCompleted = "BILLING_COMPLETED"
	TypeBillingPending   = "BILLING_PENDING"
	TypeBillingFailed    = "BILLING_FAILED"

	TypeWarehouseRequested  = "WAREHOUSE_REQUESTED"
	TypeWarehouseProcessing = "WAREHOUSE_PROCESSING"
	TypePackageReady        = "PACKAGE_READY"
	TypeWarehouseFailed     = "WAREHOUSE_FAILED"

	TypeRouteRequested = "ROUTE_REQUESTED"
	TypeRoutePending   = "ROUTE_PENDING"
	TypeRouteCreated   = "ROUTE_CREATED"
	TypeRouteFailed    = "ROUTE_FAILED"

	TypeDriverAssigned  = "DRIVER_ASSIGNED"
	TypeDriverEnRoute   = "DRIVER_EN_ROUTE"
	TypePackagePickedUp = "PACKAGE_PICKED_UP"
	TypeDriverFailed    = "DRIVER_FAILED"

	TypeDeliveryInTransit = "DELIVERY_IN_TRANSIT"
	TypeDeliveryAttempted = "DELIVERY_ATTEMPTED"
	TypeDeliveryFailed    = "DELIVERY_FAILED"
	TypeOrderDelivered    = "ORDER_DELIVERED"

	TypeOrderCancelled = "ORDER_CANCELLED"
	TypeOrderFailed    = "ORDER_FAILED"

	TypeOutcomeReceived  = "OUTCOME_RECEIVED"
	TypeDuplicateIgnored = "DUPLICATE_IGNORED"
	TypeOutcomeRejected  = "OUTCOME_REJECTED"
	TypeUnknownStatus    = "UNKNOWN_STATUS"

	TypeOrderSentToBilling   = "ORDER_SENT_TO_BILLING"
	TypeOrderSentToWarehouse = "ORDER_SENT_TO_WAREHOUSE"
	TypeOrderSentToRouting   = "ORDER_SENT_TO_ROUTING"
	TypeDispatchFailed       = "DISPATCH_FAILED"
	TypeDeadLettered         = "DEAD_LETTERED"
	TypeStageTimeout         = "STAGE_TIMEOUT"
)

// Event is an immutable audit record of something that happened to an order.
// Events are append-only: they are written once and never updated or deleted.
type Event struct {
	id            kernel.UUID
	orderID       kernel.UUID
	correlationID string
	eventType     string
	source        Source
	status        EventStatus
	description   string
	occurredAt    time.Time

	isConstructed bool
}

// NewEvent creates a validated audit record with a fresh event id.
func NewEvent(
	orderID kernel.UUID,
	correlationID string,
	eventType string,
	source Source,
	status EventStatus,
	description string,
	occurredAt time.Time,
) (*Event, error) {
	var errList []error
	if err := orderID.Validate(); err != nil {
		errList = append(errList, err)
	}
	if eventType == "" {
		errList = append(errList, errs.NewValueIsRequiredError("eventType"))
	}
	if err := source.Validate(); err != nil {
		errList = append(errList, err)
	}
	if err := status.Validate(); err != nil {
		errList = append(errList, err)
	}
	if err := errors.Join(errList...); err != nil {
		return nil, err
	}

	return &Event{
		id:            kernel.NewUUID(),
		orderID:       orderID,
		correlationID: correlationID,
		eventType:     eventType,
		source:        source,
		status:        status,
		description:   description,
		occurredAt:    occurredAt,
		isConstructed: true,
	}, nil
}

// RestoreEvent reconstructs an event from persistence.
func RestoreEvent(
	id kernel.UUID,
	orderID kernel.UUID,
	correlationID string,
	eventType string,
	source Source,
	status EventStatus,
	description string,
	occurredAt time.Time,
) (*Event, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}
	if err := orderID.Validate(); err != nil {
		return nil, err
	}

	return &Event{
		id:            id,
		orderID:       orderID,
		correlationID: correlationID,
		eventType:     eventType,
		source:        source,
		status:        status,
		description:   description,
		occurredAt:    occurredAt,
		isConstructed: true,
	}, nil
}

// Validate ensures the Event instance was properly constructed.
func (e *Event) Validate() error {
	if e == nil || !e.isConstructed {
		return ErrEventIsNotConstructed
	}
	return nil
}

// ID returns the event's unique identifier.
func (e *Event) ID() kernel.UUID { return e.id }

// OrderID returns the order this event belongs to.
func (e *Event) OrderID() kernel.UUID { return e.orderID }

// CorrelationID returns the workflow tracking key carried by the event.
func (e *Event) CorrelationID() string { return e.correlationID }

// Type returns the event type name, e.g. "BILLING_COMPLETED".
func (e *Event) Type() string { return e.eventType }

// Source returns the workflow participant that produced the event.
func (e *Event) Source() Source { return e.source }

// Status returns the event's outcome classification.
func (e *Event) Status() EventStatus { return e.status }

// Description returns the human-readable detail line.
func (e *Event) Description() string { return e.description }

// OccurredAt returns when the event happened.
func (e *Event) OccurredAt() time.Time { return e.occurredAt }
