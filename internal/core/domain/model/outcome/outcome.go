package outcome

import (
	"errors"
	"fmt"

	"fulfillment/internal/core/domain/model/event"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
)

// Stage identifies the workflow stage a collaborator outcome belongs to.
type Stage string

const (
	StageBilling   Stage = "BILLING"
	StageWarehouse Stage = "WAREHOUSE"
	StageRouting   Stage = "ROUTING"
	StageDriver    Stage = "DRIVER"
	StageDelivery  Stage = "DELIVERY"
)

// Validate checks that the stage is one of the five workflow stages.
func (s Stage) Validate() error {
	switch s {
	case StageBilling, StageWarehouse, StageRouting, StageDriver, StageDelivery:
		return nil
	}
	return errs.NewValueIsInvalidErrorWithCause("stage", fmt.Errorf("%q is not a workflow stage", string(s)))
}

// InboundTopic returns the bus topic the stage's collaborator publishes
// outcomes on.
func (s Stage) InboundTopic() string {
	switch s {
	case StageBilling:
		return TopicBillingUpdates
	case StageWarehouse:
		return TopicWarehouseUpdates
	case StageRouting:
		return TopicRouteUpdates
	case StageDriver:
		return TopicDriverUpdates
	case StageDelivery:
		return TopicDeliveryUpdates
	}
	return ""
}

// Source returns the audit-log source corresponding to the stage's
// collaborator.
func (s Stage) Source() event.Source {
	switch s {
	case StageBilling:
		return event.SourceBillingService
	case StageWarehouse:
		return event.SourceWarehouse
	case StageRouting:
		return event.SourceRoutingService
	case StageDriver:
		return event.SourceDriverService
	case StageDelivery:
		return event.SourceDeliveryService
	}
	return event.SourceOrchestrator
}

// Bus topic names. Inbound topics carry collaborator outcomes toward the
// coordinator; request topics carry next-step requests outward. A topic's
// dead-letter companion is the topic name with the ".dlq" suffix.
const (
	TopicBillingUpdates   = "billing.updates"
	TopicWarehouseUpdates = "warehouse.updates"
	TopicRouteUpdates     = "route.updates"
	TopicDriverUpdates    = "driver.updates"
	TopicDeliveryUpdates  = "delivery.updates"

	TopicBillingRequests   = "billing.requests"
	TopicWarehouseRequests = "warehouse.requests"
	TopicRoutingRequests   = "routing.requests"
)

// DeadLetterTopic returns the dead-letter companion of a topic.
func DeadLetterTopic(topic string) string {
	return topic + ".dlq"
}

// Statuses reported by collaborators, per stage. These are the wire values
// of the inbound messages, distinct from the order's own Status enum.
const (
	BillingBilled  = "BILLED"
	BillingFailed  = "FAILED"
	BillingPending = "PENDING"

	WarehouseReady      = "READY"
	WarehouseFailed     = "FAILED"
	WarehouseProcessing = "PROCESSING"

	RoutingRouted  = "ROUTED"
	RoutingFailed  = "FAILED"
	RoutingRouting = "ROUTING"

	DriverAssigned        = "ASSIGNED"
	DriverEnRoute         = "EN_ROUTE"
	DriverPickupCompleted = "PICKUP_COMPLETED"
	DriverFailed          = "FAILED"

	DeliveryDelivered = "DELIVERED"
	DeliveryInTransit = "IN_TRANSIT"
	DeliveryAttempted = "ATTEMPTED"
	DeliveryFailed    = "FAILED"
)

func stageStatuses() map[Stage][]string {
	return map[Stage][]string{
		StageBilling:   {BillingBilled, BillingFailed, BillingPending},
		StageWarehouse: {WarehouseReady, WarehouseFailed, WarehouseProcessing},
		StageRouting:   {RoutingRouted, RoutingFailed, RoutingRouting},
		StageDriver:    {DriverAssigned, DriverEnRoute, DriverPickupCompleted, DriverFailed},
		StageDelivery:  {DeliveryDelivered, DeliveryInTransit, DeliveryAttempted, DeliveryFailed},
	}
}

// KnownStatus reports whether status is in the stage's reporting schema.
// Unknown statuses are not an error at the transport level; the coordinator
// records them and drops the outcome.
func (s Stage) KnownStatus(status string) bool {
	for _, known := range stageStatuses()[s] {
		if known == status {
			return true
		}
	}
	return false
}

// Payload carries the stage-specific data of an outcome. Collaborators fill
// only the fields their stage produces; the rest stay zero.
type Payload struct {
	BilledAmount         float64  `json:"billedAmount,omitempty"`
	BillingTransactionID string   `json:"billingTransactionId,omitempty"`
	Waypoints            []string `json:"waypoints,omitempty"`
	DriverID             string   `json:"driverId,omitempty"`
	DriverName           string   `json:"driverName,omitempty"`
	VehicleID            string   `json:"vehicleId,omitempty"`
	FailureReason        string   `json:"failureReason,omitempty"`
}

// Outcome is the canonical inbound message: one collaborator's report about
// one order at one stage. It is a plain value decoded off the bus; Validate
// enforces the transport-level schema (identity present, stage known) while
// status semantics are left to the coordinator.
type Outcome struct {
	OrderID       kernel.UUID `json:"orderId"`
	CorrelationID string      `json:"correlationId"`
	Stage         Stage       `json:"stage"`
	Status        string      `json:"status"`
	Payload       Payload     `json:"payload"`
}

// Validate checks the transport-level schema of the outcome.
func (o Outcome) Validate() error {
	var errList []error
	if err := o.OrderID.Validate(); err != nil {
		errList = append(errList, err)
	}
	if err := o.Stage.Validate(); err != nil {
		errList = append(errList, err)
	}
	if o.Status == "" {
		errList = append(errList, errs.NewValueIsRequiredError("status"))
	}
	return errors.Join(errList...)
}
