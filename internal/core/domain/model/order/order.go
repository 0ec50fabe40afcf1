package order

import (
	"errors"
	"fmt"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
)

// ErrOrderIsNotConstructed is returned when an Order instance was not created
// through NewOrder or RestoreOrder. This ensures all orders are validated.
var ErrOrderIsNotConstructed = errors.New("Order must be created via NewOrder or RestoreOrder")

// Billing status values reported back by the billing collaborator and kept
// on the order for the query surface.
const (
	BillingStatusCompleted = "COMPLETED"
	BillingStatusFailed    = "FAILED"
	BillingStatusPending   = "PENDING"
)

// Order is the aggregate root of the fulfillment workflow. It owns the
// authoritative lifecycle status of a single order and the per-stage
// timestamps recorded as the saga progresses.
//
// Order follows these invariants:
//   - Status only moves along edges of the Status transition table
//   - Each stage timestamp is set exactly once, when the transition is
//     first applied
//   - Route and driver fields are populated only after routing succeeds
//   - Orders are never deleted; terminal states are retained for audit
//
// All mutation goes through the Mark* methods so the invariants cannot be
// bypassed. The saga coordinator is the only writer.
type Order struct {
	id            kernel.UUID
	correlationID string
	customerID    string
	address       Address

	totalAmount   float64
	billingStatus string

	status  Status
	version int

	waypoints []string
	driverID  string
	vehicleID string

	createdAt      time.Time
	billedAt       *time.Time
	packageReadyAt *time.Time
	routedAt       *time.Time
	pickedUpAt     *time.Time
	deliveredAt    *time.Time
	updatedAt      time.Time

	isConstructed bool
}

// NewOrder creates an order at intake: status NEW, a fresh correlation id,
// and createdAt set to now. The correlation id is the externally visible
// tracking key used to associate workflow messages across services.
func NewOrder(id kernel.UUID, customerID string, address Address, totalAmount float64, now time.Time) (*Order, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}
	if customerID == "" {
		return nil, errs.NewValueIsRequiredError("customerId")
	}
	if address.IsZero() {
		return nil, errs.NewValueIsRequiredError("address")
	}
	if totalAmount <= 0 {
		return nil, errs.NewValueIsInvalidErrorWithCause("totalAmount",
			fmt.Errorf("%f is not greater than 0", totalAmount))
	}

	return &Order{
		id:            id,
		correlationID: kernel.NewUUID().String(),
		customerID:    customerID,
		address:       address,
		totalAmount:   totalAmount,
		status:        New,
		version:       1,
		createdAt:     now,
		updatedAt:     now,
		isConstructed: true,
	}, nil
}

// RestoreOrder reconstructs an order from persistence without re-running
// intake validation. The repository is responsible for passing back exactly
// what was stored.
func RestoreOrder(
	id kernel.UUID,
	correlationID string,
	customerID string,
	address Address,
	totalAmount float64,
	billingStatus string,
	status Status,
	version int,
	waypoints []string,
	driverID string,
	vehicleID string,
	createdAt time.Time,
	billedAt, packageReadyAt, routedAt, pickedUpAt, deliveredAt *time.Time,
	updatedAt time.Time,
) (*Order, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}
	if err := status.Validate(); err != nil {
		return nil, err
	}

	return &Order{
		id:             id,
		correlationID:  correlationID,
		customerID:     customerID,
		address:        address,
		totalAmount:    totalAmount,
		billingStatus:  billingStatus,
		status:         status,
		version:        version,
		waypoints:      waypoints,
		driverID:       driverID,
		vehicleID:      vehicleID,
		createdAt:      createdAt,
		billedAt:       billedAt,
		packageReadyAt: packageReadyAt,
		routedAt:       routedAt,
		pickedUpAt:     pickedUpAt,
		deliveredAt:    deliveredAt,
		updatedAt:      updatedAt,
		isConstructed:  true,
	}, nil
}

// Validate ensures the Order instance was properly constructed.
func (o *Order) Validate() error {
	if o == nil || !o.isConstructed {
		return ErrOrderIsNotConstructed
	}
	return nil
}

// IsEqual compares two orders by identity.
func (o *Order) IsEqual(other *Order) bool {
	return other != nil && o.id.IsEqual(other.id)
}

// ID returns the order's unique identifier.
func (o *Order) ID() kernel.UUID {
	return o.id
}

// CorrelationID returns the externally visible tracking key.
func (o *Order) CorrelationID() string {
	return o.correlationID
}

// CustomerID returns the owning customer's identifier.
func (o *Order) CustomerID() string {
	return o.customerID
}

// Address returns the delivery destination.
func (o *Order) Address() Address {
	return o.address
}

// TotalAmount returns the billable order amount.
func (o *Order) TotalAmount() float64 {
	return o.totalAmount
}

// BillingStatus returns the last billing status reported by the billing
// collaborator, or "" before billing has reported.
func (o *Order) BillingStatus() string {
	return o.billingStatus
}

// Status returns the current workflow status.
func (o *Order) Status() Status {
	return o.status
}

// Version returns the optimistic-concurrency version the order was read at.
// The store compares-and-swaps on this value on every update.
func (o *Order) Version() int {
	return o.version
}

// Waypoints returns the planned route, or nil before routing succeeded.
func (o *Order) Waypoints() []string {
	return o.waypoints
}

// DriverID returns the assigned driver, or "" before assignment.
func (o *Order) DriverID() string {
	return o.driverID
}

// VehicleID returns the assigned vehicle, or "" before assignment.
func (o *Order) VehicleID() string {
	return o.vehicleID
}

// CreatedAt returns the intake timestamp.
func (o *Order) CreatedAt() time.Time { return o.createdAt }

// BilledAt returns when billing completed, or nil.
func (o *Order) BilledAt() *time.Time { return o.billedAt }

// PackageReadyAt returns when the warehouse reported the package ready, or nil.
func (o *Order) PackageReadyAt() *time.Time { return o.packageReadyAt }

// RoutedAt returns when route planning completed, or nil.
func (o *Order) RoutedAt() *time.Time { return o.routedAt }

// PickedUpAt returns when the driver picked the package up, or nil.
func (o *Order) PickedUpAt() *time.Time { return o.pickedUpAt }

// DeliveredAt returns when the delivery completed, or nil.
func (o *Order) DeliveredAt() *time.Time { return o.deliveredAt }

// UpdatedAt returns the time of the last applied transition.
func (o *Order) UpdatedAt() time.Time { return o.updatedAt }

// MarkBilled applies a successful billing outcome: status BILLED, billedAt
// stamped once, billing status COMPLETED and the billed amount recorded.
func (o *Order) MarkBilled(billedAmount float64, now time.Time) error {
	if err := o.transitionTo(Billed, now); err != nil {
		return err
	}
	if o.billedAt == nil {
		o.billedAt = &now
	}
	o.billingStatus = BillingStatusCompleted
	if billedAmount > 0 {
		o.totalAmount = billedAmount
	}
	return nil
}

// MarkBillingPending records that billing is still in progress. No stage
// timestamp is stamped for in-progress variants.
func (o *Order) MarkBillingPending(now time.Time) error {
	if err := o.transitionTo(BillingPending, now); err != nil {
		return err
	}
	o.billingStatus = BillingStatusPending
	return nil
}

// MarkBillingFailed applies a billing failure. Terminal for the order.
func (o *Order) MarkBillingFailed(now time.Time) error {
	if err := o.transitionTo(BillingFailed, now); err != nil {
		return err
	}
	o.billingStatus = BillingStatusFailed
	return nil
}

// MarkProcessing records that warehouse packaging is in progress.
func (o *Order) MarkProcessing(now time.Time) error {
	return o.transitionTo(Processing, now)
}

// MarkReady applies a successful warehouse outcome and stamps packageReadyAt.
func (o *Order) MarkReady(now time.Time) error {
	if err := o.transitionTo(Ready, now); err != nil {
		return err
	}
	if o.packageReadyAt == nil {
		o.packageReadyAt = &now
	}
	return nil
}

// MarkWarehouseFailed applies a warehouse failure. Terminal for the order.
func (o *Order) MarkWarehouseFailed(now time.Time) error {
	return o.transitionTo(WarehouseFailed, now)
}

// MarkRouting records that route planning is in progress.
func (o *Order) MarkRouting(now time.Time) error {
	return o.transitionTo(Routing, now)
}

// MarkRouted applies a successful routing outcome: status ROUTED, routedAt
// stamped, and the planned waypoints recorded.
func (o *Order) MarkRouted(waypoints []string, now time.Time) error {
	if err := o.transitionTo(Routed, now); err != nil {
		return err
	}
	if o.routedAt == nil {
		o.routedAt = &now
	}
	o.waypoints = waypoints
	return nil
}

// MarkRouteFailed applies a routing failure. Terminal for the order.
func (o *Order) MarkRouteFailed(now time.Time) error {
	return o.transitionTo(RouteFailed, now)
}

// MarkAssigned applies a driver assignment with the driver and vehicle ids.
func (o *Order) MarkAssigned(driverID, vehicleID string, now time.Time) error {
	if driverID == "" {
		return errs.NewValueIsRequiredError("driverId")
	}
	if err := o.transitionTo(Assigned, now); err != nil {
		return err
	}
	o.driverID = driverID
	o.vehicleID = vehicleID
	return nil
}

// MarkInTransit records the pickup and stamps pickedUpAt.
func (o *Order) MarkInTransit(now time.Time) error {
	if err := o.transitionTo(InTransit, now); err != nil {
		return err
	}
	if o.pickedUpAt == nil {
		o.pickedUpAt = &now
	}
	return nil
}

// MarkDelivered completes the workflow and stamps deliveredAt.
func (o *Order) MarkDelivered(now time.Time) error {
	if err := o.transitionTo(Delivered, now); err != nil {
		return err
	}
	if o.deliveredAt == nil {
		o.deliveredAt = &now
	}
	return nil
}

// Cancel applies operator cancellation. Allowed from any non-terminal state.
func (o *Order) Cancel(now time.Time) error {
	return o.transitionTo(Cancelled, now)
}

// MarkFailed applies a terminal driver/delivery-stage or operator failure.
func (o *Order) MarkFailed(now time.Time) error {
	return o.transitionTo(Failed, now)
}

func (o *Order) transitionTo(next Status, now time.Time) error {
	newStatus, err := o.status.TransitionTo(next)
	if err != nil {
		return err
	}
	o.status = newStatus
	o.updatedAt = now
	return nil
}
