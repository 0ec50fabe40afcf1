package order

import (
	"fmt"

	"fulfillment/internal/pkg/errs"
)

// Status represents the lifecycle state of an order inside the fulfillment
// workflow. It implements a state machine with defined transitions so orders
// only ever move along edges of the workflow:
//
//	NEW ──> BILLED | BILLING_FAILED | BILLING_PENDING
//	BILLING_PENDING ──> BILLED | BILLING_FAILED
//	BILLED ──> PROCESSING | READY | WAREHOUSE_FAILED
//	PROCESSING ──> READY | WAREHOUSE_FAILED
//	READY ──> ROUTING | ROUTED | ROUTE_FAILED
//	ROUTING ──> ROUTED | ROUTE_FAILED
//	ROUTED ──> ASSIGNED | FAILED
//	ASSIGNED ──> IN_TRANSIT | DELIVERED | FAILED
//	IN_TRANSIT ──> DELIVERED | FAILED
//
// CANCELLED and FAILED are additionally reachable from any non-terminal
// state through operator action. DELIVERED, CANCELLED, FAILED and the
// *_FAILED variants are terminal; DELIVERED is the only fully successful
// terminal state.
type Status int

const (
	// Unknown represents an invalid or undefined status.
	// This value (0) helps catch uninitialized Status values.
	Unknown Status = iota

	// New is the initial status assigned at order intake, before billing
	// has reported anything.
	New

	// Billed indicates billing completed successfully.
	Billed

	// BillingFailed indicates billing was declined. Terminal.
	BillingFailed

	// BillingPending indicates billing is still in progress.
	BillingPending

	// Processing indicates warehouse packaging is in progress.
	Processing

	// Ready indicates the package is ready for shipment.
	Ready

	// WarehouseFailed indicates warehouse packaging failed. Terminal.
	WarehouseFailed

	// Routing indicates route planning is in progress.
	Routing

	// Routed indicates a route was planned successfully.
	Routed

	// RouteFailed indicates route planning failed. Terminal.
	RouteFailed

	// Assigned indicates a driver accepted the order.
	Assigned

	// InTransit indicates the package was picked up and is on its way.
	InTransit

	// Delivered indicates the delivery completed. Terminal.
	Delivered

	// Cancelled indicates an operator cancelled the order. Terminal.
	Cancelled

	// Failed indicates a terminal failure in the driver or delivery stage,
	// or an operator-forced failure. Terminal.
	Failed
)

func getStatusStrings() map[Status]string {
	return map[Status]string{
		Unknown:         "UNKNOWN",
		New:             "NEW",
		Billed:          "BILLED",
		BillingFailed:   "BILLING_FAILED",
		BillingPending:  "BILLING_PENDING",
		Processing:      "PROCESSING",
		Ready:           "READY",
		WarehouseFailed: "WAREHOUSE_FAILED",
		Routing:         "ROUTING",
		Routed:          "ROUTED",
		RouteFailed:     "ROUTE_FAILED",
		Assigned:        "ASSIGNED",
		InTransit:       "IN_TRANSIT",
		Delivered:       "DELIVERED",
		Cancelled:       "CANCELLED",
		Failed:          "FAILED",
	}
}

// getTransitions returns the automatic workflow edges. CANCELLED and FAILED
// by operator action are handled separately in CanTransitionTo because they
// are reachable from every non-terminal state.
func getTransitions() map[Status][]Status {
	return map[Status][]Status{
		New:            {Billed, BillingFailed, BillingPending},
		BillingPending: {Billed, BillingFailed},
		Billed:         {Processing, Ready, WarehouseFailed},
		Processing:     {Ready, WarehouseFailed},
		Ready:          {Routing, Routed, RouteFailed},
		Routing:        {Routed, RouteFailed},
		Routed:         {Assigned, Failed},
		Assigned:       {InTransit, Delivered, Failed},
		InTransit:      {Delivered, Failed},
	}
}

// ParseStatus converts the wire representation (e.g. "IN_TRANSIT") to a
// Status. Returns an error for anything outside the closed enumeration.
func ParseStatus(s string) (Status, error) {
	for status, str := range getStatusStrings() {
		if str == s && status != Unknown {
			return status, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%q is not a valid order status", s))
}

// Validate checks that the Status value is one of the closed enumeration.
// Unknown (0) and out-of-range values are invalid.
func (s Status) Validate() error {
	if s <= Unknown || s > Failed {
		return errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

// String returns the wire name of the status, e.g. "BILLING_PENDING".
// Safe to call on any value; invalid values yield "UNKNOWN".
func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "UNKNOWN"
}

// IsTerminal reports whether no further workflow transitions are possible.
func (s Status) IsTerminal() bool {
	switch s {
	case Delivered, Cancelled, Failed, BillingFailed, WarehouseFailed, RouteFailed:
		return true
	default:
		return false
	}
}

// CanTransitionTo reports whether the workflow permits moving from s to next.
// Operator-driven Cancelled and Failed are allowed from any non-terminal
// state; every other edge must appear in the transition table.
func (s Status) CanTransitionTo(next Status) bool {
	if s.IsTerminal() {
		return false
	}
	if next == Cancelled || next == Failed {
		return true
	}
	for _, allowed := range getTransitions()[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// TransitionTo returns next if the edge s -> next is valid, or an error
// naming the rejected edge otherwise.
func (s Status) TransitionTo(next Status) (Status, error) {
	if err := next.Validate(); err != nil {
		return 0, err
	}
	if !s.CanTransitionTo(next) {
		return 0, errs.NewValueIsInvalidErrorWithCause(
			"status",
			fmt.Errorf("transition %s -> %s is not allowed", s, next),
		)
	}
	return next, nil
}
