// Package order provides domain entities and business logic for order
// management in the fulfillment workflow. It implements the Order aggregate
// root with lifecycle management and state transitions.
//
// The package includes:
//   - Order: The aggregate root that manages order identity, properties, and lifecycle
//   - Status: A state machine that enforces valid workflow status transitions
//   - Address: The validated delivery destination value object
//
// Key business rules:
//   - Orders must have a valid unique identifier, customer, address, and positive amount
//   - Order status follows the billing -> warehouse -> routing -> driver -> delivery workflow
//   - Per-stage timestamps are stamped exactly once, when a stage first completes
//   - Terminal orders (delivered, cancelled, failed) never transition again
//
// The package follows Domain-Driven Design principles, providing rich domain
// behavior, encapsulation, and validation to ensure business rules are enforced.
package order
