// Package services contains stateless domain services for the fulfillment
// workflow. The central one is Decide, which maps (current order status,
// collaborator outcome) to the action the coordinator must take: apply a
// transition, record an in-progress event, or drop the outcome as a
// duplicate, an out-of-sequence report, or an unknown status.
//
// Keeping the decision pure separates the workflow rules from persistence
// and transport, so every row of the decision table is unit-testable without
// infrastructure.
package services
