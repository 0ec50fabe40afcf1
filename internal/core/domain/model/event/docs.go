// Package event provides the append-only audit record of the fulfillment
// workflow. Every order accumulates a timeline of Event records: one per
// collaborator outcome received, per outbound request sent, and per
// anomaly observed (duplicates, rejected outcomes, unknown statuses).
//
// Events are immutable once written. The timeline is the primary debugging
// surface for the workflow and is exposed verbatim by the query API.
package event
