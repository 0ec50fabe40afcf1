// Package outcome defines the workflow's wire vocabulary: the Stage
// enumeration, the canonical inbound Outcome message reported by stage
// collaborators, the outbound Request message asking the next collaborator
// to act, and the bus topic names tying them together.
//
// One Outcome shape serves all five stages. Each stage has a closed set of
// reportable statuses; KnownStatus gates them so unexpected values never
// reach the state machine.
package outcome
