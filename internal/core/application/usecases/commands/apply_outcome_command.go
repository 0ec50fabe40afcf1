package commands

import (
	"errors"

	"fulfillment/internal/core/domain/model/outcome"
	"fulfillment/internal/pkg/guard"
)

var ErrApplyOutcomeCommandIsNotConstructed = errors.New(
	"ApplyOutcomeCommand must be created via NewApplyOutcomeCommand constructor",
)

// ApplyOutcomeCommand carries one collaborator outcome toward the
// coordinator. The wrapped outcome has already passed transport-level
// validation; status semantics are evaluated by the handler.
type ApplyOutcomeCommand struct { //nolint:recvcheck //using for validation
	outcome outcome.Outcome

	guard guard.ConstructorGuard
}

// NewApplyOutcomeCommand creates a command from a decoded bus outcome.
// Returns an error when the outcome fails schema validation.
func NewApplyOutcomeCommand(out outcome.Outcome) (ApplyOutcomeCommand, error) {
	if err := out.Validate(); err != nil {
		return ApplyOutcomeCommand{}, err
	}

	return ApplyOutcomeCommand{
		outcome: out,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was created through the constructor.
// Returns ErrApplyOutcomeCommandIsNotConstructed if validation fails.
func (c ApplyOutcomeCommand) Validate() error {
	return c.guard.Validate(ErrApplyOutcomeCommandIsNotConstructed)
}

// Outcome returns the collaborator outcome to apply.
func (c ApplyOutcomeCommand) Outcome() outcome.Outcome {
	return c.outcome
}
