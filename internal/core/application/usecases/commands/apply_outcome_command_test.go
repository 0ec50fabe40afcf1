package commands_test

import (
	"testing"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/outcome"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewApplyOutcomeCommand(t *testing.T) {
	t.Run("should wrap a valid outcome", func(t *testing.T) {
		out := outcome.Outcome{
			OrderID:       kernel.NewUUID(),
			CorrelationID: "corr-1",
			Stage:         outcome.StageBilling,
			Status:        outcome.BillingBilled,
		}

		cmd, err := commands.NewApplyOutcomeCommand(out)

		require.NoError(t, err)
		require.NoError(t, cmd.Validate())
		assert.Equal(t, out, cmd.Outcome())
	})

	t.Run("should reject an invalid outcome", func(t *testing.T) {
		var out outcome.Outcome

		_, err := commands.NewApplyOutcomeCommand(out)

		require.Error(t, err)
	})

	t.Run("zero-value command fails validation", func(t *testing.T) {
		var cmd commands.ApplyOutcomeCommand
		assert.ErrorIs(t, cmd.Validate(), commands.ErrApplyOutcomeCommandIsNotConstructed)
	})
}
