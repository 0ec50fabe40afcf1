package consumer_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"fulfillment/internal/adapters/in/consumer"
	"fulfillment/internal/adapters/out/dispatch"
	"fulfillment/internal/adapters/out/msgbus"
	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/domain/model/event"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/outcome"
	"fulfillment/internal/core/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeApplier records applied commands and fails a configurable number of
// leading calls.
type fakeApplier struct {
	mu       sync.Mutex
	failures int
	applied  []commands.ApplyOutcomeCommand
	calls    int
}

func (a *fakeApplier) Handle(_ context.Context, cmd commands.ApplyOutcomeCommand) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls++
	if a.failures > 0 {
		a.failures--
		return errors.New("transient failure")
	}
	a.applied = append(a.applied, cmd)
	return nil
}

func (a *fakeApplier) appliedCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.applied)
}

func (a *fakeApplier) callCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.calls
}

type fakeEventRepo struct {
	mu       sync.Mutex
	appended []*event.Event
}

func (r *fakeEventRepo) Append(_ context.Context, record *event.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.appended = append(r.appended, record)
	return nil
}

func (r *fakeEventRepo) GetAllByOrder(_ context.Context, _ kernel.UUID) ([]*event.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.appended, nil
}

func (r *fakeEventRepo) appendedCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.appended)
}

func fastPolicy() dispatch.RetryPolicy {
	return dispatch.RetryPolicy{MaxAttempts: 3, BaseDelay: time.Millisecond}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func outcomeBody(t *testing.T, orderID kernel.UUID, status string) []byte {
	t.Helper()
	body, err := json.Marshal(outcome.Outcome{
		OrderID:       orderID,
		CorrelationID: "wf-123",
		Status:        status,
	})
	require.NoError(t, err)
	return body
}

func startConsumer(t *testing.T, bus *msgbus.Bus, applier *fakeApplier, events *fakeEventRepo) {
	t.Helper()
	c := consumer.NewOutcomeConsumer(bus, bus, applier, events, fastPolicy(), zap.NewNop())
	require.NoError(t, c.Start())
	t.Cleanup(c.Stop)
}

func TestOutcomeConsumer_AppliesOutcomeWithStageFromTopic(t *testing.T) {
	bus := msgbus.NewBus(16, zap.NewNop())
	t.Cleanup(bus.Close)

	applier := &fakeApplier{}
	events := &fakeEventRepo{}
	startConsumer(t, bus, applier, events)

	orderID := kernel.NewUUID()
	require.NoError(t, bus.Publish(context.Background(), outcome.TopicBillingUpdates, outcomeBody(t, orderID, outcome.BillingBilled)))

	waitFor(t, func() bool { return applier.appliedCount() == 1 })

	got := applier.applied[0].Outcome()
	assert.Equal(t, orderID, got.OrderID)
	assert.Equal(t, outcome.StageBilling, got.Stage)
	assert.Equal(t, outcome.BillingBilled, got.Status)
}

func TestOutcomeConsumer_EveryStageTopicIsRouted(t *testing.T) {
	bus := msgbus.NewBus(16, zap.NewNop())
	t.Cleanup(bus.Close)

	applier := &fakeApplier{}
	events := &fakeEventRepo{}
	startConsumer(t, bus, applier, events)

	topics := map[string]outcome.Stage{
		outcome.TopicBillingUpdates:   outcome.StageBilling,
		outcome.TopicWarehouseUpdates: outcome.StageWarehouse,
		outcome.TopicRouteUpdates:     outcome.StageRouting,
		outcome.TopicDriverUpdates:    outcome.StageDriver,
		outcome.TopicDeliveryUpdates:  outcome.StageDelivery,
	}

	for topic := range topics {
		require.NoError(t, bus.Publish(context.Background(), topic, outcomeBody(t, kernel.NewUUID(), "FAILED")))
	}

	waitFor(t, func() bool { return applier.appliedCount() == len(topics) })

	seen := make(map[outcome.Stage]bool)
	applier.mu.Lock()
	for _, cmd := range applier.applied {
		seen[cmd.Outcome().Stage] = true
	}
	applier.mu.Unlock()

	for _, stage := range topics {
		assert.True(t, seen[stage], "stage %s not applied", stage)
	}
}

func TestOutcomeConsumer_MalformedMessageIsDropped(t *testing.T) {
	bus := msgbus.NewBus(16, zap.NewNop())
	t.Cleanup(bus.Close)

	applier := &fakeApplier{}
	events := &fakeEventRepo{}
	startConsumer(t, bus, applier, events)

	require.NoError(t, bus.Publish(context.Background(), outcome.TopicBillingUpdates, []byte("not json")))

	// Follow up with a valid message to prove the consumer is still alive.
	require.NoError(t, bus.Publish(context.Background(), outcome.TopicBillingUpdates, outcomeBody(t, kernel.NewUUID(), outcome.BillingBilled)))

	waitFor(t, func() bool { return applier.appliedCount() == 1 })
	assert.Equal(t, 1, applier.callCount())
}

func TestOutcomeConsumer_SchemaInvalidMessageRecordsWarning(t *testing.T) {
	bus := msgbus.NewBus(16, zap.NewNop())
	t.Cleanup(bus.Close)

	applier := &fakeApplier{}
	events := &fakeEventRepo{}
	startConsumer(t, bus, applier, events)

	// Decodable payload with a usable order id but no status.
	orderID := kernel.NewUUID()
	body, err := json.Marshal(outcome.Outcome{
		OrderID:       orderID,
		CorrelationID: "wf-123",
	})
	require.NoError(t, err)
	require.NoError(t, bus.Publish(context.Background(), outcome.TopicBillingUpdates, body))

	waitFor(t, func() bool { return events.appendedCount() == 1 })
	assert.Equal(t, event.TypeOutcomeRejected, events.appended[0].Type())
	assert.Equal(t, event.StatusWarning, events.appended[0].Status())
	assert.Equal(t, event.SourceBillingService, events.appended[0].Source())
	assert.Equal(t, orderID, events.appended[0].OrderID())
	assert.Equal(t, 0, applier.callCount())
}

func TestOutcomeConsumer_TransientFailureIsRetried(t *testing.T) {
	bus := msgbus.NewBus(16, zap.NewNop())
	t.Cleanup(bus.Close)

	applier := &fakeApplier{failures: 2}
	events := &fakeEventRepo{}
	startConsumer(t, bus, applier, events)

	require.NoError(t, bus.Publish(context.Background(), outcome.TopicDriverUpdates, outcomeBody(t, kernel.NewUUID(), outcome.DriverAssigned)))

	waitFor(t, func() bool { return applier.appliedCount() == 1 })
	assert.Equal(t, 3, applier.callCount())
	assert.Equal(t, 0, events.appendedCount(), "successful retry must not dead-letter")
}

func TestOutcomeConsumer_ExhaustedProcessingDeadLetters(t *testing.T) {
	bus := msgbus.NewBus(16, zap.NewNop())
	t.Cleanup(bus.Close)

	var mu sync.Mutex
	var parked [][]byte
	cancel, err := bus.Subscribe(outcome.DeadLetterTopic(outcome.TopicBillingUpdates), func(_ context.Context, msg ports.Message) {
		mu.Lock()
		parked = append(parked, msg.Body)
		mu.Unlock()
	})
	require.NoError(t, err)
	t.Cleanup(cancel)

	applier := &fakeApplier{failures: 3}
	events := &fakeEventRepo{}
	startConsumer(t, bus, applier, events)

	orderID := kernel.NewUUID()
	body := outcomeBody(t, orderID, outcome.BillingBilled)
	require.NoError(t, bus.Publish(context.Background(), outcome.TopicBillingUpdates, body))

	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(parked) == 1
	})

	mu.Lock()
	assert.Equal(t, body, parked[0], "original payload must be parked unchanged")
	mu.Unlock()

	waitFor(t, func() bool { return events.appendedCount() == 1 })
	assert.Equal(t, event.TypeDeadLettered, events.appended[0].Type())
	assert.Equal(t, event.StatusFailed, events.appended[0].Status())
	assert.Equal(t, orderID, events.appended[0].OrderID())
}

func TestOutcomeConsumer_StopCancelsSubscriptions(t *testing.T) {
	bus := msgbus.NewBus(16, zap.NewNop())
	t.Cleanup(bus.Close)

	applier := &fakeApplier{}
	events := &fakeEventRepo{}
	c := consumer.NewOutcomeConsumer(bus, bus, applier, events, fastPolicy(), zap.NewNop())
	require.NoError(t, c.Start())
	c.Stop()

	require.NoError(t, bus.Publish(context.Background(), outcome.TopicBillingUpdates, outcomeBody(t, kernel.NewUUID(), outcome.BillingBilled)))

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 0, applier.callCount())
}
