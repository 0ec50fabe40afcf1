package notify_test

import (
	"testing"
	"time"

	"fulfillment/internal/adapters/out/notify"
	"fulfillment/internal/core/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func update(orderID, eventType string) ports.StatusUpdate {
	return ports.StatusUpdate{
		OrderID:       orderID,
		CorrelationID: "wf-123",
		Status:        "BILLED",
		EventType:     eventType,
		OccurredAt:    time.Now().UTC(),
	}
}

func TestRegistry_PublishReachesSubscriber(t *testing.T) {
	registry := notify.NewRegistry(zap.NewNop())

	ch, teardown := registry.Subscribe("order-1")
	defer teardown()

	registry.Publish(update("order-1", "BILLING_COMPLETED"))

	select {
	case got := <-ch:
		assert.Equal(t, "BILLING_COMPLETED", got.EventType)
		assert.Equal(t, "wf-123", got.CorrelationID)
	case <-time.After(time.Second):
		t.Fatal("no update received")
	}
}

func TestRegistry_PublishOnlyReachesMatchingOrder(t *testing.T) {
	registry := notify.NewRegistry(zap.NewNop())

	ch1, teardown1 := registry.Subscribe("order-1")
	defer teardown1()
	ch2, teardown2 := registry.Subscribe("order-2")
	defer teardown2()

	registry.Publish(update("order-1", "BILLING_COMPLETED"))

	select {
	case <-ch1:
	case <-time.After(time.Second):
		t.Fatal("subscriber of order-1 got nothing")
	}

	select {
	case got := <-ch2:
		t.Fatalf("subscriber of order-2 got unexpected update: %+v", got)
	default:
	}
}

func TestRegistry_AllSubscribersOfOrderReceiveUpdate(t *testing.T) {
	registry := notify.NewRegistry(zap.NewNop())

	ch1, teardown1 := registry.Subscribe("order-1")
	defer teardown1()
	ch2, teardown2 := registry.Subscribe("order-1")
	defer teardown2()

	registry.Publish(update("order-1", "PACKAGE_READY"))

	for _, ch := range []<-chan ports.StatusUpdate{ch1, ch2} {
		select {
		case got := <-ch:
			assert.Equal(t, "PACKAGE_READY", got.EventType)
		case <-time.After(time.Second):
			t.Fatal("subscriber got nothing")
		}
	}
}

func TestRegistry_PublishWithoutSubscribersDoesNotBlock(t *testing.T) {
	registry := notify.NewRegistry(zap.NewNop())

	done := make(chan struct{})
	go func() {
		registry.Publish(update("order-1", "BILLING_COMPLETED"))
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked without subscribers")
	}
}

func TestRegistry_TeardownClosesChannelAndStopsDelivery(t *testing.T) {
	registry := notify.NewRegistry(zap.NewNop())

	ch, teardown := registry.Subscribe("order-1")
	teardown()

	_, open := <-ch
	assert.False(t, open, "channel should be closed after teardown")

	// Publishing after teardown must not panic or deliver.
	registry.Publish(update("order-1", "BILLING_COMPLETED"))
}

func TestRegistry_SlowSubscriberDoesNotBlockPublish(t *testing.T) {
	registry := notify.NewRegistry(zap.NewNop())

	_, teardown := registry.Subscribe("order-1")
	defer teardown()

	// Overflow the subscriber buffer without draining.
	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			registry.Publish(update("order-1", "DRIVER_EN_ROUTE"))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publish blocked on a slow subscriber")
	}
}

func TestRegistry_TeardownIsIdempotent(t *testing.T) {
	registry := notify.NewRegistry(zap.NewNop())

	_, teardown := registry.Subscribe("order-1")
	teardown()
	require.NotPanics(t, teardown)
}

func TestRegistry_TeardownDuringPublishDoesNotPanic(t *testing.T) {
	registry := notify.NewRegistry(zap.NewNop())

	// A disconnecting subscriber must never make a concurrent publish send
	// on a closed channel.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 1000; i++ {
			registry.Publish(update("order-1", "BILLING_COMPLETED"))
		}
	}()

	for i := 0; i < 200; i++ {
		_, teardown := registry.Subscribe("order-1")
		teardown()
	}

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("publisher did not finish")
	}
}
