// Package notify fans order status updates out to live subscribers, backing
// the HTTP streaming endpoint. The registry is process local; subscribers on
// other instances do not receive updates.
package notify

import (
	"sync"

	"fulfillment/internal/core/ports"

	"go.uber.org/zap"
)

const subscriberBuffer = 16

// Registry is an in-process implementation of ports.Notifier. Each
// subscriber gets a buffered channel; a subscriber that stops draining loses
// updates rather than blocking the workflow.
type Registry struct {
	mu          sync.RWMutex
	subscribers map[string][]chan ports.StatusUpdate
	logger      *zap.Logger
}

// NewRegistry creates an empty subscriber registry.
func NewRegistry(logger *zap.Logger) *Registry {
	return &Registry{
		subscribers: make(map[string][]chan ports.StatusUpdate),
		logger:      logger.With(zap.String("component", "notifier")),
	}
}

// Publish pushes the update to every subscriber of the order. Best effort:
// full subscriber channels are skipped. The read lock is held across the
// sends; teardown closes channels under the write lock, so a send can never
// hit a closed channel.
func (r *Registry) Publish(update ports.StatusUpdate) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, ch := range r.subscribers[update.OrderID] {
		select {
		case ch <- update:
		default:
			r.logger.Warn("subscriber not draining, dropping status update",
				zap.String("orderId", update.OrderID),
				zap.String("eventType", update.EventType))
		}
	}
}

// Subscribe registers for an order's updates. The returned teardown closes
// the channel and must be called when the subscriber disconnects.
func (r *Registry) Subscribe(orderID string) (<-chan ports.StatusUpdate, func()) {
	ch := make(chan ports.StatusUpdate, subscriberBuffer)

	r.mu.Lock()
	r.subscribers[orderID] = append(r.subscribers[orderID], ch)
	r.mu.Unlock()

	teardown := func() {
		r.mu.Lock()
		defer r.mu.Unlock()

		channels := r.subscribers[orderID]
		for i, candidate := range channels {
			if candidate == ch {
				r.subscribers[orderID] = append(channels[:i], channels[i+1:]...)
				close(ch)
				break
			}
		}
		if len(r.subscribers[orderID]) == 0 {
			delete(r.subscribers, orderID)
		}
	}

	return ch, teardown
}
