package ports

import "time"

// StatusUpdate is the live notification pushed to order subscribers.
type StatusUpdate struct {
	OrderID       string    `json:"orderId"`
	CorrelationID string    `json:"correlationId"`
	Status        string    `json:"status"`
	EventType     string    `json:"eventType"`
	Description   string    `json:"description,omitempty"`
	OccurredAt    time.Time `json:"occurredAt"`
}

// Notifier fans order status updates out to live subscribers.
// Publishing is best effort: slow or absent subscribers never block the
// workflow, and there is no replay of missed updates.
type Notifier interface {
	// Publish pushes an update to every subscriber of the order.
	Publish(update StatusUpdate)

	// Subscribe registers for an order's updates. The returned teardown
	// must be called when the subscriber disconnects.
	Subscribe(orderID string) (<-chan StatusUpdate, func())
}
