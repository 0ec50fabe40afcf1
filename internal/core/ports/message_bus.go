package ports

import "context"

// Message is a raw bus payload with the topic it was consumed from.
type Message struct {
	Topic string
	Body  []byte
}

// Publisher publishes raw payloads to a named topic.
type Publisher interface {
	// Publish delivers body to every subscriber of topic.
	Publish(ctx context.Context, topic string, body []byte) error
}

// Subscriber registers handlers for topics. Handlers run once per message;
// a handler error is the consumer's signal to retry or dead-letter, the bus
// itself does neither.
type Subscriber interface {
	// Subscribe registers handler for topic. Returns an unsubscribe func.
	Subscribe(topic string, handler func(ctx context.Context, msg Message)) (func(), error)
}
