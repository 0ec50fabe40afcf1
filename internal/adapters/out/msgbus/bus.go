// Package msgbus provides an in-process topic bus used to exchange messages
// between the coordinator and the stage services during local runs and tests.
// Topics are created lazily on first use; every subscriber of a topic receives
// each published message on its own worker goroutine.
package msgbus

import (
	"context"
	"errors"
	"sync"

	"fulfillment/internal/core/ports"

	"go.uber.org/zap"
)

// ErrBusClosed is returned when publishing to or subscribing on a closed bus.
var ErrBusClosed = errors.New("message bus is closed")

// subscription is one registered handler with its delivery queue.
type subscription struct {
	id      int
	handler func(ctx context.Context, msg ports.Message)
	queue   chan ports.Message
	done    chan struct{}
}

// Bus is a channel-based topic bus implementing ports.Publisher and
// ports.Subscriber. Delivery is at-most-once per subscriber: a subscriber
// whose queue is full drops the message, matching broker behavior with a
// bounded prefetch.
type Bus struct {
	mu      sync.RWMutex
	topics  map[string][]*subscription
	nextID  int
	closed  bool
	buffer  int
	logger  *zap.Logger
	workers sync.WaitGroup
}

// NewBus creates a bus whose subscriber queues hold up to buffer messages.
func NewBus(buffer int, logger *zap.Logger) *Bus {
	if buffer <= 0 {
		buffer = 64
	}
	return &Bus{
		topics: make(map[string][]*subscription),
		buffer: buffer,
		logger: logger.With(zap.String("component", "msgbus")),
	}
}

// Publish delivers the message body to every subscriber of the topic.
// Publishing to a topic without subscribers is not an error; the message is
// simply dropped, as it would be on a broker without bound queues.
func (b *Bus) Publish(ctx context.Context, topic string, body []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	b.mu.RLock()
	subs := b.topics[topic]
	closed := b.closed
	b.mu.RUnlock()

	if closed {
		return ErrBusClosed
	}

	msg := ports.Message{Topic: topic, Body: body}
	for _, sub := range subs {
		select {
		case sub.queue <- msg:
		default:
			b.logger.Warn("subscriber queue full, dropping message",
				zap.String("topic", topic),
				zap.Int("subscriber", sub.id))
		}
	}

	return nil
}

// Subscribe registers a handler for the topic and returns a function that
// cancels the subscription. The handler runs on a dedicated goroutine, one
// message at a time.
func (b *Bus) Subscribe(topic string, handler func(ctx context.Context, msg ports.Message)) (func(), error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil, ErrBusClosed
	}

	b.nextID++
	sub := &subscription{
		id:      b.nextID,
		handler: handler,
		queue:   make(chan ports.Message, b.buffer),
		done:    make(chan struct{}),
	}
	b.topics[topic] = append(b.topics[topic], sub)

	b.workers.Add(1)
	go b.run(sub)

	return func() { b.unsubscribe(topic, sub) }, nil
}

// Close cancels all subscriptions and waits for in-flight handlers to finish.
func (b *Bus) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	for _, subs := range b.topics {
		for _, sub := range subs {
			close(sub.done)
		}
	}
	b.topics = make(map[string][]*subscription)
	b.mu.Unlock()

	b.workers.Wait()
}

func (b *Bus) run(sub *subscription) {
	defer b.workers.Done()
	for {
		select {
		case <-sub.done:
			return
		case msg := <-sub.queue:
			sub.handler(context.Background(), msg)
		}
	}
}

func (b *Bus) unsubscribe(topic string, sub *subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.topics[topic]
	for i, candidate := range subs {
		if candidate == sub {
			b.topics[topic] = append(subs[:i], subs[i+1:]...)
			close(sub.done)
			return
		}
	}
}
