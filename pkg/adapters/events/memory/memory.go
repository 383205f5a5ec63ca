package memory

import (
	"context"
	"sync"

	"github.com/codefix-ai/maestro/pkg/ports"
)

// EventBus implements ports.EventBus with in-process delivery. Suited
// for tests and single-process deployments.
type EventBus struct {
	mu          sync.RWMutex
	nextID      int
	subscribers map[string]map[int]ports.EventHandler
	closed      bool
}

// NewEventBus creates a new in-memory event bus
func NewEventBus() *EventBus {
	return &EventBus{
		subscribers: make(map[string]map[int]ports.EventHandler),
	}
}

// Publish delivers an event to every subscriber of the topic.
// Delivery is synchronous so tests observe events deterministically.
func (e *EventBus) Publish(ctx context.Context, topic string, event ports.Event) error {
	e.mu.RLock()
	handlers := make([]ports.EventHandler, 0, len(e.subscribers[topic]))
	for _, h := range e.subscribers[topic] {
		handlers = append(handlers, h)
	}
	e.mu.RUnlock()

	for _, handler := range handlers {
		// Handler errors are the subscriber's problem, not the publisher's
		_ = handler(ctx, event)
	}
	return nil
}

// Subscribe registers a handler for a topic. The subscription is
// removed when the context is cancelled.
func (e *EventBus) Subscribe(ctx context.Context, topic string, handler ports.EventHandler) error {
	e.mu.Lock()
	if e.subscribers[topic] == nil {
		e.subscribers[topic] = make(map[int]ports.EventHandler)
	}
	id := e.nextID
	e.nextID++
	e.subscribers[topic][id] = handler
	e.mu.Unlock()

	go func() {
		<-ctx.Done()
		e.mu.Lock()
		delete(e.subscribers[topic], id)
		e.mu.Unlock()
	}()

	return nil
}

// Unsubscribe removes all subscriptions from a topic
func (e *EventBus) Unsubscribe(ctx context.Context, topic string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.subscribers, topic)
	return nil
}

// Close drops all subscribers
func (e *EventBus) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.subscribers = make(map[string]map[int]ports.EventHandler)
	e.closed = true
	return nil
}
