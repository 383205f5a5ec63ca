package ports

import (
	"context"
	"time"
)

// EventType names a notification emitted by the engine
type EventType string

const (
	EventTypeStatusChanged EventType = "execution.status_changed"
	EventTypeStepCompleted EventType = "execution.step_completed"
	EventTypeError         EventType = "execution.error"
)

// Event is the wire form of an engine notification
type Event struct {
	ID          string                 `json:"id"`
	Type        EventType              `json:"type"`
	Timestamp   time.Time              `json:"timestamp"`
	ExecutionID string                 `json:"execution_id"`
	Data        map[string]interface{} `json:"data,omitempty"`
}

// EventHandler processes a delivered event
type EventHandler func(ctx context.Context, event Event) error

// EventBus transports engine notifications to external subscribers
type EventBus interface {
	Publish(ctx context.Context, topic string, event Event) error
	Subscribe(ctx context.Context, topic string, handler EventHandler) error
	Unsubscribe(ctx context.Context, topic string) error
	Close() error
}

// TopicExecutionEvents carries all execution lifecycle notifications
const TopicExecutionEvents = "execution.events"
