package bus

import "time"

// EventBus is an in-process pub/sub bus.
//
// Handlers subscribe by Event.Type() and are called synchronously in the
// publisher's goroutine. Errors from several handlers are joined. All methods
// are safe for concurrent use; handlers must not publish back into the bus
// from inside a delivery for the same event type.
type EventBus interface {
	// Publish delivers event to every active subscriber of event.Type().
	Publish(event Event) error
	// PublishBatch publishes events in order and joins their errors.
	PublishBatch(events ...Event) error
	// Subscribe registers handler for eventType. The empty type "*" receives
	// every event.
	Subscribe(eventType string, handler EventHandler) (Subscription, error)
	// Unsubscribe cancels sub. A nil subscription is ignored.
	Unsubscribe(sub Subscription) error

	AddObserver(obs Observer)
	RemoveObserver(obs Observer)
	// Metrics is a snapshot of the counters; they only move while at least
	// one observer is registered.
	Metrics() Metrics
}

// Event is an immutable notification.
type Event interface {
	Type() string
	Source() string
	Timestamp() time.Time
	Data() any
	Metadata() map[string]any
}

type EventHandler func(event Event) error

// Subscription is the handle returned by Subscribe.
type Subscription interface {
	ID() string
	EventType() string
	IsActive() bool
	// Cancel de-registers the handler. Repeated calls are safe.
	Cancel() error
}

// Observer is told about every delivery. Observers must return quickly.
type Observer interface {
	OnDelivered(eventType string, handlers int, err error, took time.Duration)
}

type Metrics struct {
	Published         uint64 `json:"published"`
	DeliveredHandlers uint64 `json:"delivered_handlers"`
	Errors            uint64 `json:"errors"`
	SubscribersActive uint64 `json:"subscribers_active"`
}

// Wildcard subscribes to every event type.
const Wildcard = "*"
