package bus

// EventBus is a synchronous, in-process pub/sub bus.
//
// Handlers subscribe to an event type within a topic; the default topic is "".
// Publish calls handlers in the caller goroutine, in subscription order, and
// joins handler errors into one. All methods are safe for concurrent use.
type EventBus interface {
	// Publish delivers to subscribers of event.Type() in the default topic.
	Publish(event Event) error
	// PublishToTopic delivers to subscribers of event.Type() in topic.
	PublishToTopic(topic string, event Event) error

	// Subscribe registers a handler in the default topic.
	Subscribe(eventType string, handler EventHandler) (Subscription, error)
	// SubscribeTopic registers a handler for eventType within topic.
	SubscribeTopic(topic, eventType string, handler EventHandler) (Subscription, error)
	// Unsubscribe cancels the subscription. A nil subscription is a no-op.
	Unsubscribe(Subscription) error

	AddObserver(obs Observer)
	RemoveObserver(obs Observer)
	// Metrics is only maintained while at least one observer is registered.
	Metrics() Metrics
	// Topics returns a snapshot of known topics sorted by name.
	Topics() []TopicInfo
}

// Event is an immutable message routed by Type.
type Event interface {
	Type() string
	Source() string
	Data() any
}

type (
	// EventHandler is invoked per delivered event.
	EventHandler func(event Event) error
)

// Subscription is a registered handler bound to a topic and event type.
type Subscription interface {
	ID() string
	Topic() string
	EventType() string
	IsActive() bool
	// Cancel de-registers the handler. Multiple calls are safe.
	Cancel() error
}

// Observer is notified about deliveries. Observers should return quickly.
type Observer interface {
	OnPublish(topic, eventType string, event Event)
	OnDelivered(topic, eventType string, handlers int, err error)
}

type Metrics struct {
	Published         uint64
	DeliveredHandlers uint64
	Errors            uint64
	SubscribersActive uint64
	Topics            uint64
}

type TopicInfo struct {
	Name       string
	EventTypes int
	Subs       int
}
