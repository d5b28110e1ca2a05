package shared

import "context"

// EventHandler consumes domain events. EventTypes narrows the
// subscription; an empty slice subscribes to everything.
type EventHandler interface {
	Handle(ctx context.Context, event DomainEvent) error
	EventTypes() []string
}

// EventPublisher is the outbound port aggregates' events are flushed
// through after a successful persist
type EventPublisher interface {
	Publish(ctx context.Context, events ...DomainEvent) error
}

// EventBus wires publishers to handlers with a managed lifecycle
type EventBus interface {
	EventPublisher
	Subscribe(handler EventHandler, eventTypes ...string)
	Unsubscribe(handler EventHandler)
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}
