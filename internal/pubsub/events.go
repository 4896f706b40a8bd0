// Package pubsub fans out typed events to any number of subscribers.
// The log package publishes diagnostics through it and the session store
// announces collection writes and invalidations.
package pubsub

import (
	"context"
	"time"
)

// EventType names what happened to the payload.
type EventType string

const (
	StoredEvent      EventType = "stored"
	InvalidatedEvent EventType = "invalidated"
	LoggedEvent      EventType = "logged"
)

// Event is a published payload stamped with its type and publish time.
type Event[T any] struct {
	Type      EventType
	Payload   T
	Timestamp time.Time
}

// Subscriber provides a subscription channel for events.
type Subscriber[T any] interface {
	Subscribe(ctx context.Context) <-chan Event[T]
}

// Publisher allows publishing events with a typed payload.
type Publisher[T any] interface {
	Publish(eventType EventType, payload T)
}
