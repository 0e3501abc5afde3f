package messaging

import (
	"context"

	"github.com/0xsj/overwatch-directory/internal/domain/event"
)

// EventPublisher defines the interface for publishing directory events.
type EventPublisher interface {
	// Publish publishes a single event.
	Publish(ctx context.Context, evt event.Event) error

	// PublishAll publishes multiple events.
	PublishAll(ctx context.Context, events []event.Event) error
}

// Topic names for directory events.
const (
	TopicServiceEvents = "directory.service"
)

// TopicForEvent returns the topic for an event's aggregate,
// e.g. "directory.service".
func TopicForEvent(evt event.Event) string {
	return "directory." + evt.AggregateType()
}
