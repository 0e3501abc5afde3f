package event

import (
	"github.com/0xsj/overwatch-pkg/types"
)

// Event is the base interface for directory events.
type Event interface {
	// EventID returns the unique identifier for this event instance.
	EventID() types.ID

	// EventType returns the type name of the event (e.g., "service.registered").
	EventType() string

	// OccurredAt returns when the event occurred.
	OccurredAt() types.Timestamp

	// AggregateID returns the ID of the aggregate that produced this event.
	AggregateID() types.ID

	// AggregateType returns the type of aggregate.
	AggregateType() string
}

// BaseEvent provides common fields for all directory events.
type BaseEvent struct {
	eventID       types.ID
	eventType     string
	occurredAt    types.Timestamp
	aggregateID   types.ID
	aggregateType string
}

// NewBaseEvent creates a new BaseEvent.
func NewBaseEvent(eventType string, aggregateID types.ID, aggregateType string) BaseEvent {
	return BaseEvent{
		eventID:       types.NewID(),
		eventType:     eventType,
		occurredAt:    types.Now(),
		aggregateID:   aggregateID,
		aggregateType: aggregateType,
	}
}

// ReconstructBaseEvent creates a BaseEvent from transported data.
func ReconstructBaseEvent(
	eventID types.ID,
	eventType string,
	occurredAt types.Timestamp,
	aggregateID types.ID,
	aggregateType string,
) BaseEvent {
	return BaseEvent{
		eventID:       eventID,
		eventType:     eventType,
		occurredAt:    occurredAt,
		aggregateID:   aggregateID,
		aggregateType: aggregateType,
	}
}

func (e BaseEvent) EventID() types.ID           { return e.eventID }
func (e BaseEvent) EventType() string           { return e.eventType }
func (e BaseEvent) OccurredAt() types.Timestamp { return e.occurredAt }
func (e BaseEvent) AggregateID() types.ID       { return e.aggregateID }
func (e BaseEvent) AggregateType() string       { return e.aggregateType }

// Aggregate types
const (
	AggregateTypeService = "service"
)

// Event types
const (
	EventTypeServiceRegistered   = "service.registered"
	EventTypeServiceUpdated      = "service.updated"
	EventTypeServiceDraining     = "service.draining"
	EventTypeServiceDeregistered = "service.deregistered"
)
