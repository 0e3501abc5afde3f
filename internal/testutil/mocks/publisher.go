package mocks

import (
	"context"
	"sync"

	"github.com/0xsj/overwatch-directory/internal/domain/event"
	"github.com/0xsj/overwatch-directory/internal/port/outbound/messaging"
)

// --- EventPublisher Mock ---

// EventPublisher is a mock implementation of messaging.EventPublisher.
type EventPublisher struct {
	mu sync.RWMutex

	// Published events
	events []event.Event

	// Events by topic
	byTopic map[string][]event.Event

	// Call tracking
	Calls struct {
		Publish    int
		PublishAll int
	}

	// Error injection
	Errors struct {
		Publish    error
		PublishAll error
	}
}

// NewEventPublisher creates a new mock EventPublisher.
func NewEventPublisher() *EventPublisher {
	return &EventPublisher{
		byTopic: make(map[string][]event.Event),
	}
}

func (m *EventPublisher) Publish(ctx context.Context, evt event.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls.Publish++

	if m.Errors.Publish != nil {
		return m.Errors.Publish
	}

	m.record(evt)
	return nil
}

func (m *EventPublisher) PublishAll(ctx context.Context, events []event.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls.PublishAll++

	if m.Errors.PublishAll != nil {
		return m.Errors.PublishAll
	}

	for _, evt := range events {
		m.record(evt)
	}
	return nil
}

// record must be called with the lock held.
func (m *EventPublisher) record(evt event.Event) {
	m.events = append(m.events, evt)
	topic := messaging.TopicForEvent(evt)
	m.byTopic[topic] = append(m.byTopic[topic], evt)
}

// Events returns all published events.
func (m *EventPublisher) Events() []event.Event {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]event.Event, len(m.events))
	copy(result, m.events)
	return result
}

// EventsByTopic returns all events published to a topic.
func (m *EventPublisher) EventsByTopic(topic string) []event.Event {
	m.mu.RLock()
	defer m.mu.RUnlock()

	events := m.byTopic[topic]
	result := make([]event.Event, len(events))
	copy(result, events)
	return result
}

// LastEvent returns the most recently published event, or nil if none.
func (m *EventPublisher) LastEvent() event.Event {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if len(m.events) == 0 {
		return nil
	}
	return m.events[len(m.events)-1]
}
