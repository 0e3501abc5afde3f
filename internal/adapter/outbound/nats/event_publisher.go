// Package nats carries directory events over NATS.
package nats

import (
	"context"
	"fmt"

	"github.com/nats-io/nats.go"

	"github.com/0xsj/overwatch-directory/internal/domain/event"
	"github.com/0xsj/overwatch-directory/internal/port/outbound/messaging"
)

// DefaultSubjectPrefix is used when no prefix is configured.
const DefaultSubjectPrefix = "overwatch"

// eventPublisher implements messaging.EventPublisher.
type eventPublisher struct {
	conn          *nats.Conn
	subjectPrefix string
}

// NewEventPublisher creates a new EventPublisher.
func NewEventPublisher(conn *nats.Conn, subjectPrefix string) messaging.EventPublisher {
	if subjectPrefix == "" {
		subjectPrefix = DefaultSubjectPrefix
	}
	return &eventPublisher{
		conn:          conn,
		subjectPrefix: subjectPrefix,
	}
}

func (p *eventPublisher) Publish(ctx context.Context, evt event.Event) error {
	data, err := Encode(evt)
	if err != nil {
		return err
	}

	if err := p.conn.Publish(Subject(p.subjectPrefix, messaging.TopicForEvent(evt)), data); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	return nil
}

func (p *eventPublisher) PublishAll(ctx context.Context, events []event.Event) error {
	for _, evt := range events {
		if err := p.Publish(ctx, evt); err != nil {
			return err
		}
	}
	return nil
}

// Subject joins a prefix and topic into a NATS subject.
func Subject(prefix, topic string) string {
	if prefix == "" {
		prefix = DefaultSubjectPrefix
	}
	return fmt.Sprintf("%s.%s", prefix, topic)
}
