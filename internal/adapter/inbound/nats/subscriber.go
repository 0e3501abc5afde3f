// Package nats feeds directory events from NATS into the read model.
package nats

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/nats-io/nats.go"

	natsadapter "github.com/0xsj/overwatch-directory/internal/adapter/outbound/nats"
	"github.com/0xsj/overwatch-directory/internal/domain/event"
	"github.com/0xsj/overwatch-directory/internal/port/outbound/messaging"
)

// DefaultQueueGroup lets directory replicas share one event stream.
const DefaultQueueGroup = "directory-projector"

// Applier applies a decoded event to the read model.
type Applier interface {
	Apply(ctx context.Context, evt event.Event) error
}

// Logger is the logging interface used by the subscriber.
type Logger interface {
	Info(msg string, fields ...interface{})
	Error(msg string, fields ...interface{})
}

// Config configures the subscriber.
type Config struct {
	SubjectPrefix string
	QueueGroup    string
	ApplyTimeout  time.Duration
}

// Subscriber consumes service events and projects them.
type Subscriber struct {
	conn    *nats.Conn
	applier Applier
	logger  Logger
	config  Config

	mu  sync.Mutex
	sub *nats.Subscription
}

// NewSubscriber creates a new Subscriber.
func NewSubscriber(conn *nats.Conn, applier Applier, logger Logger, config Config) *Subscriber {
	if config.QueueGroup == "" {
		config.QueueGroup = DefaultQueueGroup
	}
	if config.ApplyTimeout <= 0 {
		config.ApplyTimeout = 5 * time.Second
	}
	return &Subscriber{
		conn:    conn,
		applier: applier,
		logger:  logger,
		config:  config,
	}
}

// Subject returns the subject the subscriber listens on.
func (s *Subscriber) Subject() string {
	return natsadapter.Subject(s.config.SubjectPrefix, messaging.TopicServiceEvents)
}

// Start subscribes to service events.
func (s *Subscriber) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sub != nil {
		return nil
	}

	sub, err := s.conn.QueueSubscribe(s.Subject(), s.config.QueueGroup, func(msg *nats.Msg) {
		ctx, cancel := context.WithTimeout(context.Background(), s.config.ApplyTimeout)
		defer cancel()
		_ = s.process(ctx, msg.Data)
	})
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", s.Subject(), err)
	}

	s.sub = sub
	s.logger.Info("subscribed to directory events", "subject", s.Subject(), "queue", s.config.QueueGroup)
	return nil
}

// Stop drains the subscription.
func (s *Subscriber) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sub == nil {
		return nil
	}

	err := s.sub.Drain()
	s.sub = nil
	return err
}

// process decodes one message and applies it. Failures are logged and
// the message is dropped.
func (s *Subscriber) process(ctx context.Context, data []byte) error {
	evt, err := natsadapter.Decode(data)
	if err != nil {
		s.logger.Error("failed to decode directory event", "error", err.Error())
		return err
	}

	if err := s.applier.Apply(ctx, evt); err != nil {
		s.logger.Error("failed to apply directory event",
			"event_id", evt.EventID().String(),
			"event_type", evt.EventType(),
			"error", err.Error(),
		)
		return err
	}

	return nil
}
