package nats

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0xsj/overwatch-pkg/types"

	natsadapter "github.com/0xsj/overwatch-directory/internal/adapter/outbound/nats"
	domainerror "github.com/0xsj/overwatch-directory/internal/domain/error"
	"github.com/0xsj/overwatch-directory/internal/domain/event"
)

type recordingApplier struct {
	events []event.Event
	err    error
}

func (a *recordingApplier) Apply(_ context.Context, evt event.Event) error {
	a.events = append(a.events, evt)
	return a.err
}

type recordingLogger struct {
	errors []string
}

func (l *recordingLogger) Info(string, ...interface{}) {}

func (l *recordingLogger) Error(msg string, _ ...interface{}) {
	l.errors = append(l.errors, msg)
}

func TestSubscriber_Process(t *testing.T) {
	evt := event.NewServiceDraining(types.NewID())
	data, err := natsadapter.Encode(evt)
	require.NoError(t, err)

	t.Run("applies decoded event", func(t *testing.T) {
		applier := &recordingApplier{}
		logger := &recordingLogger{}
		s := NewSubscriber(nil, applier, logger, Config{})

		require.NoError(t, s.process(context.Background(), data))
		require.Len(t, applier.events, 1)
		assert.Equal(t, evt.EventID(), applier.events[0].EventID())
		assert.Empty(t, logger.errors)
	})

	t.Run("malformed message is logged and dropped", func(t *testing.T) {
		applier := &recordingApplier{}
		logger := &recordingLogger{}
		s := NewSubscriber(nil, applier, logger, Config{})

		err := s.process(context.Background(), []byte("garbage"))
		assert.ErrorIs(t, err, domainerror.ErrEventMalformed)
		assert.Empty(t, applier.events)
		assert.Equal(t, []string{"failed to decode directory event"}, logger.errors)
	})

	t.Run("apply failure is logged", func(t *testing.T) {
		applier := &recordingApplier{err: errors.New("store down")}
		logger := &recordingLogger{}
		s := NewSubscriber(nil, applier, logger, Config{})

		err := s.process(context.Background(), data)
		assert.Error(t, err)
		assert.Equal(t, []string{"failed to apply directory event"}, logger.errors)
	})
}

func TestSubscriber_Subject(t *testing.T) {
	assert.Equal(t, "overwatch.directory.service", NewSubscriber(nil, nil, nil, Config{}).Subject())
	assert.Equal(t, "staging.directory.service", NewSubscriber(nil, nil, nil, Config{SubjectPrefix: "staging"}).Subject())
}

func TestSubscriber_StopWithoutStart(t *testing.T) {
	s := NewSubscriber(nil, &recordingApplier{}, &recordingLogger{}, Config{})
	assert.NoError(t, s.Stop())
}
