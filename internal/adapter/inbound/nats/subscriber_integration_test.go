//go:build integration

package nats_test

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/0xsj/overwatch-pkg/types"

	natssub "github.com/0xsj/overwatch-directory/internal/adapter/inbound/nats"
	natsadapter "github.com/0xsj/overwatch-directory/internal/adapter/outbound/nats"
	"github.com/0xsj/overwatch-directory/internal/domain/event"
	"github.com/0xsj/overwatch-directory/internal/testutil"
)

var testNC *nats.Conn

func TestMain(m *testing.M) {
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "nats:2.10-alpine",
			ExposedPorts: []string{"4222/tcp"},
			WaitingFor:   wait.ForLog("Server is ready").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		fmt.Printf("failed to start NATS container: %v\n", err)
		os.Exit(1)
	}

	host, err := container.Host(ctx)
	if err != nil {
		fmt.Printf("failed to get container host: %v\n", err)
		container.Terminate(ctx)
		os.Exit(1)
	}

	port, err := container.MappedPort(ctx, "4222")
	if err != nil {
		fmt.Printf("failed to get mapped port: %v\n", err)
		container.Terminate(ctx)
		os.Exit(1)
	}

	nc, err := nats.Connect(fmt.Sprintf("nats://%s:%s", host, port.Port()),
		nats.Timeout(10*time.Second),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(5),
		nats.ReconnectWait(time.Second),
	)
	if err != nil {
		fmt.Printf("failed to connect to NATS: %v\n", err)
		container.Terminate(ctx)
		os.Exit(1)
	}
	testNC = nc

	code := m.Run()

	nc.Close()
	container.Terminate(ctx)

	os.Exit(code)
}

type collectingApplier struct {
	events chan event.Event
}

func (a *collectingApplier) Apply(_ context.Context, evt event.Event) error {
	a.events <- evt
	return nil
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func waitForEvent(t *testing.T, ch chan event.Event, timeout time.Duration) event.Event {
	t.Helper()

	select {
	case evt := <-ch:
		return evt
	case <-time.After(timeout):
		t.Fatalf("timeout waiting for event")
		return nil
	}
}

func TestPublishSubscribe_RoundTrip(t *testing.T) {
	applier := &collectingApplier{events: make(chan event.Event, 10)}
	sub := natssub.NewSubscriber(testNC, applier, nopLogger{}, natssub.Config{SubjectPrefix: "it"})
	if err := sub.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer sub.Stop()

	if err := testNC.Flush(); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}

	publisher := natsadapter.NewEventPublisher(testNC, "it")
	serviceID := types.NewID()
	did := testutil.Fixtures.DID()

	events := []event.Event{
		event.NewServiceRegistered(serviceID, "billing", did, "billing:50051", "1.0.0"),
		event.NewServiceDraining(serviceID),
	}
	if err := publisher.PublishAll(context.Background(), events); err != nil {
		t.Fatalf("PublishAll() error = %v", err)
	}

	first := waitForEvent(t, applier.events, 2*time.Second)
	reg, ok := first.(event.ServiceRegistered)
	if !ok {
		t.Fatalf("first event = %T, want ServiceRegistered", first)
	}
	if reg.ServiceID != serviceID || reg.Name != "billing" || reg.DID != did {
		t.Errorf("unexpected registered payload: %+v", reg)
	}

	second := waitForEvent(t, applier.events, 2*time.Second)
	if second.EventType() != event.EventTypeServiceDraining {
		t.Errorf("EventType = %v, want %v", second.EventType(), event.EventTypeServiceDraining)
	}
}

func TestEventPublisher_Subject(t *testing.T) {
	msgChan := make(chan *nats.Msg, 1)
	s, err := testNC.Subscribe("overwatch.directory.service", func(msg *nats.Msg) {
		msgChan <- msg
	})
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}
	defer s.Unsubscribe()

	publisher := natsadapter.NewEventPublisher(testNC, "")
	serviceID := types.NewID()
	if err := publisher.Publish(context.Background(), event.NewServiceDeregistered(serviceID, "retired")); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	select {
	case msg := <-msgChan:
		var envelope map[string]any
		if err := json.Unmarshal(msg.Data, &envelope); err != nil {
			t.Fatalf("failed to unmarshal envelope: %v", err)
		}
		if envelope["aggregate_id"] != serviceID.String() {
			t.Errorf("aggregate_id = %v, want %v", envelope["aggregate_id"], serviceID)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for message")
	}
}
