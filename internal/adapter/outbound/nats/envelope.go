package nats

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/0xsj/overwatch-pkg/types"

	domainerror "github.com/0xsj/overwatch-directory/internal/domain/error"
	"github.com/0xsj/overwatch-directory/internal/domain/event"
)

// eventEnvelope wraps an event with metadata for transport.
type eventEnvelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	AggregateID   string          `json:"aggregate_id"`
	AggregateType string          `json:"aggregate_type"`
	OccurredAt    int64           `json:"occurred_at"`
	Payload       json.RawMessage `json:"payload"`
}

// servicePayload carries the fields of every service event.
type servicePayload struct {
	ServiceID string `json:"service_id"`
	Name      string `json:"name,omitempty"`
	DID       string `json:"did,omitempty"`
	Endpoint  string `json:"endpoint,omitempty"`
	Version   string `json:"version,omitempty"`
	Reason    string `json:"reason,omitempty"`
}

// Encode marshals evt into its wire envelope.
func Encode(evt event.Event) ([]byte, error) {
	var p servicePayload

	switch e := evt.(type) {
	case event.ServiceRegistered:
		p = servicePayload{ServiceID: e.ServiceID.String(), Name: e.Name, DID: e.DID, Endpoint: e.Endpoint, Version: e.Version}
	case event.ServiceUpdated:
		p = servicePayload{ServiceID: e.ServiceID.String(), Endpoint: e.Endpoint, Version: e.Version}
	case event.ServiceDraining:
		p = servicePayload{ServiceID: e.ServiceID.String()}
	case event.ServiceDeregistered:
		p = servicePayload{ServiceID: e.ServiceID.String(), Reason: e.Reason}
	default:
		return nil, fmt.Errorf("%w: unsupported event type %q", domainerror.ErrEventMalformed, evt.EventType())
	}

	payload, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	data, err := json.Marshal(eventEnvelope{
		EventID:       evt.EventID().String(),
		EventType:     evt.EventType(),
		AggregateID:   evt.AggregateID().String(),
		AggregateType: evt.AggregateType(),
		OccurredAt:    evt.OccurredAt().Time().Unix(),
		Payload:       payload,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event: %w", err)
	}
	return data, nil
}

// Decode parses a wire envelope back into a service event.
func Decode(data []byte) (event.Event, error) {
	var env eventEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", domainerror.ErrEventMalformed, err)
	}
	if env.AggregateType != event.AggregateTypeService {
		return nil, fmt.Errorf("%w: unsupported aggregate type %q", domainerror.ErrEventMalformed, env.AggregateType)
	}

	eventID, err := types.ParseID(env.EventID)
	if err != nil {
		return nil, fmt.Errorf("%w: event_id: %v", domainerror.ErrEventMalformed, err)
	}
	aggregateID, err := types.ParseID(env.AggregateID)
	if err != nil {
		return nil, fmt.Errorf("%w: aggregate_id: %v", domainerror.ErrEventMalformed, err)
	}

	var p servicePayload
	if err := json.Unmarshal(env.Payload, &p); err != nil {
		return nil, fmt.Errorf("%w: payload: %v", domainerror.ErrEventMalformed, err)
	}
	serviceID, err := types.ParseID(p.ServiceID)
	if err != nil {
		return nil, fmt.Errorf("%w: service_id: %v", domainerror.ErrEventMalformed, err)
	}

	base := event.ReconstructBaseEvent(
		eventID,
		env.EventType,
		types.FromTime(time.Unix(env.OccurredAt, 0)),
		aggregateID,
		env.AggregateType,
	)

	switch env.EventType {
	case event.EventTypeServiceRegistered:
		return event.ServiceRegistered{BaseEvent: base, ServiceID: serviceID, Name: p.Name, DID: p.DID, Endpoint: p.Endpoint, Version: p.Version}, nil
	case event.EventTypeServiceUpdated:
		return event.ServiceUpdated{BaseEvent: base, ServiceID: serviceID, Endpoint: p.Endpoint, Version: p.Version}, nil
	case event.EventTypeServiceDraining:
		return event.ServiceDraining{BaseEvent: base, ServiceID: serviceID}, nil
	case event.EventTypeServiceDeregistered:
		return event.ServiceDeregistered{BaseEvent: base, ServiceID: serviceID, Reason: p.Reason}, nil
	default:
		return nil, fmt.Errorf("%w: unsupported event type %q", domainerror.ErrEventMalformed, env.EventType)
	}
}
