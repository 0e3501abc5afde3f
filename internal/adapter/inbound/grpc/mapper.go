package grpc

import (
	"encoding/json"
	"fmt"
	"time"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/0xsj/overwatch-directory/internal/domain/model"
	"github.com/0xsj/overwatch-directory/internal/port/inbound/query"
)

// Service mappers

func serviceToMap(svc *model.Service) map[string]interface{} {
	if svc == nil {
		return nil
	}

	m := map[string]interface{}{
		"id":            svc.ID().String(),
		"name":          svc.Name(),
		"did":           svc.DID(),
		"endpoint":      svc.Endpoint(),
		"version":       svc.Version(),
		"status":        svc.Status().String(),
		"registered_at": formatTime(svc.RegisteredAt().Time()),
		"updated_at":    formatTime(svc.UpdatedAt().Time()),
	}

	if svc.DeregisteredAt().IsPresent() {
		m["deregistered_at"] = formatTime(svc.DeregisteredAt().MustGet().Time())
	}

	return m
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// Result mappers

func resultToMap(res any) (map[string]interface{}, error) {
	switch r := res.(type) {
	case query.GetServiceResult:
		return map[string]interface{}{"service": serviceToMap(r.Service)}, nil
	case *query.GetServiceResult:
		return resultToMap(*r)
	case query.GetServiceByNameResult:
		return map[string]interface{}{"service": serviceToMap(r.Service)}, nil
	case *query.GetServiceByNameResult:
		return resultToMap(*r)
	case query.ListServicesResult:
		services := make([]interface{}, 0, len(r.Services))
		for _, svc := range r.Services {
			services = append(services, serviceToMap(svc))
		}
		return map[string]interface{}{
			"services":    services,
			"total_count": r.TotalCount,
		}, nil
	case *query.ListServicesResult:
		return resultToMap(*r)
	}

	// Results without a dedicated mapper travel as their JSON form.
	data, err := json.Marshal(res)
	if err != nil {
		return nil, fmt.Errorf("failed to encode result: %w", err)
	}

	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		return map[string]interface{}{"value": json.RawMessage(data)}, nil
	}
	return m, nil
}

func toStructValue(res any) (*structpb.Value, error) {
	if res == nil {
		return structpb.NewNullValue(), nil
	}

	m, err := resultToMap(res)
	if err != nil {
		return nil, err
	}

	fields, _ := normalize(m).(map[string]interface{})
	s, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, fmt.Errorf("failed to encode result: %w", err)
	}
	return structpb.NewStructValue(s), nil
}

// normalize converts values structpb cannot take directly.
func normalize(v interface{}) interface{} {
	switch x := v.(type) {
	case map[string]interface{}:
		if x == nil {
			return nil
		}
		out := make(map[string]interface{}, len(x))
		for k, val := range x {
			out[k] = normalize(val)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(x))
		for i, val := range x {
			out[i] = normalize(val)
		}
		return out
	case int64:
		return float64(x)
	case json.RawMessage:
		var decoded interface{}
		if err := json.Unmarshal(x, &decoded); err != nil {
			return string(x)
		}
		return normalize(decoded)
	default:
		return v
	}
}
