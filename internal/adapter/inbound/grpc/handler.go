package grpc

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/0xsj/overwatch-directory/internal/app/bus"
	domainerror "github.com/0xsj/overwatch-directory/internal/domain/error"
	"github.com/0xsj/overwatch-directory/internal/port/inbound/query"
)

// Request and response field names.
const (
	fieldQuery  = "query"
	fieldParams = "params"
	fieldResult = "result"
)

// decoder builds a query value from JSON parameters.
type decoder func(params []byte) (query.Query, error)

// Handler implements QueryServiceServer on top of the query bus.
type Handler struct {
	bus      query.Bus
	decoders map[string]decoder
}

// NewHandler creates a Handler that accepts every query in entries.
func NewHandler(qb query.Bus, entries []bus.Entry) *Handler {
	decoders := make(map[string]decoder, len(entries))
	for _, e := range entries {
		if e.QueryName == "" {
			continue
		}
		decoders[e.QueryName] = decoderFor(e.QueryType)
	}

	return &Handler{
		bus:      qb,
		decoders: decoders,
	}
}

// Queries returns the names of the queries the handler accepts.
func (h *Handler) Queries() []string {
	names := make([]string, 0, len(h.decoders))
	for name := range h.decoders {
		names = append(names, name)
	}
	return names
}

// Query decodes {"query": name, "params": {...}}, dispatches it and
// returns {"query": name, "result": {...}}.
func (h *Handler) Query(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	qry, err := h.decode(req)
	if err != nil {
		return nil, toGRPCError(err)
	}

	res, err := h.bus.Dispatch(ctx, qry)
	if err != nil {
		return nil, toGRPCError(err)
	}

	result, err := toStructValue(res)
	if err != nil {
		return nil, toGRPCError(err)
	}

	return &structpb.Struct{
		Fields: map[string]*structpb.Value{
			fieldQuery:  structpb.NewStringValue(qry.QueryName()),
			fieldResult: result,
		},
	}, nil
}

func (h *Handler) decode(req *structpb.Struct) (query.Query, error) {
	name := req.GetFields()[fieldQuery].GetStringValue()
	if name == "" {
		return nil, fmt.Errorf("%w: missing %q", domainerror.ErrQueryMalformed, fieldQuery)
	}

	dec, ok := h.decoders[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domainerror.ErrUnknownQuery, name)
	}

	params := []byte("{}")
	if p := req.GetFields()[fieldParams].GetStructValue(); p != nil {
		data, err := p.MarshalJSON()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domainerror.ErrQueryMalformed, err)
		}
		params = data
	}

	return dec(params)
}

func decoderFor(t reflect.Type) decoder {
	return func(params []byte) (query.Query, error) {
		var ptr reflect.Value
		if t.Kind() == reflect.Ptr {
			ptr = reflect.New(t.Elem())
		} else {
			ptr = reflect.New(t)
		}

		if err := json.Unmarshal(params, ptr.Interface()); err != nil {
			return nil, fmt.Errorf("%w: %v", domainerror.ErrQueryMalformed, err)
		}

		v := ptr
		if t.Kind() != reflect.Ptr {
			v = ptr.Elem()
		}

		qry, ok := v.Interface().(query.Query)
		if !ok {
			return nil, fmt.Errorf("%w: %s is not a query", domainerror.ErrQueryMalformed, t)
		}
		return qry, nil
	}
}
