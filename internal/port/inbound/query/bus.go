package query

import (
	"context"
	"fmt"

	domainerror "github.com/0xsj/overwatch-directory/internal/domain/error"
)

// Query is a marker interface for all queries.
// Queries are immutable values; each variant is its own named type.
type Query interface {
	// QueryName returns the name of the query for logging/tracing.
	QueryName() string
}

// Handler handles a specific query type.
// The query type a handler serves is the second parameter of Handle.
type Handler[Q Query, R any] interface {
	Handle(ctx context.Context, qry Q) (R, error)
}

// HandlerFunc adapts a function to a Handler.
type HandlerFunc[Q Query, R any] func(ctx context.Context, qry Q) (R, error)

func (f HandlerFunc[Q, R]) Handle(ctx context.Context, qry Q) (R, error) {
	return f(ctx, qry)
}

// Bus dispatches queries to their handlers by runtime type.
type Bus interface {
	// Dispatch sends a query to its handler and returns the handler's result unchanged.
	Dispatch(ctx context.Context, qry Query) (any, error)
}

// Ask dispatches qry and returns the handler's result as R.
func Ask[R any](ctx context.Context, bus Bus, qry Query) (R, error) {
	var zero R

	res, err := bus.Dispatch(ctx, qry)
	if res == nil {
		return zero, err
	}

	typed, ok := res.(R)
	if err != nil {
		if ok {
			return typed, err
		}
		return zero, err
	}
	if !ok {
		return zero, fmt.Errorf("%w: %s returned %T, want %T", domainerror.ErrResultTypeMismatch, qry.QueryName(), res, zero)
	}

	return typed, nil
}
