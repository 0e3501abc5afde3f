package bus

import (
	"context"
	"reflect"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/0xsj/overwatch-directory/internal/port/inbound/query"
)

// DispatchFunc adapts a function to query.Bus.
type DispatchFunc func(ctx context.Context, qry query.Query) (any, error)

func (f DispatchFunc) Dispatch(ctx context.Context, qry query.Query) (any, error) {
	return f(ctx, qry)
}

// Middleware wraps a Bus.
type Middleware func(next query.Bus) query.Bus

// Chain wraps b with mws. The first middleware is the outermost.
func Chain(b query.Bus, mws ...Middleware) query.Bus {
	for i := len(mws) - 1; i >= 0; i-- {
		b = mws[i](b)
	}
	return b
}

// Logger defines the logging interface used by the bus middleware.
type Logger interface {
	Info(msg string, fields ...interface{})
	Error(msg string, fields ...interface{})
}

// Logging logs every dispatched query with its duration and outcome.
func Logging(logger Logger) Middleware {
	return func(next query.Bus) query.Bus {
		return DispatchFunc(func(ctx context.Context, qry query.Query) (any, error) {
			start := time.Now()
			res, err := next.Dispatch(ctx, qry)

			name := queryName(qry)
			if err != nil {
				logger.Error("query failed",
					"query", name,
					"duration", time.Since(start).String(),
					"error", err.Error(),
				)
				return res, err
			}

			logger.Info("query handled",
				"query", name,
				"duration", time.Since(start).String(),
			)
			return res, nil
		})
	}
}

// Tracing records a span per dispatched query.
func Tracing(tracer trace.Tracer) Middleware {
	return func(next query.Bus) query.Bus {
		return DispatchFunc(func(ctx context.Context, qry query.Query) (any, error) {
			if ctx == nil {
				ctx = context.Background()
			}

			name := queryName(qry)
			ctx, span := tracer.Start(ctx, "query "+name,
				trace.WithSpanKind(trace.SpanKindInternal),
				trace.WithAttributes(attribute.String("query.name", name)),
			)
			defer span.End()

			res, err := next.Dispatch(ctx, qry)
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
			}
			return res, err
		})
	}
}

func queryName(qry query.Query) string {
	if isNil(qry) {
		return "<nil>"
	}
	return safeQueryName(qry, reflect.TypeOf(qry))
}
