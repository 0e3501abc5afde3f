package bus

import (
	"context"
	"fmt"
	"reflect"

	domainerror "github.com/0xsj/overwatch-directory/internal/domain/error"
	"github.com/0xsj/overwatch-directory/internal/port/inbound/query"
)

// Dispatcher routes each query to the single handler registered for its
// runtime type. It holds no state of its own.
type Dispatcher struct {
	registry *Registry
}

var _ query.Bus = (*Dispatcher)(nil)

// NewDispatcher creates a Dispatcher over r.
func NewDispatcher(r *Registry) *Dispatcher {
	return &Dispatcher{registry: r}
}

// Dispatch invokes the handler for qry on the calling goroutine and returns
// its result and error unchanged.
func (d *Dispatcher) Dispatch(ctx context.Context, qry query.Query) (any, error) {
	if isNil(qry) {
		return nil, domainerror.ErrNilQuery
	}

	qt := reflect.TypeOf(qry)
	b, ok := d.registry.lookup(qt)
	if !ok {
		return nil, &NoHandlerError{QueryType: qt}
	}

	h, err := b.handler.get()
	if err != nil {
		return nil, fmt.Errorf("resolve query handler %q: %w", b.handlerName, err)
	}

	if ctx == nil {
		ctx = context.Background()
	}
	return b.invoke(ctx, h, qry)
}

func isNil(qry query.Query) bool {
	if qry == nil {
		return true
	}

	v := reflect.ValueOf(qry)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Interface, reflect.Chan:
		return v.IsNil()
	default:
		return false
	}
}
