package bus

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	"github.com/0xsj/overwatch-directory/internal/port/inbound/query"
	"github.com/0xsj/overwatch-directory/internal/port/outbound/provider"
)

// accessor fetches a handler from the provider on first use and keeps it.
// Failed lookups are not cached, so a later dispatch may retry the provider.
type accessor struct {
	provider    provider.ObjectProvider
	handlerType reflect.Type

	mu       sync.Mutex
	instance any
}

func newAccessor(p provider.ObjectProvider, handlerType reflect.Type) *accessor {
	return &accessor{
		provider:    p,
		handlerType: handlerType,
	}
}

func resolvedAccessor(handler any) *accessor {
	return &accessor{
		handlerType: reflect.TypeOf(handler),
		instance:    handler,
	}
}

func (a *accessor) get() (any, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.instance != nil {
		return a.instance, nil
	}

	h, err := a.provider.InstanceOf(a.handlerType)
	if err != nil {
		return nil, err
	}
	if h == nil {
		return nil, fmt.Errorf("provider returned nil for %s", a.handlerType)
	}
	if !reflect.TypeOf(h).AssignableTo(a.handlerType) {
		return nil, fmt.Errorf("provider returned %T for %s", h, a.handlerType)
	}

	a.instance = h
	return h, nil
}

// invoker calls a resolved handler with a query of its registered type.
type invoker func(ctx context.Context, handler any, qry query.Query) (any, error)

// invokeReflect calls Handle through reflection. It serves handlers found by
// scanning a provider, whose result type is only known at runtime.
func invokeReflect(ctx context.Context, handler any, qry query.Query) (any, error) {
	method := reflect.ValueOf(handler).MethodByName(handleMethod)
	out := method.Call([]reflect.Value{reflect.ValueOf(ctx), reflect.ValueOf(qry)})

	var err error
	if e := out[1].Interface(); e != nil {
		err = e.(error)
	}
	return out[0].Interface(), err
}

// invokeTyped returns an invoker for handlers registered with their static types.
func invokeTyped[Q query.Query, R any]() invoker {
	return func(ctx context.Context, handler any, qry query.Query) (any, error) {
		res, err := handler.(query.Handler[Q, R]).Handle(ctx, qry.(Q))
		return res, err
	}
}
