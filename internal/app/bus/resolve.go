package bus

import (
	"context"
	"fmt"
	"reflect"

	domainerror "github.com/0xsj/overwatch-directory/internal/domain/error"
	"github.com/0xsj/overwatch-directory/internal/port/inbound/query"
)

const handleMethod = "Handle"

var (
	contextType = reflect.TypeFor[context.Context]()
	errorType   = reflect.TypeFor[error]()
	queryType   = reflect.TypeFor[query.Query]()
)

// queryTypeOf returns the query type a handler type serves, read from its
// Handle(context.Context, Q) (R, error) method.
//
// Handlers declared over an interface query parameter (query.Query, any)
// have no concrete query type and are rejected.
func queryTypeOf(handlerType reflect.Type) (reflect.Type, error) {
	if handlerType == nil {
		return nil, fmt.Errorf("%w: handler has no type", domainerror.ErrHandlerUnresolvable)
	}

	m, ok := handlerType.MethodByName(handleMethod)
	if !ok {
		return nil, fmt.Errorf("%w: %s has no %s method", domainerror.ErrHandlerUnresolvable, handlerType, handleMethod)
	}

	// Method types of interface types carry no receiver.
	fn := m.Type
	in := 1
	if handlerType.Kind() == reflect.Interface {
		in = 0
	}

	if fn.IsVariadic() || fn.NumIn() != in+2 || fn.NumOut() != 2 {
		return nil, fmt.Errorf("%w: %s.%s has signature %s, want func(context.Context, Q) (R, error)",
			domainerror.ErrHandlerUnresolvable, handlerType, handleMethod, fn)
	}
	if fn.In(in) != contextType {
		return nil, fmt.Errorf("%w: %s.%s must take context.Context first",
			domainerror.ErrHandlerUnresolvable, handlerType, handleMethod)
	}
	if fn.Out(1) != errorType {
		return nil, fmt.Errorf("%w: %s.%s must return error last",
			domainerror.ErrHandlerUnresolvable, handlerType, handleMethod)
	}

	qt := fn.In(in + 1)
	if err := checkQueryType(qt); err != nil {
		return nil, fmt.Errorf("%w: %s.%s: %v", domainerror.ErrHandlerUnresolvable, handlerType, handleMethod, err)
	}

	return qt, nil
}

func checkQueryType(qt reflect.Type) error {
	if qt.Kind() == reflect.Interface {
		return fmt.Errorf("query parameter %s is an interface, not a concrete query type", qt)
	}
	if !qt.Implements(queryType) {
		return fmt.Errorf("%s does not implement query.Query", qt)
	}
	return nil
}
