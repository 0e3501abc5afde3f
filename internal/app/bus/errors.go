package bus

import (
	"fmt"
	"reflect"

	domainerror "github.com/0xsj/overwatch-directory/internal/domain/error"
)

// ConfigurationError reports a handler that prevents the registry from being built.
// Err wraps domainerror.ErrHandlerUnresolvable or domainerror.ErrDuplicateHandler
// (or the provider's own error when a handler type cannot be looked up).
type ConfigurationError struct {
	Handler string
	Err     error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("query handler %q: %v", e.Handler, e.Err)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// NoHandlerError is returned when a query's runtime type has no handler.
type NoHandlerError struct {
	QueryType reflect.Type
}

func (e *NoHandlerError) Error() string {
	return fmt.Sprintf("no query handler registered for %s", typeName(e.QueryType))
}

func (e *NoHandlerError) Unwrap() error {
	return domainerror.ErrNoHandlerRegistered
}

func typeName(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	return t.String()
}
