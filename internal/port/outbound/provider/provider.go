package provider

import (
	"reflect"
)

// ObjectProvider is the object container the query bus discovers handlers from.
type ObjectProvider interface {
	// HandlerNames returns the names of every object whose type has a
	// Handle method. Order is not significant.
	HandlerNames() []string

	// TypeOf returns the declared type of the named object.
	TypeOf(name string) (reflect.Type, error)

	// InstanceOf returns the instance registered for t, building it on first use.
	InstanceOf(t reflect.Type) (any, error)
}
