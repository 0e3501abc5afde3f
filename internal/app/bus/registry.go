// Package bus implements the in-process query bus: a registry that maps each
// query type to exactly one handler, and a dispatcher that routes queries by
// their runtime type.
package bus

import (
	"fmt"
	"reflect"
	"slices"
	"strings"

	domainerror "github.com/0xsj/overwatch-directory/internal/domain/error"
	"github.com/0xsj/overwatch-directory/internal/port/inbound/query"
	"github.com/0xsj/overwatch-directory/internal/port/outbound/provider"
)

// binding ties a query type to the handler that serves it.
type binding struct {
	queryType   reflect.Type
	queryName   string
	handlerName string
	handlerType reflect.Type
	handler     *accessor
	invoke      invoker
}

// Entry describes one registered query type.
type Entry struct {
	QueryName   string
	QueryType   reflect.Type
	HandlerName string
	HandlerType reflect.Type
}

// Registry maps query types to their handlers. It is immutable once built
// and safe for concurrent use.
type Registry struct {
	bindings map[reflect.Type]*binding
}

// NewRegistry builds a registry from every handler the provider knows.
func NewRegistry(p provider.ObjectProvider, opts ...Option) (*Registry, error) {
	return NewBuilder(opts...).Scan(p).Build()
}

// Get returns the handler for queryType.
func (r *Registry) Get(queryType reflect.Type) (any, error) {
	b, ok := r.lookup(queryType)
	if !ok {
		return nil, &NoHandlerError{QueryType: queryType}
	}

	h, err := b.handler.get()
	if err != nil {
		return nil, fmt.Errorf("resolve query handler %q: %w", b.handlerName, err)
	}
	return h, nil
}

// HandlerFor returns the handler registered for Q.
func HandlerFor[Q query.Query](r *Registry) (any, error) {
	return r.Get(reflect.TypeFor[Q]())
}

// Has reports whether queryType has a handler.
func (r *Registry) Has(queryType reflect.Type) bool {
	_, ok := r.lookup(queryType)
	return ok
}

// Len returns the number of registered query types.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.bindings)
}

// Entries returns the registered query types sorted by query name.
func (r *Registry) Entries() []Entry {
	if r == nil {
		return nil
	}

	entries := make([]Entry, 0, len(r.bindings))
	for _, b := range r.bindings {
		entries = append(entries, Entry{
			QueryName:   b.queryName,
			QueryType:   b.queryType,
			HandlerName: b.handlerName,
			HandlerType: b.handlerType,
		})
	}

	slices.SortFunc(entries, func(a, b Entry) int {
		if c := strings.Compare(a.QueryName, b.QueryName); c != 0 {
			return c
		}
		return strings.Compare(a.QueryType.String(), b.QueryType.String())
	})
	return entries
}

func (r *Registry) lookup(queryType reflect.Type) (*binding, bool) {
	if r == nil || queryType == nil {
		return nil, false
	}
	b, ok := r.bindings[queryType]
	return b, ok
}

// Builder collects handlers and produces a Registry. The first error
// recorded is sticky; later calls are ignored and Build returns it.
type Builder struct {
	opts     options
	bindings map[reflect.Type]*binding
	err      error
}

// NewBuilder creates an empty Builder.
func NewBuilder(opts ...Option) *Builder {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	return &Builder{
		opts:     o,
		bindings: make(map[reflect.Type]*binding),
	}
}

// Register adds a handler whose query type is fixed at compile time.
// An empty name defaults to the handler's type.
func Register[Q query.Query, R any](b *Builder, name string, h query.Handler[Q, R]) *Builder {
	if b.err != nil {
		return b
	}
	if name == "" {
		name = fmt.Sprintf("%T", h)
	}

	qt := reflect.TypeFor[Q]()
	if err := checkQueryType(qt); err != nil {
		b.err = &ConfigurationError{
			Handler: name,
			Err:     fmt.Errorf("%w: %v", domainerror.ErrHandlerUnresolvable, err),
		}
		return b
	}
	if h == nil {
		b.err = &ConfigurationError{
			Handler: name,
			Err:     fmt.Errorf("%w: handler is nil", domainerror.ErrHandlerUnresolvable),
		}
		return b
	}

	b.add(&binding{
		queryType:   qt,
		queryName:   queryNameOf(qt),
		handlerName: name,
		handlerType: reflect.TypeOf(h),
		handler:     resolvedAccessor(h),
		invoke:      invokeTyped[Q, R](),
	})
	return b
}

// Scan adds every handler the provider knows. Handlers are visited in name
// order, which decides the winner under DuplicateOverwrite.
func (b *Builder) Scan(p provider.ObjectProvider) *Builder {
	if b.err != nil {
		return b
	}

	names := slices.Clone(p.HandlerNames())
	slices.Sort(names)

	for _, name := range names {
		handlerType, err := p.TypeOf(name)
		if err != nil {
			b.err = &ConfigurationError{Handler: name, Err: err}
			return b
		}

		qt, err := queryTypeOf(handlerType)
		if err != nil {
			b.err = &ConfigurationError{Handler: name, Err: err}
			return b
		}

		b.add(&binding{
			queryType:   qt,
			queryName:   queryNameOf(qt),
			handlerName: name,
			handlerType: handlerType,
			handler:     newAccessor(p, handlerType),
			invoke:      invokeReflect,
		})
		if b.err != nil {
			return b
		}
	}

	return b
}

// Build returns the registry, or the first configuration error.
// No registry is returned alongside an error.
func (b *Builder) Build() (*Registry, error) {
	if b.err != nil {
		return nil, b.err
	}

	bindings := make(map[reflect.Type]*binding, len(b.bindings))
	for qt, bd := range b.bindings {
		bindings[qt] = bd
	}
	return &Registry{bindings: bindings}, nil
}

func (b *Builder) add(bd *binding) {
	existing, ok := b.bindings[bd.queryType]
	if !ok {
		b.bindings[bd.queryType] = bd
		return
	}

	// The same handler seen twice is not a conflict.
	if existing.handlerName == bd.handlerName && existing.handlerType == bd.handlerType {
		return
	}

	if b.opts.duplicates == DuplicateOverwrite {
		b.bindings[bd.queryType] = bd
		return
	}

	b.err = &ConfigurationError{
		Handler: bd.handlerName,
		Err: fmt.Errorf("%w: %s is already handled by %q",
			domainerror.ErrDuplicateHandler, bd.queryType, existing.handlerName),
	}
}

// queryNameOf returns QueryName of the zero value of qt.
func queryNameOf(qt reflect.Type) string {
	zero := reflect.New(qt).Elem().Interface()
	if q, ok := zero.(query.Query); ok {
		return safeQueryName(q, qt)
	}
	return qt.String()
}

func safeQueryName(q query.Query, qt reflect.Type) (name string) {
	defer func() {
		if recover() != nil {
			name = qt.String()
		}
	}()
	return q.QueryName()
}
