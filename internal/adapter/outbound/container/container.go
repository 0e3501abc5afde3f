// Package container is a small dependency container of named, lazily built
// singletons. It is the object provider the query bus scans for handlers.
package container

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"
	"sync"

	domainerror "github.com/0xsj/overwatch-directory/internal/domain/error"
	"github.com/0xsj/overwatch-directory/internal/port/outbound/provider"
)

// Resolver resolves dependencies while a component is being built.
type Resolver interface {
	InstanceOf(t reflect.Type) (any, error)
}

type component struct {
	name     string
	typ      reflect.Type
	build    func(r Resolver) (any, error)
	instance any
	built    bool
}

// Container holds components keyed by name and by type.
type Container struct {
	mu     sync.Mutex
	byName map[string]*component
	byType map[reflect.Type]*component
	built  []*component
}

var _ provider.ObjectProvider = (*Container)(nil)

// New creates an empty Container.
func New() *Container {
	return &Container{
		byName: make(map[string]*component),
		byType: make(map[reflect.Type]*component),
	}
}

// Provide registers a component of type T built on first use.
// Names and types must both be unique.
func Provide[T any](c *Container, name string, build func(r Resolver) (T, error)) error {
	return c.provide(name, reflect.TypeFor[T](), func(r Resolver) (any, error) {
		v, err := build(r)
		if err != nil {
			return nil, err
		}
		return v, nil
	})
}

// Instance registers an already built component.
func Instance[T any](c *Container, name string, v T) error {
	return Provide(c, name, func(Resolver) (T, error) {
		return v, nil
	})
}

// Resolve returns the component of type T.
func Resolve[T any](r Resolver) (T, error) {
	var zero T

	v, err := r.InstanceOf(reflect.TypeFor[T]())
	if err != nil {
		return zero, err
	}
	typed, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("component of type %T does not satisfy %s", v, reflect.TypeFor[T]())
	}
	return typed, nil
}

// MustResolve is like Resolve but panics on error. Intended for tests and wiring code.
func MustResolve[T any](r Resolver) T {
	v, err := Resolve[T](r)
	if err != nil {
		panic(err)
	}
	return v
}

func (c *Container) provide(name string, t reflect.Type, build func(r Resolver) (any, error)) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("component of type %s needs a name", t)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.byName[name]; ok {
		return fmt.Errorf("%w: name %q", domainerror.ErrComponentDuplicate, name)
	}
	if existing, ok := c.byType[t]; ok {
		return fmt.Errorf("%w: type %s already provided by %q", domainerror.ErrComponentDuplicate, t, existing.name)
	}

	comp := &component{name: name, typ: t, build: build}
	c.byName[name] = comp
	c.byType[t] = comp
	return nil
}

// Names returns every component name, sorted.
func (c *Container) Names() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	names := make([]string, 0, len(c.byName))
	for name := range c.byName {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// HandlerNames returns the names of components whose type has a Handle method.
func (c *Container) HandlerNames() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	var names []string
	for name, comp := range c.byName {
		if _, ok := comp.typ.MethodByName("Handle"); ok {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names
}

// TypeOf returns the type a component was provided as.
func (c *Container) TypeOf(name string) (reflect.Type, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	comp, ok := c.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domainerror.ErrComponentNotFound, name)
	}
	return comp.typ, nil
}

// InstanceOf returns the component of type t, building it and its
// dependencies on first use.
func (c *Container) InstanceOf(t reflect.Type) (any, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := &scope{container: c}
	return s.InstanceOf(t)
}

// Close closes built components in reverse build order. Components with a
// Close() error or Close() method are closed; others are skipped.
func (c *Container) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var errs []error
	for i := len(c.built) - 1; i >= 0; i-- {
		comp := c.built[i]
		switch v := comp.instance.(type) {
		case interface{ Close() error }:
			if err := v.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close %q: %w", comp.name, err))
			}
		case interface{ Close() }:
			v.Close()
		}
		comp.instance = nil
		comp.built = false
	}
	c.built = nil

	return errors.Join(errs...)
}

// find returns the component for t: an exact type match, or else the single
// component assignable to interface t. The caller holds c.mu.
func (c *Container) find(t reflect.Type) (*component, error) {
	if comp, ok := c.byType[t]; ok {
		return comp, nil
	}
	if t == nil || t.Kind() != reflect.Interface {
		return nil, fmt.Errorf("%w: type %s", domainerror.ErrComponentNotFound, t)
	}

	var matches []*component
	for _, comp := range c.byType {
		if comp.typ.AssignableTo(t) {
			matches = append(matches, comp)
		}
	}

	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("%w: type %s", domainerror.ErrComponentNotFound, t)
	case 1:
		return matches[0], nil
	default:
		names := make([]string, 0, len(matches))
		for _, m := range matches {
			names = append(names, m.name)
		}
		slices.Sort(names)
		return nil, fmt.Errorf("%w: %s is satisfied by %s", domainerror.ErrComponentDuplicate, t, strings.Join(names, ", "))
	}
}

// scope resolves one InstanceOf call and tracks the components under
// construction to detect cycles.
type scope struct {
	container *Container
	building  []*component
}

func (s *scope) InstanceOf(t reflect.Type) (any, error) {
	comp, err := s.container.find(t)
	if err != nil {
		return nil, err
	}
	if comp.built {
		return comp.instance, nil
	}

	if slices.Contains(s.building, comp) {
		path := make([]string, 0, len(s.building)+1)
		for _, b := range s.building {
			path = append(path, b.name)
		}
		path = append(path, comp.name)
		return nil, fmt.Errorf("%w: %s", domainerror.ErrComponentCycle, strings.Join(path, " -> "))
	}

	s.building = append(s.building, comp)
	v, err := comp.build(s)
	s.building = s.building[:len(s.building)-1]
	if err != nil {
		return nil, fmt.Errorf("build %q: %w", comp.name, err)
	}
	if v == nil {
		return nil, fmt.Errorf("build %q: returned nil", comp.name)
	}

	comp.instance = v
	comp.built = true
	s.container.built = append(s.container.built, comp)
	return v, nil
}
