package bus_test

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/0xsj/overwatch-directory/internal/port/inbound/query"
)

// TestQuery is served by testQueryHandler.
type TestQuery struct {
	Message string
}

func (TestQuery) QueryName() string { return "test.query" }

// AnotherTestQuery is served by anotherTestQueryHandler.
type AnotherTestQuery struct {
	Value int
}

func (AnotherTestQuery) QueryName() string { return "test.another_query" }

// UnregisteredQuery never has a handler.
type UnregisteredQuery struct{}

func (UnregisteredQuery) QueryName() string { return "test.unregistered" }

type testQueryHandler struct {
	mu     sync.Mutex
	calls  int
	last   TestQuery
	result string
	err    error
}

func newTestQueryHandler() *testQueryHandler {
	return &testQueryHandler{result: "default result"}
}

func (h *testQueryHandler) Handle(ctx context.Context, qry TestQuery) (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.calls++
	h.last = qry
	return h.result, h.err
}

func (h *testQueryHandler) Calls() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.calls
}

func (h *testQueryHandler) Last() TestQuery {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.last
}

type anotherTestQueryHandler struct{}

func (h *anotherTestQueryHandler) Handle(ctx context.Context, qry AnotherTestQuery) (int, error) {
	return qry.Value * 2, nil
}

// secondTestQueryHandler serves the same query type as testQueryHandler.
type secondTestQueryHandler struct{}

func (h *secondTestQueryHandler) Handle(ctx context.Context, qry TestQuery) (string, error) {
	return "second result", nil
}

// rawHandler accepts any query, so its query type cannot be determined.
type rawHandler struct{}

func (rawHandler) Handle(ctx context.Context, qry query.Query) (any, error) {
	return nil, nil
}

type noContextHandler struct{}

func (noContextHandler) Handle(qry TestQuery) (string, error) {
	return "", nil
}

type noErrorHandler struct{}

func (noErrorHandler) Handle(ctx context.Context, qry TestQuery) string {
	return ""
}

type nonQueryHandler struct{}

func (nonQueryHandler) Handle(ctx context.Context, qry string) (string, error) {
	return qry, nil
}

type testQueryHandlerAPI interface {
	Handle(ctx context.Context, qry TestQuery) (string, error)
}

// fakeProvider is an in-memory provider.ObjectProvider.
type fakeProvider struct {
	mu          sync.Mutex
	objects     map[string]any
	types       map[string]reflect.Type
	typeErr     error
	instanceErr error
	instanceOf  map[reflect.Type]int
}

func newFakeProvider(objects map[string]any) *fakeProvider {
	return &fakeProvider{
		objects:    objects,
		types:      make(map[string]reflect.Type),
		instanceOf: make(map[reflect.Type]int),
	}
}

func (p *fakeProvider) HandlerNames() []string {
	names := make([]string, 0, len(p.objects))
	for name := range p.objects {
		names = append(names, name)
	}
	return names
}

func (p *fakeProvider) TypeOf(name string) (reflect.Type, error) {
	if p.typeErr != nil {
		return nil, p.typeErr
	}
	if t, ok := p.types[name]; ok {
		return t, nil
	}
	obj, ok := p.objects[name]
	if !ok {
		return nil, fmt.Errorf("no object named %q", name)
	}
	return reflect.TypeOf(obj), nil
}

func (p *fakeProvider) InstanceOf(t reflect.Type) (any, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.instanceOf[t]++
	if p.instanceErr != nil {
		return nil, p.instanceErr
	}
	for _, obj := range p.objects {
		if reflect.TypeOf(obj).AssignableTo(t) {
			return obj, nil
		}
	}
	return nil, errors.New("no instance")
}

func (p *fakeProvider) InstanceCalls(t reflect.Type) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.instanceOf[t]
}
