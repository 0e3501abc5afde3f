package container_test

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0xsj/overwatch-directory/internal/adapter/outbound/container"
	"github.com/0xsj/overwatch-directory/internal/app/bus"
	domainerror "github.com/0xsj/overwatch-directory/internal/domain/error"
)

type greeter interface {
	Greet() string
}

type englishGreeter struct{ name string }

func (g *englishGreeter) Greet() string { return "hello " + g.name }

type frenchGreeter struct{}

func (g *frenchGreeter) Greet() string { return "bonjour" }

type closer struct {
	name   string
	closed *[]string
	err    error
}

func (c *closer) Close() error {
	*c.closed = append(*c.closed, c.name)
	return c.err
}

type plainCloser struct {
	closed *[]string
}

func (c *plainCloser) Close() {
	*c.closed = append(*c.closed, "plain")
}

type pingQuery struct{ Target string }

func (pingQuery) QueryName() string { return "test.ping" }

type pingHandler struct {
	greeter greeter
}

func (h *pingHandler) Handle(ctx context.Context, qry pingQuery) (string, error) {
	return h.greeter.Greet() + " " + qry.Target, nil
}

func TestContainer_ProvideAndResolve(t *testing.T) {
	c := container.New()
	builds := 0

	require.NoError(t, container.Provide(c, "greeter", func(r container.Resolver) (*englishGreeter, error) {
		builds++
		return &englishGreeter{name: "world"}, nil
	}))
	assert.Zero(t, builds, "components are built lazily")

	first, err := container.Resolve[*englishGreeter](c)
	require.NoError(t, err)
	second, err := container.Resolve[*englishGreeter](c)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, builds)
	assert.Equal(t, "hello world", first.Greet())
}

func TestContainer_ResolveByInterface(t *testing.T) {
	c := container.New()
	require.NoError(t, container.Instance(c, "greeter", &englishGreeter{name: "you"}))

	g, err := container.Resolve[greeter](c)
	require.NoError(t, err)
	assert.Equal(t, "hello you", g.Greet())

	require.NoError(t, container.Instance(c, "french", &frenchGreeter{}))
	_, err = container.Resolve[greeter](c)
	assert.ErrorIs(t, err, domainerror.ErrComponentDuplicate)
}

func TestContainer_Duplicates(t *testing.T) {
	c := container.New()
	require.NoError(t, container.Instance(c, "greeter", &englishGreeter{}))

	err := container.Instance(c, "greeter", &frenchGreeter{})
	assert.ErrorIs(t, err, domainerror.ErrComponentDuplicate)

	err = container.Instance(c, "other", &englishGreeter{})
	assert.ErrorIs(t, err, domainerror.ErrComponentDuplicate)

	err = container.Instance(c, " ", &frenchGreeter{})
	assert.Error(t, err)
}

func TestContainer_NotFound(t *testing.T) {
	c := container.New()

	_, err := container.Resolve[*englishGreeter](c)
	assert.ErrorIs(t, err, domainerror.ErrComponentNotFound)

	_, err = c.TypeOf("missing")
	assert.ErrorIs(t, err, domainerror.ErrComponentNotFound)
}

func TestContainer_Cycle(t *testing.T) {
	type a struct{}
	type b struct{}

	c := container.New()
	require.NoError(t, container.Provide(c, "a", func(r container.Resolver) (*a, error) {
		_, err := container.Resolve[*b](r)
		return &a{}, err
	}))
	require.NoError(t, container.Provide(c, "b", func(r container.Resolver) (*b, error) {
		_, err := container.Resolve[*a](r)
		return &b{}, err
	}))

	_, err := container.Resolve[*a](c)
	assert.ErrorIs(t, err, domainerror.ErrComponentCycle)
	assert.Contains(t, err.Error(), "a -> b -> a")
}

func TestContainer_BuildError(t *testing.T) {
	c := container.New()
	boom := errors.New("boom")
	require.NoError(t, container.Provide(c, "greeter", func(r container.Resolver) (greeter, error) {
		return nil, boom
	}))

	_, err := container.Resolve[greeter](c)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), `"greeter"`)
}

func TestContainer_NamesAndTypes(t *testing.T) {
	c := container.New()
	require.NoError(t, container.Instance(c, "greeter", &englishGreeter{}))
	require.NoError(t, container.Provide(c, "ping", func(r container.Resolver) (*pingHandler, error) {
		return &pingHandler{}, nil
	}))

	assert.Equal(t, []string{"greeter", "ping"}, c.Names())
	assert.Equal(t, []string{"ping"}, c.HandlerNames())

	typ, err := c.TypeOf("ping")
	require.NoError(t, err)
	assert.Equal(t, reflect.TypeFor[*pingHandler](), typ)
}

func TestContainer_Close(t *testing.T) {
	var closed []string
	c := container.New()

	require.NoError(t, container.Provide(c, "first", func(r container.Resolver) (*closer, error) {
		return &closer{name: "first", closed: &closed}, nil
	}))
	require.NoError(t, container.Provide(c, "plain", func(r container.Resolver) (*plainCloser, error) {
		if _, err := container.Resolve[*closer](r); err != nil {
			return nil, err
		}
		return &plainCloser{closed: &closed}, nil
	}))
	require.NoError(t, container.Instance(c, "never-built", &englishGreeter{}))

	_, err := container.Resolve[*plainCloser](c)
	require.NoError(t, err)

	require.NoError(t, c.Close())
	assert.Equal(t, []string{"plain", "first"}, closed)
}

func TestContainer_CloseJoinsErrors(t *testing.T) {
	var closed []string
	boom := errors.New("close failed")
	c := container.New()
	require.NoError(t, container.Instance(c, "closer", &closer{name: "closer", closed: &closed, err: boom}))

	_ = container.MustResolve[*closer](c)

	err := c.Close()
	assert.ErrorIs(t, err, boom)
}

func TestContainer_AsQueryHandlerProvider(t *testing.T) {
	c := container.New()
	require.NoError(t, container.Instance[greeter](c, "greeter", &englishGreeter{name: "from"}))
	require.NoError(t, container.Provide(c, "pingHandler", func(r container.Resolver) (*pingHandler, error) {
		g, err := container.Resolve[greeter](r)
		if err != nil {
			return nil, err
		}
		return &pingHandler{greeter: g}, nil
	}))

	registry, err := bus.NewRegistry(c)
	require.NoError(t, err)
	require.Equal(t, 1, registry.Len())

	res, err := bus.NewDispatcher(registry).Dispatch(context.Background(), pingQuery{Target: "container"})
	require.NoError(t, err)
	assert.Equal(t, "hello from container", res)
}
