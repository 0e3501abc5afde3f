//go:build integration

package redis_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/0xsj/overwatch-pkg/types"

	redisadapter "github.com/0xsj/overwatch-directory/internal/adapter/outbound/redis"
	"github.com/0xsj/overwatch-directory/internal/testutil"
)

var (
	testRedisClient *redis.Client
	testCtx         context.Context

	redisContainer testcontainers.Container
)

func TestMain(m *testing.M) {
	ctx := context.Background()
	testCtx = ctx

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		fmt.Printf("failed to start redis container: %v\n", err)
		os.Exit(1)
	}
	redisContainer = container

	host, err := container.Host(ctx)
	if err != nil {
		fmt.Printf("failed to get redis host: %v\n", err)
		cleanup(ctx)
		os.Exit(1)
	}

	port, err := container.MappedPort(ctx, "6379")
	if err != nil {
		fmt.Printf("failed to get redis port: %v\n", err)
		cleanup(ctx)
		os.Exit(1)
	}

	testRedisClient = redis.NewClient(&redis.Options{
		Addr: fmt.Sprintf("%s:%s", host, port.Port()),
	})

	if err := testRedisClient.Ping(ctx).Err(); err != nil {
		fmt.Printf("failed to connect to redis: %v\n", err)
		cleanup(ctx)
		os.Exit(1)
	}

	code := m.Run()

	cleanup(ctx)
	os.Exit(code)
}

func cleanup(ctx context.Context) {
	if testRedisClient != nil {
		testRedisClient.Close()
	}
	if redisContainer != nil {
		redisContainer.Terminate(ctx)
	}
}

// flushRedis clears all data for test isolation.
func flushRedis(t *testing.T) {
	t.Helper()
	if err := testRedisClient.FlushDB(testCtx).Err(); err != nil {
		t.Fatalf("failed to flush redis: %v", err)
	}
}

func TestServiceCache_SetAndGet(t *testing.T) {
	flushRedis(t)

	cache := redisadapter.NewServiceCache(testRedisClient, time.Hour)
	svc := testutil.Fixtures.Service()

	if err := cache.Set(testCtx, svc, 0); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	byID, err := cache.Get(testCtx, svc.ID())
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if byID == nil || byID.ID() != svc.ID() {
		t.Fatalf("Get() = %v, want %v", byID, svc.ID())
	}

	byName, err := cache.GetByName(testCtx, svc.Name())
	if err != nil {
		t.Fatalf("GetByName() error = %v", err)
	}
	if byName == nil || byName.ID() != svc.ID() {
		t.Fatalf("GetByName() = %v, want %v", byName, svc.ID())
	}
}

func TestServiceCache_Miss(t *testing.T) {
	flushRedis(t)

	cache := redisadapter.NewServiceCache(testRedisClient, time.Hour)

	got, err := cache.Get(testCtx, types.NewID())
	if err != nil || got != nil {
		t.Errorf("Get() = %v, %v, want cache miss", got, err)
	}

	got, err = cache.GetByName(testCtx, "unknown")
	if err != nil || got != nil {
		t.Errorf("GetByName() = %v, %v, want cache miss", got, err)
	}
}

func TestServiceCache_Delete(t *testing.T) {
	flushRedis(t)

	cache := redisadapter.NewServiceCache(testRedisClient, time.Hour)
	first := testutil.Fixtures.Service()
	second := testutil.Fixtures.Service()
	_ = cache.Set(testCtx, first, 0)
	_ = cache.Set(testCtx, second, 0)

	if err := cache.Delete(testCtx, first.ID()); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if got, _ := cache.GetByName(testCtx, first.Name()); got != nil {
		t.Error("name index should be removed with the entry")
	}

	if err := cache.DeleteByName(testCtx, second.Name()); err != nil {
		t.Fatalf("DeleteByName() error = %v", err)
	}
	if got, _ := cache.Get(testCtx, second.ID()); got != nil {
		t.Error("entry should be removed with its name index")
	}

	if err := cache.DeleteByName(testCtx, "never-cached"); err != nil {
		t.Errorf("DeleteByName() on miss error = %v", err)
	}
}
