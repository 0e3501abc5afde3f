package breaker_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0xsj/overwatch-pkg/types"

	"github.com/0xsj/overwatch-directory/internal/adapter/outbound/breaker"
	domainerror "github.com/0xsj/overwatch-directory/internal/domain/error"
	"github.com/0xsj/overwatch-directory/internal/port/outbound/repository"
	"github.com/0xsj/overwatch-directory/internal/testutil"
	"github.com/0xsj/overwatch-directory/internal/testutil/mocks"
)

type recordingLogger struct {
	messages []string
}

func (l *recordingLogger) Info(msg string, _ ...interface{}) {
	l.messages = append(l.messages, msg)
}

func testConfig() breaker.Config {
	return breaker.Config{
		MaxRequests:      1,
		Interval:         time.Minute,
		Timeout:          time.Minute,
		FailureThreshold: 2,
	}
}

func TestServiceRepository_PassesThrough(t *testing.T) {
	inner := mocks.NewServiceRepository()
	svc := testutil.Fixtures.Service()
	inner.Seed(svc)

	repo := breaker.NewServiceRepository(inner, testConfig(), nil)
	ctx := context.Background()

	found, err := repo.FindByID(ctx, svc.ID())
	require.NoError(t, err)
	assert.Equal(t, svc.ID(), found.ID())

	byName, err := repo.FindByName(ctx, svc.Name())
	require.NoError(t, err)
	assert.Equal(t, svc.ID(), byName.ID())

	list, err := repo.List(ctx, repository.DefaultListServicesParams())
	require.NoError(t, err)
	assert.Len(t, list, 1)

	total, err := repo.Count(ctx, repository.DefaultListServicesParams())
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)

	require.NoError(t, repo.Delete(ctx, svc.ID()))
}

func TestServiceRepository_NotFoundDoesNotTrip(t *testing.T) {
	inner := mocks.NewServiceRepository()
	repo := breaker.NewServiceRepository(inner, testConfig(), nil)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := repo.FindByID(ctx, types.NewID())
		assert.ErrorIs(t, err, repository.ErrNotFound)
	}

	svc := testutil.Fixtures.Service()
	require.NoError(t, repo.Save(ctx, svc))
}

func TestServiceRepository_OpensAfterFailures(t *testing.T) {
	inner := mocks.NewServiceRepository()
	inner.Errors.FindByID = errors.New("connection refused")
	logger := &recordingLogger{}

	repo := breaker.NewServiceRepository(inner, testConfig(), logger)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := repo.FindByID(ctx, types.NewID())
		require.Error(t, err)
		assert.NotErrorIs(t, err, domainerror.ErrDirectoryUnavailable)
	}

	calls := inner.Calls.FindByID
	_, err := repo.FindByID(ctx, types.NewID())
	assert.ErrorIs(t, err, domainerror.ErrDirectoryUnavailable)
	assert.Equal(t, calls, inner.Calls.FindByID, "open breaker must not reach the store")
	assert.Contains(t, logger.messages, "circuit breaker state changed")
}
