package projection_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0xsj/overwatch-pkg/types"

	"github.com/0xsj/overwatch-directory/internal/app/projection"
	domainerror "github.com/0xsj/overwatch-directory/internal/domain/error"
	"github.com/0xsj/overwatch-directory/internal/domain/event"
	"github.com/0xsj/overwatch-directory/internal/domain/model"
	"github.com/0xsj/overwatch-directory/internal/testutil"
	"github.com/0xsj/overwatch-directory/internal/testutil/mocks"
)

type unknownEvent struct {
	event.BaseEvent
}

func TestProjector_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("stores a new service", func(t *testing.T) {
		repo := mocks.NewServiceRepository()
		p := projection.NewProjector(repo, mocks.NewServiceCache())

		id := types.NewID()
		err := p.Apply(ctx, event.NewServiceRegistered(id, "billing", testutil.Fixtures.DID(), "billing:9000", "1.0.0"))
		require.NoError(t, err)

		svc, err := repo.FindByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "billing", svc.Name())
		assert.True(t, svc.IsActive())
	})

	t.Run("rejects invalid payloads", func(t *testing.T) {
		repo := mocks.NewServiceRepository()
		p := projection.NewProjector(repo, nil)

		err := p.Apply(ctx, event.NewServiceRegistered(types.NewID(), "billing", "not-a-did", "billing:9000", "1.0.0"))
		assert.ErrorIs(t, err, domainerror.ErrServiceDIDInvalid)
		assert.Zero(t, repo.Calls.Save)
	})

	t.Run("name moving to a new id replaces the old entry", func(t *testing.T) {
		repo := mocks.NewServiceRepository()
		svcCache := mocks.NewServiceCache()
		old := testutil.Fixtures.ServiceBuilder().WithName("billing").Build()
		repo.Seed(old)
		require.NoError(t, svcCache.Set(ctx, old, 0))

		p := projection.NewProjector(repo, svcCache)
		newID := types.NewID()
		require.NoError(t, p.Apply(ctx, event.NewServiceRegistered(newID, "billing", testutil.Fixtures.DID(), "billing:9001", "2.0.0")))

		_, err := repo.FindByID(ctx, old.ID())
		assert.Error(t, err, "previous holder should be removed")

		current, err := repo.FindByName(ctx, "billing")
		require.NoError(t, err)
		assert.Equal(t, newID, current.ID())
		assert.False(t, svcCache.Contains(old.ID()))
	})
}

func TestProjector_Transitions(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		evt        func(id types.ID) event.Event
		wantStatus model.ServiceStatus
		wantAddr   string
	}{
		{
			name:       "updated",
			evt:        func(id types.ID) event.Event { return event.NewServiceUpdated(id, "10.0.0.7:7000", "1.2.0") },
			wantStatus: model.ServiceStatusActive,
			wantAddr:   "10.0.0.7:7000",
		},
		{
			name:       "draining",
			evt:        func(id types.ID) event.Event { return event.NewServiceDraining(id) },
			wantStatus: model.ServiceStatusDraining,
			wantAddr:   "10.0.0.1:50051",
		},
		{
			name:       "deregistered",
			evt:        func(id types.ID) event.Event { return event.NewServiceDeregistered(id, "shutdown") },
			wantStatus: model.ServiceStatusDeregistered,
			wantAddr:   "10.0.0.1:50051",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := mocks.NewServiceRepository()
			svcCache := mocks.NewServiceCache()
			svc := testutil.Fixtures.Service()
			repo.Seed(svc)
			require.NoError(t, svcCache.Set(ctx, svc, 0))

			p := projection.NewProjector(repo, svcCache)
			require.NoError(t, p.Apply(ctx, tt.evt(svc.ID())))

			got, err := repo.FindByID(ctx, svc.ID())
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, got.Status())
			assert.Equal(t, tt.wantAddr, got.Endpoint())
			assert.Equal(t, 1, repo.Calls.Save)
			assert.False(t, svcCache.Contains(svc.ID()), "cache entry should be evicted")
		})
	}
}

func TestProjector_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown service", func(t *testing.T) {
		p := projection.NewProjector(mocks.NewServiceRepository(), nil)

		err := p.Apply(ctx, event.NewServiceDraining(types.NewID()))
		require.Error(t, err)
	})

	t.Run("update after deregistration", func(t *testing.T) {
		repo := mocks.NewServiceRepository()
		svc := testutil.Fixtures.ServiceBuilder().WithStatus(model.ServiceStatusDeregistered).Build()
		repo.Seed(svc)

		err := projection.NewProjector(repo, nil).Apply(ctx, event.NewServiceUpdated(svc.ID(), "10.0.0.2:1", "2.0.0"))
		assert.ErrorIs(t, err, domainerror.ErrServiceDeregistered)
		assert.Zero(t, repo.Calls.Save)
	})

	t.Run("repository failure", func(t *testing.T) {
		repo := mocks.NewServiceRepository()
		svc := testutil.Fixtures.Service()
		repo.Seed(svc)
		repo.Errors.Save = errors.New("disk full")

		err := projection.NewProjector(repo, nil).Apply(ctx, event.NewServiceDraining(svc.ID()))
		assert.EqualError(t, err, "disk full")
	})

	t.Run("unsupported event", func(t *testing.T) {
		evt := unknownEvent{BaseEvent: event.NewBaseEvent("service.exploded", types.NewID(), event.AggregateTypeService)}

		err := projection.NewProjector(mocks.NewServiceRepository(), nil).Apply(ctx, evt)
		assert.ErrorIs(t, err, domainerror.ErrEventMalformed)
	})
}
