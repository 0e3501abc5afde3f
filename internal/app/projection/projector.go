// Package projection keeps the directory read model in step with service events.
package projection

import (
	"context"
	"errors"
	"fmt"

	"github.com/0xsj/overwatch-pkg/types"

	domainerror "github.com/0xsj/overwatch-directory/internal/domain/error"
	"github.com/0xsj/overwatch-directory/internal/domain/event"
	"github.com/0xsj/overwatch-directory/internal/domain/model"
	"github.com/0xsj/overwatch-directory/internal/port/outbound/cache"
	"github.com/0xsj/overwatch-directory/internal/port/outbound/repository"
)

// Projector applies service events to the repository and evicts stale cache entries.
type Projector struct {
	serviceRepo  repository.ServiceRepository
	serviceCache cache.ServiceCache
}

// NewProjector creates a Projector. serviceCache may be nil.
func NewProjector(serviceRepo repository.ServiceRepository, serviceCache cache.ServiceCache) *Projector {
	return &Projector{
		serviceRepo:  serviceRepo,
		serviceCache: serviceCache,
	}
}

// Apply projects a single event.
func (p *Projector) Apply(ctx context.Context, evt event.Event) error {
	switch e := evt.(type) {
	case event.ServiceRegistered:
		return p.register(ctx, e)
	case event.ServiceUpdated:
		return p.transition(ctx, e.ServiceID, func(svc *model.Service) error {
			return svc.Update(e.Endpoint, e.Version)
		})
	case event.ServiceDraining:
		return p.transition(ctx, e.ServiceID, func(svc *model.Service) error {
			return svc.Drain()
		})
	case event.ServiceDeregistered:
		return p.transition(ctx, e.ServiceID, func(svc *model.Service) error {
			svc.Deregister()
			return nil
		})
	default:
		return fmt.Errorf("%w: unsupported event type %q", domainerror.ErrEventMalformed, evt.EventType())
	}
}

// register stores a new entry. A name that moves to a new service ID
// replaces the previous holder.
func (p *Projector) register(ctx context.Context, e event.ServiceRegistered) error {
	svc, err := model.NewService(e.ServiceID, e.Name, e.DID, e.Endpoint, e.Version)
	if err != nil {
		return err
	}

	if previous, err := p.serviceRepo.FindByID(ctx, svc.ID()); err == nil && previous != nil {
		p.evict(ctx, previous)
	} else if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return err
	}

	holder, err := p.serviceRepo.FindByName(ctx, svc.Name())
	switch {
	case err == nil && holder != nil && holder.ID() != svc.ID():
		if err := p.serviceRepo.Delete(ctx, holder.ID()); err != nil && !errors.Is(err, repository.ErrNotFound) {
			return err
		}
		p.evict(ctx, holder)
	case err != nil && !errors.Is(err, repository.ErrNotFound):
		return err
	}

	if err := p.serviceRepo.Save(ctx, svc); err != nil {
		return err
	}
	p.evict(ctx, svc)
	return nil
}

func (p *Projector) transition(ctx context.Context, id types.ID, apply func(*model.Service) error) error {
	svc, err := p.serviceRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domainerror.ServiceNotFound(id.String())
		}
		return err
	}

	if err := apply(svc); err != nil {
		return err
	}

	if err := p.serviceRepo.Save(ctx, svc); err != nil {
		return err
	}
	p.evict(ctx, svc)
	return nil
}

// evict drops both cache keys of svc. Cache failures only cost freshness
// until the TTL expires.
func (p *Projector) evict(ctx context.Context, svc *model.Service) {
	if p.serviceCache == nil {
		return
	}
	_ = p.serviceCache.Delete(ctx, svc.ID())
	_ = p.serviceCache.DeleteByName(ctx, svc.Name())
}
