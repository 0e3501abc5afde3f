package query

import (
	"errors"

	"github.com/0xsj/overwatch-directory/internal/adapter/outbound/container"
	domainerror "github.com/0xsj/overwatch-directory/internal/domain/error"
	"github.com/0xsj/overwatch-directory/internal/port/inbound/query"
	"github.com/0xsj/overwatch-directory/internal/port/outbound/cache"
	"github.com/0xsj/overwatch-directory/internal/port/outbound/repository"
)

// Handler component names.
const (
	GetServiceHandlerName       = "getServiceHandler"
	GetServiceByNameHandlerName = "getServiceByNameHandler"
	ListServicesHandlerName     = "listServicesHandler"
)

// Provide registers the directory query handlers with c. Handlers depend on a
// repository.ServiceRepository and, when one is provided, a cache.ServiceCache.
func Provide(c *container.Container) error {
	return errors.Join(
		container.Provide(c, GetServiceHandlerName, func(r container.Resolver) (query.GetServiceHandler, error) {
			repo, svcCache, err := resolveStores(r)
			if err != nil {
				return nil, err
			}
			return NewGetServiceHandler(repo, svcCache), nil
		}),
		container.Provide(c, GetServiceByNameHandlerName, func(r container.Resolver) (query.GetServiceByNameHandler, error) {
			repo, svcCache, err := resolveStores(r)
			if err != nil {
				return nil, err
			}
			return NewGetServiceByNameHandler(repo, svcCache), nil
		}),
		container.Provide(c, ListServicesHandlerName, func(r container.Resolver) (query.ListServicesHandler, error) {
			repo, err := container.Resolve[repository.ServiceRepository](r)
			if err != nil {
				return nil, err
			}
			return NewListServicesHandler(repo), nil
		}),
	)
}

func resolveStores(r container.Resolver) (repository.ServiceRepository, cache.ServiceCache, error) {
	repo, err := container.Resolve[repository.ServiceRepository](r)
	if err != nil {
		return nil, nil, err
	}

	svcCache, err := container.Resolve[cache.ServiceCache](r)
	if errors.Is(err, domainerror.ErrComponentNotFound) {
		return repo, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}
	return repo, svcCache, nil
}
