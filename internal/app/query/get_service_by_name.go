package query

import (
	"context"
	"errors"
	"strings"

	domainerror "github.com/0xsj/overwatch-directory/internal/domain/error"
	"github.com/0xsj/overwatch-directory/internal/port/inbound/query"
	"github.com/0xsj/overwatch-directory/internal/port/outbound/cache"
	"github.com/0xsj/overwatch-directory/internal/port/outbound/repository"
)

// getServiceByNameHandler implements query.GetServiceByNameHandler.
type getServiceByNameHandler struct {
	serviceRepo  repository.ServiceRepository
	serviceCache cache.ServiceCache
}

// NewGetServiceByNameHandler creates a new GetServiceByNameHandler.
func NewGetServiceByNameHandler(
	serviceRepo repository.ServiceRepository,
	serviceCache cache.ServiceCache,
) query.GetServiceByNameHandler {
	return &getServiceByNameHandler{
		serviceRepo:  serviceRepo,
		serviceCache: serviceCache,
	}
}

func (h *getServiceByNameHandler) Handle(ctx context.Context, qry query.GetServiceByName) (query.GetServiceByNameResult, error) {
	name := strings.TrimSpace(qry.Name)
	if name == "" {
		return query.GetServiceByNameResult{}, domainerror.ErrServiceNameRequired
	}

	if h.serviceCache != nil {
		svc, err := h.serviceCache.GetByName(ctx, name)
		if err == nil && svc != nil {
			return query.GetServiceByNameResult{Service: svc}, nil
		}
	}

	svc, err := h.serviceRepo.FindByName(ctx, name)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return query.GetServiceByNameResult{}, domainerror.ServiceNotFoundByName(name)
		}
		return query.GetServiceByNameResult{}, err
	}

	if h.serviceCache != nil {
		_ = h.serviceCache.Set(ctx, svc, 0)
	}

	return query.GetServiceByNameResult{Service: svc}, nil
}
