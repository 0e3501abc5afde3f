package query

import (
	"context"
	"errors"

	domainerror "github.com/0xsj/overwatch-directory/internal/domain/error"
	"github.com/0xsj/overwatch-directory/internal/port/inbound/query"
	"github.com/0xsj/overwatch-directory/internal/port/outbound/cache"
	"github.com/0xsj/overwatch-directory/internal/port/outbound/repository"
)

// getServiceHandler implements query.GetServiceHandler.
type getServiceHandler struct {
	serviceRepo  repository.ServiceRepository
	serviceCache cache.ServiceCache
}

// NewGetServiceHandler creates a new GetServiceHandler.
func NewGetServiceHandler(
	serviceRepo repository.ServiceRepository,
	serviceCache cache.ServiceCache,
) query.GetServiceHandler {
	return &getServiceHandler{
		serviceRepo:  serviceRepo,
		serviceCache: serviceCache,
	}
}

func (h *getServiceHandler) Handle(ctx context.Context, qry query.GetService) (query.GetServiceResult, error) {
	if qry.ServiceID.IsEmpty() {
		return query.GetServiceResult{}, domainerror.ErrServiceIDRequired
	}

	// Try cache first
	if h.serviceCache != nil {
		svc, err := h.serviceCache.Get(ctx, qry.ServiceID)
		if err == nil && svc != nil {
			return query.GetServiceResult{Service: svc}, nil
		}
	}

	// Fallback to repository
	svc, err := h.serviceRepo.FindByID(ctx, qry.ServiceID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return query.GetServiceResult{}, domainerror.ServiceNotFound(qry.ServiceID.String())
		}
		return query.GetServiceResult{}, err
	}

	// Populate cache
	if h.serviceCache != nil {
		_ = h.serviceCache.Set(ctx, svc, 0) // Use default TTL
	}

	return query.GetServiceResult{Service: svc}, nil
}
