package query

import (
	"context"

	domainerror "github.com/0xsj/overwatch-directory/internal/domain/error"
	"github.com/0xsj/overwatch-directory/internal/port/inbound/query"
	"github.com/0xsj/overwatch-directory/internal/port/outbound/repository"
)

// listServicesHandler implements query.ListServicesHandler.
type listServicesHandler struct {
	serviceRepo repository.ServiceRepository
}

// NewListServicesHandler creates a new ListServicesHandler.
func NewListServicesHandler(
	serviceRepo repository.ServiceRepository,
) query.ListServicesHandler {
	return &listServicesHandler{
		serviceRepo: serviceRepo,
	}
}

func (h *listServicesHandler) Handle(ctx context.Context, qry query.ListServices) (query.ListServicesResult, error) {
	if qry.Status != "" && !qry.Status.IsValid() {
		return query.ListServicesResult{}, domainerror.ErrServiceStatusInvalid
	}

	// Set defaults
	limit := qry.Limit
	if limit <= 0 {
		limit = query.DefaultListLimit
	}
	if limit > query.MaxListLimit {
		limit = query.MaxListLimit
	}

	offset := qry.Offset
	if offset < 0 {
		offset = 0
	}

	// Build params
	params := repository.DefaultListServicesParams()
	params.Limit = limit
	params.Offset = offset
	if qry.Status != "" {
		status := qry.Status
		params.Status = &status
	}

	services, err := h.serviceRepo.List(ctx, params)
	if err != nil {
		return query.ListServicesResult{}, err
	}

	totalCount, err := h.serviceRepo.Count(ctx, params)
	if err != nil {
		return query.ListServicesResult{}, err
	}

	return query.ListServicesResult{
		Services:   services,
		TotalCount: totalCount,
	}, nil
}
