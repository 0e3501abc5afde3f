package repository

import (
	"context"

	"github.com/0xsj/overwatch-pkg/types"

	"github.com/0xsj/overwatch-directory/internal/domain/model"
)

// ServiceRepository defines the interface for the directory read model.
type ServiceRepository interface {
	// Save inserts or replaces a service.
	Save(ctx context.Context, svc *model.Service) error

	// FindByID retrieves a service by its ID.
	FindByID(ctx context.Context, id types.ID) (*model.Service, error)

	// FindByName retrieves a service by its unique name.
	FindByName(ctx context.Context, name string) (*model.Service, error)

	// List retrieves services with pagination.
	List(ctx context.Context, params ListServicesParams) ([]*model.Service, error)

	// Count returns the total number of services matching the filter.
	Count(ctx context.Context, params ListServicesParams) (int64, error)

	// Delete removes a service by ID.
	Delete(ctx context.Context, id types.ID) error
}

// ListServicesParams defines parameters for listing services.
type ListServicesParams struct {
	// Pagination
	Limit  int
	Offset int

	// Filters
	Status *model.ServiceStatus

	// Sorting
	SortBy    ServiceSortField
	SortOrder SortOrder
}

// ServiceSortField defines fields that can be used for sorting services.
type ServiceSortField string

const (
	ServiceSortFieldName         ServiceSortField = "name"
	ServiceSortFieldRegisteredAt ServiceSortField = "registered_at"
	ServiceSortFieldUpdatedAt    ServiceSortField = "updated_at"
)

// SortOrder defines sort direction.
type SortOrder string

const (
	SortOrderAsc  SortOrder = "asc"
	SortOrderDesc SortOrder = "desc"
)

// DefaultListServicesParams returns default listing parameters.
func DefaultListServicesParams() ListServicesParams {
	return ListServicesParams{
		Limit:     20,
		Offset:    0,
		Status:    nil,
		SortBy:    ServiceSortFieldName,
		SortOrder: SortOrderAsc,
	}
}

// OrderClause returns a safe ORDER BY clause for p.
func (p ListServicesParams) OrderClause() string {
	col := "name"
	switch p.SortBy {
	case ServiceSortFieldRegisteredAt:
		col = "registered_at"
	case ServiceSortFieldUpdatedAt:
		col = "updated_at"
	}

	dir := "ASC"
	if p.SortOrder == SortOrderDesc {
		dir = "DESC"
	}
	return col + " " + dir
}
