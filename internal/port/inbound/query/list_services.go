package query

import (
	"context"

	"github.com/0xsj/overwatch-directory/internal/domain/model"
)

// Pagination bounds for ListServices.
const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

// ListServices retrieves services, optionally filtered by status.
type ListServices struct {
	Status model.ServiceStatus `json:"status,omitempty"`
	Limit  int                 `json:"limit,omitempty"`
	Offset int                 `json:"offset,omitempty"`
}

func (q ListServices) QueryName() string {
	return "directory.list_services"
}

// ListServicesResult contains the services and pagination info.
type ListServicesResult struct {
	Services   []*model.Service
	TotalCount int64
}

// ListServicesHandler handles the ListServices query.
type ListServicesHandler interface {
	Handle(ctx context.Context, qry ListServices) (ListServicesResult, error)
}
