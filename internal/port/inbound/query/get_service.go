package query

import (
	"context"

	"github.com/0xsj/overwatch-pkg/types"

	"github.com/0xsj/overwatch-directory/internal/domain/model"
)

// GetService retrieves a service by ID.
type GetService struct {
	ServiceID types.ID `json:"service_id"`
}

func (q GetService) QueryName() string {
	return "directory.get_service"
}

// GetServiceResult contains the service.
type GetServiceResult struct {
	Service *model.Service
}

// GetServiceHandler handles the GetService query.
type GetServiceHandler interface {
	Handle(ctx context.Context, qry GetService) (GetServiceResult, error)
}
