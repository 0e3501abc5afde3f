package query

import (
	"context"

	"github.com/0xsj/overwatch-directory/internal/domain/model"
)

// GetServiceByName retrieves a service by its unique name.
type GetServiceByName struct {
	Name string `json:"name"`
}

func (q GetServiceByName) QueryName() string {
	return "directory.get_service_by_name"
}

// GetServiceByNameResult contains the service.
type GetServiceByNameResult struct {
	Service *model.Service
}

// GetServiceByNameHandler handles the GetServiceByName query.
type GetServiceByNameHandler interface {
	Handle(ctx context.Context, qry GetServiceByName) (GetServiceByNameResult, error)
}
