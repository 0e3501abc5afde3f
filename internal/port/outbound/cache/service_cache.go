package cache

import (
	"context"
	"time"

	"github.com/0xsj/overwatch-pkg/types"

	"github.com/0xsj/overwatch-directory/internal/domain/model"
)

// ServiceCache defines the interface for directory entry caching.
// Lookups by ID and by name are the hot paths of the query side.
type ServiceCache interface {
	// Get retrieves a service from the cache.
	// Returns nil if not found (cache miss).
	Get(ctx context.Context, serviceID types.ID) (*model.Service, error)

	// GetByName retrieves a service from the cache by name.
	GetByName(ctx context.Context, name string) (*model.Service, error)

	// Set stores a service in the cache with TTL.
	Set(ctx context.Context, svc *model.Service, ttl time.Duration) error

	// Delete removes a service from the cache.
	Delete(ctx context.Context, serviceID types.ID) error

	// DeleteByName removes a service from the cache by name.
	DeleteByName(ctx context.Context, name string) error
}
