package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/0xsj/overwatch-pkg/types"

	"github.com/0xsj/overwatch-directory/internal/domain/model"
	"github.com/0xsj/overwatch-directory/internal/port/outbound/cache"
)

const (
	serviceKeyPrefix     = "directory:service:"
	serviceNameKeyPrefix = "directory:service_name:"
	defaultServiceTTL    = 5 * time.Minute
)

// serviceCache implements cache.ServiceCache.
type serviceCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewServiceCache creates a new ServiceCache.
func NewServiceCache(client *redis.Client, ttl time.Duration) cache.ServiceCache {
	if ttl == 0 {
		ttl = defaultServiceTTL
	}
	return &serviceCache{
		client: client,
		ttl:    ttl,
	}
}

func (c *serviceCache) Get(ctx context.Context, serviceID types.ID) (*model.Service, error) {
	data, err := c.client.Get(ctx, serviceKey(serviceID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil // Cache miss
		}
		return nil, fmt.Errorf("failed to get service from cache: %w", err)
	}

	var cached cachedService
	if err := json.Unmarshal(data, &cached); err != nil {
		return nil, fmt.Errorf("failed to unmarshal service: %w", err)
	}

	return cached.toModel()
}

func (c *serviceCache) GetByName(ctx context.Context, name string) (*model.Service, error) {
	// Resolve the name index first
	serviceID, err := c.client.Get(ctx, serviceNameKey(name)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil // Cache miss
		}
		return nil, fmt.Errorf("failed to get service ID from name index: %w", err)
	}

	id, err := types.ParseID(serviceID)
	if err != nil {
		return nil, nil // Invalid ID in cache, treat as miss
	}

	return c.Get(ctx, id)
}

func (c *serviceCache) Set(ctx context.Context, svc *model.Service, ttl time.Duration) error {
	if ttl == 0 {
		ttl = c.ttl
	}

	data, err := json.Marshal(newCachedService(svc))
	if err != nil {
		return fmt.Errorf("failed to marshal service: %w", err)
	}

	pipe := c.client.TxPipeline()
	pipe.Set(ctx, serviceKey(svc.ID()), data, ttl)
	pipe.Set(ctx, serviceNameKey(svc.Name()), svc.ID().String(), ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to set service in cache: %w", err)
	}

	return nil
}

func (c *serviceCache) Delete(ctx context.Context, serviceID types.ID) error {
	// Look up the entry to find its name index
	svc, err := c.Get(ctx, serviceID)
	if err != nil {
		return err
	}

	keys := []string{serviceKey(serviceID)}
	if svc != nil {
		keys = append(keys, serviceNameKey(svc.Name()))
	}

	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to delete service from cache: %w", err)
	}

	return nil
}

func (c *serviceCache) DeleteByName(ctx context.Context, name string) error {
	nameKey := serviceNameKey(name)
	serviceID, err := c.client.Get(ctx, nameKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil // Not in cache
		}
		return fmt.Errorf("failed to get service ID from name index: %w", err)
	}

	if err := c.client.Del(ctx, serviceKeyPrefix+serviceID, nameKey).Err(); err != nil {
		return fmt.Errorf("failed to delete service from cache: %w", err)
	}

	return nil
}

// Key helpers

func serviceKey(id types.ID) string {
	return serviceKeyPrefix + id.String()
}

func serviceNameKey(name string) string {
	return serviceNameKeyPrefix + name
}

// Cached service structure for JSON serialization

type cachedService struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	DID            string `json:"did"`
	Endpoint       string `json:"endpoint"`
	Version        string `json:"version"`
	Status         string `json:"status"`
	RegisteredAt   int64  `json:"registered_at"`
	UpdatedAt      int64  `json:"updated_at"`
	DeregisteredAt *int64 `json:"deregistered_at,omitempty"`
}

func newCachedService(s *model.Service) cachedService {
	cached := cachedService{
		ID:           s.ID().String(),
		Name:         s.Name(),
		DID:          s.DID(),
		Endpoint:     s.Endpoint(),
		Version:      s.Version(),
		Status:       s.Status().String(),
		RegisteredAt: s.RegisteredAt().Time().UnixMilli(),
		UpdatedAt:    s.UpdatedAt().Time().UnixMilli(),
	}

	if s.DeregisteredAt().IsPresent() {
		at := s.DeregisteredAt().MustGet().Time().UnixMilli()
		cached.DeregisteredAt = &at
	}

	return cached
}

func (c cachedService) toModel() (*model.Service, error) {
	id, err := types.ParseID(c.ID)
	if err != nil {
		return nil, err
	}

	status, err := model.ParseServiceStatus(c.Status)
	if err != nil {
		return nil, err
	}

	deregisteredAt := types.None[types.Timestamp]()
	if c.DeregisteredAt != nil {
		deregisteredAt = types.Some(types.FromTime(time.UnixMilli(*c.DeregisteredAt)))
	}

	return model.ReconstructService(
		id,
		c.Name,
		c.DID,
		c.Endpoint,
		c.Version,
		status,
		types.FromTime(time.UnixMilli(c.RegisteredAt)),
		types.FromTime(time.UnixMilli(c.UpdatedAt)),
		deregisteredAt,
	), nil
}
