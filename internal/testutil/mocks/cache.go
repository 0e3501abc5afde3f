package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/0xsj/overwatch-pkg/types"

	"github.com/0xsj/overwatch-directory/internal/domain/model"
)

// --- ServiceCache Mock ---

// ServiceCache is a mock implementation of cache.ServiceCache.
type ServiceCache struct {
	mu sync.RWMutex

	// Storage
	services map[string]*model.Service // by ID
	byName   map[string]string         // name -> ID

	// Call tracking
	Calls struct {
		Get          int
		GetByName    int
		Set          int
		Delete       int
		DeleteByName int
	}

	// Error injection
	Errors struct {
		Get          error
		GetByName    error
		Set          error
		Delete       error
		DeleteByName error
	}
}

// NewServiceCache creates a new mock ServiceCache.
func NewServiceCache() *ServiceCache {
	return &ServiceCache{
		services: make(map[string]*model.Service),
		byName:   make(map[string]string),
	}
}

func (m *ServiceCache) Get(ctx context.Context, serviceID types.ID) (*model.Service, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls.Get++

	if m.Errors.Get != nil {
		return nil, m.Errors.Get
	}

	svc, ok := m.services[serviceID.String()]
	if !ok {
		return nil, nil // Cache miss
	}
	return svc, nil
}

func (m *ServiceCache) GetByName(ctx context.Context, name string) (*model.Service, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls.GetByName++

	if m.Errors.GetByName != nil {
		return nil, m.Errors.GetByName
	}

	id, ok := m.byName[name]
	if !ok {
		return nil, nil
	}
	return m.services[id], nil
}

func (m *ServiceCache) Set(ctx context.Context, svc *model.Service, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls.Set++

	if m.Errors.Set != nil {
		return m.Errors.Set
	}

	m.services[svc.ID().String()] = svc
	m.byName[svc.Name()] = svc.ID().String()
	return nil
}

func (m *ServiceCache) Delete(ctx context.Context, serviceID types.ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls.Delete++

	if m.Errors.Delete != nil {
		return m.Errors.Delete
	}

	if svc, ok := m.services[serviceID.String()]; ok {
		delete(m.byName, svc.Name())
	}
	delete(m.services, serviceID.String())
	return nil
}

func (m *ServiceCache) DeleteByName(ctx context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls.DeleteByName++

	if m.Errors.DeleteByName != nil {
		return m.Errors.DeleteByName
	}

	if id, ok := m.byName[name]; ok {
		delete(m.services, id)
	}
	delete(m.byName, name)
	return nil
}

// Contains reports whether serviceID is cached.
func (m *ServiceCache) Contains(serviceID types.ID) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.services[serviceID.String()]
	return ok
}
