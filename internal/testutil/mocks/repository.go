// Package mocks provides mock implementations of ports for testing.
package mocks

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/0xsj/overwatch-pkg/types"

	"github.com/0xsj/overwatch-directory/internal/domain/model"
	"github.com/0xsj/overwatch-directory/internal/port/outbound/repository"
)

// --- ServiceRepository Mock ---

// ServiceRepository is a mock implementation of repository.ServiceRepository.
type ServiceRepository struct {
	mu sync.RWMutex

	// Storage
	services map[string]*model.Service // by ID
	byName   map[string]string         // name -> ID

	// Call tracking
	Calls struct {
		Save       int
		FindByID   int
		FindByName int
		List       int
		Count      int
		Delete     int
	}

	// Error injection
	Errors struct {
		Save       error
		FindByID   error
		FindByName error
		List       error
		Count      error
		Delete     error
	}
}

// NewServiceRepository creates a new mock ServiceRepository.
func NewServiceRepository() *ServiceRepository {
	return &ServiceRepository{
		services: make(map[string]*model.Service),
		byName:   make(map[string]string),
	}
}

func (m *ServiceRepository) Save(ctx context.Context, svc *model.Service) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls.Save++

	if m.Errors.Save != nil {
		return m.Errors.Save
	}

	id := svc.ID().String()
	if old, ok := m.services[id]; ok {
		delete(m.byName, old.Name())
	}
	m.services[id] = svc
	m.byName[svc.Name()] = id
	return nil
}

func (m *ServiceRepository) FindByID(ctx context.Context, id types.ID) (*model.Service, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls.FindByID++

	if m.Errors.FindByID != nil {
		return nil, m.Errors.FindByID
	}

	svc, ok := m.services[id.String()]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return svc, nil
}

func (m *ServiceRepository) FindByName(ctx context.Context, name string) (*model.Service, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls.FindByName++

	if m.Errors.FindByName != nil {
		return nil, m.Errors.FindByName
	}

	id, ok := m.byName[name]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return m.services[id], nil
}

func (m *ServiceRepository) List(ctx context.Context, params repository.ListServicesParams) ([]*model.Service, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls.List++

	if m.Errors.List != nil {
		return nil, m.Errors.List
	}

	filtered := m.filter(params)
	slices.SortFunc(filtered, func(a, b *model.Service) int {
		return strings.Compare(a.Name(), b.Name())
	})

	if params.Offset >= len(filtered) {
		return []*model.Service{}, nil
	}
	end := len(filtered)
	if params.Limit > 0 && params.Offset+params.Limit < end {
		end = params.Offset + params.Limit
	}
	return filtered[params.Offset:end], nil
}

func (m *ServiceRepository) Count(ctx context.Context, params repository.ListServicesParams) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls.Count++

	if m.Errors.Count != nil {
		return 0, m.Errors.Count
	}
	return int64(len(m.filter(params))), nil
}

func (m *ServiceRepository) Delete(ctx context.Context, id types.ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls.Delete++

	if m.Errors.Delete != nil {
		return m.Errors.Delete
	}

	svc, ok := m.services[id.String()]
	if !ok {
		return repository.ErrNotFound
	}
	delete(m.byName, svc.Name())
	delete(m.services, id.String())
	return nil
}

func (m *ServiceRepository) filter(params repository.ListServicesParams) []*model.Service {
	var out []*model.Service
	for _, svc := range m.services {
		if params.Status != nil && svc.Status() != *params.Status {
			continue
		}
		out = append(out, svc)
	}
	return out
}

// Seed stores services without counting calls.
func (m *ServiceRepository) Seed(services ...*model.Service) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, svc := range services {
		m.services[svc.ID().String()] = svc
		m.byName[svc.Name()] = svc.ID().String()
	}
}
