// Package breaker guards outbound stores with circuit breakers.
package breaker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/0xsj/overwatch-pkg/types"

	domainerror "github.com/0xsj/overwatch-directory/internal/domain/error"
	"github.com/0xsj/overwatch-directory/internal/domain/model"
	"github.com/0xsj/overwatch-directory/internal/port/outbound/repository"
)

// Logger is the logging interface used by the breaker.
type Logger interface {
	Info(msg string, fields ...interface{})
}

// Config configures the circuit breaker.
type Config struct {
	// MaxRequests is the maximum number of requests allowed in half-open state.
	MaxRequests uint32

	// Interval is the cyclic period of the closed state.
	Interval time.Duration

	// Timeout is the period of the open state.
	Timeout time.Duration

	// FailureThreshold trips the breaker after this many consecutive failures.
	FailureThreshold uint32
}

// DefaultConfig returns the default breaker configuration.
func DefaultConfig() Config {
	return Config{
		MaxRequests:      3,
		Interval:         10 * time.Second,
		Timeout:          30 * time.Second,
		FailureThreshold: 5,
	}
}

// serviceRepository wraps a ServiceRepository with a circuit breaker.
type serviceRepository struct {
	next repository.ServiceRepository
	cb   *gobreaker.CircuitBreaker[any]
}

// NewServiceRepository wraps next. Lookups that find nothing do not count as failures.
func NewServiceRepository(next repository.ServiceRepository, cfg Config, logger Logger) repository.ServiceRepository {
	settings := gobreaker.Settings{
		Name:        "service_repository",
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		IsSuccessful: func(err error) bool {
			return err == nil ||
				errors.Is(err, repository.ErrNotFound) ||
				errors.Is(err, context.Canceled)
		},
	}
	if logger != nil {
		settings.OnStateChange = func(name string, from, to gobreaker.State) {
			logger.Info("circuit breaker state changed",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
		}
	}

	return &serviceRepository{
		next: next,
		cb:   gobreaker.NewCircuitBreaker[any](settings),
	}
}

func (r *serviceRepository) Save(ctx context.Context, svc *model.Service) error {
	_, err := r.execute(func() (any, error) {
		return nil, r.next.Save(ctx, svc)
	})
	return err
}

func (r *serviceRepository) FindByID(ctx context.Context, id types.ID) (*model.Service, error) {
	res, err := r.execute(func() (any, error) {
		return r.next.FindByID(ctx, id)
	})
	return asService(res), err
}

func (r *serviceRepository) FindByName(ctx context.Context, name string) (*model.Service, error) {
	res, err := r.execute(func() (any, error) {
		return r.next.FindByName(ctx, name)
	})
	return asService(res), err
}

func (r *serviceRepository) List(ctx context.Context, params repository.ListServicesParams) ([]*model.Service, error) {
	res, err := r.execute(func() (any, error) {
		return r.next.List(ctx, params)
	})
	services, _ := res.([]*model.Service)
	return services, err
}

func (r *serviceRepository) Count(ctx context.Context, params repository.ListServicesParams) (int64, error) {
	res, err := r.execute(func() (any, error) {
		return r.next.Count(ctx, params)
	})
	count, _ := res.(int64)
	return count, err
}

func (r *serviceRepository) Delete(ctx context.Context, id types.ID) error {
	_, err := r.execute(func() (any, error) {
		return nil, r.next.Delete(ctx, id)
	})
	return err
}

func (r *serviceRepository) execute(fn func() (any, error)) (any, error) {
	res, err := r.cb.Execute(fn)
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %v", domainerror.ErrDirectoryUnavailable, err)
	}
	return res, err
}

func asService(res any) *model.Service {
	svc, _ := res.(*model.Service)
	return svc
}
