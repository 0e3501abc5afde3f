package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/0xsj/overwatch-pkg/types"

	"github.com/0xsj/overwatch-directory/internal/domain/model"
	"github.com/0xsj/overwatch-directory/internal/port/outbound/repository"
)

const serviceColumns = `id, name, did, endpoint, version, status, registered_at, updated_at, deregistered_at`

// serviceRepository implements repository.ServiceRepository.
type serviceRepository struct {
	db *sql.DB
}

// NewServiceRepository creates a new ServiceRepository.
func NewServiceRepository(db *sql.DB) repository.ServiceRepository {
	return &serviceRepository{db: db}
}

func (r *serviceRepository) Save(ctx context.Context, svc *model.Service) error {
	var deregisteredAt sql.NullInt64
	if svc.DeregisteredAt().IsPresent() {
		deregisteredAt = sql.NullInt64{Int64: svc.DeregisteredAt().MustGet().Time().UnixMilli(), Valid: true}
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO services (`+serviceColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			did = excluded.did,
			endpoint = excluded.endpoint,
			version = excluded.version,
			status = excluded.status,
			updated_at = excluded.updated_at,
			deregistered_at = excluded.deregistered_at`,
		svc.ID().String(),
		svc.Name(),
		svc.DID(),
		svc.Endpoint(),
		svc.Version(),
		svc.Status().String(),
		svc.RegisteredAt().Time().UnixMilli(),
		svc.UpdatedAt().Time().UnixMilli(),
		deregisteredAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save service: %w", err)
	}
	return nil
}

func (r *serviceRepository) FindByID(ctx context.Context, id types.ID) (*model.Service, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+serviceColumns+` FROM services WHERE id = ?`, id.String())
	return r.scanOne(row)
}

func (r *serviceRepository) FindByName(ctx context.Context, name string) (*model.Service, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+serviceColumns+` FROM services WHERE name = ?`, name)
	return r.scanOne(row)
}

func (r *serviceRepository) List(ctx context.Context, params repository.ListServicesParams) ([]*model.Service, error) {
	where, args := listFilter(params)
	args = append(args, params.Limit, params.Offset)

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+serviceColumns+` FROM services`+where+` ORDER BY `+params.OrderClause()+` LIMIT ? OFFSET ?`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list services: %w", err)
	}
	defer rows.Close()

	var services []*model.Service
	for rows.Next() {
		svc, err := scanService(rows)
		if err != nil {
			return nil, err
		}
		services = append(services, svc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list services: %w", err)
	}

	return services, nil
}

func (r *serviceRepository) Count(ctx context.Context, params repository.ListServicesParams) (int64, error) {
	where, args := listFilter(params)

	var count int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM services`+where, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count services: %w", err)
	}
	return count, nil
}

func (r *serviceRepository) Delete(ctx context.Context, id types.ID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM services WHERE id = ?`, id.String())
	if err != nil {
		return fmt.Errorf("failed to delete service: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete service: %w", err)
	}
	if affected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *serviceRepository) scanOne(row *sql.Row) (*model.Service, error) {
	svc, err := scanService(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return svc, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanService(s scanner) (*model.Service, error) {
	var (
		id, name, did, endpoint, version, status string
		registeredAt, updatedAt                  int64
		deregisteredAt                           sql.NullInt64
	)

	if err := s.Scan(&id, &name, &did, &endpoint, &version, &status, &registeredAt, &updatedAt, &deregisteredAt); err != nil {
		return nil, err
	}

	parsedID, err := types.ParseID(id)
	if err != nil {
		return nil, err
	}

	parsedStatus, err := model.ParseServiceStatus(status)
	if err != nil {
		return nil, err
	}

	deregistered := types.None[types.Timestamp]()
	if deregisteredAt.Valid {
		deregistered = types.Some(types.FromTime(time.UnixMilli(deregisteredAt.Int64)))
	}

	return model.ReconstructService(
		parsedID,
		name,
		did,
		endpoint,
		version,
		parsedStatus,
		types.FromTime(time.UnixMilli(registeredAt)),
		types.FromTime(time.UnixMilli(updatedAt)),
		deregistered,
	), nil
}

func listFilter(params repository.ListServicesParams) (string, []any) {
	if params.Status == nil {
		return "", nil
	}
	return " WHERE status = ?", []any{params.Status.String()}
}
