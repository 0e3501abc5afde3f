package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/0xsj/overwatch-pkg/types"

	"github.com/0xsj/overwatch-directory/internal/domain/model"
	"github.com/0xsj/overwatch-directory/internal/port/outbound/repository"
)

const serviceColumns = `id, name, did, endpoint, version, status, registered_at, updated_at, deregistered_at`

const upsertServiceSQL = `
INSERT INTO services (` + serviceColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (id) DO UPDATE SET
    name            = EXCLUDED.name,
    did             = EXCLUDED.did,
    endpoint        = EXCLUDED.endpoint,
    version         = EXCLUDED.version,
    status          = EXCLUDED.status,
    updated_at      = EXCLUDED.updated_at,
    deregistered_at = EXCLUDED.deregistered_at`

// serviceRepository implements repository.ServiceRepository.
type serviceRepository struct {
	pool *pgxpool.Pool
}

// NewServiceRepository creates a new ServiceRepository.
func NewServiceRepository(pool *pgxpool.Pool) repository.ServiceRepository {
	return &serviceRepository{
		pool: pool,
	}
}

func (r *serviceRepository) Save(ctx context.Context, svc *model.Service) error {
	row := toServiceRow(svc)
	_, err := r.pool.Exec(ctx, upsertServiceSQL,
		row.ID, row.Name, row.DID, row.Endpoint, row.Version, row.Status,
		row.RegisteredAt, row.UpdatedAt, row.DeregisteredAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save service: %w", err)
	}
	return nil
}

func (r *serviceRepository) FindByID(ctx context.Context, id types.ID) (*model.Service, error) {
	return r.findOne(ctx, `SELECT `+serviceColumns+` FROM services WHERE id = $1`, id.String())
}

func (r *serviceRepository) FindByName(ctx context.Context, name string) (*model.Service, error) {
	return r.findOne(ctx, `SELECT `+serviceColumns+` FROM services WHERE name = $1`, name)
}

func (r *serviceRepository) List(ctx context.Context, params repository.ListServicesParams) ([]*model.Service, error) {
	where, args := listFilter(params)
	args = append(args, params.Limit, params.Offset)

	sql := fmt.Sprintf(`SELECT %s FROM services%s ORDER BY %s LIMIT $%d OFFSET $%d`,
		serviceColumns, where, params.OrderClause(), len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list services: %w", err)
	}
	defer rows.Close()

	services := make([]*model.Service, 0, params.Limit)
	for rows.Next() {
		row, err := scanService(rows)
		if err != nil {
			return nil, err
		}
		svc, err := toServiceModel(row)
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
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM services`+where, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count services: %w", err)
	}
	return count, nil
}

func (r *serviceRepository) Delete(ctx context.Context, id types.ID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM services WHERE id = $1`, id.String())
	if err != nil {
		return fmt.Errorf("failed to delete service: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *serviceRepository) findOne(ctx context.Context, sql string, arg any) (*model.Service, error) {
	row, err := scanService(r.pool.QueryRow(ctx, sql, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return toServiceModel(row)
}

func scanService(row pgx.Row) (serviceRow, error) {
	var s serviceRow
	err := row.Scan(
		&s.ID, &s.Name, &s.DID, &s.Endpoint, &s.Version, &s.Status,
		&s.RegisteredAt, &s.UpdatedAt, &s.DeregisteredAt,
	)
	return s, err
}

func listFilter(params repository.ListServicesParams) (string, []any) {
	if params.Status == nil {
		return "", nil
	}
	return " WHERE status = $1", []any{params.Status.String()}
}
