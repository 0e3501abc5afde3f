package postgres

import (
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/0xsj/overwatch-pkg/types"

	"github.com/0xsj/overwatch-directory/internal/domain/model"
)

// pgtype helpers

func timestamptzToOptionalTimestamp(t pgtype.Timestamptz) types.Optional[types.Timestamp] {
	if t.Valid {
		return types.Some(types.FromTime(t.Time))
	}
	return types.None[types.Timestamp]()
}

func optionalTimestampToPgTimestamptz(o types.Optional[types.Timestamp]) pgtype.Timestamptz {
	if o.IsPresent() {
		return pgtype.Timestamptz{Time: o.MustGet().Time(), Valid: true}
	}
	return pgtype.Timestamptz{Valid: false}
}

func timestampToPgTimestamptz(t types.Timestamp) pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: t.Time(), Valid: true}
}

// Service mappers

// serviceRow mirrors a row of the services table.
type serviceRow struct {
	ID             string
	Name           string
	DID            string
	Endpoint       string
	Version        string
	Status         string
	RegisteredAt   pgtype.Timestamptz
	UpdatedAt      pgtype.Timestamptz
	DeregisteredAt pgtype.Timestamptz
}

func toServiceModel(row serviceRow) (*model.Service, error) {
	id, err := types.ParseID(row.ID)
	if err != nil {
		return nil, err
	}

	status, err := model.ParseServiceStatus(row.Status)
	if err != nil {
		return nil, err
	}

	return model.ReconstructService(
		id,
		row.Name,
		row.DID,
		row.Endpoint,
		row.Version,
		status,
		types.FromTime(row.RegisteredAt.Time),
		types.FromTime(row.UpdatedAt.Time),
		timestamptzToOptionalTimestamp(row.DeregisteredAt),
	), nil
}

func toServiceRow(svc *model.Service) serviceRow {
	return serviceRow{
		ID:             svc.ID().String(),
		Name:           svc.Name(),
		DID:            svc.DID(),
		Endpoint:       svc.Endpoint(),
		Version:        svc.Version(),
		Status:         svc.Status().String(),
		RegisteredAt:   timestampToPgTimestamptz(svc.RegisteredAt()),
		UpdatedAt:      timestampToPgTimestamptz(svc.UpdatedAt()),
		DeregisteredAt: optionalTimestampToPgTimestamptz(svc.DeregisteredAt()),
	}
}
