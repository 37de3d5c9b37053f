package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/matchday/internal/domain/venue"
	qb "github.com/riskibarqy/matchday/internal/platform/querybuilder"
)

type VenueRepository struct {
	db dbtx
}

func NewVenueRepository(db *sqlx.DB) *VenueRepository {
	return &VenueRepository{db: db}
}

func (r *VenueRepository) GetByID(ctx context.Context, venueID string) (venue.Venue, bool, error) {
	query, args, err := qb.Select("*").From("venues").
		Where(
			qb.Eq("public_id", venueID),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return venue.Venue{}, false, fmt.Errorf("build get venue by id query: %w", err)
	}

	var row venueTableModel
	if err := sqlx.GetContext(ctx, r.db, &row, query, args...); err != nil {
		if isNotFound(err) {
			return venue.Venue{}, false, nil
		}
		return venue.Venue{}, false, fmt.Errorf("get venue by id: %w", err)
	}

	return venue.Venue{
		ID:         row.PublicID,
		Name:       row.Name,
		City:       row.City,
		Capacity:   row.Capacity,
		VenueRefID: nullInt64ToInt64(row.VenueRefID),
	}, true, nil
}

func (r *VenueRepository) Create(ctx context.Context, item venue.Venue) error {
	if err := item.Validate(); err != nil {
		return err
	}

	query, args, err := qb.Upsert("venues", venueInsertModel{
		PublicID:   item.ID,
		Name:       item.Name,
		City:       item.City,
		Capacity:   item.Capacity,
		VenueRefID: nullableInt64(item.VenueRefID),
	}).OnConflict("deleted_at IS NULL", "public_id").DoNothing().ToSQL()
	if err != nil {
		return fmt.Errorf("build insert venue query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert venue %s: %w", item.ID, err)
	}

	return nil
}
