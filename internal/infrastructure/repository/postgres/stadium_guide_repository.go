package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/matchday/internal/domain/stadiumguide"
	qb "github.com/riskibarqy/matchday/internal/platform/querybuilder"
)

type stadiumGuideTableModel struct {
	VenuePublicID string    `db:"venue_public_id"`
	Title         string    `db:"title"`
	Sections      string    `db:"sections"`
	Facilities    string    `db:"facilities"`
	ImageURLs     string    `db:"image_urls"`
	Source        string    `db:"source"`
	GeneratedAt   time.Time `db:"generated_at"`
}

type StadiumGuideRepository struct {
	db dbtx
}

func NewStadiumGuideRepository(db *sqlx.DB) *StadiumGuideRepository {
	return &StadiumGuideRepository{db: db}
}

func (r *StadiumGuideRepository) GetByVenueID(ctx context.Context, venueID string) (stadiumguide.Guide, bool, error) {
	query, args, err := qb.Select("*").From("stadium_guides").
		Where(qb.Eq("venue_public_id", strings.TrimSpace(venueID))).
		ToSQL()
	if err != nil {
		return stadiumguide.Guide{}, false, fmt.Errorf("build get stadium guide query: %w", err)
	}

	var row stadiumGuideTableModel
	if err := sqlx.GetContext(ctx, r.db, &row, query, args...); err != nil {
		if isNotFound(err) {
			return stadiumguide.Guide{}, false, nil
		}
		return stadiumguide.Guide{}, false, fmt.Errorf("get stadium guide: %w", err)
	}

	guide := stadiumguide.Guide{
		VenueID:     row.VenuePublicID,
		Title:       row.Title,
		Source:      row.Source,
		GeneratedAt: row.GeneratedAt,
	}
	if err := decodeJSON(row.Sections, &guide.Sections); err != nil {
		return stadiumguide.Guide{}, false, fmt.Errorf("decode stadium guide sections: %w", err)
	}
	if err := decodeJSON(row.Facilities, &guide.Facilities); err != nil {
		return stadiumguide.Guide{}, false, fmt.Errorf("decode stadium guide facilities: %w", err)
	}
	if err := decodeJSON(row.ImageURLs, &guide.ImageURLs); err != nil {
		return stadiumguide.Guide{}, false, fmt.Errorf("decode stadium guide images: %w", err)
	}
	return guide, true, nil
}

func (r *StadiumGuideRepository) Upsert(ctx context.Context, item stadiumguide.Guide) error {
	sections, err := encodeJSON(nonNilSlice(item.Sections))
	if err != nil {
		return fmt.Errorf("encode stadium guide sections: %w", err)
	}
	facilities, err := encodeJSON(nonNilSlice(item.Facilities))
	if err != nil {
		return fmt.Errorf("encode stadium guide facilities: %w", err)
	}
	images, err := encodeJSON(nonNilSlice(item.ImageURLs))
	if err != nil {
		return fmt.Errorf("encode stadium guide images: %w", err)
	}

	query, args, err := qb.Upsert("stadium_guides", stadiumGuideTableModel{
		VenuePublicID: strings.TrimSpace(item.VenueID),
		Title:         item.Title,
		Sections:      sections,
		Facilities:    facilities,
		ImageURLs:     images,
		Source:        item.Source,
		GeneratedAt:   timeOrNow(item.GeneratedAt),
	}).OnConflict("", "venue_public_id").DoUpdate().ToSQL()
	if err != nil {
		return fmt.Errorf("build upsert stadium guide query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert stadium guide venue=%s: %w", item.VenueID, err)
	}
	return nil
}

func nonNilSlice[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
