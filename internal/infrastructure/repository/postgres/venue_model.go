package postgres

import (
	"database/sql"
	"time"
)

type venueTableModel struct {
	ID         int64         `db:"id"`
	PublicID   string        `db:"public_id"`
	Name       string        `db:"name"`
	City       string        `db:"city"`
	Capacity   *int          `db:"capacity"`
	VenueRefID sql.NullInt64 `db:"venue_ref_id"`
	CreatedAt  time.Time     `db:"created_at"`
	UpdatedAt  time.Time     `db:"updated_at"`
	DeletedAt  *time.Time    `db:"deleted_at"`
}

type venueInsertModel struct {
	PublicID   string `db:"public_id"`
	Name       string `db:"name"`
	City       string `db:"city"`
	Capacity   *int   `db:"capacity"`
	VenueRefID *int64 `db:"venue_ref_id"`
}
