package postgres

import (
	"database/sql"
	"time"
)

type teamTableModel struct {
	ID        int64          `db:"id"`
	PublicID  string         `db:"public_id"`
	LeagueID  sql.NullString `db:"league_public_id"`
	Name      string         `db:"name"`
	ShortName string         `db:"short_name"`
	LogoURL   string         `db:"logo_url"`
	TeamRefID sql.NullInt64  `db:"team_ref_id"`
	CreatedAt time.Time      `db:"created_at"`
	UpdatedAt time.Time      `db:"updated_at"`
	DeletedAt *time.Time     `db:"deleted_at"`
}

type teamInsertModel struct {
	PublicID  string  `db:"public_id"`
	LeagueID  *string `db:"league_public_id"`
	Name      string  `db:"name"`
	ShortName string  `db:"short_name"`
	LogoURL   string  `db:"logo_url"`
	TeamRefID *int64  `db:"team_ref_id"`
}
