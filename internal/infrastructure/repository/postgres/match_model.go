package postgres

import (
	"database/sql"
	"time"
)

type matchTableModel struct {
	ID          int64          `db:"id"`
	PublicID    string         `db:"public_id"`
	LeagueID    string         `db:"league_public_id"`
	Season      int            `db:"season"`
	HomeTeamID  string         `db:"home_team_public_id"`
	AwayTeamID  string         `db:"away_team_public_id"`
	VenueID     sql.NullString `db:"venue_public_id"`
	StartTime   time.Time      `db:"start_time"`
	Status      string         `db:"status"`
	Elapsed     *int           `db:"elapsed"`
	HomeScore   *int           `db:"home_score"`
	AwayScore   *int           `db:"away_score"`
	ExternalIDs string         `db:"external_ids"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"`
	DeletedAt   *time.Time     `db:"deleted_at"`
}

type matchInsertModel struct {
	PublicID   string    `db:"public_id"`
	LeagueID   string    `db:"league_public_id"`
	Season     int       `db:"season"`
	HomeTeamID string    `db:"home_team_public_id"`
	AwayTeamID string    `db:"away_team_public_id"`
	VenueID    *string   `db:"venue_public_id"`
	StartTime  time.Time `db:"start_time"`
	Status     string    `db:"status"`
	Elapsed    *int      `db:"elapsed"`
	HomeScore  *int      `db:"home_score"`
	AwayScore  *int      `db:"away_score"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

type matchExternalIDInsertModel struct {
	Provider      string `db:"provider"`
	ExternalID    string `db:"external_id"`
	MatchPublicID string `db:"match_public_id"`
}

type matchStateTableModel struct {
	MatchPublicID string         `db:"match_public_id"`
	Minute        *int           `db:"minute"`
	Phase         string         `db:"phase"`
	HomeScore     int            `db:"home_score"`
	AwayScore     int            `db:"away_score"`
	LastEventID   sql.NullString `db:"last_event_id"`
	UpdatedAt     time.Time      `db:"updated_at"`
}

type matchStateInsertModel struct {
	MatchPublicID string    `db:"match_public_id"`
	Minute        *int      `db:"minute"`
	Phase         string    `db:"phase"`
	HomeScore     int       `db:"home_score"`
	AwayScore     int       `db:"away_score"`
	LastEventID   *string   `db:"last_event_id"`
	UpdatedAt     time.Time `db:"updated_at"`
}
