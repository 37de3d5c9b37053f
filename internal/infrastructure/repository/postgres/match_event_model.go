package postgres

import (
	"database/sql"
	"time"
)

type matchEventTableModel struct {
	ID              int64          `db:"id"`
	PublicID        string         `db:"public_id"`
	MatchPublicID   string         `db:"match_public_id"`
	ProviderEventID string         `db:"provider_event_id"`
	EventType       string         `db:"event_type"`
	Detail          string         `db:"detail"`
	TeamID          sql.NullString `db:"team_id"`
	PlayerID        sql.NullString `db:"player_id"`
	PlayerName      string         `db:"player_name"`
	AssistName      string         `db:"assist_name"`
	Elapsed         int            `db:"elapsed"`
	Extra           *int           `db:"extra"`
	OccurredAt      time.Time      `db:"occurred_at"`
	Payload         string         `db:"payload"`
	CreatedAt       time.Time      `db:"created_at"`
}

type matchEventInsertModel struct {
	PublicID        string    `db:"public_id"`
	MatchPublicID   string    `db:"match_public_id"`
	ProviderEventID string    `db:"provider_event_id"`
	EventType       string    `db:"event_type"`
	Detail          string    `db:"detail"`
	TeamID          *string   `db:"team_id"`
	PlayerID        *string   `db:"player_id"`
	PlayerName      string    `db:"player_name"`
	AssistName      string    `db:"assist_name"`
	Elapsed         int       `db:"elapsed"`
	Extra           *int      `db:"extra"`
	OccurredAt      time.Time `db:"occurred_at"`
	Payload         string    `db:"payload"`
	CreatedAt       time.Time `db:"created_at"`
}
