package postgres

import "time"

type followTableModel struct {
	ID          int64      `db:"id"`
	PublicID    string     `db:"public_id"`
	UserID      string     `db:"user_id"`
	EntityType  string     `db:"entity_type"`
	EntityID    string     `db:"entity_id"`
	Preferences string     `db:"preferences"`
	Active      bool       `db:"active"`
	Status      string     `db:"status"`
	CreatedAt   time.Time  `db:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at"`
	DeletedAt   *time.Time `db:"deleted_at"`
}

type followInsertModel struct {
	PublicID    string    `db:"public_id"`
	UserID      string    `db:"user_id"`
	EntityType  string    `db:"entity_type"`
	EntityID    string    `db:"entity_id"`
	Preferences string    `db:"preferences"`
	Active      bool      `db:"active"`
	Status      string    `db:"status"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

type followCountRow struct {
	EntityType string `db:"entity_type"`
	Total      int    `db:"total"`
}
