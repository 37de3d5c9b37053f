package postgres

import "time"

type deviceTokenTableModel struct {
	ID         int64     `db:"id"`
	PublicID   string    `db:"public_id"`
	UserID     string    `db:"user_id"`
	Token      string    `db:"token"`
	Platform   string    `db:"platform"`
	DeviceName string    `db:"device_name"`
	AppVersion string    `db:"app_version"`
	OSVersion  string    `db:"os_version"`
	Active     bool      `db:"active"`
	LastUsedAt time.Time `db:"last_used_at"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

type deviceTokenInsertModel struct {
	PublicID   string    `db:"public_id"`
	UserID     string    `db:"user_id"`
	Token      string    `db:"token"`
	Platform   string    `db:"platform"`
	DeviceName string    `db:"device_name"`
	AppVersion string    `db:"app_version"`
	OSVersion  string    `db:"os_version"`
	Active     bool      `db:"active"`
	LastUsedAt time.Time `db:"last_used_at"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}
