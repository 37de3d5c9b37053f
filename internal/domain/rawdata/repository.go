package rawdata

import (
	"context"
	"time"
)

// Repository archives provider responses for replay and debugging.
type Repository interface {
	UpsertMany(ctx context.Context, items []Payload) error
	// DeleteFetchedBefore prunes the archive and returns the number of rows removed.
	DeleteFetchedBefore(ctx context.Context, before time.Time) (int, error)
}
