package match

import (
	"context"
	"time"
)

// Repository persists matches together with their external id side table.
type Repository interface {
	GetByID(ctx context.Context, matchID string) (Match, bool, error)
	GetByExternalID(ctx context.Context, provider, externalID string) (Match, bool, error)
	Create(ctx context.Context, item Match) error
	Update(ctx context.Context, item Match) error
	ListByStatuses(ctx context.Context, statuses []Status) ([]Match, error)
	ListByVenueBetween(ctx context.Context, venueID string, from, to time.Time) ([]Match, error)
}

type StateRepository interface {
	Get(ctx context.Context, matchID string) (State, bool, error)
	Upsert(ctx context.Context, state State) error
}
