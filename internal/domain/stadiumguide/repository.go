package stadiumguide

import "context"

type Repository interface {
	GetByVenueID(ctx context.Context, venueID string) (Guide, bool, error)
	Upsert(ctx context.Context, item Guide) error
}
