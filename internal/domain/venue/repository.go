package venue

import "context"

type Repository interface {
	GetByID(ctx context.Context, venueID string) (Venue, bool, error)
	Create(ctx context.Context, item Venue) error
}
