package matchevent

import "context"

type Repository interface {
	ListProviderEventIDs(ctx context.Context, matchID string) (map[string]struct{}, error)
	// Insert returns ErrDuplicate when the provider event id is already stored.
	Insert(ctx context.Context, item Event) error
	ListByMatch(ctx context.Context, matchID string) ([]Event, error)
}
