package devicetoken

import (
	"context"
	"time"
)

type Repository interface {
	GetByToken(ctx context.Context, token string) (DeviceToken, bool, error)
	// Upsert inserts by token or moves an existing token to the given owner and reactivates it.
	Upsert(ctx context.Context, item DeviceToken) error
	Deactivate(ctx context.Context, tokens []string) (int, error)
	ListActiveByUsers(ctx context.Context, userIDs []string) ([]DeviceToken, error)
	ListByUser(ctx context.Context, userID string) ([]DeviceToken, error)
	DeactivateUnusedSince(ctx context.Context, before time.Time) (int, error)
}
