package follow

import "context"

type Repository interface {
	// Create returns ErrDuplicate when the triple is already followed.
	Create(ctx context.Context, item Follow) error
	Get(ctx context.Context, userID string, entityType EntityType, entityID string) (Follow, bool, error)
	Delete(ctx context.Context, userID string, entityType EntityType, entityID string) (bool, error)
	UpdatePreferences(ctx context.Context, item Follow) error
	CountByUser(ctx context.Context, userID string) (map[EntityType]int, error)
	ListByUser(ctx context.Context, userID string) ([]Follow, error)
	ListActiveByEntity(ctx context.Context, entityType EntityType, entityID string) ([]Follow, error)
}
