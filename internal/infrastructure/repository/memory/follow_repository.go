package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/riskibarqy/matchday/internal/domain/follow"
)

type FollowRepository struct {
	store *Store
}

func NewFollowRepository(store *Store) *FollowRepository {
	return &FollowRepository{store: store}
}

func newFollowKey(userID string, entityType follow.EntityType, entityID string) followKey {
	return followKey{
		userID:     strings.TrimSpace(userID),
		entityType: entityType,
		entityID:   strings.TrimSpace(entityID),
	}
}

func (r *FollowRepository) Create(_ context.Context, item follow.Follow) error {
	key := newFollowKey(item.UserID, item.EntityType, item.EntityID)

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, exists := r.store.follows[key]; exists {
		return follow.ErrDuplicate
	}
	r.store.follows[key] = item
	return nil
}

func (r *FollowRepository) Get(_ context.Context, userID string, entityType follow.EntityType, entityID string) (follow.Follow, bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	item, ok := r.store.follows[newFollowKey(userID, entityType, entityID)]
	return item, ok, nil
}

func (r *FollowRepository) Delete(_ context.Context, userID string, entityType follow.EntityType, entityID string) (bool, error) {
	key := newFollowKey(userID, entityType, entityID)

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.follows[key]; !ok {
		return false, nil
	}
	delete(r.store.follows, key)
	return true, nil
}

func (r *FollowRepository) UpdatePreferences(_ context.Context, item follow.Follow) error {
	key := newFollowKey(item.UserID, item.EntityType, item.EntityID)

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	current, ok := r.store.follows[key]
	if !ok {
		return fmt.Errorf("follow %s/%s not found", item.EntityType, item.EntityID)
	}
	current.Preferences = item.Preferences
	current.UpdatedAt = item.UpdatedAt
	r.store.follows[key] = current
	return nil
}

func (r *FollowRepository) CountByUser(_ context.Context, userID string) (map[follow.EntityType]int, error) {
	userID = strings.TrimSpace(userID)

	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make(map[follow.EntityType]int, len(follow.EntityTypes()))
	for key := range r.store.follows {
		if key.userID == userID {
			out[key.entityType]++
		}
	}
	return out, nil
}

func (r *FollowRepository) ListByUser(_ context.Context, userID string) ([]follow.Follow, error) {
	userID = strings.TrimSpace(userID)

	r.store.mu.RLock()
	out := make([]follow.Follow, 0)
	for key, item := range r.store.follows {
		if key.userID == userID {
			out = append(out, item)
		}
	}
	r.store.mu.RUnlock()

	sortFollows(out)
	return out, nil
}

func (r *FollowRepository) ListActiveByEntity(_ context.Context, entityType follow.EntityType, entityID string) ([]follow.Follow, error) {
	entityID = strings.TrimSpace(entityID)

	r.store.mu.RLock()
	out := make([]follow.Follow, 0)
	for key, item := range r.store.follows {
		if key.entityType == entityType && key.entityID == entityID && item.Active {
			out = append(out, item)
		}
	}
	r.store.mu.RUnlock()

	sortFollows(out)
	return out, nil
}

func sortFollows(items []follow.Follow) {
	sort.Slice(items, func(i, j int) bool {
		if !items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].CreatedAt.Before(items[j].CreatedAt)
		}
		return items[i].ID < items[j].ID
	})
}
