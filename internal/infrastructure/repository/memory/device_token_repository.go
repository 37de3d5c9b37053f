package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/riskibarqy/matchday/internal/domain/devicetoken"
)

type DeviceTokenRepository struct {
	store *Store
}

func NewDeviceTokenRepository(store *Store) *DeviceTokenRepository {
	return &DeviceTokenRepository{store: store}
}

func (r *DeviceTokenRepository) GetByToken(_ context.Context, token string) (devicetoken.DeviceToken, bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	item, ok := r.store.tokens[strings.TrimSpace(token)]
	return item, ok, nil
}

func (r *DeviceTokenRepository) Upsert(_ context.Context, item devicetoken.DeviceToken) error {
	item.Token = strings.TrimSpace(item.Token)
	if item.Token == "" {
		return fmt.Errorf("device token is required")
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if current, ok := r.store.tokens[item.Token]; ok {
		item.ID = current.ID
		item.CreatedAt = current.CreatedAt
	}
	r.store.tokens[item.Token] = item
	return nil
}

func (r *DeviceTokenRepository) Deactivate(_ context.Context, tokens []string) (int, error) {
	now := r.store.now().UTC()

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	count := 0
	for _, token := range tokens {
		item, ok := r.store.tokens[strings.TrimSpace(token)]
		if !ok || !item.Active {
			continue
		}
		item.Active = false
		item.UpdatedAt = now
		r.store.tokens[item.Token] = item
		count++
	}
	return count, nil
}

func (r *DeviceTokenRepository) ListActiveByUsers(_ context.Context, userIDs []string) ([]devicetoken.DeviceToken, error) {
	wanted := make(map[string]struct{}, len(userIDs))
	for _, userID := range userIDs {
		wanted[strings.TrimSpace(userID)] = struct{}{}
	}

	r.store.mu.RLock()
	out := make([]devicetoken.DeviceToken, 0)
	for _, item := range r.store.tokens {
		if _, ok := wanted[item.UserID]; ok && item.Active {
			out = append(out, item)
		}
	}
	r.store.mu.RUnlock()

	sortTokens(out)
	return out, nil
}

func (r *DeviceTokenRepository) ListByUser(_ context.Context, userID string) ([]devicetoken.DeviceToken, error) {
	userID = strings.TrimSpace(userID)

	r.store.mu.RLock()
	out := make([]devicetoken.DeviceToken, 0)
	for _, item := range r.store.tokens {
		if item.UserID == userID {
			out = append(out, item)
		}
	}
	r.store.mu.RUnlock()

	sortTokens(out)
	return out, nil
}

func (r *DeviceTokenRepository) DeactivateUnusedSince(_ context.Context, before time.Time) (int, error) {
	now := r.store.now().UTC()

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	count := 0
	for token, item := range r.store.tokens {
		if !item.Active || !item.LastUsedAt.Before(before) {
			continue
		}
		item.Active = false
		item.UpdatedAt = now
		r.store.tokens[token] = item
		count++
	}
	return count, nil
}

func sortTokens(items []devicetoken.DeviceToken) {
	sort.Slice(items, func(i, j int) bool { return items[i].Token < items[j].Token })
}
