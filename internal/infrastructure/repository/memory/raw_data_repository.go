package memory

import (
	"context"
	"time"

	"github.com/riskibarqy/matchday/internal/domain/rawdata"
)

type RawDataRepository struct {
	store *Store
}

func NewRawDataRepository(store *Store) *RawDataRepository {
	return &RawDataRepository{store: store}
}

// UpsertMany keeps the latest payload per (source, entity type, entity key).
func (r *RawDataRepository) UpsertMany(_ context.Context, items []rawdata.Payload) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, item := range items {
		key := item.Source + "|" + item.EntityType + "|" + item.EntityKey
		if current, ok := r.store.rawPayloads[key]; ok && current.PayloadHash == item.PayloadHash {
			continue
		}
		r.store.rawPayloads[key] = item
	}
	return nil
}

func (r *RawDataRepository) DeleteFetchedBefore(_ context.Context, before time.Time) (int, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	removed := 0
	for key, item := range r.store.rawPayloads {
		if item.FetchedAt.Before(before) {
			delete(r.store.rawPayloads, key)
			removed++
		}
	}
	return removed, nil
}
