package memory

import (
	"context"
	"maps"
	"sort"
	"strings"

	"github.com/riskibarqy/matchday/internal/domain/matchevent"
)

type MatchEventRepository struct {
	store *Store
}

func NewMatchEventRepository(store *Store) *MatchEventRepository {
	return &MatchEventRepository{store: store}
}

func (r *MatchEventRepository) ListProviderEventIDs(_ context.Context, matchID string) (map[string]struct{}, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	events := r.store.events[strings.TrimSpace(matchID)]
	out := make(map[string]struct{}, len(events))
	for _, item := range events {
		out[item.ProviderEventID] = struct{}{}
	}
	return out, nil
}

func (r *MatchEventRepository) Insert(_ context.Context, item matchevent.Event) error {
	if err := item.Validate(); err != nil {
		return err
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, existing := range r.store.events[item.MatchID] {
		if existing.ProviderEventID == item.ProviderEventID {
			return matchevent.ErrDuplicate
		}
	}
	item.Payload = maps.Clone(item.Payload)
	r.store.events[item.MatchID] = append(r.store.events[item.MatchID], item)
	return nil
}

// ListByMatch returns the timeline ordered by elapsed minute.
func (r *MatchEventRepository) ListByMatch(_ context.Context, matchID string) ([]matchevent.Event, error) {
	r.store.mu.RLock()
	events := append([]matchevent.Event(nil), r.store.events[strings.TrimSpace(matchID)]...)
	r.store.mu.RUnlock()

	sort.SliceStable(events, func(i, j int) bool {
		if events[i].Elapsed != events[j].Elapsed {
			return events[i].Elapsed < events[j].Elapsed
		}
		return extraMinutes(events[i]) < extraMinutes(events[j])
	})
	return events, nil
}

func extraMinutes(item matchevent.Event) int {
	if item.Extra == nil {
		return 0
	}
	return *item.Extra
}
