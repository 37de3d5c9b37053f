package memory

import (
	"context"
	"fmt"
	"maps"
	"sort"
	"strings"
	"time"

	"github.com/riskibarqy/matchday/internal/domain/match"
)

type MatchRepository struct {
	store *Store
	inTx  bool
}

func NewMatchRepository(store *Store) *MatchRepository {
	return &MatchRepository{store: store}
}

func (r *MatchRepository) GetByID(_ context.Context, matchID string) (match.Match, bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	item, ok := r.store.matches[strings.TrimSpace(matchID)]
	if !ok {
		return match.Match{}, false, nil
	}
	item.ExternalIDs = maps.Clone(item.ExternalIDs)
	return item, true, nil
}

func (r *MatchRepository) GetByExternalID(ctx context.Context, provider, externalID string) (match.Match, bool, error) {
	r.store.mu.RLock()
	matchID, ok := r.store.matchExternal[externalKey(provider, strings.TrimSpace(externalID))]
	r.store.mu.RUnlock()
	if !ok {
		return match.Match{}, false, nil
	}
	return r.GetByID(ctx, matchID)
}

func (r *MatchRepository) Create(_ context.Context, item match.Match) error {
	if err := item.Validate(); err != nil {
		return err
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, exists := r.store.matches[item.ID]; exists {
		return fmt.Errorf("match %s already exists", item.ID)
	}
	for provider, externalID := range item.ExternalIDs {
		key := externalKey(provider, externalID)
		if owner, taken := r.store.matchExternal[key]; taken && owner != item.ID {
			return fmt.Errorf("external id %s/%s already mapped to match %s", provider, externalID, owner)
		}
	}

	item.ExternalIDs = maps.Clone(item.ExternalIDs)
	r.store.putMatch(r.inTx, item)
	return nil
}

func (r *MatchRepository) Update(_ context.Context, item match.Match) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	current, exists := r.store.matches[item.ID]
	if !exists {
		return fmt.Errorf("match %s not found", item.ID)
	}
	if item.ExternalIDs == nil {
		item.ExternalIDs = current.ExternalIDs
	}
	item.ExternalIDs = maps.Clone(item.ExternalIDs)
	r.store.putMatch(r.inTx, item)
	return nil
}

// putMatch stores item and its external id index. Callers hold s.mu.
func (s *Store) putMatch(inTx bool, item match.Match) {
	track(s, inTx, tableMatches, s.matches, item.ID, item)
	s.matches[item.ID] = item
	for provider, externalID := range item.ExternalIDs {
		key := externalKey(provider, externalID)
		track(s, inTx, tableMatchExternal, s.matchExternal, key, item.ID)
		s.matchExternal[key] = item.ID
	}
}

func (r *MatchRepository) ListByStatuses(_ context.Context, statuses []match.Status) ([]match.Match, error) {
	wanted := make(map[match.Status]struct{}, len(statuses))
	for _, status := range statuses {
		wanted[status] = struct{}{}
	}

	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]match.Match, 0)
	for _, item := range r.store.matches {
		if _, ok := wanted[item.Status]; ok {
			item.ExternalIDs = maps.Clone(item.ExternalIDs)
			out = append(out, item)
		}
	}
	sortMatches(out)
	return out, nil
}

// ListByVenueBetween returns matches at venueID kicking off in [from, to).
func (r *MatchRepository) ListByVenueBetween(_ context.Context, venueID string, from, to time.Time) ([]match.Match, error) {
	venueID = strings.TrimSpace(venueID)

	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]match.Match, 0)
	for _, item := range r.store.matches {
		if item.VenueID != venueID {
			continue
		}
		if item.StartTime.Before(from) || !item.StartTime.Before(to) {
			continue
		}
		item.ExternalIDs = maps.Clone(item.ExternalIDs)
		out = append(out, item)
	}
	sortMatches(out)
	return out, nil
}

func sortMatches(items []match.Match) {
	sort.Slice(items, func(i, j int) bool {
		if !items[i].StartTime.Equal(items[j].StartTime) {
			return items[i].StartTime.Before(items[j].StartTime)
		}
		return items[i].ID < items[j].ID
	})
}

type MatchStateRepository struct {
	store *Store
	inTx  bool
}

func NewMatchStateRepository(store *Store) *MatchStateRepository {
	return &MatchStateRepository{store: store}
}

func (r *MatchStateRepository) Get(_ context.Context, matchID string) (match.State, bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	item, ok := r.store.states[strings.TrimSpace(matchID)]
	return item, ok, nil
}

func (r *MatchStateRepository) Upsert(_ context.Context, state match.State) error {
	if strings.TrimSpace(state.MatchID) == "" {
		return fmt.Errorf("match state match id is required")
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	track(r.store, r.inTx, tableStates, r.store.states, state.MatchID, state)
	r.store.states[state.MatchID] = state
	return nil
}
