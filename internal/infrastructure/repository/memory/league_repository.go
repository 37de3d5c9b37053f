package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/riskibarqy/matchday/internal/domain/league"
)

type LeagueRepository struct {
	store *Store
	inTx  bool
}

func NewLeagueRepository(store *Store) *LeagueRepository {
	return &LeagueRepository{store: store}
}

func (r *LeagueRepository) List(_ context.Context) ([]league.League, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]league.League, 0, len(r.store.leagues))
	for _, item := range r.store.leagues {
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	return out, nil
}

func (r *LeagueRepository) GetByID(_ context.Context, leagueID string) (league.League, bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	item, ok := r.store.leagues[strings.TrimSpace(leagueID)]
	return item, ok, nil
}

func (r *LeagueRepository) Upsert(_ context.Context, item league.League) error {
	if err := item.Validate(); err != nil {
		return err
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	track(r.store, r.inTx, tableLeagues, r.store.leagues, item.ID, item)
	r.store.leagues[item.ID] = item
	return nil
}
