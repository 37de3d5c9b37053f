package memory

import (
	"context"
	"fmt"
	"strings"

	"github.com/riskibarqy/matchday/internal/domain/team"
)

type TeamRepository struct {
	store *Store
	inTx  bool
}

func NewTeamRepository(store *Store) *TeamRepository {
	return &TeamRepository{store: store}
}

func (r *TeamRepository) GetByID(_ context.Context, teamID string) (team.Team, bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	item, ok := r.store.teams[strings.TrimSpace(teamID)]
	return item, ok, nil
}

func (r *TeamRepository) Create(_ context.Context, item team.Team) error {
	if err := item.Validate(); err != nil {
		return err
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, exists := r.store.teams[item.ID]; exists {
		return fmt.Errorf("team %s already exists", item.ID)
	}
	track(r.store, r.inTx, tableTeams, r.store.teams, item.ID, item)
	r.store.teams[item.ID] = item
	return nil
}
