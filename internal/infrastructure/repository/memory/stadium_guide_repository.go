package memory

import (
	"context"
	"fmt"
	"strings"

	"github.com/riskibarqy/matchday/internal/domain/stadiumguide"
)

type StadiumGuideRepository struct {
	store *Store
}

func NewStadiumGuideRepository(store *Store) *StadiumGuideRepository {
	return &StadiumGuideRepository{store: store}
}

func (r *StadiumGuideRepository) GetByVenueID(_ context.Context, venueID string) (stadiumguide.Guide, bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	item, ok := r.store.guides[strings.TrimSpace(venueID)]
	return item, ok, nil
}

func (r *StadiumGuideRepository) Upsert(_ context.Context, item stadiumguide.Guide) error {
	if strings.TrimSpace(item.VenueID) == "" {
		return fmt.Errorf("stadium guide venue id is required")
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	r.store.guides[item.VenueID] = item
	return nil
}
