package memory

import (
	"context"
	"fmt"
	"strings"

	"github.com/riskibarqy/matchday/internal/domain/venue"
)

type VenueRepository struct {
	store *Store
	inTx  bool
}

func NewVenueRepository(store *Store) *VenueRepository {
	return &VenueRepository{store: store}
}

func (r *VenueRepository) GetByID(_ context.Context, venueID string) (venue.Venue, bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	item, ok := r.store.venues[strings.TrimSpace(venueID)]
	return item, ok, nil
}

func (r *VenueRepository) Create(_ context.Context, item venue.Venue) error {
	if err := item.Validate(); err != nil {
		return err
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, exists := r.store.venues[item.ID]; exists {
		return fmt.Errorf("venue %s already exists", item.ID)
	}
	track(r.store, r.inTx, tableVenues, r.store.venues, item.ID, item)
	r.store.venues[item.ID] = item
	return nil
}
