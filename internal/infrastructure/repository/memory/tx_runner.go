package memory

import (
	"context"

	"github.com/riskibarqy/matchday/internal/usecase"
)

// TxRunner serializes ingestion transactions and undoes their writes when fn fails.
type TxRunner struct {
	store *Store
}

func NewTxRunner(store *Store) *TxRunner {
	return &TxRunner{store: store}
}

func (r *TxRunner) RunInTx(ctx context.Context, fn func(ctx context.Context, repos usecase.IngestionRepositories) error) error {
	r.store.txMu.Lock()
	defer r.store.txMu.Unlock()

	r.store.begin()
	repos := usecase.IngestionRepositories{
		Leagues:     &LeagueRepository{store: r.store, inTx: true},
		Teams:       &TeamRepository{store: r.store, inTx: true},
		Venues:      &VenueRepository{store: r.store, inTx: true},
		Matches:     &MatchRepository{store: r.store, inTx: true},
		MatchStates: &MatchStateRepository{store: r.store, inTx: true},
	}
	if err := fn(ctx, repos); err != nil {
		r.store.rollback()
		return err
	}
	r.store.commit()
	return nil
}
