package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/matchday/internal/usecase"
)

// IngestionTxRunner binds the ingestion repositories to one database transaction.
type IngestionTxRunner struct {
	db *sqlx.DB
}

func NewIngestionTxRunner(db *sqlx.DB) *IngestionTxRunner {
	return &IngestionTxRunner{db: db}
}

func (r *IngestionTxRunner) RunInTx(ctx context.Context, fn func(ctx context.Context, repos usecase.IngestionRepositories) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin ingestion tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	repos := usecase.IngestionRepositories{
		Leagues:     &LeagueRepository{db: tx},
		Teams:       &TeamRepository{db: tx},
		Venues:      &VenueRepository{db: tx},
		Matches:     &MatchRepository{db: tx},
		MatchStates: &MatchStateRepository{db: tx},
	}
	if err := fn(ctx, repos); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit ingestion tx: %w", err)
	}
	return nil
}
