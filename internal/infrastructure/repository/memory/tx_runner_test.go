package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/matchday/internal/domain/match"
	"github.com/riskibarqy/matchday/internal/domain/team"
	"github.com/riskibarqy/matchday/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/matchday/internal/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errAbort = errors.New("abort batch")

func newTxStore(t *testing.T) *memory.Store {
	t.Helper()

	store := memory.NewStore()
	memory.Seed(store)
	require.NoError(t, memory.NewMatchRepository(store).Create(context.Background(), match.Match{
		ID:          "fx-2001",
		LeagueID:    memory.LeagueIDPremierLeague,
		Season:      2025,
		HomeTeamID:  "eng-ars",
		AwayTeamID:  "eng-liv",
		StartTime:   time.Date(2025, 9, 20, 16, 30, 0, 0, time.UTC),
		Status:      match.StatusSecondHalf,
		ExternalIDs: map[string]string{match.ProviderFootballAPI: "2001"},
	}))
	return store
}

func TestTxRunner_RollbackUndoesTransactionWrites(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newTxStore(t)
	runner := memory.NewTxRunner(store)

	err := runner.RunInTx(ctx, func(ctx context.Context, repos usecase.IngestionRepositories) error {
		require.NoError(t, repos.Teams.Create(ctx, team.Team{ID: "eng-che", Name: "Chelsea", ShortName: "CHE"}))
		require.NoError(t, repos.Matches.Create(ctx, match.Match{
			ID:          "fx-2002",
			LeagueID:    memory.LeagueIDPremierLeague,
			Season:      2025,
			HomeTeamID:  "eng-che",
			AwayTeamID:  "eng-ars",
			StartTime:   time.Date(2025, 9, 21, 14, 0, 0, 0, time.UTC),
			Status:      match.StatusNotStarted,
			ExternalIDs: map[string]string{match.ProviderFootballAPI: "2002"},
		}))
		require.NoError(t, repos.MatchStates.Upsert(ctx, match.State{MatchID: "fx-2001", Phase: match.PhaseSecondHalf, HomeScore: 1}))
		return errAbort
	})
	require.ErrorIs(t, err, errAbort)

	_, exists, err := memory.NewTeamRepository(store).GetByID(ctx, "eng-che")
	require.NoError(t, err)
	assert.False(t, exists)

	matches := memory.NewMatchRepository(store)
	_, exists, err = matches.GetByID(ctx, "fx-2002")
	require.NoError(t, err)
	assert.False(t, exists)
	_, exists, err = matches.GetByExternalID(ctx, match.ProviderFootballAPI, "2002")
	require.NoError(t, err)
	assert.False(t, exists)

	_, exists, err = memory.NewMatchStateRepository(store).Get(ctx, "fx-2001")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestTxRunner_RollbackKeepsWritesFromOutsideTheTransaction(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newTxStore(t)
	runner := memory.NewTxRunner(store)
	states := memory.NewMatchStateRepository(store)
	require.NoError(t, states.Upsert(ctx, match.State{MatchID: "fx-2001", Phase: match.PhaseFirstHalf}))

	err := runner.RunInTx(ctx, func(ctx context.Context, repos usecase.IngestionRepositories) error {
		require.NoError(t, repos.MatchStates.Upsert(ctx, match.State{MatchID: "fx-2001", Phase: match.PhaseSecondHalf, HomeScore: 1}))

		// The event poller writes while the batch is still open.
		require.NoError(t, states.Upsert(ctx, match.State{MatchID: "fx-2001", Phase: match.PhaseFirstHalf, LastEventID: "ev-9"}))
		require.NoError(t, states.Upsert(ctx, match.State{MatchID: "fx-3001", Phase: match.PhaseFirstHalf, LastEventID: "ev-1"}))
		return errAbort
	})
	require.ErrorIs(t, err, errAbort)

	got, exists, err := states.Get(ctx, "fx-2001")
	require.NoError(t, err)
	require.True(t, exists)
	assert.Equal(t, "ev-9", got.LastEventID)
	assert.Equal(t, 0, got.HomeScore)

	got, exists, err = states.Get(ctx, "fx-3001")
	require.NoError(t, err)
	require.True(t, exists)
	assert.Equal(t, "ev-1", got.LastEventID)
}

func TestTxRunner_CommitKeepsWrites(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newTxStore(t)
	runner := memory.NewTxRunner(store)

	require.NoError(t, runner.RunInTx(ctx, func(ctx context.Context, repos usecase.IngestionRepositories) error {
		return repos.MatchStates.Upsert(ctx, match.State{MatchID: "fx-2001", Phase: match.PhaseSecondHalf, HomeScore: 2})
	}))

	// A later failed batch must not reach back past the commit.
	err := runner.RunInTx(ctx, func(ctx context.Context, repos usecase.IngestionRepositories) error {
		require.NoError(t, repos.MatchStates.Upsert(ctx, match.State{MatchID: "fx-2001", Phase: match.PhaseFullTime, HomeScore: 3}))
		return errAbort
	})
	require.ErrorIs(t, err, errAbort)

	got, exists, err := memory.NewMatchStateRepository(store).Get(ctx, "fx-2001")
	require.NoError(t, err)
	require.True(t, exists)
	assert.Equal(t, match.PhaseSecondHalf, got.Phase)
	assert.Equal(t, 2, got.HomeScore)
}
