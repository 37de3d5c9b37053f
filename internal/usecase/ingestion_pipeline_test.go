package usecase_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/riskibarqy/matchday/internal/domain/league"
	"github.com/riskibarqy/matchday/internal/domain/match"
	"github.com/riskibarqy/matchday/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/matchday/internal/platform/logging"
	"github.com/riskibarqy/matchday/internal/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var kickoff = time.Date(2025, 9, 20, 16, 30, 0, 0, time.UTC)

type fakeProvider struct {
	mu        sync.Mutex
	fixtures  []usecase.ExternalFixture
	live      []usecase.ExternalFixture
	events    map[int64][]usecase.ExternalEvent
	fetchErr  error
	liveCalls [][]int64
	dayCalls  int
}

func (p *fakeProvider) setFixtures(items ...usecase.ExternalFixture) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.fixtures = items
}

func (p *fakeProvider) GetFixtures(context.Context, time.Time, int64, int) ([]usecase.ExternalFixture, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.dayCalls++
	if p.fetchErr != nil {
		return nil, p.fetchErr
	}
	return append([]usecase.ExternalFixture(nil), p.fixtures...), nil
}

func (p *fakeProvider) GetLiveFixtures(_ context.Context, leagueRefIDs []int64) ([]usecase.ExternalFixture, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.liveCalls = append(p.liveCalls, leagueRefIDs)
	return append([]usecase.ExternalFixture(nil), p.live...), nil
}

func (p *fakeProvider) GetFixtureEvents(_ context.Context, fixtureRefID int64) ([]usecase.ExternalEvent, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.events[fixtureRefID], nil
}

func (p *fakeProvider) GetFixtureStatistics(context.Context, int64) []usecase.ExternalTeamStatistics {
	return []usecase.ExternalTeamStatistics{
		{TeamExternalID: 42, Statistics: []usecase.ExternalStatistic{{Type: "Ball Possession", Value: "61%"}, {Type: "Total Shots", Value: 14}}},
		{TeamExternalID: 40, Statistics: []usecase.ExternalStatistic{{Type: "Ball Possession", Value: "39%"}}},
	}
}

func (p *fakeProvider) GetFixtureLineups(context.Context, int64) []usecase.ExternalLineup {
	return nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []usecase.NotificationEvent
}

func (p *recordingPublisher) Publish(_ context.Context, event usecase.NotificationEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) eventTypes() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, event := range p.events {
		out = append(out, event.EventType)
	}
	return out
}

type recordingBroadcaster struct {
	mu     sync.Mutex
	states []match.State
}

func (b *recordingBroadcaster) Broadcast(state match.State) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.states = append(b.states, state)
}

// flakyTxRunner fails the first failures transactions before delegating.
type flakyTxRunner struct {
	next     usecase.IngestionTxRunner
	mu       sync.Mutex
	failures int
	calls    int
}

func (r *flakyTxRunner) RunInTx(ctx context.Context, fn func(ctx context.Context, repos usecase.IngestionRepositories) error) error {
	r.mu.Lock()
	r.calls++
	fail := r.failures > 0
	if fail {
		r.failures--
	}
	r.mu.Unlock()
	if fail {
		return errors.New("deadlock detected")
	}
	return r.next.RunInTx(ctx, fn)
}

type pipelineFixture struct {
	store       *memory.Store
	provider    *fakeProvider
	publisher   *recordingPublisher
	broadcaster *recordingBroadcaster
	tx          *flakyTxRunner
	pipeline    *usecase.IngestionPipeline
}

func newPipelineFixture(t *testing.T) pipelineFixture {
	t.Helper()

	store := memory.NewStore()
	fx := pipelineFixture{
		store:       store,
		provider:    &fakeProvider{events: map[int64][]usecase.ExternalEvent{}},
		publisher:   &recordingPublisher{},
		broadcaster: &recordingBroadcaster{},
		tx:          &flakyTxRunner{next: memory.NewTxRunner(store)},
	}

	pipeline, err := usecase.NewIngestionPipeline(usecase.IngestionPipelineDeps{
		Provider:    fx.provider,
		TxRunner:    fx.tx,
		LeagueRepo:  memory.NewLeagueRepository(store),
		MatchRepo:   memory.NewMatchRepository(store),
		StateRepo:   memory.NewMatchStateRepository(store),
		EventRepo:   memory.NewMatchEventRepository(store),
		Publisher:   fx.publisher,
		Broadcaster: fx.broadcaster,
	}, usecase.IngestionConfig{
		Leagues:              []league.Target{{LeagueRefID: 39, Season: 2025}},
		BatchSize:            10,
		RetryMaxAttempts:     3,
		RetryInitialInterval: time.Millisecond,
		RetryMaxInterval:     2 * time.Millisecond,
	}, logging.NewNop())
	require.NoError(t, err)
	fx.pipeline = pipeline
	return fx
}

func fixture(id int64, status string, elapsed, home, away *int) usecase.ExternalFixture {
	capacity := 60704
	return usecase.ExternalFixture{
		ExternalID: id,
		League:     usecase.ExternalLeague{ExternalID: 39, Name: "Premier League", Country: "England", Season: 2025},
		HomeTeam:   usecase.ExternalTeam{ExternalID: 42, Name: "Arsenal"},
		AwayTeam:   usecase.ExternalTeam{ExternalID: 40, Name: "Liverpool"},
		Venue:      &usecase.ExternalVenue{ExternalID: 494, Name: "Emirates Stadium", City: "London", Capacity: &capacity},
		KickoffAt:  kickoff,
		StatusCode: status,
		Elapsed:    elapsed,
		HomeGoals:  home,
		AwayGoals:  away,
	}
}

func ptr(v int) *int {
	return &v
}

func TestIngestionPipeline_DailyFixturesAreIdempotent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	fx := newPipelineFixture(t)
	fx.provider.setFixtures(fixture(1001, "NS", nil, nil, nil))

	first, err := fx.pipeline.IngestDailyFixtures(ctx, kickoff)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Processed)
	assert.Equal(t, 1, first.Created)
	assert.Equal(t, 1, first.APICalls)

	second, err := fx.pipeline.IngestDailyFixtures(ctx, kickoff)
	require.NoError(t, err)
	assert.Equal(t, 1, second.Processed)
	assert.Zero(t, second.Created)
	assert.Zero(t, second.Updated)

	item, found, err := memory.NewMatchRepository(fx.store).GetByID(ctx, "1001")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "42", item.HomeTeamID)
	assert.Equal(t, "494", item.VenueID)
	assert.Equal(t, "1001", item.ExternalIDs[match.ProviderFootballAPI])

	team, found, err := memory.NewTeamRepository(fx.store).GetByID(ctx, "42")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "ARS", team.ShortName)

	// Not-started fixtures have no live state and publish nothing.
	_, found, err = memory.NewMatchStateRepository(fx.store).Get(ctx, "1001")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Empty(t, fx.publisher.eventTypes())

	last := fx.pipeline.LastMetrics()
	assert.Equal(t, 1, last[usecase.IngestOperationDaily].Processed)
}

func TestIngestionPipeline_KickoffUpdatesStateAndPublishes(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	fx := newPipelineFixture(t)
	fx.provider.setFixtures(fixture(1001, "NS", nil, nil, nil))
	_, err := fx.pipeline.IngestDailyFixtures(ctx, kickoff)
	require.NoError(t, err)

	fx.provider.setFixtures(fixture(1001, "1H", ptr(3), ptr(0), ptr(0)))
	metrics, err := fx.pipeline.IngestDailyFixtures(ctx, kickoff)
	require.NoError(t, err)
	assert.Equal(t, 1, metrics.Updated)

	state, found, err := memory.NewMatchStateRepository(fx.store).Get(ctx, "1001")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, match.PhaseFirstHalf, state.Phase)
	require.NotNil(t, state.Minute)
	assert.Equal(t, 3, *state.Minute)

	assert.Equal(t, []string{usecase.EventTypeMatchStart}, fx.publisher.eventTypes())
	require.NotEmpty(t, fx.broadcaster.states)
	assert.Equal(t, "1001", fx.broadcaster.states[len(fx.broadcaster.states)-1].MatchID)

	fx.provider.setFixtures(fixture(1001, "FT", ptr(90), ptr(2), ptr(1)))
	_, err = fx.pipeline.IngestDailyFixtures(ctx, kickoff)
	require.NoError(t, err)
	assert.Equal(t, []string{usecase.EventTypeMatchStart, usecase.EventTypeMatchEnd}, fx.publisher.eventTypes())

	state, found, err = memory.NewMatchStateRepository(fx.store).Get(ctx, "1001")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, match.PhaseFullTime, state.Phase)
	assert.Equal(t, 2, state.HomeScore)
	assert.Equal(t, 1, state.AwayScore)
	assert.Equal(t, match.PhaseFullTime, fx.broadcaster.states[len(fx.broadcaster.states)-1].Phase)

	// Finished matches are frozen.
	fx.provider.setFixtures(fixture(1001, "2H", ptr(70), ptr(0), ptr(0)))
	metrics, err = fx.pipeline.IngestDailyFixtures(ctx, kickoff)
	require.NoError(t, err)
	assert.Equal(t, 1, metrics.Skipped)

	item, _, err := memory.NewMatchRepository(fx.store).GetByID(ctx, "1001")
	require.NoError(t, err)
	assert.Equal(t, match.StatusFullTime, item.Status)
	require.NotNil(t, item.HomeScore)
	assert.Equal(t, 2, *item.HomeScore)
}

func TestIngestionPipeline_LiveFixturesUseStoredLeagues(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	fx := newPipelineFixture(t)
	fx.provider.live = []usecase.ExternalFixture{fixture(1001, "LIVE", ptr(50), ptr(1), ptr(0))}

	metrics, err := fx.pipeline.IngestLiveFixtures(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, metrics.Created)
	assert.Equal(t, [][]int64{{39}}, fx.provider.liveCalls)

	state, found, err := memory.NewMatchStateRepository(fx.store).Get(ctx, "1001")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, match.PhaseSecondHalf, state.Phase)
	assert.Equal(t, 1, state.HomeScore)
}

func TestIngestionPipeline_LivePassFinishesMatchesDroppedFromFeed(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	fx := newPipelineFixture(t)
	fx.provider.live = []usecase.ExternalFixture{fixture(1001, "2H", ptr(88), ptr(2), ptr(1))}
	_, err := fx.pipeline.IngestLiveFixtures(ctx)
	require.NoError(t, err)
	assert.Zero(t, fx.provider.dayCalls)

	// The finished fixture leaves the live feed and is only found by date.
	fx.provider.live = nil
	fx.provider.setFixtures(fixture(1001, "FT", ptr(90), ptr(2), ptr(1)))
	metrics, err := fx.pipeline.IngestLiveFixtures(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, metrics.Updated)
	assert.Equal(t, 2, metrics.APICalls)
	assert.Equal(t, 1, fx.provider.dayCalls)

	item, _, err := memory.NewMatchRepository(fx.store).GetByID(ctx, "1001")
	require.NoError(t, err)
	assert.Equal(t, match.StatusFullTime, item.Status)

	state, found, err := memory.NewMatchStateRepository(fx.store).Get(ctx, "1001")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, match.PhaseFullTime, state.Phase)
	// First seen mid-match, so only the end is announced.
	assert.Equal(t, []string{usecase.EventTypeMatchEnd}, fx.publisher.eventTypes())

	// Nothing is in play any more, so the next pass makes only the live call.
	metrics, err = fx.pipeline.IngestLiveFixtures(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, metrics.APICalls)
	assert.Equal(t, 1, fx.provider.dayCalls)

	events, err := fx.pipeline.IngestMatchEvents(ctx)
	require.NoError(t, err)
	assert.Zero(t, events.APICalls)
}

func TestIngestionPipeline_RetriesFailedBatchIndividually(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	fx := newPipelineFixture(t)
	fx.tx.failures = 2
	fx.provider.setFixtures(
		fixture(1001, "NS", nil, nil, nil),
		fixture(1002, "NS", nil, nil, nil),
	)

	metrics, err := fx.pipeline.IngestDailyFixtures(ctx, kickoff)
	require.NoError(t, err)
	assert.Equal(t, 2, metrics.Created)
	assert.Zero(t, metrics.Errors)
	// One failed batch, one failed retry, then one success per fixture.
	assert.Equal(t, 4, fx.tx.calls)

	for _, id := range []string{"1001", "1002"} {
		_, found, err := memory.NewMatchRepository(fx.store).GetByID(ctx, id)
		require.NoError(t, err)
		assert.True(t, found, id)
	}
}

func TestIngestionPipeline_CountsUnmappableFixtures(t *testing.T) {
	t.Parallel()

	fx := newPipelineFixture(t)
	broken := fixture(1003, "NS", nil, nil, nil)
	broken.AwayTeam = usecase.ExternalTeam{}
	fx.provider.setFixtures(broken, fixture(1001, "NS", nil, nil, nil))

	metrics, err := fx.pipeline.IngestDailyFixtures(context.Background(), kickoff)
	require.NoError(t, err)
	assert.Equal(t, 1, metrics.Errors)
	assert.Equal(t, 1, metrics.Created)
}

func TestIngestionPipeline_ProviderFailureIsNotFatal(t *testing.T) {
	t.Parallel()

	fx := newPipelineFixture(t)
	fx.provider.fetchErr = errors.New("rate limited")

	metrics, err := fx.pipeline.IngestDailyFixtures(context.Background(), kickoff)
	require.NoError(t, err)
	assert.Equal(t, 1, metrics.Errors)
	assert.Equal(t, 1, metrics.APICalls)
}

func TestIngestionPipeline_MatchEventsAreDeduplicated(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	fx := newPipelineFixture(t)
	fx.provider.setFixtures(fixture(1001, "1H", ptr(31), ptr(1), ptr(0)))
	_, err := fx.pipeline.IngestDailyFixtures(ctx, kickoff)
	require.NoError(t, err)

	fx.provider.events[1001] = []usecase.ExternalEvent{
		{Elapsed: 23, TeamExternalID: 42, PlayerName: "B. Saka", Type: "Goal", Detail: "Normal Goal"},
		{Elapsed: 30, TeamExternalID: 40, PlayerName: "V. van Dijk", Type: "Card", Detail: "Yellow Card"},
	}

	first, err := fx.pipeline.IngestMatchEvents(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, first.EventsInserted)
	assert.Zero(t, first.EventsSkipped)

	second, err := fx.pipeline.IngestMatchEvents(ctx)
	require.NoError(t, err)
	assert.Zero(t, second.EventsInserted)
	assert.Equal(t, 2, second.EventsSkipped)

	events, err := memory.NewMatchEventRepository(fx.store).ListByMatch(ctx, "1001")
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "1001-23-GOAL-42", events[0].ProviderEventID)
	assert.Equal(t, kickoff.Add(23*time.Minute), events[0].OccurredAt)

	state, _, err := memory.NewMatchStateRepository(fx.store).Get(ctx, "1001")
	require.NoError(t, err)
	assert.Equal(t, "1001-30-CARD-40", state.LastEventID)

	// Kickoff plus one event notification per inserted event.
	assert.Equal(t, []string{usecase.EventTypeMatchStart, "GOAL", "CARD"}, fx.publisher.eventTypes())
}

func TestIngestionPipeline_FetchMatchDetail(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	fx := newPipelineFixture(t)
	fx.provider.setFixtures(fixture(1001, "2H", ptr(60), ptr(1), ptr(1)))
	_, err := fx.pipeline.IngestDailyFixtures(ctx, kickoff)
	require.NoError(t, err)

	detail, err := fx.pipeline.FetchMatchDetail(ctx, "1001")
	require.NoError(t, err)
	assert.Equal(t, "1001", detail.Match.ID)
	require.NotNil(t, detail.State)
	assert.Equal(t, match.PhaseSecondHalf, detail.State.Phase)
	assert.Equal(t, 61.0, detail.Statistics.Home["ball_possession"])
	assert.Equal(t, 14.0, detail.Statistics.Home["total_shots"])
	assert.Equal(t, 39.0, detail.Statistics.Away["ball_possession"])
	assert.Empty(t, detail.Lineups)

	_, err = fx.pipeline.FetchMatchDetail(ctx, "missing")
	require.ErrorIs(t, err, usecase.ErrNotFound)
}

func TestIngestionPipeline_IngestLeagueFixtures(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	fx := newPipelineFixture(t)
	fx.provider.setFixtures(fixture(1001, "NS", nil, nil, nil))

	metrics, err := fx.pipeline.IngestLeagueFixtures(ctx, "39", kickoff)
	require.NoError(t, err)
	assert.Equal(t, usecase.IngestOperationLeague, metrics.Operation)
	assert.Equal(t, 1, metrics.Created)

	_, err = fx.pipeline.IngestLeagueFixtures(ctx, "unknown-league", kickoff)
	require.ErrorIs(t, err, usecase.ErrNotFound)
}
