package usecase

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/riskibarqy/matchday/internal/domain/follow"
	"github.com/riskibarqy/matchday/internal/domain/league"
	"github.com/riskibarqy/matchday/internal/domain/match"
	"github.com/riskibarqy/matchday/internal/domain/matchevent"
	"github.com/riskibarqy/matchday/internal/domain/team"
	"github.com/riskibarqy/matchday/internal/domain/venue"
	"github.com/riskibarqy/matchday/internal/platform/logging"
)

const (
	IngestOperationDaily  = "daily_fixtures"
	IngestOperationLive   = "live_fixtures"
	IngestOperationEvents = "match_events"
	IngestOperationLeague = "league_fixtures"
)

// IngestionRepositories are bound to a single transaction by an IngestionTxRunner.
type IngestionRepositories struct {
	Leagues     league.Repository
	Teams       team.Repository
	Venues      venue.Repository
	Matches     match.Repository
	MatchStates match.StateRepository
}

// IngestionTxRunner commits everything fn writes through repos atomically, or nothing.
type IngestionTxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context, repos IngestionRepositories) error) error
}

type MatchEventPublisher interface {
	Publish(ctx context.Context, event NotificationEvent) error
}

type LiveStateBroadcaster interface {
	Broadcast(state match.State)
}

type VenueEnricher interface {
	EnrichVenue(ctx context.Context, item venue.Venue) error
}

type IngestionConfig struct {
	Leagues              []league.Target
	BatchSize            int
	LeagueDelay          time.Duration
	MatchDelay           time.Duration
	RetryMaxAttempts     int
	RetryInitialInterval time.Duration
	RetryMaxInterval     time.Duration
}

func (c IngestionConfig) Validate() error {
	if c.BatchSize <= 0 {
		return fmt.Errorf("%w: ingestion batch size must be > 0", ErrInvalidInput)
	}
	if c.RetryMaxAttempts <= 0 {
		return fmt.Errorf("%w: ingestion retry max attempts must be > 0", ErrInvalidInput)
	}
	if c.LeagueDelay < 0 || c.MatchDelay < 0 {
		return fmt.Errorf("%w: ingestion delays must be >= 0", ErrInvalidInput)
	}
	return nil
}

type IngestionMetrics struct {
	Operation      string    `json:"operation"`
	Processed      int       `json:"processed"`
	Created        int       `json:"created"`
	Updated        int       `json:"updated"`
	Skipped        int       `json:"skipped"`
	Errors         int       `json:"errors"`
	APICalls       int       `json:"apiCalls"`
	EventsInserted int       `json:"eventsInserted,omitempty"`
	EventsSkipped  int       `json:"eventsSkipped,omitempty"`
	DurationMs     int64     `json:"durationMs"`
	StartedAt      time.Time `json:"startedAt"`
}

type MatchDetail struct {
	Match      match.Match        `json:"match"`
	State      *match.State       `json:"state,omitempty"`
	Events     []matchevent.Event `json:"events"`
	Statistics MatchStatistics    `json:"statistics"`
	Lineups    []MatchLineup      `json:"lineups"`
}

type IngestionPipelineDeps struct {
	Provider    FootballDataProvider
	TxRunner    IngestionTxRunner
	LeagueRepo  league.Repository
	MatchRepo   match.Repository
	StateRepo   match.StateRepository
	EventRepo   matchevent.Repository
	Enricher    VenueEnricher
	Publisher   MatchEventPublisher
	Broadcaster LiveStateBroadcaster
}

type IngestionPipeline struct {
	provider    FootballDataProvider
	txRunner    IngestionTxRunner
	leagueRepo  league.Repository
	matchRepo   match.Repository
	stateRepo   match.StateRepository
	eventRepo   matchevent.Repository
	enricher    VenueEnricher
	publisher   MatchEventPublisher
	broadcaster LiveStateBroadcaster
	cfg         IngestionConfig
	logger      *logging.Logger
	now         func() time.Time
	sleep       func(ctx context.Context, d time.Duration) error

	mu   sync.RWMutex
	last map[string]IngestionMetrics
}

func NewIngestionPipeline(deps IngestionPipelineDeps, cfg IngestionConfig, logger *logging.Logger) (*IngestionPipeline, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if deps.Provider == nil || deps.TxRunner == nil || deps.LeagueRepo == nil ||
		deps.MatchRepo == nil || deps.StateRepo == nil || deps.EventRepo == nil {
		return nil, fmt.Errorf("%w: ingestion pipeline dependencies are incomplete", ErrInvalidInput)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.RetryInitialInterval <= 0 {
		cfg.RetryInitialInterval = 500 * time.Millisecond
	}
	if cfg.RetryMaxInterval < cfg.RetryInitialInterval {
		cfg.RetryMaxInterval = cfg.RetryInitialInterval
	}

	return &IngestionPipeline{
		provider:    deps.Provider,
		txRunner:    deps.TxRunner,
		leagueRepo:  deps.LeagueRepo,
		matchRepo:   deps.MatchRepo,
		stateRepo:   deps.StateRepo,
		eventRepo:   deps.EventRepo,
		enricher:    deps.Enricher,
		publisher:   deps.Publisher,
		broadcaster: deps.Broadcaster,
		cfg:         cfg,
		logger:      logger,
		now:         time.Now,
		sleep:       sleepContext,
		last:        make(map[string]IngestionMetrics),
	}, nil
}

// IngestDailyFixtures walks every configured league sequentially. A failing league is
// logged and counted, never fatal.
func (p *IngestionPipeline) IngestDailyFixtures(ctx context.Context, date time.Time) (metrics IngestionMetrics, err error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.IngestionPipeline.IngestDailyFixtures")
	defer span.End()

	metrics = p.startMetrics(IngestOperationDaily)
	defer p.finishMetrics(&metrics)

	if len(p.cfg.Leagues) == 0 {
		p.logger.WarnContext(ctx, "daily fixture ingestion skipped", "error", ErrNoTargetLeagues)
		return metrics, nil
	}

	for idx, target := range p.cfg.Leagues {
		if idx > 0 {
			if err := p.sleep(ctx, p.cfg.LeagueDelay); err != nil {
				return metrics, err
			}
		}

		fixtures, err := p.provider.GetFixtures(ctx, date, target.LeagueRefID, target.Season)
		metrics.APICalls++
		if err != nil {
			metrics.Errors++
			p.logger.WarnContext(ctx, "fetch daily fixtures failed",
				"league_ref_id", target.LeagueRefID,
				"season", target.Season,
				"date", date.Format(time.DateOnly),
				"error", err,
			)
			continue
		}

		p.processFixtures(ctx, fixtures, target.Season, false, &metrics)
	}

	p.logger.InfoContext(ctx, "daily fixture ingestion finished",
		"date", date.Format(time.DateOnly),
		"processed", metrics.Processed,
		"created", metrics.Created,
		"updated", metrics.Updated,
		"errors", metrics.Errors,
	)
	return metrics, nil
}

// IngestLeagueFixtures re-syncs one league for one date.
func (p *IngestionPipeline) IngestLeagueFixtures(ctx context.Context, leagueID string, date time.Time) (metrics IngestionMetrics, err error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.IngestionPipeline.IngestLeagueFixtures")
	defer span.End()

	leagueID = strings.TrimSpace(leagueID)
	if leagueID == "" {
		return IngestionMetrics{}, fmt.Errorf("%w: league id is required", ErrInvalidInput)
	}
	if date.IsZero() {
		return IngestionMetrics{}, fmt.Errorf("%w: date is required", ErrInvalidInput)
	}

	target, err := p.resolveLeagueTarget(ctx, leagueID)
	if err != nil {
		return IngestionMetrics{}, err
	}

	metrics = p.startMetrics(IngestOperationLeague)
	defer p.finishMetrics(&metrics)

	fixtures, err := p.provider.GetFixtures(ctx, date, target.LeagueRefID, target.Season)
	metrics.APICalls++
	if err != nil {
		metrics.Errors++
		p.logger.WarnContext(ctx, "fetch league fixtures failed", "league_id", leagueID, "error", err)
		return metrics, nil
	}

	p.processFixtures(ctx, fixtures, target.Season, false, &metrics)
	return metrics, nil
}

// IngestLiveFixtures refreshes every in-play fixture of the stored leagues in one provider call.
func (p *IngestionPipeline) IngestLiveFixtures(ctx context.Context) (metrics IngestionMetrics, err error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.IngestionPipeline.IngestLiveFixtures")
	defer span.End()

	metrics = p.startMetrics(IngestOperationLive)
	defer p.finishMetrics(&metrics)

	targets, err := p.liveTargets(ctx)
	if err != nil {
		return metrics, err
	}
	if len(targets) == 0 {
		p.logger.WarnContext(ctx, "live fixture ingestion skipped", "error", ErrNoTargetLeagues)
		return metrics, nil
	}

	refIDs := make([]int64, 0, len(targets))
	seasonByRef := make(map[int64]int, len(targets))
	for _, target := range targets {
		refIDs = append(refIDs, target.LeagueRefID)
		seasonByRef[target.LeagueRefID] = target.Season
	}

	fixtures, err := p.provider.GetLiveFixtures(ctx, refIDs)
	metrics.APICalls++
	if err != nil {
		metrics.Errors++
		p.logger.WarnContext(ctx, "fetch live fixtures failed", "league_count", len(refIDs), "error", err)
		return metrics, nil
	}

	bySeason := make(map[int][]ExternalFixture)
	returned := make(map[int64]struct{}, len(fixtures))
	for _, item := range fixtures {
		season := seasonByRef[item.League.ExternalID]
		bySeason[season] = append(bySeason[season], item)
		returned[item.ExternalID] = struct{}{}
	}
	for season, items := range bySeason {
		p.processFixtures(ctx, items, season, true, &metrics)
	}

	p.reconcileDroppedLive(ctx, returned, &metrics)
	return metrics, nil
}

// reconcileDroppedLive re-fetches stored in-play matches that are missing from the live
// feed. The provider drops a fixture from that feed once it finishes, so this is where
// the terminal status and MATCH_END come from between daily passes.
func (p *IngestionPipeline) reconcileDroppedLive(ctx context.Context, returned map[int64]struct{}, metrics *IngestionMetrics) {
	stored, err := p.matchRepo.ListByStatuses(ctx, match.EventPollingStatuses())
	if err != nil {
		metrics.Errors++
		p.logger.WarnContext(ctx, "list in-play matches failed", "error", err)
		return
	}

	type fetchKey struct {
		leagueID string
		day      time.Time
	}
	var order []fetchKey
	wanted := make(map[fetchKey]map[int64]struct{})
	for _, item := range stored {
		refID, err := matchRefID(item)
		if err != nil {
			continue
		}
		if _, ok := returned[refID]; ok {
			continue
		}
		start := item.StartTime.UTC()
		key := fetchKey{leagueID: item.LeagueID, day: time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)}
		if _, ok := wanted[key]; !ok {
			wanted[key] = make(map[int64]struct{})
			order = append(order, key)
		}
		wanted[key][refID] = struct{}{}
	}

	for _, key := range order {
		target, err := p.resolveLeagueTarget(ctx, key.leagueID)
		if err != nil {
			metrics.Errors++
			p.logger.WarnContext(ctx, "resolve league for dropped live match failed", "league_id", key.leagueID, "error", err)
			continue
		}
		fixtures, err := p.provider.GetFixtures(ctx, key.day, target.LeagueRefID, target.Season)
		metrics.APICalls++
		if err != nil {
			metrics.Errors++
			p.logger.WarnContext(ctx, "refetch dropped live matches failed", "league_id", key.leagueID, "error", err)
			continue
		}

		refetched := make([]ExternalFixture, 0, len(wanted[key]))
		for _, item := range fixtures {
			if _, ok := wanted[key][item.ExternalID]; ok {
				refetched = append(refetched, item)
			}
		}
		if len(refetched) > 0 {
			p.processFixtures(ctx, refetched, target.Season, false, metrics)
		}
	}
}

// IngestMatchEvents pulls the timeline of every in-play match and stores unseen events.
func (p *IngestionPipeline) IngestMatchEvents(ctx context.Context) (metrics IngestionMetrics, err error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.IngestionPipeline.IngestMatchEvents")
	defer span.End()

	metrics = p.startMetrics(IngestOperationEvents)
	defer p.finishMetrics(&metrics)

	matches, err := p.matchRepo.ListByStatuses(ctx, match.EventPollingStatuses())
	if err != nil {
		return metrics, fmt.Errorf("list live matches: %w", err)
	}

	for idx, item := range matches {
		if idx > 0 {
			if err := p.sleep(ctx, p.cfg.MatchDelay); err != nil {
				return metrics, err
			}
		}
		p.ingestEventsForMatch(ctx, item, &metrics)
	}

	return metrics, nil
}

func (p *IngestionPipeline) ingestEventsForMatch(ctx context.Context, item match.Match, metrics *IngestionMetrics) {
	refID, err := matchRefID(item)
	if err != nil {
		metrics.Errors++
		p.logger.WarnContext(ctx, "resolve match provider id failed", "match_id", item.ID, "error", err)
		return
	}

	events, err := p.provider.GetFixtureEvents(ctx, refID)
	metrics.APICalls++
	if err != nil {
		metrics.Errors++
		p.logger.WarnContext(ctx, "fetch match events failed", "match_id", item.ID, "error", err)
		return
	}
	if len(events) == 0 {
		return
	}

	seen, err := p.eventRepo.ListProviderEventIDs(ctx, item.ID)
	if err != nil {
		metrics.Errors++
		p.logger.WarnContext(ctx, "list stored match events failed", "match_id", item.ID, "error", err)
		return
	}

	lastEventID := ""
	for _, raw := range events {
		event := MapEventToMatchEvent(item.ID, item.StartTime, raw)
		metrics.Processed++
		if _, ok := seen[event.ProviderEventID]; ok {
			metrics.EventsSkipped++
			continue
		}
		if err := event.Validate(); err != nil {
			metrics.Errors++
			p.logger.WarnContext(ctx, "skip invalid match event", "match_id", item.ID, "error", err)
			continue
		}

		event.CreatedAt = p.now().UTC()
		if err := p.eventRepo.Insert(ctx, event); err != nil {
			if errors.Is(err, matchevent.ErrDuplicate) {
				seen[event.ProviderEventID] = struct{}{}
				metrics.EventsSkipped++
				continue
			}
			metrics.Errors++
			p.logger.WarnContext(ctx, "insert match event failed",
				"match_id", item.ID,
				"provider_event_id", event.ProviderEventID,
				"error", err,
			)
			continue
		}

		seen[event.ProviderEventID] = struct{}{}
		metrics.EventsInserted++
		lastEventID = event.ProviderEventID
		p.publish(ctx, notificationEventFromMatchEvent(item, event))
	}

	if lastEventID != "" {
		p.recordLastEvent(ctx, item, lastEventID)
	}
}

func (p *IngestionPipeline) recordLastEvent(ctx context.Context, item match.Match, lastEventID string) {
	state, found, err := p.stateRepo.Get(ctx, item.ID)
	if err != nil {
		p.logger.WarnContext(ctx, "load match state failed", "match_id", item.ID, "error", err)
		return
	}
	if !found {
		state = match.StateFromMatch(item, p.now().UTC())
	}
	state.LastEventID = lastEventID
	state.UpdatedAt = p.now().UTC()
	if err := p.stateRepo.Upsert(ctx, state); err != nil {
		p.logger.WarnContext(ctx, "update match state last event failed", "match_id", item.ID, "error", err)
		return
	}
	p.broadcast(state)
}

// FetchMatchDetail returns the stored match with its timeline plus auxiliary provider
// data. Missing statistics or lineups never fail the call.
func (p *IngestionPipeline) FetchMatchDetail(ctx context.Context, matchID string) (MatchDetail, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.IngestionPipeline.FetchMatchDetail")
	defer span.End()

	matchID = strings.TrimSpace(matchID)
	if matchID == "" {
		return MatchDetail{}, fmt.Errorf("%w: match id is required", ErrInvalidInput)
	}

	item, found, err := p.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		return MatchDetail{}, fmt.Errorf("get match: %w", err)
	}
	if !found {
		return MatchDetail{}, fmt.Errorf("%w: match=%s", ErrNotFound, matchID)
	}

	detail := MatchDetail{
		Match:      item,
		Statistics: MatchStatistics{Home: map[string]float64{}, Away: map[string]float64{}},
		Lineups:    []MatchLineup{},
	}
	if state, ok, err := p.stateRepo.Get(ctx, matchID); err != nil {
		p.logger.WarnContext(ctx, "load match state failed", "match_id", matchID, "error", err)
	} else if ok {
		detail.State = &state
	}

	events, err := p.eventRepo.ListByMatch(ctx, matchID)
	if err != nil {
		return MatchDetail{}, fmt.Errorf("list match events: %w", err)
	}
	detail.Events = events

	refID, err := matchRefID(item)
	if err != nil {
		return detail, nil
	}
	homeRef, _ := strconv.ParseInt(item.HomeTeamID, 10, 64)
	awayRef, _ := strconv.ParseInt(item.AwayTeamID, 10, 64)
	detail.Statistics = AggregateStatistics(p.provider.GetFixtureStatistics(ctx, refID), homeRef, awayRef)
	detail.Lineups = MapLineups(p.provider.GetFixtureLineups(ctx, refID))

	return detail, nil
}

// LastMetrics returns the most recent metrics per ingestion operation.
func (p *IngestionPipeline) LastMetrics() map[string]IngestionMetrics {
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := make(map[string]IngestionMetrics, len(p.last))
	for key, value := range p.last {
		out[key] = value
	}
	return out
}

type fixtureOutcome struct {
	matchID    string
	created    bool
	updated    bool
	skipped    bool
	prevStatus match.Status
	match      match.Match
	newVenue   *venue.Venue
	state      *match.State
}

func (p *IngestionPipeline) processFixtures(ctx context.Context, items []ExternalFixture, fallbackSeason int, live bool, metrics *IngestionMetrics) {
	mapped := make([]MappedFixture, 0, len(items))
	for _, item := range items {
		fixture, err := MapFixtureToMatch(item, fallbackSeason)
		if err != nil {
			metrics.Errors++
			p.logger.WarnContext(ctx, "skip unmappable fixture", "fixture_ref_id", item.ExternalID, "error", err)
			continue
		}
		mapped = append(mapped, fixture)
	}

	for start := 0; start < len(mapped); start += p.cfg.BatchSize {
		end := start + p.cfg.BatchSize
		if end > len(mapped) {
			end = len(mapped)
		}
		batch := mapped[start:end]

		outcomes := make([]fixtureOutcome, 0, len(batch))
		err := p.txRunner.RunInTx(ctx, func(ctx context.Context, repos IngestionRepositories) error {
			outcomes = outcomes[:0]
			for _, fixture := range batch {
				outcome, err := p.upsertFixture(ctx, repos, fixture, live)
				if err != nil {
					return fmt.Errorf("fixture %s: %w", fixture.Match.ID, err)
				}
				outcomes = append(outcomes, outcome)
			}
			return nil
		})
		if err == nil {
			for _, outcome := range outcomes {
				p.applyOutcome(ctx, outcome, metrics)
			}
			continue
		}

		p.logger.WarnContext(ctx, "fixture batch failed, retrying individually",
			"batch_size", len(batch),
			"error", err,
		)
		for _, fixture := range batch {
			outcome, retryErr := p.upsertWithRetry(ctx, fixture, live)
			if retryErr != nil {
				metrics.Errors++
				p.logger.ErrorContext(ctx, "fixture upsert failed permanently",
					"match_id", fixture.Match.ID,
					"error", retryErr,
				)
				continue
			}
			p.applyOutcome(ctx, outcome, metrics)
		}
	}
}

func (p *IngestionPipeline) upsertWithRetry(ctx context.Context, fixture MappedFixture, live bool) (fixtureOutcome, error) {
	expo := backoff.NewExponentialBackOff()
	expo.InitialInterval = p.cfg.RetryInitialInterval
	expo.MaxInterval = p.cfg.RetryMaxInterval

	operation := func() (fixtureOutcome, error) {
		var outcome fixtureOutcome
		err := p.txRunner.RunInTx(ctx, func(ctx context.Context, repos IngestionRepositories) error {
			var upsertErr error
			outcome, upsertErr = p.upsertFixture(ctx, repos, fixture, live)
			return upsertErr
		})
		if errors.Is(err, ErrInvalidInput) {
			return outcome, backoff.Permanent(err)
		}
		return outcome, err
	}

	return backoff.Retry(ctx, operation,
		backoff.WithBackOff(expo),
		backoff.WithMaxTries(uint(p.cfg.RetryMaxAttempts)),
	)
}

// upsertFixture runs inside the batch transaction: league, teams and venue are ensured in
// the same transaction as the match they support.
func (p *IngestionPipeline) upsertFixture(ctx context.Context, repos IngestionRepositories, fixture MappedFixture, live bool) (fixtureOutcome, error) {
	incoming := fixture.Match
	outcome := fixtureOutcome{matchID: incoming.ID}
	now := p.now().UTC()

	existing, found, err := repos.Matches.GetByID(ctx, incoming.ID)
	if err != nil {
		return outcome, fmt.Errorf("get match by id: %w", err)
	}
	if !found {
		existing, found, err = repos.Matches.GetByExternalID(ctx, match.ProviderFootballAPI, incoming.ExternalIDs[match.ProviderFootballAPI])
		if err != nil {
			return outcome, fmt.Errorf("get match by external id: %w", err)
		}
	}

	if found && existing.Status.IsTerminal() {
		outcome.skipped = true
		outcome.matchID = existing.ID
		return outcome, nil
	}

	newVenue, err := ensureVenue(ctx, repos.Venues, fixture.Venue)
	if err != nil {
		return outcome, err
	}
	outcome.newVenue = newVenue

	var current match.Match
	if found {
		outcome.matchID = existing.ID
		outcome.prevStatus = existing.Status
		current = existing
		if current.MergeFrom(incoming) {
			current.UpdatedAt = now
			if err := repos.Matches.Update(ctx, current); err != nil {
				return outcome, fmt.Errorf("update match: %w", err)
			}
			outcome.updated = true
		}
	} else {
		if err := ensureLeague(ctx, repos.Leagues, fixture.League); err != nil {
			return outcome, err
		}
		if err := ensureTeam(ctx, repos.Teams, fixture.Home); err != nil {
			return outcome, err
		}
		if err := ensureTeam(ctx, repos.Teams, fixture.Away); err != nil {
			return outcome, err
		}
		if err := incoming.Validate(); err != nil {
			return outcome, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		current = incoming
		current.CreatedAt = now
		current.UpdatedAt = now
		if err := repos.Matches.Create(ctx, current); err != nil {
			return outcome, fmt.Errorf("create match: %w", err)
		}
		outcome.created = true
	}
	outcome.match = current

	// A match that was ever live keeps its state current, so the final whistle lands in it.
	previous, hasState, err := repos.MatchStates.Get(ctx, current.ID)
	if err != nil {
		return outcome, fmt.Errorf("get match state: %w", err)
	}
	if live || hasState || current.Status.IsLive() || outcome.prevStatus.IsLive() {
		state := match.StateFromMatch(current, now)
		if hasState {
			state.LastEventID = previous.LastEventID
		}
		if err := repos.MatchStates.Upsert(ctx, state); err != nil {
			return outcome, fmt.Errorf("upsert match state: %w", err)
		}
		outcome.state = &state
	}

	return outcome, nil
}

func ensureLeague(ctx context.Context, repo league.Repository, item league.League) error {
	_, found, err := repo.GetByID(ctx, item.ID)
	if err != nil {
		return fmt.Errorf("get league: %w", err)
	}
	if found {
		return nil
	}
	if err := item.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := repo.Upsert(ctx, item); err != nil {
		return fmt.Errorf("create league: %w", err)
	}
	return nil
}

func ensureTeam(ctx context.Context, repo team.Repository, item team.Team) error {
	_, found, err := repo.GetByID(ctx, item.ID)
	if err != nil {
		return fmt.Errorf("get team: %w", err)
	}
	if found {
		return nil
	}
	if err := item.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := repo.Create(ctx, item); err != nil {
		return fmt.Errorf("create team: %w", err)
	}
	return nil
}

// ensureVenue returns the venue when it was created by this call.
func ensureVenue(ctx context.Context, repo venue.Repository, item *venue.Venue) (*venue.Venue, error) {
	if item == nil {
		return nil, nil
	}
	_, found, err := repo.GetByID(ctx, item.ID)
	if err != nil {
		return nil, fmt.Errorf("get venue: %w", err)
	}
	if found {
		return nil, nil
	}
	if err := item.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := repo.Create(ctx, *item); err != nil {
		return nil, fmt.Errorf("create venue: %w", err)
	}
	created := *item
	return &created, nil
}

// applyOutcome runs after commit: counters, enrichment, broadcasts and lifecycle events.
func (p *IngestionPipeline) applyOutcome(ctx context.Context, outcome fixtureOutcome, metrics *IngestionMetrics) {
	metrics.Processed++
	switch {
	case outcome.skipped:
		metrics.Skipped++
		return
	case outcome.created:
		metrics.Created++
	case outcome.updated:
		metrics.Updated++
	}

	if outcome.newVenue != nil && p.enricher != nil {
		if err := p.enricher.EnrichVenue(ctx, *outcome.newVenue); err != nil {
			p.logger.WarnContext(ctx, "venue enrichment failed", "venue_id", outcome.newVenue.ID, "error", err)
		}
	}
	if outcome.state != nil {
		p.broadcast(*outcome.state)
	}

	current := outcome.match
	switch {
	case outcome.created && current.Status == match.StatusFirstHalf:
		p.publish(ctx, lifecycleEvent(current, EventTypeMatchStart))
	case outcome.updated && current.Status.IsLive() && !outcome.prevStatus.IsLive():
		p.publish(ctx, lifecycleEvent(current, EventTypeMatchStart))
	case outcome.updated && current.Status.IsTerminal() && outcome.prevStatus.IsLive():
		p.publish(ctx, lifecycleEvent(current, EventTypeMatchEnd))
	}
}

func (p *IngestionPipeline) publish(ctx context.Context, event NotificationEvent) {
	if p.publisher == nil {
		return
	}
	if err := p.publisher.Publish(ctx, event); err != nil {
		p.logger.WarnContext(ctx, "publish notification event failed",
			"entity_type", event.EntityType,
			"entity_id", event.EntityID,
			"event_type", event.EventType,
			"error", err,
		)
	}
}

func (p *IngestionPipeline) broadcast(state match.State) {
	if p.broadcaster == nil {
		return
	}
	p.broadcaster.Broadcast(state)
}

func (p *IngestionPipeline) liveTargets(ctx context.Context) ([]league.Target, error) {
	leagues, err := p.leagueRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list leagues: %w", err)
	}
	if len(leagues) == 0 {
		return p.cfg.Leagues, nil
	}

	out := make([]league.Target, 0, len(leagues))
	for _, item := range leagues {
		if item.LeagueRefID <= 0 {
			continue
		}
		out = append(out, league.Target{LeagueRefID: item.LeagueRefID, Season: item.Season})
	}
	return out, nil
}

func (p *IngestionPipeline) resolveLeagueTarget(ctx context.Context, leagueID string) (league.Target, error) {
	item, found, err := p.leagueRepo.GetByID(ctx, leagueID)
	if err != nil {
		return league.Target{}, fmt.Errorf("get league: %w", err)
	}
	if found && item.LeagueRefID > 0 {
		return league.Target{LeagueRefID: item.LeagueRefID, Season: item.Season}, nil
	}
	for _, target := range p.cfg.Leagues {
		if strconv.FormatInt(target.LeagueRefID, 10) == leagueID {
			return target, nil
		}
	}
	return league.Target{}, fmt.Errorf("%w: league=%s", ErrNotFound, leagueID)
}

func (p *IngestionPipeline) startMetrics(operation string) IngestionMetrics {
	return IngestionMetrics{Operation: operation, StartedAt: p.now().UTC()}
}

func (p *IngestionPipeline) finishMetrics(metrics *IngestionMetrics) {
	metrics.DurationMs = p.now().UTC().Sub(metrics.StartedAt).Milliseconds()
	p.mu.Lock()
	p.last[metrics.Operation] = *metrics
	p.mu.Unlock()
}

func matchRefID(item match.Match) (int64, error) {
	raw := strings.TrimSpace(item.ExternalIDs[match.ProviderFootballAPI])
	if raw == "" {
		raw = item.ID
	}
	refID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || refID <= 0 {
		return 0, fmt.Errorf("%w: match %s has no numeric provider id", ErrInvalidInput, item.ID)
	}
	return refID, nil
}

func notificationEventFromMatchEvent(item match.Match, event matchevent.Event) NotificationEvent {
	data := map[string]any{
		"match_id":          item.ID,
		"provider_event_id": event.ProviderEventID,
		"elapsed":           event.Elapsed,
		"detail":            event.Detail,
		"player_name":       event.PlayerName,
		"team_id":           event.TeamID,
	}
	related := []EntityRef{
		{Type: follow.EntityMatch, ID: item.ID},
		{Type: follow.EntityLeague, ID: item.LeagueID},
	}

	entityType := follow.EntityTeam
	entityID := event.TeamID
	if entityID == "" {
		entityType = follow.EntityMatch
		entityID = item.ID
	}
	return NotificationEvent{
		EntityType: entityType,
		EntityID:   entityID,
		EventType:  event.Type,
		EventData:  data,
		Related:    related,
	}
}

func lifecycleEvent(item match.Match, eventType string) NotificationEvent {
	return NotificationEvent{
		EntityType: follow.EntityMatch,
		EntityID:   item.ID,
		EventType:  eventType,
		EventData: map[string]any{
			"match_id": item.ID,
			"status":   string(item.Status),
		},
		Related: []EntityRef{
			{Type: follow.EntityTeam, ID: item.HomeTeamID},
			{Type: follow.EntityTeam, ID: item.AwayTeamID},
			{Type: follow.EntityLeague, ID: item.LeagueID},
		},
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
