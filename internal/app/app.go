package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/riskibarqy/matchday/external/eventbus"
	"github.com/riskibarqy/matchday/external/footballapi"
	"github.com/riskibarqy/matchday/external/places"
	"github.com/riskibarqy/matchday/external/push"
	"github.com/riskibarqy/matchday/internal/config"
	"github.com/riskibarqy/matchday/internal/interfaces/httpapi"
	"github.com/riskibarqy/matchday/internal/interfaces/livefeed"
	idgen "github.com/riskibarqy/matchday/internal/platform/id"
	"github.com/riskibarqy/matchday/internal/platform/logging"
	"github.com/riskibarqy/matchday/internal/platform/resilience"
	"github.com/riskibarqy/matchday/internal/platform/scheduler"
	"github.com/riskibarqy/matchday/internal/usecase"
	"github.com/sourcegraph/conc"
)

// App owns the HTTP server, the job scheduler and the optional event bus consumer.
type App struct {
	cfg       config.Config
	logger    *logging.Logger
	server    *http.Server
	scheduler *scheduler.Scheduler
	hub       *livefeed.Hub
	consumer  *eventbus.Consumer
	publisher *eventbus.Publisher
	repos     *repositories
}

func New(ctx context.Context, cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}

	repos, err := buildRepositories(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	a := &App{cfg: cfg, logger: logger, repos: repos}
	if err := a.wire(); err != nil {
		_ = repos.close()
		return nil, err
	}
	return a, nil
}

func (a *App) wire() error {
	cfg, logger, repos := a.cfg, a.logger, a.repos
	ids := idgen.NewUUIDGenerator()

	var sender usecase.NotificationSender
	if cfg.PushEnabled {
		pushSender, err := push.NewSender(push.SenderConfig{
			BaseURL:     cfg.PushBaseURL,
			ProjectID:   cfg.PushProjectID,
			AccessToken: cfg.PushAccessToken,
			Timeout:     cfg.PushTimeout,
			Concurrency: cfg.PushFanoutWorkers,
			Logger:      logger.Named("push"),
		})
		if err != nil {
			return fmt.Errorf("build push sender: %w", err)
		}
		sender = pushSender
	} else {
		logger.Warn("push delivery disabled, notifications are logged only")
	}

	dispatcher := usecase.NewNotificationDispatcher(repos.tokens, repos.logs, sender, ids, usecase.DispatcherConfig{
		MulticastLimit:   usecase.MulticastLimit,
		AndroidChannelID: cfg.PushAndroidChannelID,
		WebIcon:          cfg.PushWebIcon,
	}, logger.Named("dispatcher"))
	deviceTokens := usecase.NewDeviceTokenService(repos.tokens, ids, logger)
	follows := usecase.NewFollowService(
		repos.follows,
		repos.cachedUsers,
		repos.cachedTeams,
		repos.cachedLeagues,
		repos.matches,
		dispatcher,
		ids,
		usecase.FollowConfig{
			MaxTeams:        cfg.FollowMaxTeams,
			MaxLeagues:      cfg.FollowMaxLeagues,
			MaxMatches:      cfg.FollowMaxMatches,
			FanoutBatchSize: cfg.PushFanoutBatchSize,
			FanoutWorkers:   cfg.PushFanoutWorkers,
		},
		logger.Named("fanout"),
	)

	var finder usecase.PlaceFinder
	if cfg.PlacesEnabled {
		finder = places.NewClient(places.ClientConfig{
			BaseURL:  cfg.PlacesBaseURL,
			APIKey:   cfg.PlacesAPIKey,
			Timeout:  cfg.PlacesTimeout,
			CacheTTL: cfg.PlacesCacheTTL,
			Logger:   logger,
		})
	}
	guides := usecase.NewStadiumGuideService(repos.cachedVenues, repos.guides, finder, 4, logger)

	var broadcasters liveStateFanout
	if cfg.LiveFeedEnabled {
		a.hub = livefeed.NewHub(cfg.CORSAllowedOrigins, logger.Named("livefeed"))
		broadcasters = append(broadcasters, a.hub)
	}

	var publisher usecase.MatchEventPublisher
	if cfg.EventBusEnabled {
		busCfg := eventbus.Config{URL: cfg.EventBusURL, Exchange: cfg.EventBusExchange, Queue: cfg.EventBusQueue}
		busPublisher, err := eventbus.NewPublisher(busCfg, logger)
		if err != nil {
			return fmt.Errorf("build event bus publisher: %w", err)
		}
		consumer, err := eventbus.NewConsumer(busCfg, follows, logger)
		if err != nil {
			return fmt.Errorf("build event bus consumer: %w", err)
		}
		a.publisher, a.consumer = busPublisher, consumer
		publisher = busPublisher
		broadcasters = append(broadcasters, busPublisher)
	} else {
		publisher = usecase.NewInProcessEventPublisher(follows, logger)
	}

	provider := footballapi.NewClient(footballapi.ClientConfig{
		BaseURL:    cfg.FootballAPIBaseURL,
		APIKey:     cfg.FootballAPIKey,
		Timeout:    cfg.FootballAPITimeout,
		MaxRetries: cfg.FootballAPIMaxRetries,
		Logger:     logger.Named("footballapi"),
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.FootballCircuitEnabled,
			FailureThreshold: cfg.FootballCircuitFailures,
			OpenTimeout:      cfg.FootballCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.FootballCircuitHalfOpenMax,
		},
		RawPayloads: repos.rawData,
	})

	pipeline, err := usecase.NewIngestionPipeline(usecase.IngestionPipelineDeps{
		Provider:    provider,
		TxRunner:    repos.txRunner,
		LeagueRepo:  repos.leagues,
		MatchRepo:   repos.matches,
		StateRepo:   repos.states,
		EventRepo:   repos.events,
		Enricher:    guides,
		Publisher:   publisher,
		Broadcaster: broadcasters,
	}, usecase.IngestionConfig{
		Leagues:              cfg.FootballLeagues,
		BatchSize:            cfg.IngestBatchSize,
		LeagueDelay:          cfg.IngestLeagueDelay,
		MatchDelay:           cfg.IngestMatchDelay,
		RetryMaxAttempts:     cfg.IngestRetryMaxAttempts,
		RetryInitialInterval: cfg.IngestRetryInitial,
		RetryMaxInterval:     cfg.IngestRetryMaxInterval,
	}, logger.Named("ingestion"))
	if err != nil {
		return fmt.Errorf("build ingestion pipeline: %w", err)
	}

	a.scheduler = scheduler.New(cfg.SchedulerTimezone, logger.Named("scheduler"))
	jobs, err := usecase.NewJobRegistry(usecase.JobRegistryDeps{
		Scheduler: a.scheduler,
		Pipeline:  pipeline,
		Tokens:    deviceTokens,
		RunRepo:   repos.jobRuns,
		RawData:   repos.rawData,
		Store:     repos.store,
		Provider:  provider,
		IDGen:     idgen.NewSortableGenerator(),
	}, usecase.JobRegistryConfig{
		Jobs:                jobConfigs(cfg.Jobs),
		TokenStaleAfter:     cfg.CleanupTokenStaleAfter,
		JobRunRetention:     cfg.CleanupJobRunRetention,
		RawPayloadRetention: cfg.CleanupRawPayloadRetention,
	}, logger.Named("jobs"))
	if err != nil {
		return fmt.Errorf("build job registry: %w", err)
	}
	if err := jobs.RegisterAll(); err != nil {
		return fmt.Errorf("register jobs: %w", err)
	}

	handler := httpapi.NewHandler(httpapi.HandlerDeps{
		Follows:    follows,
		Devices:    deviceTokens,
		Dispatcher: dispatcher,
		Pipeline:   pipeline,
		Jobs:       jobs,
		Guides:     guides,
		Store:      repos.store,
	}, logger)

	var liveFeed http.Handler
	if a.hub != nil {
		liveFeed = a.hub
	}
	router := httpapi.NewRouter(handler, liveFeed, httpapi.RouterConfig{
		SwaggerEnabled:     cfg.SwaggerEnabled,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		InternalJobToken:   cfg.InternalJobToken,
	}, logger)

	if cfg.HTTPAddr == "" {
		return fmt.Errorf("http server addr cannot be empty")
	}
	a.server = &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	return nil
}

func jobConfigs(in map[string]config.JobConfig) map[string]usecase.JobConfig {
	out := make(map[string]usecase.JobConfig, len(in))
	for name, job := range in {
		out[name] = usecase.JobConfig{Schedule: job.Schedule, Enabled: job.Enabled}
	}
	return out
}

func (a *App) Handler() http.Handler {
	return a.server.Handler
}

// Run serves until ctx is cancelled or the listener fails. The scheduler and the event
// consumer run alongside the server.
func (a *App) Run(ctx context.Context) error {
	if a.cfg.SchedulerEnabled {
		a.scheduler.Run()
		a.logger.Info("job scheduler started", "timezone", a.cfg.SchedulerTimezone.String())
	} else {
		a.logger.Warn("job scheduler disabled, jobs run only when triggered")
	}

	var wg conc.WaitGroup
	consumerCtx, stopConsumer := context.WithCancel(ctx)
	defer stopConsumer()
	if a.consumer != nil {
		wg.Go(func() {
			if err := a.consumer.Run(consumerCtx); err != nil && !errors.Is(err, context.Canceled) {
				a.logger.Error("event bus consumer stopped", "error", err)
			}
		})
	}

	serveErr := make(chan error, 1)
	go func() {
		a.logger.Info("http server starting", "addr", a.server.Addr)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	var err error
	select {
	case <-ctx.Done():
	case err = <-serveErr:
		if err != nil {
			err = fmt.Errorf("http server: %w", err)
		}
	}
	stopConsumer()
	wg.Wait()
	return err
}

// Shutdown drains HTTP first, then waits for running jobs up to the scheduler timeout.
func (a *App) Shutdown(ctx context.Context) error {
	var errs []error
	if err := a.server.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("http shutdown: %w", err))
	}
	if a.hub != nil {
		a.hub.Close()
	}

	timeout := a.cfg.SchedulerShutdownTimeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}
	if err := a.scheduler.Shutdown(timeout); err != nil {
		errs = append(errs, fmt.Errorf("scheduler shutdown: %w", err))
	}

	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("event bus close: %w", err))
		}
	}
	if err := a.repos.close(); err != nil {
		errs = append(errs, fmt.Errorf("close store: %w", err))
	}
	return errors.Join(errs...)
}
