package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/riskibarqy/matchday/internal/domain/jobscheduler"
	"github.com/riskibarqy/matchday/internal/domain/rawdata"
	"github.com/riskibarqy/matchday/internal/platform/id"
	"github.com/riskibarqy/matchday/internal/platform/logging"
	"github.com/riskibarqy/matchday/internal/platform/resilience"
	"github.com/riskibarqy/matchday/internal/platform/scheduler"
	"github.com/riskibarqy/matchday/internal/platform/tracing"
	"go.opentelemetry.io/otel/attribute"
)

const (
	JobDailyFixtures = "daily-fixtures"
	JobLivePolling   = "live-polling"
	JobMatchEvents   = "match-events"
	JobCleanup       = "cleanup"
	JobHealth        = "health"
	JobMetrics       = "metrics"
)

type JobConfig struct {
	Schedule string
	Enabled  bool
	Timeout  time.Duration
}

// DefaultJobConfigs lists every job the service runs with its default cadence.
func DefaultJobConfigs() map[string]JobConfig {
	return map[string]JobConfig{
		JobDailyFixtures: {Schedule: "0 6 * * *", Enabled: true, Timeout: 30 * time.Minute},
		JobLivePolling:   {Schedule: "*/2 * * * *", Enabled: true, Timeout: 90 * time.Second},
		JobMatchEvents:   {Schedule: "* * * * *", Enabled: true, Timeout: 50 * time.Second},
		JobCleanup:       {Schedule: "0 3 * * *", Enabled: true, Timeout: 10 * time.Minute},
		JobHealth:        {Schedule: "*/5 * * * *", Enabled: true, Timeout: 30 * time.Second},
		JobMetrics:       {Schedule: "*/15 * * * *", Enabled: true, Timeout: 30 * time.Second},
	}
}

func jobNames() []string {
	return []string{JobDailyFixtures, JobLivePolling, JobMatchEvents, JobCleanup, JobHealth, JobMetrics}
}

type JobRegistryConfig struct {
	Jobs                map[string]JobConfig
	TokenStaleAfter     time.Duration
	JobRunRetention     time.Duration
	RawPayloadRetention time.Duration
}

// StorePinger reports whether the primary store answers.
type StorePinger interface {
	PingContext(ctx context.Context) error
}

type CircuitReporter interface {
	Snapshot() resilience.Snapshot
}

type HealthReport struct {
	Healthy   bool                `json:"healthy"`
	StoreOK   bool                `json:"storeOk"`
	StoreErr  string              `json:"storeError,omitempty"`
	Provider  resilience.Snapshot `json:"provider"`
	CheckedAt time.Time           `json:"checkedAt"`
}

type JobRegistryDeps struct {
	Scheduler *scheduler.Scheduler
	Pipeline  *IngestionPipeline
	Tokens    *DeviceTokenService
	RunRepo   jobscheduler.Repository
	RawData   rawdata.Repository
	Store     StorePinger
	Provider  CircuitReporter
	IDGen     id.Generator
}

// JobRegistry binds the ingestion and housekeeping jobs to the scheduler and records
// every run.
type JobRegistry struct {
	scheduler *scheduler.Scheduler
	pipeline  *IngestionPipeline
	tokens    *DeviceTokenService
	runRepo   jobscheduler.Repository
	rawData   rawdata.Repository
	store     StorePinger
	provider  CircuitReporter
	idGen     id.Generator
	cfg       JobRegistryConfig
	logger    *logging.Logger
	now       func() time.Time

	mu         sync.RWMutex
	lastHealth *HealthReport
}

func NewJobRegistry(deps JobRegistryDeps, cfg JobRegistryConfig, logger *logging.Logger) (*JobRegistry, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if deps.Scheduler == nil || deps.Pipeline == nil {
		return nil, fmt.Errorf("%w: job registry needs a scheduler and a pipeline", ErrInvalidInput)
	}
	if deps.IDGen == nil {
		deps.IDGen = id.NewUUIDGenerator()
	}

	defaults := DefaultJobConfigs()
	jobs := make(map[string]JobConfig, len(defaults))
	for name, def := range defaults {
		jobCfg, ok := cfg.Jobs[name]
		if !ok {
			jobCfg = def
		}
		if strings.TrimSpace(jobCfg.Schedule) == "" {
			jobCfg.Schedule = def.Schedule
		}
		if jobCfg.Timeout <= 0 {
			jobCfg.Timeout = def.Timeout
		}
		jobs[name] = jobCfg
	}
	cfg.Jobs = jobs
	if cfg.TokenStaleAfter <= 0 {
		cfg.TokenStaleAfter = 60 * 24 * time.Hour
	}
	if cfg.JobRunRetention <= 0 {
		cfg.JobRunRetention = 14 * 24 * time.Hour
	}
	if cfg.RawPayloadRetention <= 0 {
		cfg.RawPayloadRetention = 30 * 24 * time.Hour
	}

	return &JobRegistry{
		scheduler: deps.Scheduler,
		pipeline:  deps.Pipeline,
		tokens:    deps.Tokens,
		runRepo:   deps.RunRepo,
		rawData:   deps.RawData,
		store:     deps.Store,
		provider:  deps.Provider,
		idGen:     deps.IDGen,
		cfg:       cfg,
		logger:    logger,
		now:       time.Now,
	}, nil
}

// RegisterAll registers every job. Enabled jobs start firing once the scheduler runs.
func (r *JobRegistry) RegisterAll() error {
	bodies := map[string]func(ctx context.Context) (map[string]any, error){
		JobDailyFixtures: r.runDailyFixtures,
		JobLivePolling:   r.runLivePolling,
		JobMatchEvents:   r.runMatchEvents,
		JobCleanup:       r.runCleanup,
		JobHealth:        r.runHealth,
		JobMetrics:       r.runMetrics,
	}

	for _, name := range jobNames() {
		jobCfg := r.cfg.Jobs[name]
		err := r.scheduler.Register(scheduler.JobSpec{
			Name:     name,
			Schedule: jobCfg.Schedule,
			Enabled:  jobCfg.Enabled,
			Timeout:  jobCfg.Timeout,
			Task:     r.recorded(name, bodies[name]),
		})
		if err != nil {
			return fmt.Errorf("register job %s: %w", name, err)
		}
	}
	return nil
}

// Trigger starts a job out of schedule. The run happens in the background.
func (r *JobRegistry) Trigger(ctx context.Context, name string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.JobRegistry.Trigger")
	defer span.End()

	return mapSchedulerError(r.scheduler.Trigger(ctx, strings.TrimSpace(name)))
}

func (r *JobRegistry) Status(name string) (scheduler.Status, error) {
	status, err := r.scheduler.Status(strings.TrimSpace(name))
	if err != nil {
		return scheduler.Status{}, mapSchedulerError(err)
	}
	return status, nil
}

func (r *JobRegistry) Statuses() []scheduler.Status {
	return r.scheduler.Statuses()
}

// ListRuns returns the most recent recorded runs of one job.
func (r *JobRegistry) ListRuns(ctx context.Context, name string, limit int) ([]jobscheduler.Run, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.JobRegistry.ListRuns")
	defer span.End()

	if _, err := r.Status(name); err != nil {
		return nil, err
	}
	if r.runRepo == nil {
		return []jobscheduler.Run{}, nil
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	runs, err := r.runRepo.ListRecent(ctx, strings.TrimSpace(name), limit)
	if err != nil {
		return nil, fmt.Errorf("list job runs: %w", err)
	}
	return runs, nil
}

// LastHealth returns the report of the most recent health run, if any.
func (r *JobRegistry) LastHealth() (HealthReport, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.lastHealth == nil {
		return HealthReport{}, false
	}
	return *r.lastHealth, true
}

func mapSchedulerError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, scheduler.ErrJobNotFound):
		return fmt.Errorf("%w: %v", ErrJobNotFound, err)
	case errors.Is(err, scheduler.ErrJobRunning):
		return fmt.Errorf("%w: %v", ErrJobAlreadyRunning, err)
	case errors.Is(err, scheduler.ErrShuttingDown):
		return fmt.Errorf("%w: %v", ErrDependencyUnavailable, err)
	default:
		return err
	}
}

// recorded wraps a job body so each run is persisted as running, then completed or failed.
func (r *JobRegistry) recorded(name string, body func(ctx context.Context) (map[string]any, error)) scheduler.Task {
	return func(ctx context.Context, trigger scheduler.Trigger) error {
		ctx, span := tracing.StartRoot(ctx, usecaseTracer, "job."+name,
			attribute.String("job.name", name),
			attribute.String("job.trigger", string(trigger)),
		)
		defer span.End()

		runID, err := r.idGen.NewID()
		if err != nil {
			return fmt.Errorf("generate job run id: %w", err)
		}
		run := jobscheduler.Run{
			RunID:     runID,
			JobName:   name,
			Trigger:   string(trigger),
			Status:    jobscheduler.StatusRunning,
			StartedAt: r.now().UTC(),
		}
		run.TraceID, run.SpanID = tracing.IDs(span)
		ctx = logging.ContextWith(ctx, "job_name", name, "run_id", runID)
		r.saveRun(ctx, run)

		metrics, runErr := body(ctx)
		finishedAt := r.now().UTC()
		run.FinishedAt = &finishedAt
		run.Metrics = metrics
		run.Status = jobscheduler.StatusCompleted
		if runErr != nil {
			run.Status = jobscheduler.StatusFailed
			run.ErrorMessage = runErr.Error()
			tracing.Fail(span, runErr)
		}
		r.saveRun(ctx, run)

		return runErr
	}
}

func (r *JobRegistry) saveRun(ctx context.Context, run jobscheduler.Run) {
	if r.runRepo == nil {
		return
	}
	if err := r.runRepo.UpsertRun(ctx, run); err != nil {
		r.logger.WarnContext(ctx, "record job run failed", "status", run.Status, "error", err)
	}
}

func (r *JobRegistry) runDailyFixtures(ctx context.Context) (map[string]any, error) {
	now := r.now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	metrics, err := r.pipeline.IngestDailyFixtures(ctx, today)
	return ingestionMetricsMap(metrics), err
}

func (r *JobRegistry) runLivePolling(ctx context.Context) (map[string]any, error) {
	metrics, err := r.pipeline.IngestLiveFixtures(ctx)
	return ingestionMetricsMap(metrics), err
}

func (r *JobRegistry) runMatchEvents(ctx context.Context) (map[string]any, error) {
	metrics, err := r.pipeline.IngestMatchEvents(ctx)
	return ingestionMetricsMap(metrics), err
}

func (r *JobRegistry) runCleanup(ctx context.Context) (map[string]any, error) {
	now := r.now().UTC()
	out := map[string]any{}

	var errs []error
	if r.tokens != nil {
		deactivated, err := r.tokens.DeactivateStale(ctx, now.Add(-r.cfg.TokenStaleAfter))
		if err != nil {
			errs = append(errs, err)
		}
		out["deactivatedTokens"] = deactivated
	}
	if r.runRepo != nil {
		pruned, err := r.runRepo.DeleteStartedBefore(ctx, now.Add(-r.cfg.JobRunRetention))
		if err != nil {
			errs = append(errs, fmt.Errorf("prune job runs: %w", err))
		}
		out["prunedRuns"] = pruned
	}
	if r.rawData != nil {
		pruned, err := r.rawData.DeleteFetchedBefore(ctx, now.Add(-r.cfg.RawPayloadRetention))
		if err != nil {
			errs = append(errs, fmt.Errorf("prune raw payloads: %w", err))
		}
		out["prunedPayloads"] = pruned
	}

	return out, errors.Join(errs...)
}

func (r *JobRegistry) runHealth(ctx context.Context) (map[string]any, error) {
	report := HealthReport{
		Healthy:   true,
		StoreOK:   true,
		Provider:  resilience.Snapshot{State: resilience.CircuitStateClosed},
		CheckedAt: r.now().UTC(),
	}
	if r.store != nil {
		if err := r.store.PingContext(ctx); err != nil {
			report.Healthy = false
			report.StoreOK = false
			report.StoreErr = err.Error()
		}
	}
	if r.provider != nil {
		report.Provider = r.provider.Snapshot()
		if report.Provider.State == resilience.CircuitStateOpen {
			report.Healthy = false
		}
	}

	r.mu.Lock()
	r.lastHealth = &report
	r.mu.Unlock()

	if !report.Healthy {
		r.logger.WarnContext(ctx, "service unhealthy",
			"store_ok", report.StoreOK,
			"store_error", report.StoreErr,
			"provider_circuit", report.Provider.State,
		)
	}

	return map[string]any{
		"healthy":         report.Healthy,
		"storeOk":         report.StoreOK,
		"providerCircuit": string(report.Provider.State),
	}, nil
}

func (r *JobRegistry) runMetrics(ctx context.Context) (map[string]any, error) {
	last := r.pipeline.LastMetrics()
	for operation, metrics := range last {
		r.logger.InfoContext(ctx, "ingestion metrics",
			"operation", operation,
			"processed", metrics.Processed,
			"created", metrics.Created,
			"updated", metrics.Updated,
			"errors", metrics.Errors,
			"api_calls", metrics.APICalls,
			"duration_ms", metrics.DurationMs,
		)
	}

	failing := 0
	for _, status := range r.scheduler.Statuses() {
		if status.LastError != "" {
			failing++
		}
		r.logger.InfoContext(ctx, "job status",
			"job_name", status.Name,
			"enabled", status.Enabled,
			"running", status.Running,
			"run_count", status.RunCount,
			"skipped_count", status.SkippedCount,
			"last_error", status.LastError,
		)
	}

	return map[string]any{
		"operations":  len(last),
		"failingJobs": failing,
	}, nil
}

func ingestionMetricsMap(metrics IngestionMetrics) map[string]any {
	out := map[string]any{
		"operation":  metrics.Operation,
		"processed":  metrics.Processed,
		"created":    metrics.Created,
		"updated":    metrics.Updated,
		"skipped":    metrics.Skipped,
		"errors":     metrics.Errors,
		"apiCalls":   metrics.APICalls,
		"durationMs": metrics.DurationMs,
	}
	if metrics.Operation == IngestOperationEvents {
		out["eventsInserted"] = metrics.EventsInserted
		out["eventsSkipped"] = metrics.EventsSkipped
	}
	return out
}
