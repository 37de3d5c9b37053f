package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/matchday/internal/domain/devicetoken"
	"github.com/riskibarqy/matchday/internal/domain/jobscheduler"
	"github.com/riskibarqy/matchday/internal/domain/rawdata"
	"github.com/riskibarqy/matchday/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/matchday/internal/platform/logging"
	"github.com/riskibarqy/matchday/internal/platform/resilience"
	"github.com/riskibarqy/matchday/internal/platform/scheduler"
	"github.com/riskibarqy/matchday/internal/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pinger struct {
	err error
}

func (p pinger) PingContext(context.Context) error {
	return p.err
}

type circuit struct {
	state resilience.CircuitState
}

func (c circuit) Snapshot() resilience.Snapshot {
	return resilience.Snapshot{State: c.state}
}

type registryFixture struct {
	pipelineFixture
	scheduler *scheduler.Scheduler
	registry  *usecase.JobRegistry
}

func newRegistryFixture(t *testing.T, jobs map[string]usecase.JobConfig, store usecase.StorePinger, provider usecase.CircuitReporter) registryFixture {
	t.Helper()

	fx := registryFixture{pipelineFixture: newPipelineFixture(t)}
	fx.scheduler = scheduler.New(time.UTC, logging.NewNop())
	t.Cleanup(func() {
		_ = fx.scheduler.Shutdown(2 * time.Second)
	})

	registry, err := usecase.NewJobRegistry(usecase.JobRegistryDeps{
		Scheduler: fx.scheduler,
		Pipeline:  fx.pipeline,
		Tokens:    usecase.NewDeviceTokenService(memory.NewDeviceTokenRepository(fx.store), nil, logging.NewNop()),
		RunRepo:   memory.NewJobRunRepository(fx.store),
		RawData:   memory.NewRawDataRepository(fx.store),
		Store:     store,
		Provider:  provider,
	}, usecase.JobRegistryConfig{
		Jobs:            jobs,
		TokenStaleAfter: 30 * 24 * time.Hour,
	}, logging.NewNop())
	require.NoError(t, err)
	require.NoError(t, registry.RegisterAll())
	fx.registry = registry
	return fx
}

func TestJobRegistry_RegistersEveryJob(t *testing.T) {
	t.Parallel()

	fx := newRegistryFixture(t, map[string]usecase.JobConfig{
		usecase.JobLivePolling: {Schedule: "*/5 * * * *", Enabled: false},
	}, nil, nil)

	statuses := fx.registry.Statuses()
	require.Len(t, statuses, 6)

	live, err := fx.registry.Status(usecase.JobLivePolling)
	require.NoError(t, err)
	assert.Equal(t, "*/5 * * * *", live.Schedule)
	assert.False(t, live.Enabled)
	assert.Nil(t, live.NextRun)

	daily, err := fx.registry.Status(usecase.JobDailyFixtures)
	require.NoError(t, err)
	assert.Equal(t, "0 6 * * *", daily.Schedule)
	assert.True(t, daily.Enabled)
	require.NotNil(t, daily.NextRun)
}

func TestJobRegistry_TriggerUnknownJob(t *testing.T) {
	t.Parallel()

	fx := newRegistryFixture(t, nil, nil, nil)
	err := fx.registry.Trigger(context.Background(), "nightly-backup")
	require.ErrorIs(t, err, usecase.ErrJobNotFound)

	_, err = fx.registry.ListRuns(context.Background(), "nightly-backup", 10)
	require.ErrorIs(t, err, usecase.ErrJobNotFound)
}

func TestJobRegistry_TriggerDisabledJobRecordsRun(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	fx := newRegistryFixture(t, map[string]usecase.JobConfig{
		usecase.JobDailyFixtures: {Enabled: false},
	}, nil, nil)
	fx.provider.setFixtures(fixture(1001, "NS", nil, nil, nil))

	require.NoError(t, fx.registry.Trigger(ctx, usecase.JobDailyFixtures))

	var runs []jobscheduler.Run
	require.Eventually(t, func() bool {
		var err error
		runs, err = fx.registry.ListRuns(ctx, usecase.JobDailyFixtures, 0)
		return err == nil && len(runs) == 1 && runs[0].Status == jobscheduler.StatusCompleted
	}, 2*time.Second, 10*time.Millisecond)

	run := runs[0]
	assert.Equal(t, string(scheduler.TriggerManual), run.Trigger)
	require.NotNil(t, run.FinishedAt)
	assert.Equal(t, usecase.IngestOperationDaily, run.Metrics["operation"])
	assert.Equal(t, 1, run.Metrics["created"])
}

func TestJobRegistry_HealthReport(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	healthy := newRegistryFixture(t, nil, pinger{}, circuit{state: resilience.CircuitStateClosed})
	_, ok := healthy.registry.LastHealth()
	assert.False(t, ok)

	require.NoError(t, healthy.scheduler.RunNow(ctx, usecase.JobHealth))
	report, ok := healthy.registry.LastHealth()
	require.True(t, ok)
	assert.True(t, report.Healthy)
	assert.True(t, report.StoreOK)

	broken := newRegistryFixture(t, nil, pinger{err: errors.New("connection refused")}, circuit{state: resilience.CircuitStateOpen})
	require.NoError(t, broken.scheduler.RunNow(ctx, usecase.JobHealth))
	report, ok = broken.registry.LastHealth()
	require.True(t, ok)
	assert.False(t, report.Healthy)
	assert.False(t, report.StoreOK)
	assert.Equal(t, "connection refused", report.StoreErr)
	assert.Equal(t, resilience.CircuitStateOpen, report.Provider.State)
}

func TestJobRegistry_CleanupDeactivatesStaleTokens(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	fx := newRegistryFixture(t, nil, nil, nil)
	tokens := memory.NewDeviceTokenRepository(fx.store)
	now := time.Now().UTC()
	require.NoError(t, tokens.Upsert(ctx, devicetoken.DeviceToken{
		ID: "dt-1", UserID: "user-demo-1", Token: "stale", Platform: devicetoken.PlatformAndroid,
		Active: true, LastUsedAt: now.Add(-90 * 24 * time.Hour),
	}))
	require.NoError(t, tokens.Upsert(ctx, devicetoken.DeviceToken{
		ID: "dt-2", UserID: "user-demo-1", Token: "fresh", Platform: devicetoken.PlatformIOS,
		Active: true, LastUsedAt: now,
	}))
	raw := memory.NewRawDataRepository(fx.store)
	require.NoError(t, raw.UpsertMany(ctx, []rawdata.Payload{
		{Source: "api-football", EntityType: "fixtures", EntityKey: "league=39", PayloadHash: "a", FetchedAt: now.Add(-45 * 24 * time.Hour)},
		{Source: "api-football", EntityType: "fixtures", EntityKey: "live=all", PayloadHash: "b", FetchedAt: now},
	}))

	require.NoError(t, fx.scheduler.RunNow(ctx, usecase.JobCleanup))

	active, err := tokens.ListActiveByUsers(ctx, []string{"user-demo-1"})
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "fresh", active[0].Token)

	runs, err := fx.registry.ListRuns(ctx, usecase.JobCleanup, 5)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, 1, runs[0].Metrics["deactivatedTokens"])
	assert.Equal(t, 1, runs[0].Metrics["prunedPayloads"])
}

func TestJobRegistry_RequiresSchedulerAndPipeline(t *testing.T) {
	t.Parallel()

	_, err := usecase.NewJobRegistry(usecase.JobRegistryDeps{}, usecase.JobRegistryConfig{}, logging.NewNop())
	require.ErrorIs(t, err, usecase.ErrInvalidInput)
}
