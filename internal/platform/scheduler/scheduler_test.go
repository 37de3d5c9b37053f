package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/riskibarqy/matchday/internal/platform/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestScheduler() *Scheduler {
	return New(time.UTC, logging.NewNop())
}

func TestScheduler_RegisterRejectsInvalidSchedule(t *testing.T) {
	t.Parallel()

	s := newTestScheduler()
	err := s.Register(JobSpec{
		Name:     "broken",
		Schedule: "every minute please",
		Task:     func(context.Context, Trigger) error { return nil },
	})
	if !errors.Is(err, ErrInvalidJob) {
		t.Fatalf("expected ErrInvalidJob, got %v", err)
	}
}

func TestScheduler_RegisterRejectsDuplicateName(t *testing.T) {
	t.Parallel()

	s := newTestScheduler()
	spec := JobSpec{
		Name:     "health",
		Schedule: "*/5 * * * *",
		Task:     func(context.Context, Trigger) error { return nil },
	}
	require.NoError(t, s.Register(spec))

	err := s.Register(spec)
	if !errors.Is(err, ErrJobExists) {
		t.Fatalf("expected ErrJobExists, got %v", err)
	}
}

func TestScheduler_TriggerWhileRunningIsRejected(t *testing.T) {
	t.Parallel()

	s := newTestScheduler()
	release := make(chan struct{})
	entered := make(chan struct{}, 1)
	var calls atomic.Int32

	require.NoError(t, s.Register(JobSpec{
		Name:     "live-polling",
		Schedule: "*/2 * * * *",
		Enabled:  true,
		Task: func(ctx context.Context, _ Trigger) error {
			calls.Add(1)
			entered <- struct{}{}
			<-release
			return nil
		},
	}))

	require.NoError(t, s.Trigger(context.Background(), "live-polling"))
	select {
	case <-entered:
	case <-time.After(2 * time.Second):
		t.Fatalf("first run never started")
	}

	err := s.Trigger(context.Background(), "live-polling")
	if !errors.Is(err, ErrJobRunning) {
		t.Fatalf("expected ErrJobRunning, got %v", err)
	}

	status, err := s.Status("live-polling")
	require.NoError(t, err)
	assert.True(t, status.Running)
	assert.Equal(t, int64(1), status.SkippedCount)

	close(release)
	require.NoError(t, s.Shutdown(2*time.Second))

	if got := calls.Load(); got != 1 {
		t.Fatalf("unexpected task invocation count: got=%d want=1", got)
	}
	status, err = s.Status("live-polling")
	require.NoError(t, err)
	assert.False(t, status.Running)
	assert.Equal(t, int64(1), status.RunCount)
	assert.NotNil(t, status.LastRun)
}

func TestScheduler_ConcurrentFiresRunOnce(t *testing.T) {
	t.Parallel()

	s := newTestScheduler()
	release := make(chan struct{})
	var calls atomic.Int32
	require.NoError(t, s.Register(JobSpec{
		Name:     "match-events",
		Schedule: "* * * * *",
		Task: func(ctx context.Context, _ Trigger) error {
			calls.Add(1)
			<-release
			return nil
		},
	}))

	const attempts = 16
	var rejected atomic.Int32
	done := make(chan struct{})
	for i := 0; i < attempts; i++ {
		go func() {
			if err := s.Trigger(context.Background(), "match-events"); errors.Is(err, ErrJobRunning) {
				rejected.Add(1)
			}
			done <- struct{}{}
		}()
	}
	for i := 0; i < attempts; i++ {
		<-done
	}

	close(release)
	require.NoError(t, s.Shutdown(2*time.Second))

	if got := calls.Load(); got != 1 {
		t.Fatalf("unexpected task invocation count: got=%d want=1", got)
	}
	assert.Equal(t, int32(attempts-1), rejected.Load())
}

func TestScheduler_RunNowReturnsTaskError(t *testing.T) {
	t.Parallel()

	s := newTestScheduler()
	boom := errors.New("upstream unavailable")
	require.NoError(t, s.Register(JobSpec{
		Name:     "daily-fixtures",
		Schedule: "0 6 * * *",
		Task:     func(context.Context, Trigger) error { return boom },
	}))

	err := s.RunNow(context.Background(), "daily-fixtures")
	if !errors.Is(err, boom) {
		t.Fatalf("expected task error, got %v", err)
	}

	status, err := s.Status("daily-fixtures")
	require.NoError(t, err)
	assert.Equal(t, boom.Error(), status.LastError)
	assert.False(t, status.Enabled)
	assert.Nil(t, status.NextRun)
}

func TestScheduler_RunNowRecoversPanic(t *testing.T) {
	t.Parallel()

	s := newTestScheduler()
	require.NoError(t, s.Register(JobSpec{
		Name:     "metrics",
		Schedule: "*/15 * * * *",
		Task:     func(context.Context, Trigger) error { panic("nil map") },
	}))

	err := s.RunNow(context.Background(), "metrics")
	require.Error(t, err)

	status, err := s.Status("metrics")
	require.NoError(t, err)
	assert.False(t, status.Running)
	assert.Contains(t, status.LastError, "panicked")
}

func TestScheduler_StartStopTogglesNextRun(t *testing.T) {
	t.Parallel()

	s := newTestScheduler()
	require.NoError(t, s.Register(JobSpec{
		Name:     "cleanup",
		Schedule: "0 3 * * *",
		Task:     func(context.Context, Trigger) error { return nil },
	}))

	require.NoError(t, s.Start("cleanup"))
	status, err := s.Status("cleanup")
	require.NoError(t, err)
	require.True(t, status.Enabled)
	require.NotNil(t, status.NextRun)
	assert.Equal(t, 3, status.NextRun.Hour())
	assert.Equal(t, 0, status.NextRun.Minute())

	require.NoError(t, s.Stop("cleanup"))
	status, err = s.Status("cleanup")
	require.NoError(t, err)
	assert.False(t, status.Enabled)
	assert.Nil(t, status.NextRun)

	if err := s.Start("unknown"); !errors.Is(err, ErrJobNotFound) {
		t.Fatalf("expected ErrJobNotFound, got %v", err)
	}
}

func TestScheduler_ShutdownTimesOutOnStuckJob(t *testing.T) {
	t.Parallel()

	s := newTestScheduler()
	entered := make(chan struct{}, 1)
	cancelled := make(chan struct{})
	require.NoError(t, s.Register(JobSpec{
		Name:     "daily-fixtures",
		Schedule: "0 6 * * *",
		Task: func(ctx context.Context, _ Trigger) error {
			entered <- struct{}{}
			<-ctx.Done()
			close(cancelled)
			return ctx.Err()
		},
	}))

	require.NoError(t, s.Trigger(context.Background(), "daily-fixtures"))
	<-entered

	err := s.Shutdown(50 * time.Millisecond)
	if !errors.Is(err, ErrShutdownTimeout) {
		t.Fatalf("expected ErrShutdownTimeout, got %v", err)
	}
	assert.Contains(t, err.Error(), "daily-fixtures")

	select {
	case <-cancelled:
	case <-time.After(2 * time.Second):
		t.Fatalf("abandoned run was not cancelled")
	}

	if err := s.Trigger(context.Background(), "daily-fixtures"); !errors.Is(err, ErrShuttingDown) {
		t.Fatalf("expected ErrShuttingDown after shutdown, got %v", err)
	}
}
