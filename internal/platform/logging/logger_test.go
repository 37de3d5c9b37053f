package logging

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogger_WritesFieldsAndErrors(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.DebugLevel)
	logger := FromZap(zap.New(core)).With("component", "scheduler")

	logger.Warn("job failed", "job", "live-polling", "error", assert.AnError, 7, "positional", "dangling")

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "scheduler", fields["component"])
	assert.Equal(t, "live-polling", fields["job"])
	assert.Equal(t, assert.AnError.Error(), fields["error"])
	assert.Equal(t, "positional", fields["arg_2"])
	assert.Contains(t, fields, "dangling")
}

func TestLogger_NilReceiverFallsBackToDefault(t *testing.T) {
	t.Parallel()

	var logger *Logger
	assert.NotPanics(t, func() {
		logger.Info("no logger configured")
		logger.ErrorContext(context.Background(), "still fine")
		logger.With("k", "v").Named("x").Debug("child of nil")
	})
}

func TestLogger_ContextFieldsAndTrace(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.InfoLevel)
	logger := FromZap(zap.New(core)).Named("jobs")

	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    trace.TraceID{1},
		SpanID:     trace.SpanID{2},
		TraceFlags: trace.FlagsSampled,
	})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)
	ctx = ContextWith(ctx, "job", "fixture-sync")
	ctx = ContextWith(ctx, "run_id", "run-1")

	logger.InfoContext(ctx, "job started")
	logger.Info("no context fields")

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "jobs", entries[0].LoggerName)
	fields := entries[0].ContextMap()
	assert.Equal(t, "fixture-sync", fields["job"])
	assert.Equal(t, "run-1", fields["run_id"])
	assert.Equal(t, sc.TraceID().String(), fields["trace_id"])
	assert.NotContains(t, entries[1].ContextMap(), "job")
}

func TestLogger_SyncOncePerFamily(t *testing.T) {
	t.Parallel()

	parent := NewNop()
	child := parent.With("k", "v")
	require.NoError(t, child.Sync())
	assert.True(t, parent.synced.Load())
}

// Not parallel: the mirror is process wide.
func TestSetMirror_ReceivesEnabledRecordsOnly(t *testing.T) {
	core, _ := observer.New(zapcore.InfoLevel)
	logger := FromZap(zap.New(core)).With("component", "fanout")

	var mu sync.Mutex
	var got []Record
	SetMirror(func(_ context.Context, rec Record) {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, rec)
	})
	t.Cleanup(func() { SetMirror(nil) })

	ctx := ContextWith(context.Background(), "match_id", "m-1")
	logger.Debug("filtered out")
	logger.InfoContext(ctx, "fixtures synced", "matches", 12)
	logger.Error("push failed", "dangling")

	mu.Lock()
	require.Len(t, got, 2)
	assert.Equal(t, LevelInfo, got[0].Level)
	assert.Equal(t, "fixtures synced", got[0].Message)
	assert.Equal(t, []any{"component", "fanout", "match_id", "m-1", "matches", 12}, got[0].Args)
	matches, ok := got[0].Attr("matches")
	assert.True(t, ok)
	assert.Equal(t, 12, matches)
	assert.False(t, got[0].Time.IsZero())
	assert.Equal(t, []any{"component", "fanout", "dangling", nil}, got[1].Args)
	mu.Unlock()

	SetMirror(nil)
	logger.Info("after reset")
	mu.Lock()
	defer mu.Unlock()
	assert.Len(t, got, 2)
}
