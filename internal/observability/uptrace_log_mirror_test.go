package observability

import (
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/matchday/internal/platform/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	otellog "go.opentelemetry.io/otel/log"
)

func TestIsQuietRequestLog(t *testing.T) {
	t.Parallel()

	request := func(msg string, args ...any) logging.Record {
		return logging.Record{Message: msg, Args: args}
	}
	assert.True(t, isQuietRequestLog(request("http_request", "http_path", "/healthz")))
	assert.True(t, isQuietRequestLog(request("http_request", "http_method", "GET", "http_path", "/ws/live")))
	assert.False(t, isQuietRequestLog(request("http_request", "http_path", "/v1/matches/m-1/state")))
	assert.False(t, isQuietRequestLog(request("http_request")))
	assert.False(t, isQuietRequestLog(request("scheduled job finished", "http_path", "/healthz")))
}

func TestBuildOTelLogAttributes(t *testing.T) {
	t.Parallel()

	attrs := buildOTelLogAttributes([]any{"match_id", "m-1", "attempt", 2, "dangling"})
	require.Len(t, attrs, 3)
	assert.Equal(t, "match_id", attrs[0].Key)
	assert.Equal(t, "m-1", attrs[0].Value.AsString())
	assert.Equal(t, int64(2), attrs[1].Value.AsInt64())
	assert.Equal(t, otellog.KindEmpty, attrs[2].Value.Kind())

	overridden := buildOTelLogAttributes([]any{"component", "api", "match_id", "m-1", "component", "fanout"})
	require.Len(t, overridden, 2)
	assert.Equal(t, "fanout", overridden[0].Value.AsString())
}

func TestToOTelRecord(t *testing.T) {
	t.Parallel()

	at := time.Date(2025, 8, 16, 14, 0, 0, 0, time.UTC)
	rec := toOTelRecord(logging.Record{
		Time:    at,
		Level:   logging.LevelWarn,
		Message: "push token deactivated",
		Logger:  "fanout",
		Args:    []any{"platform", "ios"},
	}, otellog.SeverityWarn)

	assert.Equal(t, at, rec.Timestamp())
	assert.Equal(t, "WARN", rec.SeverityText())
	assert.Equal(t, "push token deactivated", rec.Body().AsString())
	assert.Equal(t, 2, rec.AttributesLen())

	var keys []string
	rec.WalkAttributes(func(kv otellog.KeyValue) bool {
		keys = append(keys, kv.Key)
		return true
	})
	assert.Equal(t, []string{"platform", "logger.name"}, keys)
}

func TestToOTelLogValue(t *testing.T) {
	t.Parallel()

	assert.Equal(t, otellog.KindInt64, toOTelLogValue(uint16(7), 0).Kind())
	assert.Equal(t, otellog.KindString, toOTelLogValue(uint64(1<<63), 0).Kind())
	assert.Equal(t, "3s", toOTelLogValue(3*time.Second, 0).AsString())
	assert.Equal(t, "boom", toOTelLogValue(errors.New("boom"), 0).AsString())

	minute := 45
	assert.Equal(t, int64(45), toOTelLogValue(&minute, 0).AsInt64())
	var missing *int
	assert.Equal(t, otellog.KindEmpty, toOTelLogValue(missing, 0).Kind())

	counts := toOTelLogValue(map[string]any{"GOAL": 3, "CARD": 1}, 0)
	require.Equal(t, otellog.KindMap, counts.Kind())
	items := counts.AsMap()
	require.Len(t, items, 2)
	assert.Equal(t, "CARD", items[0].Key)

	list := toOTelLogValue([]string{"ios", "android"}, 0)
	require.Equal(t, otellog.KindSlice, list.Kind())
	assert.Len(t, list.AsSlice(), 2)
}
