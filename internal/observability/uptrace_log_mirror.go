package observability

import (
	"context"
	"fmt"
	"math"
	"reflect"
	"slices"
	"strings"
	"time"

	"github.com/riskibarqy/matchday/internal/platform/logging"
	otellog "go.opentelemetry.io/otel/log"
	otelglobal "go.opentelemetry.io/otel/log/global"
	"go.uber.org/zap/zapcore"
)

const (
	uptraceLogInstrumentation = "matchday/internal/platform/logging"
	maxLogValueDepth          = 3
)

// Request logs for these paths are polled by health checks or long lived, and only add noise.
var quietPaths = []string{"/healthz", "/ws/live"}

func newUptraceLogMirror(serviceVersion string) logging.MirrorFunc {
	otelLogger := otelglobal.Logger(
		uptraceLogInstrumentation,
		otellog.WithInstrumentationVersion(serviceVersion),
	)

	return func(ctx context.Context, rec logging.Record) {
		if isQuietRequestLog(rec) {
			return
		}

		severity := toOTelSeverity(rec.Level)
		if !otelLogger.Enabled(ctx, otellog.EnabledParameters{Severity: severity, EventName: rec.Message}) {
			return
		}
		otelLogger.Emit(ctx, toOTelRecord(rec, severity))
	}
}

func toOTelRecord(rec logging.Record, severity otellog.Severity) otellog.Record {
	observed := time.Now().UTC()
	ts := rec.Time
	if ts.IsZero() {
		ts = observed
	}

	var out otellog.Record
	out.SetTimestamp(ts.UTC())
	out.SetObservedTimestamp(observed)
	out.SetSeverity(severity)
	out.SetSeverityText(strings.ToUpper(rec.Level.String()))
	out.SetEventName(rec.Message)
	out.SetBody(otellog.StringValue(rec.Message))

	attrs := buildOTelLogAttributes(rec.Args)
	if rec.Logger != "" {
		attrs = append(attrs, otellog.String("logger.name", rec.Logger))
	}
	if len(attrs) > 0 {
		out.AddAttributes(attrs...)
	}
	return out
}

func isQuietRequestLog(rec logging.Record) bool {
	if rec.Message != "http_request" {
		return false
	}
	path, ok := rec.Attr("http_path")
	if !ok {
		return false
	}
	s, ok := path.(string)
	return ok && slices.Contains(quietPaths, s)
}

// buildOTelLogAttributes keeps the last value of a repeated key, matching how a
// child logger's field overrides its parent's.
func buildOTelLogAttributes(args []any) []otellog.KeyValue {
	if len(args) == 0 {
		return nil
	}

	attrs := make([]otellog.KeyValue, 0, (len(args)+1)/2)
	index := make(map[string]int, (len(args)+1)/2)
	for i := 0; i < len(args); i += 2 {
		key := fmt.Sprintf("arg_%d", i/2)
		if k, ok := args[i].(string); ok && strings.TrimSpace(k) != "" {
			key = k
		}
		kv := otellog.Empty(key)
		if i+1 < len(args) {
			kv = otellog.KeyValue{Key: key, Value: toOTelLogValue(args[i+1], 0)}
		}
		if at, seen := index[key]; seen {
			attrs[at] = kv
			continue
		}
		index[key] = len(attrs)
		attrs = append(attrs, kv)
	}
	return attrs
}

func toOTelSeverity(level zapcore.Level) otellog.Severity {
	switch {
	case level <= zapcore.DebugLevel:
		return otellog.SeverityDebug
	case level == zapcore.InfoLevel:
		return otellog.SeverityInfo
	case level == zapcore.WarnLevel:
		return otellog.SeverityWarn
	case level >= zapcore.DPanicLevel:
		return otellog.SeverityFatal
	default:
		return otellog.SeverityError
	}
}

func toOTelLogValue(value any, depth int) otellog.Value {
	if value == nil {
		return otellog.Value{}
	}
	if depth >= maxLogValueDepth {
		return otellog.StringValue(fmt.Sprint(value))
	}

	switch v := value.(type) {
	case string:
		return otellog.StringValue(v)
	case []byte:
		return otellog.BytesValue(slices.Clone(v))
	case time.Time:
		return otellog.StringValue(v.UTC().Format(time.RFC3339Nano))
	case time.Duration:
		return otellog.StringValue(v.String())
	case error:
		return otellog.StringValue(v.Error())
	case fmt.Stringer:
		return otellog.StringValue(v.String())
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Bool:
		return otellog.BoolValue(rv.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return otellog.Int64Value(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if rv.Uint() > math.MaxInt64 {
			return otellog.StringValue(fmt.Sprint(value))
		}
		return otellog.Int64Value(int64(rv.Uint()))
	case reflect.Float32, reflect.Float64:
		return otellog.Float64Value(rv.Float())
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return otellog.Value{}
		}
		return toOTelLogValue(rv.Elem().Interface(), depth+1)
	case reflect.Slice, reflect.Array:
		items := make([]otellog.Value, 0, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			items = append(items, toOTelLogValue(rv.Index(i).Interface(), depth+1))
		}
		return otellog.SliceValue(items...)
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return otellog.StringValue(fmt.Sprint(value))
		}
		keys := rv.MapKeys()
		slices.SortFunc(keys, func(a, b reflect.Value) int {
			return strings.Compare(a.String(), b.String())
		})
		kvs := make([]otellog.KeyValue, 0, len(keys))
		for _, key := range keys {
			kvs = append(kvs, otellog.KeyValue{
				Key:   key.String(),
				Value: toOTelLogValue(rv.MapIndex(key).Interface(), depth+1),
			})
		}
		return otellog.MapValue(kvs...)
	default:
		return otellog.StringValue(fmt.Sprint(value))
	}
}
