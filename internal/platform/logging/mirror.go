package logging

import (
	"context"
	"sync/atomic"
	"time"
)

// Record is a log entry that already passed the level check.
type Record struct {
	Time    time.Time
	Level   Level
	Message string
	Logger  string
	Args    []any
}

// Attr returns the value bound to key. The last occurrence wins.
func (r Record) Attr(key string) (any, bool) {
	for i := len(r.Args) - 2; i >= 0; i -= 2 {
		if k, ok := r.Args[i].(string); ok && k == key {
			return r.Args[i+1], true
		}
	}
	return nil, false
}

// MirrorFunc receives every emitted record, e.g. to forward it to an
// OpenTelemetry log exporter.
type MirrorFunc func(ctx context.Context, rec Record)

var mirror atomic.Pointer[MirrorFunc]

// SetMirror installs fn as the process wide log mirror. nil removes it.
func SetMirror(fn MirrorFunc) {
	if fn == nil {
		mirror.Store(nil)
		return
	}
	mirror.Store(&fn)
}

func joinArgs(parts ...[]any) []any {
	n := 0
	for _, part := range parts {
		n += len(part) + len(part)%2
	}
	out := make([]any, 0, n)
	for _, part := range parts {
		out = append(out, part...)
		if len(part)%2 == 1 {
			out = append(out, nil)
		}
	}
	return out
}
