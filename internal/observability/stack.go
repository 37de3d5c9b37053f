package observability

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/riskibarqy/matchday/internal/config"
	"github.com/riskibarqy/matchday/internal/platform/logging"
)

type stopFunc func(ctx context.Context) error

type backend struct {
	name string
	stop stopFunc
}

// Stack holds the telemetry backends started for one process. Logger tees into
// Better Stack when that shipper is enabled.
type Stack struct {
	Logger   *logging.Logger
	backends []backend
}

// Start brings up logging first so later backends report through it. On error the
// backends already started are stopped again.
func Start(ctx context.Context, cfg config.Config) (*Stack, error) {
	base := logging.NewJSON(cfg.LogLevel)
	logger, flush, err := initBetterStackLogger(cfg, base)
	if err != nil {
		return nil, fmt.Errorf("init betterstack: %w", err)
	}

	s := &Stack{Logger: logger}
	s.add("betterstack", flush)

	steps := []struct {
		name string
		init func(config.Config, *logging.Logger) (stopFunc, error)
	}{
		{"uptrace", initUptrace},
		{"pyroscope", initPyroscope},
		{"pprof", startPprof},
	}
	for _, step := range steps {
		stop, err := step.init(cfg, logger)
		if err != nil {
			_ = s.Shutdown(ctx)
			return nil, fmt.Errorf("init %s: %w", step.name, err)
		}
		s.add(step.name, stop)
	}
	return s, nil
}

func (s *Stack) add(name string, stop stopFunc) {
	if stop != nil {
		s.backends = append(s.backends, backend{name: name, stop: stop})
	}
}

// Shutdown stops backends in reverse start order so the log shipper drains last.
func (s *Stack) Shutdown(ctx context.Context) error {
	var errs []error
	for _, b := range slices.Backward(s.backends) {
		if err := b.stop(ctx); err != nil {
			s.Logger.Warn("telemetry backend stop failed", "backend", b.name, "error", err)
			errs = append(errs, fmt.Errorf("stop %s: %w", b.name, err))
		}
	}
	s.backends = nil
	return errors.Join(errs...)
}
