package observability

import (
	"context"
	"strconv"
	"strings"

	"github.com/riskibarqy/matchday/internal/config"
	"github.com/riskibarqy/matchday/internal/platform/logging"
	"github.com/uptrace/uptrace-go/uptrace"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// initUptrace installs the global OpenTelemetry providers. Sampling follows the
// parent so a sampled API request keeps its usecase and job spans.
func initUptrace(cfg config.Config, logger *logging.Logger) (stopFunc, error) {
	if !cfg.UptraceEnabled || strings.TrimSpace(cfg.UptraceDSN) == "" {
		logging.SetMirror(nil)
		logger.Info("uptrace disabled", "enabled", cfg.UptraceEnabled)
		return nil, nil
	}

	ratio := cfg.UptraceSampleRatio
	if ratio <= 0 || ratio > 1 {
		ratio = 1
	}
	uptrace.ConfigureOpentelemetry(
		uptrace.WithDSN(cfg.UptraceDSN),
		uptrace.WithServiceName(cfg.ServiceName),
		uptrace.WithServiceVersion(cfg.ServiceVersion),
		uptrace.WithDeploymentEnvironment(cfg.AppEnv),
		uptrace.WithLoggingEnabled(cfg.UptraceLogsEnabled),
		uptrace.WithTraceSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(ratio))),
		uptrace.WithResourceAttributes(
			attribute.Bool("matchday.scheduler_enabled", cfg.SchedulerEnabled),
			attribute.String("matchday.leagues", leagueTag(cfg)),
		),
	)

	if cfg.UptraceLogsEnabled {
		logging.SetMirror(newUptraceLogMirror(cfg.ServiceVersion))
	} else {
		logging.SetMirror(nil)
	}

	logger.Info("uptrace enabled",
		"service_name", cfg.ServiceName,
		"environment", cfg.AppEnv,
		"logs_enabled", cfg.UptraceLogsEnabled,
		"sample_ratio", ratio,
	)
	return func(ctx context.Context) error {
		logging.SetMirror(nil)
		return uptrace.Shutdown(ctx)
	}, nil
}

// leagueTag renders the configured targets as "39:2025,140:2025".
func leagueTag(cfg config.Config) string {
	parts := make([]string, 0, len(cfg.FootballLeagues))
	for _, target := range cfg.FootballLeagues {
		parts = append(parts, strconv.FormatInt(target.LeagueRefID, 10)+":"+strconv.Itoa(target.Season))
	}
	return strings.Join(parts, ",")
}
