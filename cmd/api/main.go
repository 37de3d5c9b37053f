package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/riskibarqy/matchday/internal/app"
	"github.com/riskibarqy/matchday/internal/config"
	"github.com/riskibarqy/matchday/internal/observability"
	"github.com/riskibarqy/matchday/internal/platform/logging"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	telemetry, err := observability.Start(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "start telemetry: %v\n", err)
		os.Exit(1)
	}
	logger := telemetry.Logger
	logging.SetDefault(logger)

	os.Exit(run(ctx, cfg, logger, telemetry))
}

func run(ctx context.Context, cfg config.Config, logger *logging.Logger, telemetry *observability.Stack) int {
	exitCode := 0
	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("build app", "error", err)
		exitCode = 1
	} else if err := application.Run(ctx); err != nil {
		logger.Error("app stopped with error", "error", err)
		exitCode = 1
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.SchedulerShutdownTimeout+10*time.Second)
	defer cancel()

	if application != nil {
		if err := application.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", "error", err)
			exitCode = 1
		}
	}
	logger.Info("server stopped", "exit_code", exitCode)
	if err := telemetry.Shutdown(shutdownCtx); err != nil {
		exitCode = 1
	}
	_ = logger.Sync()
	return exitCode
}
