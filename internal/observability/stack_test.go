package observability

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/riskibarqy/matchday/internal/config"
	"github.com/riskibarqy/matchday/internal/domain/league"
	"github.com/riskibarqy/matchday/internal/platform/logging"
)

func TestStart_AllBackendsDisabled(t *testing.T) {
	cfg := config.Config{
		ServiceName:    "matchday-api",
		ServiceVersion: "dev",
		AppEnv:         config.EnvDev,
		LogLevel:       logging.LevelError,
	}

	stack, err := Start(context.Background(), cfg)
	if err != nil {
		t.Fatalf("start stack: %v", err)
	}
	if stack.Logger == nil {
		t.Fatalf("expected a logger")
	}
	if len(stack.backends) != 0 {
		t.Fatalf("expected no backends, got %d", len(stack.backends))
	}
	if err := stack.Shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
}

func TestStack_ShutdownReverseOrderJoinsErrors(t *testing.T) {
	var order []string
	stopper := func(name string, err error) stopFunc {
		return func(context.Context) error {
			order = append(order, name)
			return err
		}
	}

	s := &Stack{Logger: logging.NewNop()}
	s.add("betterstack", stopper("betterstack", nil))
	s.add("uptrace", stopper("uptrace", errors.New("exporter timeout")))
	s.add("pprof", stopper("pprof", nil))
	s.add("pyroscope", nil)

	err := s.Shutdown(context.Background())
	if err == nil {
		t.Fatalf("expected joined error")
	}
	want := []string{"pprof", "uptrace", "betterstack"}
	if len(order) != len(want) {
		t.Fatalf("unexpected stop order: %v", order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("unexpected stop order: %v", order)
		}
	}
}

func TestLeagueTagAndProfileTags(t *testing.T) {
	cfg := config.Config{
		ServiceName:      "matchday-api",
		AppEnv:           config.EnvDev,
		SchedulerEnabled: true,
		FootballLeagues:  []league.Target{{LeagueRefID: 39, Season: 2025}, {LeagueRefID: 140, Season: 2025}},
	}
	if got := leagueTag(cfg); got != "39:2025,140:2025" {
		t.Fatalf("unexpected league tag: %q", got)
	}

	tags := profileTags(cfg)
	if tags["leagues"] != "39:2025,140:2025" || tags["scheduler"] != "true" {
		t.Fatalf("unexpected profile tags: %v", tags)
	}
	if _, ok := profileTags(config.Config{})["leagues"]; ok {
		t.Fatalf("expected no leagues tag without targets")
	}
}

func TestPprofMux_ServesIndex(t *testing.T) {
	rec := httptest.NewRecorder()
	pprofMux().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/debug/pprof/", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected pprof index, got %d", rec.Code)
	}
}
