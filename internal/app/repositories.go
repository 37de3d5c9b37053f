package app

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/matchday/internal/config"
	"github.com/riskibarqy/matchday/internal/domain/devicetoken"
	"github.com/riskibarqy/matchday/internal/domain/follow"
	"github.com/riskibarqy/matchday/internal/domain/jobscheduler"
	"github.com/riskibarqy/matchday/internal/domain/league"
	"github.com/riskibarqy/matchday/internal/domain/match"
	"github.com/riskibarqy/matchday/internal/domain/matchevent"
	"github.com/riskibarqy/matchday/internal/domain/notification"
	"github.com/riskibarqy/matchday/internal/domain/rawdata"
	"github.com/riskibarqy/matchday/internal/domain/stadiumguide"
	"github.com/riskibarqy/matchday/internal/domain/team"
	"github.com/riskibarqy/matchday/internal/domain/user"
	"github.com/riskibarqy/matchday/internal/domain/venue"
	cacherepo "github.com/riskibarqy/matchday/internal/infrastructure/repository/cache"
	"github.com/riskibarqy/matchday/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/matchday/internal/infrastructure/repository/postgres"
	basecache "github.com/riskibarqy/matchday/internal/platform/cache"
	"github.com/riskibarqy/matchday/internal/platform/logging"
	"github.com/riskibarqy/matchday/internal/usecase"
)

type repositories struct {
	store    usecase.StorePinger
	txRunner usecase.IngestionTxRunner

	leagues  league.Repository
	teams    team.Repository
	venues   venue.Repository
	users    user.Repository
	matches  match.Repository
	states   match.StateRepository
	events   matchevent.Repository
	follows  follow.Repository
	tokens   devicetoken.Repository
	logs     notification.LogRepository
	guides   stadiumguide.Repository
	jobRuns  jobscheduler.Repository
	rawData  rawdata.Repository

	// Read-through views of reference data for the follow and guide checks.
	cachedLeagues league.Repository
	cachedTeams   team.Repository
	cachedVenues  venue.Repository
	cachedUsers   user.Repository

	close func() error
}

// buildRepositories opens Postgres when DB_URL is set and falls back to the seeded
// in-memory store otherwise.
func buildRepositories(ctx context.Context, cfg config.Config, logger *logging.Logger) (*repositories, error) {
	var repos *repositories
	if cfg.DBURL == "" {
		logger.Warn("DB_URL is empty, using in-memory repositories")
		repos = memoryRepositories()
	} else {
		db, err := openDB(ctx, cfg)
		if err != nil {
			return nil, err
		}
		if cfg.DBBootstrapSeed {
			if err := postgres.BootstrapSeed(ctx, db); err != nil {
				_ = db.Close()
				return nil, fmt.Errorf("bootstrap seed: %w", err)
			}
			logger.Info("database bootstrap seed applied")
		}
		repos = postgresRepositories(db)
	}

	reference := basecache.NewStore(cfg.ReferenceCacheTTL)
	repos.cachedLeagues = cacherepo.NewLeagueRepository(repos.leagues, reference)
	repos.cachedTeams = cacherepo.NewTeamRepository(repos.teams, reference)
	repos.cachedVenues = cacherepo.NewVenueRepository(repos.venues, reference)
	repos.cachedUsers = cacherepo.NewUserRepository(repos.users, reference)
	return repos, nil
}

func memoryRepositories() *repositories {
	store := memory.NewStore()
	memory.Seed(store)

	return &repositories{
		store:    store,
		txRunner: memory.NewTxRunner(store),
		leagues:  memory.NewLeagueRepository(store),
		teams:    memory.NewTeamRepository(store),
		venues:   memory.NewVenueRepository(store),
		users:    memory.NewUserRepository(store, nil),
		matches:  memory.NewMatchRepository(store),
		states:   memory.NewMatchStateRepository(store),
		events:   memory.NewMatchEventRepository(store),
		follows:  memory.NewFollowRepository(store),
		tokens:   memory.NewDeviceTokenRepository(store),
		logs:     memory.NewNotificationLogRepository(store),
		guides:   memory.NewStadiumGuideRepository(store),
		jobRuns:  memory.NewJobRunRepository(store),
		rawData:  memory.NewRawDataRepository(store),
		close:    func() error { return nil },
	}
}

func postgresRepositories(db *sqlx.DB) *repositories {
	return &repositories{
		store:    db,
		txRunner: postgres.NewIngestionTxRunner(db),
		leagues:  postgres.NewLeagueRepository(db),
		teams:    postgres.NewTeamRepository(db),
		venues:   postgres.NewVenueRepository(db),
		users:    postgres.NewUserRepository(db),
		matches:  postgres.NewMatchRepository(db),
		states:   postgres.NewMatchStateRepository(db),
		events:   postgres.NewMatchEventRepository(db),
		follows:  postgres.NewFollowRepository(db),
		tokens:   postgres.NewDeviceTokenRepository(db),
		logs:     postgres.NewNotificationLogRepository(db),
		guides:   postgres.NewStadiumGuideRepository(db),
		jobRuns:  postgres.NewJobRunRepository(db),
		rawData:  postgres.NewRawDataRepository(db),
		close:    db.Close,
	}
}
