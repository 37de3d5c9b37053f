package memory

import (
	"context"
	"sync"
	"time"

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
)

type followKey struct {
	userID     string
	entityType follow.EntityType
	entityID   string
}

// Store is the shared state behind every memory repository. It backs tests and
// local runs without a database.
type Store struct {
	mu   sync.RWMutex
	txMu sync.Mutex

	leagues       map[string]league.League
	teams         map[string]team.Team
	venues        map[string]venue.Venue
	matches       map[string]match.Match
	matchExternal map[string]string
	states        map[string]match.State
	events        map[string][]matchevent.Event
	follows       map[followKey]follow.Follow
	users         map[string]user.User
	tokens        map[string]devicetoken.DeviceToken
	guides        map[string]stadiumguide.Guide
	notifications []notification.Log
	jobRuns       map[string]jobscheduler.Run
	rawPayloads   map[string]rawdata.Payload

	// journal is set while an ingestion transaction is open.
	journal *txJournal

	now func() time.Time
}

const (
	tableLeagues       = "leagues"
	tableTeams         = "teams"
	tableVenues        = "venues"
	tableMatches       = "matches"
	tableMatchExternal = "match_external_ids"
	tableStates        = "match_states"
)

func NewStore() *Store {
	return &Store{
		leagues:       make(map[string]league.League),
		teams:         make(map[string]team.Team),
		venues:        make(map[string]venue.Venue),
		matches:       make(map[string]match.Match),
		matchExternal: make(map[string]string),
		states:        make(map[string]match.State),
		events:        make(map[string][]matchevent.Event),
		follows:       make(map[followKey]follow.Follow),
		users:         make(map[string]user.User),
		tokens:        make(map[string]devicetoken.DeviceToken),
		guides:        make(map[string]stadiumguide.Guide),
		jobRuns:       make(map[string]jobscheduler.Run),
		rawPayloads:   make(map[string]rawdata.Payload),
		now:           time.Now,
	}
}

func (s *Store) PingContext(ctx context.Context) error {
	return ctx.Err()
}

func externalKey(provider, externalID string) string {
	return provider + "|" + externalID
}
