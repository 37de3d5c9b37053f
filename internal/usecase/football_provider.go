package usecase

import (
	"context"
	"time"
)

// FootballDataProvider is the typed fixture data source. Callers space requests themselves.
type FootballDataProvider interface {
	GetFixtures(ctx context.Context, date time.Time, leagueRefID int64, season int) ([]ExternalFixture, error)
	GetLiveFixtures(ctx context.Context, leagueRefIDs []int64) ([]ExternalFixture, error)
	GetFixtureEvents(ctx context.Context, fixtureRefID int64) ([]ExternalEvent, error)
	// GetFixtureStatistics returns an empty slice on any failure.
	GetFixtureStatistics(ctx context.Context, fixtureRefID int64) []ExternalTeamStatistics
	// GetFixtureLineups returns an empty slice on any failure.
	GetFixtureLineups(ctx context.Context, fixtureRefID int64) []ExternalLineup
}

type ExternalLeague struct {
	ExternalID int64
	Name       string
	Country    string
	Season     int
}

type ExternalTeam struct {
	ExternalID int64
	Name       string
	LogoURL    string
}

type ExternalVenue struct {
	ExternalID int64
	Name       string
	City       string
	Capacity   *int
}

type ExternalFixture struct {
	ExternalID int64
	League     ExternalLeague
	HomeTeam   ExternalTeam
	AwayTeam   ExternalTeam
	Venue      *ExternalVenue
	KickoffAt  time.Time
	StatusCode string
	Elapsed    *int
	HomeGoals  *int
	AwayGoals  *int
}

type ExternalEvent struct {
	FixtureExternalID int64
	Elapsed           int
	Extra             *int
	TeamExternalID    int64
	TeamName          string
	PlayerExternalID  int64
	PlayerName        string
	AssistName        string
	Type              string
	Detail            string
	Comments          string
}

type ExternalStatistic struct {
	Type  string
	Value any
}

type ExternalTeamStatistics struct {
	TeamExternalID int64
	Statistics     []ExternalStatistic
}

type ExternalLineupPlayer struct {
	ExternalID int64
	Name       string
	Number     int
	Position   string
}

type ExternalLineup struct {
	TeamExternalID int64
	Formation      string
	Coach          string
	StartXI        []ExternalLineupPlayer
	Substitutes    []ExternalLineupPlayer
}
