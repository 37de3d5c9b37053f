package memory

import (
	"github.com/riskibarqy/matchday/internal/domain/league"
	"github.com/riskibarqy/matchday/internal/domain/team"
	"github.com/riskibarqy/matchday/internal/domain/user"
	"github.com/riskibarqy/matchday/internal/domain/venue"
)

const (
	LeagueIDLiga1Indonesia = "idn-liga-1-2025"
	LeagueIDPremierLeague  = "eng-premier-league-2025"
)

func SeedLeagues() []league.League {
	return []league.League{
		{
			ID:          LeagueIDLiga1Indonesia,
			Name:        "Liga 1 Indonesia",
			Country:     "Indonesia",
			Season:      2025,
			LeagueRefID: 274,
		},
		{
			ID:          LeagueIDPremierLeague,
			Name:        "Premier League",
			Country:     "England",
			Season:      2025,
			LeagueRefID: 39,
		},
	}
}

func SeedTeams() []team.Team {
	return []team.Team{
		{ID: "idn-persija", LeagueID: LeagueIDLiga1Indonesia, Name: "Persija Jakarta", ShortName: "PJ", TeamRefID: 2446},
		{ID: "idn-persib", LeagueID: LeagueIDLiga1Indonesia, Name: "Persib Bandung", ShortName: "PB", TeamRefID: 2445},
		{ID: "eng-ars", LeagueID: LeagueIDPremierLeague, Name: "Arsenal", ShortName: "ARS", TeamRefID: 42},
		{ID: "eng-liv", LeagueID: LeagueIDPremierLeague, Name: "Liverpool", ShortName: "LIV", TeamRefID: 40},
	}
}

func SeedVenues() []venue.Venue {
	jis := 82000
	emirates := 60704
	return []venue.Venue{
		{ID: "venue-jis", Name: "Jakarta International Stadium", City: "Jakarta", Capacity: &jis, VenueRefID: 11580},
		{ID: "venue-emirates", Name: "Emirates Stadium", City: "London", Capacity: &emirates, VenueRefID: 494},
	}
}

func SeedUsers() []user.User {
	return []user.User{
		{ID: "user-demo-1", DisplayName: "Demo Supporter", Active: true},
		{ID: "user-demo-2", DisplayName: "Away Day Regular", Active: true},
		{ID: "user-inactive", DisplayName: "Closed Account", Active: false},
	}
}

// Seed loads the local development data set into store.
func Seed(store *Store) {
	store.mu.Lock()
	defer store.mu.Unlock()

	for _, item := range SeedLeagues() {
		store.leagues[item.ID] = item
	}
	for _, item := range SeedTeams() {
		store.teams[item.ID] = item
	}
	for _, item := range SeedVenues() {
		store.venues[item.ID] = item
	}
	for _, item := range SeedUsers() {
		store.users[item.ID] = item
	}
}
