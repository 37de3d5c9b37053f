package usecase

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/riskibarqy/matchday/internal/domain/league"
	"github.com/riskibarqy/matchday/internal/domain/match"
	"github.com/riskibarqy/matchday/internal/domain/matchevent"
	"github.com/riskibarqy/matchday/internal/domain/team"
	"github.com/riskibarqy/matchday/internal/domain/venue"
)

const halfTimeBreak = 15 * time.Minute

// MappedFixture is everything one provider fixture contributes to the store.
type MappedFixture struct {
	League league.League
	Home   team.Team
	Away   team.Team
	Venue  *venue.Venue
	Match  match.Match
}

// MatchStatistics holds per-side statistics keyed by normalized stat name.
type MatchStatistics struct {
	Home map[string]float64 `json:"home"`
	Away map[string]float64 `json:"away"`
}

type MatchLineup struct {
	TeamID      string   `json:"teamId"`
	Formation   string   `json:"formation"`
	Coach       string   `json:"coach"`
	Starters    []string `json:"starters"`
	Substitutes []string `json:"substitutes"`
}

func externalIDString(value int64) string {
	if value <= 0 {
		return ""
	}
	return strconv.FormatInt(value, 10)
}

// MapFixtureToMatch translates one provider fixture. fallbackSeason is used when the
// payload carries no season.
func MapFixtureToMatch(item ExternalFixture, fallbackSeason int) (MappedFixture, error) {
	if item.ExternalID <= 0 {
		return MappedFixture{}, fmt.Errorf("%w: fixture external id is required", ErrInvalidInput)
	}
	if item.League.ExternalID <= 0 {
		return MappedFixture{}, fmt.Errorf("%w: fixture %d has no league", ErrInvalidInput, item.ExternalID)
	}
	if item.HomeTeam.ExternalID <= 0 || item.AwayTeam.ExternalID <= 0 {
		return MappedFixture{}, fmt.Errorf("%w: fixture %d has incomplete teams", ErrInvalidInput, item.ExternalID)
	}

	season := item.League.Season
	if season <= 0 {
		season = fallbackSeason
	}

	out := MappedFixture{
		League: league.League{
			ID:          externalIDString(item.League.ExternalID),
			Name:        strings.TrimSpace(item.League.Name),
			Country:     strings.TrimSpace(item.League.Country),
			Season:      season,
			LeagueRefID: item.League.ExternalID,
		},
		Home: mapExternalTeam(item.HomeTeam, item.League.ExternalID),
		Away: mapExternalTeam(item.AwayTeam, item.League.ExternalID),
	}
	if out.League.Name == "" {
		out.League.Name = "League " + out.League.ID
	}

	if item.Venue != nil && item.Venue.ExternalID > 0 {
		v := venue.Venue{
			ID:         externalIDString(item.Venue.ExternalID),
			Name:       strings.TrimSpace(item.Venue.Name),
			City:       strings.TrimSpace(item.Venue.City),
			Capacity:   item.Venue.Capacity,
			VenueRefID: item.Venue.ExternalID,
		}
		if v.Name == "" {
			v.Name = "Venue " + v.ID
		}
		out.Venue = &v
	}

	matchID := externalIDString(item.ExternalID)
	out.Match = match.Match{
		ID:          matchID,
		LeagueID:    out.League.ID,
		Season:      season,
		HomeTeamID:  out.Home.ID,
		AwayTeamID:  out.Away.ID,
		StartTime:   item.KickoffAt.UTC(),
		Status:      match.NormalizeStatus(item.StatusCode),
		Elapsed:     copyIntPtr(item.Elapsed),
		HomeScore:   copyIntPtr(item.HomeGoals),
		AwayScore:   copyIntPtr(item.AwayGoals),
		ExternalIDs: map[string]string{match.ProviderFootballAPI: matchID},
	}
	if out.Venue != nil {
		out.Match.VenueID = out.Venue.ID
	}

	return out, nil
}

func mapExternalTeam(item ExternalTeam, leagueRefID int64) team.Team {
	name := strings.TrimSpace(item.Name)
	id := externalIDString(item.ExternalID)
	if name == "" {
		name = "Team " + id
	}
	return team.Team{
		ID:        id,
		LeagueID:  externalIDString(leagueRefID),
		Name:      name,
		ShortName: team.ShortName(name),
		LogoURL:   strings.TrimSpace(item.LogoURL),
		TeamRefID: item.ExternalID,
	}
}

// MapEventToMatchEvent translates one provider timeline entry. The provider sends no
// absolute timestamp, so OccurredAt is approximated from kickoff and the elapsed minutes.
func MapEventToMatchEvent(matchID string, kickoffAt time.Time, item ExternalEvent) matchevent.Event {
	eventType := strings.ToUpper(strings.TrimSpace(item.Type))
	teamID := externalIDString(item.TeamExternalID)

	payload := map[string]any{
		"elapsed": item.Elapsed,
	}
	if item.Extra != nil {
		payload["extra"] = *item.Extra
	}
	if comments := strings.TrimSpace(item.Comments); comments != "" {
		payload["comments"] = comments
	}
	if name := strings.TrimSpace(item.TeamName); name != "" {
		payload["team_name"] = name
	}

	return matchevent.Event{
		MatchID:         matchID,
		ProviderEventID: matchevent.ProviderEventID(matchID, item.Elapsed, eventType, teamID),
		Type:            eventType,
		Detail:          strings.TrimSpace(item.Detail),
		TeamID:          teamID,
		PlayerID:        externalIDString(item.PlayerExternalID),
		PlayerName:      strings.TrimSpace(item.PlayerName),
		AssistName:      strings.TrimSpace(item.AssistName),
		Elapsed:         item.Elapsed,
		Extra:           copyIntPtr(item.Extra),
		OccurredAt:      approximateEventTime(kickoffAt, item.Elapsed, item.Extra),
		Payload:         payload,
	}
}

func approximateEventTime(kickoffAt time.Time, elapsed int, extra *int) time.Time {
	if kickoffAt.IsZero() {
		return time.Time{}
	}
	minutes := elapsed
	if extra != nil && *extra > 0 {
		minutes += *extra
	}
	out := kickoffAt.UTC().Add(time.Duration(minutes) * time.Minute)
	if elapsed > 45 {
		out = out.Add(halfTimeBreak)
	}
	return out
}

// AggregateStatistics folds the provider's per-team statistic lists into home and away maps.
func AggregateStatistics(items []ExternalTeamStatistics, homeTeamRefID, awayTeamRefID int64) MatchStatistics {
	out := MatchStatistics{
		Home: make(map[string]float64),
		Away: make(map[string]float64),
	}
	for _, item := range items {
		var dst map[string]float64
		switch item.TeamExternalID {
		case homeTeamRefID:
			dst = out.Home
		case awayTeamRefID:
			dst = out.Away
		default:
			continue
		}
		for _, stat := range item.Statistics {
			key := normalizeStatName(stat.Type)
			if key == "" {
				continue
			}
			value, ok := statValue(stat.Value)
			if !ok {
				continue
			}
			dst[key] += value
		}
	}
	return out
}

func MapLineups(items []ExternalLineup) []MatchLineup {
	out := make([]MatchLineup, 0, len(items))
	for _, item := range items {
		lineup := MatchLineup{
			TeamID:      externalIDString(item.TeamExternalID),
			Formation:   strings.TrimSpace(item.Formation),
			Coach:       strings.TrimSpace(item.Coach),
			Starters:    lineupNames(item.StartXI),
			Substitutes: lineupNames(item.Substitutes),
		}
		out = append(out, lineup)
	}
	return out
}

func lineupNames(players []ExternalLineupPlayer) []string {
	out := make([]string, 0, len(players))
	for _, p := range players {
		if name := strings.TrimSpace(p.Name); name != "" {
			out = append(out, name)
		}
	}
	return out
}

func normalizeStatName(raw string) string {
	raw = strings.ToLower(strings.TrimSpace(raw))
	raw = strings.ReplaceAll(raw, "%", "pct")
	return strings.Join(strings.Fields(raw), "_")
}

func statValue(raw any) (float64, bool) {
	switch v := raw.(type) {
	case nil:
		return 0, false
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case float64:
		if math.IsNaN(v) {
			return 0, false
		}
		return v, true
	case string:
		trimmed := strings.TrimSuffix(strings.TrimSpace(v), "%")
		if trimmed == "" {
			return 0, false
		}
		parsed, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}

func copyIntPtr(value *int) *int {
	if value == nil {
		return nil
	}
	v := *value
	return &v
}
