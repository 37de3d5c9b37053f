package match

import (
	"fmt"
	"strings"
	"time"
)

// ProviderFootballAPI names the default fixture provider in external id maps.
const ProviderFootballAPI = "football_api"

type Status string

const (
	StatusNotStarted     Status = "NS"
	StatusFirstHalf      Status = "1H"
	StatusHalfTime       Status = "HT"
	StatusSecondHalf     Status = "2H"
	StatusExtraTime      Status = "ET"
	StatusBreakTime      Status = "BT"
	StatusPenalties      Status = "P"
	StatusSuspended      Status = "SUSP"
	StatusInterrupted    Status = "INT"
	StatusFullTime       Status = "FT"
	StatusAfterExtraTime Status = "AET"
	StatusAfterPenalties Status = "PEN"
	StatusPostponed      Status = "PST"
	StatusCancelled      Status = "CANC"
	StatusAbandoned      Status = "ABD"
	StatusAwarded        Status = "AWD"
	StatusWalkover       Status = "WO"
	StatusLive           Status = "LIVE"
	StatusToBeDetermined Status = "TBD"
)

// NormalizeStatus upper-cases provider short codes; empty input means not started.
func NormalizeStatus(value string) Status {
	status := strings.ToUpper(strings.TrimSpace(value))
	if status == "" {
		return StatusNotStarted
	}
	return Status(status)
}

// IsTerminal reports statuses after which no further live updates are expected.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusFullTime, StatusAfterExtraTime, StatusAfterPenalties,
		StatusCancelled, StatusAbandoned, StatusAwarded, StatusWalkover:
		return true
	default:
		return false
	}
}

// IsLive reports in-play statuses that carry a live MatchState.
func (s Status) IsLive() bool {
	switch s {
	case StatusFirstHalf, StatusHalfTime, StatusSecondHalf, StatusExtraTime,
		StatusBreakTime, StatusPenalties, StatusSuspended, StatusInterrupted, StatusLive:
		return true
	default:
		return false
	}
}

// EventPollingStatuses are the statuses whose matches get event polling.
func EventPollingStatuses() []Status {
	return []Status{StatusFirstHalf, StatusSecondHalf, StatusHalfTime, StatusExtraTime, StatusLive}
}

// Match is one fixture keyed by the provider fixture id.
type Match struct {
	ID          string
	LeagueID    string
	Season      int
	HomeTeamID  string
	AwayTeamID  string
	VenueID     string
	StartTime   time.Time
	Status      Status
	Elapsed     *int
	HomeScore   *int
	AwayScore   *int
	ExternalIDs map[string]string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (m Match) Validate() error {
	if strings.TrimSpace(m.ID) == "" {
		return fmt.Errorf("match id is required")
	}
	if strings.TrimSpace(m.LeagueID) == "" {
		return fmt.Errorf("match league id is required")
	}
	if strings.TrimSpace(m.HomeTeamID) == "" || strings.TrimSpace(m.AwayTeamID) == "" {
		return fmt.Errorf("match home and away team ids are required")
	}
	if m.StartTime.IsZero() {
		return fmt.Errorf("match start time is required")
	}

	return nil
}

// MergeFrom applies the mutable fields of incoming onto m and reports whether anything changed.
func (m *Match) MergeFrom(incoming Match) bool {
	changed := false
	if incoming.Status != "" && incoming.Status != m.Status {
		m.Status = incoming.Status
		changed = true
	}
	if !incoming.StartTime.IsZero() && !incoming.StartTime.Equal(m.StartTime) {
		m.StartTime = incoming.StartTime
		changed = true
	}
	if !equalIntPtr(m.Elapsed, incoming.Elapsed) {
		m.Elapsed = incoming.Elapsed
		changed = true
	}
	if !equalIntPtr(m.HomeScore, incoming.HomeScore) {
		m.HomeScore = incoming.HomeScore
		changed = true
	}
	if !equalIntPtr(m.AwayScore, incoming.AwayScore) {
		m.AwayScore = incoming.AwayScore
		changed = true
	}
	if m.VenueID == "" && incoming.VenueID != "" {
		m.VenueID = incoming.VenueID
		changed = true
	}
	for provider, externalID := range incoming.ExternalIDs {
		if m.ExternalIDs == nil {
			m.ExternalIDs = make(map[string]string, len(incoming.ExternalIDs))
		}
		if m.ExternalIDs[provider] != externalID {
			m.ExternalIDs[provider] = externalID
			changed = true
		}
	}
	return changed
}

func equalIntPtr(a, b *int) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
