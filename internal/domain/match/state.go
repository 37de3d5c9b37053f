package match

import "time"

// State is the latest known live snapshot of a match. It keeps no history.
type State struct {
	MatchID     string    `json:"matchId"`
	Minute      *int      `json:"minute,omitempty"`
	Phase       Phase     `json:"phase"`
	HomeScore   int       `json:"homeScore"`
	AwayScore   int       `json:"awayScore"`
	LastEventID string    `json:"lastEventId,omitempty"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// StateFromMatch builds the live snapshot for m.
func StateFromMatch(m Match, now time.Time) State {
	state := State{
		MatchID:   m.ID,
		Minute:    m.Elapsed,
		Phase:     DerivePhase(m.Status, m.Elapsed),
		UpdatedAt: now,
	}
	if m.HomeScore != nil {
		state.HomeScore = *m.HomeScore
	}
	if m.AwayScore != nil {
		state.AwayScore = *m.AwayScore
	}
	return state
}
