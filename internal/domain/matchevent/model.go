package matchevent

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrDuplicate is returned when an event with the same provider event id already exists.
var ErrDuplicate = errors.New("match event already exists")

const (
	TypeGoal  = "GOAL"
	TypeCard  = "CARD"
	TypeSubst = "SUBST"
	TypeVAR   = "VAR"
)

// Event is one append-only entry of a match timeline.
type Event struct {
	ID              string
	MatchID         string
	ProviderEventID string
	Type            string
	Detail          string
	TeamID          string
	PlayerID        string
	PlayerName      string
	AssistName      string
	Elapsed         int
	Extra           *int
	OccurredAt      time.Time
	Payload         map[string]any
	CreatedAt       time.Time
}

func (e Event) Validate() error {
	if strings.TrimSpace(e.MatchID) == "" {
		return fmt.Errorf("match event match id is required")
	}
	if strings.TrimSpace(e.ProviderEventID) == "" {
		return fmt.Errorf("match event provider event id is required")
	}
	if strings.TrimSpace(e.Type) == "" {
		return fmt.Errorf("match event type is required")
	}
	return nil
}

// ProviderEventID composes the dedup key for provider events that carry no id of their own.
func ProviderEventID(matchID string, elapsed int, eventType, teamID string) string {
	teamID = strings.TrimSpace(teamID)
	if teamID == "" {
		teamID = "none"
	}
	return strings.Join([]string{
		strings.TrimSpace(matchID),
		strconv.Itoa(elapsed),
		strings.ToUpper(strings.TrimSpace(eventType)),
		teamID,
	}, "-")
}
