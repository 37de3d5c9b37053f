package follow

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrDuplicate is returned by repositories on a (user, entity type, entity id) conflict.
var ErrDuplicate = errors.New("follow already exists")

type EntityType string

const (
	EntityTeam   EntityType = "team"
	EntityLeague EntityType = "league"
	EntityMatch  EntityType = "match"
)

// ParseEntityType accepts the entity type in any case.
func ParseEntityType(value string) (EntityType, error) {
	switch EntityType(strings.ToLower(strings.TrimSpace(value))) {
	case EntityTeam:
		return EntityTeam, nil
	case EntityLeague:
		return EntityLeague, nil
	case EntityMatch:
		return EntityMatch, nil
	default:
		return "", fmt.Errorf("unsupported entity type %q", value)
	}
}

func EntityTypes() []EntityType {
	return []EntityType{EntityTeam, EntityLeague, EntityMatch}
}

type Status string

const (
	StatusActive Status = "active"
	StatusMuted  Status = "muted"
	StatusPaused Status = "paused"
)

// Preferences selects which event kinds a follower is notified about.
type Preferences struct {
	Goals         bool `json:"goals"`
	Cards         bool `json:"cards"`
	Substitutions bool `json:"substitutions"`
	MatchStart    bool `json:"matchStart"`
	MatchEnd      bool `json:"matchEnd"`
	Lineups       bool `json:"lineups"`
}

func DefaultPreferences() Preferences {
	return Preferences{
		Goals:      true,
		MatchStart: true,
		MatchEnd:   true,
	}
}

// PreferencesPatch carries optional overrides; nil fields keep the current value.
type PreferencesPatch struct {
	Goals         *bool `json:"goals,omitempty"`
	Cards         *bool `json:"cards,omitempty"`
	Substitutions *bool `json:"substitutions,omitempty"`
	MatchStart    *bool `json:"matchStart,omitempty"`
	MatchEnd      *bool `json:"matchEnd,omitempty"`
	Lineups       *bool `json:"lineups,omitempty"`
}

func (p Preferences) Apply(patch PreferencesPatch) Preferences {
	apply := func(dst *bool, src *bool) {
		if src != nil {
			*dst = *src
		}
	}
	apply(&p.Goals, patch.Goals)
	apply(&p.Cards, patch.Cards)
	apply(&p.Substitutions, patch.Substitutions)
	apply(&p.MatchStart, patch.MatchStart)
	apply(&p.MatchEnd, patch.MatchEnd)
	apply(&p.Lineups, patch.Lineups)
	return p
}

func (p PreferencesPatch) IsEmpty() bool {
	return p.Goals == nil && p.Cards == nil && p.Substitutions == nil &&
		p.MatchStart == nil && p.MatchEnd == nil && p.Lineups == nil
}

// Follow links a user to a team, league or match.
type Follow struct {
	ID          string
	UserID      string
	EntityType  EntityType
	EntityID    string
	Preferences Preferences
	Active      bool
	Status      Status
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Receives reports whether the follow is eligible for notifications at all.
func (f Follow) Receives() bool {
	return f.Active && f.Status == StatusActive
}

// Stats summarizes a user's follows per entity type.
type Stats struct {
	TotalFollows  int `json:"totalFollows"`
	TeamFollows   int `json:"teamFollows"`
	LeagueFollows int `json:"leagueFollows"`
	MatchFollows  int `json:"matchFollows"`
}
