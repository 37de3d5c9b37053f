package usecase

import (
	"fmt"
	"strings"

	"github.com/riskibarqy/matchday/internal/domain/follow"
)

const (
	EventTypeGoal       = "GOAL"
	EventTypeCard       = "CARD"
	EventTypeSubst      = "SUBST"
	EventTypeVAR        = "VAR"
	EventTypeMatchStart = "MATCH_START"
	EventTypeMatchEnd   = "MATCH_END"
	EventTypeLineups    = "LINEUPS"
	EventTypeTest       = "TEST"
)

type EntityRef struct {
	Type follow.EntityType `json:"type"`
	ID   string            `json:"id"`
}

// NotificationEvent is a domain event addressed to the followers of one entity.
// Followers of Related entities are included as well; each user is notified once.
type NotificationEvent struct {
	EntityType follow.EntityType `json:"entityType"`
	EntityID   string            `json:"entityId"`
	EventType  string            `json:"eventType"`
	EventData  map[string]any    `json:"eventData,omitempty"`
	Related    []EntityRef       `json:"related,omitempty"`
	Title      string            `json:"title,omitempty"`
	Body       string            `json:"body,omitempty"`
}

func (e NotificationEvent) targets() []EntityRef {
	out := make([]EntityRef, 0, len(e.Related)+1)
	seen := make(map[EntityRef]struct{}, len(e.Related)+1)
	add := func(ref EntityRef) {
		ref.ID = strings.TrimSpace(ref.ID)
		if ref.ID == "" || ref.Type == "" {
			return
		}
		if _, ok := seen[ref]; ok {
			return
		}
		seen[ref] = struct{}{}
		out = append(out, ref)
	}
	add(EntityRef{Type: e.EntityType, ID: e.EntityID})
	for _, ref := range e.Related {
		add(ref)
	}
	return out
}

// preferenceAllows reports whether prefs opt into eventType. Unknown types are never delivered.
func preferenceAllows(prefs follow.Preferences, eventType string) bool {
	switch strings.ToUpper(strings.TrimSpace(eventType)) {
	case EventTypeGoal, EventTypeVAR:
		return prefs.Goals
	case EventTypeCard:
		return prefs.Cards
	case EventTypeSubst:
		return prefs.Substitutions
	case EventTypeMatchStart:
		return prefs.MatchStart
	case EventTypeMatchEnd:
		return prefs.MatchEnd
	case EventTypeLineups:
		return prefs.Lineups
	default:
		return false
	}
}

func defaultNotificationText(event NotificationEvent) (string, string) {
	title := strings.TrimSpace(event.Title)
	body := strings.TrimSpace(event.Body)
	if title != "" && body != "" {
		return title, body
	}

	player, _ := event.EventData["player_name"].(string)
	detail, _ := event.EventData["detail"].(string)
	minute := ""
	if v, ok := event.EventData["elapsed"]; ok {
		minute = fmt.Sprintf(" %v'", v)
	}

	var defTitle, defBody string
	switch strings.ToUpper(event.EventType) {
	case EventTypeGoal:
		defTitle = "Goal!"
		defBody = strings.TrimSpace(player + minute)
	case EventTypeCard:
		defTitle = "Card"
		defBody = strings.TrimSpace(strings.TrimSpace(detail+" "+player) + minute)
	case EventTypeSubst:
		defTitle = "Substitution"
		defBody = strings.TrimSpace(player + minute)
	case EventTypeVAR:
		defTitle = "VAR check"
		defBody = strings.TrimSpace(detail + minute)
	case EventTypeMatchStart:
		defTitle = "Kick-off"
		defBody = "The match has started"
	case EventTypeMatchEnd:
		defTitle = "Full time"
		defBody = "The match has finished"
	case EventTypeLineups:
		defTitle = "Lineups"
		defBody = "Lineups are out"
	default:
		defTitle = "Match update"
	}
	if title == "" {
		title = defTitle
	}
	if body == "" {
		body = defBody
	}
	return title, body
}
