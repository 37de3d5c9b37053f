package httpapi

import (
	"time"

	"github.com/riskibarqy/matchday/internal/domain/devicetoken"
	"github.com/riskibarqy/matchday/internal/domain/follow"
	"github.com/riskibarqy/matchday/internal/domain/jobscheduler"
	"github.com/riskibarqy/matchday/internal/domain/match"
	"github.com/riskibarqy/matchday/internal/domain/matchevent"
	"github.com/riskibarqy/matchday/internal/domain/stadiumguide"
	"github.com/riskibarqy/matchday/internal/usecase"
)

type followRequest struct {
	EntityType  string                   `json:"entityType" validate:"required"`
	EntityID    string                   `json:"entityId" validate:"required,max=128"`
	Preferences *follow.PreferencesPatch `json:"preferences,omitempty"`
}

type bulkFollowRequest struct {
	Targets []usecase.FollowTarget `json:"targets" validate:"required,min=1,max=100"`
}

type registerDeviceRequest struct {
	Token      string `json:"token"`
	Platform   string `json:"platform"`
	DeviceName string `json:"deviceName"`
	AppVersion string `json:"appVersion"`
	OSVersion  string `json:"osVersion"`
}

type ingestLeagueRequest struct {
	Date string `json:"date" validate:"omitempty,datetime=2006-01-02"`
}

type sendTestRequest struct {
	UserID string `json:"userId" validate:"required"`
}

type broadcastRequest struct {
	TeamID   string            `json:"teamId"`
	LeagueID string            `json:"leagueId"`
	VenueID  string            `json:"venueId"`
	Date     string            `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Title    string            `json:"title" validate:"required,max=200"`
	Body     string            `json:"body" validate:"required,max=1000"`
	ImageURL string            `json:"imageUrl" validate:"omitempty,url"`
	Data     map[string]string `json:"data"`
}

type refreshGuidesRequest struct {
	VenueIDs []string `json:"venueIds" validate:"required,min=1,max=200"`
}

type followDTO struct {
	ID          string             `json:"id"`
	UserID      string             `json:"userId"`
	EntityType  follow.EntityType  `json:"entityType"`
	EntityID    string             `json:"entityId"`
	Preferences follow.Preferences `json:"preferences"`
	Active      bool               `json:"active"`
	Status      follow.Status      `json:"status"`
	CreatedAt   time.Time          `json:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt"`
}

func followToDTO(item follow.Follow) followDTO {
	return followDTO{
		ID:          item.ID,
		UserID:      item.UserID,
		EntityType:  item.EntityType,
		EntityID:    item.EntityID,
		Preferences: item.Preferences,
		Active:      item.Active,
		Status:      item.Status,
		CreatedAt:   item.CreatedAt,
		UpdatedAt:   item.UpdatedAt,
	}
}

func followsToDTO(items []follow.Follow) []followDTO {
	out := make([]followDTO, 0, len(items))
	for _, item := range items {
		out = append(out, followToDTO(item))
	}
	return out
}

type bulkFollowDTO struct {
	Followed []followDTO                 `json:"followed"`
	Skipped  int                         `json:"skipped"`
	Failures []usecase.BulkFollowFailure `json:"failures"`
}

type deviceDTO struct {
	ID         string               `json:"id"`
	Platform   devicetoken.Platform `json:"platform"`
	DeviceName string               `json:"deviceName,omitempty"`
	AppVersion string               `json:"appVersion,omitempty"`
	OSVersion  string               `json:"osVersion,omitempty"`
	Active     bool                 `json:"active"`
	LastUsedAt time.Time            `json:"lastUsedAt"`
	// Only the tail is echoed back.
	TokenSuffix string `json:"tokenSuffix"`
}

func deviceToDTO(item devicetoken.DeviceToken) deviceDTO {
	suffix := item.Token
	if len(suffix) > 8 {
		suffix = suffix[len(suffix)-8:]
	}
	return deviceDTO{
		ID:          item.ID,
		Platform:    item.Platform,
		DeviceName:  item.DeviceName,
		AppVersion:  item.AppVersion,
		OSVersion:   item.OSVersion,
		Active:      item.Active,
		LastUsedAt:  item.LastUsedAt,
		TokenSuffix: suffix,
	}
}

type matchDTO struct {
	ID          string            `json:"id"`
	LeagueID    string            `json:"leagueId"`
	Season      int               `json:"season"`
	HomeTeamID  string            `json:"homeTeamId"`
	AwayTeamID  string            `json:"awayTeamId"`
	VenueID     string            `json:"venueId,omitempty"`
	StartTime   time.Time         `json:"startTime"`
	Status      match.Status      `json:"status"`
	Phase       match.Phase       `json:"phase"`
	Elapsed     *int              `json:"elapsed,omitempty"`
	HomeScore   *int              `json:"homeScore,omitempty"`
	AwayScore   *int              `json:"awayScore,omitempty"`
	ExternalIDs map[string]string `json:"externalIds,omitempty"`
}

type matchEventDTO struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	Detail     string    `json:"detail,omitempty"`
	TeamID     string    `json:"teamId,omitempty"`
	PlayerName string    `json:"playerName,omitempty"`
	AssistName string    `json:"assistName,omitempty"`
	Elapsed    int       `json:"elapsed"`
	Extra      *int      `json:"extra,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}

type matchDetailDTO struct {
	Match      matchDTO                `json:"match"`
	State      *match.State            `json:"state,omitempty"`
	Events     []matchEventDTO         `json:"events"`
	Statistics usecase.MatchStatistics `json:"statistics"`
	Lineups    []usecase.MatchLineup   `json:"lineups"`
}

func matchDetailToDTO(detail usecase.MatchDetail) matchDetailDTO {
	item := detail.Match
	events := make([]matchEventDTO, 0, len(detail.Events))
	for _, event := range detail.Events {
		events = append(events, matchEventToDTO(event))
	}

	return matchDetailDTO{
		Match: matchDTO{
			ID:          item.ID,
			LeagueID:    item.LeagueID,
			Season:      item.Season,
			HomeTeamID:  item.HomeTeamID,
			AwayTeamID:  item.AwayTeamID,
			VenueID:     item.VenueID,
			StartTime:   item.StartTime,
			Status:      item.Status,
			Phase:       match.DerivePhase(item.Status, item.Elapsed),
			Elapsed:     item.Elapsed,
			HomeScore:   item.HomeScore,
			AwayScore:   item.AwayScore,
			ExternalIDs: item.ExternalIDs,
		},
		State:      detail.State,
		Events:     events,
		Statistics: detail.Statistics,
		Lineups:    detail.Lineups,
	}
}

func matchEventToDTO(item matchevent.Event) matchEventDTO {
	return matchEventDTO{
		ID:         item.ProviderEventID,
		Type:       item.Type,
		Detail:     item.Detail,
		TeamID:     item.TeamID,
		PlayerName: item.PlayerName,
		AssistName: item.AssistName,
		Elapsed:    item.Elapsed,
		Extra:      item.Extra,
		OccurredAt: item.OccurredAt,
	}
}

type guideDTO struct {
	VenueID     string                 `json:"venueId"`
	Title       string                 `json:"title"`
	Sections    []stadiumguide.Section `json:"sections"`
	Facilities  []string               `json:"facilities"`
	ImageURLs   []string               `json:"imageUrls"`
	Source      string                 `json:"source"`
	GeneratedAt time.Time              `json:"generatedAt"`
}

func guideToDTO(item stadiumguide.Guide) guideDTO {
	return guideDTO{
		VenueID:     item.VenueID,
		Title:       item.Title,
		Sections:    item.Sections,
		Facilities:  item.Facilities,
		ImageURLs:   item.ImageURLs,
		Source:      item.Source,
		GeneratedAt: item.GeneratedAt,
	}
}

type jobRunDTO struct {
	RunID        string                 `json:"runId"`
	JobName      string                 `json:"jobName"`
	Trigger      string                 `json:"trigger"`
	Status       jobscheduler.RunStatus `json:"status"`
	Metrics      map[string]any         `json:"metrics,omitempty"`
	ErrorMessage string                 `json:"errorMessage,omitempty"`
	StartedAt    time.Time              `json:"startedAt"`
	FinishedAt   *time.Time             `json:"finishedAt,omitempty"`
	TraceID      string                 `json:"traceId,omitempty"`
}

func jobRunsToDTO(items []jobscheduler.Run) []jobRunDTO {
	out := make([]jobRunDTO, 0, len(items))
	for _, item := range items {
		out = append(out, jobRunDTO{
			RunID:        item.RunID,
			JobName:      item.JobName,
			Trigger:      item.Trigger,
			Status:       item.Status,
			Metrics:      item.Metrics,
			ErrorMessage: item.ErrorMessage,
			StartedAt:    item.StartedAt,
			FinishedAt:   item.FinishedAt,
			TraceID:      item.TraceID,
		})
	}
	return out
}
