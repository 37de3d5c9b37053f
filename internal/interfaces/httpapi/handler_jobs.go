package httpapi

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/riskibarqy/matchday/internal/domain/notification"
	"github.com/riskibarqy/matchday/internal/usecase"
)

const defaultJobRunsLimit = 20

func (h *Handler) ListJobs(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListJobs")
	defer span.End()

	if h.jobs == nil {
		writeError(ctx, w, fmt.Errorf("%w: job registry is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	writeSuccess(ctx, w, http.StatusOK, h.jobs.Statuses())
}

func (h *Handler) GetJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetJob")
	defer span.End()

	if h.jobs == nil {
		writeError(ctx, w, fmt.Errorf("%w: job registry is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	status, err := h.jobs.Status(r.PathValue("name"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, status)
}

func (h *Handler) ListJobRuns(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListJobRuns")
	defer span.End()

	if h.jobs == nil {
		writeError(ctx, w, fmt.Errorf("%w: job registry is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	limit := defaultJobRunsLimit
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeError(ctx, w, fmt.Errorf("%w: limit must be a positive integer", usecase.ErrInvalidInput))
			return
		}
		limit = parsed
	}

	runs, err := h.jobs.ListRuns(ctx, r.PathValue("name"), limit)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, jobRunsToDTO(runs))
}

// TriggerJob starts a job in the background and answers 202 without waiting for it.
func (h *Handler) TriggerJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.TriggerJob")
	defer span.End()

	if h.jobs == nil {
		writeError(ctx, w, fmt.Errorf("%w: job registry is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	name := r.PathValue("name")
	if err := h.jobs.Trigger(ctx, name); err != nil {
		h.logger.WarnContext(ctx, "trigger job rejected", "job", name, "error", err)
		writeError(ctx, w, err)
		return
	}

	h.logger.InfoContext(ctx, "job triggered manually", "job", name)
	writeSuccess(ctx, w, http.StatusAccepted, map[string]string{
		"job":    name,
		"status": "accepted",
	})
}

func (h *Handler) GetIngestionMetrics(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetIngestionMetrics")
	defer span.End()

	if h.pipeline == nil {
		writeError(ctx, w, fmt.Errorf("%w: ingestion pipeline is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	writeSuccess(ctx, w, http.StatusOK, h.pipeline.LastMetrics())
}

func (h *Handler) GetInternalHealth(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetInternalHealth")
	defer span.End()

	if h.jobs == nil {
		writeError(ctx, w, fmt.Errorf("%w: job registry is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	report, ok := h.jobs.LastHealth()
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: no health check has run yet", usecase.ErrNotFound))
		return
	}

	writeSuccess(ctx, w, http.StatusOK, report)
}

func (h *Handler) IngestLeague(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.IngestLeague")
	defer span.End()

	if h.pipeline == nil {
		writeError(ctx, w, fmt.Errorf("%w: ingestion pipeline is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	var req ingestLeagueRequest
	if err := h.decodeJSONBody(ctx, r, &req, true); err != nil {
		writeError(ctx, w, err)
		return
	}
	date, err := parseDay(req.Date, time.Now().UTC())
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	leagueID := r.PathValue("leagueID")
	metrics, err := h.pipeline.IngestLeagueFixtures(ctx, leagueID, date)
	if err != nil {
		h.logger.WarnContext(ctx, "manual league ingestion failed", "league_id", leagueID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, metrics)
}

func (h *Handler) SendTestNotification(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SendTestNotification")
	defer span.End()

	if h.dispatcher == nil {
		writeError(ctx, w, fmt.Errorf("%w: notification dispatcher is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	var req sendTestRequest
	if err := h.decodeJSONBody(ctx, r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}

	metrics, err := h.dispatcher.SendTest(ctx, req.UserID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, metrics)
}

// NotifyTeam targets a team's followers, or a league's when leagueId is set instead.
func (h *Handler) NotifyTeam(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.NotifyTeam")
	defer span.End()

	var req broadcastRequest
	if err := h.decodeJSONBody(ctx, r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}

	entityType, entityID := "team", strings.TrimSpace(req.TeamID)
	if entityID == "" {
		entityType, entityID = "league", strings.TrimSpace(req.LeagueID)
	}
	if entityID == "" {
		writeError(ctx, w, fmt.Errorf("%w: teamId or leagueId is required", usecase.ErrInvalidInput))
		return
	}

	result, err := h.follows.NotifyEntityFollowers(ctx, entityType, entityID, req.message())
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, result)
}

func (h *Handler) NotifyVenue(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.NotifyVenue")
	defer span.End()

	var req broadcastRequest
	if err := h.decodeJSONBody(ctx, r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}
	day, err := parseDay(req.Date, time.Now().UTC())
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.follows.NotifyVenue(ctx, req.VenueID, day, req.message())
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, result)
}

func (h *Handler) RefreshStadiumGuides(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RefreshStadiumGuides")
	defer span.End()

	if h.guides == nil {
		writeError(ctx, w, fmt.Errorf("%w: stadium guides are not configured", usecase.ErrDependencyUnavailable))
		return
	}

	var req refreshGuidesRequest
	if err := h.decodeJSONBody(ctx, r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.guides.RefreshGuides(ctx, req.VenueIDs)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, result)
}

func (req broadcastRequest) message() notification.Message {
	return notification.Message{
		Title:     strings.TrimSpace(req.Title),
		Body:      strings.TrimSpace(req.Body),
		ImageURL:  strings.TrimSpace(req.ImageURL),
		EventType: "ANNOUNCEMENT",
		Data:      req.Data,
	}
}

func parseDay(raw string, fallback time.Time) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Date(fallback.Year(), fallback.Month(), fallback.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	day, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date must be YYYY-MM-DD", usecase.ErrInvalidInput)
	}
	return day, nil
}
