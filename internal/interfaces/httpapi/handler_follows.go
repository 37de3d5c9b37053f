package httpapi

import (
	"net/http"

	"github.com/riskibarqy/matchday/internal/domain/follow"
	"github.com/riskibarqy/matchday/internal/usecase"
)

func (h *Handler) ListFollows(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListFollows")
	defer span.End()

	userID := r.PathValue("userID")
	items, err := h.follows.ListFollows(ctx, userID, r.URL.Query().Get("entityType"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, followsToDTO(items))
}

func (h *Handler) FollowEntity(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.FollowEntity")
	defer span.End()

	var req followRequest
	if err := h.decodeJSONBody(ctx, r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}

	userID := r.PathValue("userID")
	item, err := h.follows.FollowEntity(ctx, usecase.FollowInput{
		UserID:      userID,
		EntityType:  req.EntityType,
		EntityID:    req.EntityID,
		Preferences: req.Preferences,
	})
	if err != nil {
		h.logger.InfoContext(ctx, "follow entity rejected",
			"user_id", userID,
			"entity_type", req.EntityType,
			"entity_id", req.EntityID,
			"error", err,
		)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, followToDTO(item))
}

func (h *Handler) BulkFollow(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.BulkFollow")
	defer span.End()

	var req bulkFollowRequest
	if err := h.decodeJSONBody(ctx, r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.follows.BulkFollow(ctx, r.PathValue("userID"), req.Targets)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, bulkFollowDTO{
		Followed: followsToDTO(result.Followed),
		Skipped:  result.Skipped,
		Failures: result.Failures,
	})
}

func (h *Handler) UnfollowEntity(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.UnfollowEntity")
	defer span.End()

	err := h.follows.UnfollowEntity(ctx, r.PathValue("userID"), r.PathValue("entityType"), r.PathValue("entityID"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) UpdateFollowPreferences(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.UpdateFollowPreferences")
	defer span.End()

	var patch follow.PreferencesPatch
	if err := h.decodeJSONBody(ctx, r, &patch, false); err != nil {
		writeError(ctx, w, err)
		return
	}

	item, err := h.follows.UpdateNotificationPreferences(ctx,
		r.PathValue("userID"),
		r.PathValue("entityType"),
		r.PathValue("entityID"),
		patch,
	)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, followToDTO(item))
}

func (h *Handler) GetFollowStats(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetFollowStats")
	defer span.End()

	stats, err := h.follows.GetUserFollowStats(ctx, r.PathValue("userID"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, stats)
}
