package httpapi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	sonic "github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"
	"github.com/riskibarqy/matchday/internal/platform/logging"
	"github.com/riskibarqy/matchday/internal/usecase"
)

const maxRequestBodyBytes = 1 << 20

type HandlerDeps struct {
	Follows    *usecase.FollowService
	Devices    *usecase.DeviceTokenService
	Dispatcher *usecase.NotificationDispatcher
	Pipeline   *usecase.IngestionPipeline
	Jobs       *usecase.JobRegistry
	Guides     *usecase.StadiumGuideService
	Store      usecase.StorePinger
}

type Handler struct {
	follows    *usecase.FollowService
	devices    *usecase.DeviceTokenService
	dispatcher *usecase.NotificationDispatcher
	pipeline   *usecase.IngestionPipeline
	jobs       *usecase.JobRegistry
	guides     *usecase.StadiumGuideService
	store      usecase.StorePinger
	logger     *logging.Logger
	validator  *validator.Validate
}

func NewHandler(deps HandlerDeps, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		follows:    deps.Follows,
		devices:    deps.Devices,
		dispatcher: deps.Dispatcher,
		pipeline:   deps.Pipeline,
		jobs:       deps.Jobs,
		guides:     deps.Guides,
		store:      deps.Store,
		logger:     logger,
		validator:  validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	if h.store != nil {
		if err := h.store.PingContext(ctx); err != nil {
			h.logger.WarnContext(ctx, "health check store ping failed", "error", err)
			writeError(ctx, w, fmt.Errorf("%w: store ping failed", usecase.ErrDependencyUnavailable))
			return
		}
	}
	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) GetMatchDetail(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetMatchDetail")
	defer span.End()

	matchID := r.PathValue("matchID")
	detail, err := h.pipeline.FetchMatchDetail(ctx, matchID)
	if err != nil {
		h.logger.WarnContext(ctx, "fetch match detail failed", "match_id", matchID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, matchDetailToDTO(detail))
}

func (h *Handler) GetStadiumGuide(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetStadiumGuide")
	defer span.End()

	venueID := r.PathValue("venueID")
	guide, err := h.guides.GetGuide(ctx, venueID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, guideToDTO(guide))
}

// decodeJSONBody reads at most maxRequestBodyBytes and validates the result. An empty
// body leaves dst untouched when allowEmpty is set.
func (h *Handler) decodeJSONBody(ctx context.Context, r *http.Request, dst any, allowEmpty bool) error {
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBodyBytes+1))
	if err != nil {
		return fmt.Errorf("%w: read request body: %v", usecase.ErrInvalidInput, err)
	}
	if len(raw) > maxRequestBodyBytes {
		return fmt.Errorf("%w: request body too large", usecase.ErrInvalidInput)
	}
	if strings.TrimSpace(string(raw)) == "" {
		if allowEmpty {
			return nil
		}
		return fmt.Errorf("%w: request body is required", usecase.ErrInvalidInput)
	}
	if err := sonic.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("%w: invalid JSON body: %v", usecase.ErrInvalidInput, err)
	}
	if err := h.validator.StructCtx(ctx, dst); err != nil {
		return fmt.Errorf("%w: %v", usecase.ErrInvalidInput, err)
	}
	return nil
}
