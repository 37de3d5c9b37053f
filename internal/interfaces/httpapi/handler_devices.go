package httpapi

import (
	"net/http"

	"github.com/riskibarqy/matchday/internal/usecase"
)

func (h *Handler) ListDevices(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListDevices")
	defer span.End()

	items, err := h.devices.ListByUser(ctx, r.PathValue("userID"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	out := make([]deviceDTO, 0, len(items))
	for _, item := range items {
		out = append(out, deviceToDTO(item))
	}
	writeSuccess(ctx, w, http.StatusOK, out)
}

func (h *Handler) RegisterDevice(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RegisterDevice")
	defer span.End()

	var req registerDeviceRequest
	if err := h.decodeJSONBody(ctx, r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}

	item, err := h.devices.Register(ctx, usecase.RegisterDeviceInput{
		UserID:     r.PathValue("userID"),
		Token:      req.Token,
		Platform:   req.Platform,
		DeviceName: req.DeviceName,
		AppVersion: req.AppVersion,
		OSVersion:  req.OSVersion,
	})
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, deviceToDTO(item))
}

// UnregisterDevice takes the token from ?token= so the request carries no body.
func (h *Handler) UnregisterDevice(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.UnregisterDevice")
	defer span.End()

	if err := h.devices.Unregister(ctx, r.PathValue("userID"), r.URL.Query().Get("token")); err != nil {
		writeError(ctx, w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
