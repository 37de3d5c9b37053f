package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler, liveFeed http.Handler, swaggerEnabled bool) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
	if liveFeed != nil {
		mux.Handle("GET /ws/live", liveFeed)
	}
	if !swaggerEnabled {
		return
	}

	mux.HandleFunc("GET /openapi.yaml", handler.OpenAPI)
	mux.HandleFunc("GET /docs", handler.SwaggerUI)
	mux.HandleFunc("GET /docs/", handler.SwaggerUI)
}

func registerPublicRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/matches/{matchID}", handler.GetMatchDetail)
	mux.HandleFunc("GET /v1/venues/{venueID}/guide", handler.GetStadiumGuide)
}

func registerUserRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/users/{userID}/follows", handler.ListFollows)
	mux.HandleFunc("POST /v1/users/{userID}/follows", handler.FollowEntity)
	mux.HandleFunc("POST /v1/users/{userID}/follows/bulk", handler.BulkFollow)
	mux.HandleFunc("GET /v1/users/{userID}/follows/stats", handler.GetFollowStats)
	mux.HandleFunc("DELETE /v1/users/{userID}/follows/{entityType}/{entityID}", handler.UnfollowEntity)
	mux.HandleFunc("PATCH /v1/users/{userID}/follows/{entityType}/{entityID}/preferences", handler.UpdateFollowPreferences)

	mux.HandleFunc("GET /v1/users/{userID}/devices", handler.ListDevices)
	mux.HandleFunc("POST /v1/users/{userID}/devices", handler.RegisterDevice)
	mux.HandleFunc("DELETE /v1/users/{userID}/devices", handler.UnregisterDevice)
}

func registerInternalRoutes(mux *http.ServeMux, handler *Handler, internalJobToken string) {
	internal := func(pattern string, fn http.HandlerFunc) {
		mux.Handle(pattern, RequireInternalJobToken(internalJobToken, fn))
	}

	internal("GET /v1/internal/jobs", handler.ListJobs)
	internal("GET /v1/internal/jobs/{name}", handler.GetJob)
	internal("GET /v1/internal/jobs/{name}/runs", handler.ListJobRuns)
	internal("POST /v1/internal/jobs/{name}/trigger", handler.TriggerJob)
	internal("GET /v1/internal/health", handler.GetInternalHealth)

	internal("GET /v1/internal/ingestion/metrics", handler.GetIngestionMetrics)
	internal("POST /v1/internal/ingestion/leagues/{leagueID}", handler.IngestLeague)

	internal("POST /v1/internal/notifications/test", handler.SendTestNotification)
	internal("POST /v1/internal/notifications/team", handler.NotifyTeam)
	internal("POST /v1/internal/notifications/venue", handler.NotifyVenue)

	internal("POST /v1/internal/guides/refresh", handler.RefreshStadiumGuides)
}
