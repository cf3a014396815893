package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler, opts RouterOptions) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
	if opts.MetricsHandler != nil {
		mux.Handle("GET /metrics", opts.MetricsHandler)
	}
	if !opts.SwaggerEnabled {
		return
	}

	mux.HandleFunc("GET /openapi.yaml", handler.OpenAPI)
	mux.HandleFunc("GET /docs", handler.SwaggerUI)
	mux.HandleFunc("GET /docs/", handler.SwaggerUI)
}

func registerPublicRoutes(mux *http.ServeMux, handler *Handler, hub *LeaderboardHub) {
	mux.HandleFunc("GET /v1/slots", handler.ListSlots)
	mux.HandleFunc("GET /v1/teams", handler.ListTeams)
	mux.HandleFunc("GET /v1/players", handler.ListPlayers)
	mux.HandleFunc("GET /v1/stats/{round}", handler.ListRoundStats)
	mux.HandleFunc("GET /v1/leaderboard", handler.Leaderboard)
	mux.HandleFunc("GET /v1/rounds/{round}/ranking", handler.RoundRanking)
	mux.HandleFunc("GET /v1/participants/{participantID}/breakdown", handler.ParticipantBreakdown)
	mux.HandleFunc("POST /v1/draft/validate", handler.ValidateDraft)
	mux.HandleFunc("POST /v1/signup", handler.Signup)
	mux.HandleFunc("POST /v1/admin/login", handler.AdminLogin)
	if hub != nil {
		mux.HandleFunc("GET /v1/leaderboard/live", hub.ServeWS)
	}
}

func registerAdminRoutes(mux *http.ServeMux, handler *Handler, auth AdminAuthorizer) {
	admin := func(pattern string, fn http.HandlerFunc) {
		mux.Handle(pattern, RequireAdmin(auth, fn))
	}

	admin("PUT /v1/admin/stats/{statID}", handler.UpdateStatLine)
	admin("POST /v1/admin/stats/seed", handler.SeedStats)
	admin("GET /v1/admin/rounds/{round}/sheet", handler.ExportStatSheet)
	admin("POST /v1/admin/rounds/{round}/sheet", handler.ImportStatSheet)
	admin("POST /v1/admin/rounds/{round}/recalculate", handler.RecalculateRound)
	admin("POST /v1/admin/recalculate", handler.RecalculateAll)
	admin("PUT /v1/admin/teams/{teamID}/elimination", handler.SetElimination)
	admin("PUT /v1/admin/participants/lock", handler.SetAllParticipantLocks)
	admin("PUT /v1/admin/participants/{participantID}/lock", handler.SetParticipantLock)
	admin("DELETE /v1/admin/participants/{participantID}", handler.DeleteParticipant)
}
