package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// LeagueHandler serves per-league routes.
type LeagueHandler struct {
	deps LeagueDependencies
}

// NewLeagueHandler creates a new league handler.
func NewLeagueHandler(deps LeagueDependencies) *LeagueHandler {
	return &LeagueHandler{deps: deps}
}

// HandleLeagues handles GET /leagues.
func (h *LeagueHandler) HandleLeagues(w http.ResponseWriter, r *http.Request) {
	leagues, err := h.deps.Leagues(r.Context())
	if err != nil {
		writeServiceError(w, Wrap("api.get_leagues", err))
		return
	}
	writeJSON(w, http.StatusOK, leagues)
}

// HandleTeams handles GET /leagues/{league}/teams.
func (h *LeagueHandler) HandleTeams(w http.ResponseWriter, r *http.Request) {
	standings, err := h.deps.Teams(r.Context(), chi.URLParam(r, "league"))
	if err != nil {
		writeServiceError(w, Wrap("api.get_league_teams", err))
		return
	}
	writeJSON(w, http.StatusOK, standings)
}

// HandleResults handles GET /leagues/{league}/results.
func (h *LeagueHandler) HandleResults(w http.ResponseWriter, r *http.Request) {
	games, err := h.deps.Results(r.Context(), chi.URLParam(r, "league"))
	if err != nil {
		writeServiceError(w, Wrap("api.get_league_results", err))
		return
	}
	writeJSON(w, http.StatusOK, games)
}

// HandleUpcoming handles GET /leagues/{league}/upcoming.
func (h *LeagueHandler) HandleUpcoming(w http.ResponseWriter, r *http.Request) {
	fixtures, err := h.deps.Upcoming(r.Context(), chi.URLParam(r, "league"))
	if err != nil {
		writeServiceError(w, Wrap("api.get_league_upcoming", err))
		return
	}
	writeJSON(w, http.StatusOK, fixtures)
}

// HandleCompleted handles GET /leagues/{league}/completed.
func (h *LeagueHandler) HandleCompleted(w http.ResponseWriter, r *http.Request) {
	matches, err := h.deps.Completed(r.Context(), chi.URLParam(r, "league"))
	if err != nil {
		writeServiceError(w, Wrap("api.get_league_completed", err))
		return
	}
	writeJSON(w, http.StatusOK, matches)
}
