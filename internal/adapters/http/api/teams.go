package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// TeamHandler serves per-team routes.
type TeamHandler struct {
	deps TeamDependencies
}

// NewTeamHandler creates a new team handler.
func NewTeamHandler(deps TeamDependencies) *TeamHandler {
	return &TeamHandler{deps: deps}
}

// HandleTeam handles GET /teams/{team}.
func (h *TeamHandler) HandleTeam(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_team"
	entry, err := h.deps.TeamRank(r.Context(), chi.URLParam(r, "team"))
	if err != nil {
		writeServiceError(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

// HandleHistory handles GET /teams/{team}/history.
func (h *TeamHandler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_team_history"
	history, err := h.deps.History(r.Context(), chi.URLParam(r, "team"))
	if err != nil {
		writeServiceError(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, history)
}

// HandleProfile handles GET /teams/{team}/profile?last_n=N.
func (h *TeamHandler) HandleProfile(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_team_profile"
	lastN, err := windowParam(r)
	if err != nil {
		writeServiceError(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	p, err := h.deps.Profile(r.Context(), chi.URLParam(r, "team"), lastN)
	if err != nil {
		writeServiceError(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, p)
}
