package api

import (
	"errors"
	"net/http"
	"strings"
)

// MatchupHandler serves two-team routes.
type MatchupHandler struct {
	deps MatchupDependencies
}

// NewMatchupHandler creates a new matchup handler.
func NewMatchupHandler(deps MatchupDependencies) *MatchupHandler {
	return &MatchupHandler{deps: deps}
}

func teamPair(r *http.Request) (string, string, error) {
	q := r.URL.Query()
	a, b := strings.TrimSpace(q.Get("team_a")), strings.TrimSpace(q.Get("team_b"))
	if a == "" || b == "" {
		return "", "", errors.New("team_a and team_b are required")
	}
	return a, b, nil
}

// HandleMatchup handles GET /matchup?team_a=&team_b=&last_n=.
func (h *MatchupHandler) HandleMatchup(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_matchup"
	a, b, err := teamPair(r)
	if err != nil {
		writeServiceError(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	lastN, err := windowParam(r)
	if err != nil {
		writeServiceError(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	res, err := h.deps.Project(r.Context(), a, b, lastN)
	if err != nil {
		writeServiceError(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// HandleHeadToHead handles GET /head-to-head?team_a=&team_b=.
func (h *MatchupHandler) HandleHeadToHead(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_head_to_head"
	a, b, err := teamPair(r)
	if err != nil {
		writeServiceError(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	games, err := h.deps.HeadToHead(r.Context(), a, b)
	if err != nil {
		writeServiceError(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, games)
}

// HandleOdds handles GET /odds?team_a=&team_b=. Unquoted pairs are 404.
func (h *MatchupHandler) HandleOdds(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_odds"
	a, b, err := teamPair(r)
	if err != nil {
		writeServiceError(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	odds, ok, err := h.deps.Odds(r.Context(), a, b)
	if err != nil {
		writeServiceError(w, Wrap(op, err))
		return
	}
	if !ok {
		writeServiceError(w, NewKind(op, ErrNotFound))
		return
	}
	writeJSON(w, http.StatusOK, odds)
}
