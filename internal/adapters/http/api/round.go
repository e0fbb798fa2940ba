package api

import (
	"net/http"
	"strings"
)

// RoundHandler serves round setup data: pairings and the reset state.
type RoundHandler struct {
	deps Dependencies
}

// NewRoundHandler creates a new round handler.
func NewRoundHandler(deps Dependencies) *RoundHandler {
	return &RoundHandler{deps: deps}
}

// HandlePairings handles GET /v1/pairings?players=a,b,c,d requests. Without
// players the default roster is used.
func (h *RoundHandler) HandlePairings(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_pairings"
	if !allowMethod(w, r, http.MethodGet, op) {
		return
	}
	var players []string
	if raw := r.URL.Query().Get("players"); raw != "" {
		players = strings.Split(raw, ",")
		for i := range players {
			players[i] = strings.TrimSpace(players[i])
		}
	} else {
		for _, p := range h.deps.Defaults(r.Context()).Players {
			players = append(players, p.Name)
		}
	}
	views, err := h.deps.Pairings(r.Context(), players)
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, views)
}

// HandleDefaults handles GET /v1/defaults requests.
func (h *RoundHandler) HandleDefaults(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_defaults"
	if !allowMethod(w, r, http.MethodGet, op) {
		return
	}
	writeJSON(w, http.StatusOK, h.deps.Defaults(r.Context()))
}
