package api

import (
	"net/http"
)

// SettlementsHandler handles settlement calculations.
type SettlementsHandler struct {
	deps         Dependencies
	maxBodyBytes int64
}

// NewSettlementsHandler creates a new settlements handler.
func NewSettlementsHandler(deps Dependencies, maxBodyBytes int64) *SettlementsHandler {
	return &SettlementsHandler{deps: deps, maxBodyBytes: maxBodyBytes}
}

// HandleIndividual handles POST /v1/settlements/individual requests.
func (h *SettlementsHandler) HandleIndividual(w http.ResponseWriter, r *http.Request) {
	const op = "api.settle_individual"
	if !allowMethod(w, r, http.MethodPost, op) {
		return
	}
	var req individualRequest
	if err := decodeJSON(w, r, h.maxBodyBytes, op, &req); err != nil {
		writeFailure(w, op, err)
		return
	}
	calc, err := h.deps.SettleIndividual(r.Context(), req.round(h.deps.DefaultStake()))
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, calc)
}

// HandleTeams handles POST /v1/settlements/teams requests.
func (h *SettlementsHandler) HandleTeams(w http.ResponseWriter, r *http.Request) {
	const op = "api.settle_teams"
	if !allowMethod(w, r, http.MethodPost, op) {
		return
	}
	var req teamRequest
	if err := decodeJSON(w, r, h.maxBodyBytes, op, &req); err != nil {
		writeFailure(w, op, err)
		return
	}
	in, err := req.round(h.deps.DefaultStake())
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	calc, err := h.deps.SettleTeams(r.Context(), in)
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, calc)
}
