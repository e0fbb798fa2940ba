package api

import (
	"net/http"
)

// ScoringHandler handles hole-by-hole point tallies.
type ScoringHandler struct {
	deps         Dependencies
	maxBodyBytes int64
}

// NewScoringHandler creates a new scoring handler.
func NewScoringHandler(deps Dependencies, maxBodyBytes int64) *ScoringHandler {
	return &ScoringHandler{deps: deps, maxBodyBytes: maxBodyBytes}
}

// HandleSegment handles POST /v1/scoring/segment requests.
func (h *ScoringHandler) HandleSegment(w http.ResponseWriter, r *http.Request) {
	const op = "api.score_segment"
	if !allowMethod(w, r, http.MethodPost, op) {
		return
	}
	var req segmentScoreRequest
	if err := decodeJSON(w, r, h.maxBodyBytes, op, &req); err != nil {
		writeFailure(w, op, err)
		return
	}
	holes, err := req.holes()
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	score, err := h.deps.ScoreSegment(r.Context(), req.Label, holes)
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, score)
}
