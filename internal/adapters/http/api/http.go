// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"errors"
	"net/http"
	"regexp"

	"github.com/okian/dots/internal/domain/model"
	"github.com/okian/dots/internal/domain/scoring"
	"github.com/okian/dots/internal/domain/settlement"
	"github.com/okian/dots/internal/domain/types"
	"github.com/okian/dots/pkg/logger"
)

const defaultMaxBodyBytes = 1 << 20

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	SettleIndividual(ctx context.Context, in model.IndividualRound) (types.Calculation, error)
	SettleTeams(ctx context.Context, in model.TeamRound) (types.Calculation, error)
	ScoreSegment(ctx context.Context, label string, holes []scoring.Hole) (types.SegmentScore, error)
	Pairings(ctx context.Context, players []string) ([]types.MatchupView, error)
	Defaults(ctx context.Context) types.Defaults
	DefaultStake() float64
}

// Server wires HTTP routes for the settlement API.
type Server struct {
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	settlementsHandler *SettlementsHandler
	scoringHandler     *ScoringHandler
	roundHandler       *RoundHandler

	logger logger.Logger
}

// Option applies a configuration option to the Server.
type Option func(*serverOptions)

type serverOptions struct {
	maxBodyBytes int64
	logger       logger.Logger
}

// WithMaxBodyBytes caps request bodies.
func WithMaxBodyBytes(n int64) Option {
	return func(o *serverOptions) {
		if n > 0 {
			o.maxBodyBytes = n
		}
	}
}

// WithLogger sets the request logger.
func WithLogger(l logger.Logger) Option {
	return func(o *serverOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	o := serverOptions{maxBodyBytes: defaultMaxBodyBytes, logger: logger.Nop()}
	for _, opt := range opts {
		opt(&o)
	}
	return &Server{
		healthHandler:      NewHealthHandler(),
		statsHandler:       NewStatsHandler(statsProvider),
		settlementsHandler: NewSettlementsHandler(deps, o.maxBodyBytes),
		scoringHandler:     NewScoringHandler(deps, o.maxBodyBytes),
		roundHandler:       NewRoundHandler(deps),
		logger:             o.logger,
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/v1/settlements/individual", MetricsMiddleware(s.settlementsHandler.HandleIndividual, "settlements_individual"))
	mux.HandleFunc("/v1/settlements/teams", MetricsMiddleware(s.settlementsHandler.HandleTeams, "settlements_teams"))
	mux.HandleFunc("/v1/scoring/segment", MetricsMiddleware(s.scoringHandler.HandleSegment, "scoring_segment"))
	mux.HandleFunc("/v1/pairings", MetricsMiddleware(s.roundHandler.HandlePairings, "pairings"))
	mux.HandleFunc("/v1/defaults", MetricsMiddleware(s.roundHandler.HandleDefaults, "defaults"))
}

// Handler returns mux wrapped with request id logging.
func (s *Server) Handler(mux *http.ServeMux) http.Handler {
	return RequestIDMiddleware(s.logger)(mux)
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeFailure maps err to a status code and error body.
func writeFailure(w http.ResponseWriter, op string, err error) {
	var verr *settlement.ValidationError
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Code:    "invalid_input",
			Message: verr.Error(),
			Field:   wireField(verr.Field),
		})
	case errors.As(err, &tooLarge):
		writeError(w, http.StatusRequestEntityTooLarge, "payload_too_large", WrapKind(op, ErrPayloadTooLarge, err))
	case errors.Is(err, ErrBadRequest):
		writeError(w, http.StatusBadRequest, "bad_request", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", WrapKind(op, ErrInternal, err))
	}
}

var (
	segmentPointsField = regexp.MustCompile(`^segments\[(\d+)\]\.points\[([01])\]$`)
	teamPointsNames    = [2]string{"team1_points", "team2_points"}
)

// wireField renames engine field paths to request field names.
func wireField(field string) string {
	if field == "stake" {
		return "stake_per_point"
	}
	if m := segmentPointsField.FindStringSubmatch(field); m != nil {
		idx := 0
		if m[2] == "1" {
			idx = 1
		}
		return "segments[" + m[1] + "]." + teamPointsNames[idx]
	}
	return field
}
