// Package service provides the settlement service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"regexp"
	"sync/atomic"
	"time"

	"github.com/okian/dots/internal/domain/model"
	"github.com/okian/dots/internal/domain/pairing"
	"github.com/okian/dots/internal/domain/round"
	"github.com/okian/dots/internal/domain/scoring"
	"github.com/okian/dots/internal/domain/settlement"
	"github.com/okian/dots/internal/domain/types"
	"github.com/okian/dots/pkg/logger"
	"github.com/okian/dots/pkg/metrics"
)

// Calculation variants used in logs and metrics.
const (
	VariantIndividual = "individual"
	VariantTeams      = "teams"
	VariantScoring    = "scoring"
)

// Calculation outcomes.
const (
	outcomeOK      = "ok"
	outcomeInvalid = "invalid"
	outcomeError   = "error"
)

var indexPattern = regexp.MustCompile(`\[\d+\]`)

// Service settles rounds with the configured policy. It keeps no round state
// and is safe for concurrent use.
type Service struct {
	calc         *settlement.Calculator
	agg          *round.Aggregator
	scorer       *scoring.Scorer
	defaultStake float64
	minSegments  int
	maxSegments  int

	logger    logger.Logger
	startedAt time.Time

	individual  atomic.Int64
	teams       atomic.Int64
	scored      atomic.Int64
	invalid     atomic.Int64
	settlements atomic.Int64
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithCalculator sets the settlement calculator.
func WithCalculator(c *settlement.Calculator) Option {
	return func(s *Service) {
		if c != nil {
			s.calc = c
		}
	}
}

// WithScorer sets the hole scorer.
func WithScorer(sc *scoring.Scorer) Option {
	return func(s *Service) {
		if sc != nil {
			s.scorer = sc
		}
	}
}

// WithDefaultStake sets the stake used when a request omits one.
func WithDefaultStake(stake float64) Option {
	return func(s *Service) {
		if stake >= 0 {
			s.defaultStake = stake
		}
	}
}

// WithSegmentBounds sets the accepted number of segments per team round.
func WithSegmentBounds(minSegments, maxSegments int) Option {
	return func(s *Service) {
		if minSegments > 0 && maxSegments >= minSegments {
			s.minSegments = minSegments
			s.maxSegments = maxSegments
		}
	}
}

// New constructs a Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		calc:         settlement.NewCalculator(),
		scorer:       scoring.NewScorer(),
		defaultStake: settlement.DefaultStake,
		minSegments:  2,
		maxSegments:  3,
		logger:       logger.Nop(),
		startedAt:    time.Now(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.agg = round.NewAggregator(s.calc, round.WithSegmentBounds(s.minSegments, s.maxSegments))
	return s
}

// DefaultStake returns the stake used when a request omits one.
func (s *Service) DefaultStake() float64 { return s.defaultStake }

// SettleIndividual settles every player against every other player.
func (s *Service) SettleIndividual(ctx context.Context, in model.IndividualRound) (types.Calculation, error) {
	start := time.Now()
	res, err := s.calc.Individual(in.SettlementPlayers(), in.Stake)
	if err = s.observe(ctx, VariantIndividual, start, err); err != nil {
		return types.Calculation{}, err
	}
	s.individual.Add(1)
	s.recordResult(ctx, VariantIndividual, res)
	return types.IndividualCalculation(res, res.Stake), nil
}

// SettleTeams settles a four-player team round segment by segment.
func (s *Service) SettleTeams(ctx context.Context, in model.TeamRound) (types.Calculation, error) {
	start := time.Now()
	res, err := s.agg.Settle(in)
	if err = s.observe(ctx, VariantTeams, start, err); err != nil {
		return types.Calculation{}, err
	}
	s.teams.Add(1)
	s.recordResult(ctx, VariantTeams, res)
	return types.TeamCalculation(res, res.Stake), nil
}

// ScoreSegment tallies holes into the two team totals of one segment.
func (s *Service) ScoreSegment(ctx context.Context, label string, holes []scoring.Hole) (types.SegmentScore, error) {
	start := time.Now()
	tally, err := s.scorer.Tally(holes)
	if err != nil {
		err = settlement.NewValidationError("holes", err)
	}
	if err = s.observe(ctx, VariantScoring, start, err); err != nil {
		return types.SegmentScore{}, err
	}
	s.scored.Add(1)
	metrics.RecordHolesScored(len(holes))
	s.logger.Debug(ctx, "segment scored",
		logger.Int("holes", len(holes)),
		logger.Float64("team1", tally.Team1),
		logger.Float64("team2", tally.Team2),
	)
	return types.SegmentTally(label, tally), nil
}

// Pairings lists the three ways to split players into two teams.
func (s *Service) Pairings(ctx context.Context, players []string) ([]types.MatchupView, error) {
	ms, err := pairing.ResolveAll(players)
	if err != nil {
		verr := settlement.NewValidationError("players", err)
		s.reject(ctx, "pairings", verr)
		return nil, verr
	}
	return types.Matchups(ms), nil
}

// Defaults returns the state a reset returns to.
func (s *Service) Defaults(_ context.Context) types.Defaults {
	r := model.DefaultRoster()
	r.Stake = s.defaultStake
	lo, hi := s.agg.SegmentBounds()
	return types.DefaultsFrom(r, lo, hi)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]any {
	lo, hi := s.agg.SegmentBounds()
	return map[string]any{
		"uptimeSeconds":          int64(time.Since(s.startedAt).Seconds()),
		"individualCalculations": s.individual.Load(),
		"teamCalculations":       s.teams.Load(),
		"segmentsScored":         s.scored.Load(),
		"invalidRequests":        s.invalid.Load(),
		"settlementsEmitted":     s.settlements.Load(),
		"itemization":            s.calc.Itemization().String(),
		"nonFinite":              s.calc.NonFinitePolicy().String(),
		"defaultStake":           s.defaultStake,
		"minSegments":            lo,
		"maxSegments":            hi,
	}
}

// observe records the outcome of one calculation and returns err unchanged.
func (s *Service) observe(ctx context.Context, variant string, start time.Time, err error) error {
	latencyMs := float64(time.Since(start).Microseconds()) / 1000
	switch {
	case err == nil:
		metrics.RecordCalculation(variant, outcomeOK, latencyMs)
	case errors.Is(err, settlement.ErrInvalidInput):
		metrics.RecordCalculation(variant, outcomeInvalid, latencyMs)
		s.reject(ctx, variant, err)
	default:
		metrics.RecordCalculation(variant, outcomeError, latencyMs)
		metrics.RecordErrorByType(variant, "error")
		s.logger.Error(ctx, "calculation failed", logger.String("variant", variant), logger.Error(err))
	}
	return err
}

func (s *Service) reject(ctx context.Context, variant string, err error) {
	s.invalid.Add(1)
	field := ""
	var verr *settlement.ValidationError
	if errors.As(err, &verr) {
		field = verr.Field
	}
	metrics.RecordValidationFailure(indexPattern.ReplaceAllString(field, "[]"))
	s.logger.Warn(ctx, "input rejected",
		logger.String("variant", variant),
		logger.String("field", field),
		logger.Error(err),
	)
}

func (s *Service) recordResult(ctx context.Context, variant string, res settlement.Result) {
	var moved float64
	for _, st := range res.Settlements {
		moved += st.Amount
	}
	s.settlements.Add(int64(len(res.Settlements)))
	metrics.RecordSettlements(variant, len(res.Settlements), moved)
	s.logger.Debug(ctx, "round settled",
		logger.String("variant", variant),
		logger.Int("players", len(res.Nets)),
		logger.Int("segments", len(res.Segments)),
		logger.Int("settlements", len(res.Settlements)),
		logger.Float64("moved", moved),
	)
}
