// Package round settles four-player team games that span several segments.
//
// Each segment is resolved to two teams through a pairing, settled on its
// own, and the per-segment amounts are summed into a grand total per
// player. Nothing is cached: every call recomputes from the snapshot.
package round

import (
	"errors"
	"fmt"

	"github.com/okian/dots/internal/domain/model"
	"github.com/okian/dots/internal/domain/pairing"
	"github.com/okian/dots/internal/domain/settlement"
)

// Default segment bounds.
const (
	defaultMinSegments = 2
	defaultMaxSegments = 3
)

// ErrSegmentCount reports a round with too few or too many segments.
var ErrSegmentCount = errors.New("unsupported segment count")

// Option applies a configuration option to the Aggregator.
type Option func(*Aggregator)

// WithSegmentBounds sets the accepted number of segments per round.
func WithSegmentBounds(minSegments, maxSegments int) Option {
	return func(a *Aggregator) {
		if minSegments > 0 && maxSegments >= minSegments {
			a.minSegments = minSegments
			a.maxSegments = maxSegments
		}
	}
}

// Aggregator settles multi-segment team rounds.
type Aggregator struct {
	calc        *settlement.Calculator
	minSegments int
	maxSegments int
}

// NewAggregator creates an Aggregator over calc. A nil calc uses
// settlement.NewCalculator().
func NewAggregator(calc *settlement.Calculator, opts ...Option) *Aggregator {
	if calc == nil {
		calc = settlement.NewCalculator()
	}
	a := &Aggregator{
		calc:        calc,
		minSegments: defaultMinSegments,
		maxSegments: defaultMaxSegments,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// SegmentBounds reports the accepted segment count range.
func (a *Aggregator) SegmentBounds() (minSegments, maxSegments int) {
	return a.minSegments, a.maxSegments
}

// Settle resolves every segment's pairing and settles the round. Each
// player's PerSegment holds one amount per segment in input order and Total
// is their sum; Nets are sorted by Total descending, stable on roster order.
func (a *Aggregator) Settle(in model.TeamRound) (settlement.Result, error) {
	n := len(in.Segments)
	if n < a.minSegments || n > a.maxSegments {
		return settlement.Result{}, settlement.NewValidationError("segments",
			fmt.Errorf("%w: got %d, want %d to %d", ErrSegmentCount, n, a.minSegments, a.maxSegments))
	}

	labels := DefaultLabels(n)
	segments := make([]settlement.Segment, n)
	for i, s := range in.Segments {
		m, err := pairing.Resolve(in.Players, s.Pairing)
		if err != nil {
			field := fmt.Sprintf("segments[%d].pairing", i)
			if errors.Is(err, pairing.ErrRosterSize) {
				field = "players"
			}
			return settlement.Result{}, settlement.NewValidationError(field, err)
		}
		label := s.Label
		if label == "" {
			label = labels[i]
		}
		segments[i] = settlement.Segment{
			Label:  label,
			Teams:  m.Teams(),
			Points: [2]float64{s.Team1Points, s.Team2Points},
		}
	}
	return a.calc.Teams(in.Players, in.Stake, segments)
}

// DefaultLabels names n segments of an 18-hole round.
func DefaultLabels(n int) []string {
	switch n {
	case 1:
		return []string{"Round"}
	case 2:
		return []string{"Front 9", "Back 9"}
	case 3:
		return []string{"Holes 1-6", "Holes 7-12", "Holes 13-18"}
	}
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("Segment %d", i+1)
	}
	return out
}

// FixedTeams builds the classic front/back round: the partners off the
// first tee (players 1 & 2 against 3 & 4) stay together for both nines.
func FixedTeams(players []string, stake float64, front, back [2]float64) model.TeamRound {
	return model.TeamRound{
		Stake:   stake,
		Players: append([]string(nil), players...),
		Segments: []model.SegmentScore{
			{Pairing: pairing.OneTwoVsThreeFour, Team1Points: front[0], Team2Points: front[1]},
			{Pairing: pairing.OneTwoVsThreeFour, Team1Points: back[0], Team2Points: back[1]},
		},
	}
}
