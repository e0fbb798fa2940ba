package roundcheck

import (
	"fmt"
	"math"

	"github.com/okian/dots/internal/domain/pairing"
	"github.com/okian/dots/internal/domain/types"
)

const epsilon = 1e-6

func near(a, b float64) bool { return math.Abs(a-b) <= epsilon }

// verifyCalculation checks invariants every settlement response must hold,
// then compares each player's total with the closed form for the round.
func verifyCalculation(c Case, calc types.Calculation) error {
	var sum float64
	for i, n := range calc.NetResults {
		sum += n.Total
		if i > 0 && n.Total > calc.NetResults[i-1].Total+epsilon {
			return fmt.Errorf("net_results[%d] out of order: %.4f after %.4f", i, n.Total, calc.NetResults[i-1].Total)
		}
	}
	if !near(sum, 0) {
		return fmt.Errorf("net totals sum to %.6f, want 0", sum)
	}
	for i, s := range calc.Settlements {
		if s.Amount < 0 {
			return fmt.Errorf("settlements[%d] has negative amount %.4f", i, s.Amount)
		}
		if s.From == s.To {
			return fmt.Errorf("settlements[%d] pays %s to themselves", i, s.From)
		}
	}

	var want map[string]float64
	var err error
	switch c.Kind {
	case KindIndividual:
		want = individualTotals(c.Individual)
	case KindTeams:
		if len(calc.Segments) != len(c.Teams.Segments) {
			return fmt.Errorf("got %d segments, sent %d", len(calc.Segments), len(c.Teams.Segments))
		}
		want, err = teamTotals(c.Teams)
	default:
		return fmt.Errorf("case %s is not a settlement", c.Kind)
	}
	if err != nil {
		return err
	}
	return compareTotals(want, calc.NetResults)
}

// individualTotals: each player nets stake * (n*p - sum of all points).
func individualTotals(r *IndividualRequest) map[string]float64 {
	var total float64
	for _, p := range r.Players {
		total += p.Points
	}
	n := float64(len(r.Players))
	out := make(map[string]float64, len(r.Players))
	for _, p := range r.Players {
		out[p.Name] = r.Stake * (n*p.Points - total)
	}
	return out
}

// teamTotals: every player on a segment's winning side gains stake * diff,
// every loser owes the same.
func teamTotals(r *TeamRequest) (map[string]float64, error) {
	out := make(map[string]float64, len(r.Players))
	for _, name := range r.Players {
		out[name] = 0
	}
	for i, seg := range r.Segments {
		p, err := pairing.Parse(seg.Pairing)
		if err != nil {
			return nil, fmt.Errorf("segments[%d]: %w", i, err)
		}
		m, err := pairing.Resolve(r.Players, p)
		if err != nil {
			return nil, fmt.Errorf("segments[%d]: %w", i, err)
		}
		delta := (seg.Team1Points - seg.Team2Points) * r.Stake
		for _, id := range m.Sides[0].Members {
			out[r.Players[id]] += delta
		}
		for _, id := range m.Sides[1].Members {
			out[r.Players[id]] -= delta
		}
	}
	return out, nil
}

func compareTotals(want map[string]float64, got []types.NetView) error {
	if len(got) != len(want) {
		return fmt.Errorf("got %d net results, want %d", len(got), len(want))
	}
	for _, n := range got {
		w, ok := want[n.Name]
		if !ok {
			return fmt.Errorf("unexpected player %q in net results", n.Name)
		}
		if !near(n.Total, w) {
			return fmt.Errorf("%s nets %.4f, want %.4f", n.Name, n.Total, w)
		}
	}
	return nil
}

// verifySegment checks a scored segment adds up hole by hole.
func verifySegment(r *SegmentRequest, s types.SegmentScore) error {
	if len(s.Holes) != len(r.Holes) {
		return fmt.Errorf("got %d holes, sent %d", len(s.Holes), len(r.Holes))
	}
	var t1, t2 float64
	for i, h := range s.Holes {
		if h.Hole != i+1 {
			return fmt.Errorf("holes[%d] numbered %d", i, h.Hole)
		}
		if h.Team1Points < 0 || h.Team2Points < 0 {
			return fmt.Errorf("hole %d has negative points", h.Hole)
		}
		if h.Multiplier < 1 {
			return fmt.Errorf("hole %d multiplier %.2f below 1", h.Hole, h.Multiplier)
		}
		if h.Sweep && h.Team1Points > 0 && h.Team2Points > 0 {
			return fmt.Errorf("hole %d marked sweep with points on both sides", h.Hole)
		}
		t1 += h.Team1Points
		t2 += h.Team2Points
	}
	if !near(t1, s.Team1Points) || !near(t2, s.Team2Points) {
		return fmt.Errorf("totals %.2f/%.2f do not match holes %.2f/%.2f", s.Team1Points, s.Team2Points, t1, t2)
	}
	return nil
}
