// Package scoring tallies 6-point Scotch holes into segment team totals.
package scoring

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Default scoring configuration constants.
const (
	defaultSweepMultiplier = 2
	pressMultiplier        = 2
	rollMultiplier         = 2
)

// Sentinel kinds for scoring errors.
var (
	ErrUnknownAward    = errors.New("unknown award")
	ErrUnknownCategory = errors.New("unknown category")
)

// Category is one way to earn points on a hole.
type Category int

const (
	GreenInRegulation Category = iota
	LowMan                     // lowest net score of the four players
	LowTeam                    // lowest combined net score
	Birdie                     // gross only
)

// Categories lists every category in display order.
var Categories = []Category{GreenInRegulation, LowMan, LowTeam, Birdie}

var categoryNames = map[Category]string{
	GreenInRegulation: "gir",
	LowMan:            "low_man",
	LowTeam:           "low_team",
	Birdie:            "birdie",
}

func (c Category) String() string {
	if n, ok := categoryNames[c]; ok {
		return n
	}
	return fmt.Sprintf("category(%d)", int(c))
}

// ParseCategory maps a configuration key such as "low_man" to a Category.
func ParseCategory(s string) (Category, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for c, n := range categoryNames {
		if n == s {
			return c, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownCategory, s)
}

// Award says which team took a category on a hole.
type Award int

const (
	NoAward Award = iota // nobody earned it, e.g. no birdie
	Team1
	Team2
	Halved // tied; the points are split evenly
)

// ParseAward maps "team1", "team2", "halved" and "" (no award).
func ParseAward(s string) (Award, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return NoAward, nil
	case "team1":
		return Team1, nil
	case "team2":
		return Team2, nil
	case "halved", "tie":
		return Halved, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownAward, s)
	}
}

// Hole is the outcome of one hole.
type Hole struct {
	Awards map[Category]Award
	// Roll doubles this hole only.
	Roll bool
	// Press doubles this hole and every later hole of the segment. Presses stack.
	Press bool
}

// HoleScore is the points each team earned on one hole after multipliers.
type HoleScore struct {
	Team1      float64
	Team2      float64
	Multiplier float64
	Sweep      bool
}

// Tally is a segment's running totals.
type Tally struct {
	Team1 float64
	Team2 float64
	Holes []HoleScore
}

// Option applies a configuration option to the Scorer.
type Option func(*Scorer)

// WithCategoryPoints overrides the points of the given categories.
// Non-positive values are ignored.
func WithCategoryPoints(points map[Category]float64) Option {
	return func(s *Scorer) {
		for c, p := range points {
			if _, known := categoryNames[c]; known && p > 0 {
				s.points[c] = p
			}
		}
	}
}

// WithSweepMultiplier sets the factor applied when one team takes every point.
func WithSweepMultiplier(m float64) Option {
	return func(s *Scorer) {
		if m >= 1 {
			s.sweepMultiplier = m
		}
	}
}

// Scorer turns hole outcomes into team points. It holds only configuration.
type Scorer struct {
	points          map[Category]float64
	sweepMultiplier float64
}

// NewScorer creates a Scorer with the standard 6 points per hole: 1 GIR,
// 2 low man, 2 low team, 1 birdie, and a sweep worth double.
func NewScorer(opts ...Option) *Scorer {
	s := &Scorer{
		points: map[Category]float64{
			GreenInRegulation: 1,
			LowMan:            2,
			LowTeam:           2,
			Birdie:            1,
		},
		sweepMultiplier: defaultSweepMultiplier,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Points returns the configured value of c.
func (s *Scorer) Points(c Category) float64 { return s.points[c] }

// HolePoints returns the points available on an unmultiplied hole.
func (s *Scorer) HolePoints() float64 {
	var total float64
	for _, c := range Categories {
		total += s.points[c]
	}
	return total
}

// Tally scores holes in order. A press on hole i doubles holes i.. to the end.
// A hole is swept when one team is awarded every category outright.
func (s *Scorer) Tally(holes []Hole) (Tally, error) {
	t := Tally{Holes: make([]HoleScore, len(holes))}
	press := 1.0
	for i, h := range holes {
		for _, c := range slices.Sorted(maps.Keys(h.Awards)) {
			if _, known := s.points[c]; !known {
				return Tally{}, fmt.Errorf("hole %d: %w: %d", i+1, ErrUnknownCategory, int(c))
			}
		}

		// Categories fixes the summation order so equal holes tally equally.
		var t1, t2 float64
		var won1, won2 int
		for _, c := range Categories {
			p := s.points[c]
			switch award := h.Awards[c]; award {
			case NoAward:
			case Team1:
				t1 += p
				won1++
			case Team2:
				t2 += p
				won2++
			case Halved:
				t1 += p / 2
				t2 += p / 2
			default:
				return Tally{}, fmt.Errorf("hole %d %s: %w: %d", i+1, c, ErrUnknownAward, int(award))
			}
		}

		sweep := won1 == len(Categories) || won2 == len(Categories)
		if sweep {
			t1 *= s.sweepMultiplier
			t2 *= s.sweepMultiplier
		}

		if h.Press {
			press *= pressMultiplier
		}
		mult := press
		if h.Roll {
			mult *= rollMultiplier
		}

		t.Holes[i] = HoleScore{Team1: t1 * mult, Team2: t2 * mult, Multiplier: mult, Sweep: sweep}
		t.Team1 += t1 * mult
		t.Team2 += t2 * mult
	}
	return t, nil
}
