package settlement

import (
	"fmt"
	"math"
	"slices"
)

func fieldf(format string, args ...any) string {
	return fmt.Sprintf(format, args...)
}

// number applies the non-finite policy to one input value.
func (c *Calculator) number(field string, v float64) (float64, error) {
	if !math.IsNaN(v) && !math.IsInf(v, 0) {
		return v, nil
	}
	if c.nonFinite == ZeroNonFinite {
		return 0, nil
	}
	return 0, invalidf(field, "must be a finite number, got %v", v)
}

func (c *Calculator) stake(v float64) (float64, error) {
	v, err := c.number("stake", v)
	if err != nil {
		return 0, err
	}
	if v < 0 {
		return 0, invalidf("stake", "must not be negative, got %v", v)
	}
	return v, nil
}

// segment checks one team segment against a roster of n players and returns
// a private copy of it.
func (c *Calculator) segment(idx int, seg Segment, n int) (matchup, error) {
	m := matchup{segment: idx}
	seen := make(map[PlayerID]int, 2*len(seg.Teams[0]))
	for t, team := range seg.Teams {
		field := fieldf("segments[%d].teams[%d]", idx, t)
		if len(team) == 0 {
			return matchup{}, invalid(field, "team must not be empty")
		}
		for _, id := range team {
			if id < 0 || int(id) >= n {
				return matchup{}, invalidf(field, "player %d is not on the roster of %d", id, n)
			}
			if prev, ok := seen[id]; ok {
				if prev == t {
					return matchup{}, invalidf(field, "player %d listed twice", id)
				}
				return matchup{}, invalidf(field, "player %d is on both teams", id)
			}
			seen[id] = t
		}
		m.sides[t] = slices.Clone(team)

		v, err := c.number(fieldf("segments[%d].points[%d]", idx, t), seg.Points[t])
		if err != nil {
			return matchup{}, err
		}
		m.points[t] = v
	}
	if len(m.sides[0]) != len(m.sides[1]) {
		return matchup{}, invalidf(fieldf("segments[%d].teams", idx),
			"teams must be the same size, got %d and %d", len(m.sides[0]), len(m.sides[1]))
	}
	return m, nil
}
