// Package settlement computes who owes whom after a Dots round.
//
// Every variant of the game reduces to the same step: two sides meet in a
// segment, the side with fewer points loses, and every losing player owes
// the point differential times the stake. Individual play is a set of
// one-on-one sides in a single segment; team play is one two-on-two side
// per segment. Calculations are pure: inputs are never modified and every
// Result is built from fresh slices.
package settlement

import (
	"cmp"
	"errors"
	"fmt"
	"math"
	"slices"
)

// DefaultStake is the amount owed per point of differential when the caller
// does not choose one.
const DefaultStake = 0.25

// IndividualLabel names the single segment of an individual calculation.
const IndividualLabel = "Round"

// PlayerID identifies a player by position in the caller's roster.
// Names are display only; two players may share one.
type PlayerID int

// Player is one entry of an individual round.
type Player struct {
	Name   string
	Points float64
}

// Team is the ordered roster of one side for one segment.
type Team []PlayerID

// Segment is an independently scored stretch of holes.
type Segment struct {
	Label  string
	Teams  [2]Team
	Points [2]float64
}

// Settlement is one directed payment.
type Settlement struct {
	Segment      int
	SegmentLabel string
	From         PlayerID
	To           PlayerID
	FromName     string
	ToName       string
	PointDiff    float64 // absolute differential of the matchup that produced it
	Amount       float64 // never negative
}

// NetResult is a player's signed outcome; positive means the player collects.
type NetResult struct {
	Player     PlayerID
	Name       string
	Points     float64 // individual rounds only
	Total      float64
	PerSegment []float64
}

// Result is the output of one calculation.
type Result struct {
	Segments    []string
	Settlements []Settlement
	// Nets is sorted by Total descending; equal totals keep roster order.
	Nets []NetResult
	// TotalPoints is a display sum and is not used in settlement math.
	TotalPoints float64
	// Stake is the stake actually applied, after the non-finite policy.
	Stake float64
}

// Calculator settles rounds. It holds only configuration and is safe for
// concurrent use.
type Calculator struct {
	itemization Itemization
	nonFinite   NonFinitePolicy
}

// NewCalculator creates a Calculator with the split itemization and the
// reject policy for non-finite numbers, then applies opts.
func NewCalculator(opts ...Option) *Calculator {
	c := &Calculator{
		itemization: ItemizeSplit,
		nonFinite:   RejectNonFinite,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Itemization reports the configured itemization.
func (c *Calculator) Itemization() Itemization { return c.itemization }

// NonFinitePolicy reports the configured non-finite policy.
func (c *Calculator) NonFinitePolicy() NonFinitePolicy { return c.nonFinite }

// Individual settles every player against every other player: for each pair
// with different totals the lower total pays the higher one
// |difference| * stake. Equal totals settle nothing.
func (c *Calculator) Individual(players []Player, stake float64) (Result, error) {
	stake, err := c.stake(stake)
	if err != nil {
		return Result{}, err
	}

	names := make([]string, len(players))
	points := make([]float64, len(players))
	var total float64
	for i, p := range players {
		v, err := c.number(fieldf("players[%d].points", i), p.Points)
		if err != nil {
			return Result{}, err
		}
		names[i] = p.Name
		points[i] = v
		total += v
	}

	b := newBook(names, []string{IndividualLabel})
	for i := 0; i < len(players); i++ {
		for j := i + 1; j < len(players); j++ {
			err := b.settle(matchup{
				sides:  [2]Team{{PlayerID(i)}, {PlayerID(j)}},
				points: [2]float64{points[i], points[j]},
			}, stake, c.itemization)
			if err != nil {
				return Result{}, invalidf(fieldf("players[%d].points", j), "settling against players[%d]: %v", i, err)
			}
		}
	}

	res := b.result()
	for i := range res.Nets {
		res.Nets[i].Points = points[res.Nets[i].Player]
	}
	res.TotalPoints = total
	res.Stake = stake
	if err := res.checkFinite(); err != nil {
		return Result{}, invalid("players", err.Error())
	}
	return res, nil
}

// Teams settles each segment between its two teams. Every player on the
// losing team owes |difference| * stake and every player on the winning
// team is credited the same amount; Itemization controls how that
// obligation is shown as transactions. A player may change teams between
// segments and may sit a segment out.
func (c *Calculator) Teams(players []string, stake float64, segments []Segment) (Result, error) {
	stake, err := c.stake(stake)
	if err != nil {
		return Result{}, err
	}
	if len(segments) == 0 {
		return Result{}, invalid("segments", "at least one segment is required")
	}

	labels := make([]string, len(segments))
	games := make([]matchup, len(segments))
	var total float64
	for s, seg := range segments {
		m, err := c.segment(s, seg, len(players))
		if err != nil {
			return Result{}, err
		}
		labels[s] = seg.Label
		games[s] = m
		total += m.points[0] + m.points[1]
	}

	b := newBook(slices.Clone(players), labels)
	for _, m := range games {
		if err := b.settle(m, stake, c.itemization); err != nil {
			return Result{}, invalidf(fieldf("segments[%d]", m.segment), "%v", err)
		}
	}

	res := b.result()
	res.TotalPoints = total
	res.Stake = stake
	if err := res.checkFinite(); err != nil {
		return Result{}, invalid("segments", err.Error())
	}
	return res, nil
}

// matchup is one contest between two sides inside a segment.
type matchup struct {
	segment int
	sides   [2]Team
	points  [2]float64
}

// book accumulates settlements and per-segment contributions, keyed by PlayerID.
type book struct {
	names       []string
	labels      []string
	settlements []Settlement
	perSegment  [][]float64
}

func newBook(names, labels []string) *book {
	per := make([][]float64, len(names))
	for i := range per {
		per[i] = make([]float64, len(labels))
	}
	return &book{names: names, labels: labels, perSegment: per}
}

// settle applies one matchup. A zero differential is a no-op. Finite
// inputs can still overflow; such a matchup is refused and nothing is booked.
func (b *book) settle(m matchup, stake float64, itemization Itemization) error {
	diff := m.points[0] - m.points[1]
	if diff == 0 {
		return nil
	}
	if !isFinite(diff) {
		return errors.New("point difference overflows")
	}
	win, lose := 0, 1
	if diff < 0 {
		win, lose = 1, 0
		diff = -diff
	}
	winners, losers := m.sides[win], m.sides[lose]

	obligation := diff * stake
	if !isFinite(obligation) {
		return fmt.Errorf("amount %v x %v overflows", diff, stake)
	}
	edge := obligation
	if itemization == ItemizeSplit {
		edge = obligation / float64(len(winners))
	}

	for _, from := range losers {
		b.perSegment[from][m.segment] -= obligation
		for _, to := range winners {
			b.settlements = append(b.settlements, Settlement{
				Segment:      m.segment,
				SegmentLabel: b.labels[m.segment],
				From:         from,
				To:           to,
				FromName:     b.names[from],
				ToName:       b.names[to],
				PointDiff:    diff,
				Amount:       edge,
			})
		}
	}
	for _, to := range winners {
		b.perSegment[to][m.segment] += obligation
	}
	return nil
}

func (b *book) result() Result {
	nets := make([]NetResult, len(b.names))
	for i, name := range b.names {
		var total float64
		for _, v := range b.perSegment[i] {
			total += v
		}
		nets[i] = NetResult{
			Player:     PlayerID(i),
			Name:       name,
			Total:      total,
			PerSegment: b.perSegment[i],
		}
	}
	slices.SortStableFunc(nets, func(a, b NetResult) int {
		return cmp.Compare(b.Total, a.Total)
	})

	settlements := b.settlements
	if settlements == nil {
		settlements = []Settlement{}
	}
	return Result{
		Segments:    b.labels,
		Settlements: settlements,
		Nets:        nets,
	}
}

func isFinite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

// checkFinite reports a total that overflowed while summing.
func (r Result) checkFinite() error {
	if !isFinite(r.TotalPoints) {
		return errors.New("total points overflow")
	}
	for _, n := range r.Nets {
		if !isFinite(n.Total) {
			return fmt.Errorf("net total of %s overflows", n.Name)
		}
		for _, v := range n.PerSegment {
			if !isFinite(v) {
				return fmt.Errorf("segment total of %s overflows", n.Name)
			}
		}
	}
	return nil
}
