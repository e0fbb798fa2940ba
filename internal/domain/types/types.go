// Package types contains the wire and display shapes used across the application
package types

import (
	"fmt"
	"math"

	"github.com/okian/dots/internal/domain/model"
	"github.com/okian/dots/internal/domain/pairing"
	"github.com/okian/dots/internal/domain/scoring"
	"github.com/okian/dots/internal/domain/settlement"
)

// Calculation is the response of every settlement endpoint.
type Calculation struct {
	StakePerPoint float64          `json:"stake_per_point"`
	TotalPoints   float64          `json:"total_points"`
	Segments      []string         `json:"segments"`
	Settlements   []SettlementView `json:"settlements"`
	NetResults    []NetView        `json:"net_results"`
}

// SettlementView is one payment between two players.
type SettlementView struct {
	From          string  `json:"from"`
	To            string  `json:"to"`
	Amount        float64 `json:"amount"`
	AmountDisplay string  `json:"amount_display"`
	PointDiff     float64 `json:"point_diff"`
	SegmentLabel  string  `json:"segment_label,omitempty"`
}

// NetView is a player's signed balance.
type NetView struct {
	Name         string    `json:"name"`
	Points       *float64  `json:"points,omitempty"`
	Total        float64   `json:"total"`
	TotalDisplay string    `json:"total_display"`
	PerSegment   []float64 `json:"per_segment,omitempty"`
}

// IndividualCalculation renders a free-for-all result.
func IndividualCalculation(res settlement.Result, stake float64) Calculation {
	c := calculation(res, stake, false)
	for i, n := range res.Nets {
		points := n.Points
		c.NetResults[i].Points = &points
	}
	return c
}

// TeamCalculation renders a multi-segment team result.
func TeamCalculation(res settlement.Result, stake float64) Calculation {
	c := calculation(res, stake, true)
	for i, n := range res.Nets {
		c.NetResults[i].PerSegment = append([]float64(nil), n.PerSegment...)
	}
	return c
}

func calculation(res settlement.Result, stake float64, labelled bool) Calculation {
	c := Calculation{
		StakePerPoint: stake,
		TotalPoints:   res.TotalPoints,
		Segments:      append([]string{}, res.Segments...),
		Settlements:   make([]SettlementView, 0, len(res.Settlements)),
		NetResults:    make([]NetView, 0, len(res.Nets)),
	}
	for _, s := range res.Settlements {
		v := SettlementView{
			From:          s.FromName,
			To:            s.ToName,
			Amount:        s.Amount,
			AmountDisplay: FormatAmount(s.Amount, false),
			PointDiff:     s.PointDiff,
		}
		if labelled {
			v.SegmentLabel = s.SegmentLabel
		}
		c.Settlements = append(c.Settlements, v)
	}
	for _, n := range res.Nets {
		c.NetResults = append(c.NetResults, NetView{
			Name:         n.Name,
			Total:        n.Total,
			TotalDisplay: FormatAmount(n.Total, true),
		})
	}
	return c
}

// FormatAmount renders v in dollars with two decimals. Signed output
// prefixes gains with "+" and losses with "-"; zero is always "$0.00".
func FormatAmount(v float64, signed bool) string {
	cents := math.Round(math.Abs(v) * 100)
	if cents == 0 {
		return "$0.00"
	}
	s := fmt.Sprintf("$%.2f", cents/100)
	switch {
	case v < 0:
		return "-" + s
	case signed:
		return "+" + s
	default:
		return s
	}
}

// MatchupView is one way to split four players into two teams.
type MatchupView struct {
	Pairing string   `json:"pairing"`
	Team1   TeamView `json:"team1"`
	Team2   TeamView `json:"team2"`
}

// TeamView names a team and its roster positions.
type TeamView struct {
	Label   string `json:"label"`
	Members []int  `json:"members"`
}

// Matchups renders resolved pairings.
func Matchups(ms []pairing.Matchup) []MatchupView {
	out := make([]MatchupView, 0, len(ms))
	for _, m := range ms {
		out = append(out, MatchupView{
			Pairing: m.Pairing.String(),
			Team1:   teamView(m.Sides[0]),
			Team2:   teamView(m.Sides[1]),
		})
	}
	return out
}

func teamView(s pairing.Side) TeamView {
	members := make([]int, len(s.Members))
	for i, id := range s.Members {
		members[i] = int(id)
	}
	return TeamView{Label: s.Label, Members: members}
}

// SegmentScore is the response of the hole scoring endpoint.
type SegmentScore struct {
	Label       string      `json:"label,omitempty"`
	Team1Points float64     `json:"team1_points"`
	Team2Points float64     `json:"team2_points"`
	Holes       []HoleScore `json:"holes"`
}

// HoleScore is one hole's contribution to a segment.
type HoleScore struct {
	Hole        int     `json:"hole"`
	Team1Points float64 `json:"team1_points"`
	Team2Points float64 `json:"team2_points"`
	Multiplier  float64 `json:"multiplier"`
	Sweep       bool    `json:"sweep"`
}

// SegmentTally renders a scored segment.
func SegmentTally(label string, t scoring.Tally) SegmentScore {
	out := SegmentScore{
		Label:       label,
		Team1Points: t.Team1,
		Team2Points: t.Team2,
		Holes:       make([]HoleScore, len(t.Holes)),
	}
	for i, h := range t.Holes {
		out.Holes[i] = HoleScore{
			Hole:        i + 1,
			Team1Points: h.Team1,
			Team2Points: h.Team2,
			Multiplier:  h.Multiplier,
			Sweep:       h.Sweep,
		}
	}
	return out
}

// PlayerView is a roster entry.
type PlayerView struct {
	Name   string  `json:"name"`
	Points float64 `json:"points"`
}

// Defaults is the state a fresh round starts from.
type Defaults struct {
	StakePerPoint float64      `json:"stake_per_point"`
	Players       []PlayerView `json:"players"`
	Pairings      []string     `json:"pairings"`
	MinSegments   int          `json:"min_segments"`
	MaxSegments   int          `json:"max_segments"`
}

// DefaultsFrom renders r with the accepted pairings and segment bounds.
func DefaultsFrom(r model.IndividualRound, minSegments, maxSegments int) Defaults {
	d := Defaults{
		StakePerPoint: r.Stake,
		Players:       make([]PlayerView, len(r.Players)),
		Pairings:      make([]string, len(pairing.All)),
		MinSegments:   minSegments,
		MaxSegments:   maxSegments,
	}
	for i, p := range r.Players {
		d.Players[i] = PlayerView{Name: p.Name, Points: p.Points}
	}
	for i, p := range pairing.All {
		d.Pairings[i] = p.String()
	}
	return d
}
