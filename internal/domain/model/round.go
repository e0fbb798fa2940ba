// Package model contains domain models passed between layers.
package model

import (
	"github.com/okian/dots/internal/domain/pairing"
	"github.com/okian/dots/internal/domain/settlement"
)

// PlayerScore is one player's final total in an individual round.
type PlayerScore struct {
	Name   string
	Points float64
}

// IndividualRound is the snapshot for an every-player-against-every-player
// calculation.
type IndividualRound struct {
	Stake   float64
	Players []PlayerScore
}

// SegmentScore is one segment of a team round: who partnered whom and what
// each team scored. Team 1 and team 2 follow the pairing's side order.
type SegmentScore struct {
	Label       string // empty means the default label for the round's shape
	Pairing     pairing.Pairing
	Team1Points float64
	Team2Points float64
}

// TeamRound is the snapshot for a four-player team calculation.
type TeamRound struct {
	Stake    float64
	Players  []string
	Segments []SegmentScore
}

// SettlementPlayers converts the roster to the calculator's input.
func (r IndividualRound) SettlementPlayers() []settlement.Player {
	out := make([]settlement.Player, len(r.Players))
	for i, p := range r.Players {
		out[i] = settlement.Player{Name: p.Name, Points: p.Points}
	}
	return out
}

// DefaultRoster is the state a reset returns to: four placeholder players on
// zero points at the default stake.
func DefaultRoster() IndividualRound {
	return IndividualRound{
		Stake: settlement.DefaultStake,
		Players: []PlayerScore{
			{Name: "Player A"},
			{Name: "Player B"},
			{Name: "Player C"},
			{Name: "Player D"},
		},
	}
}

// Names returns the player names of r in roster order.
func (r IndividualRound) Names() []string {
	out := make([]string, len(r.Players))
	for i, p := range r.Players {
		out[i] = p.Name
	}
	return out
}
