// Package pairing splits a four-player group into two teams of two.
package pairing

import (
	"errors"
	"fmt"
	"strings"

	"github.com/okian/dots/internal/domain/settlement"
)

// RosterSize is the number of players a pairing partitions.
const RosterSize = 4

// Sentinel kinds for pairing errors.
var (
	ErrRosterSize     = errors.New("pairing needs exactly four players")
	ErrUnknownPairing = errors.New("unknown pairing")
)

// Pairing selects one of the three ways to split four players.
type Pairing int

const (
	// OneTwoVsThreeFour is {1,2} v {3,4}.
	OneTwoVsThreeFour Pairing = iota + 1
	// OneThreeVsTwoFour is {1,3} v {2,4}.
	OneThreeVsTwoFour
	// OneFourVsTwoThree is {1,4} v {2,3}.
	OneFourVsTwoThree
)

// All lists every pairing in display order.
var All = []Pairing{OneTwoVsThreeFour, OneThreeVsTwoFour, OneFourVsTwoThree}

// zero-based roster positions for each pairing
var layouts = map[Pairing][2][2]settlement.PlayerID{
	OneTwoVsThreeFour: {{0, 1}, {2, 3}},
	OneThreeVsTwoFour: {{0, 2}, {1, 3}},
	OneFourVsTwoThree: {{0, 3}, {1, 2}},
}

var codes = map[Pairing]string{
	OneTwoVsThreeFour: "12v34",
	OneThreeVsTwoFour: "13v24",
	OneFourVsTwoThree: "14v23",
}

// String returns the wire code, e.g. "13v24".
func (p Pairing) String() string {
	if c, ok := codes[p]; ok {
		return c
	}
	return fmt.Sprintf("pairing(%d)", int(p))
}

// Parse maps a wire code to a Pairing. The empty string means
// OneTwoVsThreeFour, the partners off the first tee.
func Parse(s string) (Pairing, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return OneTwoVsThreeFour, nil
	}
	for p, c := range codes {
		if c == s {
			return p, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownPairing, s)
}

// Side is one team of a resolved pairing.
type Side struct {
	Members settlement.Team
	Label   string
}

// Matchup is the two sides of a pairing.
type Matchup struct {
	Pairing Pairing
	Sides   [2]Side
}

// Teams returns copies of both rosters in the shape the calculator takes.
func (m Matchup) Teams() [2]settlement.Team {
	return [2]settlement.Team{
		append(settlement.Team(nil), m.Sides[0].Members...),
		append(settlement.Team(nil), m.Sides[1].Members...),
	}
}

// Resolve looks up the teams of p over players and labels each side
// "Name1 & Name2".
func Resolve(players []string, p Pairing) (Matchup, error) {
	if len(players) != RosterSize {
		return Matchup{}, fmt.Errorf("%w: got %d", ErrRosterSize, len(players))
	}
	layout, ok := layouts[p]
	if !ok {
		return Matchup{}, fmt.Errorf("%w: %d", ErrUnknownPairing, int(p))
	}
	m := Matchup{Pairing: p}
	for i, ids := range layout {
		m.Sides[i] = Side{
			Members: settlement.Team{ids[0], ids[1]},
			Label:   players[ids[0]] + " & " + players[ids[1]],
		}
	}
	return m, nil
}

// ResolveAll resolves every pairing in display order.
func ResolveAll(players []string) ([]Matchup, error) {
	out := make([]Matchup, 0, len(All))
	for _, p := range All {
		m, err := Resolve(players, p)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}
