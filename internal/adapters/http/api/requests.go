package api

import (
	"fmt"

	"github.com/okian/dots/internal/domain/model"
	"github.com/okian/dots/internal/domain/pairing"
	"github.com/okian/dots/internal/domain/scoring"
	"github.com/okian/dots/internal/domain/settlement"
)

// individualRequest mirrors the OpenAPI schema for POST /v1/settlements/individual.
type individualRequest struct {
	StakePerPoint *float64        `json:"stake_per_point"`
	Players       []playerRequest `json:"players"`
}

type playerRequest struct {
	Name   string  `json:"name"`
	Points float64 `json:"points"`
}

func (r individualRequest) round(defaultStake float64) model.IndividualRound {
	out := model.IndividualRound{
		Stake:   stakeOr(r.StakePerPoint, defaultStake),
		Players: make([]model.PlayerScore, len(r.Players)),
	}
	for i, p := range r.Players {
		out.Players[i] = model.PlayerScore{Name: p.Name, Points: p.Points}
	}
	return out
}

// teamRequest mirrors the OpenAPI schema for POST /v1/settlements/teams.
type teamRequest struct {
	StakePerPoint *float64         `json:"stake_per_point"`
	Players       []string         `json:"players"`
	Segments      []segmentRequest `json:"segments"`
}

type segmentRequest struct {
	Label       string  `json:"label"`
	Pairing     string  `json:"pairing"`
	Team1Points float64 `json:"team1_points"`
	Team2Points float64 `json:"team2_points"`
}

func (r teamRequest) round(defaultStake float64) (model.TeamRound, error) {
	out := model.TeamRound{
		Stake:    stakeOr(r.StakePerPoint, defaultStake),
		Players:  append([]string(nil), r.Players...),
		Segments: make([]model.SegmentScore, len(r.Segments)),
	}
	for i, s := range r.Segments {
		p, err := pairing.Parse(s.Pairing)
		if err != nil {
			return model.TeamRound{}, settlement.NewValidationError(fmt.Sprintf("segments[%d].pairing", i), err)
		}
		out.Segments[i] = model.SegmentScore{
			Label:       s.Label,
			Pairing:     p,
			Team1Points: s.Team1Points,
			Team2Points: s.Team2Points,
		}
	}
	return out, nil
}

// segmentScoreRequest mirrors the OpenAPI schema for POST /v1/scoring/segment.
type segmentScoreRequest struct {
	Label string        `json:"label"`
	Holes []holeRequest `json:"holes"`
}

type holeRequest struct {
	GIR     string `json:"gir"`
	LowMan  string `json:"low_man"`
	LowTeam string `json:"low_team"`
	Birdie  string `json:"birdie"`
	Roll    bool   `json:"roll"`
	Press   bool   `json:"press"`
}

func (r segmentScoreRequest) holes() ([]scoring.Hole, error) {
	out := make([]scoring.Hole, len(r.Holes))
	for i, h := range r.Holes {
		awards := make(map[scoring.Category]scoring.Award, len(scoring.Categories))
		raw := [...]string{h.GIR, h.LowMan, h.LowTeam, h.Birdie}
		for j, c := range scoring.Categories {
			a, err := scoring.ParseAward(raw[j])
			if err != nil {
				return nil, settlement.NewValidationError(fmt.Sprintf("holes[%d].%s", i, c), err)
			}
			awards[c] = a
		}
		out[i] = scoring.Hole{Awards: awards, Roll: h.Roll, Press: h.Press}
	}
	return out, nil
}

func stakeOr(stake *float64, fallback float64) float64 {
	if stake == nil {
		return fallback
	}
	return *stake
}
