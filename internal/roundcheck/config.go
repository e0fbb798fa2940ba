// Package roundcheck drives a running dots service with generated rounds and
// checks every response for internal consistency.
package roundcheck

import (
	"errors"
	"time"
)

// ErrVerification is returned by Run when any response fails a check.
var ErrVerification = errors.New("round verification failed")

// Kind names the endpoint a case exercises.
type Kind string

const (
	KindIndividual Kind = "individual"
	KindTeams      Kind = "teams"
	KindSegment    Kind = "segment"
)

// Config holds configuration for a check run.
type Config struct {
	BaseURL    string        // Base URL of the service
	Rounds     int           // Number of cases to generate
	Workers    int           // Concurrent requests in flight
	Timeout    time.Duration // HTTP request timeout
	Seed       uint64        // Generator seed; 0 picks one from the clock
	OutputFile string        // Where generated cases are written; empty skips
	Verbose    bool          // Log every case
}

// Player is one entry of an individual request.
type Player struct {
	Name   string  `json:"name"`
	Points float64 `json:"points"`
}

// IndividualRequest is the body of POST /v1/settlements/individual.
type IndividualRequest struct {
	Stake   float64  `json:"stake_per_point"`
	Players []Player `json:"players"`
}

// Segment is one segment of a team request.
type Segment struct {
	Label       string  `json:"label,omitempty"`
	Pairing     string  `json:"pairing"`
	Team1Points float64 `json:"team1_points"`
	Team2Points float64 `json:"team2_points"`
}

// TeamRequest is the body of POST /v1/settlements/teams.
type TeamRequest struct {
	Stake    float64   `json:"stake_per_point"`
	Players  []string  `json:"players"`
	Segments []Segment `json:"segments"`
}

// Hole is one hole of a segment scoring request.
type Hole struct {
	GIR     string `json:"gir,omitempty"`
	LowMan  string `json:"low_man,omitempty"`
	LowTeam string `json:"low_team,omitempty"`
	Birdie  string `json:"birdie,omitempty"`
	Roll    bool   `json:"roll,omitempty"`
	Press   bool   `json:"press,omitempty"`
}

// SegmentRequest is the body of POST /v1/scoring/segment.
type SegmentRequest struct {
	Label string `json:"label"`
	Holes []Hole `json:"holes"`
}

// Case is one generated request.
type Case struct {
	ID         string             `json:"id"`
	Kind       Kind               `json:"kind"`
	Individual *IndividualRequest `json:"individual,omitempty"`
	Teams      *TeamRequest       `json:"teams,omitempty"`
	Segment    *SegmentRequest    `json:"segment,omitempty"`
}

// Stats holds run statistics.
type Stats struct {
	Generated int
	Submitted int
	Passed    int
	Failed    int // transport errors and unexpected status codes
	Mismatch  int // responses that failed verification
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
}
