package roundcheck

import (
	"fmt"
	"math"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"

	"github.com/okian/dots/internal/domain/pairing"
)

// Generation ranges.
const (
	minIndividualPlayers = 2
	maxIndividualPlayers = 6
	maxPlayerPoints      = 30.0
	maxSegmentPoints     = 24
	holesPerSegment      = 9
)

var stakes = []float64{0, 0.1, 0.25, 0.5, 1, 2} //nolint:gochecknoglobals // fixed table

var awards = []string{"", "team1", "team2", "halved"} //nolint:gochecknoglobals // fixed table

// Generate builds n cases cycling through individual, team and segment requests.
func Generate(seed uint64, n int) []Case {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	f := gofakeit.New(seed)

	codes := make([]string, 0, len(pairing.All))
	for _, p := range pairing.All {
		codes = append(codes, p.String())
	}

	cases := make([]Case, n)
	for i := range cases {
		c := Case{ID: uuid.NewString()}
		switch i % 3 {
		case 0:
			c.Kind = KindIndividual
			c.Individual = individualRound(f)
		case 1:
			c.Kind = KindTeams
			c.Teams = teamRound(f, codes)
		default:
			c.Kind = KindSegment
			c.Segment = segmentHoles(f)
		}
		cases[i] = c
	}
	return cases
}

func individualRound(f *gofakeit.Faker) *IndividualRequest {
	n := f.IntRange(minIndividualPlayers, maxIndividualPlayers)
	names := uniqueNames(f, n)
	players := make([]Player, n)
	for i := range players {
		// quarter points keep totals exact in binary floating point
		pts := math.Round(f.Float64Range(-5, maxPlayerPoints)*4) / 4
		players[i] = Player{Name: names[i], Points: pts}
	}
	return &IndividualRequest{Stake: stakes[f.IntRange(0, len(stakes)-1)], Players: players}
}

func teamRound(f *gofakeit.Faker, codes []string) *TeamRequest {
	players := uniqueNames(f, pairing.RosterSize)
	segments := make([]Segment, f.IntRange(2, 3))
	for i := range segments {
		segments[i] = Segment{
			Pairing:     f.RandomString(codes),
			Team1Points: float64(f.IntRange(0, maxSegmentPoints)),
			Team2Points: float64(f.IntRange(0, maxSegmentPoints)),
		}
	}
	return &TeamRequest{Stake: stakes[f.IntRange(0, len(stakes)-1)], Players: players, Segments: segments}
}

func segmentHoles(f *gofakeit.Faker) *SegmentRequest {
	holes := make([]Hole, holesPerSegment)
	for i := range holes {
		holes[i] = Hole{
			GIR:     f.RandomString(awards),
			LowMan:  f.RandomString(awards),
			LowTeam: f.RandomString(awards),
			Birdie:  f.RandomString(awards),
			Roll:    f.IntRange(0, 9) == 0,
			Press:   f.IntRange(0, 11) == 0,
		}
	}
	return &SegmentRequest{Label: f.RandomString([]string{"Front 9", "Back 9"}), Holes: holes}
}

// uniqueNames draws n first names, suffixing repeats so responses can be
// matched back to players by name.
func uniqueNames(f *gofakeit.Faker, n int) []string {
	seen := make(map[string]int, n)
	names := make([]string, n)
	for i := range names {
		name := f.FirstName()
		seen[name]++
		if seen[name] > 1 {
			name = fmt.Sprintf("%s %d", name, seen[name])
		}
		names[i] = name
	}
	return names
}
