package settlement_test

import (
	"fmt"
	"math"
	"slices"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okian/dots/internal/domain/settlement"
)

const propertyRuns = 200

// quarter keeps generated values on a grid that float64 represents exactly,
// so sums can be compared with ==.
func quarter(v float64) float64 { return math.Round(v*4) / 4 }

func randomPlayers(f *gofakeit.Faker) []settlement.Player {
	players := make([]settlement.Player, f.IntRange(2, 8))
	for i := range players {
		players[i] = settlement.Player{
			Name:   f.FirstName(),
			Points: quarter(f.Float64Range(-10, 40)),
		}
	}
	return players
}

func randomStake(f *gofakeit.Faker) float64 {
	return []float64{0, 0.25, 0.5, 1, 2, 5}[f.IntRange(0, 5)]
}

func randomSegments(f *gofakeit.Faker) []settlement.Segment {
	pairings := [][2]settlement.Team{
		{{0, 1}, {2, 3}},
		{{0, 2}, {1, 3}},
		{{0, 3}, {1, 2}},
	}
	segs := make([]settlement.Segment, f.IntRange(1, 3))
	for i := range segs {
		segs[i] = settlement.Segment{
			Label:  fmt.Sprintf("Segment %d", i+1),
			Teams:  pairings[f.IntRange(0, 2)],
			Points: [2]float64{quarter(f.Float64Range(0, 30)), quarter(f.Float64Range(0, 30))},
		}
	}
	return segs
}

func segmentSums(res settlement.Result) []float64 {
	sums := make([]float64, len(res.Segments))
	for _, n := range res.Nets {
		for s, v := range n.PerSegment {
			sums[s] += v
		}
	}
	return sums
}

func TestIndividual_ZeroSum(t *testing.T) {
	f := gofakeit.New(7)
	calc := settlement.NewCalculator()
	for run := 0; run < propertyRuns; run++ {
		players := randomPlayers(f)
		res, err := calc.Individual(players, randomStake(f))
		require.NoError(t, err)

		assert.Equal(t, []float64{0}, segmentSums(res), "run %d", run)
		for _, s := range res.Settlements {
			assert.NotEqual(t, s.From, s.To)
			assert.GreaterOrEqual(t, s.Amount, 0.0)
			assert.NotZero(t, s.PointDiff)
		}
		assert.True(t, slices.IsSortedFunc(res.Nets, func(a, b settlement.NetResult) int {
			switch {
			case a.Total > b.Total:
				return -1
			case a.Total < b.Total:
				return 1
			}
			return 0
		}))
	}
}

func TestTeams_ZeroSumPerSegment(t *testing.T) {
	f := gofakeit.New(11)
	roster := []string{"A", "B", "C", "D"}
	for _, mode := range []settlement.Itemization{settlement.ItemizeSplit, settlement.ItemizeUndivided} {
		calc := settlement.NewCalculator(settlement.WithItemization(mode))
		for run := 0; run < propertyRuns; run++ {
			segs := randomSegments(f)
			res, err := calc.Teams(roster, randomStake(f), segs)
			require.NoError(t, err)
			for s, sum := range segmentSums(res) {
				assert.Zero(t, sum, "mode %s run %d segment %d", mode, run, s)
			}
		}
	}
}

func TestTeams_SplitEdgesMatchObligations(t *testing.T) {
	f := gofakeit.New(13)
	roster := []string{"A", "B", "C", "D"}
	calc := settlement.NewCalculator()
	for run := 0; run < propertyRuns; run++ {
		res, err := calc.Teams(roster, randomStake(f), randomSegments(f))
		require.NoError(t, err)

		flow := make(map[settlement.PlayerID]float64)
		for _, s := range res.Settlements {
			flow[s.From] -= s.Amount
			flow[s.To] += s.Amount
		}
		for _, n := range res.Nets {
			assert.Equal(t, n.Total, flow[n.Player], "run %d player %d", run, n.Player)
		}
	}
}

func TestIndividual_ScaleLinearity(t *testing.T) {
	f := gofakeit.New(17)
	calc := settlement.NewCalculator()
	for run := 0; run < propertyRuns; run++ {
		players := randomPlayers(f)
		stake := randomStake(f)
		single, err := calc.Individual(players, stake)
		require.NoError(t, err)
		double, err := calc.Individual(players, 2*stake)
		require.NoError(t, err)

		require.Len(t, double.Settlements, len(single.Settlements))
		for i := range single.Settlements {
			assert.Equal(t, 2*single.Settlements[i].Amount, double.Settlements[i].Amount)
		}
		sn, dn := netByPlayer(single), netByPlayer(double)
		for id, v := range sn {
			assert.Equal(t, 2*v, dn[id])
		}
	}
}

func TestIndividual_Antisymmetry(t *testing.T) {
	f := gofakeit.New(19)
	calc := settlement.NewCalculator()
	for run := 0; run < propertyRuns; run++ {
		players := randomPlayers(f)
		stake := randomStake(f)
		before, err := calc.Individual(players, stake)
		require.NoError(t, err)

		swapped := slices.Clone(players)
		swapped[0].Points, swapped[1].Points = swapped[1].Points, swapped[0].Points
		after, err := calc.Individual(swapped, stake)
		require.NoError(t, err)

		bn, an := netByPlayer(before), netByPlayer(after)
		assert.Equal(t, bn[1], an[0], "run %d", run)
		assert.Equal(t, bn[0], an[1], "run %d", run)
		if players[0].Points == players[1].Points {
			continue
		}
		for _, s := range before.Settlements {
			if (s.From == 0 && s.To == 1) || (s.From == 1 && s.To == 0) {
				mirrored := findEdge(after, s.To, s.From)
				require.NotNil(t, mirrored, "run %d", run)
				assert.Equal(t, s.Amount, mirrored.Amount)
			}
		}
	}
}

func findEdge(res settlement.Result, from, to settlement.PlayerID) *settlement.Settlement {
	for i := range res.Settlements {
		if res.Settlements[i].From == from && res.Settlements[i].To == to {
			return &res.Settlements[i]
		}
	}
	return nil
}

func TestCalculator_Idempotent(t *testing.T) {
	f := gofakeit.New(23)
	calc := settlement.NewCalculator()
	roster := []string{"A", "B", "C", "D"}
	for run := 0; run < propertyRuns; run++ {
		players := randomPlayers(f)
		stake := randomStake(f)
		first, err := calc.Individual(players, stake)
		require.NoError(t, err)
		second, err := calc.Individual(players, stake)
		require.NoError(t, err)
		if diff := cmp.Diff(first, second); diff != "" {
			t.Fatalf("individual run %d not idempotent (-first +second):\n%s", run, diff)
		}

		segs := randomSegments(f)
		ft, err := calc.Teams(roster, stake, segs)
		require.NoError(t, err)
		st, err := calc.Teams(roster, stake, segs)
		require.NoError(t, err)
		if diff := cmp.Diff(ft, st); diff != "" {
			t.Fatalf("teams run %d not idempotent (-first +second):\n%s", run, diff)
		}
	}
}

func TestCalculator_NoAliasing(t *testing.T) {
	calc := settlement.NewCalculator()
	roster := []string{"A", "B", "C", "D"}
	segs := []settlement.Segment{{
		Label:  "Front 9",
		Teams:  [2]settlement.Team{{0, 1}, {2, 3}},
		Points: [2]float64{6, 2},
	}}

	res, err := calc.Teams(roster, 0.25, segs)
	require.NoError(t, err)
	snapshot, err := calc.Teams(roster, 0.25, segs)
	require.NoError(t, err)

	roster[0] = "Renamed"
	segs[0].Teams[0][0] = 3
	segs[0].Points[0] = 0
	if diff := cmp.Diff(snapshot, res); diff != "" {
		t.Fatalf("result changed after input mutation (-want +got):\n%s", diff)
	}

	res.Nets[0].PerSegment[0] = 99
	assert.Equal(t, settlement.PlayerID(3), segs[0].Teams[0][0])
	assert.Equal(t, "Renamed", roster[0])
}
