package model_test

import (
	"testing"

	model "github.com/okian/dots/internal/domain/model"
	"github.com/okian/dots/internal/domain/settlement"
	"github.com/smartystreets/goconvey/convey"
)

func TestDefaultRoster(t *testing.T) {
	convey.Convey("Given the default roster", t, func() {
		r := model.DefaultRoster()

		convey.Convey("Then it has four placeholder players on zero", func() {
			convey.So(r.Names(), convey.ShouldResemble, []string{"Player A", "Player B", "Player C", "Player D"})
			for _, p := range r.Players {
				convey.So(p.Points, convey.ShouldEqual, 0)
			}
		})

		convey.Convey("And the stake is a quarter a point", func() {
			convey.So(r.Stake, convey.ShouldEqual, settlement.DefaultStake)
			convey.So(r.Stake, convey.ShouldEqual, 0.25)
		})

		convey.Convey("When one call's roster is edited", func() {
			r.Players[0].Name = "Edited"

			convey.Convey("Then the next reset is unaffected", func() {
				convey.So(model.DefaultRoster().Players[0].Name, convey.ShouldEqual, "Player A")
			})
		})
	})
}

func TestIndividualRound_SettlementPlayers(t *testing.T) {
	convey.Convey("Given an individual round", t, func() {
		r := model.IndividualRound{
			Stake:   1,
			Players: []model.PlayerScore{{Name: "A", Points: 3}, {Name: "B", Points: 1.5}},
		}

		convey.Convey("When converting it for the calculator", func() {
			players := r.SettlementPlayers()

			convey.Convey("Then names and points are preserved in order", func() {
				convey.So(players, convey.ShouldResemble, []settlement.Player{
					{Name: "A", Points: 3},
					{Name: "B", Points: 1.5},
				})
			})

			convey.Convey("And the copy is independent", func() {
				players[0].Points = 99
				convey.So(r.Players[0].Points, convey.ShouldEqual, 3)
			})
		})
	})
}
