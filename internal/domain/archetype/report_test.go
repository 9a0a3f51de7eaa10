package archetype_test

import (
	"testing"

	archetype "github.com/okian/draftrange/internal/domain/archetype"
	model "github.com/okian/draftrange/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestPopulationReport(t *testing.T) {
	Convey("Given assignments skewed towards scoring guards", t, func() {
		var as []archetype.Assignment
		for i := 0; i < 6; i++ {
			as = append(as, archetype.Assignment{Primary: archetype.ScoringGuard, Method: archetype.MethodRule})
		}
		as = append(as,
			archetype.Assignment{Primary: archetype.AthleticBig, Method: archetype.MethodFallback},
			archetype.Assignment{Primary: archetype.AthleticBig, Method: archetype.MethodRule},
			archetype.Assignment{Primary: archetype.ThreeAndDWing, Method: archetype.MethodRule},
			archetype.Assignment{Primary: archetype.ThreeAndDWing, Method: archetype.MethodRule},
		)

		Convey("When the report is built", func() {
			rep := archetype.PopulationReport(as, 2, 0.5)

			Convey("Then every archetype should appear in taxonomy order", func() {
				So(rep.Total, ShouldEqual, 10)
				So(rep.Buckets, ShouldHaveLength, 6)
				So(rep.Buckets[0].Archetype, ShouldEqual, string(archetype.ScoringGuard))
				So(rep.Buckets[5].Archetype, ShouldEqual, string(archetype.AthleticBig))
			})

			Convey("And shares and flags should reflect the counts", func() {
				sg := rep.Buckets[0]
				So(sg.Share, ShouldAlmostEqual, 0.6)
				So(sg.Oversized, ShouldBeTrue)
				So(rep.Buckets[1].Undersized, ShouldBeTrue)
				So(rep.Buckets[5].Fallback, ShouldEqual, 1)
				So(rep.Buckets[5].Undersized, ShouldBeFalse)
				So(len(rep.Flagged()), ShouldEqual, 4)
			})
		})
	})

	Convey("Given no assignments", t, func() {
		rep := archetype.PopulationReport(nil, 1, 0.4)
		Convey("Then shares should be zero and every bucket undersized", func() {
			So(rep.Total, ShouldEqual, 0)
			for _, b := range rep.Buckets {
				So(b.Share, ShouldEqual, 0)
				So(b.Undersized, ShouldBeTrue)
			}
		})
	})
}

func TestFitCentroids(t *testing.T) {
	Convey("Given rule-matched and fallback members", t, func() {
		rules := archetype.DefaultConfig().Rules
		members := []archetype.Member{
			{
				Profile:    profile("a", model.Guard, model.Stats{model.StatPPG: 18, model.StatUSG: 26, model.StatRPG: 3, model.StatAPG: 2}),
				Assignment: archetype.Assignment{Primary: archetype.ScoringGuard, Method: archetype.MethodRule},
			},
			{
				Profile:    profile("b", model.Guard, model.Stats{model.StatPPG: 22, model.StatUSG: 30, model.StatFTA: 6, model.StatRPG: 3, model.StatAPG: 2}),
				Assignment: archetype.Assignment{Primary: archetype.ScoringGuard, Method: archetype.MethodRule},
			},
			{
				Profile:    profile("c", model.Guard, model.Stats{model.StatPPG: 4, model.StatUSG: 14, model.StatRPG: 1, model.StatAPG: 1}),
				Assignment: archetype.Assignment{Primary: archetype.ScoringGuard, Method: archetype.MethodFallback},
			},
		}

		Convey("When centroids are fit", func() {
			cs := archetype.FitCentroids(rules, members)

			Convey("Then means should use only rule-matched members with the stat", func() {
				sg := cs.Means[archetype.ScoringGuard]
				So(sg[model.StatPPG], ShouldEqual, 20)
				So(sg[model.StatUSG], ShouldEqual, 28)
				So(sg[model.StatFTA], ShouldEqual, 6)
			})

			Convey("And archetypes without members should be absent", func() {
				_, ok := cs.Means[archetype.AthleticBig]
				So(ok, ShouldBeFalse)
			})

			Convey("And scales should cover every member", func() {
				So(cs.Scales[model.StatPPG], ShouldBeGreaterThan, 0)
				_, ok := cs.Scales[model.StatFTA]
				So(ok, ShouldBeFalse)
			})
		})
	})
}
