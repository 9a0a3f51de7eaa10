package archetype_test

import (
	"errors"
	"testing"

	archetype "github.com/okian/draftrange/internal/domain/archetype"
	model "github.com/okian/draftrange/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func profile(id string, pos model.Position, stats model.Stats) *model.PlayerProfile {
	return &model.PlayerProfile{ID: id, Position: pos, Stats: stats}
}

func testCentroids() archetype.Centroids {
	return archetype.Centroids{
		Means: map[archetype.Archetype]map[model.Stat]float64{
			archetype.ScoringGuard:    {model.StatPPG: 19, model.StatUSG: 28, model.StatFTA: 5.5},
			archetype.PlaymakingGuard: {model.StatAPG: 6, model.StatUSG: 22},
			archetype.ThreeAndDWing:   {model.StatThreeP: 37, model.StatSPG: 1.4, model.StatPPG: 11},
			archetype.ScoringWing:     {model.StatPPG: 19, model.StatUSG: 27, model.StatFTA: 5},
			archetype.SkilledBig:      {model.StatFT: 76, model.StatThreeP: 34, model.StatOBPM: 4},
			archetype.AthleticBig:     {model.StatBPG: 2.2, model.StatDunks: 45, model.StatFT: 60, model.StatRPG: 9},
		},
		Scales: map[model.Stat]float64{
			model.StatPPG: 5, model.StatUSG: 4, model.StatFTA: 1.8, model.StatAPG: 2,
			model.StatThreeP: 6, model.StatSPG: 0.5, model.StatFT: 8, model.StatOBPM: 2.5,
			model.StatBPG: 0.9, model.StatDunks: 18, model.StatRPG: 2.5,
		},
	}
}

func newClassifier() *archetype.Classifier {
	c, err := archetype.New(archetype.DefaultConfig(), archetype.WithCentroids(testCentroids()))
	So(err, ShouldBeNil)
	return c
}

func TestClassifier_Scenarios(t *testing.T) {
	Convey("Given the default threshold table", t, func() {
		c := newClassifier()

		Convey("When a high-usage guard gets to the line", func() {
			p := profile("g1", model.Guard, model.Stats{
				model.StatPPG: 18, model.StatUSG: 28, model.StatFTA: 5, model.StatRPG: 4, model.StatAPG: 3,
			})
			a := c.Classify(p)

			Convey("Then it should be a rule-matched Scoring Guard", func() {
				So(a.Primary, ShouldEqual, archetype.ScoringGuard)
				So(a.Primary, ShouldNotEqual, archetype.PlaymakingGuard)
				So(a.Method, ShouldEqual, archetype.MethodRule)
				So(a.Secondary, ShouldEqual, archetype.Archetype(""))
			})
		})

		Convey("When a low-volume wing shoots and defends", func() {
			p := profile("w1", model.Wing, model.Stats{
				model.StatThreeP: 35, model.StatSPG: 1.2, model.StatPPG: 14, model.StatRPG: 5, model.StatAPG: 2,
			})

			Convey("Then it should be a 3&D Wing", func() {
				a := c.Classify(p)
				So(a.Primary, ShouldEqual, archetype.ThreeAndDWing)
				So(a.Method, ShouldEqual, archetype.MethodRule)
				So(a.Primary.Label(), ShouldEqual, "3&D Wing")
			})
		})

		Convey("When a big blocks shots, dunks and misses free throws", func() {
			p := profile("b1", model.Big, model.Stats{
				model.StatFT: 65, model.StatDunks: 25, model.StatBPG: 1.0, model.StatPPG: 10, model.StatRPG: 6, model.StatAPG: 1,
			})

			Convey("Then it should be an Athletic Big via the rim-protector branch", func() {
				a := c.Classify(p)
				So(a.Primary, ShouldEqual, archetype.AthleticBig)
				So(a.Branch, ShouldEqual, "rim_protector")
				So(a.Method, ShouldEqual, archetype.MethodRule)
			})
		})
	})
}

func TestClassifier_MultipleMatches(t *testing.T) {
	Convey("Given a guard who clears both scoring and playmaking thresholds", t, func() {
		c := newClassifier()
		p := profile("g2", model.Guard, model.Stats{
			model.StatPPG: 24, model.StatUSG: 31, model.StatAPG: 5.5, model.StatRPG: 4,
		})

		Convey("When classified", func() {
			a := c.Classify(p)

			Convey("Then the larger normalised margin should win and the other becomes secondary", func() {
				// scoring: min((24-16)/30, (31-25)/28) = 0.214; playmaking: (5.5-5)/11 = 0.045
				So(a.Primary, ShouldEqual, archetype.ScoringGuard)
				So(a.Secondary, ShouldEqual, archetype.PlaymakingGuard)
				So(a.Margin, ShouldAlmostEqual, 6.0/28.0, 1e-9)
			})

			Convey("And repeated calls should return the same assignment", func() {
				for i := 0; i < 20; i++ {
					So(c.Classify(p), ShouldResemble, a)
				}
			})
		})
	})
}

func TestClassifier_MissingStats(t *testing.T) {
	Convey("Given a big without free-throw data", t, func() {
		c := newClassifier()
		p := profile("b2", model.Big, model.Stats{
			model.StatPPG: 9, model.StatRPG: 7, model.StatAPG: 1, model.StatBPG: 2.5, model.StatDunks: 50,
		})

		Convey("When classified", func() {
			a := c.Classify(p)

			Convey("Then every free-throw rule should be skipped and recorded", func() {
				So(len(a.Skipped), ShouldEqual, 4)
				for _, s := range a.Skipped {
					So(s.Missing, ShouldContain, model.StatFT)
				}
			})

			Convey("And the fallback should still resolve a big archetype", func() {
				So(a.Method, ShouldEqual, archetype.MethodFallback)
				So(a.Primary, ShouldEqual, archetype.AthleticBig)
				So(a.Secondary, ShouldEqual, archetype.SkilledBig)
				So(a.Margin, ShouldBeGreaterThan, 0)
				So(a.Margin, ShouldBeLessThanOrEqualTo, 1)
			})
		})
	})

	Convey("Given a guard that matches nothing and no centroids", t, func() {
		c, err := archetype.New(archetype.DefaultConfig())
		So(err, ShouldBeNil)
		p := profile("g3", model.Guard, model.Stats{model.StatPPG: 6, model.StatRPG: 2, model.StatAPG: 2})

		Convey("Then the first eligible archetype should still be assigned", func() {
			a := c.Classify(p)
			So(a.Primary, ShouldEqual, archetype.ScoringGuard)
			So(a.Secondary, ShouldEqual, archetype.PlaymakingGuard)
			So(a.Primary, ShouldNotEqual, archetype.Unclassified)
			So(a.Fallback(), ShouldBeTrue)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	Convey("Given a threshold table", t, func() {
		cfg := archetype.DefaultConfig()

		Convey("When an archetype has no rule", func() {
			cfg.Rules = cfg.Rules[:len(cfg.Rules)-2]
			_, err := archetype.New(cfg)
			Convey("Then construction should fail", func() {
				So(errors.Is(err, archetype.ErrMissingRules), ShouldBeTrue)
			})
		})

		Convey("When a rule reads an unknown stat", func() {
			cfg.Rules[0].Conditions[0].Stat = "per"
			_, err := archetype.New(cfg)
			Convey("Then construction should fail", func() {
				So(errors.Is(err, archetype.ErrInvalidRule), ShouldBeTrue)
				So(errors.Is(err, model.ErrUnknownStat), ShouldBeTrue)
			})
		})

		Convey("When an operator is unsupported", func() {
			cfg.Rules[0].Conditions[0].Op = ">"
			_, err := archetype.New(cfg)
			Convey("Then construction should fail", func() {
				So(errors.Is(err, archetype.ErrInvalidRule), ShouldBeTrue)
			})
		})
	})
}
