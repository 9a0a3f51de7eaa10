package projection_test

import (
	"errors"
	"fmt"
	"testing"

	archetype "github.com/okian/draftrange/internal/domain/archetype"
	model "github.com/okian/draftrange/internal/domain/model"
	projection "github.com/okian/draftrange/internal/domain/projection"
	scoring "github.com/okian/draftrange/internal/domain/scoring"
	similarity "github.com/okian/draftrange/internal/domain/similarity"
	. "github.com/smartystreets/goconvey/convey"
)

var assign = archetype.Assignment{Primary: archetype.ScoringGuard, Method: archetype.MethodRule}

var lean = scoring.TierScore{Score: 35, Band: model.TierStarter}

// ranking builds comps in descending similarity with the given tiers.
func ranking(sparse bool, tiers ...model.Tier) similarity.Ranking {
	r := similarity.Ranking{Sparse: sparse, PoolSize: len(tiers)}
	for i, t := range tiers {
		r.Comps = append(r.Comps, similarity.Comp{
			ID:         fmt.Sprintf("c%d", i),
			Tier:       t,
			Similarity: 0.9 - 0.05*float64(i),
			Distance:   0.1 + 0.05*float64(i),
		})
	}
	return r
}

func TestAggregator_Range(t *testing.T) {
	Convey("Given five comps with mixed outcomes", t, func() {
		agg := projection.New()
		r := ranking(false,
			model.TierStarter, model.TierAllStar, model.TierBust, model.TierAllStar, model.TierRolePlayer)

		Convey("When aggregated with n=5", func() {
			res, err := agg.Aggregate(assign, r, lean, 5)
			So(err, ShouldBeNil)

			Convey("Then ceiling and floor should be the extreme tiers tied to the most similar holder", func() {
				So(res.Ceiling.Tier, ShouldEqual, model.TierAllStar)
				So(res.Ceiling.CompID, ShouldEqual, "c1")
				So(res.Ceiling.SimilarityPct, ShouldEqual, 85)
				So(res.Floor.Tier, ShouldEqual, model.TierBust)
				So(res.Floor.CompID, ShouldEqual, "c2")
			})

			Convey("And most likely should be the median tier", func() {
				So(res.MostLikely, ShouldEqual, model.TierStarter)
				So(res.Ceiling.Tier, ShouldBeGreaterThanOrEqualTo, res.MostLikely)
				So(res.MostLikely, ShouldBeGreaterThanOrEqualTo, res.Floor.Tier)
			})

			Convey("And confidence should reflect the three-tier spread", func() {
				So(res.Confidence, ShouldAlmostEqual, 0.25, 1e-9)
			})

			Convey("And the model lean should be reported unchanged", func() {
				So(res.Model.Score, ShouldEqual, 35)
				So(res.Model.Band, ShouldEqual, model.TierStarter)
				So(res.Archetype, ShouldEqual, string(archetype.ScoringGuard))
				So(res.AssignmentMethod, ShouldEqual, "rule")
			})
		})

		Convey("When aggregated with an even n", func() {
			res, err := agg.Aggregate(assign, r, lean, 4)
			So(err, ShouldBeNil)

			Convey("Then the lower of the two middle tiers should be chosen", func() {
				// starter, all_star, bust, all_star -> bust, starter | all_star, all_star
				So(res.MostLikely, ShouldEqual, model.TierStarter)
				So(res.Comps, ShouldHaveLength, 4)
			})
		})
	})

	Convey("Given tied tiers", t, func() {
		agg := projection.New()
		r := ranking(false, model.TierStarter, model.TierStarter, model.TierStarter)

		Convey("Then both ends should point at the most similar comp", func() {
			res, err := agg.Aggregate(assign, r, lean, 3)
			So(err, ShouldBeNil)
			So(res.Ceiling.CompID, ShouldEqual, "c0")
			So(res.Floor.CompID, ShouldEqual, "c0")
			So(res.Confidence, ShouldEqual, 1)
		})
	})
}

func TestAggregator_Confidence(t *testing.T) {
	Convey("Given comp sets with increasing spread", t, func() {
		agg := projection.New()
		sets := [][]model.Tier{
			{model.TierStarter, model.TierStarter},
			{model.TierAllStar, model.TierStarter},
			{model.TierAllStar, model.TierRolePlayer},
			{model.TierSuperstar, model.TierRolePlayer},
			{model.TierSuperstar, model.TierBust},
		}

		Convey("Then confidence should strictly decrease and stay in [0,1]", func() {
			prev := 2.0
			for _, tiers := range sets {
				res, err := agg.Aggregate(assign, ranking(false, tiers...), lean, 2)
				So(err, ShouldBeNil)
				So(res.Confidence, ShouldBeLessThan, prev)
				So(res.Confidence, ShouldBeBetweenOrEqual, 0, 1)
				prev = res.Confidence
			}
		})
	})

	Convey("Given a sparse archetype", t, func() {
		agg := projection.New(projection.WithSparseDerate(0.5))
		tiers := []model.Tier{model.TierAllStar, model.TierStarter, model.TierStarter}

		Convey("Then confidence should be derated against the full case", func() {
			full, err := agg.Aggregate(assign, ranking(false, tiers...), lean, 5)
			So(err, ShouldBeNil)
			sparse, err := agg.Aggregate(assign, ranking(true, tiers...), lean, 5)
			So(err, ShouldBeNil)
			So(sparse.SparseArchetype, ShouldBeTrue)
			So(sparse.Confidence, ShouldBeLessThan, full.Confidence)
			So(sparse.Confidence, ShouldAlmostEqual, full.Confidence*0.5, 1e-12)
		})
	})
}

func TestAggregator_Edges(t *testing.T) {
	Convey("Given no comps", t, func() {
		agg := projection.New()
		res, err := agg.Aggregate(assign, similarity.Ranking{Sparse: true}, lean, 5)

		Convey("Then the range should collapse to the model band", func() {
			So(err, ShouldBeNil)
			So(res.NoComps, ShouldBeTrue)
			So(res.Ceiling.Tier, ShouldEqual, model.TierStarter)
			So(res.Floor.Tier, ShouldEqual, model.TierStarter)
			So(res.MostLikely, ShouldEqual, model.TierStarter)
			So(res.Ceiling.CompID, ShouldBeEmpty)
			So(res.Confidence, ShouldEqual, 0)
		})
	})

	Convey("Given a zero sparse derate", t, func() {
		cfg := projection.DefaultConfig()
		cfg.SparseDerate = 0

		Convey("Then validation should reject it", func() {
			So(errors.Is(cfg.Validate(), projection.ErrInvalidDerate), ShouldBeTrue)
		})

		Convey("Then the option should keep the default so sparse confidence stays positive", func() {
			agg := projection.New(projection.WithSparseDerate(0))
			tiers := []model.Tier{model.TierAllStar, model.TierStarter}
			full, _ := agg.Aggregate(assign, ranking(false, tiers...), lean, 5)
			sparse, err := agg.Aggregate(assign, ranking(true, tiers...), lean, 5)
			So(err, ShouldBeNil)
			So(sparse.Confidence, ShouldBeGreaterThan, 0)
			So(sparse.Confidence, ShouldAlmostEqual, full.Confidence*projection.DefaultConfig().SparseDerate, 1e-12)
		})
	})

	Convey("Given n below one", t, func() {
		_, err := projection.New().Aggregate(assign, ranking(false, model.TierBust), lean, 0)
		Convey("Then it should fail", func() {
			So(errors.Is(err, projection.ErrInvalidN), ShouldBeTrue)
		})
	})
}
