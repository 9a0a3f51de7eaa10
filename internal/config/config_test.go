package config_test

import (
	"errors"
	"runtime"
	"testing"

	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/draftrange/internal/config"
	"github.com/okian/draftrange/internal/domain/archetype"
	"github.com/okian/draftrange/internal/domain/model"
	"github.com/okian/draftrange/internal/domain/similarity"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.LogLevel, convey.ShouldEqual, "info")
			convey.So(cfg.Workers, convey.ShouldEqual, runtime.NumCPU())
			convey.So(cfg.MaxBatch, convey.ShouldEqual, 500)
			convey.So(cfg.Similarity.K, convey.ShouldEqual, 10)
			convey.So(cfg.Projection.N, convey.ShouldEqual, 5)
			convey.So(cfg.Archetypes.Rules, convey.ShouldNotBeEmpty)
			convey.So(cfg.Scoring.Breakpoints, convey.ShouldHaveLength, 4)
		})

		convey.Convey("Then it should carry no weight vectors", func() {
			err := cfg.Validate()
			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			convey.So(errors.Is(err, similarity.ErrNoWeights), convey.ShouldBeTrue)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given a complete config", t, func() {
		cfg := config.New()
		cfg.Similarity.Weights = map[archetype.Archetype]similarity.WeightVector{}
		for _, a := range archetype.All() {
			cfg.Similarity.Weights[a] = similarity.WeightVector{"ppg": 1}
		}
		convey.So(cfg.Validate(), convey.ShouldBeNil)

		convey.Convey("When the range size exceeds the comp count", func() {
			cfg.Projection.N = cfg.Similarity.K + 1

			convey.Convey("Then validation should fail", func() {
				convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the log level is unknown", func() {
			cfg.LogLevel = "chatty"

			convey.Convey("Then validation should fail", func() {
				convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When an archetype loses its rules", func() {
			var kept []archetype.Rule
			for _, r := range cfg.Archetypes.Rules {
				if r.Archetype != archetype.SkilledBig {
					kept = append(kept, r)
				}
			}
			cfg.Archetypes.Rules = kept

			convey.Convey("Then validation should fail", func() {
				err := cfg.Validate()
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(errors.Is(err, archetype.ErrMissingRules), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the sparse derate is zero", func() {
			cfg.Projection.SparseDerate = 0

			convey.Convey("Then validation should fail", func() {
				convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When a mismatch gap reads an unknown stat", func() {
			cfg.Similarity.Penalties.Gaps[0].Stat = "wingspan"

			convey.Convey("Then validation should fail with the penalty error", func() {
				err := cfg.Validate()
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(errors.Is(err, similarity.ErrInvalidPenalty), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When a stat range is inverted", func() {
			cfg.StatRanges[model.StatPPG] = model.Range{Lo: 10, Hi: 5}

			convey.Convey("Then validation should fail", func() {
				convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})
	})
}
