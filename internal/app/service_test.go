package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/draftrange/internal/adapters/repository"
	service "github.com/okian/draftrange/internal/app"
	"github.com/okian/draftrange/internal/config"
	"github.com/okian/draftrange/internal/domain/archetype"
	"github.com/okian/draftrange/internal/domain/model"
	"github.com/okian/draftrange/internal/domain/similarity"
	"github.com/okian/draftrange/pkg/logger"
)

func init() {
	// Initialize logging for tests
	err := logger.Init()
	if err != nil {
		panic(err)
	}
}

func testConfig() *config.Config {
	cfg := config.New()
	cfg.Workers = 4
	cfg.Similarity.Weights = map[archetype.Archetype]similarity.WeightVector{}
	for _, a := range archetype.All() {
		cfg.Similarity.Weights[a] = similarity.WeightVector{
			model.StatPPG: 1.5, model.StatUSG: 1, model.StatFTA: 1, model.StatAPG: 0.5,
			model.StatThreeP: 1, model.StatSPG: 1, model.StatRPG: 1, model.StatBPG: 1,
			model.StatTPG: -0.5,
		}
	}
	return cfg
}

func tier(t model.Tier) *model.Tier { return &t }

// testCorpus holds 12 scoring guards, 3 three-and-d wings and 2 athletic bigs.
func testCorpus() []model.PlayerProfile {
	var out []model.PlayerProfile
	for i := 0; i < 12; i++ {
		f := float64(i)
		out = append(out, model.PlayerProfile{
			ID:       fmt.Sprintf("guard-%02d", i),
			Name:     fmt.Sprintf("Guard %d", i),
			Position: model.Guard,
			Level:    model.HighMajor,
			Stats: model.Stats{
				model.StatPPG: 16 + f*0.5, model.StatUSG: 25 + f*0.3, model.StatFTA: 4 + f*0.2,
				model.StatAPG: 2 + f*0.1, model.StatRPG: 3,
			},
			Outcome: tier(model.Tier(i%5 + 1)),
		})
	}
	for i := 0; i < 3; i++ {
		f := float64(i)
		out = append(out, model.PlayerProfile{
			ID:       fmt.Sprintf("wing-%02d", i),
			Position: model.Wing,
			Stats: model.Stats{
				model.StatThreeP: 36 + f, model.StatSPG: 1.1 + f*0.1, model.StatPPG: 12 + f,
				model.StatRPG: 4, model.StatAPG: 1.5,
			},
			Outcome: tier(model.Tier(i + 2)),
		})
	}
	for i := 0; i < 2; i++ {
		out = append(out, model.PlayerProfile{
			ID:       fmt.Sprintf("big-%02d", i),
			Position: model.Big,
			Stats: model.Stats{
				model.StatRPG: 9 + float64(i), model.StatFT: 60, model.StatBPG: 1.5, model.StatDunks: 30,
				model.StatPPG: 10, model.StatAPG: 1,
			},
			Outcome: tier(model.TierRolePlayer),
		})
	}
	return out
}

func guardProspect() *model.PlayerProfile {
	return &model.PlayerProfile{
		ID:       "prospect-guard",
		Position: model.Guard,
		Level:    model.HighMajor,
		Stats: model.Stats{
			model.StatPPG: 18, model.StatUSG: 28, model.StatFTA: 5, model.StatAPG: 3, model.StatRPG: 3,
			model.StatBPM: 6, model.StatFT: 78,
		},
	}
}

func wingProspect() *model.PlayerProfile {
	return &model.PlayerProfile{
		ID:       "prospect-wing",
		Position: model.Wing,
		Stats: model.Stats{
			model.StatThreeP: 35, model.StatSPG: 1.2, model.StatPPG: 14, model.StatRPG: 4, model.StatAPG: 2,
		},
	}
}

func startedService(opts ...service.Option) *service.Service {
	svc := service.New(append([]service.Option{service.WithConfig(testConfig())}, opts...)...)
	So(svc.Start(context.Background()), ShouldBeNil)
	_, err := svc.PublishCorpus(context.Background(), testCorpus())
	So(err, ShouldBeNil)
	return svc
}

func TestService_Lifecycle(t *testing.T) {
	Convey("Given a new service", t, func() {
		ctx := context.Background()
		svc := service.New(service.WithConfig(testConfig()))
		defer svc.Stop()

		Convey("When projecting before start", func() {
			_, err := svc.Project(ctx, guardProspect())

			Convey("Then it should report the service is not started", func() {
				So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
			})
		})

		Convey("When started without a corpus", func() {
			So(svc.Start(ctx), ShouldBeNil)
			_, err := svc.Project(ctx, guardProspect())

			Convey("Then it should report the missing snapshot", func() {
				So(errors.Is(err, repository.ErrNoSnapshot), ShouldBeTrue)
			})

			Convey("And stats should show it started", func() {
				stats := svc.GetStats()
				So(stats["started"], ShouldEqual, true)
				So(stats["workerCount"], ShouldEqual, 4)
			})
		})
	})

	Convey("Given a service without weight vectors", t, func() {
		svc := service.New()

		Convey("When starting", func() {
			err := svc.Start(context.Background())

			Convey("Then it should fail with a configuration error", func() {
				So(errors.Is(err, config.ErrInvalidConfig), ShouldBeTrue)
			})
		})
	})
}

func TestService_Project(t *testing.T) {
	Convey("Given a started service with a published corpus", t, func() {
		ctx := context.Background()
		svc := startedService()
		defer svc.Stop()

		Convey("When projecting a scoring guard", func() {
			res, err := svc.Project(ctx, guardProspect())

			Convey("Then it should rank guards and order the range", func() {
				So(err, ShouldBeNil)
				So(res.ProspectID, ShouldEqual, "prospect-guard")
				So(res.Archetype, ShouldEqual, string(archetype.ScoringGuard))
				So(res.AssignmentMethod, ShouldEqual, string(archetype.MethodRule))
				So(res.SparseArchetype, ShouldBeFalse)
				So(res.PoolSize, ShouldEqual, 12)
				So(res.Comps, ShouldHaveLength, 5)
				So(res.Ceiling.Tier, ShouldBeGreaterThanOrEqualTo, res.MostLikely)
				So(res.MostLikely, ShouldBeGreaterThanOrEqualTo, res.Floor.Tier)
				So(res.Confidence, ShouldBeBetweenOrEqual, 0, 1)
				for i := 1; i < len(res.Comps); i++ {
					So(res.Comps[i-1].Similarity, ShouldBeGreaterThanOrEqualTo, res.Comps[i].Similarity)
				}
			})

			Convey("Then running it again should yield byte-identical output", func() {
				again, err := svc.Project(ctx, guardProspect())
				So(err, ShouldBeNil)
				a, _ := json.Marshal(res)
				b, _ := json.Marshal(again)
				So(string(b), ShouldEqual, string(a))
			})
		})

		Convey("When projecting a wing with only three same-archetype comps", func() {
			res, err := svc.Project(ctx, wingProspect())

			Convey("Then it should return exactly those comps flagged as sparse", func() {
				So(err, ShouldBeNil)
				So(res.Archetype, ShouldEqual, string(archetype.ThreeAndDWing))
				So(res.SparseArchetype, ShouldBeTrue)
				So(res.PoolSize, ShouldEqual, 3)
				So(res.Comps, ShouldHaveLength, 3)
				for _, c := range res.Comps {
					So(c.ID, ShouldStartWith, "wing-")
				}
			})
		})

		Convey("When projecting a corpus member", func() {
			member := testCorpus()[0]
			res, err := svc.Project(ctx, &member)

			Convey("Then it should be excluded from its own comps", func() {
				So(err, ShouldBeNil)
				for _, c := range res.Comps {
					So(c.ID, ShouldNotEqual, member.ID)
				}
			})
		})

		Convey("When projecting an invalid profile", func() {
			p := guardProspect()
			delete(p.Stats, model.StatPPG)
			_, err := svc.Project(ctx, p)

			Convey("Then it should return a profile error", func() {
				So(errors.Is(err, model.ErrInvalidProfile), ShouldBeTrue)
			})
		})

		Convey("When projecting a profile missing advanced metrics", func() {
			p := guardProspect()
			delete(p.Stats, model.StatBPM)
			res, err := svc.Project(ctx, p)

			Convey("Then the skipped rules should be recorded on the model lean", func() {
				So(err, ShouldBeNil)
				So(res.Model.Skipped, ShouldNotBeEmpty)
				So(res.Model.Adjustments, ShouldNotBeEmpty)
			})
		})

		Convey("When reading stats", func() {
			_, _ = svc.Project(ctx, guardProspect())
			stats := svc.GetStats()

			Convey("Then they should describe the corpus", func() {
				So(stats["corpusSize"], ShouldEqual, 17)
				So(stats["historical"], ShouldEqual, 17)
				So(stats["snapshotVersion"], ShouldNotBeEmpty)
				So(stats["projected"], ShouldBeGreaterThan, 0)
			})
		})
	})

	Convey("Given a service verifying determinism", t, func() {
		svc := startedService(service.WithDeterminismCheck(true))
		defer svc.Stop()

		Convey("When projecting", func() {
			_, err := svc.Project(context.Background(), guardProspect())

			Convey("Then the recomputed result should match", func() {
				So(err, ShouldBeNil)
			})
		})
	})
}

func TestService_ProjectBatch(t *testing.T) {
	Convey("Given a started service with a published corpus", t, func() {
		ctx := context.Background()
		svc := startedService()
		defer svc.Stop()

		Convey("When a batch contains one bad profile", func() {
			bad := *guardProspect()
			bad.ID = "prospect-bad"
			bad.Position = "X"
			batch := []model.PlayerProfile{*guardProspect(), bad, *wingProspect()}

			out, err := svc.ProjectBatch(ctx, batch)

			Convey("Then only that item should fail", func() {
				So(err, ShouldBeNil)
				So(out.RunID, ShouldNotBeEmpty)
				So(out.SnapshotVersion, ShouldNotBeEmpty)
				So(out.Failed, ShouldEqual, 1)
				So(out.Items, ShouldHaveLength, 3)
				So(out.Items[0].Result, ShouldNotBeNil)
				So(out.Items[0].Result.Archetype, ShouldEqual, string(archetype.ScoringGuard))
				So(out.Items[1].ProspectID, ShouldEqual, "prospect-bad")
				So(out.Items[1].Result, ShouldBeNil)
				So(out.Items[1].Error, ShouldNotBeEmpty)
				So(out.Items[2].Result.Archetype, ShouldEqual, string(archetype.ThreeAndDWing))
			})

			Convey("Then each item should match its single projection", func() {
				single, err := svc.Project(ctx, guardProspect())
				So(err, ShouldBeNil)
				a, _ := json.Marshal(single)
				b, _ := json.Marshal(out.Items[0].Result)
				So(string(b), ShouldEqual, string(a))
			})
		})

		Convey("When the batch is empty", func() {
			_, err := svc.ProjectBatch(ctx, nil)

			Convey("Then it should be rejected", func() {
				So(errors.Is(err, service.ErrEmptyBatch), ShouldBeTrue)
			})
		})
	})

	Convey("Given a service with a small batch limit", t, func() {
		cfg := testConfig()
		cfg.MaxBatch = 1
		svc := service.New(service.WithConfig(cfg))
		So(svc.Start(context.Background()), ShouldBeNil)
		defer svc.Stop()

		Convey("When the batch exceeds it", func() {
			_, err := svc.ProjectBatch(context.Background(), []model.PlayerProfile{*guardProspect(), *wingProspect()})

			Convey("Then it should be rejected", func() {
				So(errors.Is(err, service.ErrBatchTooLarge), ShouldBeTrue)
			})
		})
	})
}

func TestService_PopulationReport(t *testing.T) {
	Convey("Given a started service with a published corpus", t, func() {
		svc := startedService()
		defer svc.Stop()

		Convey("When building the population report", func() {
			rep, err := svc.PopulationReport(context.Background())

			Convey("Then it should count every archetype in taxonomy order", func() {
				So(err, ShouldBeNil)
				So(rep.Total, ShouldEqual, 17)
				So(rep.Buckets, ShouldHaveLength, len(archetype.All()))
				So(rep.Buckets[0].Archetype, ShouldEqual, string(archetype.ScoringGuard))
				So(rep.Buckets[0].Count, ShouldEqual, 12)
				So(rep.Buckets[0].Oversized, ShouldBeTrue)
				So(rep.Buckets[2].Count, ShouldEqual, 3)
				So(rep.Buckets[2].Undersized, ShouldBeTrue)
			})
		})
	})
}
