// Package service wires the projection pipeline: archetype classification,
// comp ranking, rule scoring and range aggregation against the current corpus
// snapshot.
package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	workerpool "github.com/okian/draftrange/internal/adapters/mq/worker"
	"github.com/okian/draftrange/internal/adapters/repository"
	"github.com/okian/draftrange/internal/config"
	"github.com/okian/draftrange/internal/domain/archetype"
	"github.com/okian/draftrange/internal/domain/model"
	"github.com/okian/draftrange/internal/domain/projection"
	"github.com/okian/draftrange/internal/domain/scoring"
	"github.com/okian/draftrange/internal/domain/similarity"
	"github.com/okian/draftrange/internal/domain/types"
	"github.com/okian/draftrange/pkg/logger"
	"github.com/okian/draftrange/pkg/metrics"
)

// Service implements the API dependencies for the projection pipeline.
type Service struct {
	mu sync.RWMutex

	cfg *config.Config

	// Core components, built by Start.
	store      repository.Store
	classifier *archetype.Classifier
	engine     *similarity.Engine
	predictor  *scoring.Predictor
	aggregator *projection.Aggregator
	pool       *workerpool.Pool

	// Overrides applied on top of cfg.
	workers int
	verify  *bool

	started bool

	projected atomic.Int64
	failed    atomic.Int64

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithConfig sets the pipeline configuration.
func WithConfig(cfg *config.Config) Option {
	return func(s *Service) {
		if cfg != nil {
			s.cfg = cfg
		}
	}
}

// WithStore sets the corpus store. By default Start creates an in-memory
// SnapshotStore.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithWorkerCount sets the batch projection concurrency.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workers = count
		}
	}
}

// WithDeterminismCheck forces the recompute-and-compare check on or off.
func WithDeterminismCheck(enabled bool) Option {
	return func(s *Service) {
		s.verify = &enabled
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a new Service. Components are built by Start.
func New(opts ...Option) *Service {
	s := &Service{
		cfg: config.New(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.workers == 0 {
		s.workers = s.cfg.Workers
	}
	if s.verify == nil {
		v := s.cfg.VerifyDeterminism
		s.verify = &v
	}
	return s
}

// Start validates the configuration and builds the pipeline components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	s.logger.Info(ctx, "starting projection service...")

	if err := s.cfg.Validate(); err != nil {
		return err
	}
	classifier, err := archetype.New(s.cfg.Archetypes, archetype.WithRanges(s.cfg.StatRanges))
	if err != nil {
		return fmt.Errorf("%w: %w", config.ErrInvalidConfig, err)
	}
	predictor, err := scoring.New(s.cfg.Scoring)
	if err != nil {
		return fmt.Errorf("%w: %w", config.ErrInvalidConfig, err)
	}

	s.classifier = classifier
	s.predictor = predictor
	s.engine = similarity.New(
		similarity.WithRanges(s.cfg.StatRanges),
		similarity.WithMissingPenalty(s.cfg.Similarity.MissingPenalty),
		similarity.WithSimilarityScale(s.cfg.Similarity.SimilarityScale),
		similarity.WithEligibility(s.cfg.Similarity.Eligibility),
		similarity.WithPenalties(s.cfg.Similarity.Penalties),
	)
	s.aggregator = projection.New(projection.WithSparseDerate(s.cfg.Projection.SparseDerate))
	s.pool = workerpool.NewPool(s.workers, workerpool.WithName("projection-pool"))
	if s.store == nil {
		s.store = repository.NewSnapshotStore(classifier,
			repository.WithCentroidRefit(s.cfg.Archetypes.RefitCentroids))
	}

	s.started = true
	s.logger.Info(ctx, "projection service started",
		logger.Int("workers", s.workers),
		logger.Int("k", s.cfg.Similarity.K),
		logger.Int("n", s.cfg.Projection.N),
		logger.Bool("verifyDeterminism", *s.verify),
	)
	return nil
}

// Stop marks the service as stopped. In-flight projections finish against
// the snapshot they started with.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	s.started = false
	s.logger.Info(context.Background(), "projection service stopped")
}

// LoadCorpus reads profiles from path and publishes them.
func (s *Service) LoadCorpus(ctx context.Context, path string) (*repository.Snapshot, error) {
	profiles, err := repository.LoadProfiles(path)
	if err != nil {
		metrics.RecordErrorByComponent("service", "corpus_load")
		return nil, err
	}
	return s.PublishCorpus(ctx, profiles)
}

// PublishCorpus installs profiles as the current corpus snapshot.
func (s *Service) PublishCorpus(ctx context.Context, profiles []model.PlayerProfile) (*repository.Snapshot, error) {
	store, err := s.currentStore()
	if err != nil {
		return nil, err
	}
	snap, err := store.Publish(ctx, profiles)
	if err != nil {
		return nil, err
	}
	s.logger.Info(ctx, "corpus published",
		logger.String("version", snap.Version()),
		logger.Int("entries", snap.Len()),
		logger.Int("historical", snap.Historical()),
	)
	if flagged := s.populationReport(snap).Flagged(); len(flagged) > 0 {
		for _, b := range flagged {
			s.logger.Warn(ctx, "archetype population out of bounds",
				logger.String("archetype", b.Archetype),
				logger.Int("count", b.Count),
				logger.Float64("share", b.Share),
			)
		}
	}
	return snap, nil
}

// Project computes the floor/ceiling projection for one prospect.
func (s *Service) Project(ctx context.Context, p *model.PlayerProfile) (types.FloorCeilingResult, error) {
	snap, err := s.snapshot(ctx)
	if err != nil {
		return types.FloorCeilingResult{}, err
	}
	return s.projectOn(ctx, snap, p)
}

// ProjectBatch projects every profile against one snapshot. A failing
// prospect is reported on its item and does not abort the batch.
func (s *Service) ProjectBatch(ctx context.Context, profiles []model.PlayerProfile) (types.BatchResult, error) {
	if len(profiles) == 0 {
		return types.BatchResult{}, ErrEmptyBatch
	}
	if limit := s.cfg.MaxBatch; len(profiles) > limit {
		return types.BatchResult{}, fmt.Errorf("%w: %d profiles, limit %d", ErrBatchTooLarge, len(profiles), limit)
	}
	snap, err := s.snapshot(ctx)
	if err != nil {
		return types.BatchResult{}, err
	}
	metrics.RecordBatchSize(len(profiles))

	runID := uuid.NewString()
	s.logger.Debug(ctx, "batch started",
		logger.String("run_id", runID),
		logger.Int("size", len(profiles)),
		logger.String("snapshot", snap.Version()),
	)

	results, err := workerpool.Map(ctx, s.pool, profiles, func(ctx context.Context, p model.PlayerProfile) (types.FloorCeilingResult, error) {
		return s.projectOn(ctx, snap, &p)
	})

	out := types.BatchResult{
		RunID:           runID,
		SnapshotVersion: snap.Version(),
		Items:           make([]types.BatchItem, len(results)),
	}
	for i, r := range results {
		item := types.BatchItem{Index: r.Index, ProspectID: profiles[i].ID}
		if r.Err != nil {
			item.Error = r.Err.Error()
			out.Failed++
		} else {
			res := r.Value
			item.Result = &res
		}
		out.Items[i] = item
	}
	s.logger.Info(ctx, "batch finished",
		logger.String("run_id", runID),
		logger.Int("size", len(profiles)),
		logger.Int("failed", out.Failed),
	)
	return out, err
}

// PopulationReport returns the archetype population diagnostic of the
// current corpus.
func (s *Service) PopulationReport(ctx context.Context) (types.PopulationReport, error) {
	snap, err := s.snapshot(ctx)
	if err != nil {
		return types.PopulationReport{}, err
	}
	return s.populationReport(snap), nil
}

func (s *Service) populationReport(snap *repository.Snapshot) types.PopulationReport {
	return archetype.PopulationReport(snap.Assignments(), s.cfg.Archetypes.MinBucket, s.cfg.Archetypes.MaxShare)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":           s.started,
		"workerCount":       s.workers,
		"k":                 s.cfg.Similarity.K,
		"n":                 s.cfg.Projection.N,
		"verifyDeterminism": *s.verify,
		"projected":         s.projected.Load(),
		"failed":            s.failed.Load(),
	}
	if s.started {
		if snap, err := s.store.Current(context.Background()); err == nil {
			stats["snapshotVersion"] = snap.Version()
			stats["corpusSize"] = snap.Len()
			stats["historical"] = snap.Historical()
			stats["publishedAt"] = snap.PublishedAt().Format(time.RFC3339)
		}
	}
	return stats
}

func (s *Service) currentStore() (repository.Store, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, ErrNotStarted
	}
	return s.store, nil
}

func (s *Service) snapshot(ctx context.Context) (*repository.Snapshot, error) {
	store, err := s.currentStore()
	if err != nil {
		return nil, err
	}
	return store.Current(ctx)
}

// projectOn runs the pipeline for p against snap and, when enabled, checks
// that a second run encodes to identical bytes.
func (s *Service) projectOn(ctx context.Context, snap *repository.Snapshot, p *model.PlayerProfile) (types.FloorCeilingResult, error) {
	start := time.Now()
	res, err := s.run(ctx, snap, p)
	if err == nil && *s.verify {
		err = s.verifyDeterminism(ctx, snap, p, res)
	}
	if err != nil {
		s.failed.Add(1)
		metrics.RecordProjectionError()
		return types.FloorCeilingResult{}, err
	}

	s.projected.Add(1)
	metrics.RecordProjection(res.AssignmentMethod, float64(time.Since(start).Microseconds())/1000)
	if res.SparseArchetype {
		metrics.RecordSparseRanking()
	}
	if res.NoComps {
		metrics.RecordNoComps()
	}
	for _, sk := range res.Model.Skipped {
		metrics.RecordSkippedRule(sk.Rule)
	}
	return res, nil
}

func (s *Service) run(ctx context.Context, snap *repository.Snapshot, p *model.PlayerProfile) (types.FloorCeilingResult, error) {
	if err := ctx.Err(); err != nil {
		return types.FloorCeilingResult{}, err
	}
	if err := p.Validate(); err != nil {
		return types.FloorCeilingResult{}, err
	}

	assignment := snap.Classifier().Classify(p)
	if assignment.Fallback() {
		s.logger.Debug(ctx, "fallback assignment",
			logger.String("prospect", p.ID),
			logger.String("archetype", string(assignment.Primary)),
			logger.Int("skippedBranches", len(assignment.Skipped)),
		)
	}

	ranking, err := s.engine.RankComps(assignment, p, snap.Entries(), s.cfg.Similarity.Weights[assignment.Primary], s.cfg.Similarity.K)
	if err != nil {
		return types.FloorCeilingResult{}, fmt.Errorf("rank comps for %s: %w", p.ID, err)
	}
	score := s.predictor.Score(p)

	res, err := s.aggregator.Aggregate(assignment, ranking, score, s.cfg.Projection.N)
	if err != nil {
		return types.FloorCeilingResult{}, fmt.Errorf("aggregate %s: %w", p.ID, err)
	}
	res.ProspectID = p.ID
	return res, nil
}

func (s *Service) verifyDeterminism(ctx context.Context, snap *repository.Snapshot, p *model.PlayerProfile, first types.FloorCeilingResult) error {
	second, err := s.run(ctx, snap, p)
	if err != nil {
		return err
	}
	a, err := json.Marshal(first)
	if err != nil {
		return fmt.Errorf("encode projection %s: %w", p.ID, err)
	}
	b, err := json.Marshal(second)
	if err != nil {
		return fmt.Errorf("encode projection %s: %w", p.ID, err)
	}
	if !bytes.Equal(a, b) {
		metrics.RecordDeterminismViolation()
		s.logger.Error(ctx, "determinism violation", logger.String("prospect", p.ID))
		return fmt.Errorf("%w: %s", ErrDeterminismViolation, p.ID)
	}
	return nil
}
