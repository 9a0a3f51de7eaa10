// Package projection fuses ranked comps and the model lean into a
// floor / most-likely / ceiling range with a confidence value.
package projection

import (
	"fmt"
	"math"
	"sort"

	"github.com/okian/draftrange/internal/domain/archetype"
	"github.com/okian/draftrange/internal/domain/model"
	"github.com/okian/draftrange/internal/domain/scoring"
	"github.com/okian/draftrange/internal/domain/similarity"
	"github.com/okian/draftrange/internal/domain/types"
	"gonum.org/v1/gonum/stat"
)

// Config carries the aggregation parameters.
type Config struct {
	// N is the number of top comps used for the range.
	N int `koanf:"n" validate:"gte=1"`

	// SparseDerate multiplies confidence when the archetype pool was sparse.
	SparseDerate float64 `koanf:"sparse_derate" validate:"gt=0,lte=1"`
}

// DefaultConfig returns aggregation defaults.
func DefaultConfig() Config {
	return Config{N: 5, SparseDerate: 0.75}
}

// Validate checks N and the derate bounds.
func (c Config) Validate() error {
	if c.N < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidN, c.N)
	}
	if c.SparseDerate <= 0 || c.SparseDerate > 1 {
		return fmt.Errorf("%w: got %v", ErrInvalidDerate, c.SparseDerate)
	}
	return nil
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithSparseDerate sets the sparse-archetype confidence multiplier.
func WithSparseDerate(f float64) Option {
	return func(a *Aggregator) {
		if f > 0 && f <= 1 {
			a.derate = f
		}
	}
}

// Aggregator is stateless apart from its configuration.
type Aggregator struct {
	derate float64
}

// New creates an Aggregator.
func New(opts ...Option) *Aggregator {
	a := &Aggregator{derate: DefaultConfig().SparseDerate}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Aggregate takes the top n comps of ranking and derives the range:
// ceiling is the best tier and floor the worst, each tied to the most similar
// comp holding it; most likely is the median tier, the lower middle value
// for even n. The model lean is reported as is. With no comps the range
// collapses to the model band with zero confidence.
func (a *Aggregator) Aggregate(
	assignment archetype.Assignment,
	ranking similarity.Ranking,
	ts scoring.TierScore,
	n int,
) (types.FloorCeilingResult, error) {
	if n < 1 {
		return types.FloorCeilingResult{}, fmt.Errorf("%w: got %d", ErrInvalidN, n)
	}

	res := types.FloorCeilingResult{
		Archetype:          string(assignment.Primary),
		SecondaryArchetype: string(assignment.Secondary),
		AssignmentMethod:   string(assignment.Method),
		Model: types.ModelLean{
			Score:       ts.Score,
			Band:        ts.Band,
			Adjustments: ts.Adjustments,
			Skipped:     ts.Skipped,
		},
		StarSignals:     ts.StarSignals,
		StarSignalTags:  ts.StarSignalTags,
		UnicornTraits:   ts.UnicornTraits,
		Tag:             ts.Tag,
		SparseArchetype: ranking.Sparse,
		PoolSize:        ranking.PoolSize,
		Comps:           []types.CompSummary{},
	}

	top := ranking.Comps
	if len(top) > n {
		top = top[:n]
	}
	if len(top) == 0 {
		res.Ceiling = types.Anchor{Tier: ts.Band}
		res.Floor = types.Anchor{Tier: ts.Band}
		res.MostLikely = ts.Band
		res.NoComps = true
		return res, nil
	}

	// top is ordered by similarity, so the first comp at a tier is the most
	// similar one holding it.
	ceil, floor := top[0], top[0]
	tiers := make([]float64, 0, len(top))
	for _, c := range top {
		if c.Tier > ceil.Tier {
			ceil = c
		}
		if c.Tier < floor.Tier {
			floor = c
		}
		tiers = append(tiers, float64(c.Tier))
		res.Comps = append(res.Comps, types.CompSummary{
			ID:         c.ID,
			Name:       c.Name,
			Tier:       c.Tier,
			Similarity: c.Similarity,
			Distance:   finite(c.Distance),
		})
	}
	sort.Float64s(tiers)

	res.Ceiling = anchor(ceil)
	res.Floor = anchor(floor)
	// The empirical quantile takes the lower middle tier for an even count.
	res.MostLikely = model.Tier(stat.Quantile(0.5, stat.Empirical, tiers, nil))
	res.Confidence = a.confidence(int(ceil.Tier-floor.Tier), ranking.Sparse)
	return res, nil
}

// confidence is 1 - spread/MaxTierSpread clamped to [0,1], derated when sparse.
func (a *Aggregator) confidence(spread int, sparse bool) float64 {
	c := 1 - float64(spread)/float64(model.MaxTierSpread)
	c = math.Max(0, math.Min(1, c))
	if sparse {
		c *= a.derate
	}
	return c
}

func anchor(c similarity.Comp) types.Anchor {
	return types.Anchor{
		Tier:          c.Tier,
		CompID:        c.ID,
		CompName:      c.Name,
		SimilarityPct: math.Round(c.Similarity*1000) / 10,
	}
}

// finite maps a non-finite distance to -1 so the result stays encodable.
func finite(d float64) float64 {
	if math.IsInf(d, 0) || math.IsNaN(d) {
		return -1
	}
	return d
}
