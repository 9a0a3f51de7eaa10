// Package similarity ranks historical comparables for a prospect within the
// prospect's primary archetype.
package similarity

import (
	"fmt"
	"math"
	"sort"

	"github.com/okian/draftrange/internal/domain/archetype"
	"github.com/okian/draftrange/internal/domain/model"
)

// Delta is the oriented, scaled difference of one stat between a comp and the
// prospect. Positive means the comp is better in the weight's direction.
type Delta struct {
	Stat  model.Stat `json:"stat"`
	Delta float64    `json:"delta"`
}

// Comp is a ranked historical comparable.
type Comp struct {
	ID         string     `json:"id"`
	Name       string     `json:"name,omitempty"`
	Tier       model.Tier `json:"tier"`
	Similarity float64    `json:"similarity"`
	Distance   float64    `json:"distance"`
	Deltas     []Delta    `json:"deltas,omitempty"`
	Mismatches []string   `json:"mismatches,omitempty"`
}

// Ranking is the ordered comp list for one prospect.
type Ranking struct {
	Comps []Comp `json:"comps"`
	// Sparse is set when fewer than the requested comps were eligible.
	Sparse    bool `json:"sparse"`
	PoolSize  int  `json:"pool_size"`
	Requested int  `json:"requested"`
}

// Option configures an Engine.
type Option func(*Engine)

// WithRanges sets the spreads used when a pool stat has no variance.
func WithRanges(r model.Ranges) Option {
	return func(e *Engine) {
		if len(r) > 0 {
			e.ranges = r
		}
	}
}

// WithMissingPenalty sets the cost of a stat present on only one side.
func WithMissingPenalty(p float64) Option {
	return func(e *Engine) {
		if p >= 0 {
			e.missingPenalty = p
		}
	}
}

// WithSimilarityScale sets the distance-to-similarity scale.
func WithSimilarityScale(s float64) Option {
	return func(e *Engine) {
		if s > 0 {
			e.scale = s
		}
	}
}

// WithEligibility sets the pool filter.
func WithEligibility(el Eligibility) Option {
	return func(e *Engine) {
		e.eligibility = el
	}
}

// WithPenalties replaces the mismatch table. A zero table disables it.
func WithPenalties(p Penalties) Option {
	return func(e *Engine) {
		e.penalties = p
	}
}

// Engine computes weighted z-space distances. It holds no corpus state and is
// safe for concurrent use.
type Engine struct {
	ranges         model.Ranges
	missingPenalty float64
	scale          float64
	eligibility    Eligibility
	penalties      Penalties
}

// New creates an Engine with defaults from DefaultConfig.
func New(opts ...Option) *Engine {
	def := DefaultConfig()
	e := &Engine{
		ranges:         model.DefaultRanges(),
		missingPenalty: def.MissingPenalty,
		scale:          def.SimilarityScale,
		eligibility:    def.Eligibility,
		penalties:      def.Penalties,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// RankComps returns up to k comps for prospect drawn from corpus entries that
// share the prospect's primary archetype, carry a known outcome, pass the
// eligibility filter and are not the prospect itself. Fewer than k eligible entries sets Sparse; the list is
// never padded from other archetypes.
func (e *Engine) RankComps(
	assignment archetype.Assignment,
	prospect *model.PlayerProfile,
	corpus []archetype.Member,
	weights WeightVector,
	k int,
) (Ranking, error) {
	if k < 1 {
		return Ranking{}, fmt.Errorf("%w: got %d", ErrInvalidK, k)
	}
	if weights.Total() == 0 {
		return Ranking{}, ErrNoWeights
	}
	if !assignment.Primary.Valid() {
		return Ranking{}, ErrUnclassified
	}

	pool := make([]*model.PlayerProfile, 0)
	for _, m := range corpus {
		if m.Assignment.Primary != assignment.Primary || !m.Profile.Historical() || m.Profile.ID == prospect.ID {
			continue
		}
		if !e.eligibility.admits(m.Profile) {
			continue
		}
		pool = append(pool, m.Profile)
	}

	dims := e.dimensions(weights, pool)
	comps := make([]Comp, 0, len(pool))
	for _, cand := range pool {
		d, deltas, clashes := e.distance(prospect, cand, dims)
		comps = append(comps, Comp{
			ID:         cand.ID,
			Name:       cand.Name,
			Tier:       *cand.Outcome,
			Similarity: e.similarity(d),
			Distance:   d,
			Deltas:     deltas,
			Mismatches: clashes,
		})
	}
	sort.Slice(comps, func(i, j int) bool {
		if comps[i].Similarity != comps[j].Similarity {
			return comps[i].Similarity > comps[j].Similarity
		}
		if comps[i].Distance != comps[j].Distance {
			return comps[i].Distance < comps[j].Distance
		}
		return comps[i].ID < comps[j].ID
	})

	r := Ranking{PoolSize: len(pool), Requested: k, Sparse: len(pool) < k}
	if len(comps) > k {
		comps = comps[:k]
	}
	r.Comps = comps
	return r, nil
}

// Similarity scores a against b using population statistics from pool.
// A profile compared with itself scores 1.
func (e *Engine) Similarity(a, b *model.PlayerProfile, pool []*model.PlayerProfile, weights WeightVector) float64 {
	d, _, _ := e.distance(a, b, e.dimensions(weights, pool))
	return e.similarity(d)
}

func (e *Engine) similarity(d float64) float64 {
	return math.Exp(-d / e.scale)
}

type dimension struct {
	stat   model.Stat
	weight float64
	scale  float64
}

// dimensions resolves the z-score scale of every weighted stat over pool in
// stat order. A stat with no variance in the pool falls back to its
// configured spread.
func (e *Engine) dimensions(weights WeightVector, pool []*model.PlayerProfile) []dimension {
	stats := sortedStats(weights)
	out := make([]dimension, 0, len(stats))
	for _, s := range stats {
		w := weights[s]
		if w == 0 {
			continue
		}
		_, scale, _ := model.PopulationMoments(s, pool)
		if scale <= 0 {
			scale = e.ranges.Spread(s)
		}
		out = append(out, dimension{stat: s, weight: w, scale: scale})
	}
	return out
}

// distance is sqrt(sum(|w|*c) / sum(|w|)) plus the capped mismatch
// penalty. c is z^2 when both sides have the stat, zero when neither does and
// the missing penalty otherwise. The weight sign only orients Deltas; the
// distance itself is symmetric in direction.
func (e *Engine) distance(prospect, cand *model.PlayerProfile, dims []dimension) (float64, []Delta, []string) {
	var (
		sum, wsum float64
		deltas    []Delta
	)
	for _, d := range dims {
		w := abs(d.weight)
		wsum += w
		pv, pok := prospect.Stats.Get(d.stat)
		cv, cok := cand.Stats.Get(d.stat)
		switch {
		case !pok && !cok:
		case pok != cok:
			sum += w * e.missingPenalty
		default:
			z := (cv - pv) / d.scale
			sum += w * z * z
			if z != 0 {
				deltas = append(deltas, Delta{Stat: d.stat, Delta: math.Copysign(1, d.weight) * z})
			}
		}
	}
	if wsum == 0 {
		return math.Inf(1), nil, nil
	}
	pen, clashes := e.penalties.charge(prospect.Stats, cand.Stats)
	return math.Sqrt(sum/wsum) + pen, deltas, clashes
}

func sortedStats(w WeightVector) []model.Stat {
	out := make([]model.Stat, 0, len(w))
	for s := range w {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func abs(v float64) float64 { return math.Abs(v) }
