package archetype

import (
	"math"
	"sort"

	"github.com/okian/draftrange/internal/domain/model"
)

// Method records how an assignment was resolved.
type Method string

// Assignment methods.
const (
	MethodRule     Method = "rule"
	MethodFallback Method = "fallback"
)

// SkippedRule records a branch that could not be evaluated for lack of data.
type SkippedRule struct {
	Archetype Archetype    `json:"archetype"`
	Branch    string       `json:"branch"`
	Missing   []model.Stat `json:"missing"`
}

// Assignment is the outcome of classifying one profile.
type Assignment struct {
	Primary   Archetype     `json:"primary"`
	Secondary Archetype     `json:"secondary,omitempty"`
	Method    Method        `json:"method"`
	Branch    string        `json:"branch,omitempty"`
	Margin    float64       `json:"margin"`
	Skipped   []SkippedRule `json:"skipped,omitempty"`
}

// Fallback reports whether the assignment came from the centroid fallback.
func (a Assignment) Fallback() bool { return a.Method == MethodFallback }

// Option configures a Classifier.
type Option func(*Classifier)

// WithRanges sets the stat spreads used to normalise rule margins.
func WithRanges(r model.Ranges) Option {
	return func(c *Classifier) {
		if len(r) > 0 {
			c.ranges = r
		}
	}
}

// WithCentroids replaces the configured fallback centroids.
func WithCentroids(cs Centroids) Option {
	return func(c *Classifier) {
		if len(cs.Means) > 0 {
			c.centroids = cs
		}
	}
}

// Classifier evaluates the ordered threshold table. It is immutable and safe
// for concurrent use.
type Classifier struct {
	rules     []Rule
	ranges    model.Ranges
	centroids Centroids
}

// New builds a classifier from cfg.
func New(cfg Config, opts ...Option) (*Classifier, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	c := &Classifier{
		rules:     append([]Rule(nil), cfg.Rules...),
		ranges:    model.DefaultRanges(),
		centroids: Centroids{Means: cfg.Centroids, Scales: cfg.Scales},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Refit returns a copy of c that uses cs for the fallback.
func (c *Classifier) Refit(cs Centroids) *Classifier {
	cp := *c
	if len(cs.Means) > 0 {
		cp.centroids = cs
	}
	return &cp
}

// Rules returns the threshold table in evaluation order.
func (c *Classifier) Rules() []Rule {
	return append([]Rule(nil), c.rules...)
}

// Centroids returns the fallback centroids in use.
func (c *Classifier) Centroids() Centroids {
	return c.centroids
}

type candidate struct {
	archetype Archetype
	branch    string
	margin    float64
}

// Classify assigns p to a primary archetype and, when another archetype also
// matches or is next nearest, a secondary one. The primary is never
// Unclassified.
func (c *Classifier) Classify(p *model.PlayerProfile) Assignment {
	var (
		out     Assignment
		matched = make(map[Archetype]candidate)
	)
	for _, r := range c.rules {
		if !r.Accepts(p.Position) {
			continue
		}
		if missing := p.Stats.Missing(r.Stats()...); len(missing) > 0 {
			out.Skipped = append(out.Skipped, SkippedRule{Archetype: r.Archetype, Branch: r.Branch, Missing: missing})
			continue
		}
		m, ok := c.branchMargin(r, p.Stats)
		if !ok {
			continue
		}
		if prev, seen := matched[r.Archetype]; !seen || m > prev.margin {
			matched[r.Archetype] = candidate{archetype: r.Archetype, branch: r.Branch, margin: m}
		}
	}

	if len(matched) > 0 {
		ranked := make([]candidate, 0, len(matched))
		for _, cand := range matched {
			ranked = append(ranked, cand)
		}
		sort.Slice(ranked, func(i, j int) bool {
			if ranked[i].margin != ranked[j].margin {
				return ranked[i].margin > ranked[j].margin
			}
			return ranked[i].archetype.order() < ranked[j].archetype.order()
		})
		out.Primary = ranked[0].archetype
		out.Branch = ranked[0].branch
		out.Margin = ranked[0].margin
		out.Method = MethodRule
		if len(ranked) > 1 {
			out.Secondary = ranked[1].archetype
		}
		return out
	}

	out.Method = MethodFallback
	out.Primary, out.Secondary, out.Margin = c.nearest(p)
	return out
}

// branchMargin returns the minimum condition margin and whether every
// condition holds.
func (c *Classifier) branchMargin(r Rule, s model.Stats) (float64, bool) {
	minMargin := math.Inf(1)
	for _, cond := range r.Conditions {
		v, _ := s.Get(cond.Stat)
		m := cond.margin(v, c.ranges.Spread(cond.Stat))
		if m < 0 {
			return m, false
		}
		minMargin = math.Min(minMargin, m)
	}
	return minMargin, true
}

type distance struct {
	archetype Archetype
	d         float64
}

// nearest resolves the fallback over the archetypes that accept the profile's
// position. Centroid stats absent on the profile are ignored.
func (c *Classifier) nearest(p *model.PlayerProfile) (Archetype, Archetype, float64) {
	eligible := c.eligible(p.Position)
	dists := make([]distance, 0, len(eligible))
	for _, a := range eligible {
		dists = append(dists, distance{archetype: a, d: c.centroidDistance(a, p.Stats)})
	}
	sort.SliceStable(dists, func(i, j int) bool {
		if dists[i].d != dists[j].d {
			return dists[i].d < dists[j].d
		}
		return dists[i].archetype.order() < dists[j].archetype.order()
	})

	primary := dists[0].archetype
	if len(dists) == 1 {
		return primary, "", 0
	}
	secondary := dists[1].archetype
	d1, d2 := dists[0].d, dists[1].d
	if math.IsInf(d1, 1) {
		return primary, secondary, 0
	}
	if math.IsInf(d2, 1) {
		return primary, secondary, 1
	}
	if d1+d2 == 0 {
		return primary, secondary, 0
	}
	return primary, secondary, (d2 - d1) / (d1 + d2)
}

func (c *Classifier) eligible(pos model.Position) []Archetype {
	var out []Archetype
	for _, a := range taxonomy {
		for _, r := range c.rules {
			if r.Archetype == a && r.Accepts(pos) {
				out = append(out, a)
				break
			}
		}
	}
	if len(out) == 0 {
		return All()
	}
	return out
}

// centroidDistance is the mean squared z-distance to a's centroid, or +Inf
// when the centroid is unknown or shares no stat with the profile.
func (c *Classifier) centroidDistance(a Archetype, s model.Stats) float64 {
	mean, ok := c.centroids.Means[a]
	if !ok || len(mean) == 0 {
		return math.Inf(1)
	}
	var (
		sum float64
		n   int
	)
	for _, stat := range sortedStats(mean) {
		v, ok := s.Get(stat)
		if !ok {
			continue
		}
		z := (v - mean[stat]) / c.scale(stat)
		sum += z * z
		n++
	}
	if n == 0 {
		return math.Inf(1)
	}
	return sum / float64(n)
}

func (c *Classifier) scale(stat model.Stat) float64 {
	if v := c.centroids.Scales[stat]; v > 0 {
		return v
	}
	return c.ranges.Spread(stat)
}

func sortedStats[V any](m map[model.Stat]V) []model.Stat {
	out := make([]model.Stat, 0, len(m))
	for s := range m {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
