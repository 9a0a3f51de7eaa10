package similarity

import (
	"fmt"
	"math"
	"slices"

	"github.com/okian/draftrange/internal/domain/archetype"
	"github.com/okian/draftrange/internal/domain/model"
)

// WeightVector maps statistics to signed weights. The magnitude sets the
// importance of a dimension and the sign the favourable direction.
type WeightVector map[model.Stat]float64

// Total returns the sum of absolute weights.
func (w WeightVector) Total() float64 {
	var t float64
	for _, s := range sortedStats(w) {
		t += abs(w[s])
	}
	return t
}

// Config carries the ranking parameters and per-archetype weight vectors.
type Config struct {
	// K is the number of comps requested per prospect.
	K int `koanf:"k" validate:"gte=1"`

	// MissingPenalty is the squared z-distance charged when exactly one side
	// of a pair has a stat.
	MissingPenalty float64 `koanf:"missing_penalty" validate:"gte=0"`

	// SimilarityScale converts distance to similarity: exp(-d/scale).
	SimilarityScale float64 `koanf:"similarity_scale" validate:"gt=0"`

	// Eligibility filters historical players out of the comp pool.
	Eligibility Eligibility `koanf:"eligibility"`

	// Penalties adds fixed distance for style clashes z-scores miss.
	Penalties Penalties `koanf:"penalties"`

	Weights map[archetype.Archetype]WeightVector `koanf:"weights"`
}

// Eligibility drops thin samples and named players from the pool. A
// candidate without gp or mpg is kept.
type Eligibility struct {
	MinGP   float64  `koanf:"min_gp" validate:"gte=0"`
	MinMPG  float64  `koanf:"min_mpg" validate:"gte=0"`
	Exclude []string `koanf:"exclude"`
}

func (el Eligibility) admits(p *model.PlayerProfile) bool {
	if slices.Contains(el.Exclude, p.ID) {
		return false
	}
	if gp, ok := p.Stats.Get(model.StatGP); ok && gp < el.MinGP {
		return false
	}
	if mpg, ok := p.Stats.Get(model.StatMPG); ok && mpg < el.MinMPG {
		return false
	}
	return true
}

// Bound tests one stat, or the sum of Stat and Plus, against Value.
type Bound struct {
	Stat  model.Stat   `koanf:"stat"`
	Plus  model.Stat   `koanf:"plus"`
	Op    archetype.Op `koanf:"op"`
	Value float64      `koanf:"value"`
}

// holds is false when any stat it reads is missing.
func (b Bound) holds(s model.Stats) bool {
	v, ok := s.Get(b.Stat)
	if !ok {
		return false
	}
	if b.Plus != "" {
		p, ok := s.Get(b.Plus)
		if !ok {
			return false
		}
		v += p
	}
	if b.Op == archetype.OpLTE {
		return v <= b.Value
	}
	return v >= b.Value
}

func (b Bound) validate() error {
	if !b.Stat.Known() {
		return fmt.Errorf("%w %q", model.ErrUnknownStat, b.Stat)
	}
	if b.Plus != "" && !b.Plus.Known() {
		return fmt.Errorf("%w %q", model.ErrUnknownStat, b.Plus)
	}
	if b.Op != archetype.OpGTE && b.Op != archetype.OpLTE {
		return fmt.Errorf("operator %q", b.Op)
	}
	return nil
}

// Mismatch fires when the prospect meets every Prospect bound and the
// candidate meets every Candidate bound.
type Mismatch struct {
	Name      string  `koanf:"name"`
	Prospect  []Bound `koanf:"prospect"`
	Candidate []Bound `koanf:"candidate"`
	Penalty   float64 `koanf:"penalty"`
}

func (m Mismatch) fires(prospect, cand model.Stats) bool {
	for _, b := range m.Prospect {
		if !b.holds(prospect) {
			return false
		}
	}
	for _, b := range m.Candidate {
		if !b.holds(cand) {
			return false
		}
	}
	return true
}

// Gap fires when the two players differ on Stat by more than Over.
type Gap struct {
	Name    string     `koanf:"name"`
	Stat    model.Stat `koanf:"stat"`
	Over    float64    `koanf:"over"`
	Penalty float64    `koanf:"penalty"`
}

func (g Gap) fires(prospect, cand model.Stats) bool {
	pv, ok := prospect.Get(g.Stat)
	if !ok {
		return false
	}
	cv, ok := cand.Get(g.Stat)
	if !ok {
		return false
	}
	return abs(pv-cv) > g.Over
}

// Penalties is the mismatch table. The total charged per pair is capped at
// Max.
type Penalties struct {
	Max        float64    `koanf:"max" validate:"gte=0"`
	Mismatches []Mismatch `koanf:"mismatches"`
	Gaps       []Gap      `koanf:"gaps"`
}

// charge returns the capped penalty and the names of the entries that fired.
func (p Penalties) charge(prospect, cand model.Stats) (float64, []string) {
	var (
		total float64
		names []string
	)
	for _, m := range p.Mismatches {
		if m.fires(prospect, cand) {
			total += m.Penalty
			names = append(names, m.Name)
		}
	}
	for _, g := range p.Gaps {
		if g.fires(prospect, cand) {
			total += g.Penalty
			names = append(names, g.Name)
		}
	}
	return math.Min(total, p.Max), names
}

// Validate checks every entry of the table.
func (p Penalties) Validate() error {
	if p.Max < 0 {
		return fmt.Errorf("%w: negative max", ErrInvalidPenalty)
	}
	for i, m := range p.Mismatches {
		if m.Name == "" || m.Penalty < 0 || len(m.Prospect)+len(m.Candidate) == 0 {
			return fmt.Errorf("%w: mismatch %d (%q)", ErrInvalidPenalty, i, m.Name)
		}
		for _, b := range append(slices.Clone(m.Prospect), m.Candidate...) {
			if err := b.validate(); err != nil {
				return fmt.Errorf("%w: %s: %w", ErrInvalidPenalty, m.Name, err)
			}
		}
	}
	for i, g := range p.Gaps {
		if g.Name == "" || g.Penalty < 0 || g.Over < 0 {
			return fmt.Errorf("%w: gap %d (%q)", ErrInvalidPenalty, i, g.Name)
		}
		if !g.Stat.Known() {
			return fmt.Errorf("%w: %s: %w %q", ErrInvalidPenalty, g.Name, model.ErrUnknownStat, g.Stat)
		}
	}
	return nil
}

func gteB(s model.Stat, v float64) Bound { return Bound{Stat: s, Op: archetype.OpGTE, Value: v} }
func lteB(s model.Stat, v float64) Bound { return Bound{Stat: s, Op: archetype.OpLTE, Value: v} }

// DefaultConfig returns ranking defaults. Weight vectors are never defaulted.
func DefaultConfig() Config {
	return Config{
		K:               10,
		MissingPenalty:  4,
		SimilarityScale: 1,
		Eligibility:     Eligibility{MinGP: 25, MinMPG: 20},
		Penalties:       DefaultPenalties(),
	}
}

// DefaultPenalties returns the shipped mismatch table in distance units.
func DefaultPenalties() Penalties {
	return Penalties{
		Max: 1.25,
		Mismatches: []Mismatch{
			{
				Name:      "inefficient_volume",
				Prospect:  []Bound{gteB(model.StatPPG, 18), lteB(model.StatFG, 42)},
				Candidate: []Bound{gteB(model.StatFG, 48)},
				Penalty:   0.4,
			},
			{
				Name:      "broken_free_throw",
				Prospect:  []Bound{lteB(model.StatFT, 55)},
				Candidate: []Bound{gteB(model.StatFT, 72)},
				Penalty:   0.4,
			},
			{
				Name:      "usage_gap",
				Prospect:  []Bound{{Stat: model.StatPPG, Plus: model.StatAPG, Op: archetype.OpLTE, Value: 12}},
				Candidate: []Bound{{Stat: model.StatPPG, Plus: model.StatAPG, Op: archetype.OpGTE, Value: 25}},
				Penalty:   0.4,
			},
			{
				Name:      "low_volume_efficiency",
				Prospect:  []Bound{gteB(model.StatFG, 50), lteB(model.StatPPG, 10)},
				Candidate: []Bound{gteB(model.StatFG, 50), gteB(model.StatPPG, 18)},
				Penalty:   0.25,
			},
			{
				Name:      "shooter_vs_non_shooter",
				Prospect:  []Bound{gteB(model.StatThreeP, 40)},
				Candidate: []Bound{lteB(model.StatThreeP, 28)},
				Penalty:   0.25,
			},
			{
				Name:      "non_shooter_vs_shooter",
				Prospect:  []Bound{lteB(model.StatThreeP, 25)},
				Candidate: []Bound{gteB(model.StatThreeP, 40)},
				Penalty:   0.25,
			},
		},
		Gaps: []Gap{
			{Name: "height_gap", Stat: model.StatHeight, Over: 4, Penalty: 0.5},
		},
	}
}

// Validate requires a usable weight vector for every archetype.
func (c Config) Validate() error {
	if c.K < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidK, c.K)
	}
	if c.SimilarityScale <= 0 {
		return ErrInvalidScale
	}
	if c.Eligibility.MinGP < 0 || c.Eligibility.MinMPG < 0 {
		return ErrInvalidEligibility
	}
	if err := c.Penalties.Validate(); err != nil {
		return err
	}
	for a := range c.Weights {
		if !a.Valid() {
			return fmt.Errorf("%w: %q", archetype.ErrUnknownArchetype, a)
		}
	}
	for _, a := range archetype.All() {
		w := c.Weights[a]
		if w.Total() == 0 {
			return fmt.Errorf("%w: %s", ErrNoWeights, a)
		}
		for s := range w {
			if !s.Known() {
				return fmt.Errorf("%s: %w %q", a, model.ErrUnknownStat, s)
			}
		}
	}
	return nil
}
