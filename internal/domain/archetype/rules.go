package archetype

import (
	"fmt"
	"slices"

	"github.com/okian/draftrange/internal/domain/model"
)

// Op compares a statistic against a threshold.
type Op string

// Supported comparison operators.
const (
	OpGTE Op = ">="
	OpLTE Op = "<="
)

// Condition is a single threshold test on one statistic.
type Condition struct {
	Stat      model.Stat `koanf:"stat" yaml:"stat" json:"stat"`
	Op        Op         `koanf:"op" yaml:"op" json:"op"`
	Threshold float64    `koanf:"threshold" yaml:"threshold" json:"threshold"`
}

// margin returns the signed distance past the threshold in units of spread.
// A non-negative margin means the condition holds.
func (c Condition) margin(v, spread float64) float64 {
	if c.Op == OpLTE {
		return (c.Threshold - v) / spread
	}
	return (v - c.Threshold) / spread
}

// Rule is one named branch of an archetype. All conditions must hold.
type Rule struct {
	Archetype  Archetype        `koanf:"archetype" yaml:"archetype" json:"archetype"`
	Branch     string           `koanf:"branch" yaml:"branch" json:"branch"`
	Positions  []model.Position `koanf:"positions" yaml:"positions" json:"positions"`
	Conditions []Condition      `koanf:"conditions" yaml:"conditions" json:"conditions"`
}

// Accepts reports whether the rule applies to players at pos.
func (r Rule) Accepts(pos model.Position) bool {
	return slices.Contains(r.Positions, pos)
}

// Stats lists the statistics the rule reads, in condition order.
func (r Rule) Stats() []model.Stat {
	out := make([]model.Stat, 0, len(r.Conditions))
	for _, c := range r.Conditions {
		if !slices.Contains(out, c.Stat) {
			out = append(out, c.Stat)
		}
	}
	return out
}

// Config carries the threshold table and fallback centroids.
type Config struct {
	Rules []Rule `koanf:"rules" yaml:"rules"`

	// Centroids holds the mean of each archetype-defining stat per archetype.
	Centroids map[Archetype]map[model.Stat]float64 `koanf:"centroids" yaml:"centroids"`

	// Scales holds the population standard deviation used to z-score stats in
	// the fallback.
	Scales map[model.Stat]float64 `koanf:"scales" yaml:"scales"`

	// RefitCentroids recomputes centroids from every published corpus.
	RefitCentroids bool `koanf:"refit_centroids" yaml:"refit_centroids"`

	// MinBucket and MaxShare drive the population report flags.
	MinBucket int     `koanf:"min_bucket" yaml:"min_bucket" validate:"gte=0"`
	MaxShare  float64 `koanf:"max_share" yaml:"max_share" validate:"gte=0,lte=1"`
}

// Validate checks that every taxonomy member has at least one well-formed rule.
func (c Config) Validate() error {
	covered := make(map[Archetype]bool, len(taxonomy))
	for i, r := range c.Rules {
		if !r.Archetype.Valid() {
			return fmt.Errorf("%w: rule %d: %w %q", ErrInvalidRule, i, ErrUnknownArchetype, r.Archetype)
		}
		if r.Branch == "" {
			return fmt.Errorf("%w: rule %d (%s): empty branch name", ErrInvalidRule, i, r.Archetype)
		}
		if len(r.Positions) == 0 {
			return fmt.Errorf("%w: %s/%s: no positions", ErrInvalidRule, r.Archetype, r.Branch)
		}
		for _, p := range r.Positions {
			if !p.Valid() {
				return fmt.Errorf("%w: %s/%s: %w %q", ErrInvalidRule, r.Archetype, r.Branch, model.ErrInvalidPosition, p)
			}
		}
		if len(r.Conditions) == 0 {
			return fmt.Errorf("%w: %s/%s: no conditions", ErrInvalidRule, r.Archetype, r.Branch)
		}
		for _, cond := range r.Conditions {
			if !cond.Stat.Known() {
				return fmt.Errorf("%w: %s/%s: %w %q", ErrInvalidRule, r.Archetype, r.Branch, model.ErrUnknownStat, cond.Stat)
			}
			if cond.Op != OpGTE && cond.Op != OpLTE {
				return fmt.Errorf("%w: %s/%s: operator %q", ErrInvalidRule, r.Archetype, r.Branch, cond.Op)
			}
		}
		covered[r.Archetype] = true
	}
	for _, a := range taxonomy {
		if !covered[a] {
			return fmt.Errorf("%w: %s", ErrMissingRules, a)
		}
	}
	for a, cent := range c.Centroids {
		if !a.Valid() {
			return fmt.Errorf("%w: %w %q", ErrInvalidCentroid, ErrUnknownArchetype, a)
		}
		for s := range cent {
			if !s.Known() {
				return fmt.Errorf("%w: %s: %w %q", ErrInvalidCentroid, a, model.ErrUnknownStat, s)
			}
		}
	}
	for s, v := range c.Scales {
		if v < 0 {
			return fmt.Errorf("%w: negative scale for %s", ErrInvalidCentroid, s)
		}
	}
	return nil
}

// DefiningStats returns the union of stats read by a's rules in rule order.
func DefiningStats(rules []Rule, a Archetype) []model.Stat {
	var out []model.Stat
	for _, r := range rules {
		if r.Archetype != a {
			continue
		}
		for _, s := range r.Stats() {
			if !slices.Contains(out, s) {
				out = append(out, s)
			}
		}
	}
	return out
}

func gte(s model.Stat, v float64) Condition { return Condition{Stat: s, Op: OpGTE, Threshold: v} }
func lte(s model.Stat, v float64) Condition { return Condition{Stat: s, Op: OpLTE, Threshold: v} }

// DefaultConfig returns the shipped threshold table.
func DefaultConfig() Config {
	guard := []model.Position{model.Guard}
	wing := []model.Position{model.Wing}
	big := []model.Position{model.Big}
	return Config{
		Rules: []Rule{
			{ScoringGuard, "volume", guard, []Condition{gte(model.StatPPG, 16), gte(model.StatUSG, 25)}},
			{ScoringGuard, "downhill", guard, []Condition{gte(model.StatPPG, 16), gte(model.StatFTA, 4.5)}},
			{PlaymakingGuard, "floor_general", guard, []Condition{gte(model.StatAPG, 5)}},
			{PlaymakingGuard, "pass_first", guard, []Condition{gte(model.StatAPG, 4), lte(model.StatUSG, 24)}},
			{ThreeAndDWing, "three_and_d", wing, []Condition{gte(model.StatThreeP, 34), gte(model.StatSPG, 1.0), lte(model.StatPPG, 15)}},
			{ScoringWing, "volume", wing, []Condition{gte(model.StatPPG, 16), gte(model.StatUSG, 24)}},
			{ScoringWing, "downhill", wing, []Condition{gte(model.StatPPG, 16), gte(model.StatFTA, 4)}},
			{SkilledBig, "stretch", big, []Condition{gte(model.StatFT, 70), gte(model.StatThreeP, 30)}},
			{SkilledBig, "post_craft", big, []Condition{gte(model.StatFT, 72), gte(model.StatOBPM, 3)}},
			{AthleticBig, "rim_protector", big, []Condition{gte(model.StatBPG, 1.0), gte(model.StatDunks, 20), lte(model.StatFT, 68)}},
			{AthleticBig, "glass_cleaner", big, []Condition{gte(model.StatRPG, 8.5), lte(model.StatFT, 65)}},
		},
		MinBucket: 5,
		MaxShare:  0.35,
	}
}
