// Package scoring implements the rule-based tier predictor ("model lean").
//
// The predictor runs a fixed, ordered registry of pure rules over a single
// profile. Each rule declares the inputs it needs; a rule with a missing
// input is skipped and recorded, never failed. The running score is clamped
// to the configured bounds after every rule and finally mapped to a tier band.
package scoring

import (
	"math"

	"github.com/okian/draftrange/internal/domain/model"
	"github.com/okian/draftrange/internal/domain/types"
)

// TierScore is the predictor output for one profile.
type TierScore struct {
	Score          float64            `json:"score"`
	Band           model.Tier         `json:"band"`
	Adjustments    []types.Adjustment `json:"adjustments"`
	Skipped        []types.Skip       `json:"skipped"`
	StarSignals    int                `json:"star_signals"`
	StarSignalTags []string           `json:"star_signal_tags,omitempty"`
	UnicornTraits  []string           `json:"unicorn_traits,omitempty"`
	Tag            string             `json:"tag,omitempty"`
}

// Fired reports whether the named rule adjusted the score.
func (t TierScore) Fired(name string) bool {
	for _, a := range t.Adjustments {
		if a.Rule == name {
			return true
		}
	}
	return false
}

// Predictor scores profiles. It is immutable and safe for concurrent use.
type Predictor struct {
	cfg   Config
	rules []rule
}

// New validates cfg and builds the rule registry.
func New(cfg Config) (*Predictor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Predictor{cfg: cfg, rules: cfg.registry()}, nil
}

// RuleNames lists the registry in evaluation order.
func RuleNames() []string {
	return append([]string(nil), ruleNames...)
}

// Score evaluates every rule in order against p.
func (p *Predictor) Score(profile *model.PlayerProfile) TierScore {
	out := TierScore{
		Adjustments: []types.Adjustment{},
		Skipped:     []types.Skip{},
	}
	out.StarSignals, out.StarSignalTags = p.cfg.starSignals(profile)
	out.UnicornTraits = p.cfg.unicornTraits(profile)
	st := &state{
		p:           profile,
		fired:       make(map[string]float64, len(p.rules)),
		starSignals: out.StarSignals,
		traits:      out.UnicornTraits,
	}

	score := p.clamp(p.cfg.BaseScore)
	for _, r := range p.rules {
		if !r.applies(st) {
			continue
		}
		if missing := r.requires(st); len(missing) > 0 {
			out.Skipped = append(out.Skipped, types.Skip{Rule: r.name, Missing: missing})
			continue
		}
		st.score = score
		delta, fired := r.effect(st)
		if !fired {
			continue
		}
		st.fired[r.name] = delta
		next := p.clamp(score + delta)
		out.Adjustments = append(out.Adjustments, types.Adjustment{Rule: r.name, Delta: next - score})
		score = next
	}

	out.Score = score
	out.Band = p.band(score)
	out.Tag = p.tag(st.fired)
	return out
}

func (p *Predictor) clamp(v float64) float64 {
	return math.Max(p.cfg.MinScore, math.Min(p.cfg.MaxScore, v))
}

// band maps a score to the first breakpoint it reaches; below all is bust.
func (p *Predictor) band(score float64) model.Tier {
	for _, b := range p.cfg.Breakpoints {
		if score >= b.Min {
			return b.Tier
		}
	}
	return model.TierBust
}

func (p *Predictor) tag(fired map[string]float64) string {
	for _, t := range p.cfg.Tags {
		all := true
		for _, r := range t.Rules {
			if _, ok := fired[r]; !ok {
				all = false
				break
			}
		}
		if all {
			return t.Name
		}
	}
	return ""
}
