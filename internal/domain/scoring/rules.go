package scoring

import (
	"math"
	"slices"

	"github.com/okian/draftrange/internal/domain/model"
)

// Rule names, in evaluation order.
const (
	RuleDraftPosition       = "draft_position_penalty"
	RuleAdvancedMetric      = "advanced_metric"
	RuleDefensiveMetric     = "defensive_metric"
	RuleFreeThrowRate       = "free_throw_rate"
	RuleSteals              = "steals"
	RuleUsage               = "usage"
	RuleFreeThrowPct        = "free_throw_pct_by_position"
	RuleScoringVolume       = "level_adjusted_scoring"
	RuleRebounding          = "rebounding_by_position"
	RuleEfficiency          = "efficient_volume"
	RuleAthleteWithoutSkill = "athlete_without_skill"
	RuleAdvancedCeiling     = "advanced_metric_ceiling"
	RuleCombo               = "combo_bonus"
	RuleLevelPenalty        = "competition_level_penalty"
	RulePenaltyReduction    = "conditional_penalty_reduction"
	RuleStarSignals         = "star_signal_bonus"
	RuleUnicorn             = "unicorn_traits"
	RuleLowMinutes          = "low_minutes"
	RuleEarlyPickMinutes    = "early_pick_low_minutes"
	RuleAdvancedProxy       = "missing_advanced_proxy"
	RuleClassYear           = "class_year"
)

// Inputs that are not stats.
const (
	inputDraftPick = "draft_pick"
	inputLevel     = "level"
)

var ruleNames = []string{
	RuleDraftPosition, RuleAdvancedMetric, RuleDefensiveMetric, RuleFreeThrowRate,
	RuleSteals, RuleUsage, RuleFreeThrowPct, RuleScoringVolume, RuleRebounding,
	RuleEfficiency, RuleAthleteWithoutSkill, RuleAdvancedCeiling, RuleCombo,
	RuleLevelPenalty, RulePenaltyReduction, RuleStarSignals, RuleUnicorn,
	RuleLowMinutes, RuleEarlyPickMinutes, RuleAdvancedProxy, RuleClassYear,
}

// state is the running evaluation of one profile.
type state struct {
	p           *model.PlayerProfile
	fired       map[string]float64
	score       float64
	advanced    float64
	starSignals int
	traits      []string
}

func (s *state) stat(st model.Stat) float64 {
	v, _ := s.p.Stats.Get(st)
	return v
}

// rule is one entry of the ordered registry. applies is the structural
// precondition (position, earlier rules); a rule that does not apply is
// neither fired nor skipped. requires lists the inputs the effect reads.
// effect returns the delta and whether the rule fired.
type rule struct {
	name     string
	applies  func(*state) bool
	requires func(*state) []string
	effect   func(*state) (float64, bool)
}

func always(*state) bool { return true }

func needDraftPick(s *state) []string {
	if _, ok := s.p.DraftPick(); !ok {
		return []string{inputDraftPick}
	}
	return nil
}

func needStats(stats ...model.Stat) func(*state) []string {
	return func(s *state) []string {
		var out []string
		for _, m := range s.p.Stats.Missing(stats...) {
			out = append(out, string(m))
		}
		return out
	}
}

func (c Config) registry() []rule {
	return []rule{
		{
			name:     RuleDraftPosition,
			applies:  always,
			requires: needDraftPick,
			effect: func(s *state) (float64, bool) {
				pick, _ := s.p.DraftPick()
				over := pick - c.Draft.CutoffPick
				if over <= 0 {
					return 0, false
				}
				return -math.Min(c.Draft.MaxPenalty, float64(over)*c.Draft.PerPick), true
			},
		},
		{
			name:     RuleAdvancedMetric,
			applies:  always,
			requires: needStats(model.StatBPM),
			effect: func(s *state) (float64, bool) {
				mod := c.levelModifier(s.p.Level)
				pts := s.stat(model.StatBPM) * mod * c.Advanced.BPMPoints
				if obpm, ok := s.p.Stats.Get(model.StatOBPM); ok {
					pts += math.Max(obpm*mod, 0) * c.Advanced.OBPMPoints
				}
				s.advanced = pts
				return pts, pts != 0
			},
		},
		{
			name:     RuleDefensiveMetric,
			applies:  always,
			requires: needStats(model.StatDBPM),
			effect: func(s *state) (float64, bool) {
				d := c.Defensive.Eval(s.stat(model.StatDBPM))
				return d, d != 0
			},
		},
		{
			name:     RuleFreeThrowRate,
			applies:  always,
			requires: needStats(model.StatFTA),
			effect: func(s *state) (float64, bool) {
				d := c.FreeThrowRate.Eval(s.stat(model.StatFTA))
				return d, d != 0
			},
		},
		{
			name:    RuleSteals,
			applies: always,
			requires: func(s *state) []string {
				if s.p.Stats.Has(model.StatStlPer) || s.p.Stats.Has(model.StatSPG) {
					return nil
				}
				return []string{string(model.StatStlPer), string(model.StatSPG)}
			},
			effect: func(s *state) (float64, bool) {
				// The rate and the per-game count measure the same thing; only one scores.
				var d float64
				if rate := s.stat(model.StatStlPer); rate > 0 {
					d = c.Steals.Rate.Eval(rate)
				} else {
					d = c.Steals.PerGame.Eval(s.stat(model.StatSPG))
				}
				return d, d != 0
			},
		},
		{
			name:     RuleUsage,
			applies:  always,
			requires: needStats(model.StatUSG),
			effect: func(s *state) (float64, bool) {
				d := c.Usage.Eval(s.stat(model.StatUSG))
				return d, d != 0
			},
		},
		{
			name: RuleFreeThrowPct,
			applies: func(s *state) bool {
				_, ok := c.FreeThrowPct[s.p.Position]
				return ok
			},
			requires: needStats(model.StatFT),
			effect: func(s *state) (float64, bool) {
				d := c.FreeThrowPct[s.p.Position].Eval(s.stat(model.StatFT))
				return d, d != 0
			},
		},
		{
			name:     RuleScoringVolume,
			applies:  always,
			requires: needStats(model.StatPPG),
			effect: func(s *state) (float64, bool) {
				d := c.ScoringVolume.Eval(c.adjustedPPG(s.p))
				return d, d != 0
			},
		},
		{
			name: RuleRebounding,
			applies: func(s *state) bool {
				_, ok := c.Rebounding[s.p.Position]
				return ok
			},
			requires: needStats(model.StatRPG),
			effect: func(s *state) (float64, bool) {
				d := c.Rebounding[s.p.Position].Eval(s.stat(model.StatRPG))
				return d, d != 0
			},
		},
		{
			name:     RuleEfficiency,
			applies:  always,
			requires: needStats(model.StatFG, model.StatPPG),
			effect: func(s *state) (float64, bool) {
				if s.stat(model.StatFG) >= c.Efficiency.FGMin && c.adjustedPPG(s.p) >= c.Efficiency.PPGMin {
					return c.Efficiency.Bonus, c.Efficiency.Bonus != 0
				}
				return 0, false
			},
		},
		{
			name: RuleAthleteWithoutSkill,
			applies: func(s *state) bool {
				return slices.Contains(c.Athlete.Positions, s.p.Position)
			},
			requires: needStats(c.Athlete.PhysicalStat, c.Athlete.SkillStat),
			effect: func(s *state) (float64, bool) {
				if s.stat(c.Athlete.PhysicalStat) >= c.Athlete.PhysicalMin && s.stat(c.Athlete.SkillStat) < c.Athlete.SkillBelow {
					return c.Athlete.Penalty, true
				}
				return 0, false
			},
		},
		{
			name:     RuleAdvancedCeiling,
			applies:  always,
			requires: needStats(model.StatBPM),
			effect: func(s *state) (float64, bool) {
				if s.advanced > c.Advanced.Cap {
					return -(s.advanced - c.Advanced.Cap), true
				}
				return 0, false
			},
		},
		{
			name:     RuleCombo,
			applies:  always,
			requires: needStats(model.StatFT, model.StatBPM),
			effect: func(s *state) (float64, bool) {
				if s.stat(model.StatFT) >= c.Combo.FTMin && s.stat(model.StatBPM) >= c.Combo.BPMMin {
					return c.Combo.Bonus, true
				}
				return 0, false
			},
		},
		{
			name:    RuleLevelPenalty,
			applies: always,
			requires: func(s *state) []string {
				if s.p.Level == "" {
					return []string{inputLevel}
				}
				return nil
			},
			effect: func(s *state) (float64, bool) {
				d := c.LevelPenalty[s.p.Level]
				return d, d != 0
			},
		},
		{
			name: RulePenaltyReduction,
			applies: func(s *state) bool {
				_, fired := s.fired[RuleLevelPenalty]
				return fired && slices.Contains(c.Reduction.Positions, s.p.Position)
			},
			requires: needStats(model.StatBPM),
			effect: func(s *state) (float64, bool) {
				if s.stat(model.StatBPM) < c.Reduction.BPMMin {
					return 0, false
				}
				d := -s.fired[RuleLevelPenalty] * c.Reduction.Fraction
				return d, d != 0
			},
		},
		{
			name:     RuleStarSignals,
			applies:  always,
			requires: func(*state) []string { return nil },
			effect: func(s *state) (float64, bool) {
				d := c.Stars.Bonus.Eval(float64(s.starSignals))
				return d, d != 0
			},
		},
		{
			name:     RuleUnicorn,
			applies:  always,
			requires: func(*state) []string { return nil },
			effect: func(s *state) (float64, bool) {
				d := c.Unicorn.PointsPer * float64(len(s.traits))
				return d, d != 0
			},
		},
		{
			name:     RuleLowMinutes,
			applies:  always,
			requires: needStats(model.StatMPG),
			effect: func(s *state) (float64, bool) {
				if s.stat(model.StatMPG) < c.Minutes.LowBelow {
					return c.Minutes.LowPenalty, c.Minutes.LowPenalty != 0
				}
				return 0, false
			},
		},
		{
			name:    RuleEarlyPickMinutes,
			applies: always,
			requires: func(s *state) []string {
				return append(needDraftPick(s), needStats(model.StatMPG)(s)...)
			},
			effect: func(s *state) (float64, bool) {
				pick, _ := s.p.DraftPick()
				if s.stat(model.StatMPG) < c.Minutes.EarlyPickBelow && pick <= c.Minutes.EarlyPickMax {
					return c.Minutes.EarlyPickBonus, c.Minutes.EarlyPickBonus != 0
				}
				return 0, false
			},
		},
		{
			name: RuleAdvancedProxy,
			applies: func(s *state) bool {
				return !c.hasAdvanced(s.p)
			},
			requires: needStats(model.StatPPG),
			effect: func(s *state) (float64, bool) {
				if d := c.proxyPoints(s.p); d != 0 {
					return d, true
				}
				if c.Proxy.Cap > 0 && s.score > c.Proxy.Cap {
					return c.Proxy.Cap - s.score, true
				}
				return 0, false
			},
		},
		{
			name:     RuleClassYear,
			applies:  always,
			requires: needStats(model.StatClassYear),
			effect: func(s *state) (float64, bool) {
				var d float64
				switch int(s.stat(model.StatClassYear)) {
				case 1:
					d = c.ClassYear.Freshman
				case 2:
					d = c.ClassYear.Sophomore
				case 3:
					d = c.ClassYear.Junior
				case 4:
					d = c.ClassYear.Senior
				}
				return d, d != 0
			},
		},
	}
}

func (c Config) adjustedPPG(p *model.PlayerProfile) float64 {
	v, _ := p.Stats.Get(model.StatPPG)
	return v * c.levelModifier(p.Level)
}

// hasAdvanced reports whether p carries a non-zero value for any advanced stat.
func (c Config) hasAdvanced(p *model.PlayerProfile) bool {
	for _, st := range c.Proxy.AdvancedStats {
		if v, ok := p.Stats.Get(st); ok && v != 0 {
			return true
		}
	}
	return false
}

// proxyPoints scores counting stats in place of missing advanced metrics.
func (c Config) proxyPoints(p *model.PlayerProfile) float64 {
	var pts float64
	adj := c.adjustedPPG(p)
	if ft, ok := p.Stats.Get(model.StatFT); ok {
		for _, sp := range c.Proxy.Scorer {
			if adj >= sp.PPGMin && ft >= sp.FTMin {
				pts += sp.Points
				break
			}
		}
	}
	if spg, ok := p.Stats.Get(model.StatSPG); ok && spg >= c.Proxy.SPGMin {
		pts += c.Proxy.SPGPoints
	}
	return pts
}

// unicornTraits lists the configured traits p shows, in configuration order.
// A trait reading a missing stat is not shown.
func (c Config) unicornTraits(p *model.PlayerProfile) []string {
	var out []string
	for _, t := range c.Unicorn.Traits {
		if !slices.Contains(t.Positions, p.Position) {
			continue
		}
		if bounded(p.Stats, t.Above, 1) && bounded(p.Stats, t.Below, -1) {
			out = append(out, t.Name)
		}
	}
	return out
}

// bounded reports whether every stat in bounds lies strictly past its value
// in direction dir (1 above, -1 below).
func bounded(stats model.Stats, bounds map[model.Stat]float64, dir float64) bool {
	for st, b := range bounds {
		v, ok := stats.Get(st)
		if !ok || (v-b)*dir <= 0 {
			return false
		}
	}
	return true
}

func (c Config) levelModifier(l model.Level) float64 {
	if m, ok := c.LevelModifiers[l]; ok && l != "" {
		return m
	}
	return 1
}

// starSignals counts thresholds met, bounded by Stars.Max.
func (c Config) starSignals(p *model.PlayerProfile) (int, []string) {
	var tags []string
	for _, t := range c.Stars.Thresholds {
		if v, ok := p.Stats.Get(t.Stat); ok && v >= t.Min {
			tags = append(tags, string(t.Stat))
		}
	}
	if c.Stars.Max > 0 && len(tags) > c.Stars.Max {
		tags = tags[:c.Stars.Max]
	}
	return len(tags), tags
}
