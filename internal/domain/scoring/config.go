package scoring

import (
	"fmt"

	"github.com/okian/draftrange/internal/domain/model"
)

// Step awards Points when a value is at least Min.
type Step struct {
	Min    float64 `koanf:"min" yaml:"min"`
	Points float64 `koanf:"points" yaml:"points"`
}

// StepTable evaluates ordered steps, highest Min first. Below applies when no
// step matches.
type StepTable struct {
	Steps []Step  `koanf:"steps" yaml:"steps"`
	Below float64 `koanf:"below" yaml:"below"`
}

// Eval returns the points for v.
func (t StepTable) Eval(v float64) float64 {
	for _, s := range t.Steps {
		if v >= s.Min {
			return s.Points
		}
	}
	return t.Below
}

// Breakpoint maps scores of at least Min to Tier.
type Breakpoint struct {
	Min  float64    `koanf:"min" yaml:"min"`
	Tier model.Tier `koanf:"tier" yaml:"tier"`
}

// DraftPenalty penalises picks after CutoffPick.
type DraftPenalty struct {
	CutoffPick int     `koanf:"cutoff_pick" yaml:"cutoff_pick" validate:"gte=0"`
	PerPick    float64 `koanf:"per_pick" yaml:"per_pick" validate:"gte=0"`
	MaxPenalty float64 `koanf:"max_penalty" yaml:"max_penalty" validate:"gte=0"`
}

// AdvancedMetric converts level-adjusted BPM and OBPM to points. Contributions
// above Cap are taken back by the ceiling rule.
type AdvancedMetric struct {
	BPMPoints  float64 `koanf:"bpm_points" yaml:"bpm_points"`
	OBPMPoints float64 `koanf:"obpm_points" yaml:"obpm_points"`
	Cap        float64 `koanf:"cap" yaml:"cap" validate:"gte=0"`
}

// AthleteWithoutSkill penalises a high physical indicator paired with a low
// skill indicator for the listed positions.
type AthleteWithoutSkill struct {
	Positions    []model.Position `koanf:"positions" yaml:"positions"`
	PhysicalStat model.Stat       `koanf:"physical_stat" yaml:"physical_stat"`
	PhysicalMin  float64          `koanf:"physical_min" yaml:"physical_min"`
	SkillStat    model.Stat       `koanf:"skill_stat" yaml:"skill_stat"`
	SkillBelow   float64          `koanf:"skill_below" yaml:"skill_below"`
	Penalty      float64          `koanf:"penalty" yaml:"penalty"`
}

// Combo awards Bonus when free-throw percentage and BPM both clear their minimums.
type Combo struct {
	FTMin  float64 `koanf:"ft_min" yaml:"ft_min"`
	BPMMin float64 `koanf:"bpm_min" yaml:"bpm_min"`
	Bonus  float64 `koanf:"bonus" yaml:"bonus"`
}

// PenaltyReduction cancels Fraction of the competition-level penalty for the
// listed positions when BPM is at least BPMMin.
type PenaltyReduction struct {
	Positions []model.Position `koanf:"positions" yaml:"positions"`
	BPMMin    float64          `koanf:"bpm_min" yaml:"bpm_min"`
	Fraction  float64          `koanf:"fraction" yaml:"fraction" validate:"gte=0,lte=1"`
}

// Threshold is one star signal: Stat at least Min.
type Threshold struct {
	Stat model.Stat `koanf:"stat" yaml:"stat"`
	Min  float64    `koanf:"min" yaml:"min"`
}

// StarSignals configures the star-signal count and its bonus.
type StarSignals struct {
	Thresholds []Threshold `koanf:"thresholds" yaml:"thresholds"`
	Max        int         `koanf:"max" yaml:"max" validate:"gte=0"`
	Bonus      StepTable   `koanf:"bonus" yaml:"bonus"`
}

// ClassYear adjusts the score by year in school.
type ClassYear struct {
	Freshman  float64 `koanf:"freshman" yaml:"freshman"`
	Sophomore float64 `koanf:"sophomore" yaml:"sophomore"`
	Junior    float64 `koanf:"junior" yaml:"junior"`
	Senior    float64 `koanf:"senior" yaml:"senior"`
}

// Steals scores the steal rate when present and steals per game otherwise.
type Steals struct {
	Rate    StepTable `koanf:"rate" yaml:"rate"`
	PerGame StepTable `koanf:"per_game" yaml:"per_game"`
}

// Efficiency rewards shooting at least FGMin on at least PPGMin
// level-adjusted points.
type Efficiency struct {
	FGMin  float64 `koanf:"fg_min" yaml:"fg_min"`
	PPGMin float64 `koanf:"ppg_min" yaml:"ppg_min"`
	Bonus  float64 `koanf:"bonus" yaml:"bonus"`
}

// Trait is an unusual combination for the listed positions: every Above stat
// must exceed its value and every Below stat must fall under it.
type Trait struct {
	Name      string                 `koanf:"name" yaml:"name"`
	Positions []model.Position       `koanf:"positions" yaml:"positions"`
	Above     map[model.Stat]float64 `koanf:"above" yaml:"above"`
	Below     map[model.Stat]float64 `koanf:"below" yaml:"below"`
}

// Unicorn awards PointsPer for every detected trait.
type Unicorn struct {
	PointsPer float64 `koanf:"points_per" yaml:"points_per"`
	Traits    []Trait `koanf:"traits" yaml:"traits"`
}

// Minutes penalises low playing time and rewards an early pick who played
// little.
type Minutes struct {
	LowBelow       float64 `koanf:"low_below" yaml:"low_below"`
	LowPenalty     float64 `koanf:"low_penalty" yaml:"low_penalty"`
	EarlyPickBelow float64 `koanf:"early_pick_below" yaml:"early_pick_below"`
	EarlyPickMax   int     `koanf:"early_pick_max" yaml:"early_pick_max" validate:"gte=0"`
	EarlyPickBonus float64 `koanf:"early_pick_bonus" yaml:"early_pick_bonus"`
}

// ScorerProxy awards Points when level-adjusted scoring and free-throw
// percentage both clear their minimums.
type ScorerProxy struct {
	PPGMin float64 `koanf:"ppg_min" yaml:"ppg_min"`
	FTMin  float64 `koanf:"ft_min" yaml:"ft_min"`
	Points float64 `koanf:"points" yaml:"points"`
}

// Proxy stands in for advanced metrics when a profile has none of
// AdvancedStats. Without any proxy points the score is capped at Cap.
type Proxy struct {
	AdvancedStats []model.Stat  `koanf:"advanced_stats" yaml:"advanced_stats"`
	Scorer        []ScorerProxy `koanf:"scorer" yaml:"scorer"`
	SPGMin        float64       `koanf:"spg_min" yaml:"spg_min"`
	SPGPoints     float64       `koanf:"spg_points" yaml:"spg_points"`
	Cap           float64       `koanf:"cap" yaml:"cap" validate:"gte=0"`
}

// Tag is set when every listed rule fired.
type Tag struct {
	Name  string   `koanf:"name" yaml:"name"`
	Rules []string `koanf:"rules" yaml:"rules"`
}

// Config carries every coefficient of the rule sequence.
type Config struct {
	BaseScore float64 `koanf:"base_score" yaml:"base_score"`
	MinScore  float64 `koanf:"min_score" yaml:"min_score"`
	MaxScore  float64 `koanf:"max_score" yaml:"max_score"`

	Breakpoints    []Breakpoint                 `koanf:"breakpoints" yaml:"breakpoints"`
	LevelModifiers map[model.Level]float64      `koanf:"level_modifiers" yaml:"level_modifiers"`
	Draft          DraftPenalty                 `koanf:"draft" yaml:"draft"`
	Advanced       AdvancedMetric               `koanf:"advanced" yaml:"advanced"`
	Defensive      StepTable                    `koanf:"defensive" yaml:"defensive"`
	FreeThrowRate  StepTable                    `koanf:"free_throw_rate" yaml:"free_throw_rate"`
	Steals         Steals                       `koanf:"steals" yaml:"steals"`
	Usage          StepTable                    `koanf:"usage" yaml:"usage"`
	FreeThrowPct   map[model.Position]StepTable `koanf:"free_throw_pct" yaml:"free_throw_pct"`
	ScoringVolume  StepTable                    `koanf:"scoring_volume" yaml:"scoring_volume"`
	Rebounding     map[model.Position]StepTable `koanf:"rebounding" yaml:"rebounding"`
	Efficiency     Efficiency                   `koanf:"efficiency" yaml:"efficiency"`
	Athlete        AthleteWithoutSkill          `koanf:"athlete_without_skill" yaml:"athlete_without_skill"`
	Combo          Combo                        `koanf:"combo" yaml:"combo"`
	LevelPenalty   map[model.Level]float64      `koanf:"level_penalty" yaml:"level_penalty"`
	Reduction      PenaltyReduction             `koanf:"penalty_reduction" yaml:"penalty_reduction"`
	Stars          StarSignals                  `koanf:"star_signals" yaml:"star_signals"`
	Unicorn        Unicorn                      `koanf:"unicorn" yaml:"unicorn"`
	Minutes        Minutes                      `koanf:"minutes" yaml:"minutes"`
	Proxy          Proxy                        `koanf:"proxy" yaml:"proxy"`
	ClassYear      ClassYear                    `koanf:"class_year" yaml:"class_year"`
	Tags           []Tag                        `koanf:"tags" yaml:"tags"`
}

// DefaultConfig returns the shipped coefficients.
func DefaultConfig() Config {
	perimeterFT := StepTable{Steps: []Step{{80, 4}, {70, 0}, {60, -6}}, Below: -12}
	frontcourtBoards := StepTable{Steps: []Step{{9, 4}, {5, 1}}}
	return Config{
		BaseScore: 10,
		MinScore:  0,
		MaxScore:  100,
		Breakpoints: []Breakpoint{
			{68, model.TierSuperstar},
			{48, model.TierAllStar},
			{30, model.TierStarter},
			{15, model.TierRolePlayer},
		},
		LevelModifiers: map[model.Level]float64{
			model.HighMajor: 1.0,
			model.MidMajor:  0.85,
			model.LowMajor:  0.70,
		},
		Draft:     DraftPenalty{CutoffPick: 20, PerPick: 0.6, MaxPenalty: 25},
		Advanced:  AdvancedMetric{BPMPoints: 1.6, OBPMPoints: 2.0, Cap: 30},
		Defensive: StepTable{Steps: []Step{{4, 8}, {2.5, 4}}},
		FreeThrowRate: StepTable{Steps: []Step{
			{7, 16}, {5.5, 10}, {4, 5}, {2.5, 2},
		}},
		Steals: Steals{
			Rate:    StepTable{Steps: []Step{{2.5, 8}, {1.8, 4}}},
			PerGame: StepTable{Steps: []Step{{1.8, 8}, {1.3, 4}}},
		},
		Usage: StepTable{Steps: []Step{{30, 8}, {27, 5}, {24, 2}}},
		FreeThrowPct: map[model.Position]StepTable{
			model.Guard: perimeterFT,
			model.Wing:  perimeterFT,
			model.Big:   {Steps: []Step{{70, 0}, {60, -2.4}}, Below: -4.8},
		},
		ScoringVolume: StepTable{Steps: []Step{{20, 8}, {16, 4}, {12, 1}}},
		Rebounding: map[model.Position]StepTable{
			model.Guard: {Steps: []Step{{6, 4}, {5, 1}}},
			model.Wing:  frontcourtBoards,
			model.Big:   frontcourtBoards,
		},
		Efficiency: Efficiency{FGMin: 52, PPGMin: 15, Bonus: 4},
		Athlete: AthleteWithoutSkill{
			Positions:    []model.Position{model.Guard, model.Wing},
			PhysicalStat: model.StatDunks,
			PhysicalMin:  30,
			SkillStat:    model.StatFT,
			SkillBelow:   68,
			Penalty:      -8,
		},
		Combo: Combo{FTMin: 80, BPMMin: 8, Bonus: 8},
		LevelPenalty: map[model.Level]float64{
			model.MidMajor: -5,
			model.LowMajor: -10,
		},
		Reduction: PenaltyReduction{
			Positions: []model.Position{model.Guard, model.Wing, model.Big},
			BPMMin:    10,
			Fraction:  0.5,
		},
		Stars: StarSignals{
			Thresholds: []Threshold{
				{model.StatBPM, 9.6},
				{model.StatOBPM, 7.1},
				{model.StatFTA, 4.6},
				{model.StatSPG, 1.4},
				{model.StatStlPer, 2.5},
				{model.StatUSG, 25.9},
				{model.StatFT, 79.9},
			},
			Max:   7,
			Bonus: StepTable{Steps: []Step{{5, 12}, {3, 6}, {2, 2}}},
		},
		Unicorn: Unicorn{
			PointsPer: 3,
			Traits: []Trait{
				{Name: "rebounding_guard", Positions: []model.Position{model.Guard}, Above: map[model.Stat]float64{model.StatRPG: 7}},
				{Name: "passing_big", Positions: []model.Position{model.Big}, Above: map[model.Stat]float64{model.StatAPG: 3.5}},
				{Name: "stretch_big", Positions: []model.Position{model.Big}, Above: map[model.Stat]float64{model.StatThreeP: 33, model.StatPPG: 10}},
				{Name: "shot_blocking_wing", Positions: []model.Position{model.Guard, model.Wing}, Above: map[model.Stat]float64{model.StatBPG: 1.5}},
				{Name: "tall_playmaker", Positions: []model.Position{model.Guard}, Above: map[model.Stat]float64{model.StatHeight: 77, model.StatAPG: 4}},
				{
					Name: "pickpocket", Positions: []model.Position{model.Guard},
					Above: map[model.Stat]float64{model.StatSPG: 2}, Below: map[model.Stat]float64{model.StatHeight: 75},
				},
				{Name: "defensive_unicorn", Positions: []model.Position{model.Wing, model.Big}, Above: map[model.Stat]float64{model.StatSPG: 1.8}},
			},
		},
		Minutes: Minutes{LowBelow: 22, LowPenalty: -5, EarlyPickBelow: 25, EarlyPickMax: 14, EarlyPickBonus: 8},
		Proxy: Proxy{
			AdvancedStats: []model.Stat{model.StatBPM, model.StatOBPM, model.StatFTA, model.StatStlPer, model.StatUSG},
			Scorer:        []ScorerProxy{{PPGMin: 20, FTMin: 78, Points: 12}, {PPGMin: 16, FTMin: 75, Points: 6}},
			SPGMin:        1.8,
			SPGPoints:     4,
			Cap:           40,
		},
		ClassYear: ClassYear{Freshman: 5, Sophomore: 2, Senior: -4},
		Tags: []Tag{
			{Name: "hidden_gem", Rules: []string{RuleCombo, RuleDraftPosition}},
			{Name: "raw_athlete", Rules: []string{RuleAthleteWithoutSkill}},
		},
	}
}

// Validate checks bounds, breakpoints and tag references.
func (c Config) Validate() error {
	if c.MinScore >= c.MaxScore {
		return fmt.Errorf("%w: [%v, %v]", ErrInvalidBounds, c.MinScore, c.MaxScore)
	}
	for i, b := range c.Breakpoints {
		if !b.Tier.Valid() {
			return fmt.Errorf("%w: breakpoint %d: %w", ErrInvalidBreakpoints, i, model.ErrInvalidTier)
		}
		if i > 0 {
			prev := c.Breakpoints[i-1]
			if b.Min >= prev.Min || b.Tier >= prev.Tier {
				return fmt.Errorf("%w: breakpoint %d", ErrInvalidBreakpoints, i)
			}
		}
	}
	for _, st := range c.Stars.Thresholds {
		if !st.Stat.Known() {
			return fmt.Errorf("star signal: %w %q", model.ErrUnknownStat, st.Stat)
		}
	}
	if !c.Athlete.PhysicalStat.Known() || !c.Athlete.SkillStat.Known() {
		return fmt.Errorf("athlete_without_skill: %w", model.ErrUnknownStat)
	}
	for _, t := range c.Unicorn.Traits {
		if t.Name == "" {
			return fmt.Errorf("%w: unnamed unicorn trait", ErrInvalidTrait)
		}
		for _, bounds := range []map[model.Stat]float64{t.Above, t.Below} {
			for st := range bounds {
				if !st.Known() {
					return fmt.Errorf("%w: %s: %w %q", ErrInvalidTrait, t.Name, model.ErrUnknownStat, st)
				}
			}
		}
	}
	for _, st := range c.Proxy.AdvancedStats {
		if !st.Known() {
			return fmt.Errorf("proxy: %w %q", model.ErrUnknownStat, st)
		}
	}
	known := make(map[string]bool, len(ruleNames))
	for _, n := range ruleNames {
		known[n] = true
	}
	for _, t := range c.Tags {
		if t.Name == "" || len(t.Rules) == 0 {
			return fmt.Errorf("%w: %q", ErrInvalidTag, t.Name)
		}
		for _, r := range t.Rules {
			if !known[r] {
				return fmt.Errorf("%w: %s references unknown rule %q", ErrInvalidTag, t.Name, r)
			}
		}
	}
	return nil
}
