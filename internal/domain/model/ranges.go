package model

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Range is the expected low/high of a statistic across the college population.
type Range struct {
	Lo float64 `koanf:"lo" json:"lo" yaml:"lo"`
	Hi float64 `koanf:"hi" json:"hi" yaml:"hi"`
}

// Ranges maps statistics to their expected range.
type Ranges map[Stat]Range

// Spread returns hi-lo for stat, or 1 when the range is unknown or degenerate.
func (r Ranges) Spread(stat Stat) float64 {
	rg, ok := r[stat]
	if !ok || rg.Hi <= rg.Lo {
		return 1
	}
	return rg.Hi - rg.Lo
}

// DefaultRanges returns the stat spreads used to normalise margins and as a
// fallback similarity scale.
func DefaultRanges() Ranges {
	return Ranges{
		StatPPG:    {0, 30},
		StatRPG:    {0, 15},
		StatAPG:    {0, 11},
		StatSPG:    {0, 3.5},
		StatBPG:    {0, 5},
		StatTPG:    {0, 5},
		StatMPG:    {15, 40},
		StatFG:     {35, 65},
		StatThreeP: {0, 50},
		StatFT:     {40, 95},
		StatFTA:    {0, 10},
		StatUSG:    {12, 40},
		StatBPM:    {-5, 15},
		StatOBPM:   {-5, 12},
		StatDBPM:   {-3, 8},
		StatStlPer: {0, 5},
		StatDunks:  {0, 80},
		StatRimAtt: {0, 8},
		StatHeight: {72, 88},
		StatATO:    {0, 4},
	}
}

// Moments returns the mean and population standard deviation of vals.
// Fewer than two values, or deviations below 1e-9, report a zero deviation.
func Moments(vals []float64) (mean, std float64) {
	switch len(vals) {
	case 0:
		return 0, 0
	case 1:
		return vals[0], 0
	}
	mean, std = stat.PopMeanStdDev(vals, nil)
	if math.IsNaN(std) || std < 1e-9 {
		std = 0
	}
	return mean, std
}

// PopulationMoments returns the Moments of st over the profiles that carry
// it, and how many did.
func PopulationMoments(st Stat, profiles []*PlayerProfile) (mean, std float64, n int) {
	vals := make([]float64, 0, len(profiles))
	for _, p := range profiles {
		if v, ok := p.Stats.Get(st); ok {
			vals = append(vals, v)
		}
	}
	mean, std = Moments(vals)
	return mean, std, len(vals)
}
