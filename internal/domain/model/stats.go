package model

import (
	"fmt"
	"sort"
)

// Stat names a statistic carried on a player profile.
type Stat string

// Core per-game statistics.
const (
	StatPPG Stat = "ppg"
	StatRPG Stat = "rpg"
	StatAPG Stat = "apg"
	StatSPG Stat = "spg"
	StatBPG Stat = "bpg"
	StatTPG Stat = "tpg"
	StatMPG Stat = "mpg"
)

// Shooting and free-throw statistics. Percentages use the 0-100 scale.
const (
	StatFG       Stat = "fg"
	StatThreeP   Stat = "three_p"
	StatFT       Stat = "ft"
	StatFTA      Stat = "fta"       // attempts per game
	StatFTATotal Stat = "fta_total" // season attempts
	StatGP       Stat = "gp"
)

// Advanced, physical and context statistics.
const (
	StatUSG       Stat = "usg"
	StatBPM       Stat = "bpm"
	StatOBPM      Stat = "obpm"
	StatDBPM      Stat = "dbpm"
	StatStlPer    Stat = "stl_per"
	StatDunks     Stat = "dunks"
	StatRimAtt    Stat = "rim_att"
	StatHeight    Stat = "height"
	StatClassYear Stat = "class_year"

	// StatATO is derived from apg and tpg and never stored.
	StatATO Stat = "ato"
)

var knownStats = map[Stat]struct{}{
	StatPPG: {}, StatRPG: {}, StatAPG: {}, StatSPG: {}, StatBPG: {}, StatTPG: {}, StatMPG: {},
	StatFG: {}, StatThreeP: {}, StatFT: {}, StatFTA: {}, StatFTATotal: {}, StatGP: {},
	StatUSG: {}, StatBPM: {}, StatOBPM: {}, StatDBPM: {}, StatStlPer: {},
	StatDunks: {}, StatRimAtt: {}, StatHeight: {}, StatClassYear: {},
}

// Known reports whether s is a stat the system understands, derived stats included.
func (s Stat) Known() bool {
	if s == StatATO {
		return true
	}
	_, ok := knownStats[s]
	return ok
}

// Stats holds the statistics of a profile. A missing key is a null value.
type Stats map[Stat]float64

// Get returns the value of stat and whether it is available.
// Free-throw attempts fall back to fta_total/gp so the rate does not depend on
// games played, and ato is derived from apg and tpg.
func (s Stats) Get(stat Stat) (float64, bool) {
	if v, ok := s[stat]; ok {
		return v, true
	}
	switch stat {
	case StatFTA:
		total, ok := s[StatFTATotal]
		gp, okGP := s[StatGP]
		if ok && okGP && gp > 0 {
			return total / gp, true
		}
	case StatATO:
		apg, ok := s[StatAPG]
		tpg, okT := s[StatTPG]
		if ok && okT && tpg > 0 {
			return apg / tpg, true
		}
	}
	return 0, false
}

// Has reports whether every listed stat is available.
func (s Stats) Has(stats ...Stat) bool {
	for _, st := range stats {
		if _, ok := s.Get(st); !ok {
			return false
		}
	}
	return true
}

// Missing returns the listed stats that are not available, in input order.
func (s Stats) Missing(stats ...Stat) []Stat {
	var out []Stat
	for _, st := range stats {
		if _, ok := s.Get(st); !ok {
			out = append(out, st)
		}
	}
	return out
}

// Validate rejects unknown stat keys.
func (s Stats) Validate() error {
	var unknown []string
	for k := range s {
		if _, ok := knownStats[k]; !ok {
			unknown = append(unknown, string(k))
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return fmt.Errorf("%w: %v", ErrUnknownStat, unknown)
	}
	return nil
}

// Clone returns an independent copy.
func (s Stats) Clone() Stats {
	out := make(Stats, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}
