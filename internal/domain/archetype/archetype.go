// Package archetype assigns player profiles to a fixed play-style taxonomy.
//
// Assignment is rule based: each archetype owns one or more threshold
// branches. Profiles that match no branch are resolved by nearest centroid so
// the primary archetype is always set.
package archetype

import "fmt"

// Archetype names a play-style category.
type Archetype string

// The taxonomy, in tie-break order.
const (
	ScoringGuard    Archetype = "scoring_guard"
	PlaymakingGuard Archetype = "playmaking_guard"
	ThreeAndDWing   Archetype = "three_and_d_wing"
	ScoringWing     Archetype = "scoring_wing"
	SkilledBig      Archetype = "skilled_big"
	AthleticBig     Archetype = "athletic_big"

	// Unclassified is only used while an assignment is being resolved.
	Unclassified Archetype = "unclassified"
)

var taxonomy = []Archetype{
	ScoringGuard, PlaymakingGuard, ThreeAndDWing, ScoringWing, SkilledBig, AthleticBig,
}

var labels = map[Archetype]string{
	ScoringGuard:    "Scoring Guard",
	PlaymakingGuard: "Playmaking Guard",
	ThreeAndDWing:   "3&D Wing",
	ScoringWing:     "Scoring Wing",
	SkilledBig:      "Skilled Big",
	AthleticBig:     "Athletic Big",
	Unclassified:    "Unclassified",
}

// All returns the taxonomy in its fixed order.
func All() []Archetype {
	out := make([]Archetype, len(taxonomy))
	copy(out, taxonomy)
	return out
}

// Valid reports whether a is part of the taxonomy. Unclassified is not.
func (a Archetype) Valid() bool {
	return a.order() >= 0
}

// Label returns the display name.
func (a Archetype) Label() string {
	if l, ok := labels[a]; ok {
		return l
	}
	return string(a)
}

func (a Archetype) order() int {
	for i, t := range taxonomy {
		if t == a {
			return i
		}
	}
	return -1
}

// Parse accepts an archetype key or its display name.
func Parse(s string) (Archetype, error) {
	for _, a := range taxonomy {
		if s == string(a) || s == labels[a] {
			return a, nil
		}
	}
	return Unclassified, fmt.Errorf("%w: %q", ErrUnknownArchetype, s)
}
