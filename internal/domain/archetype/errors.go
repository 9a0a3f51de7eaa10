package archetype

import "errors"

// Sentinel error kinds for this package.
var (
	ErrUnknownArchetype = errors.New("unknown archetype")
	ErrInvalidRule      = errors.New("invalid archetype rule")
	ErrMissingRules     = errors.New("archetype has no rules")
	ErrInvalidCentroid  = errors.New("invalid archetype centroid")
)
