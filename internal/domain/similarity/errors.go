package similarity

import "errors"

// Sentinel error kinds for this package.
var (
	ErrInvalidK     = errors.New("k must be at least 1")
	ErrNoWeights    = errors.New("weight vector is empty")
	ErrUnclassified = errors.New("prospect has no primary archetype")
	ErrInvalidScale = errors.New("similarity scale must be positive")

	ErrInvalidEligibility = errors.New("pool minimums must be non-negative")
	ErrInvalidPenalty     = errors.New("invalid mismatch penalty")
)
