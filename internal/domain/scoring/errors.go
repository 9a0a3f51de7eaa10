package scoring

import "errors"

// Sentinel error kinds for this package.
var (
	ErrInvalidBounds      = errors.New("min_score must be below max_score")
	ErrInvalidBreakpoints = errors.New("tier breakpoints must be strictly descending")
	ErrInvalidTag         = errors.New("invalid tag rule")
	ErrInvalidTrait       = errors.New("invalid unicorn trait")
)
