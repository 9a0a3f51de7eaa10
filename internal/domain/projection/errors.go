package projection

import "errors"

// Sentinel error kinds for this package.
var (
	ErrInvalidN      = errors.New("n must be at least 1")
	ErrInvalidDerate = errors.New("sparse derate must be within (0,1]")
)
