package model

import "errors"

// Sentinel kinds for profile validation.
var (
	ErrInvalidProfile  = errors.New("invalid player profile")
	ErrUnknownStat     = errors.New("unknown stat")
	ErrInvalidTier     = errors.New("invalid tier")
	ErrInvalidPosition = errors.New("invalid position")
	ErrInvalidLevel    = errors.New("invalid competition level")
)
