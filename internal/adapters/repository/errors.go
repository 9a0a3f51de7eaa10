package repository

import "errors"

// Sentinel kinds for corpus errors.
var (
	ErrNoSnapshot       = errors.New("no corpus snapshot published")
	ErrDuplicateID      = errors.New("duplicate profile id")
	ErrLoad             = errors.New("load profiles failed")
	ErrUnsupportedInput = errors.New("unsupported profile file format")
)
