package api

import (
	"errors"
	"fmt"
)

// Sentinel kinds for API errors.
var (
	ErrServe      = errors.New("http serve failed")
	ErrBadRequest = errors.New("bad request")
)

// wrap prefixes err with the operation name.
func wrap(op string, err error) error {
	return fmt.Errorf("%s: %w", op, err)
}

// wrapKind tags err with a sentinel kind so callers can match it.
func wrapKind(op string, kind, err error) error {
	return fmt.Errorf("%s: %w: %w", op, kind, err)
}
