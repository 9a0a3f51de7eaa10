package config

import (
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func structValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// Validate checks field constraints and the cross-component rules: a rule and
// a weight vector for every archetype, a well-formed scoring table, and a
// range size no larger than the number of comps requested.
func (c *Config) Validate() error {
	if err := structValidator().Struct(c); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	checks := []struct {
		name string
		fn   func() error
	}{
		{"archetypes", c.Archetypes.Validate},
		{"similarity", c.Similarity.Validate},
		{"scoring", c.Scoring.Validate},
		{"projection", c.Projection.Validate},
	}
	for _, chk := range checks {
		if err := chk.fn(); err != nil {
			return fmt.Errorf("%w: %s: %w", ErrInvalidConfig, chk.name, err)
		}
	}
	for s, r := range c.StatRanges {
		if !s.Known() {
			return fmt.Errorf("%w: stat_ranges: unknown stat %q", ErrInvalidConfig, s)
		}
		if r.Hi <= r.Lo {
			return fmt.Errorf("%w: stat_ranges: %s: hi must exceed lo", ErrInvalidConfig, s)
		}
	}
	if c.Projection.N > c.Similarity.K {
		return fmt.Errorf("%w: projection.n (%d) exceeds similarity.k (%d)", ErrInvalidConfig, c.Projection.N, c.Similarity.K)
	}
	return nil
}
