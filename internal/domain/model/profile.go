// Package model contains domain models passed between layers.
package model

import (
	"fmt"
	"strings"
)

// Position is the coarse position category of a player.
type Position string

// Position categories.
const (
	Guard Position = "G"
	Wing  Position = "W"
	Big   Position = "B"
)

// Valid reports whether p is a known position category.
func (p Position) Valid() bool {
	return p == Guard || p == Wing || p == Big
}

// Perimeter reports whether p is a guard or a wing.
func (p Position) Perimeter() bool {
	return p == Guard || p == Wing
}

// Level is the competition level a player's college stats were produced at.
// The empty level means unknown.
type Level string

// Competition levels.
const (
	HighMajor Level = "high_major"
	MidMajor  Level = "mid_major"
	LowMajor  Level = "low_major"
)

// Valid reports whether l is empty or a known level.
func (l Level) Valid() bool {
	switch l {
	case "", HighMajor, MidMajor, LowMajor:
		return true
	}
	return false
}

// DraftInfo carries draft metadata. A zero Pick means undrafted or not yet drafted.
type DraftInfo struct {
	Pick int `json:"pick" yaml:"pick"`
	Year int `json:"year,omitempty" yaml:"year,omitempty"`
}

// RequiredStats are the core per-game stats every profile must carry.
var RequiredStats = []Stat{StatPPG, StatRPG, StatAPG}

// PlayerProfile is the college statistical profile of a prospect or a
// historical player. Only historical players carry an Outcome.
type PlayerProfile struct {
	ID       string     `json:"id" yaml:"id"`
	Name     string     `json:"name,omitempty" yaml:"name,omitempty"`
	Position Position   `json:"position" yaml:"position"`
	Level    Level      `json:"level,omitempty" yaml:"level,omitempty"`
	Stats    Stats      `json:"stats" yaml:"stats"`
	Draft    *DraftInfo `json:"draft,omitempty" yaml:"draft,omitempty"`
	Outcome  *Tier      `json:"outcome,omitempty" yaml:"outcome,omitempty"`
}

// Historical reports whether the profile has a known outcome tier.
func (p *PlayerProfile) Historical() bool {
	return p.Outcome != nil && p.Outcome.Valid()
}

// DraftPick returns the draft pick and whether one is known.
func (p *PlayerProfile) DraftPick() (int, bool) {
	if p.Draft == nil || p.Draft.Pick <= 0 {
		return 0, false
	}
	return p.Draft.Pick, true
}

// Validate checks the input contract: identity, position, core stats and
// known stat keys.
func (p *PlayerProfile) Validate() error {
	if strings.TrimSpace(p.ID) == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidProfile)
	}
	if !p.Position.Valid() {
		return fmt.Errorf("%w: %s: %w %q", ErrInvalidProfile, p.ID, ErrInvalidPosition, p.Position)
	}
	if !p.Level.Valid() {
		return fmt.Errorf("%w: %s: %w %q", ErrInvalidProfile, p.ID, ErrInvalidLevel, p.Level)
	}
	if err := p.Stats.Validate(); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalidProfile, p.ID, err)
	}
	if missing := p.Stats.Missing(RequiredStats...); len(missing) > 0 {
		return fmt.Errorf("%w: %s: missing required stats %v", ErrInvalidProfile, p.ID, missing)
	}
	if p.Outcome != nil && !p.Outcome.Valid() {
		return fmt.Errorf("%w: %s: %w", ErrInvalidProfile, p.ID, ErrInvalidTier)
	}
	return nil
}
