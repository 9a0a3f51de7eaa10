package model

import (
	"fmt"
	"strings"
)

// Tier is an ordinal professional outcome band. Higher values are better.
type Tier int

// Tier values, worst to best.
const (
	TierUnknown Tier = iota
	TierBust
	TierRolePlayer
	TierStarter
	TierAllStar
	TierSuperstar
)

// MaxTierSpread is the widest possible distance between two tiers.
const MaxTierSpread = int(TierSuperstar - TierBust)

var tierLabels = map[Tier]string{
	TierBust:       "bust",
	TierRolePlayer: "role_player",
	TierStarter:    "starter",
	TierAllStar:    "all_star",
	TierSuperstar:  "superstar",
}

// Tiers lists every valid tier from best to worst.
func Tiers() []Tier {
	return []Tier{TierSuperstar, TierAllStar, TierStarter, TierRolePlayer, TierBust}
}

// Valid reports whether t is one of the defined tiers.
func (t Tier) Valid() bool {
	return t >= TierBust && t <= TierSuperstar
}

func (t Tier) String() string {
	if l, ok := tierLabels[t]; ok {
		return l
	}
	return "unknown"
}

// ParseTier accepts a tier label ("all_star", "All-Star") or its number (1-5).
func ParseTier(s string) (Tier, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.NewReplacer("-", "_", " ", "_", "/", "_").Replace(norm)
	for t, l := range tierLabels {
		if norm == l || norm == fmt.Sprint(int(t)) {
			return t, nil
		}
	}
	return TierUnknown, fmt.Errorf("%w: %q", ErrInvalidTier, s)
}

// MarshalText encodes the tier as its label. The zero tier encodes as "unknown".
func (t Tier) MarshalText() ([]byte, error) {
	if t != TierUnknown && !t.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidTier, int(t))
	}
	return []byte(t.String()), nil
}

// UnmarshalText decodes a tier label.
func (t *Tier) UnmarshalText(b []byte) error {
	v, err := ParseTier(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}
