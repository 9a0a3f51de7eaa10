// Package types contains the data contracts shared between the pipeline and
// its consumers. Every field is an ordered slice or scalar so JSON encoding is
// byte-stable.
package types

import "github.com/okian/draftrange/internal/domain/model"

// Anchor is one end of the projected range, tied to the comp that set it.
type Anchor struct {
	Tier          model.Tier `json:"tier"`
	CompID        string     `json:"comp_id,omitempty"`
	CompName      string     `json:"comp_name,omitempty"`
	SimilarityPct float64    `json:"similarity_pct"`
}

// Adjustment is one fired rule and the delta it applied to the running score.
type Adjustment struct {
	Rule  string  `json:"rule"`
	Delta float64 `json:"delta"`
}

// Skip records a rule that was not evaluated because inputs were missing.
// Missing names stats or profile fields such as draft_pick and level.
type Skip struct {
	Rule    string   `json:"rule"`
	Missing []string `json:"missing,omitempty"`
}

// ModelLean is the rule-based score reported next to the comp range.
type ModelLean struct {
	Score       float64      `json:"score"`
	Band        model.Tier   `json:"band"`
	Adjustments []Adjustment `json:"adjustments"`
	Skipped     []Skip       `json:"skipped"`
}

// CompSummary describes one comp used for the range. Distance is -1 when it
// is not finite.
type CompSummary struct {
	ID         string     `json:"id"`
	Name       string     `json:"name,omitempty"`
	Tier       model.Tier `json:"tier"`
	Similarity float64    `json:"similarity"`
	Distance   float64    `json:"distance"`
}

// FloorCeilingResult is the projection for one prospect.
type FloorCeilingResult struct {
	ProspectID         string        `json:"prospect_id"`
	Archetype          string        `json:"archetype"`
	SecondaryArchetype string        `json:"secondary_archetype,omitempty"`
	AssignmentMethod   string        `json:"assignment_method"`
	Ceiling            Anchor        `json:"ceiling"`
	Floor              Anchor        `json:"floor"`
	MostLikely         model.Tier    `json:"most_likely"`
	Model              ModelLean     `json:"model"`
	StarSignals        int           `json:"star_signals"`
	StarSignalTags     []string      `json:"star_signal_tags,omitempty"`
	UnicornTraits      []string      `json:"unicorn_traits,omitempty"`
	Tag                string        `json:"tag,omitempty"`
	Confidence         float64       `json:"confidence"`
	SparseArchetype    bool          `json:"sparse_archetype"`
	NoComps            bool          `json:"no_comps,omitempty"`
	PoolSize           int           `json:"pool_size"`
	Comps              []CompSummary `json:"comps"`
}

// BatchItem is the outcome for one prospect of a batch. Exactly one of
// Result and Error is set.
type BatchItem struct {
	Index      int                 `json:"index"`
	ProspectID string              `json:"prospect_id"`
	Result     *FloorCeilingResult `json:"result,omitempty"`
	Error      string              `json:"error,omitempty"`
}

// BatchResult holds every item of a batch in input order.
type BatchResult struct {
	RunID           string      `json:"run_id"`
	SnapshotVersion string      `json:"snapshot_version"`
	Failed          int         `json:"failed"`
	Items           []BatchItem `json:"items"`
}

// PopulationBucket is the population of one archetype in a corpus.
type PopulationBucket struct {
	Archetype  string  `json:"archetype"`
	Label      string  `json:"label"`
	Count      int     `json:"count"`
	Share      float64 `json:"share"`
	Fallback   int     `json:"fallback"`
	Undersized bool    `json:"undersized"`
	Oversized  bool    `json:"oversized"`
}

// PopulationReport is the archetype population diagnostic.
type PopulationReport struct {
	Total     int                `json:"total"`
	MinBucket int                `json:"min_bucket"`
	MaxShare  float64            `json:"max_share"`
	Buckets   []PopulationBucket `json:"buckets"`
}

// Flagged returns the buckets that are undersized or oversized.
func (r PopulationReport) Flagged() []PopulationBucket {
	var out []PopulationBucket
	for _, b := range r.Buckets {
		if b.Undersized || b.Oversized {
			out = append(out, b)
		}
	}
	return out
}
