package archetype

import "github.com/okian/draftrange/internal/domain/types"

// PopulationReport counts assignments per archetype and flags buckets smaller
// than minBucket or holding more than maxShare of the population. A zero
// maxShare disables the oversized flag. It is a corpus-health diagnostic and
// never feeds back into classification.
func PopulationReport(assignments []Assignment, minBucket int, maxShare float64) types.PopulationReport {
	counts := make(map[Archetype]int, len(taxonomy))
	fallback := make(map[Archetype]int, len(taxonomy))
	for _, a := range assignments {
		counts[a.Primary]++
		if a.Fallback() {
			fallback[a.Primary]++
		}
	}

	total := len(assignments)
	rep := types.PopulationReport{
		Total:     total,
		MinBucket: minBucket,
		MaxShare:  maxShare,
		Buckets:   make([]types.PopulationBucket, 0, len(taxonomy)),
	}
	for _, a := range taxonomy {
		b := types.PopulationBucket{
			Archetype:  string(a),
			Label:      a.Label(),
			Count:      counts[a],
			Fallback:   fallback[a],
			Undersized: counts[a] < minBucket,
		}
		if total > 0 {
			b.Share = float64(counts[a]) / float64(total)
		}
		b.Oversized = maxShare > 0 && b.Share > maxShare
		rep.Buckets = append(rep.Buckets, b)
	}
	return rep
}
