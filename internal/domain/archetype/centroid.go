package archetype

import "github.com/okian/draftrange/internal/domain/model"

// Centroids holds the fallback reference points and the per-stat scales used
// to z-score distances to them.
type Centroids struct {
	Means  map[Archetype]map[model.Stat]float64 `json:"means"`
	Scales map[model.Stat]float64               `json:"scales"`
}

// Member pairs a profile with its assignment for centroid fitting and
// population reporting.
type Member struct {
	Profile    *model.PlayerProfile
	Assignment Assignment
}

// FitCentroids computes the mean of each archetype's defining stats over its
// rule-matched members, and the population standard deviation of every
// defining stat over all members. Archetypes without rule-matched members
// are left out.
func FitCentroids(rules []Rule, members []Member) Centroids {
	out := Centroids{
		Means:  make(map[Archetype]map[model.Stat]float64),
		Scales: make(map[model.Stat]float64),
	}
	everyone := make([]*model.PlayerProfile, 0, len(members))
	matched := make(map[Archetype][]*model.PlayerProfile)
	for _, m := range members {
		everyone = append(everyone, m.Profile)
		if m.Assignment.Method == MethodRule {
			matched[m.Assignment.Primary] = append(matched[m.Assignment.Primary], m.Profile)
		}
	}

	all := make(map[model.Stat]struct{})
	for _, a := range taxonomy {
		stats := DefiningStats(rules, a)
		mean := make(map[model.Stat]float64)
		for _, s := range stats {
			all[s] = struct{}{}
			if mu, _, n := model.PopulationMoments(s, matched[a]); n > 0 {
				mean[s] = mu
			}
		}
		if len(mean) > 0 {
			out.Means[a] = mean
		}
	}
	for _, s := range sortedStats(all) {
		if _, sd, _ := model.PopulationMoments(s, everyone); sd > 0 {
			out.Scales[s] = sd
		}
	}
	return out
}
