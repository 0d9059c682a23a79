package iconclass

import (
	"sort"

	"github.com/culthera/enrich/internal/model"
)

// Diversify enforces the coverage constraint over the notation hierarchy:
// within each main division at most maxPerDivision candidates survive,
// chosen by highest confidence. Ties keep the earlier-generated candidate.
// Survivors retain their original relative order.
func Diversify(candidates []model.Candidate, maxPerDivision int) []model.Candidate {
	if maxPerDivision <= 0 {
		maxPerDivision = 1
	}
	if len(candidates) == 0 {
		return nil
	}

	// Indices per division, ranked by confidence with first-seen tie-break.
	byDivision := make(map[string][]int)
	for i, c := range candidates {
		division := MainDivision(c.Notation)
		byDivision[division] = append(byDivision[division], i)
	}

	keep := make(map[int]bool, len(candidates))
	for _, indices := range byDivision {
		sort.SliceStable(indices, func(a, b int) bool {
			return candidates[indices[a]].Confidence > candidates[indices[b]].Confidence
		})
		for rank, idx := range indices {
			if rank >= maxPerDivision {
				break
			}
			keep[idx] = true
		}
	}

	filtered := make([]model.Candidate, 0, len(keep))
	for i, c := range candidates {
		if keep[i] {
			filtered = append(filtered, c)
		}
	}
	return filtered
}
