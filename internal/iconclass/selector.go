package iconclass

import (
	"sort"

	"github.com/culthera/enrich/internal/model"
)

// Select orders candidates by confidence descending and truncates to
// topK. The sort is stable, so equally confident candidates keep their
// generation order. Exact duplicate notations are removed, first
// occurrence after ranking wins.
func Select(candidates []model.Candidate, topK int) []model.Candidate {
	if topK < 1 {
		topK = 1
	}
	if len(candidates) == 0 {
		return nil
	}

	ranked := make([]model.Candidate, len(candidates))
	copy(ranked, candidates)
	sort.SliceStable(ranked, func(a, b int) bool {
		return ranked[a].Confidence > ranked[b].Confidence
	})

	seen := make(map[string]bool, len(ranked))
	selected := make([]model.Candidate, 0, topK)
	for _, c := range ranked {
		if seen[c.Notation] {
			continue
		}
		seen[c.Notation] = true
		selected = append(selected, c)
		if len(selected) == topK {
			break
		}
	}
	return selected
}
