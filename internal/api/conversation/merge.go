package conversation

import "github.com/tripcanvas/tripcanvas/internal/types"

// MergeCards folds incoming recommendation cards into the existing set by
// identity. Existing order is preserved and survivors of incoming are appended
// in their given order; a card whose ID is already present is dropped. Merging
// the same batch twice yields the same result as merging it once.
func MergeCards(existing, incoming []types.RecommendationCard) []types.RecommendationCard {
	seen := make(map[string]struct{}, len(existing))
	out := make([]types.RecommendationCard, 0, len(existing)+len(incoming))
	for _, c := range existing {
		if _, dup := seen[c.ID]; dup {
			continue
		}
		seen[c.ID] = struct{}{}
		out = append(out, c)
	}
	for _, c := range incoming {
		if _, dup := seen[c.ID]; dup {
			continue
		}
		seen[c.ID] = struct{}{}
		out = append(out, c)
	}
	return out
}
