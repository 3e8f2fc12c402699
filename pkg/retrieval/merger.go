package retrieval

import (
	"sort"

	"carecompanion-be/pkg/category"
)

// Merge combines vector and keyword hits into a single ranked list.
// A passage appearing in both lists is deduplicated by id and keeps both
// scores. Ordering is by combined score descending, then id ascending so
// identical inputs always produce identical output.
func Merge(vectorHits, keywordHits []IndexHit, queryCategory category.Category, config Config) []Snippet {
	byID := make(map[string]*Snippet, len(vectorHits)+len(keywordHits))

	for _, hit := range vectorHits {
		byID[hit.ID] = &Snippet{
			ID:          hit.ID,
			Text:        hit.Text,
			VectorScore: hit.Score,
			Metadata:    hit.Metadata,
		}
	}

	for _, hit := range keywordHits {
		if existing, ok := byID[hit.ID]; ok {
			existing.KeywordScore = hit.Score
			if existing.Text == "" {
				existing.Text = hit.Text
			}
			continue
		}
		byID[hit.ID] = &Snippet{
			ID:           hit.ID,
			Text:         hit.Text,
			KeywordScore: hit.Score,
			Metadata:     hit.Metadata,
		}
	}

	merged := make([]Snippet, 0, len(byID))
	for _, s := range byID {
		s.CombinedScore = config.VectorWeight*s.VectorScore + config.KeywordWeight*s.KeywordScore
		if boostApplies(s.Metadata, queryCategory) {
			s.CombinedScore += config.CategoryBoost
		}
		// Combined scores stay within [0,1] even after the boost.
		if s.CombinedScore > 1.0 {
			s.CombinedScore = 1.0
		}
		merged = append(merged, *s)
	}

	sort.Slice(merged, func(i, j int) bool {
		if merged[i].CombinedScore != merged[j].CombinedScore {
			return merged[i].CombinedScore > merged[j].CombinedScore
		}
		return merged[i].ID < merged[j].ID
	})

	if config.TopK > 0 && len(merged) > config.TopK {
		merged = merged[:config.TopK]
	}
	return merged
}

func boostApplies(metadata map[string]string, queryCategory category.Category) bool {
	if queryCategory == "" || queryCategory == category.General {
		return false
	}
	return metadata["category"] == string(queryCategory)
}
