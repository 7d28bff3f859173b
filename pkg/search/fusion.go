package search

import (
	"sort"

	"chat-search-be/internal/repository/contract"

	"github.com/google/uuid"
)

// fuse merges the two candidate sets into one ranked list of at most TopK
// results. A record present in both sets is scored once with the weighted sum
// of its normalized path scores; a record seen on one path only carries that
// path's weighted score. Ties break on record id for deterministic output.
func fuse(vecResults, lexResults []*contract.ScoredChatMessage, config Config) []Result {
	byId := make(map[uuid.UUID]*Result)

	accumulate := func(candidates []*contract.ScoredChatMessage, weight float64) {
		for _, c := range candidates {
			if c.Message == nil {
				continue
			}
			if existing, ok := byId[c.Message.Id]; ok {
				existing.Similarity += weight * c.Similarity
				continue
			}
			byId[c.Message.Id] = &Result{
				Id:         c.Message.Id,
				SessionId:  c.Message.SessionId,
				Sender:     c.Message.Sender,
				Message:    c.Message.Message,
				Similarity: weight * c.Similarity,
			}
		}
	}

	accumulate(vecResults, config.VectorWeight)
	accumulate(lexResults, config.LexicalWeight)

	merged := make([]Result, 0, len(byId))
	for _, res := range byId {
		merged = append(merged, *res)
	}

	sort.Slice(merged, func(i, j int) bool {
		if merged[i].Similarity != merged[j].Similarity {
			return merged[i].Similarity > merged[j].Similarity
		}
		return merged[i].Id.String() < merged[j].Id.String()
	})

	if len(merged) > config.TopK {
		merged = merged[:config.TopK]
	}
	return merged
}
