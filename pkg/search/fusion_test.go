package search

import (
	"testing"

	"chat-search-be/internal/repository/contract"

	"github.com/stretchr/testify/assert"
)

func TestFuseTieBreaksOnId(t *testing.T) {
	config := DefaultConfig()
	vec := []*contract.ScoredChatMessage{
		scored(idFor(2), "b", 0.5),
		scored(idFor(1), "a", 0.5),
	}

	merged := fuse(vec, nil, config)

	assert.Len(t, merged, 2)
	assert.Equal(t, idFor(1), merged[0].Id)
	assert.Equal(t, idFor(2), merged[1].Id)
}

func TestFuseSinglePathCarriesWeightedScore(t *testing.T) {
	config := Config{TopK: 10, VectorWeight: 0.6, LexicalWeight: 0.4}

	merged := fuse(
		[]*contract.ScoredChatMessage{scored(idFor(1), "vec only", 0.5)},
		[]*contract.ScoredChatMessage{scored(idFor(2), "lex only", 0.5)},
		config,
	)

	assert.Len(t, merged, 2)
	assert.Equal(t, idFor(1), merged[0].Id)
	assert.InDelta(t, 0.3, merged[0].Similarity, 1e-9)
	assert.InDelta(t, 0.2, merged[1].Similarity, 1e-9)
}

func TestFuseEmptyInputs(t *testing.T) {
	merged := fuse(nil, nil, DefaultConfig())
	assert.NotNil(t, merged)
	assert.Empty(t, merged)
}

func TestFuseSkipsNilMessages(t *testing.T) {
	merged := fuse([]*contract.ScoredChatMessage{{Message: nil, Similarity: 0.9}}, nil, DefaultConfig())
	assert.Empty(t, merged)
}
