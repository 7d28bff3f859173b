package search

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"chat-search-be/internal/entity"
	"chat-search-be/internal/repository/contract"
	"chat-search-be/internal/repository/specification"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	mu        sync.Mutex
	calls     int
	fail      bool
	embedding []float32
}

func (f *fakeProvider) Generate(ctx context.Context, text string, taskType string) ([]float32, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.fail {
		return nil, fmt.Errorf("provider unavailable")
	}
	if f.embedding != nil {
		return f.embedding, nil
	}
	return []float32{0.1, 0.2, 0.3}, nil
}

func (f *fakeProvider) GenerateBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i := range texts {
		v, _ := f.Generate(ctx, texts[i], "")
		vectors[i] = v
	}
	return vectors, nil
}

type fakeRepository struct {
	vecResults []*contract.ScoredChatMessage
	lexResults []*contract.ScoredChatMessage
	vecErr     error
	lexErr     error
	vecCalls   int
	lexCalls   int
}

func (f *fakeRepository) CreateBulk(ctx context.Context, messages []*entity.ChatMessage) error {
	return nil
}

func (f *fakeRepository) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatMessage, error) {
	return nil, nil
}

func (f *fakeRepository) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	return 0, nil
}

func (f *fakeRepository) SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int) ([]*contract.ScoredChatMessage, error) {
	f.vecCalls++
	return f.vecResults, f.vecErr
}

func (f *fakeRepository) SearchLexicalWithScore(ctx context.Context, query string, limit int) ([]*contract.ScoredChatMessage, error) {
	f.lexCalls++
	return f.lexResults, f.lexErr
}

func idFor(n byte) uuid.UUID {
	var raw [16]byte
	raw[15] = n
	return uuid.UUID(raw)
}

func scored(id uuid.UUID, message string, score float64) *contract.ScoredChatMessage {
	return &contract.ScoredChatMessage{
		Message: &entity.ChatMessage{
			Id:        id,
			SessionId: "sess",
			Sender:    "user",
			Message:   message,
		},
		Similarity: score,
	}
}

func TestResolveRejectsEmptyQuery(t *testing.T) {
	tests := []struct {
		name  string
		query string
	}{
		{"empty", ""},
		{"spaces", "   "},
		{"tabs and newlines", "\t\n "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := &fakeProvider{}
			repo := &fakeRepository{}
			r := NewResolver(provider, repo, DefaultConfig(), nil)

			_, err := r.Resolve(context.Background(), tt.query)
			assert.ErrorIs(t, err, ErrEmptyQuery)
			// Rejected before any embedding or store call.
			assert.Equal(t, 0, provider.calls)
			assert.Equal(t, 0, repo.vecCalls)
			assert.Equal(t, 0, repo.lexCalls)
		})
	}
}

func TestResolveFusesAndDeduplicates(t *testing.T) {
	provider := &fakeProvider{}
	repo := &fakeRepository{
		vecResults: []*contract.ScoredChatMessage{
			scored(idFor(1), "hello world", 0.9),
		},
		lexResults: []*contract.ScoredChatMessage{
			scored(idFor(1), "hello world", 0.8),
			scored(idFor(2), "other", 0.6),
		},
	}
	config := DefaultConfig()
	r := NewResolver(provider, repo, config, nil)

	results, err := r.Resolve(context.Background(), "hello")
	require.NoError(t, err)

	require.Len(t, results, 2)
	// id 1 appears exactly once, fused from both paths.
	assert.Equal(t, idFor(1), results[0].Id)
	assert.InDelta(t, 0.7*0.9+0.3*0.8, results[0].Similarity, 1e-9)
	assert.Equal(t, idFor(2), results[1].Id)
	assert.InDelta(t, 0.3*0.6, results[1].Similarity, 1e-9)
}

func TestResolveEmptyMatchesIsSuccess(t *testing.T) {
	provider := &fakeProvider{}
	repo := &fakeRepository{}
	r := NewResolver(provider, repo, DefaultConfig(), nil)

	results, err := r.Resolve(context.Background(), "nothing matches this")
	require.NoError(t, err)
	assert.NotNil(t, results)
	assert.Empty(t, results)
}

func TestResolveFailsClosedOnEmbeddingError(t *testing.T) {
	provider := &fakeProvider{fail: true}
	repo := &fakeRepository{}
	r := NewResolver(provider, repo, DefaultConfig(), nil)

	_, err := r.Resolve(context.Background(), "query")
	require.Error(t, err)
	// No store calls were dispatched.
	assert.Equal(t, 0, repo.vecCalls)
	assert.Equal(t, 0, repo.lexCalls)
}

func TestResolveFailsClosedOnEitherSearchPath(t *testing.T) {
	tests := []struct {
		name   string
		vecErr error
		lexErr error
	}{
		{"vector path fails", fmt.Errorf("vector index down"), nil},
		{"lexical path fails", nil, fmt.Errorf("fts down")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := &fakeProvider{}
			repo := &fakeRepository{
				vecResults: []*contract.ScoredChatMessage{scored(idFor(1), "a", 0.9)},
				lexResults: []*contract.ScoredChatMessage{scored(idFor(2), "b", 0.8)},
				vecErr:     tt.vecErr,
				lexErr:     tt.lexErr,
			}
			r := NewResolver(provider, repo, DefaultConfig(), nil)

			results, err := r.Resolve(context.Background(), "query")
			require.Error(t, err)
			// No partial results on internal failure.
			assert.Nil(t, results)
		})
	}
}

func TestResolveTruncatesToTopK(t *testing.T) {
	var vec []*contract.ScoredChatMessage
	for i := byte(1); i <= 20; i++ {
		vec = append(vec, scored(idFor(i), "m", float64(i)/100.0))
	}
	provider := &fakeProvider{}
	repo := &fakeRepository{vecResults: vec}

	config := DefaultConfig()
	config.TopK = 5
	r := NewResolver(provider, repo, config, nil)

	results, err := r.Resolve(context.Background(), "query")
	require.NoError(t, err)
	assert.Len(t, results, 5)
	// Highest fused score first.
	assert.Equal(t, idFor(20), results[0].Id)
}

func TestResolverDefaultsZeroWeights(t *testing.T) {
	provider := &fakeProvider{}
	repo := &fakeRepository{
		vecResults: []*contract.ScoredChatMessage{scored(idFor(1), "a", 0.9)},
		lexResults: []*contract.ScoredChatMessage{scored(idFor(2), "b", 0.8)},
	}
	// Only TopK set: weights must fall back to defaults, not collapse to 0.
	r := NewResolver(provider, repo, Config{TopK: 10}, nil)

	results, err := r.Resolve(context.Background(), "query")
	require.NoError(t, err)

	require.Len(t, results, 2)
	assert.Equal(t, idFor(1), results[0].Id)
	assert.InDelta(t, 0.7*0.9, results[0].Similarity, 1e-9)
	assert.InDelta(t, 0.3*0.8, results[1].Similarity, 1e-9)
}

func TestResolveCachesQueryEmbedding(t *testing.T) {
	provider := &fakeProvider{}
	repo := &fakeRepository{}
	r := NewResolver(provider, repo, DefaultConfig(), nil)

	_, err := r.Resolve(context.Background(), "repeated query")
	require.NoError(t, err)
	_, err = r.Resolve(context.Background(), "repeated query")
	require.NoError(t, err)

	assert.Equal(t, 1, provider.calls)
	// Store searches still run for every request.
	assert.Equal(t, 2, repo.vecCalls)
	assert.Equal(t, 2, repo.lexCalls)
}
