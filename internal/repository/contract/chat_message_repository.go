package contract

import (
	"context"

	"chat-search-be/internal/entity"
	"chat-search-be/internal/repository/specification"
)

// ScoredChatMessage wraps ChatMessage with the relevance score of the search
// path that produced it. Scores are normalized to (0, 1], higher is better,
// for both the vector and the lexical path.
type ScoredChatMessage struct {
	Message    *entity.ChatMessage
	Similarity float64
}

type ChatMessageRepository interface {
	// CreateBulk upserts records by primary key. Re-ingesting a session
	// rewrites its rows in place (ids are deterministic, see entity package).
	CreateBulk(ctx context.Context, messages []*entity.ChatMessage) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatMessage, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	// SearchSimilarWithScore runs a cosine-similarity top-K query.
	SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int) ([]*ScoredChatMessage, error)
	// SearchLexicalWithScore runs a full-text top-K query over the same rows.
	SearchLexicalWithScore(ctx context.Context, query string, limit int) ([]*ScoredChatMessage, error)
}
