package search

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"chat-search-be/internal/pkg/logger"
	"chat-search-be/internal/repository/contract"
	"chat-search-be/pkg/embedding"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/sync/errgroup"
)

// ErrEmptyQuery rejects blank queries before any provider or store call.
var ErrEmptyQuery = errors.New("search: query is empty")

// Result is one ranked entry of a resolved query. Similarity is the fused
// score: higher is more relevant whether the candidate came from the vector
// path, the lexical path, or both.
type Result struct {
	Id         uuid.UUID
	SessionId  string
	Sender     string
	Message    string
	Similarity float64
}

// Config encapsulates resolver parameters.
type Config struct {
	TopK          int
	VectorWeight  float64
	LexicalWeight float64
	CacheTTL      time.Duration
}

// DefaultConfig returns default resolver configuration.
func DefaultConfig() Config {
	return Config{
		TopK:          10,
		VectorWeight:  0.7,
		LexicalWeight: 0.3,
		CacheTTL:      5 * time.Minute,
	}
}

// Resolver answers one free-text query by fusing a vector similarity search
// and a lexical search over the same corpus. Resolve is stateless per
// request and safe for concurrent use.
type Resolver struct {
	provider   embedding.Provider
	repo       contract.ChatMessageRepository
	config     Config
	embedCache *gocache.Cache
	logger     logger.ILogger
}

func NewResolver(provider embedding.Provider, repo contract.ChatMessageRepository, config Config, l logger.ILogger) *Resolver {
	if config.TopK <= 0 {
		config.TopK = DefaultConfig().TopK
	}
	if config.CacheTTL <= 0 {
		config.CacheTTL = DefaultConfig().CacheTTL
	}
	// A zero/zero weight pair would flatten every fused score to 0 and leave
	// ranking to the id tie-break; treat it as "use defaults". A deliberate
	// single-path setup (e.g. 1.0/0.0) is left alone.
	if config.VectorWeight == 0 && config.LexicalWeight == 0 {
		defaults := DefaultConfig()
		config.VectorWeight = defaults.VectorWeight
		config.LexicalWeight = defaults.LexicalWeight
	}
	if l == nil {
		l = logger.NewNopLogger()
	}
	return &Resolver{
		provider:   provider,
		repo:       repo,
		config:     config,
		embedCache: gocache.New(config.CacheTTL, 2*config.CacheTTL),
		logger:     l,
	}
}

// Resolve returns at most TopK fused results. It fails closed: any embedding
// or store error fails the whole request, an empty list means genuinely no
// matches.
func (r *Resolver) Resolve(ctx context.Context, query string) ([]Result, error) {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return nil, ErrEmptyQuery
	}

	queryVector, err := r.queryEmbedding(ctx, trimmed)
	if err != nil {
		return nil, fmt.Errorf("embedding generation failed: %w", err)
	}

	// The two searches are read-only and independent; run them in parallel
	// and join before merging. Either failing fails the request.
	var vecResults, lexResults []*contract.ScoredChatMessage

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		vecResults, err = r.repo.SearchSimilarWithScore(gctx, queryVector, r.config.TopK)
		if err != nil {
			return fmt.Errorf("vector search failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		lexResults, err = r.repo.SearchLexicalWithScore(gctx, trimmed, r.config.TopK)
		if err != nil {
			return fmt.Errorf("lexical search failed: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		r.logger.Error("search", "hybrid search failed", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, err
	}

	merged := fuse(vecResults, lexResults, r.config)

	r.logger.Debug("search", "query resolved", map[string]interface{}{
		"vector_candidates":  len(vecResults),
		"lexical_candidates": len(lexResults),
		"merged":             len(merged),
	})

	return merged, nil
}

// queryEmbedding embeds the query, reusing a cached vector for repeated
// queries. Embeddings are pure functions of the text for a fixed model, so
// TTL-bounded reuse is safe.
func (r *Resolver) queryEmbedding(ctx context.Context, query string) ([]float32, error) {
	if cached, found := r.embedCache.Get(query); found {
		return cached.([]float32), nil
	}

	vector, err := r.provider.Generate(ctx, query, "RETRIEVAL_QUERY")
	if err != nil {
		return nil, err
	}

	r.embedCache.Set(query, vector, gocache.DefaultExpiration)
	return vector, nil
}
