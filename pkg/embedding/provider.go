package embedding

import (
	"context"
	"errors"
	"fmt"
)

// ErrNoInput is returned when a batch call is made with zero texts.
var ErrNoInput = errors.New("embedding: no input texts")

// Provider generates text embeddings. Implementations own their retry and
// backoff policy; callers treat every call as atomic all-or-nothing.
type Provider interface {
	// Generate embeds a single text. taskType hints the provider about the
	// usage (RETRIEVAL_DOCUMENT vs RETRIEVAL_QUERY); providers that have no
	// such notion ignore it.
	Generate(ctx context.Context, text string, taskType string) ([]float32, error)
	// GenerateBatch embeds every text in one provider call and returns the
	// vectors in input order. A response with a different vector count than
	// the input count is an error, never a silent misalignment.
	GenerateBatch(ctx context.Context, texts []string) ([][]float32, error)
}

func validateBatchCount(got, want int) error {
	if got != want {
		return fmt.Errorf("embedding: provider returned %d vectors for %d inputs", got, want)
	}
	return nil
}
