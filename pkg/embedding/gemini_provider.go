package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v5"
)

const geminiModelName = "text-embedding-004"

type GeminiProvider struct {
	ApiKey   string
	client   *http.Client
	maxTries uint
}

func NewGeminiProvider(apiKey string) Provider {
	return &GeminiProvider{
		ApiKey:   apiKey,
		client:   &http.Client{Timeout: 30 * time.Second},
		maxTries: 3,
	}
}

func (p *GeminiProvider) Generate(ctx context.Context, text string, taskType string) ([]float32, error) {
	geminiReq := EmbeddingRequest{
		Model: geminiModelName,
		Content: EmbeddingRequestContent{
			Parts: []EmbeddingRequestContentPart{{Text: text}},
		},
		TaskType: taskType,
	}

	endpoint := fmt.Sprintf(
		"https://generativelanguage.googleapis.com/v1/models/%s:embedContent",
		geminiModelName,
	)

	var resEmbedding EmbeddingResponse
	if err := p.post(ctx, endpoint, geminiReq, &resEmbedding); err != nil {
		return nil, err
	}

	return resEmbedding.Embedding.Values, nil
}

func (p *GeminiProvider) GenerateBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, ErrNoInput
	}

	requests := make([]EmbeddingRequest, len(texts))
	for i, text := range texts {
		requests[i] = EmbeddingRequest{
			// batchEmbedContents wants the fully qualified model name
			Model: "models/" + geminiModelName,
			Content: EmbeddingRequestContent{
				Parts: []EmbeddingRequestContentPart{{Text: text}},
			},
			TaskType: "RETRIEVAL_DOCUMENT",
		}
	}

	endpoint := fmt.Sprintf(
		"https://generativelanguage.googleapis.com/v1/models/%s:batchEmbedContents",
		geminiModelName,
	)

	var batchRes BatchEmbeddingResponse
	if err := p.post(ctx, endpoint, BatchEmbeddingRequest{Requests: requests}, &batchRes); err != nil {
		return nil, err
	}

	if err := validateBatchCount(len(batchRes.Embeddings), len(texts)); err != nil {
		return nil, err
	}

	vectors := make([][]float32, len(batchRes.Embeddings))
	for i, e := range batchRes.Embeddings {
		vectors[i] = e.Values
	}
	return vectors, nil
}

// post sends the request with exponential backoff. Client errors (4xx) are
// permanent and not retried; transport failures and 5xx responses are.
func (p *GeminiProvider) post(ctx context.Context, endpoint string, body interface{}, out interface{}) error {
	reqJson, err := json.Marshal(body)
	if err != nil {
		return err
	}

	resBytes, err := backoff.Retry(ctx, func() ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewBuffer(reqJson))
		if err != nil {
			return nil, backoff.Permanent(err)
		}
		req.Header.Set("x-goog-api-key", p.ApiKey)
		req.Header.Set("Content-Type", "application/json")

		res, err := p.client.Do(req)
		if err != nil {
			return nil, err
		}
		defer res.Body.Close()

		resByte, err := io.ReadAll(res.Body)
		if err != nil {
			return nil, err
		}

		if res.StatusCode != http.StatusOK {
			err := fmt.Errorf("error from gemini response, code %d, body %s", res.StatusCode, string(resByte))
			if res.StatusCode >= 400 && res.StatusCode < 500 && res.StatusCode != http.StatusTooManyRequests {
				return nil, backoff.Permanent(err)
			}
			return nil, err
		}

		return resByte, nil
	}, backoff.WithBackOff(backoff.NewExponentialBackOff()), backoff.WithMaxTries(p.maxTries))
	if err != nil {
		return err
	}

	return json.Unmarshal(resBytes, out)
}
