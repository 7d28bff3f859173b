package ingest

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"

	"chat-search-be/internal/dto"
	"chat-search-be/internal/entity"
	"chat-search-be/internal/pkg/logger"
	"chat-search-be/internal/repository/contract"
	"chat-search-be/pkg/embedding"

	"github.com/panjf2000/ants/v2"
)

const defaultBatchSize = 100

// Summary aggregates the outcome of one ingestion run.
type Summary struct {
	LinesRead int
	Succeeded int
	Failed    int
}

// pendingRecord is a message waiting for its embedding.
type pendingRecord struct {
	sessionId    string
	sender       string
	message      string
	messageIndex int
}

// Pipeline streams an NDJSON session log into the corpus store. It holds at
// most one accumulating batch in memory; each full batch is embedded in a
// single provider call and persisted in a single bulk upsert. Batches are
// independent units of failure: a failed batch is counted and the stream
// continues.
type Pipeline struct {
	repo      contract.ChatMessageRepository
	provider  embedding.Provider
	batchSize int
	pool      *ants.Pool
	logger    logger.ILogger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithBatchSize overrides the number of messages embedded per provider call.
func WithBatchSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			return fmt.Errorf("ingest: batch size must be >= 1, got %d", size)
		}
		p.batchSize = size
		return nil
	}
}

// WithWorkers fans batch flushes out to a bounded worker pool. Flush order
// across batches does not matter for correctness; records carry no ordering
// dependency on each other. Default is sequential flushing.
func WithWorkers(size int) Option {
	return func(p *Pipeline) error {
		if size <= 1 {
			return nil
		}
		if p.pool != nil {
			p.pool.Release()
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.pool = pool
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.ILogger) Option {
	return func(p *Pipeline) error {
		if l != nil {
			p.logger = l
		}
		return nil
	}
}

func NewPipeline(repo contract.ChatMessageRepository, provider embedding.Provider, opts ...Option) (*Pipeline, error) {
	if repo == nil {
		return nil, fmt.Errorf("ingest: repository is required")
	}
	if provider == nil {
		return nil, fmt.Errorf("ingest: embedding provider is required")
	}

	p := &Pipeline{
		repo:      repo,
		provider:  provider,
		batchSize: defaultBatchSize,
		logger:    logger.NewNopLogger(),
	}

	for _, opt := range opts {
		if err := opt(p); err != nil {
			p.Release()
			return nil, err
		}
	}
	return p, nil
}

// Release frees the worker pool, if any.
func (p *Pipeline) Release() {
	if p.pool != nil {
		p.pool.Release()
		p.pool = nil
	}
}

// Ingest consumes the NDJSON stream to its end. One corrupt line never aborts
// the run: it is warned about, counted as failed, and skipped. Lines are read
// unbounded; session exports carry arbitrarily long messages. A reader error
// aborts with the partial summary, after flushing what already accumulated.
func (p *Pipeline) Ingest(ctx context.Context, r io.Reader) (*Summary, error) {
	summary := &Summary{}
	var mu sync.Mutex
	var wg sync.WaitGroup

	batch := make([]pendingRecord, 0, p.batchSize)

	reader := bufio.NewReader(r)
	for {
		line, readErr := reader.ReadString('\n')
		if len(line) > 0 {
			summary.LinesRead++
			batch = p.consumeLine(ctx, strings.TrimRight(line, "\r\n"), batch, summary, &mu, &wg)
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			if len(batch) > 0 {
				p.dispatch(ctx, batch, summary, &mu, &wg)
			}
			wg.Wait()
			return summary, fmt.Errorf("ingest: reading input stream: %w", readErr)
		}
	}

	if len(batch) > 0 {
		p.dispatch(ctx, batch, summary, &mu, &wg)
	}

	wg.Wait()
	return summary, nil
}

// consumeLine parses one line and appends its indexable messages to the
// batch, dispatching every time the batch fills. Returns the new batch.
func (p *Pipeline) consumeLine(ctx context.Context, line string, batch []pendingRecord, summary *Summary, mu *sync.Mutex, wg *sync.WaitGroup) []pendingRecord {
	if strings.TrimSpace(line) == "" {
		return batch
	}

	var session dto.ChatSessionLine
	if err := json.Unmarshal([]byte(line), &session); err != nil {
		p.logger.Warn("ingest", "could not parse line, skipping", map[string]interface{}{
			"line":  summary.LinesRead,
			"error": err.Error(),
		})
		mu.Lock()
		summary.Failed++
		mu.Unlock()
		return batch
	}

	for idx, msg := range session.Messages {
		// Empty content or missing role means nothing to index; it is
		// dropped silently, not counted as failed.
		if msg.Content == "" || msg.Role == "" {
			continue
		}
		batch = append(batch, pendingRecord{
			sessionId:    session.Id,
			sender:       msg.Role,
			message:      msg.Content,
			messageIndex: idx,
		})
		if len(batch) == p.batchSize {
			p.dispatch(ctx, batch, summary, mu, wg)
			batch = make([]pendingRecord, 0, p.batchSize)
		}
	}
	return batch
}

func (p *Pipeline) dispatch(ctx context.Context, batch []pendingRecord, summary *Summary, mu *sync.Mutex, wg *sync.WaitGroup) {
	if p.pool == nil {
		p.flush(ctx, batch, summary, mu)
		return
	}

	wg.Add(1)
	task := func() {
		defer wg.Done()
		p.flush(ctx, batch, summary, mu)
	}
	if err := p.pool.Submit(task); err != nil {
		// Pool rejected the task (released or overloaded); flush inline
		// rather than losing the batch.
		wg.Done()
		p.flush(ctx, batch, summary, mu)
	}
}

// flush is the atomic unit of work: one embedding call, one bulk upsert.
// Either failing marks the whole batch failed. The embedding cost of a failed
// upsert is not refunded; retries belong to the provider, not here.
func (p *Pipeline) flush(ctx context.Context, batch []pendingRecord, summary *Summary, mu *sync.Mutex) {
	texts := make([]string, len(batch))
	for i, rec := range batch {
		texts[i] = rec.message
	}

	vectors, err := p.provider.GenerateBatch(ctx, texts)
	if err != nil {
		p.logger.Error("ingest", "embedding call failed, batch dropped", map[string]interface{}{
			"batch_size": len(batch),
			"error":      err.Error(),
		})
		mu.Lock()
		summary.Failed += len(batch)
		mu.Unlock()
		return
	}
	if len(vectors) != len(batch) {
		p.logger.Error("ingest", "embedding count mismatch, batch dropped", map[string]interface{}{
			"batch_size": len(batch),
			"vectors":    len(vectors),
		})
		mu.Lock()
		summary.Failed += len(batch)
		mu.Unlock()
		return
	}

	records := make([]*entity.ChatMessage, len(batch))
	for i, rec := range batch {
		records[i] = &entity.ChatMessage{
			Id:           entity.DeterministicMessageId(rec.sessionId, rec.messageIndex),
			SessionId:    rec.sessionId,
			Sender:       rec.sender,
			Message:      rec.message,
			MessageIndex: rec.messageIndex,
			Embedding:    vectors[i],
		}
	}

	if err := p.repo.CreateBulk(ctx, records); err != nil {
		p.logger.Error("ingest", "bulk upsert failed, batch dropped", map[string]interface{}{
			"batch_size": len(batch),
			"error":      err.Error(),
		})
		mu.Lock()
		summary.Failed += len(batch)
		mu.Unlock()
		return
	}

	mu.Lock()
	summary.Succeeded += len(batch)
	mu.Unlock()

	p.logger.Info("ingest", "batch indexed", map[string]interface{}{
		"batch_size": len(batch),
	})
}
