package implementation

import (
	"context"

	"chat-search-be/internal/entity"
	"chat-search-be/internal/mapper"
	"chat-search-be/internal/model"
	"chat-search-be/internal/repository/contract"
	"chat-search-be/internal/repository/specification"

	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ChatMessageRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ChatMessageMapper
}

func NewChatMessageRepository(db *gorm.DB) contract.ChatMessageRepository {
	return &ChatMessageRepositoryImpl{
		db:     db,
		mapper: mapper.NewChatMessageMapper(),
	}
}

func (r *ChatMessageRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *ChatMessageRepositoryImpl) CreateBulk(ctx context.Context, messages []*entity.ChatMessage) error {
	if len(messages) == 0 {
		return nil
	}

	models := r.mapper.ToModels(messages)

	// Upsert on the deterministic primary key: a second ingest of the same
	// session rewrites its rows instead of stacking duplicates.
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"session_id", "sender", "message", "message_index", "embedding", "updated_at"}),
		}).
		Create(models).Error
	if err != nil {
		return err
	}

	for i, m := range models {
		*messages[i] = *r.mapper.ToEntity(m)
	}
	return nil
}

func (r *ChatMessageRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatMessage, error) {
	var models []*model.ChatMessage
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *ChatMessageRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	err := query.Model(&model.ChatMessage{}).Count(&count).Error
	return count, err
}

// SearchSimilarWithScore returns messages ranked by cosine similarity.
// Cosine distance in pgvector is 1 - cosine_similarity, so we select
// 1 - (embedding <=> query_vector) to get a score where higher is better.
func (r *ChatMessageRepositoryImpl) SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int) ([]*contract.ScoredChatMessage, error) {
	if limit <= 0 {
		limit = 10
	}

	type result struct {
		model.ChatMessage
		Similarity float64
	}
	var results []result

	queryVector := pgvector.NewVector(embedding)

	err := r.db.WithContext(ctx).
		Table("chat_messages").
		Select("chat_messages.*, 1 - (embedding <=> ?) as similarity", queryVector).
		Order("similarity DESC").
		Limit(limit).
		Scan(&results).Error
	if err != nil {
		return nil, err
	}

	scored := make([]*contract.ScoredChatMessage, len(results))
	for i, res := range results {
		scored[i] = &contract.ScoredChatMessage{
			Message:    r.mapper.ToEntity(&res.ChatMessage),
			Similarity: res.Similarity,
		}
	}
	return scored, nil
}

// SearchLexicalWithScore returns messages ranked by Postgres full-text
// relevance. ts_rank_cd with normalization flag 32 maps the rank into (0, 1)
// so lexical scores live on the same scale as cosine similarity.
func (r *ChatMessageRepositoryImpl) SearchLexicalWithScore(ctx context.Context, query string, limit int) ([]*contract.ScoredChatMessage, error) {
	if limit <= 0 {
		limit = 10
	}

	type result struct {
		model.ChatMessage
		Similarity float64
	}
	var results []result

	err := r.db.WithContext(ctx).
		Table("chat_messages").
		Select("chat_messages.*, ts_rank_cd(to_tsvector('english', message), plainto_tsquery('english', ?), 32) as similarity", query).
		Where("to_tsvector('english', message) @@ plainto_tsquery('english', ?)", query).
		Order("similarity DESC").
		Limit(limit).
		Scan(&results).Error
	if err != nil {
		return nil, err
	}

	scored := make([]*contract.ScoredChatMessage, len(results))
	for i, res := range results {
		scored[i] = &contract.ScoredChatMessage{
			Message:    r.mapper.ToEntity(&res.ChatMessage),
			Similarity: res.Similarity,
		}
	}
	return scored, nil
}
