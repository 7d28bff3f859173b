package mapper

import (
	"time"

	"chat-search-be/internal/entity"
	"chat-search-be/internal/model"

	"github.com/pgvector/pgvector-go"
)

type ChatMessageMapper struct{}

func NewChatMessageMapper() *ChatMessageMapper {
	return &ChatMessageMapper{}
}

func (m *ChatMessageMapper) ToEntity(e *model.ChatMessage) *entity.ChatMessage {
	if e == nil {
		return nil
	}

	var updatedAt *time.Time
	if !e.UpdatedAt.IsZero() {
		t := e.UpdatedAt
		updatedAt = &t
	}

	return &entity.ChatMessage{
		Id:           e.Id,
		SessionId:    e.SessionId,
		Sender:       e.Sender,
		Message:      e.Message,
		MessageIndex: e.MessageIndex,
		Embedding:    e.Embedding.Slice(),
		CreatedAt:    e.CreatedAt,
		UpdatedAt:    updatedAt,
	}
}

func (m *ChatMessageMapper) ToModel(e *entity.ChatMessage) *model.ChatMessage {
	if e == nil {
		return nil
	}

	var updatedAt time.Time
	if e.UpdatedAt != nil {
		updatedAt = *e.UpdatedAt
	}

	return &model.ChatMessage{
		Id:           e.Id,
		SessionId:    e.SessionId,
		Sender:       e.Sender,
		Message:      e.Message,
		MessageIndex: e.MessageIndex,
		Embedding:    pgvector.NewVector(e.Embedding),
		CreatedAt:    e.CreatedAt,
		UpdatedAt:    updatedAt,
	}
}

func (m *ChatMessageMapper) ToEntities(messages []*model.ChatMessage) []*entity.ChatMessage {
	entities := make([]*entity.ChatMessage, len(messages))
	for i, e := range messages {
		entities[i] = m.ToEntity(e)
	}
	return entities
}

func (m *ChatMessageMapper) ToModels(messages []*entity.ChatMessage) []*model.ChatMessage {
	models := make([]*model.ChatMessage, len(messages))
	for i, e := range messages {
		models[i] = m.ToModel(e)
	}
	return models
}
