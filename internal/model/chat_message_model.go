package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

type ChatMessage struct {
	Id           uuid.UUID       `gorm:"type:uuid;primaryKey"`
	SessionId    string          `gorm:"type:varchar(255);not null;index"`
	Sender       string          `gorm:"type:varchar(32);not null"`
	Message      string          `gorm:"type:text;not null"`
	MessageIndex int             `gorm:"default:0"` // ordinal of the message within its session
	Embedding    pgvector.Vector `gorm:"type:vector(768)"` // Gemini text-embedding-004 uses 768 dimensions
	CreatedAt    time.Time       `gorm:"autoCreateTime"`
	UpdatedAt    time.Time       `gorm:"autoUpdateTime"`
}

func (ChatMessage) TableName() string {
	return "chat_messages"
}
