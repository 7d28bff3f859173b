package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ByID struct {
	ID uuid.UUID
}

func (s ByID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("id = ?", s.ID)
}

type BySessionID struct {
	SessionID string
}

func (s BySessionID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("session_id = ?", s.SessionID)
}

type BySender struct {
	Sender string
}

func (s BySender) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("sender = ?", s.Sender)
}

// OrderByMessageIndex restores the original conversational order of a session.
type OrderByMessageIndex struct{}

func (s OrderByMessageIndex) Apply(db *gorm.DB) *gorm.DB {
	return db.Order("message_index ASC")
}

type Limit struct {
	Count int
}

func (s Limit) Apply(db *gorm.DB) *gorm.DB {
	return db.Limit(s.Count)
}
