package entity

import (
	"strconv"
	"time"

	"github.com/google/uuid"
)

type ChatMessage struct {
	Id           uuid.UUID
	SessionId    string
	Sender       string
	Message      string
	MessageIndex int
	Embedding    []float32
	CreatedAt    time.Time
	UpdatedAt    *time.Time
}

// chatMessageNamespace seeds deterministic record ids so re-ingesting the
// same session overwrites its rows instead of duplicating them.
var chatMessageNamespace = uuid.MustParse("7a1c9f52-3d6e-4b0a-9c1d-5e8f2b4a6c03")

// DeterministicMessageId derives a stable id from the session id and the
// message's ordinal within that session.
func DeterministicMessageId(sessionId string, messageIndex int) uuid.UUID {
	name := sessionId + "#" + strconv.Itoa(messageIndex)
	return uuid.NewSHA1(chatMessageNamespace, []byte(name))
}
