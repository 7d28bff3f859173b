package dto

import "github.com/google/uuid"

type HybridSearchRequest struct {
	Query string `json:"query" validate:"required"`
}

// SearchResultItem is one entry of the ranked response array. Similarity is
// the fused score, higher is more relevant regardless of which path produced
// the candidate.
type SearchResultItem struct {
	Id         uuid.UUID `json:"id"`
	SessionId  string    `json:"session_id"`
	Sender     string    `json:"sender"`
	Message    string    `json:"message"`
	Similarity float64   `json:"similarity"`
}

type SessionMessageItem struct {
	Id           uuid.UUID `json:"id"`
	Sender       string    `json:"sender"`
	Message      string    `json:"message"`
	MessageIndex int       `json:"message_index"`
}
