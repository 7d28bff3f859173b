package dto

// ChatSessionLine is one line of the NDJSON export: a session id plus its
// ordered messages.
type ChatSessionLine struct {
	Id       string            `json:"id"`
	Messages []ChatMessageLine `json:"messages"`
}

type ChatMessageLine struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
