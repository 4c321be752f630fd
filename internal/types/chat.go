package types

// ChatMessage is one turn of the assistant conversation.
type ChatMessage struct {
	Role    string `json:"role"` // "system", "user" or "assistant"
	Content string `json:"content"`
}

// ChatRequest is the body for POST /api/chat.
type ChatRequest struct {
	SessionID string        `json:"session_id"`
	Messages  []ChatMessage `json:"messages"`
}

// ChatResponse carries the assistant reply and the session the history was
// stored under.
type ChatResponse struct {
	SessionID string `json:"session_id"`
	Answer    string `json:"answer"`
}

// ClearChatRequest is the body for POST /api/chat/clear.
type ClearChatRequest struct {
	SessionID string `json:"session_id"`
}
