package dto

// ChatRequest represents a message posted to a session. An empty SessionID starts a new one.
type ChatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id,omitempty"`
}

// MessageRequest represents a stateless assistant question
type MessageRequest struct {
	Message string `json:"message"`
}

// SessionOutput is returned when a session is created
type SessionOutput struct {
	SessionID string `json:"session_id"`
}

// ChatOutput is the assistant reply to a posted message
type ChatOutput struct {
	Response  string `json:"response"`
	SessionID string `json:"session_id,omitempty"`
}
