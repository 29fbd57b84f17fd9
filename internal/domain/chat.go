package domain

import (
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// ContextThreshold is the length, in characters, above which a non-user message
// is treated as a document dump: hidden from history and used as prompt context.
const ContextThreshold = 1000

// ChatSession is a conversation thread owned by one user
type ChatSession struct {
	ID              uuid.UUID `json:"session_id"`
	UserID          uuid.UUID `json:"-"`
	CreatedAt       time.Time `json:"created_at"`
	LastInteraction time.Time `json:"last_interaction"`
}

// ChatMessage is one entry of a session, written by the user or the assistant
type ChatMessage struct {
	ID        uuid.UUID `json:"-"`
	SessionID uuid.UUID `json:"-"`
	Body      string    `json:"message"`
	IsUser    bool      `json:"is_user"`
	CreatedAt time.Time `json:"timestamp"`
}

// IsDocumentDump reports whether the message is an ingested document rather than a conversational turn
func (m *ChatMessage) IsDocumentDump() bool {
	return !m.IsUser && utf8.RuneCountInString(m.Body) > ContextThreshold
}

// ContextExcerpt truncates the message body to the context threshold
func (m *ChatMessage) ContextExcerpt() string {
	if utf8.RuneCountInString(m.Body) <= ContextThreshold {
		return m.Body
	}
	return string([]rune(m.Body)[:ContextThreshold]) + "..."
}

// SessionRef selects the session a message is posted to: a fresh one or an existing one
type SessionRef struct {
	id       uuid.UUID
	existing bool
}

// NewSession refers to a session that will be created for the caller
func NewSession() SessionRef {
	return SessionRef{}
}

// ExistingSession refers to a previously created session
func ExistingSession(id uuid.UUID) SessionRef {
	return SessionRef{id: id, existing: true}
}

// Existing returns the referenced session id and true, or false for NewSession
func (r SessionRef) Existing() (uuid.UUID, bool) {
	return r.id, r.existing
}

// ChatReply is the assistant answer to a posted message
type ChatReply struct {
	Response  string    `json:"response"`
	SessionID uuid.UUID `json:"session_id"`
	Source    string    `json:"-"`
}
