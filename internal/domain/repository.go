package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// UserRepository defines the interface for user data operations
type UserRepository interface {
	// Create creates a new user. Returns ErrDuplicateUser on a username or email clash.
	Create(ctx context.Context, user *User) error

	// GetByID retrieves a user by ID
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)

	// GetByUsername retrieves a user by username
	GetByUsername(ctx context.Context, username string) (*User, error)

	// GetByEmail retrieves a user by email
	GetByEmail(ctx context.Context, email string) (*User, error)
}

// LedgerStore runs ledger mutations atomically
type LedgerStore interface {
	// WithinTx runs fn in one database transaction, committing only if fn returns nil
	WithinTx(ctx context.Context, fn func(tx LedgerTx) error) error
}

// LedgerTx is the set of ledger writes available inside a transaction
type LedgerTx interface {
	// LockHolding loads and row-locks the holding for (user, symbol). Returns ErrNotFound if absent.
	LockHolding(ctx context.Context, userID uuid.UUID, symbol string) (*Holding, error)

	// InsertHolding creates a holding. Returns ErrConcurrentUpdate if another transaction created it first.
	InsertHolding(ctx context.Context, holding *Holding) error

	// UpdateHolding writes quantity, average price and last_updated
	UpdateHolding(ctx context.Context, holding *Holding) error

	// DeleteHolding removes a holding that reached zero quantity
	DeleteHolding(ctx context.Context, id uuid.UUID) error

	// AppendTransaction appends an entry to the transaction log
	AppendTransaction(ctx context.Context, transaction *Transaction) error
}

// HoldingRepository defines read access to holdings
type HoldingRepository interface {
	// ListByUser retrieves all holdings for a user
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*Holding, error)

	// ListSymbols retrieves the distinct symbols held by any user
	ListSymbols(ctx context.Context) ([]string, error)
}

// TransactionRepository defines read access to the transaction log
type TransactionRepository interface {
	// ListRecent retrieves the newest transactions for a user, newest first
	ListRecent(ctx context.Context, userID uuid.UUID, limit int) ([]*Transaction, error)
}

// ChatRepository defines the interface for chat sessions and messages
type ChatRepository interface {
	// CreateSession creates a new session
	CreateSession(ctx context.Context, session *ChatSession) error

	// GetSession retrieves a session by ID
	GetSession(ctx context.Context, id uuid.UUID) (*ChatSession, error)

	// TouchSession bumps last_interaction
	TouchSession(ctx context.Context, id uuid.UUID, at time.Time) error

	// AppendMessage stores a message
	AppendMessage(ctx context.Context, message *ChatMessage) error

	// ListMessages retrieves all messages of a session ordered by timestamp ascending
	ListMessages(ctx context.Context, sessionID uuid.UUID) ([]*ChatMessage, error)

	// LatestContextMessage retrieves the newest non-user message longer than minLength characters.
	// Returns ErrNotFound if there is none.
	LatestContextMessage(ctx context.Context, sessionID uuid.UUID, minLength int) (*ChatMessage, error)
}
