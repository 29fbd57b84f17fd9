package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"finai/internal/domain"
)

// ChatRepositoryImpl implements the ChatRepository interface
type ChatRepositoryImpl struct {
	db *pgxpool.Pool
}

// NewChatRepository creates a new ChatRepository
func NewChatRepository(db *pgxpool.Pool) domain.ChatRepository {
	return &ChatRepositoryImpl{db: db}
}

// CreateSession creates a new session
func (r *ChatRepositoryImpl) CreateSession(ctx context.Context, s *domain.ChatSession) error {
	query := `
		INSERT INTO chat_sessions (id, user_id, created_at, last_interaction)
		VALUES ($1, $2, $3, $4)
	`

	if _, err := r.db.Exec(ctx, query, s.ID, s.UserID, s.CreatedAt, s.LastInteraction); err != nil {
		return fmt.Errorf("failed to create chat session: %w", err)
	}
	return nil
}

// GetSession retrieves a session by ID
func (r *ChatRepositoryImpl) GetSession(ctx context.Context, id uuid.UUID) (*domain.ChatSession, error) {
	query := `
		SELECT id, user_id, created_at, last_interaction
		FROM chat_sessions
		WHERE id = $1
	`

	s := &domain.ChatSession{}
	err := r.db.QueryRow(ctx, query, id).Scan(&s.ID, &s.UserID, &s.CreatedAt, &s.LastInteraction)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get chat session: %w", err)
	}

	return s, nil
}

// TouchSession bumps last_interaction
func (r *ChatRepositoryImpl) TouchSession(ctx context.Context, id uuid.UUID, at time.Time) error {
	if _, err := r.db.Exec(ctx, `UPDATE chat_sessions SET last_interaction = $1 WHERE id = $2`, at, id); err != nil {
		return fmt.Errorf("failed to touch chat session: %w", err)
	}
	return nil
}

// AppendMessage stores a message
func (r *ChatRepositoryImpl) AppendMessage(ctx context.Context, m *domain.ChatMessage) error {
	query := `
		INSERT INTO chat_messages (id, session_id, message, is_user, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	if _, err := r.db.Exec(ctx, query, m.ID, m.SessionID, m.Body, m.IsUser, m.CreatedAt); err != nil {
		return fmt.Errorf("failed to append chat message: %w", err)
	}
	return nil
}

// ListMessages retrieves all messages of a session, oldest first
func (r *ChatRepositoryImpl) ListMessages(ctx context.Context, sessionID uuid.UUID) ([]*domain.ChatMessage, error) {
	query := `
		SELECT id, session_id, message, is_user, created_at
		FROM chat_messages
		WHERE session_id = $1
		ORDER BY created_at ASC, seq ASC
	`

	rows, err := r.db.Query(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query chat messages: %w", err)
	}
	defer rows.Close()

	messages := make([]*domain.ChatMessage, 0)
	for rows.Next() {
		m := &domain.ChatMessage{}
		if err := rows.Scan(&m.ID, &m.SessionID, &m.Body, &m.IsUser, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan chat message: %w", err)
		}
		messages = append(messages, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating chat messages: %w", err)
	}

	return messages, nil
}

// LatestContextMessage retrieves the newest non-user message longer than minLength characters.
// Shorter replies posted after it do not hide it.
func (r *ChatRepositoryImpl) LatestContextMessage(ctx context.Context, sessionID uuid.UUID, minLength int) (*domain.ChatMessage, error) {
	query := `
		SELECT id, session_id, message, is_user, created_at
		FROM chat_messages
		WHERE session_id = $1 AND is_user = FALSE AND char_length(message) > $2
		ORDER BY created_at DESC, seq DESC
		LIMIT 1
	`

	m := &domain.ChatMessage{}
	err := r.db.QueryRow(ctx, query, sessionID, minLength).Scan(&m.ID, &m.SessionID, &m.Body, &m.IsUser, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get context message: %w", err)
	}

	return m, nil
}
