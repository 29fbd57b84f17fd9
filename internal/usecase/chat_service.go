package usecase

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"finai/internal/domain"
	"finai/internal/logger"
	"finai/internal/resilient"
)

// MaxUploadSize is the largest accepted document
const MaxUploadSize = 10 << 20

// Assistant answers a message, optionally grounded in document context
type Assistant interface {
	Reply(ctx context.Context, message, documentContext string) resilient.Result[string]
}

// ChatService manages chat sessions, their messages and ingested documents
type ChatService struct {
	chats     domain.ChatRepository
	assistant Assistant
	extractor domain.DocumentExtractor
	now       func() time.Time
	logger    *logger.Logger
}

// NewChatService creates a new ChatService
func NewChatService(chats domain.ChatRepository, assistant Assistant, extractor domain.DocumentExtractor, log *logger.Logger) *ChatService {
	if log == nil {
		log = logger.NewSilent()
	}
	return &ChatService{
		chats:     chats,
		assistant: assistant,
		extractor: extractor,
		now:       time.Now,
		logger:    log,
	}
}

// CreateSession starts a new session for userID
func (s *ChatService) CreateSession(ctx context.Context, userID uuid.UUID) (*domain.ChatSession, error) {
	now := s.now().UTC()
	session := &domain.ChatSession{
		ID:              uuid.New(),
		UserID:          userID,
		CreatedAt:       now,
		LastInteraction: now,
	}

	if err := s.chats.CreateSession(ctx, session); err != nil {
		return nil, domain.NewPersistenceError("Failed to create chat session", err)
	}
	return session, nil
}

// resolveSession turns ref into a session owned by userID, creating one for NewSession
func (s *ChatService) resolveSession(ctx context.Context, ref domain.SessionRef, userID uuid.UUID) (*domain.ChatSession, error) {
	id, existing := ref.Existing()
	if !existing {
		return s.CreateSession(ctx, userID)
	}

	session, err := s.chats.GetSession(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.NewNotFoundError("Chat session not found")
		}
		return nil, domain.NewPersistenceError("Failed to load chat session", err)
	}
	// Sessions of other users are reported as missing
	if session.UserID != userID {
		return nil, domain.NewNotFoundError("Chat session not found")
	}
	return session, nil
}

// PostMessage stores the user message, answers it and stores the reply
func (s *ChatService) PostMessage(ctx context.Context, ref domain.SessionRef, userID uuid.UUID, text string) (*domain.ChatReply, error) {
	if strings.TrimSpace(text) == "" {
		return nil, domain.NewValidationError("No message provided")
	}

	session, err := s.resolveSession(ctx, ref, userID)
	if err != nil {
		return nil, err
	}

	if err := s.append(ctx, session.ID, text, true); err != nil {
		return nil, err
	}

	documentContext, err := s.documentContext(ctx, session.ID)
	if err != nil {
		return nil, err
	}

	reply := s.assistant.Reply(ctx, text, documentContext)
	if err := s.append(ctx, session.ID, reply.Data, false); err != nil {
		return nil, err
	}

	if err := s.chats.TouchSession(ctx, session.ID, s.now().UTC()); err != nil {
		s.logger.Warn().Err(err).Str("session_id", session.ID.String()).Msg("failed to update last interaction")
	}

	return &domain.ChatReply{
		Response:  reply.Data,
		SessionID: session.ID,
		Source:    string(reply.Source),
	}, nil
}

// documentContext returns the excerpt of the latest ingested document, or ""
func (s *ChatService) documentContext(ctx context.Context, sessionID uuid.UUID) (string, error) {
	msg, err := s.chats.LatestContextMessage(ctx, sessionID, domain.ContextThreshold)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", nil
		}
		return "", domain.NewPersistenceError("Failed to load chat context", err)
	}
	return msg.ContextExcerpt(), nil
}

// History returns the conversational messages of a session, hiding ingested documents
func (s *ChatService) History(ctx context.Context, sessionID, userID uuid.UUID) ([]*domain.ChatMessage, error) {
	session, err := s.resolveSession(ctx, domain.ExistingSession(sessionID), userID)
	if err != nil {
		return nil, err
	}

	messages, err := s.chats.ListMessages(ctx, session.ID)
	if err != nil {
		return nil, domain.NewPersistenceError("Failed to load chat history", err)
	}

	visible := make([]*domain.ChatMessage, 0, len(messages))
	for _, m := range messages {
		if m.IsDocumentDump() {
			continue
		}
		visible = append(visible, m)
	}
	return visible, nil
}

// IngestDocument extracts the text of a PDF and stores it as session context.
// It does not produce a reply.
func (s *ChatService) IngestDocument(ctx context.Context, sessionID, userID uuid.UUID, filename string, data []byte) error {
	if filename == "" || len(data) == 0 {
		return domain.NewValidationError("No file selected")
	}
	if !strings.EqualFold(filepath.Ext(filename), ".pdf") {
		return domain.NewValidationError("Only PDF files are supported")
	}
	if len(data) > MaxUploadSize {
		return domain.NewValidationError(fmt.Sprintf("File exceeds %d MB limit", MaxUploadSize>>20))
	}

	session, err := s.resolveSession(ctx, domain.ExistingSession(sessionID), userID)
	if err != nil {
		return err
	}

	text, err := s.extractor.ExtractText(ctx, data)
	if err != nil {
		s.logger.Warn().Err(err).Str("filename", filename).Msg("document extraction failed")
		return domain.NewValidationError("Could not extract text from PDF")
	}

	body := fmt.Sprintf("Content from uploaded PDF '%s':\n\n%s", filepath.Base(filename), text)
	if err := s.append(ctx, session.ID, body, false); err != nil {
		return err
	}

	if err := s.chats.TouchSession(ctx, session.ID, s.now().UTC()); err != nil {
		s.logger.Warn().Err(err).Str("session_id", session.ID.String()).Msg("failed to update last interaction")
	}

	s.logger.Info().
		Str("session_id", session.ID.String()).
		Str("filename", filename).
		Int("characters", len([]rune(text))).
		Msg("document ingested")
	return nil
}

// Ask answers a one-off question without storing it
func (s *ChatService) Ask(ctx context.Context, text string) (*domain.ChatReply, error) {
	if strings.TrimSpace(text) == "" {
		return nil, domain.NewValidationError("No message provided")
	}
	reply := s.assistant.Reply(ctx, text, "")
	return &domain.ChatReply{Response: reply.Data, Source: string(reply.Source)}, nil
}

func (s *ChatService) append(ctx context.Context, sessionID uuid.UUID, body string, isUser bool) error {
	msg := &domain.ChatMessage{
		ID:        uuid.New(),
		SessionID: sessionID,
		Body:      body,
		IsUser:    isUser,
		CreatedAt: s.now().UTC(),
	}
	if err := s.chats.AppendMessage(ctx, msg); err != nil {
		return domain.NewPersistenceError("Failed to save chat message", err)
	}
	return nil
}
