package http

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"finai/internal/delivery/http/dto"
	"finai/internal/domain"
	"finai/internal/middleware"
	"finai/internal/usecase"
)

// Chat is the session logic used by ChatHandler
type Chat interface {
	CreateSession(ctx context.Context, userID uuid.UUID) (*domain.ChatSession, error)
	PostMessage(ctx context.Context, ref domain.SessionRef, userID uuid.UUID, text string) (*domain.ChatReply, error)
	History(ctx context.Context, sessionID, userID uuid.UUID) ([]*domain.ChatMessage, error)
	IngestDocument(ctx context.Context, sessionID, userID uuid.UUID, filename string, data []byte) error
	Ask(ctx context.Context, text string) (*domain.ChatReply, error)
}

// ChatHandler handles the chatbot endpoints
type ChatHandler struct {
	chat    Chat
	timeout time.Duration
}

// NewChatHandler creates a new ChatHandler
func NewChatHandler(chat Chat, timeout time.Duration) *ChatHandler {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &ChatHandler{chat: chat, timeout: timeout}
}

// CreateSession starts a new chat session
// POST /api/chatbot/session
func (h *ChatHandler) CreateSession(c echo.Context) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return UnauthorizedResponse(c, "Unauthorized")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	session, err := h.chat.CreateSession(ctx, userID)
	if err != nil {
		return ServerErrorResponse(c, err)
	}
	return CreatedResponse(c, dto.SessionOutput{SessionID: session.ID.String()})
}

// Chat posts a message to a session, creating one when no session_id is given
// POST /api/chatbot/chat
func (h *ChatHandler) Chat(c echo.Context) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return UnauthorizedResponse(c, "Unauthorized")
	}

	var req dto.ChatRequest
	if err := c.Bind(&req); err != nil {
		return BadRequestResponse(c, "Invalid request payload")
	}

	ref := domain.NewSession()
	if req.SessionID != "" {
		id, err := uuid.Parse(req.SessionID)
		if err != nil {
			return BadRequestResponse(c, "Invalid session_id")
		}
		ref = domain.ExistingSession(id)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	reply, err := h.chat.PostMessage(ctx, ref, userID, req.Message)
	if err != nil {
		return ServerErrorResponse(c, err)
	}

	c.Response().Header().Set(DataSourceHeader, reply.Source)
	return SuccessResponse(c, dto.ChatOutput{Response: reply.Response, SessionID: reply.SessionID.String()})
}

// History returns the conversational messages of a session
// GET /api/chatbot/history/:session_id
func (h *ChatHandler) History(c echo.Context) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return UnauthorizedResponse(c, "Unauthorized")
	}

	sessionID, err := uuid.Parse(c.Param("session_id"))
	if err != nil {
		return BadRequestResponse(c, "Invalid session_id")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	messages, err := h.chat.History(ctx, sessionID, userID)
	if err != nil {
		return ServerErrorResponse(c, err)
	}
	return SuccessResponse(c, messages)
}

// Upload ingests a PDF into a session as context for later messages
// POST /api/chatbot/upload
func (h *ChatHandler) Upload(c echo.Context) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return UnauthorizedResponse(c, "Unauthorized")
	}

	sessionID, err := uuid.Parse(strings.TrimSpace(c.FormValue("session_id")))
	if err != nil {
		return BadRequestResponse(c, "No session ID provided")
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return BadRequestResponse(c, "No file part")
	}
	if fileHeader.Size > usecase.MaxUploadSize {
		return BadRequestResponse(c, fmt.Sprintf("File exceeds %d MB limit", usecase.MaxUploadSize>>20))
	}

	file, err := fileHeader.Open()
	if err != nil {
		return ErrorResponse(c, http.StatusInternalServerError, "Failed to read uploaded file")
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, usecase.MaxUploadSize+1))
	if err != nil {
		return ErrorResponse(c, http.StatusInternalServerError, "Failed to read uploaded file")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	if err := h.chat.IngestDocument(ctx, sessionID, userID, fileHeader.Filename, data); err != nil {
		return ServerErrorResponse(c, err)
	}
	return MessageResponse(c, "PDF processed successfully. You can now ask questions about its content.")
}

// Message answers a one-off question without a session
// POST /api/chatbot/message
func (h *ChatHandler) Message(c echo.Context) error {
	var req dto.MessageRequest
	if err := c.Bind(&req); err != nil {
		return BadRequestResponse(c, "Invalid request payload")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	reply, err := h.chat.Ask(ctx, req.Message)
	if err != nil {
		return AppErrorResponse(c, err)
	}

	c.Response().Header().Set(DataSourceHeader, reply.Source)
	return SuccessResponse(c, dto.ChatOutput{Response: reply.Response})
}
