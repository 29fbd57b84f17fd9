package http

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"finai/internal/delivery/http/dto"
	"finai/internal/domain"
	"finai/internal/middleware"
	"finai/internal/usecase"
)

// AuthUsecase is the account logic used by AuthHandler
type AuthUsecase interface {
	Register(ctx context.Context, in usecase.RegisterInput) (string, *domain.User, error)
	Login(ctx context.Context, username, password string) (string, *domain.User, error)
	Profile(ctx context.Context, userID uuid.UUID) (*domain.User, error)
}

// AuthHandler handles authentication-related requests
type AuthHandler struct {
	auth     AuthUsecase
	tokenTTL time.Duration
	secure   bool
}

// NewAuthHandler creates a new AuthHandler. secure marks the token cookie HTTPS-only.
func NewAuthHandler(auth AuthUsecase, tokenTTL time.Duration, secure bool) *AuthHandler {
	return &AuthHandler{
		auth:     auth,
		tokenTTL: tokenTTL,
		secure:   secure,
	}
}

// Register handles user registration
// POST /api/auth/register
func (h *AuthHandler) Register(c echo.Context) error {
	var req dto.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return BadRequestResponse(c, "Invalid request payload")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	token, _, err := h.auth.Register(ctx, usecase.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return AppErrorResponse(c, err)
	}

	h.setTokenCookie(c, token)
	return CreatedResponse(c, dto.TokenResponse{Token: token})
}

// Login handles user login
// POST /api/auth/login
func (h *AuthHandler) Login(c echo.Context) error {
	var req dto.LoginRequest
	if err := c.Bind(&req); err != nil {
		return BadRequestResponse(c, "Invalid request payload")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	token, _, err := h.auth.Login(ctx, req.Username, req.Password)
	if err != nil {
		return AppErrorResponse(c, err)
	}

	h.setTokenCookie(c, token)
	return SuccessResponse(c, dto.TokenResponse{Token: token})
}

// Profile returns the authenticated user's profile
// GET /api/auth/profile
func (h *AuthHandler) Profile(c echo.Context) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return UnauthorizedResponse(c, "Unauthorized")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	user, err := h.auth.Profile(ctx, userID)
	if err != nil {
		return AppErrorResponse(c, err)
	}

	return SuccessResponse(c, dto.ProfileOutput{
		Username:  user.Username,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
	})
}

// Logout clears the token cookie
// POST /api/auth/logout
func (h *AuthHandler) Logout(c echo.Context) error {
	c.SetCookie(&http.Cookie{
		Name:     middleware.TokenCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secure,
		MaxAge:   -1,
	})
	return MessageResponse(c, "Logged out")
}

func (h *AuthHandler) setTokenCookie(c echo.Context, token string) {
	c.SetCookie(&http.Cookie{
		Name:     middleware.TokenCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   int(h.tokenTTL.Seconds()),
	})
}
