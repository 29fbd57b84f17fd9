package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"finai/internal/domain"
	"finai/internal/logger"
)

// Password bounds in bytes. bcrypt rejects input past 72 bytes.
const (
	MinPasswordLength = 6
	MaxPasswordLength = 72
)

// TokenIssuer issues bearer tokens for authenticated users
type TokenIssuer interface {
	Issue(userID uuid.UUID) (string, error)
}

// RegisterInput is the registration payload
type RegisterInput struct {
	Username string
	Email    string
	Password string
}

// AuthService handles registration, login and profile lookup
type AuthService struct {
	users  domain.UserRepository
	tokens TokenIssuer
	cost   int
	now    func() time.Time
	logger *logger.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(users domain.UserRepository, tokens TokenIssuer, log *logger.Logger) *AuthService {
	if log == nil {
		log = logger.NewSilent()
	}
	return &AuthService{
		users:  users,
		tokens: tokens,
		cost:   bcrypt.DefaultCost,
		now:    time.Now,
		logger: log,
	}
}

// Register creates a user and returns a token for it
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (string, *domain.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)

	if in.Username == "" || in.Email == "" || in.Password == "" {
		return "", nil, domain.NewValidationError("Missing required fields")
	}
	if !strings.Contains(in.Email, "@") {
		return "", nil, domain.NewValidationError("Invalid email address")
	}
	if len(in.Password) < MinPasswordLength {
		return "", nil, domain.NewValidationError(fmt.Sprintf("Password must be at least %d characters", MinPasswordLength))
	}
	if len(in.Password) > MaxPasswordLength {
		return "", nil, domain.NewValidationError(fmt.Sprintf("Password must be at most %d bytes", MaxPasswordLength))
	}

	if err := s.ensureAvailable(ctx, in.Username, in.Email); err != nil {
		return "", nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return "", nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &domain.User{
		ID:           uuid.New(),
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: string(hash),
		CreatedAt:    s.now().UTC(),
	}

	if err := s.users.Create(ctx, user); err != nil {
		// Lost a race with a concurrent registration
		if errors.Is(err, domain.ErrDuplicateUser) {
			if strings.Contains(err.Error(), "email") {
				return "", nil, domain.NewValidationError("Email already exists")
			}
			return "", nil, domain.NewValidationError("Username already exists")
		}
		return "", nil, domain.NewPersistenceError("Registration failed", err)
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return "", nil, fmt.Errorf("failed to issue token: %w", err)
	}

	s.logger.Info().Str("user_id", user.ID.String()).Str("username", user.Username).Msg("user registered")
	return token, user, nil
}

func (s *AuthService) ensureAvailable(ctx context.Context, username, email string) error {
	if _, err := s.users.GetByUsername(ctx, username); err == nil {
		return domain.NewValidationError("Username already exists")
	} else if !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("failed to check username: %w", err)
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return domain.NewValidationError("Email already exists")
	} else if !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("failed to check email: %w", err)
	}

	return nil
}

// Login verifies credentials and returns a token
func (s *AuthService) Login(ctx context.Context, username, password string) (string, *domain.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return "", nil, domain.NewValidationError("Missing username or password")
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", nil, domain.NewAuthError("Invalid username or password")
		}
		return "", nil, fmt.Errorf("failed to get user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, domain.NewAuthError("Invalid username or password")
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return "", nil, fmt.Errorf("failed to issue token: %w", err)
	}

	return token, user, nil
}

// Profile returns the user identified by userID
func (s *AuthService) Profile(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.NewNotFoundError("User not found")
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}
