package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind classifies application errors for transport mapping
type ErrorKind string

// ErrorKind constants
const (
	KindValidation         ErrorKind = "VALIDATION"
	KindAuth               ErrorKind = "AUTH"
	KindNotFound           ErrorKind = "NOT_FOUND"
	KindInsufficientShares ErrorKind = "INSUFFICIENT_SHARES"
	KindPersistence        ErrorKind = "PERSISTENCE"
	KindProvider           ErrorKind = "PROVIDER"
	KindConflict           ErrorKind = "CONFLICT"
	KindInternal           ErrorKind = "INTERNAL"
)

// Sentinel errors returned by repositories and the ledger
var (
	ErrNotFound           = errors.New("not found")
	ErrDuplicateUser      = errors.New("duplicate user")
	ErrConcurrentUpdate   = errors.New("concurrent update")
	ErrInsufficientShares = &AppError{Kind: KindInsufficientShares, Message: "Insufficient shares"}
)

// AppError is an error with a kind and a message safe to show to clients
type AppError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewValidationError creates a validation error
func NewValidationError(message string) *AppError {
	return &AppError{Kind: KindValidation, Message: message}
}

// NewAuthError creates an authentication error
func NewAuthError(message string) *AppError {
	return &AppError{Kind: KindAuth, Message: message}
}

// NewNotFoundError creates a not-found error
func NewNotFoundError(message string) *AppError {
	return &AppError{Kind: KindNotFound, Message: message, Err: ErrNotFound}
}

// NewPersistenceError wraps a storage failure
func NewPersistenceError(message string, err error) *AppError {
	return &AppError{Kind: KindPersistence, Message: message, Err: err}
}

// NewProviderError wraps a remote provider failure
func NewProviderError(provider string, err error) *AppError {
	return &AppError{Kind: KindProvider, Message: provider + " request failed", Err: err}
}

// KindOf returns the kind of err, KindInternal when it carries none
func KindOf(err error) ErrorKind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	if errors.Is(err, ErrNotFound) {
		return KindNotFound
	}
	return KindInternal
}

// MessageOf returns the client-facing message for err
func MessageOf(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return "Internal server error"
}

// StatusCode maps an error kind to an HTTP status
func StatusCode(kind ErrorKind) int {
	switch kind {
	case KindValidation, KindInsufficientShares, KindPersistence:
		return http.StatusBadRequest
	case KindAuth:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindProvider:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
