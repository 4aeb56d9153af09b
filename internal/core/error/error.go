package errx

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	// SystemErrorMessage is a user-facing fallback when internal errors occur.
	SystemErrorMessage = "internal server error"
	// RedisErrorMessage describes Redis related failures.
	RedisErrorMessage = "redis operation failed"
	// RedisNotFoundMessage describes a cache miss surfaced as an error.
	RedisNotFoundMessage = "redis key not found"
	// CatalogErrorMessage describes product catalog lookup failures.
	CatalogErrorMessage = "catalog lookup failed"
	// ModelErrorMessage describes language or vision model failures.
	ModelErrorMessage = "model invocation failed"
	// SecretErrorMessage describes credential retrieval failures.
	SecretErrorMessage = "secret retrieval failed"
)

var (
	// ErrCatalogUnavailable is returned by a catalog whose backend never initialised.
	ErrCatalogUnavailable = errors.New("catalog backend not available")
	// ErrEmptyModelResponse is returned when a model answers with no usable text.
	ErrEmptyModelResponse = errors.New("model returned an empty response")
)

// AppError wraps an underlying error with an HTTP status and safe message.
type AppError struct {
	Err     error
	Status  int
	Message string
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

// Unwrap exposes the underlying error for errors.Is / errors.As support.
func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError with the provided information.
func New(err error, status int, message string) *AppError {
	return &AppError{
		Err:     err,
		Status:  status,
		Message: message,
	}
}

// WrapCatalog wraps a catalog backend error. Unavailable backends keep
// ErrCatalogUnavailable reachable through errors.Is.
func WrapCatalog(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrCatalogUnavailable) {
		return New(err, http.StatusServiceUnavailable, CatalogErrorMessage)
	}
	return New(err, http.StatusBadGateway, CatalogErrorMessage)
}

// WrapModel wraps an error returned by a language or vision model provider.
func WrapModel(err error) error {
	if err == nil {
		return nil
	}
	return New(err, http.StatusBadGateway, ModelErrorMessage)
}

// WrapSecret wraps a credential retrieval error.
func WrapSecret(err error) error {
	if err == nil {
		return nil
	}
	return New(err, http.StatusInternalServerError, SecretErrorMessage)
}

// StatusOf returns the HTTP status carried by err, or 500 when err is not an AppError.
func StatusOf(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Status
	}
	return http.StatusInternalServerError
}
