package llm

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrEmptyOutput is returned when a provider answers with no text.
var ErrEmptyOutput = errors.New("llm: empty output")

// APIError represents an error returned by an LLM provider API.
type APIError struct {
	// Provider is the name of the LLM provider (e.g., "openai", "gemini").
	Provider string
	// StatusCode is the HTTP status code returned by the API.
	StatusCode int
	// Message is the error message from the API.
	Message string
	// Type is the error type classification from the API.
	Type string
	// Code is the provider-specific error code (if available).
	Code string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Type != "" {
		return fmt.Sprintf("%s: API error (status %d, type %s): %s", e.Provider, e.StatusCode, e.Type, e.Message)
	}
	return fmt.Sprintf("%s: API error (status %d): %s", e.Provider, e.StatusCode, e.Message)
}

// IsTransient returns true for rate limiting (429), server errors (5xx), and
// network errors (StatusCode 0 indicates no HTTP response was received).
// Nothing in this service retries; the flag labels metrics and logs.
func (e *APIError) IsTransient() bool {
	return e.StatusCode == 0 ||
		e.StatusCode == http.StatusTooManyRequests ||
		e.StatusCode >= 500
}

// IsTransient reports whether err wraps a transient *APIError.
func IsTransient(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.IsTransient()
}

// ErrorClass returns a short label for metrics: "transient", "permanent",
// "empty", or "other".
func ErrorClass(err error) string {
	var apiErr *APIError
	switch {
	case errors.As(err, &apiErr) && apiErr.IsTransient():
		return "transient"
	case errors.As(err, &apiErr):
		return "permanent"
	case errors.Is(err, ErrEmptyOutput):
		return "empty"
	default:
		return "other"
	}
}
