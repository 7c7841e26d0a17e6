// Package domain provides the request, record, and envelope types shared by
// the research assistant service, plus its error taxonomy.
package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for the request taxonomy. Every path through the pipeline
// ends in an Envelope; these exist so boundaries can decide which refusal
// reason and HTTP status to use.
var (
	// ErrPolicyRefusal indicates the classifier or the LLM declined the request.
	ErrPolicyRefusal = errors.New("policy refusal")

	// ErrConfiguration indicates a required credential or setting is missing.
	ErrConfiguration = errors.New("configuration error")

	// ErrProvider indicates an upstream metadata source failed.
	ErrProvider = errors.New("provider error")

	// ErrSchemaViolation indicates LLM output failed strict validation.
	ErrSchemaViolation = errors.New("schema violation")

	// ErrInvalidInput indicates that the input data is invalid.
	ErrInvalidInput = errors.New("invalid input")
)

// maxDetailLength bounds upstream error text that ends up in user-visible reasons.
const maxDetailLength = 220

// ValidationError represents a validation error for a specific field.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s: %s", e.Field, e.Message)
}

// Unwrap returns the underlying sentinel error for use with errors.Is.
func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

// ConfigurationError reports a missing credential or setting.
type ConfigurationError struct {
	Setting string
	Message string
}

// Error implements the error interface.
func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s: %s", e.Setting, e.Message)
}

// Unwrap returns the underlying sentinel error for use with errors.Is.
func (e *ConfigurationError) Unwrap() error {
	return ErrConfiguration
}

// ProviderError carries the provider name and underlying cause of a failed search.
type ProviderError struct {
	Provider string
	Cause    error
}

// Error implements the error interface.
func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider %s: %v", e.Provider, e.Cause)
}

// Unwrap returns the cause so errors.Is works for both the cause and ErrProvider.
func (e *ProviderError) Unwrap() []error {
	return []error{ErrProvider, e.Cause}
}

// SchemaViolationError reports LLM output that did not match the expected shape.
type SchemaViolationError struct {
	Detail string
}

// Error implements the error interface.
func (e *SchemaViolationError) Error() string {
	return "schema violation: " + e.Detail
}

// Unwrap returns the underlying sentinel error for use with errors.Is.
func (e *SchemaViolationError) Unwrap() error {
	return ErrSchemaViolation
}

// PolicyRefusalError carries the human-readable reason for a refusal.
type PolicyRefusalError struct {
	Reason string
}

// Error implements the error interface.
func (e *PolicyRefusalError) Error() string {
	return "refused: " + e.Reason
}

// Unwrap returns the underlying sentinel error for use with errors.Is.
func (e *PolicyRefusalError) Unwrap() error {
	return ErrPolicyRefusal
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// NewConfigurationError creates a new ConfigurationError.
func NewConfigurationError(setting, message string) *ConfigurationError {
	return &ConfigurationError{
		Setting: setting,
		Message: message,
	}
}

// NewProviderError creates a new ProviderError.
func NewProviderError(provider string, cause error) *ProviderError {
	return &ProviderError{
		Provider: provider,
		Cause:    cause,
	}
}

// NewSchemaViolationError creates a new SchemaViolationError with the detail truncated.
func NewSchemaViolationError(detail string) *SchemaViolationError {
	return &SchemaViolationError{Detail: TruncateDetail(detail)}
}

// NewPolicyRefusalError creates a new PolicyRefusalError.
func NewPolicyRefusalError(reason string) *PolicyRefusalError {
	return &PolicyRefusalError{Reason: reason}
}

// TruncateDetail shortens upstream error text before it reaches a user.
func TruncateDetail(s string) string {
	r := []rune(s)
	if len(r) <= maxDetailLength {
		return s
	}
	return string(r[:maxDetailLength])
}
