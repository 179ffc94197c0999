package errors

import (
	"fmt"
)

// BayError is the structured error type for patchbay.
// It provides rich context for error handling, logging, and user presentation.
type BayError struct {
	// Code is the unique error code (e.g., "ERR_201_CREDENTIAL_MISSING").
	Code string

	// Message is the human-readable error message.
	Message string

	// Category is the error category (Config, Credential, Upstream, etc.).
	Category Category

	// Severity is the error severity level.
	Severity Severity

	// Details contains additional context as key-value pairs.
	Details map[string]string

	// Cause is the underlying error that caused this error.
	Cause error

	// Suggestion is an actionable suggestion for the user.
	Suggestion string
}

// Error implements the error interface.
func (e *BayError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for error chain support.
func (e *BayError) Unwrap() error {
	return e.Cause
}

// Is checks if this error matches the target error by code.
// This enables errors.Is() to work with BayError.
func (e *BayError) Is(target error) bool {
	if t, ok := target.(*BayError); ok {
		return e.Code == t.Code
	}
	return false
}

// WithDetail adds a key-value detail to the error.
// Returns the error for method chaining.
func (e *BayError) WithDetail(key, value string) *BayError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// WithSuggestion adds an actionable suggestion for the user.
// Returns the error for method chaining.
func (e *BayError) WithSuggestion(suggestion string) *BayError {
	e.Suggestion = suggestion
	return e
}

// New creates a new BayError with the given code and message.
// Category and severity are derived from the code.
func New(code string, message string, cause error) *BayError {
	return &BayError{
		Code:     code,
		Message:  message,
		Category: categoryFromCode(code),
		Severity: severityFromCode(code),
		Cause:    cause,
	}
}

// Wrap creates a BayError from an existing error.
// The error's message becomes the BayError message.
func Wrap(code string, err error) *BayError {
	if err == nil {
		return nil
	}
	return New(code, err.Error(), err)
}

// ConfigError creates a configuration-related error.
func ConfigError(message string, cause error) *BayError {
	return New(ErrCodeConfigInvalid, message, cause)
}

// CredentialError creates an error for a missing connector credential.
func CredentialError(message string, cause error) *BayError {
	return New(ErrCodeCredentialMissing, message, cause)
}

// UpstreamError creates an error for a failed third-party API call.
func UpstreamError(message string, cause error) *BayError {
	return New(ErrCodeUpstreamStatus, message, cause)
}

// ValidationError creates a validation-related error.
func ValidationError(message string, cause error) *BayError {
	return New(ErrCodeInvalidInput, message, cause)
}

// InternalError creates an internal error.
func InternalError(message string, cause error) *BayError {
	return New(ErrCodeInternal, message, cause)
}

// IsFatal checks if an error has fatal severity.
// Fatal errors should abort the current operation.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	if be, ok := err.(*BayError); ok {
		return be.Severity == SeverityFatal
	}
	return false
}

// GetCode extracts the error code from a BayError.
// Returns empty string if not a BayError.
func GetCode(err error) string {
	if be, ok := err.(*BayError); ok {
		return be.Code
	}
	return ""
}

// GetCategory extracts the category from a BayError.
// Returns empty string if not a BayError.
func GetCategory(err error) Category {
	if be, ok := err.(*BayError); ok {
		return be.Category
	}
	return ""
}
