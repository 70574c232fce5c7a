package a2ui

import (
	"errors"
	"fmt"
	"time"
)

// ErrorCategory classifies errors by how they should be handled.
type ErrorCategory string

const (
	// ErrorConfiguration is a setup failure: an empty schema, an ambiguous or
	// missing catalog capability, an unknown catalog id, an unparsable inline
	// catalog. It is not retried and aborts session preparation.
	ErrorConfiguration ErrorCategory = "configuration"

	// ErrorInvocation is a failed UI tool call: a missing argument, malformed
	// JSON or a schema violation. It is reported back to the model as a
	// structured result, never raised into the model loop.
	ErrorInvocation ErrorCategory = "invocation"

	// ErrorTransient indicates the operation can be retried.
	// Examples: sub-agent overload, temporary network issues.
	ErrorTransient ErrorCategory = "transient"

	// ErrorPermanent indicates the error is not recoverable through retry.
	ErrorPermanent ErrorCategory = "permanent"
)

// Sentinel errors wrapped by the categorized errors below.
var (
	// ErrEmptySchema is returned when a schema to wrap or compose is empty.
	ErrEmptySchema = errors.New("A2UI schema is empty")

	// ErrCapabilitiesNotProvided is returned when the client sent no UI
	// capabilities and no default catalog is configured.
	ErrCapabilitiesNotProvided = errors.New("Client UI capabilities not provided")

	// ErrAmbiguousCatalog is returned when both a supported catalog id and an
	// inline catalog would resolve the session's catalog.
	ErrAmbiguousCatalog = errors.New("cannot set both " + SupportedCatalogIDsKey + " and " + InlineCatalogsKey + " in client UI capabilities")

	// ErrCatalogNotFound is returned when a chosen catalog id is not known locally.
	ErrCatalogNotFound = errors.New("local component catalog not found")

	// ErrInvalidInlineCatalog is returned when an inline catalog is not valid JSON.
	ErrInvalidInlineCatalog = errors.New("inline component catalog is not valid JSON")

	// ErrNoSupportedCatalog is returned when capabilities name no usable catalog.
	ErrNoSupportedCatalog = errors.New("No supported catalogs found in client UI capabilities")

	// ErrInvalidMessage is returned when a payload is not a UI message.
	ErrInvalidMessage = errors.New("invalid A2UI message")
)

// CategorizedError is an error that provides information about how it should be handled.
type CategorizedError interface {
	error
	Category() ErrorCategory
	Retryable() bool           // convenience: returns true if Category == ErrorTransient
	StatusCode() int           // HTTP status code if applicable, 0 otherwise
	RetryAfter() time.Duration // suggested retry delay from server, 0 if not available
}

// Error is a categorized error with metadata for error handling decisions.
type Error struct {
	Msg        string
	Cat        ErrorCategory
	Code       int           // HTTP status code, 0 if not applicable
	RetryDelay time.Duration // from Retry-After header, 0 if not available
	Cause      error         // underlying error
}

// Error returns the error message.
func (e *Error) Error() string {
	if e.Cause != nil {
		if e.Msg == "" {
			return e.Cause.Error()
		}
		return fmt.Sprintf("%s: %v", e.Msg, e.Cause)
	}
	return e.Msg
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Category returns the error category.
func (e *Error) Category() ErrorCategory {
	return e.Cat
}

// Retryable returns true if the error is transient and can be retried.
func (e *Error) Retryable() bool {
	return e.Cat == ErrorTransient
}

// StatusCode returns the HTTP status code, or 0 if not applicable.
func (e *Error) StatusCode() int {
	return e.Code
}

// RetryAfter returns the suggested retry delay, or 0 if not available.
func (e *Error) RetryAfter() time.Duration {
	return e.RetryDelay
}

// NewConfigurationError creates a configuration error around cause.
// msg may be empty, in which case the cause's message is used verbatim.
func NewConfigurationError(msg string, cause error) *Error {
	return &Error{
		Msg:   msg,
		Cat:   ErrorConfiguration,
		Cause: cause,
	}
}

// NewInvocationError creates a UI tool invocation error around cause.
func NewInvocationError(msg string, cause error) *Error {
	return &Error{
		Msg:   msg,
		Cat:   ErrorInvocation,
		Cause: cause,
	}
}

// NewTransientError creates a transient error that can be retried.
func NewTransientError(msg string, statusCode int, cause error) *Error {
	return &Error{
		Msg:   msg,
		Cat:   ErrorTransient,
		Code:  statusCode,
		Cause: cause,
	}
}

// NewTransientErrorWithRetry creates a transient error with a suggested retry delay.
func NewTransientErrorWithRetry(msg string, statusCode int, retryAfter time.Duration, cause error) *Error {
	return &Error{
		Msg:        msg,
		Cat:        ErrorTransient,
		Code:       statusCode,
		RetryDelay: retryAfter,
		Cause:      cause,
	}
}

// NewPermanentError creates a permanent error that should not be retried.
func NewPermanentError(msg string, statusCode int, cause error) *Error {
	return &Error{
		Msg:   msg,
		Cat:   ErrorPermanent,
		Code:  statusCode,
		Cause: cause,
	}
}

// IsConfiguration returns true if the error is categorized as a configuration error.
func IsConfiguration(err error) bool {
	return categoryOf(err) == ErrorConfiguration
}

// IsInvocation returns true if the error is categorized as a tool invocation error.
func IsInvocation(err error) bool {
	return categoryOf(err) == ErrorInvocation
}

// IsTransient returns true if the error is categorized as transient.
// It checks if the error or any wrapped error implements CategorizedError.
func IsTransient(err error) bool {
	return categoryOf(err) == ErrorTransient
}

// IsPermanent returns true if the error is categorized as permanent.
func IsPermanent(err error) bool {
	return categoryOf(err) == ErrorPermanent
}

func categoryOf(err error) ErrorCategory {
	var ce CategorizedError
	if errors.As(err, &ce) {
		return ce.Category()
	}
	return ""
}

// RetryAfterOf returns the retry delay from a categorized error, or 0.
func RetryAfterOf(err error) time.Duration {
	var ce CategorizedError
	if errors.As(err, &ce) {
		return ce.RetryAfter()
	}
	return 0
}
