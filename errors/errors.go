// Package errors is the module's application-error taxonomy, adapted
// from the teacher's errors/errors.go: a closed ErrorType enum, an
// AppError carrying a cause/retryability/HTTP-status mapping, and an
// AppError.CustomizeIssue hook implementing spec.md §7's "errors carrying
// a customize(issue) -> issue hook".
package errors

import (
	"context"
	"fmt"
	"net/http"

	"paratest/issue"
)

// ErrorType represents different categories of errors.
type ErrorType string

const (
	ErrTypeValidation ErrorType = "validation"
	ErrTypeExternal   ErrorType = "external_service"
	ErrTypeDatabase   ErrorType = "database"
	ErrTypeInternal   ErrorType = "internal"
	ErrTypeNetwork    ErrorType = "network"
	ErrTypeTimeout    ErrorType = "timeout"
	ErrTypeRateLimit  ErrorType = "rate_limit"
	ErrTypeAuth       ErrorType = "authentication"
	ErrTypeNotFound   ErrorType = "not_found"
	ErrTypeConflict   ErrorType = "conflict"
	// ErrTypeAPIMisuse marks errors raised by a trait or test body
	// calling into the core incorrectly (e.g. attaching a value outside
	// any running test). It customizes to issue.KindAPIMisused.
	ErrTypeAPIMisuse ErrorType = "api_misuse"
)

// AppError represents a standardized application error.
type AppError struct {
	Type       ErrorType `json:"type"`
	Code       string    `json:"code"`
	Message    string    `json:"message"`
	Details    string    `json:"details,omitempty"`
	Cause      error     `json:"-"`
	StatusCode int       `json:"-"`
	Retryable  bool      `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// IsRetryable returns whether the error should be retried.
func (e *AppError) IsRetryable() bool {
	return e.Retryable
}

// GetHTTPStatusCode returns the appropriate HTTP status code, used by
// reportserver's writeAppError when answering a bad or unknown run id
// over its HTTP API.
func (e *AppError) GetHTTPStatusCode() int {
	if e.StatusCode != 0 {
		return e.StatusCode
	}

	switch e.Type {
	case ErrTypeValidation, ErrTypeAPIMisuse:
		return http.StatusBadRequest
	case ErrTypeAuth:
		return http.StatusUnauthorized
	case ErrTypeNotFound:
		return http.StatusNotFound
	case ErrTypeConflict:
		return http.StatusConflict
	case ErrTypeRateLimit:
		return http.StatusTooManyRequests
	case ErrTypeTimeout:
		return http.StatusRequestTimeout
	case ErrTypeExternal, ErrTypeDatabase, ErrTypeNetwork:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// CustomizeIssue implements issue.Customizer (spec.md §7): a
// ErrTypeInternal/ErrTypeDatabase/ErrTypeExternal/ErrTypeNetwork/ErrTypeTimeout
// error rewrites the recorded issue's kind to issue.KindSystem; ErrTypeAPIMisuse
// rewrites it to issue.KindAPIMisused. Everything else is left as the
// caller's base issue.Kind (typically issue.KindErrorCaught).
func (e *AppError) CustomizeIssue(base issue.Issue) issue.Issue {
	switch e.Type {
	case ErrTypeAPIMisuse:
		base.Kind = issue.KindAPIMisused
	case ErrTypeInternal, ErrTypeDatabase, ErrTypeExternal, ErrTypeNetwork, ErrTypeTimeout:
		base.Kind = issue.KindSystem
	}
	base.Comments = append(base.Comments, e.Message)
	return base
}

// Error constructors for common error types.

// NewValidationError creates a validation error.
func NewValidationError(code, message string, cause error) *AppError {
	return &AppError{Type: ErrTypeValidation, Code: code, Message: message, Cause: cause, StatusCode: http.StatusBadRequest}
}

// NewExternalServiceError creates an external service error.
func NewExternalServiceError(code, message string, cause error) *AppError {
	return &AppError{Type: ErrTypeExternal, Code: code, Message: message, Cause: cause, StatusCode: http.StatusBadGateway, Retryable: true}
}

// NewDatabaseError creates a database error.
func NewDatabaseError(code, message string, cause error) *AppError {
	return &AppError{Type: ErrTypeDatabase, Code: code, Message: message, Cause: cause, StatusCode: http.StatusInternalServerError, Retryable: true}
}

// NewInternalError creates an internal error.
func NewInternalError(code, message string, cause error) *AppError {
	return &AppError{Type: ErrTypeInternal, Code: code, Message: message, Cause: cause, StatusCode: http.StatusInternalServerError}
}

// NewNetworkError creates a network error.
func NewNetworkError(code, message string, cause error) *AppError {
	return &AppError{Type: ErrTypeNetwork, Code: code, Message: message, Cause: cause, StatusCode: http.StatusBadGateway, Retryable: true}
}

// NewTimeoutError creates a timeout error.
func NewTimeoutError(code, message string, cause error) *AppError {
	return &AppError{Type: ErrTypeTimeout, Code: code, Message: message, Cause: cause, StatusCode: http.StatusRequestTimeout, Retryable: true}
}

// NewRateLimitError creates a rate limit error.
func NewRateLimitError(code, message string, cause error) *AppError {
	return &AppError{Type: ErrTypeRateLimit, Code: code, Message: message, Cause: cause, StatusCode: http.StatusTooManyRequests, Retryable: true}
}

// NewAuthError creates an authentication error.
func NewAuthError(code, message string, cause error) *AppError {
	return &AppError{Type: ErrTypeAuth, Code: code, Message: message, Cause: cause, StatusCode: http.StatusUnauthorized}
}

// NewNotFoundError creates a not found error.
func NewNotFoundError(code, message string, cause error) *AppError {
	return &AppError{Type: ErrTypeNotFound, Code: code, Message: message, Cause: cause, StatusCode: http.StatusNotFound}
}

// NewConflictError creates a conflict error.
func NewConflictError(code, message string, cause error) *AppError {
	return &AppError{Type: ErrTypeConflict, Code: code, Message: message, Cause: cause, StatusCode: http.StatusConflict}
}

// NewAPIMisuseError creates an API-misuse error, the constructor
// spec.md §3's issue kind api_misused is built from.
func NewAPIMisuseError(code, message string, cause error) *AppError {
	return &AppError{Type: ErrTypeAPIMisuse, Code: code, Message: message, Cause: cause, StatusCode: http.StatusBadRequest}
}

// Predefined error codes.
const (
	ErrCodeInvalidInput  = "INVALID_INPUT"
	ErrCodeMissingField  = "MISSING_FIELD"
	ErrCodeInvalidFormat = "INVALID_FORMAT"
	ErrCodeInvalidRange  = "INVALID_RANGE"

	ErrCodeDatabaseConnection = "DATABASE_CONNECTION_FAILED"
	ErrCodeDatabaseQuery      = "DATABASE_QUERY_FAILED"
	ErrCodeDatabaseConstraint = "DATABASE_CONSTRAINT_VIOLATION"

	ErrCodeConfigurationError = "CONFIGURATION_ERROR"
	ErrCodeSerializationError = "SERIALIZATION_ERROR"
	ErrCodeProcessingError    = "PROCESSING_ERROR"

	ErrCodeNetworkTimeout     = "NETWORK_TIMEOUT"
	ErrCodeNetworkUnavailable = "NETWORK_UNAVAILABLE"
	ErrCodeNetworkConnection  = "NETWORK_CONNECTION_FAILED"

	ErrCodeResourceNotFound = "RESOURCE_NOT_FOUND"
	ErrCodeResourceConflict = "RESOURCE_CONFLICT"
	ErrCodeResourceLocked   = "RESOURCE_LOCKED"

	ErrCodeScopeMisuse = "SCOPE_MISUSE"
)

// IsAppError checks if an error is an AppError.
func IsAppError(err error) bool {
	_, ok := err.(*AppError)
	return ok
}

// AsAppError converts an error to AppError if possible.
func AsAppError(err error) (*AppError, bool) {
	if appErr, ok := err.(*AppError); ok {
		return appErr, true
	}
	return nil, false
}

// WrapError wraps an existing error as an AppError.
func WrapError(err error, errType ErrorType, code, message string) *AppError {
	if err == nil {
		return nil
	}

	if appErr, ok := err.(*AppError); ok {
		return &AppError{Type: errType, Code: code, Message: message, Cause: appErr, Retryable: appErr.Retryable}
	}

	return &AppError{Type: errType, Code: code, Message: message, Cause: err, Retryable: isRetryableByDefault(errType)}
}

func isRetryableByDefault(errType ErrorType) bool {
	switch errType {
	case ErrTypeExternal, ErrTypeDatabase, ErrTypeNetwork, ErrTypeTimeout, ErrTypeRateLimit:
		return true
	default:
		return false
	}
}

// IsRetryable checks if an error should be retried.
func IsRetryable(err error) bool {
	if appErr, ok := AsAppError(err); ok {
		return appErr.IsRetryable()
	}

	if err == context.Canceled || err == context.DeadlineExceeded {
		return false
	}

	return false
}
