package melhorenvio

import (
	"errors"
	"fmt"
	"net/http"
)

// APIError represents a failed call to the Melhor Envio API.
type APIError struct {
	Code       string
	Message    string
	StatusCode int
	Retryable  bool
	Cause      error
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("melhorenvio error (%s): %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("melhorenvio error (%s): %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *APIError) Unwrap() error {
	return e.Cause
}

// Is matches another *APIError by code.
func (e *APIError) Is(target error) bool {
	t, ok := target.(*APIError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewAPIError creates a new APIError.
func NewAPIError(code, message string) *APIError {
	return &APIError{
		Code:    code,
		Message: message,
	}
}

// WithCause adds a cause to the error.
func (e *APIError) WithCause(err error) *APIError {
	e.Cause = err
	return e
}

// WithStatusCode adds an HTTP status code to the error.
func (e *APIError) WithStatusCode(code int) *APIError {
	e.StatusCode = code
	return e
}

// WithRetryable marks the error as retryable.
func (e *APIError) WithRetryable(retryable bool) *APIError {
	e.Retryable = retryable
	return e
}

var (
	// ErrOrderNotFound indicates the order is not in the remote cart.
	ErrOrderNotFound = errors.New("order not found")

	// ErrUnauthorized indicates the token was rejected.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrServiceUnavailable indicates Melhor Envio is temporarily unavailable.
	ErrServiceUnavailable = errors.New("service unavailable")

	// ErrRateLimitExceeded indicates the API rate limit was exceeded.
	ErrRateLimitExceeded = errors.New("rate limit exceeded")

	// ErrInvalidPayload indicates the API rejected the request body.
	ErrInvalidPayload = errors.New("invalid payload")
)

// errorForStatus maps an HTTP status to an APIError carrying the matching sentinel.
func errorForStatus(status int, message string) *APIError {
	code := fmt.Sprintf("HTTP_%d", status)
	apiErr := NewAPIError(code, message).WithStatusCode(status)
	switch {
	case status == http.StatusNotFound:
		apiErr.Cause = ErrOrderNotFound
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		apiErr.Cause = ErrUnauthorized
	case status == http.StatusUnprocessableEntity || status == http.StatusBadRequest:
		apiErr.Cause = ErrInvalidPayload
	case status == http.StatusTooManyRequests:
		apiErr.Cause = ErrRateLimitExceeded
		apiErr.Retryable = true
	case status >= http.StatusInternalServerError:
		apiErr.Cause = ErrServiceUnavailable
		apiErr.Retryable = true
	}
	return apiErr
}

// IsRetryable returns true if the error is retryable.
func IsRetryable(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Retryable
	}
	return errors.Is(err, ErrServiceUnavailable) || errors.Is(err, ErrRateLimitExceeded)
}
