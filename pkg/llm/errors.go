package llm

import (
	"fmt"
	"time"
)

// APIError represents a non-success response from the LLM endpoint.
type APIError struct {
	// Endpoint is the base URL of the endpoint that returned the error.
	Endpoint string

	// StatusCode is the HTTP status code (0 if not applicable).
	StatusCode int

	// Message is the error message.
	Message string

	// Cause is the underlying error (if any).
	Cause error
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("llm endpoint %q error (status %d): %s", e.Endpoint, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("llm endpoint %q error: %s", e.Endpoint, e.Message)
}

// Unwrap returns the underlying error for error chain support.
func (e *APIError) Unwrap() error {
	return e.Cause
}

// AuthError represents an authentication failure (HTTP 401 or 403).
type AuthError struct {
	// Endpoint is the base URL that rejected the API key.
	Endpoint string

	// Message is the error message from the endpoint.
	Message string
}

// Error implements the error interface.
func (e *AuthError) Error() string {
	return fmt.Sprintf("llm endpoint %q authentication failed: %s", e.Endpoint, e.Message)
}

// RateLimitError represents a rate limit exceeded error (HTTP 429).
// It includes the retry-after duration if the endpoint provided one.
type RateLimitError struct {
	// Endpoint is the base URL that rate limited the request.
	Endpoint string

	// RetryAfter is the duration to wait before retrying (if provided).
	RetryAfter time.Duration

	// Message is the error message from the endpoint.
	Message string
}

// Error implements the error interface.
func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("llm endpoint %q rate limit exceeded (retry after %s): %s",
			e.Endpoint, e.RetryAfter, e.Message)
	}
	return fmt.Sprintf("llm endpoint %q rate limit exceeded: %s", e.Endpoint, e.Message)
}

// ParseError represents a response that could not be decoded.
type ParseError struct {
	// Endpoint is the base URL that returned the response.
	Endpoint string

	// RawResponse is the raw response body (truncated for logging).
	RawResponse string

	// Cause is the underlying decode error.
	Cause error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("llm endpoint %q returned unparseable response: %v", e.Endpoint, e.Cause)
}

// Unwrap returns the underlying error for error chain support.
func (e *ParseError) Unwrap() error {
	return e.Cause
}
