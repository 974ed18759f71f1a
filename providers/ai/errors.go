package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrRateLimited means the provider refused the request for quota or load
	// reasons. Retryable.
	ErrRateLimited = errors.New("ai: rate limited")

	// ErrTimeout means the request did not complete in time. Retryable.
	ErrTimeout = errors.New("ai: request timed out")

	// ErrMalformedResponse means the provider answered but the payload could
	// not be used. Not retryable.
	ErrMalformedResponse = errors.New("ai: malformed response")

	// ErrProvider covers every other provider-side failure. Not retryable.
	ErrProvider = errors.New("ai: provider error")
)

// ProviderError carries the HTTP status behind a classified failure.
// Unwrap yields the classification sentinel, so errors.Is works on it.
type ProviderError struct {
	Kind       error
	StatusCode int
	Message    string
}

func (e *ProviderError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%v (status %d): %s", e.Kind, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%v: %s", e.Kind, e.Message)
}

func (e *ProviderError) Unwrap() error { return e.Kind }

// Transient reports whether the failure is worth retrying.
func (e *ProviderError) Transient() bool {
	return errors.Is(e.Kind, ErrRateLimited) || errors.Is(e.Kind, ErrTimeout)
}

// ClassifyStatus maps an HTTP status code onto the error taxonomy.
// 429 and 503 (overloaded) are rate limits; 408 and 504 are timeouts.
func ClassifyStatus(statusCode int) error {
	switch statusCode {
	case http.StatusTooManyRequests, http.StatusServiceUnavailable:
		return ErrRateLimited
	case http.StatusRequestTimeout, http.StatusGatewayTimeout:
		return ErrTimeout
	default:
		return ErrProvider
	}
}

// NewStatusError builds a ProviderError classified from statusCode.
func NewStatusError(statusCode int, message string) *ProviderError {
	return &ProviderError{Kind: ClassifyStatus(statusCode), StatusCode: statusCode, Message: message}
}

// IsRetryable reports whether err is a rate limit or a timeout. A deadline
// hit by a per-attempt timeout counts as a timeout; cancellation does not.
func IsRetryable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	return errors.Is(err, ErrRateLimited) ||
		errors.Is(err, ErrTimeout) ||
		errors.Is(err, context.DeadlineExceeded)
}
