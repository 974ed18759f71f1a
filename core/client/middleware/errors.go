package middleware

import "github.com/leofalp/edaflow/core/retry"

// ErrRetryExhausted is returned by the retry middleware when every attempt
// failed with a retryable error. It wraps the last provider error as well.
var ErrRetryExhausted = retry.ErrRetryExhausted
