package middleware

import (
	"context"
	"time"

	"github.com/leofalp/edaflow/core/client"
	"github.com/leofalp/edaflow/core/retry"
	"github.com/leofalp/edaflow/providers/ai"
)

// RetryConfig tunes the retry middleware. Zero values take the defaults of
// retry.Policy (3 retries, 1s initial, 30s cap, factor 2, 10% jitter).
type RetryConfig struct {
	// MaxRetries is the number of retries after the first attempt. Negative
	// disables retrying.
	MaxRetries int

	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	BackoffFactor  float64
	JitterFraction float64

	// RetryableFunc decides whether an error is retried. Default:
	// ai.IsRetryable (rate limits and timeouts only).
	RetryableFunc func(error) bool

	// OnRetry is called before each backoff wait.
	OnRetry func(attempt int, err error, wait time.Duration)
}

func (config RetryConfig) policy() retry.Policy {
	retryable := config.RetryableFunc
	if retryable == nil {
		retryable = ai.IsRetryable
	}
	return retry.Policy{
		MaxRetries:     config.MaxRetries,
		InitialBackoff: config.InitialBackoff,
		MaxBackoff:     config.MaxBackoff,
		BackoffFactor:  config.BackoffFactor,
		JitterFraction: config.JitterFraction,
		Retryable:      retryable,
		OnRetry:        config.OnRetry,
	}.WithDefaults()
}

// NewRetryMiddleware retries failed sends according to config. Non-retryable
// errors propagate immediately; on exhaustion the error wraps both
// ErrRetryExhausted and the last provider error.
func NewRetryMiddleware(config RetryConfig) client.Middleware {
	policy := config.policy()

	return func(next client.SendFunc) client.SendFunc {
		return func(ctx context.Context, request ai.ChatRequest) (*ai.ChatResponse, error) {
			var response *ai.ChatResponse
			err := retry.Do(ctx, policy, func(attemptCtx context.Context) error {
				var sendErr error
				response, sendErr = next(attemptCtx, request)
				return sendErr
			})
			if err != nil {
				return nil, err
			}
			return response, nil
		}
	}
}
