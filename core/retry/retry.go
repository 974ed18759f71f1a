// Package retry implements the bounded exponential-backoff policy shared by
// pipeline stages and the LLM client middleware.
package retry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/leofalp/edaflow/core/failure"
)

// ErrRetryExhausted is returned when every attempt failed with a retryable
// error. It wraps the last underlying error, so callers can inspect the root
// cause with [errors.Is] / [errors.As].
var ErrRetryExhausted = errors.New("edaflow: all retry attempts exhausted")

// Policy holds the tuning parameters for retries. Zero values are replaced
// with the defaults documented on each field.
type Policy struct {
	// MaxRetries is the number of retries after the first failure. A value of
	// 3 means the operation runs at most 4 times. Negative disables retries.
	// Default: 3.
	MaxRetries int

	// InitialBackoff is the wait before the first retry. Default: 1s.
	InitialBackoff time.Duration

	// MaxBackoff caps the computed wait. Default: 30s.
	MaxBackoff time.Duration

	// BackoffFactor is the growth multiplier between retries. Default: 2.0.
	BackoffFactor float64

	// JitterFraction randomizes each wait by ±JitterFraction. Default: 0.1.
	JitterFraction float64

	// Retryable decides whether an error warrants another attempt.
	// Default: [failure.IsTransient].
	Retryable func(error) bool

	// OnRetry, when set, is called before each backoff wait.
	OnRetry func(attempt int, err error, wait time.Duration)
}

// WithDefaults returns a copy of the policy with zero fields filled in.
func (policy Policy) WithDefaults() Policy {
	if policy.MaxRetries == 0 {
		policy.MaxRetries = 3
	}
	if policy.InitialBackoff == 0 {
		policy.InitialBackoff = time.Second
	}
	if policy.MaxBackoff == 0 {
		policy.MaxBackoff = 30 * time.Second
	}
	if policy.BackoffFactor == 0 {
		policy.BackoffFactor = 2.0
	}
	if policy.JitterFraction == 0 {
		policy.JitterFraction = 0.1
	}
	if policy.Retryable == nil {
		policy.Retryable = failure.IsTransient
	}
	return policy
}

// Disabled is a policy that never retries.
var Disabled = Policy{MaxRetries: -1}

func (policy Policy) schedule(ctx context.Context) backoff.BackOff {
	exponential := backoff.NewExponentialBackOff()
	exponential.InitialInterval = policy.InitialBackoff
	exponential.MaxInterval = policy.MaxBackoff
	exponential.Multiplier = policy.BackoffFactor
	exponential.RandomizationFactor = policy.JitterFraction
	exponential.MaxElapsedTime = 0
	exponential.Reset()

	retries := max(policy.MaxRetries, 0)
	return backoff.WithContext(backoff.WithMaxRetries(exponential, uint64(retries)), ctx)
}

// Do runs operation until it succeeds, fails with a non-retryable error, the
// retry budget is spent, or ctx is done. Backoff waits abort as soon as ctx is
// cancelled, in which case the context error is returned.
func Do(ctx context.Context, policy Policy, operation func(ctx context.Context) error) error {
	policy = policy.WithDefaults()

	attempts := 0
	var lastErr error

	err := backoff.RetryNotify(func() error {
		attempts++
		opErr := operation(ctx)
		if opErr == nil {
			return nil
		}
		lastErr = opErr

		if ctx.Err() != nil || !policy.Retryable(opErr) {
			return backoff.Permanent(opErr)
		}
		return opErr
	}, policy.schedule(ctx), func(notifyErr error, wait time.Duration) {
		if policy.OnRetry != nil {
			policy.OnRetry(attempts, notifyErr, wait)
		}
	})

	if err == nil {
		return nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		if lastErr != nil && !errors.Is(lastErr, ctxErr) {
			return fmt.Errorf("%w (last error: %w)", ctxErr, lastErr)
		}
		return ctxErr
	}

	if attempts > policy.MaxRetries && policy.MaxRetries > 0 && policy.Retryable(err) {
		return fmt.Errorf("%w after %d retries: %w", ErrRetryExhausted, policy.MaxRetries, err)
	}

	return err
}
