package retry

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/leofalp/edaflow/core/failure"
)

// fastPolicy keeps backoff waits in the low-millisecond range.
func fastPolicy(maxRetries int) Policy {
	return Policy{
		MaxRetries:     maxRetries,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     2 * time.Millisecond,
	}
}

func TestDo_SucceedsFirstAttempt(t *testing.T) {
	var calls atomic.Int32
	err := Do(context.Background(), fastPolicy(3), func(context.Context) error {
		calls.Add(1)
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls.Load() != 1 {
		t.Errorf("expected 1 call, got %d", calls.Load())
	}
}

func TestDo_RetriesTransientUntilSuccess(t *testing.T) {
	var calls atomic.Int32
	err := Do(context.Background(), fastPolicy(3), func(context.Context) error {
		if calls.Add(1) < 3 {
			return failure.Transient(errors.New("busy"))
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls.Load() != 3 {
		t.Errorf("expected 3 calls, got %d", calls.Load())
	}
}

func TestDo_ExhaustsBudget(t *testing.T) {
	var calls atomic.Int32
	rootCause := errors.New("still busy")

	err := Do(context.Background(), fastPolicy(2), func(context.Context) error {
		calls.Add(1)
		return failure.Transient(rootCause)
	})

	if !errors.Is(err, ErrRetryExhausted) {
		t.Fatalf("expected ErrRetryExhausted, got %v", err)
	}
	if !errors.Is(err, rootCause) {
		t.Errorf("exhaustion error must wrap the root cause, got %v", err)
	}
	if calls.Load() != 3 {
		t.Errorf("expected 1 attempt + 2 retries = 3 calls, got %d", calls.Load())
	}
}

func TestDo_NonRetryableStopsImmediately(t *testing.T) {
	var calls atomic.Int32
	permanent := errors.New("bad input")

	err := Do(context.Background(), fastPolicy(5), func(context.Context) error {
		calls.Add(1)
		return permanent
	})

	if !errors.Is(err, permanent) {
		t.Fatalf("expected the permanent error, got %v", err)
	}
	if errors.Is(err, ErrRetryExhausted) {
		t.Errorf("non-retryable failures must not report exhaustion")
	}
	if calls.Load() != 1 {
		t.Errorf("expected exactly 1 call, got %d", calls.Load())
	}
}

func TestDo_DisabledPolicyRunsOnce(t *testing.T) {
	var calls atomic.Int32
	err := Do(context.Background(), Disabled, func(context.Context) error {
		calls.Add(1)
		return failure.Transient(errors.New("busy"))
	})
	if err == nil {
		t.Fatalf("expected an error")
	}
	if calls.Load() != 1 {
		t.Errorf("expected 1 call with retries disabled, got %d", calls.Load())
	}
}

func TestDo_CancellationDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	policy := Policy{MaxRetries: 5, InitialBackoff: time.Hour, MaxBackoff: time.Hour}

	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	err := Do(ctx, policy, func(context.Context) error {
		return failure.Transient(errors.New("busy"))
	})

	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if time.Since(start) > 5*time.Second {
		t.Errorf("cancellation must interrupt the backoff wait")
	}
}

func TestDo_OnRetryHook(t *testing.T) {
	var hookCalls atomic.Int32
	policy := fastPolicy(2)
	policy.OnRetry = func(attempt int, err error, wait time.Duration) {
		hookCalls.Add(1)
		if wait <= 0 {
			t.Errorf("expected positive wait, got %v", wait)
		}
	}

	_ = Do(context.Background(), policy, func(context.Context) error {
		return failure.Transient(errors.New("busy"))
	})

	if hookCalls.Load() != 2 {
		t.Errorf("expected OnRetry before each of 2 retries, got %d", hookCalls.Load())
	}
}
