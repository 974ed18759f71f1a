// Package middleware provides the send middlewares used around LLM calls.
//
//   - [NewRetryMiddleware] retries rate-limited and timed-out calls with
//     exponential backoff and jitter (core/retry).
//   - [NewTimeoutMiddleware] bounds each attempt with context.WithTimeout.
//   - [NewLoggingMiddleware] emits slog records around every call.
//
// Middlewares execute outermost-first. The narrative agent uses
//
//	client.WithMiddleware(
//	    middleware.NewLoggingMiddleware(logger, middleware.LogLevelStandard),
//	    middleware.NewRetryMiddleware(middleware.RetryConfig{MaxRetries: 3}),
//	    middleware.NewTimeoutMiddleware(30*time.Second),
//	)
//
// so a request travels Logging → Retry → Timeout → Provider and every retry
// gets a fresh per-attempt deadline.
package middleware
