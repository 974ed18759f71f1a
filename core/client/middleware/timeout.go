package middleware

import (
	"context"
	"fmt"
	"time"

	"github.com/leofalp/edaflow/core/client"
	"github.com/leofalp/edaflow/providers/ai"
)

// NewTimeoutMiddleware bounds each call with timeout. When the deadline
// fires and the caller's own context is still live, the error is classified
// as ai.ErrTimeout so the retry middleware above can retry it.
func NewTimeoutMiddleware(timeout time.Duration) client.Middleware {
	return func(next client.SendFunc) client.SendFunc {
		return func(ctx context.Context, request ai.ChatRequest) (*ai.ChatResponse, error) {
			attemptCtx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			response, err := next(attemptCtx, request)
			if err != nil && ctx.Err() == nil && attemptCtx.Err() == context.DeadlineExceeded {
				return nil, fmt.Errorf("%w after %s: %w", ai.ErrTimeout, timeout, err)
			}
			return response, err
		}
	}
}
