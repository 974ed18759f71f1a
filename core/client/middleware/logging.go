package middleware

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/leofalp/edaflow/core/client"
	"github.com/leofalp/edaflow/internal/utils"
	"github.com/leofalp/edaflow/providers/ai"
)

// LogLevel controls how much detail the logging middleware emits.
type LogLevel int

const (
	// LogLevelMinimal logs the model, duration and token counts.
	LogLevelMinimal LogLevel = iota

	// LogLevelStandard adds prompt sizes and the finish reason.
	LogLevelStandard

	// LogLevelVerbose adds the prompt and response text, truncated.
	//
	// WARNING: prompts include dataset column names and statistics. Do not
	// use in production.
	LogLevelVerbose
)

const truncateLen = 500

// NewLoggingMiddleware logs every model call. Retryable failures are logged
// at warn level since the retry middleware may still recover them. logger
// must not be nil.
func NewLoggingMiddleware(logger *slog.Logger, level LogLevel) client.Middleware {
	return func(next client.SendFunc) client.SendFunc {
		return func(ctx context.Context, request ai.ChatRequest) (*ai.ChatResponse, error) {
			logger.DebugContext(ctx, "llm send", requestAttrs(request, level)...)

			timer := utils.NewTimer()
			response, err := next(ctx, request)
			elapsed := timer.Stop()

			if err != nil {
				logLevel := slog.LevelError
				if ai.IsRetryable(err) {
					logLevel = slog.LevelWarn
				}
				logger.Log(ctx, logLevel, "llm send failed",
					slog.String("model", request.Model),
					slog.Duration("duration", elapsed),
					slog.String("error_class", errorClass(err)),
					slog.String("error", err.Error()),
				)
				return nil, err
			}

			logger.InfoContext(ctx, "llm send completed", responseAttrs(response, elapsed, level)...)
			return response, nil
		}
	}
}

// errorClass names the failure the way the narrative stage reports it.
func errorClass(err error) string {
	switch {
	case errors.Is(err, ai.ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, ai.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, ai.ErrMalformedResponse):
		return "malformed_response"
	case errors.Is(err, context.Canceled):
		return "cancelled"
	default:
		return "provider_error"
	}
}

func requestAttrs(request ai.ChatRequest, level LogLevel) []any {
	attrs := []any{slog.String("model", request.Model)}

	if level >= LogLevelStandard {
		promptChars := len(request.SystemPrompt)
		for _, message := range request.Messages {
			promptChars += len(message.Content)
		}
		attrs = append(attrs,
			slog.Int("message_count", len(request.Messages)),
			slog.Int("prompt_chars", promptChars),
			slog.Bool("json_response", request.ResponseFormat != nil),
		)
	}

	if level >= LogLevelVerbose && len(request.Messages) > 0 {
		last := request.Messages[len(request.Messages)-1]
		attrs = append(attrs, slog.String("prompt", utils.TruncateString(last.Content, truncateLen)))
	}

	return attrs
}

func responseAttrs(response *ai.ChatResponse, elapsed time.Duration, level LogLevel) []any {
	attrs := []any{
		slog.String("model", response.Model),
		slog.Duration("duration", elapsed),
	}

	if response.Usage != nil {
		attrs = append(attrs,
			slog.Int("prompt_tokens", response.Usage.PromptTokens),
			slog.Int("completion_tokens", response.Usage.CompletionTokens),
		)
	}

	if level >= LogLevelStandard && response.FinishReason != "" {
		attrs = append(attrs, slog.String("finish_reason", response.FinishReason))
	}

	if level >= LogLevelVerbose && response.Content != "" {
		attrs = append(attrs, slog.String("response", utils.TruncateString(response.Content, truncateLen)))
	}

	return attrs
}
