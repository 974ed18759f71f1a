package client

import (
	"context"

	"github.com/leofalp/edaflow/internal/utils"
	"github.com/leofalp/edaflow/providers/ai"
	"github.com/leofalp/edaflow/providers/observability"
)

// NewObservabilityMiddleware wraps every send with a span, a request counter
// labelled by outcome, a duration histogram and log events. The span and the
// observer are placed in the context so providers can add events to them.
func NewObservabilityMiddleware(observer observability.Provider, defaultModel string) Middleware {
	return func(next SendFunc) SendFunc {
		return func(ctx context.Context, request ai.ChatRequest) (*ai.ChatResponse, error) {
			model := request.Model
			if model == "" {
				model = defaultModel
			}

			ctx, span := observer.StartSpan(ctx, observability.SpanClientSend,
				observability.String(observability.AttrLLMModel, model),
			)
			ctx = observability.ContextWithSpan(ctx, span)
			ctx = observability.ContextWithObserver(ctx, observer)
			defer span.End()

			observer.Debug(ctx, "llm send",
				observability.String(observability.AttrLLMModel, model),
				observability.Int(observability.AttrRequestMessagesCount, len(request.Messages)),
			)

			timer := utils.NewTimer()
			response, err := next(ctx, request)
			elapsed := timer.Stop()

			observer.Histogram(observability.MetricClientRequestDuration).Record(ctx, elapsed.Seconds(),
				observability.String(observability.AttrLLMModel, model),
			)

			if err != nil {
				span.RecordError(err)
				span.SetStatus(observability.StatusError, "llm send failed")
				observer.Counter(observability.MetricClientRequestCount).Add(ctx, 1,
					observability.String(observability.AttrStatus, "error"),
					observability.String(observability.AttrLLMModel, model),
				)
				observer.Warn(ctx, "llm send failed",
					observability.Error(err),
					observability.Duration(observability.AttrDuration, elapsed),
					observability.String(observability.AttrLLMModel, model),
				)
				return nil, err
			}

			attrs := []observability.Attribute{
				observability.String(observability.AttrLLMModel, model),
				observability.String(observability.AttrLLMFinishReason, response.FinishReason),
				observability.Duration(observability.AttrDuration, elapsed),
			}
			if response.Usage != nil {
				attrs = append(attrs, observability.Int(observability.AttrLLMTokensTotal, response.Usage.TotalTokens))
			}
			span.SetAttributes(attrs...)
			span.SetStatus(observability.StatusOK, "llm send completed")
			observer.Counter(observability.MetricClientRequestCount).Add(ctx, 1,
				observability.String(observability.AttrStatus, "success"),
				observability.String(observability.AttrLLMModel, model),
			)
			observer.Info(ctx, "llm send completed", attrs...)

			return response, nil
		}
	}
}
