package client

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/leofalp/edaflow/providers/ai"
	"github.com/leofalp/edaflow/providers/observability"
	"github.com/leofalp/edaflow/providers/observability/slogobs"
)

// mockProvider records requests and replies with a fixed response or error.
type mockProvider struct {
	mu       sync.Mutex
	requests []ai.ChatRequest
	response *ai.ChatResponse
	err      error
}

func (m *mockProvider) SendMessage(_ context.Context, request ai.ChatRequest) (*ai.ChatResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, request)
	if m.err != nil {
		return nil, m.err
	}
	if m.response != nil {
		return m.response, nil
	}
	return &ai.ChatResponse{Content: "ok", FinishReason: "stop"}, nil
}

func (m *mockProvider) WithAPIKey(string) ai.Provider           { return m }
func (m *mockProvider) WithBaseURL(string) ai.Provider          { return m }
func (m *mockProvider) WithHttpClient(*http.Client) ai.Provider { return m }

func TestNew_RejectsNilProvider(t *testing.T) {
	if _, err := New(nil); !errors.Is(err, ErrNilProvider) {
		t.Errorf("expected ErrNilProvider, got %v", err)
	}
}

func TestSendMessage_AppliesDefaults(t *testing.T) {
	provider := &mockProvider{}
	client, err := New(provider,
		WithModel("gpt-test"),
		WithSystemPrompt("persona"),
		WithJSONResponse(),
		WithGenerationConfig(ai.GenerationConfig{Temperature: 0.2}),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := client.SendMessage(context.Background(), "describe the data"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	request := provider.requests[0]
	if request.Model != "gpt-test" || request.SystemPrompt != "persona" {
		t.Errorf("expected defaults to be applied, got %+v", request)
	}
	if request.ResponseFormat == nil || request.ResponseFormat.Type != "json_object" {
		t.Errorf("expected JSON response format, got %+v", request.ResponseFormat)
	}
	if len(request.Messages) != 1 || request.Messages[0].Role != ai.RoleUser || request.Messages[0].Content != "describe the data" {
		t.Errorf("unexpected messages %+v", request.Messages)
	}
}

func TestWithMiddleware_FirstIsOutermost(t *testing.T) {
	var order []string
	tracing := func(name string) Middleware {
		return func(next SendFunc) SendFunc {
			return func(ctx context.Context, request ai.ChatRequest) (*ai.ChatResponse, error) {
				order = append(order, name+":in")
				response, err := next(ctx, request)
				order = append(order, name+":out")
				return response, err
			}
		}
	}

	client, _ := New(&mockProvider{}, WithMiddleware(tracing("outer"), tracing("inner")))
	if _, err := client.SendMessage(context.Background(), "hi"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := strings.Join(order, ","); got != "outer:in,inner:in,inner:out,outer:out" {
		t.Errorf("unexpected middleware order %s", got)
	}
}

func TestSendAs_DecodesStructuredReply(t *testing.T) {
	provider := &mockProvider{response: &ai.ChatResponse{Content: "```json\n{\"overview\": \"fine\"}\n```"}}
	client, _ := New(provider)

	parsed, response, err := SendAs[map[string]string](context.Background(), client, "prompt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if parsed["overview"] != "fine" || response == nil {
		t.Errorf("unexpected result %v / %+v", parsed, response)
	}
}

func TestSendAs_MalformedAndRefusedReplies(t *testing.T) {
	testCases := []struct {
		name     string
		response *ai.ChatResponse
	}{
		{"plain prose", &ai.ChatResponse{Content: "I cannot produce JSON today."}},
		{"refusal", &ai.ChatResponse{Refusal: "policy"}},
	}

	for _, replyCase := range testCases {
		t.Run(replyCase.name, func(t *testing.T) {
			client, _ := New(&mockProvider{response: replyCase.response})
			_, response, err := SendAs[map[string]string](context.Background(), client, "prompt")
			if !errors.Is(err, ai.ErrMalformedResponse) {
				t.Errorf("expected ErrMalformedResponse, got %v", err)
			}
			if response == nil {
				t.Errorf("expected the raw response alongside the error")
			}
		})
	}
}

func TestSendAs_PropagatesProviderErrors(t *testing.T) {
	client, _ := New(&mockProvider{err: ai.ErrRateLimited})
	_, _, err := SendAs[map[string]string](context.Background(), client, "prompt")
	if !errors.Is(err, ai.ErrRateLimited) {
		t.Errorf("expected ErrRateLimited, got %v", err)
	}
}

func TestWithObserver_RecordsOutcomes(t *testing.T) {
	observer := slogobs.New(slogobs.WithOutput(&bytes.Buffer{}))
	provider := &mockProvider{}
	client, _ := New(provider, WithObserver(observer), WithModel("gpt-test"))

	if _, err := client.SendMessage(context.Background(), "hi"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	provider.err = ai.ErrTimeout
	if _, err := client.SendMessage(context.Background(), "hi"); !errors.Is(err, ai.ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}

	if got := observer.CounterValue(observability.MetricClientRequestCount); got != 2 {
		t.Errorf("expected 2 counted requests, got %d", got)
	}
	if got := observer.HistogramCount(observability.MetricClientRequestDuration); got != 2 {
		t.Errorf("expected 2 duration observations, got %d", got)
	}
}
