package ai

import (
	"context"
	"net/http"
)

// Provider is the interface every LLM provider implementation satisfies.
type Provider interface {
	// SendMessage sends a chat request and returns the completed response.
	// Errors are classified with the sentinels in errors.go.
	SendMessage(ctx context.Context, request ChatRequest) (*ChatResponse, error)

	// WithAPIKey sets the API key used for authenticating requests.
	WithAPIKey(apiKey string) Provider

	// WithBaseURL overrides the default base URL for API requests.
	WithBaseURL(baseURL string) Provider

	// WithHttpClient sets the HTTP client used for outbound requests.
	WithHttpClient(httpClient *http.Client) Provider
}
