package openai

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"strings"

	"github.com/leofalp/edaflow/internal/utils"
	"github.com/leofalp/edaflow/providers/ai"
)

const (
	defaultBaseURL          = "https://api.openai.com/v1"
	chatCompletionsEndpoint = "/chat/completions"
)

// ErrMissingAPIKey is returned by SendMessage when no key is configured.
var ErrMissingAPIKey = errors.New("openai: API key is not set")

// Provider implements ai.Provider for chat completions.
type Provider struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

var _ ai.Provider = (*Provider)(nil)

// New creates a provider configured from OPENAI_API_KEY and OPENAI_BASE_URL.
func New() *Provider {
	baseURL := os.Getenv("OPENAI_BASE_URL")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Provider{
		apiKey:  os.Getenv("OPENAI_API_KEY"),
		baseURL: baseURL,
		client:  &http.Client{},
	}
}

// WithAPIKey sets the API key for the provider
func (p *Provider) WithAPIKey(apiKey string) ai.Provider {
	p.apiKey = apiKey
	return p
}

// WithBaseURL sets the base URL for the API
func (p *Provider) WithBaseURL(baseURL string) ai.Provider {
	if baseURL != "" {
		p.baseURL = strings.TrimRight(baseURL, "/")
	}
	return p
}

// WithHttpClient sets a custom HTTP client
func (p *Provider) WithHttpClient(httpClient *http.Client) ai.Provider {
	p.client = httpClient
	return p
}

// SendMessage posts the request to /chat/completions.
func (p *Provider) SendMessage(ctx context.Context, request ai.ChatRequest) (*ai.ChatResponse, error) {
	if p.apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	_, resp, err := utils.DoPostSync[chatCompletionResponse](ctx, p.client, p.baseURL+chatCompletionsEndpoint, p.apiKey, requestToChatCompletion(request))
	if err != nil {
		return nil, classify(err)
	}

	if len(resp.Choices) == 0 {
		return nil, &ai.ProviderError{Kind: ai.ErrMalformedResponse, Message: "no choices in response"}
	}

	return chatCompletionToGeneric(*resp), nil
}

// classify maps transport and HTTP failures onto the ai error taxonomy.
func classify(err error) error {
	var statusErr *utils.StatusError
	if errors.As(err, &statusErr) {
		return fmt.Errorf("openai: %w", ai.NewStatusError(statusErr.StatusCode, utils.TruncateString(statusErr.Body, 200)))
	}

	var decodeErr *utils.DecodeError
	if errors.As(err, &decodeErr) {
		return fmt.Errorf("openai: %w", &ai.ProviderError{Kind: ai.ErrMalformedResponse, StatusCode: decodeErr.StatusCode, Message: decodeErr.Err.Error()})
	}

	if errors.Is(err, context.Canceled) {
		return err
	}

	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return fmt.Errorf("openai: %w: %w", ai.ErrTimeout, err)
	}

	return fmt.Errorf("openai: %w: %w", ai.ErrProvider, err)
}
