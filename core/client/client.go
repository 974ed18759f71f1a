package client

import (
	"context"
	"errors"
	"fmt"

	"github.com/leofalp/edaflow/core/parse"
	"github.com/leofalp/edaflow/providers/ai"
	"github.com/leofalp/edaflow/providers/observability"
)

// ErrNilProvider is returned by New without a provider.
var ErrNilProvider = errors.New("client: provider is nil")

// Options holds the request defaults and middleware configuration.
type Options struct {
	Model            string
	SystemPrompt     string
	ResponseFormat   *ai.ResponseFormat
	GenerationConfig *ai.GenerationConfig
	Middlewares      []Middleware
	Observer         observability.Provider
}

// Option configures a Client.
type Option func(*Options)

// WithModel sets the model for every request.
func WithModel(model string) Option {
	return func(options *Options) {
		options.Model = model
	}
}

// WithSystemPrompt sets the system prompt for every request.
func WithSystemPrompt(prompt string) Option {
	return func(options *Options) {
		options.SystemPrompt = prompt
	}
}

// WithJSONResponse asks the provider for a JSON object reply.
func WithJSONResponse() Option {
	return func(options *Options) {
		options.ResponseFormat = &ai.ResponseFormat{Type: "json_object"}
	}
}

// WithGenerationConfig sets sampling parameters.
func WithGenerationConfig(config ai.GenerationConfig) Option {
	return func(options *Options) {
		options.GenerationConfig = &config
	}
}

// WithMiddleware appends middlewares to the send chain, outermost first.
func WithMiddleware(middlewares ...Middleware) Option {
	return func(options *Options) {
		options.Middlewares = append(options.Middlewares, middlewares...)
	}
}

// WithObserver enables tracing, metrics and logs for every send. The
// observability middleware is prepended so it sees the final outcome after
// retries.
func WithObserver(observer observability.Provider) Option {
	return func(options *Options) {
		options.Observer = observer
	}
}

// Client sends prompts to a provider through a middleware chain. It holds no
// conversation state and is safe for concurrent use.
type Client struct {
	provider ai.Provider
	options  Options
	send     SendFunc
}

// New builds a Client around provider.
func New(provider ai.Provider, opts ...Option) (*Client, error) {
	if provider == nil {
		return nil, ErrNilProvider
	}

	options := Options{}
	for _, opt := range opts {
		opt(&options)
	}

	middlewares := options.Middlewares
	if options.Observer != nil {
		middlewares = append([]Middleware{NewObservabilityMiddleware(options.Observer, options.Model)}, middlewares...)
	}

	return &Client{
		provider: provider,
		options:  options,
		send:     buildSendChain(provider, middlewares),
	}, nil
}

// Model returns the configured model.
func (c *Client) Model() string { return c.options.Model }

// SystemPrompt returns the configured system prompt.
func (c *Client) SystemPrompt() string { return c.options.SystemPrompt }

// SendMessage sends prompt as a single user message with the client defaults.
func (c *Client) SendMessage(ctx context.Context, prompt string) (*ai.ChatResponse, error) {
	return c.Send(ctx, ai.ChatRequest{
		Messages: []ai.Message{{Role: ai.RoleUser, Content: prompt}},
	})
}

// Send dispatches request through the chain, filling unset fields from the
// client defaults.
func (c *Client) Send(ctx context.Context, request ai.ChatRequest) (*ai.ChatResponse, error) {
	if request.Model == "" {
		request.Model = c.options.Model
	}
	if request.SystemPrompt == "" {
		request.SystemPrompt = c.options.SystemPrompt
	}
	if request.ResponseFormat == nil {
		request.ResponseFormat = c.options.ResponseFormat
	}
	if request.GenerationConfig == nil {
		request.GenerationConfig = c.options.GenerationConfig
	}
	return c.send(ctx, request)
}

// SendAs sends prompt and decodes the reply into T. A reply that cannot be
// decoded yields an error wrapping ai.ErrMalformedResponse; the raw response
// is returned alongside so callers can log it.
func SendAs[T any](ctx context.Context, c *Client, prompt string) (T, *ai.ChatResponse, error) {
	var zero T

	response, err := c.SendMessage(ctx, prompt)
	if err != nil {
		return zero, nil, err
	}
	if response.Refusal != "" {
		return zero, response, fmt.Errorf("%w: model refused: %s", ai.ErrMalformedResponse, response.Refusal)
	}

	parsed, err := parse.ParseStringAs[T](response.Content)
	if err != nil {
		return zero, response, fmt.Errorf("%w: %w", ai.ErrMalformedResponse, err)
	}
	return parsed, response, nil
}
