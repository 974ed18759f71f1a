// Package narrative implements the NarrativeAgent: it turns validation,
// statistics and visualization results into natural-language insight text by
// calling a language model, and falls back to templated text whenever the
// model cannot deliver a section.
package narrative

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/leofalp/edaflow/core/client"
	"github.com/leofalp/edaflow/core/client/middleware"
	"github.com/leofalp/edaflow/core/dataset"
	"github.com/leofalp/edaflow/core/stats"
	"github.com/leofalp/edaflow/core/validation"
	"github.com/leofalp/edaflow/core/viz"
	"github.com/leofalp/edaflow/providers/ai"
	"github.com/leofalp/edaflow/providers/observability"
)

// Section names one part of the narrative.
type Section string

const (
	SectionOverview     Section = "overview"
	SectionMissingData  Section = "missing-data"
	SectionOutliers     Section = "outliers"
	SectionCorrelations Section = "correlations"
)

// Sections lists every section in report order.
var Sections = []Section{SectionOverview, SectionMissingData, SectionOutliers, SectionCorrelations}

var (
	// ErrNilProvider is returned by New without a language-model provider.
	ErrNilProvider = errors.New("narrative: provider is nil")

	// ErrDegraded is returned alongside a complete Text when at least one
	// section is fallback text. It wraps the underlying cause.
	ErrDegraded = errors.New("narrative: degraded output")
)

// SectionText is the text of one section. Degraded marks templated fallback.
type SectionText struct {
	Section  Section `json:"section"`
	Text     string  `json:"text"`
	Degraded bool    `json:"degraded"`
}

// Text is the narrative keyed by section, always in Sections order.
type Text struct {
	Sections []SectionText `json:"sections"`
}

// Section returns the text of name.
func (text *Text) Section(name Section) (SectionText, bool) {
	for _, section := range text.Sections {
		if section.Section == name {
			return section, true
		}
	}
	return SectionText{}, false
}

// Degraded reports whether any section is fallback text.
func (text *Text) Degraded() bool {
	for _, section := range text.Sections {
		if section.Degraded {
			return true
		}
	}
	return false
}

// Input is everything the narrative may draw on. Only Meta is required;
// the other inputs are nil when their stage failed.
type Input struct {
	Meta           dataset.Meta
	Validation     *validation.Result
	Summary        *stats.Summary
	Visualizations *viz.Spec
}

// Options configures the agent.
type Options struct {
	Model          string
	WordLimit      int
	MaxTokens      int
	AttemptTimeout time.Duration
	Retry          middleware.RetryConfig
	Logger         *slog.Logger
	LogLevel       middleware.LogLevel
	Observer       observability.Provider
}

// Option mutates Options.
type Option func(*Options)

// WithModel sets the model name sent with every request.
func WithModel(model string) Option {
	return func(o *Options) { o.Model = model }
}

// WithWordLimit caps the requested narrative length. Default: 250.
func WithWordLimit(words int) Option {
	return func(o *Options) { o.WordLimit = words }
}

// WithMaxTokens caps the completion size. Default: 600.
func WithMaxTokens(tokens int) Option {
	return func(o *Options) { o.MaxTokens = tokens }
}

// WithAttemptTimeout bounds each model call attempt. Default: 30s.
func WithAttemptTimeout(timeout time.Duration) Option {
	return func(o *Options) { o.AttemptTimeout = timeout }
}

// WithRetry sets the retry policy for rate-limited and timed-out calls.
func WithRetry(config middleware.RetryConfig) Option {
	return func(o *Options) { o.Retry = config }
}

// WithLogger sets the logger used by the logging middleware.
func WithLogger(logger *slog.Logger, level middleware.LogLevel) Option {
	return func(o *Options) {
		o.Logger = logger
		o.LogLevel = level
	}
}

// WithObserver records spans and metrics for each model call.
func WithObserver(observer observability.Provider) Option {
	return func(o *Options) { o.Observer = observer }
}

// Agent produces narrative text through a language model.
type Agent struct {
	client    *client.Client
	wordLimit int
}

// New builds an agent over provider. The client chain is
// logging → retry → per-attempt timeout → provider.
func New(provider ai.Provider, opts ...Option) (*Agent, error) {
	if provider == nil {
		return nil, ErrNilProvider
	}

	options := Options{
		WordLimit:      250,
		MaxTokens:      600,
		AttemptTimeout: 30 * time.Second,
		Logger:         slog.Default(),
		LogLevel:       middleware.LogLevelStandard,
	}
	for _, opt := range opts {
		opt(&options)
	}
	if options.Logger == nil {
		options.Logger = slog.Default()
	}

	clientOpts := []client.Option{
		client.WithModel(options.Model),
		client.WithSystemPrompt(SystemPrompt),
		client.WithJSONResponse(),
		client.WithGenerationConfig(ai.GenerationConfig{MaxTokens: options.MaxTokens}),
		client.WithMiddleware(
			middleware.NewLoggingMiddleware(options.Logger, options.LogLevel),
			middleware.NewRetryMiddleware(options.Retry),
			middleware.NewTimeoutMiddleware(options.AttemptTimeout),
		),
	}
	if options.Observer != nil {
		clientOpts = append(clientOpts, client.WithObserver(options.Observer))
	}

	llm, err := client.New(provider, clientOpts...)
	if err != nil {
		return nil, err
	}
	return &Agent{client: llm, wordLimit: options.WordLimit}, nil
}

// Narrate asks the model for every section. The returned Text is always
// complete; when any section had to fall back the error wraps ErrDegraded.
// Only cancellation of ctx yields a nil Text.
func (agent *Agent) Narrate(ctx context.Context, input Input) (*Text, error) {
	prompt := BuildPrompt(input, agent.wordLimit)

	reply, _, err := client.SendAs[map[string]any](ctx, agent.client, prompt)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("narrative: %w", ctxErr)
		}
		return Fallback(input), fmt.Errorf("%w: %w", ErrDegraded, err)
	}

	fallback := Fallback(input)
	text := &Text{Sections: make([]SectionText, 0, len(Sections))}
	var missing []string

	for i, section := range Sections {
		content := normalize(stringify(reply[string(section)]))
		if content == "" {
			text.Sections = append(text.Sections, fallback.Sections[i])
			missing = append(missing, string(section))
			continue
		}
		text.Sections = append(text.Sections, SectionText{Section: section, Text: content})
	}

	if len(missing) > 0 {
		return text, fmt.Errorf("%w: %w: sections missing from reply: %s",
			ErrDegraded, ai.ErrMalformedResponse, strings.Join(missing, ", "))
	}
	return text, nil
}
