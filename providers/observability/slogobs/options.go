package slogobs

import (
	"io"
	"log/slog"
	"os"
)

// Option is a functional option for configuring the Observer.
type Option func(*config)

type config struct {
	format Format
	level  slog.Level
	output io.Writer
	logger *slog.Logger
}

// WithFormat sets the log output format. Default: FormatCompact.
func WithFormat(format Format) Option {
	return func(c *config) {
		c.format = format
	}
}

// WithLevel sets the minimum log level. Default: slog.LevelInfo.
func WithLevel(level slog.Level) Option {
	return func(c *config) {
		c.level = level
	}
}

// WithOutput sets the output writer for logs. Default: os.Stderr.
func WithOutput(output io.Writer) Option {
	return func(c *config) {
		c.output = output
	}
}

// WithLogger uses an existing slog.Logger instead of building a handler.
// It takes precedence over format, level and output.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

func applyOptions(opts ...Option) *config {
	cfg := &config{
		format: FormatCompact,
		level:  slog.LevelInfo,
		output: os.Stderr,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// NewLogger builds the slog.Logger described by opts. The CLI uses it for
// the LLM logging middleware so both share one output.
func NewLogger(opts ...Option) *slog.Logger {
	cfg := applyOptions(opts...)
	if cfg.logger != nil {
		return cfg.logger
	}

	handlerOptions := &slog.HandlerOptions{Level: cfg.level}
	switch cfg.format {
	case FormatJSON:
		return slog.New(slog.NewJSONHandler(cfg.output, handlerOptions))
	case FormatText:
		return slog.New(slog.NewTextHandler(cfg.output, handlerOptions))
	default:
		return slog.New(newCompactHandler(cfg.output, cfg.level))
	}
}
