package slogobs

import (
	"log/slog"
	"strings"
)

// Format represents the output format for logs.
type Format string

const (
	// FormatCompact is a single-line format with JSON attributes.
	// Example: 2025-11-03 10:40:35  INFO stage completed {"pipeline.stage":"statistics"}
	FormatCompact Format = "compact"

	// FormatText is slog's logfmt-style text output.
	FormatText Format = "text"

	// FormatJSON is slog's JSON output, for log aggregation.
	FormatJSON Format = "json"
)

// ParseFormat parses a format string. Unknown values yield FormatCompact.
func ParseFormat(s string) Format {
	switch strings.TrimSpace(strings.ToLower(s)) {
	case "text":
		return FormatText
	case "json":
		return FormatJSON
	default:
		return FormatCompact
	}
}

// String returns the string representation of the Format.
func (f Format) String() string {
	return string(f)
}

// ParseLevel parses debug, info, warn/warning and error (case-insensitive).
// Unknown values yield slog.LevelInfo.
func ParseLevel(s string) slog.Level {
	switch strings.TrimSpace(strings.ToLower(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
