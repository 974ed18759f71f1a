// Package slogobs provides an observability.Provider backed by log/slog.
// Spans and metric updates are emitted as debug records; counters and
// histogram observations are also kept in memory so callers (and tests) can
// read them back with [Observer.CounterValue] and [Observer.HistogramCount].
// The main entry point is [New]; output is tuned with [WithFormat],
// [WithLevel], [WithOutput] and [WithLogger].
package slogobs
