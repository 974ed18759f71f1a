// Package ai defines the provider-agnostic types used to talk to language
// models: [Provider] for synchronous chat completions, [ChatRequest] and
// [ChatResponse] for data, and a small error taxonomy ([ErrRateLimited],
// [ErrTimeout], [ErrMalformedResponse], [ErrProvider]) that callers use to
// decide between retrying and degrading.
package ai
