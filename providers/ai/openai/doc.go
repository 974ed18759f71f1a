// Package openai implements [ai.Provider] for OpenAI-compatible
// /v1/chat/completions endpoints (OpenAI, Azure, Ollama, OpenRouter and
// similar). HTTP failures are mapped onto the ai error taxonomy so callers
// can tell rate limits and timeouts from malformed output.
//
// The main entry point is [New], which reads OPENAI_API_KEY and
// OPENAI_BASE_URL from the environment. Use [Provider.WithAPIKey] and
// [Provider.WithBaseURL] to override them.
package openai
