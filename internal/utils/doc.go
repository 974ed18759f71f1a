// Package utils provides low-level helpers shared by edaflow internals: a
// synchronous JSON POST used by LLM providers, string truncation for logs
// and prompts, and a wall-clock timer for stage durations.
package utils
