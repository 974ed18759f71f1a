// Package parse extracts structured data from raw LLM text. Models wrap JSON
// in prose or markdown fences, emit trailing commas and Python constants, or
// echo schema envelopes instead of values; [ParseStringAs] isolates the JSON
// candidate, repairs it with jsonrepair and unwraps schema envelopes before
// giving up with an error wrapping [ErrNoJSON] or the decode failure.
package parse
