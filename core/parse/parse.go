package parse

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/kaptinlin/jsonrepair"
)

// ErrNoJSON is returned when content contains no JSON object or array.
var ErrNoJSON = errors.New("parse: no JSON object or array found")

// ParseStringAs decodes the JSON object or array embedded in content into T.
//
// Steps, stopping at the first success:
//  1. isolate the candidate (inside a ``` fence if present, then from the
//     first '{' or '[' to the matching last '}' or ']')
//  2. json.Unmarshal the candidate
//  3. repair the candidate with jsonrepair and decode again
//  4. unwrap {"type": ..., "value": ...} envelopes and decode again
//
// Example:
//
//	parsed, err := ParseStringAs[map[string]string]("Sure!\n```json\n{overview: 'ok',}\n```")
func ParseStringAs[T any](content string) (T, error) {
	var result T

	candidate, found := ExtractJSONCandidate(content)
	if !found {
		return result, ErrNoJSON
	}

	err := json.Unmarshal([]byte(candidate), &result)
	if err == nil {
		return result, nil
	}

	repairedJSON, repairErr := jsonrepair.JSONRepair(candidate)
	if repairErr != nil {
		return result, fmt.Errorf("failed to unmarshal content as %T and failed to repair JSON: unmarshal error: %w, repair error: %v", result, err, repairErr)
	}

	result = *new(T)
	if err = json.Unmarshal([]byte(repairedJSON), &result); err == nil {
		return result, nil
	}

	if unwrapped, unwrapErr := unwrapSchemaValues(repairedJSON); unwrapErr == nil {
		result = *new(T)
		if unwrapErr = json.Unmarshal([]byte(unwrapped), &result); unwrapErr == nil {
			return result, nil
		}
	}

	return result, fmt.Errorf("failed to unmarshal repaired JSON as %T: %w", result, err)
}

// ExtractJSONCandidate returns the substring of content most likely to hold
// the JSON payload, and whether one was found.
func ExtractJSONCandidate(content string) (string, bool) {
	content = stripFence(strings.TrimSpace(content))

	start := strings.IndexAny(content, "{[")
	if start < 0 {
		return "", false
	}

	closer := byte('}')
	if content[start] == '[' {
		closer = ']'
	}
	end := strings.LastIndexByte(content, closer)
	if end < start {
		// Truncated output: let jsonrepair close it.
		return content[start:], true
	}
	return content[start : end+1], true
}

// stripFence returns the body of the first markdown code fence, or content
// unchanged when there is none.
func stripFence(content string) string {
	open := strings.Index(content, "```")
	if open < 0 {
		return content
	}
	body := content[open+3:]
	if newline := strings.IndexByte(body, '\n'); newline >= 0 {
		// Drop the language tag line (```json).
		body = body[newline+1:]
	}
	if closing := strings.Index(body, "```"); closing >= 0 {
		body = body[:closing]
	}
	return strings.TrimSpace(body)
}

// unwrapSchemaValues replaces {"type": ..., "value": v} envelopes with v.
//
//	{"overview": {"type": "string", "value": "ok"}} -> {"overview": "ok"}
func unwrapSchemaValues(jsonStr string) (string, error) {
	var data any
	if err := json.Unmarshal([]byte(jsonStr), &data); err != nil {
		return "", err
	}

	result, err := json.Marshal(recursiveUnwrap(data))
	if err != nil {
		return "", err
	}
	return string(result), nil
}

func recursiveUnwrap(data any) any {
	switch typed := data.(type) {
	case map[string]any:
		if _, hasType := typed["type"]; hasType {
			if value, hasValue := typed["value"]; hasValue && len(typed) == 2 {
				return recursiveUnwrap(value)
			}
		}
		result := make(map[string]any, len(typed))
		for key, value := range typed {
			result[key] = recursiveUnwrap(value)
		}
		return result

	case []any:
		result := make([]any, len(typed))
		for index, value := range typed {
			result[index] = recursiveUnwrap(value)
		}
		return result

	default:
		return data
	}
}
