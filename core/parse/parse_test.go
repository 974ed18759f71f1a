package parse

import (
	"errors"
	"testing"
)

type sections struct {
	Overview    string `json:"overview"`
	MissingData string `json:"missing-data"`
}

func TestParseStringAs_ValidJSON(t *testing.T) {
	parsed, err := ParseStringAs[sections](`{"overview":"ok","missing-data":"none"}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if parsed.Overview != "ok" || parsed.MissingData != "none" {
		t.Errorf("unexpected result %+v", parsed)
	}
}

func TestParseStringAs_RecoversLLMArtifacts(t *testing.T) {
	testCases := []struct {
		name    string
		content string
	}{
		{"markdown fence with prose", "Here is the report:\n```json\n{\"overview\": \"ok\"}\n```\nHope it helps."},
		{"trailing comma", `{"overview": "ok",}`},
		{"single quotes", `{'overview': 'ok'}`},
		{"prose around object", `Sure! {"overview": "ok"} Let me know.`},
		{"truncated object", `{"overview": "ok"`},
		{"schema envelope", `{"overview": {"type": "string", "value": "ok"}}`},
	}

	for _, recoveryCase := range testCases {
		t.Run(recoveryCase.name, func(t *testing.T) {
			parsed, err := ParseStringAs[sections](recoveryCase.content)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if parsed.Overview != "ok" {
				t.Errorf("expected overview 'ok', got %+v", parsed)
			}
		})
	}
}

func TestParseStringAs_MapTarget(t *testing.T) {
	parsed, err := ParseStringAs[map[string]string](`{"outliers": "two columns"}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if parsed["outliers"] != "two columns" {
		t.Errorf("unexpected map %v", parsed)
	}
}

func TestParseStringAs_NoJSON(t *testing.T) {
	_, err := ParseStringAs[sections]("I am unable to produce a report right now.")
	if !errors.Is(err, ErrNoJSON) {
		t.Errorf("expected ErrNoJSON, got %v", err)
	}
}

func TestParseStringAs_ArrayIntoStructFails(t *testing.T) {
	if _, err := ParseStringAs[sections](`["overview", "ok"]`); err == nil {
		t.Errorf("expected an error decoding an array into a struct")
	}
}

func TestExtractJSONCandidate(t *testing.T) {
	testCases := []struct {
		content  string
		expected string
		found    bool
	}{
		{`{"a":1}`, `{"a":1}`, true},
		{"```\n[1,2]\n```", `[1,2]`, true},
		{`text {"a":{"b":1}} more`, `{"a":{"b":1}}`, true},
		{`no json`, ``, false},
	}

	for _, candidateCase := range testCases {
		candidate, found := ExtractJSONCandidate(candidateCase.content)
		if found != candidateCase.found || candidate != candidateCase.expected {
			t.Errorf("ExtractJSONCandidate(%q) = %q, %v; expected %q, %v", candidateCase.content, candidate, found, candidateCase.expected, candidateCase.found)
		}
	}
}
