package utils

import (
	"strings"
	"testing"
)

func TestTruncateString(t *testing.T) {
	if got := TruncateString("short", 10); got != "short" {
		t.Errorf("expected untouched string, got %q", got)
	}

	got := TruncateString("abcdefghij", 4)
	if !strings.HasPrefix(got, "abcd...") || !strings.Contains(got, "total: 10 chars") {
		t.Errorf("unexpected truncation %q", got)
	}

	long := strings.Repeat("x", DefaultMaxStringLength+1)
	if got := TruncateString(long, 0); !strings.HasPrefix(got, strings.Repeat("x", DefaultMaxStringLength)+"...") {
		t.Errorf("expected default length truncation, got %d bytes", len(got))
	}
}

func TestJSONToString(t *testing.T) {
	if got := JSONToString(map[string]int{"a": 1}, false); got != `{"a":1}` {
		t.Errorf("unexpected compact JSON %q", got)
	}
	if got := JSONToString(map[string]int{"a": 1}, true); got != "{\n  \"a\": 1\n}" {
		t.Errorf("unexpected indented JSON %q", got)
	}
	if got := JSONToString(make(chan int), false); !strings.Contains(got, "failed to marshal") {
		t.Errorf("expected inline marshal error, got %q", got)
	}
}
