package failure

import (
	"errors"
	"fmt"
	"testing"
)

func TestIsTransient(t *testing.T) {
	base := errors.New("disk full")

	testCases := []struct {
		name     string
		err      error
		expected bool
	}{
		{name: "nil", err: nil, expected: false},
		{name: "plain", err: base, expected: false},
		{name: "marked", err: Transient(base), expected: true},
		{name: "wrapped marker", err: fmt.Errorf("stage: %w", Transient(base)), expected: true},
		{name: "joined marker", err: errors.Join(base, Transient(base)), expected: true},
		{name: "resource exhausted", err: fmt.Errorf("summarize: %w", ErrResourceExhausted), expected: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsTransient(tc.err); got != tc.expected {
				t.Errorf("IsTransient() = %v, expected %v", got, tc.expected)
			}
		})
	}
}

func TestTransient_PreservesChain(t *testing.T) {
	base := errors.New("boom")
	marked := Transient(base)

	if !errors.Is(marked, base) {
		t.Fatalf("Transient must keep the wrapped error reachable via errors.Is")
	}
	if marked.Error() != "boom" {
		t.Errorf("expected message %q, got %q", "boom", marked.Error())
	}
	if Transient(nil) != nil {
		t.Errorf("Transient(nil) must be nil")
	}
}
