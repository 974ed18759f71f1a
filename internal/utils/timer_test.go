package utils

import (
	"testing"
	"time"
)

func TestTimer_StopFreezesDuration(t *testing.T) {
	timer := NewTimer()
	time.Sleep(time.Millisecond)

	first := timer.Stop()
	if first <= 0 {
		t.Fatalf("expected positive duration, got %v", first)
	}
	time.Sleep(time.Millisecond)
	if second := timer.Stop(); second != first {
		t.Errorf("expected Stop to be idempotent, got %v then %v", first, second)
	}
	if timer.Elapsed() != first {
		t.Errorf("expected Elapsed to return the frozen duration")
	}
}

func TestTimer_ElapsedWhileRunning(t *testing.T) {
	timer := NewTimer()
	time.Sleep(time.Millisecond)
	if timer.Elapsed() <= 0 {
		t.Errorf("expected running timer to report elapsed time")
	}
	if timer.StartedAt().IsZero() {
		t.Errorf("expected a start time")
	}
}
