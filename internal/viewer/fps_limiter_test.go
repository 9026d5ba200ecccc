package viewer

import (
	"testing"
	"time"
)

func TestLimiterPacesFrames(t *testing.T) {
	f := &fpsLimiter{}

	// First call establishes the schedule; subsequent calls must each
	// consume roughly one frame period.
	start := time.Now()
	f.Wait(50)
	f.Wait(50)
	elapsed := time.Since(start)

	// Two 20ms periods, with generous slack for CI schedulers.
	if elapsed < 30*time.Millisecond {
		t.Errorf("Expected at least ~40ms of pacing, got %v", elapsed)
	}
}

func TestLimiterDisabled(t *testing.T) {
	f := &fpsLimiter{next: time.Now().Add(time.Hour)}

	start := time.Now()
	f.Wait(0)
	if time.Since(start) > 50*time.Millisecond {
		t.Error("Expected Wait(0) to return immediately")
	}
	if !f.next.IsZero() {
		t.Error("Expected schedule reset when pacing is disabled")
	}
}

func TestLimiterResyncsAfterHitch(t *testing.T) {
	f := &fpsLimiter{}
	f.Wait(100)

	// Simulate a long hitch: the next deadline is far in the past.
	f.next = time.Now().Add(-time.Second)

	start := time.Now()
	f.Wait(100)
	if time.Since(start) > 50*time.Millisecond {
		t.Error("Expected no catch-up stall after a hitch")
	}
	if time.Until(f.next) > 15*time.Millisecond {
		t.Error("Expected the schedule to resync near now after a hitch")
	}
}
