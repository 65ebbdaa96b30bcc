package chat

import (
	"sync"
	"testing"
	"time"
)

type typingRecorder struct {
	mu      sync.Mutex
	signals []bool
}

func (r *typingRecorder) emit(isTyping bool) {
	r.mu.Lock()
	r.signals = append(r.signals, isTyping)
	r.mu.Unlock()
}

func (r *typingRecorder) snapshot() []bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]bool, len(r.signals))
	copy(out, r.signals)
	return out
}

func (r *typingRecorder) waitFor(t *testing.T, n int) []bool {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if got := r.snapshot(); len(got) >= n {
			return got
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("expected %d typing signals, got %v", n, r.snapshot())
	return nil
}

func TestNotifierEmitsStartThenStop(t *testing.T) {
	rec := &typingRecorder{}
	n := NewNotifier(40*time.Millisecond, rec.emit)

	n.Keystroke()

	got := rec.waitFor(t, 2)
	if !got[0] || got[1] {
		t.Fatalf("expected [started, stopped], got %v", got)
	}
}

func TestNotifierKeystrokesCoalesce(t *testing.T) {
	rec := &typingRecorder{}
	n := NewNotifier(60*time.Millisecond, rec.emit)

	// A rapid burst: one started signal, quiet timer re-armed each time.
	for i := 0; i < 5; i++ {
		n.Keystroke()
		time.Sleep(5 * time.Millisecond)
	}

	got := rec.waitFor(t, 2)
	if len(got) != 2 || !got[0] || got[1] {
		t.Fatalf("expected exactly [started, stopped] for a burst, got %v", got)
	}
}

func TestNotifierStopEmitsImmediately(t *testing.T) {
	rec := &typingRecorder{}
	n := NewNotifier(time.Hour, rec.emit)

	n.Keystroke()
	n.Stop()

	got := rec.snapshot()
	if len(got) != 2 || !got[0] || got[1] {
		t.Fatalf("expected [started, stopped], got %v", got)
	}
}

func TestNotifierStopWithoutKeystrokeIsSilent(t *testing.T) {
	rec := &typingRecorder{}
	n := NewNotifier(40*time.Millisecond, rec.emit)

	n.Stop()

	if got := rec.snapshot(); len(got) != 0 {
		t.Fatalf("expected no signals, got %v", got)
	}
}

func TestNotifierRestartsAfterQuiet(t *testing.T) {
	rec := &typingRecorder{}
	n := NewNotifier(30*time.Millisecond, rec.emit)

	n.Keystroke()
	rec.waitFor(t, 2)

	// Typing again after the quiet window must announce again even though
	// the re-announce limiter has no token yet.
	n.Keystroke()

	got := rec.waitFor(t, 3)
	if !got[2] {
		t.Fatalf("expected a fresh started signal, got %v", got)
	}
}
