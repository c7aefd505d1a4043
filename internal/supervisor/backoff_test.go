package supervisor

import (
	"testing"
	"time"
)

func TestBackoffSequence(t *testing.T) {
	base := 5 * time.Second
	max := 30 * time.Second
	b := NewBackoff(base, max)
	now := time.Now()

	// B, 2B, 4B, then capped at C, monotonically non-decreasing.
	wantWaits := []time.Duration{
		5 * time.Second,
		10 * time.Second,
		20 * time.Second,
		30 * time.Second,
		30 * time.Second,
	}

	for i, want := range wantWaits {
		if !b.Ready(now) {
			t.Fatalf("Attempt %d: expected Ready before failure", i)
		}
		if got := b.Fail(now); got != want {
			t.Errorf("Attempt %d: expected Fail to report a %s wait, got %s", i, want, got)
		}
		if b.Ready(now.Add(want - time.Millisecond)) {
			t.Errorf("Attempt %d: expected not ready before %s", i, want)
		}
		if !b.Ready(now.Add(want)) {
			t.Errorf("Attempt %d: expected ready after %s", i, want)
		}
		now = now.Add(want)
	}
}

func TestBackoffResetAfterSuccess(t *testing.T) {
	b := NewBackoff(5*time.Second, 30*time.Second)
	now := time.Now()

	for i := 0; i < 5; i++ {
		b.Fail(now)
	}
	if b.Delay() != 30*time.Second {
		t.Fatalf("Expected capped delay 30s, got %s", b.Delay())
	}

	b.Reset()
	if !b.Ready(now) {
		t.Error("Expected Ready immediately after reset")
	}
	if b.Delay() != 5*time.Second {
		t.Errorf("Expected delay back at base after reset, got %s", b.Delay())
	}

	// The next failure starts the sequence over from base.
	b.Fail(now)
	if b.Ready(now.Add(4 * time.Second)) {
		t.Error("Expected first post-reset failure to wait the base interval")
	}
	if !b.Ready(now.Add(5 * time.Second)) {
		t.Error("Expected ready after the base interval")
	}
}

func TestBackoffReadyImmediatelyAtStart(t *testing.T) {
	b := NewBackoff(5*time.Second, 30*time.Second)
	if !b.Ready(time.Now()) {
		t.Error("Expected a fresh backoff to allow an immediate attempt")
	}
}
