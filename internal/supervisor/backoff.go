package supervisor

import "time"

// Backoff gates reconnection attempts: every failure doubles the wait
// before the next try, up to Max, and a success resets it.
type Backoff struct {
	Base time.Duration
	Max  time.Duration

	delay time.Duration
	next  time.Time
}

// NewBackoff creates a backoff starting at base and capped at max.
func NewBackoff(base, max time.Duration) *Backoff {
	return &Backoff{Base: base, Max: max, delay: base}
}

// Ready reports whether enough time has passed for another attempt.
func (b *Backoff) Ready(now time.Time) bool {
	return !now.Before(b.next)
}

// Fail records a failed attempt at now, pushes the next attempt out and
// returns the wait imposed on this failure.
func (b *Backoff) Fail(now time.Time) time.Duration {
	if b.delay == 0 {
		b.delay = b.Base
	}
	wait := b.delay
	b.next = now.Add(wait)
	b.delay *= 2
	if b.delay > b.Max {
		b.delay = b.Max
	}
	return wait
}

// Reset clears the backoff after a success; the next failure starts
// over from Base.
func (b *Backoff) Reset() {
	b.delay = b.Base
	b.next = time.Time{}
}

// Delay returns the wait the next failure will impose.
func (b *Backoff) Delay() time.Duration {
	if b.delay == 0 {
		return b.Base
	}
	return b.delay
}
