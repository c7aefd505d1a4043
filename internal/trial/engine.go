// Package trial implements the interactive protocol-discovery procedure:
// it walks a brand's candidate protocols in catalog order, emits a test
// signal for each and waits for the operator's verdict, stopping on the
// first confirmed protocol or when the list is exhausted.
package trial

import (
	"errors"
	"fmt"
	"log"

	"accontrol/internal/ir"
)

// Phase is the trial engine state.
type Phase int

const (
	Idle Phase = iota
	AwaitingTransmission
	AwaitingVerdict
	Succeeded
	Exhausted
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case AwaitingTransmission:
		return "awaiting-transmission"
	case AwaitingVerdict:
		return "awaiting-verdict"
	case Succeeded:
		return "succeeded"
	case Exhausted:
		return "exhausted"
	}
	return "unknown"
}

// ErrUnknownBrand is returned when the brand has no catalog entry.
var ErrUnknownBrand = errors.New("selected brand is not supported")

// Session is one trial run for a single brand. It lives only for the
// duration of the interactive procedure; the device reboots once a
// protocol is found, so nothing here is persisted.
type Session struct {
	Brand      string
	Candidates []ir.Protocol
	Index      int
	Phase      Phase
}

// Begin resolves the brand's candidate list and opens a session ready for
// the first transmission. Unknown brands fail before the machine starts.
func Begin(brand string) (*Session, error) {
	candidates, ok := ir.Candidates(brand)
	if !ok || len(candidates) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrUnknownBrand, brand)
	}
	return &Session{
		Brand:      brand,
		Candidates: candidates,
		Phase:      AwaitingTransmission,
	}, nil
}

// Current returns the candidate under test.
func (s *Session) Current() ir.Protocol {
	return s.Candidates[s.Index]
}

// Remaining reports position for the operator-facing test page.
func (s *Session) Remaining() (current, total int) {
	return s.Index + 1, len(s.Candidates)
}

// Transmit emits the canonical test signal for the current candidate.
// Candidates the emitter does not support, and candidates whose emission
// fails, are skipped immediately; this is fallthrough, not a retry. On a
// successful emission the session moves to AwaitingVerdict and the sent
// protocol is returned. When the list runs out the session is Exhausted.
func (s *Session) Transmit(em ir.Emitter, logger *log.Logger) (ir.Protocol, bool) {
	if s.Phase != AwaitingTransmission {
		return 0, false
	}

	for ; s.Index < len(s.Candidates); s.Index++ {
		candidate := s.Candidates[s.Index]
		if !em.Supports(candidate) {
			if logger != nil {
				logger.Printf("[TRIAL] Protocol %s not supported, skipping", candidate)
			}
			continue
		}
		if err := em.Send(ir.TestSignal(candidate)); err != nil {
			if logger != nil {
				logger.Printf("[TRIAL] Failed to send test signal for %s: %v", candidate, err)
			}
			continue
		}
		if logger != nil {
			logger.Printf("[TRIAL] Test signal sent for protocol %s (%d of %d)", candidate, s.Index+1, len(s.Candidates))
		}
		s.Phase = AwaitingVerdict
		return candidate, true
	}

	s.Phase = Exhausted
	return 0, false
}

// Verdict applies the operator's answer. A confirmation ends the session
// in Succeeded; a rejection advances to the next candidate, or Exhausted
// when none remain. A rejected candidate is never revisited.
func (s *Session) Verdict(confirmed bool) {
	if s.Phase != AwaitingVerdict {
		return
	}
	if confirmed {
		s.Phase = Succeeded
		return
	}
	s.Index++
	if s.Index < len(s.Candidates) {
		s.Phase = AwaitingTransmission
	} else {
		s.Phase = Exhausted
	}
}

// PickSupported is the skip-testing path: it linearly scans the brand's
// candidates and returns the first one the emitter reports supported,
// without transmitting anything. It trusts capability reporting instead
// of live confirmation, which is strictly less reliable than a trial.
func PickSupported(brand string, em ir.Emitter) (ir.Protocol, error) {
	candidates, ok := ir.Candidates(brand)
	if !ok || len(candidates) == 0 {
		return 0, fmt.Errorf("%w: %q", ErrUnknownBrand, brand)
	}
	for _, candidate := range candidates {
		if em.Supports(candidate) {
			return candidate, nil
		}
	}
	return 0, fmt.Errorf("no supported protocols found for brand %q", brand)
}
