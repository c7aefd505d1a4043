package trial

import (
	"errors"
	"testing"

	"accontrol/internal/ir"
)

// scriptedEmitter supports a fixed protocol set and can fail sends for
// specific protocols.
type scriptedEmitter struct {
	supported map[ir.Protocol]bool
	sendFails map[ir.Protocol]bool
	sent      []ir.Protocol
}

func (e *scriptedEmitter) Supports(p ir.Protocol) bool { return e.supported[p] }
func (e *scriptedEmitter) Send(sig ir.Signal) error {
	if e.sendFails[sig.Protocol] {
		return errors.New("emit failed")
	}
	e.sent = append(e.sent, sig.Protocol)
	return nil
}

func supportAll(candidates []ir.Protocol) map[ir.Protocol]bool {
	m := make(map[ir.Protocol]bool, len(candidates))
	for _, p := range candidates {
		m[p] = true
	}
	return m
}

func TestBeginUnknownBrand(t *testing.T) {
	if _, err := Begin("flux-capacitor"); !errors.Is(err, ErrUnknownBrand) {
		t.Errorf("Expected ErrUnknownBrand, got %v", err)
	}
}

func TestTrialVisitsCandidatesInOrder(t *testing.T) {
	candidates, _ := ir.Candidates("daikin")
	em := &scriptedEmitter{supported: supportAll(candidates)}

	session, err := Begin("daikin")
	if err != nil {
		t.Fatalf("Failed to begin session: %v", err)
	}

	// Reject everything; the engine must walk the list in order and
	// never revisit a rejected candidate.
	var visited []ir.Protocol
	for session.Phase == AwaitingTransmission {
		p, ok := session.Transmit(em, nil)
		if !ok {
			break
		}
		visited = append(visited, p)
		session.Verdict(false)
	}

	if session.Phase != Exhausted {
		t.Fatalf("Expected Exhausted after rejecting all, got %v", session.Phase)
	}
	if len(visited) != len(candidates) {
		t.Fatalf("Expected %d candidates visited, got %d", len(candidates), len(visited))
	}
	for i, p := range visited {
		if p != candidates[i] {
			t.Errorf("Expected candidate %d to be %v, got %v", i, candidates[i], p)
		}
	}
}

func TestTrialSkipsToFirstSupported(t *testing.T) {
	candidates, _ := ir.Candidates("daikin")
	k := 3
	em := &scriptedEmitter{supported: map[ir.Protocol]bool{candidates[k]: true}}

	session, err := Begin("daikin")
	if err != nil {
		t.Fatalf("Failed to begin session: %v", err)
	}

	p, ok := session.Transmit(em, nil)
	if !ok {
		t.Fatal("Expected a successful transmission")
	}
	if p != candidates[k] {
		t.Errorf("Expected candidate %v after skipping %d unsupported, got %v", candidates[k], k, p)
	}
	if session.Phase != AwaitingVerdict {
		t.Errorf("Expected AwaitingVerdict, got %v", session.Phase)
	}
	if len(em.sent) != 1 {
		t.Errorf("Expected exactly one transmission, got %d", len(em.sent))
	}

	session.Verdict(true)
	if session.Phase != Succeeded {
		t.Errorf("Expected Succeeded after confirmation, got %v", session.Phase)
	}
}

func TestTrialSendFailureFallsThrough(t *testing.T) {
	candidates, _ := ir.Candidates("daikin")
	em := &scriptedEmitter{
		supported: supportAll(candidates),
		sendFails: map[ir.Protocol]bool{candidates[0]: true, candidates[1]: true},
	}

	session, _ := Begin("daikin")
	p, ok := session.Transmit(em, nil)
	if !ok {
		t.Fatal("Expected a successful transmission")
	}
	if p != candidates[2] {
		t.Errorf("Expected fallthrough to %v, got %v", candidates[2], p)
	}
}

func TestTrialExhaustedWithoutVerdicts(t *testing.T) {
	em := &scriptedEmitter{}

	session, err := Begin("daikin")
	if err != nil {
		t.Fatalf("Failed to begin session: %v", err)
	}

	// Nothing is supported, so exhaustion must not require any verdicts.
	if _, ok := session.Transmit(em, nil); ok {
		t.Fatal("Expected no transmission with zero supported candidates")
	}
	if session.Phase != Exhausted {
		t.Errorf("Expected Exhausted, got %v", session.Phase)
	}
	if len(em.sent) != 0 {
		t.Errorf("Expected no transmissions, got %d", len(em.sent))
	}
}

func TestTrialDaikinSecondCandidateScenario(t *testing.T) {
	candidates, _ := ir.Candidates("daikin")
	em := &scriptedEmitter{supported: supportAll(candidates)}

	session, err := Begin("daikin")
	if err != nil {
		t.Fatalf("Failed to begin session: %v", err)
	}

	p, ok := session.Transmit(em, nil)
	if !ok || p != ir.ProtoDaikin {
		t.Fatalf("Expected first candidate DAIKIN, got %v", p)
	}
	session.Verdict(false)

	p, ok = session.Transmit(em, nil)
	if !ok || p != ir.ProtoDaikin2 {
		t.Fatalf("Expected second candidate DAIKIN2, got %v", p)
	}
	session.Verdict(true)

	if session.Phase != Succeeded {
		t.Fatalf("Expected Succeeded, got %v", session.Phase)
	}
	if session.Current() != ir.ProtoDaikin2 {
		t.Errorf("Expected confirmed protocol DAIKIN2, got %v", session.Current())
	}
	if session.Current().Code() != "53" {
		t.Errorf("Expected numeric code 53, got %s", session.Current().Code())
	}
}

func TestPickSupported(t *testing.T) {
	candidates, _ := ir.Candidates("daikin")
	em := &scriptedEmitter{supported: map[ir.Protocol]bool{candidates[1]: true}}

	p, err := PickSupported("daikin", em)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if p != candidates[1] {
		t.Errorf("Expected %v, got %v", candidates[1], p)
	}
	if len(em.sent) != 0 {
		t.Error("Expected the skip-testing path not to transmit")
	}
}

func TestPickSupportedNoneSupported(t *testing.T) {
	if _, err := PickSupported("daikin", &scriptedEmitter{}); err == nil {
		t.Error("Expected error when no candidate is supported")
	}
}
