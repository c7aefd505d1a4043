package lirc

import (
	"testing"

	"accontrol/internal/ac"
	"accontrol/internal/ir"
)

func TestTableCoderSupports(t *testing.T) {
	coder := NewTableCoder()

	if !coder.Supports(ir.ProtoDaikin) {
		t.Error("Expected DAIKIN to be supported")
	}
	if !coder.Supports(ir.ProtoGree) {
		t.Error("Expected GREE to be supported")
	}
	if coder.Supports(ir.ProtoDaikin312) {
		t.Error("Expected a protocol without timings to be unsupported")
	}
}

func TestEncodeUnsupportedProtocol(t *testing.T) {
	if _, err := NewTableCoder().Encode(ir.TestSignal(ir.ProtoDaikin312)); err == nil {
		t.Error("Expected error for protocol without timings")
	}
}

func TestEncodeFrameShape(t *testing.T) {
	coder := NewTableCoder()

	pulses, err := coder.Encode(ir.TestSignal(ir.ProtoDaikin))
	if err != nil {
		t.Fatalf("Failed to encode: %v", err)
	}

	// Header pair, 8 bytes of payload at 2 durations per bit, and the
	// closing mark and gap.
	want := 2 + 8*8*2 + 2
	if len(pulses) != want {
		t.Fatalf("Expected %d durations, got %d", want, len(pulses))
	}

	tm := pdmTimings[ir.ProtoDaikin]
	if pulses[0] != tm.HeaderMark || pulses[1] != tm.HeaderSpace {
		t.Errorf("Expected header %d,%d, got %d,%d", tm.HeaderMark, tm.HeaderSpace, pulses[0], pulses[1])
	}
	for i := 2; i < len(pulses)-1; i += 2 {
		if pulses[i] != tm.BitMark {
			t.Errorf("Expected bit mark at %d, got %d", i, pulses[i])
			break
		}
		if space := pulses[i+1]; i+1 < len(pulses)-1 && space != tm.OneSpace && space != tm.ZeroSpace {
			t.Errorf("Expected a one or zero space at %d, got %d", i+1, space)
			break
		}
	}
}

func TestEncodeRepeatsFrame(t *testing.T) {
	coder := NewTableCoder()

	pulses, err := coder.Encode(ir.TestSignal(ir.ProtoCoolix))
	if err != nil {
		t.Fatalf("Failed to encode: %v", err)
	}

	perFrame := 2 + 8*8*2 + 2
	repeats := pdmTimings[ir.ProtoCoolix].Repeats
	if len(pulses) != perFrame*(repeats+1) {
		t.Errorf("Expected %d durations for %d frames, got %d", perFrame*(repeats+1), repeats+1, len(pulses))
	}
}

func TestEncodeDistinguishesStates(t *testing.T) {
	coder := NewTableCoder()

	off := ir.Signal{Protocol: ir.ProtoGree, State: ac.State{Power: false, Mode: ac.ModeCool, Degrees: 25, Fanspeed: ac.FanMedium}}
	on := ir.Signal{Protocol: ir.ProtoGree, State: ac.State{Power: true, Mode: ac.ModeCool, Degrees: 25, Fanspeed: ac.FanMedium}}

	offPulses, err := coder.Encode(off)
	if err != nil {
		t.Fatalf("Failed to encode off state: %v", err)
	}
	onPulses, err := coder.Encode(on)
	if err != nil {
		t.Fatalf("Failed to encode on state: %v", err)
	}

	same := len(offPulses) == len(onPulses)
	if same {
		identical := true
		for i := range offPulses {
			if offPulses[i] != onPulses[i] {
				identical = false
				break
			}
		}
		if identical {
			t.Error("Expected different states to produce different pulse trains")
		}
	}
}

func TestStateFrameChecksum(t *testing.T) {
	frame := stateFrame(ac.State{Power: true, Mode: ac.ModeHeat, Degrees: 20, Fanspeed: ac.FanMax})

	if len(frame) != 8 {
		t.Fatalf("Expected 8 byte frame, got %d", len(frame))
	}
	var sum byte
	for _, b := range frame[:7] {
		sum += b
	}
	if frame[7] != sum {
		t.Errorf("Expected checksum %#x, got %#x", sum, frame[7])
	}
	if frame[3] != byte(20-ac.MinDegrees) {
		t.Errorf("Expected temperature offset %d, got %d", 20-ac.MinDegrees, frame[3])
	}
}
