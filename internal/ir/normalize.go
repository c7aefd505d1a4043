package ir

import (
	"fmt"
	"strconv"

	"accontrol/internal/ac"
)

// Signal is a complete target-signal descriptor handed to the emitter.
type Signal struct {
	Protocol Protocol
	ac.State
}

// Emitter is the infrared transmission driver. Implementations report
// which protocols they can encode and transmit a complete signal
// synchronously, returning an error if the waveform was not sent.
type Emitter interface {
	Supports(p Protocol) bool
	Send(sig Signal) error
}

// CommandKind is the closed set of remote command kinds.
type CommandKind int

const (
	CmdPower CommandKind = iota
	CmdMode
	CmdTemperature
	CmdFanspeed
)

var commandNames = map[CommandKind]string{
	CmdPower:       "power",
	CmdMode:        "mode",
	CmdTemperature: "temperature",
	CmdFanspeed:    "fanspeed",
}

func (k CommandKind) String() string {
	if name, ok := commandNames[k]; ok {
		return name
	}
	return "unknown"
}

// TestSignal is the canonical trial signal presented to the operator
// during protocol discovery: power on, cool, 25 degrees, medium fan.
func TestSignal(p Protocol) Signal {
	return Signal{
		Protocol: p,
		State: ac.State{
			Power:    true,
			Mode:     ac.ModeCool,
			Degrees:  25,
			Fanspeed: ac.FanMedium,
		},
	}
}

// Normalize overlays a single command onto the current AC state and
// returns the complete next signal. Every field the command does not name
// is carried over from cur unchanged. It validates the value and fails
// closed: an error means no transmission must be attempted.
func Normalize(kind CommandKind, value string, cur ac.State, proto Protocol) (Signal, error) {
	sig := Signal{Protocol: proto, State: cur}

	switch kind {
	case CmdPower:
		switch value {
		case "on":
			sig.Power = true
		case "off":
			sig.Power = false
		case "toggle":
			sig.Power = !cur.Power
		default:
			return Signal{}, fmt.Errorf("invalid power command: %q", value)
		}

	case CmdMode:
		mode, err := ac.ParseMode(value)
		if err != nil {
			return Signal{}, err
		}
		sig.Mode = mode
		sig.Power = true

	case CmdTemperature:
		deg, err := strconv.Atoi(value)
		if err != nil || deg < ac.MinDegrees || deg > ac.MaxDegrees {
			return Signal{}, fmt.Errorf("invalid temperature value: %q", value)
		}
		sig.Degrees = deg
		sig.Power = true

	case CmdFanspeed:
		fan, err := ac.ParseFanCommand(value)
		if err != nil {
			return Signal{}, err
		}
		sig.Fanspeed = fan
		sig.Power = true

	default:
		return Signal{}, fmt.Errorf("unknown command kind %d", kind)
	}

	return sig, nil
}
