// Package ac defines the air-conditioner state model shared by the
// normalizer, the persistent store and the telemetry publisher.
package ac

import (
	"encoding/json"
	"fmt"
)

// Temperature limits accepted by every known AC protocol we drive.
const (
	MinDegrees = 16
	MaxDegrees = 30
)

// Mode is the AC operating mode.
type Mode int

const (
	ModeAuto Mode = iota
	ModeCool
	ModeHeat
	ModeDry
	ModeFan
)

var modeNames = map[Mode]string{
	ModeAuto: "auto",
	ModeCool: "cool",
	ModeHeat: "heat",
	ModeDry:  "dry",
	ModeFan:  "fan",
}

// ParseMode parses a mode name as used in commands and persisted records.
func ParseMode(s string) (Mode, error) {
	for m, name := range modeNames {
		if name == s {
			return m, nil
		}
	}
	return ModeCool, fmt.Errorf("invalid mode: %q", s)
}

func (m Mode) String() string {
	if name, ok := modeNames[m]; ok {
		return name
	}
	return "cool"
}

// MarshalJSON encodes the mode by name so the persisted record and the
// telemetry snapshot stay human-readable.
func (m Mode) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

func (m *Mode) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseMode(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// FanSpeed is the AC fan speed setting.
type FanSpeed int

const (
	FanAuto FanSpeed = iota
	FanMin
	FanMedium
	FanMax
)

var fanNames = map[FanSpeed]string{
	FanAuto:   "auto",
	FanMin:    "min",
	FanMedium: "medium",
	FanMax:    "max",
}

// ParseFanSpeed parses the canonical fan speed names used in persisted
// records. Command payloads use different aliases, see ParseFanCommand.
func ParseFanSpeed(s string) (FanSpeed, error) {
	for f, name := range fanNames {
		if name == s {
			return f, nil
		}
	}
	return FanMedium, fmt.Errorf("invalid fanspeed: %q", s)
}

// ParseFanCommand parses a fan speed from an inbound command value.
// Remote commands say low/high where the signal model says min/max.
func ParseFanCommand(s string) (FanSpeed, error) {
	switch s {
	case "auto":
		return FanAuto, nil
	case "low":
		return FanMin, nil
	case "medium":
		return FanMedium, nil
	case "high":
		return FanMax, nil
	}
	return FanMedium, fmt.Errorf("invalid fanspeed command: %q", s)
}

func (f FanSpeed) String() string {
	if name, ok := fanNames[f]; ok {
		return name
	}
	return "medium"
}

func (f FanSpeed) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.String())
}

func (f *FanSpeed) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseFanSpeed(s)
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

// State mirrors the last AC state for which an infrared transmission was
// confirmed. It must never be updated before the emitter reports success.
type State struct {
	Power    bool     `json:"power"`
	Mode     Mode     `json:"mode"`
	Degrees  int      `json:"degrees"`
	Fanspeed FanSpeed `json:"fanspeed"`
}

// DefaultState is the state assumed on first boot or after a corrupt
// state record.
func DefaultState() State {
	return State{
		Power:    false,
		Mode:     ModeCool,
		Degrees:  25,
		Fanspeed: FanMedium,
	}
}
