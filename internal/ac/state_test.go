package ac

import (
	"encoding/json"
	"testing"
)

func TestParseMode(t *testing.T) {
	tests := []struct {
		input   string
		want    Mode
		wantErr bool
	}{
		{"auto", ModeAuto, false},
		{"cool", ModeCool, false},
		{"heat", ModeHeat, false},
		{"dry", ModeDry, false},
		{"fan", ModeFan, false},
		{"freeze", 0, true},
		{"", 0, true},
		{"COOL", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseMode(tt.input)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseMode(%q): expected error, got %v", tt.input, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseMode(%q): unexpected error: %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseMode(%q): expected %v, got %v", tt.input, tt.want, got)
		}
	}
}

func TestParseFanCommandAliases(t *testing.T) {
	tests := []struct {
		input   string
		want    FanSpeed
		wantErr bool
	}{
		{"auto", FanAuto, false},
		{"low", FanMin, false},
		{"min", FanMin, false},
		{"medium", FanMedium, false},
		{"high", FanMax, false},
		{"max", FanMax, false},
		{"turbo", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseFanCommand(tt.input)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseFanCommand(%q): expected error, got %v", tt.input, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseFanCommand(%q): unexpected error: %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseFanCommand(%q): expected %v, got %v", tt.input, tt.want, got)
		}
	}
}

func TestDefaultState(t *testing.T) {
	state := DefaultState()

	if state.Power {
		t.Error("Expected default power off")
	}
	if state.Mode != ModeCool {
		t.Errorf("Expected default mode cool, got %v", state.Mode)
	}
	if state.Degrees != 25 {
		t.Errorf("Expected default 25 degrees, got %d", state.Degrees)
	}
	if state.Fanspeed != FanMedium {
		t.Errorf("Expected default fan medium, got %v", state.Fanspeed)
	}
}

func TestStateJSONRoundTrip(t *testing.T) {
	original := State{Power: true, Mode: ModeHeat, Degrees: 18, Fanspeed: FanMax}

	data, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("Failed to marshal state: %v", err)
	}

	var decoded State
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Failed to unmarshal state: %v", err)
	}

	if decoded != original {
		t.Errorf("Expected %+v, got %+v", original, decoded)
	}
}

func TestStateJSONNames(t *testing.T) {
	data, err := json.Marshal(State{Power: true, Mode: ModeDry, Degrees: 22, Fanspeed: FanMin})
	if err != nil {
		t.Fatalf("Failed to marshal state: %v", err)
	}

	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("Failed to unmarshal into map: %v", err)
	}

	if raw["mode"] != "dry" {
		t.Errorf("Expected mode encoded as \"dry\", got %v", raw["mode"])
	}
	if raw["fanspeed"] != "min" {
		t.Errorf("Expected fanspeed encoded as \"min\", got %v", raw["fanspeed"])
	}
}

func TestModeJSONRejectsUnknown(t *testing.T) {
	var m Mode
	if err := json.Unmarshal([]byte(`"arctic"`), &m); err == nil {
		t.Error("Expected error for unknown mode name")
	}
}
