package ir

import (
	"fmt"
	"testing"

	"accontrol/internal/ac"
)

func TestNormalizePower(t *testing.T) {
	cur := ac.State{Power: false, Mode: ac.ModeCool, Degrees: 25, Fanspeed: ac.FanMedium}

	tests := []struct {
		name      string
		value     string
		wantPower bool
		wantErr   bool
	}{
		{"on", "on", true, false},
		{"off", "off", false, false},
		{"toggle from off", "toggle", true, false},
		{"invalid", "standby", false, true},
		{"empty", "", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sig, err := Normalize(CmdPower, tt.value, cur, ProtoDaikin)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Expected error for value %q", tt.value)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if sig.Power != tt.wantPower {
				t.Errorf("Expected power=%v, got %v", tt.wantPower, sig.Power)
			}
			// Untouched fields carry over.
			if sig.Mode != cur.Mode || sig.Degrees != cur.Degrees || sig.Fanspeed != cur.Fanspeed {
				t.Errorf("Expected other fields carried over, got %+v", sig.State)
			}
		})
	}
}

func TestNormalizePowerToggleFromOn(t *testing.T) {
	cur := ac.State{Power: true, Mode: ac.ModeCool, Degrees: 25, Fanspeed: ac.FanMedium}
	sig, err := Normalize(CmdPower, "toggle", cur, ProtoDaikin)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if sig.Power {
		t.Error("Expected toggle to turn power off")
	}
}

func TestNormalizeModeForcesPowerOn(t *testing.T) {
	cur := ac.State{Power: false, Mode: ac.ModeCool, Degrees: 25, Fanspeed: ac.FanMedium}
	sig, err := Normalize(CmdMode, "heat", cur, ProtoDaikin)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !sig.Power {
		t.Error("Expected mode command to force power on")
	}
	if sig.Mode != ac.ModeHeat {
		t.Errorf("Expected mode heat, got %v", sig.Mode)
	}
}

func TestNormalizeTemperatureRange(t *testing.T) {
	cur := ac.State{Power: false, Mode: ac.ModeCool, Degrees: 25, Fanspeed: ac.FanMedium}

	// Every value inside the range is accepted and forces power on.
	for deg := ac.MinDegrees; deg <= ac.MaxDegrees; deg++ {
		sig, err := Normalize(CmdTemperature, fmt.Sprintf("%d", deg), cur, ProtoDaikin)
		if err != nil {
			t.Fatalf("Expected %d degrees to be accepted: %v", deg, err)
		}
		if sig.Degrees != deg {
			t.Errorf("Expected %d degrees, got %d", deg, sig.Degrees)
		}
		if !sig.Power {
			t.Errorf("Expected temperature command to force power on at %d", deg)
		}
	}

	// Everything outside is rejected.
	for _, value := range []string{"15", "31", "0", "-5", "100", "25.5", "warm", ""} {
		if _, err := Normalize(CmdTemperature, value, cur, ProtoDaikin); err == nil {
			t.Errorf("Expected temperature %q to be rejected", value)
		}
	}
}

func TestNormalizeFanspeedAliases(t *testing.T) {
	cur := ac.State{Power: false, Mode: ac.ModeCool, Degrees: 25, Fanspeed: ac.FanMedium}

	tests := []struct {
		value string
		want  ac.FanSpeed
	}{
		{"auto", ac.FanAuto},
		{"low", ac.FanMin},
		{"medium", ac.FanMedium},
		{"high", ac.FanMax},
	}
	for _, tt := range tests {
		sig, err := Normalize(CmdFanspeed, tt.value, cur, ProtoDaikin)
		if err != nil {
			t.Fatalf("Unexpected error for %q: %v", tt.value, err)
		}
		if sig.Fanspeed != tt.want {
			t.Errorf("Expected fanspeed %v for %q, got %v", tt.want, tt.value, sig.Fanspeed)
		}
		if !sig.Power {
			t.Errorf("Expected fanspeed command to force power on")
		}
	}

	if _, err := Normalize(CmdFanspeed, "hurricane", cur, ProtoDaikin); err == nil {
		t.Error("Expected unknown fanspeed to be rejected")
	}
}

func TestParseProtocol(t *testing.T) {
	tests := []struct {
		code    string
		want    Protocol
		wantErr bool
	}{
		{"16", ProtoDaikin, false},
		{"53", ProtoDaikin2, false},
		{"46", ProtoSamsungAC, false},
		{"", 0, true},
		{"abc", 0, true},
		{"99999", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseProtocol(tt.code)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseProtocol(%q): expected error, got %v", tt.code, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseProtocol(%q): unexpected error: %v", tt.code, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseProtocol(%q): expected %v, got %v", tt.code, tt.want, got)
		}
	}
}

func TestTestSignal(t *testing.T) {
	sig := TestSignal(ProtoGree)
	if sig.Protocol != ProtoGree {
		t.Errorf("Expected protocol GREE, got %v", sig.Protocol)
	}
	want := ac.State{Power: true, Mode: ac.ModeCool, Degrees: 25, Fanspeed: ac.FanMedium}
	if sig.State != want {
		t.Errorf("Expected canonical test state %+v, got %+v", want, sig.State)
	}
}
