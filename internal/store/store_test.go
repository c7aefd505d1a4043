package store

import (
	"path/filepath"
	"testing"
	"time"

	"go.etcd.io/bbolt"

	"accontrol/internal/ac"
)

func openTestStore(t *testing.T, path string) *Store {
	t.Helper()
	s, err := Open(path, "1.0.2", nil)
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	return s
}

func TestConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "device.db")

	cfg := DeviceConfig{
		WifiSSID:        "home-net",
		WifiPassword:    "", // empty fields must survive the round trip
		CustomerID:      "cust-42",
		ZoneID:          "zone-7",
		ACBrand:         "daikin",
		ACProtocol:      "53",
		FirmwareVersion: "1.0.2",
	}
	state := ac.State{Power: true, Mode: ac.ModeHeat, Degrees: 16, Fanspeed: ac.FanMax}

	s := openTestStore(t, path)
	if err := s.SetConfig(cfg); err != nil {
		t.Fatalf("Failed to save config: %v", err)
	}
	if err := s.SetState(state); err != nil {
		t.Fatalf("Failed to save state: %v", err)
	}
	s.Close()

	reopened := openTestStore(t, path)
	defer reopened.Close()

	if got := reopened.Config(); got != cfg {
		t.Errorf("Expected config %+v, got %+v", cfg, got)
	}
	if got := reopened.State(); got != state {
		t.Errorf("Expected state %+v, got %+v", state, got)
	}
	if reopened.ProtocolCode() != "53" {
		t.Errorf("Expected protocol code 53, got %s", reopened.ProtocolCode())
	}
}

func TestFreshStoreDefaults(t *testing.T) {
	s := openTestStore(t, filepath.Join(t.TempDir(), "device.db"))
	defer s.Close()

	cfg := s.Config()
	if cfg.WifiSSID != "" || cfg.CustomerID != "" || cfg.ACProtocol != "" {
		t.Errorf("Expected empty config fields, got %+v", cfg)
	}
	if cfg.FirmwareVersion != "1.0.2" {
		t.Errorf("Expected firmware version default, got %q", cfg.FirmwareVersion)
	}
	if cfg.Complete() {
		t.Error("Expected fresh config to be incomplete")
	}

	if got := s.State(); got != ac.DefaultState() {
		t.Errorf("Expected default AC state, got %+v", got)
	}
}

func TestCorruptRecordsDegradeToDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "device.db")

	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		t.Fatalf("Failed to open raw database: %v", err)
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		bucket, err := tx.CreateBucketIfNotExists([]byte("device"))
		if err != nil {
			return err
		}
		if err := bucket.Put([]byte("config"), []byte("{broken")); err != nil {
			return err
		}
		return bucket.Put([]byte("ac_state"), []byte("not json"))
	})
	db.Close()
	if err != nil {
		t.Fatalf("Failed to seed corrupt records: %v", err)
	}

	s := openTestStore(t, path)
	defer s.Close()

	if got := s.State(); got != ac.DefaultState() {
		t.Errorf("Expected default state for corrupt record, got %+v", got)
	}
	if cfg := s.Config(); cfg.WifiSSID != "" {
		t.Errorf("Expected default config for corrupt record, got %+v", cfg)
	}
}

func TestReset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "device.db")

	s := openTestStore(t, path)
	if err := s.SetConfig(DeviceConfig{WifiSSID: "net", CustomerID: "c", ZoneID: "z", ACBrand: "gree", ACProtocol: "24"}); err != nil {
		t.Fatalf("Failed to save config: %v", err)
	}
	if err := s.SetState(ac.State{Power: true, Mode: ac.ModeCool, Degrees: 20, Fanspeed: ac.FanAuto}); err != nil {
		t.Fatalf("Failed to save state: %v", err)
	}

	if err := s.Reset(); err != nil {
		t.Fatalf("Failed to reset: %v", err)
	}
	s.Close()

	// The device reboots after a reset; a reopen sees only defaults.
	reopened := openTestStore(t, path)
	defer reopened.Close()

	if cfg := reopened.Config(); cfg.WifiSSID != "" || cfg.ACProtocol != "" {
		t.Errorf("Expected empty config after reset, got %+v", cfg)
	}
	if got := reopened.State(); got != ac.DefaultState() {
		t.Errorf("Expected default state after reset, got %+v", got)
	}
}

func TestCompleteRequiresAllFields(t *testing.T) {
	tests := []struct {
		name string
		cfg  DeviceConfig
		want bool
	}{
		{"all set", DeviceConfig{CustomerID: "c", ZoneID: "z", ACBrand: "lg", ACProtocol: "10"}, true},
		{"no protocol", DeviceConfig{CustomerID: "c", ZoneID: "z", ACBrand: "lg"}, false},
		{"no customer", DeviceConfig{ZoneID: "z", ACBrand: "lg", ACProtocol: "10"}, false},
		{"empty", DeviceConfig{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.Complete(); got != tt.want {
				t.Errorf("Expected Complete()=%v, got %v", tt.want, got)
			}
		})
	}
}
