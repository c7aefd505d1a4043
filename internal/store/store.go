// Package store persists the device configuration and the mirrored AC
// state in a bbolt database. The two records live under independent keys
// so either could be cleared on its own; Reset clears both.
package store

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"go.etcd.io/bbolt"

	"accontrol/internal/ac"
)

const (
	deviceBucket = "device"

	configKey = "config"
	stateKey  = "ac_state"
)

// DeviceConfig is the persisted device configuration record. ACProtocol
// holds the numeric protocol code and is non-empty exactly when a protocol
// trial (or the skip-testing scan) completed successfully.
type DeviceConfig struct {
	WifiSSID        string `json:"wifi_ssid"`
	WifiPassword    string `json:"wifi_password"`
	CustomerID      string `json:"customer_id"`
	ZoneID          string `json:"zone_id"`
	ACBrand         string `json:"ac_brand"`
	ACProtocol      string `json:"ac_protocol"`
	FirmwareVersion string `json:"firmware_version"`
}

// Complete reports whether the device has everything it needs for normal
// operation: identity, zone, brand and a resolved protocol.
func (c DeviceConfig) Complete() bool {
	return c.CustomerID != "" && c.ZoneID != "" && c.ACBrand != "" && c.ACProtocol != ""
}

// Store is the durable device state. In-memory copies of both records are
// kept behind a lock; every mutation flushes synchronously to disk.
type Store struct {
	db     *bbolt.DB
	logger *log.Logger

	mu    sync.RWMutex
	cfg   DeviceConfig
	state ac.State
}

// Open opens (or creates) the database and loads both records. A missing
// or corrupt record degrades to defaults and is logged; a database that
// cannot be opened at all is the one fatal storage failure.
func Open(path, firmwareVersion string, logger *log.Logger) (*Store, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open device database: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(deviceBucket))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create device bucket: %w", err)
	}

	s := &Store{
		db:     db,
		logger: logger,
		cfg:    DeviceConfig{FirmwareVersion: firmwareVersion},
		state:  ac.DefaultState(),
	}
	s.load(firmwareVersion)
	return s, nil
}

func (s *Store) load(firmwareVersion string) {
	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(deviceBucket))

		if data := bucket.Get([]byte(configKey)); data != nil {
			var cfg DeviceConfig
			if err := json.Unmarshal(data, &cfg); err != nil {
				s.logf("[STORE] Corrupt config record, using defaults: %v", err)
			} else {
				if cfg.FirmwareVersion == "" {
					cfg.FirmwareVersion = firmwareVersion
				}
				s.cfg = cfg
			}
		} else {
			s.logf("[STORE] No config record, using defaults")
		}

		if data := bucket.Get([]byte(stateKey)); data != nil {
			var state ac.State
			if err := json.Unmarshal(data, &state); err != nil {
				s.logf("[STORE] Corrupt AC state record, using defaults: %v", err)
			} else {
				s.state = state
			}
		} else {
			s.logf("[STORE] No AC state record, using defaults")
		}
		return nil
	})
	if err != nil {
		s.logf("[STORE] Failed to read records, using defaults: %v", err)
	}
}

// Config returns a copy of the device configuration.
func (s *Store) Config() DeviceConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

// SetConfig replaces the device configuration and flushes it.
func (s *Store) SetConfig(cfg DeviceConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.put(configKey, cfg); err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	s.cfg = cfg
	return nil
}

// State returns a copy of the mirrored AC state.
func (s *Store) State() ac.State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// SetState replaces the mirrored AC state and flushes it. Callers must
// only invoke this after a confirmed infrared transmission.
func (s *Store) SetState(state ac.State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.put(stateKey, state); err != nil {
		return fmt.Errorf("save AC state: %w", err)
	}
	s.state = state
	return nil
}

// ProtocolCode returns the persisted numeric protocol code.
func (s *Store) ProtocolCode() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg.ACProtocol
}

// Reset deletes both records. The in-memory copies are stale afterwards;
// the device must reboot immediately to resume the provisioning flow.
func (s *Store) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(deviceBucket))
		if err := bucket.Delete([]byte(configKey)); err != nil {
			return err
		}
		return bucket.Delete([]byte(stateKey))
	})
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) put(key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(deviceBucket)).Put([]byte(key), data)
	})
}

func (s *Store) logf(format string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Printf(format, args...)
	}
}
