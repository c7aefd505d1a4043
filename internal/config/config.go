// Package config loads the daemon settings from an .env-style file,
// creating it with defaults on first boot. Device provisioning state does
// not live here; that belongs to the persistent store.
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Environment variable names.
const (
	EnvAddr        = "ACCONTROL_ADDR"
	EnvDataFile    = "ACCONTROL_DATA_FILE"
	EnvMQTTBroker  = "ACCONTROL_MQTT_BROKER"
	EnvMQTTUser    = "ACCONTROL_MQTT_USERNAME"
	EnvMQTTPass    = "ACCONTROL_MQTT_PASSWORD"
	EnvAPIBase     = "ACCONTROL_API_BASE"
	EnvAPISecret   = "ACCONTROL_API_SECRET"
	EnvAPPassword  = "ACCONTROL_AP_PASSWORD"
	EnvLIRCDevice  = "ACCONTROL_LIRC_DEVICE"
	EnvWifiIface   = "ACCONTROL_WIFI_IFACE"
	EnvTLSInsecure = "ACCONTROL_TLS_INSECURE"
	EnvHTTPTimeout = "ACCONTROL_HTTP_TIMEOUT"
)

// Default values.
const (
	DefaultAddr        = ":80"
	DefaultDataFile    = "accontrol.db"
	DefaultMQTTBroker  = "ssl://mqtt.accontrol.cloud:8883"
	DefaultMQTTUser    = "accontrol"
	DefaultMQTTPass    = ""
	DefaultAPIBase     = "https://api.accontrol.cloud"
	DefaultAPISecret   = ""
	DefaultAPPassword  = "password123"
	DefaultLIRCDevice  = "/dev/lirc0"
	DefaultWifiIface   = "wlan0"
	DefaultTLSInsecure = true
	DefaultHTTPTimeout = 20 * time.Second
)

// Config holds all daemon settings. All access goes through getter
// methods for thread safety.
type Config struct {
	mu       sync.RWMutex
	filePath string
	dirty    bool

	addr        string
	dataFile    string
	mqttBroker  string
	mqttUser    string
	mqttPass    string
	apiBase     string
	apiSecret   string
	apPassword  string
	lircDevice  string
	wifiIface   string
	tlsInsecure bool
	httpTimeout time.Duration
}

// Load reads configuration from the given .env file, creating it with
// defaults if it does not exist.
func Load(filePath string) (*Config, error) {
	cfg := &Config{filePath: filePath}
	cfg.setDefaults()

	if err := cfg.loadFromFile(); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg.dirty = true
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if cfg.dirty {
		if err := cfg.Save(); err != nil {
			return nil, fmt.Errorf("failed to save config: %w", err)
		}
	}

	return cfg, nil
}

func (c *Config) setDefaults() {
	c.addr = DefaultAddr
	c.dataFile = DefaultDataFile
	c.mqttBroker = DefaultMQTTBroker
	c.mqttUser = DefaultMQTTUser
	c.mqttPass = DefaultMQTTPass
	c.apiBase = DefaultAPIBase
	c.apiSecret = DefaultAPISecret
	c.apPassword = DefaultAPPassword
	c.lircDevice = DefaultLIRCDevice
	c.wifiIface = DefaultWifiIface
	c.tlsInsecure = DefaultTLSInsecure
	c.httpTimeout = DefaultHTTPTimeout
}

func (c *Config) loadFromFile() error {
	file, err := os.Open(c.filePath)
	if err != nil {
		return err
	}
	defer file.Close()

	values, err := ParseEnvFile(file)
	if err != nil {
		return err
	}

	c.applyValues(values)
	return nil
}

func (c *Config) applyValues(values map[string]string) {
	if v, ok := values[EnvAddr]; ok && v != "" {
		c.addr = v
	}
	if v, ok := values[EnvDataFile]; ok && v != "" {
		c.dataFile = v
	}
	if v, ok := values[EnvMQTTBroker]; ok && v != "" {
		c.mqttBroker = v
	}
	if v, ok := values[EnvMQTTUser]; ok {
		c.mqttUser = v
	}
	if v, ok := values[EnvMQTTPass]; ok {
		c.mqttPass = v
	}
	if v, ok := values[EnvAPIBase]; ok && v != "" {
		c.apiBase = v
	}
	if v, ok := values[EnvAPISecret]; ok {
		c.apiSecret = v
	}
	if v, ok := values[EnvAPPassword]; ok && v != "" {
		c.apPassword = v
	}
	if v, ok := values[EnvLIRCDevice]; ok && v != "" {
		c.lircDevice = v
	}
	if v, ok := values[EnvWifiIface]; ok && v != "" {
		c.wifiIface = v
	}
	if v, ok := values[EnvTLSInsecure]; ok {
		c.tlsInsecure = parseBool(v)
	}
	if v, ok := values[EnvHTTPTimeout]; ok && v != "" {
		if seconds, err := strconv.Atoi(v); err == nil && seconds > 0 {
			c.httpTimeout = time.Duration(seconds) * time.Second
		}
	}
}

func (c *Config) validate() error {
	if c.addr == "" {
		return errors.New("server address cannot be empty")
	}
	if _, port, err := net.SplitHostPort(c.addr); err != nil {
		if _, err := strconv.Atoi(strings.TrimPrefix(c.addr, ":")); err != nil {
			return fmt.Errorf("invalid server address format: %s", c.addr)
		}
	} else if port != "" {
		portNum, err := strconv.Atoi(port)
		if err != nil || portNum < 1 || portNum > 65535 {
			return fmt.Errorf("invalid port number: %s", port)
		}
	}

	if c.dataFile == "" {
		return errors.New("data file path cannot be empty")
	}
	if c.mqttBroker == "" {
		return errors.New("MQTT broker address cannot be empty")
	}
	if !strings.HasPrefix(c.apiBase, "http://") && !strings.HasPrefix(c.apiBase, "https://") {
		return fmt.Errorf("invalid API base URL: %s", c.apiBase)
	}
	if len(c.apPassword) < 8 {
		return errors.New("AP password must be at least 8 characters")
	}
	return nil
}

// Save writes the current configuration to the .env file.
func (c *Config) Save() error {
	c.mu.RLock()
	values := c.toMap()
	filePath := c.filePath
	c.mu.RUnlock()

	if err := WriteEnvFile(filePath, values); err != nil {
		return err
	}

	c.mu.Lock()
	c.dirty = false
	c.mu.Unlock()
	return nil
}

func (c *Config) toMap() map[string]string {
	return map[string]string{
		EnvAddr:        c.addr,
		EnvDataFile:    c.dataFile,
		EnvMQTTBroker:  c.mqttBroker,
		EnvMQTTUser:    c.mqttUser,
		EnvMQTTPass:    c.mqttPass,
		EnvAPIBase:     c.apiBase,
		EnvAPISecret:   c.apiSecret,
		EnvAPPassword:  c.apPassword,
		EnvLIRCDevice:  c.lircDevice,
		EnvWifiIface:   c.wifiIface,
		EnvTLSInsecure: strconv.FormatBool(c.tlsInsecure),
		EnvHTTPTimeout: strconv.Itoa(int(c.httpTimeout.Seconds())),
	}
}

// Getters (thread-safe)

// Addr returns the local web server listen address.
func (c *Config) Addr() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.addr
}

// DataFile returns the persistent store path.
func (c *Config) DataFile() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.dataFile
}

// MQTTBroker returns the bus broker URL.
func (c *Config) MQTTBroker() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.mqttBroker
}

// MQTTUsername returns the bus username.
func (c *Config) MQTTUsername() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.mqttUser
}

// MQTTPassword returns the bus password.
func (c *Config) MQTTPassword() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.mqttPass
}

// APIBase returns the backend base URL.
func (c *Config) APIBase() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.apiBase
}

// APISecret returns the static shared secret sent to the backend.
func (c *Config) APISecret() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.apiSecret
}

// APPassword returns the provisioning access point password.
func (c *Config) APPassword() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.apPassword
}

// LIRCDevice returns the infrared transmitter device path.
func (c *Config) LIRCDevice() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lircDevice
}

// WifiIface returns the wireless interface name.
func (c *Config) WifiIface() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.wifiIface
}

// TLSInsecure reports whether transport certificate validation is
// disabled for the backend and the bus.
func (c *Config) TLSInsecure() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tlsInsecure
}

// HTTPTimeout returns the timeout applied to backend HTTP calls.
func (c *Config) HTTPTimeout() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.httpTimeout
}

// FilePath returns the .env file path.
func (c *Config) FilePath() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.filePath
}

// parseBool parses a boolean string value.
// Accepts: true, false, 1, 0, yes, no, on, off (case-insensitive).
func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "yes", "on":
		return true
	default:
		return false
	}
}

// String returns a display form of the config without secrets.
func (c *Config) String() string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	secret := "[not set]"
	if c.apiSecret != "" {
		secret = "[set]"
	}
	return fmt.Sprintf(
		"Config{Addr: %q, DataFile: %q, MQTTBroker: %q, APIBase: %q, APISecret: %s, WifiIface: %q, TLSInsecure: %v}",
		c.addr, c.dataFile, c.mqttBroker, c.apiBase, secret, c.wifiIface, c.tlsInsecure,
	)
}
