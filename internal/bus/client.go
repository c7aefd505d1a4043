// Package bus connects the device to the command bus: a thin client over
// the MQTT transport plus the adapter that owns the per-device topics.
package bus

import (
	"crypto/tls"
	"fmt"
	"log"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// ClientConfig holds the bus connection settings.
type ClientConfig struct {
	Broker   string // broker URL, e.g. "ssl://host:8883"
	ClientID string
	Username string
	Password string

	// Last-will published by the broker on ungraceful disconnect.
	WillTopic   string
	WillPayload string

	// TLSInsecure disables certificate validation on the transport.
	TLSInsecure bool

	// OnConnect runs on every successful connection, including broker
	// reconnects, so subscriptions can be re-established.
	OnConnect func()
}

// Client wraps the MQTT client. Reconnection is not automatic: the
// connectivity supervisor owns the backoff schedule and calls Connect.
type Client struct {
	client   mqtt.Client
	config   ClientConfig
	mu       sync.RWMutex
	logger   *log.Logger
	isActive bool
}

// NewClient creates a bus client.
func NewClient(cfg ClientConfig, logger *log.Logger) (*Client, error) {
	if cfg.Broker == "" {
		return nil, fmt.Errorf("bus broker address is required")
	}
	if cfg.ClientID == "" {
		return nil, fmt.Errorf("bus client ID is required")
	}

	c := &Client{
		config: cfg,
		logger: logger,
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(cfg.ClientID)

	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}

	// TODO: pin the broker CA; the insecure transport is inherited from
	// the original deployment.
	opts.SetTLSConfig(&tls.Config{InsecureSkipVerify: cfg.TLSInsecure})

	if cfg.WillTopic != "" {
		opts.SetWill(cfg.WillTopic, cfg.WillPayload, 1, true)
	}

	opts.SetConnectionLostHandler(func(client mqtt.Client, err error) {
		c.mu.Lock()
		c.isActive = false
		c.mu.Unlock()
		if c.logger != nil {
			c.logger.Printf("[MQTT] Connection lost: %v", err)
		}
	})

	opts.SetOnConnectHandler(func(client mqtt.Client) {
		if c.logger != nil {
			c.logger.Printf("[MQTT] Connected to broker: %s", cfg.Broker)
		}
		if cfg.OnConnect != nil {
			cfg.OnConnect()
		}
	})

	// The supervisor schedules reconnects with its own backoff.
	opts.SetAutoReconnect(false)
	opts.SetConnectRetry(false)
	opts.SetConnectTimeout(10 * time.Second)

	opts.SetKeepAlive(30 * time.Second)
	opts.SetPingTimeout(10 * time.Second)
	opts.SetCleanSession(true)

	c.client = mqtt.NewClient(opts)
	return c, nil
}

// Connect establishes the bus connection. The attempt is synchronous and
// bounded by the connect timeout.
func (c *Client) Connect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.isActive {
		return nil
	}

	if c.logger != nil {
		c.logger.Printf("[MQTT] Connecting to broker: %s", c.config.Broker)
	}

	token := c.client.Connect()
	if token.Wait() && token.Error() != nil {
		return fmt.Errorf("failed to connect to bus: %w", token.Error())
	}

	c.isActive = true
	return nil
}

// Disconnect closes the bus connection gracefully.
func (c *Client) Disconnect() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.isActive {
		return
	}

	c.client.Disconnect(250)
	c.isActive = false

	if c.logger != nil {
		c.logger.Printf("[MQTT] Disconnected from broker")
	}
}

// Publish publishes a message with QoS 1.
func (c *Client) Publish(topic string, payload []byte, retained bool) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.isActive {
		return fmt.Errorf("bus client is not connected")
	}

	token := c.client.Publish(topic, 1, retained, payload)
	if token.Wait() && token.Error() != nil {
		return fmt.Errorf("failed to publish to %s: %w", topic, token.Error())
	}
	return nil
}

// Subscribe subscribes a handler to a topic with QoS 1.
func (c *Client) Subscribe(topic string, handler mqtt.MessageHandler) error {
	token := c.client.Subscribe(topic, 1, handler)
	if token.Wait() && token.Error() != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", topic, token.Error())
	}
	return nil
}

// IsConnected reports whether the client is connected to the broker.
func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.isActive && c.client.IsConnected()
}
