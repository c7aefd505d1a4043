package bus

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"accontrol/internal/events"
	"accontrol/internal/ir"
)

// Topic suffixes under node/{customerID}/{deviceID}.
const (
	topicCmdPower       = "command/power"
	topicCmdMode        = "command/mode"
	topicCmdTemperature = "command/temperature"
	topicCmdFanspeed    = "command/fanspeed"
	topicOTAUpdate      = "ota/update"
	topicStatus         = "status"
	topicTelemetry      = "telemetry"
	topicError          = "error"
)

// Telemetry is the retained device snapshot published on the bus.
type Telemetry struct {
	DeviceID        string `json:"device_id"`
	CustomerID      string `json:"customer_id"`
	ZoneID          string `json:"zone_id"`
	ACBrand         string `json:"ac_brand"`
	ACProtocol      string `json:"ac_protocol"`
	FirmwareVersion string `json:"firmware_version"`
	WifiSSID        string `json:"wifi_ssid"`
	RSSI            int    `json:"rssi"`
	ACPower         bool   `json:"ac_power"`
	ACMode          string `json:"ac_mode"`
	ACTemperature   int    `json:"ac_temperature"`
	ACFanspeed      string `json:"ac_fanspeed"`
}

// CommandHandler executes one inbound remote command.
type CommandHandler interface {
	Handle(kind ir.CommandKind, value string) error
}

// Updater applies a firmware update directive.
type Updater interface {
	Apply(ctx context.Context, url, version string) error
}

// AdapterConfig wires the adapter's collaborators.
type AdapterConfig struct {
	CustomerID string
	DeviceID   string
	Remote     CommandHandler
	Updater    Updater
	Snapshot   func() Telemetry
	Events     *events.Store
	Logger     *log.Logger
}

// Adapter owns the device's bus topics: it subscribes to the command and
// update topics and publishes status, telemetry and error events.
type Adapter struct {
	client   *Client
	base     string
	remote   CommandHandler
	updater  Updater
	snapshot func() Telemetry
	events   *events.Store
	logger   *log.Logger
}

// NewAdapter creates the adapter and its underlying client. The last-will
// is a retained "offline" on the status topic; on every (re)connect the
// adapter re-subscribes, publishes a retained "online" and an immediate
// telemetry snapshot.
func NewAdapter(client ClientConfig, cfg AdapterConfig) (*Adapter, error) {
	a := &Adapter{
		base:     fmt.Sprintf("node/%s/%s", cfg.CustomerID, cfg.DeviceID),
		remote:   cfg.Remote,
		updater:  cfg.Updater,
		snapshot: cfg.Snapshot,
		events:   cfg.Events,
		logger:   cfg.Logger,
	}

	client.WillTopic = a.topic(topicStatus)
	client.WillPayload = "offline"
	client.OnConnect = a.onConnect

	c, err := NewClient(client, cfg.Logger)
	if err != nil {
		return nil, err
	}
	a.client = c
	return a, nil
}

// SetRemote installs the command handler. The adapter doubles as the
// remote's reporter, so the remote is constructed after the adapter and
// attached here before the first connection.
func (a *Adapter) SetRemote(remote CommandHandler) {
	a.remote = remote
}

// Connect attempts a single synchronous bus connection.
func (a *Adapter) Connect() error {
	return a.client.Connect()
}

// Disconnect closes the bus connection.
func (a *Adapter) Disconnect() {
	a.client.Disconnect()
}

// Connected reports whether the bus connection is up.
func (a *Adapter) Connected() bool {
	return a.client.IsConnected()
}

func (a *Adapter) onConnect() {
	suffixes := []string{
		topicCmdPower,
		topicCmdMode,
		topicCmdTemperature,
		topicCmdFanspeed,
		topicOTAUpdate,
	}
	for _, suffix := range suffixes {
		if err := a.client.Subscribe(a.topic(suffix), a.onMessage); err != nil {
			a.logf("[MQTT] Subscribe failed: %v", err)
		}
	}
	a.logf("[MQTT] Subscribed to command topics under: %s", a.base)

	a.ReportStatus()
	a.ReportTelemetry()
	if a.events != nil {
		a.events.Add(events.EventBus, true, "connected to bus")
	}
}

func (a *Adapter) onMessage(_ mqtt.Client, msg mqtt.Message) {
	a.Dispatch(msg.Topic(), string(msg.Payload()))
}

// Dispatch routes one inbound message by exact topic match. Messages on
// unknown topics are silently ignored.
func (a *Adapter) Dispatch(topic, payload string) {
	a.logf("[MQTT] Received message on topic %s: %s", topic, payload)

	switch topic {
	case a.topic(topicCmdPower):
		a.command(ir.CmdPower, payload)
	case a.topic(topicCmdMode):
		a.command(ir.CmdMode, payload)
	case a.topic(topicCmdTemperature):
		a.command(ir.CmdTemperature, payload)
	case a.topic(topicCmdFanspeed):
		a.command(ir.CmdFanspeed, payload)
	case a.topic(topicOTAUpdate):
		a.update(payload)
	}
}

func (a *Adapter) command(kind ir.CommandKind, value string) {
	err := a.remote.Handle(kind, value)
	if a.events != nil {
		a.events.Add(events.EventCommand, err == nil, fmt.Sprintf("%s=%s", kind, value))
	}
}

// update parses the "<url>,<version>" directive and hands it to the
// update pipeline. The command callback blocks for the duration of the
// update; only one device role is active at a time, so that is accepted.
func (a *Adapter) update(payload string) {
	url, version, ok := strings.Cut(payload, ",")
	if !ok {
		a.logf("[MQTT] Invalid OTA message format: %q", payload)
		a.ReportError("OTA", "Invalid OTA message format")
		return
	}

	a.logf("[MQTT] OTA update requested: url=%s version=%s", url, version)
	if err := a.updater.Apply(context.Background(), url, version); err != nil {
		a.ReportError("OTA", fmt.Sprintf("Update failed: %v", err))
		if a.events != nil {
			a.events.Add(events.EventUpdate, false, err.Error())
		}
	}
}

// ReportStatus publishes a retained "online" on the status topic.
func (a *Adapter) ReportStatus() {
	if err := a.client.Publish(a.topic(topicStatus), []byte("online"), true); err != nil {
		a.logf("[MQTT] Failed to publish status: %v", err)
	}
}

// ReportTelemetry publishes a retained telemetry snapshot.
func (a *Adapter) ReportTelemetry() {
	if a.snapshot == nil {
		return
	}
	payload, err := json.Marshal(a.snapshot())
	if err != nil {
		a.logf("[MQTT] Failed to marshal telemetry: %v", err)
		return
	}
	if err := a.client.Publish(a.topic(topicTelemetry), payload, true); err != nil {
		a.logf("[MQTT] Failed to publish telemetry: %v", err)
	}
}

// ReportError publishes a retained error event. Publishing is
// best-effort: a failure is only logged.
func (a *Adapter) ReportError(errType, message string) {
	if a.events != nil {
		a.events.Add(events.EventError, false, fmt.Sprintf("%s: %s", errType, message))
	}
	payload, err := json.Marshal(map[string]string{
		"type":    errType,
		"message": message,
		"origin":  "firmware",
	})
	if err != nil {
		return
	}
	if err := a.client.Publish(a.topic(topicError), payload, true); err != nil {
		a.logf("[MQTT] Failed to publish error event: %v", err)
	}
}

func (a *Adapter) topic(suffix string) string {
	return a.base + "/" + suffix
}

func (a *Adapter) logf(format string, args ...interface{}) {
	if a.logger != nil {
		a.logger.Printf(format, args...)
	}
}
