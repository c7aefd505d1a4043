// Package netlink abstracts the wireless interface: station association,
// the provisioning access point and link introspection. The exec-based
// implementation drives NetworkManager; tests substitute a fake.
package netlink

import (
	"context"
	"fmt"
	"log"
	"net"
	"os/exec"
	"strconv"
	"strings"
)

// Manager controls the device's wireless connectivity.
type Manager interface {
	// Associate starts joining the given network. Completion is observed
	// by polling Connected.
	Associate(ctx context.Context, ssid, password string) error
	// Connected reports whether the station link is up.
	Connected() bool
	// RSSI returns the signal strength of the current association in
	// dBm, or 0 when unknown.
	RSSI() int
	// Scan lists the visible network names.
	Scan() ([]string, error)
	// StartAP opens the provisioning access point and returns its
	// address.
	StartAP(ssid, password string) (string, error)
	// StopAP tears the access point down.
	StopAP() error
}

// ExecManager implements Manager by shelling out to nmcli.
type ExecManager struct {
	iface  string
	logger *log.Logger
}

// NewExecManager creates a manager for the given wireless interface.
func NewExecManager(iface string, logger *log.Logger) *ExecManager {
	return &ExecManager{iface: iface, logger: logger}
}

func (m *ExecManager) Associate(ctx context.Context, ssid, password string) error {
	m.logf("[WIFI] Connecting to network: %s", ssid)
	cmd := exec.CommandContext(ctx, "nmcli", "device", "wifi", "connect", ssid,
		"password", password, "ifname", m.iface)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("nmcli connect: %w: %s", err, strings.TrimSpace(string(out)))
	}
	return nil
}

func (m *ExecManager) Connected() bool {
	out, err := exec.Command("nmcli", "-t", "-f", "DEVICE,STATE", "device").Output()
	if err != nil {
		return false
	}
	for _, line := range strings.Split(string(out), "\n") {
		fields := strings.SplitN(line, ":", 2)
		if len(fields) == 2 && fields[0] == m.iface && fields[1] == "connected" {
			return true
		}
	}
	return false
}

func (m *ExecManager) RSSI() int {
	out, err := exec.Command("nmcli", "-t", "-f", "IN-USE,SIGNAL", "device", "wifi").Output()
	if err != nil {
		return 0
	}
	for _, line := range strings.Split(string(out), "\n") {
		fields := strings.SplitN(line, ":", 2)
		if len(fields) == 2 && fields[0] == "*" {
			if signal, err := strconv.Atoi(fields[1]); err == nil {
				// nmcli reports signal as 0-100; approximate dBm.
				return signal/2 - 100
			}
		}
	}
	return 0
}

func (m *ExecManager) Scan() ([]string, error) {
	out, err := exec.Command("nmcli", "-t", "-f", "SSID", "device", "wifi", "list",
		"ifname", m.iface, "--rescan", "yes").Output()
	if err != nil {
		return nil, fmt.Errorf("nmcli scan: %w", err)
	}

	seen := make(map[string]bool)
	var ssids []string
	for _, line := range strings.Split(string(out), "\n") {
		ssid := strings.TrimSpace(line)
		if ssid == "" || seen[ssid] {
			continue
		}
		seen[ssid] = true
		ssids = append(ssids, ssid)
	}
	return ssids, nil
}

func (m *ExecManager) StartAP(ssid, password string) (string, error) {
	m.logf("[WIFI] Starting access point: %s", ssid)
	cmd := exec.Command("nmcli", "device", "wifi", "hotspot",
		"ifname", m.iface, "ssid", ssid, "password", password)
	if out, err := cmd.CombinedOutput(); err != nil {
		return "", fmt.Errorf("nmcli hotspot: %w: %s", err, strings.TrimSpace(string(out)))
	}
	return m.ifaceAddr()
}

func (m *ExecManager) StopAP() error {
	if out, err := exec.Command("nmcli", "device", "disconnect", m.iface).CombinedOutput(); err != nil {
		return fmt.Errorf("nmcli disconnect: %w: %s", err, strings.TrimSpace(string(out)))
	}
	return nil
}

func (m *ExecManager) ifaceAddr() (string, error) {
	iface, err := net.InterfaceByName(m.iface)
	if err != nil {
		return "", fmt.Errorf("interface %s: %w", m.iface, err)
	}
	addrs, err := iface.Addrs()
	if err != nil {
		return "", err
	}
	for _, addr := range addrs {
		if ipNet, ok := addr.(*net.IPNet); ok && ipNet.IP.To4() != nil {
			return ipNet.IP.String(), nil
		}
	}
	return "", fmt.Errorf("no IPv4 address on %s", m.iface)
}

func (m *ExecManager) logf(format string, args ...interface{}) {
	if m.logger != nil {
		m.logger.Printf(format, args...)
	}
}

// DeviceID returns the stable device identifier: the hardware address of
// the named interface, falling back to the first non-loopback interface
// that has one.
func DeviceID(iface string) (string, error) {
	if iface != "" {
		if ifi, err := net.InterfaceByName(iface); err == nil && len(ifi.HardwareAddr) > 0 {
			return ifi.HardwareAddr.String(), nil
		}
	}

	interfaces, err := net.Interfaces()
	if err != nil {
		return "", err
	}
	for _, ifi := range interfaces {
		if ifi.Flags&net.FlagLoopback != 0 || len(ifi.HardwareAddr) == 0 {
			continue
		}
		return ifi.HardwareAddr.String(), nil
	}
	return "", fmt.Errorf("no interface with a hardware address")
}

// APName derives the unique provisioning access point name from the
// device identifier: the last six hex digits of the hardware address.
func APName(deviceID string) string {
	hexOnly := strings.ToUpper(strings.ReplaceAll(deviceID, ":", ""))
	if len(hexOnly) > 6 {
		hexOnly = hexOnly[len(hexOnly)-6:]
	}
	return "AC_Control_" + hexOnly
}
