// Package supervisor owns the device lifecycle: it decides between
// provisioning and normal operation at boot, keeps the station
// association alive, and maintains the command bus connection with
// exponential backoff.
package supervisor

import (
	"context"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"accontrol/internal/captive"
	"accontrol/internal/events"
	"accontrol/internal/netlink"
	"accontrol/internal/store"
)

const (
	wifiJoinAttempts = 20
	wifiJoinInterval = 500 * time.Millisecond

	busBackoffBase = 5 * time.Second
	busBackoffMax  = 30 * time.Second

	telemetryInterval = 30 * time.Second
	tickInterval      = 500 * time.Millisecond
)

// Bus is the command bus connection the supervisor maintains.
type Bus interface {
	Connect() error
	Disconnect()
	Connected() bool
	ReportTelemetry()
}

// Supervisor runs the device state machine.
type Supervisor struct {
	store      *store.Store
	link       netlink.Manager
	bus        Bus
	events     *events.Store
	logger     *log.Logger
	apSSID     string
	apPassword string

	busBackoff  *Backoff
	wifiBackoff *Backoff
	tick        time.Duration

	provisioning atomic.Bool
}

// Provisioning reports whether the device is currently running its
// access point instead of operating on a network.
func (s *Supervisor) Provisioning() bool {
	return s.provisioning.Load()
}

// New creates a supervisor. apSSID and apPassword configure the access
// point raised while the device is unprovisioned.
func New(st *store.Store, link netlink.Manager, bus Bus, ev *events.Store, apSSID, apPassword string, logger *log.Logger) *Supervisor {
	return &Supervisor{
		store:       st,
		link:        link,
		bus:         bus,
		events:      ev,
		logger:      logger,
		apSSID:      apSSID,
		apPassword:  apPassword,
		busBackoff:  NewBackoff(busBackoffBase, busBackoffMax),
		wifiBackoff: NewBackoff(busBackoffBase, busBackoffMax),
		tick:        tickInterval,
	}
}

// Run executes the lifecycle until ctx is cancelled. With no stored
// network credentials the device raises its access point and waits for
// provisioning; otherwise it joins the network and keeps the bus
// connection alive. A failed join falls back to provisioning so the
// device never ends up unreachable.
func (s *Supervisor) Run(ctx context.Context) error {
	cfg := s.store.Config()

	if cfg.WifiSSID == "" {
		s.logger.Printf("[SUPERVISOR] No network credentials, entering provisioning mode")
		return s.runProvisioning(ctx)
	}

	if !s.joinWifi(ctx, cfg.WifiSSID, cfg.WifiPassword) {
		s.logger.Printf("[SUPERVISOR] Could not join %q, falling back to provisioning mode", cfg.WifiSSID)
		s.events.Add(events.EventWifi, false, fmt.Sprintf("Failed to join %q", cfg.WifiSSID))
		return s.runProvisioning(ctx)
	}

	s.events.Add(events.EventWifi, true, fmt.Sprintf("Joined %q", cfg.WifiSSID))
	return s.runNormal(ctx)
}

// runProvisioning raises the access point and the captive resolver,
// then waits. The setup UI restarts the service once credentials are
// saved, so there is nothing to drive here.
func (s *Supervisor) runProvisioning(ctx context.Context) error {
	s.provisioning.Store(true)
	ip, err := s.link.StartAP(s.apSSID, s.apPassword)
	if err != nil {
		return fmt.Errorf("start access point: %w", err)
	}
	defer s.link.StopAP()

	s.logger.Printf("[SUPERVISOR] Access point %q up at %s", s.apSSID, ip)
	s.events.Add(events.EventWifi, true, fmt.Sprintf("Access point %q started", s.apSSID))

	dns, err := captive.NewResponder(ip, s.logger)
	if err != nil {
		return fmt.Errorf("captive resolver: %w", err)
	}
	if err := dns.Start(); err != nil {
		s.logger.Printf("[SUPERVISOR] Captive resolver unavailable: %v", err)
	} else {
		defer dns.Stop()
	}

	<-ctx.Done()
	return ctx.Err()
}

// joinWifi associates with the stored network and polls for the link
// to come up.
func (s *Supervisor) joinWifi(ctx context.Context, ssid, password string) bool {
	s.logger.Printf("[SUPERVISOR] Joining %q", ssid)
	if err := s.link.Associate(ctx, ssid, password); err != nil {
		s.logger.Printf("[SUPERVISOR] Associate failed: %v", err)
		return false
	}

	for i := 0; i < wifiJoinAttempts; i++ {
		if s.link.Connected() {
			s.logger.Printf("[SUPERVISOR] Connected to %q", ssid)
			return true
		}
		select {
		case <-ctx.Done():
			return false
		case <-time.After(wifiJoinInterval):
		}
	}
	return false
}

// runNormal keeps the station link and the bus connection alive and
// publishes telemetry on a fixed cadence.
func (s *Supervisor) runNormal(ctx context.Context) error {
	defer s.bus.Disconnect()

	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	var lastTelemetry time.Time

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		now := time.Now()

		if !s.link.Connected() {
			if s.bus.Connected() {
				s.logger.Printf("[SUPERVISOR] Network link lost")
				s.events.Add(events.EventWifi, false, "Network link lost")
				s.bus.Disconnect()
			}
			if s.wifiBackoff.Ready(now) {
				cfg := s.store.Config()
				if err := s.link.Associate(ctx, cfg.WifiSSID, cfg.WifiPassword); err != nil {
					s.wifiBackoff.Fail(now)
				} else if s.link.Connected() {
					s.wifiBackoff.Reset()
					s.events.Add(events.EventWifi, true, fmt.Sprintf("Rejoined %q", cfg.WifiSSID))
				} else {
					s.wifiBackoff.Fail(now)
				}
			}
			continue
		}

		if !s.bus.Connected() {
			// The bus topics embed the customer ID, so the device stays
			// off the bus until configuration completes.
			if !s.store.Config().Complete() {
				continue
			}
			if !s.busBackoff.Ready(now) {
				continue
			}
			if err := s.bus.Connect(); err != nil {
				wait := s.busBackoff.Fail(now)
				s.logger.Printf("[SUPERVISOR] Bus connect failed, next attempt in %s: %v", wait, err)
				s.events.Add(events.EventBus, false, fmt.Sprintf("Connect failed: %v", err))
				continue
			}
			s.busBackoff.Reset()
			lastTelemetry = now
			continue
		}

		if now.Sub(lastTelemetry) >= telemetryInterval {
			s.bus.ReportTelemetry()
			lastTelemetry = now
		}
	}
}
