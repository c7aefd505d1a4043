package web

import (
	"fmt"
	"net/http"
	"strings"

	"accontrol/internal/events"
	"accontrol/internal/ir"
	"accontrol/internal/trial"
)

// home serves the page matching the device's lifecycle: the network
// picker while provisioning, the AC configuration form until a
// protocol is resolved, and the status page afterwards.
func (s *Server) home(w http.ResponseWriter, r *http.Request) {
	if s.provisioning() {
		networks, err := s.link.Scan()
		if err != nil {
			s.logger.Printf("[WEB] Network scan failed: %v", err)
		}
		renderPage(w, "AC Control Setup", setupPageBody(networks))
		return
	}

	cfg := s.store.Config()
	if !cfg.Complete() {
		http.Redirect(w, r, "/config", http.StatusFound)
		return
	}

	state := s.store.State()
	renderPage(w, "AC Control", statusPageBody(statusData{
		DeviceID:   s.deviceID,
		Version:    s.version,
		SSID:       cfg.WifiSSID,
		RSSI:       s.link.RSSI(),
		CustomerID: cfg.CustomerID,
		ZoneID:     cfg.ZoneID,
		Brand:      cfg.ACBrand,
		Protocol:   cfg.ACProtocol,
		Bus:        s.busConnected(),
		Power:      state.Power,
		Mode:       state.Mode.String(),
		Degrees:    state.Degrees,
		Fanspeed:   state.Fanspeed.String(),
		Events:     s.events.GetAll(),
	}))
}

// submit stores the network credentials and restarts the device so it
// boots into station mode.
func (s *Server) submit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "malformed form", http.StatusBadRequest)
		return
	}

	ssid := strings.TrimSpace(r.FormValue("ssid"))
	password := r.FormValue("password")
	if ssid == "" {
		http.Error(w, "network name is required", http.StatusBadRequest)
		return
	}

	cfg := s.store.Config()
	cfg.WifiSSID = ssid
	cfg.WifiPassword = password
	if err := s.store.SetConfig(cfg); err != nil {
		s.logger.Printf("[WEB] Saving credentials failed: %v", err)
		http.Error(w, "could not save credentials", http.StatusInternalServerError)
		return
	}

	s.events.Add(events.EventWifi, true, fmt.Sprintf("Credentials saved for %q", ssid))
	renderPage(w, "AC Control Setup", rebootPageBody(fmt.Sprintf("Credentials for %q saved.", ssid)))
	s.scheduleReboot("network credentials saved")
}

func (s *Server) configForm(w http.ResponseWriter, r *http.Request) {
	renderPage(w, "AC Configuration", configPageBody(ir.Brands()))
}

// configure validates the customer, zone and brand, then either starts
// the interactive protocol trial or, when testing is skipped, trusts
// the first supported candidate and registers straight away.
func (s *Server) configure(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "malformed form", http.StatusBadRequest)
		return
	}

	customerID := strings.TrimSpace(r.FormValue("customer_id"))
	zoneID := strings.TrimSpace(r.FormValue("zone_id"))
	brand := strings.TrimSpace(r.FormValue("ac_brand"))
	skipTesting := r.FormValue("skip_testing") != ""

	if customerID == "" || zoneID == "" || brand == "" {
		http.Error(w, "customer id, zone id and brand are all required", http.StatusBadRequest)
		return
	}
	if _, ok := ir.Candidates(brand); !ok {
		http.Error(w, fmt.Sprintf("unknown AC brand %q", brand), http.StatusBadRequest)
		return
	}

	valid, err := s.backend.ValidateZone(r.Context(), customerID, zoneID)
	if err != nil {
		s.events.Add(events.EventRegister, false, fmt.Sprintf("Zone validation failed: %v", err))
		http.Error(w, fmt.Sprintf("zone validation failed: %v", err), http.StatusBadGateway)
		return
	}
	if !valid {
		http.Error(w, fmt.Sprintf("zone %q is not valid for customer %q", zoneID, customerID), http.StatusBadRequest)
		return
	}

	cfg := s.store.Config()
	cfg.CustomerID = customerID
	cfg.ZoneID = zoneID
	cfg.ACBrand = brand
	cfg.ACProtocol = ""
	if err := s.store.SetConfig(cfg); err != nil {
		http.Error(w, "could not save configuration", http.StatusInternalServerError)
		return
	}

	if skipTesting {
		protocol, err := trial.PickSupported(brand, s.emitter)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		s.finishTrial(w, r, protocol, fmt.Sprintf("Protocol %s selected without testing.", protocol))
		return
	}

	session, err := trial.Begin(brand)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	s.session = session
	_, ok := session.Transmit(s.emitter, s.logger)
	s.mu.Unlock()

	if !ok {
		s.events.Add(events.EventTrial, false, fmt.Sprintf("No working protocol for %q", brand))
		renderPage(w, "AC Configuration", exhaustedPageBody(brand))
		return
	}
	http.Redirect(w, r, "/test", http.StatusFound)
}

// testPage shows the candidate under test and asks for a verdict.
func (s *Server) testPage(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	session := s.session
	s.mu.Unlock()

	if session == nil || session.Phase != trial.AwaitingVerdict {
		http.Redirect(w, r, "/config", http.StatusFound)
		return
	}

	pos, total := session.Remaining()
	renderPage(w, "Protocol Test", testPageBody(session.Brand, session.Current().String(), pos, total))
}

// result applies the operator's verdict. A confirmation persists the
// protocol and registers the device; a rejection moves on to the next
// candidate or ends the trial.
func (s *Server) result(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "malformed form", http.StatusBadRequest)
		return
	}
	verdict := r.FormValue("verdict")
	if verdict != "yes" && verdict != "no" {
		http.Error(w, "verdict must be yes or no", http.StatusBadRequest)
		return
	}

	// The session phase is read and advanced under one lock so that
	// concurrent verdicts cannot interleave with the reducer.
	s.mu.Lock()
	session := s.session

	// A session already in Succeeded means a previous registration
	// attempt failed; a repeated "yes" retries it.
	if session == nil || (session.Phase != trial.AwaitingVerdict && session.Phase != trial.Succeeded) {
		s.mu.Unlock()
		http.Error(w, "no protocol test in progress", http.StatusBadRequest)
		return
	}

	if session.Phase == trial.Succeeded && verdict == "no" {
		s.mu.Unlock()
		http.Error(w, "protocol already confirmed", http.StatusBadRequest)
		return
	}

	brand := session.Brand

	if verdict == "yes" {
		session.Verdict(true)
		protocol := session.Current()
		s.mu.Unlock()

		s.events.Add(events.EventTrial, true, fmt.Sprintf("Protocol %s confirmed for %q", protocol, brand))
		s.finishTrial(w, r, protocol, fmt.Sprintf("Protocol %s confirmed.", protocol))
		return
	}

	session.Verdict(false)
	var sent bool
	if session.Phase == trial.AwaitingTransmission {
		_, sent = session.Transmit(s.emitter, s.logger)
	}
	exhausted := session.Phase == trial.Exhausted
	s.mu.Unlock()

	if exhausted || !sent {
		s.events.Add(events.EventTrial, false, fmt.Sprintf("No working protocol for %q", brand))
		renderPage(w, "Protocol Test", exhaustedPageBody(brand))
		return
	}
	http.Redirect(w, r, "/test", http.StatusFound)
}

// finishTrial persists the resolved protocol, registers the device and
// reboots into fully configured operation. A failed registration keeps
// the resolved protocol so the operator can retry.
func (s *Server) finishTrial(w http.ResponseWriter, r *http.Request, protocol ir.Protocol, message string) {
	cfg := s.store.Config()
	cfg.ACProtocol = protocol.Code()
	if err := s.store.SetConfig(cfg); err != nil {
		http.Error(w, "could not save protocol", http.StatusInternalServerError)
		return
	}

	if err := s.register(r.Context(), cfg); err != nil {
		s.events.Add(events.EventRegister, false, fmt.Sprintf("Registration failed: %v", err))
		http.Error(w, fmt.Sprintf("device registration failed, please retry: %v", err), http.StatusBadGateway)
		return
	}

	s.events.Add(events.EventRegister, true, "Device registered")
	renderPage(w, "AC Configuration", rebootPageBody(message+" Device registered."))
	s.scheduleReboot("configuration complete")
}

// reset wipes all persisted records and reboots into provisioning.
func (s *Server) reset(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Reset(); err != nil {
		http.Error(w, "factory reset failed", http.StatusInternalServerError)
		return
	}
	s.events.Add(events.EventReset, true, "Factory reset")
	renderPage(w, "AC Control", rebootPageBody("All settings erased."))
	s.scheduleReboot("factory reset")
}
