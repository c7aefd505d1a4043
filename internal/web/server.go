// Package web serves the local device UI: the captive setup page while
// provisioning, the AC configuration and protocol trial flow once on a
// network, and the status page with a live state stream afterwards.
package web

import (
	"context"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"accontrol/internal/backend"
	"accontrol/internal/events"
	"accontrol/internal/ir"
	"accontrol/internal/netlink"
	"accontrol/internal/store"
	"accontrol/internal/trial"
)

// rebootDelay gives the HTTP response time to reach the browser before
// the service restarts.
const rebootDelay = 1 * time.Second

// Hooks are the lifecycle callbacks the server needs from its host
// process.
type Hooks struct {
	// Provisioning reports whether the device is running its setup
	// access point.
	Provisioning func() bool
	// BusConnected reports whether the command bus is up.
	BusConnected func() bool
	// Reboot restarts the service.
	Reboot func() error
}

// Server is the device UI HTTP server.
type Server struct {
	router   *chi.Mux
	store    *store.Store
	link     netlink.Manager
	emitter  ir.Emitter
	backend  *backend.Client
	events   *events.Store
	hooks    Hooks
	deviceID string
	version  string
	logger   *log.Logger

	mu      sync.Mutex
	session *trial.Session
}

// NewServer wires the UI routes.
func NewServer(st *store.Store, link netlink.Manager, emitter ir.Emitter, bc *backend.Client, ev *events.Store, hooks Hooks, deviceID, version string, logger *log.Logger) *Server {
	s := &Server{
		router:   chi.NewRouter(),
		store:    st,
		link:     link,
		emitter:  emitter,
		backend:  bc,
		events:   ev,
		hooks:    hooks,
		deviceID: deviceID,
		version:  version,
		logger:   logger,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	r := s.router

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/", s.home)
	r.Post("/submit", s.submit)
	r.Get("/config", s.configForm)
	r.Post("/config", s.configure)
	r.Get("/test", s.testPage)
	r.Post("/result", s.result)
	r.Post("/reset", s.reset)
	r.Get("/ws", s.liveState)

	// The captive resolver points every hostname here, so unknown
	// paths go to the setup page instead of a 404 while provisioning.
	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		if s.provisioning() {
			http.Redirect(w, req, "/", http.StatusFound)
			return
		}
		http.NotFound(w, req)
	})
}

// Router returns the HTTP handler.
func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) provisioning() bool {
	return s.hooks.Provisioning != nil && s.hooks.Provisioning()
}

func (s *Server) busConnected() bool {
	return s.hooks.BusConnected != nil && s.hooks.BusConnected()
}

// scheduleReboot restarts the service after the response has drained.
func (s *Server) scheduleReboot(reason string) {
	s.logger.Printf("[WEB] Rebooting: %s", reason)
	time.AfterFunc(rebootDelay, func() {
		if s.hooks.Reboot == nil {
			return
		}
		if err := s.hooks.Reboot(); err != nil {
			s.logger.Printf("[WEB] Reboot failed: %v", err)
		}
	})
}

// register submits the device record to the backend using the stored
// configuration.
func (s *Server) register(ctx context.Context, cfg store.DeviceConfig) error {
	return s.backend.RegisterDevice(ctx, cfg.CustomerID, backend.Registration{
		DeviceID:        s.deviceID,
		ZoneID:          cfg.ZoneID,
		ACBrandName:     cfg.ACBrand,
		ACBrandProtocol: cfg.ACProtocol,
		FirmwareVersion: s.version,
	})
}
