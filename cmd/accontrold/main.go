package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"accontrol/internal/backend"
	"accontrol/internal/bus"
	"accontrol/internal/config"
	"accontrol/internal/events"
	"accontrol/internal/ir"
	"accontrol/internal/lirc"
	"accontrol/internal/netlink"
	"accontrol/internal/store"
	"accontrol/internal/supervisor"
	"accontrol/internal/update"
	"accontrol/internal/web"
)

// Version is set at build time via -ldflags "-X main.Version=vX.Y.Z"
var Version = "1.0.2"

func main() {
	configPath := flag.String("config", ".env", "path to the environment config file")
	flag.Parse()

	logger := log.New(os.Stdout, "", log.LstdFlags)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}
	logger.Printf("Configuration loaded: %s", cfg)

	// Unreadable storage is the one fatal boot condition.
	st, err := store.Open(cfg.DataFile(), Version, logger)
	if err != nil {
		logger.Fatalf("Failed to open device store: %v", err)
	}
	defer st.Close()

	deviceID, err := netlink.DeviceID(cfg.WifiIface())
	if err != nil {
		logger.Fatalf("Failed to read hardware address: %v", err)
	}
	logger.Printf("Device ID: %s, firmware %s", deviceID, Version)

	link := netlink.NewExecManager(cfg.WifiIface(), logger)
	eventStore := events.NewStore(100)

	coder := lirc.NewTableCoder()
	emitter := lirc.NewTransmitter(cfg.LIRCDevice(), coder, logger)

	backendClient := backend.New(cfg.APIBase(), cfg.APISecret(), cfg.HTTPTimeout(), cfg.TLSInsecure(), link, logger)

	updater, err := update.NewManager(Version, executablePath(logger),
		func(version string) error {
			c := st.Config()
			c.FirmwareVersion = version
			return st.SetConfig(c)
		},
		update.RestartService, eventStore, logger)
	if err != nil {
		logger.Fatalf("Failed to create update manager: %v", err)
	}

	devCfg := st.Config()
	adapter, err := bus.NewAdapter(bus.ClientConfig{
		Broker:      cfg.MQTTBroker(),
		ClientID:    "accontrold-" + deviceID,
		Username:    cfg.MQTTUsername(),
		Password:    cfg.MQTTPassword(),
		TLSInsecure: cfg.TLSInsecure(),
	}, bus.AdapterConfig{
		CustomerID: devCfg.CustomerID,
		DeviceID:   deviceID,
		Updater:    updater,
		Snapshot: func() bus.Telemetry {
			c := st.Config()
			s := st.State()
			return bus.Telemetry{
				DeviceID:        deviceID,
				CustomerID:      c.CustomerID,
				ZoneID:          c.ZoneID,
				ACBrand:         c.ACBrand,
				ACProtocol:      c.ACProtocol,
				FirmwareVersion: Version,
				WifiSSID:        c.WifiSSID,
				RSSI:            link.RSSI(),
				ACPower:         s.Power,
				ACMode:          s.Mode.String(),
				ACTemperature:   s.Degrees,
				ACFanspeed:      s.Fanspeed.String(),
			}
		},
		Events: eventStore,
		Logger: logger,
	})
	if err != nil {
		logger.Fatalf("Failed to create bus adapter: %v", err)
	}

	remote := ir.NewRemote(st, emitter, adapter, logger)
	adapter.SetRemote(remote)

	sup := supervisor.New(st, link, adapter, eventStore,
		netlink.APName(deviceID), cfg.APPassword(), logger)

	ui := web.NewServer(st, link, emitter, backendClient, eventStore, web.Hooks{
		Provisioning: sup.Provisioning,
		BusConnected: adapter.Connected,
		Reboot:       update.RestartService,
	}, deviceID, Version, logger)

	go func() {
		logger.Printf("[WEB] UI listening on %s", cfg.Addr())
		if err := http.ListenAndServe(cfg.Addr(), ui.Router()); err != nil {
			logger.Fatalf("UI server failed: %v", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := sup.Run(ctx); err != nil && ctx.Err() == nil {
		logger.Fatalf("Supervisor failed: %v", err)
	}
	logger.Printf("Shutting down")
}

func executablePath(logger *log.Logger) string {
	path, err := os.Executable()
	if err != nil {
		logger.Printf("Warning: cannot resolve executable path: %v", err)
		return "/usr/local/bin/accontrold"
	}
	return path
}
