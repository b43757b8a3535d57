package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/lcalzada-xor/wguard/internal/adapters/reporting"
	"github.com/lcalzada-xor/wguard/internal/adapters/sniffer/capture"
	"github.com/lcalzada-xor/wguard/internal/adapters/sniffer/injection"
	"github.com/lcalzada-xor/wguard/internal/adapters/sniffer/transport"
	"github.com/lcalzada-xor/wguard/internal/adapters/storage"
	webserver "github.com/lcalzada-xor/wguard/internal/adapters/web/server"
	"github.com/lcalzada-xor/wguard/internal/adapters/web/websocket"
	"github.com/lcalzada-xor/wguard/internal/config"
	"github.com/lcalzada-xor/wguard/internal/core/domain"
	"github.com/lcalzada-xor/wguard/internal/core/ports"
	"github.com/lcalzada-xor/wguard/internal/core/services/alerting"
	grpcserver "github.com/lcalzada-xor/wguard/internal/core/services/grpc"
	"github.com/lcalzada-xor/wguard/internal/core/services/guard"
	"github.com/lcalzada-xor/wguard/internal/core/services/monitor"
	"github.com/lcalzada-xor/wguard/internal/core/services/persistence"
	"github.com/lcalzada-xor/wguard/internal/core/services/tracker"
	"github.com/lcalzada-xor/wguard/internal/geo"
	"github.com/lcalzada-xor/wguard/internal/telemetry"
)

const (
	eventBuffer       = 1024
	persistenceBuffer = 10000
	healthInterval    = 2 * time.Second
	drainTimeout      = 5 * time.Second
)

// Opener opens a capture and injection transport on one interface.
type Opener func(iface string, logger *slog.Logger) (ports.Transport, error)

// PcapOpener opens live pcap transports.
func PcapOpener(iface string, logger *slog.Logger) (ports.Transport, error) {
	return transport.OpenPcap(iface, logger)
}

// Application holds the core components of the application.
// It orchestrates services and infrastructure.
type Application struct {
	Config *config.Config
	Logger *slog.Logger

	Dispatcher  *alerting.Dispatcher
	Tracker     *tracker.Tracker
	Guard       *guard.TwinGuard
	Forge       *injection.Forge
	Monitor     *monitor.Monitor
	Coordinator *capture.Coordinator
	Persistence *persistence.PersistenceManager
	Store       *storage.SQLiteAdapter
	WSManager   *websocket.WSManager
	WebServer   *webserver.Server
	Health      *grpcserver.HealthServer

	events     <-chan domain.CapturedEvent
	sources    []ports.FrameSource
	transports []ports.Transport
}

// New creates a new Application instance and bootstraps its components.
// A nil opener uses live pcap transports.
func New(cfg *config.Config, logger *slog.Logger, open Opener) (*Application, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if open == nil {
		open = PcapOpener
	}
	app := &Application{Config: cfg, Logger: logger}

	if err := app.bootstrap(open); err != nil {
		app.closeTransports()
		if app.Store != nil {
			app.Store.Close()
		}
		return nil, fmt.Errorf("application bootstrap failed: %w", err)
	}
	return app, nil
}

// bootstrap orchestrates the initialization sequence.
func (app *Application) bootstrap(open Opener) error {
	cfg := app.Config
	telemetry.InitMetrics()

	// 1. Alerting and persistence
	location, err := app.location()
	if err != nil {
		return err
	}
	app.Dispatcher = alerting.NewDispatcher(alerting.Config{
		SensorID: cfg.SensorID,
		Location: location,
		Logger:   app.Logger,
	})
	app.WSManager = websocket.NewWSManager(app.Logger)
	app.Dispatcher.AddSink(app.WSManager)

	if cfg.DBPath != "" {
		store, err := storage.NewSQLiteAdapter(cfg.DBPath)
		if err != nil {
			return fmt.Errorf("failed to init storage: %w", err)
		}
		app.Store = store
		app.Persistence = persistence.NewPersistenceManager(store, persistenceBuffer, app.Logger)
		app.Dispatcher.AddSink(app.Persistence)
	} else {
		app.Logger.Warn("persistence disabled, no database path configured")
	}

	// 2. Transports
	if err := app.openTransports(open); err != nil {
		return err
	}

	// 3. Engines
	app.Tracker = tracker.New(tracker.Config{
		HistoryCapacity: cfg.HistoryCapacity,
		Logger:          app.Logger,
	}, app.Dispatcher)

	sender, injectName := app.injectionSender(open)
	app.Forge = injection.New(sender, app.Dispatcher, injection.Config{
		Interface: injectName,
		Interval:  cfg.DeauthInterval,
		Logger:    app.Logger,
		OnStatus:  app.WSManager.BroadcastJob,
	})

	app.Guard = guard.New(guard.Config{
		AutoCountermeasure: cfg.AutoNuke,
		EvictInterval:      cfg.EvictInterval,
		Retention:          cfg.Retention,
		Logger:             app.Logger,
		Prune:              []ports.StalePruner{app.Tracker},
	}, app.Dispatcher, app.Forge)

	app.Monitor = monitor.New(monitor.Config{Logger: app.Logger}, app.Tracker, app.Guard, app.Dispatcher)

	app.Coordinator = capture.New(capture.Config{Logger: app.Logger}, app.Dispatcher)
	app.events = app.Coordinator.Subscribe(eventBuffer)

	// 4. Servers
	deps := webserver.Deps{
		APs:        app.Tracker,
		Registry:   app.Guard,
		Alerts:     app.Dispatcher,
		Interfaces: app.Coordinator,
		Deauth:     app.Forge,
		Exporter:   reporting.NewPDFExporter(),
		WSManager:  app.WSManager,
	}
	if app.Store != nil {
		deps.Verdicts = app.Store
		deps.Drops = map[string]ports.DropCounter{"persistence": app.Persistence}
	}
	app.WebServer = webserver.NewServer(webserver.Config{
		Addr:     cfg.Addr,
		AuthUser: cfg.AuthUser,
		AuthHash: cfg.AuthHash,
		SensorID: cfg.SensorID,
		Logger:   app.Logger,
	}, deps)

	if cfg.GRPCPort > 0 {
		app.Health = grpcserver.NewHealthServer(app.Coordinator, app.Logger)
	}
	return nil
}

func (app *Application) location() (geo.Provider, error) {
	if !app.Config.HasLocation() {
		return geo.Unknown{}, nil
	}
	p, err := geo.NewStaticProvider(*app.Config.Latitude, *app.Config.Longitude)
	if err != nil {
		return nil, fmt.Errorf("sensor location: %w", err)
	}
	return p, nil
}

// openTransports opens every capture interface. One failing interface does
// not stop the others; the run fails only when none opened.
func (app *Application) openTransports(open Opener) error {
	var errs []error
	for _, iface := range app.Config.Interfaces {
		t, err := open(iface, app.Logger)
		if err != nil {
			app.Logger.Error("failed to open interface", "interface", iface, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", iface, err))
			continue
		}
		app.transports = append(app.transports, t)
		app.sources = append(app.sources, t)
	}
	if len(app.sources) == 0 {
		return fmt.Errorf("no capture interface available: %w", errors.Join(errs...))
	}
	return nil
}

// injectionSender reuses the capture transport of the inject interface, or
// opens it separately. A nil sender leaves the forge unable to start jobs.
func (app *Application) injectionSender(open Opener) (ports.FrameSender, string) {
	name := app.Config.InjectInterface
	for _, t := range app.transports {
		if t.Name() == name {
			return t, name
		}
	}
	t, err := open(name, app.Logger)
	if err != nil {
		app.Logger.Error("injection disabled", "interface", name, "error", err)
		return nil, name
	}
	app.transports = append(app.transports, t)
	return t, name
}

// Run starts the application components and blocks until ctx is done or a
// server fails.
func (app *Application) Run(ctx context.Context) error {
	app.Logger.Info("Starting wguard components...")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var workers sync.WaitGroup
	spawn := func(fn func()) {
		workers.Add(1)
		go func() {
			defer workers.Done()
			fn()
		}()
	}

	// 1. Auxiliary Loops
	if app.Persistence != nil {
		app.Persistence.Start(ctx)
	}
	spawn(func() { app.Forge.Run(ctx) })
	spawn(func() { app.Guard.RunEviction(ctx) })
	spawn(func() { app.Monitor.Run(ctx, app.events) })

	// 2. Servers
	errChan := make(chan error, 2)
	spawn(func() {
		if err := app.WebServer.Run(ctx); err != nil {
			errChan <- fmt.Errorf("web server error: %w", err)
		}
	})
	if app.Health != nil {
		lis, err := net.Listen("tcp", fmt.Sprintf(":%d", app.Config.GRPCPort))
		if err != nil {
			cancel()
			app.shutdown(&workers)
			return fmt.Errorf("grpc listen error: %w", err)
		}
		spawn(func() { app.Health.Watch(ctx, healthInterval) })
		spawn(func() {
			<-ctx.Done()
			app.Health.Stop()
		})
		spawn(func() {
			if err := app.Health.Serve(lis); err != nil {
				errChan <- fmt.Errorf("grpc server error: %w", err)
			}
		})
	}

	// 3. Capture
	if err := app.Coordinator.Start(ctx, app.sources); err != nil {
		cancel()
		app.shutdown(&workers)
		return err
	}
	app.Logger.Info("wguard ready", "interfaces", app.Config.Interfaces, "inject", app.Config.InjectInterface)

	var runErr error
	select {
	case <-ctx.Done():
		app.Logger.Info("Termination signal received")
	case runErr = <-errChan:
		app.Logger.Error("component failed", "error", runErr)
	}

	cancel()
	app.shutdown(&workers)
	return runErr
}

func (app *Application) shutdown(workers *sync.WaitGroup) {
	app.Logger.Info("Cleaning up resources...")

	if err := app.Coordinator.Stop(); err != nil {
		app.Logger.Warn("capture stop incomplete", "error", err)
	}
	workers.Wait()

	if app.Persistence != nil {
		select {
		case <-app.Persistence.Done():
		case <-time.After(drainTimeout):
			app.Logger.Warn("persistence drain timed out")
		}
	}
	app.closeTransports()
	if app.Store != nil {
		if err := app.Store.Close(); err != nil {
			app.Logger.Error("storage close failed", "error", err)
		}
	}
}

func (app *Application) closeTransports() {
	for _, t := range app.transports {
		if err := t.Close(); err != nil {
			app.Logger.Warn("transport close failed", "interface", t.Name(), "error", err)
		}
	}
	app.transports = nil
}
