package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/lcalzada-xor/wguard/internal/adapters/web/handlers"
	"github.com/lcalzada-xor/wguard/internal/adapters/web/websocket"
	"github.com/lcalzada-xor/wguard/internal/core/ports"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Config holds the HTTP surface settings.
type Config struct {
	Addr string

	// AuthUser and AuthHash enable basic auth when AuthHash is set.
	AuthUser string
	AuthHash string

	// DeauthLimit requests per DeauthWindow are allowed per client address.
	DeauthLimit  int
	DeauthWindow time.Duration

	SensorID string
	Logger   *slog.Logger
}

// Deps are the services served over HTTP.
type Deps struct {
	APs        ports.APInventory
	Registry   ports.RogueRegistry
	Alerts     ports.AlertFeed
	Interfaces ports.CaptureStatus
	Deauth     ports.DeauthService
	Verdicts   handlers.VerdictStore // optional
	Exporter   handlers.IncidentExporter
	WSManager  *websocket.WSManager

	// Drops are extra alert sinks reported by /api/stats. The websocket
	// hub is always included.
	Drops map[string]ports.DropCounter
}

// Server handles HTTP and WebSocket connections.
type Server struct {
	cfg Config

	WSManager     *websocket.WSManager
	ScanHandler   *handlers.ScanHandler
	DeauthHandler *handlers.DeauthHandler
	ReportHandler *handlers.ReportHandler

	handler http.Handler
	srv     *http.Server
}

// NewServer creates a new web server.
func NewServer(cfg Config, deps Deps) *Server {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.DeauthLimit <= 0 {
		cfg.DeauthLimit = 10
	}
	if cfg.DeauthWindow <= 0 {
		cfg.DeauthWindow = time.Minute
	}
	if deps.WSManager == nil {
		deps.WSManager = websocket.NewWSManager(cfg.Logger)
	}

	report := handlers.NewReportHandler(deps.APs, deps.Registry, deps.Alerts, deps.Exporter)
	report.Verdicts = deps.Verdicts
	report.SensorID = cfg.SensorID
	report.Logger = cfg.Logger

	scan := handlers.NewScanHandler(deps.APs, deps.Registry, deps.Alerts, deps.Interfaces)
	scan.Drops = map[string]ports.DropCounter{"websocket": deps.WSManager}
	for name, d := range deps.Drops {
		scan.Drops[name] = d
	}

	s := &Server{
		cfg:           cfg,
		WSManager:     deps.WSManager,
		ScanHandler:   scan,
		DeauthHandler: handlers.NewDeauthHandler(deps.Deauth, cfg.Logger),
		ReportHandler: report,
	}
	s.handler = otelhttp.NewHandler(SetupRoutes(s), "wguard-server")
	return s
}

// Handler returns the instrumented router.
func (s *Server) Handler() http.Handler { return s.handler }

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	s.srv = &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.cfg.Logger.Info("web server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.srv.Shutdown(shutdownCtx); err != nil {
			s.cfg.Logger.Error("web server shutdown error", "error", err)
		}
		s.WSManager.Close()
	}()

	s.cfg.Logger.Info("web server listening", "addr", s.cfg.Addr)
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
