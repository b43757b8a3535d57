package grpc

import (
	"context"
	"log/slog"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// CaptureService is the health service name reporting capture liveness.
const CaptureService = "wguard.capture"

// CaptureStatus reports whether capture is alive.
type CaptureStatus interface {
	Running() bool
}

// HealthServer exposes the standard gRPC health protocol. The overall and
// capture services are SERVING while at least one capture loop runs.
type HealthServer struct {
	srv    *grpc.Server
	health *health.Server
	source CaptureStatus
	logger *slog.Logger
}

func NewHealthServer(source CaptureStatus, logger *slog.Logger) *HealthServer {
	if logger == nil {
		logger = slog.Default()
	}
	s := grpc.NewServer()
	h := health.NewServer()
	healthpb.RegisterHealthServer(s, h)

	hs := &HealthServer{srv: s, health: h, source: source, logger: logger}
	hs.set(healthpb.HealthCheckResponse_NOT_SERVING)
	return hs
}

// Serve blocks serving on lis until Stop.
func (h *HealthServer) Serve(lis net.Listener) error {
	h.logger.Info("gRPC health server listening", "addr", lis.Addr().String())
	return h.srv.Serve(lis)
}

// Refresh publishes the current capture state.
func (h *HealthServer) Refresh() healthpb.HealthCheckResponse_ServingStatus {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if h.source != nil && h.source.Running() {
		status = healthpb.HealthCheckResponse_SERVING
	}
	h.set(status)
	return status
}

// Watch refreshes the status every interval until ctx is done.
func (h *HealthServer) Watch(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	h.Refresh()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			h.Refresh()
		}
	}
}

func (h *HealthServer) set(status healthpb.HealthCheckResponse_ServingStatus) {
	h.health.SetServingStatus("", status)
	h.health.SetServingStatus(CaptureService, status)
}

// Stop marks every service NOT_SERVING and drains the server.
func (h *HealthServer) Stop() {
	h.health.Shutdown()
	h.srv.GracefulStop()
}
