// Package alerting stamps, records and fans out alerts raised by the engine.
package alerting

import (
	"context"
	"log/slog"
	"sync"

	"github.com/lcalzada-xor/wguard/internal/core/domain"
	"github.com/lcalzada-xor/wguard/internal/core/ports"
	"github.com/lcalzada-xor/wguard/internal/geo"
	"github.com/lcalzada-xor/wguard/internal/telemetry"
)

// DefaultRingSize is how many recent alerts are kept in memory.
const DefaultRingSize = 500

type Config struct {
	SensorID string
	RingSize int
	Location geo.Provider
	Logger   *slog.Logger
}

// Dispatcher implements ports.AlertSink. Registered sinks are called inline
// and must not block.
type Dispatcher struct {
	sensorID string
	loc      geo.Provider
	logger   *slog.Logger

	mu    sync.RWMutex
	sinks []ports.AlertSink
	ring  []domain.Alert
	next  int
	full  bool
}

func NewDispatcher(cfg Config) *Dispatcher {
	if cfg.RingSize <= 0 {
		cfg.RingSize = DefaultRingSize
	}
	if cfg.Location == nil {
		cfg.Location = geo.Unknown{}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Dispatcher{
		sensorID: cfg.SensorID,
		loc:      cfg.Location,
		logger:   cfg.Logger,
		ring:     make([]domain.Alert, cfg.RingSize),
	}
}

// AddSink registers a downstream consumer.
func (d *Dispatcher) AddSink(s ports.AlertSink) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sinks = append(d.sinks, s)
}

func (d *Dispatcher) Notify(ctx context.Context, a domain.Alert) {
	if a.SensorID == "" {
		a.SensorID = d.sensorID
	}
	if loc := d.loc.GetLocation(); loc.Known && a.Latitude == 0 && a.Longitude == 0 {
		a.Latitude, a.Longitude = loc.Latitude, loc.Longitude
	}

	telemetry.AlertsTotal.WithLabelValues(a.Subtype, string(a.Severity)).Inc()
	d.logger.Log(ctx, levelFor(a.Severity), a.Message,
		"subtype", a.Subtype, "severity", a.Severity, "device", a.DeviceMAC, "ssid", a.SSID, "interface", a.Interface)

	d.mu.Lock()
	d.ring[d.next] = a
	d.next = (d.next + 1) % len(d.ring)
	if d.next == 0 {
		d.full = true
	}
	sinks := d.sinks
	d.mu.Unlock()

	for _, s := range sinks {
		s.Notify(ctx, a)
	}
}

// Recent returns up to limit alerts, newest first. limit <= 0 returns all.
func (d *Dispatcher) Recent(limit int) []domain.Alert {
	d.mu.RLock()
	defer d.mu.RUnlock()

	n := d.next
	if d.full {
		n = len(d.ring)
	}
	if limit <= 0 || limit > n {
		limit = n
	}

	out := make([]domain.Alert, 0, limit)
	for i := 0; i < limit; i++ {
		idx := (d.next - 1 - i + len(d.ring)) % len(d.ring)
		out = append(out, d.ring[idx])
	}
	return out
}

func levelFor(s domain.AlertSeverity) slog.Level {
	switch s {
	case domain.SeverityCritical:
		return slog.LevelError
	case domain.SeverityHigh:
		return slog.LevelWarn
	case domain.SeverityLow:
		return slog.LevelDebug
	default:
		return slog.LevelInfo
	}
}
