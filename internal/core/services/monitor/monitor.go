// Package monitor consumes captured radio events and routes them to the AP
// tracker, the twin guard and the alert sink.
package monitor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lcalzada-xor/wguard/internal/core/domain"
	"github.com/lcalzada-xor/wguard/internal/core/ports"
)

const (
	DefaultProbeWindow  = 30 * time.Second
	DefaultDeauthWindow = 5 * time.Second
	pruneInterval       = time.Minute
)

// APTracker is the part of the tracker the monitor feeds.
type APTracker interface {
	Observe(ctx context.Context, b domain.BeaconSeen, iface string, at time.Time) (domain.APSnapshot, bool)
}

// RogueGuard is the part of the twin guard the monitor feeds.
type RogueGuard interface {
	Observe(ctx context.Context, bssid, ssid string, channel int, security string) (*domain.RogueVerdict, bool)
}

type Config struct {
	ProbeWindow  time.Duration
	DeauthWindow time.Duration
	Logger       *slog.Logger
}

type Monitor struct {
	cfg      Config
	logger   *slog.Logger
	tracker  APTracker
	guard    RogueGuard
	alerts   ports.AlertSink
	throttle *throttleCache
	now      func() time.Time
}

func New(cfg Config, tracker APTracker, guard RogueGuard, alerts ports.AlertSink) *Monitor {
	if cfg.ProbeWindow <= 0 {
		cfg.ProbeWindow = DefaultProbeWindow
	}
	if cfg.DeauthWindow <= 0 {
		cfg.DeauthWindow = DefaultDeauthWindow
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Monitor{
		cfg:      cfg,
		logger:   cfg.Logger,
		tracker:  tracker,
		guard:    guard,
		alerts:   alerts,
		throttle: newThrottleCache(),
		now:      time.Now,
	}
}

// Run handles events until ctx is done or events is closed.
func (m *Monitor) Run(ctx context.Context, events <-chan domain.CapturedEvent) {
	ticker := time.NewTicker(pruneInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				m.logger.Info("Event stream closed")
				return
			}
			m.Handle(ctx, ev)
		case <-ticker.C:
			m.throttle.pruneBefore(m.now().Add(-max(m.cfg.ProbeWindow, m.cfg.DeauthWindow)))
		}
	}
}

// Handle routes a single event.
func (m *Monitor) Handle(ctx context.Context, ev domain.CapturedEvent) {
	switch e := ev.Event.(type) {
	case domain.BeaconSeen:
		m.onBeacon(ctx, ev, e)
	case domain.ProbeRequestSeen:
		m.onProbe(ctx, ev, e)
	case domain.DeauthObserved:
		m.onDeauth(ctx, ev, e)
	}
}

func (m *Monitor) onBeacon(ctx context.Context, ev domain.CapturedEvent, b domain.BeaconSeen) {
	at := ev.At
	if at.IsZero() {
		at = m.now()
	}

	if m.tracker != nil {
		if _, isNew := m.tracker.Observe(ctx, b, ev.Interface, at); isNew {
			m.notify(ctx, domain.AlertDiscovery, domain.SubtypeAPDiscovered, domain.SeverityInfo,
				fmt.Sprintf("New AP %s (%s) on channel %d", b.BSSID, b.SSID, b.Channel),
				func(a *domain.Alert) {
					a.DeviceMAC = b.BSSID
					a.SSID = b.SSID
					a.Channel = b.Channel
					a.Interface = ev.Interface
					a.Details = "security=" + b.Security
				})
		}
	}
	if m.guard != nil {
		m.guard.Observe(ctx, b.BSSID, b.SSID, b.Channel, b.Security)
	}
}

func (m *Monitor) onProbe(ctx context.Context, ev domain.CapturedEvent, p domain.ProbeRequestSeen) {
	if !m.throttle.allow("probe|"+p.ClientMAC+"|"+p.SSID, m.cfg.ProbeWindow, m.now()) {
		return
	}
	m.notify(ctx, domain.AlertDiscovery, domain.SubtypeClientProbe, domain.SeverityLow,
		fmt.Sprintf("Client %s probing for %s", p.ClientMAC, p.SSID),
		func(a *domain.Alert) {
			a.DeviceMAC = p.ClientMAC
			a.SSID = p.SSID
			a.Interface = ev.Interface
		})
}

func (m *Monitor) onDeauth(ctx context.Context, ev domain.CapturedEvent, d domain.DeauthObserved) {
	if !m.throttle.allow("deauth|"+d.SrcMAC+"|"+d.DstMAC, m.cfg.DeauthWindow, m.now()) {
		return
	}
	m.notify(ctx, domain.AlertAnomaly, domain.SubtypeDeauthObserved, domain.SeverityHigh,
		fmt.Sprintf("Deauthentication %s -> %s", d.SrcMAC, d.DstMAC),
		func(a *domain.Alert) {
			a.DeviceMAC = d.SrcMAC
			a.TargetMAC = d.DstMAC
			a.Interface = ev.Interface
		})
}

func (m *Monitor) notify(ctx context.Context, aType domain.AlertType, subtype string, sev domain.AlertSeverity, msg string, fill func(*domain.Alert)) {
	if m.alerts == nil {
		return
	}
	a := domain.MustAlert(aType, subtype, sev, msg)
	fill(&a)
	m.alerts.Notify(ctx, a)
}
