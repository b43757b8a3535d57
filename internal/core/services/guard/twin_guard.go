// Package guard decides which BSSID is legitimate for each SSID and issues a
// single verdict against every other BSSID that later claims it.
package guard

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/lcalzada-xor/wguard/internal/core/domain"
	"github.com/lcalzada-xor/wguard/internal/core/ports"
	"github.com/lcalzada-xor/wguard/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	DefaultEvictInterval = 5 * time.Minute
	DefaultRetention     = 30 * time.Minute
)

// Config holds guard options.
type Config struct {
	// AutoCountermeasure engages the countermeasure on every verdict.
	AutoCountermeasure bool
	EvictInterval      time.Duration
	Retention          time.Duration
	Logger             *slog.Logger

	// Prune are other tables cut to the same retention window on each eviction.
	Prune []ports.StalePruner
}

// TwinGuard owns the legitimacy registry, the verdict ledger and the liveness map.
type TwinGuard struct {
	cfg      Config
	logger   *slog.Logger
	alerts   ports.AlertSink
	counter  ports.Countermeasure
	tracer   trace.Tracer
	now      func() time.Time
	registry *Registry
	ledger   *Ledger
	liveness *Liveness
}

// New creates a guard. counter may be nil, which disables countermeasures.
func New(cfg Config, alerts ports.AlertSink, counter ports.Countermeasure) *TwinGuard {
	if cfg.EvictInterval <= 0 {
		cfg.EvictInterval = DefaultEvictInterval
	}
	if cfg.Retention <= 0 {
		cfg.Retention = DefaultRetention
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &TwinGuard{
		cfg:      cfg,
		logger:   cfg.Logger,
		alerts:   alerts,
		counter:  counter,
		tracer:   telemetry.Tracer(),
		now:      time.Now,
		registry: NewRegistry(),
		ledger:   NewLedger(),
		liveness: NewLiveness(),
	}
}

// Observe records one beacon sighting. It returns a verdict the first time a
// BSSID other than the legitimate one advertises a registered SSID.
func (g *TwinGuard) Observe(ctx context.Context, bssid, ssid string, channel int, security string) (*domain.RogueVerdict, bool) {
	bssid = strings.TrimSpace(bssid)
	ssid = strings.TrimSpace(ssid)
	// Sentinel SSIDs are shared by unrelated APs and never name a network.
	if bssid == "" || ssid == "" || ssid == domain.HiddenSSID || ssid == domain.AnySSID {
		return nil, false
	}

	now := g.now()
	g.liveness.Touch(bssid, now)

	legit, first := g.registry.Register(ssid, bssid)
	if first {
		g.logger.Info("Legitimate AP registered", "ssid", ssid, "bssid", bssid, "channel", channel, "security", security)
		g.notify(ctx, domain.SubtypeLegitRegistered, domain.AlertDiscovery, domain.SeverityInfo,
			fmt.Sprintf("Registered %s as legitimate AP for %q", bssid, ssid),
			func(a *domain.Alert) {
				a.DeviceMAC = bssid
				a.SSID = ssid
				a.Channel = channel
			})
		return nil, false
	}
	if legit == bssid {
		return nil, false
	}
	if !g.ledger.TryMark(bssid) {
		return nil, false
	}

	verdict := domain.RogueVerdict{
		SSID:            ssid,
		LegitimateBSSID: legit,
		RogueBSSID:      bssid,
		Channel:         channel,
		DetectedAt:      now,
	}
	g.issue(ctx, verdict, security)
	return &verdict, true
}

func (g *TwinGuard) issue(ctx context.Context, v domain.RogueVerdict, security string) {
	ctx, span := g.tracer.Start(ctx, "guard.verdict", trace.WithAttributes(
		attribute.String("wifi.ssid", v.SSID),
		attribute.String("wifi.bssid.legitimate", v.LegitimateBSSID),
		attribute.String("wifi.bssid.rogue", v.RogueBSSID),
		attribute.Int("wifi.channel", v.Channel),
	))
	defer span.End()

	telemetry.Verdicts.Inc()
	g.logger.Warn("Evil twin detected",
		"ssid", v.SSID, "legitimate", v.LegitimateBSSID, "rogue", v.RogueBSSID, "channel", v.Channel)

	g.notify(ctx, domain.SubtypeEvilTwin, domain.AlertAnomaly, domain.SeverityCritical,
		fmt.Sprintf("Evil Twin Detected: %s impersonates %q (legitimate %s)", v.RogueBSSID, v.SSID, v.LegitimateBSSID),
		func(a *domain.Alert) {
			a.DeviceMAC = v.RogueBSSID
			a.TargetMAC = v.LegitimateBSSID
			a.SSID = v.SSID
			a.Channel = v.Channel
			a.Details = "security=" + security
		})

	if !g.cfg.AutoCountermeasure || g.counter == nil {
		span.SetAttributes(attribute.Bool("guard.countermeasure", false))
		return
	}

	span.SetAttributes(attribute.Bool("guard.countermeasure", true))
	status, err := g.counter.Engage(ctx, v)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "countermeasure failed")
		g.logger.Error("Countermeasure failed", "rogue", v.RogueBSSID, "error", err)
		return
	}
	span.SetAttributes(attribute.String("guard.job", status.ID))
}

func (g *TwinGuard) notify(ctx context.Context, subtype string, aType domain.AlertType, sev domain.AlertSeverity, msg string, fill func(*domain.Alert)) {
	if g.alerts == nil {
		return
	}
	a := domain.MustAlert(aType, subtype, sev, msg)
	fill(&a)
	g.alerts.Notify(ctx, a)
}

// RunEviction drops stale liveness entries every EvictInterval until ctx is
// done. The registry and the ledger are never pruned.
func (g *TwinGuard) RunEviction(ctx context.Context) {
	ticker := time.NewTicker(g.cfg.EvictInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			g.EvictStale()
		}
	}
}

// EvictStale removes liveness entries older than the retention window and
// prunes the configured tables with the same cutoff.
func (g *TwinGuard) EvictStale() int {
	cutoff := g.now().Add(-g.cfg.Retention)
	n := g.liveness.EvictBefore(cutoff)
	if n > 0 {
		g.logger.Debug("Evicted stale APs", "count", n, "remaining", g.liveness.Len())
	}
	for _, p := range g.cfg.Prune {
		if pruned := p.PruneBefore(cutoff); pruned > 0 {
			g.logger.Debug("Pruned stale entries", "count", pruned)
		}
	}
	return n
}

// Registrations lists every known SSID with its legitimate BSSID.
func (g *TwinGuard) Registrations() []domain.SSIDRegistration { return g.registry.Snapshot() }

// Countered lists every BSSID that received a verdict.
func (g *TwinGuard) Countered() []string { return g.ledger.List() }

// Tracked returns the number of BSSIDs in the liveness map.
func (g *TwinGuard) Tracked() int { return g.liveness.Len() }

// Legitimate returns the legitimate BSSID for ssid.
func (g *TwinGuard) Legitimate(ssid string) (string, bool) { return g.registry.Legitimate(ssid) }
