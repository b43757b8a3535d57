// Package tracker keeps the live table of access points seen on the air.
package tracker

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/lcalzada-xor/wguard/internal/core/domain"
	"github.com/lcalzada-xor/wguard/internal/core/ports"
)

// Config holds tracker options.
type Config struct {
	HistoryCapacity int
	TrendThreshold  float64
	Logger          *slog.Logger
}

// Tracker maps BSSIDs to APRecords. The map lock only guards membership;
// each record serializes its own updates.
type Tracker struct {
	cfg    Config
	logger *slog.Logger
	alerts ports.AlertSink

	mu      sync.RWMutex
	records map[string]*domain.APRecord
}

func New(cfg Config, alerts ports.AlertSink) *Tracker {
	if cfg.HistoryCapacity == 0 {
		cfg.HistoryCapacity = domain.DefaultHistoryCapacity
	}
	if cfg.HistoryCapacity < domain.MinHistoryCapacity {
		cfg.HistoryCapacity = domain.MinHistoryCapacity
	}
	if cfg.TrendThreshold <= 0 {
		cfg.TrendThreshold = domain.DefaultTrendThreshold
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Tracker{
		cfg:     cfg,
		logger:  cfg.Logger,
		alerts:  alerts,
		records: make(map[string]*domain.APRecord),
	}
}

// Observe applies a beacon and returns the updated snapshot. isNew is true
// the first time the BSSID is seen.
func (t *Tracker) Observe(ctx context.Context, b domain.BeaconSeen, iface string, at time.Time) (domain.APSnapshot, bool) {
	rec, isNew := t.record(b.BSSID)
	rec.Update(b, iface, at)
	snap := rec.Snapshot(t.cfg.TrendThreshold)

	if isNew {
		t.logger.Debug("New AP", "bssid", b.BSSID, "ssid", b.SSID, "channel", b.Channel, "security", b.Security)
		if snap.IsOpen() && t.alerts != nil {
			a := domain.MustAlert(domain.AlertDiscovery, domain.SubtypeNewOpenNetwork, domain.SeverityMedium,
				fmt.Sprintf("Open network %q detected on channel %d", b.SSID, b.Channel))
			a.DeviceMAC = b.BSSID
			a.SSID = b.SSID
			a.Channel = b.Channel
			a.Interface = iface
			t.alerts.Notify(ctx, a)
		}
	}
	return snap, isNew
}

func (t *Tracker) record(bssid string) (*domain.APRecord, bool) {
	t.mu.RLock()
	rec, ok := t.records[bssid]
	t.mu.RUnlock()
	if ok {
		return rec, false
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if rec, ok = t.records[bssid]; ok {
		return rec, false
	}
	rec = domain.NewAPRecord(bssid, t.cfg.HistoryCapacity)
	t.records[bssid] = rec
	return rec, true
}

// Get returns the snapshot of one AP.
func (t *Tracker) Get(bssid string) (domain.APSnapshot, bool) {
	t.mu.RLock()
	rec, ok := t.records[bssid]
	t.mu.RUnlock()
	if !ok {
		return domain.APSnapshot{}, false
	}
	return rec.Snapshot(t.cfg.TrendThreshold), true
}

// List returns every AP sorted by BSSID.
func (t *Tracker) List() []domain.APSnapshot {
	t.mu.RLock()
	recs := make([]*domain.APRecord, 0, len(t.records))
	for _, r := range t.records {
		recs = append(recs, r)
	}
	t.mu.RUnlock()

	out := make([]domain.APSnapshot, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.Snapshot(t.cfg.TrendThreshold))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BSSID < out[j].BSSID })
	return out
}

// Stats summarizes the table.
func (t *Tracker) Stats() domain.APStats {
	stats := domain.APStats{UpdatedAt: time.Now()}
	for _, s := range t.List() {
		stats.Total++
		if s.IsOpen() {
			stats.Open++
		} else {
			stats.Secured++
		}
		if s.SSID == "" || s.SSID == domain.HiddenSSID {
			stats.Hidden++
		}
	}
	return stats
}

// PruneBefore forgets APs not heard since cutoff.
func (t *Tracker) PruneBefore(cutoff time.Time) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := 0
	for bssid, r := range t.records {
		if r.LastSeen().Before(cutoff) {
			delete(t.records, bssid)
			n++
		}
	}
	return n
}
