package handlers

import (
	"net/http"
	"strconv"

	"github.com/lcalzada-xor/wguard/internal/core/domain"
	"github.com/lcalzada-xor/wguard/internal/core/ports"
)

const (
	DefaultAlertLimit = 100
	MaxAlertLimit     = 500
)

// ScanHandler serves the read-only sensor state.
type ScanHandler struct {
	APs        ports.APInventory
	Registry   ports.RogueRegistry
	Alerts     ports.AlertFeed
	Interfaces ports.CaptureStatus

	// Drops are the alert sinks whose discard counts /api/stats reports.
	Drops map[string]ports.DropCounter
}

// NewScanHandler creates a new ScanHandler
func NewScanHandler(aps ports.APInventory, registry ports.RogueRegistry, alerts ports.AlertFeed, interfaces ports.CaptureStatus) *ScanHandler {
	return &ScanHandler{APs: aps, Registry: registry, Alerts: alerts, Interfaces: interfaces}
}

// HandleListAPs returns every tracked AP sorted by BSSID.
func (h *ScanHandler) HandleListAPs(w http.ResponseWriter, r *http.Request) {
	aps := h.APs.List()
	if aps == nil {
		aps = []domain.APSnapshot{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"count": len(aps),
		"aps":   aps,
	})
}

// HandleGetStats returns AP totals and the alerts dropped per sink.
func (h *ScanHandler) HandleGetStats(w http.ResponseWriter, r *http.Request) {
	stats := h.APs.Stats()
	if len(h.Drops) > 0 {
		stats.DroppedAlerts = make(map[string]int64, len(h.Drops))
		for name, d := range h.Drops {
			stats.DroppedAlerts[name] = d.Dropped()
		}
	}
	writeJSON(w, http.StatusOK, stats)
}

type registryEntry struct {
	SSID       string   `json:"ssid"`
	Legitimate string   `json:"legitimate"`
	Rogues     []string `json:"rogues"`
}

// HandleRegistry returns the legitimate BSSID of every SSID and the other members.
func (h *ScanHandler) HandleRegistry(w http.ResponseWriter, r *http.Request) {
	regs := h.Registry.Registrations()
	entries := make([]registryEntry, 0, len(regs))
	for _, reg := range regs {
		rogues := []string{}
		if len(reg.Members) > 1 {
			rogues = append(rogues, reg.Members[1:]...)
		}
		entries = append(entries, registryEntry{SSID: reg.SSID, Legitimate: reg.Legitimate, Rogues: rogues})
	}
	countered := h.Registry.Countered()
	if countered == nil {
		countered = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"ssids":     entries,
		"countered": countered,
	})
}

// HandleListAlerts returns recent alerts, newest first.
func (h *ScanHandler) HandleListAlerts(w http.ResponseWriter, r *http.Request) {
	limit := DefaultAlertLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, MaxAlertLimit)
	}

	alerts := h.Alerts.Recent(limit)
	if alerts == nil {
		alerts = []domain.Alert{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"count":  len(alerts),
		"alerts": alerts,
	})
}

// HandleListInterfaces returns the state of every capture loop.
func (h *ScanHandler) HandleListInterfaces(w http.ResponseWriter, r *http.Request) {
	statuses := h.Interfaces.Statuses()
	if statuses == nil {
		statuses = []domain.InterfaceStatus{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"running":    h.Interfaces.Running(),
		"interfaces": statuses,
	})
}
