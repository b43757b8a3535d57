package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/lcalzada-xor/wguard/internal/core/domain"
	"github.com/lcalzada-xor/wguard/internal/core/ports"
)

// IncidentExporter renders an incident report.
type IncidentExporter interface {
	ExportIncidents(report *domain.IncidentReport) ([]byte, error)
}

// VerdictStore lists persisted rogue verdicts.
type VerdictStore interface {
	ListVerdicts(ctx context.Context) ([]domain.RogueVerdict, error)
}

// ReportHandler handles report generation
type ReportHandler struct {
	APs      ports.APInventory
	Registry ports.RogueRegistry
	Alerts   ports.AlertFeed
	Verdicts VerdictStore // optional
	Exporter IncidentExporter
	SensorID string
	Logger   *slog.Logger
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(aps ports.APInventory, registry ports.RogueRegistry, alerts ports.AlertFeed, exporter IncidentExporter) *ReportHandler {
	return &ReportHandler{
		APs:      aps,
		Registry: registry,
		Alerts:   alerts,
		Exporter: exporter,
		Logger:   slog.Default(),
	}
}

// Build aggregates the incident report from the live services.
func (h *ReportHandler) Build(ctx context.Context) *domain.IncidentReport {
	alerts := h.Alerts.Recent(MaxAlertLimit)
	report := &domain.IncidentReport{
		ID:            uuid.New().String(),
		SensorID:      h.SensorID,
		GeneratedAt:   time.Now(),
		Stats:         h.APs.Stats(),
		Registrations: h.Registry.Registrations(),
		Alerts:        alerts,
	}

	if h.Verdicts != nil {
		verdicts, err := h.Verdicts.ListVerdicts(ctx)
		if err == nil {
			report.Verdicts = verdicts
			return report
		}
		h.Logger.Warn("verdict history unavailable, using recent alerts", "error", err)
	}
	report.Verdicts = verdictsFromAlerts(alerts)
	return report
}

func verdictsFromAlerts(alerts []domain.Alert) []domain.RogueVerdict {
	var out []domain.RogueVerdict
	for _, a := range alerts {
		if a.Subtype != domain.SubtypeEvilTwin {
			continue
		}
		out = append(out, domain.RogueVerdict{
			SSID:            a.SSID,
			LegitimateBSSID: a.TargetMAC,
			RogueBSSID:      a.DeviceMAC,
			Channel:         a.Channel,
			DetectedAt:      a.Timestamp,
		})
	}
	return out
}

// HandleIncidentReport renders the incident PDF.
func (h *ReportHandler) HandleIncidentReport(w http.ResponseWriter, r *http.Request) {
	report := h.Build(r.Context())
	data, err := h.Exporter.ExportIncidents(report)
	if err != nil {
		h.Logger.Error("incident report failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to render report")
		return
	}

	filename := fmt.Sprintf("wguard-incidents-%s.pdf", report.GeneratedAt.Format("20060102-150405"))
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
