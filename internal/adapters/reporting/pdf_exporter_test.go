package reporting

import (
	"bytes"
	"fmt"
	"testing"
	"time"

	"github.com/lcalzada-xor/wguard/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPDFExporter_ExportIncidents(t *testing.T) {
	exporter := NewPDFExporter()
	now := time.Now()

	report := &domain.IncidentReport{
		ID:          "report-1234567890",
		SensorID:    "lobby",
		GeneratedAt: now,
		Stats:       domain.APStats{Total: 3, Open: 1, Secured: 2},
		Registrations: []domain.SSIDRegistration{
			{SSID: "CafeWifi", Legitimate: "02:00:00:00:00:01", Members: []string{"02:00:00:00:00:01", "02:00:00:00:00:02"}},
		},
		Verdicts: []domain.RogueVerdict{
			{SSID: "CafeWifi", LegitimateBSSID: "02:00:00:00:00:01", RogueBSSID: "02:00:00:00:00:02", Channel: 6, DetectedAt: now},
		},
	}
	for i := 0; i < maxAlertRows+5; i++ {
		a := domain.MustAlert(domain.AlertAnomaly, domain.SubtypeEvilTwin, domain.SeverityCritical, fmt.Sprintf("alert %d", i))
		report.Alerts = append(report.Alerts, a)
	}

	pdf, err := exporter.ExportIncidents(report)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF-")))
	assert.Greater(t, len(pdf), 1000)
}

func TestPDFExporter_EmptyReport(t *testing.T) {
	pdf, err := NewPDFExporter().ExportIncidents(&domain.IncidentReport{GeneratedAt: time.Now()})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF-")))
}

func TestPDFExporter_NilReport(t *testing.T) {
	_, err := NewPDFExporter().ExportIncidents(nil)
	assert.Error(t, err)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
}
