package reporting

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
	"github.com/lcalzada-xor/wguard/internal/core/domain"
)

// maxAlertRows caps the alert table so the report stays printable.
const maxAlertRows = 60

// PDFExporter exports incident reports to PDF format
type PDFExporter struct{}

// NewPDFExporter creates a new PDF exporter instance
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// ExportIncidents renders the incident report
func (e *PDFExporter) ExportIncidents(report *domain.IncidentReport) ([]byte, error) {
	if report == nil {
		return nil, fmt.Errorf("nil report")
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 20)
	pdf.AddPage()

	e.addHeader(pdf, report)
	e.addStatistics(pdf, report)
	e.addVerdicts(pdf, report)
	e.addRegistry(pdf, report)
	e.addAlerts(pdf, report)
	e.addFooter(pdf, report)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return buf.Bytes(), nil
}

func (e *PDFExporter) addHeader(pdf *gofpdf.Fpdf, report *domain.IncidentReport) {
	pdf.SetFont("Arial", "B", 22)
	pdf.SetTextColor(0, 51, 102)
	pdf.CellFormat(0, 14, "Wireless Incident Report", "", 1, "L", false, 0, "")

	pdf.SetFont("Arial", "", 10)
	pdf.SetTextColor(120, 120, 120)
	pdf.CellFormat(0, 6, fmt.Sprintf("Generated: %s", report.GeneratedAt.Format("2006-01-02 15:04 MST")), "", 1, "L", false, 0, "")
	if report.SensorID != "" {
		pdf.CellFormat(0, 6, "Sensor: "+report.SensorID, "", 1, "L", false, 0, "")
	}
	pdf.Ln(6)
}

func (e *PDFExporter) section(pdf *gofpdf.Fpdf, title string) {
	pdf.SetFont("Arial", "B", 14)
	pdf.SetTextColor(0, 51, 102)
	pdf.CellFormat(0, 10, title, "", 1, "L", false, 0, "")
	pdf.Ln(1)
}

func (e *PDFExporter) empty(pdf *gofpdf.Fpdf, msg string) {
	pdf.SetFont("Arial", "I", 10)
	pdf.SetTextColor(100, 100, 100)
	pdf.CellFormat(0, 7, msg, "", 1, "L", false, 0, "")
	pdf.Ln(4)
}

func (e *PDFExporter) addStatistics(pdf *gofpdf.Fpdf, report *domain.IncidentReport) {
	e.section(pdf, "Airspace Overview")

	stats := []struct {
		label string
		value int
		color []int
	}{
		{"Access Points", report.Stats.Total, []int{0, 102, 204}},
		{"Open", report.Stats.Open, []int{255, 149, 0}},
		{"Secured", report.Stats.Secured, []int{52, 199, 89}},
		{"Hidden", report.Stats.Hidden, []int{150, 150, 150}},
		{"SSIDs Registered", len(report.Registrations), []int{0, 102, 204}},
		{"Rogue Verdicts", len(report.Verdicts), []int{220, 53, 69}},
	}

	colWidth := 85.0
	for i, stat := range stats {
		x := 20.0
		if i%2 == 1 {
			x = 105.0
		}
		pdf.SetXY(x, pdf.GetY())

		pdf.SetFont("Arial", "", 10)
		pdf.SetTextColor(100, 100, 100)
		pdf.CellFormat(50, 7, stat.label+":", "", 0, "L", false, 0, "")

		pdf.SetFont("Arial", "B", 11)
		pdf.SetTextColor(stat.color[0], stat.color[1], stat.color[2])
		pdf.CellFormat(colWidth-50, 7, fmt.Sprintf("%d", stat.value), "", 0, "R", false, 0, "")

		if i%2 == 1 {
			pdf.Ln(7)
		}
	}
	pdf.Ln(8)
}

func (e *PDFExporter) addVerdicts(pdf *gofpdf.Fpdf, report *domain.IncidentReport) {
	e.section(pdf, "Evil Twin Verdicts")
	if len(report.Verdicts) == 0 {
		e.empty(pdf, "No rogue access points detected")
		return
	}

	pdf.SetFillColor(240, 240, 240)
	pdf.SetFont("Arial", "B", 10)
	pdf.SetTextColor(60, 60, 60)
	pdf.CellFormat(45, 8, "SSID", "1", 0, "L", true, 0, "")
	pdf.CellFormat(40, 8, "Legitimate", "1", 0, "C", true, 0, "")
	pdf.CellFormat(40, 8, "Rogue", "1", 0, "C", true, 0, "")
	pdf.CellFormat(15, 8, "Ch", "1", 0, "C", true, 0, "")
	pdf.CellFormat(30, 8, "Detected", "1", 1, "C", true, 0, "")

	pdf.SetFont("Arial", "", 9)
	for _, v := range report.Verdicts {
		pdf.SetTextColor(60, 60, 60)
		pdf.CellFormat(45, 7, truncate(v.SSID, 24), "1", 0, "L", false, 0, "")
		pdf.CellFormat(40, 7, v.LegitimateBSSID, "1", 0, "C", false, 0, "")
		pdf.SetTextColor(220, 53, 69)
		pdf.CellFormat(40, 7, v.RogueBSSID, "1", 0, "C", false, 0, "")
		pdf.SetTextColor(60, 60, 60)
		pdf.CellFormat(15, 7, fmt.Sprintf("%d", v.Channel), "1", 0, "C", false, 0, "")
		pdf.CellFormat(30, 7, v.DetectedAt.Format("01-02 15:04:05"), "1", 1, "C", false, 0, "")
	}
	pdf.Ln(8)
}

func (e *PDFExporter) addRegistry(pdf *gofpdf.Fpdf, report *domain.IncidentReport) {
	e.section(pdf, "Legitimacy Registry")
	if len(report.Registrations) == 0 {
		e.empty(pdf, "No SSIDs registered")
		return
	}

	pdf.SetFillColor(240, 240, 240)
	pdf.SetFont("Arial", "B", 10)
	pdf.SetTextColor(60, 60, 60)
	pdf.CellFormat(60, 8, "SSID", "1", 0, "L", true, 0, "")
	pdf.CellFormat(45, 8, "Legitimate BSSID", "1", 0, "C", true, 0, "")
	pdf.CellFormat(65, 8, "Other BSSIDs", "1", 1, "C", true, 0, "")

	pdf.SetFont("Arial", "", 9)
	for _, r := range report.Registrations {
		others := len(r.Members) - 1
		pdf.CellFormat(60, 7, truncate(r.SSID, 32), "1", 0, "L", false, 0, "")
		pdf.CellFormat(45, 7, r.Legitimate, "1", 0, "C", false, 0, "")
		pdf.CellFormat(65, 7, fmt.Sprintf("%d", others), "1", 1, "C", false, 0, "")
	}
	pdf.Ln(8)
}

func (e *PDFExporter) addAlerts(pdf *gofpdf.Fpdf, report *domain.IncidentReport) {
	e.section(pdf, "Recent Alerts")
	if len(report.Alerts) == 0 {
		e.empty(pdf, "No alerts recorded")
		return
	}

	pdf.SetFillColor(240, 240, 240)
	pdf.SetFont("Arial", "B", 10)
	pdf.SetTextColor(60, 60, 60)
	pdf.CellFormat(30, 8, "Time", "1", 0, "C", true, 0, "")
	pdf.CellFormat(20, 8, "Severity", "1", 0, "C", true, 0, "")
	pdf.CellFormat(120, 8, "Message", "1", 1, "L", true, 0, "")

	pdf.SetFont("Arial", "", 8)
	for i, a := range report.Alerts {
		if i >= maxAlertRows {
			e.empty(pdf, fmt.Sprintf("%d more alerts omitted", len(report.Alerts)-maxAlertRows))
			break
		}
		r, g, b := e.getSeverityColor(a.Severity)
		pdf.SetTextColor(60, 60, 60)
		pdf.CellFormat(30, 6, a.Timestamp.Format("01-02 15:04:05"), "1", 0, "C", false, 0, "")
		pdf.SetTextColor(r, g, b)
		pdf.CellFormat(20, 6, string(a.Severity), "1", 0, "C", false, 0, "")
		pdf.SetTextColor(60, 60, 60)
		pdf.CellFormat(120, 6, truncate(a.Message, 80), "1", 1, "L", false, 0, "")
	}
}

// getSeverityColor returns RGB color based on severity
func (e *PDFExporter) getSeverityColor(s domain.AlertSeverity) (r, g, b int) {
	switch s {
	case domain.SeverityCritical:
		return 220, 53, 69 // Red
	case domain.SeverityHigh:
		return 255, 149, 0 // Orange
	case domain.SeverityMedium:
		return 255, 204, 0 // Yellow
	default:
		return 52, 199, 89 // Green
	}
}

func (e *PDFExporter) addFooter(pdf *gofpdf.Fpdf, report *domain.IncidentReport) {
	pdf.SetY(-20)
	pdf.SetDrawColor(200, 200, 200)
	pdf.Line(20, pdf.GetY(), 190, pdf.GetY())
	pdf.Ln(3)

	pdf.SetFont("Arial", "I", 8)
	pdf.SetTextColor(120, 120, 120)
	id := report.ID
	if len(id) > 8 {
		id = id[:8]
	}
	pdf.CellFormat(0, 5, fmt.Sprintf("Generated by wguard | Report ID: %s", id), "", 1, "C", false, 0, "")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
