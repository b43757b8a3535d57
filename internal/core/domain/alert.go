package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrInvalidSeverity = errors.New("invalid alert severity level")

// AlertType defines the category of an alert.
type AlertType string

const (
	AlertDiscovery AlertType = "DISCOVERY" // new APs, client probes
	AlertAnomaly   AlertType = "ANOMALY"   // deauth on the air, rogue APs
	AlertSystem    AlertType = "SYSTEM"    // capture and injection failures
)

// Alert subtypes emitted by the engine.
const (
	SubtypeAPDiscovered      = "AP_DISCOVERED"
	SubtypeNewOpenNetwork    = "NEW_OPEN_NETWORK"
	SubtypeClientProbe       = "CLIENT_PROBE"
	SubtypeDeauthObserved    = "DEAUTH_OBSERVED"
	SubtypeLegitRegistered   = "LEGIT_AP_REGISTERED"
	SubtypeEvilTwin          = "EVIL_TWIN_DETECTED"
	SubtypeCaptureFailed     = "CAPTURE_FAILED"
	SubtypeInjectionFailed   = "INJECTION_FAILED"
	SubtypeCountermeasureRun = "COUNTERMEASURE_STARTED"
)

// AlertSeverity represents the criticality of a security event.
type AlertSeverity string

const (
	SeverityCritical AlertSeverity = "critical"
	SeverityHigh     AlertSeverity = "high"
	SeverityMedium   AlertSeverity = "medium"
	SeverityLow      AlertSeverity = "low"
	SeverityInfo     AlertSeverity = "info"
)

// Alert represents a specific security event triggered by the system.
type Alert struct {
	ID        string        `json:"id"`
	Type      AlertType     `json:"type"`
	Subtype   string        `json:"subtype"`
	Severity  AlertSeverity `json:"severity"`
	DeviceMAC string        `json:"device_mac,omitempty"` // originating MAC (rogue BSSID, probing client...)
	TargetMAC string        `json:"target_mac,omitempty"`
	SSID      string        `json:"ssid,omitempty"`
	Channel   int           `json:"channel,omitempty"`
	Interface string        `json:"interface,omitempty"`
	Message   string        `json:"message"`
	Details   string        `json:"details,omitempty"`
	Timestamp time.Time     `json:"timestamp"`

	// Set by the dispatcher.
	SensorID  string  `json:"sensor_id,omitempty"`
	Latitude  float64 `json:"lat,omitempty"`
	Longitude float64 `json:"lng,omitempty"`
}

// NewAlert creates a new Alert instance while ensuring the severity domain invariant.
func NewAlert(aType AlertType, subtype string, severity AlertSeverity, message string) (*Alert, error) {
	if !isValidSeverity(severity) {
		return nil, ErrInvalidSeverity
	}

	return &Alert{
		ID:        uuid.New().String(),
		Type:      aType,
		Subtype:   subtype,
		Severity:  severity,
		Message:   message,
		Timestamp: time.Now().UTC(),
	}, nil
}

// MustAlert is NewAlert for severities known at compile time.
func MustAlert(aType AlertType, subtype string, severity AlertSeverity, message string) Alert {
	a, err := NewAlert(aType, subtype, severity, message)
	if err != nil {
		panic(err)
	}
	return *a
}

func isValidSeverity(s AlertSeverity) bool {
	switch s {
	case SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow, SeverityInfo:
		return true
	default:
		return false
	}
}
