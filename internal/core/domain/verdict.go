package domain

import "time"

// RogueVerdict is issued once per rogue BSSID advertising an already registered SSID.
type RogueVerdict struct {
	SSID            string    `json:"ssid"`
	LegitimateBSSID string    `json:"legitimate_bssid"`
	RogueBSSID      string    `json:"rogue_bssid"`
	Channel         int       `json:"channel"`
	DetectedAt      time.Time `json:"detected_at"`
}

// SSIDRegistration lists every BSSID seen for one SSID in first-seen order.
// Legitimate is always Members[0].
type SSIDRegistration struct {
	SSID       string   `json:"ssid"`
	Legitimate string   `json:"legitimate"`
	Members    []string `json:"members"`
}
