package domain

import "time"

// EventKind identifies the variant carried by a RadioEvent.
type EventKind string

const (
	KindBeacon       EventKind = "beacon"
	KindProbeRequest EventKind = "probe_request"
	KindDeauth       EventKind = "deauth"
)

// Security classes assigned by the decoder. The classification is coarse:
// any RSN, extended-rates or vendor element marks the network as secured.
const (
	SecuritySecured = "secured"
	SecurityOpen    = "open"
)

// Sentinel SSIDs produced by the decoder.
const (
	HiddenSSID = "<hidden>"
	AnySSID    = "<any>"
)

// RadioEvent is a typed observation decoded from a single captured frame.
// Implementations are only ever built from structurally valid input.
type RadioEvent interface {
	Kind() EventKind
}

// BeaconSeen is produced by beacons and probe responses.
type BeaconSeen struct {
	BSSID     string `json:"bssid"`
	SSID      string `json:"ssid"`
	Channel   int    `json:"channel"`
	Security  string `json:"security"`
	SignalDBM int    `json:"signal_dbm"`
}

func (BeaconSeen) Kind() EventKind { return KindBeacon }

// ProbeRequestSeen is produced by a client probing for a network.
type ProbeRequestSeen struct {
	ClientMAC string `json:"client_mac"`
	SSID      string `json:"ssid"`
}

func (ProbeRequestSeen) Kind() EventKind { return KindProbeRequest }

// DeauthObserved is produced by any deauthentication frame on the air.
type DeauthObserved struct {
	SrcMAC string `json:"src_mac"`
	DstMAC string `json:"dst_mac"`
}

func (DeauthObserved) Kind() EventKind { return KindDeauth }

// CapturedEvent wraps a RadioEvent with its capture context.
type CapturedEvent struct {
	Interface string
	At        time.Time
	Event     RadioEvent
}
