// Package decoder turns captured 802.11 management frames into typed radio events.
//
// Decoding never fails loudly: truncated or malformed input simply produces no
// event, and the capture loop moves on to the next frame.
package decoder

import (
	"github.com/google/gopacket/layers"
	"github.com/lcalzada-xor/wguard/internal/core/domain"
)

const (
	// mgmtHeaderLen is the fixed 802.11 management header.
	mgmtHeaderLen = 24
	// beaconBodyOffset skips timestamp (8), interval (2) and capabilities (2).
	beaconBodyOffset = mgmtHeaderLen + 12
)

// Decode returns the event carried by buf, or false when the frame is not a
// management frame of interest or is structurally invalid.
func Decode(buf []byte, framing domain.Framing) (domain.RadioEvent, bool) {
	frame := buf
	signal := DefaultSignalDBM

	if framing == domain.FramingRadiotap {
		var ok bool
		frame, signal, ok = stripRadiotap(buf)
		if !ok {
			return nil, false
		}
	}

	if len(frame) < mgmtHeaderLen {
		return nil, false
	}

	// Dot11Type packs subtype<<2 | type, i.e. frame control byte 0 without the version bits.
	ftype := layers.Dot11Type(frame[0] >> 2)
	if ftype.MainType() != layers.Dot11TypeMgmt {
		return nil, false
	}

	switch ftype {
	case layers.Dot11TypeMgmtBeacon, layers.Dot11TypeMgmtProbeResp:
		return decodeBeacon(frame, signal)
	case layers.Dot11TypeMgmtProbeReq:
		return decodeProbeRequest(frame)
	case layers.Dot11TypeMgmtDeauthentication:
		return domain.DeauthObserved{
			SrcMAC: domain.FormatMAC(frame[10:16]),
			DstMAC: domain.FormatMAC(frame[4:10]),
		}, true
	}
	return nil, false
}

func decodeBeacon(frame []byte, signal int) (domain.RadioEvent, bool) {
	if len(frame) < beaconBodyOffset {
		return nil, false
	}

	s := summarizeElements(frame[beaconBodyOffset:])
	ssid := s.ssid
	if s.hasSSID && ssid == "" {
		ssid = domain.HiddenSSID
	}

	return domain.BeaconSeen{
		BSSID:     domain.FormatMAC(frame[16:22]),
		SSID:      ssid,
		Channel:   s.channel,
		Security:  s.security,
		SignalDBM: signal,
	}, true
}

func decodeProbeRequest(frame []byte) (domain.RadioEvent, bool) {
	ssid, _ := firstSSID(frame[mgmtHeaderLen:])
	if ssid == "" {
		ssid = domain.AnySSID
	}
	return domain.ProbeRequestSeen{
		ClientMAC: domain.FormatMAC(frame[10:16]),
		SSID:      ssid,
	}, true
}
