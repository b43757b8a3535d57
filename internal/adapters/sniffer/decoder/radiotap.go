package decoder

import "encoding/binary"

const (
	radiotapMinLen = 8

	// presentAntennaSignal is the present-word bit that gates the signal scan.
	presentAntennaSignal = 1 << 2

	// signalSentinel is the tag byte the scan looks for.
	signalSentinel = 0x0B

	// DefaultSignalDBM is reported when no signal could be extracted.
	DefaultSignalDBM = -95
)

// stripRadiotap returns the 802.11 frame following the radiotap header and the
// antenna signal estimate. ok is false when the header is truncated or its
// declared length is inconsistent with the buffer.
func stripRadiotap(buf []byte) (frame []byte, signal int, ok bool) {
	if len(buf) < radiotapMinLen {
		return nil, 0, false
	}
	rtLen := int(binary.LittleEndian.Uint16(buf[2:4]))
	if rtLen < radiotapMinLen || rtLen > len(buf) {
		return nil, 0, false
	}
	present := binary.LittleEndian.Uint32(buf[4:8])
	return buf[rtLen:], SignalHeuristic(buf[:rtLen], present), true
}

// SignalHeuristic estimates the antenna signal in dBm. It does not walk the
// radiotap field layout: it scans the header after the present word for the
// first sentinel byte and reads the following byte as a signed value. Any
// unrelated field byte equal to the sentinel will be misread as the tag.
func SignalHeuristic(header []byte, present uint32) int {
	if present&presentAntennaSignal == 0 {
		return DefaultSignalDBM
	}
	for i := radiotapMinLen; i < len(header)-1; i++ {
		if header[i] == signalSentinel {
			return int(int8(header[i+1]))
		}
	}
	return DefaultSignalDBM
}
