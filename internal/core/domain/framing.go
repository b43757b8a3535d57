package domain

// Framing describes what precedes the 802.11 header in a captured buffer.
type Framing int

const (
	FramingRaw80211 Framing = iota
	FramingRadiotap
)

func (f Framing) String() string {
	if f == FramingRadiotap {
		return "radiotap"
	}
	return "802.11"
}
