package decoder

import (
	"strings"

	"github.com/google/gopacket/layers"
	"github.com/lcalzada-xor/wguard/internal/core/domain"
)

// iterateElements calls fn for each tagged element in data. It stops at the
// first element whose declared length runs past the end of the buffer.
func iterateElements(data []byte, fn func(id layers.Dot11InformationElementID, payload []byte) bool) {
	offset := 0
	limit := len(data)

	for offset+2 <= limit {
		id := layers.Dot11InformationElementID(data[offset])
		length := int(data[offset+1])
		offset += 2

		if offset+length > limit {
			return
		}
		if !fn(id, data[offset:offset+length]) {
			return
		}
		offset += length
	}
}

// elementSummary is what the engine needs out of a beacon body.
type elementSummary struct {
	ssid     string
	hasSSID  bool
	channel  int
	security string
}

func summarizeElements(data []byte) elementSummary {
	s := elementSummary{security: domain.SecurityOpen}

	iterateElements(data, func(id layers.Dot11InformationElementID, payload []byte) bool {
		switch id {
		case layers.Dot11InformationElementIDSSID:
			if !s.hasSSID {
				s.ssid, s.hasSSID = ssidText(payload), true
			}
		case layers.Dot11InformationElementIDDSSet:
			if len(payload) >= 1 {
				s.channel = int(payload[0])
			}
		case layers.Dot11InformationElementIDRSNInfo,
			layers.Dot11InformationElementIDESRates,
			layers.Dot11InformationElementIDVendor:
			s.security = domain.SecuritySecured
		}
		return true
	})

	return s
}

// firstSSID returns the first SSID element, if any.
func firstSSID(data []byte) (string, bool) {
	var (
		ssid  string
		found bool
	)
	iterateElements(data, func(id layers.Dot11InformationElementID, payload []byte) bool {
		if id == layers.Dot11InformationElementIDSSID {
			ssid, found = ssidText(payload), true
			return false
		}
		return true
	})
	return ssid, found
}

func ssidText(payload []byte) string {
	return strings.TrimSpace(strings.ToValidUTF8(string(payload), "�"))
}
