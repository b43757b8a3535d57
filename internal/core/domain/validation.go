package domain

import (
	"fmt"
	"net"
	"regexp"
	"strings"
)

// BroadcastMAC addresses every station associated with an AP.
const BroadcastMAC = "FF:FF:FF:FF:FF:FF"

var (
	macRegex       = regexp.MustCompile(`^([0-9A-Fa-f]{2}[:-]){5}([0-9A-Fa-f]{2})$`)
	interfaceRegex = regexp.MustCompile(`^[a-zA-Z0-9\-_]+$`)
)

// IsValidMAC checks if the string is a valid MAC address
func IsValidMAC(mac string) bool {
	return macRegex.MatchString(mac)
}

// IsValidInterface checks if the string is a safe interface name (alphanumeric + - _)
func IsValidInterface(iface string) bool {
	// IFNAMSIZ is 16 on linux
	if len(iface) == 0 || len(iface) > 16 {
		return false
	}
	return interfaceRegex.MatchString(iface)
}

// FormatMAC renders six bytes as uppercase colon separated hex pairs.
// It panics if b holds fewer than six bytes; callers bound-check first.
func FormatMAC(b []byte) string {
	return fmt.Sprintf("%02X:%02X:%02X:%02X:%02X:%02X", b[0], b[1], b[2], b[3], b[4], b[5])
}

// NormalizeMAC returns the canonical uppercase colon form of mac.
func NormalizeMAC(mac string) (string, error) {
	hw, err := ParseMAC(mac)
	if err != nil {
		return "", err
	}
	return FormatMAC(hw), nil
}

// ParseMAC parses a 48-bit MAC in colon or dash notation.
func ParseMAC(mac string) (net.HardwareAddr, error) {
	mac = strings.TrimSpace(mac)
	if !IsValidMAC(mac) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidMAC, mac)
	}
	hw, err := net.ParseMAC(strings.ReplaceAll(mac, "-", ":"))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMAC, err)
	}
	return hw, nil
}
