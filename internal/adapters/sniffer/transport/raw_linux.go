//go:build linux

package transport

import (
	"fmt"
	"net"

	"golang.org/x/sys/unix"
)

// RawSender writes frames straight to an AF_PACKET socket bound to the
// interface, bypassing libpcap.
type RawSender struct {
	fd      int
	ifIndex int
}

// NewRawSender opens a transmit-only socket on iface. Protocol 0 keeps the
// kernel from queueing inbound frames on it.
func NewRawSender(iface string) (*RawSender, error) {
	ifi, err := net.InterfaceByName(iface)
	if err != nil {
		return nil, fmt.Errorf("interface %s not found: %w", iface, err)
	}

	fd, err := unix.Socket(unix.AF_PACKET, unix.SOCK_RAW, 0)
	if err != nil {
		return nil, fmt.Errorf("socket creation failed: %w", err)
	}

	ll := sendOnlyAddr(ifi.Index)
	if err := unix.Bind(fd, ll); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("bind failed: %w", err)
	}

	return &RawSender{fd: fd, ifIndex: ifi.Index}, nil
}

func sendOnlyAddr(ifIndex int) *unix.SockaddrLinklayer {
	return &unix.SockaddrLinklayer{Protocol: 0, Ifindex: ifIndex}
}

func (r *RawSender) Send(frame []byte) error {
	return unix.Sendto(r.fd, frame, 0, sendOnlyAddr(r.ifIndex))
}

func (r *RawSender) Close() error {
	return unix.Close(r.fd)
}
