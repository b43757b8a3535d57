// Package transport opens monitor-mode interfaces for capture and injection.
package transport

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcap"
	"github.com/lcalzada-xor/wguard/internal/core/domain"
	"github.com/lcalzada-xor/wguard/internal/core/ports"
)

const (
	snapLen = 65536
	// readTimeout bounds how long Receive can sit in libpcap before it
	// notices Unblock or a cancelled context.
	readTimeout = 250 * time.Millisecond
)

// PcapTransport captures with libpcap and injects through the best
// available sender for the interface.
type PcapTransport struct {
	name      string
	handle    *pcap.Handle
	framing   domain.Framing
	sender    ports.FrameSender
	closer    func()
	unblocked atomic.Bool
	closed    atomic.Bool
}

// OpenPcap opens iface in promiscuous mode. The interface must already be in
// monitor mode.
func OpenPcap(iface string, logger *slog.Logger) (*PcapTransport, error) {
	if !domain.IsValidInterface(iface) {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidInterfaceName, iface)
	}

	handle, err := pcap.OpenLive(iface, snapLen, true, readTimeout)
	if err != nil {
		return nil, &domain.CaptureError{Interface: iface, Err: fmt.Errorf("pcap open failed: %w", err)}
	}

	t := &PcapTransport{
		name:    iface,
		handle:  handle,
		framing: framingFor(handle.LinkType()),
	}

	raw, err := NewRawSender(iface)
	if err != nil {
		logger.Info("Raw injection unavailable, falling back to PCAP", "interface", iface, "error", err)
		t.sender = pcapSender{handle: handle}
		t.closer = func() {}
	} else {
		logger.Info("Using raw socket injection", "interface", iface)
		t.sender = raw
		t.closer = func() { _ = raw.Close() }
	}

	return t, nil
}

func framingFor(lt layers.LinkType) domain.Framing {
	if lt == layers.LinkTypeIEEE80211Radio {
		return domain.FramingRadiotap
	}
	return domain.FramingRaw80211
}

func (t *PcapTransport) Name() string            { return t.name }
func (t *PcapTransport) Framing() domain.Framing { return t.framing }

// Receive blocks until a frame arrives, ctx is done or Unblock is called.
func (t *PcapTransport) Receive(ctx context.Context) ([]byte, error) {
	for {
		if t.unblocked.Load() {
			return nil, domain.ErrSourceUnblocked
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		data, _, err := t.handle.ReadPacketData()
		switch {
		case err == nil:
			return data, nil
		case errors.Is(err, pcap.NextErrorTimeoutExpired):
			continue
		case t.unblocked.Load():
			return nil, domain.ErrSourceUnblocked
		default:
			return nil, &domain.CaptureError{Interface: t.name, Err: err}
		}
	}
}

// Unblock makes pending and future Receive calls return ErrSourceUnblocked
// within one read timeout.
func (t *PcapTransport) Unblock() {
	t.unblocked.Store(true)
}

func (t *PcapTransport) Send(frame []byte) error {
	if t.closed.Load() {
		return fmt.Errorf("transport %s closed", t.name)
	}
	return t.sender.Send(frame)
}

func (t *PcapTransport) Close() error {
	if !t.closed.CompareAndSwap(false, true) {
		return nil
	}
	t.Unblock()
	t.closer()
	t.handle.Close()
	return nil
}

type pcapSender struct {
	handle *pcap.Handle
}

func (p pcapSender) Send(frame []byte) error {
	return p.handle.WritePacketData(frame)
}

var _ ports.Transport = (*PcapTransport)(nil)
