package ports

import (
	"context"

	"github.com/lcalzada-xor/wguard/internal/core/domain"
)

// FrameSource is the receive half of a monitor-mode capture transport.
type FrameSource interface {
	// Name identifies the interface in logs, metrics and alerts.
	Name() string

	// Framing tells the decoder whether frames carry a radiotap header.
	Framing() domain.Framing

	// Receive blocks until a frame arrives, ctx is done, or Unblock is called.
	// After Unblock or Close it returns domain.ErrSourceUnblocked.
	Receive(ctx context.Context) ([]byte, error)

	// Unblock releases a pending Receive. It is safe to call more than once.
	Unblock()
}

// FrameSender is the inject half of a transport.
type FrameSender interface {
	Send(frame []byte) error
}

// Transport is a full capture and inject capability bound to one interface.
type Transport interface {
	FrameSource
	FrameSender
	Close() error
}
