package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInterfaceName = errors.New("invalid interface name")
	ErrInvalidMAC           = errors.New("invalid MAC address")
	ErrInvalidCount         = errors.New("frame count cannot be negative")
	ErrNoSender             = errors.New("no injection transport configured")

	// ErrSourceUnblocked is returned by a frame source whose pending receive
	// was released by Unblock or Close. It is not a capture failure.
	ErrSourceUnblocked = errors.New("frame source unblocked")
)

// CaptureError reports a failure that terminated the capture loop of one interface.
type CaptureError struct {
	Interface string
	Err       error
}

func (e *CaptureError) Error() string {
	return fmt.Sprintf("capture on %s: %v", e.Interface, e.Err)
}

func (e *CaptureError) Unwrap() error { return e.Err }

// InjectionError reports a send failure that aborted a deauth job.
type InjectionError struct {
	JobID  string
	Target string
	Err    error
}

func (e *InjectionError) Error() string {
	return fmt.Sprintf("injection job %s against %s: %v", e.JobID, e.Target, e.Err)
}

func (e *InjectionError) Unwrap() error { return e.Err }
