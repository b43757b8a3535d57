//go:build !linux

package transport

import "errors"

type RawSender struct{}

func NewRawSender(iface string) (*RawSender, error) {
	return nil, errors.New("raw injection only supported on linux")
}

func (r *RawSender) Send(frame []byte) error {
	return errors.New("raw injection only supported on linux")
}

func (r *RawSender) Close() error { return nil }
