package transport

import (
	"context"
	"sync"

	"github.com/lcalzada-xor/wguard/internal/core/domain"
	"github.com/lcalzada-xor/wguard/internal/core/ports"
)

// Memory is an in-process transport. Frames fed to it are handed out by
// Receive in order, and sent frames are recorded instead of hitting the air.
type Memory struct {
	name    string
	framing domain.Framing
	frames  chan []byte
	done    chan struct{}
	once    sync.Once

	mu         sync.Mutex
	sent       [][]byte
	sendErr    error
	failAfter  int
	receiveErr error
	closed     bool
}

// NewMemory creates a Memory transport whose feed queue holds buffer frames.
func NewMemory(name string, framing domain.Framing, buffer int) *Memory {
	return &Memory{
		name:      name,
		framing:   framing,
		frames:    make(chan []byte, buffer),
		done:      make(chan struct{}),
		failAfter: -1,
	}
}

func (m *Memory) Name() string            { return m.name }
func (m *Memory) Framing() domain.Framing { return m.framing }

// Feed queues a copy of frame for Receive. It blocks while the queue is full.
func (m *Memory) Feed(frame []byte) {
	p := make([]byte, len(frame))
	copy(p, frame)
	select {
	case m.frames <- p:
	case <-m.done:
	}
}

// FailReceive makes the next Receive return err.
func (m *Memory) FailReceive(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.receiveErr = err
}

func (m *Memory) Receive(ctx context.Context) ([]byte, error) {
	m.mu.Lock()
	if err := m.receiveErr; err != nil {
		m.receiveErr = nil
		m.mu.Unlock()
		return nil, err
	}
	m.mu.Unlock()

	select {
	case <-m.done:
		return nil, domain.ErrSourceUnblocked
	default:
	}

	select {
	case <-m.done:
		return nil, domain.ErrSourceUnblocked
	case <-ctx.Done():
		return nil, ctx.Err()
	case f := <-m.frames:
		return f, nil
	}
}

func (m *Memory) Unblock() {
	m.once.Do(func() { close(m.done) })
}

// FailSend makes every Send after the first n successful ones return err.
func (m *Memory) FailSend(n int, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failAfter = n
	m.sendErr = err
}

func (m *Memory) Send(frame []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.sendErr != nil && m.failAfter >= 0 && len(m.sent) >= m.failAfter {
		return m.sendErr
	}

	p := make([]byte, len(frame))
	copy(p, frame)
	m.sent = append(m.sent, p)
	return nil
}

// Sent returns a copy of every frame passed to Send.
func (m *Memory) Sent() [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([][]byte, len(m.sent))
	for i, p := range m.sent {
		out[i] = make([]byte, len(p))
		copy(out[i], p)
	}
	return out
}

// SentCount returns the number of frames sent so far.
func (m *Memory) SentCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

func (m *Memory) Close() error {
	m.Unblock()
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	return nil
}

// Closed reports whether Close was called.
func (m *Memory) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

var _ ports.Transport = (*Memory)(nil)
