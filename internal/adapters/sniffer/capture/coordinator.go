// Package capture runs one receive loop per monitor interface and fans the
// decoded radio events out to subscribers.
package capture

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lcalzada-xor/wguard/internal/adapters/sniffer/decoder"
	"github.com/lcalzada-xor/wguard/internal/core/domain"
	"github.com/lcalzada-xor/wguard/internal/core/ports"
	"github.com/lcalzada-xor/wguard/internal/telemetry"
)

// DefaultStopTimeout bounds how long Stop waits for capture loops to exit.
const DefaultStopTimeout = 2 * time.Second

var (
	ErrAlreadyStarted = errors.New("capture coordinator already started")
	ErrStopTimeout    = errors.New("capture loops did not exit before timeout")
)

// Config holds coordinator options.
type Config struct {
	StopTimeout time.Duration
	Logger      *slog.Logger
}

// Coordinator owns the capture loops of all configured interfaces.
type Coordinator struct {
	logger      *slog.Logger
	stopTimeout time.Duration
	alerts      ports.AlertSink

	mu       sync.RWMutex
	subs     []chan domain.CapturedEvent
	statuses map[string]*loopStatus
	order    []string
	sources  []ports.FrameSource
	cancel   context.CancelFunc
	started  bool

	wg       sync.WaitGroup
	stopOnce sync.Once
	stopErr  error
}

type loopStatus struct {
	mu    sync.Mutex
	state string
	err   string

	received atomic.Int64
	decoded  atomic.Int64
	dropped  atomic.Int64
}

func (s *loopStatus) set(state string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
	if err != nil {
		s.err = err.Error()
	}
}

// New creates a coordinator that reports interface failures to alerts.
func New(cfg Config, alerts ports.AlertSink) *Coordinator {
	if cfg.StopTimeout <= 0 {
		cfg.StopTimeout = DefaultStopTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Coordinator{
		logger:      cfg.Logger,
		stopTimeout: cfg.StopTimeout,
		alerts:      alerts,
		statuses:    make(map[string]*loopStatus),
	}
}

// Subscribe registers a consumer with a bounded buffer. Events that find the
// buffer full are dropped and counted. Subscribe before Start; channels are
// closed once every loop has exited after Stop.
func (c *Coordinator) Subscribe(buffer int) <-chan domain.CapturedEvent {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan domain.CapturedEvent, buffer)
	c.mu.Lock()
	c.subs = append(c.subs, ch)
	c.mu.Unlock()
	return ch
}

// Start spawns one capture loop per source and returns immediately.
func (c *Coordinator) Start(ctx context.Context, sources []ports.FrameSource) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.started {
		return ErrAlreadyStarted
	}
	c.started = true

	ctx, c.cancel = context.WithCancel(ctx)
	c.sources = sources

	for _, src := range sources {
		st := &loopStatus{state: domain.CaptureStarting}
		name := src.Name()
		if _, dup := c.statuses[name]; !dup {
			c.order = append(c.order, name)
		}
		c.statuses[name] = st

		c.wg.Add(1)
		go c.run(ctx, src, st)
	}

	c.logger.Info("Capture started", "interfaces", len(sources))
	return nil
}

func (c *Coordinator) run(ctx context.Context, src ports.FrameSource, st *loopStatus) {
	defer c.wg.Done()

	name := src.Name()
	framing := src.Framing()

	defer func() {
		if r := recover(); r != nil {
			c.fail(ctx, name, st, fmt.Errorf("panic in capture loop: %v", r))
		}
	}()

	st.set(domain.CaptureRunning, nil)
	c.logger.Debug("Capture loop running", "interface", name, "framing", framing.String())

	for {
		buf, err := src.Receive(ctx)
		if err != nil {
			if errors.Is(err, domain.ErrSourceUnblocked) || ctx.Err() != nil {
				st.set(domain.CaptureStopped, nil)
				c.logger.Info("Capture loop stopped", "interface", name)
				return
			}
			c.fail(ctx, name, st, err)
			return
		}

		st.received.Add(1)
		telemetry.FramesCaptured.WithLabelValues(name).Inc()

		ev, ok := decoder.Decode(buf, framing)
		if !ok {
			continue
		}
		st.decoded.Add(1)
		telemetry.FramesDecoded.WithLabelValues(name, string(ev.Kind())).Inc()

		c.dispatch(domain.CapturedEvent{Interface: name, At: time.Now(), Event: ev}, name, st)
	}
}

func (c *Coordinator) dispatch(ev domain.CapturedEvent, name string, st *loopStatus) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, ch := range c.subs {
		select {
		case ch <- ev:
		default:
			st.dropped.Add(1)
			telemetry.FramesDropped.WithLabelValues(name, telemetry.DropSubscriberFull).Inc()
		}
	}
}

func (c *Coordinator) fail(ctx context.Context, name string, st *loopStatus, err error) {
	var ce *domain.CaptureError
	if !errors.As(err, &ce) {
		err = &domain.CaptureError{Interface: name, Err: err}
	}
	st.set(domain.CaptureFailed, err)

	c.logger.Error("Capture loop failed", "interface", name, "error", err)

	if c.alerts == nil {
		return
	}
	alert := domain.MustAlert(domain.AlertSystem, domain.SubtypeCaptureFailed, domain.SeverityHigh,
		fmt.Sprintf("Interface %s failed: %v", name, err))
	alert.Interface = name
	c.alerts.Notify(ctx, alert)
}

// Stop cancels every loop, unblocks every source and waits up to the stop
// timeout. Later calls return the first call's result without waiting.
func (c *Coordinator) Stop() error {
	c.stopOnce.Do(func() {
		c.mu.RLock()
		cancel := c.cancel
		sources := c.sources
		c.mu.RUnlock()

		if cancel != nil {
			cancel()
		}
		for _, src := range sources {
			src.Unblock()
		}

		done := make(chan struct{})
		go func() {
			c.wg.Wait()
			close(done)
		}()

		select {
		case <-done:
			c.closeSubscribers()
		case <-time.After(c.stopTimeout):
			c.stopErr = ErrStopTimeout
			c.logger.Warn("Capture loops still running after stop timeout", "timeout", c.stopTimeout)
		}
	})
	return c.stopErr
}

func (c *Coordinator) closeSubscribers() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, ch := range c.subs {
		close(ch)
	}
	c.subs = nil
}

// Statuses reports every interface in start order.
func (c *Coordinator) Statuses() []domain.InterfaceStatus {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]domain.InterfaceStatus, 0, len(c.order))
	for _, name := range c.order {
		st := c.statuses[name]
		st.mu.Lock()
		s := domain.InterfaceStatus{
			Name:  name,
			State: st.state,
			Error: st.err,
			Metrics: domain.InterfaceMetrics{
				FramesReceived: st.received.Load(),
				FramesDecoded:  st.decoded.Load(),
				FramesDropped:  st.dropped.Load(),
			},
		}
		st.mu.Unlock()
		out = append(out, s)
	}
	return out
}

// Running reports whether at least one capture loop is running.
func (c *Coordinator) Running() bool {
	for _, s := range c.Statuses() {
		if s.State == domain.CaptureRunning {
			return true
		}
	}
	return false
}
