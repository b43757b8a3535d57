package capture

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/lcalzada-xor/wguard/internal/adapters/sniffer/transport"
	"github.com/lcalzada-xor/wguard/internal/core/domain"
	"github.com/lcalzada-xor/wguard/internal/core/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	mu     sync.Mutex
	alerts []domain.Alert
}

func (r *recordingSink) Notify(_ context.Context, a domain.Alert) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.alerts = append(r.alerts, a)
}

func (r *recordingSink) all() []domain.Alert {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.Alert(nil), r.alerts...)
}

// beaconFrame builds a minimal beacon whose BSSID ends in last.
func beaconFrame(last byte, ssid string) []byte {
	f := []byte{0x80, 0x00, 0x00, 0x00}
	f = append(f, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF)
	f = append(f, 0x02, 0x00, 0x00, 0x00, 0x00, last)
	f = append(f, 0x02, 0x00, 0x00, 0x00, 0x00, last)
	f = append(f, 0x00, 0x00)
	f = append(f, make([]byte, 12)...)
	f = append(f, 0x00, byte(len(ssid)))
	return append(f, ssid...)
}

func statusOf(c *Coordinator, name string) domain.InterfaceStatus {
	for _, s := range c.Statuses() {
		if s.Name == name {
			return s
		}
	}
	return domain.InterfaceStatus{}
}

func receive(t *testing.T, ch <-chan domain.CapturedEvent) domain.CapturedEvent {
	t.Helper()
	select {
	case ev := <-ch:
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return domain.CapturedEvent{}
	}
}

func TestCoordinator_DeliversInOrder(t *testing.T) {
	c := New(Config{}, &recordingSink{})
	sub := c.Subscribe(16)

	src := transport.NewMemory("mon0", domain.FramingRaw80211, 16)
	for i := byte(1); i <= 5; i++ {
		src.Feed(beaconFrame(i, "Seq"))
	}

	require.NoError(t, c.Start(context.Background(), []ports.FrameSource{src}))
	defer c.Stop()

	for i := byte(1); i <= 5; i++ {
		ev := receive(t, sub)
		assert.Equal(t, "mon0", ev.Interface)
		b, ok := ev.Event.(domain.BeaconSeen)
		require.True(t, ok)
		assert.Equal(t, domain.FormatMAC([]byte{0x02, 0, 0, 0, 0, i}), b.BSSID)
	}
}

func TestCoordinator_FanOutToAllSubscribers(t *testing.T) {
	c := New(Config{}, nil)
	a := c.Subscribe(4)
	b := c.Subscribe(4)

	src := transport.NewMemory("mon0", domain.FramingRaw80211, 4)
	src.Feed(beaconFrame(1, "Both"))

	require.NoError(t, c.Start(context.Background(), []ports.FrameSource{src}))
	defer c.Stop()

	assert.Equal(t, domain.KindBeacon, receive(t, a).Event.Kind())
	assert.Equal(t, domain.KindBeacon, receive(t, b).Event.Kind())
}

func TestCoordinator_SkipsUndecodableFrames(t *testing.T) {
	c := New(Config{}, nil)
	sub := c.Subscribe(4)

	src := transport.NewMemory("mon0", domain.FramingRaw80211, 4)
	src.Feed([]byte{0x08, 0x00, 0x01})
	src.Feed(beaconFrame(7, "After"))

	require.NoError(t, c.Start(context.Background(), []ports.FrameSource{src}))
	defer c.Stop()

	ev := receive(t, sub)
	assert.Equal(t, "After", ev.Event.(domain.BeaconSeen).SSID)

	st := statusOf(c, "mon0")
	assert.Equal(t, int64(2), st.Metrics.FramesReceived)
	assert.Equal(t, int64(1), st.Metrics.FramesDecoded)
}

func TestCoordinator_FailureIsolatedToInterface(t *testing.T) {
	sink := &recordingSink{}
	c := New(Config{}, sink)
	sub := c.Subscribe(16)

	bad := transport.NewMemory("mon-bad", domain.FramingRaw80211, 4)
	bad.FailReceive(errors.New("device removed"))
	good := transport.NewMemory("mon-good", domain.FramingRaw80211, 4)

	require.NoError(t, c.Start(context.Background(), []ports.FrameSource{bad, good}))
	defer c.Stop()

	require.Eventually(t, func() bool {
		return statusOf(c, "mon-bad").State == domain.CaptureFailed
	}, 2*time.Second, 10*time.Millisecond)

	good.Feed(beaconFrame(3, "StillHere"))
	ev := receive(t, sub)
	assert.Equal(t, "mon-good", ev.Interface)
	assert.Equal(t, domain.CaptureRunning, statusOf(c, "mon-good").State)

	alerts := sink.all()
	require.Len(t, alerts, 1)
	assert.Equal(t, domain.SubtypeCaptureFailed, alerts[0].Subtype)
	assert.Equal(t, domain.AlertSystem, alerts[0].Type)
	assert.Equal(t, "mon-bad", alerts[0].Interface)
	assert.Contains(t, alerts[0].Message, "mon-bad")
	assert.Contains(t, statusOf(c, "mon-bad").Error, "device removed")
}

func TestCoordinator_DropsWhenSubscriberFull(t *testing.T) {
	c := New(Config{}, nil)
	_ = c.Subscribe(1)

	src := transport.NewMemory("mon0", domain.FramingRaw80211, 8)
	for i := byte(1); i <= 4; i++ {
		src.Feed(beaconFrame(i, "Flood"))
	}

	require.NoError(t, c.Start(context.Background(), []ports.FrameSource{src}))
	defer c.Stop()

	require.Eventually(t, func() bool {
		return statusOf(c, "mon0").Metrics.FramesDecoded == 4
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, int64(3), statusOf(c, "mon0").Metrics.FramesDropped)
}

func TestCoordinator_StopIsIdempotentAndPrompt(t *testing.T) {
	c := New(Config{StopTimeout: time.Second}, nil)
	sub := c.Subscribe(1)

	srcs := []ports.FrameSource{
		transport.NewMemory("mon0", domain.FramingRaw80211, 1),
		transport.NewMemory("mon1", domain.FramingRadiotap, 1),
	}
	require.NoError(t, c.Start(context.Background(), srcs))

	require.Eventually(t, c.Running, time.Second, 5*time.Millisecond)

	start := time.Now()
	require.NoError(t, c.Stop())
	assert.Less(t, time.Since(start), time.Second)
	require.NoError(t, c.Stop())

	for _, s := range c.Statuses() {
		assert.Equal(t, domain.CaptureStopped, s.State, s.Name)
	}

	_, open := <-sub
	assert.False(t, open)
}

// stubbornSource ignores Unblock and cancellation.
type stubbornSource struct {
	release chan struct{}
}

func (s *stubbornSource) Name() string            { return "stuck0" }
func (s *stubbornSource) Framing() domain.Framing { return domain.FramingRaw80211 }
func (s *stubbornSource) Unblock()                {}
func (s *stubbornSource) Receive(context.Context) ([]byte, error) {
	<-s.release
	return nil, domain.ErrSourceUnblocked
}

func TestCoordinator_StopBoundedWait(t *testing.T) {
	src := &stubbornSource{release: make(chan struct{})}
	defer close(src.release)

	c := New(Config{StopTimeout: 50 * time.Millisecond}, nil)
	require.NoError(t, c.Start(context.Background(), []ports.FrameSource{src}))

	start := time.Now()
	err := c.Stop()
	assert.ErrorIs(t, err, ErrStopTimeout)
	assert.Less(t, time.Since(start), time.Second)
}

func TestCoordinator_StartTwice(t *testing.T) {
	c := New(Config{}, nil)
	require.NoError(t, c.Start(context.Background(), nil))
	assert.ErrorIs(t, c.Start(context.Background(), nil), ErrAlreadyStarted)
	assert.NoError(t, c.Stop())
}
