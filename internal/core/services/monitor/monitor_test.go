package monitor

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/lcalzada-xor/wguard/internal/core/domain"
	"github.com/lcalzada-xor/wguard/internal/core/services/guard"
	"github.com/lcalzada-xor/wguard/internal/core/services/tracker"
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

func (r *recordingSink) count(subtype string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, a := range r.alerts {
		if a.Subtype == subtype {
			n++
		}
	}
	return n
}

func captured(ev domain.RadioEvent) domain.CapturedEvent {
	return domain.CapturedEvent{Interface: "mon0", At: time.Now(), Event: ev}
}

func newMonitor(sink *recordingSink) (*Monitor, *tracker.Tracker, *guard.TwinGuard, *time.Time) {
	tr := tracker.New(tracker.Config{}, sink)
	g := guard.New(guard.Config{}, sink, nil)
	m := New(Config{}, tr, g, sink)
	clock := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return clock }
	return m, tr, g, &clock
}

func TestMonitor_BeaconFeedsTrackerAndGuard(t *testing.T) {
	sink := &recordingSink{}
	m, tr, g, _ := newMonitor(sink)
	ctx := context.Background()

	m.Handle(ctx, captured(domain.BeaconSeen{BSSID: "02:00:00:00:00:01", SSID: "CafeWifi", Channel: 6, Security: domain.SecuritySecured}))
	m.Handle(ctx, captured(domain.BeaconSeen{BSSID: "02:00:00:00:00:01", SSID: "CafeWifi", Channel: 6, Security: domain.SecuritySecured}))
	m.Handle(ctx, captured(domain.BeaconSeen{BSSID: "02:00:00:00:00:02", SSID: "CafeWifi", Channel: 6, Security: domain.SecurityOpen}))

	assert.Len(t, tr.List(), 2)
	assert.Equal(t, 2, sink.count(domain.SubtypeAPDiscovered))
	assert.Equal(t, 1, sink.count(domain.SubtypeNewOpenNetwork))
	assert.Equal(t, 1, sink.count(domain.SubtypeEvilTwin))
	assert.Equal(t, []string{"02:00:00:00:00:02"}, g.Countered())
}

func TestMonitor_ProbeThrottle(t *testing.T) {
	sink := &recordingSink{}
	m, _, _, clock := newMonitor(sink)
	ctx := context.Background()
	probe := captured(domain.ProbeRequestSeen{ClientMAC: "00:11:22:33:44:55", SSID: "HomeNet"})

	m.Handle(ctx, probe)
	m.Handle(ctx, probe)
	assert.Equal(t, 1, sink.count(domain.SubtypeClientProbe))

	// A different SSID from the same client is a different key.
	m.Handle(ctx, captured(domain.ProbeRequestSeen{ClientMAC: "00:11:22:33:44:55", SSID: domain.AnySSID}))
	assert.Equal(t, 2, sink.count(domain.SubtypeClientProbe))

	*clock = clock.Add(DefaultProbeWindow)
	m.Handle(ctx, probe)
	assert.Equal(t, 3, sink.count(domain.SubtypeClientProbe))
}

func TestMonitor_DeauthThrottle(t *testing.T) {
	sink := &recordingSink{}
	m, _, _, clock := newMonitor(sink)
	ctx := context.Background()
	deauth := captured(domain.DeauthObserved{SrcMAC: "02:00:00:00:00:09", DstMAC: domain.BroadcastMAC})

	for i := 0; i < 10; i++ {
		m.Handle(ctx, deauth)
	}
	require.Equal(t, 1, sink.count(domain.SubtypeDeauthObserved))

	*clock = clock.Add(4 * time.Second)
	m.Handle(ctx, deauth)
	assert.Equal(t, 1, sink.count(domain.SubtypeDeauthObserved))

	*clock = clock.Add(2 * time.Second)
	m.Handle(ctx, deauth)
	assert.Equal(t, 2, sink.count(domain.SubtypeDeauthObserved))

	sink.mu.Lock()
	last := sink.alerts[len(sink.alerts)-1]
	sink.mu.Unlock()
	assert.Equal(t, domain.SeverityHigh, last.Severity)
	assert.Equal(t, "02:00:00:00:00:09", last.DeviceMAC)
	assert.Equal(t, domain.BroadcastMAC, last.TargetMAC)
}

func TestMonitor_RunUntilChannelClosed(t *testing.T) {
	sink := &recordingSink{}
	m, tr, _, _ := newMonitor(sink)

	events := make(chan domain.CapturedEvent, 4)
	events <- captured(domain.BeaconSeen{BSSID: "02:00:00:00:00:01", SSID: "A", Security: domain.SecuritySecured})
	events <- captured(domain.BeaconSeen{BSSID: "02:00:00:00:00:02", SSID: "B", Security: domain.SecuritySecured})
	close(events)

	done := make(chan struct{})
	go func() {
		m.Run(context.Background(), events)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after channel close")
	}
	assert.Len(t, tr.List(), 2)
}

func TestThrottleCache_Prune(t *testing.T) {
	tc := newThrottleCache()
	base := time.Now()
	assert.True(t, tc.allow("k", time.Hour, base))
	assert.False(t, tc.allow("k", time.Hour, base.Add(time.Minute)))

	tc.pruneBefore(base.Add(time.Second))
	assert.True(t, tc.allow("k", time.Hour, base.Add(2*time.Minute)))
}
