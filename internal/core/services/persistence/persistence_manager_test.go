package persistence

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/lcalzada-xor/wguard/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockStorage implements ports.AlertRepository for testing
type MockStorage struct {
	mu       sync.Mutex
	alerts   []domain.Alert
	verdicts []domain.RogueVerdict
	batches  int
}

func (m *MockStorage) SaveAlerts(_ context.Context, alerts []domain.Alert) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.alerts = append(m.alerts, alerts...)
	m.batches++
	return nil
}

func (m *MockStorage) ListAlerts(context.Context, int) ([]domain.Alert, error) { return nil, nil }

func (m *MockStorage) SaveVerdict(_ context.Context, v domain.RogueVerdict) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.verdicts = append(m.verdicts, v)
	return nil
}

func (m *MockStorage) ListVerdicts(context.Context) ([]domain.RogueVerdict, error) { return nil, nil }
func (m *MockStorage) Close() error                                                { return nil }

func (m *MockStorage) saved() (int, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.alerts), m.batches
}

func info(i int) domain.Alert {
	return domain.MustAlert(domain.AlertDiscovery, domain.SubtypeAPDiscovered, domain.SeverityInfo, fmt.Sprintf("ap %d", i))
}

func TestPersistenceManager_Batching(t *testing.T) {
	store := &MockStorage{}
	pm := NewPersistenceManager(store, 10, nil)
	pm.batchSize = 5
	pm.interval = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	pm.Start(ctx)

	for i := 0; i < 4; i++ {
		pm.Notify(ctx, info(i))
	}
	time.Sleep(50 * time.Millisecond)
	n, _ := store.saved()
	assert.Equal(t, 0, n)

	pm.Notify(ctx, info(4))
	require.Eventually(t, func() bool {
		n, _ := store.saved()
		return n == 5
	}, time.Second, 5*time.Millisecond)
	_, batches := store.saved()
	assert.Equal(t, 1, batches)
}

func TestPersistenceManager_IntervalFlush(t *testing.T) {
	store := &MockStorage{}
	pm := NewPersistenceManager(store, 10, nil)
	pm.interval = 20 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	pm.Start(ctx)

	pm.Notify(ctx, info(1))
	require.Eventually(t, func() bool {
		n, _ := store.saved()
		return n == 1
	}, time.Second, 5*time.Millisecond)
}

func TestPersistenceManager_FlushOnShutdown(t *testing.T) {
	store := &MockStorage{}
	pm := NewPersistenceManager(store, 10, nil)
	pm.interval = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	pm.Start(ctx)
	pm.Notify(ctx, info(1))
	pm.Notify(ctx, info(2))
	cancel()

	select {
	case <-pm.Done():
	case <-time.After(time.Second):
		t.Fatal("final flush did not complete")
	}
	n, _ := store.saved()
	assert.Equal(t, 2, n)
}

func TestPersistenceManager_SavesVerdicts(t *testing.T) {
	store := &MockStorage{}
	pm := NewPersistenceManager(store, 10, nil)

	ctx, cancel := context.WithCancel(context.Background())
	pm.Start(ctx)

	a := domain.MustAlert(domain.AlertAnomaly, domain.SubtypeEvilTwin, domain.SeverityCritical, "twin")
	a.SSID = "CafeWifi"
	a.DeviceMAC = "02:00:00:00:00:02"
	a.TargetMAC = "02:00:00:00:00:01"
	a.Channel = 6
	pm.Notify(ctx, a)
	pm.Notify(ctx, info(1))
	cancel()
	<-pm.Done()

	store.mu.Lock()
	defer store.mu.Unlock()
	require.Len(t, store.verdicts, 1)
	v := store.verdicts[0]
	assert.Equal(t, "CafeWifi", v.SSID)
	assert.Equal(t, "02:00:00:00:00:02", v.RogueBSSID)
	assert.Equal(t, "02:00:00:00:00:01", v.LegitimateBSSID)
	assert.Equal(t, 6, v.Channel)
}

func TestPersistenceManager_Overflow(t *testing.T) {
	store := &MockStorage{}
	pm := NewPersistenceManager(store, 1, nil)
	ctx := context.Background()

	pm.Notify(ctx, info(1))
	pm.Notify(ctx, info(2))
	pm.Notify(ctx, info(3))
	assert.Len(t, pm.queue, 1)
	assert.Equal(t, int64(2), pm.Dropped())
}
