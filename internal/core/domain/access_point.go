package domain

import (
	"sync"
	"time"
)

// Trend describes the direction of an AP's signal over its recent history.
type Trend string

const (
	TrendRising  Trend = "rising"
	TrendFalling Trend = "falling"
	TrendStable  Trend = "stable"
	TrendUnknown Trend = "unknown"
)

const (
	DefaultHistoryCapacity = 6
	MinHistoryCapacity     = 2
	// MinTrendSamples is the history length below which no trend is reported.
	MinTrendSamples       = 4
	DefaultTrendThreshold = 7.0
)

// APRecord is the live state of one access point, keyed by BSSID.
// All methods are safe for concurrent use; the lock is per record.
type APRecord struct {
	mu sync.Mutex

	bssid     string
	ssid      string
	security  string
	channel   int
	signal    int
	iface     string
	beacons   int64
	firstSeen time.Time
	lastSeen  time.Time

	capacity int
	history  []int
}

// NewAPRecord creates an empty record whose signal history holds at most capacity samples.
func NewAPRecord(bssid string, capacity int) *APRecord {
	if capacity < MinHistoryCapacity {
		capacity = MinHistoryCapacity
	}
	return &APRecord{
		bssid:    bssid,
		capacity: capacity,
		history:  make([]int, 0, capacity),
	}
}

// Update applies one decoded beacon. The oldest sample is evicted once the history is full.
func (r *APRecord) Update(b BeaconSeen, iface string, at time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.firstSeen.IsZero() {
		r.firstSeen = at
	}
	r.lastSeen = at
	r.ssid = b.SSID
	r.security = b.Security
	if b.Channel > 0 {
		r.channel = b.Channel
	}
	r.iface = iface
	r.beacons++
	r.signal = b.SignalDBM

	if len(r.history) == r.capacity {
		copy(r.history, r.history[1:])
		r.history = r.history[:r.capacity-1]
	}
	r.history = append(r.history, b.SignalDBM)
}

// LastSeen returns the time of the most recent beacon.
func (r *APRecord) LastSeen() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastSeen
}

// Snapshot returns an immutable copy of the record with its trend computed against threshold.
func (r *APRecord) Snapshot(threshold float64) APSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	history := make([]int, len(r.history))
	copy(history, r.history)

	return APSnapshot{
		BSSID:         r.bssid,
		SSID:          r.ssid,
		Security:      r.security,
		Channel:       r.channel,
		Signal:        r.signal,
		SignalHistory: history,
		Trend:         ComputeTrend(history, threshold),
		Interface:     r.iface,
		Beacons:       r.beacons,
		FirstSeen:     r.firstSeen,
		LastSeen:      r.lastSeen,
	}
}

// APSnapshot is a point-in-time copy of an APRecord.
type APSnapshot struct {
	BSSID         string    `json:"bssid"`
	SSID          string    `json:"ssid"`
	Security      string    `json:"security"`
	Channel       int       `json:"channel"`
	Signal        int       `json:"signal"`
	SignalHistory []int     `json:"signal_history"`
	Trend         Trend     `json:"trend"`
	Interface     string    `json:"interface"`
	Beacons       int64     `json:"beacons"`
	FirstSeen     time.Time `json:"first_seen"`
	LastSeen      time.Time `json:"last_seen"`
}

// IsOpen reports whether the AP advertised no security elements.
func (s APSnapshot) IsOpen() bool {
	return s.Security == SecurityOpen
}

// ComputeTrend compares the mean of the older half of samples with the newer half.
// Fewer than MinTrendSamples samples yields TrendUnknown.
func ComputeTrend(samples []int, threshold float64) Trend {
	n := len(samples)
	if n < MinTrendSamples {
		return TrendUnknown
	}

	half := n / 2
	var first, second float64
	for _, s := range samples[:half] {
		first += float64(s)
	}
	first /= float64(half)
	for _, s := range samples[half:] {
		second += float64(s)
	}
	second /= float64(n - half)

	diff := second - first
	switch {
	case diff >= threshold:
		return TrendRising
	case diff <= -threshold:
		return TrendFalling
	default:
		return TrendStable
	}
}

// APStats aggregates the AP table.
type APStats struct {
	Total     int       `json:"total"`
	Open      int       `json:"open"`
	Secured   int       `json:"secured"`
	Hidden    int       `json:"hidden"`
	UpdatedAt time.Time `json:"updated_at"`

	// DroppedAlerts counts alerts each sink discarded, keyed by sink name.
	DroppedAlerts map[string]int64 `json:"dropped_alerts,omitempty"`
}
