package guard

import "time"

// Liveness tracks when each BSSID was last heard.
type Liveness struct {
	m *shardedMap[time.Time]
}

func NewLiveness() *Liveness {
	return &Liveness{m: newShardedMap[time.Time]()}
}

func (l *Liveness) Touch(bssid string, at time.Time) {
	l.m.with(bssid, func(items map[string]time.Time) { items[bssid] = at })
}

// EvictBefore drops entries last seen before cutoff and returns how many went.
func (l *Liveness) EvictBefore(cutoff time.Time) int {
	n := 0
	l.m.each(func(items map[string]time.Time) {
		for b, at := range items {
			if at.Before(cutoff) {
				delete(items, b)
				n++
			}
		}
	})
	return n
}

func (l *Liveness) Len() int {
	n := 0
	l.m.each(func(items map[string]time.Time) { n += len(items) })
	return n
}
