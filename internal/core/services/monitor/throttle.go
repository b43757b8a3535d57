package monitor

import (
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
)

const shardCount = 32

// throttleCache remembers when a key last passed so repeats inside a window
// can be suppressed.
type throttleCache struct {
	shards [shardCount]throttleShard
}

type throttleShard struct {
	mu    sync.Mutex
	items map[string]time.Time
}

func newThrottleCache() *throttleCache {
	tc := &throttleCache{}
	for i := 0; i < shardCount; i++ {
		tc.shards[i].items = make(map[string]time.Time)
	}
	return tc
}

func (tc *throttleCache) shard(key string) *throttleShard {
	return &tc.shards[xxhash.Sum64String(key)%shardCount]
}

// allow reports whether key may pass at now, and records it if so.
func (tc *throttleCache) allow(key string, window time.Duration, now time.Time) bool {
	s := tc.shard(key)
	s.mu.Lock()
	defer s.mu.Unlock()

	if last, ok := s.items[key]; ok && now.Sub(last) < window {
		return false
	}
	s.items[key] = now
	return true
}

func (tc *throttleCache) pruneBefore(cutoff time.Time) {
	for i := range tc.shards {
		s := &tc.shards[i]
		s.mu.Lock()
		for k, at := range s.items {
			if at.Before(cutoff) {
				delete(s.items, k)
			}
		}
		s.mu.Unlock()
	}
}
