package guard

import (
	"sync"

	"github.com/cespare/xxhash/v2"
)

const shardCount = 32

// shardedMap spreads keys over fixed shards, each with its own lock, so
// unrelated BSSIDs and SSIDs never contend on a global mutex.
type shardedMap[V any] struct {
	shards [shardCount]shard[V]
}

type shard[V any] struct {
	mu    sync.Mutex
	items map[string]V
}

func newShardedMap[V any]() *shardedMap[V] {
	m := &shardedMap[V]{}
	for i := range m.shards {
		m.shards[i].items = make(map[string]V)
	}
	return m
}

func (m *shardedMap[V]) shardFor(key string) *shard[V] {
	return &m.shards[xxhash.Sum64String(key)%shardCount]
}

// with runs fn under the lock of key's shard.
func (m *shardedMap[V]) with(key string, fn func(items map[string]V)) {
	s := m.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.items)
}

// each runs fn over every shard in turn, holding one shard lock at a time.
func (m *shardedMap[V]) each(fn func(items map[string]V)) {
	for i := range m.shards {
		s := &m.shards[i]
		s.mu.Lock()
		fn(s.items)
		s.mu.Unlock()
	}
}
