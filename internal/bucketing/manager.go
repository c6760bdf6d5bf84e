package bucketing

import (
	"hash"
	"sync"
	"time"

	"github.com/spaolacci/murmur3"
)

// Manager assigns keys to a fixed number of shards using murmur3, so
// independent keys spread across shard locks without cross-key interference.
type Manager struct {
	shards     int
	hasherPool sync.Pool
}

func NewManager(shards int) *Manager {
	if shards < 1 {
		shards = 1
	}
	m := &Manager{shards: shards}

	// Pool of hash functions to avoid allocation overhead on the hot path
	m.hasherPool = sync.Pool{
		New: func() interface{} {
			return murmur3.New64()
		},
	}

	return m
}

// Shard returns a consistent shard index in [0, shards) for the key.
func (m *Manager) Shard(key string) int {
	return int(m.hash(key) % uint64(m.shards))
}

// Shards returns the configured shard count.
func (m *Manager) Shards() int {
	return m.shards
}

// TimeBucket returns the start of the window containing now, for
// coarse-grained event keys.
func (m *Manager) TimeBucket(windowSeconds int) int64 {
	return time.Now().Unix() / int64(windowSeconds) * int64(windowSeconds)
}

func (m *Manager) hash(key string) uint64 {
	hasher := m.hasherPool.Get().(hash.Hash64)
	defer m.hasherPool.Put(hasher)

	hasher.Reset()
	hasher.Write([]byte(key))
	return hasher.Sum64()
}
