package store

import (
	"hash/fnv"
	"sync"
)

// shardedStore partitions keys across independently-locked shards to
// reduce contention under concurrent access. Kept as a selectable
// --store-mode alternative (see SPEC_FULL.md §4.3) rather than the
// default: per-key linearizability holds (a key always hashes to the
// same shard) but the WAL remains a single global append stream, so
// sharding only the in-memory side trades lock contention for no
// matching durability throughput gain — it exists here for benchmarking,
// not as the durability-ordering default.
type shardedStore struct {
	shards []*shard
}

type shard struct {
	mu   sync.RWMutex
	data map[string]string
}

// NewSharded creates a Store with numShards independent partitions.
func NewSharded(numShards int) Store {
	shards := make([]*shard, numShards)
	for i := range shards {
		shards[i] = &shard{data: make(map[string]string)}
	}
	return &shardedStore{shards: shards}
}

func (s *shardedStore) pick(key string) *shard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return s.shards[h.Sum32()%uint32(len(s.shards))]
}

func (s *shardedStore) Set(key, value string) error {
	if key == "" {
		return ErrEmptyKey
	}
	sh := s.pick(key)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	sh.data[key] = value
	return nil
}

func (s *shardedStore) Get(key string) (string, bool) {
	sh := s.pick(key)
	sh.mu.RLock()
	defer sh.mu.RUnlock()
	v, ok := sh.data[key]
	return v, ok
}

func (s *shardedStore) Delete(key string) bool {
	sh := s.pick(key)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	_, ok := sh.data[key]
	delete(sh.data, key)
	return ok
}

func (s *shardedStore) Exists(key string) bool {
	sh := s.pick(key)
	sh.mu.RLock()
	defer sh.mu.RUnlock()
	_, ok := sh.data[key]
	return ok
}

// Snapshot locks each shard in turn (not the whole store at once), so
// it observes a per-shard-consistent but not globally atomic view —
// acceptable since spec.md §4.3 only requires snapshot to be "taken
// under read lock", without mandating a single global lock.
func (s *shardedStore) Snapshot() []Entry {
	var out []Entry
	for _, sh := range s.shards {
		sh.mu.RLock()
		for k, v := range sh.data {
			out = append(out, Entry{Key: k, Value: v})
		}
		sh.mu.RUnlock()
	}
	return out
}

func (s *shardedStore) Len() int {
	n := 0
	for _, sh := range s.shards {
		sh.mu.RLock()
		n += len(sh.data)
		sh.mu.RUnlock()
	}
	return n
}

func (s *shardedStore) Clear() {
	for _, sh := range s.shards {
		sh.mu.Lock()
		sh.data = make(map[string]string)
		sh.mu.Unlock()
	}
}
