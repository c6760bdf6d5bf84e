package memory

import (
	"context"
	"sync"

	"chat-service/internal/bucketing"
	"chat-service/internal/models"
	"chat-service/internal/repository"
)

// OTPStore is the default in-memory store: a sharded map guarded by
// per-shard mutexes. Records live for the process lifetime unless verified,
// expired by the verifier, or replaced. Last writer wins per key.
type OTPStore struct {
	buckets *bucketing.Manager
	shards  []*shard
}

type shard struct {
	mu      sync.RWMutex
	records map[string]models.OTPRecord
}

func NewOTPStore(buckets *bucketing.Manager) *OTPStore {
	shards := make([]*shard, buckets.Shards())
	for i := range shards {
		shards[i] = &shard{records: make(map[string]models.OTPRecord)}
	}
	return &OTPStore{
		buckets: buckets,
		shards:  shards,
	}
}

func (s *OTPStore) shardFor(key string) *shard {
	return s.shards[s.buckets.Shard(key)]
}

func (s *OTPStore) Put(_ context.Context, rec models.OTPRecord) error {
	key := repository.Key(rec.Phone, rec.CountryCode)
	sh := s.shardFor(key)

	sh.mu.Lock()
	sh.records[key] = rec
	sh.mu.Unlock()
	return nil
}

func (s *OTPStore) Get(_ context.Context, phone, countryCode string) (models.OTPRecord, bool, error) {
	key := repository.Key(phone, countryCode)
	sh := s.shardFor(key)

	sh.mu.RLock()
	rec, ok := sh.records[key]
	sh.mu.RUnlock()
	return rec, ok, nil
}

func (s *OTPStore) Delete(_ context.Context, phone, countryCode string) (bool, error) {
	key := repository.Key(phone, countryCode)
	sh := s.shardFor(key)

	sh.mu.Lock()
	_, ok := sh.records[key]
	if ok {
		delete(sh.records, key)
	}
	sh.mu.Unlock()
	return ok, nil
}

func (s *OTPStore) Snapshot(_ context.Context) ([]models.OTPRecord, error) {
	var out []models.OTPRecord
	for _, sh := range s.shards {
		sh.mu.RLock()
		for _, rec := range sh.records {
			out = append(out, rec)
		}
		sh.mu.RUnlock()
	}
	return out, nil
}

// Len reports the number of pending records across all shards.
func (s *OTPStore) Len() int {
	n := 0
	for _, sh := range s.shards {
		sh.mu.RLock()
		n += len(sh.records)
		sh.mu.RUnlock()
	}
	return n
}
