package storage

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/Universesboy/french-streak-app/internal/streak"
)

// MemoryStore is an in-process StateStore. Tests use it as a stand-in
// for both the local and the remote store; it can also be told to fail,
// to exercise the degraded-to-local paths.
type MemoryStore struct {
	mu      sync.Mutex
	records map[string]streak.Data

	// FailLoads / FailSaves make every call return an error, simulating
	// an unreachable remote.
	FailLoads bool
	FailSaves bool
}

var errMemoryStoreDown = errors.New("store unavailable")

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]streak.Data)}
}

func (s *MemoryStore) Load(_ context.Context, key string) (*streak.Data, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailLoads {
		return nil, errMemoryStoreDown
	}
	data, ok := s.records[key]
	if !ok {
		return nil, nil
	}
	copied := streak.Normalize(data)
	return &copied, nil
}

func (s *MemoryStore) Save(_ context.Context, key string, data *streak.Data) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailSaves {
		return errMemoryStoreDown
	}
	s.records[key] = *data
	return nil
}

func (s *MemoryStore) Keys(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.records))
	for k := range s.records {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}
