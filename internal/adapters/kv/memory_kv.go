package kv

import (
	"context"
	"errors"
	"sync"
)

var errWriteRejected = errors.New("memory kv: write rejected")

// MemoryKV is a process-local store for tests and throwaway runs.
type MemoryKV struct {
	mu sync.RWMutex
	m  map[string]string

	// FailWrites makes Set return an error, simulating a full or unavailable store.
	FailWrites bool
}

func NewMemoryKV() *MemoryKV {
	return &MemoryKV{m: make(map[string]string)}
}

func (s *MemoryKV) Get(ctx context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.m[key]
	return v, ok, nil
}

func (s *MemoryKV) Set(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWrites {
		return errWriteRejected
	}
	s.m[key] = value
	return nil
}

func (s *MemoryKV) Remove(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, key)
	return nil
}
