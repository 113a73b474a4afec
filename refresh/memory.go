package refresh

import (
	"context"
	"sync"
)

// MemoryStore is a mutex-guarded in-memory [Store] for tests and examples.
// It honors the same single-winner redeem contract as the durable backends.
type MemoryStore struct {
	mu      sync.Mutex
	records map[string]*Record
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]*Record),
	}
}

func (s *MemoryStore) Create(_ context.Context, rec *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	clone := *rec
	s.records[rec.Token] = &clone
	return nil
}

func (s *MemoryStore) Find(_ context.Context, token string) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[token]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *rec
	return &clone, nil
}

func (s *MemoryStore) Redeem(_ context.Context, token string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[token]
	if !ok {
		return false, ErrNotFound
	}
	if rec.Used || rec.Revoked {
		return false, nil
	}
	rec.Used = true
	return true, nil
}

func (s *MemoryStore) Revoke(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[token]
	if !ok {
		return ErrNotFound
	}
	rec.Revoked = true
	return nil
}
