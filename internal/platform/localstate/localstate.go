// Package localstate persists opaque per-key blobs such as a user's
// notification inbox or favorites set. Callers own the encoding.
package localstate

import (
	"context"
	"sync"
)

// Store reads and writes whole blobs keyed by slot name.
type Store interface {
	// Get returns the blob for key; ok is false when the slot was never written.
	Get(ctx context.Context, key string) (blob []byte, ok bool, err error)
	Put(ctx context.Context, key string, blob []byte) error
	Delete(ctx context.Context, key string) error
}

// MemoryStore keeps slots in process memory.
type MemoryStore struct {
	mu    sync.RWMutex
	slots map[string][]byte
}

// NewMemoryStore constructs an empty in-memory slot store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{slots: map[string][]byte{}}
}

func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	blob, ok := s.slots[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), blob...), true, nil
}

func (s *MemoryStore) Put(_ context.Context, key string, blob []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.slots[key] = append([]byte(nil), blob...)
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.slots, key)
	return nil
}

var _ Store = (*MemoryStore)(nil)
