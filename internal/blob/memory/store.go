// Package memory implements an in-memory blob store for tests and throwaway runs.
package memory

import (
	"context"
	"sync"

	"github.com/rpggio/fabtrack/internal/repository"
)

// Store implements repository.BlobStore backed by process memory.
type Store struct {
	mu   sync.RWMutex
	objs map[string][]byte
}

// New returns an empty in-memory blob store.
func New() *Store { return &Store{objs: make(map[string][]byte)} }

// Get returns a copy of the value under key.
func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	v, ok := s.objs[key]
	s.mu.RUnlock()
	if !ok {
		return nil, repository.ErrNotFound
	}
	return clone(v), nil
}

// Set stores a copy of value under key.
func (s *Store) Set(_ context.Context, key string, value []byte) error {
	if key == "" {
		return repository.ErrInvalidKey
	}
	s.mu.Lock()
	s.objs[key] = clone(value)
	s.mu.Unlock()
	return nil
}

func clone(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
