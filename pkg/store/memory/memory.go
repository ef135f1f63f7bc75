// Package memory provides an in-process snapshot store.
package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/ashkam58/mathflix/pkg/errors"
	"github.com/ashkam58/mathflix/pkg/store"
)

// Store keeps blobs in a map. The zero value is not usable; call New.
type Store struct {
	mu    sync.RWMutex
	blobs map[string]store.Blob
	now   func() time.Time
}

var _ store.Store = (*Store)(nil)

// New creates an empty store.
func New() *Store {
	return &Store{blobs: make(map[string]store.Blob), now: time.Now}
}

// Load implements store.Store.
func (s *Store) Load(ctx context.Context, key string) (store.Blob, error) {
	if err := ctx.Err(); err != nil {
		return store.Blob{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.blobs[key]
	if !ok {
		return store.Blob{}, store.NotFound(key)
	}
	b.Data = slices.Clone(b.Data)
	return b, nil
}

// Save implements store.Store.
func (s *Store) Save(ctx context.Context, key string, data []byte, expected uint64) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if err := store.ValidateKey(key); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.blobs[key].Version
	if current != expected {
		return 0, errors.NewConflictError(key, expected, current)
	}
	next := current + 1
	s.blobs[key] = store.Blob{Data: slices.Clone(data), Version: next, UpdatedAt: s.now()}
	return next, nil
}

// Delete implements store.Store.
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.blobs, key)
	return nil
}

// Close implements store.Store.
func (s *Store) Close() error {
	return nil
}
