// Package pebble stores snapshots in an embedded Pebble key-value database.
package pebble

import (
	"context"
	"encoding/binary"
	"fmt"
	"sync"
	"time"

	"github.com/cockroachdb/pebble"

	"github.com/ashkam58/mathflix/pkg/errors"
	"github.com/ashkam58/mathflix/pkg/logging"
	"github.com/ashkam58/mathflix/pkg/store"
)

// headerSize is the encoded length of version and update time.
const headerSize = 16

// Store wraps a Pebble database.
type Store struct {
	db   *pebble.DB
	path string
	mu   sync.Mutex // serializes compare-and-swap
}

var _ store.Store = (*Store)(nil)

// Open opens (or creates) a Pebble database at path.
func Open(path string) (*Store, error) {
	logging.Debug().Str("path", path).Msg("opening pebble store")
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, errors.WrapIO("open", path, err)
	}
	return &Store{db: db, path: path}, nil
}

func dbKey(key string) []byte {
	return []byte("snapshot:" + key)
}

func encode(version uint64, updated time.Time, data []byte) []byte {
	buf := make([]byte, headerSize+len(data))
	binary.BigEndian.PutUint64(buf[0:8], version)
	binary.BigEndian.PutUint64(buf[8:16], uint64(updated.UnixNano()))
	copy(buf[headerSize:], data)
	return buf
}

func decode(value []byte) (store.Blob, error) {
	if len(value) < headerSize {
		return store.Blob{}, fmt.Errorf("value too short: %d bytes", len(value))
	}
	data := make([]byte, len(value)-headerSize)
	copy(data, value[headerSize:])
	return store.Blob{
		Version:   binary.BigEndian.Uint64(value[0:8]),
		UpdatedAt: time.Unix(0, int64(binary.BigEndian.Uint64(value[8:16]))),
		Data:      data,
	}, nil
}

// get reads a blob. The value is copied before the closer is released.
// A value with a damaged header comes back as version 0 carrying the raw
// bytes, so callers see an unreadable snapshot they can overwrite.
func (s *Store) get(key string) (store.Blob, error) {
	value, closer, err := s.db.Get(dbKey(key))
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return store.Blob{}, store.NotFound(key)
		}
		return store.Blob{}, errors.WrapIO("read", s.path, err)
	}
	defer func() { _ = closer.Close() }()

	blob, err := decode(value)
	if err != nil {
		logging.Warn().Err(err).Str("key", key).Msg("corrupt pebble value header")
		raw := make([]byte, len(value))
		copy(raw, value)
		return store.Blob{Data: raw}, nil
	}
	return blob, nil
}

// Load implements store.Store.
func (s *Store) Load(ctx context.Context, key string) (store.Blob, error) {
	if err := ctx.Err(); err != nil {
		return store.Blob{}, err
	}
	return s.get(key)
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

	var current uint64
	blob, err := s.get(key)
	switch {
	case err == nil:
		current = blob.Version
	case errors.IsNotFound(err):
	default:
		return 0, err
	}
	if current != expected {
		return 0, errors.NewConflictError(key, expected, current)
	}

	next := current + 1
	if err := s.db.Set(dbKey(key), encode(next, time.Now(), data), pebble.Sync); err != nil {
		return 0, errors.WrapIO("write", s.path, err)
	}
	return next, nil
}

// Delete implements store.Store.
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.db.Delete(dbKey(key), pebble.Sync); err != nil {
		return errors.WrapIO("delete", s.path, err)
	}
	return nil
}

// Close implements store.Store.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}
