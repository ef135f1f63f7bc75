// Package file stores snapshots as JSON files in a directory.
//
// The version of a blob is a hash of its content, so a file edited by hand
// between a Load and a Save is detected as a conflict.
package file

import (
	"context"
	"hash/fnv"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/ashkam58/mathflix/pkg/constants"
	"github.com/ashkam58/mathflix/pkg/errors"
	"github.com/ashkam58/mathflix/pkg/store"
)

// Store keeps one file per key under dir.
type Store struct {
	dir string
	mu  sync.Mutex
}

var _ store.Store = (*Store)(nil)

// New creates the directory if needed and returns a store rooted there.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, constants.DirPermissions); err != nil {
		return nil, errors.WrapIO("create", dir, err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the directory the store writes to.
func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) path(key string) string {
	return filepath.Join(s.dir, key+".json")
}

// version derives a non-zero version from content.
func version(data []byte) uint64 {
	h := fnv.New64a()
	_, _ = h.Write(data)
	if v := h.Sum64(); v != 0 {
		return v
	}
	return 1
}

// Load implements store.Store.
func (s *Store) Load(ctx context.Context, key string) (store.Blob, error) {
	if err := ctx.Err(); err != nil {
		return store.Blob{}, err
	}
	if err := store.ValidateKey(key); err != nil {
		return store.Blob{}, err
	}
	return s.load(key)
}

func (s *Store) load(key string) (store.Blob, error) {
	path := s.path(key)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return store.Blob{}, store.NotFound(key)
		}
		return store.Blob{}, errors.WrapIO("read", path, err)
	}
	info, err := os.Stat(path)
	if err != nil {
		return store.Blob{}, errors.WrapIO("stat", path, err)
	}
	return store.Blob{Data: data, Version: version(data), UpdatedAt: info.ModTime()}, nil
}

// Save implements store.Store. The file is replaced atomically.
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
	blob, err := s.load(key)
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

	tmp, err := os.CreateTemp(s.dir, key+".*.tmp")
	if err != nil {
		return 0, errors.WrapIO("create", s.dir, err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return 0, errors.WrapIO("write", tmpName, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return 0, errors.WrapIO("sync", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return 0, errors.WrapIO("close", tmpName, err)
	}
	if err := os.Chmod(tmpName, constants.FilePermissions); err != nil {
		return 0, errors.WrapIO("chmod", tmpName, err)
	}
	if err := os.Rename(tmpName, s.path(key)); err != nil {
		return 0, errors.WrapIO("rename", s.path(key), err)
	}
	return version(data), nil
}

// Delete implements store.Store.
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := store.ValidateKey(key); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(s.path(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return errors.WrapIO("delete", s.path(key), err)
	}
	return nil
}

// Close implements store.Store.
func (s *Store) Close() error {
	return nil
}
