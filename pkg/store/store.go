// Package store defines the storage boundary for catalog snapshots.
//
// A store holds opaque blobs by key. Every blob carries a version and every
// Save is a compare-and-swap against the version the caller last saw, so two
// writers racing on the same key cannot silently overwrite each other.
// Version 0 means the key holds no blob.
package store

import (
	"context"
	"regexp"
	"time"

	"github.com/ashkam58/mathflix/pkg/errors"
)

// Blob is a stored value with its version.
type Blob struct {
	Data      []byte
	Version   uint64
	UpdatedAt time.Time
}

// Store persists snapshot blobs.
type Store interface {
	// Load returns the blob at key, or an error matching errors.ErrNotFound.
	Load(ctx context.Context, key string) (Blob, error)

	// Save replaces the blob at key if its current version equals expected
	// and returns the new version. A mismatch returns *errors.ConflictError.
	Save(ctx context.Context, key string, data []byte, expected uint64) (uint64, error)

	// Delete removes the blob at key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases the store's resources.
	Close() error
}

// Type names a storage backend.
type Type string

// Backends.
const (
	TypeMemory Type = "memory"
	TypeFile   Type = "file"
	TypePebble Type = "pebble"
	TypeSQLite Type = "sqlite"
)

// Types returns the supported backends.
func Types() []Type {
	return []Type{TypeMemory, TypeFile, TypePebble, TypeSQLite}
}

// ParseType validates a backend name.
func ParseType(s string) (Type, error) {
	for _, t := range Types() {
		if string(t) == s {
			return t, nil
		}
	}
	return "", errors.NewValidationError("store", s, "must be one of memory, file, pebble, sqlite")
}

var validKey = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]{0,127}$`)

// ValidateKey rejects keys that are not safe as file names.
func ValidateKey(key string) error {
	if !validKey.MatchString(key) {
		return errors.NewValidationError("key", key, "must be 1-128 letters, digits, dots, dashes or underscores")
	}
	return nil
}

// NotFound returns the error stores use for a missing key.
func NotFound(key string) error {
	return errors.NewNotFoundError("snapshot", key)
}
