// Package backend opens a store.Store by backend name.
package backend

import (
	"path/filepath"

	"github.com/ashkam58/mathflix/pkg/store"
	"github.com/ashkam58/mathflix/pkg/store/file"
	"github.com/ashkam58/mathflix/pkg/store/memory"
	"github.com/ashkam58/mathflix/pkg/store/pebble"
	"github.com/ashkam58/mathflix/pkg/store/sqlite"
)

// Open opens the backend t with its data under dir.
func Open(t store.Type, dir string) (store.Store, error) {
	switch t {
	case store.TypeMemory:
		return memory.New(), nil
	case store.TypeFile:
		return file.New(filepath.Join(dir, "snapshots"))
	case store.TypePebble:
		return pebble.Open(filepath.Join(dir, "pebble"))
	case store.TypeSQLite:
		return sqlite.Open(filepath.Join(dir, "mathflix.db"))
	default:
		_, err := store.ParseType(string(t))
		return nil, err
	}
}
