// Package sqlite stores snapshots in a SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/golang-migrate/migrate/v4"
	msqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/ashkam58/mathflix/db/migrations"
	"github.com/ashkam58/mathflix/pkg/constants"
	"github.com/ashkam58/mathflix/pkg/errors"
	"github.com/ashkam58/mathflix/pkg/store"

	// Import SQLite driver for database/sql
	_ "modernc.org/sqlite"
)

// Store keeps snapshots in the snapshots table.
type Store struct {
	db   *sql.DB
	path string
}

var _ store.Store = (*Store)(nil)

// Open opens the database at path, creating it and applying migrations as
// needed. ":memory:" opens a private in-memory database.
func Open(path string) (*Store, error) {
	var dsn string
	if path == ":memory:" {
		dsn = "file::memory:"
	} else {
		if err := os.MkdirAll(filepath.Dir(path), constants.DirPermissions); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
		absPath, err := filepath.Abs(path)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve database path: %w", err)
		}
		dsn = fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", filepath.ToSlash(absPath))
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// a single connection keeps an in-memory database alive and serializes writers
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := runMigrations(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db, path: path}, nil
}

func runMigrations(db *sql.DB) error {
	driver, err := msqlite.WithInstance(db, &msqlite.Config{})
	if err != nil {
		return fmt.Errorf("failed to initialise migrate driver: %w", err)
	}

	sourceDriver, err := iofs.New(migrations.Files, ".")
	if err != nil {
		return fmt.Errorf("failed to load embedded migrations: %w", err)
	}
	defer func() {
		_ = sourceDriver.Close()
	}()

	migrator, err := migrate.NewWithInstance("iofs", sourceDriver, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}

	if err := migrator.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	return nil
}

// Load implements store.Store.
func (s *Store) Load(ctx context.Context, key string) (store.Blob, error) {
	var (
		blob    store.Blob
		updated int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT data, version, updated_at FROM snapshots WHERE key = ?`, key,
	).Scan(&blob.Data, &blob.Version, &updated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return store.Blob{}, store.NotFound(key)
		}
		return store.Blob{}, errors.WrapIO("read", s.path, err)
	}
	blob.UpdatedAt = time.Unix(0, updated)
	return blob, nil
}

// Save implements store.Store.
func (s *Store) Save(ctx context.Context, key string, data []byte, expected uint64) (uint64, error) {
	if err := store.ValidateKey(key); err != nil {
		return 0, err
	}
	if data == nil {
		data = []byte{}
	}
	now := time.Now().UnixNano()

	var (
		res sql.Result
		err error
	)
	if expected == 0 {
		res, err = s.db.ExecContext(ctx,
			`INSERT INTO snapshots (key, data, version, updated_at) VALUES (?, ?, 1, ?)
			 ON CONFLICT(key) DO NOTHING`, key, data, now)
	} else {
		res, err = s.db.ExecContext(ctx,
			`UPDATE snapshots SET data = ?, version = version + 1, updated_at = ?
			 WHERE key = ? AND version = ?`, data, now, key, expected)
	}
	if err != nil {
		return 0, errors.WrapIO("write", s.path, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, errors.WrapIO("write", s.path, err)
	}
	if n == 0 {
		var actual uint64
		current, lerr := s.Load(ctx, key)
		if lerr == nil {
			actual = current.Version
		}
		return 0, errors.NewConflictError(key, expected, actual)
	}
	return expected + 1, nil
}

// Delete implements store.Store.
func (s *Store) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM snapshots WHERE key = ?`, key); err != nil {
		return errors.WrapIO("delete", s.path, err)
	}
	return nil
}

// Close implements store.Store.
func (s *Store) Close() error {
	return s.db.Close()
}
