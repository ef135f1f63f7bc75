package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashkam58/mathflix/pkg/store"
	"github.com/ashkam58/mathflix/pkg/store/sqlite"
	"github.com/ashkam58/mathflix/pkg/store/storetest"
)

func TestStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store {
		s, err := sqlite.Open(filepath.Join(t.TempDir(), "mathflix.db"))
		require.NoError(t, err)
		t.Cleanup(func() { _ = s.Close() })
		return s
	})
}

func TestMigrationsAreIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mathflix.db")
	ctx := context.Background()

	s, err := sqlite.Open(path)
	require.NoError(t, err)
	_, err = s.Save(ctx, "k", []byte("[]"), 0)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = sqlite.Open(path)
	require.NoError(t, err)
	defer s.Close()

	blob, err := s.Load(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), blob.Version)
}

func TestInMemory(t *testing.T) {
	s, err := sqlite.Open(":memory:")
	require.NoError(t, err)
	defer s.Close()

	v, err := s.Save(context.Background(), "k", []byte("x"), 0)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), v)
}
