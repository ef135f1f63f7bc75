package pebble_test

import (
	"context"
	"path/filepath"
	"testing"

	cpebble "github.com/cockroachdb/pebble"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashkam58/mathflix"
	"github.com/ashkam58/mathflix/pkg/catalogs"
	"github.com/ashkam58/mathflix/pkg/constants"
	"github.com/ashkam58/mathflix/pkg/snapshot"
	"github.com/ashkam58/mathflix/pkg/sources"
	"github.com/ashkam58/mathflix/pkg/store"
	"github.com/ashkam58/mathflix/pkg/store/pebble"
	"github.com/ashkam58/mathflix/pkg/store/storetest"
)

func TestStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store {
		s, err := pebble.Open(filepath.Join(t.TempDir(), "db"))
		require.NoError(t, err)
		t.Cleanup(func() { _ = s.Close() })
		return s
	})
}

func TestReopenKeepsVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db")
	ctx := context.Background()

	s, err := pebble.Open(path)
	require.NoError(t, err)
	v, err := s.Save(ctx, "k", []byte("payload"), 0)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = pebble.Open(path)
	require.NoError(t, err)
	defer s.Close()

	blob, err := s.Load(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, v, blob.Version)
	assert.Equal(t, "payload", string(blob.Data))
}

// writeRaw stores value under key without the version header.
func writeRaw(t *testing.T, path, key string, value []byte) {
	t.Helper()
	db, err := cpebble.Open(path, &cpebble.Options{})
	require.NoError(t, err)
	require.NoError(t, db.Set([]byte("snapshot:"+key), value, cpebble.Sync))
	require.NoError(t, db.Close())
}

func TestCorruptHeaderLoadsAsUnversioned(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db")
	writeRaw(t, path, "k", []byte("bad"))
	ctx := context.Background()

	s, err := pebble.Open(path)
	require.NoError(t, err)
	defer s.Close()

	blob, err := s.Load(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, uint64(0), blob.Version)
	assert.Equal(t, "bad", string(blob.Data))

	v, err := s.Save(ctx, "k", []byte("fresh"), 0)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), v)

	blob, err = s.Load(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "fresh", string(blob.Data))
}

func TestClientRecoversFromCorruptHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db")
	key := constants.DefaultSnapshotKey
	writeRaw(t, path, key, []byte{0x01, 0x02})
	ctx := context.Background()

	s, err := pebble.Open(path)
	require.NoError(t, err)

	c, err := mathflix.New(
		mathflix.WithStore(s),
		mathflix.WithSource(sources.Static(catalogs.NewTestRecord("math-1", "Fractions"))),
		mathflix.WithSnapshotKey(key),
	)
	require.NoError(t, err)
	defer c.Close()

	games, err := c.Games(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"math-1"}, catalogs.IDs(games))

	blob, err := s.Load(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), blob.Version)
	records, err := snapshot.Decode(key, blob.Data)
	require.NoError(t, err)
	assert.Equal(t, []string{"math-1"}, catalogs.IDs(records))
}
