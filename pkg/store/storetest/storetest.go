// Package storetest holds the conformance suite every store.Store passes.
package storetest

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashkam58/mathflix/pkg/errors"
	"github.com/ashkam58/mathflix/pkg/store"
)

// Factory opens a fresh, empty store for one subtest.
type Factory func(t *testing.T) store.Store

// Run exercises s against the store contract.
func Run(t *testing.T, open Factory) {
	t.Run("load missing", func(t *testing.T) {
		s := open(t)
		_, err := s.Load(context.Background(), "missing")
		require.Error(t, err)
		assert.True(t, errors.IsNotFound(err))
	})

	t.Run("save and load", func(t *testing.T) {
		s := open(t)
		ctx := context.Background()

		v1, err := s.Save(ctx, "MATHFLIX_DB_V1", []byte(`[{"id":"a"}]`), 0)
		require.NoError(t, err)
		assert.NotZero(t, v1)

		blob, err := s.Load(ctx, "MATHFLIX_DB_V1")
		require.NoError(t, err)
		assert.Equal(t, `[{"id":"a"}]`, string(blob.Data))
		assert.Equal(t, v1, blob.Version)
		assert.False(t, blob.UpdatedAt.IsZero())

		v2, err := s.Save(ctx, "MATHFLIX_DB_V1", []byte(`[]`), v1)
		require.NoError(t, err)
		assert.NotEqual(t, v1, v2)

		blob, err = s.Load(ctx, "MATHFLIX_DB_V1")
		require.NoError(t, err)
		assert.Equal(t, "[]", string(blob.Data))
		assert.Equal(t, v2, blob.Version)
	})

	t.Run("stale version conflicts", func(t *testing.T) {
		s := open(t)
		ctx := context.Background()

		v1, err := s.Save(ctx, "k", []byte("one"), 0)
		require.NoError(t, err)
		_, err = s.Save(ctx, "k", []byte("two"), v1)
		require.NoError(t, err)

		_, err = s.Save(ctx, "k", []byte("three"), v1)
		require.Error(t, err)
		assert.True(t, errors.IsConflict(err))

		_, err = s.Save(ctx, "k", []byte("again"), 0)
		assert.True(t, errors.IsConflict(err), "create over an existing key must conflict")

		blob, err := s.Load(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, "two", string(blob.Data))
	})

	t.Run("save with version on missing key conflicts", func(t *testing.T) {
		s := open(t)
		_, err := s.Save(context.Background(), "k", []byte("x"), 7)
		assert.True(t, errors.IsConflict(err))
	})

	t.Run("delete", func(t *testing.T) {
		s := open(t)
		ctx := context.Background()
		_, err := s.Save(ctx, "k", []byte("x"), 0)
		require.NoError(t, err)

		require.NoError(t, s.Delete(ctx, "k"))
		_, err = s.Load(ctx, "k")
		assert.True(t, errors.IsNotFound(err))
		assert.NoError(t, s.Delete(ctx, "k"))
	})

	t.Run("invalid key", func(t *testing.T) {
		s := open(t)
		_, err := s.Save(context.Background(), "../escape", []byte("x"), 0)
		assert.True(t, errors.IsValidationError(err))
	})

	t.Run("concurrent creators", func(t *testing.T) {
		s := open(t)
		ctx := context.Background()

		const writers = 8
		var (
			wg        sync.WaitGroup
			mu        sync.Mutex
			succeeded int
		)
		for i := 0; i < writers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if _, err := s.Save(ctx, "race", []byte("x"), 0); err == nil {
					mu.Lock()
					succeeded++
					mu.Unlock()
				} else {
					assert.True(t, errors.IsConflict(err))
				}
			}()
		}
		wg.Wait()
		assert.Equal(t, 1, succeeded)
	})
}
