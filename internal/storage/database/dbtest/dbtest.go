// Package dbtest holds behaviour tests shared by every database backend.
package dbtest

import (
	"context"
	"testing"

	"github.com/LeJamon/goPriceFeed/internal/storage/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Run exercises db. It expects db to start empty.
func Run(t *testing.T, db database.DB) {
	t.Helper()
	ctx := context.Background()

	t.Run("read write delete", func(t *testing.T) {
		_, err := db.Read(ctx, []byte("missing"))
		assert.ErrorIs(t, err, database.ErrKeyNotFound)

		require.NoError(t, db.Write(ctx, []byte("k"), []byte("v1")))
		v, err := db.Read(ctx, []byte("k"))
		require.NoError(t, err)
		assert.Equal(t, []byte("v1"), v)

		require.NoError(t, db.Write(ctx, []byte("k"), []byte("v2")))
		v, err = db.Read(ctx, []byte("k"))
		require.NoError(t, err)
		assert.Equal(t, []byte("v2"), v)

		require.NoError(t, db.Delete(ctx, []byte("k")))
		_, err = db.Read(ctx, []byte("k"))
		assert.ErrorIs(t, err, database.ErrKeyNotFound)
	})

	t.Run("batch", func(t *testing.T) {
		require.NoError(t, db.Write(ctx, []byte("b/gone"), []byte("x")))
		require.NoError(t, db.Batch(ctx, []database.BatchOperation{
			{Type: database.BatchPut, Key: []byte("b/1"), Value: []byte("one")},
			{Type: database.BatchPut, Key: []byte("b/2"), Value: []byte("two")},
			{Type: database.BatchDelete, Key: []byte("b/gone")},
		}))

		v, err := db.Read(ctx, []byte("b/2"))
		require.NoError(t, err)
		assert.Equal(t, []byte("two"), v)
		_, err = db.Read(ctx, []byte("b/gone"))
		assert.ErrorIs(t, err, database.ErrKeyNotFound)

		err = db.Batch(ctx, []database.BatchOperation{{Type: database.BatchOpType(42), Key: []byte("b/3")}})
		assert.ErrorIs(t, err, database.ErrBatchOperationFailed)
	})

	t.Run("iteration", func(t *testing.T) {
		collect := collector(t)
		for _, k := range []string{"i/a", "i/b", "i/c", "i/d", "j/a"} {
			require.NoError(t, db.Write(ctx, []byte(k), []byte("v"+k)))
		}

		assert.Equal(t, []string{"i/b", "i/c"}, collect(db.Iterator(ctx, []byte("i/b"), []byte("i/d"))))
		assert.Equal(t, []string{"i/a", "i/b", "i/c", "i/d"},
			collect(db.Iterator(ctx, []byte("i/"), database.PrefixEnd([]byte("i/")))))
		assert.Equal(t, []string{"i/d", "i/c", "i/b", "i/a"},
			collect(db.ReverseIterator(ctx, []byte("i/"), database.PrefixEnd([]byte("i/")))))
		assert.Equal(t, []string{"i/c", "i/b"}, collect(db.ReverseIterator(ctx, []byte("i/b"), []byte("i/d"))))
		assert.Empty(t, collect(db.Iterator(ctx, []byte("x/"), []byte("y/"))))
		assert.Empty(t, collect(db.ReverseIterator(ctx, []byte("x/"), []byte("y/"))))

		all := collect(db.Iterator(ctx, nil, nil))
		assert.Contains(t, all, "j/a")
		assert.Contains(t, all, "b/1")

		it, err := db.ReverseIterator(ctx, nil, []byte("j/"))
		require.NoError(t, err)
		require.True(t, it.Next())
		assert.Equal(t, []byte("i/d"), it.Key())
		assert.Equal(t, []byte("vi/d"), it.Value())
		require.NoError(t, it.Close())
	})
}

func collector(t *testing.T) func(database.Iterator, error) []string {
	return func(it database.Iterator, err error) []string {
		t.Helper()
		require.NoError(t, err)
		defer it.Close()

		var keys []string
		for it.Next() {
			keys = append(keys, string(it.Key()))
		}
		require.NoError(t, it.Error())
		return keys
	}
}
