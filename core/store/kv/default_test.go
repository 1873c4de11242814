package kv

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBoltDB_UpdateAndView(t *testing.T) {
	db := makeDB(t)

	err := db.Update([]byte("bucket"), func(b Bucket) error {
		return b.Set([]byte("ping"), []byte("pong"))
	})
	require.NoError(t, err)

	err = db.View([]byte("bucket"), func(b Bucket) error {
		value := b.Get([]byte("ping"))
		require.Equal(t, []byte("pong"), value)

		return nil
	})
	require.NoError(t, err)

	err = db.View([]byte{0xaa}, nil)
	require.EqualError(t, err, "bucket 'aa' not found")

	err = db.Update(nil, nil)
	require.EqualError(t, err, "failed to create bucket: bucket name required")
}

func TestBoltDB_New(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "missing", "test.db"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to open db")
}

func TestBoltBucket_Get_Set_Delete(t *testing.T) {
	db := makeDB(t)

	err := db.Update([]byte("bucket"), func(b Bucket) error {
		require.NoError(t, b.Set([]byte("ping"), []byte("pong")))

		value := b.Get([]byte("ping"))
		require.Equal(t, []byte("pong"), value)

		value = b.Get([]byte("pong"))
		require.Nil(t, value)

		require.NoError(t, b.Delete([]byte("ping")))

		value = b.Get([]byte("ping"))
		require.Nil(t, value)

		return nil
	})

	require.NoError(t, err)
}

func TestBoltBucket_ForEach(t *testing.T) {
	db := makeDB(t)

	err := db.Update([]byte("bucket"), func(b Bucket) error {
		require.NoError(t, b.Set([]byte{2}, []byte{2}))
		require.NoError(t, b.Set([]byte{1}, []byte{1}))
		require.NoError(t, b.Set([]byte{0}, []byte{0}))

		var i byte = 0
		return b.ForEach(func(k, v []byte) error {
			require.Equal(t, []byte{i}, k)
			require.Equal(t, []byte{i}, v)
			i++
			return nil
		})
	})
	require.NoError(t, err)
}

// -----------------------------------------------------------------------------
// Utility functions

func makeDB(t *testing.T) DB {
	dir, err := os.MkdirTemp(os.TempDir(), "opcore-kv")
	require.NoError(t, err)

	t.Cleanup(func() { os.RemoveAll(dir) })

	db, err := New(filepath.Join(dir, "test.db"))
	require.NoError(t, err)

	t.Cleanup(func() { db.Close() })

	return db
}
