package storage_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LeJamon/goMIXR/internal/storage"
	"github.com/LeJamon/goMIXR/internal/storage/database"
)

func openAll(t *testing.T) map[string]database.Manager {
	t.Helper()
	managers := make(map[string]database.Manager)
	for _, backend := range storage.Backends {
		m, err := storage.OpenManager(backend, t.TempDir())
		require.NoError(t, err, backend)
		t.Cleanup(func() { _ = m.Close() })
		managers[backend] = m
	}
	return managers
}

func TestBackends(t *testing.T) {
	ctx := context.Background()

	for backend, m := range openAll(t) {
		t.Run(backend, func(t *testing.T) {
			db, err := m.OpenDB("state")
			require.NoError(t, err)

			t.Run("read write delete", func(t *testing.T) {
				_, err := db.Read(ctx, []byte("missing"))
				assert.ErrorIs(t, err, database.ErrKeyNotFound)

				require.NoError(t, db.Write(ctx, []byte("k"), []byte("v")))
				got, err := db.Read(ctx, []byte("k"))
				require.NoError(t, err)
				assert.Equal(t, []byte("v"), got)

				ok, err := db.Has(ctx, []byte("k"))
				require.NoError(t, err)
				assert.True(t, ok)

				require.NoError(t, db.Delete(ctx, []byte("k")))
				ok, err = db.Has(ctx, []byte("k"))
				require.NoError(t, err)
				assert.False(t, ok)
			})

			t.Run("batch and range", func(t *testing.T) {
				var ops []database.BatchOperation
				for i := 0; i < 5; i++ {
					ops = append(ops, database.Put([]byte(fmt.Sprintf("r/%d", i)), []byte{byte(i)}))
				}
				ops = append(ops, database.Put([]byte("s/0"), []byte("other")))
				ops = append(ops, database.Del([]byte("r/4")))
				require.NoError(t, db.Batch(ctx, ops))

				it, err := db.Iterator(ctx, []byte("r/1"), database.PrefixEnd([]byte("r/")))
				require.NoError(t, err)
				var keys []string
				for it.Next() {
					keys = append(keys, string(it.Key()))
				}
				require.NoError(t, it.Error())
				require.NoError(t, it.Close())
				assert.Equal(t, []string{"r/1", "r/2", "r/3"}, keys)
			})

			t.Run("unknown batch op", func(t *testing.T) {
				err := db.Batch(ctx, []database.BatchOperation{{Type: 9, Key: []byte("x")}})
				assert.ErrorIs(t, err, database.ErrUnknownBatchOp)
			})

			t.Run("cancelled context", func(t *testing.T) {
				cctx, cancel := context.WithCancel(ctx)
				cancel()
				_, err := db.Read(cctx, []byte("r/1"))
				assert.ErrorIs(t, err, context.Canceled)
			})

			t.Run("closed", func(t *testing.T) {
				require.NoError(t, m.CloseDB("state"))
				_, err := db.Read(ctx, []byte("r/1"))
				assert.ErrorIs(t, err, database.ErrDBClosed)
				assert.ErrorIs(t, m.CloseDB("state"), database.ErrNamespaceNotFound)
			})
		})
	}
}

func TestUnknownBackend(t *testing.T) {
	_, err := storage.OpenManager("cassandra", t.TempDir())
	assert.ErrorIs(t, err, database.ErrUnknownBackend)
}

func TestPrefixEnd(t *testing.T) {
	assert.Equal(t, []byte("s"), database.PrefixEnd([]byte("r")))
	assert.Equal(t, []byte{0x01}, database.PrefixEnd([]byte{0x00, 0xff}))
	assert.Nil(t, database.PrefixEnd([]byte{0xff, 0xff}))
}
