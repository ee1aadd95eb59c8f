// Package bbolt implements database.DB on one bucket of a bbolt file.
package bbolt

import (
	"bytes"
	"context"
	"fmt"
	"sync"

	"go.etcd.io/bbolt"

	"github.com/LeJamon/goMIXR/internal/storage/database"
)

type DB struct {
	mu     sync.RWMutex
	db     *bbolt.DB
	bucket []byte
}

func NewDB(db *bbolt.DB, bucket []byte) *DB {
	return &DB{
		db:     db,
		bucket: bucket,
	}
}

func (b *DB) handle(ctx context.Context) (*bbolt.DB, func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	b.mu.RLock()
	if b.db == nil {
		b.mu.RUnlock()
		return nil, nil, database.ErrDBClosed
	}
	return b.db, b.mu.RUnlock, nil
}

func (b *DB) bucketOf(tx *bbolt.Tx) (*bbolt.Bucket, error) {
	bucket := tx.Bucket(b.bucket)
	if bucket == nil {
		return nil, fmt.Errorf("%w: bucket %s", database.ErrNamespaceNotFound, b.bucket)
	}
	return bucket, nil
}

func (b *DB) Read(ctx context.Context, key []byte) ([]byte, error) {
	db, release, err := b.handle(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	var value []byte
	err = db.View(func(tx *bbolt.Tx) error {
		bucket, err := b.bucketOf(tx)
		if err != nil {
			return err
		}
		v := bucket.Get(key)
		if v == nil {
			return database.ErrKeyNotFound
		}
		// bbolt values are only valid inside the transaction
		value = database.Copy(v)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return value, nil
}

func (b *DB) Has(ctx context.Context, key []byte) (bool, error) {
	db, release, err := b.handle(ctx)
	if err != nil {
		return false, err
	}
	defer release()

	var found bool
	err = db.View(func(tx *bbolt.Tx) error {
		bucket, err := b.bucketOf(tx)
		if err != nil {
			return err
		}
		found = bucket.Get(key) != nil
		return nil
	})
	return found, err
}

func (b *DB) Write(ctx context.Context, key []byte, value []byte) error {
	return b.Batch(ctx, []database.BatchOperation{database.Put(key, value)})
}

func (b *DB) Delete(ctx context.Context, key []byte) error {
	return b.Batch(ctx, []database.BatchOperation{database.Del(key)})
}

func (b *DB) Batch(ctx context.Context, ops []database.BatchOperation) error {
	db, release, err := b.handle(ctx)
	if err != nil {
		return err
	}
	defer release()

	return db.Update(func(tx *bbolt.Tx) error {
		bucket, err := b.bucketOf(tx)
		if err != nil {
			return err
		}
		for _, op := range ops {
			switch op.Type {
			case database.BatchPut:
				err = bucket.Put(op.Key, op.Value)
			case database.BatchDelete:
				err = bucket.Delete(op.Key)
			default:
				return database.UnknownBatchOp(op)
			}
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// Iterator holds a read transaction open until Close.
type Iterator struct {
	tx      *bbolt.Tx
	cursor  *bbolt.Cursor
	start   []byte
	end     []byte
	started bool
	key     []byte
	value   []byte
}

func (b *DB) Iterator(ctx context.Context, start, end []byte) (database.Iterator, error) {
	db, release, err := b.handle(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	tx, err := db.Begin(false)
	if err != nil {
		return nil, err
	}
	bucket, err := b.bucketOf(tx)
	if err != nil {
		_ = tx.Rollback()
		return nil, err
	}
	return &Iterator{
		tx:     tx,
		cursor: bucket.Cursor(),
		start:  start,
		end:    end,
	}, nil
}

func (it *Iterator) Next() bool {
	var k, v []byte
	switch {
	case it.started:
		k, v = it.cursor.Next()
	case it.start == nil:
		k, v = it.cursor.First()
	default:
		k, v = it.cursor.Seek(it.start)
	}
	it.started = true

	if k == nil || (it.end != nil && bytes.Compare(k, it.end) >= 0) {
		it.key, it.value = nil, nil
		return false
	}
	it.key = database.Copy(k)
	it.value = database.Copy(v)
	return true
}

func (it *Iterator) Key() []byte {
	return it.key
}

func (it *Iterator) Value() []byte {
	return it.value
}

func (it *Iterator) Error() error {
	return nil
}

func (it *Iterator) Close() error {
	return it.tx.Rollback()
}

func (b *DB) close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.db == nil {
		return nil
	}
	err := b.db.Close()
	b.db = nil
	return err
}
