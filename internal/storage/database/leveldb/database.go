// Package leveldb implements database.DB on syndtr/goleveldb.
package leveldb

import (
	"context"
	"errors"
	"sync"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/iterator"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/util"

	"github.com/LeJamon/goMIXR/internal/storage/database"
)

var syncWrite = &opt.WriteOptions{Sync: true}

type DB struct {
	mu sync.RWMutex
	db *leveldb.DB
}

func NewDB(db *leveldb.DB) *DB {
	return &DB{db: db}
}

func (l *DB) handle(ctx context.Context) (*leveldb.DB, func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	l.mu.RLock()
	if l.db == nil {
		l.mu.RUnlock()
		return nil, nil, database.ErrDBClosed
	}
	return l.db, l.mu.RUnlock, nil
}

func (l *DB) Read(ctx context.Context, key []byte) ([]byte, error) {
	db, release, err := l.handle(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	val, err := db.Get(key, nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, database.ErrKeyNotFound
	}
	return val, err
}

func (l *DB) Has(ctx context.Context, key []byte) (bool, error) {
	db, release, err := l.handle(ctx)
	if err != nil {
		return false, err
	}
	defer release()
	return db.Has(key, nil)
}

func (l *DB) Write(ctx context.Context, key, value []byte) error {
	db, release, err := l.handle(ctx)
	if err != nil {
		return err
	}
	defer release()
	return db.Put(key, value, syncWrite)
}

func (l *DB) Delete(ctx context.Context, key []byte) error {
	db, release, err := l.handle(ctx)
	if err != nil {
		return err
	}
	defer release()
	return db.Delete(key, syncWrite)
}

func (l *DB) Batch(ctx context.Context, ops []database.BatchOperation) error {
	db, release, err := l.handle(ctx)
	if err != nil {
		return err
	}
	defer release()

	batch := new(leveldb.Batch)
	for _, op := range ops {
		switch op.Type {
		case database.BatchPut:
			batch.Put(op.Key, op.Value)
		case database.BatchDelete:
			batch.Delete(op.Key)
		default:
			return database.UnknownBatchOp(op)
		}
	}
	return db.Write(batch, syncWrite)
}

type Iterator struct {
	iter  iterator.Iterator
	key   []byte
	value []byte
}

func (l *DB) Iterator(ctx context.Context, start, end []byte) (database.Iterator, error) {
	db, release, err := l.handle(ctx)
	if err != nil {
		return nil, err
	}
	defer release()
	return &Iterator{iter: db.NewIterator(&util.Range{Start: start, Limit: end}, nil)}, nil
}

func (it *Iterator) Next() bool {
	if !it.iter.Next() {
		it.key, it.value = nil, nil
		return false
	}
	it.key = database.Copy(it.iter.Key())
	it.value = database.Copy(it.iter.Value())
	return true
}

func (it *Iterator) Key() []byte   { return it.key }
func (it *Iterator) Value() []byte { return it.value }
func (it *Iterator) Error() error  { return it.iter.Error() }

func (it *Iterator) Close() error {
	it.iter.Release()
	return it.iter.Error()
}

func (l *DB) close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.db == nil {
		return nil
	}
	err := l.db.Close()
	l.db = nil
	return err
}
