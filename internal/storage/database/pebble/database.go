// Package pebble implements database.DB on cockroachdb/pebble.
package pebble

import (
	"context"
	"errors"
	"sync"

	"github.com/cockroachdb/pebble"

	"github.com/LeJamon/goMIXR/internal/storage/database"
)

type DB struct {
	mu sync.RWMutex
	db *pebble.DB
}

func NewDB(db *pebble.DB) *DB {
	return &DB{db: db}
}

// handle returns the open pebble handle, holding the read lock until the
// returned release is called.
func (p *DB) handle(ctx context.Context) (*pebble.DB, func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	p.mu.RLock()
	if p.db == nil {
		p.mu.RUnlock()
		return nil, nil, database.ErrDBClosed
	}
	return p.db, p.mu.RUnlock, nil
}

func (p *DB) Read(ctx context.Context, key []byte) ([]byte, error) {
	db, release, err := p.handle(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	val, closer, err := db.Get(key)
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return nil, database.ErrKeyNotFound
		}
		return nil, err
	}
	defer closer.Close()
	return database.Copy(val), nil
}

func (p *DB) Has(ctx context.Context, key []byte) (bool, error) {
	_, err := p.Read(ctx, key)
	if errors.Is(err, database.ErrKeyNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (p *DB) Write(ctx context.Context, key, value []byte) error {
	db, release, err := p.handle(ctx)
	if err != nil {
		return err
	}
	defer release()
	return db.Set(key, value, pebble.Sync)
}

func (p *DB) Delete(ctx context.Context, key []byte) error {
	db, release, err := p.handle(ctx)
	if err != nil {
		return err
	}
	defer release()
	return db.Delete(key, pebble.Sync)
}

func (p *DB) Batch(ctx context.Context, ops []database.BatchOperation) error {
	db, release, err := p.handle(ctx)
	if err != nil {
		return err
	}
	defer release()

	batch := db.NewBatch()
	defer batch.Close()

	for _, op := range ops {
		switch op.Type {
		case database.BatchPut:
			if err := batch.Set(op.Key, op.Value, nil); err != nil {
				return err
			}
		case database.BatchDelete:
			if err := batch.Delete(op.Key, nil); err != nil {
				return err
			}
		default:
			return database.UnknownBatchOp(op)
		}
	}

	return batch.Commit(pebble.Sync)
}

type Iterator struct {
	iter    *pebble.Iterator
	started bool
	key     []byte
	value   []byte
}

func (p *DB) Iterator(ctx context.Context, start, end []byte) (database.Iterator, error) {
	db, release, err := p.handle(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	iter, err := db.NewIter(&pebble.IterOptions{
		LowerBound: start,
		UpperBound: end,
	})
	if err != nil {
		return nil, err
	}
	return &Iterator{iter: iter}, nil
}

func (it *Iterator) Next() bool {
	var ok bool
	if !it.started {
		it.started = true
		ok = it.iter.First()
	} else {
		ok = it.iter.Next()
	}
	if !ok {
		it.key, it.value = nil, nil
		return false
	}
	it.key = database.Copy(it.iter.Key())
	it.value = database.Copy(it.iter.Value())
	return true
}

func (it *Iterator) Key() []byte {
	return it.key
}

func (it *Iterator) Value() []byte {
	return it.value
}

func (it *Iterator) Error() error {
	return it.iter.Error()
}

func (it *Iterator) Close() error {
	return it.iter.Close()
}

func (p *DB) close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.db == nil {
		return nil
	}
	err := p.db.Close()
	p.db = nil
	return err
}
