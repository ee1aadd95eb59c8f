// Package statestore persists ledger snapshots by sequence number on a
// database.DB. Each record is msgpack, compressed with the configured
// codec, and names the codec it was written with.
package statestore

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/ugorji/go/codec"

	"github.com/LeJamon/goMIXR/internal/core/ledger"
	"github.com/LeJamon/goMIXR/internal/storage/compression"
	"github.com/LeJamon/goMIXR/internal/storage/database"
)

var (
	// ErrNotFound is returned for a sequence with no stored snapshot.
	ErrNotFound = errors.New("snapshot not found")

	// ErrEmpty is returned by Latest before anything is saved.
	ErrEmpty = errors.New("state store is empty")

	ErrCorruptRecord = errors.New("corrupt snapshot record")
)

var (
	snapPrefix = []byte("snap/")
	latestKey  = []byte("meta/latest")
)

// Config holds configuration for the store
type Config struct {
	// Compression names a registered compressor. Defaults to lz4.
	Compression string

	// CacheSize is the number of decoded snapshots kept in memory.
	CacheSize int

	Logger *slog.Logger
}

// Store is safe for concurrent use.
type Store struct {
	db    database.DB
	comp  compression.Compressor
	mh    codec.MsgpackHandle
	cache *lru.Cache[uint64, *ledger.Snapshot]
	log   *slog.Logger

	// mu orders Save against the latest pointer.
	mu sync.Mutex
}

func New(db database.DB, cfg Config) (*Store, error) {
	if cfg.Compression == "" {
		cfg.Compression = "lz4"
	}
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = 64
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	comp, err := compression.Get(cfg.Compression)
	if err != nil {
		return nil, err
	}
	cache, err := lru.New[uint64, *ledger.Snapshot](cfg.CacheSize)
	if err != nil {
		return nil, err
	}
	s := &Store{
		db:    db,
		comp:  comp,
		cache: cache,
		log:   cfg.Logger.With("component", "statestore"),
	}
	s.mh.WriteExt = true
	return s, nil
}

func snapKey(seq uint64) []byte {
	key := make([]byte, len(snapPrefix)+8)
	copy(key, snapPrefix)
	binary.BigEndian.PutUint64(key[len(snapPrefix):], seq)
	return key
}

func seqOf(key []byte) (uint64, error) {
	if len(key) != len(snapPrefix)+8 {
		return 0, fmt.Errorf("%w: key %x", ErrCorruptRecord, key)
	}
	return binary.BigEndian.Uint64(key[len(snapPrefix):]), nil
}

// Save stores snap under its sequence and advances the latest pointer when
// snap is newer. Saving a sequence again overwrites it.
func (s *Store) Save(ctx context.Context, snap *ledger.Snapshot) error {
	record, err := s.encode(snap)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ops := []database.BatchOperation{database.Put(snapKey(snap.Seq), record)}
	latest, err := s.latestSeq(ctx)
	switch {
	case errors.Is(err, ErrEmpty) || (err == nil && snap.Seq >= latest):
		ops = append(ops, database.Put(latestKey, snapKey(snap.Seq)[len(snapPrefix):]))
	case err != nil:
		return err
	}
	if err := s.db.Batch(ctx, ops); err != nil {
		return fmt.Errorf("save snapshot %d: %w", snap.Seq, err)
	}
	s.cache.Add(snap.Seq, snap)
	s.log.Debug("snapshot saved", "seq", snap.Seq, "bytes", len(record))
	return nil
}

// Discard deletes the snapshot saved under seq and moves the latest pointer
// back to the newest remaining snapshot.
func (s *Store) Discard(ctx context.Context, seq uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	seqs, err := s.Seqs(ctx)
	if err != nil {
		return err
	}
	var prev uint64
	remaining := false
	for _, v := range seqs {
		if v != seq {
			prev, remaining = v, true
		}
	}

	ops := []database.BatchOperation{database.Del(snapKey(seq))}
	latest, err := s.latestSeq(ctx)
	switch {
	case errors.Is(err, ErrEmpty):
	case err != nil:
		return err
	case latest == seq && remaining:
		ops = append(ops, database.Put(latestKey, snapKey(prev)[len(snapPrefix):]))
	case latest == seq:
		ops = append(ops, database.Del(latestKey))
	}
	if err := s.db.Batch(ctx, ops); err != nil {
		return fmt.Errorf("discard snapshot %d: %w", seq, err)
	}
	s.cache.Remove(seq)
	s.log.Warn("snapshot discarded", "seq", seq)
	return nil
}

// Load returns the snapshot saved under seq. The result is shared with
// the cache and must not be modified.
func (s *Store) Load(ctx context.Context, seq uint64) (*ledger.Snapshot, error) {
	if snap, ok := s.cache.Get(seq); ok {
		return snap, nil
	}
	record, err := s.db.Read(ctx, snapKey(seq))
	if errors.Is(err, database.ErrKeyNotFound) {
		return nil, fmt.Errorf("%w: seq %d", ErrNotFound, seq)
	}
	if err != nil {
		return nil, err
	}
	snap, err := s.decode(record)
	if err != nil {
		return nil, fmt.Errorf("snapshot %d: %w", seq, err)
	}
	s.cache.Add(seq, snap)
	return snap, nil
}

// Latest returns the newest saved snapshot.
func (s *Store) Latest(ctx context.Context) (*ledger.Snapshot, error) {
	seq, err := s.latestSeq(ctx)
	if err != nil {
		return nil, err
	}
	return s.Load(ctx, seq)
}

func (s *Store) latestSeq(ctx context.Context) (uint64, error) {
	v, err := s.db.Read(ctx, latestKey)
	if errors.Is(err, database.ErrKeyNotFound) {
		return 0, ErrEmpty
	}
	if err != nil {
		return 0, err
	}
	if len(v) != 8 {
		return 0, fmt.Errorf("%w: latest pointer", ErrCorruptRecord)
	}
	return binary.BigEndian.Uint64(v), nil
}

// Seqs lists stored sequences in ascending order.
func (s *Store) Seqs(ctx context.Context) ([]uint64, error) {
	it, err := s.db.Iterator(ctx, snapPrefix, database.PrefixEnd(snapPrefix))
	if err != nil {
		return nil, err
	}
	defer it.Close()

	var seqs []uint64
	for it.Next() {
		seq, err := seqOf(it.Key())
		if err != nil {
			return nil, err
		}
		seqs = append(seqs, seq)
	}
	return seqs, it.Error()
}

// Prune deletes all but the newest keep snapshots and reports how many it
// removed.
func (s *Store) Prune(ctx context.Context, keep int) (int, error) {
	if keep < 1 {
		keep = 1
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	seqs, err := s.Seqs(ctx)
	if err != nil {
		return 0, err
	}
	if len(seqs) <= keep {
		return 0, nil
	}
	stale := seqs[:len(seqs)-keep]
	ops := make([]database.BatchOperation, 0, len(stale))
	for _, seq := range stale {
		ops = append(ops, database.Del(snapKey(seq)))
	}
	if err := s.db.Batch(ctx, ops); err != nil {
		return 0, err
	}
	for _, seq := range stale {
		s.cache.Remove(seq)
	}
	s.log.Info("pruned snapshots", "removed", len(stale), "kept", keep)
	return len(stale), nil
}

// record layout: name length, compressor name, compressed msgpack.
func (s *Store) encode(snap *ledger.Snapshot) ([]byte, error) {
	var raw []byte
	if err := codec.NewEncoderBytes(&raw, &s.mh).Encode(snap); err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	packed, err := s.comp.Compress(raw)
	if err != nil {
		return nil, err
	}
	name := s.comp.Name()
	record := make([]byte, 0, 1+len(name)+len(packed))
	record = append(record, byte(len(name)))
	record = append(record, name...)
	return append(record, packed...), nil
}

func (s *Store) decode(record []byte) (*ledger.Snapshot, error) {
	if len(record) == 0 || len(record) < 1+int(record[0]) {
		return nil, ErrCorruptRecord
	}
	name := string(record[1 : 1+record[0]])
	comp, err := compression.Get(name)
	if err != nil {
		return nil, err
	}
	raw, err := comp.Decompress(record[1+record[0]:])
	if err != nil {
		return nil, err
	}
	snap := new(ledger.Snapshot)
	if err := codec.NewDecoderBytes(raw, &s.mh).Decode(snap); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptRecord, err)
	}
	return snap, nil
}
