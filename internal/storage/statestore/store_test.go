package statestore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LeJamon/goMIXR/internal/core/ledger"
	"github.com/LeJamon/goMIXR/internal/storage/database"
	"github.com/LeJamon/goMIXR/internal/storage/database/pebble"
)

func openDB(t *testing.T) database.DB {
	t.Helper()
	m := pebble.NewMemManager()
	t.Cleanup(func() { _ = m.Close() })
	db, err := m.OpenDB("state")
	require.NoError(t, err)
	return db
}

func sampleSnapshot(seq uint64) *ledger.Snapshot {
	return &ledger.Snapshot{
		Seq:                    seq,
		Decimals:               18,
		MinimumFee:             "0.001",
		DeviationCeiling:       "1",
		Supply:                 "2000000000000000000000",
		FeePool:                "6000000000000000000",
		RewardCeiling:          10,
		MinimumNominationStake: "1000",
		Assets: []ledger.AssetRecord{{
			Address:       "0x00000000000000000000000000000000000000a1",
			Symbol:        "XUSD",
			Decimals:      18,
			Target:        "1",
			Balance:       "2000000000000000000000",
			DepositFee:    "0.003",
			RedemptionFee: "0.003",
		}},
		Agents:  []ledger.AgentRecord{{Address: "0x000000000000000000000000000000000000000a", Name: "alpha"}},
		Stakes:  []ledger.StakeRecord{{Agent: "0x000000000000000000000000000000000000000a", Backer: "0x0000000000000000000000000000000000000071", Amount: "1500"}},
		Ranking: []ledger.RankRecord{{Agent: "0x000000000000000000000000000000000000000a", Value: "1500"}},
	}
}

func TestSaveLoad(t *testing.T) {
	for _, comp := range []string{"lz4", "none"} {
		t.Run(comp, func(t *testing.T) {
			ctx := context.Background()
			db := openDB(t)
			s, err := New(db, Config{Compression: comp, CacheSize: 2})
			require.NoError(t, err)

			_, err = s.Latest(ctx)
			assert.ErrorIs(t, err, ErrEmpty)

			want := sampleSnapshot(3)
			require.NoError(t, s.Save(ctx, want))

			// A fresh store reads from the database, not the cache.
			fresh, err := New(db, Config{Compression: "none"})
			require.NoError(t, err)
			got, err := fresh.Load(ctx, 3)
			require.NoError(t, err)
			assert.Equal(t, want, got)

			_, err = fresh.Load(ctx, 4)
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestLatestTracksHighestSeq(t *testing.T) {
	ctx := context.Background()
	s, err := New(openDB(t), Config{})
	require.NoError(t, err)

	for _, seq := range []uint64{1, 5, 2} {
		require.NoError(t, s.Save(ctx, sampleSnapshot(seq)))
	}
	latest, err := s.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(5), latest.Seq)

	seqs, err := s.Seqs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []uint64{1, 2, 5}, seqs)
}

func TestPrune(t *testing.T) {
	ctx := context.Background()
	s, err := New(openDB(t), Config{})
	require.NoError(t, err)
	for seq := uint64(1); seq <= 6; seq++ {
		require.NoError(t, s.Save(ctx, sampleSnapshot(seq)))
	}

	removed, err := s.Prune(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, 4, removed)

	seqs, err := s.Seqs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []uint64{5, 6}, seqs)

	_, err = s.Load(ctx, 1)
	assert.ErrorIs(t, err, ErrNotFound)

	removed, err = s.Prune(ctx, 2)
	require.NoError(t, err)
	assert.Zero(t, removed)
}

func TestDiscard(t *testing.T) {
	ctx := context.Background()
	s, err := New(openDB(t), Config{})
	require.NoError(t, err)

	for seq := uint64(0); seq < 3; seq++ {
		require.NoError(t, s.Save(ctx, sampleSnapshot(seq)))
	}

	require.NoError(t, s.Discard(ctx, 2))
	latest, err := s.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), latest.Seq)
	_, err = s.Load(ctx, 2)
	assert.ErrorIs(t, err, ErrNotFound)

	// Discarding an older snapshot leaves the pointer alone.
	require.NoError(t, s.Discard(ctx, 0))
	latest, err = s.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), latest.Seq)

	require.NoError(t, s.Discard(ctx, 1))
	_, err = s.Latest(ctx)
	assert.ErrorIs(t, err, ErrEmpty)
	seqs, err := s.Seqs(ctx)
	require.NoError(t, err)
	assert.Empty(t, seqs)
}

func TestCorruptRecord(t *testing.T) {
	ctx := context.Background()
	db := openDB(t)
	s, err := New(db, Config{})
	require.NoError(t, err)

	require.NoError(t, db.Write(ctx, snapKey(9), []byte{3, 'l', 'z', '4', 0xde, 0xad}))
	_, err = s.Load(ctx, 9)
	assert.Error(t, err)

	require.NoError(t, db.Write(ctx, snapKey(10), []byte{4, 'n', 'o', 'n', 'e', 0xc1}))
	_, err = s.Load(ctx, 10)
	assert.ErrorIs(t, err, ErrCorruptRecord)
}

func TestUnknownCompression(t *testing.T) {
	_, err := New(openDB(t), Config{Compression: "brotli"})
	assert.Error(t, err)
}
