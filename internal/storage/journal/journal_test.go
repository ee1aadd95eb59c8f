package journal

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LeJamon/goMIXR/internal/core/address"
	"github.com/LeJamon/goMIXR/internal/core/amount"
	"github.com/LeJamon/goMIXR/internal/core/basket"
	"github.com/LeJamon/goMIXR/internal/core/fixed"
	"github.com/LeJamon/goMIXR/internal/core/ledger"
)

var (
	alice = address.MustParse("0x00000000000000000000000000000000000000a1")
	bob   = address.MustParse("0x00000000000000000000000000000000000000b0")
	asset = address.MustParse("0x00000000000000000000000000000000000000c5")
	epoch = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
)

func openJournal(t *testing.T) *Journal {
	t.Helper()
	j, err := Open(context.Background(), SQLiteConfig(filepath.Join(t.TempDir(), "journal.db")), clockwork.NewFakeClockAt(epoch), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = j.Close() })
	return j
}

func depositEvent(seq uint64, caller address.Address) ledger.Event {
	amt := amount.New(1000)
	return ledger.Event{
		Seq:    seq,
		Time:   epoch.Add(time.Duration(seq) * time.Second),
		Op:     ledger.OpDeposit,
		Caller: caller,
		Asset:  &asset,
		Amount: &amt,
		Receipt: &basket.Receipt{
			Quote: basket.Quote{
				Asset:     asset,
				Direction: basket.Deposit,
				Amount:    amt,
				Deviation: fixed.MustParse("-0.25"),
				Rate:      fixed.MustParse("0.003"),
				Fee:       amount.New(3),
				Net:       amount.New(997),
			},
			Native: amt,
		},
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want error
	}{
		{"sqlite alias", Config{Driver: "sqlite3", DSN: "x.db", DefaultTimeout: time.Second}, nil},
		{"postgres alias", Config{Driver: "postgresql", DSN: "postgres://h/db", DefaultTimeout: time.Second}, nil},
		{"unknown driver", Config{Driver: "mysql", DSN: "x", DefaultTimeout: time.Second}, ErrUnsupportedDriver},
		{"missing dsn", Config{Driver: "sqlite", DefaultTimeout: time.Second}, ErrMissingDSN},
		{"negative pool", Config{Driver: "sqlite", DSN: "x", MaxOpenConns: -1, DefaultTimeout: time.Second}, ErrInvalidPool},
		{"no timeout", Config{Driver: "sqlite", DSN: "x"}, ErrInvalidTimeout},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestRecordAndGet(t *testing.T) {
	ctx := context.Background()
	j := openJournal(t)

	ev := depositEvent(1, alice)
	entry, err := j.Record(ctx, ev)
	require.NoError(t, err)
	assert.Equal(t, epoch, entry.RecordedAt)

	got, err := j.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, entry.ID, got.ID)
	assert.Equal(t, epoch, got.RecordedAt)
	assert.Equal(t, ev, got.Event)

	_, err = j.Get(ctx, 2)
	assert.ErrorIs(t, err, ErrEntryNotFound)

	_, err = j.Record(ctx, ev)
	assert.Error(t, err, "sequence numbers are unique")
}

func TestList(t *testing.T) {
	ctx := context.Background()
	j := openJournal(t)

	for seq, caller := range []address.Address{alice, bob, alice, bob, alice} {
		_, err := j.Record(ctx, depositEvent(uint64(seq+1), caller))
		require.NoError(t, err)
	}
	_, err := j.Record(ctx, ledger.Event{Seq: 6, Time: epoch, Op: ledger.OpPayoutFees, Caller: bob})
	require.NoError(t, err)

	seqs := func(entries []Entry) []uint64 {
		var out []uint64
		for _, e := range entries {
			out = append(out, e.Event.Seq)
		}
		return out
	}

	all, err := j.List(ctx, Filter{})
	require.NoError(t, err)
	assert.Equal(t, []uint64{1, 2, 3, 4, 5, 6}, seqs(all))

	byAlice, err := j.List(ctx, Filter{Caller: alice})
	require.NoError(t, err)
	assert.Equal(t, []uint64{1, 3, 5}, seqs(byAlice))

	payouts, err := j.List(ctx, Filter{Op: ledger.OpPayoutFees})
	require.NoError(t, err)
	assert.Equal(t, []uint64{6}, seqs(payouts))

	page, err := j.List(ctx, Filter{AfterSeq: 2, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, []uint64{3, 4}, seqs(page))

	last, err := j.LastSeq(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(6), last)
}

func TestClosed(t *testing.T) {
	j := openJournal(t)
	require.NoError(t, j.Close())

	_, err := j.Record(context.Background(), depositEvent(1, alice))
	assert.ErrorIs(t, err, ErrClosed)
	_, err = j.List(context.Background(), Filter{})
	assert.ErrorIs(t, err, ErrClosed)
}
