// Package journal keeps an append-only record of committed ledger
// operations in sqlite or postgres.
package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	_ "github.com/lib/pq"  // postgres driver
	_ "modernc.org/sqlite" // sqlite driver

	"github.com/LeJamon/goMIXR/internal/core/address"
	"github.com/LeJamon/goMIXR/internal/core/ledger"
)

var (
	ErrClosed        = errors.New("journal is closed")
	ErrEntryNotFound = errors.New("journal entry not found")
)

// Entry is one recorded operation.
type Entry struct {
	ID         uuid.UUID    `json:"id"`
	RecordedAt time.Time    `json:"recorded_at"`
	Event      ledger.Event `json:"event"`
}

// Filter narrows List. Zero fields match everything.
type Filter struct {
	Op       ledger.Op
	Caller   address.Address
	AfterSeq uint64
	Limit    int
}

type Journal struct {
	db    *sql.DB
	cfg   Config
	log   *slog.Logger
	clock clockwork.Clock
}

// Open connects, pings and creates the schema if needed. clock stamps
// RecordedAt; nil means the real clock.
func Open(ctx context.Context, cfg Config, clock clockwork.Clock, log *slog.Logger) (*Journal, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if log == nil {
		log = slog.Default()
	}

	db, err := sql.Open(cfg.Driver, cfg.dsn())
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	j := &Journal{db: db, cfg: cfg, log: log.With("component", "journal"), clock: clock}

	ctx, cancel := context.WithTimeout(ctx, cfg.DefaultTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping journal: %w", err)
	}
	if err := j.initSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("journal schema: %w", err)
	}
	return j, nil
}

func (j *Journal) initSchema(ctx context.Context) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS journal (
			id TEXT PRIMARY KEY,
			seq BIGINT UNIQUE NOT NULL,
			op TEXT NOT NULL,
			caller TEXT NOT NULL,
			recorded_at BIGINT NOT NULL,
			payload TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_journal_op ON journal(op)`,
		`CREATE INDEX IF NOT EXISTS idx_journal_caller ON journal(caller)`,
	}
	for _, q := range queries {
		if _, err := j.db.ExecContext(ctx, q); err != nil {
			return err
		}
	}
	return nil
}

// Close closes the connection pool.
func (j *Journal) Close() error {
	if j.db == nil {
		return nil
	}
	err := j.db.Close()
	j.db = nil
	return err
}

// placeholder returns the n-th (1-based) bind marker for the driver.
func (j *Journal) placeholder(n int) string {
	if j.cfg.Driver == DriverPostgres {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

// Record appends ev. Recording the same sequence twice fails.
func (j *Journal) Record(ctx context.Context, ev ledger.Event) (Entry, error) {
	if j.db == nil {
		return Entry{}, ErrClosed
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		return Entry{}, fmt.Errorf("encode event %d: %w", ev.Seq, err)
	}
	entry := Entry{ID: uuid.New(), RecordedAt: j.clock.Now().UTC(), Event: ev}

	ctx, cancel := context.WithTimeout(ctx, j.cfg.DefaultTimeout)
	defer cancel()

	q := fmt.Sprintf(`INSERT INTO journal (id, seq, op, caller, recorded_at, payload) VALUES (%s, %s, %s, %s, %s, %s)`,
		j.placeholder(1), j.placeholder(2), j.placeholder(3), j.placeholder(4), j.placeholder(5), j.placeholder(6))
	_, err = j.db.ExecContext(ctx, q,
		entry.ID.String(), int64(ev.Seq), string(ev.Op), ev.Caller.String(), entry.RecordedAt.UnixNano(), string(payload))
	if err != nil {
		return Entry{}, fmt.Errorf("record event %d: %w", ev.Seq, err)
	}
	j.log.Debug("event recorded", "seq", ev.Seq, "op", ev.Op, "id", entry.ID)
	return entry, nil
}

// Get returns the entry for seq.
func (j *Journal) Get(ctx context.Context, seq uint64) (Entry, error) {
	entries, err := j.query(ctx, "WHERE seq = "+j.placeholder(1), []any{int64(seq)}, 1)
	if err != nil {
		return Entry{}, err
	}
	if len(entries) == 0 {
		return Entry{}, fmt.Errorf("%w: seq %d", ErrEntryNotFound, seq)
	}
	return entries[0], nil
}

// List returns entries matching f in sequence order.
func (j *Journal) List(ctx context.Context, f Filter) ([]Entry, error) {
	var (
		conds []string
		args  []any
	)
	if f.Op != "" {
		args = append(args, string(f.Op))
		conds = append(conds, "op = "+j.placeholder(len(args)))
	}
	if !f.Caller.IsZero() {
		args = append(args, f.Caller.String())
		conds = append(conds, "caller = "+j.placeholder(len(args)))
	}
	if f.AfterSeq > 0 {
		args = append(args, int64(f.AfterSeq))
		conds = append(conds, "seq > "+j.placeholder(len(args)))
	}
	where := ""
	if len(conds) > 0 {
		where = "WHERE " + strings.Join(conds, " AND ")
	}
	return j.query(ctx, where, args, f.Limit)
}

// LastSeq returns the highest recorded sequence, or 0.
func (j *Journal) LastSeq(ctx context.Context) (uint64, error) {
	if j.db == nil {
		return 0, ErrClosed
	}
	ctx, cancel := context.WithTimeout(ctx, j.cfg.DefaultTimeout)
	defer cancel()

	var seq sql.NullInt64
	if err := j.db.QueryRowContext(ctx, `SELECT MAX(seq) FROM journal`).Scan(&seq); err != nil {
		return 0, err
	}
	return uint64(seq.Int64), nil
}

func (j *Journal) query(ctx context.Context, where string, args []any, limit int) ([]Entry, error) {
	if j.db == nil {
		return nil, ErrClosed
	}
	ctx, cancel := context.WithTimeout(ctx, j.cfg.DefaultTimeout)
	defer cancel()

	q := "SELECT id, recorded_at, payload FROM journal " + where + " ORDER BY seq"
	if limit > 0 {
		q += fmt.Sprintf(" LIMIT %d", limit)
	}
	rows, err := j.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			id      string
			at      int64
			payload string
			e       Entry
		)
		if err := rows.Scan(&id, &at, &payload); err != nil {
			return nil, err
		}
		if e.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("journal id %q: %w", id, err)
		}
		e.RecordedAt = time.Unix(0, at).UTC()
		if err := json.Unmarshal([]byte(payload), &e.Event); err != nil {
			return nil, fmt.Errorf("journal entry %s: %w", id, err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
