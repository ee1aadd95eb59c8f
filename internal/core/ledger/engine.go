package ledger

import (
	"fmt"
	"log/slog"

	"github.com/jonboulle/clockwork"

	"github.com/LeJamon/goMIXR/internal/core/failure"
)

// Config configures an Engine.
type Config struct {
	Authorizer Authorizer
	Tokens     TokenBalances

	// Clock stamps events. Defaults to the real clock.
	Clock clockwork.Clock

	// Logger defaults to slog.Default().
	Logger *slog.Logger

	// Persist, when set, runs with the new state and its event before the
	// state is committed. An error aborts the operation.
	Persist Persister
}

// Persister durably records a state about to be committed.
type Persister func(st *State, ev Event) error

// Engine applies operations to a State one at a time. Each operation runs on
// a clone of the state and the clone replaces the state only when the
// operation succeeds, so a failed operation leaves no trace.
//
// Engine is not safe for concurrent use; callers serialize access.
type Engine struct {
	state   *State
	auth    Authorizer
	tokens  TokenBalances
	clock   clockwork.Clock
	log     *slog.Logger
	persist Persister

	busy bool
	subs []Subscriber
}

// NewEngine takes ownership of state.
func NewEngine(state *State, cfg Config) *Engine {
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Authorizer == nil {
		cfg.Authorizer = NewWhitelist()
	}
	if cfg.Tokens == nil {
		cfg.Tokens = NewStaticBalances(nil)
	}
	return &Engine{
		state:   state,
		auth:    cfg.Authorizer,
		tokens:  cfg.Tokens,
		clock:   cfg.Clock,
		log:     cfg.Logger.With("component", "ledger"),
		persist: cfg.Persist,
	}
}

// Subscribe registers fn for every committed event.
func (e *Engine) Subscribe(fn Subscriber) {
	e.subs = append(e.subs, fn)
}

// Seq returns the sequence of the last committed operation.
func (e *Engine) Seq() uint64 { return e.state.Seq }

// State returns a copy of the current state.
func (e *Engine) State() *State { return e.state.Clone() }

// mutation runs against the working copy and fills in the operation-specific
// fields of the event.
type mutation func(st *State, ev *Event) error

// apply runs fn atomically. Authorization is checked first when action is
// non-empty.
func (e *Engine) apply(op Op, entity string, action Action, ev Event, fn mutation) (Event, error) {
	committed, err := e.run(op, entity, action, ev, fn)
	if err != nil {
		e.log.Debug("operation rejected", "op", op, "caller", ev.Caller, "entity", entity, "error", err)
		return Event{}, err
	}
	e.log.Info("operation applied", "op", op, "caller", ev.Caller, "entity", entity, "seq", committed.Seq)
	for _, sub := range e.subs {
		sub(committed)
	}
	return committed, nil
}

func (e *Engine) run(op Op, entity string, action Action, ev Event, fn mutation) (Event, error) {
	if e.busy {
		return Event{}, failure.Wrap(string(op), entity, ErrReentrant)
	}
	e.busy = true
	defer func() { e.busy = false }()

	if action != "" && !e.auth.Authorized(ev.Caller, action) {
		return Event{}, failure.Wrap(string(op), entity, ErrUnauthorized)
	}

	next := e.state.Clone()
	if err := fn(next, &ev); err != nil {
		return Event{}, failure.Wrap(string(op), entity, err)
	}
	next.Seq++
	ev.Seq = next.Seq
	ev.Op = op
	ev.Time = e.clock.Now()
	if e.persist != nil {
		if err := e.persist(next, ev); err != nil {
			return Event{}, failure.Wrap(string(op), entity, fmt.Errorf("%w: %w", ErrPersist, err))
		}
	}
	e.state = next
	return ev, nil
}
