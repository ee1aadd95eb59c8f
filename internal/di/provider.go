package di

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/LeJamon/goMIXR/internal/config"
	"github.com/LeJamon/goMIXR/internal/core/ledger"
	"github.com/LeJamon/goMIXR/internal/rpc"
	"github.com/LeJamon/goMIXR/internal/storage"
	"github.com/LeJamon/goMIXR/internal/storage/database"
	"github.com/LeJamon/goMIXR/internal/storage/journal"
	"github.com/LeJamon/goMIXR/internal/storage/statestore"
)

// StateNamespace is the key/value namespace holding ledger snapshots.
const StateNamespace = "ledger"

// persistTimeout bounds the writes made before each commit.
const persistTimeout = 10 * time.Second

// Provider configures and registers services in the container.
type Provider struct {
	container *Container
	config    *config.Config
	log       *slog.Logger
	ctx       context.Context
}

// NewProvider creates a new service provider. ctx bounds the I/O builders
// perform while starting up.
func NewProvider(ctx context.Context, container *Container, cfg *config.Config, log *slog.Logger) *Provider {
	if log == nil {
		log = slog.Default()
	}
	return &Provider{
		container: container,
		config:    cfg,
		log:       log,
		ctx:       ctx,
	}
}

// RegisterAll registers all services. A clock registered beforehand is
// kept, otherwise the real clock is used.
func (p *Provider) RegisterAll() {
	p.container.Register(ServiceConfig, p.config)
	if !p.container.Has(ServiceClock) {
		p.container.Register(ServiceClock, clockwork.NewRealClock())
	}

	p.registerStorageBuilders()
	p.registerLedgerBuilders()
	p.registerRPCBuilders()
}

// registerStorageBuilders registers storage service builders.
func (p *Provider) registerStorageBuilders() {
	p.container.RegisterBuilder(ServiceStorage, func(c *Container) (any, error) {
		return storage.OpenManager(p.config.Storage.Backend, p.config.StoragePath())
	})

	p.container.RegisterBuilder(ServiceStateStore, func(c *Container) (any, error) {
		mgr, err := Resolve[database.Manager](c, ServiceStorage)
		if err != nil {
			return nil, err
		}
		db, err := mgr.OpenDB(StateNamespace)
		if err != nil {
			return nil, err
		}
		return statestore.New(db, statestore.Config{
			Compression: p.config.Storage.Compression,
			CacheSize:   p.config.Storage.CacheSize,
			Logger:      p.log,
		})
	})

	// The journal is optional.
	p.container.RegisterBuilder(ServiceJournal, func(c *Container) (any, error) {
		if !p.config.Journal.Enabled {
			return nil, nil
		}
		if err := os.MkdirAll(p.config.DataDir, 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
		clock, err := Resolve[clockwork.Clock](c, ServiceClock)
		if err != nil {
			return nil, err
		}
		j, err := journal.Open(p.ctx, p.config.JournalConfig(), clock, p.log)
		if err != nil {
			return nil, err
		}
		return j, nil
	})
}

// registerLedgerBuilders registers ledger service builders.
func (p *Provider) registerLedgerBuilders() {
	p.container.RegisterBuilder(ServiceGenesis, func(c *Container) (any, error) {
		return config.LoadGenesis(p.config.GenesisFile)
	})

	// The engine resumes from the newest snapshot, or starts from genesis
	// when the store is empty. Every operation is saved and journaled
	// before it commits.
	p.container.RegisterBuilder(ServiceEngine, func(c *Container) (any, error) {
		store, err := Resolve[*statestore.Store](c, ServiceStateStore)
		if err != nil {
			return nil, err
		}
		j, err := Resolve[*journal.Journal](c, ServiceJournal)
		if err != nil {
			return nil, err
		}
		clock, err := Resolve[clockwork.Clock](c, ServiceClock)
		if err != nil {
			return nil, err
		}
		gen, err := Resolve[*config.Genesis](c, ServiceGenesis)
		if err != nil {
			return nil, err
		}

		state, err := p.loadState(store, gen)
		if err != nil {
			return nil, err
		}
		auth, err := p.config.Whitelist()
		if err != nil {
			return nil, err
		}
		balances, err := gen.LedgerBalances()
		if err != nil {
			return nil, err
		}
		return ledger.NewEngine(state, ledger.Config{
			Authorizer: auth,
			Tokens:     ledger.NewStaticBalances(balances),
			Clock:      clock,
			Logger:     p.log,
			Persist:    p.persister(store, j),
		}), nil
	})
}

// persister saves the snapshot of each new state, then journals its event.
// A failed journal write discards the snapshot again so that neither store
// runs ahead of the engine.
func (p *Provider) persister(store *statestore.Store, j *journal.Journal) ledger.Persister {
	return func(st *ledger.State, ev ledger.Event) error {
		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		defer cancel()

		if err := store.Save(ctx, ledger.Export(st)); err != nil {
			return err
		}
		if j == nil {
			return nil
		}
		if _, err := j.Record(ctx, ev); err != nil {
			if derr := store.Discard(ctx, ev.Seq); derr != nil {
				p.log.Error("failed to discard snapshot", "seq", ev.Seq, "error", derr)
				return errors.Join(err, derr)
			}
			return err
		}
		return nil
	}
}

func (p *Provider) loadState(store *statestore.Store, gen *config.Genesis) (*ledger.State, error) {
	snap, err := store.Latest(p.ctx)
	switch {
	case err == nil:
		p.log.Info("resuming ledger", "seq", snap.Seq)
		return snap.State()
	case errors.Is(err, statestore.ErrEmpty):
		params, err := p.config.LedgerParams()
		if err != nil {
			return nil, err
		}
		p.log.Info("starting ledger from genesis", "assets", len(gen.Assets), "file", p.config.GenesisFile)
		state, err := gen.State(params)
		if err != nil {
			return nil, fmt.Errorf("genesis: %w", err)
		}
		// Seq 0 is persisted so later edits to the genesis file do not
		// change an existing ledger.
		if err := store.Save(p.ctx, ledger.Export(state)); err != nil {
			return nil, err
		}
		return state, nil
	default:
		return nil, err
	}
}

// registerRPCBuilders registers RPC service builders.
func (p *Provider) registerRPCBuilders() {
	p.container.RegisterBuilder(ServiceHub, func(c *Container) (any, error) {
		return rpc.NewHub(p.log), nil
	})
}

// GetConfig returns the configuration from the container.
func (p *Provider) GetConfig() *config.Config {
	return p.config
}
