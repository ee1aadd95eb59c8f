// Package node runs the MIXR ledger daemon: it owns the engine, publishes
// every committed operation and serves the RPC surface.
package node

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"github.com/LeJamon/goMIXR/internal/config"
	"github.com/LeJamon/goMIXR/internal/core/address"
	"github.com/LeJamon/goMIXR/internal/core/failure"
	"github.com/LeJamon/goMIXR/internal/core/ledger"
	"github.com/LeJamon/goMIXR/internal/di"
	"github.com/LeJamon/goMIXR/internal/metrics"
	"github.com/LeJamon/goMIXR/internal/rpc"
	"github.com/LeJamon/goMIXR/internal/storage/journal"
	"github.com/LeJamon/goMIXR/internal/storage/statestore"
)

// pruneEvery is how many commits pass between snapshot pruning runs.
const pruneEvery = 64

// pruneTimeout bounds a pruning run.
const pruneTimeout = 10 * time.Second

// Node serializes access to one ledger engine.
type Node struct {
	cfg       *config.Config
	log       *slog.Logger
	container *di.Container

	mu     sync.Mutex
	engine *ledger.Engine

	store   *statestore.Store
	journal *journal.Journal
	hub     *rpc.Hub
	server  *rpc.Server

	scheduler *cron.Cron
	operator  address.Address
}

// New builds every service named by cfg and resumes the ledger.
func New(ctx context.Context, cfg *config.Config, log *slog.Logger) (*Node, error) {
	return newNode(ctx, cfg, log, di.New())
}

// newNode builds on container. Services already registered in it are used
// as they are.
func newNode(ctx context.Context, cfg *config.Config, log *slog.Logger, container *di.Container) (*Node, error) {
	if log == nil {
		log = slog.Default()
	}
	di.NewProvider(ctx, container, cfg, log).RegisterAll()

	n := &Node{cfg: cfg, log: log.With("component", "node"), container: container}
	if err := n.resolve(); err != nil {
		_ = container.Close()
		return nil, err
	}

	n.engine.Subscribe(n.onCommit)
	n.observe()

	opts := rpc.Options{
		Ledger:  n,
		Hub:     n.hub,
		Timeout: cfg.Server.WriteTimeout,
		Metrics: cfg.Server.Metrics,
		Logger:  log,
	}
	if n.journal != nil {
		opts.History = n.journal
	}
	n.server = rpc.NewServer(opts)

	if err := n.schedulePayouts(); err != nil {
		_ = container.Close()
		return nil, err
	}
	return n, nil
}

func (n *Node) resolve() error {
	var err error
	if n.store, err = di.Resolve[*statestore.Store](n.container, di.ServiceStateStore); err != nil {
		return err
	}
	if n.journal, err = di.Resolve[*journal.Journal](n.container, di.ServiceJournal); err != nil {
		return err
	}
	if n.engine, err = di.Resolve[*ledger.Engine](n.container, di.ServiceEngine); err != nil {
		return err
	}
	if n.hub, err = di.Resolve[*rpc.Hub](n.container, di.ServiceHub); err != nil {
		return err
	}
	if n.operator, err = n.cfg.PayoutOperator(); err != nil {
		return fmt.Errorf("payout.operator: %w", err)
	}
	return nil
}

// Exec runs fn with exclusive access to the engine. Rejected operations
// are counted by name.
func (n *Node) Exec(fn func(e *ledger.Engine) error) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	err := fn(n.engine)
	var fe *failure.Error
	if errors.As(err, &fe) {
		metrics.RecordRejection(ledger.Op(fe.Op))
	}
	return err
}

// Handler returns the HTTP routes.
func (n *Node) Handler() http.Handler { return n.server.Handler() }

// onCommit runs after an operation is saved and journaled. It prunes old
// snapshots and publishes the event.
func (n *Node) onCommit(ev ledger.Event) {
	if keep := n.cfg.Storage.KeepSnapshots; keep > 0 && ev.Seq%pruneEvery == 0 {
		ctx, cancel := context.WithTimeout(context.Background(), pruneTimeout)
		removed, err := n.store.Prune(ctx, keep)
		cancel()
		if err != nil {
			n.log.Warn("failed to prune snapshots", "error", err)
		} else if removed > 0 {
			n.log.Debug("pruned snapshots", "removed", removed)
		}
	}

	metrics.RecordEvent(ev, n.cfg.Basket.Decimals)
	n.observe()
	n.hub.Broadcast(ev)
}

func (n *Node) observe() {
	metrics.LedgerSeq.Set(float64(n.engine.Seq()))
	metrics.ObserveState(n.engine.Supply(), n.engine.FeePool(), len(n.engine.Ranking()), n.cfg.Basket.Decimals)
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (n *Node) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         n.cfg.Server.Listen,
		Handler:      n.Handler(),
		ReadTimeout:  n.cfg.Server.ReadTimeout,
		WriteTimeout: n.cfg.Server.WriteTimeout,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n.log.Info("serving", "listen", srv.Addr, "methods", len(n.server.Methods()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		if n.scheduler != nil {
			n.scheduler.Start()
		}
		<-ctx.Done()
		n.log.Info("shutting down")
		if n.scheduler != nil {
			<-n.scheduler.Stop().Done()
		}
		n.hub.Close()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), n.cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// Close releases storage. Call it after Run returns.
func (n *Node) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.hub.Close()
	return n.container.Close()
}
