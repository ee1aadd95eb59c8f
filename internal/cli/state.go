package cli

import (
	"context"
	"fmt"
	"reflect"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/LeJamon/goMIXR/internal/core/ledger"
	"github.com/LeJamon/goMIXR/internal/di"
	"github.com/LeJamon/goMIXR/internal/storage"
	"github.com/LeJamon/goMIXR/internal/storage/statestore"
)

// stateCmd inspects the snapshot store offline. Stop the daemon first; the
// disk backends allow a single process.
var stateCmd = &cobra.Command{
	Use:   "state",
	Short: "Inspect stored ledger snapshots",
}

var stateListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored snapshot sequences",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd.Context(), func(ctx context.Context, store *statestore.Store) error {
			seqs, err := store.Seqs(ctx)
			if err != nil {
				return err
			}
			for _, seq := range seqs {
				fmt.Fprintln(cmd.OutOrStdout(), seq)
			}
			return nil
		})
	},
}

var stateShowCmd = &cobra.Command{
	Use:   "show [seq]",
	Short: "Print a snapshot as JSON (latest by default)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd.Context(), func(ctx context.Context, store *statestore.Store) error {
			snap, err := loadSnapshot(ctx, store, args)
			if err != nil {
				return err
			}
			return jsonEncode(cmd.OutOrStdout(), snap)
		})
	},
}

var statePruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete all but the newest snapshots",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		keep, _ := cmd.Flags().GetInt("keep")
		if keep <= 0 {
			return fmt.Errorf("--keep must be positive")
		}
		return withStore(cmd.Context(), func(ctx context.Context, store *statestore.Store) error {
			removed, err := store.Prune(ctx, keep)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %d snapshots\n", removed)
			return nil
		})
	},
}

var stateVerifyCmd = &cobra.Command{
	Use:   "verify [seq]",
	Short: "Check that a snapshot rebuilds into a consistent ledger",
	Long: `Rebuild the ledger from a snapshot, which re-checks the ranking against
the stakes, and confirm that exporting it again yields the same snapshot.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd.Context(), func(ctx context.Context, store *statestore.Store) error {
			snap, err := loadSnapshot(ctx, store, args)
			if err != nil {
				return err
			}
			if err := verifySnapshot(snap); err != nil {
				return fmt.Errorf("snapshot %d: %w", snap.Seq, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "snapshot %d ok\n", snap.Seq)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(stateCmd)
	stateCmd.AddCommand(stateListCmd, stateShowCmd, statePruneCmd, stateVerifyCmd)
	statePruneCmd.Flags().Int("keep", 16, "snapshots to keep")
}

// withStore opens the configured snapshot store for the duration of fn.
func withStore(ctx context.Context, fn func(ctx context.Context, store *statestore.Store) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	mgr, err := storage.OpenManager(cfg.Storage.Backend, cfg.StoragePath())
	if err != nil {
		return err
	}
	defer mgr.Close()

	db, err := mgr.OpenDB(di.StateNamespace)
	if err != nil {
		return err
	}
	store, err := statestore.New(db, statestore.Config{
		Compression: cfg.Storage.Compression,
		CacheSize:   cfg.Storage.CacheSize,
		Logger:      newLogger(cfg),
	})
	if err != nil {
		return err
	}
	return fn(ctx, store)
}

func loadSnapshot(ctx context.Context, store *statestore.Store, args []string) (*ledger.Snapshot, error) {
	if len(args) == 0 {
		return store.Latest(ctx)
	}
	seq, err := strconv.ParseUint(args[0], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid sequence: %w", err)
	}
	return store.Load(ctx, seq)
}

func verifySnapshot(snap *ledger.Snapshot) error {
	st, err := snap.State()
	if err != nil {
		return err
	}
	again := ledger.Export(st)
	if !reflect.DeepEqual(normalize(snap), normalize(again)) {
		return fmt.Errorf("re-exported snapshot differs")
	}
	return nil
}

// normalize maps empty slices to nil so codec round trips compare equal.
func normalize(s *ledger.Snapshot) ledger.Snapshot {
	out := *s
	if len(out.Assets) == 0 {
		out.Assets = nil
	}
	if len(out.Agents) == 0 {
		out.Agents = nil
	}
	if len(out.Stakes) == 0 {
		out.Stakes = nil
	}
	if len(out.Ranking) == 0 {
		out.Ranking = nil
	}
	if len(out.Rewards) == 0 {
		out.Rewards = nil
	}
	return out
}
