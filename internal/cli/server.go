package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/LeJamon/goMIXR/internal/metrics"
	"github.com/LeJamon/goMIXR/internal/node"
)

var listenAddr string

// serverCmd represents the server command (default action)
var serverCmd = &cobra.Command{
	Use:     "server",
	Aliases: []string{"serve"},
	Short:   "Start the mixrd daemon",
	Long: `Start the ledger daemon, which provides:
- JSON-RPC 2.0 on POST /
- a websocket stream of committed operations on /ws
- Prometheus metrics on /metrics
- a health check on /healthz

This is the default command when no subcommand is specified.`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(serverCmd)
	rootCmd.RunE = runServer

	serverCmd.Flags().StringVar(&listenAddr, "listen", "", "address to listen on (overrides server.listen)")
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if listenAddr != "" {
		cfg.Server.Listen = listenAddr
	}
	log := newLogger(cfg)
	metrics.BuildInfo.WithLabelValues(version, commit).Set(1)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	n, err := node.New(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := n.Close(); err != nil {
			log.Error("failed to close node", "error", err)
		}
	}()

	log.Info("starting mixrd", "version", version, "config", cfg.GetConfigPath(), "data_dir", cfg.DataDir, "backend", cfg.Storage.Backend)
	if err := n.Run(ctx); err != nil && err != context.Canceled {
		return err
	}
	return nil
}
