package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/LeJamon/goMIXR/internal/config"
	"github.com/LeJamon/goMIXR/internal/logger"
)

var (
	// Global flags
	configFile string
	envFile    string
	verbose    bool
	noColor    bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "mixrd",
	Short: "mixrd - MIXR basket and staking ledger",
	Long: `mixrd runs the MIXR ledger: a basket of stablecoins priced by a
deviation-driven fee curve, and a BILD staking ledger that pays the
collected fees out to the top-ranked agents and their backers.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "conf", "", "configuration file path (default mixrd.toml if present)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env", ".env", "dotenv file loaded before MIXRD_ variables")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored log output")
}

// loadConfig reads the configuration named by the global flags. Without
// --conf, mixrd.toml is used when it exists.
func loadConfig() (*config.Config, error) {
	paths := config.ConfigPaths{Main: configFile, Env: envFile}
	if paths.Main == "" {
		if _, err := os.Stat(config.DefaultConfigPaths().Main); err == nil {
			paths.Main = config.DefaultConfigPaths().Main
		}
	}
	cfg, err := config.LoadConfig(paths)
	if err != nil {
		return nil, err
	}
	if verbose {
		cfg.Log.Verbose = true
	}
	if noColor {
		cfg.Log.NoColor = true
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) *slog.Logger {
	return logger.NewWithWriter(os.Stderr, cfg.Log.Verbose, cfg.Log.NoColor)
}
