package config

import (
	"time"

	"github.com/spf13/viper"
)

// setDefaults mirrors ledger.DefaultParams plus the daemon settings.
func setDefaults(v *viper.Viper) {
	v.SetDefault("data_dir", "./data")
	v.SetDefault("genesis_file", "")

	v.SetDefault("basket.decimals", 18)

	v.SetDefault("fees.minimum", "0.001")
	v.SetDefault("fees.deviation_ceiling", "1")

	v.SetDefault("staking.minimum_nomination", "1000000000000000000000")

	v.SetDefault("payout.reward_ceiling", 10)
	v.SetDefault("payout.schedule", "")
	v.SetDefault("payout.operator", "")

	v.SetDefault("governance.owners", []string{})
	v.SetDefault("governance.governors", []string{})
	v.SetDefault("governance.stakeholders", []string{})

	v.SetDefault("storage.backend", "pebble")
	v.SetDefault("storage.path", "state")
	v.SetDefault("storage.compression", "lz4")
	v.SetDefault("storage.cache_size", 64)
	v.SetDefault("storage.keep_snapshots", 256)

	v.SetDefault("journal.enabled", true)
	v.SetDefault("journal.driver", "sqlite")
	v.SetDefault("journal.dsn", "journal.db")
	v.SetDefault("journal.max_open_conns", 1)
	v.SetDefault("journal.default_timeout", 10*time.Second)

	v.SetDefault("server.listen", "127.0.0.1:5050")
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 10*time.Second)
	v.SetDefault("server.shutdown_timeout", 5*time.Second)
	v.SetDefault("server.metrics", true)

	v.SetDefault("log.verbose", false)
	v.SetDefault("log.no_color", false)
}
