// Package config loads mixrd's configuration and genesis files.
package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/LeJamon/goMIXR/internal/core/address"
	"github.com/LeJamon/goMIXR/internal/core/amount"
	"github.com/LeJamon/goMIXR/internal/core/fixed"
	"github.com/LeJamon/goMIXR/internal/core/ledger"
	"github.com/LeJamon/goMIXR/internal/storage/journal"
)

// Config represents the complete mixrd configuration
type Config struct {
	DataDir string `toml:"data_dir" mapstructure:"data_dir"`

	// GenesisFile is a YAML file with the initial assets and BILD balances.
	// Empty starts from an empty basket.
	GenesisFile string `toml:"genesis_file" mapstructure:"genesis_file"`

	Basket     BasketConfig     `toml:"basket" mapstructure:"basket"`
	Fees       FeesConfig       `toml:"fees" mapstructure:"fees"`
	Staking    StakingConfig    `toml:"staking" mapstructure:"staking"`
	Payout     PayoutConfig     `toml:"payout" mapstructure:"payout"`
	Governance GovernanceConfig `toml:"governance" mapstructure:"governance"`
	Storage    StorageConfig    `toml:"storage" mapstructure:"storage"`
	Journal    JournalConfig    `toml:"journal" mapstructure:"journal"`
	Server     ServerConfig     `toml:"server" mapstructure:"server"`
	Log        LogConfig        `toml:"log" mapstructure:"log"`

	configPath string `toml:"-" mapstructure:"-"`
}

type BasketConfig struct {
	// Decimals is the MIXR accounting precision.
	Decimals uint8 `toml:"decimals" mapstructure:"decimals"`
}

// FeesConfig holds decimal fractions, e.g. "0.001" for 0.1%.
type FeesConfig struct {
	Minimum          string `toml:"minimum" mapstructure:"minimum"`
	DeviationCeiling string `toml:"deviation_ceiling" mapstructure:"deviation_ceiling"`
}

type StakingConfig struct {
	// MinimumNomination is in BILD base units.
	MinimumNomination string `toml:"minimum_nomination" mapstructure:"minimum_nomination"`
}

type PayoutConfig struct {
	RewardCeiling int `toml:"reward_ceiling" mapstructure:"reward_ceiling"`

	// Schedule is a cron expression for automatic payout cycles. Empty
	// disables the scheduler.
	Schedule string `toml:"schedule" mapstructure:"schedule"`

	// Operator is the address payout cycles are run as.
	Operator string `toml:"operator" mapstructure:"operator"`
}

// GovernanceConfig lists the addresses holding each whitelist role.
type GovernanceConfig struct {
	Owners       []string `toml:"owners" mapstructure:"owners"`
	Governors    []string `toml:"governors" mapstructure:"governors"`
	Stakeholders []string `toml:"stakeholders" mapstructure:"stakeholders"`
}

type StorageConfig struct {
	// Backend is pebble, leveldb, bbolt or memory.
	Backend     string `toml:"backend" mapstructure:"backend"`
	Path        string `toml:"path" mapstructure:"path"`
	Compression string `toml:"compression" mapstructure:"compression"`
	CacheSize   int    `toml:"cache_size" mapstructure:"cache_size"`

	// KeepSnapshots bounds how many snapshots survive pruning.
	KeepSnapshots int `toml:"keep_snapshots" mapstructure:"keep_snapshots"`
}

type JournalConfig struct {
	Enabled        bool          `toml:"enabled" mapstructure:"enabled"`
	Driver         string        `toml:"driver" mapstructure:"driver"`
	DSN            string        `toml:"dsn" mapstructure:"dsn"`
	MaxOpenConns   int           `toml:"max_open_conns" mapstructure:"max_open_conns"`
	DefaultTimeout time.Duration `toml:"default_timeout" mapstructure:"default_timeout"`
}

type ServerConfig struct {
	Listen          string        `toml:"listen" mapstructure:"listen"`
	ReadTimeout     time.Duration `toml:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `toml:"write_timeout" mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `toml:"shutdown_timeout" mapstructure:"shutdown_timeout"`
	Metrics         bool          `toml:"metrics" mapstructure:"metrics"`
}

type LogConfig struct {
	Verbose bool `toml:"verbose" mapstructure:"verbose"`
	NoColor bool `toml:"no_color" mapstructure:"no_color"`
}

// GetConfigPath returns the file the configuration was read from, if any.
func (c *Config) GetConfigPath() string {
	return c.configPath
}

// StoragePath resolves the storage directory against DataDir.
func (c *Config) StoragePath() string {
	if filepath.IsAbs(c.Storage.Path) {
		return c.Storage.Path
	}
	return filepath.Join(c.DataDir, c.Storage.Path)
}

// LedgerParams converts the parameter sections into genesis values.
func (c *Config) LedgerParams() (ledger.Params, error) {
	minFee, err := fixed.Parse(c.Fees.Minimum)
	if err != nil {
		return ledger.Params{}, fmt.Errorf("fees.minimum: %w", err)
	}
	ceiling, err := fixed.Parse(c.Fees.DeviationCeiling)
	if err != nil {
		return ledger.Params{}, fmt.Errorf("fees.deviation_ceiling: %w", err)
	}
	minNom, err := amount.Parse(c.Staking.MinimumNomination)
	if err != nil {
		return ledger.Params{}, fmt.Errorf("staking.minimum_nomination: %w", err)
	}
	return ledger.Params{
		Decimals:               c.Basket.Decimals,
		MinimumFee:             minFee,
		DeviationCeiling:       ceiling,
		MinimumNominationStake: minNom,
		RewardCeiling:          c.Payout.RewardCeiling,
	}, nil
}

// Whitelist builds the authorizer from the governance section.
func (c *Config) Whitelist() (*ledger.Whitelist, error) {
	w := ledger.NewWhitelist()
	grants := []struct {
		key   string
		role  ledger.Role
		addrs []string
	}{
		{"governance.owners", ledger.RoleOwner, c.Governance.Owners},
		{"governance.governors", ledger.RoleGovernor, c.Governance.Governors},
		{"governance.stakeholders", ledger.RoleStakeholder, c.Governance.Stakeholders},
	}
	for _, g := range grants {
		for _, s := range g.addrs {
			a, err := address.Parse(s)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", g.key, err)
			}
			w.Grant(a, g.role)
		}
	}
	return w, nil
}

// PayoutOperator returns the address scheduled payouts run as.
func (c *Config) PayoutOperator() (address.Address, error) {
	if c.Payout.Operator == "" {
		return address.Zero, nil
	}
	return address.Parse(c.Payout.Operator)
}

// JournalConfig converts the journal section, resolving a relative sqlite
// path against DataDir.
func (c *Config) JournalConfig() journal.Config {
	cfg := journal.Config{
		Driver:         c.Journal.Driver,
		DSN:            c.Journal.DSN,
		MaxOpenConns:   c.Journal.MaxOpenConns,
		DefaultTimeout: c.Journal.DefaultTimeout,
	}
	if (cfg.Driver == journal.DriverSQLite || cfg.Driver == "sqlite3") && !filepath.IsAbs(cfg.DSN) {
		cfg.DSN = filepath.Join(c.DataDir, cfg.DSN)
	}
	return cfg
}
