package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LeJamon/goMIXR/internal/core/address"
	"github.com/LeJamon/goMIXR/internal/core/amount"
	"github.com/LeJamon/goMIXR/internal/core/fixed"
	"github.com/LeJamon/goMIXR/internal/core/ledger"
)

const (
	ownerAddr    = "0x00000000000000000000000000000000000000f1"
	governorAddr = "0x00000000000000000000000000000000000000f2"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	config, err := LoadConfig(ConfigPaths{})
	require.NoError(t, err)

	p, err := config.LedgerParams()
	require.NoError(t, err)
	want := ledger.DefaultParams()
	assert.Equal(t, want.Decimals, p.Decimals)
	assert.True(t, want.MinimumFee.Equal(p.MinimumFee))
	assert.True(t, want.DeviationCeiling.Equal(p.DeviationCeiling))
	assert.True(t, want.MinimumNominationStake.Equal(p.MinimumNominationStake))
	assert.Equal(t, want.RewardCeiling, p.RewardCeiling)

	assert.Equal(t, "pebble", config.Storage.Backend)
	assert.Equal(t, filepath.Join("data", "state"), config.StoragePath())
	assert.Equal(t, 10*time.Second, config.Journal.DefaultTimeout)
	assert.Equal(t, filepath.Join("data", "journal.db"), config.JournalConfig().DSN)
}

func TestLoadConfigFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	main := writeFile(t, dir, "mixrd.toml", `
data_dir = "/var/lib/mixrd"

[fees]
minimum = "0.002"

[payout]
reward_ceiling = 5
schedule = "@hourly"
operator = "`+ownerAddr+`"

[governance]
owners = ["`+ownerAddr+`"]
governors = ["`+governorAddr+`"]

[storage]
backend = "bbolt"
`)
	env := writeFile(t, dir, ".env", "MIXRD_STORAGE_BACKEND=leveldb\n")
	t.Setenv("MIXRD_SERVER_LISTEN", "0.0.0.0:9000")

	config, err := LoadConfig(ConfigPaths{Main: main, Env: env})
	require.NoError(t, err)
	t.Cleanup(func() { os.Unsetenv("MIXRD_STORAGE_BACKEND") })

	assert.Equal(t, main, config.GetConfigPath())
	assert.Equal(t, "0.002", config.Fees.Minimum)
	assert.Equal(t, 5, config.Payout.RewardCeiling)
	assert.Equal(t, "leveldb", config.Storage.Backend, "environment overrides the file")
	assert.Equal(t, "0.0.0.0:9000", config.Server.Listen)
	assert.Equal(t, "/var/lib/mixrd/state", config.StoragePath())

	w, err := config.Whitelist()
	require.NoError(t, err)
	assert.True(t, w.HasRole(address.MustParse(ownerAddr), ledger.RoleOwner))
	assert.True(t, w.Authorized(address.MustParse(governorAddr), ledger.ActionSetBaseFee))
	assert.False(t, w.Authorized(address.MustParse(governorAddr), ledger.ActionRegisterAsset))

	op, err := config.PayoutOperator()
	require.NoError(t, err)
	assert.Equal(t, address.MustParse(ownerAddr), op)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(ConfigPaths{Main: filepath.Join(t.TempDir(), "absent.toml")})
	assert.Error(t, err)
}

func TestConfigValidation(t *testing.T) {
	valid := func() *Config {
		config, err := LoadConfig(ConfigPaths{})
		require.NoError(t, err)
		return config
	}

	tests := []struct {
		name   string
		mutate func(c *Config)
		want   error
	}{
		{"valid", func(c *Config) {}, nil},
		{"fee above one", func(c *Config) { c.Fees.Minimum = "1.5" }, ErrFeeRange},
		{"negative fee", func(c *Config) { c.Fees.Minimum = "-0.1" }, ErrFeeRange},
		{"zero ceiling", func(c *Config) { c.Fees.DeviationCeiling = "0" }, ErrCeilingRange},
		{"reward ceiling", func(c *Config) { c.Payout.RewardCeiling = 0 }, ErrRewardCeiling},
		{"decimals", func(c *Config) { c.Basket.Decimals = 40 }, ErrDecimals},
		{"backend", func(c *Config) { c.Storage.Backend = "rocksdb" }, ErrStorageBackend},
		{"keep", func(c *Config) { c.Storage.KeepSnapshots = 0 }, ErrKeepSnapshots},
		{"listen", func(c *Config) { c.Server.Listen = "" }, ErrListenAddress},
		{"schedule", func(c *Config) { c.Payout.Schedule = "every tuesday"; c.Payout.Operator = ownerAddr }, ErrPayoutSchedule},
		{"operator", func(c *Config) { c.Payout.Schedule = "@daily" }, ErrPayoutOperator},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := valid()
			tt.mutate(config)
			err := ValidateConfig(config)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}

	t.Run("unparseable fee", func(t *testing.T) {
		config := valid()
		config.Fees.Minimum = "a lot"
		assert.Error(t, ValidateConfig(config))
	})
	t.Run("bad governance address", func(t *testing.T) {
		config := valid()
		config.Governance.Owners = []string{"nobody"}
		assert.Error(t, ValidateConfig(config))
	})
}

func TestSaveExampleConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mixrd.yaml")
	require.NoError(t, SaveExampleConfig(path))

	config, err := LoadConfig(ConfigPaths{Main: path})
	require.NoError(t, err)
	assert.Equal(t, "genesis.yaml", config.GenesisFile)
	assert.Equal(t, "@daily", config.Payout.Schedule)
}

func TestGenesis(t *testing.T) {
	g, err := ParseGenesis([]byte(`
assets:
  - address: "0x00000000000000000000000000000000000000a1"
    symbol: XUSD
    decimals: 18
    target: "0.6"
    deposit_fee: "0.003"
    redemption_fee: "0.004"
  - address: "0x00000000000000000000000000000000000000b2"
    symbol: YUSD
    decimals: 6
    target: "0.4"
    deposit_fee: "0.003"
    redemption_fee: "0.003"
balances:
  "0x0000000000000000000000000000000000000071": "5000"
`))
	require.NoError(t, err)

	st, err := g.State(ledger.DefaultParams())
	require.NoError(t, err)
	x, err := st.Basket.Asset(address.MustParse("0x00000000000000000000000000000000000000a1"))
	require.NoError(t, err)
	assert.True(t, x.Target.Equal(fixed.MustParse("0.6")))
	assert.True(t, x.RedemptionFee.Equal(fixed.MustParse("0.004")))

	balances, err := g.LedgerBalances()
	require.NoError(t, err)
	assert.Equal(t, amount.New(5000), balances[address.MustParse("0x0000000000000000000000000000000000000071")])

	t.Run("targets must sum to one", func(t *testing.T) {
		g.Assets[1].Target = "0.3"
		_, err := g.State(ledger.DefaultParams())
		assert.Error(t, err)
	})

	t.Run("empty path", func(t *testing.T) {
		empty, err := LoadGenesis("")
		require.NoError(t, err)
		st, err := empty.State(ledger.DefaultParams())
		require.NoError(t, err)
		assert.Empty(t, st.Basket.Assets())
	})
}
