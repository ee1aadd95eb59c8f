package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/LeJamon/goMIXR/internal/core/address"
	"github.com/LeJamon/goMIXR/internal/core/amount"
	"github.com/LeJamon/goMIXR/internal/core/basket"
	"github.com/LeJamon/goMIXR/internal/core/fixed"
	"github.com/LeJamon/goMIXR/internal/core/ledger"
)

// Genesis is the YAML genesis file: the assets registered before the first
// operation and the BILD balances stakes are checked against.
type Genesis struct {
	Assets   []GenesisAsset    `yaml:"assets"`
	Balances map[string]string `yaml:"balances"`
}

type GenesisAsset struct {
	Address       string `yaml:"address"`
	Symbol        string `yaml:"symbol"`
	Decimals      uint8  `yaml:"decimals"`
	Target        string `yaml:"target"`
	DepositFee    string `yaml:"deposit_fee"`
	RedemptionFee string `yaml:"redemption_fee"`
}

// LoadGenesis reads a genesis file. An empty path yields an empty genesis.
func LoadGenesis(path string) (*Genesis, error) {
	if path == "" {
		return &Genesis{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read genesis file: %w", err)
	}
	return ParseGenesis(data)
}

func ParseGenesis(data []byte) (*Genesis, error) {
	var g Genesis
	if err := yaml.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("failed to parse genesis: %w", err)
	}
	return &g, nil
}

// LedgerAssets converts the asset list. A missing target counts as zero.
func (g *Genesis) LedgerAssets() ([]ledger.GenesisAsset, error) {
	out := make([]ledger.GenesisAsset, 0, len(g.Assets))
	for i, a := range g.Assets {
		addr, err := address.Parse(a.Address)
		if err != nil {
			return nil, fmt.Errorf("assets[%d].address: %w", i, err)
		}
		target := fixed.Zero()
		if a.Target != "" {
			if target, err = fixed.Parse(a.Target); err != nil {
				return nil, fmt.Errorf("assets[%d].target: %w", i, err)
			}
		}
		dep, err := fixed.Parse(a.DepositFee)
		if err != nil {
			return nil, fmt.Errorf("assets[%d].deposit_fee: %w", i, err)
		}
		red, err := fixed.Parse(a.RedemptionFee)
		if err != nil {
			return nil, fmt.Errorf("assets[%d].redemption_fee: %w", i, err)
		}
		out = append(out, ledger.GenesisAsset{
			Asset: basket.Asset{
				Address:       addr,
				Symbol:        a.Symbol,
				Decimals:      a.Decimals,
				DepositFee:    dep,
				RedemptionFee: red,
			},
			Target: target,
		})
	}
	return out, nil
}

// LedgerBalances converts the BILD balances.
func (g *Genesis) LedgerBalances() (map[address.Address]amount.Amount, error) {
	out := make(map[address.Address]amount.Amount, len(g.Balances))
	for k, v := range g.Balances {
		addr, err := address.Parse(k)
		if err != nil {
			return nil, fmt.Errorf("balances: %w", err)
		}
		bal, err := amount.Parse(v)
		if err != nil {
			return nil, fmt.Errorf("balances[%s]: %w", k, err)
		}
		out[addr] = bal
	}
	return out, nil
}

// State builds the genesis ledger state.
func (g *Genesis) State(p ledger.Params) (*ledger.State, error) {
	assets, err := g.LedgerAssets()
	if err != nil {
		return nil, err
	}
	return ledger.Genesis(p, assets)
}
