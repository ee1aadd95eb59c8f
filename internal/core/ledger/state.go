// Package ledger ties the basket, the staking ledger and the payout engine
// into one state that changes only through atomic operations.
package ledger

import (
	"github.com/LeJamon/goMIXR/internal/core/address"
	"github.com/LeJamon/goMIXR/internal/core/amount"
	"github.com/LeJamon/goMIXR/internal/core/basket"
	"github.com/LeJamon/goMIXR/internal/core/fixed"
	"github.com/LeJamon/goMIXR/internal/core/payout"
	"github.com/LeJamon/goMIXR/internal/core/staking"
)

// Params are the genesis values of the governance-settable parameters.
type Params struct {
	Decimals               uint8
	MinimumFee             fixed.Fixed
	DeviationCeiling       fixed.Fixed
	MinimumNominationStake amount.Amount
	RewardCeiling          int
}

// DefaultParams returns 18 accounting decimals, a 0.1% minimum fee, no
// deviation ceiling below the curve's own wall, and a top-10 reward set.
func DefaultParams() Params {
	return Params{
		Decimals:               18,
		MinimumFee:             fixed.MustParse("0.001"),
		DeviationCeiling:       fixed.One(),
		MinimumNominationStake: amount.MustParse("1000000000000000000000"),
		RewardCeiling:          payout.DefaultRewardCeiling,
	}
}

// GenesisAsset is an asset registered at genesis with its initial target.
type GenesisAsset struct {
	Asset  basket.Asset
	Target fixed.Fixed
}

// State is the whole ledger. It is owned by an Engine and only mutated on a
// clone inside an operation.
type State struct {
	Seq uint64

	Basket  *basket.Basket
	Staking *staking.Ledger

	// FeePool is MIXR collected as fees and not yet paid out.
	FeePool amount.Amount

	// Rewards is MIXR credited to backers by payouts and not yet claimed.
	Rewards map[address.Address]amount.Amount

	RewardCeiling int
}

// NewState returns an empty state.
func NewState(p Params) *State {
	return &State{
		Basket: basket.New(p.Decimals, basket.FeeParameters{
			MinimumFee:       p.MinimumFee,
			DeviationCeiling: p.DeviationCeiling,
		}),
		Staking:       staking.NewLedger(p.MinimumNominationStake),
		FeePool:       amount.Zero(),
		Rewards:       make(map[address.Address]amount.Amount),
		RewardCeiling: p.RewardCeiling,
	}
}

// Genesis builds the initial state, registering assets in order. When
// targets are given for every asset they replace the registration defaults.
func Genesis(p Params, assets []GenesisAsset) (*State, error) {
	if p.RewardCeiling <= 0 {
		return nil, ErrInvalidCeiling
	}
	st := NewState(p)
	addrs := make([]address.Address, 0, len(assets))
	targets := make([]fixed.Fixed, 0, len(assets))
	for _, ga := range assets {
		if err := st.Basket.Register(ga.Asset); err != nil {
			return nil, err
		}
		addrs = append(addrs, ga.Asset.Address)
		targets = append(targets, ga.Target)
	}
	if len(assets) > 0 {
		if err := st.Basket.SetTargetProportions(addrs, targets); err != nil {
			return nil, err
		}
	}
	return st, nil
}

// Clone returns a deep copy.
func (s *State) Clone() *State {
	c := &State{
		Seq:           s.Seq,
		Basket:        s.Basket.Clone(),
		Staking:       s.Staking.Clone(),
		FeePool:       s.FeePool,
		Rewards:       make(map[address.Address]amount.Amount, len(s.Rewards)),
		RewardCeiling: s.RewardCeiling,
	}
	for k, v := range s.Rewards {
		c.Rewards[k] = v
	}
	return c
}

// creditRewards books a payout report: backers are credited and the paid
// total leaves the fee pool.
func (s *State) creditRewards(r payout.Report) error {
	for _, c := range r.Credits() {
		sum, err := s.Rewards[c.Backer].Add(c.Amount)
		if err != nil {
			return err
		}
		s.Rewards[c.Backer] = sum
	}
	pool, err := s.FeePool.Sub(r.Paid)
	if err != nil {
		return err
	}
	s.FeePool = pool
	return nil
}

func (s *State) addFee(fee amount.Amount) error {
	pool, err := s.FeePool.Add(fee)
	if err != nil {
		return err
	}
	s.FeePool = pool
	return nil
}
