// Package basket holds the MIXR reserve: registered assets, their target
// proportions, and the deviation-based fee curve that prices deposits and
// redemptions.
package basket

import (
	"github.com/LeJamon/goMIXR/internal/core/address"
	"github.com/LeJamon/goMIXR/internal/core/amount"
	"github.com/LeJamon/goMIXR/internal/core/fixed"
)

// FeeParameters are the governance-set bounds of the fee curve.
type FeeParameters struct {
	// MinimumFee is the floor applied to every non-zero transaction.
	MinimumFee fixed.Fixed

	// DeviationCeiling is the adverse deviation at which transactions are
	// rejected. It lies in (0, 1].
	DeviationCeiling fixed.Fixed
}

// Basket owns the asset records and the MIXR supply.
type Basket struct {
	decimals uint8
	params   FeeParameters
	supply   amount.Amount
	assets   map[address.Address]*Asset
	order    []address.Address
}

// New creates an empty basket accounting in the given decimals.
func New(decimals uint8, params FeeParameters) *Basket {
	return &Basket{
		decimals: decimals,
		params:   params,
		assets:   make(map[address.Address]*Asset),
	}
}

// Restore rebuilds a basket from persisted records. Assets keep their order.
func Restore(decimals uint8, params FeeParameters, supply amount.Amount, assets []Asset) *Basket {
	b := New(decimals, params)
	b.supply = supply
	for i := range assets {
		a := assets[i]
		b.assets[a.Address] = &a
		b.order = append(b.order, a.Address)
	}
	return b
}

// Clone returns a deep copy.
func (b *Basket) Clone() *Basket {
	return Restore(b.decimals, b.params, b.supply, b.Assets())
}

// Decimals returns the accounting decimals of MIXR.
func (b *Basket) Decimals() uint8 { return b.decimals }

// Params returns the current fee parameters.
func (b *Basket) Params() FeeParameters { return b.params }

// Supply returns the MIXR in circulation, including the undistributed fee pool.
func (b *Basket) Supply() amount.Amount { return b.supply }

// Assets returns copies of all assets in registration order.
func (b *Basket) Assets() []Asset {
	out := make([]Asset, 0, len(b.order))
	for _, addr := range b.order {
		out = append(out, *b.assets[addr])
	}
	return out
}

// Asset returns a copy of one asset record.
func (b *Basket) Asset(addr address.Address) (Asset, error) {
	a, ok := b.assets[addr]
	if !ok {
		return Asset{}, ErrAssetNotFound
	}
	return *a, nil
}

func (b *Basket) asset(addr address.Address) (*Asset, error) {
	a, ok := b.assets[addr]
	if !ok {
		return nil, ErrAssetNotFound
	}
	return a, nil
}

// Register adds an asset. The first asset receives a target of one and later
// assets a target of zero, so the targets keep summing to one until governance
// rebalances them.
func (b *Basket) Register(a Asset) error {
	if _, ok := b.assets[a.Address]; ok {
		return ErrAssetAlreadyRegistered
	}
	if a.Decimals > MaxDecimals {
		return ErrInvalidDecimals
	}
	for _, fee := range []fixed.Fixed{a.DepositFee, a.RedemptionFee} {
		if err := b.checkBaseFee(fee); err != nil {
			return err
		}
	}
	a.Balance = amount.Zero()
	if len(b.order) == 0 {
		a.Target = fixed.One()
	} else {
		a.Target = fixed.Zero()
	}
	b.assets[a.Address] = &a
	b.order = append(b.order, a.Address)
	return nil
}

// SetTargetProportions replaces every target at once. The call names each
// registered asset exactly once and the proportions sum to exactly one;
// otherwise nothing changes.
func (b *Basket) SetTargetProportions(assets []address.Address, proportions []fixed.Fixed) error {
	if len(assets) != len(proportions) || len(assets) != len(b.order) {
		return ErrProportionAssets
	}
	seen := make(map[address.Address]bool, len(assets))
	sum := fixed.Zero()
	for i, addr := range assets {
		if _, ok := b.assets[addr]; !ok || seen[addr] {
			return ErrProportionAssets
		}
		seen[addr] = true
		p := proportions[i]
		if p.Sign() < 0 || p.GreaterThan(fixed.One()) {
			return ErrProportionRange
		}
		var err error
		if sum, err = fixed.Add(sum, p); err != nil {
			return err
		}
	}
	if !sum.Equal(fixed.One()) {
		return ErrProportionSum
	}
	for i, addr := range assets {
		b.assets[addr].Target = proportions[i]
	}
	return nil
}

// SetBaseFee sets the base fee of one asset for one direction.
func (b *Basket) SetBaseFee(addr address.Address, dir Direction, fee fixed.Fixed) error {
	a, err := b.asset(addr)
	if err != nil {
		return err
	}
	if err := b.checkBaseFee(fee); err != nil {
		return err
	}
	a.setBaseFee(dir, fee)
	return nil
}

func (b *Basket) checkBaseFee(fee fixed.Fixed) error {
	if fee.LessThan(b.params.MinimumFee) || fee.GreaterThan(fixed.One()) {
		return ErrFeeOutOfRange
	}
	return nil
}

// SetMinimumFee sets the global floor. It may not exceed any base fee.
func (b *Basket) SetMinimumFee(fee fixed.Fixed) error {
	if fee.Sign() < 0 || fee.GreaterThan(fixed.One()) {
		return ErrFeeOutOfRange
	}
	for _, a := range b.assets {
		if a.DepositFee.LessThan(fee) || a.RedemptionFee.LessThan(fee) {
			return ErrFeeOutOfRange
		}
	}
	b.params.MinimumFee = fee
	return nil
}

// SetDeviationCeiling sets the adverse deviation at which the curve saturates.
func (b *Basket) SetDeviationCeiling(ceiling fixed.Fixed) error {
	if ceiling.Sign() <= 0 || ceiling.GreaterThan(fixed.One()) {
		return ErrCeilingOutOfRange
	}
	b.params.DeviationCeiling = ceiling
	return nil
}

// Snapshot captures balances in common units for one pricing decision.
func (b *Basket) Snapshot() (*Snapshot, error) {
	s := &Snapshot{
		balances: make(map[address.Address]amount.Amount, len(b.order)),
		targets:  make(map[address.Address]fixed.Fixed, len(b.order)),
		total:    amount.Zero(),
	}
	for _, addr := range b.order {
		a := b.assets[addr]
		common, err := a.ToCommon(a.Balance, b.decimals)
		if err != nil {
			return nil, err
		}
		s.balances[addr] = common
		s.targets[addr] = a.Target
		if s.total, err = s.total.Add(common); err != nil {
			return nil, err
		}
	}
	return s, nil
}
