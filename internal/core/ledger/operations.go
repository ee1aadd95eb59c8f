package ledger

import (
	"fmt"

	"github.com/LeJamon/goMIXR/internal/core/address"
	"github.com/LeJamon/goMIXR/internal/core/amount"
	"github.com/LeJamon/goMIXR/internal/core/basket"
	"github.com/LeJamon/goMIXR/internal/core/fixed"
	"github.com/LeJamon/goMIXR/internal/core/payout"
	"github.com/LeJamon/goMIXR/internal/core/staking"
)

func ptr[T any](v T) *T { return &v }

// RegisterAsset adds an asset to the basket.
func (e *Engine) RegisterAsset(caller address.Address, a basket.Asset) (Event, error) {
	ev := Event{Caller: caller, Asset: ptr(a.Address), Detail: a.Symbol}
	return e.apply(OpRegisterAsset, a.Address.String(), ActionRegisterAsset, ev, func(st *State, _ *Event) error {
		return st.Basket.Register(a)
	})
}

// SetTargetProportions replaces every target proportion at once.
func (e *Engine) SetTargetProportions(caller address.Address, assets []address.Address, proportions []fixed.Fixed) (Event, error) {
	ev := Event{Caller: caller, Detail: fmt.Sprintf("%d assets", len(assets))}
	return e.apply(OpSetTargetProportions, "", ActionSetTargetProportions, ev, func(st *State, _ *Event) error {
		return st.Basket.SetTargetProportions(assets, proportions)
	})
}

// SetBaseFee sets an asset's base fee for one direction.
func (e *Engine) SetBaseFee(caller, asset address.Address, dir basket.Direction, fee fixed.Fixed) (Event, error) {
	ev := Event{Caller: caller, Asset: ptr(asset), Detail: fmt.Sprintf("%s=%s", dir, fee)}
	return e.apply(OpSetBaseFee, asset.String(), ActionSetBaseFee, ev, func(st *State, _ *Event) error {
		return st.Basket.SetBaseFee(asset, dir, fee)
	})
}

// SetMinimumFee sets the global fee floor.
func (e *Engine) SetMinimumFee(caller address.Address, fee fixed.Fixed) (Event, error) {
	ev := Event{Caller: caller, Detail: fee.String()}
	return e.apply(OpSetMinimumFee, "", ActionSetMinimumFee, ev, func(st *State, _ *Event) error {
		return st.Basket.SetMinimumFee(fee)
	})
}

// SetDeviationCeiling sets the adverse deviation at which transactions are
// rejected.
func (e *Engine) SetDeviationCeiling(caller address.Address, ceiling fixed.Fixed) (Event, error) {
	ev := Event{Caller: caller, Detail: ceiling.String()}
	return e.apply(OpSetDeviationCeiling, "", ActionSetDeviationCeiling, ev, func(st *State, _ *Event) error {
		return st.Basket.SetDeviationCeiling(ceiling)
	})
}

// SetMinimumNominationStake sets the stake a first-time agent needs.
func (e *Engine) SetMinimumNominationStake(caller address.Address, v amount.Amount) (Event, error) {
	ev := Event{Caller: caller, Amount: ptr(v)}
	return e.apply(OpSetMinimumNomination, "", ActionSetMinimumNomination, ev, func(st *State, _ *Event) error {
		st.Staking.SetMinimumNominationStake(v)
		return nil
	})
}

// SetRewardCeiling sets R_max, the largest reward set.
func (e *Engine) SetRewardCeiling(caller address.Address, ceiling int) (Event, error) {
	ev := Event{Caller: caller, Detail: fmt.Sprintf("%d", ceiling)}
	return e.apply(OpSetRewardCeiling, "", ActionSetRewardCeiling, ev, func(st *State, _ *Event) error {
		if ceiling <= 0 {
			return ErrInvalidCeiling
		}
		st.RewardCeiling = ceiling
		return nil
	})
}

// Deposit adds native units of an asset to the basket. The caller is owed
// the receipt's Net in MIXR; the fee joins the fee pool.
func (e *Engine) Deposit(caller, asset address.Address, native amount.Amount) (basket.Receipt, error) {
	ev := Event{Caller: caller, Asset: ptr(asset), Amount: ptr(native)}
	committed, err := e.apply(OpDeposit, asset.String(), "", ev, func(st *State, ev *Event) error {
		r, err := st.Basket.Deposit(asset, native)
		if err != nil {
			return err
		}
		ev.Receipt = &r
		return st.addFee(r.Fee)
	})
	if err != nil {
		return basket.Receipt{}, err
	}
	return *committed.Receipt, nil
}

// Redeem burns common MIXR units for an asset. The caller receives the
// receipt's Native amount; the fee joins the fee pool.
func (e *Engine) Redeem(caller, asset address.Address, common amount.Amount) (basket.Receipt, error) {
	ev := Event{Caller: caller, Asset: ptr(asset), Amount: ptr(common)}
	committed, err := e.apply(OpRedeem, asset.String(), "", ev, func(st *State, ev *Event) error {
		r, err := st.Basket.Redeem(asset, common)
		if err != nil {
			return err
		}
		ev.Receipt = &r
		return st.addFee(r.Fee)
	})
	if err != nil {
		return basket.Receipt{}, err
	}
	return *committed.Receipt, nil
}

// QuoteFee prices a prospective transaction without changing any state.
// amt is in common units.
func (e *Engine) QuoteFee(asset address.Address, amt amount.Amount, dir basket.Direction) (basket.Quote, error) {
	return e.state.Basket.QuoteFee(asset, amt, dir)
}

// CreateStake stakes caller's BILD on agent. nom is required the first time
// an agent is staked on.
func (e *Engine) CreateStake(caller, agent address.Address, amt amount.Amount, nom *staking.Nomination) (Event, error) {
	ev := Event{Caller: caller, Agent: ptr(agent), Amount: ptr(amt)}
	if nom != nil {
		ev.Detail = nom.Name
	}
	return e.apply(OpCreateStake, agent.String(), "", ev, func(st *State, _ *Event) error {
		return st.Staking.CreateStake(agent, caller, amt, nom, e.tokens)
	})
}

// RemoveStake withdraws part or all of caller's stake on agent.
func (e *Engine) RemoveStake(caller, agent address.Address, amt amount.Amount) (Event, error) {
	ev := Event{Caller: caller, Agent: ptr(agent), Amount: ptr(amt)}
	return e.apply(OpRemoveStake, agent.String(), "", ev, func(st *State, _ *Event) error {
		return st.Staking.RemoveStake(agent, caller, amt)
	})
}

// PayoutFees distributes the fee pool across the reward set. Rounding
// residue stays in the pool for the next cycle.
func (e *Engine) PayoutFees(caller address.Address) (payout.Report, error) {
	ev := Event{Caller: caller}
	committed, err := e.apply(OpPayoutFees, "", "", ev, func(st *State, ev *Event) error {
		report, err := payout.PayoutFees(st.Staking, st.FeePool, st.RewardCeiling)
		if err != nil {
			return err
		}
		ev.Payout = &report
		ev.Amount = ptr(report.Paid)
		return st.creditRewards(report)
	})
	if err != nil {
		return payout.Report{}, err
	}
	return *committed.Payout, nil
}

// ClaimRewards releases caller's accumulated rewards.
func (e *Engine) ClaimRewards(caller address.Address) (amount.Amount, error) {
	ev := Event{Caller: caller}
	committed, err := e.apply(OpClaimRewards, caller.String(), "", ev, func(st *State, ev *Event) error {
		owed := st.Rewards[caller]
		if owed.IsZero() {
			return ErrNothingToClaim
		}
		delete(st.Rewards, caller)
		ev.Amount = ptr(owed)
		return nil
	})
	if err != nil {
		return amount.Zero(), err
	}
	return *committed.Amount, nil
}
