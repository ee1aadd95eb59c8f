package ledger

import (
	"github.com/LeJamon/goMIXR/internal/core/address"
	"github.com/LeJamon/goMIXR/internal/core/amount"
	"github.com/LeJamon/goMIXR/internal/core/basket"
	"github.com/LeJamon/goMIXR/internal/core/staking"
)

// Assets returns the basket's assets in registration order.
func (e *Engine) Assets() []basket.Asset { return e.state.Basket.Assets() }

// Asset returns one asset.
func (e *Engine) Asset(addr address.Address) (basket.Asset, error) {
	return e.state.Basket.Asset(addr)
}

// Supply returns the MIXR in circulation.
func (e *Engine) Supply() amount.Amount { return e.state.Basket.Supply() }

// FeePool returns the MIXR awaiting payout.
func (e *Engine) FeePool() amount.Amount { return e.state.FeePool }

// Rewards returns backer's unclaimed rewards.
func (e *Engine) Rewards(backer address.Address) amount.Amount { return e.state.Rewards[backer] }

// Params returns the current governance parameters.
func (e *Engine) Params() Params {
	fp := e.state.Basket.Params()
	return Params{
		Decimals:               e.state.Basket.Decimals(),
		MinimumFee:             fp.MinimumFee,
		DeviationCeiling:       fp.DeviationCeiling,
		MinimumNominationStake: e.state.Staking.MinimumNominationStake(),
		RewardCeiling:          e.state.RewardCeiling,
	}
}

// Agents returns every nominated agent.
func (e *Engine) Agents() []staking.Agent { return e.state.Staking.Agents() }

// Agent returns one agent.
func (e *Engine) Agent(addr address.Address) (staking.Agent, error) {
	return e.state.Staking.Agent(addr)
}

// Ranking returns the ranked agents, highest first.
func (e *Engine) Ranking() []staking.RankEntry { return e.state.Staking.Ranking().Entries() }

// StakesOf returns the stakes on agent.
func (e *Engine) StakesOf(agent address.Address) []staking.Stake {
	return e.state.Staking.StakesOf(agent)
}

// StakesBy returns the stakes placed by backer.
func (e *Engine) StakesBy(backer address.Address) []staking.Stake {
	return e.state.Staking.StakesBy(backer)
}

// AggregateAgentStakes sums the stakes on agent.
func (e *Engine) AggregateAgentStakes(agent address.Address) (amount.Amount, error) {
	return e.state.Staking.AggregateAgentStakes(agent)
}

// AggregateBackerStakes sums the stakes placed by backer.
func (e *Engine) AggregateBackerStakes(backer address.Address) (amount.Amount, error) {
	return e.state.Staking.AggregateBackerStakes(backer)
}
