// Package payout splits the accumulated MIXR fee pool across the top-ranked
// agents and, within each agent, across its backers.
//
// Every split rounds down. Whatever the floors leave behind is reported as
// residue and stays in the pool for the next cycle.
package payout

import (
	"github.com/LeJamon/goMIXR/internal/core/address"
	"github.com/LeJamon/goMIXR/internal/core/amount"
	"github.com/LeJamon/goMIXR/internal/core/failure"
	"github.com/LeJamon/goMIXR/internal/core/staking"
)

// DefaultRewardCeiling is the largest reward set used when governance has not
// set one.
const DefaultRewardCeiling = 10

var (
	ErrDivideByZero    = amount.ErrDivideByZero
	ErrInvalidCeiling  = failure.PolicyViolation("reward ceiling must be positive")
	ErrPaidExceedsPool = failure.StateInvariant("payout exceeds the fee pool")
)

// Stakes is the read-only view of the staking ledger a payout needs.
type Stakes interface {
	Ranking() *staking.Ranking
	StakesOf(agent address.Address) []staking.Stake
	AggregateAgentStakes(agent address.Address) (amount.Amount, error)
}

// Credit is an amount owed to one backer through one agent.
type Credit struct {
	Agent  address.Address `json:"agent"`
	Backer address.Address `json:"backer"`
	Amount amount.Amount   `json:"amount"`
}

// AgentPayout is one agent's slice of a cycle.
type AgentPayout struct {
	Agent address.Address `json:"agent"`
	// Stake is the aggregate stake the agent was weighted by.
	Stake amount.Amount `json:"stake"`
	// Share is what the agent was allotted before the backer split.
	Share   amount.Amount `json:"share"`
	Paid    amount.Amount `json:"paid"`
	Credits []Credit      `json:"credits"`
}

// Report describes a completed payout cycle.
type Report struct {
	Pool     amount.Amount `json:"pool"`
	R        int           `json:"r"`
	TopStake amount.Amount `json:"top_stake"`
	Agents   []AgentPayout `json:"agents"`
	Paid     amount.Amount `json:"paid"`
	Residue  amount.Amount `json:"residue"`
}

// Credits flattens every backer credit in rank order.
func (r Report) Credits() []Credit {
	var out []Credit
	for _, a := range r.Agents {
		out = append(out, a.Credits...)
	}
	return out
}

// CalculateR returns the size of the reward set: every ranked agent up to the
// ceiling.
func CalculateR(totalRanked, ceiling int) int {
	if totalRanked < 0 {
		return 0
	}
	return min(totalRanked, ceiling)
}

// StakePayout returns floor(total * backerStake / agentAggregate).
func StakePayout(total, agentAggregate, backerStake amount.Amount) (amount.Amount, error) {
	if agentAggregate.IsZero() {
		return amount.Zero(), ErrDivideByZero
	}
	return amount.MulDiv(total, backerStake, agentAggregate)
}

// PayFeesForAgent splits pool across agent's backers by stake. The returned
// Paid never exceeds pool; the difference is residue.
func PayFeesForAgent(src Stakes, pool amount.Amount, agent address.Address) (AgentPayout, error) {
	agg, err := src.AggregateAgentStakes(agent)
	if err != nil {
		return AgentPayout{}, err
	}
	out := AgentPayout{Agent: agent, Stake: agg, Share: pool, Paid: amount.Zero()}
	if agg.IsZero() || pool.IsZero() {
		return out, nil
	}
	for _, s := range src.StakesOf(agent) {
		share, err := StakePayout(pool, agg, s.Amount)
		if err != nil {
			return AgentPayout{}, err
		}
		if share.IsZero() {
			continue
		}
		out.Credits = append(out.Credits, Credit{Agent: agent, Backer: s.Backer, Amount: share})
		if out.Paid, err = out.Paid.Add(share); err != nil {
			return AgentPayout{}, err
		}
	}
	if out.Paid.GreaterThan(pool) {
		return AgentPayout{}, ErrPaidExceedsPool
	}
	return out, nil
}

// PayoutFees splits pool across the top R agents, weighted by each agent's
// stake over the total stake of the top R only, then across each agent's
// backers. Agents ranked below R receive nothing this cycle.
func PayoutFees(src Stakes, pool amount.Amount, ceiling int) (Report, error) {
	if ceiling <= 0 {
		return Report{}, ErrInvalidCeiling
	}
	ranking := src.Ranking()
	r := CalculateR(ranking.Len(), ceiling)
	top := ranking.Top(r)

	report := Report{Pool: pool, R: r, TopStake: amount.Zero(), Paid: amount.Zero(), Residue: pool}
	for _, e := range top {
		var err error
		if report.TopStake, err = report.TopStake.Add(e.Value); err != nil {
			return Report{}, err
		}
	}
	if report.TopStake.IsZero() || pool.IsZero() {
		return report, nil
	}

	for _, e := range top {
		share, err := StakePayout(pool, report.TopStake, e.Value)
		if err != nil {
			return Report{}, err
		}
		ap, err := PayFeesForAgent(src, share, e.Agent)
		if err != nil {
			return Report{}, err
		}
		report.Agents = append(report.Agents, ap)
		if report.Paid, err = report.Paid.Add(ap.Paid); err != nil {
			return Report{}, err
		}
	}
	if report.Paid.GreaterThan(pool) {
		return Report{}, ErrPaidExceedsPool
	}
	residue, err := pool.Sub(report.Paid)
	if err != nil {
		return Report{}, err
	}
	report.Residue = residue
	return report, nil
}
