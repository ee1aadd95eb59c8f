// Package staking tracks BILD stakes placed by backers on agents and keeps the
// agents ranked by their aggregate stake.
package staking

import (
	"strings"

	"github.com/LeJamon/goMIXR/internal/core/address"
	"github.com/LeJamon/goMIXR/internal/core/amount"
)

// NotFound is returned by FindStake when no record exists.
const NotFound = -1

// Agent is a nominated beneficiary. Its record outlives its stakes so that a
// name is never reused.
type Agent struct {
	Address address.Address `json:"address"`
	Name    string          `json:"name"`
	Contact string          `json:"contact,omitempty"`
}

// Stake is one backer's position on one agent.
type Stake struct {
	Agent  address.Address `json:"agent"`
	Backer address.Address `json:"backer"`
	Amount amount.Amount   `json:"amount"`
}

// Nomination carries the identity of a first-time agent.
type Nomination struct {
	Name    string `json:"name"`
	Contact string `json:"contact,omitempty"`
}

// Balances reports a holder's total BILD, staked or not.
type Balances interface {
	BalanceOf(holder address.Address) amount.Amount
}

// Ledger holds agents, stakes and the ranking derived from them.
type Ledger struct {
	minNomination amount.Amount

	agents     map[address.Address]*Agent
	agentOrder []address.Address
	names      map[string]address.Address

	// stakes holds each agent's records in creation order.
	stakes map[address.Address][]Stake

	// backed lists, per backer, the agents it has a live stake on.
	backed map[address.Address][]address.Address

	ranking *Ranking
}

// NewLedger returns an empty ledger.
func NewLedger(minNomination amount.Amount) *Ledger {
	return &Ledger{
		minNomination: minNomination,
		agents:        make(map[address.Address]*Agent),
		names:         make(map[string]address.Address),
		stakes:        make(map[address.Address][]Stake),
		backed:        make(map[address.Address][]address.Address),
		ranking:       NewRanking(),
	}
}

// Restore rebuilds a ledger from persisted agents, stakes and ranking order.
// Stakes must be grouped in their per-agent creation order.
func Restore(minNomination amount.Amount, agents []Agent, stakes []Stake, ranking []RankEntry) (*Ledger, error) {
	l := NewLedger(minNomination)
	for _, a := range agents {
		if err := l.addAgent(a); err != nil {
			return nil, err
		}
	}
	for _, s := range stakes {
		if _, ok := l.agents[s.Agent]; !ok {
			return nil, ErrAgentNotFound
		}
		if s.Amount.IsZero() {
			return nil, ErrZeroStake
		}
		if l.FindStake(s.Agent, s.Backer) != NotFound {
			return nil, ErrDuplicateStake
		}
		l.stakes[s.Agent] = append(l.stakes[s.Agent], s)
		l.backed[s.Backer] = append(l.backed[s.Backer], s.Agent)
	}
	r, err := RestoreRanking(ranking)
	if err != nil {
		return nil, err
	}
	for _, e := range ranking {
		agg, err := l.AggregateAgentStakes(e.Agent)
		if err != nil {
			return nil, err
		}
		if !agg.Equal(e.Value) {
			return nil, ErrRankOrder
		}
	}
	if r.Len() != len(l.stakes) {
		return nil, ErrRankOrder
	}
	l.ranking = r
	return l, nil
}

// Clone returns an independent copy.
func (l *Ledger) Clone() *Ledger {
	c := NewLedger(l.minNomination)
	for _, addr := range l.agentOrder {
		a := *l.agents[addr]
		c.agents[addr] = &a
		c.names[nameKey(a.Name)] = addr
	}
	c.agentOrder = append(c.agentOrder, l.agentOrder...)
	for k, v := range l.stakes {
		c.stakes[k] = append([]Stake(nil), v...)
	}
	for k, v := range l.backed {
		c.backed[k] = append([]address.Address(nil), v...)
	}
	c.ranking = l.ranking.Clone()
	return c
}

// MinimumNominationStake returns the stake required to nominate an agent.
func (l *Ledger) MinimumNominationStake() amount.Amount { return l.minNomination }

// SetMinimumNominationStake changes the nomination threshold.
func (l *Ledger) SetMinimumNominationStake(v amount.Amount) { l.minNomination = v }

// Ranking exposes the agent ranking. Callers must not mutate it.
func (l *Ledger) Ranking() *Ranking { return l.ranking }

// Agent returns a copy of an agent record.
func (l *Ledger) Agent(addr address.Address) (Agent, error) {
	a, ok := l.agents[addr]
	if !ok {
		return Agent{}, ErrAgentNotFound
	}
	return *a, nil
}

// Agents returns every agent ever nominated, in nomination order.
func (l *Ledger) Agents() []Agent {
	out := make([]Agent, 0, len(l.agentOrder))
	for _, addr := range l.agentOrder {
		out = append(out, *l.agents[addr])
	}
	return out
}

func (l *Ledger) addAgent(a Agent) error {
	if _, ok := l.agents[a.Address]; ok {
		return ErrAgentExists
	}
	key := nameKey(a.Name)
	if key == "" {
		return ErrAgentNotFound
	}
	if _, ok := l.names[key]; ok {
		return ErrNameTaken
	}
	l.agents[a.Address] = &a
	l.agentOrder = append(l.agentOrder, a.Address)
	l.names[key] = a.Address
	return nil
}

// nameKey normalises a name for the uniqueness check.
func nameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// CreateStake places amt of backer's BILD on agent. A first stake on an
// unknown agent must carry a nomination with a unique name and at least the
// minimum nomination stake. An existing (agent, backer) record grows in place.
func (l *Ledger) CreateStake(agent, backer address.Address, amt amount.Amount, nom *Nomination, balances Balances) error {
	if amt.IsZero() {
		return ErrZeroStake
	}
	staked, err := l.AggregateBackerStakes(backer)
	if err != nil {
		return err
	}
	total := balances.BalanceOf(backer)
	if total.LessThan(staked) {
		return ErrInsufficientBalance
	}
	unstaked, err := total.Sub(staked)
	if err != nil {
		return err
	}
	if amt.GreaterThan(unstaked) {
		return ErrInsufficientBalance
	}

	if _, ok := l.agents[agent]; !ok {
		if nom == nil || nameKey(nom.Name) == "" {
			return ErrAgentNotFound
		}
		if amt.LessThan(l.minNomination) {
			return ErrNominationStakeTooLow
		}
		if err := l.addAgent(Agent{Address: agent, Name: strings.TrimSpace(nom.Name), Contact: nom.Contact}); err != nil {
			return err
		}
	}

	if i := l.FindStake(agent, backer); i != NotFound {
		sum, err := l.stakes[agent][i].Amount.Add(amt)
		if err != nil {
			return err
		}
		l.stakes[agent][i].Amount = sum
	} else {
		l.stakes[agent] = append(l.stakes[agent], Stake{Agent: agent, Backer: backer, Amount: amt})
		l.backed[backer] = append(l.backed[backer], agent)
	}
	return l.rerank(agent)
}

// RemoveStake takes amt back from backer's stake on agent. A stake reduced to
// zero is deleted; an agent left with no stake drops out of the ranking.
func (l *Ledger) RemoveStake(agent, backer address.Address, amt amount.Amount) error {
	i := l.FindStake(agent, backer)
	if i == NotFound {
		return ErrNoStakeFound
	}
	if amt.IsZero() {
		return ErrZeroStake
	}
	current := l.stakes[agent][i].Amount
	if amt.GreaterThan(current) {
		return ErrInsufficientStake
	}
	rest, err := current.Sub(amt)
	if err != nil {
		return err
	}
	if rest.IsZero() {
		l.stakes[agent] = append(l.stakes[agent][:i:i], l.stakes[agent][i+1:]...)
		if len(l.stakes[agent]) == 0 {
			delete(l.stakes, agent)
		}
		l.unback(backer, agent)
	} else {
		l.stakes[agent][i].Amount = rest
	}
	return l.rerank(agent)
}

func (l *Ledger) unback(backer, agent address.Address) {
	list := l.backed[backer]
	for i, a := range list {
		if a == agent {
			list = append(list[:i:i], list[i+1:]...)
			break
		}
	}
	if len(list) == 0 {
		delete(l.backed, backer)
		return
	}
	l.backed[backer] = list
}

func (l *Ledger) rerank(agent address.Address) error {
	agg, err := l.AggregateAgentStakes(agent)
	if err != nil {
		return err
	}
	return l.ranking.Reposition(agent, agg)
}

// AggregateAgentStakes sums every stake on agent.
func (l *Ledger) AggregateAgentStakes(agent address.Address) (amount.Amount, error) {
	if _, ok := l.agents[agent]; !ok {
		return amount.Zero(), ErrAgentNotFound
	}
	sum := amount.Zero()
	for _, s := range l.stakes[agent] {
		var err error
		if sum, err = sum.Add(s.Amount); err != nil {
			return amount.Zero(), err
		}
	}
	return sum, nil
}

// AggregateBackerStakes sums every stake placed by backer. An unknown backer
// has zero staked.
func (l *Ledger) AggregateBackerStakes(backer address.Address) (amount.Amount, error) {
	sum := amount.Zero()
	for _, s := range l.StakesBy(backer) {
		var err error
		if sum, err = sum.Add(s.Amount); err != nil {
			return amount.Zero(), err
		}
	}
	return sum, nil
}

// FindStake returns the position of backer's record among agent's stakes, or
// NotFound.
func (l *Ledger) FindStake(agent, backer address.Address) int {
	for i, s := range l.stakes[agent] {
		if s.Backer == backer {
			return i
		}
	}
	return NotFound
}

// Stake returns backer's stake on agent, zero when absent.
func (l *Ledger) Stake(agent, backer address.Address) amount.Amount {
	if i := l.FindStake(agent, backer); i != NotFound {
		return l.stakes[agent][i].Amount
	}
	return amount.Zero()
}

// StakesOf returns the stakes on agent in creation order.
func (l *Ledger) StakesOf(agent address.Address) []Stake {
	return append([]Stake(nil), l.stakes[agent]...)
}

// StakesBy returns the stakes placed by backer.
func (l *Ledger) StakesBy(backer address.Address) []Stake {
	agents := l.backed[backer]
	out := make([]Stake, 0, len(agents))
	for _, agent := range agents {
		if i := l.FindStake(agent, backer); i != NotFound {
			out = append(out, l.stakes[agent][i])
		}
	}
	return out
}

// AllStakes returns every stake, grouped by agent in nomination order.
func (l *Ledger) AllStakes() []Stake {
	var out []Stake
	for _, addr := range l.agentOrder {
		out = append(out, l.stakes[addr]...)
	}
	return out
}
