package ledger

import (
	"fmt"
	"sort"

	"github.com/LeJamon/goMIXR/internal/core/address"
	"github.com/LeJamon/goMIXR/internal/core/amount"
	"github.com/LeJamon/goMIXR/internal/core/basket"
	"github.com/LeJamon/goMIXR/internal/core/fixed"
	"github.com/LeJamon/goMIXR/internal/core/staking"
)

// Snapshot is the serializable form of a State. Numbers and addresses are
// kept as decimal and hex strings so any codec can carry it unchanged.
type Snapshot struct {
	Seq                    uint64         `json:"seq"`
	Decimals               uint8          `json:"decimals"`
	MinimumFee             string         `json:"minimum_fee"`
	DeviationCeiling       string         `json:"deviation_ceiling"`
	Supply                 string         `json:"supply"`
	FeePool                string         `json:"fee_pool"`
	RewardCeiling          int            `json:"reward_ceiling"`
	MinimumNominationStake string         `json:"minimum_nomination_stake"`
	Assets                 []AssetRecord  `json:"assets"`
	Agents                 []AgentRecord  `json:"agents"`
	Stakes                 []StakeRecord  `json:"stakes"`
	Ranking                []RankRecord   `json:"ranking"`
	Rewards                []RewardRecord `json:"rewards"`
}

type AssetRecord struct {
	Address       string `json:"address"`
	Symbol        string `json:"symbol"`
	Decimals      uint8  `json:"decimals"`
	Target        string `json:"target"`
	Balance       string `json:"balance"`
	DepositFee    string `json:"deposit_fee"`
	RedemptionFee string `json:"redemption_fee"`
}

type AgentRecord struct {
	Address string `json:"address"`
	Name    string `json:"name"`
	Contact string `json:"contact"`
}

type StakeRecord struct {
	Agent  string `json:"agent"`
	Backer string `json:"backer"`
	Amount string `json:"amount"`
}

type RankRecord struct {
	Agent string `json:"agent"`
	Value string `json:"value"`
}

type RewardRecord struct {
	Backer string `json:"backer"`
	Amount string `json:"amount"`
}

// Export captures st.
func Export(st *State) *Snapshot {
	fp := st.Basket.Params()
	s := &Snapshot{
		Seq:                    st.Seq,
		Decimals:               st.Basket.Decimals(),
		MinimumFee:             fp.MinimumFee.String(),
		DeviationCeiling:       fp.DeviationCeiling.String(),
		Supply:                 st.Basket.Supply().String(),
		FeePool:                st.FeePool.String(),
		RewardCeiling:          st.RewardCeiling,
		MinimumNominationStake: st.Staking.MinimumNominationStake().String(),
	}
	for _, a := range st.Basket.Assets() {
		s.Assets = append(s.Assets, AssetRecord{
			Address:       a.Address.String(),
			Symbol:        a.Symbol,
			Decimals:      a.Decimals,
			Target:        a.Target.String(),
			Balance:       a.Balance.String(),
			DepositFee:    a.DepositFee.String(),
			RedemptionFee: a.RedemptionFee.String(),
		})
	}
	for _, a := range st.Staking.Agents() {
		s.Agents = append(s.Agents, AgentRecord{Address: a.Address.String(), Name: a.Name, Contact: a.Contact})
	}
	for _, k := range st.Staking.AllStakes() {
		s.Stakes = append(s.Stakes, StakeRecord{Agent: k.Agent.String(), Backer: k.Backer.String(), Amount: k.Amount.String()})
	}
	for _, e := range st.Staking.Ranking().Entries() {
		s.Ranking = append(s.Ranking, RankRecord{Agent: e.Agent.String(), Value: e.Value.String()})
	}
	backers := make([]address.Address, 0, len(st.Rewards))
	for b := range st.Rewards {
		backers = append(backers, b)
	}
	sort.Slice(backers, func(i, j int) bool { return backers[i].Less(backers[j]) })
	for _, b := range backers {
		s.Rewards = append(s.Rewards, RewardRecord{Backer: b.String(), Amount: st.Rewards[b].String()})
	}
	return s
}

// State rebuilds the state captured by s.
func (s *Snapshot) State() (*State, error) {
	var p parser
	minFee := p.fixed(s.MinimumFee)
	ceiling := p.fixed(s.DeviationCeiling)
	supply := p.amount(s.Supply)
	pool := p.amount(s.FeePool)
	minNom := p.amount(s.MinimumNominationStake)

	assets := make([]basket.Asset, 0, len(s.Assets))
	for _, r := range s.Assets {
		assets = append(assets, basket.Asset{
			Address:       p.address(r.Address),
			Symbol:        r.Symbol,
			Decimals:      r.Decimals,
			Target:        p.fixed(r.Target),
			Balance:       p.amount(r.Balance),
			DepositFee:    p.fixed(r.DepositFee),
			RedemptionFee: p.fixed(r.RedemptionFee),
		})
	}
	agents := make([]staking.Agent, 0, len(s.Agents))
	for _, r := range s.Agents {
		agents = append(agents, staking.Agent{Address: p.address(r.Address), Name: r.Name, Contact: r.Contact})
	}
	stakes := make([]staking.Stake, 0, len(s.Stakes))
	for _, r := range s.Stakes {
		stakes = append(stakes, staking.Stake{Agent: p.address(r.Agent), Backer: p.address(r.Backer), Amount: p.amount(r.Amount)})
	}
	ranking := make([]staking.RankEntry, 0, len(s.Ranking))
	for _, r := range s.Ranking {
		ranking = append(ranking, staking.RankEntry{Agent: p.address(r.Agent), Value: p.amount(r.Value)})
	}
	rewards := make(map[address.Address]amount.Amount, len(s.Rewards))
	for _, r := range s.Rewards {
		rewards[p.address(r.Backer)] = p.amount(r.Amount)
	}
	if p.err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSnapshot, p.err)
	}
	if s.RewardCeiling <= 0 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSnapshot, ErrInvalidCeiling)
	}

	stakingLedger, err := staking.Restore(minNom, agents, stakes, ranking)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}
	return &State{
		Seq:           s.Seq,
		Basket:        basket.Restore(s.Decimals, basket.FeeParameters{MinimumFee: minFee, DeviationCeiling: ceiling}, supply, assets),
		Staking:       stakingLedger,
		FeePool:       pool,
		Rewards:       rewards,
		RewardCeiling: s.RewardCeiling,
	}, nil
}

// parser keeps the first conversion error.
type parser struct {
	err error
}

func (p *parser) fixed(s string) fixed.Fixed {
	v, err := fixed.Parse(s)
	if err != nil && p.err == nil {
		p.err = err
	}
	return v
}

func (p *parser) amount(s string) amount.Amount {
	v, err := amount.Parse(s)
	if err != nil && p.err == nil {
		p.err = err
	}
	return v
}

func (p *parser) address(s string) address.Address {
	v, err := address.Parse(s)
	if err != nil && p.err == nil {
		p.err = err
	}
	return v
}
