package rpc

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/LeJamon/goMIXR/internal/core/address"
	"github.com/LeJamon/goMIXR/internal/core/amount"
	"github.com/LeJamon/goMIXR/internal/core/basket"
	"github.com/LeJamon/goMIXR/internal/core/fixed"
	"github.com/LeJamon/goMIXR/internal/core/ledger"
	"github.com/LeJamon/goMIXR/internal/core/staking"
	"github.com/LeJamon/goMIXR/internal/storage/journal"
)

// registerAllMethods registers every ledger method.
func registerAllMethods(r *MethodRegistry) {
	// queries
	r.Register("server_info", serverInfo)
	r.Register("basket_assets", basketAssets)
	r.Register("basket_asset", basketAsset)
	r.Register("quote_fee", quoteFee)
	r.Register("agents", agents)
	r.Register("agent_info", agentInfo)
	r.Register("ranking", ranking)
	r.Register("stakes", stakes)
	r.Register("rewards", rewards)
	r.Register("history", history)

	// basket
	r.Register("deposit", deposit)
	r.Register("redeem", redeem)

	// staking and payouts
	r.Register("create_stake", createStake)
	r.Register("remove_stake", removeStake)
	r.Register("payout_fees", payoutFees)
	r.Register("claim_rewards", claimRewards)

	// governance
	r.Register("register_asset", registerAsset)
	r.Register("set_target_proportions", setTargetProportions)
	r.Register("set_base_fee", setBaseFee)
	r.Register("set_minimum_fee", setMinimumFee)
	r.Register("set_deviation_ceiling", setDeviationCeiling)
	r.Register("set_minimum_nomination_stake", setMinimumNominationStake)
	r.Register("set_reward_ceiling", setRewardCeiling)
}

// decode reads params into v, rejecting unknown fields. Missing params
// decode as an empty object.
func decode(params json.RawMessage, v any) *RpcError {
	if len(params) == 0 {
		params = json.RawMessage("{}")
	}
	dec := json.NewDecoder(bytes.NewReader(params))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return RpcErrorInvalidParams(err.Error())
	}
	return nil
}

// run executes fn with exclusive engine access and maps its error.
func run(ctx *RpcContext, fn func(e *ledger.Engine) (any, error)) (any, *RpcError) {
	var result any
	err := ctx.Ledger.Exec(func(e *ledger.Engine) error {
		var err error
		result, err = fn(e)
		return err
	})
	if err != nil {
		return nil, FromError(err)
	}
	return result, nil
}

func requireCaller(caller address.Address) *RpcError {
	if caller.IsZero() {
		return RpcErrorInvalidParams("caller is required")
	}
	return nil
}

type ServerInfo struct {
	Seq     uint64        `json:"seq"`
	Supply  amount.Amount `json:"supply"`
	FeePool amount.Amount `json:"fee_pool"`
	Assets  int           `json:"assets"`
	Agents  int           `json:"agents"`
	Ranked  int           `json:"ranked"`
	Params  ParamsInfo    `json:"params"`
}

type ParamsInfo struct {
	Decimals               uint8         `json:"decimals"`
	MinimumFee             fixed.Fixed   `json:"minimum_fee"`
	DeviationCeiling       fixed.Fixed   `json:"deviation_ceiling"`
	MinimumNominationStake amount.Amount `json:"minimum_nomination_stake"`
	RewardCeiling          int           `json:"reward_ceiling"`
}

func serverInfo(ctx *RpcContext, _ json.RawMessage) (any, *RpcError) {
	return run(ctx, func(e *ledger.Engine) (any, error) {
		p := e.Params()
		return ServerInfo{
			Seq:     e.Seq(),
			Supply:  e.Supply(),
			FeePool: e.FeePool(),
			Assets:  len(e.Assets()),
			Agents:  len(e.Agents()),
			Ranked:  len(e.Ranking()),
			Params: ParamsInfo{
				Decimals:               p.Decimals,
				MinimumFee:             p.MinimumFee,
				DeviationCeiling:       p.DeviationCeiling,
				MinimumNominationStake: p.MinimumNominationStake,
				RewardCeiling:          p.RewardCeiling,
			},
		}, nil
	})
}

type assetParams struct {
	Asset address.Address `json:"asset"`
}

func basketAssets(ctx *RpcContext, _ json.RawMessage) (any, *RpcError) {
	return run(ctx, func(e *ledger.Engine) (any, error) {
		return map[string]any{"assets": e.Assets()}, nil
	})
}

func basketAsset(ctx *RpcContext, params json.RawMessage) (any, *RpcError) {
	var p assetParams
	if err := decode(params, &p); err != nil {
		return nil, err
	}
	return run(ctx, func(e *ledger.Engine) (any, error) {
		return e.Asset(p.Asset)
	})
}

type quoteParams struct {
	Asset     address.Address  `json:"asset"`
	Amount    amount.Amount    `json:"amount"`
	Direction basket.Direction `json:"direction"`
}

func quoteFee(ctx *RpcContext, params json.RawMessage) (any, *RpcError) {
	var p quoteParams
	if err := decode(params, &p); err != nil {
		return nil, err
	}
	return run(ctx, func(e *ledger.Engine) (any, error) {
		return e.QuoteFee(p.Asset, p.Amount, p.Direction)
	})
}

type AgentInfo struct {
	staking.Agent
	Aggregate amount.Amount   `json:"aggregate"`
	Rank      int             `json:"rank"`
	Stakes    []staking.Stake `json:"stakes"`
}

type agentParams struct {
	Agent address.Address `json:"agent"`
}

func agents(ctx *RpcContext, _ json.RawMessage) (any, *RpcError) {
	return run(ctx, func(e *ledger.Engine) (any, error) {
		return map[string]any{"agents": e.Agents()}, nil
	})
}

func agentInfo(ctx *RpcContext, params json.RawMessage) (any, *RpcError) {
	var p agentParams
	if err := decode(params, &p); err != nil {
		return nil, err
	}
	return run(ctx, func(e *ledger.Engine) (any, error) {
		a, err := e.Agent(p.Agent)
		if err != nil {
			return nil, err
		}
		agg, err := e.AggregateAgentStakes(p.Agent)
		if err != nil {
			return nil, err
		}
		info := AgentInfo{Agent: a, Aggregate: agg, Rank: staking.NotFound, Stakes: e.StakesOf(p.Agent)}
		for i, entry := range e.Ranking() {
			if entry.Agent == p.Agent {
				info.Rank = i
				break
			}
		}
		return info, nil
	})
}

type rankingParams struct {
	Limit int `json:"limit"`
}

func ranking(ctx *RpcContext, params json.RawMessage) (any, *RpcError) {
	var p rankingParams
	if err := decode(params, &p); err != nil {
		return nil, err
	}
	if p.Limit < 0 {
		return nil, RpcErrorInvalidParams("limit must not be negative")
	}
	return run(ctx, func(e *ledger.Engine) (any, error) {
		entries := e.Ranking()
		if p.Limit > 0 && p.Limit < len(entries) {
			entries = entries[:p.Limit]
		}
		return map[string]any{"ranking": entries}, nil
	})
}

type stakesParams struct {
	Agent  address.Address `json:"agent"`
	Backer address.Address `json:"backer"`
}

func stakes(ctx *RpcContext, params json.RawMessage) (any, *RpcError) {
	var p stakesParams
	if err := decode(params, &p); err != nil {
		return nil, err
	}
	if p.Agent.IsZero() == p.Backer.IsZero() {
		return nil, RpcErrorInvalidParams("exactly one of agent or backer is required")
	}
	return run(ctx, func(e *ledger.Engine) (any, error) {
		if !p.Agent.IsZero() {
			return map[string]any{"stakes": e.StakesOf(p.Agent)}, nil
		}
		total, err := e.AggregateBackerStakes(p.Backer)
		if err != nil {
			return nil, err
		}
		return map[string]any{"stakes": e.StakesBy(p.Backer), "total": total}, nil
	})
}

type rewardsParams struct {
	Backer address.Address `json:"backer"`
}

func rewards(ctx *RpcContext, params json.RawMessage) (any, *RpcError) {
	var p rewardsParams
	if err := decode(params, &p); err != nil {
		return nil, err
	}
	return run(ctx, func(e *ledger.Engine) (any, error) {
		return map[string]any{"backer": p.Backer, "rewards": e.Rewards(p.Backer)}, nil
	})
}

type historyParams struct {
	Op       ledger.Op       `json:"op"`
	Caller   address.Address `json:"caller"`
	AfterSeq uint64          `json:"after_seq"`
	Limit    int             `json:"limit"`
}

func history(ctx *RpcContext, params json.RawMessage) (any, *RpcError) {
	var p historyParams
	if err := decode(params, &p); err != nil {
		return nil, err
	}
	if ctx.History == nil {
		return nil, RpcErrorUnavailable("journal is disabled")
	}
	entries, err := ctx.History.List(ctx.Context, journal.Filter{
		Op:       p.Op,
		Caller:   p.Caller,
		AfterSeq: p.AfterSeq,
		Limit:    p.Limit,
	})
	if err != nil {
		return nil, FromError(err)
	}
	return map[string]any{"entries": entries}, nil
}

type transferParams struct {
	Caller address.Address `json:"caller"`
	Asset  address.Address `json:"asset"`
	Amount amount.Amount   `json:"amount"`
}

func deposit(ctx *RpcContext, params json.RawMessage) (any, *RpcError) {
	var p transferParams
	if err := decode(params, &p); err != nil {
		return nil, err
	}
	if err := requireCaller(p.Caller); err != nil {
		return nil, err
	}
	return run(ctx, func(e *ledger.Engine) (any, error) {
		return e.Deposit(p.Caller, p.Asset, p.Amount)
	})
}

func redeem(ctx *RpcContext, params json.RawMessage) (any, *RpcError) {
	var p transferParams
	if err := decode(params, &p); err != nil {
		return nil, err
	}
	if err := requireCaller(p.Caller); err != nil {
		return nil, err
	}
	return run(ctx, func(e *ledger.Engine) (any, error) {
		return e.Redeem(p.Caller, p.Asset, p.Amount)
	})
}

type stakeParams struct {
	Caller  address.Address `json:"caller"`
	Agent   address.Address `json:"agent"`
	Amount  amount.Amount   `json:"amount"`
	Name    string          `json:"name"`
	Contact string          `json:"contact"`
}

func createStake(ctx *RpcContext, params json.RawMessage) (any, *RpcError) {
	var p stakeParams
	if err := decode(params, &p); err != nil {
		return nil, err
	}
	if err := requireCaller(p.Caller); err != nil {
		return nil, err
	}
	var nom *staking.Nomination
	if p.Name != "" {
		nom = &staking.Nomination{Name: p.Name, Contact: p.Contact}
	}
	return run(ctx, func(e *ledger.Engine) (any, error) {
		return e.CreateStake(p.Caller, p.Agent, p.Amount, nom)
	})
}

func removeStake(ctx *RpcContext, params json.RawMessage) (any, *RpcError) {
	var p stakeParams
	if err := decode(params, &p); err != nil {
		return nil, err
	}
	if err := requireCaller(p.Caller); err != nil {
		return nil, err
	}
	return run(ctx, func(e *ledger.Engine) (any, error) {
		return e.RemoveStake(p.Caller, p.Agent, p.Amount)
	})
}

type callerParams struct {
	Caller address.Address `json:"caller"`
}

func payoutFees(ctx *RpcContext, params json.RawMessage) (any, *RpcError) {
	var p callerParams
	if err := decode(params, &p); err != nil {
		return nil, err
	}
	return run(ctx, func(e *ledger.Engine) (any, error) {
		return e.PayoutFees(p.Caller)
	})
}

func claimRewards(ctx *RpcContext, params json.RawMessage) (any, *RpcError) {
	var p callerParams
	if err := decode(params, &p); err != nil {
		return nil, err
	}
	if err := requireCaller(p.Caller); err != nil {
		return nil, err
	}
	return run(ctx, func(e *ledger.Engine) (any, error) {
		claimed, err := e.ClaimRewards(p.Caller)
		if err != nil {
			return nil, err
		}
		return map[string]any{"backer": p.Caller, "claimed": claimed}, nil
	})
}

type registerAssetParams struct {
	Caller        address.Address `json:"caller"`
	Address       address.Address `json:"address"`
	Symbol        string          `json:"symbol"`
	Decimals      uint8           `json:"decimals"`
	DepositFee    fixed.Fixed     `json:"deposit_fee"`
	RedemptionFee fixed.Fixed     `json:"redemption_fee"`
}

func registerAsset(ctx *RpcContext, params json.RawMessage) (any, *RpcError) {
	var p registerAssetParams
	if err := decode(params, &p); err != nil {
		return nil, err
	}
	a := basket.Asset{
		Address:       p.Address,
		Symbol:        p.Symbol,
		Decimals:      p.Decimals,
		DepositFee:    p.DepositFee,
		RedemptionFee: p.RedemptionFee,
	}
	return run(ctx, func(e *ledger.Engine) (any, error) {
		return e.RegisterAsset(p.Caller, a)
	})
}

type targetEntry struct {
	Asset      address.Address `json:"asset"`
	Proportion fixed.Fixed     `json:"proportion"`
}

type targetParams struct {
	Caller  address.Address `json:"caller"`
	Targets []targetEntry   `json:"targets"`
}

func setTargetProportions(ctx *RpcContext, params json.RawMessage) (any, *RpcError) {
	var p targetParams
	if err := decode(params, &p); err != nil {
		return nil, err
	}
	assets := make([]address.Address, len(p.Targets))
	props := make([]fixed.Fixed, len(p.Targets))
	for i, t := range p.Targets {
		assets[i], props[i] = t.Asset, t.Proportion
	}
	return run(ctx, func(e *ledger.Engine) (any, error) {
		return e.SetTargetProportions(p.Caller, assets, props)
	})
}

type baseFeeParams struct {
	Caller    address.Address  `json:"caller"`
	Asset     address.Address  `json:"asset"`
	Direction basket.Direction `json:"direction"`
	Fee       fixed.Fixed      `json:"fee"`
}

func setBaseFee(ctx *RpcContext, params json.RawMessage) (any, *RpcError) {
	var p baseFeeParams
	if err := decode(params, &p); err != nil {
		return nil, err
	}
	return run(ctx, func(e *ledger.Engine) (any, error) {
		return e.SetBaseFee(p.Caller, p.Asset, p.Direction, p.Fee)
	})
}

type fractionParams struct {
	Caller address.Address `json:"caller"`
	Value  fixed.Fixed     `json:"value"`
}

func setMinimumFee(ctx *RpcContext, params json.RawMessage) (any, *RpcError) {
	var p fractionParams
	if err := decode(params, &p); err != nil {
		return nil, err
	}
	return run(ctx, func(e *ledger.Engine) (any, error) {
		return e.SetMinimumFee(p.Caller, p.Value)
	})
}

func setDeviationCeiling(ctx *RpcContext, params json.RawMessage) (any, *RpcError) {
	var p fractionParams
	if err := decode(params, &p); err != nil {
		return nil, err
	}
	return run(ctx, func(e *ledger.Engine) (any, error) {
		return e.SetDeviationCeiling(p.Caller, p.Value)
	})
}

type amountParams struct {
	Caller address.Address `json:"caller"`
	Value  amount.Amount   `json:"value"`
}

func setMinimumNominationStake(ctx *RpcContext, params json.RawMessage) (any, *RpcError) {
	var p amountParams
	if err := decode(params, &p); err != nil {
		return nil, err
	}
	return run(ctx, func(e *ledger.Engine) (any, error) {
		return e.SetMinimumNominationStake(p.Caller, p.Value)
	})
}

type ceilingParams struct {
	Caller address.Address `json:"caller"`
	Value  int             `json:"value"`
}

func setRewardCeiling(ctx *RpcContext, params json.RawMessage) (any, *RpcError) {
	var p ceilingParams
	if err := decode(params, &p); err != nil {
		return nil, err
	}
	if p.Value <= 0 {
		return nil, RpcErrorInvalidParams(fmt.Sprintf("reward ceiling %d must be positive", p.Value))
	}
	return run(ctx, func(e *ledger.Engine) (any, error) {
		return e.SetRewardCeiling(p.Caller, p.Value)
	})
}
