package ledger

import (
	"time"

	"github.com/LeJamon/goMIXR/internal/core/address"
	"github.com/LeJamon/goMIXR/internal/core/amount"
	"github.com/LeJamon/goMIXR/internal/core/basket"
	"github.com/LeJamon/goMIXR/internal/core/payout"
)

// Op names a state-changing operation.
type Op string

const (
	OpRegisterAsset        Op = "register_asset"
	OpSetTargetProportions Op = "set_target_proportions"
	OpSetBaseFee           Op = "set_base_fee"
	OpSetMinimumFee        Op = "set_minimum_fee"
	OpSetDeviationCeiling  Op = "set_deviation_ceiling"
	OpSetMinimumNomination Op = "set_minimum_nomination_stake"
	OpSetRewardCeiling     Op = "set_reward_ceiling"
	OpDeposit              Op = "deposit"
	OpRedeem               Op = "redeem"
	OpCreateStake          Op = "create_stake"
	OpRemoveStake          Op = "remove_stake"
	OpPayoutFees           Op = "payout_fees"
	OpClaimRewards         Op = "claim_rewards"
)

// Event describes one committed operation. Token movements the engine only
// computes (mints, burns, payouts) are carried here for the token subsystem.
type Event struct {
	Seq    uint64          `json:"seq"`
	Time   time.Time       `json:"time"`
	Op     Op              `json:"op"`
	Caller address.Address `json:"caller"`

	Asset  *address.Address `json:"asset,omitempty"`
	Agent  *address.Address `json:"agent,omitempty"`
	Amount *amount.Amount   `json:"amount,omitempty"`

	// Receipt is set for deposits and redemptions.
	Receipt *basket.Receipt `json:"receipt,omitempty"`

	// Payout is set for payout cycles.
	Payout *payout.Report `json:"payout,omitempty"`

	// Detail is a short human-readable summary of parameter changes.
	Detail string `json:"detail,omitempty"`
}

// Subscriber receives committed events in order. It runs after the
// operation has fully committed and may call back into the engine.
type Subscriber func(Event)
