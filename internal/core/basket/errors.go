package basket

import "github.com/LeJamon/goMIXR/internal/core/failure"

var (
	ErrAssetAlreadyRegistered = failure.StateInvariant("asset already registered")
	ErrAssetNotFound          = failure.StateInvariant("asset not registered")

	ErrInsufficientReserve = failure.PolicyViolation("redemption exceeds basket reserve")
	ErrFeeCurveSaturated   = failure.PolicyViolation("deviation saturates the fee curve")
	ErrProportionSum       = failure.PolicyViolation("target proportions must sum to exactly one")
	ErrProportionRange     = failure.PolicyViolation("target proportion outside [0, 1]")
	ErrProportionAssets    = failure.PolicyViolation("target proportions must name every registered asset exactly once")
	ErrFeeOutOfRange       = failure.PolicyViolation("fee outside [minimum fee, 1]")
	ErrCeilingOutOfRange   = failure.PolicyViolation("deviation ceiling outside (0, 1]")
	ErrInvalidDecimals     = failure.PolicyViolation("asset decimals out of range")
	ErrZeroAmount          = failure.PolicyViolation("amount must be positive")
	ErrRedemptionTooSmall  = failure.PolicyViolation("redemption is worth less than one native unit")
	ErrUnknownDirection    = failure.PolicyViolation("unknown direction")
)
