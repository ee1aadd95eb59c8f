package staking

import "github.com/LeJamon/goMIXR/internal/core/failure"

// Ranking errors
var (
	ErrAlreadyDetached = failure.StateInvariant("agent is not in the ranking")
	ErrAlreadyRanked   = failure.StateInvariant("agent is already ranked")
	ErrNotInRanking    = failure.StateInvariant("no agent at the requested rank")
	ErrZeroRankValue   = failure.StateInvariant("agents with zero stake cannot be ranked")
	ErrRankOrder       = failure.StateInvariant("ranking entries out of order")
)

// Stake ledger errors
var (
	ErrAgentNotFound  = failure.StateInvariant("agent not nominated")
	ErrNameTaken      = failure.StateInvariant("agent name already in use")
	ErrAgentExists    = failure.StateInvariant("agent already exists")
	ErrNoStakeFound   = failure.StateInvariant("no stake for agent and backer")
	ErrDuplicateStake = failure.StateInvariant("duplicate stake record")

	ErrNominationStakeTooLow = failure.PolicyViolation("stake below the minimum nomination stake")
	ErrInsufficientStake     = failure.PolicyViolation("removal exceeds the staked amount")
	ErrInsufficientBalance   = failure.PolicyViolation("stake exceeds the backer's unstaked balance")
	ErrZeroStake             = failure.PolicyViolation("stake amount must be positive")
)
