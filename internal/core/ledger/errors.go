package ledger

import (
	"errors"

	"github.com/LeJamon/goMIXR/internal/core/failure"
)

var (
	// ErrReentrant is returned when an operation starts while another one is
	// still applying to the same engine.
	ErrReentrant = failure.StateInvariant("operation re-entered a busy ledger")

	// ErrUnauthorized is returned when the caller lacks the role for an action.
	ErrUnauthorized = failure.Unauthorized("caller is not authorized for this action")

	ErrNothingToClaim  = failure.StateInvariant("no rewards to claim")
	ErrInvalidCeiling  = failure.PolicyViolation("reward ceiling must be positive")
	ErrInvalidSnapshot = failure.StateInvariant("invalid ledger snapshot")

	// ErrPersist wraps a storage failure that kept an operation from
	// committing. It carries no failure kind.
	ErrPersist = errors.New("ledger state not persisted")
)
