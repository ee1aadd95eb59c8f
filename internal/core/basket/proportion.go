package basket

import (
	"github.com/LeJamon/goMIXR/internal/core/address"
	"github.com/LeJamon/goMIXR/internal/core/amount"
	"github.com/LeJamon/goMIXR/internal/core/fixed"
)

// Snapshot is an immutable view of the basket in common units, taken once per
// pricing decision.
type Snapshot struct {
	balances map[address.Address]amount.Amount
	targets  map[address.Address]fixed.Fixed
	total    amount.Amount
}

// NewSnapshot builds a snapshot from explicit common-unit balances and targets.
func NewSnapshot(balances map[address.Address]amount.Amount, targets map[address.Address]fixed.Fixed) (*Snapshot, error) {
	s := &Snapshot{
		balances: make(map[address.Address]amount.Amount, len(balances)),
		targets:  make(map[address.Address]fixed.Fixed, len(targets)),
		total:    amount.Zero(),
	}
	for addr, bal := range balances {
		var err error
		if s.total, err = s.total.Add(bal); err != nil {
			return nil, err
		}
		s.balances[addr] = bal
	}
	for addr, t := range targets {
		s.targets[addr] = t
	}
	return s, nil
}

// Total returns the basket balance in common units.
func (s *Snapshot) Total() amount.Amount { return s.total }

// Balance returns one asset's balance in common units.
func (s *Snapshot) Balance(addr address.Address) (amount.Amount, error) {
	bal, ok := s.balances[addr]
	if !ok {
		return amount.Zero(), ErrAssetNotFound
	}
	return bal, nil
}

// Target returns one asset's target proportion.
func (s *Snapshot) Target(addr address.Address) (fixed.Fixed, error) {
	t, ok := s.targets[addr]
	if !ok {
		return fixed.Zero(), ErrAssetNotFound
	}
	return t, nil
}

// CurrentProportion returns balance/total for the asset. An empty basket
// yields exactly one.
func (s *Snapshot) CurrentProportion(addr address.Address) (fixed.Fixed, error) {
	bal, err := s.Balance(addr)
	if err != nil {
		return fixed.Zero(), err
	}
	return proportion(bal, s.total)
}

// ProjectedProportion returns the proportion the asset would have right after
// the transaction moves amt common units in the given direction.
func (s *Snapshot) ProjectedProportion(addr address.Address, amt amount.Amount, dir Direction) (fixed.Fixed, error) {
	bal, err := s.Balance(addr)
	if err != nil {
		return fixed.Zero(), err
	}
	total := s.total
	if dir == Redemption {
		if amt.GreaterThan(bal) {
			return fixed.Zero(), ErrInsufficientReserve
		}
		if bal, err = bal.Sub(amt); err != nil {
			return fixed.Zero(), err
		}
		if total, err = total.Sub(amt); err != nil {
			return fixed.Zero(), err
		}
	} else {
		if bal, err = bal.Add(amt); err != nil {
			return fixed.Zero(), err
		}
		if total, err = total.Add(amt); err != nil {
			return fixed.Zero(), err
		}
	}
	return proportion(bal, total)
}

// Deviation returns the projected proportion minus the target. Positive means
// the transaction leaves the asset above target.
func (s *Snapshot) Deviation(addr address.Address, amt amount.Amount, dir Direction) (fixed.Fixed, error) {
	projected, err := s.ProjectedProportion(addr, amt, dir)
	if err != nil {
		return fixed.Zero(), err
	}
	target, err := s.Target(addr)
	if err != nil {
		return fixed.Zero(), err
	}
	return fixed.Sub(projected, target)
}

func proportion(bal, total amount.Amount) (fixed.Fixed, error) {
	if total.IsZero() {
		return fixed.One(), nil
	}
	return fixed.FromRatio(bal.Uint256(), total.Uint256())
}
