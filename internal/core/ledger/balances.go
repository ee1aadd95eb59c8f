package ledger

import (
	"sync"

	"github.com/LeJamon/goMIXR/internal/core/address"
	"github.com/LeJamon/goMIXR/internal/core/amount"
)

// TokenBalances reports BILD holdings. The token itself lives outside the
// engine; stakes are bounded by what it reports.
type TokenBalances interface {
	BalanceOf(holder address.Address) amount.Amount
}

// StaticBalances is an in-memory TokenBalances seeded from genesis.
type StaticBalances struct {
	mu       sync.RWMutex
	balances map[address.Address]amount.Amount
}

// NewStaticBalances copies the initial holdings.
func NewStaticBalances(initial map[address.Address]amount.Amount) *StaticBalances {
	b := &StaticBalances{balances: make(map[address.Address]amount.Amount, len(initial))}
	for k, v := range initial {
		b.balances[k] = v
	}
	return b
}

// BalanceOf implements TokenBalances.
func (b *StaticBalances) BalanceOf(holder address.Address) amount.Amount {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.balances[holder]
}

// Set replaces a holder's balance.
func (b *StaticBalances) Set(holder address.Address, v amount.Amount) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.balances[holder] = v
}
