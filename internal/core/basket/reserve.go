package basket

import (
	"github.com/LeJamon/goMIXR/internal/core/address"
	"github.com/LeJamon/goMIXR/internal/core/amount"
)

// Receipt records the effect of a deposit or redemption on the basket.
type Receipt struct {
	Quote

	// Native is the asset amount moved in or out of the basket, in the
	// asset's own units.
	Native amount.Amount `json:"native"`

	// Dust is the part of a redemption's Net too small to pay out in the
	// asset's units. It is not burned and stays with the redeemer.
	Dust amount.Amount `json:"dust"`
}

// Deposit adds native units of an asset to the basket. The depositor is owed
// Quote.Net MIXR; Quote.Fee MIXR accrues to the fee pool. The whole deposit
// backs new supply.
func (b *Basket) Deposit(addr address.Address, native amount.Amount) (Receipt, error) {
	a, err := b.asset(addr)
	if err != nil {
		return Receipt{}, err
	}
	common, err := a.ToCommon(native, b.decimals)
	if err != nil {
		return Receipt{}, err
	}
	if common.IsZero() {
		return Receipt{}, ErrZeroAmount
	}
	q, err := b.QuoteFee(addr, common, Deposit)
	if err != nil {
		return Receipt{}, err
	}
	balance, err := a.Balance.Add(native)
	if err != nil {
		return Receipt{}, err
	}
	supply, err := b.supply.Add(common)
	if err != nil {
		return Receipt{}, err
	}
	a.Balance = balance
	b.supply = supply
	return Receipt{Quote: q, Native: native, Dust: amount.Zero()}, nil
}

// Redeem burns MIXR against an asset. The redeemer receives the native
// equivalent of Quote.Net, rounded down; only the MIXR that rounded amount
// is worth is burned and the remainder is returned as Receipt.Dust. The fee
// stays in the basket and backs the fee pool.
func (b *Basket) Redeem(addr address.Address, common amount.Amount) (Receipt, error) {
	a, err := b.asset(addr)
	if err != nil {
		return Receipt{}, err
	}
	if common.IsZero() {
		return Receipt{}, ErrZeroAmount
	}
	q, err := b.QuoteFee(addr, common, Redemption)
	if err != nil {
		return Receipt{}, err
	}
	native, err := a.FromCommon(q.Net, b.decimals)
	if err != nil {
		return Receipt{}, err
	}
	if native.IsZero() {
		return Receipt{}, ErrRedemptionTooSmall
	}
	if native.GreaterThan(a.Balance) {
		return Receipt{}, ErrInsufficientReserve
	}
	burned, err := a.ToCommon(native, b.decimals)
	if err != nil {
		return Receipt{}, err
	}
	dust, err := q.Net.Sub(burned)
	if err != nil {
		return Receipt{}, err
	}
	balance, err := a.Balance.Sub(native)
	if err != nil {
		return Receipt{}, err
	}
	supply, err := b.supply.Sub(burned)
	if err != nil {
		return Receipt{}, err
	}
	a.Balance = balance
	b.supply = supply
	return Receipt{Quote: q, Native: native, Dust: dust}, nil
}
