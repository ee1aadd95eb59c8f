package basket

import (
	"fmt"

	"github.com/LeJamon/goMIXR/internal/core/address"
	"github.com/LeJamon/goMIXR/internal/core/amount"
	"github.com/LeJamon/goMIXR/internal/core/fixed"
)

// MaxDecimals bounds the native decimals of a registered asset.
const MaxDecimals = 36

// Direction distinguishes deposits from redemptions.
type Direction int

const (
	Deposit Direction = iota
	Redemption
)

func (d Direction) String() string {
	if d == Redemption {
		return "redemption"
	}
	return "deposit"
}

// ParseDirection reads "deposit" or "redemption".
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "deposit":
		return Deposit, nil
	case "redemption", "redeem":
		return Redemption, nil
	}
	return Deposit, fmt.Errorf("%w: %q", ErrUnknownDirection, s)
}

func (d Direction) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

func (d *Direction) UnmarshalText(text []byte) error {
	v, err := ParseDirection(string(text))
	if err != nil {
		return err
	}
	*d = v
	return nil
}

// Asset is a token held by the basket.
type Asset struct {
	Address  address.Address `json:"address"`
	Symbol   string          `json:"symbol"`
	Decimals uint8           `json:"decimals"`

	// Target is the governance-set share of the basket, in [0, 1].
	Target fixed.Fixed `json:"target"`

	// Balance is held in the asset's native units.
	Balance amount.Amount `json:"balance"`

	DepositFee    fixed.Fixed `json:"deposit_fee"`
	RedemptionFee fixed.Fixed `json:"redemption_fee"`
}

// BaseFee returns the base fee for a direction.
func (a *Asset) BaseFee(dir Direction) fixed.Fixed {
	if dir == Redemption {
		return a.RedemptionFee
	}
	return a.DepositFee
}

func (a *Asset) setBaseFee(dir Direction, fee fixed.Fixed) {
	if dir == Redemption {
		a.RedemptionFee = fee
		return
	}
	a.DepositFee = fee
}

// ToCommon converts native units to the basket's accounting units.
func (a *Asset) ToCommon(native amount.Amount, basketDecimals uint8) (amount.Amount, error) {
	if a.Decimals <= basketDecimals {
		return native.Mul(amount.PowerOfTen(uint(basketDecimals - a.Decimals)))
	}
	return native.Div(amount.PowerOfTen(uint(a.Decimals - basketDecimals)))
}

// FromCommon converts accounting units back to native units, rounding down.
func (a *Asset) FromCommon(common amount.Amount, basketDecimals uint8) (amount.Amount, error) {
	if a.Decimals <= basketDecimals {
		return common.Div(amount.PowerOfTen(uint(basketDecimals - a.Decimals)))
	}
	return common.Mul(amount.PowerOfTen(uint(a.Decimals - basketDecimals)))
}
