package fixed

import (
	"fmt"

	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"
)

// FromDecimal converts a decimal, truncating digits beyond the 36th.
func FromDecimal(d decimal.Decimal) (Fixed, error) {
	bi := d.Shift(Digits).BigInt()
	neg := bi.Sign() < 0
	bi.Abs(bi)
	m, overflow := uint256.FromBig(bi)
	if overflow || m.Gt(maxInt256) {
		return Fixed{}, ErrOverflow
	}
	return fromMag(m, neg), nil
}

// Parse reads a decimal string such as "0.0025" or "-1.5".
func Parse(s string) (Fixed, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Fixed{}, fmt.Errorf("%w: %q", ErrInvalidDecimal, s)
	}
	return FromDecimal(d)
}

// MustParse is like Parse but panics on error. Intended for constants and tests.
func MustParse(s string) Fixed {
	f, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return f
}

// Decimal returns the exact decimal value of f.
func (f Fixed) Decimal() decimal.Decimal {
	bi := f.mag().ToBig()
	if f.Sign() < 0 {
		bi.Neg(bi)
	}
	return decimal.NewFromBigInt(bi, -Digits)
}

// String returns the shortest exact decimal form of f.
func (f Fixed) String() string { return f.Decimal().String() }

// Float64 returns the nearest float64. Only for display and diagnostics.
func (f Fixed) Float64() float64 {
	v, _ := f.Decimal().Float64()
	return v
}

// MarshalText encodes f as a decimal string.
func (f Fixed) MarshalText() ([]byte, error) { return []byte(f.String()), nil }

// UnmarshalText decodes a decimal string.
func (f *Fixed) UnmarshalText(text []byte) error {
	v, err := Parse(string(text))
	if err != nil {
		return err
	}
	*f = v
	return nil
}
