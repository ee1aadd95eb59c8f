// Package amount holds unsigned token quantities in native units.
package amount

import (
	"fmt"

	"github.com/holiman/uint256"

	"github.com/LeJamon/goMIXR/internal/core/failure"
)

var (
	ErrOverflow     = failure.Arithmetic("amount overflow")
	ErrUnderflow    = failure.Arithmetic("amount underflow")
	ErrDivideByZero = failure.Arithmetic("amount division by zero")
	ErrInvalid      = failure.PolicyViolation("invalid amount")
)

// Amount is a non-negative 256-bit integer. The zero value is 0.
type Amount struct {
	v uint256.Int
}

// New returns an Amount of n units.
func New(n uint64) Amount {
	var a Amount
	a.v.SetUint64(n)
	return a
}

// Zero returns 0.
func Zero() Amount { return Amount{} }

// FromUint256 copies n.
func FromUint256(n *uint256.Int) Amount {
	var a Amount
	a.v.Set(n)
	return a
}

// Parse reads a base-10 integer.
func Parse(s string) (Amount, error) {
	var a Amount
	if err := a.v.SetFromDecimal(s); err != nil {
		return Amount{}, fmt.Errorf("%w: %q", ErrInvalid, s)
	}
	return a, nil
}

// MustParse is like Parse but panics on error.
func MustParse(s string) Amount {
	a, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return a
}

// PowerOfTen returns 10^n.
func PowerOfTen(n uint) Amount {
	var a Amount
	a.v.Exp(uint256.NewInt(10), uint256.NewInt(uint64(n)))
	return a
}

// Uint256 returns a copy of the underlying integer.
func (a Amount) Uint256() *uint256.Int { return a.v.Clone() }

// Uint64 returns the low 64 bits. Callers check IsUint64 first.
func (a Amount) Uint64() uint64 { return a.v.Uint64() }

// IsUint64 reports whether a fits in a uint64.
func (a Amount) IsUint64() bool { return a.v.IsUint64() }

func (a Amount) IsZero() bool { return a.v.IsZero() }

func (a Amount) IsPositive() bool { return !a.v.IsZero() }

func (a Amount) Cmp(b Amount) int { return a.v.Cmp(&b.v) }

func (a Amount) Equal(b Amount) bool { return a.v.Eq(&b.v) }

func (a Amount) LessThan(b Amount) bool { return a.v.Lt(&b.v) }

func (a Amount) GreaterThan(b Amount) bool { return a.v.Gt(&b.v) }

// Add returns a+b.
func (a Amount) Add(b Amount) (Amount, error) {
	var r Amount
	if _, overflow := r.v.AddOverflow(&a.v, &b.v); overflow {
		return Amount{}, ErrOverflow
	}
	return r, nil
}

// Sub returns a-b.
func (a Amount) Sub(b Amount) (Amount, error) {
	var r Amount
	if _, underflow := r.v.SubOverflow(&a.v, &b.v); underflow {
		return Amount{}, ErrUnderflow
	}
	return r, nil
}

// Mul returns a*b.
func (a Amount) Mul(b Amount) (Amount, error) {
	var r Amount
	if _, overflow := r.v.MulOverflow(&a.v, &b.v); overflow {
		return Amount{}, ErrOverflow
	}
	return r, nil
}

// Div returns floor(a/b).
func (a Amount) Div(b Amount) (Amount, error) {
	if b.IsZero() {
		return Amount{}, ErrDivideByZero
	}
	var r Amount
	r.v.Div(&a.v, &b.v)
	return r, nil
}

// MulDiv returns floor(a*b/d) with a 512-bit intermediate product.
func MulDiv(a, b, d Amount) (Amount, error) {
	if d.IsZero() {
		return Amount{}, ErrDivideByZero
	}
	var r Amount
	if _, overflow := r.v.MulDivOverflow(&a.v, &b.v, &d.v); overflow {
		return Amount{}, ErrOverflow
	}
	return r, nil
}

// Min returns the smaller of a and b.
func Min(a, b Amount) Amount {
	if a.LessThan(b) {
		return a
	}
	return b
}

// Sum adds all values.
func Sum(values ...Amount) (Amount, error) {
	total := Zero()
	for _, v := range values {
		var err error
		if total, err = total.Add(v); err != nil {
			return Amount{}, err
		}
	}
	return total, nil
}

func (a Amount) String() string { return a.v.Dec() }

// MarshalText encodes a as a base-10 string.
func (a Amount) MarshalText() ([]byte, error) { return []byte(a.v.Dec()), nil }

// UnmarshalText decodes a base-10 string.
func (a *Amount) UnmarshalText(text []byte) error {
	v, err := Parse(string(text))
	if err != nil {
		return err
	}
	*a = v
	return nil
}
