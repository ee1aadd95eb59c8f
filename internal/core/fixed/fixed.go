// Package fixed implements signed fixed-point numbers with 36 decimal digits.
//
// A Fixed is a 256-bit two's complement integer holding value * 10^36. All
// operations are checked: results that leave the representable range return
// ErrOverflow instead of wrapping, and rounding is always toward zero.
package fixed

import (
	"github.com/holiman/uint256"
)

// Digits is the number of fractional decimal digits.
const Digits = 36

var (
	// scale is 10^Digits, the raw value of One.
	scale = new(uint256.Int).Exp(uint256.NewInt(10), uint256.NewInt(Digits))

	// maxInt256 is the largest raw magnitude a Fixed may hold.
	maxInt256 = new(uint256.Int).Sub(new(uint256.Int).Lsh(uint256.NewInt(1), 255), uint256.NewInt(1))

	// maxFixedAdd bounds the operands of Add and Sub so that the sum of two
	// operands never leaves the signed range.
	maxFixedAdd = new(uint256.Int).Rsh(maxInt256, 1)

	// maxNewFixed is the largest integer convertible to a Fixed.
	maxNewFixed = new(uint256.Int).Div(maxInt256, scale)

	// maxFixedDivisor is the largest divisor magnitude accepted by Div (raw
	// 10^72, i.e. the value 10^36). Larger divisors would leave no
	// significant digit in the quotient.
	maxFixedDivisor = new(uint256.Int).Mul(scale, scale)
)

// Fixed is a signed fixed-point number. The zero value is 0.
type Fixed struct {
	v uint256.Int
}

// Zero returns 0.
func Zero() Fixed { return Fixed{} }

// One returns 1.
func One() Fixed {
	var f Fixed
	f.v.Set(scale)
	return f
}

// MaxNewFixed returns the largest integer that NewFromUint256 accepts.
func MaxNewFixed() *uint256.Int { return maxNewFixed.Clone() }

// MaxFixedAdd returns the largest operand magnitude accepted by Add and Sub.
func MaxFixedAdd() Fixed {
	var f Fixed
	f.v.Set(maxFixedAdd)
	return f
}

// NewFromInt converts an integer. Every int64 is representable.
func NewFromInt(n int64) Fixed {
	neg := n < 0
	m := uint64(n)
	if neg {
		m = uint64(-n)
	}
	mag := new(uint256.Int).Mul(uint256.NewInt(m), scale)
	return fromMag(mag, neg)
}

// NewFromUint256 converts a non-negative 256-bit integer.
func NewFromUint256(n *uint256.Int) (Fixed, error) {
	if n.Gt(maxNewFixed) {
		return Fixed{}, ErrOverflow
	}
	return fromMag(new(uint256.Int).Mul(n, scale), false), nil
}

// NewFromFraction returns num/den.
func NewFromFraction(num, den int64) (Fixed, error) {
	if den == 0 {
		return Fixed{}, ErrDivideByZero
	}
	return Div(NewFromInt(num), NewFromInt(den))
}

// FromRatio returns num/den for unsigned integers, rounded toward zero.
func FromRatio(num, den *uint256.Int) (Fixed, error) {
	if den.IsZero() {
		return Fixed{}, ErrDivideByZero
	}
	m, overflow := new(uint256.Int).MulDivOverflow(num, scale, den)
	if overflow || m.Gt(maxInt256) {
		return Fixed{}, ErrOverflow
	}
	return fromMag(m, false), nil
}

// FromRaw interprets raw as a two's complement scaled value.
func FromRaw(raw *uint256.Int) Fixed {
	var f Fixed
	f.v.Set(raw)
	return f
}

// Raw returns a copy of the scaled two's complement representation.
func (f Fixed) Raw() *uint256.Int { return f.v.Clone() }

func fromMag(m *uint256.Int, neg bool) Fixed {
	var f Fixed
	if neg {
		f.v.Neg(m)
	} else {
		f.v.Set(m)
	}
	return f
}

func (f Fixed) mag() *uint256.Int { return new(uint256.Int).Abs(&f.v) }

// Sign returns -1, 0 or +1.
func (f Fixed) Sign() int { return f.v.Sign() }

// IsZero reports whether f is 0.
func (f Fixed) IsZero() bool { return f.v.IsZero() }

// Neg returns -f.
func (f Fixed) Neg() Fixed {
	var r Fixed
	r.v.Neg(&f.v)
	return r
}

// Abs returns |f|.
func (f Fixed) Abs() Fixed { return fromMag(f.mag(), false) }

// Cmp compares f and g and returns -1, 0 or +1.
func (f Fixed) Cmp(g Fixed) int {
	switch {
	case f.v.Slt(&g.v):
		return -1
	case f.v.Sgt(&g.v):
		return 1
	default:
		return 0
	}
}

// Equal reports whether f == g.
func (f Fixed) Equal(g Fixed) bool { return f.v.Eq(&g.v) }

// LessThan reports whether f < g.
func (f Fixed) LessThan(g Fixed) bool { return f.Cmp(g) < 0 }

// GreaterThan reports whether f > g.
func (f Fixed) GreaterThan(g Fixed) bool { return f.Cmp(g) > 0 }

// Max returns the larger of a and b.
func Max(a, b Fixed) Fixed {
	if a.Cmp(b) >= 0 {
		return a
	}
	return b
}

// Add returns a+b. Both operands must lie within ±MaxFixedAdd.
func Add(a, b Fixed) (Fixed, error) {
	if a.mag().Gt(maxFixedAdd) || b.mag().Gt(maxFixedAdd) {
		return Fixed{}, ErrOverflow
	}
	var r Fixed
	r.v.Add(&a.v, &b.v)
	return r, nil
}

// Sub returns a-b. Both operands must lie within ±MaxFixedAdd.
func Sub(a, b Fixed) (Fixed, error) {
	return Add(a, b.Neg())
}

// Mul returns a*b rounded toward zero.
func Mul(a, b Fixed) (Fixed, error) {
	m, overflow := new(uint256.Int).MulDivOverflow(a.mag(), b.mag(), scale)
	if overflow || m.Gt(maxInt256) {
		return Fixed{}, ErrOverflow
	}
	return fromMag(m, a.Sign()*b.Sign() < 0), nil
}

// Div returns a/b rounded toward zero.
func Div(a, b Fixed) (Fixed, error) {
	if b.IsZero() {
		return Fixed{}, ErrDivideByZero
	}
	bm := b.mag()
	if bm.Gt(maxFixedDivisor) {
		return Fixed{}, ErrOverflow
	}
	m, overflow := new(uint256.Int).MulDivOverflow(a.mag(), scale, bm)
	if overflow || m.Gt(maxInt256) {
		return Fixed{}, ErrOverflow
	}
	return fromMag(m, a.Sign()*b.Sign() < 0), nil
}

// Reciprocal returns 1/f.
func Reciprocal(f Fixed) (Fixed, error) {
	return Div(One(), f)
}

// IntegerPart returns f with its fractional digits dropped, toward zero.
func (f Fixed) IntegerPart() Fixed {
	m := f.mag()
	m.Div(m, scale)
	m.Mul(m, scale)
	return fromMag(m, f.Sign() < 0)
}

// FractionalPart returns f - f.IntegerPart(); it carries the sign of f.
func (f Fixed) FractionalPart() Fixed {
	m := f.mag()
	m.Mod(m, scale)
	return fromMag(m, f.Sign() < 0)
}

// MulInt returns floor(n * f) for a non-negative f.
func MulInt(n *uint256.Int, f Fixed) (*uint256.Int, error) {
	if f.Sign() < 0 {
		return nil, ErrDomain
	}
	r, overflow := new(uint256.Int).MulDivOverflow(n, &f.v, scale)
	if overflow {
		return nil, ErrOverflow
	}
	return r, nil
}

// divSmall divides f by a positive machine integer, toward zero.
func divSmall(f Fixed, n uint64) Fixed {
	m := f.mag()
	m.Div(m, uint256.NewInt(n))
	return fromMag(m, f.Sign() < 0)
}
