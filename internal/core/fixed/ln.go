package fixed

import (
	"github.com/holiman/uint256"
)

// ln2Raw is ln(2) * 10^36, rounded to nearest.
var ln2Raw = uint256.MustFromDecimal("693147180559945309417232121458176568")

// MaxExpArgument is the largest argument accepted by Exp; e^93 still fits the
// representable range while e^94 does not.
const MaxExpArgument = 93

// minExpArgument is the point below which e^x rounds to zero at 36 digits.
const minExpArgument = -84

// Ln2 returns ln(2).
func Ln2() Fixed { return FromRaw(ln2Raw) }

// Ln returns the natural logarithm of x.
//
// x is reduced to 2^k * m with m in [1, 2), then ln(m) is evaluated with the
// series 2 * sum(z^(2n+1) / (2n+1)) where z = (m-1)/(m+1) < 1/3, stopping when
// the next term vanishes at 36 digits.
func Ln(x Fixed) (Fixed, error) {
	if x.Sign() <= 0 {
		return Fixed{}, ErrDomain
	}

	m := x.Raw()
	k := int64(0)
	twoScale := new(uint256.Int).Lsh(scale, 1)
	for m.Lt(scale) {
		m.Lsh(m, 1)
		k--
	}
	for !m.Lt(twoScale) {
		m.Rsh(m, 1)
		k++
	}

	num := new(uint256.Int).Sub(m, scale)
	den := new(uint256.Int).Add(m, scale)
	z, _ := new(uint256.Int).MulDivOverflow(num, scale, den)
	z2, _ := new(uint256.Int).MulDivOverflow(z, z, scale)

	sum := new(uint256.Int)
	term := z.Clone()
	for n := uint64(1); !term.IsZero(); n += 2 {
		sum.Add(sum, new(uint256.Int).Div(term, uint256.NewInt(n)))
		term.MulDivOverflow(term, z2, scale)
	}
	sum.Lsh(sum, 1)
	lnM := fromMag(sum, false)

	if k == 0 {
		return lnM, nil
	}
	kLn2 := fromMag(new(uint256.Int).Mul(ln2Raw, uint256.NewInt(uint64(abs64(k)))), k < 0)
	return Add(kLn2, lnM)
}

// Exp returns e^x.
//
// x is split into k*ln2 + r with |r| < ln2; e^r is summed as a Taylor series
// and the result shifted by k bits. Arguments above MaxExpArgument overflow,
// arguments far below zero round to 0.
func Exp(x Fixed) (Fixed, error) {
	if x.GreaterThan(NewFromInt(MaxExpArgument)) {
		return Fixed{}, ErrOverflow
	}
	if x.LessThan(NewFromInt(minExpArgument)) {
		return Zero(), nil
	}

	q := new(uint256.Int).Div(x.mag(), ln2Raw)
	k := int64(q.Uint64())
	if x.Sign() < 0 {
		k = -k
	}
	kLn2 := fromMag(new(uint256.Int).Mul(ln2Raw, q), x.Sign() < 0)
	r, err := Sub(x, kLn2)
	if err != nil {
		return Fixed{}, err
	}

	sum := One()
	term := One()
	for n := uint64(1); ; n++ {
		term, err = Mul(term, r)
		if err != nil {
			return Fixed{}, err
		}
		term = divSmall(term, n)
		if term.IsZero() {
			break
		}
		if sum, err = Add(sum, term); err != nil {
			return Fixed{}, err
		}
	}

	m := sum.Raw()
	if k >= 0 {
		if uint64(m.BitLen())+uint64(k) > 254 {
			return Fixed{}, ErrOverflow
		}
		m.Lsh(m, uint(k))
	} else {
		m.Rsh(m, uint(-k))
	}
	return fromMag(m, false), nil
}

func abs64(n int64) int64 {
	if n < 0 {
		return -n
	}
	return n
}
