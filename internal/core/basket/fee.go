package basket

import (
	"github.com/LeJamon/goMIXR/internal/core/address"
	"github.com/LeJamon/goMIXR/internal/core/amount"
	"github.com/LeJamon/goMIXR/internal/core/fixed"
)

// Quote is the priced outcome of a prospective deposit or redemption. Amounts
// are in common units.
type Quote struct {
	Asset     address.Address `json:"asset"`
	Direction Direction       `json:"direction"`
	Amount    amount.Amount   `json:"amount"`
	Deviation fixed.Fixed     `json:"deviation"`
	Rate      fixed.Fixed     `json:"rate"`
	Fee       amount.Amount   `json:"fee"`
	Net       amount.Amount   `json:"net"`
}

// Curve evaluates the fee multiplier f(d) = 1 + ln((1+d)/(1-d)) for an
// adverse deviation d in (-1, 1). f(0) is exactly one, f grows without bound
// as d approaches 1 and turns negative for strongly corrective transactions.
func Curve(d fixed.Fixed) (fixed.Fixed, error) {
	one := fixed.One()
	if d.Cmp(one) >= 0 {
		return fixed.Zero(), ErrFeeCurveSaturated
	}
	if d.Cmp(one.Neg()) <= 0 {
		return fixed.Zero(), fixed.ErrDomain
	}
	num, err := fixed.Add(one, d)
	if err != nil {
		return fixed.Zero(), err
	}
	den, err := fixed.Sub(one, d)
	if err != nil {
		return fixed.Zero(), err
	}
	ratio, err := fixed.Div(num, den)
	if err != nil {
		return fixed.Zero(), err
	}
	ln, err := fixed.Ln(ratio)
	if err != nil {
		return fixed.Zero(), err
	}
	return fixed.Add(one, ln)
}

// adverse orients a deviation so that positive values always mean the
// transaction moves the asset away from its target in the direction the fee
// should discourage.
func adverse(deviation fixed.Fixed, dir Direction) fixed.Fixed {
	if dir == Redemption {
		return deviation.Neg()
	}
	return deviation
}

// Rate returns the fee rate for an adverse deviation d and a base fee.
func Rate(d, baseFee fixed.Fixed, params FeeParameters) (fixed.Fixed, error) {
	ceiling := params.DeviationCeiling
	if ceiling.IsZero() {
		ceiling = fixed.One()
	}
	if d.Cmp(ceiling) >= 0 {
		return fixed.Zero(), ErrFeeCurveSaturated
	}
	if d.Cmp(fixed.One().Neg()) <= 0 {
		return params.MinimumFee, nil
	}
	f, err := Curve(d)
	if err != nil {
		return fixed.Zero(), err
	}
	rate, err := fixed.Mul(baseFee, f)
	if err != nil {
		return fixed.Zero(), err
	}
	rate = fixed.Max(rate, params.MinimumFee)
	if rate.Cmp(fixed.One()) >= 0 {
		return fixed.Zero(), ErrFeeCurveSaturated
	}
	return rate, nil
}

// TransactionFee prices moving amt common units of an asset in the given
// direction. A zero amount costs nothing.
func TransactionFee(s *Snapshot, addr address.Address, baseFee fixed.Fixed, params FeeParameters, amt amount.Amount, dir Direction) (Quote, error) {
	q := Quote{Asset: addr, Direction: dir, Amount: amt, Fee: amount.Zero(), Net: amt}
	deviation, err := s.Deviation(addr, amt, dir)
	if err != nil {
		return Quote{}, err
	}
	q.Deviation = deviation
	if amt.IsZero() {
		return q, nil
	}
	if q.Rate, err = Rate(adverse(deviation, dir), baseFee, params); err != nil {
		return Quote{}, err
	}
	fee, err := fixed.MulInt(amt.Uint256(), q.Rate)
	if err != nil {
		return Quote{}, err
	}
	q.Fee = amount.FromUint256(fee)
	if q.Net, err = amt.Sub(q.Fee); err != nil {
		return Quote{}, err
	}
	return q, nil
}

// QuoteFee prices a transaction against the current basket without changing
// it. amt is in common units.
func (b *Basket) QuoteFee(addr address.Address, amt amount.Amount, dir Direction) (Quote, error) {
	a, err := b.asset(addr)
	if err != nil {
		return Quote{}, err
	}
	s, err := b.Snapshot()
	if err != nil {
		return Quote{}, err
	}
	return TransactionFee(s, addr, a.BaseFee(dir), b.params, amt, dir)
}
