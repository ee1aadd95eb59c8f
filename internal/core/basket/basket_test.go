package basket

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LeJamon/goMIXR/internal/core/address"
	"github.com/LeJamon/goMIXR/internal/core/amount"
	"github.com/LeJamon/goMIXR/internal/core/failure"
	"github.com/LeJamon/goMIXR/internal/core/fixed"
)

var (
	assetX = address.MustParse("0x00000000000000000000000000000000000000a1")
	assetY = address.MustParse("0x00000000000000000000000000000000000000b2")
	assetZ = address.MustParse("0x00000000000000000000000000000000000000c3")
)

func defaultParams() FeeParameters {
	return FeeParameters{
		MinimumFee:       fixed.MustParse("0.001"),
		DeviationCeiling: fixed.One(),
	}
}

func testAsset(addr address.Address, symbol string, decimals uint8) Asset {
	return Asset{
		Address:       addr,
		Symbol:        symbol,
		Decimals:      decimals,
		DepositFee:    fixed.MustParse("0.003"),
		RedemptionFee: fixed.MustParse("0.003"),
	}
}

func newTestBasket(t *testing.T) *Basket {
	t.Helper()
	b := New(18, defaultParams())
	require.NoError(t, b.Register(testAsset(assetX, "XUSD", 18)))
	require.NoError(t, b.Register(testAsset(assetY, "YUSD", 6)))
	return b
}

func TestRegister(t *testing.T) {
	b := newTestBasket(t)

	x, err := b.Asset(assetX)
	require.NoError(t, err)
	assert.True(t, x.Target.Equal(fixed.One()))
	y, err := b.Asset(assetY)
	require.NoError(t, err)
	assert.True(t, y.Target.IsZero())

	assert.ErrorIs(t, b.Register(testAsset(assetX, "XUSD", 18)), ErrAssetAlreadyRegistered)
	assert.ErrorIs(t, b.Register(testAsset(assetZ, "ZZZ", 37)), ErrInvalidDecimals)

	cheap := testAsset(assetZ, "ZZZ", 18)
	cheap.DepositFee = fixed.MustParse("0.0001")
	assert.ErrorIs(t, b.Register(cheap), ErrFeeOutOfRange)

	_, err = b.Asset(assetZ)
	assert.ErrorIs(t, err, ErrAssetNotFound)

	assets := b.Assets()
	require.Len(t, assets, 2)
	assert.Equal(t, "XUSD", assets[0].Symbol)
	assert.Equal(t, "YUSD", assets[1].Symbol)
}

func TestSetTargetProportions(t *testing.T) {
	half := fixed.MustParse("0.5")

	tests := []struct {
		name        string
		assets      []address.Address
		proportions []fixed.Fixed
		wantErr     error
	}{
		{"even split", []address.Address{assetX, assetY}, []fixed.Fixed{half, half}, nil},
		{"all to Y", []address.Address{assetY, assetX}, []fixed.Fixed{fixed.One(), fixed.Zero()}, nil},
		{"sum above one", []address.Address{assetX, assetY}, []fixed.Fixed{fixed.MustParse("0.6"), half}, ErrProportionSum},
		{"sum below one", []address.Address{assetX, assetY}, []fixed.Fixed{fixed.MustParse("0.4"), half}, ErrProportionSum},
		{"negative", []address.Address{assetX, assetY}, []fixed.Fixed{fixed.MustParse("1.5"), fixed.MustParse("-0.5")}, ErrProportionRange},
		{"missing asset", []address.Address{assetX}, []fixed.Fixed{fixed.One()}, ErrProportionAssets},
		{"duplicate asset", []address.Address{assetX, assetX}, []fixed.Fixed{half, half}, ErrProportionAssets},
		{"unknown asset", []address.Address{assetX, assetZ}, []fixed.Fixed{half, half}, ErrProportionAssets},
		{"length mismatch", []address.Address{assetX, assetY}, []fixed.Fixed{fixed.One()}, ErrProportionAssets},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newTestBasket(t)
			err := b.SetTargetProportions(tt.assets, tt.proportions)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				x, _ := b.Asset(assetX)
				y, _ := b.Asset(assetY)
				assert.True(t, x.Target.Equal(fixed.One()), "targets must be unchanged")
				assert.True(t, y.Target.IsZero(), "targets must be unchanged")
				return
			}
			require.NoError(t, err)
			sum := fixed.Zero()
			for _, a := range b.Assets() {
				sum, err = fixed.Add(sum, a.Target)
				require.NoError(t, err)
			}
			assert.True(t, sum.Equal(fixed.One()))
		})
	}
}

func TestSetTargetProportionsThirdsAreRejected(t *testing.T) {
	b := newTestBasket(t)
	require.NoError(t, b.Register(testAsset(assetZ, "ZUSD", 18)))

	third, err := fixed.NewFromFraction(1, 3)
	require.NoError(t, err)
	err = b.SetTargetProportions([]address.Address{assetX, assetY, assetZ}, []fixed.Fixed{third, third, third})
	assert.ErrorIs(t, err, ErrProportionSum)

	last, err := fixed.Sub(fixed.One(), third)
	require.NoError(t, err)
	last, err = fixed.Sub(last, third)
	require.NoError(t, err)
	require.NoError(t, b.SetTargetProportions([]address.Address{assetX, assetY, assetZ}, []fixed.Fixed{third, third, last}))
}

func TestFeeGovernance(t *testing.T) {
	b := newTestBasket(t)

	require.NoError(t, b.SetBaseFee(assetY, Redemption, fixed.MustParse("0.01")))
	y, _ := b.Asset(assetY)
	assert.Equal(t, "0.01", y.BaseFee(Redemption).String())
	assert.Equal(t, "0.003", y.BaseFee(Deposit).String())

	assert.ErrorIs(t, b.SetBaseFee(assetY, Deposit, fixed.MustParse("0.0005")), ErrFeeOutOfRange)
	assert.ErrorIs(t, b.SetBaseFee(assetY, Deposit, fixed.MustParse("1.5")), ErrFeeOutOfRange)
	assert.ErrorIs(t, b.SetBaseFee(assetZ, Deposit, fixed.MustParse("0.01")), ErrAssetNotFound)

	assert.ErrorIs(t, b.SetMinimumFee(fixed.MustParse("0.005")), ErrFeeOutOfRange)
	require.NoError(t, b.SetMinimumFee(fixed.MustParse("0.002")))
	assert.Equal(t, "0.002", b.Params().MinimumFee.String())

	assert.ErrorIs(t, b.SetDeviationCeiling(fixed.Zero()), ErrCeilingOutOfRange)
	assert.ErrorIs(t, b.SetDeviationCeiling(fixed.MustParse("1.01")), ErrCeilingOutOfRange)
	require.NoError(t, b.SetDeviationCeiling(fixed.MustParse("0.25")))
}

func TestUnitConversion(t *testing.T) {
	y := testAsset(assetY, "YUSD", 6)
	common, err := y.ToCommon(amount.New(1_500_000), 18)
	require.NoError(t, err)
	assert.Equal(t, "1500000000000000000", common.String())

	native, err := y.FromCommon(amount.MustParse("1500000999999999999"), 18)
	require.NoError(t, err)
	assert.Equal(t, "1500000", native.String())

	fine := testAsset(assetZ, "FINE", 24)
	common, err = fine.ToCommon(amount.MustParse("1000000000000000000000123"), 18)
	require.NoError(t, err)
	assert.Equal(t, "1000000000000000000", common.String())
}

func TestClone(t *testing.T) {
	b := newTestBasket(t)
	c := b.Clone()
	require.NoError(t, c.SetTargetProportions([]address.Address{assetX, assetY},
		[]fixed.Fixed{fixed.MustParse("0.5"), fixed.MustParse("0.5")}))
	_, err := c.Deposit(assetX, amount.MustParse("1000000000000000000"))
	require.NoError(t, err)

	x, _ := b.Asset(assetX)
	assert.True(t, x.Target.Equal(fixed.One()))
	assert.True(t, x.Balance.IsZero())
	assert.True(t, b.Supply().IsZero())
}

func TestDepositAndRedeem(t *testing.T) {
	b := newTestBasket(t)
	half := fixed.MustParse("0.5")
	require.NoError(t, b.SetTargetProportions([]address.Address{assetX, assetY}, []fixed.Fixed{half, half}))

	thousand := amount.MustParse("1000000000000000000000")

	r, err := b.Deposit(assetX, thousand)
	require.NoError(t, err)
	assert.True(t, r.Deviation.Equal(half))
	assert.True(t, r.Rate.GreaterThan(fixed.MustParse("0.003")))
	total, err := r.Net.Add(r.Fee)
	require.NoError(t, err)
	assert.True(t, total.Equal(thousand))
	assert.True(t, b.Supply().Equal(thousand))

	// Y has 6 decimals; 1000 YUSD brings the basket exactly to target.
	r, err = b.Deposit(assetY, amount.New(1_000_000_000))
	require.NoError(t, err)
	assert.True(t, r.Deviation.IsZero())
	assert.Equal(t, "0.003", r.Rate.String())
	assert.Equal(t, "3000000000000000000", r.Fee.String())
	assert.Equal(t, "2000000000000000000000", b.Supply().String())

	ten := amount.MustParse("10000000000000000000")
	r, err = b.Redeem(assetY, ten)
	require.NoError(t, err)
	assert.Equal(t, -1, r.Deviation.Sign())
	assert.True(t, r.Rate.GreaterThan(fixed.MustParse("0.003")))
	wantNative, err := r.Net.Div(amount.PowerOfTen(12))
	require.NoError(t, err)
	assert.True(t, r.Native.Equal(wantNative))

	y, _ := b.Asset(assetY)
	wantBalance, err := amount.New(1_000_000_000).Sub(r.Native)
	require.NoError(t, err)
	assert.True(t, y.Balance.Equal(wantBalance))
	paidOut, err := r.Native.Mul(amount.PowerOfTen(12))
	require.NoError(t, err)
	wantDust, err := r.Net.Sub(paidOut)
	require.NoError(t, err)
	assert.True(t, r.Dust.Equal(wantDust))
	wantSupply, err := amount.MustParse("2000000000000000000000").Sub(paidOut)
	require.NoError(t, err)
	assert.True(t, b.Supply().Equal(wantSupply))

	_, err = b.Redeem(assetY, amount.MustParse("5000000000000000000000"))
	assert.ErrorIs(t, err, ErrInsufficientReserve)
	_, err = b.Deposit(assetY, amount.Zero())
	assert.ErrorIs(t, err, ErrZeroAmount)
	_, err = b.Deposit(assetZ, ten)
	assert.ErrorIs(t, err, ErrAssetNotFound)
}

func TestDepositIntoTargetlessAssetSaturates(t *testing.T) {
	b := newTestBasket(t)

	// Y has target 0; an empty basket would become 100% Y.
	_, err := b.Deposit(assetY, amount.New(1_000_000))
	assert.ErrorIs(t, err, ErrFeeCurveSaturated)
	assert.True(t, b.Supply().IsZero())
}

func TestRedeemDust(t *testing.T) {
	b := newTestBasket(t)
	half := fixed.MustParse("0.5")
	require.NoError(t, b.SetTargetProportions([]address.Address{assetX, assetY}, []fixed.Fixed{half, half}))
	_, err := b.Deposit(assetX, amount.MustParse("1000000000000000000000"))
	require.NoError(t, err)
	_, err = b.Deposit(assetY, amount.New(1_000_000_000))
	require.NoError(t, err)

	// One YUSD unit is 10^12 common units.
	supply := b.Supply()
	_, err = b.Redeem(assetY, amount.New(900_000_000_000))
	assert.ErrorIs(t, err, ErrRedemptionTooSmall)
	assert.True(t, b.Supply().Equal(supply))

	r, err := b.Redeem(assetY, amount.MustParse("1500000000000"))
	require.NoError(t, err)
	assert.Equal(t, "1", r.Native.String())
	burned, err := r.Net.Sub(r.Dust)
	require.NoError(t, err)
	assert.Equal(t, "1000000000000", burned.String())
	assert.True(t, r.Dust.IsPositive())
	wantSupply, err := supply.Sub(burned)
	require.NoError(t, err)
	assert.True(t, b.Supply().Equal(wantSupply))
}

func TestParseDirection(t *testing.T) {
	tests := []struct {
		in   string
		want Direction
		err  error
	}{
		{"deposit", Deposit, nil},
		{"redemption", Redemption, nil},
		{"redeem", Redemption, nil},
		{"sideways", Deposit, ErrUnknownDirection},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDirection(tt.in)
			if tt.err != nil {
				require.ErrorIs(t, err, tt.err)
				assert.Equal(t, failure.KindPolicyViolation, failure.KindOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
