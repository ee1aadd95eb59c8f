package payout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LeJamon/goMIXR/internal/core/address"
	"github.com/LeJamon/goMIXR/internal/core/amount"
	"github.com/LeJamon/goMIXR/internal/core/staking"
)

func addr(n byte) address.Address {
	var a address.Address
	a[19] = n
	return a
}

var (
	agentA  = addr(0xa)
	agentB  = addr(0xb)
	agentC  = addr(0xc)
	backer1 = addr(0x71)
	backer2 = addr(0x72)
	backer3 = addr(0x73)
)

type unlimited struct{}

func (unlimited) BalanceOf(address.Address) amount.Amount { return amount.New(1 << 40) }

// testLedger ranks C(9) > B(6) > A(3). A is backed 1:2 by two backers.
func testLedger(t *testing.T) *staking.Ledger {
	t.Helper()
	l := staking.NewLedger(amount.New(1))
	nom := func(name string) *staking.Nomination { return &staking.Nomination{Name: name} }
	require.NoError(t, l.CreateStake(agentA, backer1, amount.New(1), nom("a"), unlimited{}))
	require.NoError(t, l.CreateStake(agentA, backer2, amount.New(2), nil, unlimited{}))
	require.NoError(t, l.CreateStake(agentB, backer2, amount.New(6), nom("b"), unlimited{}))
	require.NoError(t, l.CreateStake(agentC, backer3, amount.New(9), nom("c"), unlimited{}))
	return l
}

func TestCalculateR(t *testing.T) {
	tests := []struct {
		ranked, want int
	}{
		{0, 0},
		{1, 1},
		{9, 9},
		{10, 10},
		{12, 10},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CalculateR(tt.ranked, DefaultRewardCeiling), "ranked=%d", tt.ranked)
	}
}

func TestStakePayout(t *testing.T) {
	got, err := StakePayout(amount.New(7), amount.New(5), amount.New(3))
	require.NoError(t, err)
	assert.Equal(t, uint64(4), got.Uint64())

	got, err = StakePayout(amount.New(100), amount.New(3), amount.New(3))
	require.NoError(t, err)
	assert.Equal(t, uint64(100), got.Uint64())

	_, err = StakePayout(amount.New(7), amount.Zero(), amount.New(3))
	assert.ErrorIs(t, err, ErrDivideByZero)

	// The intermediate product exceeds 256 bits.
	huge := amount.MustParse("100000000000000000000000000000000000000000000000000000000000000000000000")
	got, err = StakePayout(huge, huge, huge)
	require.NoError(t, err)
	assert.True(t, got.Equal(huge))
}

func TestPayFeesForAgent(t *testing.T) {
	l := testLedger(t)

	ap, err := PayFeesForAgent(l, amount.New(16), agentA)
	require.NoError(t, err)
	assert.Equal(t, uint64(15), ap.Paid.Uint64())
	require.Len(t, ap.Credits, 2)
	assert.Equal(t, Credit{Agent: agentA, Backer: backer1, Amount: amount.New(5)}, ap.Credits[0])
	assert.Equal(t, Credit{Agent: agentA, Backer: backer2, Amount: amount.New(10)}, ap.Credits[1])

	ap, err = PayFeesForAgent(l, amount.Zero(), agentA)
	require.NoError(t, err)
	assert.True(t, ap.Paid.IsZero())
	assert.Empty(t, ap.Credits)

	_, err = PayFeesForAgent(l, amount.New(16), addr(0xee))
	assert.ErrorIs(t, err, staking.ErrAgentNotFound)
}

func TestPayoutFees(t *testing.T) {
	l := testLedger(t)

	report, err := PayoutFees(l, amount.New(100), DefaultRewardCeiling)
	require.NoError(t, err)
	assert.Equal(t, 3, report.R)
	assert.Equal(t, uint64(18), report.TopStake.Uint64())
	require.Len(t, report.Agents, 3)

	// C: floor(100*9/18)=50, B: floor(100*6/18)=33, A: floor(100*3/18)=16
	// split 5 + 10 across its backers.
	assert.Equal(t, agentC, report.Agents[0].Agent)
	assert.Equal(t, uint64(50), report.Agents[0].Paid.Uint64())
	assert.Equal(t, uint64(33), report.Agents[1].Paid.Uint64())
	assert.Equal(t, uint64(16), report.Agents[2].Share.Uint64())
	assert.Equal(t, uint64(15), report.Agents[2].Paid.Uint64())

	assert.Equal(t, uint64(98), report.Paid.Uint64())
	assert.Equal(t, uint64(2), report.Residue.Uint64())
	assert.Len(t, report.Credits(), 4)

	sum, err := report.Paid.Add(report.Residue)
	require.NoError(t, err)
	assert.True(t, sum.Equal(report.Pool), "no value may be lost")
}

func TestPayoutFeesWeighsOnlyTheRewardSet(t *testing.T) {
	l := testLedger(t)

	report, err := PayoutFees(l, amount.New(100), 2)
	require.NoError(t, err)
	assert.Equal(t, 2, report.R)
	assert.Equal(t, uint64(15), report.TopStake.Uint64())
	require.Len(t, report.Agents, 2)
	assert.Equal(t, uint64(60), report.Agents[0].Paid.Uint64())
	assert.Equal(t, uint64(40), report.Agents[1].Paid.Uint64())
	assert.True(t, report.Residue.IsZero())

	for _, c := range report.Credits() {
		assert.NotEqual(t, agentA, c.Agent)
	}
}

func TestPayoutFeesEdgeCases(t *testing.T) {
	l := testLedger(t)

	_, err := PayoutFees(l, amount.New(100), 0)
	assert.ErrorIs(t, err, ErrInvalidCeiling)

	report, err := PayoutFees(l, amount.Zero(), DefaultRewardCeiling)
	require.NoError(t, err)
	assert.True(t, report.Paid.IsZero())
	assert.Empty(t, report.Agents)

	empty := staking.NewLedger(amount.New(1))
	report, err = PayoutFees(empty, amount.New(100), DefaultRewardCeiling)
	require.NoError(t, err)
	assert.Equal(t, 0, report.R)
	assert.Equal(t, uint64(100), report.Residue.Uint64())
}
