package staking

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LeJamon/goMIXR/internal/core/address"
	"github.com/LeJamon/goMIXR/internal/core/amount"
)

func addr(n byte) address.Address {
	var a address.Address
	a[19] = n
	return a
}

var (
	agentA = addr(0xa)
	agentB = addr(0xb)
	agentC = addr(0xc)
	agentD = addr(0xd)
)

func agentsOf(r *Ranking) []address.Address {
	var out []address.Address
	for _, e := range r.Entries() {
		out = append(out, e.Agent)
	}
	return out
}

func TestRankingOrderIsIndependentOfInsertionOrder(t *testing.T) {
	values := map[address.Address]uint64{agentA: 3, agentB: 6, agentC: 9}
	orders := [][]address.Address{
		{agentA, agentB, agentC},
		{agentA, agentC, agentB},
		{agentB, agentA, agentC},
		{agentB, agentC, agentA},
		{agentC, agentA, agentB},
		{agentC, agentB, agentA},
	}

	for _, order := range orders {
		t.Run(fmt.Sprintf("%x%x%x", order[0][19], order[1][19], order[2][19]), func(t *testing.T) {
			r := NewRanking()
			for _, a := range order {
				require.NoError(t, r.Insert(a, amount.New(values[a])))
			}
			assert.Equal(t, []address.Address{agentC, agentB, agentA}, agentsOf(r))
			assert.Equal(t, agentC, r.Highest())
			assert.Equal(t, agentA, r.Lowest())
			assert.Equal(t, 3, r.Len())
		})
	}
}

func TestRankingTiesAreFIFO(t *testing.T) {
	r := NewRanking()
	require.NoError(t, r.Insert(agentA, amount.New(5)))
	require.NoError(t, r.Insert(agentB, amount.New(1)))
	// Scanned from the head.
	require.NoError(t, r.Insert(agentC, amount.New(5)))
	// Scanned from the tail.
	require.NoError(t, r.Insert(agentD, amount.New(1)))

	assert.Equal(t, []address.Address{agentA, agentC, agentB, agentD}, agentsOf(r))
}

func TestRankingRejectsZeroAndDuplicates(t *testing.T) {
	r := NewRanking()
	assert.ErrorIs(t, r.Insert(agentA, amount.Zero()), ErrZeroRankValue)
	require.NoError(t, r.Insert(agentA, amount.New(1)))
	assert.ErrorIs(t, r.Insert(agentA, amount.New(2)), ErrAlreadyRanked)
}

func TestRankingDetachSoleAgent(t *testing.T) {
	r := NewRanking()
	require.NoError(t, r.Insert(agentA, amount.New(10)))

	require.NoError(t, r.Detach(agentA))
	assert.Equal(t, address.Zero, r.Highest())
	assert.Equal(t, address.Zero, r.Lowest())
	assert.Equal(t, 0, r.Len())
	assert.False(t, r.Contains(agentA))

	assert.ErrorIs(t, r.Detach(agentA), ErrAlreadyDetached)
	assert.ErrorIs(t, r.Detach(agentB), ErrAlreadyDetached)
}

func TestRankingDetachRelinksNeighbours(t *testing.T) {
	r := NewRanking()
	for i, a := range []address.Address{agentA, agentB, agentC, agentD} {
		require.NoError(t, r.Insert(a, amount.New(uint64(40-10*i))))
	}

	require.NoError(t, r.Detach(agentB))
	assert.Equal(t, []address.Address{agentA, agentC, agentD}, agentsOf(r))
	require.NoError(t, r.Detach(agentA))
	assert.Equal(t, agentC, r.Highest())
	require.NoError(t, r.Detach(agentD))
	assert.Equal(t, agentC, r.Lowest())
	assert.Equal(t, []address.Address{agentC}, agentsOf(r))

	// A detached agent can be ranked again.
	require.NoError(t, r.Insert(agentB, amount.New(50)))
	assert.Equal(t, []address.Address{agentB, agentC}, agentsOf(r))
}

func TestRankingReposition(t *testing.T) {
	r := NewRanking()
	require.NoError(t, r.Insert(agentA, amount.New(30)))
	require.NoError(t, r.Insert(agentB, amount.New(20)))
	require.NoError(t, r.Insert(agentC, amount.New(10)))

	require.NoError(t, r.Reposition(agentC, amount.New(35)))
	assert.Equal(t, []address.Address{agentC, agentA, agentB}, agentsOf(r))

	require.NoError(t, r.Reposition(agentC, amount.Zero()))
	assert.Equal(t, []address.Address{agentA, agentB}, agentsOf(r))

	require.NoError(t, r.Reposition(agentD, amount.New(25)))
	assert.Equal(t, []address.Address{agentA, agentD, agentB}, agentsOf(r))

	v, err := r.Value(agentD)
	require.NoError(t, err)
	assert.Equal(t, uint64(25), v.Uint64())
	_, err = r.Value(agentC)
	assert.ErrorIs(t, err, ErrNotInRanking)
}

func TestRankingPositionalQueries(t *testing.T) {
	r := NewRanking()
	require.NoError(t, r.Insert(agentA, amount.New(3)))
	require.NoError(t, r.Insert(agentB, amount.New(2)))
	require.NoError(t, r.Insert(agentC, amount.New(1)))

	tests := []struct {
		rank int
		want address.Address
		err  error
	}{
		{0, agentA, nil},
		{1, agentB, nil},
		{2, agentC, nil},
		{3, address.Zero, ErrNotInRanking},
		{-1, address.Zero, ErrNotInRanking},
	}
	for _, tt := range tests {
		got, err := r.RankOf(tt.rank)
		if tt.err != nil {
			assert.ErrorIs(t, err, tt.err)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}

	got, err := r.RankFrom(agentA, 2)
	require.NoError(t, err)
	assert.Equal(t, agentC, got)
	got, err = r.RankFrom(agentB, 0)
	require.NoError(t, err)
	assert.Equal(t, agentB, got)
	_, err = r.RankFrom(agentB, 2)
	assert.ErrorIs(t, err, ErrNotInRanking)
	_, err = r.RankFrom(agentD, 0)
	assert.ErrorIs(t, err, ErrNotInRanking)

	assert.Len(t, r.Top(2), 2)
	assert.Len(t, r.Top(10), 3)
	assert.Empty(t, r.Top(0))
}

func TestRankingCloneAndRestore(t *testing.T) {
	r := NewRanking()
	require.NoError(t, r.Insert(agentA, amount.New(3)))
	require.NoError(t, r.Insert(agentB, amount.New(3)))

	c := r.Clone()
	require.NoError(t, c.Detach(agentA))
	assert.Equal(t, []address.Address{agentA, agentB}, agentsOf(r))

	restored, err := RestoreRanking(r.Entries())
	require.NoError(t, err)
	assert.Equal(t, agentsOf(r), agentsOf(restored))

	_, err = RestoreRanking([]RankEntry{{agentA, amount.New(1)}, {agentB, amount.New(2)}})
	assert.ErrorIs(t, err, ErrRankOrder)
	_, err = RestoreRanking([]RankEntry{{agentA, amount.Zero()}})
	assert.ErrorIs(t, err, ErrZeroRankValue)
}
