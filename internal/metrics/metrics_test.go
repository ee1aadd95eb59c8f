package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/LeJamon/goMIXR/internal/core/amount"
	"github.com/LeJamon/goMIXR/internal/core/basket"
	"github.com/LeJamon/goMIXR/internal/core/ledger"
	"github.com/LeJamon/goMIXR/internal/core/payout"
)

func TestTokens(t *testing.T) {
	assert.Equal(t, 1.5, Tokens(amount.MustParse("1500000000000000000"), 18))
	assert.Equal(t, 42.0, Tokens(amount.New(42), 0))
}

func TestRecordEvent(t *testing.T) {
	before := testutil.ToFloat64(OperationsTotal.WithLabelValues("deposit", "ok"))
	fees := testutil.ToFloat64(FeesCollected.WithLabelValues("deposit"))

	RecordEvent(ledger.Event{
		Seq: 7,
		Op:  ledger.OpDeposit,
		Receipt: &basket.Receipt{Quote: basket.Quote{
			Direction: basket.Deposit,
			Fee:       amount.MustParse("3000000000000000000"),
		}},
	}, 18)

	assert.Equal(t, before+1, testutil.ToFloat64(OperationsTotal.WithLabelValues("deposit", "ok")))
	assert.Equal(t, fees+3, testutil.ToFloat64(FeesCollected.WithLabelValues("deposit")))
	assert.Equal(t, 7.0, testutil.ToFloat64(LedgerSeq))

	cycles := testutil.ToFloat64(PayoutsTotal)
	RecordEvent(ledger.Event{Seq: 8, Op: ledger.OpPayoutFees, Payout: &payout.Report{Residue: amount.New(0)}}, 18)
	assert.Equal(t, cycles+1, testutil.ToFloat64(PayoutsTotal))
	assert.Equal(t, 0.0, testutil.ToFloat64(PayoutResidue))
}

func TestObserveState(t *testing.T) {
	ObserveState(amount.MustParse("2000000000000000000"), amount.MustParse("500000000000000000"), 3, 18)
	assert.Equal(t, 2.0, testutil.ToFloat64(Supply))
	assert.Equal(t, 0.5, testutil.ToFloat64(FeePool))
	assert.Equal(t, 3.0, testutil.ToFloat64(RankedAgents))
}
