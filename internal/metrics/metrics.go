// Package metrics exposes the daemon's Prometheus series.
package metrics

import (
	"math/big"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/LeJamon/goMIXR/internal/core/amount"
	"github.com/LeJamon/goMIXR/internal/core/ledger"
)

var (
	BuildInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "mixrd_build_info",
			Help: "Build information of mixrd",
		},
		[]string{"version", "commit"},
	)

	OperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mixrd_operations_total",
			Help: "Ledger operations by outcome",
		},
		[]string{"op", "result"},
	)

	LedgerSeq = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "mixrd_ledger_seq",
			Help: "Sequence of the last committed operation",
		},
	)

	Supply = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "mixrd_mixr_supply",
			Help: "MIXR in circulation, in whole tokens",
		},
	)

	FeePool = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "mixrd_fee_pool",
			Help: "MIXR awaiting payout, in whole tokens",
		},
	)

	RankedAgents = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "mixrd_ranked_agents",
			Help: "Agents with a positive aggregate stake",
		},
	)

	FeesCollected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mixrd_fees_collected_total",
			Help: "MIXR collected as fees, in whole tokens",
		},
		[]string{"direction"},
	)

	PayoutsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mixrd_payout_cycles_total",
			Help: "Completed payout cycles",
		},
	)

	PayoutResidue = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "mixrd_payout_residue",
			Help: "Rounding residue carried by the last payout cycle, in whole tokens",
		},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mixrd_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mixrd_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	WebsocketClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "mixrd_websocket_clients",
			Help: "Connected event stream clients",
		},
	)
)

// Tokens converts a common-unit amount to whole tokens for display.
// Precision beyond float64 is lost.
func Tokens(a amount.Amount, decimals uint8) float64 {
	f := new(big.Float).SetInt(a.Uint256().ToBig())
	scale := new(big.Float).SetInt(amount.PowerOfTen(uint(decimals)).Uint256().ToBig())
	v, _ := f.Quo(f, scale).Float64()
	return v
}

// RecordEvent updates counters for a committed operation.
func RecordEvent(ev ledger.Event, decimals uint8) {
	OperationsTotal.WithLabelValues(string(ev.Op), "ok").Inc()
	LedgerSeq.Set(float64(ev.Seq))
	if ev.Receipt != nil {
		FeesCollected.WithLabelValues(ev.Receipt.Direction.String()).Add(Tokens(ev.Receipt.Fee, decimals))
	}
	if ev.Payout != nil {
		PayoutsTotal.Inc()
		PayoutResidue.Set(Tokens(ev.Payout.Residue, decimals))
	}
}

// RecordRejection counts an operation that failed.
func RecordRejection(op ledger.Op) {
	OperationsTotal.WithLabelValues(string(op), "rejected").Inc()
}

// ObserveState refreshes the gauges derived from the ledger state.
func ObserveState(supply, pool amount.Amount, ranked int, decimals uint8) {
	Supply.Set(Tokens(supply, decimals))
	FeePool.Set(Tokens(pool, decimals))
	RankedAgents.Set(float64(ranked))
}

// Middleware returns a chi middleware that records HTTP metrics.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		path := chi.RouteContext(r.Context()).RoutePattern()
		if path == "" {
			path = r.URL.Path
		}
		status := strconv.Itoa(ww.Status())
		HTTPRequestsTotal.WithLabelValues(r.Method, path, status).Inc()
		HTTPRequestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
	})
}
