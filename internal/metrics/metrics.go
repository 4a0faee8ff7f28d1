// Package metrics exposes Prometheus instrumentation for the HTTP server and
// the balance engine.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	requestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "colocash",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route and status.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	expensesRecorded = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "colocash",
		Name:      "expenses_recorded_total",
		Help:      "Expenses created since process start.",
	})

	paymentsResolved = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "colocash",
			Name:      "payments_resolved_total",
			Help:      "Payments moved to a terminal state, by status.",
		},
		[]string{"status"},
	)

	balanceComputations = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "colocash",
		Name:      "balance_computations_total",
		Help:      "Balance aggregations performed.",
	})

	unbalancedLedgers = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "colocash",
		Name:      "unbalanced_ledgers_total",
		Help:      "Simplification requests refused because net balances did not sum to zero.",
	})

	simplifiedTransfers = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "colocash",
		Name:      "simplified_transfers",
		Help:      "Transfer count of the most recent settlement plan.",
	})
)

// ObserveRequest records one HTTP request observation.
func ObserveRequest(method, route string, status int, duration time.Duration) {
	requestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(duration.Seconds())
}

// ExpenseRecorded counts a created expense.
func ExpenseRecorded() { expensesRecorded.Inc() }

// PaymentResolved counts a payment reaching the given terminal status.
func PaymentResolved(status string) { paymentsResolved.WithLabelValues(status).Inc() }

// BalanceComputed counts a balance aggregation.
func BalanceComputed() { balanceComputations.Inc() }

// UnbalancedLedger counts a refused simplification.
func UnbalancedLedger() { unbalancedLedgers.Inc() }

// SimplifiedPlan records the size of a freshly computed settlement plan.
func SimplifiedPlan(transfers int) { simplifiedTransfers.Set(float64(transfers)) }

// Handler returns the Prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
