package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		purchasesTotal,
		purchaseRetriesTotal,
		purchaseDuration,
		revenueTotal,
	)
}

var (
	purchasesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "purchases_total",
			Help: "Purchase attempts by outcome (committed/out_of_stock/insufficient_funds/product_not_found/internal_error).",
		},
		[]string{"outcome"},
	)

	purchaseRetriesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "purchase_tx_retries_total",
			Help: "Purchase transactions retried after a transient storage conflict.",
		},
	)

	purchaseDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "purchase_duration_seconds",
			Help:    "Wall time of committed purchases, including retries.",
			Buckets: prometheus.DefBuckets,
		},
	)

	revenueTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "purchase_revenue_credits_total",
			Help: "Total credits debited by committed purchases.",
		},
	)
)

func IncPurchase(outcome string) {
	purchasesTotal.WithLabelValues(norm(outcome)).Inc()
}

func IncPurchaseRetry() {
	purchaseRetriesTotal.Inc()
}

func ObservePurchaseDuration(d time.Duration) {
	purchaseDuration.Observe(d.Seconds())
}

func AddRevenue(credits int) {
	revenueTotal.Add(float64(credits))
}
