package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(provisioningTotal, unsoldCodes)
}

var (
	provisioningTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "provisioning_ops_total",
			Help: "Provisioning operations by kind (add_product/add_code/top_up).",
		},
		[]string{"op"},
	)

	unsoldCodes = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "inventory_unsold_codes",
			Help: "Unsold codes per product, sampled by the stock watcher.",
		},
		[]string{"product_id"},
	)
)

func IncProvisioning(op string) {
	provisioningTotal.WithLabelValues(norm(op)).Inc()
}

func SetUnsoldCodes(productID string, n int) {
	unsoldCodes.WithLabelValues(productID).Set(float64(n))
}
