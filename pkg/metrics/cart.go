package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CartMetrics records cart mutation and checkout outcomes.
type CartMetrics struct {
	mutations         *prometheus.CounterVec
	checkouts         *prometheus.CounterVec
	reconcileDuration prometheus.Histogram
}

// NewCartMetrics registers the cart metrics on the provided registerer.
func NewCartMetrics(reg prometheus.Registerer) *CartMetrics {
	if reg == nil {
		return &CartMetrics{}
	}
	mutations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_mutations_total",
		Help: "Cart mutations by operation.",
	}, []string{"op"})
	checkouts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkouts_total",
		Help: "Checkout attempts by outcome.",
	}, []string{"outcome"})
	reconcileDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cart_reconcile_duration_seconds",
		Help:    "Duration of local-to-remote cart reconciliation.",
		Buckets: prometheus.DefBuckets,
	})
	reg.MustRegister(mutations, checkouts, reconcileDuration)
	return &CartMetrics{
		mutations:         mutations,
		checkouts:         checkouts,
		reconcileDuration: reconcileDuration,
	}
}

// IncMutation increments the mutation counter for the named operation.
func (c *CartMetrics) IncMutation(op string) {
	if c == nil || c.mutations == nil {
		return
	}
	c.mutations.WithLabelValues(normalizeLabel(op)).Inc()
}

// IncCheckout increments the checkout counter for the named outcome.
func (c *CartMetrics) IncCheckout(outcome string) {
	if c == nil || c.checkouts == nil {
		return
	}
	c.checkouts.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// ObserveReconcile records the duration of one reconciliation pass.
func (c *CartMetrics) ObserveReconcile(duration time.Duration) {
	if c == nil || c.reconcileDuration == nil {
		return
	}
	c.reconcileDuration.Observe(duration.Seconds())
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
