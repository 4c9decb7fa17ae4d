package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCartMetricsCounters(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewCartMetrics(registry)

	m.IncMutation("add_item")
	m.IncMutation("add_item")
	m.IncCheckout("success")
	m.IncCheckout("")
	m.ObserveReconcile(250 * time.Millisecond)

	if got := testutil.ToFloat64(m.mutations.WithLabelValues("add_item")); got != 2 {
		t.Fatalf("expected 2 add_item mutations, got %v", got)
	}
	if got := testutil.ToFloat64(m.checkouts.WithLabelValues("success")); got != 1 {
		t.Fatalf("expected 1 success checkout, got %v", got)
	}
	if got := testutil.ToFloat64(m.checkouts.WithLabelValues("unknown")); got != 1 {
		t.Fatalf("expected empty outcome to normalize to unknown, got %v", got)
	}
}

func TestCartMetricsNilSafe(t *testing.T) {
	var m *CartMetrics
	m.IncMutation("add_item")
	m.IncCheckout("success")
	m.ObserveReconcile(time.Second)

	unregistered := NewCartMetrics(nil)
	unregistered.IncMutation("add_item")
	unregistered.ObserveReconcile(time.Second)
}
