package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Outcomes recorded for cart mutations.
const (
	ResultOK       = "ok"
	ResultRejected = "rejected"
	ResultError    = "error"
)

// CartMetrics records cart mutations and summary cache use.
type CartMetrics struct {
	mutations *prometheus.CounterVec
	cache     *prometheus.CounterVec
	lines     prometheus.Gauge
	total     prometheus.Gauge
}

// NewCartMetrics registers the cart metrics on the provided registerer. A
// nil registerer yields a no-op collector.
func NewCartMetrics(reg prometheus.Registerer) *CartMetrics {
	if reg == nil {
		return &CartMetrics{}
	}
	mutations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_mutations_total",
		Help: "Cart mutations by operation and outcome.",
	}, []string{"operation", "result"})
	cache := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_summary_cache_total",
		Help: "Summary cache lookups by outcome.",
	}, []string{"result"})
	lines := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "cart_lines",
		Help: "Number of lines in the cart after the last mutation.",
	})
	total := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "cart_total",
		Help: "Cart total after the last mutation.",
	})
	reg.MustRegister(mutations, cache, lines, total)
	return &CartMetrics{
		mutations: mutations,
		cache:     cache,
		lines:     lines,
		total:     total,
	}
}

// IncMutation counts one add, update, remove or clear.
func (m *CartMetrics) IncMutation(operation, result string) {
	if m == nil || m.mutations == nil {
		return
	}
	m.mutations.WithLabelValues(normalizeLabel(operation), normalizeLabel(result)).Inc()
}

// IncCache counts a summary cache hit, miss or error.
func (m *CartMetrics) IncCache(result string) {
	if m == nil || m.cache == nil {
		return
	}
	m.cache.WithLabelValues(normalizeLabel(result)).Inc()
}

// SetCart records the size and total of the current cart.
func (m *CartMetrics) SetCart(lines int, total float64) {
	if m == nil || m.lines == nil {
		return
	}
	m.lines.Set(float64(lines))
	m.total.Set(total)
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
