package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PricingMetrics records quote resolution and configuration edit activity.
type PricingMetrics struct {
	resolve   *prometheus.HistogramVec
	quotes    *prometheus.CounterVec
	conflicts *prometheus.CounterVec
	publishes *prometheus.CounterVec
}

// NewPricingMetrics registers the pricing metrics on the provided registerer.
func NewPricingMetrics(reg prometheus.Registerer) *PricingMetrics {
	if reg == nil {
		return &PricingMetrics{}
	}
	resolve := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "price_resolve_duration_seconds",
		Help:    "Duration of price resolution in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"source"})
	quotes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "price_quotes_total",
		Help: "Price quotes by outcome.",
	}, []string{"outcome"})
	conflicts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "config_edit_conflicts_total",
		Help: "Optimistic concurrency conflicts while editing product configurations.",
	}, []string{"operation"})
	publishes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "config_publish_total",
		Help: "Publish attempts by result.",
	}, []string{"result"})
	reg.MustRegister(resolve, quotes, conflicts, publishes)
	return &PricingMetrics{
		resolve:   resolve,
		quotes:    quotes,
		conflicts: conflicts,
		publishes: publishes,
	}
}

// ObserveResolve records how long a quote took, labelled by whether the
// configuration came from the cache or the database.
func (m *PricingMetrics) ObserveResolve(source string, duration time.Duration) {
	if m == nil || m.resolve == nil {
		return
	}
	m.resolve.WithLabelValues(normalizeLabel(source)).Observe(duration.Seconds())
}

// IncQuote increments the quote counter for the given outcome.
func (m *PricingMetrics) IncQuote(outcome string) {
	if m == nil || m.quotes == nil {
		return
	}
	m.quotes.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// IncConflict increments the conflict counter for the named edit operation.
func (m *PricingMetrics) IncConflict(operation string) {
	if m == nil || m.conflicts == nil {
		return
	}
	m.conflicts.WithLabelValues(normalizeLabel(operation)).Inc()
}

func (m *PricingMetrics) IncPublish(result string) {
	if m == nil || m.publishes == nil {
		return
	}
	m.publishes.WithLabelValues(normalizeLabel(result)).Inc()
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
