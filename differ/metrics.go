package differ

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds the instrumentation for the differ engine.
type Metrics struct {
	diffDuration *prometheus.HistogramVec
	diffsTotal   *prometheus.CounterVec
}

// NewMetrics registers the differ metrics on the given registerer.
func NewMetrics(registry prometheus.Registerer) *Metrics {
	m := &Metrics{
		diffDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "liquidstate",
				Subsystem: "differ",
				Name:      "diff_duration_seconds",
				Help:      "Time spent computing a full state diff.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{},
		),
		diffsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "liquidstate",
				Subsystem: "differ",
				Name:      "diffs_total",
				Help:      "Total number of state diffs computed, by outcome.",
			},
			[]string{"outcome"},
		),
	}
	registry.MustRegister(m.diffDuration, m.diffsTotal)
	return m
}
