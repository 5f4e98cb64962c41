package main

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/njchilds90/gocas"
)

// =============================================================================
// Prometheus Metrics for Tool Calls
// =============================================================================

type metrics struct {
	// Labels: tool, status (ok, error, timeout)
	calls *prometheus.CounterVec
	// Labels: tool
	latency *prometheus.HistogramVec
	// coalesced counts calls answered by another caller's computation.
	coalesced prometheus.Counter
}

func newMetrics(reg prometheus.Registerer, f *gocas.Factorer) *metrics {
	factory := promauto.With(reg)
	m := &metrics{
		calls: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gocas",
			Subsystem: "tool",
			Name:      "calls_total",
			Help:      "Total tool calls by tool and outcome",
		}, []string{"tool", "status"}),
		latency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "gocas",
			Subsystem: "tool",
			Name:      "latency_seconds",
			Help:      "Tool call latency in seconds",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10},
		}, []string{"tool"}),
		coalesced: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "gocas",
			Subsystem: "tool",
			Name:      "coalesced_total",
			Help:      "Tool calls that shared an in-flight computation",
		}),
	}
	factory.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: "gocas",
		Subsystem: "factor_cache",
		Name:      "entries",
		Help:      "Entries in the factor memo",
	}, func() float64 {
		n, _, _ := f.Stats()
		return float64(n)
	})
	factory.NewCounterFunc(prometheus.CounterOpts{
		Namespace: "gocas",
		Subsystem: "factor_cache",
		Name:      "hits_total",
		Help:      "Factor memo hits",
	}, func() float64 {
		_, hits, _ := f.Stats()
		return float64(hits)
	})
	return m
}

func (m *metrics) observe(tool, status string, d time.Duration) {
	m.calls.WithLabelValues(tool, status).Inc()
	m.latency.WithLabelValues(tool).Observe(d.Seconds())
}
