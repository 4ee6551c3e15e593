// Package metrics exposes Prometheus instrumentation for solves and scans.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the collectors of one registry.
type Metrics struct {
	registry *prometheus.Registry

	solves     *prometheus.CounterVec
	iterations *prometheus.HistogramVec
	scans      prometheus.Counter
	brackets   prometheus.Histogram
}

// New creates the collectors and registers them, together with the Go and
// process collectors, on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		solves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "roots",
			Name:      "solves_total",
			Help:      "Number of solves by method and outcome.",
		}, []string{"method", "status"}),
		iterations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "roots",
			Name:      "iterations",
			Help:      "Iterations performed per solve.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
		}, []string{"method"}),
		scans: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "roots",
			Name:      "scans_total",
			Help:      "Number of sign-change scans.",
		}),
		brackets: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "roots",
			Name:      "brackets_found",
			Help:      "Sign changes reported per scan.",
			Buckets:   []float64{0, 1, 2, 4, 8, 16, 32, 64},
		}),
	}

	m.registry.MustRegister(
		m.solves,
		m.iterations,
		m.scans,
		m.brackets,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveSolve records one finished solve.
func (m *Metrics) ObserveSolve(method, status string, iterations int) {
	m.solves.WithLabelValues(method, status).Inc()
	m.iterations.WithLabelValues(method).Observe(float64(iterations))
}

// ObserveScan records one scan and the number of brackets it reported.
func (m *Metrics) ObserveScan(found int) {
	m.scans.Inc()
	m.brackets.Observe(float64(found))
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
