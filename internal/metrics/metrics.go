// Package metrics exposes pull and binding counters as Prometheus collectors.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/specialistvlad/pullgridgo/internal/pull"
)

// Metrics holds the collectors of one graph, registered on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	pulls        *prometheus.CounterVec
	recomputes   *prometheus.CounterVec
	cacheHits    *prometheus.CounterVec
	pullFailures *prometheus.CounterVec
	contentHash  *prometheus.GaugeVec
	recomputeDur *prometheus.HistogramVec
	bindings     *prometheus.CounterVec
	bindErrors   *prometheus.CounterVec
}

// New creates and registers all collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		pulls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pullgrid_pulls_total",
				Help: "Number of pulls served by a producer.",
			},
			[]string{"producer"},
		),
		recomputes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pullgrid_recomputes_total",
				Help: "Number of successful recomputations by producer.",
			},
			[]string{"producer"},
		),
		cacheHits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pullgrid_cache_hits_total",
				Help: "Number of pulls answered from the cached snapshot.",
			},
			[]string{"producer"},
		),
		pullFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pullgrid_pull_failures_total",
				Help: "Number of failed pulls by producer and failure kind.",
			},
			[]string{"producer", "kind"},
		),
		contentHash: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "pullgrid_content_hash",
				Help: "Current content hash published by a producer.",
			},
			[]string{"producer"},
		),
		recomputeDur: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pullgrid_recompute_duration_seconds",
				Help:    "Time taken by a producer to recompute its output.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"producer"},
		),
		bindings: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pullgrid_bindings_total",
				Help: "Number of successful slot bindings by call class.",
			},
			[]string{"class"},
		),
		bindErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pullgrid_bind_errors_total",
				Help: "Number of rejected slot bindings.",
			},
			[]string{"reason"},
		),
	}
	m.registry.MustRegister(
		m.pulls,
		m.recomputes,
		m.cacheHits,
		m.pullFailures,
		m.contentHash,
		m.recomputeDur,
		m.bindings,
		m.bindErrors,
	)
	return m
}

// Registry returns the private registry backing the collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the collectors in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Hit implements pull.Recorder.
func (m *Metrics) Hit(producer string) {
	m.pulls.WithLabelValues(producer).Inc()
	m.cacheHits.WithLabelValues(producer).Inc()
}

// Recomputed implements pull.Recorder.
func (m *Metrics) Recomputed(producer string, hash uint64, took time.Duration) {
	m.pulls.WithLabelValues(producer).Inc()
	m.recomputes.WithLabelValues(producer).Inc()
	m.contentHash.WithLabelValues(producer).Set(float64(hash))
	m.recomputeDur.WithLabelValues(producer).Observe(took.Seconds())
}

// Failed implements pull.Recorder.
func (m *Metrics) Failed(producer string, kind pull.Kind) {
	m.pulls.WithLabelValues(producer).Inc()
	m.pullFailures.WithLabelValues(producer, kind.String()).Inc()
}

// Bound records a successful binding.
func (m *Metrics) Bound(class string) {
	m.bindings.WithLabelValues(class).Inc()
}

// BindFailed records a rejected binding.
func (m *Metrics) BindFailed(reason string) {
	m.bindErrors.WithLabelValues(reason).Inc()
}

var _ pull.Recorder = (*Metrics)(nil)
