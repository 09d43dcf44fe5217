// Package metrics exposes Prometheus instrumentation for gif resolution.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the collectors recorded per resolved directive.
type Metrics struct {
	Resolutions     *prometheus.CounterVec
	ResolveDuration prometheus.Histogram
	Published       *prometheus.CounterVec
}

// New creates the collectors and registers them with registry.
func New(registry prometheus.Registerer, constLabels prometheus.Labels) *Metrics {
	m := &Metrics{
		Resolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "gifposter_resolutions_total",
			Help:        "Number of resolved gif directives by outcome",
			ConstLabels: constLabels,
		}, []string{"outcome"}),
		ResolveDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:        "gifposter_resolve_duration_seconds",
			Help:        "Time spent resolving a gif directive, including external tools",
			ConstLabels: constLabels,
			Buckets:     []float64{.001, .005, .01, .05, .1, .5, 1, 5, 30},
		}),
		Published: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "gifposter_published_assets_total",
			Help:        "Number of assets published to remote storage by result",
			ConstLabels: constLabels,
		}, []string{"result"}),
	}

	registry.MustRegister(m.Resolutions)
	registry.MustRegister(m.ResolveDuration)
	registry.MustRegister(m.Published)

	return m
}

// ObserveResolve records one resolution.
func (m *Metrics) ObserveResolve(outcome string, d time.Duration) {
	m.Resolutions.WithLabelValues(outcome).Inc()
	m.ResolveDuration.Observe(d.Seconds())
}

// ObservePublish records one publish attempt.
func (m *Metrics) ObservePublish(err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.Published.WithLabelValues(result).Inc()
}
