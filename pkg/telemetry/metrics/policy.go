package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"stellar-hq/callisto/pkg/config"
	"stellar-hq/callisto/pkg/policy/store"
)

// PolicyStoreMetrics tracks the size of the published policy set and the
// outcome of reloads.
//
// Metrics:
//   - callisto_policy_templates: Slotted templates in the current set
//   - callisto_policy_static_policies: Static policies in the current set
//   - callisto_policy_links: Executable links in the current set (static + template-linked)
//   - callisto_policy_reloads_total: Reload attempts by status
//   - callisto_policy_reload_duration_seconds: Reload duration
type PolicyStoreMetrics struct {
	templates      prometheus.Gauge
	staticPolicies prometheus.Gauge
	links          prometheus.Gauge

	reloadsTotal   *prometheus.CounterVec
	reloadDuration prometheus.Histogram
}

// NewPolicyStoreMetrics creates and registers the policy store metrics with
// the provided registry.
func NewPolicyStoreMetrics(cfg config.MetricsConfig, registry *prometheus.Registry) *PolicyStoreMetrics {
	m := &PolicyStoreMetrics{
		templates: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "templates",
			Help:      "Number of slotted templates in the current policy set",
		}),
		staticPolicies: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "static_policies",
			Help:      "Number of static policies in the current policy set",
		}),
		links: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "links",
			Help:      "Number of executable links in the current policy set",
		}),
		reloadsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "reloads_total",
			Help:      "Total number of policy reload attempts",
		}, []string{"status"}),
		reloadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "reload_duration_seconds",
			Help:      "Duration of policy reloads in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 15), // 100µs to ~1.6s
		}),
	}

	registry.MustRegister(m.templates, m.staticPolicies, m.links, m.reloadsTotal, m.reloadDuration)
	return m
}

// ObserveSet updates the size gauges from a published policy set.
func (m *PolicyStoreMetrics) ObserveSet(set *store.PolicySet) {
	var templates, statics, links int
	for range set.Templates() {
		templates++
	}
	for p := range set.Policies() {
		links++
		if p.IsStatic() {
			statics++
		}
	}
	m.templates.Set(float64(templates))
	m.staticPolicies.Set(float64(statics))
	m.links.Set(float64(links))
}

// ObserveReload records one reload attempt.
func (m *PolicyStoreMetrics) ObserveReload(err error, duration time.Duration) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.reloadsTotal.WithLabelValues(status).Inc()
	m.reloadDuration.Observe(duration.Seconds())
}

// Handler returns an HTTP handler exposing the registry in the Prometheus
// text format.
func Handler(registry *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
