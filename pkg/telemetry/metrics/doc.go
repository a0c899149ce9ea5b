// Package metrics exposes Prometheus metrics for the policy store.
//
// Wire the metrics into a manager and serve them over HTTP:
//
//	registry := prometheus.NewRegistry()
//	m := metrics.NewPolicyStoreMetrics(cfg.Metrics, registry)
//	http.Handle("/metrics", metrics.Handler(registry))
package metrics
