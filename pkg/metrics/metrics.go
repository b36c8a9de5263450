// Package metrics provides the centralized Prometheus registry reference
// for the catalog client. Metrics are defined in their respective packages
// (catalog, cache, ratelimit, selection) to maintain modularity and avoid
// circular dependencies.
//
// This package provides documentation and reference for all available metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the default Prometheus registry used by the catalog client.
// All metrics are automatically registered via promauto in their respective packages.
var Registry = prometheus.DefaultRegisterer

// Metrics Documentation
//
// Request Metrics (pkg/catalog):
//   - catalog_requests_total{endpoint, status} (Counter): Total requests by endpoint and HTTP status
//   - catalog_request_duration_seconds{endpoint} (Histogram): Request duration by endpoint
//   - catalog_errors_total{class} (Counter): Errors by class (client, server, network, decode)
//
// Cache Metrics (pkg/cache):
//   - catalog_cache_hits_total{layer="redis"} (Counter): Cache hits by layer
//   - catalog_cache_misses_total (Counter): Cache misses
//   - catalog_cache_size_bytes{layer="redis"} (Gauge): Current cache size in bytes
//   - catalog_304_responses_total (Counter): 304 Not Modified responses
//   - catalog_conditional_requests_total (Counter): Conditional requests sent with If-None-Match
//   - catalog_cache_errors_total{operation} (Counter): Cache operation errors
//
// Pacing Metrics (pkg/ratelimit):
//   - catalog_pacer_waits_total (Counter): Requests that had to wait for the pacer
//   - catalog_pacer_wait_seconds (Histogram): Time spent waiting before a request
//
// Selection Metrics (pkg/selection):
//   - catalog_selection_walks_total{result} (Counter): Cross-page walks by result (done, exhausted, failed)
//   - catalog_selection_walk_pages_total (Counter): Pages fetched by cross-page walks
//
// Example Prometheus Queries:
//
//   # Cache Hit Rate
//   sum(rate(catalog_cache_hits_total[5m])) /
//   (sum(rate(catalog_cache_hits_total[5m])) + sum(rate(catalog_cache_misses_total[5m])))
//
//   # Request Error Rate
//   rate(catalog_errors_total[5m])
//
//   # P95 Request Latency
//   histogram_quantile(0.95, rate(catalog_request_duration_seconds_bucket[5m]))
//
//   # 304 Response Rate
//   rate(catalog_304_responses_total[5m]) / rate(catalog_requests_total[5m])
