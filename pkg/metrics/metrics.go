// Package metrics provides centralized Prometheus metrics registry for the feed pipeline.
// All metrics are defined in their respective packages (client, api, cache, ratelimit)
// to maintain modularity and avoid circular dependencies.
//
// This package documents them and serves them over HTTP.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry is the default Prometheus registry used by the feed packages.
// All metrics are automatically registered via promauto in their respective packages.
var Registry = prometheus.DefaultRegisterer

// Names lists every metric the feed packages register.
var Names = []string{
	"feed_http_requests_total",
	"feed_http_request_duration_seconds",
	"feed_http_errors_total",
	"feed_http_retries_total",
	"feed_http_retry_backoff_seconds",
	"feed_http_retry_exhausted_total",
	"feed_remote_loads_total",
	"feed_cache_operations_total",
	"feed_cache_loads_total",
	"feed_rate_limit_signals_total",
	"feed_rate_limit_waits_total",
	"feed_rate_limit_wait_seconds",
}

// Handler serves the default registry in the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Metrics Documentation
//
// Request Metrics (pkg/client):
//   - feed_http_requests_total{status} (Counter): Requests by HTTP status
//   - feed_http_request_duration_seconds (Histogram): Request duration, retries included
//   - feed_http_errors_total{class} (Counter): Errors by class (client, server, rate_limit, network)
//
// Retry Metrics (pkg/client):
//   - feed_http_retries_total{error_class} (Counter): Retry attempts by error class
//   - feed_http_retry_backoff_seconds{error_class} (Histogram): Backoff duration by error class
//   - feed_http_retry_exhausted_total{error_class} (Counter): Requests that exhausted max retries
//
// Remote Loader Metrics (pkg/api):
//   - feed_remote_loads_total{result} (Counter): Loads by result (success, connectivity, invalid_data)
//
// Cache Metrics (pkg/cache):
//   - feed_cache_operations_total{operation, result} (Counter): Store calls by operation (delete, insert, retrieve) and result
//   - feed_cache_loads_total{outcome} (Counter): Local loads by outcome (hit, empty, expired, error)
//
// Rate Limit Metrics (pkg/ratelimit):
//   - feed_rate_limit_signals_total (Counter): Retry-After signals recorded from 429/503 responses
//   - feed_rate_limit_waits_total (Counter): Requests delayed by an active Retry-After
//   - feed_rate_limit_wait_seconds (Histogram): Time spent waiting for Retry-After to pass
//
// Example Prometheus Queries:
//
//   # Cache Hit Rate
//   sum(rate(feed_cache_loads_total{outcome="hit"}[5m])) /
//   sum(rate(feed_cache_loads_total[5m]))
//
//   # Remote Failure Rate
//   sum(rate(feed_remote_loads_total{result!="success"}[5m])) /
//   sum(rate(feed_remote_loads_total[5m]))
//
//   # P95 Request Latency
//   histogram_quantile(0.95, rate(feed_http_request_duration_seconds_bucket[5m]))
//
//   # Expired Snapshots Served As Empty
//   rate(feed_cache_loads_total{outcome="expired"}[5m])
