package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CacheOperations tracks store round trips by operation and result
	CacheOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_cache_operations_total",
			Help: "Total number of feed store operations",
		},
		[]string{"operation", "result"}, // "delete", "insert", "retrieve" x "ok", "error"
	)

	// CacheLoads tracks load outcomes
	CacheLoads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_cache_loads_total",
			Help: "Total number of cached feed loads by outcome",
		},
		[]string{"outcome"}, // "hit", "empty", "expired", "error"
	)
)

func observe(operation string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	CacheOperations.WithLabelValues(operation, result).Inc()
}
