package metrics

import (
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal *prometheus.CounterVec
	engagementOps     *prometheus.CounterVec
	cacheLookups      *prometheus.CounterVec
	registerOnce      sync.Once
)

// Register initializes Prometheus metrics on the default registry.
func Register() {
	registerOnce.Do(func() {
		httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "manchitra",
			Name:      "http_requests_total",
			Help:      "Total HTTP requests processed by the engagement API.",
		}, []string{"method", "path", "status"})

		engagementOps = promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "manchitra",
			Name:      "engagement_ops_total",
			Help:      "Engagement mutations by operation and outcome.",
		}, []string{"op", "outcome"})

		cacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "manchitra",
			Name:      "cache_lookups_total",
			Help:      "Read-through cache lookups by use-site and result.",
		}, []string{"site", "result"})
	})
}

// IncRequest increments the http_requests_total counter with the given labels.
func IncRequest(method, path string, status int) {
	if httpRequestsTotal == nil {
		return
	}
	httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
}

// IncEngagementOp increments the engagement operation counter.
func IncEngagementOp(op, outcome string) {
	if engagementOps == nil {
		return
	}
	engagementOps.WithLabelValues(op, outcome).Inc()
}

// IncCacheLookup increments the cache lookup counter.
func IncCacheLookup(site, result string) {
	if cacheLookups == nil {
		return
	}
	cacheLookups.WithLabelValues(site, result).Inc()
}
