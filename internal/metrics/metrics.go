package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Upstream endpoint labels
const (
	EndpointToken  = "token"
	EndpointSearch = "search"
)

var (
	// HTTPRequestsTotal counts inbound HTTP requests
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "foodsearch",
			Name:      "http_requests_total",
			Help:      "Total number of inbound HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// UpstreamRequestsTotal counts calls to the FatSecret platform by outcome
	UpstreamRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "foodsearch",
			Name:      "upstream_requests_total",
			Help:      "Total number of requests sent to the FatSecret platform",
		},
		[]string{"endpoint", "outcome"},
	)

	// UpstreamDuration records FatSecret call latency in seconds
	UpstreamDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "foodsearch",
			Name:      "upstream_duration_seconds",
			Help:      "FatSecret request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		},
		[]string{"endpoint"},
	)

	// TokenCacheTotal counts token cache lookups by result (hit/miss)
	TokenCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "foodsearch",
			Name:      "token_cache_total",
			Help:      "Token cache lookups",
		},
		[]string{"result"},
	)
)

func init() {
	prometheus.MustRegister(
		HTTPRequestsTotal,
		UpstreamRequestsTotal,
		UpstreamDuration,
		TokenCacheTotal,
	)
}

// RecordUpstream records one completed upstream call
func RecordUpstream(endpoint, outcome string, seconds float64) {
	UpstreamRequestsTotal.WithLabelValues(endpoint, outcome).Inc()
	UpstreamDuration.WithLabelValues(endpoint).Observe(seconds)
}
