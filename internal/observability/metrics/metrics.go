package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "osintgen_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "osintgen_http_request_duration_seconds",
		Help:    "Duration of HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	profilesGenerated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "osintgen_profiles_generated_total",
		Help: "Count of profile generation attempts by result",
	}, []string{"result"})

	generationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "osintgen_generation_duration_seconds",
		Help:    "End-to-end duration of profile generation (fetch, derive, persist)",
		Buckets: prometheus.DefBuckets,
	}, []string{"result"})

	upstreamRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "osintgen_upstream_requests_total",
		Help: "Count of requests to the upstream identity source by result",
	}, []string{"result"})

	profileDeletions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "osintgen_profile_deletions_total",
		Help: "Count of profile deletions by result",
	}, []string{"result"})

	storedProfiles = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "osintgen_stored_profiles",
		Help: "Number of profiles currently stored",
	})

	storedUsers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "osintgen_stored_users",
		Help: "Number of registered operator accounts",
	})

	storedTags = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "osintgen_stored_tags",
		Help: "Number of distinct tags",
	})
)

// ObserveHTTPRequest records an HTTP request metric
func ObserveHTTPRequest(method, path, status string, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	httpRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// ObserveGeneration records one generation attempt with a result label.
func ObserveGeneration(result string, duration time.Duration) {
	profilesGenerated.WithLabelValues(result).Inc()
	generationDuration.WithLabelValues(result).Observe(duration.Seconds())
}

// ObserveUpstreamRequest increments the upstream request counter.
func ObserveUpstreamRequest(result string) {
	upstreamRequests.WithLabelValues(result).Inc()
}

// ObserveDeletion increments the deletion counter for the given result.
func ObserveDeletion(result string) {
	profileDeletions.WithLabelValues(result).Inc()
}

// SetStoredProfiles sets the stored profile gauge.
func SetStoredProfiles(count int64) {
	storedProfiles.Set(float64(count))
}

// SetStoredUsers sets the operator account gauge.
func SetStoredUsers(count int64) {
	storedUsers.Set(float64(count))
}

// SetStoredTags sets the distinct tag gauge.
func SetStoredTags(count int64) {
	storedTags.Set(float64(count))
}
