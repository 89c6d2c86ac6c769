// Package metrics exposes Prometheus collectors for the relay service.
package metrics

import (
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Relay outcome labels.
const (
	OutcomeSucceeded  = "succeeded"
	OutcomeEmpty      = "empty"
	OutcomeTimeout    = "timeout"
	OutcomeCanceled   = "canceled"
	OutcomeFaulted    = "faulted"
	OutcomeImpossible = "impossible"
	OutcomeError      = "error"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests, labeled by method and code.",
		},
		[]string{"method", "code"},
	)

	httpRequestDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Histogram of HTTP request latencies, labeled by method and route.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 15, 60, 300},
		},
		[]string{"method", "route"},
	)

	relayJobsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "horde_relay_jobs_total",
			Help: "Total number of relayed generation jobs, labeled by outcome.",
		},
		[]string{"outcome"},
	)

	relayJobDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "horde_relay_job_duration_seconds",
			Help:    "End-to-end time from submission to settlement, labeled by outcome.",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600},
		},
		[]string{"outcome"},
	)

	relayPollIterations = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "horde_relay_poll_iterations",
			Help:    "Number of check calls made per relayed job.",
			Buckets: []float64{1, 2, 5, 10, 30, 60, 120, 300},
		},
	)

	relayInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "horde_relay_jobs_in_flight",
			Help: "Number of generation jobs currently being polled.",
		},
	)

	remoteRetriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "horde_relay_remote_retries_total",
			Help: "Transient remote failures that were retried, labeled by call.",
		},
		[]string{"call"},
	)

	catalogRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "horde_relay_catalog_requests_total",
			Help: "Remote catalog lookups, labeled by result.",
		},
		[]string{"result"},
	)

	// preferenceSource holds the func() int reporting the live store size.
	preferenceSource atomic.Value

	preferenceEntries = promauto.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "horde_relay_preferences",
			Help: "Number of caller model preferences currently held.",
		},
		func() float64 {
			if size, ok := preferenceSource.Load().(func() int); ok {
				return float64(size())
			}
			return 0
		},
	)
)

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveHTTPRequest increments the HTTP request metrics.
func ObserveHTTPRequest(method, route string, code int, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, strconv.Itoa(code)).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route).Observe(duration.Seconds())
}

// ObserveRelayJob records a settled relay job.
func ObserveRelayJob(outcome string, polls int, duration time.Duration) {
	relayJobsTotal.WithLabelValues(outcome).Inc()
	relayJobDurationSeconds.WithLabelValues(outcome).Observe(duration.Seconds())
	relayPollIterations.Observe(float64(polls))
}

// IncInFlight increments the in-flight relay gauge.
func IncInFlight() {
	relayInFlight.Inc()
}

// DecInFlight decrements the in-flight relay gauge.
func DecInFlight() {
	relayInFlight.Dec()
}

// ObserveRemoteRetry counts a retried remote call.
func ObserveRemoteRetry(call string) {
	remoteRetriesTotal.WithLabelValues(call).Inc()
}

// ObserveCatalog counts a remote catalog lookup.
func ObserveCatalog(ok bool) {
	result := "ok"
	if !ok {
		result = "error"
	}
	catalogRequestsTotal.WithLabelValues(result).Inc()
}

// TrackPreferenceEntries makes the preference gauge read size on every
// scrape, so expired entries drop out without a write.
func TrackPreferenceEntries(size func() int) {
	preferenceSource.Store(size)
}
