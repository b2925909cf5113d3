// Package metrics exposes Prometheus collectors for gateway calls and store actions.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "courseclient"

var (
	// Registry holds the client's Prometheus collectors.
	Registry = prometheus.NewRegistry()

	gatewayInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "gateway",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight gateway requests.",
		},
	)

	gatewayRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "gateway",
			Name:      "requests_total",
			Help:      "Total number of gateway operations by outcome.",
		},
		[]string{"operation", "outcome"},
	)

	gatewayDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "gateway",
			Name:      "request_duration_seconds",
			Help:      "Duration of gateway operations.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"operation"},
	)

	storeActions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "actions_total",
			Help:      "Total number of actions dispatched to the state store.",
		},
		[]string{"type"},
	)

	staleResults = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "stale_results_total",
			Help:      "Results discarded because a newer request for the same resource was dispatched.",
		},
		[]string{"resource"},
	)
)

func init() {
	Registry.MustRegister(
		gatewayInFlight,
		gatewayRequests,
		gatewayDuration,
		storeActions,
		staleResults,
	)
}

// Handler returns an HTTP handler exposing the registered metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// CallStarted marks a gateway call as in flight and returns the function that
// records its completion.
func CallStarted(operation string) func(success bool) {
	start := time.Now()
	gatewayInFlight.Inc()
	return func(success bool) {
		gatewayInFlight.Dec()
		RecordCall(operation, time.Since(start), success)
	}
}

// RecordCall records one gateway operation.
func RecordCall(operation string, duration time.Duration, success bool) {
	if operation == "" {
		operation = "unknown"
	}
	if duration <= 0 {
		duration = time.Millisecond
	}
	outcome := "failure"
	if success {
		outcome = "success"
	}
	gatewayRequests.WithLabelValues(operation, outcome).Inc()
	gatewayDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordAction counts an action applied by the store.
func RecordAction(actionType string) {
	storeActions.WithLabelValues(actionType).Inc()
}

// RecordStale counts a result dropped because its generation was superseded.
func RecordStale(resource string) {
	staleResults.WithLabelValues(resource).Inc()
}
