// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	activitiesWritten = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "daylog",
		Subsystem: "activities",
		Name:      "writes_total",
		Help:      "Activity writes by operation and resulting privacy.",
	}, []string{"op", "privacy"})
	authAttempts = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "daylog",
		Subsystem: "auth",
		Name:      "attempts_total",
		Help:      "Login and registration attempts by outcome.",
	}, []string{"kind", "result"})
	exportsCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "daylog",
		Subsystem: "exports",
		Name:      "created_total",
		Help:      "Activity exports uploaded to object storage.",
	})
	httpRequests = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "daylog",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency by route and status.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)

func init() {
	prometheus.MustRegister(activitiesWritten, authAttempts, exportsCreated, httpRequests)
}

// RecordActivityWrite counts a create, update or delete.
func RecordActivityWrite(op, privacy string) {
	activitiesWritten.WithLabelValues(op, privacy).Inc()
}

// RecordAuthAttempt counts a login or registration with its result label.
func RecordAuthAttempt(kind, result string) {
	authAttempts.WithLabelValues(kind, result).Inc()
}

func RecordExport() {
	exportsCreated.Inc()
}

// ObserveRequest records one served HTTP request.
func ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Observe(elapsed.Seconds())
}
