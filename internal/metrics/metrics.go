// LearnQuest - E-Learning Platform API Client and Notification Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/learnquest

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus instrumentation for the LearnQuest client core:
// - API request outcomes and latency
// - Endpoint probing, resolution and invalidation
// - Per-candidate circuit breakers
// - Real-time notification stream
// - Session refresh

var (
	// API Request Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "learnquest_api_requests_total",
			Help: "Total number of backend API requests by method and outcome",
		},
		[]string{"method", "outcome"}, // outcome: success, http_error, network, timeout, unreachable, canceled, invalid_request
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "learnquest_api_request_duration_seconds",
			Help:    "Backend API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"method"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "learnquest_api_active_requests",
			Help: "Current number of in-flight backend API requests",
		},
	)

	// Endpoint Metrics
	EndpointProbes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "learnquest_endpoint_probes_total",
			Help: "Total number of endpoint liveness probes by result",
		},
		[]string{"result"}, // "alive", "dead", "skipped"
	)

	EndpointResolutions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "learnquest_endpoint_resolutions_total",
			Help: "Total number of endpoint resolutions by result",
		},
		[]string{"result"}, // "cached", "resolved", "none"
	)

	EndpointInvalidations = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "learnquest_endpoint_invalidations_total",
			Help: "Total number of active endpoint cache invalidations",
		},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "learnquest_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "learnquest_circuit_breaker_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)

	// Real-time Stream Metrics
	RealtimeConnectionState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "learnquest_realtime_connection_state",
			Help: "Notification stream state (0=disconnected, 1=connecting, 2=connected)",
		},
	)

	RealtimeEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "learnquest_realtime_events_total",
			Help: "Total number of push events received by event name",
		},
		[]string{"event"},
	)

	RealtimeErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "learnquest_realtime_errors_total",
			Help: "Total number of notification stream errors",
		},
	)

	NotificationsUnread = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "learnquest_notifications_unread",
			Help: "Unread notification count from the latest stats snapshot",
		},
	)

	// Session Metrics
	SessionRefreshes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "learnquest_session_refresh_total",
			Help: "Total number of access token refresh attempts by result",
		},
		[]string{"result"}, // "success", "failure"
	)
)

// RecordAPIRequest records the outcome and latency of one backend request.
func RecordAPIRequest(method, outcome string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, outcome).Inc()
	APIRequestDuration.WithLabelValues(method).Observe(duration.Seconds())
}

// TrackActiveRequest increments or decrements the in-flight gauge.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordProbe records one liveness probe result.
func RecordProbe(result string) {
	EndpointProbes.WithLabelValues(result).Inc()
}

// RecordResolution records how an endpoint lookup was satisfied.
func RecordResolution(result string) {
	EndpointResolutions.WithLabelValues(result).Inc()
}

// RecordInvalidation counts a dropped active endpoint.
func RecordInvalidation() {
	EndpointInvalidations.Inc()
}

// SetRealtimeState publishes the stream state as 0, 1 or 2.
func SetRealtimeState(state int) {
	RealtimeConnectionState.Set(float64(state))
}

// RecordRealtimeEvent counts one received push event.
func RecordRealtimeEvent(event string) {
	if event == "" {
		event = "unknown"
	}
	RealtimeEvents.WithLabelValues(event).Inc()
}

// RecordRealtimeError counts one stream error.
func RecordRealtimeError() {
	RealtimeErrors.Inc()
}

// SetUnread publishes the unread count.
func SetUnread(n int) {
	NotificationsUnread.Set(float64(n))
}

// RecordSessionRefresh records a token refresh attempt.
func RecordSessionRefresh(success bool) {
	if success {
		SessionRefreshes.WithLabelValues("success").Inc()
	} else {
		SessionRefreshes.WithLabelValues("failure").Inc()
	}
}
