// LearnQuest - E-Learning Platform API Client and Notification Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/learnquest

/*
Package metrics provides Prometheus instrumentation for the LearnQuest client core.

All collectors are registered on the default registry through promauto and
are exposed by the status server at /metrics:

	curl http://127.0.0.1:8089/metrics

# Available Metrics

API Metrics:
  - learnquest_api_requests_total: Requests by method and outcome (counter)
  - learnquest_api_request_duration_seconds: Request latency (histogram)
  - learnquest_api_active_requests: In-flight requests (gauge)

Endpoint Metrics:
  - learnquest_endpoint_probes_total: Liveness probes by result (counter)
  - learnquest_endpoint_resolutions_total: Resolutions by result (counter)
  - learnquest_endpoint_invalidations_total: Dropped active endpoints (counter)
  - learnquest_circuit_breaker_state: Per-candidate breaker state (gauge)
  - learnquest_circuit_breaker_transitions_total: Breaker transitions (counter)

Real-time Metrics:
  - learnquest_realtime_connection_state: 0 disconnected, 1 connecting, 2 connected (gauge)
  - learnquest_realtime_events_total: Push events by name (counter)
  - learnquest_realtime_errors_total: Stream errors (counter)
  - learnquest_notifications_unread: Unread count of the latest stats (gauge)

Session Metrics:
  - learnquest_session_refresh_total: Token refreshes by result (counter)
*/
package metrics
