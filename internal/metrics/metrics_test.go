// LearnQuest - E-Learning Platform API Client and Notification Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/learnquest

package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordAPIRequest(t *testing.T) {
	tests := []struct {
		name    string
		method  string
		outcome string
	}{
		{name: "successful GET", method: "GET", outcome: "success"},
		{name: "HTTP error POST", method: "POST", outcome: "http_error"},
		{name: "timeout PUT", method: "PUT", outcome: "timeout"},
		{name: "network DELETE", method: "DELETE", outcome: "network"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := testutil.ToFloat64(APIRequestsTotal.WithLabelValues(tt.method, tt.outcome))
			RecordAPIRequest(tt.method, tt.outcome, 25*time.Millisecond)
			after := testutil.ToFloat64(APIRequestsTotal.WithLabelValues(tt.method, tt.outcome))
			if after-before != 1 {
				t.Errorf("counter delta = %v, want 1", after-before)
			}
		})
	}
}

func TestTrackActiveRequest(t *testing.T) {
	before := testutil.ToFloat64(APIActiveRequests)
	TrackActiveRequest(true)
	TrackActiveRequest(true)
	if got := testutil.ToFloat64(APIActiveRequests) - before; got != 2 {
		t.Errorf("after two increments delta = %v, want 2", got)
	}
	TrackActiveRequest(false)
	TrackActiveRequest(false)
	if got := testutil.ToFloat64(APIActiveRequests); got != before {
		t.Errorf("after decrements = %v, want %v", got, before)
	}
}

func TestEndpointMetrics(t *testing.T) {
	beforeProbe := testutil.ToFloat64(EndpointProbes.WithLabelValues("dead"))
	RecordProbe("dead")
	if d := testutil.ToFloat64(EndpointProbes.WithLabelValues("dead")) - beforeProbe; d != 1 {
		t.Errorf("probe delta = %v, want 1", d)
	}

	beforeRes := testutil.ToFloat64(EndpointResolutions.WithLabelValues("none"))
	RecordResolution("none")
	if d := testutil.ToFloat64(EndpointResolutions.WithLabelValues("none")) - beforeRes; d != 1 {
		t.Errorf("resolution delta = %v, want 1", d)
	}

	beforeInv := testutil.ToFloat64(EndpointInvalidations)
	RecordInvalidation()
	if d := testutil.ToFloat64(EndpointInvalidations) - beforeInv; d != 1 {
		t.Errorf("invalidation delta = %v, want 1", d)
	}
}

func TestRealtimeMetrics(t *testing.T) {
	SetRealtimeState(2)
	if got := testutil.ToFloat64(RealtimeConnectionState); got != 2 {
		t.Errorf("state = %v, want 2", got)
	}
	SetRealtimeState(0)
	if got := testutil.ToFloat64(RealtimeConnectionState); got != 0 {
		t.Errorf("state = %v, want 0", got)
	}

	before := testutil.ToFloat64(RealtimeEvents.WithLabelValues("unknown"))
	RecordRealtimeEvent("")
	if d := testutil.ToFloat64(RealtimeEvents.WithLabelValues("unknown")) - before; d != 1 {
		t.Errorf("empty event name should count as unknown, delta = %v", d)
	}

	SetUnread(7)
	if got := testutil.ToFloat64(NotificationsUnread); got != 7 {
		t.Errorf("unread = %v, want 7", got)
	}
}

func TestRecordSessionRefresh(t *testing.T) {
	okBefore := testutil.ToFloat64(SessionRefreshes.WithLabelValues("success"))
	failBefore := testutil.ToFloat64(SessionRefreshes.WithLabelValues("failure"))

	RecordSessionRefresh(true)
	RecordSessionRefresh(false)
	RecordSessionRefresh(false)

	if d := testutil.ToFloat64(SessionRefreshes.WithLabelValues("success")) - okBefore; d != 1 {
		t.Errorf("success delta = %v, want 1", d)
	}
	if d := testutil.ToFloat64(SessionRefreshes.WithLabelValues("failure")) - failBefore; d != 2 {
		t.Errorf("failure delta = %v, want 2", d)
	}
}
