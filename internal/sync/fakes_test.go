// LearnQuest - E-Learning Platform API Client and Notification Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/learnquest

package sync

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/learnquest/internal/apiclient"
	"github.com/tomtom215/learnquest/internal/models"
)

var testNow = time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)

// fakeAPI is an in-memory notification backend whose stats are always
// derived from its own list.
type fakeAPI struct {
	mu            sync.Mutex
	notifications []models.Notification
	failOp        map[string]bool
	omitPageStats bool
	url           string
	urlErr        error

	calls map[string]int
}

func newFakeAPI(ns ...models.Notification) *fakeAPI {
	return &fakeAPI{
		notifications: slices.Clone(ns),
		failOp:        map[string]bool{},
		calls:         map[string]int{},
		url:           "http://api.test/api/Notifications/real-time?token=T",
	}
}

func (f *fakeAPI) fail(op string, on bool) {
	f.mu.Lock()
	f.failOp[op] = on
	f.mu.Unlock()
}

func (f *fakeAPI) count(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

// begin records a call and reports whether it should fail. Caller holds f.mu.
func (f *fakeAPI) begin(op string) bool {
	f.calls[op]++
	return f.failOp[op]
}

func failed[T any]() apiclient.Envelope[T] {
	return apiclient.Envelope[T]{Failure: apiclient.FailureHTTP, StatusCode: http.StatusInternalServerError, Message: "server error", ErrorCode: "E500"}
}

func (f *fakeAPI) statsLocked() models.NotificationStats {
	st := models.NotificationStats{
		TotalNotifications:      len(f.notifications),
		NotificationsByType:     map[string]int{},
		NotificationsByPriority: map[string]int{},
	}
	for _, n := range f.notifications {
		if !n.IsRead {
			st.UnreadCount++
			if n.IsHighPriority() {
				st.HighPriorityUnread++
			}
		}
		st.NotificationsByType[string(n.Type)]++
		st.NotificationsByPriority[string(n.Priority)]++
	}
	return st
}

func (f *fakeAPI) List(_ context.Context, filter models.NotificationFilter) apiclient.Envelope[models.NotificationPage] {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.begin("list") {
		return failed[models.NotificationPage]()
	}
	page := models.NotificationPage{Notifications: slices.Clone(f.notifications), TotalCount: len(f.notifications), Page: 1, PageSize: filter.PageSize}
	if !f.omitPageStats {
		st := f.statsLocked()
		page.Stats = &st
	}
	return apiclient.Envelope[models.NotificationPage]{Success: true, Data: page}
}

func (f *fakeAPI) Stats(context.Context) apiclient.Envelope[models.NotificationStats] {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.begin("stats") {
		return failed[models.NotificationStats]()
	}
	return apiclient.Envelope[models.NotificationStats]{Success: true, Data: f.statsLocked()}
}

func (f *fakeAPI) MarkAsRead(_ context.Context, ids []int64) apiclient.Envelope[apiclient.Empty] {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.begin("markAsRead") {
		return failed[apiclient.Empty]()
	}
	for i := range f.notifications {
		if slices.Contains(ids, f.notifications[i].NotificationID) {
			f.notifications[i].IsRead = true
		}
	}
	return apiclient.Envelope[apiclient.Empty]{Success: true}
}

func (f *fakeAPI) MarkAllAsRead(context.Context) apiclient.Envelope[apiclient.Empty] {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.begin("markAllAsRead") {
		return failed[apiclient.Empty]()
	}
	for i := range f.notifications {
		f.notifications[i].IsRead = true
	}
	return apiclient.Envelope[apiclient.Empty]{Success: true}
}

func (f *fakeAPI) Delete(_ context.Context, id int64) apiclient.Envelope[apiclient.Empty] {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.begin("delete") {
		return failed[apiclient.Empty]()
	}
	f.notifications = slices.DeleteFunc(f.notifications, func(n models.Notification) bool { return n.NotificationID == id })
	return apiclient.Envelope[apiclient.Empty]{Success: true}
}

func (f *fakeAPI) DeleteAll(context.Context) apiclient.Envelope[apiclient.Empty] {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.begin("deleteAll") {
		return failed[apiclient.Empty]()
	}
	f.notifications = nil
	return apiclient.Envelope[apiclient.Empty]{Success: true}
}

func (f *fakeAPI) setURL(url string) {
	f.mu.Lock()
	f.url = url
	f.mu.Unlock()
}

func (f *fakeAPI) RealTimeURL(context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["realTimeURL"]++
	if f.urlErr != nil {
		return "", f.urlErr
	}
	return f.url, nil
}

// fakeDialer records opened streams so tests can drive their callbacks.
type fakeDialer struct {
	mu      sync.Mutex
	streams []*fakeStream
}

type fakeStream struct {
	url    string
	h      StreamHandlers
	closed atomic.Bool
}

func (s *fakeStream) Close()         { s.closed.Store(true) }
func (s *fakeStream) IsActive() bool { return !s.closed.Load() }

func (d *fakeDialer) Open(ctx context.Context, source URLSource, h StreamHandlers) Subscription {
	url, _ := source(ctx)
	s := &fakeStream{url: url, h: h}
	d.mu.Lock()
	d.streams = append(d.streams, s)
	d.mu.Unlock()
	return s
}

func (d *fakeDialer) opened() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.streams)
}

func (d *fakeDialer) stream(t *testing.T, i int) *fakeStream {
	t.Helper()
	d.mu.Lock()
	defer d.mu.Unlock()
	if i >= len(d.streams) {
		t.Fatalf("stream %d not opened (opened %d)", i, len(d.streams))
	}
	return d.streams[i]
}

func note(id int64, read bool, priority models.Priority) models.Notification {
	return models.Notification{
		NotificationID: id,
		Title:          "n",
		Type:           models.NotificationSystem,
		Priority:       priority,
		IsRead:         read,
		CreatedAt:      testNow.Add(-time.Duration(id) * time.Hour),
	}
}

func pushEvent(t *testing.T, n *models.Notification, stats *models.NotificationStats) Message {
	t.Helper()
	data, err := json.Marshal(models.RealTimeEvent{
		Event:        models.EventNotificationCreated,
		Notification: n,
		Stats:        stats,
		Timestamp:    testNow,
	})
	if err != nil {
		t.Fatal(err)
	}
	return Message{Data: data}
}

func newTestSynchronizer(api NotificationAPI, dialer StreamDialer, dedupe bool) *Synchronizer {
	return New(api, Config{Dialer: dialer, Dedupe: dedupe, Now: func() time.Time { return testNow }})
}

func ids(ns []models.Notification) []int64 {
	out := make([]int64, len(ns))
	for i, n := range ns {
		out[i] = n.NotificationID
	}
	return out
}

func countUnread(ns []models.Notification) int {
	c := 0
	for _, n := range ns {
		if !n.IsRead {
			c++
		}
	}
	return c
}

var errBoom = errors.New("boom")
