// LearnQuest - E-Learning Platform API Client and Notification Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/learnquest

package sync

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// recorder collects stream callbacks.
type recorder struct {
	mu       sync.Mutex
	opens    int
	messages []Message
	errs     []error
}

func (r *recorder) handlers() StreamHandlers {
	return StreamHandlers{
		OnOpen: func() {
			r.mu.Lock()
			r.opens++
			r.mu.Unlock()
		},
		OnMessage: func(m Message) {
			r.mu.Lock()
			r.messages = append(r.messages, m)
			r.mu.Unlock()
		},
		OnError: func(err error) {
			r.mu.Lock()
			r.errs = append(r.errs, err)
			r.mu.Unlock()
		},
	}
}

func (r *recorder) counts() (opens, messages, errs int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.opens, len(r.messages), len(r.errs)
}

func (r *recorder) message(i int) Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.messages[i]
}

func (r *recorder) lastErr() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.errs) == 0 {
		return nil
	}
	return r.errs[len(r.errs)-1]
}

func writeEvents(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "text/event-stream; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, body)
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

func newTestSSEDialer() *SSEDialer {
	return NewSSEDialer(10*time.Millisecond, 50*time.Millisecond)
}

func TestSSE_ParsesEvents(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Accept"); got != "text/event-stream" {
			t.Errorf("Accept = %q", got)
		}
		writeEvents(w, ": keep-alive comment\n"+
			"event: notification\n"+
			"id: 7\n"+
			"data: {\"a\":1,\n"+
			"data: \"b\":2}\n"+
			"\n"+
			"data:no-space\n"+
			"\n"+
			"event: empty\n"+
			"\n")
		<-r.Context().Done()
	}))
	defer server.Close()

	rec := &recorder{}
	sub := newTestSSEDialer().Open(context.Background(), StaticURL(server.URL), rec.handlers())
	defer sub.Close()

	waitFor(t, 2*time.Second, "two messages", func() bool {
		_, n, _ := rec.counts()
		return n == 2
	})

	first := rec.message(0)
	checkStringEqual(t, "event", first.Event, "notification")
	checkStringEqual(t, "id", first.ID, "7")
	checkStringEqual(t, "data", string(first.Data), "{\"a\":1,\n\"b\":2}")

	second := rec.message(1)
	checkStringEqual(t, "event", second.Event, "")
	checkStringEqual(t, "id inherited", second.ID, "7")
	checkStringEqual(t, "data", string(second.Data), "no-space")

	opens, _, errs := rec.counts()
	checkIntEqual(t, "opens", opens, 1)
	checkIntEqual(t, "errors", errs, 0)
	if !sub.IsActive() {
		t.Error("stream should be active")
	}
}

func TestSSE_ReconnectsWithLastEventID(t *testing.T) {
	var conns atomic.Int32
	lastIDs := make(chan string, 4)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lastIDs <- r.Header.Get("Last-Event-ID")
		if conns.Add(1) == 1 {
			// Ends the response: the client must reconnect after retry.
			writeEvents(w, "retry: 5\nid: 41\ndata: one\n\n")
			return
		}
		writeEvents(w, "id: 42\ndata: two\n\n")
		<-r.Context().Done()
	}))
	defer server.Close()

	rec := &recorder{}
	sub := newTestSSEDialer().Open(context.Background(), StaticURL(server.URL), rec.handlers())
	defer sub.Close()

	waitFor(t, 2*time.Second, "message after reconnect", func() bool {
		_, n, _ := rec.counts()
		return n == 2
	})

	checkStringEmpty(t, "first Last-Event-ID", <-lastIDs)
	checkStringEqual(t, "second Last-Event-ID", <-lastIDs, "41")
	checkStringEqual(t, "second data", string(rec.message(1).Data), "two")

	opens, _, errs := rec.counts()
	checkIntEqual(t, "opens", opens, 2)
	checkIntEqual(t, "errors", errs, 1)
	if !errors.Is(rec.lastErr(), errStreamEnded) {
		t.Errorf("error = %v, want errStreamEnded", rec.lastErr())
	}
}

func TestSSE_TerminalResponses(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		contentType string
	}{
		{"unauthorized", http.StatusUnauthorized, "application/json"},
		{"server error", http.StatusInternalServerError, "text/event-stream"},
		{"wrong content type", http.StatusOK, "application/json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var hits atomic.Int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				hits.Add(1)
				w.Header().Set("Content-Type", tt.contentType)
				w.WriteHeader(tt.status)
				fmt.Fprint(w, `{"success":false}`)
			}))
			defer server.Close()

			rec := &recorder{}
			sub := newTestSSEDialer().Open(context.Background(), StaticURL(server.URL), rec.handlers())
			defer sub.Close()

			waitFor(t, 2*time.Second, "stream to end", func() bool { return !sub.IsActive() })

			opens, _, errs := rec.counts()
			checkIntEqual(t, "opens", opens, 0)
			checkIntEqual(t, "errors", errs, 1)
			checkIntEqual(t, "requests", int(hits.Load()), 1)

			var serr *StreamError
			if !errors.As(rec.lastErr(), &serr) {
				t.Fatalf("error = %v, want *StreamError", rec.lastErr())
			}
			checkIntEqual(t, "status", serr.StatusCode, tt.status)
		})
	}
}

func TestSSE_CloseStopsCallbacks(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEvents(w, "")
		select {
		case <-release:
			fmt.Fprint(w, "data: late\n\n")
			w.(http.Flusher).Flush()
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	rec := &recorder{}
	sub := newTestSSEDialer().Open(context.Background(), StaticURL(server.URL), rec.handlers())
	waitFor(t, 2*time.Second, "open", func() bool {
		opens, _, _ := rec.counts()
		return opens == 1
	})

	sub.Close()
	sub.Close()
	if sub.IsActive() {
		t.Error("closed stream should be inactive")
	}
	waitFor(t, 2*time.Second, "stream goroutine to exit", func() bool {
		select {
		case <-sub.(*streamSub).done:
			return true
		default:
			return false
		}
	})

	_, messages, errs := rec.counts()
	checkIntEqual(t, "messages after close", messages, 0)
	checkIntEqual(t, "errors after close", errs, 0)
}

func TestSSE_InvalidURL(t *testing.T) {
	rec := &recorder{}
	sub := newTestSSEDialer().Open(context.Background(), StaticURL("://bad"), rec.handlers())
	waitFor(t, time.Second, "stream to end", func() bool { return !sub.IsActive() })

	var serr *StreamError
	if !errors.As(rec.lastErr(), &serr) || serr.Err == nil {
		t.Fatalf("error = %v, want *StreamError with cause", rec.lastErr())
	}
	if !strings.HasPrefix(serr.Error(), "push stream: ") {
		t.Errorf("Error() = %q", serr.Error())
	}
}

func TestSSE_URLSourceErrorIsTerminal(t *testing.T) {
	rec := &recorder{}
	var calls atomic.Int32
	source := func(context.Context) (string, error) {
		calls.Add(1)
		return "", errBoom
	}
	sub := newTestSSEDialer().Open(context.Background(), source, rec.handlers())
	waitFor(t, time.Second, "stream to end", func() bool { return !sub.IsActive() })

	var serr *StreamError
	if !errors.As(rec.lastErr(), &serr) || !errors.Is(serr, errBoom) {
		t.Fatalf("error = %v, want *StreamError wrapping errBoom", rec.lastErr())
	}
	checkIntEqual(t, "source calls", int(calls.Load()), 1)
}

func TestSynchronizer_ReconnectUsesRotatedToken(t *testing.T) {
	var (
		current = atomic.Value{}
		conns   atomic.Int32
		tokens  = make(chan string, 8)
		drop    = make(chan struct{})
	)
	current.Store("old")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := conns.Add(1)
		token := r.URL.Query().Get("token")
		tokens <- token
		if token != current.Load().(string) {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		writeEvents(w, ": open\n\n")
		if n == 1 {
			select {
			case <-drop:
			case <-r.Context().Done():
			}
			return
		}
		<-r.Context().Done()
	}))
	defer server.Close()

	api := newFakeAPI()
	api.setURL(server.URL + "/api/Notifications/real-time?token=old")
	s := New(api, Config{Dialer: newTestSSEDialer()})
	defer s.DisconnectRealTime()

	if err := s.ConnectRealTime(context.Background()); err != nil {
		t.Fatal(err)
	}
	waitFor(t, 2*time.Second, "first connection", func() bool { return s.State() == Connected })

	// The session refreshes its token, then the server drops the stream.
	current.Store("new")
	api.setURL(server.URL + "/api/Notifications/real-time?token=new")
	close(drop)

	waitFor(t, 2*time.Second, "reconnect with the new token", func() bool {
		return conns.Load() >= 2 && s.State() == Connected
	})
	checkStringEqual(t, "first token", <-tokens, "old")
	checkStringEqual(t, "reconnect token", <-tokens, "new")
	if s.Snapshot().LastError != "" {
		t.Errorf("LastError = %q after reconnect", s.Snapshot().LastError)
	}
	if got := api.count("realTimeURL"); got < 2 {
		t.Errorf("RealTimeURL calls = %d, want a fresh URL per connection", got)
	}
}
