// LearnQuest - E-Learning Platform API Client and Notification Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/learnquest

package api

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/goccy/go-json"

	"github.com/tomtom215/learnquest/internal/apiclient"
	"github.com/tomtom215/learnquest/internal/endpoint"
	"github.com/tomtom215/learnquest/internal/session"
)

// recorded is one request seen by the mock backend.
type recorded struct {
	Method string
	Path   string
	Query  string
	Header http.Header
	Body   []byte
}

// backend is a mock LearnQuest API mounted under /api.
type backend struct {
	t   *testing.T
	mux *http.ServeMux
	srv *httptest.Server

	mu       sync.Mutex
	requests []recorded
	hits     atomic.Int32
}

func newBackend(t *testing.T) *backend {
	t.Helper()
	b := &backend{t: t, mux: http.NewServeMux()}
	b.mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	b.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			b.hits.Add(1)
			body, _ := io.ReadAll(r.Body)
			b.mu.Lock()
			b.requests = append(b.requests, recorded{
				Method: r.Method,
				Path:   r.URL.Path,
				Query:  r.URL.RawQuery,
				Header: r.Header.Clone(),
				Body:   body,
			})
			b.mu.Unlock()
			r.Body = io.NopCloser(bytes.NewReader(body))
		}
		b.mux.ServeHTTP(w, r)
	}))
	t.Cleanup(b.srv.Close)
	return b
}

// handle registers a handler for pattern, relative to /api.
func (b *backend) handle(pattern string, h http.HandlerFunc) {
	method, path, ok := strings.Cut(pattern, " ")
	if !ok || !strings.HasPrefix(path, "/") {
		b.t.Fatalf("bad pattern %q", pattern)
	}
	b.mux.HandleFunc(method+" /api"+path, h)
}

// reply registers a handler answering with status and a JSON body.
func (b *backend) reply(pattern string, status int, body any) {
	b.handle(pattern, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, status, body)
	})
}

func (b *backend) base() string {
	return b.srv.URL + "/api"
}

func (b *backend) last() recorded {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.requests) == 0 {
		b.t.Fatal("backend received no request")
	}
	return b.requests[len(b.requests)-1]
}

// client builds a resilient client against the backend using tokens.
func (b *backend) client(tokens apiclient.TokenSource) *apiclient.Client {
	prober := endpoint.NewHTTPProber("/health", 0, false)
	resolver := endpoint.NewResolver(endpoint.NewState([]string{b.base()}), prober, endpoint.Options{})
	return apiclient.New(resolver, apiclient.NewExecutor(apiclient.ExecutorConfig{Tokens: tokens}))
}

func newSession(t *testing.T) *session.Manager {
	t.Helper()
	return session.NewManager(session.NewMemoryStore())
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func ok(data any) map[string]any {
	return map[string]any{"success": true, "data": data}
}

func checkSuccess[T any](t *testing.T, env apiclient.Envelope[T]) {
	t.Helper()
	if !env.Success {
		t.Fatalf("expected success, got failure %q: %s", env.Failure, env.Message)
	}
}

func checkFailure[T any](t *testing.T, env apiclient.Envelope[T], kind apiclient.FailureKind) {
	t.Helper()
	if env.Success {
		t.Fatal("expected failure, got success")
	}
	if env.Failure != kind {
		t.Fatalf("Failure = %q, want %q (message %q)", env.Failure, kind, env.Message)
	}
}

func decodeBody(t *testing.T, r recorded, v any) {
	t.Helper()
	if err := json.Unmarshal(r.Body, v); err != nil {
		t.Fatalf("decode request body %q: %v", r.Body, err)
	}
}

var bg = context.Background()
