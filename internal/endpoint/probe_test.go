// LearnQuest - E-Learning Platform API Client and Notification Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/learnquest

package endpoint

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestHealthURL(t *testing.T) {
	tests := []struct {
		name      string
		candidate string
		path      string
		want      string
	}{
		{"strips api suffix", "https://api.learnquest.dev/api", "/health", "https://api.learnquest.dev/health"},
		{"strips trailing slash", "http://localhost:5000/api/", "/health", "http://localhost:5000/health"},
		{"no api suffix", "http://localhost:5000", "/health", "http://localhost:5000/health"},
		{"path without slash", "http://localhost:5000/api", "healthz", "http://localhost:5000/healthz"},
		{"keeps inner api segment", "http://host/api/v2", "/health", "http://host/api/v2/health"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HealthURL(tt.candidate, tt.path); got != tt.want {
				t.Errorf("HealthURL(%q, %q) = %q, want %q", tt.candidate, tt.path, got, tt.want)
			}
		})
	}
}

func TestHTTPProber_StatusHandling(t *testing.T) {
	tests := []struct {
		name           string
		status         int
		acceptNotFound bool
		wantErr        bool
	}{
		{"200 alive", http.StatusOK, false, false},
		{"204 alive", http.StatusNoContent, false, false},
		{"404 accepted", http.StatusNotFound, true, false},
		{"404 rejected", http.StatusNotFound, false, true},
		{"500 dead", http.StatusInternalServerError, true, true},
		{"503 dead", http.StatusServiceUnavailable, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotPath string
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotPath = r.URL.Path
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			p := NewHTTPProber("/health", time.Second, tt.acceptNotFound)
			status, err := p.Probe(context.Background(), srv.URL+"/api")
			if (err != nil) != tt.wantErr {
				t.Fatalf("Probe() err = %v, wantErr %v", err, tt.wantErr)
			}
			if status != tt.status {
				t.Errorf("status = %d, want %d", status, tt.status)
			}
			if gotPath != "/health" {
				t.Errorf("probe path = %q, want /health", gotPath)
			}
			if tt.wantErr {
				var se *StatusError
				if !errors.As(err, &se) || se.StatusCode != tt.status {
					t.Errorf("err = %v, want *StatusError{%d}", err, tt.status)
				}
			}
		})
	}
}

func TestHTTPProber_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	p := NewHTTPProber("/health", 50*time.Millisecond, true)
	start := time.Now()
	_, err := p.Probe(context.Background(), srv.URL)
	if err == nil {
		t.Fatal("Probe() should fail on timeout")
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("probe took %v, want about 50ms", elapsed)
	}
}

func TestHTTPProber_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	p := NewHTTPProber("/health", time.Second, true)
	status, err := p.Probe(context.Background(), url)
	if err == nil {
		t.Fatal("Probe() of closed server should fail")
	}
	if status != 0 {
		t.Errorf("status = %d, want 0", status)
	}
}

func TestHTTPProber_UserAgent(t *testing.T) {
	var ua string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ua = r.UserAgent()
	}))
	defer srv.Close()

	p := NewHTTPProber("", 0, false)
	p.UserAgent = "learnquest-test/1.0"
	if _, err := p.Probe(context.Background(), srv.URL); err != nil {
		t.Fatalf("Probe() err = %v", err)
	}
	if ua != "learnquest-test/1.0" {
		t.Errorf("User-Agent = %q", ua)
	}
}

func TestResolver_WithHTTPProber(t *testing.T) {
	dead := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer dead.Close()
	live := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer live.Close()

	r := NewResolver(NewState([]string{dead.URL + "/api", live.URL + "/api"}), NewHTTPProber("/health", time.Second, true), Options{})
	got, ok := r.Resolve(context.Background())
	if !ok || got != live.URL+"/api" {
		t.Errorf("Resolve() = %q, %v; want %q", got, ok, live.URL+"/api")
	}

	snap := r.State().Snapshot()
	if len(snap.Probes) != 2 || snap.Probes[0].StatusCode != http.StatusBadGateway || !snap.Probes[1].OK {
		t.Errorf("probes = %+v", snap.Probes)
	}
}
