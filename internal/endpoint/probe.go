// LearnQuest - E-Learning Platform API Client and Notification Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/learnquest

package endpoint

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Prober checks whether a candidate base URL is alive. It returns the HTTP
// status observed (0 when none) and a non-nil error when the candidate must
// not be used.
type Prober interface {
	Probe(ctx context.Context, candidate string) (int, error)
}

// ProberFunc adapts a function to Prober.
type ProberFunc func(ctx context.Context, candidate string) (int, error)

// Probe calls f.
func (f ProberFunc) Probe(ctx context.Context, candidate string) (int, error) {
	return f(ctx, candidate)
}

// StatusError is returned when the health endpoint answered with a status
// that does not count as alive.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("health check returned status %d", e.StatusCode)
}

// HTTPProber issues GET {base-without-/api}{HealthPath}.
type HTTPProber struct {
	Client     *http.Client
	HealthPath string
	Timeout    time.Duration

	// AcceptNotFound treats a 404 as alive: the server answered, the route differs.
	AcceptNotFound bool

	UserAgent string
}

// NewHTTPProber creates a prober with the given health path and timeout.
func NewHTTPProber(healthPath string, timeout time.Duration, acceptNotFound bool) *HTTPProber {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	if healthPath == "" {
		healthPath = "/health"
	}
	return &HTTPProber{
		Client:         &http.Client{},
		HealthPath:     healthPath,
		Timeout:        timeout,
		AcceptNotFound: acceptNotFound,
	}
}

// HealthURL returns the probe URL for candidate. A trailing /api segment is
// removed since the health route lives at the server root.
//
//	HealthURL("https://api.learnquest.dev/api", "/health") // https://api.learnquest.dev/health
func HealthURL(candidate, healthPath string) string {
	base := strings.TrimRight(candidate, "/")
	base = strings.TrimSuffix(base, "/api")
	if !strings.HasPrefix(healthPath, "/") {
		healthPath = "/" + healthPath
	}
	return base + healthPath
}

// Probe implements Prober.
func (p *HTTPProber) Probe(ctx context.Context, candidate string) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, p.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, HealthURL(candidate, p.HealthPath), http.NoBody)
	if err != nil {
		return 0, fmt.Errorf("failed to create probe request: %w", err)
	}
	if p.UserAgent != "" {
		req.Header.Set("User-Agent", p.UserAgent)
	}

	client := p.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("probe failed: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10)) //nolint:errcheck // drain for connection reuse

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return resp.StatusCode, nil
	case resp.StatusCode == http.StatusNotFound && p.AcceptNotFound:
		return resp.StatusCode, nil
	default:
		return resp.StatusCode, &StatusError{StatusCode: resp.StatusCode}
	}
}
