// LearnQuest - E-Learning Platform API Client and Notification Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/learnquest

package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/learnquest/internal/api"
	lqsync "github.com/tomtom215/learnquest/internal/sync"
)

var (
	_ suture.Service = (*StatsPollService)(nil)
	_ suture.Service = (*TokenRefreshService)(nil)
)

type mockLoader struct {
	state atomic.Int32
	loads atomic.Int32
	err   error
}

func (m *mockLoader) State() lqsync.ConnectionState {
	return lqsync.ConnectionState(m.state.Load())
}

func (m *mockLoader) LoadStats(context.Context) error {
	m.loads.Add(1)
	return m.err
}

type staticAuth bool

func (a staticAuth) IsAuthenticated() bool { return bool(a) }

func runFor(t *testing.T, svc suture.Service, d time.Duration) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), d)
	defer cancel()
	if err := svc.Serve(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected context.DeadlineExceeded, got %v", err)
	}
}

func TestStatsPollService(t *testing.T) {
	tests := []struct {
		name          string
		authenticated bool
		state         lqsync.ConnectionState
		err           error
		wantPolls     bool
	}{
		{"polls while disconnected", true, lqsync.Disconnected, nil, true},
		{"polls while connecting", true, lqsync.Connecting, nil, true},
		{"keeps polling after errors", true, lqsync.Disconnected, errors.New("down"), true},
		{"idle while connected", true, lqsync.Connected, nil, false},
		{"idle while signed out", false, lqsync.Disconnected, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loader := &mockLoader{err: tt.err}
			loader.state.Store(int32(tt.state))
			svc := NewStatsPollService(loader, staticAuth(tt.authenticated), 10*time.Millisecond)

			runFor(t, svc, 100*time.Millisecond)

			got := loader.loads.Load()
			if tt.wantPolls && got < 2 {
				t.Errorf("expected repeated polls, got %d", got)
			}
			if !tt.wantPolls && got != 0 {
				t.Errorf("expected no polls, got %d", got)
			}
		})
	}
}

type mockRefresher struct {
	calls     atomic.Int32
	refreshed bool
	err       error
	window    atomic.Int64
}

func (m *mockRefresher) EnsureFresh(_ context.Context, window time.Duration) (bool, error) {
	m.calls.Add(1)
	m.window.Store(int64(window))
	return m.refreshed, m.err
}

func TestTokenRefreshService(t *testing.T) {
	tests := []struct {
		name      string
		refreshed bool
		err       error
	}{
		{"refreshes", true, nil},
		{"nothing to do", false, nil},
		{"signed out", false, api.ErrNotAuthenticated},
		{"refresh failure keeps running", false, errors.New("network")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			auth := &mockRefresher{refreshed: tt.refreshed, err: tt.err}
			svc := NewTokenRefreshService(auth, 10*time.Millisecond, 2*time.Minute)

			runFor(t, svc, 100*time.Millisecond)

			if got := auth.calls.Load(); got < 2 {
				t.Errorf("expected an immediate check plus ticks, got %d calls", got)
			}
			if got := time.Duration(auth.window.Load()); got != 2*time.Minute {
				t.Errorf("window = %v, want 2m", got)
			}
		})
	}
}
