// LearnQuest - E-Learning Platform API Client and Notification Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/learnquest

package services

import (
	"context"
	"errors"
	"slices"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/learnquest/internal/session"
)

var _ suture.Service = (*SessionSyncService)(nil)

// mockFollower records applied session states.
type mockFollower struct {
	mu          sync.Mutex
	applied     []bool
	err         error
	disconnects atomic.Int32
}

func (m *mockFollower) HandleSessionChange(_ context.Context, authenticated bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.applied = append(m.applied, authenticated)
	return m.err
}

func (m *mockFollower) DisconnectRealTime() { m.disconnects.Add(1) }

func (m *mockFollower) states() []bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.applied)
}

func waitUntil(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestSessionSyncService(t *testing.T) {
	t.Run("applies initial state then every change", func(t *testing.T) {
		mgr := session.NewManager(session.NewMemoryStore())
		follower := &mockFollower{}
		svc := NewSessionSyncService(mgr, follower)

		ctx, cancel := context.WithCancel(context.Background())
		errCh := make(chan error, 1)
		go func() { errCh <- svc.Serve(ctx) }()

		waitUntil(t, "initial state", func() bool { return len(follower.states()) == 1 })

		if err := mgr.Set(ctx, "access", "refresh"); err != nil {
			t.Fatal(err)
		}
		waitUntil(t, "sign-in", func() bool { return len(follower.states()) == 2 })

		if err := mgr.Clear(ctx); err != nil {
			t.Fatal(err)
		}
		waitUntil(t, "sign-out", func() bool { return len(follower.states()) == 3 })

		if got, want := follower.states(), []bool{false, true, false}; !slices.Equal(got, want) {
			t.Errorf("applied = %v, want %v", got, want)
		}

		cancel()
		if err := <-errCh; !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
		if got := follower.disconnects.Load(); got != 1 {
			t.Errorf("expected 1 disconnect on stop, got %d", got)
		}

		// The listener is removed on stop.
		_ = mgr.Set(context.Background(), "a2", "r2")
		time.Sleep(20 * time.Millisecond)
		if got := len(follower.states()); got != 3 {
			t.Errorf("change applied after stop: %d states", got)
		}
	})

	t.Run("follower errors do not stop the service", func(t *testing.T) {
		mgr := session.NewManager(session.NewMemoryStore())
		follower := &mockFollower{err: errors.New("backend down")}
		svc := NewSessionSyncService(mgr, follower)

		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
		defer cancel()

		if err := svc.Serve(ctx); !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("expected context.DeadlineExceeded, got %v", err)
		}
		if got := len(follower.states()); got != 1 {
			t.Errorf("expected 1 applied state, got %d", got)
		}
	})
}
