// LearnQuest - E-Learning Platform API Client and Notification Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/learnquest

package endpoint

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// fakeProber answers from a map of candidate -> alive and counts calls.
type fakeProber struct {
	mu    sync.Mutex
	alive map[string]bool
	calls map[string]int
	order []string
	delay time.Duration
}

func newFakeProber(alive map[string]bool) *fakeProber {
	return &fakeProber{alive: alive, calls: make(map[string]int)}
}

func (p *fakeProber) Probe(ctx context.Context, candidate string) (int, error) {
	if p.delay > 0 {
		time.Sleep(p.delay)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls[candidate]++
	p.order = append(p.order, candidate)
	if p.alive[candidate] {
		return 200, nil
	}
	return 0, errors.New("connection refused")
}

func (p *fakeProber) setAlive(candidate string, alive bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.alive[candidate] = alive
}

func (p *fakeProber) callCount(candidate string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls[candidate]
}

func TestResolve_FailoverOrder(t *testing.T) {
	prober := newFakeProber(map[string]bool{"http://a": false, "http://b": true})
	r := NewResolver(NewState([]string{"http://a", "http://b"}), prober, Options{})

	got, ok := r.Resolve(context.Background())
	if !ok || got != "http://b" {
		t.Fatalf("Resolve() = %q, %v; want http://b, true", got, ok)
	}

	// Cached: no further probes of either candidate.
	for i := 0; i < 3; i++ {
		if got, _ := r.Resolve(context.Background()); got != "http://b" {
			t.Fatalf("cached Resolve() = %q, want http://b", got)
		}
	}
	if n := prober.callCount("http://a"); n != 1 {
		t.Errorf("probes of A = %d, want 1", n)
	}
	if n := prober.callCount("http://b"); n != 1 {
		t.Errorf("probes of B = %d, want 1", n)
	}
}

func TestResolve_PrefersEarlierCandidate(t *testing.T) {
	prober := newFakeProber(map[string]bool{"http://a": true, "http://b": true, "http://c": true})
	r := NewResolver(NewState([]string{"http://a", "http://b", "http://c"}), prober, Options{})

	got, ok := r.Resolve(context.Background())
	if !ok || got != "http://a" {
		t.Fatalf("Resolve() = %q, %v; want http://a", got, ok)
	}
	if len(prober.order) != 1 {
		t.Errorf("probe order = %v, want only the first candidate", prober.order)
	}
}

func TestResolve_NoneReachable(t *testing.T) {
	prober := newFakeProber(map[string]bool{})
	state := NewState([]string{"http://dead1", "http://dead2"})
	r := NewResolver(state, prober, Options{})

	got, ok := r.Resolve(context.Background())
	if ok || got != "" {
		t.Fatalf("Resolve() = %q, %v; want \"\", false", got, ok)
	}
	if want := []string{"http://dead1", "http://dead2"}; len(prober.order) != 2 || prober.order[0] != want[0] || prober.order[1] != want[1] {
		t.Errorf("probe order = %v, want %v", prober.order, want)
	}

	snap := state.Snapshot()
	if len(snap.Probes) != 2 {
		t.Fatalf("snapshot probes = %d, want 2", len(snap.Probes))
	}
	for _, p := range snap.Probes {
		if p.OK || p.Error == "" {
			t.Errorf("probe %+v should be a failure with an error message", p)
		}
	}

	// Nothing cached: the next call probes again.
	r.Resolve(context.Background())
	if n := prober.callCount("http://dead1"); n != 2 {
		t.Errorf("probes of dead1 = %d, want 2", n)
	}
}

func TestInvalidate_ReprobesInOrder(t *testing.T) {
	prober := newFakeProber(map[string]bool{"http://a": true, "http://b": true})
	r := NewResolver(NewState([]string{"http://a", "http://b"}), prober, Options{})

	if got, _ := r.Resolve(context.Background()); got != "http://a" {
		t.Fatalf("first Resolve() = %q", got)
	}

	prober.setAlive("http://a", false)
	r.Invalidate()
	if _, ok := r.State().Active(); ok {
		t.Fatal("Active() should be empty after Invalidate")
	}

	got, ok := r.Resolve(context.Background())
	if !ok || got != "http://b" {
		t.Fatalf("Resolve() after invalidate = %q, %v; want http://b", got, ok)
	}
	if n := prober.callCount("http://a"); n != 2 {
		t.Errorf("probes of A = %d, want 2", n)
	}
}

func TestInvalidateEndpoint_OnlyMatching(t *testing.T) {
	prober := newFakeProber(map[string]bool{"http://a": true})
	r := NewResolver(NewState([]string{"http://a"}), prober, Options{})
	r.Resolve(context.Background())

	r.InvalidateEndpoint("http://other")
	if active, ok := r.State().Active(); !ok || active != "http://a" {
		t.Errorf("non-matching invalidation cleared the cache: %q, %v", active, ok)
	}

	r.InvalidateEndpoint("http://a")
	if _, ok := r.State().Active(); ok {
		t.Error("matching invalidation should clear the cache")
	}

	// Idempotent on an empty cache.
	r.Invalidate()
	r.InvalidateEndpoint("http://a")
}

func TestResolve_ConcurrentCallersShareProbe(t *testing.T) {
	prober := newFakeProber(map[string]bool{"http://a": true})
	prober.delay = 20 * time.Millisecond
	r := NewResolver(NewState([]string{"http://a"}), prober, Options{})

	var wg sync.WaitGroup
	var okCount atomic.Int32
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if got, ok := r.Resolve(context.Background()); ok && got == "http://a" {
				okCount.Add(1)
			}
		}()
	}
	wg.Wait()

	if okCount.Load() != 10 {
		t.Errorf("successful resolutions = %d, want 10", okCount.Load())
	}
	if n := prober.callCount("http://a"); n != 1 {
		t.Errorf("probes = %d, want 1", n)
	}
}

func TestResolve_CanceledContextStopsProbing(t *testing.T) {
	prober := newFakeProber(map[string]bool{"http://a": true})
	r := NewResolver(NewState([]string{"http://a"}), prober, Options{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, ok := r.Resolve(ctx); ok {
		t.Error("Resolve() with canceled context should not resolve")
	}
	if n := prober.callCount("http://a"); n != 0 {
		t.Errorf("probes = %d, want 0", n)
	}
}

func TestResolve_BreakerSkipsDeadCandidate(t *testing.T) {
	prober := newFakeProber(map[string]bool{"http://a": false, "http://b": false})
	r := NewResolver(NewState([]string{"http://a", "http://b"}), prober, Options{
		BreakerFailures: 2,
		BreakerTimeout:  time.Hour,
	})

	// Two failed sequences open both breakers.
	r.Resolve(context.Background())
	r.Resolve(context.Background())
	if n := prober.callCount("http://a"); n != 2 {
		t.Fatalf("probes of A = %d, want 2", n)
	}

	prober.setAlive("http://b", true)
	if _, ok := r.Resolve(context.Background()); ok {
		t.Error("open breakers should keep candidates unreachable")
	}
	if n := prober.callCount("http://a"); n != 2 {
		t.Errorf("probes of A with open breaker = %d, want 2", n)
	}
	if n := prober.callCount("http://b"); n != 2 {
		t.Errorf("probes of B with open breaker = %d, want 2", n)
	}

	snap := r.State().Snapshot()
	for _, p := range snap.Probes {
		if !p.Skipped {
			t.Errorf("probe %s should be marked skipped", p.Candidate)
		}
	}
}

func TestResolve_BreakerHalfOpenRecovers(t *testing.T) {
	prober := newFakeProber(map[string]bool{"http://a": false})
	r := NewResolver(NewState([]string{"http://a"}), prober, Options{
		BreakerFailures: 1,
		BreakerTimeout:  30 * time.Millisecond,
	})

	r.Resolve(context.Background())
	prober.setAlive("http://a", true)

	if _, ok := r.Resolve(context.Background()); ok {
		t.Fatal("breaker should still be open")
	}

	time.Sleep(50 * time.Millisecond)
	if got, ok := r.Resolve(context.Background()); !ok || got != "http://a" {
		t.Errorf("Resolve() after breaker timeout = %q, %v; want http://a", got, ok)
	}
}

func TestStateSnapshot_IsCopy(t *testing.T) {
	candidates := []string{"http://a", "http://b"}
	state := NewState(candidates)
	candidates[0] = "http://mutated"

	snap := state.Snapshot()
	if snap.Candidates[0] != "http://a" {
		t.Errorf("state shares the caller's slice: %v", snap.Candidates)
	}
	snap.Candidates[1] = "http://changed"
	if state.Candidates()[1] != "http://b" {
		t.Error("snapshot shares the state's slice")
	}
}

func TestResolve_UsesClock(t *testing.T) {
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	prober := newFakeProber(map[string]bool{"http://a": true})
	r := NewResolver(NewState([]string{"http://a"}), prober, Options{Now: func() time.Time { return fixed }})

	r.Resolve(context.Background())
	snap := r.State().Snapshot()
	if !snap.ResolvedAt.Equal(fixed) {
		t.Errorf("ResolvedAt = %v, want %v", snap.ResolvedAt, fixed)
	}
	if len(snap.Probes) != 1 || !snap.Probes[0].At.Equal(fixed) || snap.Probes[0].StatusCode != 200 {
		t.Errorf("probes = %+v", snap.Probes)
	}
}
