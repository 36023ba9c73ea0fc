// LearnQuest - E-Learning Platform API Client and Notification Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/learnquest

package endpoint

import (
	"sync"
	"time"
)

// ProbeResult is the outcome of the latest liveness probe of one candidate.
type ProbeResult struct {
	Candidate  string    `json:"candidate"`
	At         time.Time `json:"at"`
	OK         bool      `json:"ok"`
	StatusCode int       `json:"status_code,omitempty"`
	Error      string    `json:"error,omitempty"`

	// Skipped is set when an open circuit breaker answered for the candidate.
	Skipped bool `json:"skipped,omitempty"`
}

// State is the endpoint cache owned by one client: the ordered candidate
// list, the active endpoint and the last probe of every candidate.
type State struct {
	mu         sync.RWMutex
	candidates []string
	active     string
	resolvedAt time.Time
	probes     map[string]ProbeResult
}

// Snapshot is a point-in-time copy of a State.
type Snapshot struct {
	Candidates []string      `json:"candidates"`
	Active     string        `json:"active,omitempty"`
	ResolvedAt time.Time     `json:"resolved_at,omitempty"`
	Probes     []ProbeResult `json:"probes"`
}

// NewState creates a State over candidates. The slice is copied.
func NewState(candidates []string) *State {
	c := make([]string, len(candidates))
	copy(c, candidates)
	return &State{
		candidates: c,
		probes:     make(map[string]ProbeResult, len(c)),
	}
}

// Candidates returns a copy of the candidate list in priority order.
func (s *State) Candidates() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.candidates))
	copy(out, s.candidates)
	return out
}

// Active returns the cached endpoint, if any.
func (s *State) Active() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active, s.active != ""
}

func (s *State) setActive(candidate string, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = candidate
	s.resolvedAt = at
}

// clearActive drops the active endpoint. When only is non-empty the cache is
// cleared only if it still points at only. Reports whether anything changed.
func (s *State) clearActive(only string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == "" || (only != "" && s.active != only) {
		return false
	}
	s.active = ""
	s.resolvedAt = time.Time{}
	return true
}

func (s *State) recordProbe(r ProbeResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.probes[r.Candidate] = r
}

// Snapshot returns a copy of the state. Probes are listed in candidate order;
// candidates never probed are omitted.
func (s *State) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{
		Candidates: make([]string, len(s.candidates)),
		Active:     s.active,
		ResolvedAt: s.resolvedAt,
		Probes:     make([]ProbeResult, 0, len(s.probes)),
	}
	copy(snap.Candidates, s.candidates)
	for _, c := range s.candidates {
		if r, ok := s.probes[c]; ok {
			snap.Probes = append(snap.Probes, r)
		}
	}
	return snap
}
