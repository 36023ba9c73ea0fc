// LearnQuest - E-Learning Platform API Client and Notification Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/learnquest

package endpoint

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/learnquest/internal/logging"
	"github.com/tomtom215/learnquest/internal/metrics"
)

// Options tunes a Resolver.
type Options struct {
	// BreakerFailures opens a candidate's breaker after this many consecutive
	// failed probes. 0 disables breakers.
	BreakerFailures uint32

	// BreakerTimeout is how long an open breaker skips its candidate.
	BreakerTimeout time.Duration

	// Now is the clock used for timestamps. Defaults to time.Now.
	Now func() time.Time
}

// Resolver finds the first reachable candidate and caches it in its State.
//
// Candidates are probed strictly in list order, one at a time, so the
// earliest healthy candidate always wins. Concurrent Resolve calls share one
// probe sequence.
type Resolver struct {
	state    *State
	prober   Prober
	breakers map[string]*gobreaker.CircuitBreaker[int]
	now      func() time.Time
	logger   zerolog.Logger

	resolveMu sync.Mutex
}

// NewResolver creates a resolver over state.
func NewResolver(state *State, prober Prober, opts Options) *Resolver {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.BreakerTimeout <= 0 {
		opts.BreakerTimeout = 30 * time.Second
	}

	r := &Resolver{
		state:  state,
		prober: prober,
		now:    opts.Now,
		logger: logging.WithComponent("endpoint"),
	}
	if opts.BreakerFailures > 0 {
		r.breakers = make(map[string]*gobreaker.CircuitBreaker[int], len(state.candidates))
		for _, c := range state.Candidates() {
			r.breakers[c] = newBreaker(c, opts.BreakerFailures, opts.BreakerTimeout)
		}
	}
	return r
}

// State returns the state the resolver writes to.
func (r *Resolver) State() *State {
	return r.state
}

// Resolve returns the active endpoint, probing the candidate list when none
// is cached. ok is false when no candidate is reachable; Resolve never fails
// otherwise.
func (r *Resolver) Resolve(ctx context.Context) (endpoint string, ok bool) {
	if active, found := r.state.Active(); found {
		metrics.RecordResolution("cached")
		return active, true
	}

	r.resolveMu.Lock()
	defer r.resolveMu.Unlock()

	// Another caller may have finished a probe sequence while we waited.
	if active, found := r.state.Active(); found {
		metrics.RecordResolution("cached")
		return active, true
	}

	for _, candidate := range r.state.Candidates() {
		if ctx.Err() != nil {
			break
		}
		if r.probe(ctx, candidate) {
			r.state.setActive(candidate, r.now())
			metrics.RecordResolution("resolved")
			r.logger.Info().Str("endpoint", candidate).Msg("Resolved active API endpoint")
			return candidate, true
		}
	}

	metrics.RecordResolution("none")
	r.logger.Warn().Strs("candidates", r.state.Candidates()).Msg("No reachable API endpoint")
	return "", false
}

// probe checks one candidate and records the result.
func (r *Resolver) probe(ctx context.Context, candidate string) bool {
	var (
		status int
		err    error
	)
	if cb := r.breakers[candidate]; cb != nil {
		status, err = cb.Execute(func() (int, error) {
			return r.prober.Probe(ctx, candidate)
		})
	} else {
		status, err = r.prober.Probe(ctx, candidate)
	}

	result := ProbeResult{Candidate: candidate, At: r.now(), StatusCode: status, OK: err == nil}
	switch {
	case err == nil:
		metrics.RecordProbe("alive")
	case errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests):
		result.Skipped = true
		result.Error = err.Error()
		metrics.RecordProbe("skipped")
		r.logger.Debug().Str("candidate", candidate).Msg("Skipping candidate with open circuit")
	default:
		result.Error = err.Error()
		metrics.RecordProbe("dead")
		r.logger.Debug().Err(err).Str("candidate", candidate).Msg("Endpoint probe failed")
	}
	r.state.recordProbe(result)
	return result.OK
}

// Invalidate drops the cached endpoint so the next Resolve re-probes.
func (r *Resolver) Invalidate() {
	if r.state.clearActive("") {
		metrics.RecordInvalidation()
		r.logger.Info().Msg("Active API endpoint invalidated")
	}
}

// InvalidateEndpoint drops the cache only if it still holds endpoint. Used
// after a connectivity failure so that a slow request does not evict an
// endpoint resolved after it started.
func (r *Resolver) InvalidateEndpoint(endpoint string) {
	if r.state.clearActive(endpoint) {
		metrics.RecordInvalidation()
		r.logger.Info().Str("endpoint", endpoint).Msg("Active API endpoint invalidated after connectivity failure")
	}
}
