// LearnQuest - E-Learning Platform API Client and Notification Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/learnquest

/*
Package endpoint selects a live API base URL from an ordered candidate list.

A Resolver probes candidates one at a time, in list order, and caches the
first one that answers its health route. Later calls return the cached
endpoint without probing until it is invalidated, typically by the API
client after a connectivity failure.

	state := endpoint.NewState(cfg.Candidates())
	prober := endpoint.NewHTTPProber("/health", 3*time.Second, true)
	resolver := endpoint.NewResolver(state, prober, endpoint.Options{
	    BreakerFailures: 3,
	    BreakerTimeout:  30 * time.Second,
	})

	base, ok := resolver.Resolve(ctx)
	if !ok {
	    // no candidate reachable
	}

Each candidate optionally has its own sony/gobreaker circuit breaker. While a
breaker is open its candidate is reported as skipped without a network probe.

State is owned by one client instance and is never global, so independent
clients (and tests) do not share endpoint caches.
*/
package endpoint
