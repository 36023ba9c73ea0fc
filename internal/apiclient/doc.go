// LearnQuest - E-Learning Platform API Client and Notification Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/learnquest

/*
Package apiclient is the resilient HTTP client every LearnQuest façade uses.

Three pieces compose it:

  - Executor: one HTTP exchange with a timeout, default and bearer headers,
    optional rate limiting, and response normalization through Adapt.
  - endpoint.Resolver: the live base URL, probed from the candidate list.
  - Client: resolves, executes, and invalidates the endpoint after network
    failures or timeouts so the next call re-probes.

Every outcome is a *Response: HTTP errors, timeouts, refused connections,
unreachable candidate lists and malformed bodies all come back with
Success=false and a Failure kind instead of a Go error.

	client := apiclient.New(resolver, apiclient.NewExecutor(apiclient.ExecutorConfig{
	    Tokens:  sessionManager,
	    Timeout: 15 * time.Second,
	}))

	env := apiclient.Call[models.Course](ctx, client, &apiclient.Request{
	    Method: http.MethodGet,
	    Path:   "/Courses/42",
	})
	if !env.Success {
	    return env.Message
	}

Backends are inconsistent about member casing. Adapt reads data/Data,
message/Message, errors/Errors and errorCode/ErrorCode, preferring the
lowercase member when both appear.
*/
package apiclient
