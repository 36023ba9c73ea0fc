// LearnQuest - E-Learning Platform API Client and Notification Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/learnquest

/*
Package api provides the LearnQuest domain façades: typed wrappers that turn
auth, profile, course, course-content and notification operations into
requests on the resilient API client.

# Services

  - AuthService: sign-in, sign-up, token refresh, logout and account
    recovery. Keeps the session in step with the backend.
  - ProfileService: profile read/update, avatar upload, password change.
  - CourseService: catalog, course authoring (multipart), enrollment and
    the cached category list.
  - ContentService: course sections and their content items.
  - NotificationService: paged notifications, stats, read/delete
    mutations and the push stream URL.

# Results

Every operation returns an apiclient.Envelope. Network failures, HTTP error
statuses and malformed bodies are reported there, never as Go errors.
Input is validated with go-playground/validator before anything is sent;
a rejected input yields a FailureInvalidRequest envelope whose Errors map
has the same shape as backend validation errors.

Only caller mistakes return errors: RefreshToken without a stored refresh
token (ErrNoRefreshToken) and operations needing a session when none is
held (ErrNotAuthenticated).

# Session handling

SignIn and RefreshToken store the returned token pair through the Session.
Logout clears the session whatever the backend answers, so the client is
never left signed in against a dead backend.

	client := apiclient.New(resolver, executor)
	auth := api.NewAuthService(client, sessions)

	env := auth.SignIn(ctx, models.SignInRequest{Email: email, Password: pw})
	if !env.Success {
	    log.Warn().Str("message", env.Message).Msg("sign-in failed")
	}
*/
package api
